package system

import (
	coresys "github.com/mistveil/server/internal/core/system"
	"github.com/mistveil/server/internal/data"
)

// ShopSystem drifts live shop stock back toward each line's baseline: bought-
// out lines restock one unit per period, player-sold surplus drains the same
// way.
type ShopSystem struct {
	deps      *Deps
	shops     *data.ShopTable
	stock     map[int32]map[int32]int32 // shop id -> item id -> live amount
	tickCount int
}

func NewShopSystem(deps *Deps, shops *data.ShopTable) *ShopSystem {
	s := &ShopSystem{
		deps:  deps,
		shops: shops,
		stock: make(map[int32]map[int32]int32),
	}
	for _, def := range shops.All() {
		lines := make(map[int32]int32, len(def.Stock))
		for _, line := range def.Stock {
			lines[line.ItemID] = line.Baseline
		}
		s.stock[def.ShopID] = lines
	}
	return s
}

func (s *ShopSystem) Phase() coresys.Phase { return coresys.PhaseShops }

// Stock returns the live amount of one shop line.
func (s *ShopSystem) Stock(shopID, itemID int32) int32 {
	return s.stock[shopID][itemID]
}

// Take removes up to amount from a shop line, returning what was taken.
func (s *ShopSystem) Take(shopID, itemID, amount int32) int32 {
	lines, ok := s.stock[shopID]
	if !ok {
		return 0
	}
	have := lines[itemID]
	if amount > have {
		amount = have
	}
	lines[itemID] = have - amount
	return amount
}

// Put adds player-sold stock to a shop line.
func (s *ShopSystem) Put(shopID, itemID, amount int32) {
	if lines, ok := s.stock[shopID]; ok {
		lines[itemID] += amount
	}
}

func (s *ShopSystem) Update(_ int64) {
	s.tickCount++
	if s.tickCount < s.deps.Tuning.ShopRestockTicks {
		return
	}
	s.tickCount = 0

	for shopID, lines := range s.stock {
		def := s.shops.Get(shopID)
		if def == nil {
			continue
		}
		for _, line := range def.Stock {
			cur := lines[line.ItemID]
			switch {
			case cur < line.Baseline:
				lines[line.ItemID] = cur + 1
			case cur > line.Baseline:
				lines[line.ItemID] = cur - 1
			}
		}
	}
}
