package system

import (
	"github.com/mistveil/server/internal/core/entity"
	"github.com/mistveil/server/internal/core/event"
	coresys "github.com/mistveil/server/internal/core/system"
	"github.com/mistveil/server/internal/data"
	"github.com/mistveil/server/internal/world"
	"go.uber.org/zap"
)

// GroundItemSystem owns spawn, stack-merge, pickup, despawn and respawn for
// droppable items. Every removal emits its domain event before the spatial
// projection is dropped, so subscribers can still resolve the position.
type GroundItemSystem struct {
	deps *Deps
}

func NewGroundItemSystem(deps *Deps) *GroundItemSystem {
	return &GroundItemSystem{deps: deps}
}

func (s *GroundItemSystem) Phase() coresys.Phase { return coresys.PhaseItems }

func (s *GroundItemSystem) Update(tick int64) {
	s.UpdateRespawns(tick)
}

// PlaceWorldSpawn creates one static world-spawn pile at world load. Ids come
// from the spawn catalog and sit below the dynamic range, so pickup schedules
// a respawn instead of deleting the record.
func (s *GroundItemSystem) PlaceWorldSpawn(sp data.ItemSpawn) *world.GroundItem {
	if s.deps.Items.Get(sp.ItemID) == nil {
		s.deps.Log.Warn("world spawn references unknown item",
			zap.Int32("spawn_id", sp.ID),
			zap.Int32("item_id", sp.ItemID),
		)
		return nil
	}
	g := &world.GroundItem{
		ID:           sp.ID,
		ItemID:       sp.ItemID,
		Amount:       sp.Amount,
		Level:        sp.Level,
		X:            sp.X,
		Y:            sp.Y,
		Present:      true,
		RespawnTicks: sp.RespawnTicks,
	}
	s.deps.World.AddGroundItem(g)
	return g
}

// SpawnGroundItem creates a dynamic drop, or merges it into a matching
// present pile at the same tile. Returns nil on an unknown item definition
// (logged, no-op). visibleTo restricts the drop to one user id (0 = public);
// the private window lapses only for tradeable items.
func (s *GroundItemSystem) SpawnGroundItem(
	itemDefID, amount int32, noted bool,
	level int16, x, y int32,
	despawnTicks int, visibleTo int32,
	tick int64,
) *world.GroundItem {
	def := s.deps.Items.Get(itemDefID)
	if def == nil {
		s.deps.Log.Warn("spawn of unknown item", zap.Int32("item_id", itemDefID))
		return nil
	}

	var despawnAt int64
	if despawnTicks > 0 {
		despawnAt = tick + int64(despawnTicks)
	}

	// Stack merge: same tile, item, note flag and visibility owner is the
	// only way two piles combine.
	if def.Stackable || noted {
		if exist := s.deps.World.GroundItemAt(level, x, y, itemDefID, noted, visibleTo); exist != nil {
			exist.Amount += amount
			exist.DespawnAt = laterDeadline(exist.DespawnAt, despawnAt)
			// Merging into a still-private pile extends the reveal window by
			// a fixed bonus rather than resetting it.
			if exist.VisibleTo != 0 && exist.RevealAt != 0 {
				exist.RevealAt += int64(s.deps.Tuning.DropRevealBonusTicks)
			}
			return exist
		}
	}

	g := &world.GroundItem{
		ID:        world.NextDynamicItemID(),
		ItemID:    itemDefID,
		Amount:    amount,
		Noted:     noted,
		Level:     level,
		X:         x,
		Y:         y,
		Present:   true,
		DespawnAt: despawnAt,
		VisibleTo: visibleTo,
	}
	// Owned drops go public after the fixed reveal window, but only when the
	// item is tradeable; untradeable drops stay owner-only forever so floor
	// drops cannot launder ownership.
	if visibleTo != 0 && def.Tradeable {
		g.RevealAt = tick + int64(s.deps.Tuning.DropRevealTicks)
	}
	s.deps.World.AddGroundItem(g)
	s.deps.Bus.Emit(event.EntitySpawned{
		Ref:   entity.GroundItemRef(g.ID),
		Level: g.Level,
		X:     g.X,
		Y:     g.Y,
	})
	return g
}

// RemoveGroundItem takes a pile out of the world. A world spawn picked up is
// marked absent and scheduled to respawn; a dynamic drop, or any non-pickup
// removal, deletes the record outright.
func (s *GroundItemSystem) RemoveGroundItem(id int32, reason event.RemoveReason, tick int64) {
	g := s.deps.World.GroundItem(id)
	if g == nil {
		return
	}

	s.deps.Bus.Emit(event.EntityRemoved{
		Ref:    entity.GroundItemRef(id),
		Level:  g.Level,
		X:      g.X,
		Y:      g.Y,
		Reason: reason,
	})

	if !world.IsDynamicItemID(id) && reason == event.RemovePickedUp {
		s.deps.World.GroundItemPickedUp(g)
		g.RespawnAt = tick + int64(g.RespawnTicks)
		return
	}
	s.deps.World.DeleteGroundItem(id)
}

// UpdateRespawns runs once per tick: world spawns past their respawn deadline
// come back, private drops past their reveal deadline flip public, and drops
// past their despawn deadline are collected and removed. Removal happens from
// a collected list, never while iterating the store.
func (s *GroundItemSystem) UpdateRespawns(tick int64) {
	var respawned, revealed []*world.GroundItem
	var expired []int32

	s.deps.World.AllGroundItems(func(g *world.GroundItem) {
		if !g.Present {
			if g.RespawnAt != 0 && g.RespawnAt <= tick {
				respawned = append(respawned, g)
			}
			return
		}
		if g.VisibleTo != 0 && g.RevealAt != 0 && g.RevealAt <= tick {
			revealed = append(revealed, g)
		}
		if g.DespawnAt != 0 && g.DespawnAt <= tick {
			expired = append(expired, g.ID)
		}
	})

	for _, g := range respawned {
		g.RespawnAt = 0
		s.deps.World.GroundItemRespawned(g)
		s.deps.Bus.Emit(event.EntitySpawned{
			Ref:   entity.GroundItemRef(g.ID),
			Level: g.Level,
			X:     g.X,
			Y:     g.Y,
		})
	}
	for _, g := range revealed {
		s.deps.World.GroundItemRevealed(g)
		s.deps.Bus.Emit(event.ItemBecameVisible{
			ItemID: g.ID,
			Level:  g.Level,
			X:      g.X,
			Y:      g.Y,
		})
	}
	for _, id := range expired {
		s.RemoveGroundItem(id, event.RemoveDespawned, tick)
	}
}

// laterDeadline merges two despawn deadlines, where 0 means "never" and
// therefore wins over any finite tick.
func laterDeadline(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	if a > b {
		return a
	}
	return b
}
