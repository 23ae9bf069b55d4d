package world

import (
	"github.com/mistveil/server/internal/net"
)

// PathStep is one queued movement step toward a destination tile.
type PathStep struct {
	X, Y int32
}

// ItemStack is an (item definition, amount) pair used for bank contents.
type ItemStack struct {
	ItemID int32
	Amount int32
	Noted  bool
}

// PlayerInfo holds in-memory data for a player currently in-world.
// Accessed only from the game loop goroutine — no locks.
type PlayerInfo struct {
	SessionID   uint64
	Session     *net.Session
	UserID      int32 // DB id, stable across sessions
	AccountName string
	Name        string

	Level int16 // map level
	X, Y  int32

	Stats Stats

	// Movement plan: remaining steps, consumed front-first each movement pass.
	Path []PathStep

	// Combat: current NPC target instance id (0 = none) and swing cooldown.
	Target      int32
	CombatTimer int

	Dead bool

	// Idle enforcement: ticks since the last packet from this session.
	IdleTicks int

	// Bank contents and treasure-trail progress, persisted with the player.
	Bank          []ItemStack
	TreasureStage int32

	// Dirty marks persisted state as changed since the last save. The
	// persistence pass saves dirty players only and clears the flag.
	Dirty bool
}

// ClearPath drops any queued movement.
func (p *PlayerInfo) ClearPath() {
	p.Path = p.Path[:0]
}

// AddToBank merges an item into the stored stack with the same key, or
// appends a new one.
func (p *PlayerInfo) AddToBank(itemID, amount int32, noted bool) {
	for i := range p.Bank {
		if p.Bank[i].ItemID == itemID && p.Bank[i].Noted == noted {
			p.Bank[i].Amount += amount
			return
		}
	}
	p.Bank = append(p.Bank, ItemStack{ItemID: itemID, Amount: amount, Noted: noted})
}
