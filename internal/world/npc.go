package world

import "sync/atomic"

// npcIDCounter generates unique NPC instance ids. Starts at 200_000_000 to
// avoid collision with player user ids and ground-item ids.
var npcIDCounter atomic.Int32

func init() {
	npcIDCounter.Store(200_000_000)
}

// NextNpcID returns a unique instance id for an NPC.
func NextNpcID() int32 {
	return npcIDCounter.Add(1)
}

// NpcInfo holds runtime data for an NPC currently in-world.
// Accessed only from the game loop goroutine — no locks.
type NpcInfo struct {
	ID    int32 // unique instance id (from NextNpcID)
	DefID int32 // catalog definition id
	Name  string

	Level int16 // map level
	X, Y  int32

	// Immutable spawn anchor, set once at world load.
	SpawnLevel int16
	SpawnX     int32
	SpawnY     int32

	Stats Stats

	// Aggro state. Target is a user id (0 = none). AggroCooldown blocks
	// re-acquisition for a few ticks after a target is dropped.
	AggroTarget   int32
	AggroCooldown int
	CombatTimer   int   // ticks until next swing
	LastAttacker  int32 // user id credited with the kill drop (0 = none)

	// Instanced ownership: when non-zero, only this user's actions interact
	// with the NPC (per-player boss instances). 0 = shared.
	OwnerUserID int32

	// Death and respawn bookkeeping.
	Dead         bool
	CorpseTimer  int // ticks the corpse stays visible after death
	RespawnTimer int // ticks until respawn once the corpse is gone
	RespawnTicks int // configured respawn window from the spawn list

	// Idle wandering.
	WanderTimer int
	WanderDist  int
	WanderDir   int16
}
