package world

import "sync/atomic"

// DynamicItemIDBase partitions the ground-item id space. Ids below it belong
// to static world spawns that respawn after pickup; ids at or above it are
// allocated for player-caused drops and are removed permanently. Other
// subsystems rely on this partition to decide respawn-vs-delete behaviour —
// treat it as a durable contract.
const DynamicItemIDBase = 100_000

// dynamicItemID allocates ids for dynamically dropped piles.
var dynamicItemID atomic.Int32

func init() {
	dynamicItemID.Store(DynamicItemIDBase)
}

// NextDynamicItemID returns a unique id above the world-spawn range.
func NextDynamicItemID() int32 {
	return dynamicItemID.Add(1)
}

// IsDynamicItemID reports whether id belongs to the dynamic-drop range.
func IsDynamicItemID(id int32) bool {
	return id >= DynamicItemIDBase
}

// GroundItem represents one pile of items on the floor. Not persisted —
// exists only in memory. Scheduled ticks use 0 as "not scheduled"; the first
// real tick any schedule can land on is 1.
type GroundItem struct {
	ID     int32 // instance id; range decides world spawn vs dynamic drop
	ItemID int32 // item definition id
	Amount int32
	Noted  bool // note-form stack of an unstackable item

	Level int16
	X, Y  int32

	// Present is false only for a picked-up world spawn awaiting respawn.
	// A present item has exactly one spatial entry; a non-present one has none.
	Present bool

	RespawnAt int64 // tick a picked-up world spawn reappears (0 = none)
	DespawnAt int64 // tick a drop vanishes (0 = never)

	// Owner-only visibility. VisibleTo is a user id (0 = public). RevealAt is
	// the tick the pile flips public (0 = never — non-tradeable drops).
	VisibleTo int32
	RevealAt  int64

	RespawnTicks int // world-spawn respawn window from the spawn catalog
}

// VisibleToUser reports whether the pile is currently shown to the given user.
func (g *GroundItem) VisibleToUser(userID int32) bool {
	return g.Present && (g.VisibleTo == 0 || g.VisibleTo == userID)
}
