package world

import "sync/atomic"

// objectIDCounter generates ids for static world entities, in their own range
// above NPCs so instance ids never collide across kinds.
var objectIDCounter atomic.Int32

func init() {
	objectIDCounter.Store(400_000_000)
}

// NextObjectID returns a unique instance id for a static world entity.
func NextObjectID() int32 {
	return objectIDCounter.Add(1)
}

// ObjectInfo is a static world entity (tree, rock, furnace, door frame).
// Objects never move: created once at world load, removed only when
// permanently destroyed.
type ObjectInfo struct {
	ID    int32
	DefID int32
	Name  string

	Level int16
	X, Y  int32

	// Footprint in tiles; the south-west corner sits at (X, Y).
	Length uint8
	Width  uint8

	// Harvestable resources. Resources is meaningless when Harvestable is
	// false. A depleted object schedules RespawnAt and yields nothing until
	// the environment pass restores it.
	Harvestable  bool
	Resources    int32
	MaxResources int32
	RespawnAt    int64 // tick resources replenish (0 = not scheduled)
	RespawnTicks int
}

// Depleted reports whether a harvestable object is out of resources.
func (o *ObjectInfo) Depleted() bool {
	return o.Harvestable && o.Resources <= 0
}
