package event

import "github.com/mistveil/server/internal/core/entity"

// Kind tags every event the bus can carry. The vocabulary is closed:
// subscribers type-switch over the concrete types below and nothing else.
type Kind uint8

const (
	KindEntitySpawned Kind = iota
	KindEntityRemoved
	KindEntityMoved
	KindHitpointsChanged
	KindItemBecameVisible
	KindPlayerAdded
	KindPlayerRemoved
)

// Event is the sealed interface implemented only by the types in this file.
type Event interface {
	EventKind() Kind
}

// EntitySpawned fires when an entity becomes present in the world
// (NPC respawn, ground-item spawn or respawn, object placement).
type EntitySpawned struct {
	Ref   entity.Ref
	Level int16
	X, Y  int32
}

// EntityRemoved fires before the entity's spatial entry is dropped, so
// subscribers can still resolve its last position.
type EntityRemoved struct {
	Ref    entity.Ref
	Level  int16
	X, Y   int32
	Reason RemoveReason
}

type EntityMoved struct {
	Ref            entity.Ref
	Level          int16
	FromX, FromY   int32
	ToX, ToY       int32
}

// HitpointsChanged fires whenever a hitpoints stat changes for any reason
// (damage, regeneration, death). Drives health-bar updates.
type HitpointsChanged struct {
	Ref      entity.Ref
	Current  int32
	Base     int32
}

// ItemBecameVisible fires when an owner-only drop's private window lapses.
type ItemBecameVisible struct {
	ItemID int32 // ground-item instance id
	Level  int16
	X, Y   int32
}

type PlayerAdded struct {
	UserID int32
}

type PlayerRemoved struct {
	UserID int32
}

// RemoveReason qualifies EntityRemoved; the ground-item manager branches on it.
type RemoveReason uint8

const (
	RemovePickedUp RemoveReason = iota
	RemoveDespawned
	RemoveDestroyed
	RemoveDied
)

func (EntitySpawned) EventKind() Kind     { return KindEntitySpawned }
func (EntityRemoved) EventKind() Kind     { return KindEntityRemoved }
func (EntityMoved) EventKind() Kind       { return KindEntityMoved }
func (HitpointsChanged) EventKind() Kind  { return KindHitpointsChanged }
func (ItemBecameVisible) EventKind() Kind { return KindItemBecameVisible }
func (PlayerAdded) EventKind() Kind       { return KindPlayerAdded }
func (PlayerRemoved) EventKind() Kind     { return KindPlayerRemoved }
