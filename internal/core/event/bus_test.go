package event

import (
	"testing"

	"github.com/mistveil/server/internal/core/entity"
)

func TestEmitDeliversInSubscriptionOrder(t *testing.T) {
	b := NewBus()
	var order []int
	b.Subscribe(KindEntityMoved, func(Event) { order = append(order, 1) })
	b.Subscribe(KindEntityMoved, func(Event) { order = append(order, 2) })
	b.Subscribe(KindEntityMoved, func(Event) { order = append(order, 3) })

	b.Emit(EntityMoved{Ref: entity.PlayerRef(7)})

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Fatalf("expected delivery order [1 2 3], got %v", order)
	}
}

func TestEmitIsSynchronous(t *testing.T) {
	b := NewBus()
	seen := false
	b.Subscribe(KindHitpointsChanged, func(ev Event) {
		hp, ok := ev.(HitpointsChanged)
		if !ok {
			t.Fatalf("expected HitpointsChanged, got %T", ev)
		}
		if hp.Current != 5 || hp.Base != 10 {
			t.Fatalf("unexpected payload %+v", hp)
		}
		seen = true
	})

	b.Emit(HitpointsChanged{Ref: entity.NpcRef(200_000_001), Current: 5, Base: 10})
	if !seen {
		t.Fatalf("expected handler to run before Emit returns")
	}
}

func TestEmitOnlyMatchingKind(t *testing.T) {
	b := NewBus()
	calls := 0
	b.Subscribe(KindEntitySpawned, func(Event) { calls++ })

	b.Emit(EntityRemoved{Ref: entity.GroundItemRef(100_001), Reason: RemoveDespawned})
	if calls != 0 {
		t.Fatalf("expected no delivery for a different kind, got %d", calls)
	}

	b.Emit(EntitySpawned{Ref: entity.GroundItemRef(100_001)})
	if calls != 1 {
		t.Fatalf("expected exactly one delivery, got %d", calls)
	}
}

func TestEmitWithNoSubscribers(t *testing.T) {
	b := NewBus()
	// Must not panic.
	b.Emit(PlayerAdded{UserID: 1})
}
