package fsm

import (
	"testing"

	"github.com/mistveil/server/internal/core/entity"
)

func TestUntrackedEntityIsIdle(t *testing.T) {
	m := NewMachine()
	if got := m.Current(entity.PlayerRef(1)); got != StateIdle {
		t.Fatalf("expected idle for untracked entity, got %v", got)
	}
}

func TestSetStateFiresExitHooksInOrder(t *testing.T) {
	m := NewMachine()
	ref := entity.PlayerRef(1)
	var fired []int
	m.OnExit(StateMoving, func(r entity.Ref) {
		if r != ref {
			t.Fatalf("hook got wrong ref %v", r)
		}
		fired = append(fired, 1)
	})
	m.OnExit(StateMoving, func(entity.Ref) { fired = append(fired, 2) })

	m.SetState(ref, StateMoving)
	if len(fired) != 0 {
		t.Fatalf("expected no hooks on entering a state, got %v", fired)
	}

	m.SetState(ref, StateInDialogue)
	if len(fired) != 2 || fired[0] != 1 || fired[1] != 2 {
		t.Fatalf("expected exit hooks [1 2], got %v", fired)
	}
}

func TestSameStateTransitionIsNoop(t *testing.T) {
	m := NewMachine()
	ref := entity.NpcRef(200_000_001)
	calls := 0
	m.OnExit(StateStunned, func(entity.Ref) { calls++ })

	m.SetState(ref, StateStunned)
	m.SetState(ref, StateStunned)
	if calls != 0 {
		t.Fatalf("expected no hook on same-state transition, got %d", calls)
	}
	if m.Current(ref) != StateStunned {
		t.Fatalf("expected state preserved, got %v", m.Current(ref))
	}
}

func TestIdleTransitionClearsTracking(t *testing.T) {
	m := NewMachine()
	ref := entity.PlayerRef(3)
	m.SetState(ref, StateMoving)
	m.SetState(ref, StateIdle)

	// Map entry must be gone; Current still reads idle.
	if got := m.Current(ref); got != StateIdle {
		t.Fatalf("expected idle, got %v", got)
	}
}

func TestForgetSkipsHooks(t *testing.T) {
	m := NewMachine()
	ref := entity.PlayerRef(4)
	calls := 0
	m.OnExit(StateDelayed, func(entity.Ref) { calls++ })

	m.SetState(ref, StateDelayed)
	m.Forget(ref)

	if calls != 0 {
		t.Fatalf("expected Forget to fire no hooks, got %d", calls)
	}
	if m.Current(ref) != StateIdle {
		t.Fatalf("expected idle after forget, got %v", m.Current(ref))
	}
}
