package fsm

import "github.com/mistveil/server/internal/core/entity"

// State is an entity's current behavioural mode. Conflicting behaviours
// (walking while mid-dialogue, acting while stunned) are serialized by
// transitions through this machine rather than by flag checks scattered
// around the systems.
type State uint8

const (
	StateIdle State = iota
	StateMoving
	StateInDialogue
	StateDelayed // mid-windup, owned by the delay coordinator
	StateStunned
	StateDead
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateMoving:
		return "moving"
	case StateInDialogue:
		return "in_dialogue"
	case StateDelayed:
		return "delayed"
	case StateStunned:
		return "stunned"
	case StateDead:
		return "dead"
	default:
		return "unknown"
	}
}

// ExitHook runs when an entity leaves the state it is registered for.
// Owning subsystems register these at startup (cancel movement plan, drop
// aggro, end conversation, clear target). No business rule lives here.
type ExitHook func(ref entity.Ref)

// Machine maps entity refs to their current state. Entities not present are
// implicitly idle. Single-goroutine access (game loop).
type Machine struct {
	states    map[entity.Ref]State
	exitHooks map[State][]ExitHook
}

func NewMachine() *Machine {
	return &Machine{
		states:    make(map[entity.Ref]State),
		exitHooks: make(map[State][]ExitHook),
	}
}

// OnExit registers a hook fired whenever any entity leaves the given state.
func (m *Machine) OnExit(s State, h ExitHook) {
	m.exitHooks[s] = append(m.exitHooks[s], h)
}

// Current returns the entity's state, idle if untracked.
func (m *Machine) Current(ref entity.Ref) State {
	return m.states[ref]
}

// SetState transitions ref to next. Exit hooks for the old state run first,
// in registration order; a transition to the same state is a no-op and fires
// nothing.
func (m *Machine) SetState(ref entity.Ref, next State) {
	prev := m.states[ref]
	if prev == next {
		return
	}
	for _, h := range m.exitHooks[prev] {
		h(ref)
	}
	if next == StateIdle {
		delete(m.states, ref)
		return
	}
	m.states[ref] = next
}

// Forget drops all tracking for an entity without firing hooks. Used by the
// disconnect/removal path, which runs its own cleanup explicitly.
func (m *Machine) Forget(ref entity.Ref) {
	delete(m.states, ref)
}
