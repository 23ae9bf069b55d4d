package system

import (
	"github.com/mistveil/server/internal/core/entity"
	"github.com/mistveil/server/internal/core/fsm"
	coresys "github.com/mistveil/server/internal/core/system"
	"go.uber.org/zap"
)

// DelayKind distinguishes the two windup behaviours.
type DelayKind uint8

const (
	// DelayBlocking cannot be interrupted or stacked. Starting any new delay
	// while a blocking one is active fails and leaves the original untouched.
	DelayBlocking DelayKind = iota
	// DelayInterruptible may be cancelled, and a new interruptible delay
	// silently overwrites the hooks on the existing one.
	DelayInterruptible
)

// DelayRequest describes one windup registration.
type DelayRequest struct {
	Kind  DelayKind
	Ticks int

	// TempState, when not StateIdle, drives the state machine into a
	// temporary state for the duration of the delay.
	TempState fsm.State

	// SkipRestore leaves the temporary state in place on interruption.
	// Continuous activities (repeated harvest swings) use this so each swing
	// does not flicker the state back to idle.
	SkipRestore bool

	OnComplete  func()
	OnInterrupt func()
}

type activeDelay struct {
	kind        DelayKind
	remaining   int
	prevState   fsm.State
	skipRestore bool
	onComplete  func()
	onInterrupt func()
}

// DelayCoordinator serializes windup-style player actions against
// interruption. Countdowns tick down once per scheduler pass; completion
// removes the entry before the callback runs, so a callback is free to start
// a new delay immediately (a failed pickpocket chaining into a stun) without
// being rejected as already delayed.
// Game-loop goroutine only.
type DelayCoordinator struct {
	machine *fsm.Machine
	active  map[int32]*activeDelay // keyed by user id
	log     *zap.Logger
}

func NewDelayCoordinator(machine *fsm.Machine, log *zap.Logger) *DelayCoordinator {
	return &DelayCoordinator{
		machine: machine,
		active:  make(map[int32]*activeDelay),
		log:     log,
	}
}

// Start registers a countdown for the user. The user's current state is
// captured before any transition so interruption can restore it. Returns
// false — leaving any existing delay untouched — when a blocking delay is
// already active.
func (c *DelayCoordinator) Start(userID int32, req DelayRequest) bool {
	if cur, ok := c.active[userID]; ok {
		if cur.kind == DelayBlocking {
			return false
		}
		// Replacing an interruptible delay keeps the state captured when the
		// first delay began; the user was already mid-windup.
		cur.kind = req.Kind
		cur.remaining = req.Ticks
		cur.skipRestore = req.SkipRestore
		cur.onComplete = req.OnComplete
		cur.onInterrupt = req.OnInterrupt
		return true
	}

	d := &activeDelay{
		kind:        req.Kind,
		remaining:   req.Ticks,
		prevState:   c.machine.Current(entity.PlayerRef(userID)),
		skipRestore: req.SkipRestore,
		onComplete:  req.OnComplete,
		onInterrupt: req.OnInterrupt,
	}
	c.active[userID] = d
	if req.TempState != fsm.StateIdle {
		c.machine.SetState(entity.PlayerRef(userID), req.TempState)
	}
	return true
}

// Interrupt cancels an interruptible delay: fires the interrupt hook,
// restores the pre-delay state unless the delay asked to skip restoration,
// and removes the entry. Returns false for blocking delays and for users
// with no active delay.
func (c *DelayCoordinator) Interrupt(userID int32) bool {
	d, ok := c.active[userID]
	if !ok || d.kind == DelayBlocking {
		return false
	}
	delete(c.active, userID)
	if d.onInterrupt != nil {
		d.onInterrupt()
	}
	if !d.skipRestore {
		c.machine.SetState(entity.PlayerRef(userID), d.prevState)
	}
	return true
}

// Clear tears down a delay silently — no callbacks, no state restoration.
// The disconnect/death cleanup path runs its own state handling.
func (c *DelayCoordinator) Clear(userID int32) {
	delete(c.active, userID)
}

// Active reports whether the user has a delay pending, and its kind.
func (c *DelayCoordinator) Active(userID int32) (DelayKind, bool) {
	d, ok := c.active[userID]
	if !ok {
		return 0, false
	}
	return d.kind, true
}

// Remaining returns the ticks left on the user's delay, 0 if none.
func (c *DelayCoordinator) Remaining(userID int32) int {
	if d, ok := c.active[userID]; ok {
		return d.remaining
	}
	return 0
}

// Tick decrements every active countdown. Entries that reach zero are
// removed first and their completion hooks run afterwards, from a collected
// list so a hook starting a new delay never mutates the map mid-iteration.
func (c *DelayCoordinator) Tick() {
	type done struct {
		userID int32
		d      *activeDelay
	}
	var completed []done
	for userID, d := range c.active {
		d.remaining--
		if d.remaining <= 0 {
			completed = append(completed, done{userID, d})
		}
	}
	for _, f := range completed {
		delete(c.active, f.userID)
		if !f.d.skipRestore {
			c.machine.SetState(entity.PlayerRef(f.userID), f.d.prevState)
		}
		if f.d.onComplete != nil {
			f.d.onComplete()
		}
	}
}

// DelaySystem drives the coordinator from the tick pipeline.
type DelaySystem struct {
	delays *DelayCoordinator
}

func NewDelaySystem(delays *DelayCoordinator) *DelaySystem {
	return &DelaySystem{delays: delays}
}

func (s *DelaySystem) Phase() coresys.Phase { return coresys.PhaseDelay }

func (s *DelaySystem) Update(_ int64) {
	s.delays.Tick()
}
