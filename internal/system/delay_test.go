package system

import (
	"testing"

	"github.com/mistveil/server/internal/core/entity"
	"github.com/mistveil/server/internal/core/fsm"
	"go.uber.org/zap"
)

func newTestDelays() (*DelayCoordinator, *fsm.Machine) {
	m := fsm.NewMachine()
	return NewDelayCoordinator(m, zap.NewNop()), m
}

func TestBlockingDelayCannotBeStacked(t *testing.T) {
	c, _ := newTestDelays()

	if !c.Start(1, DelayRequest{Kind: DelayBlocking, Ticks: 5}) {
		t.Fatalf("expected first blocking delay to start")
	}
	c.Tick()
	c.Tick()

	// A second start of any kind must fail and leave the countdown alone.
	if c.Start(1, DelayRequest{Kind: DelayBlocking, Ticks: 99}) {
		t.Fatalf("expected second blocking start to fail")
	}
	if c.Start(1, DelayRequest{Kind: DelayInterruptible, Ticks: 99}) {
		t.Fatalf("expected interruptible start over blocking to fail")
	}
	if got := c.Remaining(1); got != 3 {
		t.Fatalf("expected countdown untouched at 3, got %d", got)
	}
}

func TestBlockingDelayCannotBeInterrupted(t *testing.T) {
	c, _ := newTestDelays()
	interrupted := false
	c.Start(1, DelayRequest{Kind: DelayBlocking, Ticks: 3, OnInterrupt: func() { interrupted = true }})

	if c.Interrupt(1) {
		t.Fatalf("expected Interrupt to fail on a blocking delay")
	}
	if interrupted {
		t.Fatalf("expected no interrupt hook")
	}
	if _, ok := c.Active(1); !ok {
		t.Fatalf("expected delay still active")
	}
}

func TestInterruptibleDelayReplacedSilently(t *testing.T) {
	c, _ := newTestDelays()
	firstRan := false
	secondRan := false
	c.Start(1, DelayRequest{Kind: DelayInterruptible, Ticks: 4, OnComplete: func() { firstRan = true }})
	if !c.Start(1, DelayRequest{Kind: DelayInterruptible, Ticks: 2, OnComplete: func() { secondRan = true }}) {
		t.Fatalf("expected replacement to succeed")
	}

	c.Tick()
	c.Tick()
	if firstRan {
		t.Fatalf("expected the replaced delay's hook never to run")
	}
	if !secondRan {
		t.Fatalf("expected the replacement's hook to run")
	}
}

func TestCompletionRestoresStateAndAllowsChaining(t *testing.T) {
	c, m := newTestDelays()
	ref := entity.PlayerRef(1)
	m.SetState(ref, fsm.StateInDialogue)

	chained := false
	c.Start(1, DelayRequest{
		Kind:      DelayBlocking,
		Ticks:     1,
		TempState: fsm.StateDelayed,
		OnComplete: func() {
			// Entry is removed before this runs, so a follow-up delay starts.
			if !c.Start(1, DelayRequest{Kind: DelayBlocking, Ticks: 2}) {
				t.Fatalf("expected chained delay to start from OnComplete")
			}
			chained = true
		},
	})

	if m.Current(ref) != fsm.StateDelayed {
		t.Fatalf("expected temp state for the duration, got %v", m.Current(ref))
	}

	c.Tick()
	if !chained {
		t.Fatalf("expected completion hook to run")
	}
	if got := c.Remaining(1); got != 2 {
		t.Fatalf("expected chained countdown at 2, got %d", got)
	}
}

func TestInterruptRestoresCapturedState(t *testing.T) {
	c, m := newTestDelays()
	ref := entity.PlayerRef(1)
	m.SetState(ref, fsm.StateMoving)

	interrupted := false
	c.Start(1, DelayRequest{
		Kind:        DelayInterruptible,
		Ticks:       5,
		TempState:   fsm.StateDelayed,
		OnInterrupt: func() { interrupted = true },
	})

	if !c.Interrupt(1) {
		t.Fatalf("expected interrupt to succeed")
	}
	if !interrupted {
		t.Fatalf("expected interrupt hook to fire")
	}
	if got := m.Current(ref); got != fsm.StateMoving {
		t.Fatalf("expected pre-delay state restored, got %v", got)
	}
	if _, ok := c.Active(1); ok {
		t.Fatalf("expected delay removed after interrupt")
	}
}

func TestInterruptSkipRestoreKeepsTempState(t *testing.T) {
	c, m := newTestDelays()
	ref := entity.PlayerRef(1)

	c.Start(1, DelayRequest{
		Kind:        DelayInterruptible,
		Ticks:       5,
		TempState:   fsm.StateDelayed,
		SkipRestore: true,
	})
	c.Interrupt(1)

	if got := m.Current(ref); got != fsm.StateDelayed {
		t.Fatalf("expected temp state kept with SkipRestore, got %v", got)
	}
}

func TestClearIsSilent(t *testing.T) {
	c, m := newTestDelays()
	ref := entity.PlayerRef(1)

	completed, interrupted := false, false
	c.Start(1, DelayRequest{
		Kind:        DelayInterruptible,
		Ticks:       3,
		TempState:   fsm.StateDelayed,
		OnComplete:  func() { completed = true },
		OnInterrupt: func() { interrupted = true },
	})
	c.Clear(1)

	if completed || interrupted {
		t.Fatalf("expected no callbacks from Clear")
	}
	if got := m.Current(ref); got != fsm.StateDelayed {
		t.Fatalf("expected Clear to leave the state machine alone, got %v", got)
	}
	if _, ok := c.Active(1); ok {
		t.Fatalf("expected delay removed")
	}
}

func TestReplacementKeepsOriginalCapturedState(t *testing.T) {
	c, m := newTestDelays()
	ref := entity.PlayerRef(1)
	m.SetState(ref, fsm.StateMoving)

	c.Start(1, DelayRequest{Kind: DelayInterruptible, Ticks: 5, TempState: fsm.StateDelayed})
	// The replacement happens mid-windup; the machine reads StateDelayed now,
	// but interruption must restore what the user was doing before the first
	// delay began.
	c.Start(1, DelayRequest{Kind: DelayInterruptible, Ticks: 5})
	c.Interrupt(1)

	if got := m.Current(ref); got != fsm.StateMoving {
		t.Fatalf("expected original pre-delay state restored, got %v", got)
	}
}
