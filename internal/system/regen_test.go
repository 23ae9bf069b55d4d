package system

import (
	"testing"

	"github.com/mistveil/server/internal/core/event"
	"github.com/mistveil/server/internal/world"
)

func addTestPlayer(deps *Deps, userID int32, baseHP int32) *world.PlayerInfo {
	p := &world.PlayerInfo{
		SessionID: uint64(userID),
		UserID:    userID,
		Name:      "Tester",
		Stats: world.NewStats([world.StatCount]int32{
			world.StatHitpoints: baseHP,
			world.StatAccuracy:  10,
			world.StatStrength:  10,
			world.StatDefense:   10,
			world.StatMagic:     1,
			world.StatRange:     1,
		}),
	}
	deps.World.AddPlayer(p)
	return p
}

func TestRegenStepsOneUnitPerPeriod(t *testing.T) {
	deps := newTestDeps()
	deps.Tuning.RegenPeriodTicks = 100
	s := NewRegenSystem(deps)
	p := addTestPlayer(deps, 1, 50)
	p.Stats.SetCurrent(world.StatHitpoints, 20)

	for i := 0; i < 99; i++ {
		s.Update(int64(i))
	}
	if got := p.Stats.Current(world.StatHitpoints); got != 20 {
		t.Fatalf("expected no regen before the period elapses, got %d", got)
	}

	s.Update(99)
	if got := p.Stats.Current(world.StatHitpoints); got != 21 {
		t.Fatalf("expected exactly one unit of recovery, got %d", got)
	}
}

func TestRegenConvergesWithoutOvershoot(t *testing.T) {
	deps := newTestDeps()
	deps.Tuning.RegenPeriodTicks = 1
	s := NewRegenSystem(deps)
	p := addTestPlayer(deps, 1, 50)
	p.Stats.SetCurrent(world.StatStrength, 13) // base 10, boosted up
	p.Stats.SetCurrent(world.StatDefense, 8)   // base 10, drained

	for i := 0; i < 10; i++ {
		s.Update(int64(i))
	}
	if got := p.Stats.Current(world.StatStrength); got != 10 {
		t.Fatalf("expected strength back at base, got %d", got)
	}
	if got := p.Stats.Current(world.StatDefense); got != 10 {
		t.Fatalf("expected defense back at base, got %d", got)
	}
	if len(p.Stats.BoostedStats()) != 0 {
		t.Fatalf("expected no stats still tracked, got %v", p.Stats.BoostedStats())
	}
}

func TestRegenEmitsHitpointsEventsOnly(t *testing.T) {
	deps := newTestDeps()
	deps.Tuning.RegenPeriodTicks = 1
	s := NewRegenSystem(deps)
	p := addTestPlayer(deps, 1, 50)
	p.Stats.SetCurrent(world.StatHitpoints, 49)
	p.Stats.SetCurrent(world.StatAccuracy, 5)

	var events []event.HitpointsChanged
	deps.Bus.Subscribe(event.KindHitpointsChanged, func(ev event.Event) {
		events = append(events, ev.(event.HitpointsChanged))
	})

	s.Update(0)
	if len(events) != 1 {
		t.Fatalf("expected one hitpoints event, got %d", len(events))
	}
	if events[0].Current != 50 || events[0].Base != 50 {
		t.Fatalf("unexpected event payload %+v", events[0])
	}

	// Accuracy keeps converging for several more periods with no events.
	s.Update(1)
	s.Update(2)
	if len(events) != 1 {
		t.Fatalf("expected silent convergence for non-hitpoints stats, got %d events", len(events))
	}
}

func TestRegenSkipsDeadEntities(t *testing.T) {
	deps := newTestDeps()
	deps.Tuning.RegenPeriodTicks = 1
	s := NewRegenSystem(deps)
	p := addTestPlayer(deps, 1, 50)
	p.Stats.SetCurrent(world.StatHitpoints, 0)
	p.Dead = true

	s.Update(0)
	if got := p.Stats.Current(world.StatHitpoints); got != 0 {
		t.Fatalf("expected no regen for a dead player, got %d", got)
	}
}
