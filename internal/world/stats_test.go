package world

import "testing"

func testBase() [StatCount]int32 {
	return [StatCount]int32{
		StatHitpoints: 50,
		StatAccuracy:  10,
		StatStrength:  12,
		StatDefense:   8,
		StatMagic:     1,
		StatRange:     1,
	}
}

func TestStatsClampFloors(t *testing.T) {
	s := NewStats(testBase())

	if got := s.Adjust(StatHitpoints, -200); got != 0 {
		t.Fatalf("expected hitpoints to floor at 0, got %d", got)
	}
	if got := s.Adjust(StatStrength, -200); got != 1 {
		t.Fatalf("expected strength to floor at 1, got %d", got)
	}
}

func TestStatsHitpointsCapAtBase(t *testing.T) {
	s := NewStats(testBase())
	if got := s.SetCurrent(StatHitpoints, 80); got != 50 {
		t.Fatalf("expected hitpoints capped at base 50, got %d", got)
	}
	if s.IsBoosted(StatHitpoints) {
		t.Fatalf("expected hitpoints at base not tracked as boosted")
	}
}

func TestStatsBoostAboveBase(t *testing.T) {
	s := NewStats(testBase())
	if got := s.SetCurrent(StatStrength, 18); got != 18 {
		t.Fatalf("expected strength boost to 18, got %d", got)
	}
	if !s.IsBoosted(StatStrength) {
		t.Fatalf("expected strength tracked as boosted")
	}
}

func TestStepTowardBaseNeverOvershoots(t *testing.T) {
	s := NewStats(testBase())
	s.SetCurrent(StatDefense, 9) // base 8

	if got, changed := s.StepTowardBase(StatDefense); !changed || got != 8 {
		t.Fatalf("expected step down to 8, got %d changed=%v", got, changed)
	}
	if s.IsBoosted(StatDefense) {
		t.Fatalf("expected boosted cleared on convergence")
	}
	if _, changed := s.StepTowardBase(StatDefense); changed {
		t.Fatalf("expected no movement once at base")
	}
}

func TestStepTowardBaseFromBelow(t *testing.T) {
	s := NewStats(testBase())
	s.SetCurrent(StatHitpoints, 20)

	got, changed := s.StepTowardBase(StatHitpoints)
	if !changed || got != 21 {
		t.Fatalf("expected one unit of recovery to 21, got %d changed=%v", got, changed)
	}
	if !s.IsBoosted(StatHitpoints) {
		t.Fatalf("expected hitpoints still tracked while below base")
	}
}

func TestBoostedStatsInOrder(t *testing.T) {
	s := NewStats(testBase())
	s.SetCurrent(StatMagic, 5)
	s.SetCurrent(StatAccuracy, 3)

	got := s.BoostedStats()
	if len(got) != 2 || got[0] != StatAccuracy || got[1] != StatMagic {
		t.Fatalf("expected [accuracy magic], got %v", got)
	}
}
