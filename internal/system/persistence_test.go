package system

import (
	"testing"
)

func TestFailedSaveRemarkedDirtyInsideTick(t *testing.T) {
	deps := newTestDeps()
	deps.Tuning.SavePeriodTicks = 100
	p := addTestPlayer(deps, 7, 50)
	p.Dirty = false

	ps := NewPersistenceSystem(deps, nil, 1)
	ps.failedCh <- []int32{7}
	ps.Update(1)

	if !p.Dirty {
		t.Fatalf("player whose save failed was not re-marked dirty")
	}
}

func TestFailedSaveForDepartedPlayerIgnored(t *testing.T) {
	deps := newTestDeps()
	deps.Tuning.SavePeriodTicks = 100

	ps := NewPersistenceSystem(deps, nil, 1)
	ps.failedCh <- []int32{99}
	ps.Update(1) // id logged out between save and report; must be a no-op
}

func TestNoSaveBeforePeriodElapses(t *testing.T) {
	deps := newTestDeps()
	deps.Tuning.SavePeriodTicks = 100
	p := addTestPlayer(deps, 7, 50)
	p.Dirty = true

	ps := NewPersistenceSystem(deps, nil, 1)
	for tick := int64(1); tick < 100; tick++ {
		ps.Update(tick)
	}
	if !p.Dirty {
		t.Fatalf("dirty flag cleared before the save period elapsed")
	}
}
