package system

import (
	"github.com/mistveil/server/internal/core/entity"
	"github.com/mistveil/server/internal/core/event"
	coresys "github.com/mistveil/server/internal/core/system"
	"github.com/mistveil/server/internal/world"
)

// RegenSystem converges boosted and drained stats back to baseline for
// players and NPCs. It fires on a fixed period and steps each boosted stat
// one unit toward base, never overshooting. Hitpoints changes emit an event
// because they drive visible health-bar updates; other stats converge
// silently.
type RegenSystem struct {
	deps      *Deps
	tickCount int
}

func NewRegenSystem(deps *Deps) *RegenSystem {
	return &RegenSystem{deps: deps}
}

func (s *RegenSystem) Phase() coresys.Phase { return coresys.PhaseRegen }

func (s *RegenSystem) Update(_ int64) {
	s.tickCount++
	if s.tickCount < s.deps.Tuning.RegenPeriodTicks {
		return
	}
	s.tickCount = 0

	s.deps.World.AllPlayers(func(p *world.PlayerInfo) {
		if p.Dead {
			return
		}
		s.regenEntity(entity.PlayerRef(p.UserID), &p.Stats)
	})
	for _, n := range s.deps.World.NpcList() {
		if n.Dead {
			continue
		}
		s.regenEntity(entity.NpcRef(n.ID), &n.Stats)
	}
}

func (s *RegenSystem) regenEntity(ref entity.Ref, st *world.Stats) {
	for _, stat := range st.BoostedStats() {
		cur, changed := st.StepTowardBase(stat)
		if changed && stat == world.StatHitpoints {
			s.deps.Bus.Emit(event.HitpointsChanged{
				Ref:     ref,
				Current: cur,
				Base:    st.Base(world.StatHitpoints),
			})
		}
	}
}
