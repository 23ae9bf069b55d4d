package system

import (
	"github.com/mistveil/server/internal/core/entity"
	"github.com/mistveil/server/internal/core/event"
	coresys "github.com/mistveil/server/internal/core/system"
	"github.com/mistveil/server/internal/scripting"
	"github.com/mistveil/server/internal/world"
)

// swingCooldown is the ticks between melee swings for both sides.
const swingCooldown = 4

// PlayerCombatSystem resolves player-initiated swings. Movement for this tick
// has already settled, so adjacency checks see final positions.
type PlayerCombatSystem struct {
	deps *Deps
}

func NewPlayerCombatSystem(deps *Deps) *PlayerCombatSystem {
	return &PlayerCombatSystem{deps: deps}
}

func (s *PlayerCombatSystem) Phase() coresys.Phase { return coresys.PhasePlayerCombat }

func (s *PlayerCombatSystem) Update(_ int64) {
	s.deps.World.AllPlayers(func(p *world.PlayerInfo) {
		if p.Dead || p.Target == 0 {
			return
		}
		n := s.deps.World.Npc(p.Target)
		if n == nil || n.Dead || n.Level != p.Level {
			p.Target = 0
			return
		}
		if chebyshevDist(p.X, p.Y, n.X, n.Y) > 1 {
			// Walk into range; the swing lands on a later tick.
			if len(p.Path) == 0 {
				p.Path = buildPath(p.X, p.Y, n.X, n.Y)
			}
			return
		}
		if p.CombatTimer > 0 {
			p.CombatTimer--
			return
		}
		p.CombatTimer = swingCooldown

		result := s.roll(scripting.CombatContext{
			AttackerAccuracy: int(p.Stats.Current(world.StatAccuracy)),
			AttackerStrength: int(p.Stats.Current(world.StatStrength)),
			TargetDefense:    int(n.Stats.Current(world.StatDefense)),
		})
		if !result.IsHit {
			return
		}
		n.LastAttacker = p.UserID
		cur := n.Stats.Adjust(world.StatHitpoints, -int32(result.Damage))
		s.deps.Bus.Emit(event.HitpointsChanged{
			Ref:     entity.NpcRef(n.ID),
			Current: cur,
			Base:    n.Stats.Base(world.StatHitpoints),
		})
	})
}

func (s *PlayerCombatSystem) roll(ctx scripting.CombatContext) scripting.CombatResult {
	if s.deps.Lua != nil {
		return s.deps.Lua.CalcMeleeAttack(ctx)
	}
	return scripting.DefaultMeleeAttack(ctx)
}

// NpcCombatSystem resolves NPC swings against their aggro targets.
type NpcCombatSystem struct {
	deps *Deps
}

func NewNpcCombatSystem(deps *Deps) *NpcCombatSystem {
	return &NpcCombatSystem{deps: deps}
}

func (s *NpcCombatSystem) Phase() coresys.Phase { return coresys.PhaseNpcCombat }

func (s *NpcCombatSystem) Update(_ int64) {
	for _, n := range s.deps.World.NpcList() {
		if n.Dead || n.AggroTarget == 0 {
			continue
		}
		p := s.deps.World.PlayerByUserID(n.AggroTarget)
		if p == nil || p.Dead || p.Level != n.Level {
			continue // aggro pass re-validates next tick
		}
		if chebyshevDist(n.X, n.Y, p.X, p.Y) > 1 {
			continue
		}
		if n.CombatTimer > 0 {
			n.CombatTimer--
			continue
		}
		n.CombatTimer = swingCooldown

		result := s.roll(scripting.CombatContext{
			AttackerAccuracy: int(n.Stats.Current(world.StatAccuracy)),
			AttackerStrength: int(n.Stats.Current(world.StatStrength)),
			TargetDefense:    int(p.Stats.Current(world.StatDefense)),
		})
		if !result.IsHit {
			continue
		}
		cur := p.Stats.Adjust(world.StatHitpoints, -int32(result.Damage))
		p.Dirty = true
		s.deps.Bus.Emit(event.HitpointsChanged{
			Ref:     entity.PlayerRef(p.UserID),
			Current: cur,
			Base:    p.Stats.Base(world.StatHitpoints),
		})
	}
}

func (s *NpcCombatSystem) roll(ctx scripting.CombatContext) scripting.CombatResult {
	if s.deps.Lua != nil {
		return s.deps.Lua.CalcMeleeAttack(ctx)
	}
	return scripting.DefaultMeleeAttack(ctx)
}
