package system

import (
	coresys "github.com/mistveil/server/internal/core/system"
	"github.com/mistveil/server/internal/world"
)

// aggroDropCooldown blocks re-acquisition for a few ticks after an NPC loses
// its target, so a player stepping across the leash boundary does not flip
// aggro on and off every tick.
const aggroDropCooldown = 8

// AggroSystem picks and validates targets for aggressive NPCs.
type AggroSystem struct {
	deps *Deps
}

func NewAggroSystem(deps *Deps) *AggroSystem {
	return &AggroSystem{deps: deps}
}

func (s *AggroSystem) Phase() coresys.Phase { return coresys.PhaseAggro }

func (s *AggroSystem) Update(_ int64) {
	for _, n := range s.deps.World.NpcList() {
		if n.Dead {
			continue
		}
		def := s.deps.Npcs.Get(n.DefID)
		if def == nil || !def.Aggressive {
			continue
		}

		radius := def.AggroRange
		if s.deps.Lua != nil {
			radius = int32(s.deps.Lua.AggroRadius(n.DefID, int(radius)))
		}

		if n.AggroTarget != 0 {
			if !s.targetStillValid(n, radius) {
				n.AggroTarget = 0
				n.AggroCooldown = aggroDropCooldown
			}
			continue
		}

		if n.AggroCooldown > 0 {
			n.AggroCooldown--
			continue
		}

		if target := s.pickTarget(n, radius); target != nil {
			n.AggroTarget = target.UserID
		}
	}
}

// targetStillValid keeps the chase while the target is alive on the same
// level and inside twice the detection radius (the leash).
func (s *AggroSystem) targetStillValid(n *world.NpcInfo, radius int32) bool {
	p := s.deps.World.PlayerByUserID(n.AggroTarget)
	if p == nil || p.Dead || p.Level != n.Level {
		return false
	}
	return chebyshevDist(n.X, n.Y, p.X, p.Y) <= radius*2
}

// pickTarget selects the nearest candidate; equal distances break toward the
// lower user id so the pick is deterministic.
func (s *AggroSystem) pickTarget(n *world.NpcInfo, radius int32) *world.PlayerInfo {
	var best *world.PlayerInfo
	var bestDist int32
	for _, p := range s.deps.World.AggroCandidates(n, radius) {
		d := chebyshevDist(n.X, n.Y, p.X, p.Y)
		if best == nil || d < bestDist || (d == bestDist && p.UserID < best.UserID) {
			best = p
			bestDist = d
		}
	}
	return best
}
