package system

import (
	"math/rand"

	"github.com/mistveil/server/internal/core/entity"
	"github.com/mistveil/server/internal/core/event"
	"github.com/mistveil/server/internal/core/fsm"
	coresys "github.com/mistveil/server/internal/core/system"
	"github.com/mistveil/server/internal/world"
)

// PlayerMoveSystem consumes one queued path step per player per tick.
type PlayerMoveSystem struct {
	deps *Deps
}

func NewPlayerMoveSystem(deps *Deps) *PlayerMoveSystem {
	return &PlayerMoveSystem{deps: deps}
}

func (s *PlayerMoveSystem) Phase() coresys.Phase { return coresys.PhasePlayerMove }

func (s *PlayerMoveSystem) Update(_ int64) {
	s.deps.World.AllPlayers(func(p *world.PlayerInfo) {
		if p.Dead || len(p.Path) == 0 {
			return
		}
		step := p.Path[0]
		p.Path = p.Path[1:]

		fromX, fromY := p.X, p.Y
		s.deps.World.MovePlayer(p, p.Level, step.X, step.Y)
		p.Dirty = true
		s.deps.Bus.Emit(event.EntityMoved{
			Ref:   entity.PlayerRef(p.UserID),
			Level: p.Level,
			FromX: fromX, FromY: fromY,
			ToX: step.X, ToY: step.Y,
		})

		if len(p.Path) == 0 {
			s.deps.FSM.SetState(entity.PlayerRef(p.UserID), fsm.StateIdle)
		}
	})
}

// NpcMoveSystem moves NPCs: one chase step toward the aggro target, or an
// occasional idle wander step near the spawn anchor.
type NpcMoveSystem struct {
	deps *Deps
	rng  *rand.Rand
}

func NewNpcMoveSystem(deps *Deps, rng *rand.Rand) *NpcMoveSystem {
	return &NpcMoveSystem{deps: deps, rng: rng}
}

func (s *NpcMoveSystem) Phase() coresys.Phase { return coresys.PhaseNpcMove }

func (s *NpcMoveSystem) Update(_ int64) {
	for _, n := range s.deps.World.NpcList() {
		if n.Dead {
			continue
		}
		if n.AggroTarget != 0 {
			s.chase(n)
			continue
		}
		s.wander(n)
	}
}

func (s *NpcMoveSystem) chase(n *world.NpcInfo) {
	p := s.deps.World.PlayerByUserID(n.AggroTarget)
	if p == nil || p.Level != n.Level {
		return // aggro pass drops the target next tick
	}
	if chebyshevDist(n.X, n.Y, p.X, p.Y) <= 1 {
		return // adjacent, combat takes over
	}
	s.stepTo(n, n.X+sign(p.X-n.X), n.Y+sign(p.Y-n.Y))
}

func (s *NpcMoveSystem) wander(n *world.NpcInfo) {
	def := s.deps.Npcs.Get(n.DefID)
	if def == nil || def.WanderRange == 0 {
		return
	}
	if n.WanderTimer > 0 {
		n.WanderTimer--
		return
	}
	n.WanderTimer = 10 + s.rng.Intn(15)

	dx := int32(s.rng.Intn(3) - 1)
	dy := int32(s.rng.Intn(3) - 1)
	if dx == 0 && dy == 0 {
		return
	}
	nx, ny := n.X+dx, n.Y+dy
	if chebyshevDist(nx, ny, n.SpawnX, n.SpawnY) > def.WanderRange {
		return // never strays past the wander range
	}
	s.stepTo(n, nx, ny)
}

func (s *NpcMoveSystem) stepTo(n *world.NpcInfo, x, y int32) {
	fromX, fromY := n.X, n.Y
	s.deps.World.MoveNpc(n, x, y)
	s.deps.Bus.Emit(event.EntityMoved{
		Ref:   entity.NpcRef(n.ID),
		Level: n.Level,
		FromX: fromX, FromY: fromY,
		ToX: x, ToY: y,
	})
}
