package system

import (
	coresys "github.com/mistveil/server/internal/core/system"
	"github.com/mistveil/server/internal/engine"
	"github.com/mistveil/server/internal/world"
)

// OutputSystem is the flush step: it swaps the double-buffered queues and
// emits one aggregated frame per recipient. Nothing here mutates game state.
type OutputSystem struct {
	deps *Deps
	ids  []int32 // reused recipient list
}

func NewOutputSystem(deps *Deps) *OutputSystem {
	return &OutputSystem{deps: deps}
}

func (s *OutputSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *OutputSystem) Update(_ int64) {
	s.ids = s.ids[:0]
	s.deps.World.AllPlayers(func(p *world.PlayerInfo) {
		s.ids = append(s.ids, p.UserID)
	})

	s.deps.Out.Swap()
	s.deps.Out.Flush(s.ids, func(userID int32, batch []engine.Message) {
		p := s.deps.World.PlayerByUserID(userID)
		if p == nil || p.Session == nil {
			return
		}
		p.Session.Send(engine.EncodeBatch(batch))
	})
}
