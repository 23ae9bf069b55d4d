package system

import (
	"context"

	"github.com/mistveil/server/internal/core/entity"
	"github.com/mistveil/server/internal/core/event"
	coresys "github.com/mistveil/server/internal/core/system"
	"github.com/mistveil/server/internal/persist"
	"go.uber.org/zap"
)

// CleanupSystem runs last in the pipeline and destroys departing players:
// spatial presence, delays, state machine, aggro and targeting references all
// go in one place, then the final save runs in the background. Removals are
// queued during the tick and processed here so no earlier phase ever iterates
// a half-removed player.
type CleanupSystem struct {
	deps     *Deps
	players  *persist.PlayerRepo
	accounts *persist.AccountRepo
	skilling *SkillingSystem
	shardID  int16
	queue    []uint64
}

func NewCleanupSystem(deps *Deps, players *persist.PlayerRepo, accounts *persist.AccountRepo, shardID int16) *CleanupSystem {
	return &CleanupSystem{
		deps:     deps,
		players:  players,
		accounts: accounts,
		shardID:  shardID,
	}
}

// BindSkilling breaks the construction cycle between input, skilling and
// cleanup; called once by the composition root.
func (s *CleanupSystem) BindSkilling(sk *SkillingSystem) {
	s.skilling = sk
}

// QueueRemoval schedules a session's player for removal at the end of the
// tick. Safe to call more than once for the same session.
func (s *CleanupSystem) QueueRemoval(sessionID uint64) {
	s.queue = append(s.queue, sessionID)
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ int64) {
	if len(s.queue) == 0 {
		return
	}
	for _, sessionID := range s.queue {
		s.remove(sessionID)
	}
	s.queue = s.queue[:0]
}

func (s *CleanupSystem) remove(sessionID uint64) {
	p := s.deps.World.PlayerBySession(sessionID)
	if p == nil {
		return // never logged in, or already removed
	}
	ref := entity.PlayerRef(p.UserID)

	// The removal event fires while the spatial entry still resolves, so the
	// broadcaster can tell everyone who saw the player.
	s.deps.Bus.Emit(event.EntityRemoved{
		Ref:    ref,
		Level:  p.Level,
		X:      p.X,
		Y:      p.Y,
		Reason: event.RemoveDestroyed,
	})

	s.deps.World.RemovePlayer(sessionID)
	s.deps.Delays.Clear(p.UserID)
	if s.skilling != nil {
		s.skilling.StopHarvest(p.UserID)
	}
	s.deps.FSM.Forget(ref)
	for _, n := range s.deps.World.NpcList() {
		if n.AggroTarget == p.UserID {
			n.AggroTarget = 0
			n.AggroCooldown = aggroDropCooldown
		}
		if n.LastAttacker == p.UserID {
			n.LastAttacker = 0
		}
	}
	s.deps.Bus.Emit(event.PlayerRemoved{UserID: p.UserID})

	if p.Session != nil {
		p.Session.Close()
	}

	// Final save and presence flag, off the tick goroutine.
	row := SnapshotRow(p, s.shardID)
	name := p.Name
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		if err := s.players.Save(ctx, row); err != nil {
			s.deps.Log.Error("logout save failed", zap.String("name", name), zap.Error(err))
		}
		if err := s.accounts.SetOnline(ctx, row.AccountName, false); err != nil {
			s.deps.Log.Debug("online flag clear failed", zap.String("name", name), zap.Error(err))
		}
	}()

	s.deps.Log.Info("player left world", zap.String("name", name))
}
