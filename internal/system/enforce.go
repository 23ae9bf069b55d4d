package system

import (
	"context"
	"time"

	coresys "github.com/mistveil/server/internal/core/system"
	"github.com/mistveil/server/internal/net/packet"
	"github.com/mistveil/server/internal/persist"
	"github.com/mistveil/server/internal/world"
	"go.uber.org/zap"
)

// EnforceSystem applies the two policy sweeps: idle players are disconnected
// after the configured timeout, and freshly banned accounts are kicked. The
// ban query runs in the background; results land on a channel and are applied
// inside a later tick, so the database is never awaited inline.
type EnforceSystem struct {
	deps    *Deps
	bans    *persist.BanRepo
	cleanup *CleanupSystem

	tickCount int
	sweeping  bool
	sweepCh   chan []string
}

func NewEnforceSystem(deps *Deps, bans *persist.BanRepo, cleanup *CleanupSystem) *EnforceSystem {
	return &EnforceSystem{
		deps:    deps,
		bans:    bans,
		cleanup: cleanup,
		sweepCh: make(chan []string, 1),
	}
}

func (s *EnforceSystem) Phase() coresys.Phase { return coresys.PhaseEnforce }

func (s *EnforceSystem) Update(_ int64) {
	s.enforceIdle()
	s.enforceBans()
}

func (s *EnforceSystem) enforceIdle() {
	s.deps.World.AllPlayers(func(p *world.PlayerInfo) {
		p.IdleTicks++
		if p.IdleTicks < s.deps.Tuning.IdleTimeoutTicks {
			return
		}
		s.deps.Out.QueueFor(p.UserID, packet.S_DISCONNECT, disconnectMsg(DiscIdle))
		s.cleanup.QueueRemoval(p.SessionID)
		s.deps.Log.Info("idle player disconnected", zap.String("name", p.Name))
	})
}

func (s *EnforceSystem) enforceBans() {
	// Apply any finished sweep.
	select {
	case banned := <-s.sweepCh:
		s.sweeping = false
		if len(banned) > 0 {
			// Bans key on the account name, not the display name.
			set := make(map[string]struct{}, len(banned))
			for _, name := range banned {
				set[name] = struct{}{}
			}
			s.deps.World.AllPlayers(func(p *world.PlayerInfo) {
				if _, ok := set[p.AccountName]; !ok {
					return
				}
				s.deps.Out.QueueFor(p.UserID, packet.S_DISCONNECT, disconnectMsg(DiscBanned))
				s.cleanup.QueueRemoval(p.SessionID)
				s.deps.Log.Info("banned player disconnected", zap.String("account", p.AccountName))
			})
		}
	default:
	}

	if s.bans == nil {
		return
	}
	s.tickCount++
	if s.tickCount < s.deps.Tuning.BanSweepTicks || s.sweeping {
		return
	}
	s.tickCount = 0
	s.sweeping = true

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		banned, err := s.bans.BannedAccounts(ctx)
		if err != nil {
			s.deps.Log.Error("ban sweep failed", zap.Error(err))
			banned = nil
		}
		s.sweepCh <- banned
	}()
}
