package system

import (
	"context"
	"sync"
	"time"

	coresys "github.com/mistveil/server/internal/core/system"
	"github.com/mistveil/server/internal/persist"
	"github.com/mistveil/server/internal/world"
	"go.uber.org/zap"
)

// saveTimeout bounds one player's save, periodic or shutdown.
const saveTimeout = 5 * time.Second

// PersistenceSystem batch-saves dirty players on a fixed period. Snapshots
// are taken inside the tick; the writes run in the background so the
// scheduler never waits on the database. A player whose save fails is
// re-marked dirty inside a later tick and retried next period.
type PersistenceSystem struct {
	deps      *Deps
	players   *persist.PlayerRepo
	shardID   int16
	tickCount int
	failedCh  chan []int32
}

func NewPersistenceSystem(deps *Deps, players *persist.PlayerRepo, shardID int16) *PersistenceSystem {
	return &PersistenceSystem{
		deps:     deps,
		players:  players,
		shardID:  shardID,
		failedCh: make(chan []int32, 1),
	}
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) Update(_ int64) {
	// World state belongs to the tick goroutine; failed saves report back
	// here and get their dirty flag restored for the next period.
	select {
	case failed := <-s.failedCh:
		for _, id := range failed {
			if p := s.deps.World.PlayerByUserID(id); p != nil {
				p.Dirty = true
			}
		}
	default:
	}

	s.tickCount++
	if s.tickCount < s.deps.Tuning.SavePeriodTicks {
		return
	}
	s.tickCount = 0

	var rows []*persist.PlayerRow
	var dirty []*world.PlayerInfo
	s.deps.World.AllPlayers(func(p *world.PlayerInfo) {
		if !p.Dirty {
			return
		}
		rows = append(rows, SnapshotRow(p, s.shardID))
		dirty = append(dirty, p)
	})
	if len(rows) == 0 {
		return
	}
	for _, p := range dirty {
		p.Dirty = false
	}

	go func() {
		var failed []int32
		for _, row := range rows {
			if err := s.saveOne(row); err != nil {
				s.deps.Log.Error("periodic save failed",
					zap.String("name", row.Name), zap.Error(err))
				failed = append(failed, row.ID)
			}
		}
		if len(failed) > 0 {
			s.failedCh <- failed
		}
	}()
}

// SaveAll persists every online player, for shutdown. Saves run in parallel
// with per-player isolation: one failure or timeout never blocks the rest,
// and ctx caps the whole batch.
func (s *PersistenceSystem) SaveAll(ctx context.Context) {
	var rows []*persist.PlayerRow
	s.deps.World.AllPlayers(func(p *world.PlayerInfo) {
		rows = append(rows, SnapshotRow(p, s.shardID))
	})

	var wg sync.WaitGroup
	for _, row := range rows {
		wg.Add(1)
		go func(row *persist.PlayerRow) {
			defer wg.Done()
			if err := s.players.Save(ctx, row); err != nil {
				s.deps.Log.Error("shutdown save failed",
					zap.String("name", row.Name), zap.Error(err))
			}
		}(row)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.deps.Log.Warn("shutdown save deadline reached")
	}
}

func (s *PersistenceSystem) saveOne(row *persist.PlayerRow) error {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	return s.players.Save(ctx, row)
}

// SnapshotRow copies a player's persisted state into a save row. Must be
// called from the game loop; the row is then safe to hand to a background
// writer.
func SnapshotRow(p *world.PlayerInfo, shardID int16) *persist.PlayerRow {
	row := &persist.PlayerRow{
		ID:            p.UserID,
		AccountName:   p.AccountName,
		ShardID:       shardID,
		Name:          p.Name,
		Level:         p.Level,
		X:             p.X,
		Y:             p.Y,
		Hitpoints:     p.Stats.Current(world.StatHitpoints),
		Accuracy:      p.Stats.Current(world.StatAccuracy),
		Strength:      p.Stats.Current(world.StatStrength),
		Defense:       p.Stats.Current(world.StatDefense),
		Magic:         p.Stats.Current(world.StatMagic),
		Ranged:        p.Stats.Current(world.StatRange),
		BaseHitpoints: p.Stats.Base(world.StatHitpoints),
		BaseAccuracy:  p.Stats.Base(world.StatAccuracy),
		BaseStrength:  p.Stats.Base(world.StatStrength),
		BaseDefense:   p.Stats.Base(world.StatDefense),
		BaseMagic:     p.Stats.Base(world.StatMagic),
		BaseRanged:    p.Stats.Base(world.StatRange),
		TreasureStage: p.TreasureStage,
	}
	for i, it := range p.Bank {
		row.Bank = append(row.Bank, persist.BankItemRow{
			Slot:   int16(i),
			ItemID: it.ItemID,
			Amount: it.Amount,
			Noted:  it.Noted,
		})
	}
	return row
}
