package engine

import (
	"context"
	"time"

	coresys "github.com/mistveil/server/internal/core/system"
	"go.uber.org/zap"
)

// Scheduler owns the fixed-interval timer and advances the world by exactly
// one discrete step per interval. All simulation state is mutated from the
// goroutine that calls Run — the single-writer model the whole kernel is
// built on. Once running, the scheduler never stops on a subsystem error;
// only context cancellation ends the loop.
type Scheduler struct {
	runner   *coresys.Runner
	out      *Outgoing
	interval time.Duration
	tick     int64
	log      *zap.Logger
}

func NewScheduler(runner *coresys.Runner, out *Outgoing, interval time.Duration, log *zap.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		out:      out,
		interval: interval,
		log:      log,
	}
}

// Tick returns the current tick number. Tick N is the step currently being
// simulated; systems see the same value for the whole pass.
func (s *Scheduler) Tick() int64 {
	return s.tick
}

// Out returns the double-buffered outgoing queue the scheduler manages.
func (s *Scheduler) Out() *Outgoing {
	return s.out
}

// RunTick executes one full pipeline pass, then increments the tick counter.
// The registered systems run in strict phase order; the output system (at
// PhaseOutput) swaps and flushes the outgoing queue as part of the pass.
func (s *Scheduler) RunTick() {
	s.runner.Tick(s.tick)
	s.tick++
}

// Run drives RunTick once per interval until ctx is cancelled. A tick that
// overruns the interval is logged and the loop continues at the next firing;
// the simulation never tries to "catch up" with multiple steps.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			start := time.Now()
			s.RunTick()
			if d := time.Since(start); d > s.interval {
				s.log.Warn("tick overran interval",
					zap.Int64("tick", s.tick-1),
					zap.Duration("took", d),
				)
			}
		case <-ctx.Done():
			return
		}
	}
}
