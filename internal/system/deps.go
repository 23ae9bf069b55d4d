package system

import (
	"github.com/mistveil/server/internal/config"
	"github.com/mistveil/server/internal/core/event"
	"github.com/mistveil/server/internal/core/fsm"
	"github.com/mistveil/server/internal/data"
	"github.com/mistveil/server/internal/engine"
	"github.com/mistveil/server/internal/scripting"
	"github.com/mistveil/server/internal/world"
	"go.uber.org/zap"
)

// Deps bundles the shared collaborators every system needs. Built once by the
// composition root and passed by pointer; systems keep the pointer, never a
// copy.
type Deps struct {
	World  *world.State
	Bus    *event.Bus
	FSM    *fsm.Machine
	Delays *DelayCoordinator
	Out    *engine.Outgoing

	Items   *data.ItemTable
	Npcs    *data.NpcTable
	Objects *data.ObjectTable

	// Lua is nil when no scripts directory was found; call sites fall back
	// to built-in formulas.
	Lua *scripting.Engine

	Tuning Tuning
	Log    *zap.Logger
}

// Tuning holds every tick-denominated window, converted once from the
// configured wall-time durations. Game code only ever sees tick counts.
type Tuning struct {
	DropDespawnTicks     int
	DropRevealTicks      int
	DropRevealBonusTicks int
	RegenPeriodTicks     int
	IdleTimeoutTicks     int
	BanSweepTicks        int
	ShopRestockTicks     int
	SavePeriodTicks      int
	CorpseLingerTicks    int
	DayNightTicks        int
}

// TuningFromConfig derives all tick windows from the world config.
func TuningFromConfig(w config.WorldConfig) Tuning {
	return Tuning{
		DropDespawnTicks:     w.Ticks(w.DropDespawn),
		DropRevealTicks:      w.Ticks(w.DropReveal),
		DropRevealBonusTicks: w.Ticks(w.DropRevealBonus),
		RegenPeriodTicks:     w.Ticks(w.RegenPeriod),
		IdleTimeoutTicks:     w.Ticks(w.IdleTimeout),
		BanSweepTicks:        w.Ticks(w.BanSweepPeriod),
		ShopRestockTicks:     w.Ticks(w.ShopRestock),
		SavePeriodTicks:      w.Ticks(w.SavePeriod),
		CorpseLingerTicks:    w.Ticks(w.CorpseLinger),
		DayNightTicks:        w.Ticks(w.DayNightCycle),
	}
}
