package system

import (
	"testing"

	"github.com/mistveil/server/internal/core/event"
	"github.com/mistveil/server/internal/core/fsm"
	"github.com/mistveil/server/internal/data"
	"github.com/mistveil/server/internal/engine"
	"github.com/mistveil/server/internal/world"
	"go.uber.org/zap"
)

func newTestDeps() *Deps {
	machine := fsm.NewMachine()
	log := zap.NewNop()
	return &Deps{
		World:  world.NewState(),
		Bus:    event.NewBus(),
		FSM:    machine,
		Delays: NewDelayCoordinator(machine, log),
		Out:    engine.NewOutgoing(),
		Items: data.NewItemTable([]data.ItemDef{
			{ItemID: 1, Name: "Coins", Stackable: true, Tradeable: true},
			{ItemID: 104, Name: "Logs", Noteable: true, Tradeable: true},
			{ItemID: 108, Name: "Bones", Noteable: true, Tradeable: true},
			{ItemID: 110, Name: "Founder token", Stackable: true, Tradeable: false},
		}),
		Npcs: data.NewNpcTable([]data.NpcDef{
			{NpcID: 1, Name: "Rat", Hitpoints: 3, Accuracy: 1, Strength: 1, Defense: 1, Magic: 1, Range: 1},
		}),
		Tuning: Tuning{
			DropDespawnTicks:     300,
			DropRevealTicks:      300,
			DropRevealBonusTicks: 17,
			RegenPeriodTicks:     100,
			CorpseLingerTicks:    5,
		},
		Log: log,
	}
}

func TestOwnedDropRevealsThenDespawns(t *testing.T) {
	deps := newTestDeps()
	s := NewGroundItemSystem(deps)

	g := s.SpawnGroundItem(108, 1, false, 0, 10, 10, 500, 7, 0)
	if g == nil {
		t.Fatalf("expected drop to spawn")
	}
	if !g.VisibleToUser(7) {
		t.Fatalf("expected owner to see the drop")
	}
	if g.VisibleToUser(8) {
		t.Fatalf("expected non-owner blind during the private window")
	}

	// Public exactly at the reveal deadline.
	s.UpdateRespawns(299)
	if g.VisibleTo == 0 {
		t.Fatalf("expected still private at tick 299")
	}
	s.UpdateRespawns(300)
	if g.VisibleTo != 0 {
		t.Fatalf("expected public at tick 300")
	}
	if !g.VisibleToUser(8) {
		t.Fatalf("expected everyone to see the revealed drop")
	}

	// Gone at the despawn deadline, permanently — dynamic ids never respawn.
	s.UpdateRespawns(499)
	if deps.World.GroundItem(g.ID) == nil {
		t.Fatalf("expected drop still present at tick 499")
	}
	s.UpdateRespawns(500)
	if deps.World.GroundItem(g.ID) != nil {
		t.Fatalf("expected drop deleted at tick 500")
	}
}

func TestUntradeableDropNeverReveals(t *testing.T) {
	deps := newTestDeps()
	s := NewGroundItemSystem(deps)

	g := s.SpawnGroundItem(110, 1, false, 0, 10, 10, 0, 7, 0)
	if g.RevealAt != 0 {
		t.Fatalf("expected no reveal deadline for an untradeable drop, got %d", g.RevealAt)
	}
	s.UpdateRespawns(100_000)
	if g.VisibleTo != 7 {
		t.Fatalf("expected drop to stay owner-only forever")
	}
}

func TestStackMergeRequiresFullKey(t *testing.T) {
	deps := newTestDeps()
	s := NewGroundItemSystem(deps)

	a := s.SpawnGroundItem(1, 10, false, 0, 5, 5, 100, 0, 0)

	// Same everything: merges.
	b := s.SpawnGroundItem(1, 5, false, 0, 5, 5, 200, 0, 0)
	if b != a {
		t.Fatalf("expected merge into the existing pile")
	}
	if a.Amount != 15 {
		t.Fatalf("expected merged amount 15, got %d", a.Amount)
	}

	// Different owner: a fresh pile, piles never change hands via merge.
	c := s.SpawnGroundItem(1, 3, false, 0, 5, 5, 100, 9, 0)
	if c == a {
		t.Fatalf("expected a differently-owned pile to stay separate")
	}

	// Different tile: fresh pile.
	d := s.SpawnGroundItem(1, 3, false, 0, 5, 6, 100, 0, 0)
	if d == a {
		t.Fatalf("expected a different tile to stay separate")
	}

	// Noted vs unnoted of a noteable item: fresh pile.
	e1 := s.SpawnGroundItem(104, 1, true, 0, 5, 5, 100, 0, 0)
	e2 := s.SpawnGroundItem(104, 1, false, 0, 5, 5, 100, 0, 0)
	if e1 == e2 {
		t.Fatalf("expected noted and unnoted piles to stay separate")
	}
}

func TestMergeTakesLaterDespawnDeadline(t *testing.T) {
	deps := newTestDeps()
	s := NewGroundItemSystem(deps)

	a := s.SpawnGroundItem(1, 1, false, 0, 5, 5, 100, 0, 0)
	s.SpawnGroundItem(1, 1, false, 0, 5, 5, 50, 0, 0)
	if a.DespawnAt != 100 {
		t.Fatalf("expected later deadline 100 kept, got %d", a.DespawnAt)
	}

	// A permanent pile (0 = never) wins over any finite deadline.
	s.SpawnGroundItem(1, 1, false, 0, 5, 5, 0, 0, 0)
	if a.DespawnAt != 0 {
		t.Fatalf("expected permanent deadline to win, got %d", a.DespawnAt)
	}
}

func TestMergeExtendsRevealWindow(t *testing.T) {
	deps := newTestDeps()
	s := NewGroundItemSystem(deps)

	a := s.SpawnGroundItem(1, 1, false, 0, 5, 5, 0, 7, 0)
	if a.RevealAt != 300 {
		t.Fatalf("expected reveal at 300, got %d", a.RevealAt)
	}
	s.SpawnGroundItem(1, 1, false, 0, 5, 5, 0, 7, 40)
	if a.RevealAt != 317 {
		t.Fatalf("expected reveal extended by the fixed bonus to 317, got %d", a.RevealAt)
	}
}

func TestWorldSpawnPickupSchedulesRespawn(t *testing.T) {
	deps := newTestDeps()
	s := NewGroundItemSystem(deps)

	g := s.PlaceWorldSpawn(data.ItemSpawn{
		ID: 2, ItemID: 108, Amount: 1, Level: 0, X: 8, Y: 8, RespawnTicks: 40,
	})
	if g == nil {
		t.Fatalf("expected world spawn to place")
	}

	s.RemoveGroundItem(g.ID, event.RemovePickedUp, 100)
	if g.Present {
		t.Fatalf("expected spawn absent after pickup")
	}
	if deps.World.GroundItem(g.ID) == nil {
		t.Fatalf("expected world spawn record retained for respawn")
	}

	s.UpdateRespawns(139)
	if g.Present {
		t.Fatalf("expected spawn still absent one tick early")
	}
	s.UpdateRespawns(140)
	if !g.Present {
		t.Fatalf("expected spawn back at exactly pickup+respawn ticks")
	}
}

func TestRemovalEmitsEventBeforeSpatialDrop(t *testing.T) {
	deps := newTestDeps()
	s := NewGroundItemSystem(deps)
	g := s.SpawnGroundItem(1, 1, false, 0, 12, 12, 0, 0, 0)

	sawPosition := false
	deps.Bus.Subscribe(event.KindEntityRemoved, func(ev event.Event) {
		rm := ev.(event.EntityRemoved)
		// The record must still resolve while the event is in flight.
		if deps.World.GroundItem(rm.Ref.ID) == nil {
			t.Fatalf("expected item still resolvable during removal event")
		}
		if rm.X == 12 && rm.Y == 12 {
			sawPosition = true
		}
	})

	s.RemoveGroundItem(g.ID, event.RemoveDestroyed, 1)
	if !sawPosition {
		t.Fatalf("expected removal event to carry the last position")
	}
	if deps.World.GroundItem(g.ID) != nil {
		t.Fatalf("expected record deleted after the event")
	}
}
