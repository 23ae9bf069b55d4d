package system

import (
	"github.com/mistveil/server/internal/core/entity"
	"github.com/mistveil/server/internal/core/event"
	coresys "github.com/mistveil/server/internal/core/system"
	"github.com/mistveil/server/internal/net/packet"
	"github.com/mistveil/server/internal/world"
	"go.uber.org/zap"
)

// Player respawn point.
const (
	homeLevel int16 = 0
	homeX     int32 = 3222
	homeY     int32 = 3218
)

// DeathSystem settles everyone who reached zero hitpoints since the last
// pass. It runs first after input so nothing else acts on a corpse this tick.
type DeathSystem struct {
	deps     *Deps
	skilling *SkillingSystem
	ground   *GroundItemSystem
}

func NewDeathSystem(deps *Deps, skilling *SkillingSystem, ground *GroundItemSystem) *DeathSystem {
	return &DeathSystem{deps: deps, skilling: skilling, ground: ground}
}

func (s *DeathSystem) Phase() coresys.Phase { return coresys.PhaseDeath }

func (s *DeathSystem) Update(tick int64) {
	s.deps.World.AllPlayers(func(p *world.PlayerInfo) {
		if !p.Dead && p.Stats.Current(world.StatHitpoints) == 0 {
			s.playerDied(p)
		}
	})
	for _, n := range s.deps.World.NpcList() {
		if !n.Dead && n.Stats.Current(world.StatHitpoints) == 0 {
			s.npcDied(n, tick)
		}
	}
}

// playerDied resets the player and sends them home. Death is instantaneous
// from the simulation's view: the corpse never occupies a tile.
func (s *DeathSystem) playerDied(p *world.PlayerInfo) {
	ref := entity.PlayerRef(p.UserID)

	s.deps.Delays.Clear(p.UserID)
	s.skilling.StopHarvest(p.UserID)
	p.ClearPath()
	p.Target = 0
	s.deps.FSM.Forget(ref)

	fromX, fromY := p.X, p.Y
	p.Stats = world.NewStats([world.StatCount]int32{
		world.StatHitpoints: p.Stats.Base(world.StatHitpoints),
		world.StatAccuracy:  p.Stats.Base(world.StatAccuracy),
		world.StatStrength:  p.Stats.Base(world.StatStrength),
		world.StatDefense:   p.Stats.Base(world.StatDefense),
		world.StatMagic:     p.Stats.Base(world.StatMagic),
		world.StatRange:     p.Stats.Base(world.StatRange),
	})
	s.deps.World.MovePlayer(p, homeLevel, homeX, homeY)
	p.Dirty = true

	s.deps.Out.QueueFor(p.UserID, packet.S_MESSAGE, messageMsg("Oh dear, you are dead!"))
	s.deps.Bus.Emit(event.HitpointsChanged{
		Ref:     ref,
		Current: p.Stats.Current(world.StatHitpoints),
		Base:    p.Stats.Base(world.StatHitpoints),
	})
	s.deps.Bus.Emit(event.EntityMoved{
		Ref:   ref,
		Level: homeLevel,
		FromX: fromX, FromY: fromY,
		ToX: homeX, ToY: homeY,
	})

	s.deps.Log.Debug("player died", zap.String("name", p.Name))
}

// npcDied starts the corpse phase and drops loot for the killer. The spatial
// entry is released immediately; the record stays for the corpse and respawn
// timers. Loot belongs to the last attacker while its private window lasts.
func (s *DeathSystem) npcDied(n *world.NpcInfo, tick int64) {
	n.Dead = true
	n.AggroTarget = 0
	n.CombatTimer = 0
	n.CorpseTimer = s.deps.Tuning.CorpseLingerTicks
	s.deps.World.NpcDied(n)
	s.deps.FSM.Forget(entity.NpcRef(n.ID))

	if def := s.deps.Npcs.Get(n.DefID); def != nil && def.DropItemID != 0 {
		amount := def.DropAmount
		if amount < 1 {
			amount = 1
		}
		s.ground.SpawnGroundItem(
			def.DropItemID, amount, false,
			n.Level, n.X, n.Y,
			s.deps.Tuning.DropDespawnTicks, n.LastAttacker,
			tick,
		)
	}
	n.LastAttacker = 0
}
