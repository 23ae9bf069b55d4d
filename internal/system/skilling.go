package system

import (
	"github.com/mistveil/server/internal/core/entity"
	"github.com/mistveil/server/internal/core/fsm"
	coresys "github.com/mistveil/server/internal/core/system"
	"github.com/mistveil/server/internal/net/packet"
	"github.com/mistveil/server/internal/world"
)

// swingTicks is one harvest attempt's windup.
const swingTicks = 4

// SkillingSystem runs harvest loops against harvestable world entities. Each
// swing is one interruptible delay; a completed swing yields items, consumes
// a resource, and chains the next swing while resources remain. Moving or
// attacking interrupts the loop.
type SkillingSystem struct {
	deps   *Deps
	ground *GroundItemSystem
	jobs   map[int32]int32 // user id -> object instance id
	tick   int64
}

func NewSkillingSystem(deps *Deps, ground *GroundItemSystem) *SkillingSystem {
	return &SkillingSystem{
		deps:   deps,
		ground: ground,
		jobs:   make(map[int32]int32),
	}
}

func (s *SkillingSystem) Phase() coresys.Phase { return coresys.PhaseSkilling }

// Update validates running jobs: if the object vanished or depleted since
// the last swing started, the loop stops early instead of completing a swing
// against nothing.
func (s *SkillingSystem) Update(tick int64) {
	s.tick = tick
	for userID, objectID := range s.jobs {
		o := s.deps.World.Object(objectID)
		if o == nil || o.Depleted() {
			s.stop(userID)
		}
	}
}

// BeginHarvest starts or restarts the harvest loop for a player.
func (s *SkillingSystem) BeginHarvest(p *world.PlayerInfo, o *world.ObjectInfo, tick int64) {
	s.tick = tick
	if !o.Harvestable {
		return
	}
	if o.Depleted() {
		s.deps.Out.QueueFor(p.UserID, packet.S_MESSAGE, messageMsg("There is nothing left to gather."))
		return
	}
	if s.jobs[p.UserID] == o.ID {
		return // already swinging at this object
	}
	if kind, ok := s.deps.Delays.Active(p.UserID); ok {
		if kind == DelayBlocking {
			return
		}
		s.deps.Delays.Interrupt(p.UserID)
	}
	p.ClearPath()
	p.Target = 0
	s.jobs[p.UserID] = o.ID
	s.startSwing(p.UserID, o.ID)
}

// StopHarvest ends the loop without touching the active delay. Callers that
// interrupt the delay themselves (movement, attack) use this; the delay's
// interrupt hook also routes here.
func (s *SkillingSystem) StopHarvest(userID int32) {
	delete(s.jobs, userID)
}

func (s *SkillingSystem) startSwing(userID, objectID int32) {
	ok := s.deps.Delays.Start(userID, DelayRequest{
		Kind:      DelayInterruptible,
		Ticks:     swingTicks,
		TempState: fsm.StateDelayed,
		// Chained swings keep the delayed state; restoring between swings
		// would flicker the player back to idle every few ticks.
		SkipRestore: true,
		OnComplete:  func() { s.completeSwing(userID, objectID) },
		OnInterrupt: func() { s.StopHarvest(userID) },
	})
	if !ok {
		s.stop(userID)
	}
}

func (s *SkillingSystem) completeSwing(userID, objectID int32) {
	if s.jobs[userID] != objectID {
		return // stopped while the swing was mid-air
	}
	p := s.deps.World.PlayerByUserID(userID)
	o := s.deps.World.Object(objectID)
	if p == nil || p.Dead || o == nil || o.Depleted() {
		s.stop(userID)
		return
	}
	def := s.deps.Objects.Get(o.DefID)
	if def == nil || def.YieldItemID == 0 {
		s.stop(userID)
		return
	}

	yield := int32(1)
	if s.deps.Lua != nil {
		yield = int32(s.deps.Lua.HarvestYield(o.DefID, int(p.Stats.Current(world.StatStrength))))
	}

	o.Resources--
	s.ground.SpawnGroundItem(
		def.YieldItemID, yield, false,
		p.Level, p.X, p.Y,
		s.deps.Tuning.DropDespawnTicks, p.UserID,
		s.tick,
	)

	if o.Depleted() {
		o.RespawnAt = s.tick + int64(o.RespawnTicks)
		s.deps.Out.QueueFor(userID, packet.S_MESSAGE, messageMsg("You have gathered everything here."))
		s.stop(userID)
		return
	}
	s.startSwing(userID, objectID)
}

// stop ends the loop and returns the player to idle.
func (s *SkillingSystem) stop(userID int32) {
	delete(s.jobs, userID)
	s.deps.FSM.SetState(entity.PlayerRef(userID), fsm.StateIdle)
}
