package system

import (
	"github.com/mistveil/server/internal/core/entity"
	"github.com/mistveil/server/internal/core/event"
	coresys "github.com/mistveil/server/internal/core/system"
	"github.com/mistveil/server/internal/world"
)

// RespawnSystem walks dead NPCs through corpse linger and respawn.
type RespawnSystem struct {
	deps *Deps
}

func NewRespawnSystem(deps *Deps) *RespawnSystem {
	return &RespawnSystem{deps: deps}
}

func (s *RespawnSystem) Phase() coresys.Phase { return coresys.PhaseRespawn }

func (s *RespawnSystem) Update(_ int64) {
	for _, n := range s.deps.World.NpcList() {
		if !n.Dead {
			continue
		}
		if n.CorpseTimer > 0 {
			n.CorpseTimer--
			if n.CorpseTimer == 0 {
				// Corpse gone from clients; respawn countdown begins.
				s.deps.Bus.Emit(event.EntityRemoved{
					Ref:    entity.NpcRef(n.ID),
					Level:  n.Level,
					X:      n.X,
					Y:      n.Y,
					Reason: event.RemoveDied,
				})
				n.RespawnTimer = n.RespawnTicks
			}
			continue
		}
		if n.RespawnTimer > 0 {
			n.RespawnTimer--
			if n.RespawnTimer == 0 {
				s.respawn(n)
			}
		}
	}
}

// respawn resets the NPC at its spawn anchor with full stats. If another
// living NPC already stands on the anchor tile, the spawn shifts one tile
// east so the two never stack exactly.
func (s *RespawnSystem) respawn(n *world.NpcInfo) {
	x, y := n.SpawnX, n.SpawnY
	if s.anchorOccupied(n) {
		x++
	}
	n.Level = n.SpawnLevel
	n.X = x
	n.Y = y
	n.Dead = false
	n.AggroTarget = 0
	n.AggroCooldown = 0
	n.CombatTimer = 0
	n.LastAttacker = 0
	if def := s.deps.Npcs.Get(n.DefID); def != nil {
		n.Stats = world.NewStats([world.StatCount]int32{
			world.StatHitpoints: def.Hitpoints,
			world.StatAccuracy:  def.Accuracy,
			world.StatStrength:  def.Strength,
			world.StatDefense:   def.Defense,
			world.StatMagic:     def.Magic,
			world.StatRange:     def.Range,
		})
	}

	s.deps.World.NpcRespawned(n)
	s.deps.Bus.Emit(event.EntitySpawned{
		Ref:   entity.NpcRef(n.ID),
		Level: n.Level,
		X:     n.X,
		Y:     n.Y,
	})
}

func (s *RespawnSystem) anchorOccupied(n *world.NpcInfo) bool {
	for _, other := range s.deps.World.NpcsNear(n.SpawnLevel, n.SpawnX, n.SpawnY) {
		if other.ID != n.ID && other.X == n.SpawnX && other.Y == n.SpawnY {
			return true
		}
	}
	return false
}
