package system

// Phase defines execution ordering within a single tick. The scheduler runs
// registered systems in ascending phase order; within one tick, player
// movement always resolves before player combat, death processing always
// precedes delay processing, and nothing is wire-sent before PhaseOutput.
type Phase int

const (
	PhaseInput        Phase = iota // drain session packet queues
	PhaseDeath                     // players/NPCs that hit 0 hp last tick
	PhaseDelay                     // windup/stun countdowns
	PhaseAggro                     // NPC target acquisition
	PhasePlayerMove                // player pathing and movement
	PhasePlayerCombat              // player-initiated swings
	PhaseNpcMove                   // NPC pathing, chase, wander
	PhaseNpcCombat                 // NPC-initiated swings
	PhaseRespawn                   // corpse removal + NPC respawn timers
	PhaseEnvironment               // world-object resource respawn
	PhaseSkilling                  // harvest/skilling activity ticks
	PhaseItems                     // ground-item respawn/reveal/despawn
	PhaseDayNight                  // world clock
	PhaseRegen                     // boosted-stat convergence
	PhaseShops                     // shop restocking
	PhaseEnforce                   // idle timeout + ban sweep
	PhaseOutput                    // swap + flush outgoing queues
	PhasePersist                   // dirty-player batch save
	PhaseCleanup                   // destroy queued sessions/entities
)

// System is implemented by every per-tick subsystem.
type System interface {
	Phase() Phase
	Update(tick int64)
}
