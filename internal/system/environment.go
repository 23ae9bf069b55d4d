package system

import (
	coresys "github.com/mistveil/server/internal/core/system"
	"github.com/mistveil/server/internal/world"
)

// EnvironmentSystem replenishes depleted harvestable world entities once
// their resource-respawn deadline passes.
type EnvironmentSystem struct {
	deps *Deps
}

func NewEnvironmentSystem(deps *Deps) *EnvironmentSystem {
	return &EnvironmentSystem{deps: deps}
}

func (s *EnvironmentSystem) Phase() coresys.Phase { return coresys.PhaseEnvironment }

func (s *EnvironmentSystem) Update(tick int64) {
	s.deps.World.AllObjects(func(o *world.ObjectInfo) {
		if !o.Depleted() || o.RespawnAt == 0 || o.RespawnAt > tick {
			return
		}
		o.Resources = o.MaxResources
		o.RespawnAt = 0
	})
}
