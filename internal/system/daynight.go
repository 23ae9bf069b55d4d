package system

import (
	coresys "github.com/mistveil/server/internal/core/system"
	"github.com/mistveil/server/internal/net/packet"
)

// DayNightSystem drives the world clock. Each full cycle span flips day to
// night and back, broadcast to every client.
type DayNightSystem struct {
	deps      *Deps
	tickCount int
	night     bool
}

func NewDayNightSystem(deps *Deps) *DayNightSystem {
	return &DayNightSystem{deps: deps}
}

func (s *DayNightSystem) Phase() coresys.Phase { return coresys.PhaseDayNight }

// Night reports whether it is currently night.
func (s *DayNightSystem) Night() bool { return s.night }

func (s *DayNightSystem) Update(_ int64) {
	s.tickCount++
	if s.tickCount < s.deps.Tuning.DayNightTicks {
		return
	}
	s.tickCount = 0
	s.night = !s.night
	s.deps.Out.QueueBroadcast(packet.S_DAY_NIGHT, dayNightMsg(s.night))
}
