package world

// Stat enumerates the combat stats every combatant carries.
type Stat uint8

const (
	StatHitpoints Stat = iota
	StatAccuracy
	StatStrength
	StatDefense
	StatMagic
	StatRange
	StatCount
)

func (s Stat) String() string {
	switch s {
	case StatHitpoints:
		return "hitpoints"
	case StatAccuracy:
		return "accuracy"
	case StatStrength:
		return "strength"
	case StatDefense:
		return "defense"
	case StatMagic:
		return "magic"
	case StatRange:
		return "range"
	default:
		return "stat?"
	}
}

// Stats holds per-stat current/base pairs. A stat is tracked as boosted only
// while current differs from base; the regeneration driver walks boosted
// stats back to base and clears the tag on convergence.
//
// Clamping: hitpoints floor at 0; every other stat floors at 1.
type Stats struct {
	base    [StatCount]int32
	cur     [StatCount]int32
	boosted [StatCount]bool
}

// NewStats initializes all stats at their base values.
func NewStats(base [StatCount]int32) Stats {
	return Stats{base: base, cur: base}
}

func (s *Stats) Base(st Stat) int32    { return s.base[st] }
func (s *Stats) Current(st Stat) int32 { return s.cur[st] }
func (s *Stats) IsBoosted(st Stat) bool {
	return s.boosted[st]
}

// SetCurrent sets a stat's current value, clamping to the stat's legal range
// and updating the boosted tag. Returns the clamped value actually stored.
func (s *Stats) SetCurrent(st Stat, v int32) int32 {
	floor := int32(1)
	if st == StatHitpoints {
		floor = 0
	}
	if v < floor {
		v = floor
	}
	// Boosting above base is allowed; only regen converges it back down.
	if st == StatHitpoints && v > s.base[st] {
		v = s.base[st]
	}
	s.cur[st] = v
	s.boosted[st] = v != s.base[st]
	return v
}

// Adjust shifts a stat's current value by delta (damage, drain, boost).
func (s *Stats) Adjust(st Stat, delta int32) int32 {
	return s.SetCurrent(st, s.cur[st]+delta)
}

// StepTowardBase moves a boosted stat one unit toward its base without
// overshooting. Returns the new current value and whether anything changed.
func (s *Stats) StepTowardBase(st Stat) (int32, bool) {
	if !s.boosted[st] {
		return s.cur[st], false
	}
	v := s.cur[st]
	if v < s.base[st] {
		v++
	} else {
		v--
	}
	s.cur[st] = v
	s.boosted[st] = v != s.base[st]
	return v, true
}

// BoostedStats returns the stats currently tracked as boosted, in stat order.
func (s *Stats) BoostedStats() []Stat {
	var out []Stat
	for st := Stat(0); st < StatCount; st++ {
		if s.boosted[st] {
			out = append(out, st)
		}
	}
	return out
}
