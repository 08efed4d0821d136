package rules

// Enhancement scales a host spawn chance by the number of qualifying
// attractors of another kind.
type Enhancement struct {
	Step          float64 // added per counted attractor
	CapCount      int     // counted attractors beyond this are ignored
	MaxMultiplier float64
}

// Multiplier returns 1.0 when no qualifying attractor exists. The first
// qualifying attractor is the prerequisite and adds nothing; every further
// one adds Step, up to CapCount of them, and the result never exceeds
// MaxMultiplier.
func (e Enhancement) Multiplier(qualifying int) float64 {
	if qualifying <= 0 {
		return 1.0
	}
	return e.Apply(BonusCount(qualifying))
}

// Apply evaluates the linear formula for an already-derived bonus count.
func (e Enhancement) Apply(bonus int) float64 {
	if bonus <= 0 {
		return 1.0
	}
	m := 1.0 + e.Step*float64(min(bonus, e.CapCount))
	if e.MaxMultiplier > 0 && m > e.MaxMultiplier {
		m = e.MaxMultiplier
	}
	if m < 1.0 {
		m = 1.0
	}
	return m
}

// BonusCount is the number of qualifying attractors beyond the prerequisite.
func BonusCount(qualifying int) int {
	if qualifying <= 1 {
		return 0
	}
	return qualifying - 1
}
