package rules

import "github.com/hearthmod/attract/internal/world"

// DecideDisposition rolls the terminal outcome for a newly tracked entity.
// Called exactly once per entity; the result is stored and never re-rolled.
func DecideDisposition(rng world.Rand, stayChance float64) world.Disposition {
	if rng.Float64() < stayChance {
		return world.Stay
	}
	return world.Leave
}
