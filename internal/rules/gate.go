// Package rules holds the pure decisions of the lifecycle engine: whether an
// attractor may spawn, which disposition a new entity gets, and how much
// nearby commerce boosts a host spawn chance.
package rules

import "github.com/hearthmod/attract/internal/world"

// Candidate is the per-cycle view of one attractor the gate decides on.
type Candidate struct {
	Activated     bool
	Count         int
	Cap           int
	LastSpawnTick int64 // world.NeverSpawned if none yet
	CooldownTicks int64
	Chance        float64
}

// CanSpawn checks activation, cap, cooldown, then chance, cheapest first.
// The RNG is only consumed when every deterministic check passed.
func CanSpawn(c Candidate, tick int64, rng world.Rand) bool {
	if !c.Activated {
		return false
	}
	if c.Count >= c.Cap {
		return false
	}
	if c.LastSpawnTick != world.NeverSpawned && tick-c.LastSpawnTick < c.CooldownTicks {
		return false
	}
	return rng.Float64() < c.Chance
}
