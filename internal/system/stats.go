package system

import "github.com/hearthmod/attract/internal/world"

// KindStats counts lifecycle outcomes for one entity kind.
type KindStats struct {
	Attractors     int // filled in by snapshot callers
	Tracked        int
	Spawned        int64
	Graduated      int64 // Stay dispositions executed
	Departed       int64 // Leave dispositions executed
	Pruned         int64
	SearchFailures int64
	CreateFailures int64
	Steered        int64
	Arrived        int64
}

// Stats is shared by every loop of one engine. Game loop only.
type Stats struct {
	byKind map[world.EntityKind]*KindStats
}

func NewStats() *Stats {
	return &Stats{byKind: make(map[world.EntityKind]*KindStats)}
}

func (s *Stats) kind(k world.EntityKind) *KindStats {
	ks := s.byKind[k]
	if ks == nil {
		ks = &KindStats{}
		s.byKind[k] = ks
	}
	return ks
}

// Snapshot copies the counters.
func (s *Stats) Snapshot() map[world.EntityKind]KindStats {
	out := make(map[world.EntityKind]KindStats, len(s.byKind))
	for k, v := range s.byKind {
		out[k] = *v
	}
	return out
}
