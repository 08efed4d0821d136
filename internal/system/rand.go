package system

import (
	"math/rand"

	"github.com/hearthmod/attract/internal/rules"
)

// Streams hands out one seeded RNG per named stream (one per kind profile),
// so every kind's rolls are reproducible from the world seed alone.
type Streams struct {
	seed    int64
	streams map[string]*rand.Rand
}

func NewStreams(worldSeed int64) *Streams {
	return &Streams{seed: worldSeed, streams: make(map[string]*rand.Rand)}
}

// Get returns the stream for name, creating it on first use.
func (s *Streams) Get(name string) *rand.Rand {
	r, ok := s.streams[name]
	if !ok {
		r = rand.New(rand.NewSource(rules.DeriveSeed(s.seed, name)))
		s.streams[name] = r
	}
	return r
}
