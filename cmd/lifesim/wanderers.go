package main

import (
	"math/rand"

	"github.com/hearthmod/attract/internal/engine"
	"github.com/hearthmod/attract/internal/voxel"
	"github.com/hearthmod/attract/internal/world"
	"go.uber.org/zap"
)

const (
	wanderInterval   = 600 // ticks between host spawn rolls
	wanderBaseChance = 0.25
	wanderMax        = 6
)

// wanderers is the demo host's own spawn pathway for independent traders.
// It is not driven by the lifecycle engine; it only asks the engine how
// much nearby commerce boosts its chance.
type wanderers struct {
	u    *voxel.Universe
	w    *voxel.World
	eng  *engine.Engine
	kind world.EntityKind
	rng  *rand.Rand
	log  *zap.Logger
}

func newWanderers(u *voxel.Universe, w *voxel.World, eng *engine.Engine, kind string, rng *rand.Rand, log *zap.Logger) *wanderers {
	return &wanderers{u: u, w: w, eng: eng, kind: world.EntityKind(kind), rng: rng, log: log}
}

func (h *wanderers) tick(tick int64) {
	if tick == 0 || tick%wanderInterval != 0 || h.u.Count(h.kind) >= wanderMax {
		return
	}
	m := h.eng.SpawnMultiplier(h.kind)
	if h.rng.Float64() >= min(wanderBaseChance*m, 1.0) {
		return
	}
	for attempt := 0; attempt < 8; attempt++ {
		x, z := h.rng.Intn(h.w.Size()), h.rng.Intn(h.w.Size())
		y, ok := h.w.SurfaceY(x, z)
		if !ok {
			continue
		}
		id, err := h.u.Place(h.kind, world.Coord{X: x, Y: y, Z: z})
		if err != nil {
			continue
		}
		h.log.Debug("wanderer arrived",
			zap.Stringer("entity", id), zap.Float64("multiplier", m))
		return
	}
}
