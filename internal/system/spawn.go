package system

import (
	coresys "github.com/hearthmod/attract/internal/core/system"
	"github.com/hearthmod/attract/internal/core/event"
	"github.com/hearthmod/attract/internal/data"
	"github.com/hearthmod/attract/internal/placement"
	"github.com/hearthmod/attract/internal/rules"
	"github.com/hearthmod/attract/internal/world"
	"go.uber.org/zap"
)

// ChanceFunc yields the per-check spawn chance of a profile for this sweep.
type ChanceFunc func(p *data.KindProfile) float64

// BaseChance uses the profile's configured chance unchanged.
func BaseChance(p *data.KindProfile) float64 { return p.Spawn.SpawnChance }

// SpawnDeps groups what the spawn loop reads and writes.
type SpawnDeps struct {
	State    *world.State
	Owners   world.Owners
	Profiles *data.ProfileTable
	Searcher *placement.Searcher
	Factory  *world.Factory
	Streams  *Streams
	Bus      *event.Bus
	Stats    *Stats
	Chance   ChanceFunc // nil = BaseChance
}

// SpawnSystem walks every registered attractor each SpawnInterval ticks and
// creates at most one entity per attractor per sweep. Phase 2 (Update).
//
// Per attractor: gate (activation, cap, cooldown, chance), position search
// near the structure, entity creation, disposition roll, tracking. Any
// failure ends that attractor's attempt for this sweep; nothing is retried
// until the next one.
type SpawnSystem struct {
	deps     SpawnDeps
	ground   groundSets
	log      *zap.Logger
	interval int64
}

func NewSpawnSystem(deps SpawnDeps, log *zap.Logger, intervalTicks int64) *SpawnSystem {
	if deps.Chance == nil {
		deps.Chance = BaseChance
	}
	return &SpawnSystem{
		deps:     deps,
		ground:   make(groundSets),
		log:      log,
		interval: intervalTicks,
	}
}

func (s *SpawnSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *SpawnSystem) Update(tick int64) {
	if tick%s.interval != 0 {
		return
	}
	chances := make(map[string]float64)
	for _, a := range s.deps.State.Attractors() {
		p := s.deps.Profiles.ForAttractorKind(a.Kind)
		if p == nil || !p.Spawn.Enabled {
			continue
		}
		chance, ok := chances[p.Name]
		if !ok {
			chance = s.deps.Chance(p)
			chances[p.Name] = chance
		}
		s.trySpawn(tick, a, p, chance)
	}
}

func (s *SpawnSystem) trySpawn(tick int64, a *world.Attractor, p *data.KindProfile, chance float64) {
	rng := s.deps.Streams.Get(p.Name)
	cand := rules.Candidate{
		Activated:     s.deps.Owners.IsActivated(a.ID),
		Count:         s.deps.State.CountByOwner(a.ID),
		Cap:           a.EffectiveCap(p.Spawn.SpawnCap),
		LastSpawnTick: a.LastSpawnTick,
		CooldownTicks: p.Spawn.CooldownTicks,
		Chance:        chance,
	}
	if !rules.CanSpawn(cand, tick, rng) {
		return
	}

	ref, ok := s.deps.Owners.Position(a.ID)
	if !ok {
		s.log.Debug("attractor has no position",
			zap.Int64("attractor", int64(a.ID)))
		return
	}
	stats := s.deps.Stats.kind(p.EntityKind)

	pos, ok := s.deps.Searcher.Search(rng, placement.Request{
		Reference:     ref,
		Radius:        p.Spawn.SearchRadius,
		Ground:        s.ground.get(p),
		MinSeparation: p.Spawn.MinSeparation,
		Kind:          p.EntityKind,
	})
	if !ok {
		stats.SearchFailures++
		s.log.Debug("no spawn position found",
			zap.String("kind", string(p.EntityKind)),
			zap.Int64("attractor", int64(a.ID)),
			zap.Stringer("near", ref))
		return
	}

	id, err := s.deps.Factory.Create(world.SpawnSpec{
		Kind:       p.EntityKind,
		Owner:      a.ID,
		Variants:   p.Spawn.Variants,
		Attributes: p.Spawn.Attributes,
	}, pos, rng)
	if err != nil {
		stats.CreateFailures++
		s.log.Debug("entity creation failed",
			zap.Int64("attractor", int64(a.ID)), zap.Error(err))
		return
	}

	d := rules.DecideDisposition(rng, p.Spawn.StayChance)
	if err := s.deps.State.Track(id, a.ID, tick, d, p.Spawn.LifetimeTicks); err != nil {
		stats.CreateFailures++
		s.log.Warn("spawned entity not tracked, removing it",
			zap.Stringer("entity", id), zap.Error(err))
		s.deps.Factory.Discard(id)
		return
	}
	s.deps.State.MarkSpawned(a.ID, tick)
	stats.Spawned++

	event.Emit(s.deps.Bus, event.EntitySpawned{
		Tick:        tick,
		EntityID:    id,
		Kind:        p.EntityKind,
		Owner:       a.ID,
		Pos:         pos,
		Disposition: d,
	})
	s.log.Debug("entity spawned",
		zap.String("kind", string(p.EntityKind)),
		zap.Stringer("entity", id),
		zap.Int64("attractor", int64(a.ID)),
		zap.Stringer("pos", pos),
		zap.Stringer("disposition", d))
}

// groundSets caches each profile's whitelist.
type groundSets map[string]placement.GroundSet

func (g groundSets) get(p *data.KindProfile) placement.GroundSet {
	set, ok := g[p.Name]
	if !ok {
		set = placement.NewGroundSet(p.Spawn.GroundWhitelist...)
		g[p.Name] = set
	}
	return set
}
