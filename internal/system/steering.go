package system

import (
	"bytes"
	"math"
	"slices"

	coresys "github.com/hearthmod/attract/internal/core/system"
	"github.com/hearthmod/attract/internal/core/event"
	"github.com/hearthmod/attract/internal/data"
	"github.com/hearthmod/attract/internal/placement"
	"github.com/hearthmod/attract/internal/world"
	"go.uber.org/zap"
)

// SteeringSystem draws entities the engine did not create (wandering
// merchants and the like) toward the nearest active attractor they have not
// visited yet. It never creates or tracks entities; it only moves them and
// records visits. Phase 2 (Update), after spawning.
type SteeringSystem struct {
	state         *world.State
	host          world.Entities
	owners        world.Owners
	profiles      *data.ProfileTable
	searcher      *placement.Searcher
	streams       *Streams
	bus           *event.Bus
	stats         *Stats
	ground        groundSets
	log           *zap.Logger
	interval      int64
	pruneInterval int64
}

func NewSteeringSystem(ws *world.State, host world.Entities, owners world.Owners, profiles *data.ProfileTable,
	searcher *placement.Searcher, streams *Streams, bus *event.Bus, stats *Stats, log *zap.Logger,
	intervalTicks, pruneIntervalTicks int64) *SteeringSystem {
	return &SteeringSystem{
		state:         ws,
		host:          host,
		owners:        owners,
		profiles:      profiles,
		searcher:      searcher,
		streams:       streams,
		bus:           bus,
		stats:         stats,
		ground:        make(groundSets),
		log:           log,
		interval:      intervalTicks,
		pruneInterval: pruneIntervalTicks,
	}
}

func (s *SteeringSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *SteeringSystem) Update(tick int64) {
	if s.pruneInterval > 0 && tick%s.pruneInterval == 0 {
		s.pruneVisited()
	}
	if tick%s.interval != 0 {
		return
	}
	for _, p := range s.profiles.All() {
		if p.Steering.Enabled {
			s.steerProfile(tick, p)
		}
	}
}

func (s *SteeringSystem) pruneVisited() {
	n := s.state.Visited().Prune(func(id world.EntityID) bool {
		_, ok := s.host.Lookup(id)
		return ok
	})
	if n > 0 {
		s.log.Debug("visited sets pruned", zap.Int("entities", n))
	}
}

type steerTarget struct {
	id     world.AttractorID
	pos    world.Coord
	center world.Vec3
}

func (s *SteeringSystem) steerProfile(tick int64, p *data.KindProfile) {
	st := p.Steering
	var targets []steerTarget
	for _, a := range s.state.Attractors() {
		if s.profiles.ForAttractorKind(a.Kind) != p || !s.owners.IsActivated(a.ID) {
			continue
		}
		pos, ok := s.owners.Position(a.ID)
		if !ok {
			continue
		}
		targets = append(targets, steerTarget{id: a.ID, pos: pos, center: pos.Center()})
	}
	if len(targets) == 0 {
		return
	}

	candidates := make(map[world.EntityID]world.EntityRef)
	for _, t := range targets {
		for _, ref := range s.host.Nearby(st.EntityKind, t.center, st.AttractionRadius) {
			if s.state.Registry().Has(ref.ID) {
				continue
			}
			candidates[ref.ID] = ref
		}
	}
	refs := make([]world.EntityRef, 0, len(candidates))
	for _, ref := range candidates {
		refs = append(refs, ref)
	}
	slices.SortFunc(refs, func(a, b world.EntityRef) int {
		return bytes.Compare(a.ID[:], b.ID[:])
	})

	stats := s.stats.kind(st.EntityKind)
	for _, ref := range refs {
		target, dist, ok := s.nearestUnvisited(ref, targets)
		if !ok {
			continue
		}
		// Stand spots may sit a few blocks above or below the structure.
		if ref.Pos.HorizDist(target.center) <= st.ArriveDistance {
			s.state.Visited().Mark(ref.ID, target.id)
			stats.Arrived++
			event.Emit(s.bus, event.AttractorVisited{Tick: tick, EntityID: ref.ID, Attractor: target.id})
			s.log.Debug("entity reached attractor",
				zap.Stringer("entity", ref.ID),
				zap.Int64("attractor", int64(target.id)))
			continue
		}
		if dist > st.AttractionRadius {
			continue
		}
		s.steer(p, ref, target)
		stats.Steered++
	}
}

func (s *SteeringSystem) nearestUnvisited(ref world.EntityRef, targets []steerTarget) (steerTarget, float64, bool) {
	var (
		best     steerTarget
		bestDist float64
		found    bool
	)
	for _, t := range targets {
		if s.state.Visited().Has(ref.ID, t.id) {
			continue
		}
		d := ref.Pos.Dist(t.center)
		if !found || d < bestDist {
			best, bestDist, found = t, d, true
		}
	}
	return best, bestDist, found
}

// steer picks a standing spot around the attractor and asks the host to path
// there, falling back to a straight move when no path can be planned.
func (s *SteeringSystem) steer(p *data.KindProfile, ref world.EntityRef, target steerTarget) {
	goal := approach(target, ref.Pos)
	ground := s.ground.get(p)
	if len(ground) > 0 {
		stand, ok := s.searcher.Search(s.streams.Get(p.Name), placement.Request{
			Reference:   target.pos,
			Radius:      p.Steering.StandRadius,
			Ground:      ground,
			Kind:        p.Steering.EntityKind,
			MinDistance: data.StandMinDistance,
		})
		if ok {
			goal = stand
		}
	}
	if !s.host.PathTo(ref.ID, goal) {
		s.host.MoveToward(ref.ID, goal.Center())
		s.log.Debug("no path, moving directly",
			zap.Stringer("entity", ref.ID), zap.Stringer("goal", goal))
	}
}

// approach is the cell just clear of the structure on the side facing from.
func approach(target steerTarget, from world.Vec3) world.Coord {
	dx, dz := from.X-target.center.X, from.Z-target.center.Z
	far := math.Max(math.Abs(dx), math.Abs(dz))
	if far < 1e-9 {
		dx, far = 1, 1
	}
	scale := data.StandMinDistance / far
	return target.pos.Add(int(math.Round(dx*scale)), 0, int(math.Round(dz*scale)))
}
