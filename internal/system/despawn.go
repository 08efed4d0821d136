package system

import (
	coresys "github.com/hearthmod/attract/internal/core/system"
	"github.com/hearthmod/attract/internal/core/event"
	"github.com/hearthmod/attract/internal/data"
	"github.com/hearthmod/attract/internal/world"
	"go.uber.org/zap"
)

// DespawnSystem executes dispositions once a tracked entity's lifetime is
// over. Phase 3 (Expire).
//
//	Stay:  untrack, owner OnEntityJoined; the entity remains in the world.
//	Leave: untrack, departure cue, destroy, owner OnEntityLeft.
//
// Rows whose entity cannot be resolved take the prune path instead. An
// attractor holding more rows than its effective cap (the cap was lowered,
// or a stored block was restored under a smaller profile cap) loses its
// newest rows early through the Leave path.
type DespawnSystem struct {
	state     *world.State
	host      world.Entities
	profiles  *data.ProfileTable
	resolver  entityResolver
	notify    ownerNotifier
	bus       *event.Bus
	stats     *Stats
	log       *zap.Logger
	interval  int64
	logWindow int64
}

func NewDespawnSystem(ws *world.State, host world.Entities, owners world.Owners, profiles *data.ProfileTable,
	bus *event.Bus, stats *Stats, log *zap.Logger, intervalTicks, deepIntervalTicks, logWindowTicks int64) *DespawnSystem {
	return &DespawnSystem{
		state:     ws,
		host:      host,
		profiles:  profiles,
		resolver:  entityResolver{res: host, deepInterval: deepIntervalTicks},
		notify:    ownerNotifier{state: ws, owners: owners},
		bus:       bus,
		stats:     stats,
		log:       log,
		interval:  intervalTicks,
		logWindow: logWindowTicks,
	}
}

func (s *DespawnSystem) Phase() coresys.Phase { return coresys.PhaseExpire }

func (s *DespawnSystem) Update(tick int64) {
	if tick%s.interval != 0 {
		return
	}
	for _, a := range s.state.Attractors() {
		s.EnforceCap(tick, a.ID)
	}
	for _, t := range s.state.Registry().All() {
		ref, ok := s.resolver.resolve(t.EntityID, tick)
		if !ok {
			if row, removed := s.state.Untrack(t.EntityID); removed {
				reportPruned(s.state, s.profiles, s.notify, s.bus, s.stats, s.log, tick, row)
			}
			continue
		}

		remaining := t.ExpiresAt() - tick
		if remaining > 0 {
			if remaining <= s.logWindow {
				s.log.Debug("tracked entity nearing expiry",
					zap.Stringer("entity", t.EntityID),
					zap.Stringer("disposition", t.Disposition),
					zap.Int64("remaining", remaining))
			}
			continue
		}

		switch t.Disposition {
		case world.Stay:
			s.graduate(tick, t, ref)
		case world.Leave:
			s.depart(tick, t, ref)
		}
	}
}

// EnforceCap expires the attractor's newest rows beyond its effective cap
// and returns how many were removed. Attractors without a profile are left
// alone; their rows already expire at once.
func (s *DespawnSystem) EnforceCap(tick int64, id world.AttractorID) int {
	a, ok := s.state.Attractor(id)
	if !ok {
		return 0
	}
	p := s.profiles.ForAttractorKind(a.Kind)
	if p == nil {
		return 0
	}
	limit := a.EffectiveCap(p.Spawn.SpawnCap)
	over := s.state.Overflow(id, limit)
	for _, t := range over {
		ref, ok := s.resolver.resolve(t.EntityID, tick)
		if !ok {
			if row, removed := s.state.Untrack(t.EntityID); removed {
				reportPruned(s.state, s.profiles, s.notify, s.bus, s.stats, s.log, tick, row)
			}
			continue
		}
		s.depart(tick, t, ref)
	}
	if len(over) > 0 {
		s.log.Info("attractor over cap, newest entities sent away",
			zap.Int64("attractor", int64(id)),
			zap.Int("cap", limit),
			zap.Int("removed", len(over)))
	}
	return len(over)
}

func (s *DespawnSystem) graduate(tick int64, t world.Tracked, ref world.EntityRef) {
	kind := kindOf(s.state, s.profiles, t.Owner, ref)
	s.state.Untrack(t.EntityID)
	joined := s.notify.joined(t.Owner, t.EntityID)
	s.stats.kind(kind).Graduated++
	event.Emit(s.bus, event.EntityGraduated{Tick: tick, EntityID: t.EntityID, Owner: t.Owner})
	s.log.Debug("entity stays",
		zap.String("kind", string(kind)),
		zap.Stringer("entity", t.EntityID),
		zap.Int64("attractor", int64(t.Owner)),
		zap.Bool("owner_notified", joined))
}

func (s *DespawnSystem) depart(tick int64, t world.Tracked, ref world.EntityRef) {
	kind := kindOf(s.state, s.profiles, t.Owner, ref)
	s.state.Untrack(t.EntityID)
	event.Emit(s.bus, event.DepartureCue{
		Tick:     tick,
		EntityID: t.EntityID,
		Kind:     ref.Kind,
		Pos:      ref.Pos,
		World:    ref.World,
	})
	if !s.host.Destroy(t.EntityID) {
		s.log.Debug("departing entity already gone", zap.Stringer("entity", t.EntityID))
	}
	s.notify.left(t.Owner, t.EntityID)
	s.stats.kind(kind).Departed++
	s.log.Debug("entity leaves",
		zap.String("kind", string(kind)),
		zap.Stringer("entity", t.EntityID),
		zap.Stringer("at", ref.Pos))
}
