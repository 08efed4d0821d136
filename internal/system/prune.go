package system

import (
	coresys "github.com/hearthmod/attract/internal/core/system"
	"github.com/hearthmod/attract/internal/core/event"
	"github.com/hearthmod/attract/internal/data"
	"github.com/hearthmod/attract/internal/world"
	"go.uber.org/zap"
)

// PruneSystem drops tracked rows whose entities vanished (killed, unloaded
// with their chunk, removed by another mod) right before the spawn sweep, so
// cap checks never count ghosts. Phase 1 (Prune).
type PruneSystem struct {
	state    *world.State
	profiles *data.ProfileTable
	resolver entityResolver
	notify   ownerNotifier
	bus      *event.Bus
	stats    *Stats
	log      *zap.Logger
	interval int64
}

func NewPruneSystem(ws *world.State, owners world.Owners, res world.Resolver, profiles *data.ProfileTable,
	bus *event.Bus, stats *Stats, log *zap.Logger, intervalTicks, deepIntervalTicks int64) *PruneSystem {
	return &PruneSystem{
		state:    ws,
		profiles: profiles,
		resolver: entityResolver{res: res, deepInterval: deepIntervalTicks},
		notify:   ownerNotifier{state: ws, owners: owners},
		bus:      bus,
		stats:    stats,
		log:      log,
		interval: intervalTicks,
	}
}

func (s *PruneSystem) Phase() coresys.Phase { return coresys.PhasePrune }

func (s *PruneSystem) Update(tick int64) {
	if tick%s.interval != 0 {
		return
	}
	pruned := s.state.PruneUnresolvable(func(id world.EntityID) bool {
		_, ok := s.resolver.resolve(id, tick)
		return ok
	})
	for _, t := range pruned {
		reportPruned(s.state, s.profiles, s.notify, s.bus, s.stats, s.log, tick, t)
	}
}

// reportPruned does the bookkeeping for a row dropped because its entity
// could not be resolved.
func reportPruned(ws *world.State, profiles *data.ProfileTable, notify ownerNotifier, bus *event.Bus,
	stats *Stats, log *zap.Logger, tick int64, t world.Tracked) {
	stats.kind(kindOf(ws, profiles, t.Owner, world.EntityRef{})).Pruned++
	notify.left(t.Owner, t.EntityID)
	event.Emit(bus, event.EntityPruned{Tick: tick, EntityID: t.EntityID, Owner: t.Owner})
	log.Debug("tracked entity no longer resolves",
		zap.Stringer("entity", t.EntityID),
		zap.Int64("attractor", int64(t.Owner)),
		zap.Int64("age", tick-t.SpawnTick))
}
