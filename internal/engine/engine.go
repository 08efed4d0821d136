// Package engine assembles the lifecycle loops for one running world: the
// attractor state, per-kind RNG streams, the tick runner, and the systems.
package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/hearthmod/attract/internal/config"
	"github.com/hearthmod/attract/internal/core/event"
	coresys "github.com/hearthmod/attract/internal/core/system"
	"github.com/hearthmod/attract/internal/data"
	"github.com/hearthmod/attract/internal/persist"
	"github.com/hearthmod/attract/internal/placement"
	"github.com/hearthmod/attract/internal/rules"
	"github.com/hearthmod/attract/internal/scripting"
	"github.com/hearthmod/attract/internal/system"
	"github.com/hearthmod/attract/internal/world"
	"go.uber.org/zap"
)

// Options wires an Engine to its collaborators. Store and Scripts are
// optional.
type Options struct {
	Config    *config.Config
	Profiles  *data.ProfileTable
	Host      world.Host
	Owners    world.Owners
	Store     persist.Store
	Scripts   *scripting.Engine
	Placement *placement.Params // nil = placement.DefaultParams()
	Log       *zap.Logger
}

// Engine is the lifecycle engine of one world. Game loop only.
type Engine struct {
	cfg         *config.Config
	profiles    *data.ProfileTable
	owners      world.Owners
	store       persist.Store
	scripts     *scripting.Engine
	log         *zap.Logger
	state       *world.State
	runner      *coresys.Runner
	bus         *event.Bus
	stats       *system.Stats
	enhancement rules.Enhancement
	despawn     *system.DespawnSystem
	persistence *system.PersistenceSystem
}

func New(opts Options) (*Engine, error) {
	if opts.Config == nil || opts.Profiles == nil || opts.Host == nil || opts.Owners == nil {
		return nil, fmt.Errorf("engine: config, profiles, host and owners are required")
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	params := placement.DefaultParams()
	if opts.Placement != nil {
		params = *opts.Placement
	}
	cfg := opts.Config
	ec := cfg.Engine

	e := &Engine{
		cfg:      cfg,
		profiles: opts.Profiles,
		owners:   opts.Owners,
		store:    opts.Store,
		scripts:  opts.Scripts,
		log:      log,
		state:    world.NewState(),
		runner:   coresys.NewRunner(),
		bus:      event.NewBus(),
		stats:    system.NewStats(),
		enhancement: rules.Enhancement{
			Step:          cfg.Enhancement.Step,
			CapCount:      cfg.Enhancement.CapCount,
			MaxMultiplier: cfg.Enhancement.MaxMultiplier,
		},
	}

	streams := system.NewStreams(cfg.Server.WorldSeed)
	searcher := placement.NewSearcher(opts.Host, opts.Host, params)

	// Phase 0: deliver last tick's events
	e.runner.Register(system.NewEventDispatchSystem(e.bus))
	// Phase 1: drop vanished entities before the spawn sweep counts them
	e.runner.Register(system.NewPruneSystem(e.state, opts.Owners, opts.Host, opts.Profiles,
		e.bus, e.stats, log, ec.SpawnInterval, ec.DeepSearchInterval))
	// Phase 2: spawn, then steer
	e.runner.Register(system.NewSpawnSystem(system.SpawnDeps{
		State:    e.state,
		Owners:   opts.Owners,
		Profiles: opts.Profiles,
		Searcher: searcher,
		Factory:  world.NewFactory(opts.Host),
		Streams:  streams,
		Bus:      e.bus,
		Stats:    e.stats,
		Chance:   e.spawnChance,
	}, log, ec.SpawnInterval))
	e.runner.Register(system.NewSteeringSystem(e.state, opts.Host, opts.Owners, opts.Profiles,
		searcher, streams, e.bus, e.stats, log, ec.SteeringInterval, ec.VisitedPruneInterval))
	// Phase 3: dispositions
	e.despawn = system.NewDespawnSystem(e.state, opts.Host, opts.Owners, opts.Profiles,
		e.bus, e.stats, log, ec.DespawnInterval, ec.DeepSearchInterval, ec.ExpiryLogWindow)
	e.runner.Register(e.despawn)
	// Phase 4: auto-save
	if opts.Store != nil {
		e.persistence = system.NewPersistenceSystem(e.state, opts.Store, log, ec.PersistInterval)
		e.runner.Register(e.persistence)
	}

	return e, nil
}

// Tick simulates one world tick.
func (e *Engine) Tick() { e.runner.Tick() }

// CurrentTick is the tick the next Tick call simulates.
func (e *Engine) CurrentTick() int64 { return e.runner.CurrentTick() }

func (e *Engine) State() *world.State { return e.state }
func (e *Engine) Bus() *event.Bus     { return e.bus }

// RegisterAttractor is called by the owner subsystem when a structure
// completes, and again when it changes kind or cap override. Kinds without a
// profile are rejected. Lowering the cap below the current count sends the
// newest entities away at once.
func (e *Engine) RegisterAttractor(id world.AttractorID, kind world.Kind, capOverride int) error {
	if e.profiles.ForAttractorKind(kind) == nil && string(kind) != e.cfg.Enhancement.CountedKind {
		return fmt.Errorf("attractor %d: %w: no profile for kind %q", id, world.ErrUnknownAttractor, kind)
	}
	e.state.RegisterAttractor(id, kind, capOverride)
	e.despawn.EnforceCap(e.runner.CurrentTick(), id)
	return nil
}

// UnregisterAttractor is called when a structure is destroyed. Entities it
// owns keep their disposition; owner callbacks for them are dropped.
func (e *Engine) UnregisterAttractor(id world.AttractorID) bool {
	return e.state.UnregisterAttractor(id)
}

// SpawnMultiplier is the factor the host applies to its own spawn chance for
// entities of kind. Only the configured target kind is boosted, by the
// number of activated attractors of the counted kind.
func (e *Engine) SpawnMultiplier(kind world.EntityKind) float64 {
	ec := e.cfg.Enhancement
	if string(kind) != ec.TargetEntityKind {
		return 1.0
	}
	qualifying := 0
	for _, a := range e.state.Attractors() {
		if string(a.Kind) == ec.CountedKind && e.owners.IsActivated(a.ID) {
			qualifying++
		}
	}
	bonus := rules.BonusCount(qualifying)
	if bonus == 0 {
		return 1.0
	}
	if e.scripts != nil {
		if m, ok := e.scripts.Enhancement(scripting.EnhancementContext{
			Bonus:         bonus,
			Step:          ec.Step,
			CapCount:      ec.CapCount,
			MaxMultiplier: ec.MaxMultiplier,
		}); ok {
			return m
		}
	}
	return e.enhancement.Apply(bonus)
}

// spawnChance is the spawn loop's per-profile chance: the scripted chance
// when a hook exists, scaled by SpawnMultiplier, never above 1.
func (e *Engine) spawnChance(p *data.KindProfile) float64 {
	chance := p.Spawn.SpawnChance
	if e.scripts != nil {
		tracked, attractors := 0, 0
		for _, a := range e.state.Attractors() {
			if e.profiles.ForAttractorKind(a.Kind) == p {
				attractors++
				tracked += e.state.CountByOwner(a.ID)
			}
		}
		if c, ok := e.scripts.SpawnChance(scripting.SpawnChanceContext{
			Profile:      p.Name,
			EntityKind:   string(p.EntityKind),
			BaseChance:   chance,
			TrackedTotal: tracked,
			Attractors:   attractors,
		}); ok {
			chance = c
		}
	}
	return min(chance*e.SpawnMultiplier(p.EntityKind), 1.0)
}

// Load restores attractor blocks and the world clock from the store.
func (e *Engine) Load(ctx context.Context) error {
	if e.store == nil {
		return nil
	}
	blocks, err := e.store.LoadBlocks(ctx)
	if err != nil {
		return fmt.Errorf("load attractor blocks: %w", err)
	}
	rows := 0
	for _, b := range blocks {
		var lifetime int64
		if p := e.profiles.ForAttractorKind(b.Kind); p != nil {
			lifetime = p.Spawn.LifetimeTicks
		} else {
			e.log.Warn("stored attractor has no profile, its entities expire at once",
				zap.Int64("attractor", int64(b.AttractorID)), zap.String("kind", string(b.Kind)))
		}
		rows += e.state.ImportBlock(b, lifetime)
	}

	tick, ok, err := e.store.LoadClock(ctx)
	if err != nil {
		return fmt.Errorf("load world clock: %w", err)
	}
	if ok {
		e.runner.SetTick(tick)
	}
	for _, b := range blocks {
		rows -= e.despawn.EnforceCap(e.runner.CurrentTick(), b.AttractorID)
	}
	e.log.Info("lifecycle state restored",
		zap.Int("attractors", len(blocks)),
		zap.Int("tracked", rows),
		zap.Int64("tick", e.runner.CurrentTick()))
	return nil
}

// Save writes every block and the clock. Called on shutdown.
func (e *Engine) Save() error {
	if e.persistence == nil {
		return nil
	}
	return e.persistence.SaveAll(e.runner.CurrentTick())
}

// KindReport is one row of Stats.
type KindReport struct {
	Kind world.EntityKind
	system.KindStats
}

// Stats reports counters per entity kind, sorted by kind.
func (e *Engine) Stats() []KindReport {
	snap := e.stats.Snapshot()
	for _, a := range e.state.Attractors() {
		p := e.profiles.ForAttractorKind(a.Kind)
		if p == nil {
			continue
		}
		ks := snap[p.EntityKind]
		ks.Attractors++
		ks.Tracked += e.state.CountByOwner(a.ID)
		snap[p.EntityKind] = ks
	}
	out := make([]KindReport, 0, len(snap))
	for k, v := range snap {
		out = append(out, KindReport{Kind: k, KindStats: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}
