package system

import (
	"testing"

	"github.com/hearthmod/attract/internal/core/event"
	coresys "github.com/hearthmod/attract/internal/core/system"
	"github.com/hearthmod/attract/internal/data"
	"github.com/hearthmod/attract/internal/placement"
	"github.com/hearthmod/attract/internal/voxel"
	"github.com/hearthmod/attract/internal/world"
	"go.uber.org/zap"
)

type intervals struct {
	spawn, despawn, deep, steer, visitedPrune int64
}

var defaultIntervals = intervals{spawn: 20, despawn: 20, deep: 1200, steer: 40, visitedPrune: 6000}

// harness runs the lifecycle loops against a flat voxel world.
type harness struct {
	t        *testing.T
	state    *world.State
	u        *voxel.Universe
	owners   *voxel.Structures
	profiles *data.ProfileTable
	bus      *event.Bus
	stats    *Stats
	runner   *coresys.Runner
	despawn  *DespawnSystem
}

func newHarness(t *testing.T, floor string, iv intervals, profiles ...data.KindProfile) *harness {
	t.Helper()
	table, err := data.NewProfileTable(profiles)
	if err != nil {
		t.Fatalf("profiles: %v", err)
	}
	h := &harness{
		t:        t,
		state:    world.NewState(),
		u:        voxel.NewUniverse(voxel.NewFlat("overworld", 64, 64, floor), 1),
		owners:   voxel.NewStructures(),
		profiles: table,
		bus:      event.NewBus(),
		stats:    NewStats(),
		runner:   coresys.NewRunner(),
	}
	h.u.AddWorld(voxel.NewFlat("nether", 64, 64, voxel.Stone), false)

	log := zap.NewNop()
	streams := NewStreams(7)
	searcher := placement.NewSearcher(h.u, h.u, placement.DefaultParams())

	h.runner.Register(NewEventDispatchSystem(h.bus))
	h.runner.Register(NewPruneSystem(h.state, h.owners, h.u, table, h.bus, h.stats, log, iv.spawn, iv.deep))
	h.runner.Register(NewSpawnSystem(SpawnDeps{
		State:    h.state,
		Owners:   h.owners,
		Profiles: table,
		Searcher: searcher,
		Factory:  world.NewFactory(h.u),
		Streams:  streams,
		Bus:      h.bus,
		Stats:    h.stats,
	}, log, iv.spawn))
	h.runner.Register(NewSteeringSystem(h.state, h.u, h.owners, table, searcher, streams, h.bus, h.stats, log,
		iv.steer, iv.visitedPrune))
	h.despawn = NewDespawnSystem(h.state, h.u, h.owners, table, h.bus, h.stats, log,
		iv.despawn, iv.deep, 200)
	h.runner.Register(h.despawn)
	return h
}

func (h *harness) addAttractor(id world.AttractorID, kind world.Kind, pos world.Coord, capOverride int) *voxel.Structure {
	st := &voxel.Structure{ID: id, Kind: kind, Pos: pos, Activated: true}
	h.owners.Add(st)
	h.state.RegisterAttractor(id, kind, capOverride)
	return st
}

// run simulates n ticks, moving entities after each.
func (h *harness) run(n int) {
	for i := 0; i < n; i++ {
		h.runner.Tick()
		h.u.Step()
	}
}

// lastTick is the most recently simulated tick.
func (h *harness) lastTick() int64 { return h.runner.CurrentTick() - 1 }

func (h *harness) rows(owner world.AttractorID) []world.Tracked {
	var out []world.Tracked
	for row := range h.state.Registry().EntriesByOwner(owner) {
		out = append(out, row)
	}
	return out
}

func settlerProfile() data.KindProfile {
	return data.KindProfile{
		Name:           "settler",
		AttractorKinds: []world.Kind{"town_hall", "house"},
		Spawn: data.SpawnProfile{
			Enabled:         true,
			SpawnChance:     0.15,
			CooldownTicks:   2400,
			SpawnCap:        5,
			LifetimeTicks:   12000,
			StayChance:      0.5,
			SearchRadius:    16,
			MinSeparation:   1.5,
			GroundWhitelist: []string{voxel.Grass, voxel.Dirt},
			Variants:        4,
		},
	}
}

// eagerProfile spawns at the first check and always picks d.
func eagerProfile(d world.Disposition, lifetime int64) data.KindProfile {
	p := settlerProfile()
	p.Spawn.SpawnChance = 1
	p.Spawn.CooldownTicks = 1_000_000
	p.Spawn.SpawnCap = 1
	p.Spawn.LifetimeTicks = lifetime
	if d == world.Stay {
		p.Spawn.StayChance = 1
	} else {
		p.Spawn.StayChance = 0
	}
	return p
}

var hallPos = world.Coord{X: 32, Y: 64, Z: 32}
