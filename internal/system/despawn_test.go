package system

import (
	"testing"

	"github.com/hearthmod/attract/internal/core/event"
	"github.com/hearthmod/attract/internal/data"
	"github.com/hearthmod/attract/internal/voxel"
	"github.com/hearthmod/attract/internal/world"
)

func spawnOne(t *testing.T, h *harness, owner world.AttractorID) world.Tracked {
	t.Helper()
	h.run(1)
	rows := h.rows(owner)
	if len(rows) != 1 {
		t.Fatalf("rows=%d after first sweep, want=1", len(rows))
	}
	return rows[0]
}

func TestDespawnLeaveAtLifetime(t *testing.T) {
	h := newHarness(t, voxel.Grass, defaultIntervals, eagerProfile(world.Leave, 1200))
	st := h.addAttractor(1, "town_hall", hallPos, 0)

	var cues []event.DepartureCue
	event.Subscribe(h.bus, func(e event.DepartureCue) { cues = append(cues, e) })

	row := spawnOne(t, h, 1)
	if row.Disposition != world.Leave {
		t.Fatalf("disposition=%v want leave", row.Disposition)
	}
	id := row.EntityID

	h.run(1199) // ticks 1..1199
	if h.lastTick() != row.SpawnTick+1199 {
		t.Fatalf("last tick=%d", h.lastTick())
	}
	if _, ok := h.u.Entity(id); !ok {
		t.Fatalf("entity gone before its lifetime ended")
	}
	if !h.state.Registry().Has(id) {
		t.Fatalf("entity untracked before its lifetime ended")
	}

	h.run(1) // tick 1200
	if _, ok := h.u.Entity(id); ok {
		t.Fatalf("leaving entity still in the world at T+1200")
	}
	if h.state.Registry().Has(id) {
		t.Fatalf("leaving entity still tracked at T+1200")
	}
	if len(st.Left) != 1 || st.Left[0] != id {
		t.Fatalf("owner left callbacks=%v", st.Left)
	}

	h.run(1) // deliver the cue
	if len(cues) != 1 || cues[0].EntityID != id || cues[0].World != "overworld" {
		t.Fatalf("cues=%+v", cues)
	}
	if got := h.stats.Snapshot()["settler"].Departed; got != 1 {
		t.Fatalf("departed=%d want=1", got)
	}
}

func TestDespawnStayGraduates(t *testing.T) {
	h := newHarness(t, voxel.Grass, defaultIntervals, eagerProfile(world.Stay, 100))
	st := h.addAttractor(1, "town_hall", hallPos, 0)
	row := spawnOne(t, h, 1)

	h.run(100)
	if h.state.Registry().Has(row.EntityID) {
		t.Fatalf("stay entity still tracked after its lifetime")
	}
	if _, ok := h.u.Entity(row.EntityID); !ok {
		t.Fatalf("stay entity removed from the world")
	}
	if len(st.Joined) != 1 || st.Joined[0] != row.EntityID {
		t.Fatalf("joined=%v", st.Joined)
	}
	if len(st.Left) != 0 {
		t.Fatalf("stay entity reported as left")
	}
}

func TestDespawnDanglingOwner(t *testing.T) {
	h := newHarness(t, voxel.Grass, defaultIntervals, eagerProfile(world.Stay, 100))
	st := h.addAttractor(1, "town_hall", hallPos, 0)
	row := spawnOne(t, h, 1)

	h.state.UnregisterAttractor(1)
	h.run(100)

	if h.state.Registry().Has(row.EntityID) {
		t.Fatalf("row of a dangling owner never reached its disposition")
	}
	if len(st.Joined) != 0 {
		t.Fatalf("callback reached an unregistered attractor")
	}
}

func TestDespawnPrunesVanishedEntity(t *testing.T) {
	h := newHarness(t, voxel.Grass, defaultIntervals, eagerProfile(world.Stay, 12000))
	st := h.addAttractor(1, "town_hall", hallPos, 0)
	row := spawnOne(t, h, 1)

	h.u.Destroy(row.EntityID)
	h.run(20)

	if h.state.Registry().Has(row.EntityID) {
		t.Fatalf("vanished entity still tracked")
	}
	if len(st.Left) != 1 {
		t.Fatalf("owner not told about the pruned entity")
	}
	if got := h.stats.Snapshot()["settler"].Pruned; got != 1 {
		t.Fatalf("pruned=%d want=1", got)
	}
}

func TestDespawnCrossWorldLookup(t *testing.T) {
	t.Run("deep lookup keeps the row", func(t *testing.T) {
		iv := defaultIntervals
		iv.deep = 20 // every sweep is a deep sweep
		h := newHarness(t, voxel.Grass, iv, eagerProfile(world.Leave, 200))
		h.addAttractor(1, "town_hall", hallPos, 0)
		row := spawnOne(t, h, 1)

		h.u.Transfer(row.EntityID, "nether")
		h.run(100)
		if !h.state.Registry().Has(row.EntityID) {
			t.Fatalf("entity in an unloaded world was pruned despite deep lookups")
		}
		h.run(100)
		if h.state.Registry().Has(row.EntityID) {
			t.Fatalf("entity in another world never expired")
		}
		if _, ok := h.u.Entity(row.EntityID); ok {
			t.Fatalf("leaving entity in another world not destroyed")
		}
	})

	t.Run("cheap lookup prunes", func(t *testing.T) {
		h := newHarness(t, voxel.Grass, defaultIntervals, eagerProfile(world.Leave, 200))
		h.addAttractor(1, "town_hall", hallPos, 0)
		row := spawnOne(t, h, 1)

		h.u.Transfer(row.EntityID, "nether")
		h.run(20)
		if h.state.Registry().Has(row.EntityID) {
			t.Fatalf("unresolvable entity survived a shallow sweep")
		}
		if _, ok := h.u.Entity(row.EntityID); !ok {
			t.Fatalf("pruning destroyed the entity")
		}
	})
}

// cappedSettler fills its five slots at ticks 0, 20, .. 80.
func cappedSettler() data.KindProfile {
	p := settlerProfile()
	p.Spawn.SpawnChance = 1
	p.Spawn.CooldownTicks = 20
	p.Spawn.StayChance = 1
	return p
}

func TestDespawnEnforcesLoweredCap(t *testing.T) {
	h := newHarness(t, voxel.Grass, defaultIntervals, cappedSettler())
	st := h.addAttractor(1, "town_hall", hallPos, 0)
	h.run(200)
	before := h.rows(1)
	if len(before) != 5 {
		t.Fatalf("rows=%d before lowering the cap, want=5", len(before))
	}

	h.state.RegisterAttractor(1, "town_hall", 2)
	if n := h.despawn.EnforceCap(h.runner.CurrentTick(), 1); n != 3 {
		t.Fatalf("removed=%d want=3", n)
	}
	after := h.rows(1)
	if len(after) != 2 || after[0].EntityID != before[0].EntityID || after[1].EntityID != before[1].EntityID {
		t.Fatalf("oldest rows not kept: %+v", after)
	}
	for _, row := range before[2:] {
		if _, ok := h.u.Entity(row.EntityID); ok {
			t.Fatalf("entity spawned at %d still in the world", row.SpawnTick)
		}
	}
	// Stay rows over the cap still leave; they never join.
	if len(st.Left) != 3 || st.Left[0] != before[4].EntityID || len(st.Joined) != 0 {
		t.Fatalf("left=%v joined=%v", st.Left, st.Joined)
	}
	if got := h.stats.Snapshot()["settler"].Departed; got != 3 {
		t.Fatalf("departed=%d want=3", got)
	}
	if n := h.despawn.EnforceCap(h.runner.CurrentTick(), 1); n != 0 {
		t.Fatalf("second call removed %d", n)
	}

	h.run(400)
	if got := h.state.CountByOwner(1); got != 2 {
		t.Fatalf("count=%d after more sweeps, want=2", got)
	}
}

func TestDespawnSweepEnforcesCap(t *testing.T) {
	h := newHarness(t, voxel.Grass, defaultIntervals, cappedSettler())
	h.addAttractor(1, "town_hall", hallPos, 0)
	h.run(200)
	if got := h.state.CountByOwner(1); got != 5 {
		t.Fatalf("count=%d want=5", got)
	}

	h.state.RegisterAttractor(1, "town_hall", 2)
	h.run(1) // tick 200 is a despawn sweep
	if got := h.state.CountByOwner(1); got != 2 {
		t.Fatalf("count=%d after the sweep, want=2", got)
	}
}

func TestDespawnEnforceCapPrunesUnresolved(t *testing.T) {
	h := newHarness(t, voxel.Grass, defaultIntervals, cappedSettler())
	st := h.addAttractor(1, "town_hall", hallPos, 0)
	h.run(200)
	rows := h.rows(1)
	h.u.Destroy(rows[4].EntityID)

	h.state.RegisterAttractor(1, "town_hall", 4)
	if n := h.despawn.EnforceCap(h.runner.CurrentTick(), 1); n != 1 {
		t.Fatalf("removed=%d want=1", n)
	}
	ks := h.stats.Snapshot()["settler"]
	if ks.Pruned != 1 || ks.Departed != 0 {
		t.Fatalf("stats=%+v", ks)
	}
	if len(st.Left) != 1 || st.Left[0] != rows[4].EntityID {
		t.Fatalf("left=%v", st.Left)
	}
}
