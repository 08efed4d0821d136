package world

import "testing"

func TestEffectiveCap(t *testing.T) {
	tests := []struct {
		override, profile, want int
	}{
		{0, 5, 5},
		{2, 5, 2},
		{9, 5, 5},
		{3, 0, 0},
	}
	for _, tt := range tests {
		a := &Attractor{CapOverride: tt.override}
		if got := a.EffectiveCap(tt.profile); got != tt.want {
			t.Fatalf("EffectiveCap(override=%d, profile=%d)=%d want=%d", tt.override, tt.profile, got, tt.want)
		}
	}
}

func TestStateDirtyTracking(t *testing.T) {
	s := NewState()
	a := s.RegisterAttractor(3, "town_hall", 0)
	if a.LastSpawnTick != NeverSpawned {
		t.Fatalf("lastSpawnTick=%d want=%d", a.LastSpawnTick, NeverSpawned)
	}
	s.RegisterAttractor(1, "house", 0)
	if ids := s.DirtyIDs(); len(ids) != 2 || ids[0] != 1 || ids[1] != 3 {
		t.Fatalf("dirty=%v want=[1 3]", ids)
	}
	s.ClearDirty(s.DirtyIDs())

	if err := s.Track(idN(1), 3, 20, Stay, 100); err != nil {
		t.Fatalf("track: %v", err)
	}
	s.MarkSpawned(3, 20)
	if ids := s.DirtyIDs(); len(ids) != 1 || ids[0] != 3 {
		t.Fatalf("dirty after spawn=%v want=[3]", ids)
	}

	if !s.UnregisterAttractor(3) {
		t.Fatalf("unregister failed")
	}
	if len(s.DirtyIDs()) != 0 {
		t.Fatalf("unregistered attractor still dirty")
	}
	if ids := s.RemovedIDs(); len(ids) != 1 || ids[0] != 3 {
		t.Fatalf("removed=%v want=[3]", ids)
	}
	// Rows of a dangling owner stay tracked until expiry or prune.
	if s.Registry().Len() != 1 {
		t.Fatalf("rows=%d want=1", s.Registry().Len())
	}
	if order := s.Attractors(); len(order) != 1 || order[0].ID != 1 {
		t.Fatalf("attractors after unregister wrong")
	}
}

func TestBlockRoundTrip(t *testing.T) {
	src := NewState()
	src.RegisterAttractor(5, "town_hall", 0)
	src.Track(idN(1), 5, 100, Stay, 12000)
	src.Track(idN(2), 5, 2600, Leave, 12000)
	src.MarkSpawned(5, 2600)

	b, ok := src.ExportBlock(5)
	if !ok {
		t.Fatalf("export failed")
	}
	if ids := b.TrackedEntityIDs(); len(ids) != 2 || ids[0] != idN(1) {
		t.Fatalf("tracked ids=%v", ids)
	}

	dst := NewState()
	if n := dst.ImportBlock(b, 12000); n != 2 {
		t.Fatalf("imported=%d want=2", n)
	}
	a, ok := dst.Attractor(5)
	if !ok || a.LastSpawnTick != 2600 {
		t.Fatalf("attractor after import=%+v", a)
	}
	if got := dst.CountByOwner(5); got != 2 {
		t.Fatalf("count=%d want=2", got)
	}
	row, ok := dst.Registry().Get(idN(2))
	if !ok || row.Disposition != Leave || row.SpawnTick != 2600 || row.LifetimeTicks != 12000 {
		t.Fatalf("row after import=%+v", row)
	}
	if len(dst.DirtyIDs()) != 0 {
		t.Fatalf("freshly imported block marked dirty")
	}
}

func TestOverflowNewestFirst(t *testing.T) {
	s := NewState()
	s.RegisterAttractor(1, "town_hall", 0)
	for i := byte(1); i <= 5; i++ {
		s.Track(idN(i), 1, int64(i)*20, Leave, 12000)
	}
	if got := s.Overflow(1, 5); len(got) != 0 {
		t.Fatalf("within cap: overflow=%v", got)
	}
	got := s.Overflow(1, 2)
	if len(got) != 3 {
		t.Fatalf("overflow=%d want=3", len(got))
	}
	for i, want := range []EntityID{idN(5), idN(4), idN(3)} {
		if got[i].EntityID != want {
			t.Fatalf("overflow[%d]=%v want=%v", i, got[i].EntityID, want)
		}
	}
	if n := len(s.Overflow(1, 0)); n != 5 {
		t.Fatalf("cap 0: overflow=%d want=5", n)
	}
}

func TestImportBlockAboveCap(t *testing.T) {
	b := Block{AttractorID: 4, Kind: "town_hall", LastSpawnTick: 160}
	for i := byte(1); i <= 8; i++ {
		b.Rows = append(b.Rows, BlockRow{EntityID: idN(i), SpawnTick: int64(i) * 20, Disposition: Stay})
	}
	s := NewState()
	if n := s.ImportBlock(b, 12000); n != 8 {
		t.Fatalf("imported=%d want=8", n)
	}
	a, _ := s.Attractor(4)
	over := s.Overflow(4, a.EffectiveCap(5))
	if len(over) != 3 || over[0].EntityID != idN(8) {
		t.Fatalf("overflow after import=%v", over)
	}
}
