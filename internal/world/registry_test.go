package world

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func idN(n byte) EntityID {
	var id uuid.UUID
	id[15] = n
	return id
}

func TestRegistryInsertRejectsDuplicate(t *testing.T) {
	r := NewRegistry()
	if err := r.Insert(idN(1), 7, 0, Stay, 100); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := r.Insert(idN(1), 8, 5, Leave, 100); !errors.Is(err, ErrAlreadyTracked) {
		t.Fatalf("duplicate insert err=%v want=%v", err, ErrAlreadyTracked)
	}
	if got := r.CountByOwner(7); got != 1 {
		t.Fatalf("count(7)=%d want=1", got)
	}
	if got := r.CountByOwner(8); got != 0 {
		t.Fatalf("count(8)=%d want=0", got)
	}
}

func TestRegistryCountTracksRemoval(t *testing.T) {
	r := NewRegistry()
	for i := byte(1); i <= 3; i++ {
		if err := r.Insert(idN(i), 1, int64(i), Leave, 10); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}
	if _, ok := r.Remove(idN(2)); !ok {
		t.Fatalf("remove existing row failed")
	}
	if _, ok := r.Remove(idN(2)); ok {
		t.Fatalf("second remove of the same row succeeded")
	}
	if got := r.CountByOwner(1); got != 2 {
		t.Fatalf("count=%d want=2", got)
	}
	var ticks []int64
	for row := range r.EntriesByOwner(1) {
		ticks = append(ticks, row.SpawnTick)
	}
	if len(ticks) != 2 || ticks[0] != 1 || ticks[1] != 3 {
		t.Fatalf("entries=%v want=[1 3]", ticks)
	}
}

func TestRegistryPruneIsIdempotent(t *testing.T) {
	r := NewRegistry()
	r.Insert(idN(1), 1, 0, Stay, 10)
	r.Insert(idN(2), 1, 0, Stay, 10)
	r.Insert(idN(3), 2, 0, Leave, 10)

	alive := map[EntityID]bool{idN(1): true}
	resolve := func(id EntityID) bool { return alive[id] }

	pruned := r.PruneUnresolvable(resolve)
	if len(pruned) != 2 {
		t.Fatalf("pruned=%d want=2", len(pruned))
	}
	if again := r.PruneUnresolvable(resolve); len(again) != 0 {
		t.Fatalf("second prune removed %d rows", len(again))
	}
	if r.Len() != 1 || r.CountByOwner(2) != 0 {
		t.Fatalf("len=%d count(2)=%d want=1,0", r.Len(), r.CountByOwner(2))
	}
}

func TestTrackedExpiresAt(t *testing.T) {
	row := Tracked{SpawnTick: 400, LifetimeTicks: 1200}
	if got := row.ExpiresAt(); got != 1600 {
		t.Fatalf("expiresAt=%d want=1600", got)
	}
}

func TestVisitedSetsPrune(t *testing.T) {
	v := NewVisitedSets()
	v.Mark(idN(1), 10)
	v.Mark(idN(2), 10)
	v.Mark(idN(2), 11)
	if !v.Has(idN(2), 11) || v.Has(idN(1), 11) {
		t.Fatalf("visited membership wrong")
	}
	n := v.Prune(func(id EntityID) bool { return id == idN(2) })
	if n != 1 || v.Len() != 1 {
		t.Fatalf("pruned=%d len=%d want=1,1", n, v.Len())
	}
}
