package world

import (
	"bytes"
	"iter"
	"slices"
)

// Registry maps tracked entities to their owning attractor. It keeps a
// per-owner index so CountByOwner is O(1) and never drifts from the rows.
// Single-goroutine access only (game loop).
type Registry struct {
	rows    map[EntityID]*Tracked
	byOwner map[AttractorID]map[EntityID]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		rows:    make(map[EntityID]*Tracked, 64),
		byOwner: make(map[AttractorID]map[EntityID]struct{}),
	}
}

// Insert starts tracking an entity. An id that is already tracked is
// rejected so no entity is ever counted twice.
func (r *Registry) Insert(id EntityID, owner AttractorID, spawnTick int64, d Disposition, lifetime int64) error {
	if _, ok := r.rows[id]; ok {
		return ErrAlreadyTracked
	}
	r.rows[id] = &Tracked{
		EntityID:      id,
		Owner:         owner,
		SpawnTick:     spawnTick,
		Disposition:   d,
		LifetimeTicks: lifetime,
	}
	set := r.byOwner[owner]
	if set == nil {
		set = make(map[EntityID]struct{}, 4)
		r.byOwner[owner] = set
	}
	set[id] = struct{}{}
	return nil
}

// Remove stops tracking an entity and returns its row.
func (r *Registry) Remove(id EntityID) (Tracked, bool) {
	t, ok := r.rows[id]
	if !ok {
		return Tracked{}, false
	}
	delete(r.rows, id)
	if set := r.byOwner[t.Owner]; set != nil {
		delete(set, id)
		if len(set) == 0 {
			delete(r.byOwner, t.Owner)
		}
	}
	return *t, true
}

func (r *Registry) Get(id EntityID) (Tracked, bool) {
	t, ok := r.rows[id]
	if !ok {
		return Tracked{}, false
	}
	return *t, true
}

func (r *Registry) Has(id EntityID) bool {
	_, ok := r.rows[id]
	return ok
}

func (r *Registry) Len() int { return len(r.rows) }

func (r *Registry) CountByOwner(owner AttractorID) int {
	return len(r.byOwner[owner])
}

// EntriesByOwner yields the owner's rows oldest first.
func (r *Registry) EntriesByOwner(owner AttractorID) iter.Seq[Tracked] {
	set := r.byOwner[owner]
	rows := make([]Tracked, 0, len(set))
	for id := range set {
		rows = append(rows, *r.rows[id])
	}
	sortRows(rows)
	return slices.Values(rows)
}

// All returns a snapshot of every row, oldest first. Callers may remove rows
// while ranging over the result.
func (r *Registry) All() []Tracked {
	rows := make([]Tracked, 0, len(r.rows))
	for _, t := range r.rows {
		rows = append(rows, *t)
	}
	sortRows(rows)
	return rows
}

// PruneUnresolvable drops every row whose entity the resolver can no longer
// find and returns the dropped rows. Calling it again with the same resolver
// is a no-op.
func (r *Registry) PruneUnresolvable(resolve func(EntityID) bool) []Tracked {
	var pruned []Tracked
	for _, t := range r.All() {
		if resolve(t.EntityID) {
			continue
		}
		if row, ok := r.Remove(t.EntityID); ok {
			pruned = append(pruned, row)
		}
	}
	return pruned
}

// sortRows orders by spawn tick, then id, so sweeps are deterministic.
func sortRows(rows []Tracked) {
	slices.SortFunc(rows, func(a, b Tracked) int {
		if a.SpawnTick != b.SpawnTick {
			if a.SpawnTick < b.SpawnTick {
				return -1
			}
			return 1
		}
		return bytes.Compare(a.EntityID[:], b.EntityID[:])
	})
}
