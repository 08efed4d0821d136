package world

import (
	"slices"
)

// State owns everything the engine remembers between ticks: attractor
// records, the lifecycle registry, and visited sets. One State per running
// world. Single-goroutine access only (game loop), no locks needed.
type State struct {
	attractors map[AttractorID]*Attractor
	order      []AttractorID // sorted, for deterministic sweeps

	registry *Registry
	visited  *VisitedSets

	// Attractors whose persisted block changed since the last save, and
	// attractors unregistered since then whose block must be deleted.
	dirty   map[AttractorID]struct{}
	removed map[AttractorID]struct{}
}

func NewState() *State {
	return &State{
		attractors: make(map[AttractorID]*Attractor),
		registry:   NewRegistry(),
		visited:    NewVisitedSets(),
		dirty:      make(map[AttractorID]struct{}),
		removed:    make(map[AttractorID]struct{}),
	}
}

func (s *State) Registry() *Registry   { return s.registry }
func (s *State) Visited() *VisitedSets { return s.visited }
func (s *State) AttractorCount() int   { return len(s.attractors) }

// RegisterAttractor records a completed structure. Registering an id twice
// keeps its spawn history and updates kind and cap override.
func (s *State) RegisterAttractor(id AttractorID, kind Kind, capOverride int) *Attractor {
	if a, ok := s.attractors[id]; ok {
		a.Kind = kind
		a.CapOverride = capOverride
		return a
	}
	a := &Attractor{ID: id, Kind: kind, LastSpawnTick: NeverSpawned, CapOverride: capOverride}
	s.attractors[id] = a
	i, _ := slices.BinarySearch(s.order, id)
	s.order = slices.Insert(s.order, i, id)
	s.dirty[id] = struct{}{}
	delete(s.removed, id)
	return a
}

// UnregisterAttractor forgets a destroyed structure. Its tracked rows stay in
// the registry and still reach their disposition; owner callbacks for them
// become no-ops.
func (s *State) UnregisterAttractor(id AttractorID) bool {
	if _, ok := s.attractors[id]; !ok {
		return false
	}
	delete(s.attractors, id)
	if i, ok := slices.BinarySearch(s.order, id); ok {
		s.order = slices.Delete(s.order, i, i+1)
	}
	delete(s.dirty, id)
	s.removed[id] = struct{}{}
	return true
}

func (s *State) Attractor(id AttractorID) (*Attractor, bool) {
	a, ok := s.attractors[id]
	return a, ok
}

// Attractors returns registered attractors in id order.
func (s *State) Attractors() []*Attractor {
	out := make([]*Attractor, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.attractors[id])
	}
	return out
}

// CountByOwner is the attractor's currentCount.
func (s *State) CountByOwner(id AttractorID) int { return s.registry.CountByOwner(id) }

// Overflow returns the owner's rows beyond limit, newest first. It is empty
// while the owner is within limit.
func (s *State) Overflow(id AttractorID, limit int) []Tracked {
	rows := slices.Collect(s.registry.EntriesByOwner(id))
	if len(rows) <= limit {
		return nil
	}
	extra := rows[max(limit, 0):]
	slices.Reverse(extra)
	return extra
}

// Track inserts a row and marks the owner's block dirty.
func (s *State) Track(id EntityID, owner AttractorID, tick int64, d Disposition, lifetime int64) error {
	if err := s.registry.Insert(id, owner, tick, d, lifetime); err != nil {
		return err
	}
	s.markDirty(owner)
	return nil
}

// Untrack removes a row and marks the owner's block dirty.
func (s *State) Untrack(id EntityID) (Tracked, bool) {
	t, ok := s.registry.Remove(id)
	if ok {
		s.markDirty(t.Owner)
	}
	return t, ok
}

// MarkSpawned records a successful spawn for the cooldown check.
func (s *State) MarkSpawned(id AttractorID, tick int64) {
	if a, ok := s.attractors[id]; ok {
		a.LastSpawnTick = tick
		s.markDirty(id)
	}
}

// PruneUnresolvable drops rows whose entities no longer resolve.
func (s *State) PruneUnresolvable(resolve func(EntityID) bool) []Tracked {
	pruned := s.registry.PruneUnresolvable(resolve)
	for _, t := range pruned {
		s.markDirty(t.Owner)
	}
	return pruned
}

func (s *State) markDirty(id AttractorID) {
	if _, ok := s.attractors[id]; ok {
		s.dirty[id] = struct{}{}
	}
}

// DirtyIDs returns attractors with unsaved changes, in id order.
func (s *State) DirtyIDs() []AttractorID {
	ids := make([]AttractorID, 0, len(s.dirty))
	for id := range s.dirty {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// RemovedIDs returns unregistered attractors whose blocks are still stored.
func (s *State) RemovedIDs() []AttractorID {
	ids := make([]AttractorID, 0, len(s.removed))
	for id := range s.removed {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// ClearRemoved marks the given blocks as deleted from the store.
func (s *State) ClearRemoved(ids []AttractorID) {
	for _, id := range ids {
		delete(s.removed, id)
	}
}

// ClearDirty marks the given blocks as saved.
func (s *State) ClearDirty(ids []AttractorID) {
	for _, id := range ids {
		delete(s.dirty, id)
	}
}
