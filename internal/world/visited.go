package world

// VisitedSets remembers, per independent entity, which attractors it has
// already reached so steering never sends it back.
type VisitedSets struct {
	sets map[EntityID]map[AttractorID]struct{}
}

func NewVisitedSets() *VisitedSets {
	return &VisitedSets{sets: make(map[EntityID]map[AttractorID]struct{})}
}

func (v *VisitedSets) Mark(id EntityID, a AttractorID) {
	set := v.sets[id]
	if set == nil {
		set = make(map[AttractorID]struct{}, 2)
		v.sets[id] = set
	}
	set[a] = struct{}{}
}

func (v *VisitedSets) Has(id EntityID, a AttractorID) bool {
	_, ok := v.sets[id][a]
	return ok
}

func (v *VisitedSets) Forget(id EntityID) { delete(v.sets, id) }

// Len is the number of entities with at least one visit recorded.
func (v *VisitedSets) Len() int { return len(v.sets) }

// Prune forgets entities the resolver can no longer find and reports how many
// were dropped.
func (v *VisitedSets) Prune(resolve func(EntityID) bool) int {
	n := 0
	for id := range v.sets {
		if !resolve(id) {
			delete(v.sets, id)
			n++
		}
	}
	return n
}
