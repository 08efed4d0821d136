package world

// Block is the per-attractor state that survives a restart. It is stored
// alongside the owner's durable record; nothing else is persisted.
type Block struct {
	AttractorID   AttractorID
	Kind          Kind
	LastSpawnTick int64
	Rows          []BlockRow
}

// BlockRow mirrors one registry row.
type BlockRow struct {
	EntityID    EntityID
	SpawnTick   int64
	Disposition Disposition
}

// TrackedEntityIDs is the id column of the block's rows.
func (b Block) TrackedEntityIDs() []EntityID {
	ids := make([]EntityID, len(b.Rows))
	for i, r := range b.Rows {
		ids[i] = r.EntityID
	}
	return ids
}

// ExportBlock snapshots an attractor's persisted state.
func (s *State) ExportBlock(id AttractorID) (Block, bool) {
	a, ok := s.attractors[id]
	if !ok {
		return Block{}, false
	}
	b := Block{AttractorID: id, Kind: a.Kind, LastSpawnTick: a.LastSpawnTick}
	for t := range s.registry.EntriesByOwner(id) {
		b.Rows = append(b.Rows, BlockRow{EntityID: t.EntityID, SpawnTick: t.SpawnTick, Disposition: t.Disposition})
	}
	return b, true
}

// ImportBlock restores a block on reload. The attractor is registered if the
// owner has not done so yet; rows already tracked are left untouched.
// lifetime is the kind profile's lifetime for the attractor's kind. Rows are
// restored as stored even when the cap has since been lowered; Overflow
// reports the excess.
func (s *State) ImportBlock(b Block, lifetime int64) int {
	a, ok := s.attractors[b.AttractorID]
	if !ok {
		a = s.RegisterAttractor(b.AttractorID, b.Kind, 0)
	}
	a.LastSpawnTick = b.LastSpawnTick
	n := 0
	for _, r := range b.Rows {
		if err := s.registry.Insert(r.EntityID, b.AttractorID, r.SpawnTick, r.Disposition, lifetime); err == nil {
			n++
		}
	}
	delete(s.dirty, b.AttractorID)
	return n
}
