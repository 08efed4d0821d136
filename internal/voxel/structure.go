package voxel

import "github.com/hearthmod/attract/internal/world"

// Structure is a completed building that owns entities.
type Structure struct {
	ID        world.AttractorID
	Kind      world.Kind
	Pos       world.Coord
	Activated bool
	Joined    []world.EntityID // residents gained through Stay
	Left      []world.EntityID
}

// Structures is the demo owner subsystem.
type Structures struct {
	byID map[world.AttractorID]*Structure
}

func NewStructures() *Structures {
	return &Structures{byID: make(map[world.AttractorID]*Structure)}
}

func (s *Structures) Add(st *Structure) { s.byID[st.ID] = st }

// Remove demolishes a structure. The engine keeps the attractor until it is
// unregistered; until then callbacks are skipped because the id no longer
// resolves here.
func (s *Structures) Remove(id world.AttractorID) { delete(s.byID, id) }

func (s *Structures) Get(id world.AttractorID) (*Structure, bool) {
	st, ok := s.byID[id]
	return st, ok
}

func (s *Structures) SetActivated(id world.AttractorID, on bool) {
	if st, ok := s.byID[id]; ok {
		st.Activated = on
	}
}

func (s *Structures) IsActivated(id world.AttractorID) bool {
	st, ok := s.byID[id]
	return ok && st.Activated
}

func (s *Structures) Position(id world.AttractorID) (world.Coord, bool) {
	st, ok := s.byID[id]
	if !ok {
		return world.Coord{}, false
	}
	return st.Pos, true
}

func (s *Structures) StructureKind(id world.AttractorID) (world.Kind, bool) {
	st, ok := s.byID[id]
	if !ok {
		return "", false
	}
	return st.Kind, true
}

func (s *Structures) OnEntityJoined(id world.AttractorID, entity world.EntityID) {
	if st, ok := s.byID[id]; ok {
		st.Joined = append(st.Joined, entity)
	}
}

func (s *Structures) OnEntityLeft(id world.AttractorID, entity world.EntityID) {
	if st, ok := s.byID[id]; ok {
		st.Left = append(st.Left, entity)
	}
}

// Build places a structure footprint of worked blocks around pos: a planks
// floor under a 3×3 area and a cobblestone pillar, so placement must look
// around it.
func (w *World) Build(pos world.Coord) {
	w.Fill(pos.Add(-1, -1, -1), pos.Add(1, -1, 1), Planks)
	w.Fill(pos, pos.Add(0, 2, 0), Cobblestone)
}
