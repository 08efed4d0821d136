package voxel

import (
	"bytes"
	"fmt"
	"math"
	"math/rand"
	"slices"

	"github.com/google/uuid"
	"github.com/hearthmod/attract/internal/world"
)

// DefaultPathRange is the farthest PathTo will plan, in blocks.
const DefaultPathRange = 48.0

// Entity is a live entity in some dimension.
type Entity struct {
	ID         world.EntityID
	Kind       world.EntityKind
	Pos        world.Vec3
	World      string
	Yaw        float32
	Adult      bool
	Variant    int
	Attributes map[string]float64
	Owner      world.AttractorID

	target *world.Vec3
}

// Moving reports whether the entity has a movement goal.
func (e *Entity) Moving() bool { return e.target != nil }

// Universe holds every dimension and the entities in them. Block queries
// and spawns go to the home dimension; lookups and transfers span all of
// them. Entities in unloaded dimensions are only visible to LookupAnyWorld.
// Game loop only.
type Universe struct {
	home      *World
	worlds    map[string]*World
	loaded    map[string]bool
	entities  map[world.EntityID]*Entity
	grid      *Grid
	ids       *rand.Rand
	PathRange float64
	Speed     float64 // blocks per Step
}

// NewUniverse creates a universe with home as its loaded home dimension.
// seed makes entity ids reproducible.
func NewUniverse(home *World, seed int64) *Universe {
	u := &Universe{
		home:      home,
		worlds:    map[string]*World{home.Name: home},
		loaded:    map[string]bool{home.Name: true},
		entities:  make(map[world.EntityID]*Entity),
		grid:      NewGrid(),
		ids:       rand.New(rand.NewSource(seed)),
		PathRange: DefaultPathRange,
		Speed:     1,
	}
	return u
}

func (u *Universe) Home() *World { return u.home }

// AddWorld adds another dimension.
func (u *Universe) AddWorld(w *World, loaded bool) {
	u.worlds[w.Name] = w
	u.loaded[w.Name] = loaded
}

// SetLoaded loads or unloads a dimension.
func (u *Universe) SetLoaded(name string, loaded bool) {
	if _, ok := u.worlds[name]; ok {
		u.loaded[name] = loaded
	}
}

func (u *Universe) Block(c world.Coord) world.BlockState { return u.home.Block(c) }

func (u *Universe) ref(e *Entity) world.EntityRef {
	return world.EntityRef{ID: e.ID, Kind: e.Kind, Pos: e.Pos, World: e.World}
}

func (u *Universe) Lookup(id world.EntityID) (world.EntityRef, bool) {
	e, ok := u.entities[id]
	if !ok || !u.loaded[e.World] {
		return world.EntityRef{}, false
	}
	return u.ref(e), true
}

func (u *Universe) LookupAnyWorld(id world.EntityID) (world.EntityRef, bool) {
	e, ok := u.entities[id]
	if !ok {
		return world.EntityRef{}, false
	}
	return u.ref(e), true
}

// Nearby returns loaded home-dimension entities of kind within radius,
// ordered by id.
func (u *Universe) Nearby(kind world.EntityKind, center world.Vec3, radius float64) []world.EntityRef {
	var out []world.EntityRef
	r2 := radius * radius
	for _, id := range u.grid.Candidates(u.home.Name, center, radius) {
		e := u.entities[id]
		if e.Kind != kind || e.Pos.DistSq(center) > r2 {
			continue
		}
		out = append(out, u.ref(e))
	}
	slices.SortFunc(out, func(a, b world.EntityRef) int { return bytes.Compare(a.ID[:], b.ID[:]) })
	return out
}

// standable: solid floor and two free cells.
func (u *Universe) standable(c world.Coord) bool {
	below := u.home.Block(c.Below())
	return below.Solid && u.home.Block(c).Passable() && u.home.Block(c.Above()).Passable()
}

func (u *Universe) Spawn(t world.Template) (world.EntityID, error) {
	if !u.standable(t.Pos.Block()) {
		return world.EntityID{}, fmt.Errorf("%s at %s: %w", t.Kind, t.Pos, world.ErrPlacementRejected)
	}
	id, err := uuid.NewRandomFromReader(u.ids)
	if err != nil {
		return world.EntityID{}, fmt.Errorf("entity id: %w", err)
	}
	u.entities[id] = &Entity{
		ID:         id,
		Kind:       t.Kind,
		Pos:        t.Pos,
		World:      u.home.Name,
		Yaw:        t.Yaw,
		Adult:      t.Adult,
		Variant:    t.Variant,
		Attributes: t.Attributes,
		Owner:      t.Owner,
	}
	u.grid.Add(id, u.home.Name, t.Pos)
	return id, nil
}

// Place adds an independent entity standing in cell c of the home dimension.
func (u *Universe) Place(kind world.EntityKind, c world.Coord) (world.EntityID, error) {
	return u.Spawn(world.Template{Kind: kind, Pos: c.Center(), Adult: true})
}

func (u *Universe) Destroy(id world.EntityID) bool {
	e, ok := u.entities[id]
	if !ok {
		return false
	}
	u.grid.Remove(id, e.World, e.Pos)
	delete(u.entities, id)
	return true
}

// Transfer moves an entity to another dimension, keeping its position.
func (u *Universe) Transfer(id world.EntityID, worldName string) bool {
	e, ok := u.entities[id]
	if !ok {
		return false
	}
	if _, known := u.worlds[worldName]; !known {
		return false
	}
	u.grid.Move(id, e.World, e.Pos, worldName, e.Pos)
	e.World = worldName
	e.target = nil
	return true
}

// PathTo plans a route to a standable cell within PathRange. The planner is
// a straight line; it only refuses targets that are too far or unstandable.
func (u *Universe) PathTo(id world.EntityID, target world.Coord) bool {
	e, ok := u.entities[id]
	if !ok || e.World != u.home.Name {
		return false
	}
	goal := target.Center()
	if e.Pos.Dist(goal) > u.PathRange || !u.standable(target) {
		return false
	}
	e.target = &goal
	return true
}

func (u *Universe) MoveToward(id world.EntityID, target world.Vec3) {
	if e, ok := u.entities[id]; ok {
		e.target = &target
	}
}

// Teleport moves an entity instantly within its dimension.
func (u *Universe) Teleport(id world.EntityID, pos world.Vec3) bool {
	e, ok := u.entities[id]
	if !ok {
		return false
	}
	u.grid.Move(id, e.World, e.Pos, e.World, pos)
	e.Pos = pos
	e.target = nil
	return true
}

// Step advances every moving entity by Speed toward its goal.
func (u *Universe) Step() {
	for _, e := range u.entities {
		if e.target == nil {
			continue
		}
		from := e.Pos
		d := e.Pos.Dist(*e.target)
		if d <= u.Speed {
			e.Pos = *e.target
			e.target = nil
		} else {
			f := u.Speed / d
			e.Yaw = float32(math.Atan2(e.target.Z-e.Pos.Z, e.target.X-e.Pos.X) * 180 / math.Pi)
			e.Pos = world.Vec3{
				X: e.Pos.X + (e.target.X-e.Pos.X)*f,
				Y: e.Pos.Y + (e.target.Y-e.Pos.Y)*f,
				Z: e.Pos.Z + (e.target.Z-e.Pos.Z)*f,
			}
		}
		u.grid.Move(e.ID, e.World, from, e.World, e.Pos)
	}
}

// Entity returns a live entity.
func (u *Universe) Entity(id world.EntityID) (*Entity, bool) {
	e, ok := u.entities[id]
	return e, ok
}

// Count returns the number of live entities of kind in any dimension.
func (u *Universe) Count(kind world.EntityKind) int {
	n := 0
	for _, e := range u.entities {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func (u *Universe) Len() int { return len(u.entities) }
