package world

// BlockState is what the engine needs to know about one cell.
type BlockState struct {
	Material string
	Solid    bool
	Opaque   bool
	Liquid   bool
}

// Passable reports whether an entity can occupy the cell.
func (b BlockState) Passable() bool { return !b.Solid && !b.Liquid }

// Blocks is the host's terrain query surface.
type Blocks interface {
	Block(c Coord) BlockState
}

// EntityRef is a resolved view of a live entity.
type EntityRef struct {
	ID    EntityID
	Kind  EntityKind
	Pos   Vec3
	World string
}

// Resolver answers "does this entity still exist". Lookup only consults
// entities the host keeps loaded; LookupAnyWorld searches every known world,
// including entities in transit between them, and is much more expensive.
type Resolver interface {
	Lookup(id EntityID) (EntityRef, bool)
	LookupAnyWorld(id EntityID) (EntityRef, bool)
}

// Template is the baseline an entity is created from.
type Template struct {
	Kind       EntityKind
	Pos        Vec3
	Yaw        float32
	Adult      bool
	Variant    int
	Attributes map[string]float64
	Owner      AttractorID
}

// Entities is the host's entity query, spawn, and movement surface.
type Entities interface {
	Resolver
	// Nearby returns loaded entities of kind within radius of center.
	Nearby(kind EntityKind, center Vec3, radius float64) []EntityRef
	// Spawn places a new entity; ErrPlacementRejected when the cell is no
	// longer valid.
	Spawn(t Template) (EntityID, error)
	Destroy(id EntityID) bool
	// PathTo requests navigation; false when no path could be planned.
	PathTo(id EntityID, target Coord) bool
	MoveToward(id EntityID, target Vec3)
}

// Host is everything the engine reads from and writes to the running world.
type Host interface {
	Blocks
	Entities
}

// Owners is the owning-structure subsystem. The first three methods are
// queried every cycle; the On* callbacks are how the engine reports
// population changes back.
type Owners interface {
	IsActivated(id AttractorID) bool
	Position(id AttractorID) (Coord, bool)
	StructureKind(id AttractorID) (Kind, bool)
	OnEntityJoined(id AttractorID, entity EntityID)
	OnEntityLeft(id AttractorID, entity EntityID)
}
