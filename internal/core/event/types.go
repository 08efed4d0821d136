package event

import "github.com/hearthmod/attract/internal/world"

// EntitySpawned: the spawn loop created and started tracking an entity.
type EntitySpawned struct {
	Tick        int64
	EntityID    world.EntityID
	Kind        world.EntityKind
	Owner       world.AttractorID
	Pos         world.Coord
	Disposition world.Disposition
}

// EntityGraduated: a Stay entity finished its tracked lifetime and now lives
// on as an ordinary world entity.
type EntityGraduated struct {
	Tick     int64
	EntityID world.EntityID
	Owner    world.AttractorID
}

// DepartureCue asks the presentation layer for the leave effect (particles,
// sound) where a Leave entity was removed.
type DepartureCue struct {
	Tick     int64
	EntityID world.EntityID
	Kind     world.EntityKind
	Pos      world.Vec3
	World    string
}

// EntityPruned: a tracked entity could not be resolved and was forgotten.
type EntityPruned struct {
	Tick     int64
	EntityID world.EntityID
	Owner    world.AttractorID
}

// AttractorVisited: an independent entity reached an attractor.
type AttractorVisited struct {
	Tick      int64
	EntityID  world.EntityID
	Attractor world.AttractorID
}
