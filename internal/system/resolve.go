package system

import (
	"github.com/hearthmod/attract/internal/data"
	"github.com/hearthmod/attract/internal/world"
)

// entityResolver does the cheap loaded-entity lookup and, on deep-search
// ticks, falls back to the cross-world lookup before declaring an entity gone.
type entityResolver struct {
	res          world.Resolver
	deepInterval int64
}

func (r entityResolver) resolve(id world.EntityID, tick int64) (world.EntityRef, bool) {
	if ref, ok := r.res.Lookup(id); ok {
		return ref, true
	}
	if r.deepInterval > 0 && tick%r.deepInterval == 0 {
		return r.res.LookupAnyWorld(id)
	}
	return world.EntityRef{}, false
}

// ownerNotifier forwards population changes to the owner subsystem. Calls
// for owners that were unregistered or no longer resolve are dropped.
type ownerNotifier struct {
	state  *world.State
	owners world.Owners
}

func (n ownerNotifier) live(owner world.AttractorID) bool {
	if _, ok := n.state.Attractor(owner); !ok {
		return false
	}
	_, ok := n.owners.StructureKind(owner)
	return ok
}

func (n ownerNotifier) joined(owner world.AttractorID, id world.EntityID) bool {
	if !n.live(owner) {
		return false
	}
	n.owners.OnEntityJoined(owner, id)
	return true
}

func (n ownerNotifier) left(owner world.AttractorID, id world.EntityID) bool {
	if !n.live(owner) {
		return false
	}
	n.owners.OnEntityLeft(owner, id)
	return true
}

// kindOf names the entity kind a row belongs to for stats. Rows of dangling
// owners fall back to the resolved entity's kind.
func kindOf(state *world.State, profiles *data.ProfileTable, owner world.AttractorID, ref world.EntityRef) world.EntityKind {
	if a, ok := state.Attractor(owner); ok {
		if p := profiles.ForAttractorKind(a.Kind); p != nil {
			return p.EntityKind
		}
	}
	if ref.Kind != "" {
		return ref.Kind
	}
	return "unowned"
}
