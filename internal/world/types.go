package world

import (
	"errors"

	"github.com/google/uuid"
)

// EntityID identifies a world entity. Opaque to the engine: it is only ever
// compared, stored, and handed back to the host.
type EntityID = uuid.UUID

// AttractorID is the stable identifier of an owning structure.
type AttractorID int64

// Kind tags an attractor's behaviour family (e.g. "town_hall", "market_stall").
type Kind string

// EntityKind tags a world entity type (e.g. "settler", "merchant").
type EntityKind string

// NeverSpawned marks an attractor that has not produced an entity yet.
const NeverSpawned int64 = -1

var (
	ErrAlreadyTracked    = errors.New("entity already tracked")
	ErrPlacementRejected = errors.New("host rejected entity placement")
	ErrUnknownAttractor  = errors.New("unknown attractor")
)

// Disposition is the terminal outcome of a tracked entity, rolled once when
// tracking starts.
type Disposition uint8

const (
	Stay Disposition = iota
	Leave
)

func (d Disposition) String() string {
	switch d {
	case Stay:
		return "stay"
	case Leave:
		return "leave"
	default:
		return "unknown"
	}
}

// Rand is the randomness the engine consumes. *math/rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// Tracked is one LifecycleRegistry row.
type Tracked struct {
	EntityID      EntityID
	Owner         AttractorID // weak: may outlive the attractor
	SpawnTick     int64
	Disposition   Disposition
	LifetimeTicks int64
}

// ExpiresAt is the first tick at which the disposition executes.
func (t Tracked) ExpiresAt() int64 { return t.SpawnTick + t.LifetimeTicks }

// Attractor is the engine-side record of an owning structure. Position and
// activation are not stored here; they are re-queried from Owners each cycle.
type Attractor struct {
	ID            AttractorID
	Kind          Kind
	LastSpawnTick int64
	CapOverride   int // 0 = use the kind profile's cap
}

// EffectiveCap bounds the override by the profile cap.
func (a *Attractor) EffectiveCap(profileCap int) int {
	if a.CapOverride > 0 && a.CapOverride < profileCap {
		return a.CapOverride
	}
	return profileCap
}
