package system

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseEvents   Phase = iota // 0: deliver last tick's events
	PhasePrune                 // 1: drop rows whose entities vanished
	PhaseUpdate                // 2: spawn + steering
	PhaseExpire                // 3: lifetime expiry, dispositions
	PhasePersist               // 4: save dirty attractor blocks
)

// System is the interface every engine loop implements. tick is the world
// tick being simulated; loops gate themselves with tick % interval.
type System interface {
	Phase() Phase
	Update(tick int64)
}
