package system

import (
	coresys "github.com/hearthmod/attract/internal/core/system"
	"github.com/hearthmod/attract/internal/core/event"
)

// EventDispatchSystem delivers the previous tick's events before any loop
// runs. Phase 0 (Events).
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhaseEvents }

func (s *EventDispatchSystem) Update(_ int64) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}
