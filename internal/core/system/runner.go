package system

import (
	"sort"
)

// Runner owns the world tick counter and executes systems in phase order.
type Runner struct {
	systems []System
	sorted  bool
	tick    int64
}

func NewRunner() *Runner {
	return &Runner{
		systems: make([]System, 0, 8),
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

// Tick runs every system for the current tick, then advances the counter.
func (r *Runner) Tick() {
	r.ensureSorted()
	for _, s := range r.systems {
		s.Update(r.tick)
	}
	r.tick++
}

// TickPhase runs only the systems of one phase for the current tick without
// advancing the counter.
func (r *Runner) TickPhase(phase Phase) {
	r.ensureSorted()
	for _, s := range r.systems {
		if s.Phase() == phase {
			s.Update(r.tick)
		}
	}
}

// CurrentTick is the tick the next call to Tick will simulate.
func (r *Runner) CurrentTick() int64 { return r.tick }

// SetTick resumes the counter, e.g. from a saved world clock.
func (r *Runner) SetTick(t int64) { r.tick = t }

func (r *Runner) ensureSorted() {
	if !r.sorted {
		// Stable: systems sharing a phase run in registration order.
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}
