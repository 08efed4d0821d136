package system

import "testing"

type recorder struct {
	name  string
	phase Phase
	log   *[]string
	ticks []int64
}

func (p *recorder) Phase() Phase { return p.phase }

func (p *recorder) Update(tick int64) {
	*p.log = append(*p.log, p.name)
	p.ticks = append(p.ticks, tick)
}

func TestRunnerPhaseOrder(t *testing.T) {
	var log []string
	r := NewRunner()
	persist := &recorder{name: "persist", phase: PhasePersist, log: &log}
	spawn := &recorder{name: "spawn", phase: PhaseUpdate, log: &log}
	steer := &recorder{name: "steer", phase: PhaseUpdate, log: &log}
	prune := &recorder{name: "prune", phase: PhasePrune, log: &log}
	r.Register(persist)
	r.Register(spawn)
	r.Register(steer)
	r.Register(prune)

	r.Tick()
	want := []string{"prune", "spawn", "steer", "persist"}
	for i, name := range want {
		if log[i] != name {
			t.Fatalf("order=%v want=%v", log, want)
		}
	}
}

func TestRunnerTickCounter(t *testing.T) {
	var log []string
	r := NewRunner()
	p := &recorder{name: "p", phase: PhaseUpdate, log: &log}
	r.Register(p)

	r.SetTick(100)
	r.Tick()
	r.Tick()
	if r.CurrentTick() != 102 {
		t.Fatalf("tick=%d want=102", r.CurrentTick())
	}
	if p.ticks[0] != 100 || p.ticks[1] != 101 {
		t.Fatalf("ticks seen=%v", p.ticks)
	}

	r.TickPhase(PhasePrune)
	if len(p.ticks) != 2 || r.CurrentTick() != 102 {
		t.Fatalf("TickPhase ran other phases or advanced the clock")
	}
}
