package event

import "testing"

type ping struct{ n int }
type pong struct{ n int }

func TestBusDeliversNextTick(t *testing.T) {
	b := NewBus()
	var got []int
	Subscribe(b, func(p ping) { got = append(got, p.n) })

	Emit(b, ping{1})
	Emit(b, ping{2})
	b.DispatchAll()
	if len(got) != 0 {
		t.Fatalf("delivered before the swap: %v", got)
	}
	if b.Pending() != 2 {
		t.Fatalf("pending=%d want=2", b.Pending())
	}

	b.SwapBuffers()
	b.DispatchAll()
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("got=%v want=[1 2]", got)
	}

	b.SwapBuffers()
	b.DispatchAll()
	if len(got) != 2 {
		t.Fatalf("events delivered twice: %v", got)
	}
}

func TestBusDeliversInFirstEmitOrder(t *testing.T) {
	b := NewBus()
	var log []string
	Subscribe(b, func(pong) { log = append(log, "pong") })
	Subscribe(b, func(ping) { log = append(log, "ping") })

	Emit(b, pong{})
	Emit(b, ping{})
	b.SwapBuffers()
	b.DispatchAll()
	if len(log) != 2 || log[0] != "pong" || log[1] != "ping" {
		t.Fatalf("order=%v", log)
	}
}
