package core

import (
	"strconv"
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func newTestCoordinator(opts ...Option) (*Coordinator, *fakeClock) {
	clock := &fakeClock{now: time.UnixMilli(1700000000000)}
	seq := 0
	base := []Option{
		WithClock(clock.Now),
		WithIDGenerator(func(time.Time) string {
			seq++
			return "m" + strconv.Itoa(seq)
		}),
	}
	return NewCoordinator(append(base, opts...)...), clock
}

// eventsOf returns the events of type T addressed to connID, in delivery order.
func eventsOf[T Event](deliveries []Delivery, connID string) []T {
	var out []T
	for _, d := range deliveries {
		if d.ConnID != connID {
			continue
		}
		if ev, ok := d.Event.(T); ok {
			out = append(out, ev)
		}
	}
	return out
}

func recipients(deliveries []Delivery, kind EventKind) map[string]int {
	out := make(map[string]int)
	for _, d := range deliveries {
		if d.Event.Kind() == kind {
			out[d.ConnID]++
		}
	}
	return out
}

func mustJoin(t *testing.T, c *Coordinator, connID, room, name string) []Delivery {
	t.Helper()
	out := c.Handle(connID, JoinRoom{RoomID: room, UserName: name})
	if _, err := c.Member(room, connID); err != nil {
		t.Fatalf("join %s as %s: %v", connID, name, err)
	}
	return out
}

func mustEvent(t *testing.T, ch <-chan Event, kind EventKind) Event {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				t.Fatalf("channel closed while waiting for %v", kind)
			}
			if ev != nil && ev.Kind() == kind {
				return ev
			}
		case <-deadline:
			t.Fatalf("expected event kind %v not received", kind)
			return nil
		}
	}
}
