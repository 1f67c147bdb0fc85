package logging_test

import (
	"context"
	"testing"
	"time"

	"emberhollow/server/logging"
	"emberhollow/server/logging/sinks"
)

func newMemoryRouter(t *testing.T, cfg logging.Config) (*logging.Router, *sinks.Memory) {
	t.Helper()
	mem := sinks.NewMemory()
	router, err := logging.NewRouter(nil, cfg, []logging.NamedSink{{Name: "memory", Sink: mem}})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		router.Close(ctx)
	})
	return router, mem
}

func waitForEvents(t *testing.T, mem *sinks.Memory, want int) []logging.Event {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		events := mem.Events()
		if len(events) >= want {
			return events
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d events, have %d", want, len(mem.Events()))
	return nil
}

func TestRouterDeliversToSink(t *testing.T) {
	cfg := logging.DefaultConfig()
	cfg.Fields = map[string]any{"service": "emberhollow"}
	router, mem := newMemoryRouter(t, cfg)

	router.Publish(context.Background(), logging.Event{
		Type:     "progression.action_started",
		Tick:     3,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryProgression,
	})

	events := waitForEvents(t, mem, 1)
	got := events[0]
	if got.Type != "progression.action_started" || got.Tick != 3 {
		t.Fatalf("delivered event %+v", got)
	}
	if got.Time.IsZero() {
		t.Fatal("router should stamp a timestamp")
	}
	if got.Extra["service"] != "emberhollow" {
		t.Fatalf("config fields not stamped: %v", got.Extra)
	}

	stats := router.Stats()
	if stats.EventsTotal != 1 || stats.DroppedTotal != 0 {
		t.Fatalf("stats %+v", stats)
	}
}

func TestRouterFiltersBelowMinimumSeverity(t *testing.T) {
	cfg := logging.DefaultConfig()
	cfg.MinimumSeverity = logging.SeverityWarn
	router, mem := newMemoryRouter(t, cfg)

	router.Publish(context.Background(), logging.Event{Type: "debug.noise", Severity: logging.SeverityInfo})
	router.Publish(context.Background(), logging.Event{Type: "combat.defeat", Severity: logging.SeverityWarn})

	events := waitForEvents(t, mem, 1)
	if len(events) != 1 || events[0].Type != "combat.defeat" {
		t.Fatalf("events %+v", events)
	}
}

func TestRouterDropAccounting(t *testing.T) {
	gate := make(chan struct{})
	entered := make(chan struct{}, 1)
	first := true
	clock := logging.ClockFunc(func() time.Time {
		if first {
			first = false
			entered <- struct{}{}
			<-gate
		}
		return time.Unix(0, 0)
	})

	cfg := logging.DefaultConfig()
	cfg.BufferSize = 1
	mem := sinks.NewMemory()
	router, err := logging.NewRouter(clock, cfg, []logging.NamedSink{{Name: "memory", Sink: mem}})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}

	ctx := context.Background()
	// First event stalls the dispatcher inside the clock; the second
	// fills the queue; everything after that must be dropped.
	router.Publish(ctx, logging.Event{Type: "one", Severity: logging.SeverityInfo})
	<-entered
	router.Publish(ctx, logging.Event{Type: "two", Severity: logging.SeverityInfo})
	for i := 0; i < 5; i++ {
		router.Publish(ctx, logging.Event{Type: "overflow", Severity: logging.SeverityInfo})
	}
	close(gate)

	waitForEvents(t, mem, 2)
	stats := router.Stats()
	if stats.DroppedTotal != 5 {
		t.Fatalf("dropped = %d, want 5", stats.DroppedTotal)
	}
	if stats.EventsTotal != 2 {
		t.Fatalf("forwarded = %d, want 2", stats.EventsTotal)
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := router.Close(closeCtx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if router.Sink("memory") != mem {
		t.Fatal("named sink lookup failed")
	}
}
