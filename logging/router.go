package logging

import (
	"context"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Sink receives fully stamped events. Writes happen on a single worker
// goroutine per sink, so implementations need not be concurrency-safe
// between Writes.
type Sink interface {
	Write(Event) error
	Close(context.Context) error
}

// NamedSink pairs a sink with the name used to enable and look it up.
type NamedSink struct {
	Name string
	Sink Sink
}

// RouterStats is a point-in-time pair of delivery counters.
type RouterStats struct {
	EventsTotal  uint64
	DroppedTotal uint64
}

// Router fans events out to sinks without ever blocking the caller.
// Publish pushes into a bounded inbox; one dispatcher goroutine stamps
// each event and hands it to a per-sink writer. When the inbox is full
// the event is dropped, counted, and mentioned on stderr at most once
// per DropWarnInterval.
type Router struct {
	inbox   chan Event
	writers []*sinkWriter
	clock   Clock
	errlog  *log.Logger
	stop    chan struct{}
	closed  atomic.Bool
	filter  Severity
	stamp   map[string]any
	warnGap time.Duration
	wg      sync.WaitGroup

	delivered atomic.Uint64
	dropped   atomic.Uint64

	warnMu   sync.Mutex
	lastWarn time.Time
}

func NewRouter(clock Clock, cfg Config, named []NamedSink) (*Router, error) {
	if clock == nil {
		clock = SystemClock{}
	}
	depth := cfg.BufferSize
	if depth <= 0 {
		depth = defaultQueueDepth
	}
	gap := cfg.DropWarnInterval
	if gap <= 0 {
		gap = defaultDropWarnGap
	}
	r := &Router{
		inbox:   make(chan Event, depth),
		clock:   clock,
		errlog:  log.New(os.Stderr, "[logging] ", log.LstdFlags),
		stop:    make(chan struct{}),
		filter:  cfg.MinimumSeverity,
		stamp:   cfg.CloneFields(),
		warnGap: gap,
	}

	backlog := depth
	if backlog < 32 {
		backlog = 32
	}
	for _, ns := range named {
		if ns.Sink == nil {
			continue
		}
		r.writers = append(r.writers, newSinkWriter(ns.Name, ns.Sink, backlog, r.errlog))
	}

	for _, w := range r.writers {
		r.wg.Add(1)
		go func(w *sinkWriter) {
			defer r.wg.Done()
			w.run()
		}(w)
	}
	r.wg.Add(1)
	go r.dispatch()
	return r, nil
}

// Publish enqueues the event for delivery. It is safe from any
// goroutine and returns immediately even when the inbox is full.
func (r *Router) Publish(_ context.Context, event Event) {
	if event.Type == "" || r.closed.Load() {
		return
	}
	select {
	case r.inbox <- event:
	default:
		r.recordDrop(event)
	}
}

func (r *Router) dispatch() {
	defer func() {
		for _, w := range r.writers {
			close(w.backlog)
		}
		r.wg.Done()
	}()
	for {
		select {
		case <-r.stop:
			// Flush whatever made it into the inbox before shutdown.
			for {
				select {
				case event := <-r.inbox:
					r.deliver(event)
				default:
					return
				}
			}
		case event := <-r.inbox:
			r.deliver(event)
		}
	}
}

func (r *Router) deliver(event Event) {
	if event.Severity < r.filter {
		return
	}
	if event.Time.IsZero() {
		event.Time = r.clock.Now()
	}
	if len(r.stamp) > 0 {
		event = cloneEvent(event)
		if event.Extra == nil {
			event.Extra = make(map[string]any, len(r.stamp))
		}
		for k, v := range r.stamp {
			if _, taken := event.Extra[k]; !taken {
				event.Extra[k] = v
			}
		}
	}
	r.delivered.Add(1)
	for _, w := range r.writers {
		w.offer(event)
	}
}

func (r *Router) recordDrop(event Event) {
	r.dropped.Add(1)
	r.warnMu.Lock()
	now := time.Now()
	warn := r.lastWarn.IsZero() || now.Sub(r.lastWarn) >= r.warnGap
	if warn {
		r.lastWarn = now
	}
	r.warnMu.Unlock()
	if warn {
		r.errlog.Printf("inbox full, dropping event type=%s tick=%d", event.Type, event.Tick)
	}
}

// Close stops the dispatcher, waits for the writers to drain, then
// closes every sink. The first sink error wins.
func (r *Router) Close(ctx context.Context) error {
	if !r.closed.CompareAndSwap(false, true) {
		<-ctx.Done()
		return ctx.Err()
	}
	close(r.stop)
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	var firstErr error
	for _, w := range r.writers {
		if err := w.sink.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Router) Stats() RouterStats {
	return RouterStats{
		EventsTotal:  r.delivered.Load(),
		DroppedTotal: r.dropped.Load(),
	}
}

// Sink returns the sink registered under name, or nil.
func (r *Router) Sink(name string) Sink {
	for _, w := range r.writers {
		if w.name == name {
			return w.sink
		}
	}
	return nil
}

// sinkWriter serializes writes to one sink. A failing sink backs off
// with doubling pauses so a dead file handle cannot spin the loop.
type sinkWriter struct {
	name    string
	sink    Sink
	backlog chan Event
	errlog  *log.Logger
	pause   time.Duration
}

func newSinkWriter(name string, sink Sink, depth int, errlog *log.Logger) *sinkWriter {
	if depth <= 0 {
		depth = 32
	}
	return &sinkWriter{
		name:    name,
		sink:    sink,
		backlog: make(chan Event, depth),
		errlog:  errlog,
	}
}

func (w *sinkWriter) offer(event Event) {
	select {
	case w.backlog <- cloneEvent(event):
	default:
		w.errlog.Printf("sink %s backlog full, dropping event type=%s", w.name, event.Type)
	}
}

func (w *sinkWriter) run() {
	for event := range w.backlog {
		if w.pause > 0 {
			time.Sleep(w.pause)
		}
		if err := w.sink.Write(event); err != nil {
			w.noteFailure(err)
			continue
		}
		w.pause = 0
	}
}

func (w *sinkWriter) noteFailure(err error) {
	switch {
	case w.pause == 0:
		w.pause = time.Second
	case w.pause < 32*time.Second:
		w.pause *= 2
	}
	w.errlog.Printf("sink %s write failed: %v (next attempt in %s)", w.name, err, w.pause)
}
