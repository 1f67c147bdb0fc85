// Package notify decouples simulation mutations from their observers.
// Engines publish state-changed values; subscribers (the websocket hub,
// tests) receive them without ever touching the simulation goroutine.
package notify

import "sync"

// Hub fans values out to subscribers. Publishing never blocks: a
// subscriber that falls behind loses the oldest value, keeping the
// newest, since only the latest state matters to an observer.
type Hub[T any] struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan T
}

func NewHub[T any]() *Hub[T] {
	return &Hub[T]{subs: make(map[int]chan T)}
}

// Subscribe registers a new observer. The returned cancel func must be
// called to release the subscription.
func (h *Hub[T]) Subscribe() (<-chan T, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	ch := make(chan T, 1)
	h.subs[id] = ch
	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers v to every subscriber, displacing an undelivered
// older value if needed.
func (h *Hub[T]) Publish(v T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- v:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- v:
			default:
			}
		}
	}
}

// Len reports the current subscriber count.
func (h *Hub[T]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
