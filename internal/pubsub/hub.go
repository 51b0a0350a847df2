package pubsub

import "sync"

// Hub fans the latest value out to subscribers. Each subscriber sees the most
// recent value; intermediate values are skipped when it lags behind.
type Hub[T any] struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan T
	latest T
	set    bool
}

// NewHub returns an empty hub.
func NewHub[T any]() *Hub[T] {
	return &Hub[T]{subs: make(map[int]chan T)}
}

// Publish replaces the latest value and notifies every subscriber.
func (h *Hub[T]) Publish(v T) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.latest = v
	h.set = true
	for _, ch := range h.subs {
		deliver(ch, v)
	}
}

// Latest returns the last published value, if any.
func (h *Hub[T]) Latest() (T, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.latest, h.set
}

// Subscribe returns a channel receiving the latest value immediately, when
// one exists, and every later one. The cancel func closes the channel.
func (h *Hub[T]) Subscribe() (<-chan T, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan T, 1)
	h.subs[id] = ch
	if h.set {
		ch <- h.latest
	}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Subscribers returns the number of attached subscribers.
func (h *Hub[T]) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// deliver drops a stale undelivered value in favor of v.
func deliver[T any](ch chan T, v T) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- v:
	default:
	}
}
