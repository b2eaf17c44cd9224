package storage

import "sync"

// Hub is an in-process publish/subscribe channel for storage changes.
type Hub struct {
	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[*Subscription]struct{})}
}

// Subscription receives changes on C until Cancel is called; C is closed then.
type Subscription struct {
	C <-chan Change

	ch     chan Change
	origin string
	keys   []string
	hub    *Hub
	once   sync.Once
}

// Subscribe registers a listener for changes to keys (all keys when empty)
// made by any origin other than origin.
func (h *Hub) Subscribe(origin string, keys ...string) *Subscription {
	ch := make(chan Change, 1)
	s := &Subscription{
		C:      ch,
		ch:     ch,
		origin: origin,
		keys:   append([]string(nil), keys...),
		hub:    h,
	}

	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()

	return s
}

// Publish delivers c without blocking. A pending undelivered change is
// replaced by c.
func (h *Hub) Publish(c Change) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for s := range h.subs {
		if s.origin != "" && s.origin == c.Origin {
			continue
		}
		if !c.Has(s.keys...) {
			continue
		}
		select {
		case s.ch <- c:
			continue
		default:
		}
		select {
		case <-s.ch:
		default:
		}
		select {
		case s.ch <- c:
		default:
		}
	}
}

// Cancel unsubscribes and closes C. It is safe to call more than once.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subs, s)
		close(s.ch)
		s.hub.mu.Unlock()
	})
}
