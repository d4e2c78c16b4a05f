package memory

import (
	"context"
	"sync"

	audit "gatekeeper/pkg/platform/audit"
)

// InMemoryStore keeps events in insertion order. Used by tests and as the
// recent-events buffer behind the admin audit listing.
type InMemoryStore struct {
	mu       sync.RWMutex
	events   []audit.Event
	capacity int
}

type Option func(*InMemoryStore)

// WithCapacity keeps only the newest n events. Zero means unbounded.
func WithCapacity(n int) Option {
	return func(s *InMemoryStore) { s.capacity = n }
}

func NewInMemoryStore(opts ...Option) *InMemoryStore {
	s := &InMemoryStore{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	if s.capacity > 0 && len(s.events) > s.capacity {
		// copy down so the backing array does not grow without bound
		n := copy(s.events, s.events[len(s.events)-s.capacity:])
		clear(s.events[n:])
		s.events = s.events[:n]
	}
	return nil
}

// ListAll returns a copy of every stored event, oldest first.
func (s *InMemoryStore) ListAll(_ context.Context) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events...), nil
}

// ListByType returns events of one type, oldest first.
func (s *InMemoryStore) ListByType(_ context.Context, eventType audit.EventType) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []audit.Event
	for _, e := range s.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListRecent returns the most recent N events, newest first.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := max(min(limit, len(s.events)), 0)
	out := make([]audit.Event, 0, n)
	for i := len(s.events) - 1; i >= len(s.events)-n; i-- {
		out = append(out, s.events[i])
	}
	return out, nil
}
