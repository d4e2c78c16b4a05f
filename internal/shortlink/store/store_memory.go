package store

import (
	"context"
	"fmt"
	"sync"

	"gatekeeper/pkg/platform/sentinel"
)

// Error Contract:
// - PutIfAbsent returns (false, nil) when the code is already taken
// - Get returns ErrNotFound when the code is unknown
//
// Entries never expire.

// InMemoryStore keeps short links in process memory. Contents are lost on restart.
type InMemoryStore struct {
	mu    sync.RWMutex
	links map[string]string
}

// NewInMemoryStore constructs an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{links: make(map[string]string)}
}

// PutIfAbsent stores target under code unless the code is taken.
func (s *InMemoryStore) PutIfAbsent(_ context.Context, code, target string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.links[code]; taken {
		return false, nil
	}
	s.links[code] = target
	return true, nil
}

func (s *InMemoryStore) Get(_ context.Context, code string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	target, ok := s.links[code]
	if !ok {
		return "", fmt.Errorf("short link not found: %w", sentinel.ErrNotFound)
	}
	return target, nil
}

// Len returns the number of stored links.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.links)
}
