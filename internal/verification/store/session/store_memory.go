package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gatekeeper/internal/verification/models"
	id "gatekeeper/pkg/domain"
	"gatekeeper/pkg/platform/sentinel"
	"gatekeeper/pkg/requestcontext"
)

// maxIDAttempts bounds regeneration when a fresh id collides with a pending one.
const maxIDAttempts = 5

// Error Contract:
// - Return ErrNotFound when the session does not exist (never created, consumed, or swept)
// - Return ErrConflict when no unique id could be generated
// - Return nil for successful operations
//
// Consume and SweepExpired take the same write lock, so for any one session
// exactly one of them observes it. A consumed session is never swept and a
// swept session is never consumed.

// InMemorySessionStore holds pending verification sessions. Contents are lost
// on restart.
type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[id.SessionID]*models.Session
	newID    func() id.SessionID
}

// Option configures the store.
type Option func(*InMemorySessionStore)

// WithIDGenerator replaces the session id source.
func WithIDGenerator(gen func() id.SessionID) Option {
	return func(s *InMemorySessionStore) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// New constructs an empty in-memory session store.
func New(opts ...Option) *InMemorySessionStore {
	s := &InMemorySessionStore{
		sessions: make(map[id.SessionID]*models.Session),
		newID:    id.NewSessionID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores a new session stamped with the request-scoped time.
func (s *InMemorySessionStore) Create(ctx context.Context, requesterID id.RequesterID, originID id.OriginID) (*models.Session, error) {
	now := requestcontext.Now(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	for range maxIDAttempts {
		sid := s.newID()
		if _, taken := s.sessions[sid]; taken || sid.IsNil() {
			continue
		}
		record := &models.Session{
			ID:          sid,
			RequesterID: requesterID,
			OriginID:    originID,
			CreatedAt:   now,
		}
		s.sessions[sid] = record
		out := *record
		return &out, nil
	}
	return nil, fmt.Errorf("generate session id: %w", sentinel.ErrConflict)
}

// Attach records the artifact reference rendered for a session.
func (s *InMemorySessionStore) Attach(_ context.Context, sessionID id.SessionID, auxiliaryRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.sessions[sessionID]
	if !ok {
		return fmt.Errorf("session not found: %w", sentinel.ErrNotFound)
	}
	record.AuxiliaryRef = auxiliaryRef
	return nil
}

// Lookup returns a copy of the session without removing it.
func (s *InMemorySessionStore) Lookup(_ context.Context, sessionID id.SessionID) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("session not found: %w", sentinel.ErrNotFound)
	}
	out := *record
	return &out, nil
}

// Consume atomically reads and removes the session. Of any number of
// concurrent callers for one id, exactly one receives the record.
func (s *InMemorySessionStore) Consume(_ context.Context, sessionID id.SessionID) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("session not found: %w", sentinel.ErrNotFound)
	}
	delete(s.sessions, sessionID)
	return record, nil
}

// SweepExpired removes sessions older than maxAge as of now and returns them.
// The time parameter is injected for testability (no hidden time.Now() calls).
func (s *InMemorySessionStore) SweepExpired(_ context.Context, maxAge time.Duration, now time.Time) ([]models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed []models.Session
	for sid, record := range s.sessions {
		if record.IsExpired(maxAge, now) {
			delete(s.sessions, sid)
			removed = append(removed, *record)
		}
	}
	return removed, nil
}

// Len returns the number of pending sessions.
func (s *InMemorySessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
