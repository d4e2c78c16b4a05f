// Package file appends audit events to a local JSON-lines file.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	audit "gatekeeper/pkg/platform/audit"
)

// DefaultPath is where events go when no path is configured.
const DefaultPath = "logs/verifier.log"

// Store writes one JSON object per line. Writes are serialized.
type Store struct {
	mu sync.Mutex
	f  *os.File
}

// New opens (or creates) path for appending, creating parent directories.
func New(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create audit log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	return &Store{f: f}, nil
}

func (s *Store) Append(_ context.Context, event audit.Event) error {
	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.f.Write(line); err != nil {
		return fmt.Errorf("write audit event: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.Close()
}
