// Package fanout writes each audit event to several stores.
package fanout

import (
	"context"
	"errors"

	audit "gatekeeper/pkg/platform/audit"
)

// Store appends to every sink. A failing sink does not stop the others;
// the joined error is returned.
type Store struct {
	sinks []audit.Store
}

func New(sinks ...audit.Store) *Store {
	return &Store{sinks: sinks}
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	var errs []error
	for _, sink := range s.sinks {
		if err := sink.Append(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Len reports the number of sinks.
func (s *Store) Len() int {
	return len(s.sinks)
}
