package worker

import (
	"context"
	"log/slog"

	audit "gatekeeper/pkg/platform/audit"
)

// Worker consumes audit events from a channel and persists them until the
// channel is closed. Store failures are logged and do not stop the loop.
type Worker struct {
	store  audit.Store
	inbox  <-chan audit.Event
	logger *slog.Logger
}

func NewWorker(store audit.Store, inbox <-chan audit.Event, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// Run drains the inbox. It returns nil once the inbox is closed and empty,
// or ctx.Err() if the context ends first.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.inbox:
			if !ok {
				return nil
			}
			if err := w.store.Append(ctx, event); err != nil {
				w.logger.Error("failed to persist audit event",
					"type", event.Type,
					"error", err,
				)
			}
		}
	}
}
