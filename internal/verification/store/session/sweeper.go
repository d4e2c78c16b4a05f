package session

import (
	"context"
	"log/slog"
	"time"

	"gatekeeper/internal/verification/models"
	"gatekeeper/pkg/platform/audit"
)

// Sweepable is the store surface the sweeper needs.
type Sweepable interface {
	SweepExpired(ctx context.Context, maxAge time.Duration, now time.Time) ([]models.Session, error)
	Len() int
}

// AuditRecorder receives one event per expired session.
type AuditRecorder interface {
	Record(ctx context.Context, eventType audit.EventType, message string, kv ...any)
}

// Observer is notified after each sweep, for gauges and counters.
type Observer interface {
	ObserveSweep(removed int, pending int)
}

// Used when NewSweeper is given a non-positive duration.
const (
	DefaultMaxAge        = 15 * time.Minute
	DefaultSweepInterval = time.Minute
)

// Sweeper drops sessions that were never completed within the TTL.
type Sweeper struct {
	store    Sweepable
	maxAge   time.Duration
	interval time.Duration
	logger   *slog.Logger
	auditor  AuditRecorder
	observer Observer
}

// SweeperOption configures a Sweeper.
type SweeperOption func(*Sweeper)

func WithAuditor(a AuditRecorder) SweeperOption {
	return func(s *Sweeper) { s.auditor = a }
}

func WithObserver(o Observer) SweeperOption {
	return func(s *Sweeper) { s.observer = o }
}

func NewSweeper(store Sweepable, maxAge, interval time.Duration, logger *slog.Logger, opts ...SweeperOption) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	s := &Sweeper{
		store:    store,
		maxAge:   maxAge,
		interval: interval,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run sweeps every interval until ctx is cancelled. Cancellation is a clean stop.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.SweepAt(ctx, time.Now())
		case <-ctx.Done():
			return nil
		}
	}
}

// SweepAt performs one sweep as of now and returns the number removed.
// Exported for testability; Run passes wall-clock time.
func (s *Sweeper) SweepAt(ctx context.Context, now time.Time) int {
	removed, err := s.store.SweepExpired(ctx, s.maxAge, now)
	if err != nil {
		s.logger.ErrorContext(ctx, "session sweep failed", "error", err)
		return 0
	}

	for _, sess := range removed {
		if s.auditor != nil {
			s.auditor.Record(ctx, audit.EventSessionExpired, "Verification session expired",
				"session_id", sess.ID.String(),
				"requester_id", sess.RequesterID.String(),
				"origin_id", sess.OriginID.String(),
				"age_seconds", int64(now.Sub(sess.CreatedAt).Seconds()),
			)
		}
	}
	pending := s.store.Len()
	if s.observer != nil {
		s.observer.ObserveSweep(len(removed), pending)
	}
	if len(removed) > 0 {
		s.logger.InfoContext(ctx, "expired sessions swept",
			"removed", len(removed),
			"pending", pending,
		)
	}
	return len(removed)
}
