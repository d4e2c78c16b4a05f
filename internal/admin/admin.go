// Package admin exposes operator-only read endpoints over the audit trail
// and in-memory state.
package admin

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	dErrors "gatekeeper/pkg/domain-errors"
	"gatekeeper/pkg/platform/httputil"
	adminmw "gatekeeper/pkg/platform/middleware/admin"
)

const (
	DefaultAuditLimit = 50
	MaxAuditLimit     = 500
)

// AuditLister reads the newest audit events.
type AuditLister interface {
	ListRecent(ctx context.Context, limit int) ([]*AuditEntryResponse, error)
}

// StatsSource reports live counters. LinkCount returns ok=false when the
// backing store cannot count cheaply.
type StatsSource interface {
	PendingSessions() int
	LinkCount() (int, bool)
}

type Handler struct {
	audit     AuditLister
	stats     StatsSource
	token     string
	logger    *slog.Logger
	startedAt time.Time
	now       func() time.Time
}

type Option func(*Handler)

func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) { h.logger = logger }
}

// WithClock overrides time.Now for uptime reporting.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

func New(audit AuditLister, stats StatsSource, token string, opts ...Option) (*Handler, error) {
	if audit == nil {
		return nil, errors.New("audit lister is required")
	}
	if stats == nil {
		return nil, errors.New("stats source is required")
	}
	h := &Handler{
		audit:  audit,
		stats:  stats,
		token:  token,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.startedAt = h.now()
	return h, nil
}

// Register mounts /admin. Every route requires the admin token.
func (h *Handler) Register(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(adminmw.RequireAdminToken(h.token, h.logger))
		r.Get("/audit", h.handleAudit)
		r.Get("/stats", h.handleStats)
	})
}

func (h *Handler) handleAudit(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	events, err := h.audit.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list audit events failed", "error", err)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "audit store unavailable"))
		return
	}
	if events == nil {
		events = []*AuditEntryResponse{}
	}
	httputil.WriteJSON(w, http.StatusOK, AuditListResponse{Events: events, Total: len(events)})
}

func (h *Handler) handleStats(w http.ResponseWriter, _ *http.Request) {
	now := h.now()
	resp := StatsResponse{
		PendingSessions: h.stats.PendingSessions(),
		StartedAt:       h.startedAt,
		Uptime:          now.Sub(h.startedAt).Truncate(time.Second).String(),
	}
	if n, ok := h.stats.LinkCount(); ok {
		resp.ShortLinks = &n
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return DefaultAuditLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "limit must be a positive integer")
	}
	return min(n, MaxAuditLimit), nil
}
