package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"gatekeeper/internal/verification/models"
	"gatekeeper/internal/verification/policy"
	"gatekeeper/internal/verification/selfapp"
	id "gatekeeper/pkg/domain"
	"gatekeeper/pkg/platform/audit"
	"gatekeeper/pkg/platform/sentinel"
)

const tracerName = "gatekeeper/internal/verification/service"

// DefaultSuccessMessage is sent to the requester after a completed verification.
const DefaultSuccessMessage = "**Verification Successful!**\n\n" +
	"Your verification through Self.xyz has been completed successfully.\n\n" +
	"You've been granted the verified role and can now access the restricted channels.\n\n" +
	"Welcome to the verified community!"

// Config is the per-deployment behavior of the verification flow.
type Config struct {
	Policy         policy.Policy
	App            selfapp.App
	DeliveryMode   models.DeliveryMode
	VerifiedRoleID string
	// DefaultOriginID is used when a session carries no origin.
	DefaultOriginID id.OriginID
	SuccessMessage  string
}

// Service starts verification sessions and completes them when the
// provider calls back.
type Service struct {
	cfg       Config
	sessions  SessionStore
	granter   AccessGranter
	shortener LinkShortener
	renderer  QRRenderer
	auditor   AuditRecorder
	metrics   Metrics
	logger    *slog.Logger
	tracer    trace.Tracer
}

// Option configures optional collaborators.
type Option func(*Service)

// WithAccessGranter sets the chat-platform collaborator. Without one, role
// grants and notifications fail and are logged.
func WithAccessGranter(g AccessGranter) Option {
	return func(s *Service) { s.granter = g }
}

func WithShortener(sh LinkShortener) Option {
	return func(s *Service) { s.shortener = sh }
}

func WithQRRenderer(r QRRenderer) Option {
	return func(s *Service) { s.renderer = r }
}

func WithAuditor(a AuditRecorder) Option {
	return func(s *Service) { s.auditor = a }
}

func WithMetrics(m Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// New constructs the service. sessions is required; everything else is optional.
func New(cfg Config, sessions SessionStore, opts ...Option) (*Service, error) {
	if sessions == nil {
		return nil, errors.New("session store is required")
	}
	if cfg.SuccessMessage == "" {
		cfg.SuccessMessage = DefaultSuccessMessage
	}
	if cfg.DeliveryMode == "" {
		cfg.DeliveryMode = models.DeliveryQR
	}
	s := &Service{
		cfg:      cfg,
		sessions: sessions,
		logger:   slog.Default(),
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// VerifiedRoleID is the role granted on success, or "" if none is configured.
func (s *Service) VerifiedRoleID() string {
	return s.cfg.VerifiedRoleID
}

// Evaluate classifies a raw result without touching any session.
func (s *Service) Evaluate(raw models.RawResult) models.Outcome {
	return s.cfg.Policy.Evaluate(raw)
}

// IsPending reports whether a session is still waiting for its callback.
// Diagnostic only: the answer may be stale by the time it is used.
func (s *Service) IsPending(ctx context.Context, sessionID id.SessionID) bool {
	_, err := s.sessions.Lookup(ctx, sessionID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		s.logger.WarnContext(ctx, "session lookup failed", "session_id", sessionID.String(), "error", err)
	}
	return err == nil
}

func (s *Service) record(ctx context.Context, eventType audit.EventType, message string, kv ...any) {
	if s.auditor == nil {
		return
	}
	s.auditor.Record(ctx, eventType, message, kv...)
}

func (s *Service) observePending() {
	if s.metrics != nil {
		s.metrics.SetPending(s.sessions.Len())
	}
}
