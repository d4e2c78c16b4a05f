// Package service turns long verification links into short codes that are
// easier to show in chat and to type on a phone.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"

	dErrors "gatekeeper/pkg/domain-errors"
	"gatekeeper/pkg/platform/audit"
	"gatekeeper/pkg/platform/sentinel"
)

const (
	// Alphabet is the code character set.
	Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	// CodeLength is the number of characters in a code.
	CodeLength = 8
	// maxAttempts bounds regeneration on collision.
	maxAttempts = 5
	// PathPrefix is the route short links are served under.
	PathPrefix = "/v/"
)

// Store persists code to target mappings.
type Store interface {
	PutIfAbsent(ctx context.Context, code, target string) (bool, error)
	Get(ctx context.Context, code string) (string, error)
}

// AuditRecorder writes short-link events.
type AuditRecorder interface {
	Record(ctx context.Context, eventType audit.EventType, message string, kv ...any)
}

// Metrics is the subset of short-link metrics the service reports.
type Metrics interface {
	IncrementCreated()
	IncrementCollision()
	IncrementResolution(result string)
}

// Service shortens and resolves links.
type Service struct {
	store    Store
	baseURL  string
	generate func() (string, error)
	auditor  AuditRecorder
	metrics  Metrics
	logger   *slog.Logger
}

// Option configures the service.
type Option func(*Service)

// WithCodeGenerator replaces the random code source.
func WithCodeGenerator(gen func() (string, error)) Option {
	return func(s *Service) {
		if gen != nil {
			s.generate = gen
		}
	}
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

// New creates a shortener whose links live under baseURL.
func New(store Store, baseURL string, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("short link store is required")
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("short link base URL is required")
	}
	s := &Service{
		store:   store,
		baseURL: baseURL,
		generate: func() (string, error) {
			return gonanoid.Generate(Alphabet, CodeLength)
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Shorten stores longURL under a fresh code and returns <baseURL>/v/<code>.
func (s *Service) Shorten(ctx context.Context, longURL string) (string, error) {
	if strings.TrimSpace(longURL) == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "long URL is required")
	}
	for range maxAttempts {
		code, err := s.generate()
		if err != nil {
			return "", fmt.Errorf("generate short code: %w", err)
		}
		ok, err := s.store.PutIfAbsent(ctx, code, longURL)
		if err != nil {
			return "", fmt.Errorf("store short link: %w", err)
		}
		if !ok {
			if s.metrics != nil {
				s.metrics.IncrementCollision()
			}
			continue
		}
		if s.metrics != nil {
			s.metrics.IncrementCreated()
		}
		s.record(ctx, audit.EventLinkShortened, "short link created", "code", code)
		return s.baseURL + PathPrefix + code, nil
	}
	return "", fmt.Errorf("no free short code after %d attempts: %w", maxAttempts, sentinel.ErrConflict)
}

// Resolve returns the target for code, or ErrNotFound.
func (s *Service) Resolve(ctx context.Context, code string) (string, error) {
	if !ValidCode(code) {
		s.miss(ctx, code)
		return "", fmt.Errorf("malformed short code: %w", sentinel.ErrNotFound)
	}
	target, err := s.store.Get(ctx, code)
	if errors.Is(err, sentinel.ErrNotFound) {
		s.miss(ctx, code)
		return "", err
	}
	if err != nil {
		if s.metrics != nil {
			s.metrics.IncrementResolution("error")
		}
		return "", err
	}
	if s.metrics != nil {
		s.metrics.IncrementResolution("hit")
	}
	s.record(ctx, audit.EventLinkResolved, "short link resolved",
		"code", code,
		"target_prefix", truncate(target, 100),
	)
	return target, nil
}

// ValidCode reports whether code could have been issued by Shorten.
func ValidCode(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for _, c := range code {
		if !strings.ContainsRune(Alphabet, c) {
			return false
		}
	}
	return true
}

func (s *Service) miss(ctx context.Context, code string) {
	if s.metrics != nil {
		s.metrics.IncrementResolution("miss")
	}
	s.record(ctx, audit.EventLinkMissed, "short link not found", "code", truncate(code, 64))
}

func (s *Service) record(ctx context.Context, eventType audit.EventType, message string, kv ...any) {
	if s.auditor != nil {
		s.auditor.Record(ctx, eventType, message, kv...)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
