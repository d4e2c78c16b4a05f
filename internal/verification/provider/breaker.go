package provider

import (
	"context"
	"log/slog"

	"gatekeeper/internal/verification/models"
	"gatekeeper/pkg/platform/circuit"
)

// BreakingVerifier fails fast while the wrapped verifier is down. Only
// retryable failures (timeouts, outages, rate limits) count against the
// breaker; a verifier that answers with bad_data is up.
type BreakingVerifier struct {
	next    Verifier
	breaker *circuit.Breaker
	logger  *slog.Logger
}

func NewBreakingVerifier(next Verifier, breaker *circuit.Breaker, logger *slog.Logger) *BreakingVerifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &BreakingVerifier{next: next, breaker: breaker, logger: logger}
}

func (v *BreakingVerifier) Verify(ctx context.Context, req VerifyRequest) (models.RawResult, error) {
	if !v.breaker.Allow() {
		return models.RawResult{}, NewProviderError(ErrorOutage, "verifier circuit open", nil)
	}

	res, err := v.next.Verify(ctx, req)
	switch {
	case err == nil, !IsRetryable(err):
		if _, change := v.breaker.RecordSuccess(); change.Closed {
			v.logger.InfoContext(ctx, "verifier circuit closed", "breaker", v.breaker.Name())
		}
	default:
		if _, change := v.breaker.RecordFailure(); change.Opened {
			v.logger.WarnContext(ctx, "verifier circuit opened", "breaker", v.breaker.Name(), "error", err)
		}
	}
	return res, err
}
