package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"gatekeeper/internal/verification/models"
)

// DefaultTimeout bounds one verifier round trip.
const DefaultTimeout = 10 * time.Second

// maxResponseBytes caps how much of the verifier's answer is read.
const maxResponseBytes = 1 << 20

// HTTPVerifier posts proofs to a verifier service over HTTP.
type HTTPVerifier struct {
	url    string
	client *http.Client
}

// HTTPOption configures an HTTPVerifier.
type HTTPOption func(*HTTPVerifier)

// WithHTTPClient replaces the underlying client. Its timeout is kept as-is.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(v *HTTPVerifier) {
		if c != nil {
			v.client = c
		}
	}
}

// NewHTTPVerifier creates a verifier client for url.
func NewHTTPVerifier(url string, timeout time.Duration, opts ...HTTPOption) *HTTPVerifier {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	v := &HTTPVerifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify relays the submission and decodes the verifier's result.
func (v *HTTPVerifier) Verify(ctx context.Context, req VerifyRequest) (models.RawResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return models.RawResult{}, NewProviderError(ErrorBadData, "encode request", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, v.url, bytes.NewReader(body))
	if err != nil {
		return models.RawResult{}, NewProviderError(ErrorInternal, "build request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := v.client.Do(httpReq)
	if err != nil {
		return models.RawResult{}, classifyTransportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return models.RawResult{}, classifyTransportError(err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return models.RawResult{}, NewProviderError(ErrorRateLimited, "verifier rate limited", nil)
	case resp.StatusCode >= http.StatusInternalServerError:
		return models.RawResult{}, NewProviderError(ErrorOutage, fmt.Sprintf("verifier returned %d", resp.StatusCode), nil)
	case resp.StatusCode >= http.StatusBadRequest:
		return models.RawResult{}, NewProviderError(ErrorBadData, fmt.Sprintf("verifier rejected request: %s", errorMessage(raw, resp.StatusCode)), nil)
	}

	var result models.RawResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return models.RawResult{}, NewProviderError(ErrorBadData, "decode verifier response", err)
	}
	return result, nil
}

func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return NewProviderError(ErrorTimeout, "verifier timed out", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewProviderError(ErrorTimeout, "verifier timed out", err)
	}
	if errors.Is(err, context.Canceled) {
		return NewProviderError(ErrorInternal, "request cancelled", err)
	}
	return NewProviderError(ErrorOutage, "verifier unreachable", err)
}

// errorMessage pulls a message out of a JSON error body when there is one.
func errorMessage(body []byte, status int) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Reason  string `json:"reason"`
	}
	if json.Unmarshal(body, &payload) == nil {
		for _, m := range []string{payload.Message, payload.Reason, payload.Error} {
			if m != "" {
				return m
			}
		}
	}
	return http.StatusText(status)
}
