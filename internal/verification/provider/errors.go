package provider

import (
	"errors"
	"fmt"
)

// ErrorCategory is the normalized failure taxonomy for verifier calls.
type ErrorCategory string

const (
	// ErrorTimeout means the verifier took too long to respond.
	ErrorTimeout ErrorCategory = "timeout"

	// ErrorBadData means the verifier rejected the input or answered with something unparseable.
	ErrorBadData ErrorCategory = "bad_data"

	// ErrorOutage means the verifier is unreachable or failing.
	ErrorOutage ErrorCategory = "provider_outage"

	// ErrorRateLimited means the verifier asked us to back off.
	ErrorRateLimited ErrorCategory = "rate_limited"

	ErrorInternal ErrorCategory = "internal"
)

// ProviderError wraps verifier failures with a normalized category.
type ProviderError struct {
	Category   ErrorCategory
	Message    string
	Underlying error
	Retryable  bool
}

func (e *ProviderError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("verifier [%s]: %s: %v", e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("verifier [%s]: %s", e.Category, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Underlying
}

// NewProviderError creates a normalized verifier error.
func NewProviderError(category ErrorCategory, message string, underlying error) *ProviderError {
	retryable := category == ErrorTimeout ||
		category == ErrorOutage ||
		category == ErrorRateLimited

	return &ProviderError{
		Category:   category,
		Message:    message,
		Underlying: underlying,
		Retryable:  retryable,
	}
}

// IsRetryable reports whether err is worth retrying.
func IsRetryable(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}

// GetCategory extracts the category from err.
func GetCategory(err error) ErrorCategory {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Category
	}
	return ErrorInternal
}
