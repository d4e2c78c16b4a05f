// Package policy turns a provider's raw verification result into an
// accept or reject decision.
package policy

import "gatekeeper/internal/verification/models"

// DefaultMinimumAge is requested from the provider when none is configured.
const DefaultMinimumAge = 18

var reasonText = map[models.ReasonCode]string{
	models.ReasonInvalidProof:    "Verification failed",
	models.ReasonAgeBelowMinimum: "Minimum age verification failed",
	models.ReasonSanctionsMatch:  "User is in OFAC sanctions list",
}

// Policy is the acceptance configuration shared by every verification.
type Policy struct {
	// MinimumAge is disclosed to the provider; the provider reports whether it held.
	MinimumAge int
	// RejectSanctioned turns a sanctions-list match into a rejection.
	RejectSanctioned bool
}

// Default returns the production policy.
func Default() Policy {
	return Policy{
		MinimumAge:       DefaultMinimumAge,
		RejectSanctioned: true,
	}
}

// Evaluate applies the rule chain. This is pure domain logic - no I/O, no side effects.
// Rule priority (fail-fast):
//  1. Proof validity
//  2. Minimum age
//  3. Sanctions match
func (p Policy) Evaluate(raw models.RawResult) models.Outcome {
	details := raw.IsValidDetails

	if !details.IsValid {
		return reject(models.ReasonInvalidProof)
	}
	if !details.IsMinimumAgeValid {
		return reject(models.ReasonAgeBelowMinimum)
	}
	// IsOfacValid is true on a MATCH.
	if details.IsOfacValid && p.RejectSanctioned {
		return reject(models.ReasonSanctionsMatch)
	}
	return models.Outcome{Accepted: true, Reason: models.ReasonNone}
}

// Reason returns the human-readable text for a rejection code, or "" for ReasonNone.
func Reason(code models.ReasonCode) string {
	return reasonText[code]
}

func reject(code models.ReasonCode) models.Outcome {
	return models.Outcome{Accepted: false, Reason: code}
}
