// Package provider checks zero-knowledge proofs by delegating to an external
// verifier. Nothing here inspects proof material.
package provider

import (
	"context"
	"encoding/json"

	"gatekeeper/internal/verification/models"
)

// VerifyRequest is the proof submission relayed from the mobile app.
type VerifyRequest struct {
	AttestationID   int             `json:"attestationId"`
	Proof           json.RawMessage `json:"proof"`
	PublicSignals   json.RawMessage `json:"publicSignals"`
	UserContextData string          `json:"userContextData"`
}

// Verifier checks a proof and returns the provider's raw result.
type Verifier interface {
	Verify(ctx context.Context, req VerifyRequest) (models.RawResult, error)
}
