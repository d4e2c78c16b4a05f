package provider

import (
	"context"
	"strings"

	"gatekeeper/internal/verification/models"
)

// contextHeaderHexLen is the chain id and user identifier prefix of
// userContextData: two 32-byte words, hex encoded.
const contextHeaderHexLen = 128

// MockVerifier accepts every proof. For local development only.
type MockVerifier struct {
	// Details overrides the validity checks returned. Zero means all pass.
	Details *models.ValidityDetails
}

// NewMockVerifier creates a verifier that accepts everything.
func NewMockVerifier() *MockVerifier {
	return &MockVerifier{}
}

// Verify echoes the user data carried in userContextData without checking the proof.
func (m *MockVerifier) Verify(_ context.Context, req VerifyRequest) (models.RawResult, error) {
	details := models.ValidityDetails{IsValid: true, IsMinimumAgeValid: true}
	if m.Details != nil {
		details = *m.Details
	}
	return models.RawResult{
		AttestationID:  req.AttestationID,
		IsValidDetails: details,
		DiscloseOutput: map[string]any{},
		UserData:       SplitUserContext(req.UserContextData),
	}, nil
}

// SplitUserContext separates the user identifier and user-defined data from
// hex userContextData. Input shorter than the header is treated as bare
// user-defined data.
func SplitUserContext(userContextData string) models.UserData {
	data := strings.TrimPrefix(strings.TrimPrefix(userContextData, "0x"), "0X")
	if len(data) < contextHeaderHexLen {
		return models.UserData{UserDefinedData: data}
	}
	return models.UserData{
		UserIdentifier:  data[contextHeaderHexLen/2 : contextHeaderHexLen],
		UserDefinedData: data[contextHeaderHexLen:],
	}
}
