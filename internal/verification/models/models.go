package models

import (
	"time"

	id "gatekeeper/pkg/domain"
)

// CorrelationKind tags tokens minted by this flow. Decoders drop anything else.
const CorrelationKind = "discord-self-verification"

// Session is one pending verification attempt.
type Session struct {
	ID          id.SessionID
	RequesterID id.RequesterID
	OriginID    id.OriginID
	CreatedAt   time.Time
	// AuxiliaryRef names an artifact rendered for this session (a QR file name).
	// The registry stores it but never interprets it.
	AuxiliaryRef string
}

// IsExpired reports whether the session has outlived maxAge at now.
func (s Session) IsExpired(maxAge time.Duration, now time.Time) bool {
	return s.CreatedAt.Add(maxAge).Before(now)
}

// CorrelationPayload is the record carried through the provider round trip.
// JSON names match the tokens already issued to the provider.
type CorrelationPayload struct {
	Kind        string `json:"kind"`
	SessionID   string `json:"sessionId"`
	RequesterID string `json:"discordUserId"`
	OriginID    string `json:"guildId"`
}

// NewCorrelationPayload builds the payload for a session.
func NewCorrelationPayload(s Session) CorrelationPayload {
	return CorrelationPayload{
		Kind:        CorrelationKind,
		SessionID:   s.ID.String(),
		RequesterID: s.RequesterID.String(),
		OriginID:    s.OriginID.String(),
	}
}

// ValidityDetails are the provider's raw checks.
// IsOfacValid is true when the subject MATCHES a sanctions list.
type ValidityDetails struct {
	IsValid           bool `json:"isValid"`
	IsMinimumAgeValid bool `json:"isMinimumAgeValid"`
	IsOfacValid       bool `json:"isOfacValid"`
}

// UserData is echoed back by the provider. UserDefinedData carries the
// hex-encoded correlation token.
type UserData struct {
	UserIdentifier  string `json:"userIdentifier"`
	UserDefinedData string `json:"userDefinedData"`
}

// RawResult is what the external verifier returns for one proof.
type RawResult struct {
	AttestationID  int             `json:"attestationId"`
	IsValidDetails ValidityDetails `json:"isValidDetails"`
	DiscloseOutput map[string]any  `json:"discloseOutput,omitempty"`
	UserData       UserData        `json:"userData"`
}

// ReasonCode explains a rejection.
type ReasonCode string

const (
	ReasonNone            ReasonCode = "none"
	ReasonInvalidProof    ReasonCode = "invalid_proof"
	ReasonAgeBelowMinimum ReasonCode = "age_below_minimum"
	ReasonSanctionsMatch  ReasonCode = "sanctions_match"
)

func (r ReasonCode) String() string {
	return string(r)
}

// Outcome is the evaluated acceptance decision. Never stored.
type Outcome struct {
	Accepted bool
	Reason   ReasonCode
}

// DeliveryMode selects how the verification link reaches the requester.
type DeliveryMode string

const (
	// DeliveryQR sends a scannable image alongside the link button.
	DeliveryQR DeliveryMode = "qr"
	// DeliveryLink sends the link button only.
	DeliveryLink DeliveryMode = "link"
)

// ParseDeliveryMode maps config text to a mode. Unknown values fall back to QR.
func ParseDeliveryMode(s string) DeliveryMode {
	if DeliveryMode(s) == DeliveryLink {
		return DeliveryLink
	}
	return DeliveryQR
}

// Member is a requester as seen inside one origin.
type Member struct {
	OriginID    id.OriginID
	RequesterID id.RequesterID
	RoleIDs     []string
}

// HasRole reports whether the member already holds roleID.
func (m Member) HasRole(roleID string) bool {
	if roleID == "" {
		return false
	}
	for _, r := range m.RoleIDs {
		if r == roleID {
			return true
		}
	}
	return false
}
