package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	dErrors "gatekeeper/pkg/domain-errors"
)

// maxExternalIDLength bounds identifiers issued by the chat platform.
// Snowflakes are at most 20 digits; the slack covers non-numeric test ids.
const maxExternalIDLength = 64

// SessionID identifies one pending verification attempt.
type SessionID uuid.UUID

// RequesterID is the chat-platform identity that started a verification.
type RequesterID string

// OriginID is the chat context (guild) the requester belongs to.
type OriginID string

// NewSessionID returns a fresh random session id.
func NewSessionID() SessionID {
	return SessionID(uuid.New())
}

// ParseSessionID parses a session id from untrusted input.
// Nil UUIDs are rejected.
func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID(s, "session ID")
	if err != nil {
		return SessionID{}, err
	}
	return SessionID(u), nil
}

func (id SessionID) String() string {
	return uuid.UUID(id).String()
}

func (id SessionID) IsNil() bool {
	return uuid.UUID(id) == uuid.Nil
}

// ParseRequesterID validates a chat-platform user id.
func ParseRequesterID(s string) (RequesterID, error) {
	if err := validateExternalID(s, "requester ID"); err != nil {
		return "", err
	}
	return RequesterID(s), nil
}

func (id RequesterID) String() string {
	return string(id)
}

func (id RequesterID) IsNil() bool {
	return id == ""
}

// ParseOriginID validates a chat-platform guild id.
func ParseOriginID(s string) (OriginID, error) {
	if err := validateExternalID(s, "origin ID"); err != nil {
		return "", err
	}
	return OriginID(s), nil
}

func (id OriginID) String() string {
	return string(id)
}

func (id OriginID) IsNil() bool {
	return id == ""
}

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+label)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return u, nil
}

func validateExternalID(s, label string) error {
	if strings.TrimSpace(s) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, label+" required")
	}
	if len(s) > maxExternalIDLength {
		return dErrors.New(dErrors.CodeInvalidInput, label+" too long")
	}
	if !utf8.ValidString(s) {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsControl(r) || !unicode.IsPrint(r) {
			return dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
		}
	}
	return nil
}
