package service

import (
	"context"
	"time"

	"gatekeeper/internal/verification/models"
	id "gatekeeper/pkg/domain"
	"gatekeeper/pkg/platform/audit"
)

// SessionStore is the session registry the service drives.
type SessionStore interface {
	Create(ctx context.Context, requesterID id.RequesterID, originID id.OriginID) (*models.Session, error)
	Attach(ctx context.Context, sessionID id.SessionID, auxiliaryRef string) error
	Lookup(ctx context.Context, sessionID id.SessionID) (*models.Session, error)
	Consume(ctx context.Context, sessionID id.SessionID) (*models.Session, error)
	Len() int
}

// AccessGranter is the chat-platform collaborator. Calls may be slow; the
// collaborator's own timeouts apply.
type AccessGranter interface {
	FetchMember(ctx context.Context, originID id.OriginID, requesterID id.RequesterID) (*models.Member, error)
	AddRole(ctx context.Context, member *models.Member, roleID string) error
	SendDirectMessage(ctx context.Context, requesterID id.RequesterID, text string) error
}

// LinkShortener produces a display-friendly URL for a long verification link.
type LinkShortener interface {
	Shorten(ctx context.Context, longURL string) (string, error)
}

// QRRenderer renders content as a scannable PNG.
type QRRenderer interface {
	Render(content string) ([]byte, error)
}

// AuditRecorder writes the append-only event log.
type AuditRecorder interface {
	Record(ctx context.Context, eventType audit.EventType, message string, kv ...any)
}

// Metrics is the subset of verification metrics the service reports.
type Metrics interface {
	IncrementStarted(deliveryMode string)
	IncrementCompletion(status string)
	IncrementRejection(reason string)
	IncrementCollaboratorFault(step string)
	SetPending(n int)
	ObserveCompleteLatency(d time.Duration)
}
