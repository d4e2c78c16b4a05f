package audit

import (
	"context"
	"time"
)

// EventType names a state transition or failure in the verification flow.
type EventType string

const (
	// Session lifecycle
	EventSessionStarted EventType = "verification.started"
	EventSessionExpired EventType = "session.expired"

	// Completion path
	EventTokenDropped       EventType = "verification.token_dropped"
	EventProofRejected      EventType = "verification.rejected"
	EventUnknownSession     EventType = "verification.unknown_session"
	EventCompleted          EventType = "verification.completed"
	EventRoleGranted        EventType = "verification.role_granted"
	EventRoleGrantFailed    EventType = "verification.role_grant_failed"
	EventNoRoleConfigured   EventType = "verification.no_role_configured"
	EventNotified           EventType = "verification.notified"
	EventNotifyFailed       EventType = "verification.notify_failed"
	EventVerifierFailed     EventType = "verification.verifier_failed"
	EventMobileReturn       EventType = "callback.mobile_return"
	EventCommandRejected    EventType = "command.rejected"
	EventAlreadyVerified    EventType = "command.already_verified"
	EventLinkDeliveryFailed EventType = "command.delivery_failed"

	// Short links
	EventLinkShortened EventType = "shortlink.created"
	EventLinkResolved  EventType = "shortlink.resolved"
	EventLinkMissed    EventType = "shortlink.missed"
)

// Level is the severity attached to an event when it is mirrored to logs.
type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// eventLevels maps failure events to a non-info level. Unlisted events are info.
var eventLevels = map[EventType]Level{
	EventTokenDropped:       LevelWarn,
	EventUnknownSession:     LevelWarn,
	EventNoRoleConfigured:   LevelWarn,
	EventCommandRejected:    LevelWarn,
	EventLinkMissed:         LevelWarn,
	EventRoleGrantFailed:    LevelError,
	EventNotifyFailed:       LevelError,
	EventVerifierFailed:     LevelError,
	EventLinkDeliveryFailed: LevelError,
}

// Level returns the severity for this event type.
func (t EventType) Level() Level {
	if lvl, ok := eventLevels[t]; ok {
		return lvl
	}
	return LevelInfo
}

// Event is one append-only audit record. Keep it transport-agnostic so
// stores and sinks can fan out.
type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Type      EventType      `json:"type"`
	Level     Level          `json:"level"`
	Message   string         `json:"message"`
	RequestID string         `json:"requestId,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// Store persists audit events. Implementations must be safe for concurrent use.
type Store interface {
	Append(ctx context.Context, event Event) error
}
