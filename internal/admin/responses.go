package admin

import "time"

// AuditEntryResponse is the HTTP response DTO for one audit event.
type AuditEntryResponse struct {
	Timestamp time.Time      `json:"timestamp"`
	Type      string         `json:"type"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	RequestID string         `json:"request_id,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// AuditListResponse wraps the most recent audit events, newest first.
type AuditListResponse struct {
	Events []*AuditEntryResponse `json:"events"`
	Total  int                   `json:"total"`
}

// StatsResponse is a point-in-time view of process state.
type StatsResponse struct {
	PendingSessions int       `json:"pending_sessions"`
	ShortLinks      *int      `json:"short_links,omitempty"`
	StartedAt       time.Time `json:"started_at"`
	Uptime          string    `json:"uptime"`
}
