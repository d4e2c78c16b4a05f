package adapters

import (
	"context"

	"gatekeeper/internal/admin"
	"gatekeeper/pkg/platform/audit"
)

// AuditStore is the interface that queryable audit stores implement.
type AuditStore interface {
	ListRecent(ctx context.Context, limit int) ([]audit.Event, error)
}

// AuditStoreAdapter adapts an audit store to admin's AuditLister interface.
type AuditStoreAdapter struct {
	store AuditStore
}

// NewAuditStoreAdapter creates a new adapter wrapping an audit store.
func NewAuditStoreAdapter(store AuditStore) *AuditStoreAdapter {
	return &AuditStoreAdapter{store: store}
}

// ListRecent returns the newest events mapped to admin response types.
func (a *AuditStoreAdapter) ListRecent(ctx context.Context, limit int) ([]*admin.AuditEntryResponse, error) {
	events, err := a.store.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}

	result := make([]*admin.AuditEntryResponse, len(events))
	for i, e := range events {
		result[i] = mapEvent(e)
	}
	return result, nil
}

func mapEvent(e audit.Event) *admin.AuditEntryResponse {
	return &admin.AuditEntryResponse{
		Timestamp: e.Timestamp,
		Type:      string(e.Type),
		Level:     string(e.Level),
		Message:   e.Message,
		RequestID: e.RequestID,
		Fields:    e.Fields,
	}
}
