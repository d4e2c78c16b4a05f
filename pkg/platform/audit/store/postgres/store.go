package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	audit "gatekeeper/pkg/platform/audit"
)

const schema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id         UUID PRIMARY KEY,
	timestamp  TIMESTAMPTZ NOT NULL,
	type       TEXT NOT NULL,
	level      TEXT NOT NULL,
	message    TEXT NOT NULL,
	request_id TEXT NOT NULL DEFAULT '',
	fields     JSONB
);
CREATE INDEX IF NOT EXISTS audit_events_type_ts ON audit_events (type, timestamp DESC);
`

// Store implements audit.Store on the audit_events table.
type Store struct {
	db *sql.DB
}

// Open connects to dsn with the lib/pq driver and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// New creates a PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the audit table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create audit schema: %w", err)
	}
	return nil
}

// Append inserts one event row.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	var fields []byte
	if len(event.Fields) > 0 {
		b, err := json.Marshal(event.Fields)
		if err != nil {
			return fmt.Errorf("marshal audit fields: %w", err)
		}
		fields = b
	}

	query := `
		INSERT INTO audit_events (id, timestamp, type, level, message, request_id, fields)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.New(),
		event.Timestamp,
		string(event.Type),
		string(event.Level),
		event.Message,
		event.RequestID,
		fields,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListRecent returns the N most recent events, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	query := `
		SELECT timestamp, type, level, message, request_id, fields
		FROM audit_events
		ORDER BY timestamp DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			event     audit.Event
			eventType string
			level     string
			fields    []byte
		)
		if err := rows.Scan(&event.Timestamp, &eventType, &level, &event.Message, &event.RequestID, &fields); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Type = audit.EventType(eventType)
		event.Level = audit.Level(level)
		if len(fields) > 0 {
			if err := json.Unmarshal(fields, &event.Fields); err != nil {
				return nil, fmt.Errorf("decode audit fields: %w", err)
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
