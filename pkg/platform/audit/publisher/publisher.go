// Package publisher emits audit events to a store, optionally through an
// in-process buffer, and mirrors each event to the structured logger.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"gatekeeper/pkg/attrs"
	audit "gatekeeper/pkg/platform/audit"
	"gatekeeper/pkg/platform/audit/worker"
	"gatekeeper/pkg/requestcontext"
)

// ErrBufferFull is returned in async mode when the buffer cannot accept an event.
var ErrBufferFull = errors.New("audit buffer full")

// Publisher writes audit events. The zero value is not usable; use NewPublisher.
type Publisher struct {
	store  audit.Store
	logger *slog.Logger

	buffer int
	inbox  chan audit.Event
	done   chan struct{}

	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithAsyncBuffer makes Emit non-blocking: events are queued and persisted by
// a background worker. Close drains the queue.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.buffer = size
	}
}

// WithLogger mirrors every emitted event to logger at the event's level.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.buffer > 0 {
		p.inbox = make(chan audit.Event, p.buffer)
		p.done = make(chan struct{})
		w := worker.NewWorker(store, p.inbox, p.logger)
		go func() {
			defer close(p.done)
			_ = w.Run(context.Background())
		}()
	}
	return p
}

// Emit records an event. Missing timestamp, level and request id are filled
// from the context.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Level == "" {
		event.Level = event.Type.Level()
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	p.mirror(ctx, event)

	if p.inbox == nil {
		return p.store.Append(ctx, event)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return errors.New("audit publisher closed")
	}
	// The request context may already be done; with room in the buffer the
	// event is still queued.
	select {
	case p.inbox <- event:
		return nil
	default:
		return ErrBufferFull
	}
}

// Record is a convenience wrapper building an event from key-value pairs.
// Failures are logged, never returned: the audit trail must not break the flow.
func (p *Publisher) Record(ctx context.Context, eventType audit.EventType, message string, kv ...any) {
	err := p.Emit(ctx, audit.Event{
		Type:    eventType,
		Message: message,
		Fields:  attrs.ToMap(kv),
	})
	if err != nil && p.logger != nil {
		p.logger.WarnContext(ctx, "failed to record audit event", "type", eventType, "error", err)
	}
}

// Close stops accepting events and waits for buffered events to be persisted.
func (p *Publisher) Close() {
	p.closeOnce.Do(func() {
		if p.inbox == nil {
			return
		}
		p.mu.Lock()
		p.closed = true
		close(p.inbox)
		p.mu.Unlock()
		<-p.done
	})
}

func (p *Publisher) mirror(ctx context.Context, event audit.Event) {
	if p.logger == nil {
		return
	}
	args := make([]any, 0, 2*len(event.Fields)+4)
	args = append(args, "event", string(event.Type))
	if event.RequestID != "" {
		args = append(args, "request_id", event.RequestID)
	}
	for k, v := range event.Fields {
		args = append(args, k, v)
	}
	p.logger.Log(ctx, slogLevel(event.Level), event.Message, args...)
}

func slogLevel(l audit.Level) slog.Level {
	switch l {
	case audit.LevelWarn:
		return slog.LevelWarn
	case audit.LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
