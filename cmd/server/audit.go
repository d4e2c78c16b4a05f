package main

import (
	"context"
	"fmt"
	"log/slog"

	"gatekeeper/internal/admin/adapters"
	"gatekeeper/internal/platform/config"
	"gatekeeper/pkg/platform/audit"
	"gatekeeper/pkg/platform/audit/store/fanout"
	"gatekeeper/pkg/platform/audit/store/file"
	"gatekeeper/pkg/platform/audit/store/kafka"
	auditmemory "gatekeeper/pkg/platform/audit/store/memory"
	"gatekeeper/pkg/platform/audit/store/postgres"
)

// recentAuditEvents bounds the in-memory buffer behind /admin/audit when no
// database is configured.
const recentAuditEvents = 1000

// auditSinks owns every configured audit store.
type auditSinks struct {
	sinks  []audit.Store
	lister adapters.AuditStore
	closer []func()
}

// openAuditSinks opens the file, postgres and kafka sinks that are
// configured. A bounded memory buffer is always present.
func openAuditSinks(ctx context.Context, cfg config.AuditConfig, log *slog.Logger) (*auditSinks, error) {
	recent := auditmemory.NewInMemoryStore(auditmemory.WithCapacity(recentAuditEvents))
	s := &auditSinks{sinks: []audit.Store{recent}, lister: recent}

	if cfg.LogFile != "" {
		fs, err := file.New(cfg.LogFile)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.add(fs, func() { _ = fs.Close() })
		log.Info("audit file sink enabled", "path", cfg.LogFile)
	}

	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			s.Close()
			return nil, err
		}
		pg := postgres.New(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			s.Close()
			return nil, fmt.Errorf("audit schema: %w", err)
		}
		s.add(pg, func() { _ = db.Close() })
		s.lister = pg
		log.Info("audit postgres sink enabled")
	}

	if len(cfg.KafkaBrokers) > 0 {
		ks, err := kafka.New(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			s.Close()
			return nil, err
		}
		if err := ks.EnsureTopic(ctx, 1, 1); err != nil {
			// brokers with auto-create or restricted ACLs still accept produces
			log.Warn("could not ensure audit topic", "topic", ks.Topic(), "error", err)
		}
		s.add(ks, ks.Close)
		log.Info("audit kafka sink enabled", "topic", ks.Topic(), "brokers", cfg.KafkaBrokers)
	}

	return s, nil
}

func (s *auditSinks) add(store audit.Store, closeFn func()) {
	s.sinks = append(s.sinks, store)
	s.closer = append(s.closer, closeFn)
}

// Store fans out to every sink.
func (s *auditSinks) Store() audit.Store {
	return fanout.New(s.sinks...)
}

// Lister is the store /admin/audit reads from: postgres when configured,
// otherwise the memory buffer.
func (s *auditSinks) Lister() adapters.AuditStore {
	return s.lister
}

// Close releases sinks in reverse order of opening.
func (s *auditSinks) Close() {
	for i := len(s.closer) - 1; i >= 0; i-- {
		s.closer[i]()
	}
}
