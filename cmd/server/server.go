package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"gatekeeper/internal/admin"
	adminadapters "gatekeeper/internal/admin/adapters"
	"gatekeeper/internal/chat/discord"
	"gatekeeper/internal/platform/config"
	"gatekeeper/internal/platform/httpserver"
	"gatekeeper/internal/platform/logger"
	platformmetrics "gatekeeper/internal/platform/metrics"
	platformredis "gatekeeper/internal/platform/redis"
	"gatekeeper/internal/render/qr"
	shortlinkhandler "gatekeeper/internal/shortlink/handler"
	shortlinkmetrics "gatekeeper/internal/shortlink/metrics"
	shortlinkservice "gatekeeper/internal/shortlink/service"
	shortlinkstore "gatekeeper/internal/shortlink/store"
	verificationhandler "gatekeeper/internal/verification/handler"
	verificationmetrics "gatekeeper/internal/verification/metrics"
	"gatekeeper/internal/verification/models"
	"gatekeeper/internal/verification/policy"
	"gatekeeper/internal/verification/provider"
	"gatekeeper/internal/verification/selfapp"
	"gatekeeper/internal/verification/service"
	"gatekeeper/internal/verification/store/session"
	id "gatekeeper/pkg/domain"
	"gatekeeper/pkg/platform/audit/publisher"
	"gatekeeper/pkg/platform/circuit"
)

// run wires the process: config, audit sinks, stores, services, HTTP routes,
// the Discord bot and the session sweeper. It blocks until SIGINT/SIGTERM.
func run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Self.Endpoint == "" {
		log.Warn("SELF_ENDPOINT not set; verification links cannot be built")
	}

	// Metrics
	procMetrics := platformmetrics.New(Version)
	verifyMetrics := verificationmetrics.NewWithRegistry(procMetrics.Registry)
	linkMetrics := shortlinkmetrics.NewWithRegistry(procMetrics.Registry)

	// Audit
	sinks, err := openAuditSinks(ctx, cfg.Audit, log)
	if err != nil {
		return err
	}
	defer sinks.Close()
	auditor := publisher.NewPublisher(sinks.Store(),
		publisher.WithAsyncBuffer(cfg.Audit.BufferSize),
		publisher.WithLogger(log),
	)
	// drain before the sinks close
	defer auditor.Close()

	checks := map[string]httpserver.HealthCheck{}

	// Short links
	var (
		linkStore   shortlinkservice.Store
		linkCounter adminadapters.Counter
	)
	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
		linkStore = shortlinkstore.NewRedisStore(redisClient.Client)
		checks["redis"] = redisClient.Health
		log.Info("short links stored in redis")
	} else {
		mem := shortlinkstore.NewInMemoryStore()
		linkStore, linkCounter = mem, mem
	}

	var shortener *shortlinkservice.Service
	if cfg.Server.PublicBaseURL != "" {
		shortener, err = shortlinkservice.New(linkStore, cfg.Server.PublicBaseURL,
			shortlinkservice.WithAuditor(auditor),
			shortlinkservice.WithMetrics(linkMetrics),
			shortlinkservice.WithLogger(log),
		)
		if err != nil {
			return fmt.Errorf("create short link service: %w", err)
		}
	}

	// Verification
	sessions := session.New()
	sweeper := session.NewSweeper(sessions, cfg.Session.TTL, cfg.Session.SweepInterval, log,
		session.WithAuditor(auditor),
		session.WithObserver(verifyMetrics),
	)

	// The chat client exists before the service so the granter is fixed
	// before any callback can be served.
	dg, err := openChat(cfg.Discord.BotToken, log)
	if err != nil {
		return err
	}

	svcOpts := []service.Option{
		service.WithQRRenderer(qr.New(qr.DefaultSize)),
		service.WithAuditor(auditor),
		service.WithMetrics(verifyMetrics),
		service.WithLogger(log),
	}
	if shortener != nil {
		svcOpts = append(svcOpts, service.WithShortener(shortener))
	}
	if dg != nil {
		svcOpts = append(svcOpts, service.WithAccessGranter(discord.NewClient(dg)))
	}
	svc, err := service.New(service.Config{
		Policy: policy.Policy{
			MinimumAge:       cfg.Session.MinimumAge,
			RejectSanctioned: true,
		},
		App: selfapp.App{
			Name:         cfg.Self.AppName,
			LogoURL:      cfg.Self.LogoURL,
			Scope:        cfg.Self.Scope,
			Endpoint:     cfg.Self.Endpoint,
			MinimumAge:   cfg.Session.MinimumAge,
			CallbackBase: cfg.CallbackBase(),
		},
		DeliveryMode:    models.ParseDeliveryMode(cfg.Session.DeliveryMode),
		VerifiedRoleID:  cfg.Discord.VerifiedRoleID,
		DefaultOriginID: id.OriginID(cfg.Discord.GuildID),
	}, sessions, svcOpts...)
	if err != nil {
		return fmt.Errorf("create verification service: %w", err)
	}

	verifier, err := newVerifier(cfg.Verifier, log)
	if err != nil {
		return err
	}

	// HTTP
	router := httpserver.NewRouter(log, checks, procMetrics.Middleware)
	router.Handle(platformmetrics.Path, procMetrics.Handler())
	verificationhandler.New(svc, verifier, auditor, verifyMetrics, log, cfg.Self.Endpoint).Register(router)
	if shortener != nil {
		shortlinkhandler.New(shortener, log).Register(router)
	}
	adminHandler, err := admin.New(
		adminadapters.NewAuditStoreAdapter(sinks.Lister()),
		adminadapters.NewStatsAdapter(sessions, linkCounter),
		cfg.Admin.Token,
		admin.WithLogger(log),
	)
	if err != nil {
		return fmt.Errorf("create admin handler: %w", err)
	}
	adminHandler.Register(router)

	srv := httpserver.New(cfg.Addr(), router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return httpserver.Serve(gctx, srv, log) })
	g.Go(func() error { return sweeper.Run(gctx) })
	if dg != nil {
		bot := discord.NewBot(dg, svc, discord.Config{
			AppID:          cfg.Discord.ClientID,
			GuildID:        cfg.Discord.GuildID,
			VerifiedRoleID: cfg.Discord.VerifiedRoleID,
		}, auditor, log)
		g.Go(func() error { return bot.Run(gctx, dg) })
	}

	log.Info("gatekeeper started",
		"addr", cfg.Addr(),
		"public_base_url", cfg.Server.PublicBaseURL,
		"delivery_mode", cfg.Session.DeliveryMode,
		"verifier_mode", cfg.Verifier.Mode,
		"version", Version,
	)

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("gatekeeper stopped")
	return nil
}

// openChat returns nil without error when no bot token is configured.
func openChat(token string, log *slog.Logger) (*discordgo.Session, error) {
	dg, err := discord.Connect(token)
	switch {
	case errors.Is(err, discord.ErrNoToken):
		log.Warn("DISCORD_BOT_TOKEN not set; bot disabled, roles will not be granted")
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	return dg, nil
}

func newVerifier(cfg config.VerifierConfig, log *slog.Logger) (provider.Verifier, error) {
	switch cfg.Mode {
	case "http":
		if cfg.URL == "" {
			return nil, errors.New("VERIFIER_URL is required when VERIFIER_MODE=http")
		}
		remote := provider.NewHTTPVerifier(cfg.URL, cfg.Timeout)
		return provider.NewBreakingVerifier(remote, circuit.New("proof-verifier"), log), nil
	case "mock":
		log.Warn("using mock proof verifier; every proof is accepted")
		return provider.NewMockVerifier(), nil
	default:
		return nil, fmt.Errorf("unknown verifier mode %q", cfg.Mode)
	}
}
