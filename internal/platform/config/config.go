package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"

	pstrings "gatekeeper/pkg/platform/strings"
)

var (
	configPath = "config.toml"
	configFile = altsrc.NewStringPtrSourcer(&configPath)
)

// verifyPath is stripped from the self endpoint to derive the public base URL.
const verifyPath = "/api/verify"

// Config is the full process configuration.
type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Self     SelfConfig
	Discord  DiscordConfig
	Session  SessionConfig
	Verifier VerifierConfig
	Redis    RedisConfig
	Audit    AuditConfig
	Admin    AdminConfig
}

type ServerConfig struct {
	Port int
	// PublicBaseURL prefixes short links and the mobile callback.
	PublicBaseURL string
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text, json
}

// SelfConfig describes this verifier to the provider's mobile app.
type SelfConfig struct {
	Endpoint string
	AppName  string
	LogoURL  string
	Scope    string
}

type DiscordConfig struct {
	BotToken       string
	ClientID       string
	GuildID        string
	VerifiedRoleID string
}

type SessionConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
	DeliveryMode  string // qr, link
	MinimumAge    int
}

type VerifierConfig struct {
	Mode    string // http, mock
	URL     string
	Timeout time.Duration
}

// RedisConfig is optional; an empty URL keeps short links in memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type AuditConfig struct {
	LogFile      string
	DatabaseURL  string
	KafkaBrokers []string
	KafkaTopic   string
	BufferSize   int
}

type AdminConfig struct {
	// Token guards /admin; empty disables every admin route.
	Token string
}

func NewFromCLI(cmd *cli.Command) *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:          int(cmd.Int("port")),
			PublicBaseURL: cmd.String("public-base-url"),
		},
		Log: LogConfig{
			Level:  cmd.String("log-level"),
			Format: cmd.String("log-format"),
		},
		Self: SelfConfig{
			Endpoint: cmd.String("self-endpoint"),
			AppName:  cmd.String("self-app-name"),
			LogoURL:  cmd.String("self-logo-url"),
			Scope:    cmd.String("self-scope"),
		},
		Discord: DiscordConfig{
			BotToken:       cmd.String("discord-bot-token"),
			ClientID:       cmd.String("discord-client-id"),
			GuildID:        cmd.String("discord-guild-id"),
			VerifiedRoleID: cmd.String("discord-verified-role-id"),
		},
		Session: SessionConfig{
			TTL:           cmd.Duration("session-ttl"),
			SweepInterval: cmd.Duration("sweep-interval"),
			DeliveryMode:  strings.ToLower(cmd.String("delivery-mode")),
			MinimumAge:    int(cmd.Int("minimum-age")),
		},
		Verifier: VerifierConfig{
			Mode:    strings.ToLower(cmd.String("verifier-mode")),
			URL:     cmd.String("verifier-url"),
			Timeout: cmd.Duration("verifier-timeout"),
		},
		Redis: RedisConfig{
			URL:          cmd.String("redis-url"),
			PoolSize:     int(cmd.Int("redis-pool-size")),
			MinIdleConns: int(cmd.Int("redis-min-idle-conns")),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Audit: AuditConfig{
			LogFile:      cmd.String("audit-log-file"),
			DatabaseURL:  cmd.String("audit-database-url"),
			KafkaBrokers: pstrings.SplitList(cmd.String("audit-kafka-brokers")),
			KafkaTopic:   cmd.String("audit-kafka-topic"),
			BufferSize:   int(cmd.Int("audit-buffer-size")),
		},
		Admin: AdminConfig{
			Token: cmd.String("admin-token"),
		},
	}

	if cfg.Server.PublicBaseURL == "" {
		cfg.Server.PublicBaseURL = buildBaseURL(cfg.Self.Endpoint)
	}
	cfg.Server.PublicBaseURL = strings.TrimRight(cfg.Server.PublicBaseURL, "/")

	return cfg
}

// Validate rejects settings that would fail later at runtime.
func (c *Config) Validate() error {
	var errs []error
	if c.Session.TTL <= 0 {
		errs = append(errs, fmt.Errorf("session-ttl must be positive, got %s", c.Session.TTL))
	}
	if c.Session.SweepInterval <= 0 {
		errs = append(errs, fmt.Errorf("sweep-interval must be positive, got %s", c.Session.SweepInterval))
	}
	switch c.Verifier.Mode {
	case "http":
		if c.Verifier.URL == "" {
			errs = append(errs, errors.New("verifier-url is required when verifier-mode is http"))
		}
		if c.Verifier.Timeout <= 0 {
			errs = append(errs, fmt.Errorf("verifier-timeout must be positive, got %s", c.Verifier.Timeout))
		}
	case "mock":
	default:
		errs = append(errs, fmt.Errorf("unknown verifier-mode %q", c.Verifier.Mode))
	}
	return errors.Join(errs...)
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Server.Port)
}

// CallbackBase is where the mobile app sends the user after proving.
func (c *Config) CallbackBase() string {
	if c.Server.PublicBaseURL == "" {
		return ""
	}
	return c.Server.PublicBaseURL + "/callback"
}

// buildBaseURL derives the public base from the endpoint the provider posts to.
func buildBaseURL(endpoint string) string {
	base := strings.TrimRight(endpoint, "/")
	return strings.TrimSuffix(base, verifyPath)
}

// sources layers an env var over a TOML key.
func sources(envKey, tomlKey string) cli.ValueSourceChain {
	return cli.NewValueSourceChain(cli.EnvVar(envKey), toml.TOML(tomlKey, configFile))
}

func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "port",
			Value:   8080,
			Usage:   "Port to listen on",
			Sources: sources("PORT", "server.port"),
		},
		&cli.StringFlag{
			Name:    "public-base-url",
			Usage:   "Public base URL for short links and the mobile callback (defaults to the self endpoint host)",
			Sources: sources("PUBLIC_BASE_URL", "server.public_base_url"),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Usage:   "Log level (debug, info, warn, error)",
			Sources: sources("LOG_LEVEL", "log.level"),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Value:   "text",
			Usage:   "Log format (text, json)",
			Sources: sources("LOG_FORMAT", "log.format"),
		},
		// Provider flags
		&cli.StringFlag{
			Name:    "self-endpoint",
			Usage:   "Public URL the provider posts proofs to (ends in /api/verify)",
			Sources: sources("SELF_ENDPOINT", "self.endpoint"),
		},
		&cli.StringFlag{
			Name:    "self-app-name",
			Value:   "Self Discord Verification",
			Usage:   "App name shown in the provider's mobile app",
			Sources: sources("SELF_APP_NAME", "self.app_name"),
		},
		&cli.StringFlag{
			Name:    "self-logo-url",
			Value:   "https://i.postimg.cc/mrmVf9hm/self.png",
			Usage:   "Logo shown in the provider's mobile app",
			Sources: sources("SELF_LOGO_URL", "self.logo_url"),
		},
		&cli.StringFlag{
			Name:    "self-scope",
			Value:   "offchain",
			Usage:   "Verification scope",
			Sources: sources("SELF_SCOPE", "self.scope"),
		},
		// Discord flags
		&cli.StringFlag{
			Name:    "discord-bot-token",
			Usage:   "Discord bot token (bot is disabled when empty)",
			Sources: sources("DISCORD_BOT_TOKEN", "discord.bot_token"),
		},
		&cli.StringFlag{
			Name:    "discord-client-id",
			Usage:   "Discord application id used to register slash commands",
			Sources: sources("DISCORD_CLIENT_ID", "discord.client_id"),
		},
		&cli.StringFlag{
			Name:    "discord-guild-id",
			Usage:   "Guild the slash command is registered in; also the default origin",
			Sources: sources("DISCORD_GUILD_ID", "discord.guild_id"),
		},
		&cli.StringFlag{
			Name:    "discord-verified-role-id",
			Usage:   "Role granted after a successful verification",
			Sources: sources("DISCORD_VERIFIED_ROLE_ID", "discord.verified_role_id"),
		},
		// Session flags
		&cli.DurationFlag{
			Name:    "session-ttl",
			Value:   15 * time.Minute,
			Usage:   "How long a pending verification stays valid",
			Sources: sources("SESSION_TTL", "session.ttl"),
		},
		&cli.DurationFlag{
			Name:    "sweep-interval",
			Value:   time.Minute,
			Usage:   "How often expired sessions are swept",
			Sources: sources("SWEEP_INTERVAL", "session.sweep_interval"),
		},
		&cli.StringFlag{
			Name:    "delivery-mode",
			Value:   "qr",
			Usage:   "How the verification link is delivered (qr, link)",
			Sources: sources("DELIVERY_MODE", "session.delivery_mode"),
		},
		&cli.IntFlag{
			Name:    "minimum-age",
			Value:   18,
			Usage:   "Minimum age disclosed to the provider",
			Sources: sources("MINIMUM_AGE", "session.minimum_age"),
		},
		// Verifier flags
		&cli.StringFlag{
			Name:    "verifier-mode",
			Value:   "http",
			Usage:   "Proof verifier (http, mock); mock accepts every proof and is for local use only",
			Sources: sources("VERIFIER_MODE", "verifier.mode"),
		},
		&cli.StringFlag{
			Name:    "verifier-url",
			Usage:   "Remote verifier URL (http mode)",
			Sources: sources("VERIFIER_URL", "verifier.url"),
		},
		&cli.DurationFlag{
			Name:    "verifier-timeout",
			Value:   10 * time.Second,
			Usage:   "Remote verifier request timeout",
			Sources: sources("VERIFIER_TIMEOUT", "verifier.timeout"),
		},
		// Redis flags
		&cli.StringFlag{
			Name:    "redis-url",
			Usage:   "Redis URL for short links (memory when empty)",
			Sources: sources("REDIS_URL", "redis.url"),
		},
		&cli.IntFlag{
			Name:    "redis-pool-size",
			Value:   10,
			Usage:   "Redis connection pool size",
			Sources: sources("REDIS_POOL_SIZE", "redis.pool_size"),
		},
		&cli.IntFlag{
			Name:    "redis-min-idle-conns",
			Value:   2,
			Usage:   "Redis minimum idle connections",
			Sources: sources("REDIS_MIN_IDLE_CONNS", "redis.min_idle_conns"),
		},
		// Audit flags
		&cli.StringFlag{
			Name:    "audit-log-file",
			Value:   "logs/verifier.log",
			Usage:   "Append-only JSON lines event log (disabled when empty)",
			Sources: sources("AUDIT_LOG_FILE", "audit.log_file"),
		},
		&cli.StringFlag{
			Name:    "audit-database-url",
			Usage:   "Postgres DSN for the audit_events table",
			Sources: sources("AUDIT_DATABASE_URL", "audit.database_url"),
		},
		&cli.StringFlag{
			Name:    "audit-kafka-brokers",
			Usage:   "Comma-separated Kafka brokers for the audit stream",
			Sources: sources("AUDIT_KAFKA_BROKERS", "audit.kafka_brokers"),
		},
		&cli.StringFlag{
			Name:    "audit-kafka-topic",
			Value:   "gatekeeper.audit",
			Usage:   "Kafka topic for audit events",
			Sources: sources("AUDIT_KAFKA_TOPIC", "audit.kafka_topic"),
		},
		&cli.IntFlag{
			Name:    "audit-buffer-size",
			Value:   256,
			Usage:   "Async audit buffer (0 writes synchronously)",
			Sources: sources("AUDIT_BUFFER_SIZE", "audit.buffer_size"),
		},
		// Admin flags
		&cli.StringFlag{
			Name:    "admin-token",
			Usage:   "Token required on X-Admin-Token for /admin routes",
			Sources: sources("ADMIN_TOKEN", "admin.token"),
		},
	}
}

// ConfigFileFlag points the TOML source at a file other than config.toml.
func ConfigFileFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Value:       "config.toml",
		Usage:       "Path to TOML config file",
		Destination: &configPath,
		Sources:     cli.EnvVars("CONFIG"),
	}
}
