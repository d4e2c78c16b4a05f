package discord

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"

	"gatekeeper/internal/verification/models"
	"gatekeeper/internal/verification/service"
	id "gatekeeper/pkg/domain"
	"gatekeeper/pkg/platform/audit"
)

// CommandName is the slash command that starts verification.
const CommandName = "verify"

const commandDescription = "Verify your age/identity using Self."

// Replies shown to the requester. All are ephemeral.
const (
	replyGuildOnly       = "This command can only be used inside a server."
	replyAlreadyVerified = "You are already verified and should see the restricted channels."
	replyGenerating      = "Generating your Self verification link… I'll DM it to you shortly."
	replyLinkFailed      = "I couldn't create a verification link right now. Please try again later."
	replyDMFailed        = "I couldn't send you a DM. Please enable DMs from this server and try `/verify` again."
	replySent            = "I've sent you a DM with a Self verification link. Complete verification in the Self app and I'll automatically grant you access."
)

// interactionTimeout bounds the work done for one command.
const interactionTimeout = 30 * time.Second

// Starter begins verification sessions.
type Starter interface {
	Start(ctx context.Context, req service.StartRequest) (*service.StartResult, error)
}

// AuditRecorder writes command events.
type AuditRecorder interface {
	Record(ctx context.Context, eventType audit.EventType, message string, kv ...any)
}

// Gateway is the websocket half of a discordgo session.
type Gateway interface {
	Open() error
	Close() error
	AddHandler(handler interface{}) func()
}

// Config identifies where the bot operates.
type Config struct {
	// AppID is the application (client) id used to register commands.
	AppID string
	// GuildID scopes command registration. Commands are not registered globally.
	GuildID        string
	VerifiedRoleID string
}

// Bot serves the /verify command.
type Bot struct {
	api     API
	client  *Client
	starter Starter
	cfg     Config
	auditor AuditRecorder
	logger  *slog.Logger
}

// NewBot wires the command flow.
func NewBot(api API, starter Starter, cfg Config, auditor AuditRecorder, logger *slog.Logger) *Bot {
	return &Bot{
		api:     api,
		client:  NewClient(api),
		starter: starter,
		cfg:     cfg,
		auditor: auditor,
		logger:  logger,
	}
}

// Client returns the access granter backed by the same API session.
func (b *Bot) Client() *Client {
	return b.client
}

// Run opens the gateway, registers commands and serves interactions until
// ctx is cancelled.
func (b *Bot) Run(ctx context.Context, gw Gateway) error {
	remove := gw.AddHandler(func(_ *discordgo.Session, ic *discordgo.InteractionCreate) {
		b.HandleInteraction(ctx, ic.Interaction)
	})
	defer remove()

	if err := gw.Open(); err != nil {
		return err
	}
	b.logger.InfoContext(ctx, "discord gateway connected", "guild_id", b.cfg.GuildID)

	if err := b.RegisterCommands(ctx); err != nil {
		b.logger.ErrorContext(ctx, "failed to register slash commands", "error", err)
	}

	<-ctx.Done()
	b.logger.Info("closing discord gateway")
	return gw.Close()
}

// RegisterCommands installs /verify in the configured guild.
func (b *Bot) RegisterCommands(ctx context.Context) error {
	if b.cfg.AppID == "" || b.cfg.GuildID == "" {
		b.logger.WarnContext(ctx, "skipping slash command registration, env not fully configured",
			"has_client_id", b.cfg.AppID != "",
			"has_guild_id", b.cfg.GuildID != "",
		)
		return nil
	}
	commands := []*discordgo.ApplicationCommand{{
		Name:        CommandName,
		Description: commandDescription,
	}}
	if _, err := b.api.ApplicationCommandBulkOverwrite(b.cfg.AppID, b.cfg.GuildID, commands, discordgo.WithContext(ctx)); err != nil {
		return err
	}
	b.logger.InfoContext(ctx, "registered slash commands", "guild_id", b.cfg.GuildID)
	return nil
}

// HandleInteraction dispatches one interaction. Only /verify is handled.
func (b *Bot) HandleInteraction(ctx context.Context, ic *discordgo.Interaction) {
	if ic == nil || ic.Type != discordgo.InteractionApplicationCommand {
		return
	}
	if ic.ApplicationCommandData().Name != CommandName {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, interactionTimeout)
	defer cancel()
	b.handleVerify(ctx, ic)
}

func (b *Bot) handleVerify(ctx context.Context, ic *discordgo.Interaction) {
	if ic.GuildID == "" || ic.Member == nil || ic.Member.User == nil {
		b.record(ctx, audit.EventCommandRejected, "verify command used outside a server", "user_id", interactionUserID(ic))
		b.reply(ctx, ic, replyGuildOnly)
		return
	}
	userID := ic.Member.User.ID

	if b.alreadyVerified(ctx, ic) {
		b.record(ctx, audit.EventAlreadyVerified, "verify command from already verified member",
			"user_id", userID,
			"guild_id", ic.GuildID,
		)
		b.reply(ctx, ic, replyAlreadyVerified)
		return
	}

	if err := b.reply(ctx, ic, replyGenerating); err != nil {
		return
	}

	link, err := b.starter.Start(ctx, service.StartRequest{
		RequesterID: userID,
		OriginID:    ic.GuildID,
	})
	if err != nil {
		b.logger.ErrorContext(ctx, "failed to create verification link",
			"user_id", userID,
			"guild_id", ic.GuildID,
			"error", err,
		)
		b.editReply(ctx, ic, replyLinkFailed)
		return
	}

	if err := b.client.SendVerificationLink(ctx, id.RequesterID(userID), link); err != nil {
		b.logger.WarnContext(ctx, "failed to DM verification link",
			"user_id", userID,
			"session_id", link.Session.ID.String(),
			"error", err,
		)
		b.record(ctx, audit.EventLinkDeliveryFailed, "failed to DM user with verification link",
			"user_id", userID,
			"session_id", link.Session.ID.String(),
			"error", err,
		)
		b.editReply(ctx, ic, replyDMFailed)
		return
	}

	b.editReply(ctx, ic, replySent)
}

// alreadyVerified prefers the member carried on the interaction and only
// asks the API when it is missing roles.
func (b *Bot) alreadyVerified(ctx context.Context, ic *discordgo.Interaction) bool {
	if b.cfg.VerifiedRoleID == "" {
		return false
	}
	member := models.Member{
		OriginID:    id.OriginID(ic.GuildID),
		RequesterID: id.RequesterID(ic.Member.User.ID),
		RoleIDs:     ic.Member.Roles,
	}
	if member.RoleIDs == nil {
		fetched, err := b.client.FetchMember(ctx, member.OriginID, member.RequesterID)
		if err != nil {
			b.logger.WarnContext(ctx, "could not load member roles", "user_id", ic.Member.User.ID, "error", err)
			return false
		}
		member = *fetched
	}
	return member.HasRole(b.cfg.VerifiedRoleID)
}

func (b *Bot) reply(ctx context.Context, ic *discordgo.Interaction, content string) error {
	err := b.api.InteractionRespond(ic, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		b.logger.WarnContext(ctx, "failed to send interaction reply", "error", err)
	}
	return err
}

func (b *Bot) editReply(ctx context.Context, ic *discordgo.Interaction, content string) {
	if _, err := b.api.InteractionResponseEdit(ic, &discordgo.WebhookEdit{Content: &content}, discordgo.WithContext(ctx)); err != nil {
		b.logger.WarnContext(ctx, "failed to edit interaction reply", "error", err)
	}
}

func (b *Bot) record(ctx context.Context, eventType audit.EventType, message string, kv ...any) {
	if b.auditor != nil {
		b.auditor.Record(ctx, eventType, message, kv...)
	}
}

func interactionUserID(ic *discordgo.Interaction) string {
	switch {
	case ic.Member != nil && ic.Member.User != nil:
		return ic.Member.User.ID
	case ic.User != nil:
		return ic.User.ID
	default:
		return ""
	}
}

// ErrNoToken is returned by Connect when no bot token is configured.
var ErrNoToken = errors.New("discord bot token is not configured")

// Connect creates a discordgo session with the intents the bot needs.
func Connect(token string) (*discordgo.Session, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsDirectMessages
	return s, nil
}
