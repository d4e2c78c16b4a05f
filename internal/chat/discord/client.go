// Package discord connects the verification flow to a Discord guild: it
// serves the /verify command and grants the verified role.
package discord

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"gatekeeper/internal/verification/models"
	"gatekeeper/internal/verification/service"
	id "gatekeeper/pkg/domain"
)

// maxButtonURLLength is Discord's limit for link button URLs.
const maxButtonURLLength = 512

const (
	openButtonLabel = "Open in Self App"

	qrLinkMessage = "📱 **Verification Required**\n\n" +
		"To access the restricted channels in this server, please complete verification using the Self.xyz mobile app.\n\n" +
		"**On Mobile?**\n" +
		"Tap the button below to open the Self app directly.\n\n" +
		"**On Desktop?**\n" +
		"Scan the QR code below with the Self.xyz app on your phone.\n\n" +
		"Once verified, you'll automatically receive the verified role and gain access to the restricted channels!"

	plainLinkMessage = "📱 **Verification Required**\n\n" +
		"To access the restricted channels in this server, please complete verification using the Self.xyz mobile app.\n\n" +
		"**Steps:**\n" +
		"1️⃣ Tap the button below to open the Self app\n" +
		"2️⃣ Complete the verification process\n\n" +
		"Once verified, you'll automatically receive the verified role and gain access to the restricted channels!"
)

// API is the slice of the Discord REST surface the client and bot use.
// *discordgo.Session satisfies it.
type API interface {
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// Client grants roles and sends direct messages.
type Client struct {
	api API
}

// NewClient wraps a Discord API session.
func NewClient(api API) *Client {
	return &Client{api: api}
}

// FetchMember loads the requester's membership in a guild.
func (c *Client) FetchMember(ctx context.Context, originID id.OriginID, requesterID id.RequesterID) (*models.Member, error) {
	m, err := c.api.GuildMember(originID.String(), requesterID.String(), discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch guild member: %w", err)
	}
	return &models.Member{
		OriginID:    originID,
		RequesterID: requesterID,
		RoleIDs:     m.Roles,
	}, nil
}

// AddRole grants roleID. A member who already holds it is left alone.
func (c *Client) AddRole(ctx context.Context, member *models.Member, roleID string) error {
	if member == nil {
		return errors.New("member is required")
	}
	if member.HasRole(roleID) {
		return nil
	}
	if err := c.api.GuildMemberRoleAdd(member.OriginID.String(), member.RequesterID.String(), roleID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("add guild member role: %w", err)
	}
	return nil
}

// SendDirectMessage opens (or reuses) the DM channel and posts text.
func (c *Client) SendDirectMessage(ctx context.Context, requesterID id.RequesterID, text string) error {
	ch, err := c.api.UserChannelCreate(requesterID.String(), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("open DM channel: %w", err)
	}
	if _, err := c.api.ChannelMessageSend(ch.ID, text, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("send DM: %w", err)
	}
	return nil
}

// SendVerificationLink DMs the link button, plus the QR image when one was rendered.
func (c *Client) SendVerificationLink(ctx context.Context, requesterID id.RequesterID, link *service.StartResult) error {
	ch, err := c.api.UserChannelCreate(requesterID.String(), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("open DM channel: %w", err)
	}
	if _, err := c.api.ChannelMessageSendComplex(ch.ID, verificationMessage(link), discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("send verification DM: %w", err)
	}
	return nil
}

func verificationMessage(link *service.StartResult) *discordgo.MessageSend {
	msg := &discordgo.MessageSend{Content: plainLinkMessage}
	if len(link.QR) > 0 {
		msg.Content = qrLinkMessage
		msg.Files = []*discordgo.File{{
			Name:        link.QRFileName,
			ContentType: "image/png",
			Reader:      bytes.NewReader(link.QR),
		}}
	}

	url := link.DisplayLink()
	if len(url) > maxButtonURLLength {
		// Too long for a button; Discord still turns a bare URL into a link.
		msg.Content += "\n\n" + url
		return msg
	}
	msg.Components = []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label: openButtonLabel,
				Style: discordgo.LinkButton,
				URL:   url,
			},
		}},
	}
	return msg
}
