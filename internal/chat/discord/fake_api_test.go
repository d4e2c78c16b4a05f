package discord

import (
	"errors"
	"io"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// fakeAPI records calls and returns canned errors.
type fakeAPI struct {
	mu sync.Mutex

	members      map[string]*discordgo.Member // keyed by guild/user
	memberErr    error
	roleAddErr   error
	channelErr   error
	sendErr      error
	respondErr   error
	overwriteErr error

	roleAdds   []string
	sent       []string
	complex    []*discordgo.MessageSend
	files      map[string][]byte
	responses  []*discordgo.InteractionResponse
	edits      []string
	overwrites [][]*discordgo.ApplicationCommand
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{members: map[string]*discordgo.Member{}, files: map[string][]byte{}}
}

func (f *fakeAPI) GuildMember(guildID, userID string, _ ...discordgo.RequestOption) (*discordgo.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.memberErr != nil {
		return nil, f.memberErr
	}
	m, ok := f.members[guildID+"/"+userID]
	if !ok {
		return nil, errors.New("HTTP 404 Not Found, Unknown Member")
	}
	return m, nil
}

func (f *fakeAPI) GuildMemberRoleAdd(guildID, userID, roleID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.roleAddErr != nil {
		return f.roleAddErr
	}
	f.roleAdds = append(f.roleAdds, guildID+"/"+userID+"/"+roleID)
	return nil
}

func (f *fakeAPI) UserChannelCreate(recipientID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if f.channelErr != nil {
		return nil, f.channelErr
	}
	return &discordgo.Channel{ID: "dm-" + recipientID, Type: discordgo.ChannelTypeDM}, nil
}

func (f *fakeAPI) ChannelMessageSend(channelID string, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, channelID+": "+content)
	return &discordgo.Message{ChannelID: channelID, Content: content}, nil
}

func (f *fakeAPI) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	for _, file := range data.Files {
		b, _ := io.ReadAll(file.Reader)
		f.files[file.Name] = b
	}
	f.complex = append(f.complex, data)
	return &discordgo.Message{ChannelID: channelID, Content: data.Content}, nil
}

func (f *fakeAPI) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.respondErr != nil {
		return f.respondErr
	}
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeAPI) InteractionResponseEdit(_ *discordgo.Interaction, newresp *discordgo.WebhookEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if newresp.Content != nil {
		f.edits = append(f.edits, *newresp.Content)
	}
	return &discordgo.Message{}, nil
}

func (f *fakeAPI) ApplicationCommandBulkOverwrite(_ string, _ string, commands []*discordgo.ApplicationCommand, _ ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.overwriteErr != nil {
		return nil, f.overwriteErr
	}
	f.overwrites = append(f.overwrites, commands)
	return commands, nil
}

// fakeGateway stands in for the websocket connection.
type fakeGateway struct {
	opened   bool
	closed   bool
	openErr  error
	handlers []interface{}
}

func (g *fakeGateway) Open() error {
	if g.openErr != nil {
		return g.openErr
	}
	g.opened = true
	return nil
}

func (g *fakeGateway) Close() error {
	g.closed = true
	return nil
}

func (g *fakeGateway) AddHandler(handler interface{}) func() {
	g.handlers = append(g.handlers, handler)
	return func() {}
}
