package handlers

import (
	"strconv"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

type fakeSession struct {
	mu sync.Mutex

	roles      []*discordgo.Role
	rolesErr   error
	rolesPanic bool
	kickErr    error
	addErr     error
	ackErr     error

	responses []*discordgo.InteractionResponse
	followups []*discordgo.WebhookParams
	kicks     []string
	roleAdds  []string
	alerts    []*discordgo.MessageSend
	roleCalls int
}

func (f *fakeSession) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ackErr != nil {
		return f.ackErr
	}
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeSession) FollowupMessageCreate(_ *discordgo.Interaction, _ bool, data *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.followups = append(f.followups, data)
	return &discordgo.Message{}, nil
}

func (f *fakeSession) GuildRoles(_ string, _ ...discordgo.RequestOption) ([]*discordgo.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roleCalls++
	if f.rolesPanic {
		panic("state corrupted")
	}
	return f.roles, f.rolesErr
}

func (f *fakeSession) GuildMemberDeleteWithReason(_, userID, reason string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kicks = append(f.kicks, userID+":"+reason)
	return f.kickErr
}

func (f *fakeSession) GuildMemberRoleAdd(_, userID, roleID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roleAdds = append(f.roleAdds, userID+":"+roleID)
	return f.addErr
}

func (f *fakeSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alerts = append(f.alerts, data)
	return &discordgo.Message{ChannelID: channelID}, nil
}

func (f *fakeSession) lastFollowup() *discordgo.MessageEmbed {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.followups) == 0 {
		return nil
	}
	return f.followups[len(f.followups)-1].Embeds[0]
}

// snowflakeAt returns a user ID whose embedded creation time is t.
func snowflakeAt(t time.Time) string {
	const discordEpoch = 1420070400000
	ms := t.UnixMilli() - discordEpoch
	return strconv.FormatInt(ms<<22, 10)
}
