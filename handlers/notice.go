package handlers

import (
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const (
	colorRed    = 0xe74c3c
	colorOrange = 0xe67e22
	colorBlue   = 0x3498db
	colorGreen  = 0x2ecc71
	colorGold   = 0xf1c40f
)

// Notice is the ephemeral embed a user sees as the result of an action.
type Notice struct {
	Title       string
	Description string
	Color       int
}

func (n Notice) embed(i *discordgo.Interaction, at time.Time) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title:       n.Title,
		Description: n.Description,
		Color:       n.Color,
		Timestamp:   at.UTC().Format(time.RFC3339),
	}

	if m := i.Member; m != nil && m.User != nil {
		e.Footer = &discordgo.MessageEmbedFooter{Text: "Requested by " + m.DisplayName()}
		if m.User.Avatar != "" || m.Avatar != "" {
			e.Footer.IconURL = m.AvatarURL("")
		}
	}

	return e
}

// Responder is what the handlers need to answer an interaction.
type Responder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// respond answers the interaction directly with an ephemeral notice.
func respond(r Responder, i *discordgo.Interaction, n Notice, at time.Time) {
	err := r.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{n.embed(i, at)},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		zap.L().Error("Failed to respond to interaction", zap.String("interactionID", i.ID), zap.Error(err))
	}
}

// deferEphemeral acknowledges the interaction so the result can be sent
// later as a follow-up.
func deferEphemeral(r Responder, i *discordgo.Interaction) error {
	return r.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
}

func followUp(r Responder, i *discordgo.Interaction, n Notice, at time.Time) {
	_, err := r.FollowupMessageCreate(i, false, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{n.embed(i, at)},
		Flags:  discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		zap.L().Error("Failed to send follow-up", zap.String("interactionID", i.ID), zap.Error(err))
	}
}
