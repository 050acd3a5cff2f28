// Package panel creates and edits role panel messages and appends grant
// buttons to them.
package panel

import (
	"context"
	"errors"
	"fmt"

	"verifybot/database"
	"verifybot/discorderr"
	"verifybot/policy"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

var (
	ErrNoStoredPanel = errors.New("no panel message has been created in this server yet")
	ErrPanelNotFound = errors.New("panel message no longer exists")
	ErrNoEmbed       = errors.New("message has no embed to edit")
)

// API is the part of *discordgo.Session the panel service needs.
type API interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type Embed struct {
	Title        string
	Description  string
	Color        int
	ImageURL     string
	ThumbnailURL string
	Footer       string
}

func (e Embed) toDiscord() *discordgo.MessageEmbed {
	me := &discordgo.MessageEmbed{
		Title:       e.Title,
		Description: e.Description,
		Color:       e.Color,
	}
	if e.ImageURL != "" {
		me.Image = &discordgo.MessageEmbedImage{URL: e.ImageURL}
	}
	if e.ThumbnailURL != "" {
		me.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: e.ThumbnailURL}
	}
	if e.Footer != "" {
		me.Footer = &discordgo.MessageEmbedFooter{Text: e.Footer}
	}
	return me
}

// EmbedPatch holds the fields to change; nil leaves a field as is.
type EmbedPatch struct {
	Title       *string
	Description *string
	Color       *int
}

// Ref points at a panel message. An empty MessageID means the guild's
// stored pointer.
type Ref struct {
	ChannelID string
	MessageID string
}

type ButtonSpec struct {
	RoleID string
	Label  string
	Style  discordgo.ButtonStyle
	Emoji  *discordgo.ComponentEmoji
}

func (b ButtonSpec) toDiscord() discordgo.Button {
	return discordgo.Button{
		Label:    b.Label,
		Style:    b.Style,
		Emoji:    b.Emoji,
		CustomID: policy.ControlID(b.RoleID),
	}
}

type Service struct {
	api   API
	store database.Store
	botID func() string
}

// NewService wires the panel operations. botID is evaluated on every call
// since the bot identity is only known after the gateway Ready event.
func NewService(api API, store database.Store, botID func() string) *Service {
	return &Service{api: api, store: store, botID: botID}
}

// Create sends a new panel embed to channelID and stores it as the guild's
// latest panel.
func (s *Service) Create(ctx context.Context, guildID, channelID string, e Embed) (database.MessagePointer, error) {
	msg, err := s.api.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{e.toDiscord()},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return database.MessagePointer{}, fmt.Errorf("send panel: %w", err)
	}

	p := database.MessagePointer{ChannelID: msg.ChannelID, MessageID: msg.ID}
	if err := database.SavePointer(ctx, s.store, guildID, p); err != nil {
		return p, fmt.Errorf("save panel pointer: %w", err)
	}

	zap.L().Info("Panel created",
		zap.String("guildID", guildID),
		zap.String("channelID", p.ChannelID),
		zap.String("messageID", p.MessageID))

	return p, nil
}

// Edit patches the first embed of the panel. Buttons are left untouched.
func (s *Service) Edit(ctx context.Context, guildID string, ref Ref, patch EmbedPatch) (database.MessagePointer, error) {
	p, msg, err := s.fetchOwned(ctx, guildID, ref)
	if err != nil {
		return p, err
	}

	if len(msg.Embeds) == 0 {
		return p, ErrNoEmbed
	}

	embeds := make([]*discordgo.MessageEmbed, len(msg.Embeds))
	copy(embeds, msg.Embeds)

	first := *embeds[0]
	if patch.Title != nil {
		first.Title = *patch.Title
	}
	if patch.Description != nil {
		first.Description = *patch.Description
	}
	if patch.Color != nil {
		first.Color = *patch.Color
	}
	embeds[0] = &first

	_, err = s.api.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel: p.ChannelID,
		ID:      p.MessageID,
		Embeds:  &embeds,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return p, fmt.Errorf("edit panel: %w", err)
	}

	return p, nil
}

// AddButton appends a grant button for b.RoleID to the panel and records
// the panel as the guild's latest.
func (s *Service) AddButton(ctx context.Context, guildID string, ref Ref, b ButtonSpec) (database.MessagePointer, error) {
	p, msg, err := s.resolve(ctx, guildID, ref)
	if err != nil {
		return p, err
	}

	rows, err := Reconcile(msg, s.botID(), b.toDiscord())
	if err != nil {
		return p, err
	}

	_, err = s.api.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    p.ChannelID,
		ID:         p.MessageID,
		Components: &rows,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return p, fmt.Errorf("edit panel buttons: %w", err)
	}

	if err := database.SavePointer(ctx, s.store, guildID, p); err != nil {
		return p, fmt.Errorf("save panel pointer: %w", err)
	}

	zap.L().Info("Button added",
		zap.String("guildID", guildID),
		zap.String("messageID", p.MessageID),
		zap.String("roleID", b.RoleID))

	return p, nil
}

func (s *Service) fetchOwned(ctx context.Context, guildID string, ref Ref) (database.MessagePointer, *discordgo.Message, error) {
	p, msg, err := s.resolve(ctx, guildID, ref)
	if err != nil {
		return p, nil, err
	}

	if msg.Author == nil || msg.Author.ID != s.botID() {
		return p, nil, ErrTargetNotEditable
	}

	return p, msg, nil
}

func (s *Service) resolve(ctx context.Context, guildID string, ref Ref) (database.MessagePointer, *discordgo.Message, error) {
	p := database.MessagePointer{ChannelID: ref.ChannelID, MessageID: ref.MessageID}

	stored := ref.MessageID == ""
	if stored {
		var err error
		p, err = database.LoadPointer(ctx, s.store, guildID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return p, nil, ErrNoStoredPanel
			}
			return p, nil, fmt.Errorf("load panel pointer: %w", err)
		}
	}

	msg, err := s.api.ChannelMessage(p.ChannelID, p.MessageID, discordgo.WithContext(ctx))
	if err != nil {
		if discorderr.IsUnknownMessage(err) {
			if stored {
				zap.L().Warn("Stored panel pointer is stale",
					zap.String("guildID", guildID),
					zap.String("messageID", p.MessageID))
			}
			return p, nil, ErrPanelNotFound
		}
		return p, nil, fmt.Errorf("fetch panel: %w", err)
	}

	return p, msg, nil
}
