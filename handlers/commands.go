package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"verifybot/database"
	"verifybot/discorderr"
	"verifybot/panel"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// PanelService is implemented by *panel.Service.
type PanelService interface {
	Create(ctx context.Context, guildID, channelID string, e panel.Embed) (database.MessagePointer, error)
	Edit(ctx context.Context, guildID string, ref panel.Ref, patch panel.EmbedPatch) (database.MessagePointer, error)
	AddButton(ctx context.Context, guildID string, ref panel.Ref, b panel.ButtonSpec) (database.MessagePointer, error)
}

const commandTimeout = 10 * time.Second

var manageRoles int64 = discordgo.PermissionManageRoles

// Definitions returns the slash commands registered on Ready.
func Definitions() []*discordgo.ApplicationCommand {
	colorChoices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(panel.ColorChoices))
	for _, c := range panel.ColorChoices {
		colorChoices = append(colorChoices, &discordgo.ApplicationCommandOptionChoice{Name: c, Value: c})
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        "ping",
			Description: "Check the bot latency",
		},
		{
			Name:        "help",
			Description: "List all commands",
		},
		{
			Name:                     "setup_embed",
			Description:              "Create a role panel embed in this channel",
			DefaultMemberPermissions: &manageRoles,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "title", Description: "Main title", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "description", Description: "Body text", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "color_select", Description: "Embed color", Choices: colorChoices},
				{Type: discordgo.ApplicationCommandOptionString, Name: "custom_hex", Description: "Hex color, overrides color_select"},
				{Type: discordgo.ApplicationCommandOptionString, Name: "image_url", Description: "Banner image"},
				{Type: discordgo.ApplicationCommandOptionString, Name: "thumbnail_url", Description: "Small image"},
				{Type: discordgo.ApplicationCommandOptionString, Name: "footer", Description: "Footer text"},
			},
		},
		{
			Name:                     "edit_embed",
			Description:              "Edit a role panel embed",
			DefaultMemberPermissions: &manageRoles,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "message_id", Description: "Message ID, defaults to the last panel"},
				{Type: discordgo.ApplicationCommandOptionString, Name: "title", Description: "New title"},
				{Type: discordgo.ApplicationCommandOptionString, Name: "description", Description: "New body text"},
				{Type: discordgo.ApplicationCommandOptionString, Name: "color_select", Description: "New color", Choices: colorChoices},
				{Type: discordgo.ApplicationCommandOptionString, Name: "custom_hex", Description: "New hex color"},
			},
		},
		{
			Name:                     "add_button",
			Description:              "Add a role button to a panel",
			DefaultMemberPermissions: &manageRoles,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionRole, Name: "role", Description: "Role to give", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "label", Description: "Button label", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "message_id", Description: "Message ID, defaults to the last panel"},
				{Type: discordgo.ApplicationCommandOptionString, Name: "emoji", Description: "Button icon"},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "style",
					Description: "Button color",
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Blue (Primary)", Value: "1"},
						{Name: "Gray (Secondary)", Value: "2"},
						{Name: "Green (Success)", Value: "3"},
						{Name: "Red (Danger)", Value: "4"},
					},
				},
			},
		},
	}
}

// Commands answers the operator slash commands.
type Commands struct {
	responder Responder
	panels    PanelService
	latency   func() time.Duration
	now       func() time.Time
}

func NewCommands(r Responder, panels PanelService, latency func() time.Duration) *Commands {
	return &Commands{responder: r, panels: panels, latency: latency, now: time.Now}
}

type options map[string]*discordgo.ApplicationCommandInteractionDataOption

func (o options) str(name string) string {
	if opt, ok := o[name]; ok && opt.Type == discordgo.ApplicationCommandOptionString {
		return opt.StringValue()
	}
	return ""
}

func (o options) stringPtr(name string) *string {
	if opt, ok := o[name]; ok && opt.Type == discordgo.ApplicationCommandOptionString {
		v := opt.StringValue()
		return &v
	}
	return nil
}

func (o options) roleID(name string) string {
	if opt, ok := o[name]; ok && opt.Type == discordgo.ApplicationCommandOptionRole {
		return opt.RoleValue(nil, "").ID
	}
	return ""
}

func (c *Commands) Handle(i *discordgo.Interaction) {
	data := i.ApplicationCommandData()

	opts := make(options, len(data.Options))
	for _, o := range data.Options {
		opts[o.Name] = o
	}

	switch data.Name {
	case "ping":
		c.ping(i)
	case "help":
		c.help(i)
	case "setup_embed":
		c.admin(i, func(ctx context.Context) (Notice, error) { return c.setupEmbed(ctx, i, opts) })
	case "edit_embed":
		c.admin(i, func(ctx context.Context) (Notice, error) { return c.editEmbed(ctx, i, opts) })
	case "add_button":
		c.admin(i, func(ctx context.Context) (Notice, error) { return c.addButton(ctx, i, opts) })
	default:
		zap.L().Debug("Unknown command", zap.String("name", data.Name))
	}
}

func (c *Commands) ping(i *discordgo.Interaction) {
	latency := c.latency().Milliseconds()

	color := colorGreen
	if latency >= 100 {
		color = colorOrange
	}

	respond(c.responder, i, Notice{"🏓 Pong!", fmt.Sprintf("**Latency:** `%dms`\n**API Status:** Online", latency), color}, c.now())
}

func (c *Commands) help(i *discordgo.Interaction) {
	err := c.responder.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{{
				Title:       "🤖 Bot Commands Manual",
				Description: "Every command this bot understands",
				Color:       colorGold,
				Fields: []*discordgo.MessageEmbedField{
					{
						Name:  "🛠️ Admin Commands",
						Value: "`/setup_embed` - create a role panel\n`/edit_embed` - edit a role panel\n`/add_button` - add a role button to an existing panel",
					},
					{
						Name:  "ℹ️ General",
						Value: "`/ping` - check latency\n`/help` - show this page",
					},
				},
			}},
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		zap.L().Error("Failed to respond to help", zap.Error(err))
	}
}

// admin acknowledges an operator command, runs it and reports the result as
// one ephemeral follow-up. The REST work can outlast the initial response
// deadline, so nothing runs before the acknowledgement.
func (c *Commands) admin(i *discordgo.Interaction, run func(ctx context.Context) (Notice, error)) {
	if i.GuildID == "" {
		respond(c.responder, i, Notice{"❌ Error", "This command only works inside a server.", colorRed}, c.now())
		return
	}

	if err := deferEphemeral(c.responder, i); err != nil {
		zap.L().Error("Failed to acknowledge command",
			zap.String("command", i.ApplicationCommandData().Name),
			zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	n, err := run(ctx)
	if err != nil {
		zap.L().Warn("Command failed",
			zap.String("command", i.ApplicationCommandData().Name),
			zap.String("guildID", i.GuildID),
			zap.Error(err))
		n = commandErrorNotice(err)
	}

	followUp(c.responder, i, n, c.now())
}

func (c *Commands) setupEmbed(ctx context.Context, i *discordgo.Interaction, opts options) (Notice, error) {
	e := panel.Embed{
		Title:        opts.str("title"),
		Description:  opts.str("description"),
		Color:        panel.ResolveColor(opts.str("color_select"), opts.str("custom_hex")),
		ImageURL:     opts.str("image_url"),
		ThumbnailURL: opts.str("thumbnail_url"),
		Footer:       opts.str("footer"),
	}

	if _, err := c.panels.Create(ctx, i.GuildID, i.ChannelID, e); err != nil {
		return Notice{}, err
	}

	return Notice{"✅ Success", "Embed created!", colorGreen}, nil
}

func (c *Commands) editEmbed(ctx context.Context, i *discordgo.Interaction, opts options) (Notice, error) {
	ref, err := messageRef(i, opts)
	if err != nil {
		return Notice{}, err
	}

	patch := panel.EmbedPatch{
		Title:       opts.stringPtr("title"),
		Description: opts.stringPtr("description"),
	}
	if opts.str("color_select") != "" || opts.str("custom_hex") != "" {
		color := panel.ResolveColor(opts.str("color_select"), opts.str("custom_hex"))
		patch.Color = &color
	}

	if patch.Title == nil && patch.Description == nil && patch.Color == nil {
		return Notice{"ℹ️ Info", "Nothing to change.", colorBlue}, nil
	}

	if _, err := c.panels.Edit(ctx, i.GuildID, ref, patch); err != nil {
		return Notice{}, err
	}

	return Notice{"✅ Embed Updated", "The panel has been updated.", colorGreen}, nil
}

func (c *Commands) addButton(ctx context.Context, i *discordgo.Interaction, opts options) (Notice, error) {
	ref, err := messageRef(i, opts)
	if err != nil {
		return Notice{}, err
	}

	label := opts.str("label")
	spec := panel.ButtonSpec{
		RoleID: opts.roleID("role"),
		Label:  label,
		Style:  panel.ParseStyle(opts.str("style")),
		Emoji:  panel.ParseEmoji(opts.str("emoji")),
	}

	if _, err := c.panels.AddButton(ctx, i.GuildID, ref, spec); err != nil {
		return Notice{}, err
	}

	return Notice{"✅ Button Added", fmt.Sprintf("Button **%s** added!", label), colorGreen}, nil
}

var errInvalidMessageID = errors.New("invalid message id")

// messageRef targets message_id in the current channel, or the stored
// panel when the option is absent.
func messageRef(i *discordgo.Interaction, opts options) (panel.Ref, error) {
	id := opts.str("message_id")
	if id == "" {
		return panel.Ref{}, nil
	}

	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		return panel.Ref{}, errInvalidMessageID
	}

	return panel.Ref{ChannelID: i.ChannelID, MessageID: id}, nil
}

func commandErrorNotice(err error) Notice {
	var msg string

	switch {
	case errors.Is(err, errInvalidMessageID):
		msg = "That message ID is not valid."
	case errors.Is(err, panel.ErrTargetNotEditable):
		msg = "The bot can only edit its own messages."
	case errors.Is(err, panel.ErrNoStoredPanel):
		msg = "No panel found. Run `/setup_embed` first or pass a `message_id`."
	case errors.Is(err, panel.ErrPanelNotFound):
		msg = "The panel message no longer exists. Create a new one with `/setup_embed`."
	case errors.Is(err, panel.ErrTooManyControls):
		msg = fmt.Sprintf("This message already has %d buttons.", panel.MaxControls)
	case errors.Is(err, panel.ErrUnsupportedComponent):
		msg = "This message has components other than buttons and can't be extended."
	case errors.Is(err, panel.ErrNoEmbed):
		msg = "This message has no embed to edit."
	case discorderr.IsMissingPermissions(err):
		msg = "The bot is missing permissions for that channel or message."
	default:
		msg = "Something went wrong. Please try again."
	}

	return Notice{"❌ Error", msg, colorRed}
}
