package handlers

import (
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func InteractionCreate(router *Router, commands *Commands) func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
		switch i.Type {
		case discordgo.InteractionMessageComponent:
			ev, ok := NewClickEvent(i.Interaction)
			if !ok {
				return
			}
			router.Handle(ev)
		case discordgo.InteractionApplicationCommand:
			commands.Handle(i.Interaction)
		}
	}
}

// Ready registers the slash commands once the bot identity is known.
// An empty guildID registers them globally.
func Ready(guildID string) func(s *discordgo.Session, r *discordgo.Ready) {
	return func(s *discordgo.Session, r *discordgo.Ready) {
		zap.L().Info("Logged in",
			zap.String("user", r.User.String()),
			zap.Int("guilds", len(r.Guilds)))

		cmds, err := s.ApplicationCommandBulkOverwrite(r.User.ID, guildID, Definitions())
		if err != nil {
			zap.L().Error("Failed to register commands", zap.Error(err))
			return
		}

		zap.L().Info("Slash commands synced", zap.Int("count", len(cmds)))
	}
}
