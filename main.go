package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"verifybot/config"
	"verifybot/cooldown"
	"verifybot/database"
	"verifybot/handlers"
	"verifybot/keepalive"
	"verifybot/logger"
	"verifybot/panel"
	"verifybot/policy"
	"verifybot/scheduler"
	"verifybot/stats"

	"github.com/bwmarrin/discordgo"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	gin.SetMode(gin.ReleaseMode)

	// .env is optional, the environment may already be populated
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	if err := logger.Setup(cfg.LogLevel); err != nil {
		panic(err)
	}
	defer zap.L().Sync()

	if envErr != nil {
		zap.L().Warn(".env file not loaded", zap.Error(envErr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := database.Open(ctx, database.Options{
		Driver:      cfg.StoreDriver,
		FilePath:    cfg.StorePath,
		PostgresDSN: cfg.PostgresDSN(),
		SQLitePath:  cfg.SQLitePath,
	})
	if err != nil {
		zap.L().Fatal("Failed to open store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer store.Close()

	discord, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		zap.L().Fatal("Error creating Discord session", zap.Error(err))
	}
	discord.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers

	clicks := cooldown.New(cfg.ButtonCooldown)
	clicks.StartCleanup(ctx, time.Minute)

	router := handlers.NewRouter(discord, handlers.RouterConfig{
		Cooldown:       clicks,
		Policy:         policy.New(cfg.MinAccountAgeDays),
		AlertChannelID: cfg.NotificationChannelID,
	})

	panels := panel.NewService(discord, store, func() string {
		if discord.State == nil || discord.State.User == nil {
			return ""
		}
		return discord.State.User.ID
	})
	commands := handlers.NewCommands(discord, panels, discord.HeartbeatLatency)

	discord.AddHandler(handlers.Ready(cfg.GuildID))
	discord.AddHandler(handlers.InteractionCreate(router, commands))

	if err := discord.Open(); err != nil {
		zap.L().Fatal("Error opening connection", zap.Error(err))
	}
	defer discord.Close()

	statsManager := stats.NewStatsManager(stats.StateGuilds(discord))
	scheduler.StartStatusRotation(ctx, discord, statsManager, cfg.StatusInterval)

	var server *keepalive.Server
	if cfg.KeepAliveEnabled() {
		server = keepalive.New(cfg.KeepAliveAddr, statsManager)
		server.Start()
	}

	zap.L().Info("Bot is now running. Press CTRL-C to exit.",
		zap.Int("min_account_age_days", cfg.MinAccountAgeDays),
		zap.Duration("cooldown", cfg.ButtonCooldown))

	<-ctx.Done()

	zap.L().Info("Shutting down bot...")

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zap.L().Warn("keep-alive shutdown", zap.Error(err))
		}
	}
}
