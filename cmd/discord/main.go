package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/slashdispatch/internal/commands"
	"github.com/keshon/slashdispatch/internal/config"
	"github.com/keshon/slashdispatch/internal/discord"
	"github.com/keshon/slashdispatch/internal/logger"
	"github.com/keshon/slashdispatch/internal/middleware"
	"github.com/keshon/slashdispatch/pkg/cmd"
	"github.com/keshon/slashdispatch/pkg/datastore"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := logger.New("info", true)
		l.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.New(cfg.LogLevel, cfg.LogPretty)
	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("discord bot stopped with error")
		os.Exit(1)
	}
	log.Info().Msg("bye")
}

func run(cfg *config.Config, log zerolog.Logger) error {
	log.Info().Msg("starting discord bot")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds

	settings := commands.NewSettings()
	if cfg.SettingsPath != "" {
		store, err := datastore.OpenWithConfig(datastore.Config{
			FilePath:         cfg.SettingsPath,
			AutoSaveInterval: 10 * time.Second,
			BackupCount:      3,
			Logger:           log.With().Str("component", "datastore").Logger(),
		})
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Error().Err(err).Msg("failed to save settings")
			}
		}()
		if settings, err = commands.NewStoredSettings(store); err != nil {
			return err
		}
	}

	b := cmd.NewBuilder(discord.NewResponder(dg)).
		Logger(log).
		ModalTimeout(cfg.ModalTimeout).
		Use(middleware.WithCommandLogger(log))
	commands.Register(b, commands.Deps{
		Settings:    settings,
		Latency:     dg.HeartbeatLatency,
		DeveloperID: cfg.DeveloperID,
		Log:         log,
	})
	fw, err := b.Build()
	if err != nil {
		return err
	}
	log.Info().Int("commands", fw.Registry().Len()).Msg("commands registered")

	return discord.NewBot(cfg, dg, fw, log).Run(ctx)
}
