package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	sentry "github.com/getsentry/sentry-go"
	"github.com/rs/zerolog/log"

	"playpal/internal/config"
	"playpal/internal/database"
	"playpal/internal/discord"
	"playpal/internal/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if err := logger.Setup(cfg.LogLevel); err != nil {
		log.Fatal().Err(err).Msg("failed to set up logger")
	}

	// Initialize Sentry (no-op without a DSN)
	if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN}); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Sentry")
	}
	defer sentry.Flush(2 * time.Second)

	// Initialize database
	db, err := database.New(cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer db.Close()

	// Create repository
	repository := database.NewRepository(db, cfg.DailyPointCap)

	// Initialize Discord bot
	bot, err := discord.New(cfg.DiscordToken, repository)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create Discord bot")
	}

	// Start bot
	if err := bot.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start bot")
	}
	defer bot.Stop()

	// Wait for interrupt signal
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	log.Info().Msg("shutting down bot")
}
