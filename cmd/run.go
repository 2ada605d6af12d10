package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"guildkeeper/api"
	"guildkeeper/bot"
	"guildkeeper/bot/features/antiping"
	"guildkeeper/bot/features/bugs"
	"guildkeeper/bot/features/economy"
	"guildkeeper/bot/features/giveaways"
	"guildkeeper/bot/features/keys"
	"guildkeeper/bot/features/levels"
	"guildkeeper/bot/features/moderation"
	"guildkeeper/bot/features/settings"
	"guildkeeper/bot/features/tickets"
	"guildkeeper/bot/features/trivia"
	"guildkeeper/config"
	"guildkeeper/database"
	"guildkeeper/events"
	"guildkeeper/repository"
	"guildkeeper/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting guildkeeper bot...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize services
	log.Info("Initializing services...")
	tracker := service.NewRateTracker(uowFactory)
	questionClient := &http.Client{Timeout: 12 * time.Second}
	questionProvider := service.NewFallbackProvider(
		service.NewTriviaAPIProvider(questionClient),
		service.NewOpenTDBProvider(questionClient),
		service.NewLocalQuestionProvider(),
	)

	keyService := service.NewKeyService(uowFactory)
	prizeService := service.NewPrizeService(uowFactory)
	ticketService := service.NewTicketService(uowFactory, time.Duration(cfg.TicketInactivityMinutes)*time.Minute)
	giveawayService := service.NewGiveawayService(uowFactory)
	bugService := service.NewBugReportService(uowFactory, tracker,
		time.Duration(cfg.BugWindowMinutes)*time.Minute,
		time.Duration(cfg.BugTimeoutMinutes)*time.Minute)
	antipingService := service.NewAntipingService(uowFactory, tracker, service.AntipingDefaults{
		Window:    time.Duration(cfg.AntipingWindowMinutes) * time.Minute,
		Threshold: cfg.AntipingThreshold,
		Timeout:   time.Duration(cfg.AntipingTimeoutMinutes) * time.Minute,
	})
	economyService := service.NewEconomyService(uowFactory)
	levelService := service.NewLevelService(uowFactory)
	triviaService := service.NewTriviaService(uowFactory, questionProvider)
	infractionService := service.NewInfractionService(uowFactory)
	settingsService := service.NewGuildSettingsService(uowFactory)
	log.Info("Services initialized successfully")

	// Initialize Discord bot
	log.Info("Initializing Discord bot...")
	botConfig := bot.Config{
		Token:   cfg.DiscordToken,
		GuildID: cfg.DiscordGuildID,
	}
	discordBot, err := bot.New(botConfig,
		keys.New(keyService, prizeService),
		tickets.New(ticketService, settingsService),
		giveaways.New(giveawayService),
		bugs.New(bugService, settingsService),
		antiping.New(antipingService),
		settings.New(settingsService),
		economy.New(economyService),
		levels.New(levelService),
		trivia.New(triviaService),
		moderation.New(infractionService),
		eventBus,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.Info("Discord bot initialized successfully")

	// Start the background scans
	discordBot.StartWorkers(ctx,
		time.Duration(cfg.TicketScanSeconds)*time.Second,
		time.Duration(cfg.GiveawayScanSeconds)*time.Second)

	// Start the key API when enabled
	var apiServer *api.Server
	if cfg.APIEnabled {
		apiServer = api.New(api.Config{Addr: cfg.APIAddr, APIKey: cfg.APIKey}, keyService)
		go func() {
			if err := apiServer.Start(); err != nil {
				log.Errorf("API server stopped: %v", err)
			}
		}()
	}

	// Wait for context cancellation
	log.Infof("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Info("Shutting down bot...")

	// Close Discord bot connection
	if err := discordBot.Close(); err != nil {
		log.Errorf("Error closing Discord bot: %v", err)
	}

	// Give cleanup operations time to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if apiServer != nil {
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			log.Errorf("Error shutting down API server: %v", err)
		}
	}

	// Close database connection
	log.Info("Closing database connection...")
	db.Close()

	log.Info("Shutdown completed")
	return nil
}
