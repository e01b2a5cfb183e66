package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"plugbot/bot"
	"plugbot/config"
	"plugbot/database"
	"plugbot/events"
	"plugbot/plug"
	"plugbot/repository"
	"plugbot/service"
)

// How often the room snapshot behind the read methods is refreshed.
const roomPollInterval = 5 * time.Second

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting plugbot...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()

	// Initialize repositories
	metricsRepo := repository.NewMetricsRepository(db)
	cooldownRepo := repository.NewCooldownRepository(db)
	holidayRepo := repository.NewHolidayRepository(db)

	// Initialize room gateway
	log.Println("Connecting to room platform...")
	room := plug.NewClient(plug.Config{
		BaseURL: cfg.RoomBaseURL,
		Auth:    cfg.RoomAuth,
		Slug:    cfg.RoomSlug,
	})
	if err := room.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to fetch initial room state: %w", err)
	}
	room.StartPolling(ctx, roomPollInterval)
	log.Println("Room platform connection established successfully")

	// Initialize Discord bot
	log.Println("Initializing Discord bot...")
	discordBot, err := bot.New(bot.Config{
		Token:           cfg.DiscordToken,
		GuildID:         cfg.DiscordGuildID,
		ResidentRoleID:  cfg.ResidentRoleID,
		MirrorChannelID: cfg.MirrorChannelID,
		MirrorEnabled:   cfg.MirrorEnabled,
	}, eventBus)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.Println("Discord bot initialized successfully")

	// Initialize services; the bot doubles as the guild role mirror
	scoreService := service.NewScoreService(metricsRepo, room, discordBot, eventBus, cfg.Weights)
	rouletteService := service.NewRouletteService(room, cooldownRepo, holidayRepo, eventBus)
	russianRouletteService := service.NewRussianRouletteService(room, cooldownRepo, eventBus)
	giveawayService := service.NewGiveawayService(room, holidayRepo, eventBus)

	if err := discordBot.AttachServices(scoreService, rouletteService, russianRouletteService, giveawayService); err != nil {
		return fmt.Errorf("failed to attach services to Discord bot: %w", err)
	}
	log.Println("Services initialized successfully")

	// Wait for context cancellation
	log.Printf("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Println("Shutting down bot...")

	// Abort any running game sessions before disconnecting
	rouletteService.End()
	russianRouletteService.End()

	// Close Discord bot connection
	if err := discordBot.Close(); err != nil {
		log.Printf("Error closing Discord bot: %v", err)
	}

	// Give cleanup operations time to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Close database connection
	log.Println("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Println("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Println("Shutdown completed")
	}

	return nil
}
