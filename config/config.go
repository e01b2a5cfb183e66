package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
)

// ScoreWeights are the per-unit weights of the reputation formula. They are
// plain floats with no enforced bounds: severity is a tuning knob, and a
// pathological configuration producing unbounded scores is accepted behavior.
type ScoreWeights struct {
	Ban         float64
	Mute        float64
	WaitlistBan float64
	PropsGiven  float64
	Messages    float64
	Woots       float64
	Grabs       float64
	Mehs        float64
	DaysOffline float64
}

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken     string
	DiscordGuildID   string
	ResidentRoleID   string // guild role mirrored onto linked users
	MirrorChannelID  string // channel receiving event embeds
	MirrorEnabled    bool

	// Room platform configuration
	RoomBaseURL string
	RoomAuth    string
	RoomSlug    string

	// Database configuration
	DatabaseURL string

	// Reputation scoring
	Weights ScoreWeights

	// Environment
	Environment string // "development" or "production"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		// Discord
		DiscordToken:    os.Getenv("DISCORD_TOKEN"),
		DiscordGuildID:  os.Getenv("DISCORD_GUILD_ID"),
		ResidentRoleID:  os.Getenv("RESIDENT_ROLE_ID"),
		MirrorChannelID: os.Getenv("MIRROR_CHANNEL_ID"),
		MirrorEnabled:   os.Getenv("MIRROR_ENABLED") == "true",

		// Room platform
		RoomBaseURL: os.Getenv("ROOM_BASE_URL"),
		RoomAuth:    os.Getenv("ROOM_AUTH"),
		RoomSlug:    os.Getenv("ROOM_SLUG"),

		// Database
		DatabaseURL: os.Getenv("DATABASE_URL"),

		// Score weights, all defaulting to 1
		Weights: ScoreWeights{
			Ban:         1,
			Mute:        1,
			WaitlistBan: 1,
			PropsGiven:  1,
			Messages:    1,
			Woots:       1,
			Grabs:       1,
			Mehs:        1,
			DaysOffline: 1,
		},

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override weight defaults if environment variables are set
	weightOverrides := map[string]*float64{
		"SCORE_WEIGHT_BAN":          &config.Weights.Ban,
		"SCORE_WEIGHT_MUTE":         &config.Weights.Mute,
		"SCORE_WEIGHT_WLBAN":        &config.Weights.WaitlistBan,
		"SCORE_WEIGHT_PROPS_GIVEN":  &config.Weights.PropsGiven,
		"SCORE_WEIGHT_MESSAGES":     &config.Weights.Messages,
		"SCORE_WEIGHT_WOOTS":        &config.Weights.Woots,
		"SCORE_WEIGHT_GRABS":        &config.Weights.Grabs,
		"SCORE_WEIGHT_MEHS":         &config.Weights.Mehs,
		"SCORE_WEIGHT_DAYS_OFFLINE": &config.Weights.DaysOffline,
	}
	for key, target := range weightOverrides {
		if raw := os.Getenv(key); raw != "" {
			if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
				*target = parsed
			}
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.RoomBaseURL == "" {
			return nil, fmt.Errorf("ROOM_BASE_URL is required")
		}
	}

	return config, nil
}
