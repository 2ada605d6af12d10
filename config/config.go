package config

import (
	"fmt"
	"sync"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken   string `env:"DISCORD_TOKEN"`
	DiscordGuildID string `env:"DISCORD_GUILD_ID"`

	// Database configuration
	DatabaseURL string `env:"DATABASE_URL"`

	// Key API configuration
	APIEnabled bool   `env:"API_ENABLED" envDefault:"false"`
	APIAddr    string `env:"API_ADDR" envDefault:":8090"`
	APIKey     string `env:"API_KEY"`

	// Ticket configuration
	TicketInactivityMinutes int `env:"TICKET_INACTIVITY_MINUTES" envDefault:"180"`
	TicketScanSeconds       int `env:"TICKET_SCAN_SECONDS" envDefault:"300"`

	// Giveaway configuration
	GiveawayScanSeconds int `env:"GIVEAWAY_SCAN_SECONDS" envDefault:"20"`

	// Bug report throttling
	BugWindowMinutes  int `env:"BUG_WINDOW_MINUTES" envDefault:"10"`
	BugTimeoutMinutes int `env:"BUG_TIMEOUT_MINUTES" envDefault:"10"`

	// Anti-mention escalation defaults (overridable per guild)
	AntipingWindowMinutes  int `env:"ANTIPING_WINDOW_MINUTES" envDefault:"5"`
	AntipingThreshold      int `env:"ANTIPING_THRESHOLD" envDefault:"1"`
	AntipingTimeoutMinutes int `env:"ANTIPING_TIMEOUT_MINUTES" envDefault:"5"`

	// Environment
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
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

// load loads configuration from the environment, with .env support for local runs
func load() (*Config, error) {
	// Missing .env is fine, real deployments set variables directly
	_ = godotenv.Load()

	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.APIEnabled && config.APIKey == "" {
			return nil, fmt.Errorf("API_KEY is required when API_ENABLED is set")
		}
	}

	return config, nil
}
