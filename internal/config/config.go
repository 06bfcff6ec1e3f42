package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every value the bot reads from the environment. It is loaded
// once at startup and treated as read-only afterwards.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"main"`

	BotTokenMain string `env:"BOT_TOKEN_MAIN"`
	BotTokenDev  string `env:"BOT_TOKEN_DEV"`

	LogChannelID string `env:"LOG_CHANNEL_ID"`

	MusicDJRoleID string `env:"MUSIC_DJ_ROLE_ID"`

	LavalinkHost     string `env:"LAVALINK_HOST"`
	LavalinkPort     int    `env:"LAVALINK_PORT" envDefault:"2333"`
	LavalinkPassword string `env:"LAVALINK_PASSWORD"`
	LavalinkRegion   string `env:"LAVALINK_REGION"`
	LavalinkSSL      bool   `env:"LAVALINK_SSL" envDefault:"false"`

	OpenRouterAPIKey  string `env:"OPENROUTER_API_KEY"`
	OpenRouterSiteURL string `env:"OPENROUTER_SITE_URL"`
	OpenRouterAppName string `env:"OPENROUTER_APP_NAME"`
	OpenRouterModel   string `env:"OPENROUTER_MODEL" envDefault:"z-ai/glm-4.5-air:free"`

	MCServerAddress string `env:"MC_SERVER_ADDRESS" envDefault:"hyperborea.mcserver.us"`

	AIMemoryMessages int    `env:"AI_MEMORY_MESSAGES" envDefault:"10"`
	AISystemPrompt   string `env:"AI_SYSTEM_PROMPT" envDefault:"You are a helpful Discord bot. Keep replies short and conversational."`

	StoragePath string `env:"STORAGE_PATH" envDefault:"datastore.json"`

	LogFile  string `env:"LOG_FILE"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// New loads .env (if present), parses the environment and validates the
// result. Any missing required variable is reported by name.
func New() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(c.Environment) {
	case "main":
		if c.BotTokenMain == "" {
			return fmt.Errorf("BOT_TOKEN_MAIN is not set (ENVIRONMENT=main)")
		}
	case "dev":
		if c.BotTokenDev == "" {
			return fmt.Errorf("BOT_TOKEN_DEV is not set (ENVIRONMENT=dev)")
		}
	default:
		return fmt.Errorf("ENVIRONMENT must be \"main\" or \"dev\", got %q", c.Environment)
	}

	if c.LogChannelID == "" {
		return fmt.Errorf("LOG_CHANNEL_ID is not set")
	}

	if c.MusicEnabled() && c.LavalinkPassword == "" {
		return fmt.Errorf("LAVALINK_PASSWORD is not set but LAVALINK_HOST is")
	}
	if c.LavalinkPort <= 0 || c.LavalinkPort > 65535 {
		return fmt.Errorf("LAVALINK_PORT out of range: %d", c.LavalinkPort)
	}
	if c.AIMemoryMessages < 1 {
		return fmt.Errorf("AI_MEMORY_MESSAGES must be positive, got %d", c.AIMemoryMessages)
	}

	return nil
}

// BotToken returns the token matching the configured environment.
func (c *Config) BotToken() string {
	if strings.ToLower(c.Environment) == "dev" {
		return c.BotTokenDev
	}
	return c.BotTokenMain
}

// MusicEnabled reports whether a Lavalink node is configured. When false the
// music commands reply with a "not configured" notice instead of failing.
func (c *Config) MusicEnabled() bool {
	return c.LavalinkHost != ""
}

// ChatEnabled reports whether the mention responder has an API key to work
// with. When false, mentions are ignored entirely.
func (c *Config) ChatEnabled() bool {
	return c.OpenRouterAPIKey != ""
}
