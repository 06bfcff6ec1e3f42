package config

import (
	"strings"
	"testing"
)

// setBaseEnv sets the minimum environment a valid config needs. Tests
// override individual variables after calling it.
func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENVIRONMENT", "main")
	t.Setenv("BOT_TOKEN_MAIN", "token-main")
	t.Setenv("BOT_TOKEN_DEV", "")
	t.Setenv("LOG_CHANNEL_ID", "123456")
	t.Setenv("LAVALINK_HOST", "")
	t.Setenv("LAVALINK_PORT", "2333")
	t.Setenv("LAVALINK_PASSWORD", "")
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("AI_MEMORY_MESSAGES", "10")
}

func TestNewValidConfig(t *testing.T) {
	setBaseEnv(t)

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BotToken() != "token-main" {
		t.Errorf("BotToken() = %q, want token-main", cfg.BotToken())
	}
	if cfg.MusicEnabled() {
		t.Error("music should be disabled without LAVALINK_HOST")
	}
	if cfg.ChatEnabled() {
		t.Error("chat should be disabled without OPENROUTER_API_KEY")
	}
}

func TestNewDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LavalinkPort != 2333 {
		t.Errorf("LavalinkPort = %d, want 2333", cfg.LavalinkPort)
	}
	if cfg.OpenRouterModel != "z-ai/glm-4.5-air:free" {
		t.Errorf("OpenRouterModel = %q", cfg.OpenRouterModel)
	}
	if cfg.MCServerAddress != "hyperborea.mcserver.us" {
		t.Errorf("MCServerAddress = %q", cfg.MCServerAddress)
	}
	if cfg.AIMemoryMessages != 10 {
		t.Errorf("AIMemoryMessages = %d, want 10", cfg.AIMemoryMessages)
	}
}

func TestNewMissingMainTokenNamesVariable(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("BOT_TOKEN_MAIN", "")

	_, err := New()
	if err == nil || !strings.Contains(err.Error(), "BOT_TOKEN_MAIN") {
		t.Errorf("expected error naming BOT_TOKEN_MAIN, got %v", err)
	}
}

func TestNewDevEnvironmentUsesDevToken(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("ENVIRONMENT", "dev")
	t.Setenv("BOT_TOKEN_DEV", "token-dev")

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BotToken() != "token-dev" {
		t.Errorf("BotToken() = %q, want token-dev", cfg.BotToken())
	}
}

func TestNewDevEnvironmentMissingDevToken(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("ENVIRONMENT", "dev")

	_, err := New()
	if err == nil || !strings.Contains(err.Error(), "BOT_TOKEN_DEV") {
		t.Errorf("expected error naming BOT_TOKEN_DEV, got %v", err)
	}
}

func TestNewUnknownEnvironment(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("ENVIRONMENT", "staging")

	if _, err := New(); err == nil {
		t.Error("expected error for unknown environment")
	}
}

func TestNewMissingLogChannel(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("LOG_CHANNEL_ID", "")

	_, err := New()
	if err == nil || !strings.Contains(err.Error(), "LOG_CHANNEL_ID") {
		t.Errorf("expected error naming LOG_CHANNEL_ID, got %v", err)
	}
}

func TestNewLavalinkHostRequiresPassword(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("LAVALINK_HOST", "lava.example.com")

	_, err := New()
	if err == nil || !strings.Contains(err.Error(), "LAVALINK_PASSWORD") {
		t.Errorf("expected error naming LAVALINK_PASSWORD, got %v", err)
	}

	t.Setenv("LAVALINK_PASSWORD", "hunter2")
	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.MusicEnabled() {
		t.Error("music should be enabled with host and password set")
	}
}

func TestNewLavalinkPortOutOfRange(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("LAVALINK_PORT", "70000")

	if _, err := New(); err == nil {
		t.Error("expected error for out-of-range port")
	}
}

func TestNewChatEnabled(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("OPENROUTER_API_KEY", "sk-or-xyz")

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.ChatEnabled() {
		t.Error("chat should be enabled with an API key")
	}
}
