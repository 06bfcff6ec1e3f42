package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "superintendent/internal/command/info"
	_ "superintendent/internal/command/minecraft"
	_ "superintendent/internal/command/moderation"

	"superintendent/internal/command/chat"
	cmdmusic "superintendent/internal/command/music"
	"superintendent/internal/config"
	"superintendent/internal/discord"
	"superintendent/internal/logger"
	"superintendent/internal/memory"
	"superintendent/internal/music"
	"superintendent/internal/openrouter"
	"superintendent/internal/storage"
	v "superintendent/internal/version"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		fallback := logger.New("info", "")
		fallback.Fatal().Err(err).Msg("configuration error")
	}

	log := logger.New(cfg.LogLevel, cfg.LogFile)
	log.Info().Str("app", v.AppName).Str("version", v.Version).Str("environment", cfg.Environment).Msg("starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		log.Fatal().Err(err).Msg("storage init failed")
	}
	defer store.Close()

	mgr := music.NewManager(log)
	cmdmusic.Register(mgr)

	if cfg.ChatEnabled() {
		ai, err := openrouter.New(cfg.OpenRouterAPIKey, cfg.OpenRouterModel, cfg.OpenRouterSiteURL, cfg.OpenRouterAppName)
		if err != nil {
			log.Fatal().Err(err).Msg("openrouter init failed")
		}
		chat.Register(ai, memory.NewStore(cfg.AIMemoryMessages))
	} else {
		log.Info().Msg("OPENROUTER_API_KEY not set, mention responder disabled")
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- discord.StartBot(ctx, cfg, store, mgr, log)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Info().Str("signal", s.String()).Msg("shutting down")
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("bot exited with error")
		}
		cancel()
	}

	log.Info().Msg("bot exited cleanly")
}
