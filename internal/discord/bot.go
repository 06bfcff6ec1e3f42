// Package discord runs the gateway session: event routing, slash command
// registration and the channel activity log.
package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"superintendent/internal/config"
	"superintendent/internal/core"
	"superintendent/internal/lavalink"
	"superintendent/internal/music"
	"superintendent/internal/storage"
	"superintendent/internal/version"
)

// Bot is the Discord gateway side of the application.
type Bot struct {
	dg      *discordgo.Session
	cfg     *config.Config
	storage *storage.Storage
	log     zerolog.Logger
	music   *music.Manager

	runCtx context.Context
}

// StartBot opens the gateway session and blocks until ctx is cancelled.
func StartBot(ctx context.Context, cfg *config.Config, store *storage.Storage, mgr *music.Manager, log zerolog.Logger) error {
	b := &Bot{
		cfg:     cfg,
		storage: store,
		log:     log.With().Str("component", "discord").Logger(),
		music:   mgr,
		runCtx:  ctx,
	}

	dg, err := discordgo.New("Bot " + cfg.BotToken())
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	b.dg = dg

	dg.Identify.Intents = discordgo.IntentsAll

	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onGuildCreate)
	dg.AddHandler(b.onInteractionCreate)
	dg.AddHandler(b.onMessageCreate)
	dg.AddHandler(b.onMessageDelete)
	dg.AddHandler(b.onVoiceStateUpdate)
	dg.AddHandler(b.onVoiceServerUpdate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("open gateway: %w", err)
	}
	defer dg.Close()

	<-ctx.Done()
	b.log.Info().Msg("shutdown signal received, closing gateway")
	return nil
}

// onReady connects the audio node (now that the bot user id is known) and
// registers slash commands in every guild.
func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.log.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("gateway ready")

	if b.cfg.MusicEnabled() && b.music != nil {
		lava := lavalink.NewClient(lavalink.Config{
			Host:       b.cfg.LavalinkHost,
			Port:       b.cfg.LavalinkPort,
			Password:   b.cfg.LavalinkPassword,
			Secure:     b.cfg.LavalinkSSL,
			Region:     b.cfg.LavalinkRegion,
			UserID:     r.User.ID,
			ClientName: fmt.Sprintf("%s/%s", version.AppName, version.Version),
		}, b.music, b.log)
		b.music.Bind(lava, s)
		go lava.Run(b.runCtx)
	}

	for _, g := range r.Guilds {
		if err := b.registerCommands(g.ID); err != nil {
			b.log.Error().Err(err).Str("guild", g.ID).Msg("slash command registration failed")
		}
	}
}

// onGuildCreate registers commands when the bot joins a new guild.
func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	b.log.Info().Str("guild", g.ID).Str("name", g.Name).Msg("guild available")
	if err := b.registerCommands(g.ID); err != nil {
		b.log.Error().Err(err).Str("guild", g.ID).Msg("slash command registration failed")
	}
}

// onInteractionCreate routes slash interactions to the registered command.
func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	name := i.ApplicationCommandData().Name
	cmd, ok := core.GetCommand(name)
	if !ok {
		b.log.Warn().Str("command", name).Msg("unknown command")
		return
	}

	ctx := &core.SlashInteractionContext{
		Session: s,
		Event:   i,
		Storage: b.storage,
		Config:  b.cfg,
		Log:     b.log,
	}
	if err := cmd.Run(ctx); err != nil {
		b.log.Error().Err(err).Str("command", name).Msg("command failed")
		core.RespondEphemeral(s, i, fmt.Sprintf("Error running command: %v", err))
	}
}
