package discord

import (
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"superintendent/internal/core"
)

// registerCommands reconciles a guild's slash commands with the registry.
// Hashes of previously pushed definitions are cached on disk so unchanged
// commands don't burn API calls on every restart.
func (b *Bot) registerCommands(guildID string) error {
	appID := b.dg.State.User.ID
	if appID == "" {
		user, err := b.dg.User("@me")
		if err != nil {
			return err
		}
		appID = user.ID
	}

	existing, _ := b.dg.ApplicationCommands(appID, guildID)
	localHashes := loadGuildCommandHashes(guildID)

	var wanted []*discordgo.ApplicationCommand
	wantedHashes := make(map[string]string)
	for _, cmd := range core.AllCommands() {
		if def := normalizeDefinition(cmd); def != nil {
			wanted = append(wanted, def)
			wantedHashes[def.Name] = hashCommand(def)
		}
	}

	for _, old := range existing {
		if _, ok := wantedHashes[old.Name]; !ok {
			b.log.Info().Str("guild", guildID).Str("command", old.Name).Msg("deleting obsolete command")
			if err := b.dg.ApplicationCommandDelete(appID, guildID, old.ID); err != nil {
				b.log.Error().Err(err).Str("guild", guildID).Str("command", old.Name).Msg("delete failed")
			}
			delete(localHashes, old.Name)
		}
	}

	var changed []*discordgo.ApplicationCommand
	for _, cmd := range wanted {
		if localHashes[cmd.Name] != wantedHashes[cmd.Name] {
			changed = append(changed, cmd)
		}
	}

	if len(changed) > 0 {
		b.log.Info().Str("guild", guildID).Int("count", len(changed)).Msg("updating changed commands")
		b.createCommandsWithRateLimit(appID, guildID, changed)
		for _, c := range changed {
			localHashes[c.Name] = wantedHashes[c.Name]
		}
	}

	saveGuildCommandHashes(guildID, localHashes)
	return nil
}

// normalizeDefinition extracts a registrable definition from a command.
func normalizeDefinition(cmd core.Command) *discordgo.ApplicationCommand {
	slash, ok := cmd.(core.SlashProvider)
	if !ok {
		return nil
	}
	def := slash.SlashDefinition()
	if def == nil {
		return nil
	}
	if def.Type == 0 {
		def.Type = discordgo.ChatApplicationCommand
	}
	return def
}

// createCommandsWithRateLimit pushes definitions spaced out under Discord's
// application command rate limit.
func (b *Bot) createCommandsWithRateLimit(appID, guildID string, cmds []*discordgo.ApplicationCommand) {
	ticker := time.NewTicker(time.Second / 40)
	defer ticker.Stop()

	var wg sync.WaitGroup
	for _, job := range cmds {
		wg.Add(1)
		go func(cmd *discordgo.ApplicationCommand) {
			defer wg.Done()
			<-ticker.C

			if _, err := b.dg.ApplicationCommandCreate(appID, guildID, cmd); err != nil {
				b.log.Error().Err(err).Str("guild", guildID).Str("command", cmd.Name).Msg("create failed")
			} else {
				b.log.Info().Str("guild", guildID).Str("command", cmd.Name).Msg("command created")
			}
		}(job)
	}
	wg.Wait()
}
