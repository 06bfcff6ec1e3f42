package discord

import (
	"fmt"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"superintendent/internal/core"
)

// onMessageCreate feeds plain messages to every command that handles them.
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == s.State.User.ID {
		return
	}

	for _, cmd := range core.AllCommands() {
		mh, ok := cmd.(core.MessageHandler)
		if !ok {
			continue
		}
		ctx := &core.MessageContext{
			Session: s,
			Event:   m,
			Storage: b.storage,
			Config:  b.cfg,
			Log:     b.log,
		}
		if err := mh.Message(ctx); err != nil {
			b.log.Error().Err(err).Str("command", cmd.Name()).Msg("message handler failed")
		}
	}
}

// onMessageDelete posts a note about deleted messages to the log channel.
// Content is only available when the message was still in the state cache.
func (b *Bot) onMessageDelete(s *discordgo.Session, m *discordgo.MessageDelete) {
	if b.cfg.LogChannelID == "" || m.ChannelID == b.cfg.LogChannelID || m.GuildID == "" {
		return
	}

	deleted := m.BeforeDelete
	if deleted == nil || deleted.Author == nil || deleted.Author.Bot {
		return
	}

	note := fmt.Sprintf("🗑️ Message `%s` by **%s** deleted in <#%s>", m.ID, deleted.Author.Username, m.ChannelID)
	if content := truncate(deleted.Content, 800); content != "" {
		note += ":\n> " + content
	}
	for _, a := range deleted.Attachments {
		note += "\n" + a.URL
	}
	if _, err := s.ChannelMessageSend(b.cfg.LogChannelID, note); err != nil {
		b.log.Warn().Err(err).Msg("failed to post delete notice")
	}
}

// truncate shortens s to at most limit bytes without splitting a rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit] + "…"
}

// onVoiceStateUpdate logs channel joins, leaves and moves, and keeps the
// audio node fed with the bot's own voice session.
func (b *Bot) onVoiceStateUpdate(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	if v.UserID == s.State.User.ID {
		if b.music != nil {
			b.music.HandleOwnVoiceState(v.GuildID, v.ChannelID, v.SessionID)
		}
		return
	}

	if b.cfg.LogChannelID == "" {
		return
	}

	oldChannelID := ""
	if v.BeforeUpdate != nil {
		oldChannelID = v.BeforeUpdate.ChannelID
	}

	username := v.UserID
	if member, err := s.State.Member(v.GuildID, v.UserID); err == nil && member.User != nil {
		username = member.User.Username
	}

	for _, ev := range ClassifyVoiceTransition(oldChannelID, v.ChannelID) {
		if _, err := s.ChannelMessageSend(b.cfg.LogChannelID, ev.Message(s, username)); err != nil {
			b.log.Warn().Err(err).Msg("failed to post voice notice")
		}
	}
}

// onVoiceServerUpdate forwards the voice server token to the audio node.
func (b *Bot) onVoiceServerUpdate(s *discordgo.Session, v *discordgo.VoiceServerUpdate) {
	if b.music != nil {
		b.music.HandleVoiceServerUpdate(v.GuildID, v.Token, v.Endpoint)
	}
}
