// Package music holds the playback slash commands. Unlike the other command
// packages they are registered from main, because they need the shared
// playback manager.
package music

import (
	"github.com/bwmarrin/discordgo"

	"superintendent/internal/core"
	musicctl "superintendent/internal/music"
)

// base carries what every music command needs.
type base struct {
	Music *musicctl.Manager
}

func (b *base) Aliases() []string  { return []string{} }
func (b *base) Group() string      { return "music" }
func (b *base) Category() string   { return "🎵 Music" }
func (b *base) RequireAdmin() bool { return false }

// requireMusic answers with an ephemeral notice when playback is not
// available, and reports whether the command may proceed.
func (b *base) requireMusic(v *core.SlashInteractionContext) bool {
	if !v.Config.MusicEnabled() {
		core.RespondEphemeral(v.Session, v.Event,
			"Music playback isn't configured. Set the Lavalink environment variables and restart the bot.")
		return false
	}
	if !b.Music.Ready() {
		core.RespondEphemeral(v.Session, v.Event,
			"The audio node isn't connected yet. Try again in a moment.")
		return false
	}
	return true
}

// userVoiceChannel returns the voice channel the invoker currently sits in.
func userVoiceChannel(s *discordgo.Session, guildID, userID string) string {
	vs, err := s.State.VoiceState(guildID, userID)
	if err != nil || vs == nil {
		return ""
	}
	return vs.ChannelID
}

// Register wires all music commands with the playback manager and the
// standard middleware chain.
func Register(mgr *musicctl.Manager) {
	cmds := []core.Command{
		&PlayCommand{base{Music: mgr}},
		&SkipCommand{base{Music: mgr}},
		&PauseCommand{base{Music: mgr}},
		&ResumeCommand{base{Music: mgr}},
		&QueueCommand{base{Music: mgr}},
		&StopCommand{base{Music: mgr}},
	}
	for _, cmd := range cmds {
		core.RegisterCommand(
			core.ApplyMiddlewares(
				cmd,
				core.WithCommandLogger(),
				core.WithDJRoleCheck(),
				core.WithGuildOnly(),
			),
		)
	}

	core.RegisterCommand(
		core.ApplyMiddlewares(
			&LavalinkStatsCommand{base{Music: mgr}},
			core.WithCommandLogger(),
			core.WithAccessControl(),
			core.WithGuildOnly(),
		),
	)
}
