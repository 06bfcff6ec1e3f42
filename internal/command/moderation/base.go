// Package moderation implements guild moderation commands. All of them are
// guild-only and gated by Discord's own member permissions.
package moderation

import (
	"github.com/bwmarrin/discordgo"

	"superintendent/internal/core"
)

// options indexes interaction options by name.
func options(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	out := map[string]*discordgo.ApplicationCommandInteractionDataOption{}
	for _, opt := range i.ApplicationCommandData().Options {
		out[opt.Name] = opt
	}
	return out
}

func stringOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name, fallback string) string {
	if opt, ok := opts[name]; ok {
		return opt.StringValue()
	}
	return fallback
}

// targetsSelf reports whether the command is aimed at the bot itself.
func targetsSelf(v *core.SlashInteractionContext, userID string) bool {
	return v.Session.State.User != nil && v.Session.State.User.ID == userID
}

func permissions(p int64) *int64 {
	return &p
}
