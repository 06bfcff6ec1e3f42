package music

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	embed "github.com/clinet/discordgo-embed"

	"superintendent/internal/core"
	musicctl "superintendent/internal/music"
)

// LavalinkStatsCommand reports the audio node's health. Ephemeral and
// admin-only, since it exposes host internals.
type LavalinkStatsCommand struct {
	base
}

func (c *LavalinkStatsCommand) Name() string        { return "lavalinkstats" }
func (c *LavalinkStatsCommand) Description() string { return "Show audio node statistics" }
func (c *LavalinkStatsCommand) RequireAdmin() bool  { return true }

func (c *LavalinkStatsCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *LavalinkStatsCommand) Run(ctx interface{}) error {
	v, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}
	if !v.Config.MusicEnabled() {
		return core.RespondEphemeral(v.Session, v.Event,
			"Music playback isn't configured. Set the Lavalink environment variables and restart the bot.")
	}

	stats := c.Music.NodeStats()
	if stats == nil {
		return core.RespondEphemeral(v.Session, v.Event, "No statistics yet. The node reports them about once a minute.")
	}

	embedMsg := embed.NewEmbed().
		SetColor(core.EmbedColor).
		SetTitle("📊 Audio node").
		AddField("Players", fmt.Sprintf("%d (%d playing)", stats.Players, stats.PlayingPlayers)).
		AddField("Uptime", musicctl.FormatUptime(stats.Uptime)).
		AddField("Memory", fmt.Sprintf("%s used of %s",
			musicctl.FormatBytes(stats.Memory.Used), musicctl.FormatBytes(stats.Memory.Allocated))).
		AddField("CPU", fmt.Sprintf("%.1f%% system, %.1f%% lavalink (%d cores)",
			stats.CPU.SystemLoad*100, stats.CPU.LavalinkLoad*100, stats.CPU.Cores))

	return v.Session.InteractionRespond(v.Event.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embedMsg.MessageEmbed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}
