package music

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	embed "github.com/clinet/discordgo-embed"

	"superintendent/internal/core"
	musicctl "superintendent/internal/music"
)

const queuePreviewSize = 10

// QueueCommand shows the current track and the upcoming queue.
type QueueCommand struct {
	base
}

func (c *QueueCommand) Name() string        { return "queue" }
func (c *QueueCommand) Description() string { return "Show the playback queue" }

func (c *QueueCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *QueueCommand) Run(ctx interface{}) error {
	v, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}
	if !c.requireMusic(v) {
		return nil
	}

	current, upcoming := c.Music.Queue(v.Event.GuildID)
	if current == nil && len(upcoming) == 0 {
		return core.RespondEphemeral(v.Session, v.Event, "The queue is empty. Use `/play` to add something.")
	}

	embedMsg := embed.NewEmbed().
		SetColor(core.EmbedColor).
		SetTitle("🎵 Queue")

	if current != nil {
		embedMsg = embedMsg.AddField("Now playing", fmt.Sprintf(
			"**%s** (`%s`) requested by <@%s>",
			current.Info.Title, musicctl.FormatDuration(current.Info.Length), current.Requester))
	}

	if len(upcoming) > 0 {
		var b strings.Builder
		for i, t := range upcoming {
			if i == queuePreviewSize {
				fmt.Fprintf(&b, "...and %d more.", len(upcoming)-queuePreviewSize)
				break
			}
			fmt.Fprintf(&b, "%d. **%s** (`%s`) <@%s>\n",
				i+1, t.Info.Title, musicctl.FormatDuration(t.Info.Length), t.Requester)
		}
		embedMsg = embedMsg.AddField(fmt.Sprintf("Up next (%d)", len(upcoming)), b.String())
	}

	return core.RespondEmbed(v.Session, v.Event, embedMsg.MessageEmbed)
}
