package music

import (
	"github.com/bwmarrin/discordgo"

	"superintendent/internal/core"
)

// SkipCommand jumps to the next queued track.
type SkipCommand struct {
	base
}

func (c *SkipCommand) Name() string        { return "skip" }
func (c *SkipCommand) Description() string { return "Skip the current track" }

func (c *SkipCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *SkipCommand) Run(ctx interface{}) error {
	v, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}
	if !c.requireMusic(v) {
		return nil
	}

	if err := c.Music.Skip(v.Event.GuildID); err != nil {
		return core.RespondEphemeral(v.Session, v.Event, "There's nothing playing to skip.")
	}
	return core.Respond(v.Session, v.Event, "⏭️ Skipped.")
}
