package music

import (
	"errors"

	"github.com/bwmarrin/discordgo"

	"superintendent/internal/core"
	musicctl "superintendent/internal/music"
)

// StopCommand clears the queue and leaves the voice channel.
type StopCommand struct {
	base
}

func (c *StopCommand) Name() string        { return "stop" }
func (c *StopCommand) Description() string { return "Stop playback, clear the queue and leave voice" }

func (c *StopCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *StopCommand) Run(ctx interface{}) error {
	v, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}
	if !c.requireMusic(v) {
		return nil
	}

	if err := c.Music.Stop(v.Event.GuildID); err != nil {
		if errors.Is(err, musicctl.ErrNoSession) {
			return core.RespondEphemeral(v.Session, v.Event, "I'm not playing anything here.")
		}
		return core.RespondEphemeral(v.Session, v.Event, "Couldn't stop cleanly, but the queue is gone.")
	}
	return core.Respond(v.Session, v.Event, "⏹️ Stopped and left the voice channel.")
}
