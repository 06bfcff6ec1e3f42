package music

import (
	"errors"

	"github.com/bwmarrin/discordgo"

	"superintendent/internal/core"
	musicctl "superintendent/internal/music"
)

// PauseCommand pauses the current track without dropping the queue.
type PauseCommand struct {
	base
}

func (c *PauseCommand) Name() string        { return "pause" }
func (c *PauseCommand) Description() string { return "Pause playback" }

func (c *PauseCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *PauseCommand) Run(ctx interface{}) error {
	v, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}
	if !c.requireMusic(v) {
		return nil
	}

	switch err := c.Music.Pause(v.Event.GuildID, true); {
	case err == nil:
		return core.Respond(v.Session, v.Event, "⏸️ Paused.")
	case errors.Is(err, musicctl.ErrAlreadyPaused):
		return core.RespondEphemeral(v.Session, v.Event, "Playback is already paused.")
	case errors.Is(err, musicctl.ErrNothingPlaying):
		return core.RespondEphemeral(v.Session, v.Event, "There's nothing playing to pause.")
	default:
		return core.RespondEphemeral(v.Session, v.Event, "The audio node didn't take the pause. Try again.")
	}
}
