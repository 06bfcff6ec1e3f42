package music

import (
	"errors"

	"github.com/bwmarrin/discordgo"

	"superintendent/internal/core"
	musicctl "superintendent/internal/music"
)

// ResumeCommand resumes a paused track.
type ResumeCommand struct {
	base
}

func (c *ResumeCommand) Name() string        { return "resume" }
func (c *ResumeCommand) Description() string { return "Resume paused playback" }

func (c *ResumeCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *ResumeCommand) Run(ctx interface{}) error {
	v, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}
	if !c.requireMusic(v) {
		return nil
	}

	switch err := c.Music.Pause(v.Event.GuildID, false); {
	case err == nil:
		return core.Respond(v.Session, v.Event, "▶️ Resumed.")
	case errors.Is(err, musicctl.ErrNotPaused):
		return core.RespondEphemeral(v.Session, v.Event, "Playback isn't paused.")
	case errors.Is(err, musicctl.ErrNothingPlaying):
		return core.RespondEphemeral(v.Session, v.Event, "There's nothing to resume.")
	default:
		return core.RespondEphemeral(v.Session, v.Event, "The audio node didn't take the resume. Try again.")
	}
}
