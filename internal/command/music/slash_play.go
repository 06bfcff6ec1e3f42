package music

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"superintendent/internal/core"
	"superintendent/internal/lavalink"
	musicctl "superintendent/internal/music"
)

// PlayCommand resolves a query or URL and queues the result for playback in
// the invoker's voice channel.
type PlayCommand struct {
	base
}

func (c *PlayCommand) Name() string        { return "play" }
func (c *PlayCommand) Description() string { return "Play a track or playlist, or queue it" }

func (c *PlayCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "query",
				Description: "A URL or search terms",
				Required:    true,
			},
		},
	}
}

func (c *PlayCommand) Run(ctx interface{}) error {
	v, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}
	if !c.requireMusic(v) {
		return nil
	}

	channelID := userVoiceChannel(v.Session, v.Event.GuildID, v.Event.Member.User.ID)
	if channelID == "" {
		return core.RespondEphemeral(v.Session, v.Event, "Join a voice channel first, then ask me to play something.")
	}

	query := v.Event.ApplicationCommandData().Options[0].StringValue()

	if err := core.Defer(v.Session, v.Event); err != nil {
		return err
	}

	loadCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	result, err := c.Music.LoadTracks(loadCtx, query)
	if err != nil {
		return core.Followup(v.Session, v.Event, loadFailureMessage(err))
	}

	if err := c.Music.Connect(v.Event.GuildID, channelID); err != nil {
		v.Log.Error().Err(err).Str("guild", v.Event.GuildID).Msg("voice join failed")
		return core.Followup(v.Session, v.Event, "I couldn't join your voice channel.")
	}

	tracks := result.Tracks
	if result.LoadType != lavalink.LoadTypePlaylist {
		tracks = tracks[:1]
	}

	requester := v.Event.Member.User.ID
	if err := c.Music.Enqueue(v.Event.GuildID, tracks, requester); err != nil {
		v.Log.Error().Err(err).Str("guild", v.Event.GuildID).Msg("enqueue failed")
		return core.Followup(v.Session, v.Event, "Something went wrong while starting playback.")
	}

	if result.LoadType == lavalink.LoadTypePlaylist {
		return core.Followup(v.Session, v.Event, fmt.Sprintf(
			"Queued playlist **%s** with %d tracks for <@%s>",
			result.PlaylistName, len(tracks), requester))
	}
	t := tracks[0]
	return core.Followup(v.Session, v.Event, fmt.Sprintf(
		"Queued **%s** (`%s`) for <@%s>\n%s",
		t.Info.Title, musicctl.FormatDuration(t.Info.Length), requester, t.Info.URI))
}

func loadFailureMessage(err error) string {
	var le *musicctl.LoadError
	switch {
	case errors.Is(err, musicctl.ErrEmptyQuery):
		return "Give me something to play."
	case errors.Is(err, musicctl.ErrNoMatches):
		return "I couldn't find anything matching that."
	case errors.As(err, &le):
		return "The audio node refused that query: " + le.Message
	case strings.Contains(err.Error(), "context deadline exceeded"):
		return "The audio node took too long to answer. Try again."
	default:
		return "I couldn't load that track right now."
	}
}
