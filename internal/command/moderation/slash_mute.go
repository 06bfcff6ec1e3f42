package moderation

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"superintendent/internal/core"
)

// Discord caps timeouts at 28 days.
const (
	minMuteMinutes = 1
	maxMuteMinutes = 28 * 24 * 60
)

// MuteCommand times a member out for a number of minutes.
type MuteCommand struct{}

func (c *MuteCommand) Name() string        { return "mute" }
func (c *MuteCommand) Description() string { return "Time a member out for a while" }
func (c *MuteCommand) Aliases() []string   { return []string{} }
func (c *MuteCommand) Group() string       { return "moderation" }
func (c *MuteCommand) Category() string    { return "🔨 Moderation" }
func (c *MuteCommand) RequireAdmin() bool  { return false }

func (c *MuteCommand) SlashDefinition() *discordgo.ApplicationCommand {
	minMinutes := float64(minMuteMinutes)
	return &discordgo.ApplicationCommand{
		Name:                     c.Name(),
		Description:              c.Description(),
		DefaultMemberPermissions: permissions(discordgo.PermissionModerateMembers),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "user",
				Description: "Member to mute",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "minutes",
				Description: "How long, in minutes (max 28 days)",
				Required:    true,
				MinValue:    &minMinutes,
				MaxValue:    maxMuteMinutes,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "reason",
				Description: "Why they are being muted",
			},
		},
	}
}

func (c *MuteCommand) Run(ctx interface{}) error {
	v, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}

	opts := options(v.Event)
	target := opts["user"].UserValue(v.Session)
	minutes := opts["minutes"].IntValue()
	reason := stringOption(opts, "reason", "No reason given")

	if targetsSelf(v, target.ID) {
		return core.RespondEphemeral(v.Session, v.Event, "I'd rather keep talking, thanks.")
	}

	if minutes < minMuteMinutes {
		minutes = minMuteMinutes
	}
	if minutes > maxMuteMinutes {
		minutes = maxMuteMinutes
	}

	until := time.Now().Add(time.Duration(minutes) * time.Minute)
	if err := v.Session.GuildMemberTimeout(v.Event.GuildID, target.ID, &until); err != nil {
		v.Log.Error().Err(err).Str("guild", v.Event.GuildID).Str("target", target.ID).Msg("mute failed")
		return core.RespondEphemeral(v.Session, v.Event, "Couldn't mute that member. Check my role position and permissions.")
	}

	return core.Respond(v.Session, v.Event, fmt.Sprintf(
		"🔇 Muted **%s** until <t:%d:f> (%d minutes). Reason: %s",
		target.Username, until.Unix(), minutes, reason))
}

func init() {
	core.RegisterCommand(
		core.ApplyMiddlewares(
			&MuteCommand{},
			core.WithCommandLogger(),
			core.WithGuildOnly(),
		),
	)
}
