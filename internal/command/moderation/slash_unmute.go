package moderation

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"superintendent/internal/core"
)

// UnmuteCommand clears an active timeout.
type UnmuteCommand struct{}

func (c *UnmuteCommand) Name() string        { return "unmute" }
func (c *UnmuteCommand) Description() string { return "Remove a member's timeout" }
func (c *UnmuteCommand) Aliases() []string   { return []string{} }
func (c *UnmuteCommand) Group() string       { return "moderation" }
func (c *UnmuteCommand) Category() string    { return "🔨 Moderation" }
func (c *UnmuteCommand) RequireAdmin() bool  { return false }

func (c *UnmuteCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:                     c.Name(),
		Description:              c.Description(),
		DefaultMemberPermissions: permissions(discordgo.PermissionModerateMembers),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "user",
				Description: "Member to unmute",
				Required:    true,
			},
		},
	}
}

func (c *UnmuteCommand) Run(ctx interface{}) error {
	v, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}

	opts := options(v.Event)
	target := opts["user"].UserValue(v.Session)

	if err := v.Session.GuildMemberTimeout(v.Event.GuildID, target.ID, nil); err != nil {
		v.Log.Error().Err(err).Str("guild", v.Event.GuildID).Str("target", target.ID).Msg("unmute failed")
		return core.RespondEphemeral(v.Session, v.Event, "Couldn't remove the timeout. Check my role position and permissions.")
	}

	return core.Respond(v.Session, v.Event, fmt.Sprintf("🔊 Unmuted **%s**.", target.Username))
}

func init() {
	core.RegisterCommand(
		core.ApplyMiddlewares(
			&UnmuteCommand{},
			core.WithCommandLogger(),
			core.WithGuildOnly(),
		),
	)
}
