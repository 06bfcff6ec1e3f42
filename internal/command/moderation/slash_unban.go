package moderation

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"superintendent/internal/core"
)

// UnbanCommand lifts a ban by user ID.
type UnbanCommand struct{}

func (c *UnbanCommand) Name() string        { return "unban" }
func (c *UnbanCommand) Description() string { return "Lift a ban by user ID" }
func (c *UnbanCommand) Aliases() []string   { return []string{} }
func (c *UnbanCommand) Group() string       { return "moderation" }
func (c *UnbanCommand) Category() string    { return "🔨 Moderation" }
func (c *UnbanCommand) RequireAdmin() bool  { return false }

func (c *UnbanCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:                     c.Name(),
		Description:              c.Description(),
		DefaultMemberPermissions: permissions(discordgo.PermissionBanMembers),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "user_id",
				Description: "ID of the banned user",
				Required:    true,
			},
		},
	}
}

func (c *UnbanCommand) Run(ctx interface{}) error {
	v, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}

	opts := options(v.Event)
	userID := stringOption(opts, "user_id", "")

	if err := v.Session.GuildBanDelete(v.Event.GuildID, userID); err != nil {
		v.Log.Error().Err(err).Str("guild", v.Event.GuildID).Str("target", userID).Msg("unban failed")
		return core.RespondEphemeral(v.Session, v.Event, "Couldn't lift that ban. Is the ID right, and is the user actually banned?")
	}

	return core.Respond(v.Session, v.Event, fmt.Sprintf("🕊️ Unbanned <@%s>.", userID))
}

func init() {
	core.RegisterCommand(
		core.ApplyMiddlewares(
			&UnbanCommand{},
			core.WithCommandLogger(),
			core.WithGuildOnly(),
		),
	)
}
