package moderation

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"superintendent/internal/core"
)

// BanCommand bans a member from the guild.
type BanCommand struct{}

func (c *BanCommand) Name() string        { return "ban" }
func (c *BanCommand) Description() string { return "Ban a member from this server" }
func (c *BanCommand) Aliases() []string   { return []string{} }
func (c *BanCommand) Group() string       { return "moderation" }
func (c *BanCommand) Category() string    { return "🔨 Moderation" }
func (c *BanCommand) RequireAdmin() bool  { return false }

func (c *BanCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:                     c.Name(),
		Description:              c.Description(),
		DefaultMemberPermissions: permissions(discordgo.PermissionBanMembers),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "user",
				Description: "Member to ban",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "reason",
				Description: "Why they are being banned",
			},
		},
	}
}

func (c *BanCommand) Run(ctx interface{}) error {
	v, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}

	opts := options(v.Event)
	target := opts["user"].UserValue(v.Session)
	reason := stringOption(opts, "reason", "No reason given")

	if targetsSelf(v, target.ID) {
		return core.RespondEphemeral(v.Session, v.Event, "I'm not banning myself.")
	}

	if err := v.Session.GuildBanCreateWithReason(v.Event.GuildID, target.ID, reason, 0); err != nil {
		v.Log.Error().Err(err).Str("guild", v.Event.GuildID).Str("target", target.ID).Msg("ban failed")
		return core.RespondEphemeral(v.Session, v.Event, "Couldn't ban that member. Check my role position and permissions.")
	}

	return core.Respond(v.Session, v.Event, fmt.Sprintf("🔨 Banned **%s**. Reason: %s", target.Username, reason))
}

func init() {
	core.RegisterCommand(
		core.ApplyMiddlewares(
			&BanCommand{},
			core.WithCommandLogger(),
			core.WithGuildOnly(),
		),
	)
}
