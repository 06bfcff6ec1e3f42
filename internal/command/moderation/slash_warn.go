package moderation

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"superintendent/internal/core"
	"superintendent/internal/storage"
)

// WarnCommand records a warning against a member.
type WarnCommand struct{}

func (c *WarnCommand) Name() string        { return "warn" }
func (c *WarnCommand) Description() string { return "Record a warning for a member" }
func (c *WarnCommand) Aliases() []string   { return []string{} }
func (c *WarnCommand) Group() string       { return "moderation" }
func (c *WarnCommand) Category() string    { return "🔨 Moderation" }
func (c *WarnCommand) RequireAdmin() bool  { return false }

func (c *WarnCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:                     c.Name(),
		Description:              c.Description(),
		DefaultMemberPermissions: permissions(discordgo.PermissionModerateMembers),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "user",
				Description: "Member to warn",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "reason",
				Description: "What they did",
				Required:    true,
			},
		},
	}
}

func (c *WarnCommand) Run(ctx interface{}) error {
	v, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}

	opts := options(v.Event)
	target := opts["user"].UserValue(v.Session)
	reason := stringOption(opts, "reason", "")

	if targetsSelf(v, target.ID) {
		return core.RespondEphemeral(v.Session, v.Event, "Warning me won't change anything.")
	}

	warns, err := v.Storage.AddWarn(v.Event.GuildID, target.ID, storage.Warn{
		Reason:   reason,
		IssuedBy: v.Event.Member.User.ID,
		IssuedAt: time.Now(),
	})
	if err != nil {
		v.Log.Error().Err(err).Str("guild", v.Event.GuildID).Str("target", target.ID).Msg("failed to store warn")
		return core.RespondEphemeral(v.Session, v.Event, "Couldn't save that warning.")
	}

	return core.Respond(v.Session, v.Event, fmt.Sprintf(
		"⚠️ Warned **%s** (warning #%d). Reason: %s", target.Username, len(warns), reason))
}

func init() {
	core.RegisterCommand(
		core.ApplyMiddlewares(
			&WarnCommand{},
			core.WithCommandLogger(),
			core.WithGuildOnly(),
		),
	)
}
