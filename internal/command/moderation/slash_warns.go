package moderation

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	embed "github.com/clinet/discordgo-embed"

	"superintendent/internal/core"
)

// WarnsCommand lists the warnings recorded for a member.
type WarnsCommand struct{}

func (c *WarnsCommand) Name() string        { return "warns" }
func (c *WarnsCommand) Description() string { return "List the warnings recorded for a member" }
func (c *WarnsCommand) Aliases() []string   { return []string{} }
func (c *WarnsCommand) Group() string       { return "moderation" }
func (c *WarnsCommand) Category() string    { return "🔨 Moderation" }
func (c *WarnsCommand) RequireAdmin() bool  { return false }

func (c *WarnsCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:                     c.Name(),
		Description:              c.Description(),
		DefaultMemberPermissions: permissions(discordgo.PermissionModerateMembers),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "user",
				Description: "Member to look up",
				Required:    true,
			},
		},
	}
}

func (c *WarnsCommand) Run(ctx interface{}) error {
	v, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}

	opts := options(v.Event)
	target := opts["user"].UserValue(v.Session)

	warns, err := v.Storage.GetWarns(v.Event.GuildID, target.ID)
	if err != nil {
		v.Log.Error().Err(err).Str("guild", v.Event.GuildID).Str("target", target.ID).Msg("failed to read warns")
		return core.RespondEphemeral(v.Session, v.Event, "Couldn't read the warning history.")
	}
	if len(warns) == 0 {
		return core.RespondEphemeral(v.Session, v.Event, fmt.Sprintf("**%s** has a clean record.", target.Username))
	}

	var b strings.Builder
	for i, w := range warns {
		fmt.Fprintf(&b, "%d. %s — by <@%s> on %s\n",
			i+1, w.Reason, w.IssuedBy, w.IssuedAt.Format("2006-01-02 15:04"))
	}

	embedMsg := embed.NewEmbed().
		SetColor(core.EmbedColor).
		SetTitle(fmt.Sprintf("⚠️ Warnings for %s (%d)", target.Username, len(warns))).
		SetDescription(b.String())

	return core.RespondEmbed(v.Session, v.Event, embedMsg.MessageEmbed)
}

func init() {
	core.RegisterCommand(
		core.ApplyMiddlewares(
			&WarnsCommand{},
			core.WithCommandLogger(),
			core.WithGuildOnly(),
		),
	)
}
