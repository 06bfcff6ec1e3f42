// Package info holds the informational commands.
package info

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	embed "github.com/clinet/discordgo-embed"

	"superintendent/internal/core"
	"superintendent/internal/version"
)

// VersionCommand reports the running build.
type VersionCommand struct{}

func (c *VersionCommand) Name() string        { return "version" }
func (c *VersionCommand) Description() string { return "Show which build of the bot is running" }
func (c *VersionCommand) Aliases() []string   { return []string{} }
func (c *VersionCommand) Group() string       { return "info" }
func (c *VersionCommand) Category() string    { return "🕯️ Information" }
func (c *VersionCommand) RequireAdmin() bool  { return false }

func (c *VersionCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *VersionCommand) Run(ctx interface{}) error {
	v, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}

	embedMsg := embed.NewEmbed().
		SetColor(core.EmbedColor).
		SetTitle(fmt.Sprintf("ℹ️ %s", version.AppName)).
		AddField("Version", version.Version).
		AddField("Built", version.BuildDate).
		AddField("Environment", v.Config.Environment)

	return core.RespondEmbed(v.Session, v.Event, embedMsg.MessageEmbed)
}

func init() {
	core.RegisterCommand(
		core.ApplyMiddlewares(
			&VersionCommand{},
			core.WithCommandLogger(),
		),
	)
}
