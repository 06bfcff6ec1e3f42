package minecraft

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	embed "github.com/clinet/discordgo-embed"

	"superintendent/internal/core"
	"superintendent/internal/mcstatus"
)

var client = mcstatus.NewClient()

type MCStatusCommand struct{}

func (c *MCStatusCommand) Name() string        { return "mcstatus" }
func (c *MCStatusCommand) Description() string { return "Check the Minecraft server status" }
func (c *MCStatusCommand) Aliases() []string   { return []string{} }
func (c *MCStatusCommand) Group() string       { return "minecraft" }
func (c *MCStatusCommand) Category() string    { return "🎮 Minecraft" }
func (c *MCStatusCommand) RequireAdmin() bool  { return false }

func (c *MCStatusCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *MCStatusCommand) Run(ctx interface{}) error {
	v, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}

	// The status API can be slow, answer within the deferred window.
	if err := core.Defer(v.Session, v.Event); err != nil {
		return err
	}

	reqCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	address := v.Config.MCServerAddress
	status, err := client.Fetch(reqCtx, address)
	if err != nil {
		v.Log.Warn().Err(err).Str("server", address).Msg("minecraft status check failed")
		return core.Followup(v.Session, v.Event, mcstatus.FormatError(err))
	}

	embedMsg := embed.NewEmbed().
		SetColor(core.EmbedColor).
		SetDescription(mcstatus.FormatReply(address, status))
	return core.FollowupEmbed(v.Session, v.Event, embedMsg.MessageEmbed)
}

func init() {
	core.RegisterCommand(
		core.ApplyMiddlewares(
			&MCStatusCommand{},
			core.WithCommandLogger(),
		),
	)
}
