package core

import (
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"superintendent/internal/config"
	"superintendent/internal/storage"
)

// Command is the contract every bot command implements. Run receives one of
// the context structs below depending on how the command was triggered.
type Command interface {
	Name() string
	Description() string
	Aliases() []string
	Group() string
	Category() string
	RequireAdmin() bool
	Run(ctx interface{}) error
}

// SlashProvider marks commands that register a slash definition with Discord.
type SlashProvider interface {
	SlashDefinition() *discordgo.ApplicationCommand
}

// MessageHandler marks commands that react to plain messages (the mention
// responder and link rewriter).
type MessageHandler interface {
	Message(*MessageContext) error
}

// SlashInteractionContext is handed to commands triggered by a slash command.
type SlashInteractionContext struct {
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
	Storage *storage.Storage
	Config  *config.Config
	Log     zerolog.Logger
}

// MessageContext is handed to commands triggered by a regular message.
type MessageContext struct {
	Session *discordgo.Session
	Event   *discordgo.MessageCreate
	Storage *storage.Storage
	Config  *config.Config
	Log     zerolog.Logger
}
