// Package chat reacts to plain messages: the mention responder backed by an
// LLM, and the x.com link rewriter.
package chat

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"

	"superintendent/internal/core"
	"superintendent/internal/memory"
	"superintendent/internal/openrouter"
)

const (
	generateTimeout = 60 * time.Second

	chatFailureReply = "I couldn't reach my AI brain right now. Please try again later."
	emptyPromptReply = "Hello!"
)

// ChatCommand answers messages that mention the bot, keeping a short
// per-user conversation history. Registered from main, because it needs the
// model client and the memory store.
type ChatCommand struct {
	AI     *openrouter.Client
	Memory *memory.Store

	gate *llmGate
}

func (c *ChatCommand) Name() string        { return "chat" }
func (c *ChatCommand) Description() string { return "Talk to the bot by mentioning it" }
func (c *ChatCommand) Aliases() []string   { return []string{} }
func (c *ChatCommand) Group() string       { return "chat" }
func (c *ChatCommand) Category() string    { return "💬 Chat" }
func (c *ChatCommand) RequireAdmin() bool  { return false }

// Run is a no-op: the command only reacts to messages.
func (c *ChatCommand) Run(ctx interface{}) error { return nil }

func (c *ChatCommand) Message(v *core.MessageContext) error {
	m := v.Event
	if m.Author == nil || m.Author.Bot {
		return nil
	}
	if !v.Config.ChatEnabled() || c.AI == nil {
		return nil
	}

	botID := ""
	if v.Session.State.User != nil {
		botID = v.Session.State.User.ID
	}
	if botID == "" || !mentionsUser(m, botID) {
		return nil
	}

	prompt := stripMention(m.Content, botID)
	if prompt == "" {
		_, err := v.Session.ChannelMessageSendReply(m.ChannelID, emptyPromptReply, m.Reference())
		return err
	}

	if !c.gate.Allow(m.Author.ID) {
		v.Log.Debug().Str("user", m.Author.ID).Msg("chat rate limited")
		return nil
	}

	v.Session.ChannelTyping(m.ChannelID)

	messages := []openrouter.Message{{Role: "system", Content: v.Config.AISystemPrompt}}
	for _, h := range c.Memory.History(m.Author.ID) {
		messages = append(messages, openrouter.Message{Role: h.Role, Content: h.Content})
	}
	messages = append(messages, openrouter.Message{Role: "user", Content: prompt})

	ctx, cancel := context.WithTimeout(context.Background(), generateTimeout)
	defer cancel()

	reply, err := c.AI.Generate(ctx, messages)
	if err != nil {
		v.Log.Error().Err(err).Str("user", m.Author.ID).Msg("chat completion failed")
		_, sendErr := v.Session.ChannelMessageSendReply(m.ChannelID, chatFailureReply, m.Reference())
		return sendErr
	}

	c.Memory.AppendExchange(m.Author.ID, prompt, reply)

	for i, chunk := range splitMessage(reply, discordMessageLimit) {
		var sendErr error
		if i == 0 {
			_, sendErr = v.Session.ChannelMessageSendReply(m.ChannelID, chunk, m.Reference())
		} else {
			_, sendErr = v.Session.ChannelMessageSend(m.ChannelID, chunk)
		}
		if sendErr != nil {
			return sendErr
		}
	}
	return nil
}

// mentionsUser reports whether the message mentions the given user directly.
// Role and @everyone pings don't count.
func mentionsUser(m *discordgo.MessageCreate, userID string) bool {
	for _, u := range m.Mentions {
		if u != nil && u.ID == userID {
			return true
		}
	}
	return false
}

// stripMention removes every direct mention of the bot from the message text.
func stripMention(content, userID string) string {
	content = strings.ReplaceAll(content, "<@"+userID+">", "")
	content = strings.ReplaceAll(content, "<@!"+userID+">", "")
	return strings.TrimSpace(content)
}

// Register wires the mention responder with its model client and memory.
func Register(ai *openrouter.Client, mem *memory.Store) {
	core.RegisterCommand(&ChatCommand{
		AI:     ai,
		Memory: mem,
		gate:   newLLMGate(rate.Every(2*time.Second), 5, rate.Every(10*time.Second), 2),
	})
}
