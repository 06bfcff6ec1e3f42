package core

import (
	"slices"
	"time"

	"github.com/bwmarrin/discordgo"

	"superintendent/internal/storage"
)

// Middleware decorates a Command. Middlewares are applied innermost-first by
// ApplyMiddlewares, so the last one listed runs first.
type Middleware func(Command) Command

type wrappedCommand struct {
	Command
	wrap func(ctx interface{}) error
}

func (w *wrappedCommand) Run(ctx interface{}) error {
	if w.wrap != nil {
		return w.wrap(ctx)
	}
	return w.Command.Run(ctx)
}

func (w *wrappedCommand) Message(ctx *MessageContext) error {
	if w.wrap != nil {
		return w.wrap(ctx)
	}
	if mh, ok := w.Command.(MessageHandler); ok {
		return mh.Message(ctx)
	}
	return nil
}

func (w *wrappedCommand) SlashDefinition() *discordgo.ApplicationCommand {
	if sp, ok := w.Command.(SlashProvider); ok {
		return sp.SlashDefinition()
	}
	return nil
}

// ApplyMiddlewares wraps cmd in the given middlewares.
func ApplyMiddlewares(cmd Command, mws ...Middleware) Command {
	for _, mw := range mws {
		cmd = mw(cmd)
	}
	return cmd
}

// WithGuildOnly drops invocations that arrive outside a guild.
func WithGuildOnly() Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) error {
				if v, ok := ctx.(*SlashInteractionContext); ok && v.Event.GuildID == "" {
					return RespondEphemeral(v.Session, v.Event, "This command only works inside a server.")
				}
				if v, ok := ctx.(*MessageContext); ok && v.Event.GuildID == "" {
					return nil
				}
				return cmd.Run(ctx)
			},
		}
	}
}

// WithAccessControl enforces admin-only access for commands that require it.
func WithAccessControl() Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) error {
				if !cmd.RequireAdmin() {
					return cmd.Run(ctx)
				}

				v, ok := ctx.(*SlashInteractionContext)
				if !ok {
					return cmd.Run(ctx)
				}
				if v.Event.GuildID == "" || v.Event.Member == nil {
					return RespondEphemeral(v.Session, v.Event, "Cannot determine your admin status here.")
				}
				if !IsAdministrator(v.Session, v.Event.GuildID, v.Event.Member) {
					return RespondEphemeral(v.Session, v.Event, "You must be an admin to use this command.")
				}
				return cmd.Run(ctx)
			},
		}
	}
}

// WithDJRoleCheck rejects music commands for members holding the restricted
// DJ role. With no role configured everyone is allowed.
func WithDJRoleCheck() Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) error {
				v, ok := ctx.(*SlashInteractionContext)
				if !ok {
					return cmd.Run(ctx)
				}
				if !HasMusicControl(v.Event.Member, v.Config.MusicDJRoleID) {
					return RespondEphemeral(v.Session, v.Event,
						"You can't use music commands while holding the blocked DJ role.")
				}
				return cmd.Run(ctx)
			},
		}
	}
}

// HasMusicControl reports whether a member may use music commands. The
// configured role is a blocklist: holders are denied, everyone else allowed.
func HasMusicControl(member *discordgo.Member, djRoleID string) bool {
	if djRoleID == "" {
		return true
	}
	if member == nil {
		return true
	}
	return !slices.Contains(member.Roles, djRoleID)
}

// WithCommandLogger records command executions to the log and the per-guild
// command history.
func WithCommandLogger() Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) error {
				err := cmd.Run(ctx)

				if v, ok := ctx.(*SlashInteractionContext); ok && v.Event.Member != nil {
					user := v.Event.Member.User
					v.Log.Info().
						Str("command", cmd.Name()).
						Str("guild", v.Event.GuildID).
						Str("user", user.Username).
						Msg("command executed")
					if v.Storage != nil {
						if e := v.Storage.AppendCommandToHistory(v.Event.GuildID, storage.CommandHistoryRecord{
							ChannelID: v.Event.ChannelID,
							UserID:    user.ID,
							Username:  user.Username,
							Command:   cmd.Name(),
							Datetime:  time.Now(),
						}); e != nil {
							v.Log.Warn().Err(e).Str("command", cmd.Name()).Msg("failed to store command history")
						}
					}
				}

				return err
			},
		}
	}
}
