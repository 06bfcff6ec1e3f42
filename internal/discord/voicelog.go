package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// VoiceEventKind is the direction of a voice channel transition.
type VoiceEventKind int

const (
	VoiceJoin VoiceEventKind = iota
	VoiceLeave
)

// VoiceEvent is one logged voice transition. A move between channels yields
// two events, a leave from the old channel and a join to the new one.
type VoiceEvent struct {
	Kind      VoiceEventKind
	ChannelID string
}

// ClassifyVoiceTransition turns an old/new channel pair into log events.
func ClassifyVoiceTransition(oldChannelID, newChannelID string) []VoiceEvent {
	switch {
	case oldChannelID == newChannelID:
		return nil
	case oldChannelID == "":
		return []VoiceEvent{{Kind: VoiceJoin, ChannelID: newChannelID}}
	case newChannelID == "":
		return []VoiceEvent{{Kind: VoiceLeave, ChannelID: oldChannelID}}
	default:
		return []VoiceEvent{
			{Kind: VoiceLeave, ChannelID: oldChannelID},
			{Kind: VoiceJoin, ChannelID: newChannelID},
		}
	}
}

// Message renders the event for the log channel.
func (e VoiceEvent) Message(s *discordgo.Session, username string) string {
	channel := e.ChannelID
	if s != nil {
		if ch, err := s.State.Channel(e.ChannelID); err == nil && ch.Name != "" {
			channel = ch.Name
		}
	}
	if e.Kind == VoiceJoin {
		return fmt.Sprintf("🎙️ **%s** joined **%s**", username, channel)
	}
	return fmt.Sprintf("❌ **%s** left **%s**", username, channel)
}
