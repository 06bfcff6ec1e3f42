package lavalink

import (
	"encoding/json"
	"fmt"
)

// Track is a Lavalink-encoded track plus its decoded metadata.
type Track struct {
	Encoded string    `json:"encoded"`
	Info    TrackInfo `json:"info"`

	// Requester is filled in by the bot, not by Lavalink.
	Requester string `json:"-"`
}

type TrackInfo struct {
	Identifier string `json:"identifier"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	Length     int64  `json:"length"` // milliseconds
	IsStream   bool   `json:"isStream"`
	URI        string `json:"uri"`
	SourceName string `json:"sourceName"`
}

// Load types returned by /v4/loadtracks.
const (
	LoadTypeTrack    = "track"
	LoadTypePlaylist = "playlist"
	LoadTypeSearch   = "search"
	LoadTypeEmpty    = "empty"
	LoadTypeError    = "error"
)

// LoadResult is the decoded answer of /v4/loadtracks.
type LoadResult struct {
	LoadType     string
	Tracks       []Track
	PlaylistName string
	Exception    *Exception
}

type Exception struct {
	Message  string `json:"message"`
	Severity string `json:"severity"`
	Cause    string `json:"cause"`
}

type rawLoadResult struct {
	LoadType string          `json:"loadType"`
	Data     json.RawMessage `json:"data"`
}

type playlistData struct {
	Info struct {
		Name string `json:"name"`
	} `json:"info"`
	Tracks []Track `json:"tracks"`
}

func decodeLoadResult(raw []byte) (*LoadResult, error) {
	var r rawLoadResult
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("decode loadtracks response: %w", err)
	}

	result := &LoadResult{LoadType: r.LoadType}
	switch r.LoadType {
	case LoadTypeTrack:
		var t Track
		if err := json.Unmarshal(r.Data, &t); err != nil {
			return nil, fmt.Errorf("decode track data: %w", err)
		}
		result.Tracks = []Track{t}
	case LoadTypeSearch:
		if err := json.Unmarshal(r.Data, &result.Tracks); err != nil {
			return nil, fmt.Errorf("decode search data: %w", err)
		}
	case LoadTypePlaylist:
		var p playlistData
		if err := json.Unmarshal(r.Data, &p); err != nil {
			return nil, fmt.Errorf("decode playlist data: %w", err)
		}
		result.Tracks = p.Tracks
		result.PlaylistName = p.Info.Name
	case LoadTypeError:
		var ex Exception
		if err := json.Unmarshal(r.Data, &ex); err != nil {
			return nil, fmt.Errorf("decode load exception: %w", err)
		}
		result.Exception = &ex
	case LoadTypeEmpty:
		// nothing to decode
	default:
		return nil, fmt.Errorf("unknown loadType %q", r.LoadType)
	}
	return result, nil
}

// VoiceState carries the Discord voice credentials Lavalink needs to connect
// to a voice server on the bot's behalf.
type VoiceState struct {
	Token     string `json:"token"`
	Endpoint  string `json:"endpoint"`
	SessionID string `json:"sessionId"`
}

// PlayerUpdate is a partial update sent to a session player. Nil fields are
// left untouched by the node.
type PlayerUpdate struct {
	Track  *TrackUpdate `json:"track,omitempty"`
	Paused *bool        `json:"paused,omitempty"`
	Volume *int         `json:"volume,omitempty"`
	Voice  *VoiceState  `json:"voice,omitempty"`
}

// TrackUpdate sets the playing track. A nil Encoded stops playback.
type TrackUpdate struct {
	Encoded *string `json:"encoded"`
}

// Stats is the periodic stats op pushed over the websocket.
type Stats struct {
	Players        int   `json:"players"`
	PlayingPlayers int   `json:"playingPlayers"`
	Uptime         int64 `json:"uptime"` // milliseconds
	Memory         struct {
		Free      int64 `json:"free"`
		Used      int64 `json:"used"`
		Allocated int64 `json:"allocated"`
	} `json:"memory"`
	CPU struct {
		Cores        int     `json:"cores"`
		SystemLoad   float64 `json:"systemLoad"`
		LavalinkLoad float64 `json:"lavalinkLoad"`
	} `json:"cpu"`
	FrameStats *struct {
		Sent    int64 `json:"sent"`
		Nulled  int64 `json:"nulled"`
		Deficit int64 `json:"deficit"`
	} `json:"frameStats"`
}

// gatewayMessage is the envelope of every websocket message from the node.
type gatewayMessage struct {
	Op        string `json:"op"`
	SessionID string `json:"sessionId"` // op=ready
	Resumed   bool   `json:"resumed"`   // op=ready
	GuildID   string `json:"guildId"`   // op=playerUpdate, op=event

	// op=event
	Type      string     `json:"type"`
	Track     *Track     `json:"track"`
	Reason    string     `json:"reason"`
	Exception *Exception `json:"exception"`
	Code      int        `json:"code"`
	ByRemote  bool       `json:"byRemote"`

	// op=stats fields are decoded separately.
}

// Track end reasons the queue advance logic cares about.
const (
	TrackEndFinished   = "finished"
	TrackEndLoadFailed = "loadFailed"
	TrackEndStopped    = "stopped"
	TrackEndReplaced   = "replaced"
)
