// Package music drives playback sessions on a Lavalink node: one queue per
// guild, voice credential forwarding, and idle disconnects.
package music

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"superintendent/internal/lavalink"
)

const (
	defaultIdleTimeout = 3 * time.Minute
	restTimeout        = 10 * time.Second
)

var (
	ErrNotConfigured  = errors.New("music: lavalink is not configured")
	ErrEmptyQuery     = errors.New("music: empty query")
	ErrNoMatches      = errors.New("music: no matches found")
	ErrNothingPlaying = errors.New("music: nothing is playing")
	ErrAlreadyPaused  = errors.New("music: already paused")
	ErrNotPaused      = errors.New("music: not paused")
	ErrNoSession      = errors.New("music: no active session")
)

// LoadError carries a message from the node's load exception.
type LoadError struct {
	Message string
}

func (e *LoadError) Error() string { return "music: " + e.Message }

// session is per-guild playback state. Guarded by the manager's mutex.
type session struct {
	channelID string
	queue     []lavalink.Track
	current   *lavalink.Track
	paused    bool
	voice     lavalink.VoiceState
	idleTimer *time.Timer
}

// Manager owns every guild's playback session.
type Manager struct {
	log         zerolog.Logger
	idleTimeout time.Duration

	mu       sync.Mutex
	lava     *lavalink.Client
	dg       *discordgo.Session
	sessions map[string]*session
}

func NewManager(log zerolog.Logger) *Manager {
	return &Manager{
		log:         log.With().Str("component", "music").Logger(),
		idleTimeout: defaultIdleTimeout,
		sessions:    map[string]*session{},
	}
}

// Bind attaches the Lavalink client and Discord session once both exist
// (after the gateway ready event).
func (m *Manager) Bind(lava *lavalink.Client, dg *discordgo.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lava = lava
	m.dg = dg
}

// Ready reports whether the node session is up and commands can play music.
func (m *Manager) Ready() bool {
	m.mu.Lock()
	lava := m.lava
	m.mu.Unlock()
	return lava != nil && lava.Ready()
}

// NodeStats returns the node's latest stats op, or nil.
func (m *Manager) NodeStats() *lavalink.Stats {
	m.mu.Lock()
	lava := m.lava
	m.mu.Unlock()
	if lava == nil {
		return nil
	}
	return lava.LatestStats()
}

func (m *Manager) getOrCreate(guildID string) *session {
	s := m.sessions[guildID]
	if s == nil {
		s = &session{}
		m.sessions[guildID] = s
	}
	return s
}

// LoadTracks resolves a query into tracks. Plain text queries are turned
// into YouTube searches.
func (m *Manager) LoadTracks(ctx context.Context, query string) (*lavalink.LoadResult, error) {
	m.mu.Lock()
	lava := m.lava
	m.mu.Unlock()
	if lava == nil {
		return nil, ErrNotConfigured
	}

	normalized := strings.TrimSpace(query)
	if normalized == "" {
		return nil, ErrEmptyQuery
	}
	if !strings.HasPrefix(normalized, "http://") && !strings.HasPrefix(normalized, "https://") {
		normalized = "ytsearch:" + normalized
	}

	result, err := lava.LoadTracks(ctx, normalized)
	if err != nil {
		return nil, err
	}
	switch result.LoadType {
	case lavalink.LoadTypeError:
		msg := "track load failed"
		if result.Exception != nil {
			msg = result.Exception.Message
		}
		return nil, &LoadError{Message: msg}
	case lavalink.LoadTypeEmpty:
		return nil, ErrNoMatches
	}
	if len(result.Tracks) == 0 {
		return nil, ErrNoMatches
	}
	return result, nil
}

// Connect joins (or moves to) a voice channel. Playback starts once Discord
// delivers the voice credentials and they are forwarded to the node.
func (m *Manager) Connect(guildID, channelID string) error {
	m.mu.Lock()
	dg := m.dg
	s := m.getOrCreate(guildID)
	already := s.channelID == channelID
	s.channelID = channelID
	m.mu.Unlock()

	if dg == nil {
		return ErrNotConfigured
	}
	if already {
		return nil
	}
	// Manual join: discordgo only sends the gateway op; the voice connection
	// itself belongs to the Lavalink node.
	return dg.ChannelVoiceJoinManual(guildID, channelID, false, true)
}

// Enqueue appends tracks for the guild and starts playback when idle.
func (m *Manager) Enqueue(guildID string, tracks []lavalink.Track, requester string) error {
	m.mu.Lock()
	s := m.getOrCreate(guildID)
	for i := range tracks {
		tracks[i].Requester = requester
	}
	s.queue = append(s.queue, tracks...)
	m.cancelIdleLocked(s)
	m.mu.Unlock()

	return m.advance(guildID, true)
}

// playNext pops the queue head and tells the node to play it. With an empty
// queue it stops playback and arms the idle timer.
func (m *Manager) playNext(guildID string) error {
	return m.advance(guildID, false)
}

// advance swaps in the next track. With onlyIfIdle set it is a no-op while
// something is already playing, so concurrent enqueues into an idle guild
// start playback exactly once.
func (m *Manager) advance(guildID string, onlyIfIdle bool) error {
	m.mu.Lock()
	lava := m.lava
	s := m.getOrCreate(guildID)
	if onlyIfIdle && s.current != nil {
		m.mu.Unlock()
		return nil
	}
	var next *lavalink.Track
	if len(s.queue) > 0 {
		t := s.queue[0]
		s.queue = s.queue[1:]
		next = &t
	}
	s.current = next
	s.paused = false
	if next == nil {
		m.armIdleLocked(guildID, s)
	}
	m.mu.Unlock()

	if lava == nil {
		return ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(context.Background(), restTimeout)
	defer cancel()

	if next == nil {
		return lava.UpdatePlayer(ctx, guildID, lavalink.PlayerUpdate{
			Track: &lavalink.TrackUpdate{Encoded: nil},
		})
	}
	// Starting a track always unpauses; the node keeps its paused flag
	// across track changes otherwise.
	encoded := next.Encoded
	unpause := false
	return lava.UpdatePlayer(ctx, guildID, lavalink.PlayerUpdate{
		Track:  &lavalink.TrackUpdate{Encoded: &encoded},
		Paused: &unpause,
	})
}

// Skip advances past the current track.
func (m *Manager) Skip(guildID string) error {
	m.mu.Lock()
	playing := m.sessions[guildID] != nil && m.sessions[guildID].current != nil
	m.mu.Unlock()
	if !playing {
		return ErrNothingPlaying
	}
	return m.playNext(guildID)
}

// Pause pauses or resumes the current track.
func (m *Manager) Pause(guildID string, paused bool) error {
	m.mu.Lock()
	lava := m.lava
	s := m.sessions[guildID]
	var err error
	switch {
	case s == nil || s.current == nil:
		err = ErrNothingPlaying
	case s.paused == paused:
		if paused {
			err = ErrAlreadyPaused
		} else {
			err = ErrNotPaused
		}
	}
	if err == nil {
		s.paused = paused
	}
	m.mu.Unlock()
	if err != nil {
		return err
	}
	if lava == nil {
		return ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(context.Background(), restTimeout)
	defer cancel()
	return lava.UpdatePlayer(ctx, guildID, lavalink.PlayerUpdate{Paused: &paused})
}

// Stop clears the queue, destroys the player and leaves voice.
func (m *Manager) Stop(guildID string) error {
	m.mu.Lock()
	lava := m.lava
	dg := m.dg
	s := m.sessions[guildID]
	if s != nil {
		m.cancelIdleLocked(s)
		delete(m.sessions, guildID)
	}
	m.mu.Unlock()

	if s == nil {
		return ErrNoSession
	}

	if lava != nil {
		ctx, cancel := context.WithTimeout(context.Background(), restTimeout)
		defer cancel()
		if err := lava.DestroyPlayer(ctx, guildID); err != nil && !lavalink.IsNotReady(err) {
			m.log.Warn().Err(err).Str("guild", guildID).Msg("failed to destroy player")
		}
	}
	if dg != nil {
		if err := dg.ChannelVoiceJoinManual(guildID, "", false, true); err != nil {
			m.log.Warn().Err(err).Str("guild", guildID).Msg("failed to leave voice channel")
		}
	}
	return nil
}

// Queue returns a snapshot of the current track and upcoming queue.
func (m *Manager) Queue(guildID string) (current *lavalink.Track, upcoming []lavalink.Track) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.sessions[guildID]
	if s == nil {
		return nil, nil
	}
	if s.current != nil {
		c := *s.current
		current = &c
	}
	upcoming = make([]lavalink.Track, len(s.queue))
	copy(upcoming, s.queue)
	return current, upcoming
}

// HandleVoiceServerUpdate receives Discord's voice server credentials.
func (m *Manager) HandleVoiceServerUpdate(guildID, token, endpoint string) {
	m.mu.Lock()
	s := m.getOrCreate(guildID)
	s.voice.Token = token
	s.voice.Endpoint = endpoint
	voice := s.voice
	m.mu.Unlock()
	m.forwardVoice(guildID, voice)
}

// HandleOwnVoiceState receives the bot's own voice session id. An empty
// channel id means the bot was disconnected.
func (m *Manager) HandleOwnVoiceState(guildID, channelID, sessionID string) {
	m.mu.Lock()
	s := m.getOrCreate(guildID)
	if channelID == "" {
		s.voice = lavalink.VoiceState{}
		s.channelID = ""
		m.mu.Unlock()
		return
	}
	s.channelID = channelID
	s.voice.SessionID = sessionID
	voice := s.voice
	m.mu.Unlock()
	m.forwardVoice(guildID, voice)
}

// forwardVoice pushes complete voice credentials to the node.
func (m *Manager) forwardVoice(guildID string, voice lavalink.VoiceState) {
	if voice.Token == "" || voice.Endpoint == "" || voice.SessionID == "" {
		return
	}
	m.mu.Lock()
	lava := m.lava
	m.mu.Unlock()
	if lava == nil || !lava.Ready() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), restTimeout)
	defer cancel()
	if err := lava.UpdatePlayer(ctx, guildID, lavalink.PlayerUpdate{Voice: &voice}); err != nil {
		m.log.Error().Err(err).Str("guild", guildID).Msg("failed to forward voice state to node")
		return
	}
	m.log.Info().Str("guild", guildID).Str("endpoint", voice.Endpoint).Msg("voice credentials forwarded to node")
}

func (m *Manager) armIdleLocked(guildID string, s *session) {
	if s.idleTimer != nil {
		return
	}
	s.idleTimer = time.AfterFunc(m.idleTimeout, func() {
		m.mu.Lock()
		cur := m.sessions[guildID]
		idle := cur != nil && cur.current == nil && len(cur.queue) == 0
		if cur != nil {
			cur.idleTimer = nil
		}
		m.mu.Unlock()
		if !idle {
			return
		}
		m.log.Info().Str("guild", guildID).Msg("idle timeout, leaving voice channel")
		if err := m.Stop(guildID); err != nil {
			m.log.Warn().Err(err).Str("guild", guildID).Msg("idle disconnect failed")
		}
	})
}

func (m *Manager) cancelIdleLocked(s *session) {
	if s.idleTimer != nil {
		s.idleTimer.Stop()
		s.idleTimer = nil
	}
}

// OnTrackStart implements lavalink.EventHandler.
func (m *Manager) OnTrackStart(guildID string, track lavalink.Track) {
	m.log.Info().Str("guild", guildID).Str("title", track.Info.Title).Msg("track started")
	m.mu.Lock()
	if s := m.sessions[guildID]; s != nil {
		m.cancelIdleLocked(s)
	}
	m.mu.Unlock()
}

// OnTrackEnd implements lavalink.EventHandler. Natural ends advance the
// queue; stops and replaces are initiated by the bot and need no action.
func (m *Manager) OnTrackEnd(guildID string, track *lavalink.Track, reason string) {
	if reason != lavalink.TrackEndFinished && reason != lavalink.TrackEndLoadFailed {
		return
	}
	if err := m.playNext(guildID); err != nil && !lavalink.IsNotReady(err) {
		m.log.Warn().Err(err).Str("guild", guildID).Msg("failed to advance queue")
	}
}

// OnTrackException implements lavalink.EventHandler. Log only: the node
// follows every exception with a TrackEndEvent (reason loadFailed), and that
// end event drives queue progression.
func (m *Manager) OnTrackException(guildID string, track *lavalink.Track, exception *lavalink.Exception) {
	title := "unknown"
	if track != nil {
		title = track.Info.Title
	}
	msg := ""
	if exception != nil {
		msg = exception.Message
	}
	m.log.Warn().Str("guild", guildID).Str("title", title).Str("error", msg).Msg("track exception")
}

// OnWebSocketClosed implements lavalink.EventHandler.
func (m *Manager) OnWebSocketClosed(guildID string, code int, reason string, byRemote bool) {
	m.log.Warn().
		Str("guild", guildID).
		Int("code", code).
		Str("reason", reason).
		Bool("by_remote", byRemote).
		Msg("node voice connection closed")
}
