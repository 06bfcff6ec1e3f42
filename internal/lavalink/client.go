// Package lavalink implements a client for a Lavalink v4 audio node: a
// websocket session for server-pushed events and the REST surface the bot
// drives playback through. Audio itself never touches this process; the node
// streams it straight to Discord.
package lavalink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"superintendent/pkg/retrylimit"
)

// Config describes the node to connect to. UserID is the bot's Discord user
// id and must be known before Run is called.
type Config struct {
	Host       string
	Port       int
	Password   string
	Secure     bool
	Region     string
	UserID     string
	ClientName string
}

// EventHandler receives player events pushed by the node. Calls arrive from
// the single websocket read goroutine.
type EventHandler interface {
	OnTrackStart(guildID string, track Track)
	OnTrackEnd(guildID string, track *Track, reason string)
	OnTrackException(guildID string, track *Track, exception *Exception)
	OnWebSocketClosed(guildID string, code int, reason string, byRemote bool)
}

type Client struct {
	cfg       Config
	log       zerolog.Logger
	httpc     *http.Client
	handler   EventHandler
	dialLimit *retrylimit.AdaptiveLimiter

	mu        sync.RWMutex
	sessionID string
	stats     *Stats
}

func NewClient(cfg Config, handler EventHandler, log zerolog.Logger) *Client {
	if cfg.ClientName == "" {
		cfg.ClientName = "superintendent/dev"
	}
	return &Client{
		cfg:     cfg,
		log:     log.With().Str("component", "lavalink").Logger(),
		httpc:   &http.Client{Timeout: 15 * time.Second},
		handler: handler,
		// Dial attempts per second; halves while the node keeps refusing,
		// recovers once dials succeed again.
		dialLimit: retrylimit.NewAdaptiveLimiter(2, 1, 5, 1, 0.5),
	}
}

// SessionID returns the node session id, or "" before the ready op arrived.
func (c *Client) SessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionID
}

// Ready reports whether the node session is established.
func (c *Client) Ready() bool {
	return c.SessionID() != ""
}

// LatestStats returns the most recent stats op, or nil if none arrived yet.
func (c *Client) LatestStats() *Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

func (c *Client) restBaseURL() string {
	scheme := "http"
	if c.cfg.Secure {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, c.cfg.Host, c.cfg.Port)
}

func (c *Client) wsURL() string {
	scheme := "ws"
	if c.cfg.Secure {
		scheme = "wss"
	}
	return fmt.Sprintf("%s://%s:%d/v4/websocket", scheme, c.cfg.Host, c.cfg.Port)
}

// Run maintains the websocket session until ctx is cancelled, redialing with
// backoff whenever the connection drops.
func (c *Client) Run(ctx context.Context) error {
	retryCfg := retrylimit.DefaultRetryConfig()
	retryCfg.MaxAttempts = 0 // keep dialing for the life of the process
	retryCfg.MaxDelay = 30 * time.Second

	for {
		var conn *websocket.Conn
		dial := func() error {
			var err error
			conn, err = c.dial(ctx)
			return err
		}
		if err := retrylimit.WithRetryConfig(ctx, dial, c.dialLimit, retryCfg); err != nil {
			return err
		}

		c.log.Info().Str("node", c.wsURL()).Str("region", c.cfg.Region).Msg("connected to Lavalink node")
		err := c.readLoop(ctx, conn)
		conn.Close()

		c.mu.Lock()
		c.sessionID = ""
		c.mu.Unlock()

		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn().Err(err).Msg("Lavalink connection lost, reconnecting")
	}
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	header.Set("Authorization", c.cfg.Password)
	header.Set("User-Id", c.cfg.UserID)
	header.Set("Client-Name", c.cfg.ClientName)

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, resp, err := dialer.DialContext(ctx, c.wsURL(), header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("lavalink dial: %w (HTTP %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("lavalink dial: %w", err)
	}
	return conn, nil
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) error {
	// Unblock ReadMessage on shutdown.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		c.handleMessage(raw)
	}
}

func (c *Client) handleMessage(raw []byte) {
	var msg gatewayMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.log.Warn().Err(err).Msg("undecodable node message")
		return
	}

	switch msg.Op {
	case "ready":
		c.mu.Lock()
		c.sessionID = msg.SessionID
		c.mu.Unlock()
		c.log.Info().Str("session", msg.SessionID).Bool("resumed", msg.Resumed).Msg("Lavalink session ready")

	case "stats":
		var stats Stats
		if err := json.Unmarshal(raw, &stats); err != nil {
			c.log.Warn().Err(err).Msg("undecodable stats op")
			return
		}
		c.mu.Lock()
		c.stats = &stats
		c.mu.Unlock()

	case "playerUpdate":
		// Position/ping bookkeeping the bot does not need.

	case "event":
		c.dispatchEvent(msg)

	default:
		c.log.Debug().Str("op", msg.Op).Msg("ignoring unknown node op")
	}
}

func (c *Client) dispatchEvent(msg gatewayMessage) {
	if c.handler == nil {
		return
	}
	switch msg.Type {
	case "TrackStartEvent":
		if msg.Track != nil {
			c.handler.OnTrackStart(msg.GuildID, *msg.Track)
		}
	case "TrackEndEvent":
		c.handler.OnTrackEnd(msg.GuildID, msg.Track, msg.Reason)
	case "TrackExceptionEvent":
		c.handler.OnTrackException(msg.GuildID, msg.Track, msg.Exception)
	case "TrackStuckEvent":
		c.handler.OnTrackException(msg.GuildID, msg.Track, &Exception{Message: "track stuck", Severity: "common"})
	case "WebSocketClosedEvent":
		c.handler.OnWebSocketClosed(msg.GuildID, msg.Code, msg.Reason, msg.ByRemote)
	default:
		c.log.Debug().Str("type", msg.Type).Msg("ignoring unknown node event")
	}
}

// IsNotReady reports whether err means the node session is not up yet.
func IsNotReady(err error) bool {
	return errors.Is(err, ErrNotReady)
}
