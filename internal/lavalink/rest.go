package lavalink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// ErrNotReady is returned by REST calls that need a session before the node
// sent its ready op.
var ErrNotReady = errors.New("lavalink: node session not established")

// LoadTracks resolves an identifier (URL or `ytsearch:` query) into tracks.
func (c *Client) LoadTracks(ctx context.Context, identifier string) (*LoadResult, error) {
	endpoint := fmt.Sprintf("%s/v4/loadtracks?identifier=%s", c.restBaseURL(), url.QueryEscape(identifier))
	body, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	return decodeLoadResult(body)
}

// UpdatePlayer patches the player for a guild on the current session.
func (c *Client) UpdatePlayer(ctx context.Context, guildID string, update PlayerUpdate) error {
	sessionID := c.SessionID()
	if sessionID == "" {
		return ErrNotReady
	}

	payload, err := json.Marshal(update)
	if err != nil {
		return err
	}
	endpoint := fmt.Sprintf("%s/v4/sessions/%s/players/%s?noReplace=false", c.restBaseURL(), sessionID, guildID)
	_, err = c.do(ctx, http.MethodPatch, endpoint, payload)
	return err
}

// DestroyPlayer removes the player for a guild from the current session.
func (c *Client) DestroyPlayer(ctx context.Context, guildID string) error {
	sessionID := c.SessionID()
	if sessionID == "" {
		return ErrNotReady
	}
	endpoint := fmt.Sprintf("%s/v4/sessions/%s/players/%s", c.restBaseURL(), sessionID, guildID)
	_, err := c.do(ctx, http.MethodDelete, endpoint, nil)
	return err
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", c.cfg.Password)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lavalink request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("lavalink %s %s: HTTP %d: %s", method, resp.Request.URL.Path, resp.StatusCode, truncate(body, 200))
	}
	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
