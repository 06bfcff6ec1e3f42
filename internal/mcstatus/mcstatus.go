// Package mcstatus queries the api.mcsrvstat.us v3 API for a Minecraft
// server's public status.
package mcstatus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.mcsrvstat.us/3"
	userAgent      = "DiscordBot/1.0 (contact:admin@superintendent.me .superintendent discord)"
)

// Status is the subset of the v3 response the bot reports.
type Status struct {
	Online  bool `json:"online"`
	Players struct {
		Online int `json:"online"`
		Max    int `json:"max"`
		List   []struct {
			Name string `json:"name"`
		} `json:"list"`
	} `json:"players"`
	MOTD struct {
		Clean []string `json:"clean"`
	} `json:"motd"`
	Version string `json:"version"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient() *Client {
	return &Client{
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// NewClientWithBaseURL points the client at a custom API endpoint. Used by tests.
func NewClientWithBaseURL(baseURL string) *Client {
	c := NewClient()
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// Fetch queries the status API for the given server address.
func (c *Client) Fetch(ctx context.Context, address string) (*Status, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, address)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &HTTPStatusError{Code: resp.StatusCode}
	}

	var status Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("decode status response: %w", err)
	}
	return &status, nil
}

// HTTPStatusError reports a non-200 answer from the status API.
type HTTPStatusError struct {
	Code int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("status API returned HTTP %d", e.Code)
}

// FormatReply renders the user-visible message for a fetched status.
func FormatReply(address string, status *Status) string {
	if !status.Online {
		return fmt.Sprintf("❌ **%s is OFFLINE**", address)
	}

	motd := "No MOTD available"
	if len(status.MOTD.Clean) > 0 {
		motd = strings.Join(status.MOTD.Clean, "\n")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✅ **%s is ONLINE**\n", address)
	fmt.Fprintf(&b, "**MOTD:** %s\n", motd)
	fmt.Fprintf(&b, "**Players:** %d/%d", status.Players.Online, status.Players.Max)

	if len(status.Players.List) > 0 {
		b.WriteString("\n**Players online:**")
		for _, p := range status.Players.List {
			fmt.Fprintf(&b, "\n- %s", p.Name)
		}
	}

	return b.String()
}

// FormatError renders the user-visible message for a failed status check,
// distinguishing an API error code from an unreachable API.
func FormatError(err error) string {
	var httpErr *HTTPStatusError
	if errors.As(err, &httpErr) {
		return fmt.Sprintf("⚠️ Failed to check server status (HTTP %d)", httpErr.Code)
	}
	return fmt.Sprintf("⚠️ Error checking server status: %v", err)
}
