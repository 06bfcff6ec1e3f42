// Package openrouter talks to the OpenRouter chat-completion API. OpenRouter
// speaks the OpenAI wire format, so the client is a thin wrapper over
// go-openai with a custom base URL and the attribution headers OpenRouter
// asks integrators to send.
package openrouter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const defaultBaseURL = "https://openrouter.ai/api/v1"

// Message is one chat turn sent to the model.
type Message struct {
	Role    string
	Content string
}

type Client struct {
	client *openai.Client
	model  string
}

// attributionTransport adds the optional HTTP-Referer / X-Title headers that
// OpenRouter uses to credit traffic to an app.
type attributionTransport struct {
	base    http.RoundTripper
	siteURL string
	appName string
}

func (t *attributionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.siteURL != "" {
		req.Header.Set("HTTP-Referer", t.siteURL)
	}
	if t.appName != "" {
		req.Header.Set("X-Title", t.appName)
	}
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}

// New builds a client for the given model. siteURL and appName may be empty.
func New(apiKey, model, siteURL, appName string) (*Client, error) {
	return NewWithBaseURL(apiKey, defaultBaseURL, model, siteURL, appName)
}

// NewWithBaseURL builds a client against a custom endpoint. Used by tests.
func NewWithBaseURL(apiKey, baseURL, model, siteURL, appName string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("openrouter: API key is required")
	}
	if model == "" {
		return nil, errors.New("openrouter: model is required")
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	cfg.HTTPClient = &http.Client{
		Timeout: 60 * time.Second,
		Transport: &attributionTransport{
			siteURL: siteURL,
			appName: appName,
		},
	}

	return &Client{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}, nil
}

// Generate sends the conversation and returns the model's reply text.
func (c *Client) Generate(ctx context.Context, messages []Message) (string, error) {
	reqMsgs := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		reqMsgs[i] = openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    reqMsgs,
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("openrouter request: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("openrouter: no choices returned")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("openrouter: empty completion")
	}
	return content, nil
}
