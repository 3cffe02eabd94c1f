// Package ai turns a short server description into a validated blueprint
// using an OpenAI-compatible chat completion endpoint.
package ai

import (
	"context"
	"fmt"

	"go-guildbuilder/internal/dispatcher"
	"go-guildbuilder/internal/logging"
)

const (
	DefaultModel     = "gpt-4o-mini"
	DefaultMaxTokens = 2048
	temperature      = 0.7
	gatewayAttempts  = 2
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Options struct {
	Model     string
	MaxTokens int
}

// Generator returns the raw completion text for a conversation. An empty
// string with a nil error means the generator is not configured.
type Generator interface {
	Generate(ctx context.Context, messages []Message, opts Options) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, messages []Message, opts Options) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, messages []Message, opts Options) (string, error) {
	return f(ctx, messages, opts)
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// Gateway posts chat completions through the shared HTTP client.
type Gateway struct {
	client *dispatcher.Client
	url    string
	key    string
	model  string
}

func NewGateway(client *dispatcher.Client, url, key, model string) *Gateway {
	if model == "" {
		model = DefaultModel
	}
	return &Gateway{client: client, url: url, key: key, model: model}
}

// Generate sends the conversation, trying twice before giving up. A missing
// key is not an error: it returns "" so callers fall into their retry path.
func (g *Gateway) Generate(ctx context.Context, messages []Message, opts Options) (string, error) {
	if g.key == "" || g.url == "" {
		logging.Warn("[AI] gateway url or key missing; set AI_GATEWAY_URL and AI_GATEWAY_KEY")
		return "", nil
	}

	req := chatRequest{
		Model:       opts.Model,
		Messages:    messages,
		MaxTokens:   opts.MaxTokens,
		Temperature: temperature,
	}
	if req.Model == "" {
		req.Model = g.model
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = DefaultMaxTokens
	}
	headers := map[string]string{"Authorization": "Bearer " + g.key}

	var lastErr error
	for attempt := 1; attempt <= gatewayAttempts; attempt++ {
		var resp chatResponse
		err := g.client.PostJSON(ctx, "ai", g.url, headers, req, &resp)
		if err == nil {
			if len(resp.Choices) == 0 {
				return "", nil
			}
			return resp.Choices[0].Message.Content, nil
		}
		lastErr = err
		logging.Warn("[AI] request failed (attempt %d): %v", attempt, err)
		if ctx.Err() != nil {
			break
		}
	}
	return "", fmt.Errorf("ai gateway: %w", lastErr)
}
