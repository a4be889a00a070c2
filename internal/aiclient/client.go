// Package aiclient holds the HTTP clients for the upstream AI providers
// and the gateway that routes requests between them.
package aiclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/overmind-app/overmind/internal/apperr"
	"github.com/overmind-app/overmind/internal/config"
	"github.com/overmind-app/overmind/internal/models"
)

// Request is a single-prompt completion request to one provider.
type Request struct {
	Model       string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Response is the completed text with the provider and model that produced it.
type Response struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Text     string `json:"response"`
}

// Client is one upstream AI provider. Stream calls emit once per text
// chunk; returning an error from emit aborts the stream.
type Client interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	Stream(ctx context.Context, req Request, emit func(chunk string) error) error
}

// DefaultMaxTokens applies when a request does not set a token budget.
const DefaultMaxTokens = 1024

// Gateway routes requests to registered provider clients.
type Gateway struct {
	clients map[string]Client
	timeout time.Duration
}

// New builds a gateway with all three provider clients registered. A shared
// http.Client keeps one connection pool across providers; per-call deadlines
// come from the context, so the client itself carries no timeout.
func New(cfg config.AIProviders) *Gateway {
	httpClient := &http.Client{}
	return &Gateway{
		clients: map[string]Client{
			models.ProviderClaude:   NewClaudeClient(cfg.AnthropicAPIKey, httpClient),
			models.ProviderGoogleAI: NewGoogleAIClient(cfg.GoogleAIAPIKey, httpClient),
			models.ProviderOpenAI:   NewOpenAIClient(cfg.OpenAIAPIKey, httpClient),
		},
		timeout: cfg.CallTimeout,
	}
}

// Register replaces the client for a provider. Used by tests.
func (g *Gateway) Register(provider string, client Client) {
	g.clients[provider] = client
}

func (g *Gateway) client(provider string) (Client, error) {
	c, ok := g.clients[provider]
	if !ok {
		return nil, apperr.BadRequest(apperr.CodeInvalidRequest,
			fmt.Sprintf("unknown provider: %s", provider), nil)
	}
	return c, nil
}

// Generate sends the request to the named provider and waits for the full
// completion. The configured call timeout applies unless the caller already
// set a tighter deadline for its operation.
func (g *Gateway) Generate(ctx context.Context, provider string, req Request) (*Response, error) {
	const op = "aiclient.Generate"
	c, err := g.client(provider)
	if err != nil {
		return nil, err
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := c.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, classify(provider, err))
	}
	resp.Provider = provider
	return resp, nil
}

// Stream relays the provider's chunked completion through emit. Streaming
// calls get double the configured timeout since they run for the whole
// generation, not just the first byte.
func (g *Gateway) Stream(ctx context.Context, provider string, req Request, emit func(chunk string) error) error {
	const op = "aiclient.Stream"
	c, err := g.client(provider)
	if err != nil {
		return err
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 2*g.timeout)
		defer cancel()
	}

	if err := c.Stream(ctx, req, emit); err != nil {
		return fmt.Errorf("%s: %w", op, classify(provider, err))
	}
	return nil
}
