package aiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const anthropicVersion = "2023-06-01"

// ClaudeClient talks to the Anthropic Messages API.
type ClaudeClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClaudeClient builds a client against the production Anthropic endpoint.
func NewClaudeClient(apiKey string, httpClient *http.Client) *ClaudeClient {
	return &ClaudeClient{
		apiKey:     apiKey,
		baseURL:    "https://api.anthropic.com",
		httpClient: httpClient,
	}
}

type claudeRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature,omitempty"`
	Stream      bool            `json:"stream,omitempty"`
	Messages    []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (c *ClaudeClient) do(ctx context.Context, req Request, stream bool) (*http.Response, error) {
	const op = "aiclient.ClaudeClient.do"
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = DefaultMaxTokens
	}
	payload := claudeRequest{
		Model:       req.Model,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
		Stream:      stream,
		Messages:    []claudeMessage{{Role: "user", Content: req.Prompt}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if resp.StatusCode != http.StatusOK {
		defer func() { _ = resp.Body.Close() }()
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &httpError{provider: "claude", statusCode: resp.StatusCode, body: string(errBody)}
	}
	return resp, nil
}

// Generate requests a full completion.
func (c *ClaudeClient) Generate(ctx context.Context, req Request) (*Response, error) {
	const op = "aiclient.ClaudeClient.Generate"
	resp, err := c.do(ctx, req, false)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var parsed claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(parsed.Content) == 0 {
		return nil, fmt.Errorf("%s: empty content in response", op)
	}
	return &Response{Model: parsed.Model, Text: parsed.Content[0].Text}, nil
}

type claudeStreamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
}

// Stream relays content_block_delta text chunks until message_stop.
func (c *ClaudeClient) Stream(ctx context.Context, req Request, emit func(chunk string) error) error {
	resp, err := c.do(ctx, req, true)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	err = readSSE(resp.Body, func(data string) error {
		var event claudeStreamEvent
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			// Skip non-JSON keep-alive payloads.
			return nil
		}
		switch event.Type {
		case "content_block_delta":
			if event.Delta.Text != "" {
				return emit(event.Delta.Text)
			}
		case "message_stop":
			return stopStream{}
		}
		return nil
	})
	if errors.Is(err, stopStream{}) {
		return nil
	}
	return err
}
