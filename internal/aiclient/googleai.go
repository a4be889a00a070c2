package aiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// GoogleAIClient talks to the Google Generative Language API.
type GoogleAIClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewGoogleAIClient builds a client against the production Google endpoint.
func NewGoogleAIClient(apiKey string, httpClient *http.Client) *GoogleAIClient {
	return &GoogleAIClient{
		apiKey:     apiKey,
		baseURL:    "https://generativelanguage.googleapis.com",
		httpClient: httpClient,
	}
}

type googleAIRequest struct {
	Contents         []googleAIContent `json:"contents"`
	GenerationConfig googleAIGenConfig `json:"generationConfig"`
}

type googleAIContent struct {
	Parts []googleAIPart `json:"parts"`
}

type googleAIPart struct {
	Text string `json:"text"`
}

type googleAIGenConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	Temperature     float64 `json:"temperature,omitempty"`
}

type googleAIResponse struct {
	Candidates []struct {
		Content struct {
			Parts []googleAIPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (c *GoogleAIClient) do(ctx context.Context, req Request, path string) (*http.Response, error) {
	const op = "aiclient.GoogleAIClient.do"
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = DefaultMaxTokens
	}
	payload := googleAIRequest{
		Contents: []googleAIContent{{Parts: []googleAIPart{{Text: req.Prompt}}}},
		GenerationConfig: googleAIGenConfig{
			MaxOutputTokens: maxTokens,
			Temperature:     req.Temperature,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if resp.StatusCode != http.StatusOK {
		defer func() { _ = resp.Body.Close() }()
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &httpError{provider: "google_ai", statusCode: resp.StatusCode, body: string(errBody)}
	}
	return resp, nil
}

// Generate requests a full completion.
func (c *GoogleAIClient) Generate(ctx context.Context, req Request) (*Response, error) {
	const op = "aiclient.GoogleAIClient.Generate"
	resp, err := c.do(ctx, req, fmt.Sprintf("/v1beta/models/%s:generateContent", req.Model))
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var parsed googleAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%s: empty candidates in response", op)
	}
	return &Response{Model: req.Model, Text: parsed.Candidates[0].Content.Parts[0].Text}, nil
}

// Stream relays candidate text chunks from the SSE variant of the API.
func (c *GoogleAIClient) Stream(ctx context.Context, req Request, emit func(chunk string) error) error {
	resp, err := c.do(ctx, req, fmt.Sprintf("/v1beta/models/%s:streamGenerateContent?alt=sse", req.Model))
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	return readSSE(resp.Body, func(data string) error {
		var chunk googleAIResponse
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return nil
		}
		if len(chunk.Candidates) > 0 && len(chunk.Candidates[0].Content.Parts) > 0 {
			text := chunk.Candidates[0].Content.Parts[0].Text
			if text != "" {
				return emit(text)
			}
		}
		return nil
	})
}
