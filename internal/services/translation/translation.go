// Package translation translates text between supported languages via the
// AI gateway.
package translation

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/overmind-app/overmind/internal/aiclient"
	"github.com/overmind-app/overmind/internal/models"
	"github.com/overmind-app/overmind/internal/services/modelselector"
	"github.com/overmind-app/overmind/internal/services/prompts"
)

const (
	translationMaxTokens   = 2048
	translationTemperature = 0.3
	translationTimeout     = 30 * time.Second
)

// Result is a finished translation with the model that produced it.
type Result struct {
	TranslatedText string `json:"translated_text"`
	Model          string `json:"model"`
	RawResponse    string `json:"raw_response,omitempty"`
}

// AIGateway is the outbound AI call contract.
type AIGateway interface {
	Generate(ctx context.Context, provider string, req aiclient.Request) (*aiclient.Response, error)
}

// Service implements translation over the AI gateway.
type Service struct {
	ai AIGateway
}

// New creates a translation service.
func New(ai AIGateway) *Service {
	return &Service{ai: ai}
}

// Translate translates text between two languages. When source and target
// are the same language the input is returned as-is with model "none" and
// no upstream call is made.
func (s *Service) Translate(ctx context.Context, req models.TranslationRequest) (*Result, error) {
	const op = "translation.Translate"

	if req.SourceLang == req.TargetLang {
		return &Result{
			TranslatedText: req.Text,
			Model:          "none",
			RawResponse:    req.Text,
		}, nil
	}

	model := req.Model
	if model == "" {
		model = modelselector.DefaultModel(req.Provider)
	}

	callCtx, cancel := context.WithTimeout(ctx, translationTimeout)
	defer cancel()
	resp, err := s.ai.Generate(callCtx, req.Provider, aiclient.Request{
		Model:       model,
		Prompt:      prompts.Translation(req.Text, req.SourceLang, req.TargetLang),
		MaxTokens:   translationMaxTokens,
		Temperature: translationTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	translated, err := parseResponse(resp.Text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Result{
		TranslatedText: translated,
		Model:          resp.Model,
		RawResponse:    resp.Text,
	}, nil
}

// Languages returns the supported language list.
func (s *Service) Languages() []prompts.LanguageInfo {
	return prompts.SupportedLanguages
}

var (
	codeBlockRe  = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")
	jsonObjectRe = regexp.MustCompile(`(?s)\{[^{}]*"translated_text"[^{}]*\}`)
	prefixRe     = regexp.MustCompile(`(?i)^(Translation:|Translated text:|Result:)\s*`)
	fenceOpenRe  = regexp.MustCompile("(?s)^```.*?\n")
	fenceCloseRe = regexp.MustCompile("\n```$")
)

// parseResponse extracts the translation from a model answer. Models are
// asked for JSON but do not always comply, so it falls through four
// strategies: direct JSON, JSON inside a markdown fence, a JSON object
// embedded in prose, and finally the cleaned raw text.
func parseResponse(response string) (string, error) {
	trimmed := strings.TrimSpace(response)
	if trimmed == "" {
		return "", fmt.Errorf("empty response from AI")
	}

	if text, ok := decodeTranslated(trimmed); ok {
		return text, nil
	}

	if match := codeBlockRe.FindStringSubmatch(response); match != nil {
		if text, ok := decodeTranslated(match[1]); ok {
			return text, nil
		}
	}

	if match := jsonObjectRe.FindString(response); match != "" {
		if text, ok := decodeTranslated(match); ok {
			return text, nil
		}
	}

	cleaned := prefixRe.ReplaceAllString(trimmed, "")
	cleaned = fenceOpenRe.ReplaceAllString(cleaned, "")
	cleaned = fenceCloseRe.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned), nil
}

func decodeTranslated(raw string) (string, bool) {
	var payload struct {
		TranslatedText *string `json:"translated_text"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil || payload.TranslatedText == nil {
		return "", false
	}
	return *payload.TranslatedText, true
}
