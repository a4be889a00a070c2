package models

import "time"

// AI provider names accepted across the system.
const (
	ProviderClaude   = "claude"
	ProviderGoogleAI = "google_ai"
	ProviderOpenAI   = "openai"
)

// CountryWorldwide is the wildcard country code used as global fallback
// when no country-specific model priority exists.
const CountryWorldwide = "WW"

// ModelPriority is the ordered provider preference for a (country, tier)
// pair. Priority2/Priority3 are stored for failover but the selector
// currently consults only Priority1.
type ModelPriority struct {
	ID        int64     `json:"id"`
	Country   string    `json:"country"` // ISO 3166-1 alpha-2, or WW
	Tier      string    `json:"tier"`    // basic or premium
	Priority1 string    `json:"priority_1"`
	Priority2 string    `json:"priority_2"`
	Priority3 string    `json:"priority_3"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpsertPriorityRequest is the JSON body of PUT /admin/api/ai-priorities.
type UpsertPriorityRequest struct {
	Country   string `json:"country" validate:"required,len=2"`
	Tier      string `json:"tier" validate:"required,oneof=basic premium"`
	Priority1 string `json:"priority_1" validate:"required"`
	Priority2 string `json:"priority_2" validate:"required"`
	Priority3 string `json:"priority_3" validate:"required"`
}

// ChatRequest is the JSON body of POST /ai/api/req and /ai/api/req/stream.
type ChatRequest struct {
	Provider    string  `json:"provider" validate:"required,oneof=claude google_ai openai"`
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt" validate:"required"`
	MaxTokens   int     `json:"max_tokens" validate:"omitempty,gt=0,lte=8192"`
	Temperature float64 `json:"temperature" validate:"omitempty,gte=0,lte=2"`
}

// TranslationRequest is the JSON body of POST /translate/api/translate.
type TranslationRequest struct {
	Text       string `json:"text" validate:"required,max=10000"`
	SourceLang string `json:"source_lang" validate:"required"`
	TargetLang string `json:"target_lang" validate:"required"`
	Provider   string `json:"provider" validate:"required,oneof=claude google_ai openai"`
	Model      string `json:"model"`
}
