package generate

import "github.com/surjeetsr38/gyansathi-backend/internal/prompt"

// Request is the shape guard for /generate bodies. The raw bytes are what
// gets forwarded upstream; this struct exists only for validation and prompt
// extraction.
type Request struct {
	Contents []prompt.Content `json:"contents" validate:"required,min=1,dive"`
}

// HealthLimits is the limits block exposed on /health.
type HealthLimits struct {
	WindowMs       int `json:"windowMs"`
	MaxPerWindow   int `json:"maxPerWindow"`
	DailyQuota     int `json:"dailyQuota"`
	MaxPromptChars int `json:"maxPromptChars"`
}
