package promptlog

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one append-only telemetry row per accepted prompt. Pure
// observability: nothing in the request path depends on it.
type Entry struct {
	ID        uuid.UUID `json:"id"`
	CallerID  string    `json:"caller_id"`
	Email     string    `json:"email"`
	CharCount int       `json:"char_count"`
	Preview   string    `json:"preview"` // truncated, never the full prompt
	SourceIP  string    `json:"source_ip"`
	CreatedAt time.Time `json:"created_at"`
}
