package promptlog

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/surjeetsr38/gyansathi-backend/internal/events"
)

const recordTimeout = 5 * time.Second

// Logger records prompt telemetry without ever affecting the request that
// produced it. Both sinks are optional; failures are logged and swallowed.
type Logger struct {
	repo      *Repository
	publisher *events.Publisher
	enabled   bool
}

func NewLogger(repo *Repository, publisher *events.Publisher, enabled bool) *Logger {
	return &Logger{repo: repo, publisher: publisher, enabled: enabled}
}

// Record writes the entry in a detached goroutine with its own deadline so a
// slow sink cannot hold up the caller's request.
func (l *Logger) Record(e Entry) {
	if !l.enabled || (l.repo == nil && l.publisher == nil) {
		return
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()

		if l.repo != nil {
			if err := l.repo.Insert(ctx, &e); err != nil {
				slog.Warn("prompt log insert failed", "error", err, "caller_id", e.CallerID)
			}
		}
		if l.publisher != nil {
			err := l.publisher.PublishPromptLogged(ctx, events.PromptLogged{
				ID:        e.ID.String(),
				CallerID:  e.CallerID,
				CharCount: e.CharCount,
				SourceIP:  e.SourceIP,
				CreatedAt: e.CreatedAt,
			})
			if err != nil {
				slog.Warn("prompt event publish failed", "error", err, "caller_id", e.CallerID)
			}
		}
	}()
}
