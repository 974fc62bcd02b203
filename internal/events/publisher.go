package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// PromptLogged is emitted for every prompt accepted into the pipeline.
type PromptLogged struct {
	ID        string    `json:"id"`
	CallerID  string    `json:"caller_id"`
	CharCount int       `json:"char_count"`
	SourceIP  string    `json:"source_ip"`
	CreatedAt time.Time `json:"created_at"`
}

// Publisher provides typed methods for publishing gateway events.
type Publisher struct {
	js jetstream.JetStream
}

func NewPublisher(js jetstream.JetStream) *Publisher {
	return &Publisher{js: js}
}

// PublishPromptLogged publishes a prompt telemetry event.
func (p *Publisher) PublishPromptLogged(ctx context.Context, event PromptLogged) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling prompt event: %w", err)
	}
	if _, err := p.js.Publish(ctx, SubjectPromptLogged, payload); err != nil {
		return fmt.Errorf("publishing to %s: %w", SubjectPromptLogged, err)
	}
	return nil
}
