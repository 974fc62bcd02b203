// Package gemini forwards validated request bodies to the Gemini
// generateContent REST endpoint. The body passes through byte-for-byte; the
// gateway adds nothing but the server-held API key.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrMissingKey is returned when no API key was configured.
var ErrMissingKey = errors.New("gemini: no API key configured")

// UpstreamError carries the upstream HTTP status and, when the error
// envelope could be parsed, the upstream message.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gemini: upstream status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gemini: upstream status %d", e.StatusCode)
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	model      string
	apiKey     string
}

func NewClient(baseURL, model, apiKey string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		model:      model,
		apiKey:     apiKey,
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Generate posts the raw request body to the generateContent endpoint and
// returns the upstream JSON body unmodified. Non-2xx statuses come back as
// *UpstreamError.
func (c *Client) Generate(ctx context.Context, body []byte) (json.RawMessage, error) {
	if c.apiKey == "" {
		return nil, ErrMissingKey
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building upstream request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling gemini: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading gemini response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{
			StatusCode: resp.StatusCode,
			Message:    parseErrorMessage(respBody),
		}
	}

	return respBody, nil
}

// parseErrorMessage pulls the message out of the Gemini error envelope
// {"error": {"message": "..."}}. An unparseable body yields "".
func parseErrorMessage(body []byte) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	return envelope.Error.Message
}
