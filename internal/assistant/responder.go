package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// fallbackReply is spoken when no device matches and no conversational
// responder is reachable.
const fallbackReply = "I didn't understand that."

// Responder produces a conversational reply for commands that resolve to
// no device.
type Responder interface {
	Reply(ctx context.Context, prompt string) (string, error)
}

// StaticResponder always answers with the fixed fallback line.
type StaticResponder struct{}

// Reply returns the fallback line.
func (StaticResponder) Reply(context.Context, string) (string, error) {
	return fallbackReply, nil
}

// HTTPResponder forwards unmatched prompts to an external conversational
// service over a small JSON POST API.
type HTTPResponder struct {
	url    string
	client *http.Client
}

// NewHTTPResponder creates a responder against the given endpoint with a
// bounded request timeout.
func NewHTTPResponder(url string, timeout time.Duration) *HTTPResponder {
	return &HTTPResponder{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Reply posts {"prompt": ...} and returns the service's reply field.
func (r *HTTPResponder) Reply(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(map[string]string{"prompt": prompt})
	if err != nil {
		return "", fmt.Errorf("encoding prompt: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building responder request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling responder: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("responder returned status %d", resp.StatusCode)
	}

	var reply struct {
		Reply string `json:"reply"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return "", fmt.Errorf("decoding responder reply: %w", err)
	}
	if reply.Reply == "" {
		return "", fmt.Errorf("responder returned an empty reply")
	}
	return reply.Reply, nil
}
