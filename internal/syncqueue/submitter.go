package syncqueue

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// RegistrySubmitter delivers payloads to the central registry over HTTP.
// The registry deduplicates by the Idempotency-Key header, which carries
// the local queue id.
type RegistrySubmitter struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewRegistrySubmitter creates a submitter for the registry at baseURL.
// apiKey may be empty for registries that authenticate by network instead.
func NewRegistrySubmitter(baseURL, apiKey string) *RegistrySubmitter {
	return &RegistrySubmitter{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

// Submit posts one finalized inspection payload. Any non-2xx response is a
// failure; the caller leaves the payload pending and retries later.
func (s *RegistrySubmitter) Submit(ctx context.Context, queueID string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/inspections", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building registry request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", queueID)
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("posting to registry: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("registry rejected submission: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	return nil
}
