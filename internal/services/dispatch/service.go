package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/refero/internal/common"
	"github.com/ternarybob/refero/internal/interfaces"
	"github.com/ternarybob/refero/internal/models"
)

// NoSourcesMessage is the result returned when a query resolves no sources.
// Querying an empty or non-matching registry is a normal, recoverable state,
// not an error.
const NoSourcesMessage = "No document sources available"

// bodySnippetLimit bounds the response body carried in HTTPStatusError
const bodySnippetLimit = 512

// Service dispatches queries and payloads to external webhook endpoints
type Service struct {
	registry interfaces.SourceRegistry
	composer interfaces.Composer
	client   *http.Client
	endpoint string
	field    string
	logger   arbor.ILogger
}

// NewService creates a new query dispatcher. Outbound calls share a single
// HTTP client with the configured timeout bound.
func NewService(registry interfaces.SourceRegistry, config *common.Config, logger arbor.ILogger) *Service {
	return &Service{
		registry: registry,
		client: &http.Client{
			Timeout: config.Webhook.TimeoutDuration(),
		},
		endpoint: config.Webhook.Endpoint,
		field:    config.Webhook.PayloadField,
		logger:   logger,
	}
}

// SetComposer replaces the answer composition strategy. When unset, the
// service fans the webhook call out to each resolved source and joins the
// per-source answers.
func (s *Service) SetComposer(composer interfaces.Composer) {
	s.composer = composer
}

// Query resolves applicable sources and composes a single answer string
func (s *Service) Query(ctx context.Context, query string, sourceIDs []string) (string, error) {
	payload := models.QueryPayload{Query: query}
	if err := payload.Validate(); err != nil {
		return "", err
	}

	resolved := s.registry.Resolve(ctx, sourceIDs)
	if len(resolved) == 0 {
		s.logger.Debug().
			Int("filter_ids", len(sourceIDs)).
			Msg("Query resolved no sources")
		return NoSourcesMessage, nil
	}

	if s.composer != nil {
		return s.composer.Compose(ctx, query, resolved)
	}
	return s.Compose(ctx, query, resolved)
}

// Compose is the default composition strategy: post the query to every
// resolved source and join the per-source answers. Individual source
// failures are noted inline; an error is returned only when every source
// fails.
func (s *Service) Compose(ctx context.Context, query string, resolved []*models.DocumentSource) (string, error) {
	payload := models.QueryPayload{Query: query}

	lines := make([]string, 0, len(resolved))
	failures := 0
	var firstErr error

	for _, source := range resolved {
		answer, err := s.Post(ctx, payload.Body(s.field), source.URL)
		if err != nil {
			failures++
			if firstErr == nil {
				firstErr = err
			}
			s.logger.Warn().
				Err(err).
				Str("source_id", source.ID).
				Str("url", source.URL).
				Msg("Source query failed")
			lines = append(lines, fmt.Sprintf("Source %s: error: %v", source.ID, err))
			continue
		}
		lines = append(lines, fmt.Sprintf("Source %s: %s", source.ID, answer))
	}

	if failures == len(resolved) {
		return "", fmt.Errorf("all %d sources failed: %w", len(resolved), firstErr)
	}

	return strings.Join(lines, "\n"), nil
}

// Post sends a single synchronous JSON POST to the endpoint and unwraps the
// [{"output": ...}] response envelope. No retries: a failed attempt is
// surfaced immediately to the caller.
func (s *Service) Post(ctx context.Context, payload map[string]interface{}, endpoint string) (string, error) {
	if endpoint == "" {
		endpoint = s.endpoint
	}

	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid endpoint URL %q: must be absolute with a scheme and host", endpoint)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return "", &TransportError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Endpoint: endpoint, Err: err}
	}

	s.logger.Debug().
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Webhook POST complete")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &HTTPStatusError{
			StatusCode: resp.StatusCode,
			Body:       truncate(string(data), bodySnippetLimit),
		}
	}

	return unwrapEnvelope(data)
}

// unwrapEnvelope validates the [{"output": "<text>"}] response shape and
// extracts the output string
func unwrapEnvelope(data []byte) (string, error) {
	var items []map[string]interface{}
	if err := json.Unmarshal(data, &items); err != nil {
		return "", &MalformedResponseError{
			Detail: fmt.Sprintf("expected a JSON array of objects, got: %s", truncate(string(data), bodySnippetLimit)),
		}
	}

	if len(items) == 0 {
		return "", &MalformedResponseError{Detail: "expected one object in the response array, got an empty array"}
	}

	output, ok := items[0]["output"]
	if !ok {
		return "", &MalformedResponseError{Detail: `first object in the response array is missing the "output" key`}
	}

	text, ok := output.(string)
	if !ok {
		return "", &MalformedResponseError{Detail: fmt.Sprintf(`"output" value is %T, expected a string`, output)}
	}

	return text, nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
