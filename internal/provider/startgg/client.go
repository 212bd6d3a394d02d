// Package startgg provides the GraphQL client and query shapes for the
// start.gg API.
//
// start.gg exposes a single POST endpoint with bearer auth. All calls are
// paced by a shared limiter and retried a fixed number of times; the limiter
// wait is the only point where the pipeline blocks.
package startgg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the start.gg GraphQL endpoint.
	DefaultBaseURL = "https://api.start.gg/gql/alpha"

	// maxAttempts bounds retries for a single call. The last attempt's
	// failure is surfaced to the caller.
	maxAttempts = 3
)

// --------------------------------------------------------------------------
// Error taxonomy
// --------------------------------------------------------------------------

// TransportError is a network or non-2xx HTTP failure.
type TransportError struct {
	StatusCode int // 0 when the request never completed
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("start.gg HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("start.gg request: %s", e.Message)
}

func (e *TransportError) Unwrap() error { return e.Err }

// QueryError is a server-reported error list inside an otherwise-200 response.
type QueryError struct {
	Messages []string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("start.gg query errors: %v", e.Messages)
}

// NotFoundError indicates a slug that did not resolve to an entity.
type NotFoundError struct {
	Kind string // "event"
	Slug string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("start.gg %s not found for slug %q", e.Kind, e.Slug)
}

// --------------------------------------------------------------------------
// Client
// --------------------------------------------------------------------------

// Client executes GraphQL queries against start.gg with rate limiting and
// bounded retries. One client instance owns one rate-limit clock; every call
// in a run must flow through the same instance.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a start.gg client enforcing a minimum interval between
// requests. The start.gg terms ask for roughly one request per second;
// interval defaults to 1.1s when non-positive.
func NewClient(baseURL, apiKey string, interval time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if interval <= 0 {
		interval = 1100 * time.Millisecond
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		limiter:    rate.NewLimiter(rate.Every(interval), 1),
		logger:     logger,
	}
}

// envelope is the standard GraphQL response wrapper.
type envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Do executes one GraphQL query and decodes the data object into out.
// Transport failures and server-reported query errors are retried up to
// maxAttempts with no extra spacing beyond the rate limit; the final
// attempt's error is returned as a *TransportError or *QueryError.
func (c *Client) Do(ctx context.Context, query string, variables map[string]any, out any) error {
	payload, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return fmt.Errorf("marshal query payload: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return &TransportError{Message: "rate limit wait: " + err.Error(), Err: err}
		}

		lastErr = c.post(ctx, payload, out)
		if lastErr == nil {
			return nil
		}
		c.logger.Warn("start.gg call failed", "attempt", attempt, "error", lastErr)
	}
	return lastErr
}

// post performs a single request/decode cycle.
func (c *Client) post(ctx context.Context, payload []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return &TransportError{Message: err.Error(), Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{StatusCode: resp.StatusCode, Message: "read body: " + err.Error(), Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return &TransportError{StatusCode: resp.StatusCode, Message: truncate(body, 200)}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &TransportError{StatusCode: resp.StatusCode, Message: "decode response: " + err.Error(), Err: err}
	}

	if len(env.Errors) > 0 {
		msgs := make([]string, len(env.Errors))
		for i, e := range env.Errors {
			msgs[i] = e.Message
		}
		return &QueryError{Messages: msgs}
	}

	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &TransportError{StatusCode: resp.StatusCode, Message: "decode data: " + err.Error(), Err: err}
		}
	}
	return nil
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
