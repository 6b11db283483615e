// Package gemini holds the relay's model-endpoint adapter: a thin HTTP
// client for the generateContent API and the Gateway that translates between
// session history and the endpoint's wire format.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tailored-agentic-units/relay/observability"
	"github.com/tailored-agentic-units/relay/retry"
)

const (
	defaultEndpoint = "https://generativelanguage.googleapis.com/%s/models"
	defaultVersion  = "v1beta"
)

// ErrMissingAPIKey is returned before any network activity when the client
// has no credential. Fatal: never retried.
var ErrMissingAPIKey = errors.New("gemini: API key is not set")

// ErrRequestFailed wraps a non-200 response that survived the retry policy.
var ErrRequestFailed = errors.New("gemini: request failed")

// Client calls the generateContent endpoint for a single model.
type Client struct {
	apiKey   string
	model    string
	baseURL  string
	http     *retry.Client
	observer observability.Observer
}

// ClientOption configures a Client created by NewClient.
type ClientOption func(*Client)

// WithBaseURL overrides the endpoint base URL (primarily for tests).
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithHTTPClient overrides the retrying HTTP client.
func WithHTTPClient(client *retry.Client) ClientOption {
	return func(c *Client) { c.http = client }
}

// WithObserver registers an observer for request lifecycle events.
func WithObserver(o observability.Observer) ClientOption {
	return func(c *Client) {
		c.observer = o
		if c.http != nil && c.http.Observer == nil {
			c.http.Observer = o
		}
	}
}

// NewClient creates a Client for the given model. A zero timeout or policy
// selects the retry package defaults.
func NewClient(apiKey, model string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: fmt.Sprintf(defaultEndpoint, defaultVersion),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = retry.NewClient(60*time.Second, retry.DefaultPolicy())
		c.http.Observer = c.observer
	}
	if c.observer == nil {
		c.observer = observability.NoOpObserver{}
	}
	return c
}

// Model returns the model identifier the client targets.
func (c *Client) Model() string {
	return c.model
}

// GenerateContent POSTs the request and decodes the response. A non-200
// status after retries is surfaced as ErrRequestFailed carrying the status
// and body; malformed response JSON is surfaced as a decode error.
func (c *Client) GenerateContent(ctx context.Context, req *Request) (*Response, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if c.model == "" {
		return nil, errors.New("gemini: model is not set")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("gemini: encode request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	resp, err := c.http.PostJSON(ctx, url, body, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini: post: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gemini: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.observer.OnEvent(ctx, observability.Event{
			Type:      EventRequestFailed,
			Level:     observability.LevelWarning,
			Timestamp: time.Now(),
			Source:    "gemini.GenerateContent",
			Data: map[string]any{
				"status": resp.StatusCode,
				"body":   string(respBody),
			},
		})
		return nil, fmt.Errorf("%w: status %d: %s", ErrRequestFailed, resp.StatusCode, respBody)
	}

	var decoded Response
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, fmt.Errorf("gemini: decode response: %w", err)
	}
	return &decoded, nil
}
