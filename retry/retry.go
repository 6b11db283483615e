// Package retry issues outbound JSON POSTs with bounded exponential-backoff
// retry on transient failures. It is the only retry boundary in the relay:
// transport errors and transient status codes are retried up to the policy
// limit, everything else is returned to the caller unmodified.
package retry

import (
	"bytes"
	"context"
	"io"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/tailored-agentic-units/relay/observability"
)

// EventAttemptFailed is emitted before each backoff sleep.
const EventAttemptFailed observability.EventType = "retry.attempt_failed"

// maxJitter bounds the uniform random addition to each backoff delay.
const maxJitter = 200 * time.Millisecond

// Policy bounds the retry behavior for a single request. Immutable once
// constructed.
type Policy struct {
	MaxRetries  int
	BackoffBase time.Duration
	Transient   map[int]bool
}

// DefaultPolicy returns the relay's standard policy: two retries, 800ms
// base, and the usual self-resolving status codes.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:  2,
		BackoffBase: 800 * time.Millisecond,
		Transient: map[int]bool{
			http.StatusTooManyRequests:     true,
			http.StatusInternalServerError: true,
			http.StatusBadGateway:          true,
			http.StatusServiceUnavailable:  true,
			http.StatusGatewayTimeout:      true,
		},
	}
}

// Delay computes the backoff before retry number attempt (zero-based):
// BackoffBase * 2^attempt plus a uniform random jitter.
func (p Policy) Delay(attempt int) time.Duration {
	return p.BackoffBase*(1<<attempt) + rand.N(maxJitter)
}

// Client wraps an http.Client with a retry policy. The zero Observer is
// replaced with a noop.
type Client struct {
	HTTP     *http.Client
	Policy   Policy
	Observer observability.Observer
}

// NewClient creates a Client with the given request timeout and policy.
func NewClient(timeout time.Duration, policy Policy) *Client {
	return &Client{
		HTTP:   &http.Client{Timeout: timeout},
		Policy: policy,
	}
}

// PostJSON POSTs body to url with the given headers, retrying transport
// failures and transient status codes per the client's policy. A response
// with a non-transient status is returned as-is, success or not; the caller
// decides from the status code. The final transport failure is returned once
// retries are exhausted. The caller owns the returned response body.
func (c *Client) PostJSON(ctx context.Context, url string, body []byte, headers map[string]string) (*http.Response, error) {
	observer := c.Observer
	if observer == nil {
		observer = observability.NoOpObserver{}
	}

	for attempt := 0; ; attempt++ {
		resp, err := c.post(ctx, url, body, headers)
		if err == nil && !c.Policy.Transient[resp.StatusCode] {
			return resp, nil
		}
		if attempt >= c.Policy.MaxRetries {
			if err != nil {
				return nil, err
			}
			return resp, nil
		}

		data := map[string]any{"attempt": attempt + 1, "max_retries": c.Policy.MaxRetries}
		if err != nil {
			data["error"] = err.Error()
		} else {
			data["status"] = resp.StatusCode
			// Drained so the connection can be reused by the next attempt.
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}
		observer.OnEvent(ctx, observability.Event{
			Type:      EventAttemptFailed,
			Level:     observability.LevelInfo,
			Timestamp: time.Now(),
			Source:    "retry.PostJSON",
			Data:      data,
		})

		if err := sleep(ctx, c.Policy.Delay(attempt)); err != nil {
			return nil, err
		}
	}
}

func (c *Client) post(ctx context.Context, url string, body []byte, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return c.HTTP.Do(req)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
