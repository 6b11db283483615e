package gemini

import (
	"time"

	"github.com/tailored-agentic-units/relay/retry"
	"github.com/tailored-agentic-units/relay/session"
)

// Defaults for the model-endpoint adapter.
const (
	DefaultModel           = "gemini-1.5-flash"
	DefaultTimeoutSeconds  = 60
	DefaultHistoryTurns    = 10
	DefaultMaxOutputTokens = 1024
	DefaultTemperature     = 0.7
)

// Config holds model-endpoint adapter parameters. The API key is supplied
// separately (environment only) and never serialized.
type Config struct {
	Model              string  `json:"model,omitempty"`
	TimeoutSeconds     float64 `json:"timeout_seconds,omitempty"`
	MaxRetries         int     `json:"max_retries,omitempty"`
	BackoffBaseSeconds float64 `json:"backoff_base_seconds,omitempty"`
	HistoryTurns       int     `json:"history_turns,omitempty"`
	MaxOutputTokens    int     `json:"max_output_tokens,omitempty"`
	Temperature        float64 `json:"temperature,omitempty"`
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	policy := retry.DefaultPolicy()
	return Config{
		Model:              DefaultModel,
		TimeoutSeconds:     DefaultTimeoutSeconds,
		MaxRetries:         policy.MaxRetries,
		BackoffBaseSeconds: policy.BackoffBase.Seconds(),
		HistoryTurns:       DefaultHistoryTurns,
		MaxOutputTokens:    DefaultMaxOutputTokens,
		Temperature:        DefaultTemperature,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Model != "" {
		c.Model = source.Model
	}
	if source.TimeoutSeconds > 0 {
		c.TimeoutSeconds = source.TimeoutSeconds
	}
	if source.MaxRetries > 0 {
		c.MaxRetries = source.MaxRetries
	}
	if source.BackoffBaseSeconds > 0 {
		c.BackoffBaseSeconds = source.BackoffBaseSeconds
	}
	if source.HistoryTurns > 0 {
		c.HistoryTurns = source.HistoryTurns
	}
	if source.MaxOutputTokens > 0 {
		c.MaxOutputTokens = source.MaxOutputTokens
	}
	if source.Temperature > 0 {
		c.Temperature = source.Temperature
	}
}

// Policy derives the retry policy from the configured bounds.
func (c *Config) Policy() retry.Policy {
	policy := retry.DefaultPolicy()
	policy.MaxRetries = c.MaxRetries
	if c.BackoffBaseSeconds > 0 {
		policy.BackoffBase = time.Duration(c.BackoffBaseSeconds * float64(time.Second))
	}
	return policy
}

// Timeout derives the per-request HTTP timeout.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultTimeoutSeconds * time.Second
	}
	return time.Duration(c.TimeoutSeconds * float64(time.Second))
}

// New creates a Client and Gateway from configuration.
func New(apiKey string, cfg *Config, store *session.Store, opts ...ClientOption) *Gateway {
	defaults := DefaultConfig()
	if cfg == nil {
		cfg = &defaults
	}
	base := []ClientOption{
		WithHTTPClient(retry.NewClient(cfg.Timeout(), cfg.Policy())),
	}
	client := NewClient(apiKey, cfg.Model, append(base, opts...)...)
	return NewGateway(client, store, cfg)
}
