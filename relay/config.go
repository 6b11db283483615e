package relay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/tailored-agentic-units/relay/game"
	"github.com/tailored-agentic-units/relay/gemini"
	"github.com/tailored-agentic-units/relay/session"
)

// DefaultSystemPromptPath is where the game-master prompt lives unless
// overridden by config or SYSTEM_PROMPT_PATH.
const DefaultSystemPromptPath = "prompt/description.txt"

// Config holds initialization parameters for all relay subsystems. Each
// subsystem section delegates to that subsystem's config-driven constructor.
type Config struct {
	Gemini           gemini.Config  `json:"gemini"`
	Session          session.Config `json:"session"`
	Game             game.Config    `json:"game"`
	SystemPromptPath string         `json:"system_prompt_path,omitempty"`
	LogLevel         string         `json:"log_level,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults for all subsystems.
func DefaultConfig() Config {
	return Config{
		Gemini:           gemini.DefaultConfig(),
		Session:          session.DefaultConfig(),
		Game:             game.DefaultConfig(),
		SystemPromptPath: DefaultSystemPromptPath,
		LogLevel:         "info",
	}
}

// Merge applies non-zero values from source into c, delegating to each
// subsystem's Merge method.
func (c *Config) Merge(source *Config) {
	c.Gemini.Merge(&source.Gemini)
	c.Session.Merge(&source.Session)
	c.Game.Merge(&source.Game)

	if source.SystemPromptPath != "" {
		c.SystemPromptPath = source.SystemPromptPath
	}
	if source.LogLevel != "" {
		c.LogLevel = source.LogLevel
	}
}

// LoadConfig reads a JSON config file, merges it with defaults, and returns
// the resulting Config.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}

// envConfig maps the recognized environment variables.
type envConfig struct {
	Model              string  `env:"GEMINI_MODEL"`
	APIKey             string  `env:"GOOGLE_API_KEY"`
	TimeoutSeconds     float64 `env:"HTTP_TIMEOUT_SECONDS"`
	MaxRetries         int     `env:"HTTP_MAX_RETRIES"`
	BackoffBaseSeconds float64 `env:"HTTP_RETRY_BACKOFF_BASE"`
	SystemPromptPath   string  `env:"SYSTEM_PROMPT_PATH"`
	LogLevel           string  `env:"LOG_LEVEL"`
}

// ApplyEnv overlays environment variables onto c and returns the API key,
// which is environment-only and never serialized.
func (c *Config) ApplyEnv() (apiKey string, err error) {
	var e envConfig
	if err := env.Parse(&e); err != nil {
		return "", fmt.Errorf("parse environment: %w", err)
	}

	c.Merge(&Config{
		Gemini: gemini.Config{
			Model:              e.Model,
			TimeoutSeconds:     e.TimeoutSeconds,
			MaxRetries:         e.MaxRetries,
			BackoffBaseSeconds: e.BackoffBaseSeconds,
		},
		SystemPromptPath: e.SystemPromptPath,
		LogLevel:         e.LogLevel,
	})
	return e.APIKey, nil
}

// SystemPrompt reads the configured prompt file. A missing or empty prompt
// is non-fatal; callers decide whether to warn.
func (c *Config) SystemPrompt() (string, error) {
	data, err := os.ReadFile(c.SystemPromptPath)
	if err != nil {
		return "", fmt.Errorf("read system prompt: %w", err)
	}
	return string(data), nil
}
