package session

// Config holds session store initialization parameters.
type Config struct {
	// MaxTurns bounds each session's stored history; oldest turns are
	// evicted first once the bound is exceeded.
	MaxTurns int `json:"max_turns,omitempty"`
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{MaxTurns: DefaultMaxTurns}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.MaxTurns > 0 {
		c.MaxTurns = source.MaxTurns
	}
}

// New creates a Store from configuration.
func New(cfg *Config) *Store {
	return NewStore(cfg.MaxTurns)
}
