package game

// Config holds game-rules parameters.
type Config struct {
	// RosterPath locates the JSON character roster; empty starts with an
	// empty roster.
	RosterPath string `json:"roster_path,omitempty"`
	// AnnounceDamage controls whether non-fatal damage and unknown-target
	// outcomes are reported to the reply channel. Deaths are always
	// announced; everything else is log-only by default.
	AnnounceDamage bool `json:"announce_damage,omitempty"`
}

// DefaultConfig returns the default game configuration.
func DefaultConfig() Config {
	return Config{}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.RosterPath != "" {
		c.RosterPath = source.RosterPath
	}
	if source.AnnounceDamage {
		c.AnnounceDamage = true
	}
}

// New creates a Fight from configuration, loading the roster when one is
// configured.
func New(cfg *Config) (*Fight, error) {
	if cfg.RosterPath == "" {
		return NewFight(), nil
	}
	roster, err := LoadRoster(cfg.RosterPath)
	if err != nil {
		return nil, err
	}
	return NewFight(roster...), nil
}
