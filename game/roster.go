package game

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadRoster reads a JSON roster file: an array of {"name", "hp", "max_hp"}
// objects. Characters without max_hp start at full health.
func LoadRoster(path string) ([]Character, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}

	var roster []Character
	if err := json.Unmarshal(data, &roster); err != nil {
		return nil, fmt.Errorf("parse roster %s: %w", path, err)
	}

	for i := range roster {
		if roster[i].Name == "" {
			return nil, fmt.Errorf("roster %s: entry %d has no name", path, i)
		}
		if roster[i].HP <= 0 {
			return nil, fmt.Errorf("roster %s: character %q has non-positive hp", path, roster[i].Name)
		}
	}
	return roster, nil
}
