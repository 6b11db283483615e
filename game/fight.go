package game

import (
	"fmt"
	"strings"
	"sync"
)

// Outcome classifies the result of applying damage.
type Outcome string

const (
	OutcomeDead     Outcome = "dead"
	OutcomeDamage   Outcome = "damage"
	OutcomeNotFound Outcome = "not_found"
)

// DamageResult is the outcome of one ApplyDamage call. Message is the
// player-facing description for outcomes the coordinator chooses to announce.
type DamageResult struct {
	Status  Outcome
	Message string
}

// Character is one combatant in the fight roster.
type Character struct {
	Name  string `json:"name"`
	HP    int    `json:"hp"`
	MaxHP int    `json:"max_hp,omitempty"`
}

// Fight tracks the live roster. Safe for concurrent use: damage commands from
// different sessions may land at the same time.
type Fight struct {
	mu         sync.Mutex
	characters []*Character
}

// NewFight creates a Fight over the given roster. Characters with a zero
// MaxHP start at full health.
func NewFight(roster ...Character) *Fight {
	f := &Fight{characters: make([]*Character, 0, len(roster))}
	for _, c := range roster {
		c := c
		if c.MaxHP == 0 {
			c.MaxHP = c.HP
		}
		f.characters = append(f.characters, &c)
	}
	return f
}

// ApplyDamage subtracts amount from the named character's HP. Reaching zero
// or below is fatal.
func (f *Fight) ApplyDamage(target string, amount int) DamageResult {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, c := range f.characters {
		if c.Name != target {
			continue
		}
		c.HP -= amount
		if c.HP <= 0 {
			return DamageResult{
				Status:  OutcomeDead,
				Message: fmt.Sprintf("%s has died", target),
			}
		}
		return DamageResult{
			Status:  OutcomeDamage,
			Message: fmt.Sprintf("%s takes %d damage, %d HP remaining", target, amount, c.HP),
		}
	}
	return DamageResult{
		Status:  OutcomeNotFound,
		Message: fmt.Sprintf("%s does not exist", target),
	}
}

// Status renders one "name HP/MaxHP" line per character.
func (f *Fight) Status() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var b strings.Builder
	for _, c := range f.characters {
		fmt.Fprintf(&b, "%s HP: %d/%d\n", c.Name, c.HP, c.MaxHP)
	}
	return b.String()
}
