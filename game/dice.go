// Package game implements the relay's game rules: d100 resolution checks,
// the fight roster with damage tracking, and the tool declarations that
// expose these rules to the model.
package game

import (
	"fmt"
	"math/rand/v2"
)

// RollCheck performs a D100 check against a success rate in [1,100] and
// returns a descriptive result. Callers validate the rate before invoking.
//
// Convention: a roll of 1 is always a critical success and a roll of 100 is
// always a critical failure, regardless of the rate. Otherwise the check
// succeeds when the roll is at or under the rate.
func RollCheck(successRate int) string {
	return Resolve(rand.IntN(100)+1, successRate)
}

// Resolve describes the outcome of a given roll against a success rate.
// Split out from RollCheck so outcomes are testable without randomness.
func Resolve(roll, successRate int) string {
	switch {
	case roll == 1:
		return fmt.Sprintf("🎲 rolled 1: critical success (rate %d)", successRate)
	case roll == 100:
		return fmt.Sprintf("🎲 rolled 100: critical failure (rate %d)", successRate)
	case roll <= successRate:
		return fmt.Sprintf("🎲 rolled %d: success (rate %d)", roll, successRate)
	default:
		return fmt.Sprintf("🎲 rolled %d: failure (rate %d)", roll, successRate)
	}
}
