package relay

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tailored-agentic-units/relay/game"
	"github.com/tailored-agentic-units/relay/observability"
)

// Embedded command names recognized by the game dispatch table.
const (
	CommandDice   = "DICE"
	CommandDamage = "Damage"
)

// Call carries one embedded command to its handler.
type Call struct {
	SessionID string
	RawArgs   string
	Replier   Replier
	// Continue performs one narrative follow-up round-trip through the
	// gateway and returns the stripped continuation text. Nil when the
	// handler runs without a coordinator (tests).
	Continue func(ctx context.Context, prompt string) (string, error)
}

// Handler executes one embedded command. A returned error marks the command
// rejected: the coordinator reports it and moves on to the next command.
type Handler func(ctx context.Context, call Call) error

// Dispatch maps command names to handlers. Built once at startup and passed
// into the coordinator; never mutated afterwards.
type Dispatch map[string]Handler

// GameDispatch builds the standard table: dice checks and damage.
func GameDispatch(fight *game.Fight, cfg game.Config, observer observability.Observer) Dispatch {
	if observer == nil {
		observer = observability.NoOpObserver{}
	}
	return Dispatch{
		CommandDice:   diceHandler(),
		CommandDamage: damageHandler(fight, cfg.AnnounceDamage, observer),
	}
}

// diceHandler parses a single success rate, rolls, reports the result, and
// asks the model for one narrative continuation. The continuation is bounded:
// command tokens in its text are stripped, never dispatched again.
func diceHandler() Handler {
	return func(ctx context.Context, call Call) error {
		rate, err := strconv.Atoi(call.RawArgs)
		if err != nil {
			return fmt.Errorf("%w: success rate %q is not an integer", ErrInvalidArgument, call.RawArgs)
		}
		if rate < 1 || rate > 100 {
			return fmt.Errorf("%w: success rate %d is outside [1,100]", ErrInvalidArgument, rate)
		}

		result := game.RollCheck(rate)
		call.Replier.SendReply(result)

		if call.Continue == nil {
			return nil
		}
		text, err := call.Continue(ctx, result)
		if err != nil {
			return fmt.Errorf("dice continuation: %w", err)
		}
		if text != "" {
			call.Replier.SendReply(text)
		}
		return nil
	}
}

// damageHandler parses "target,amount" and applies damage. Deaths are always
// announced; non-fatal damage and unknown targets are announced only when
// configured, and otherwise recorded as events.
func damageHandler(fight *game.Fight, announce bool, observer observability.Observer) Handler {
	return func(ctx context.Context, call Call) error {
		target, rawAmount, ok := strings.Cut(call.RawArgs, ",")
		if !ok {
			return fmt.Errorf(`%w: want "target,amount", got %q`, ErrInvalidArgument, call.RawArgs)
		}
		target = strings.TrimSpace(target)
		amount, err := strconv.Atoi(strings.TrimSpace(rawAmount))
		if err != nil {
			return fmt.Errorf("%w: damage amount %q is not an integer", ErrInvalidArgument, rawAmount)
		}
		if target == "" {
			return fmt.Errorf("%w: empty damage target", ErrInvalidArgument)
		}

		result := fight.ApplyDamage(target, amount)

		level := observability.LevelInfo
		if result.Status == game.OutcomeNotFound {
			level = observability.LevelError
		}
		observer.OnEvent(ctx, observability.Event{
			Type:      EventDamageOutcome,
			Level:     level,
			Timestamp: time.Now(),
			Source:    "relay.damageHandler",
			Data: map[string]any{
				"session_id": call.SessionID,
				"target":     target,
				"amount":     amount,
				"status":     string(result.Status),
			},
		})

		switch result.Status {
		case game.OutcomeDead:
			call.Replier.SendReply(result.Message)
		case game.OutcomeDamage, game.OutcomeNotFound:
			if announce {
				call.Replier.SendReply(result.Message)
			}
		}
		return nil
	}
}
