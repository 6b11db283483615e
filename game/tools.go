package game

import "github.com/tailored-agentic-units/relay/core/protocol"

// ToolD100Check is the function name the model uses for native dice checks.
const ToolD100Check = "perform_d100_check"

// d100Description instructs the model when and how to request a check. The
// success rate guidance mirrors the relay's game-master system prompt.
const d100Description = `Central resolution mechanic for the game. Perform a check only when an
action carries substantial risk or uncertainty AND its outcome meaningfully
affects the situation, resources, information, or a character's state.
Trivial or near-certain actions: narrate success directly. Impossible
actions: narrate failure and offer alternatives.

Base difficulty tiers (clamped to 1-100): Easy 80-95, Normal 60-79,
Hard 40-59, Very Hard 20-39, Nearly Impossible 5-19, Legendary 1-4.
Stack situational modifiers: preparation/advantage/tools +10 to +30,
relevant expertise +10 to +20, disadvantage/time pressure -10 to -30.

Silently compute the final success_rate and call the function with the
number; never explain the calculation to the player.`

// Tools returns the declarations the relay advertises to the model.
func Tools() []protocol.Tool {
	return []protocol.Tool{
		{
			Name:        ToolD100Check,
			Description: d100Description,
			Parameters: map[string]any{
				"type": "OBJECT",
				"properties": map[string]any{
					"success_rate": map[string]any{
						"type": "NUMBER",
						"description": "Integer between 1 and 100 giving the probability of success. " +
							"When the player does not specify one, derive a reasonable value from the narrative context.",
					},
				},
				"required": []string{"success_rate"},
			},
		},
	}
}
