package protocol_test

import (
	"testing"

	"github.com/tailored-agentic-units/relay/core/protocol"
)

func TestTurnConstructors(t *testing.T) {
	tests := []struct {
		name string
		turn protocol.Turn
		want protocol.Kind
	}{
		{"user", protocol.UserTurn("hello"), protocol.KindUser},
		{"model text", protocol.ModelTextTurn("hi"), protocol.KindModelText},
		{"tool call", protocol.ToolCallTurn("perform_d100_check", map[string]any{"success_rate": 50}), protocol.KindToolCall},
		{"tool result", protocol.ToolResultTurn("perform_d100_check", "rolled 3"), protocol.KindToolResult},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.turn.Kind != tt.want {
				t.Errorf("got kind %q, want %q", tt.turn.Kind, tt.want)
			}
		})
	}
}

func TestToolCallTurn_Fields(t *testing.T) {
	turn := protocol.ToolCallTurn("perform_d100_check", map[string]any{"success_rate": float64(75)})

	if turn.FunctionName != "perform_d100_check" {
		t.Errorf("got function name %q, want %q", turn.FunctionName, "perform_d100_check")
	}
	if turn.Arguments["success_rate"] != float64(75) {
		t.Errorf("got success_rate %v, want 75", turn.Arguments["success_rate"])
	}
	if turn.Text != "" {
		t.Errorf("tool call turn should carry no text, got %q", turn.Text)
	}
}
