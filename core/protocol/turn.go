// Package protocol defines the conversation types shared across the relay:
// history turns, structured tool calls, and the tool declarations advertised
// to the model endpoint.
package protocol

// Kind discriminates the variants of a Turn.
type Kind string

const (
	KindUser       Kind = "user"
	KindModelText  Kind = "model_text"
	KindToolCall   Kind = "tool_call"
	KindToolResult Kind = "tool_result"
)

// Turn is one entry in a session's history. Turns are immutable once
// appended; append order reconstructs the dialogue order sent back to the
// model. Exactly one variant is populated, selected by Kind:
//
//   - KindUser: Text holds the user's message.
//   - KindModelText: Text holds the model's narration.
//   - KindToolCall: FunctionName and Arguments hold the call the model requested.
//   - KindToolResult: FunctionName and Result hold the tool's output.
type Turn struct {
	Kind         Kind
	Text         string
	FunctionName string
	Arguments    map[string]any
	Result       any
}

// UserTurn creates a user-text turn.
func UserTurn(text string) Turn {
	return Turn{Kind: KindUser, Text: text}
}

// ModelTextTurn creates a model-narration turn.
func ModelTextTurn(text string) Turn {
	return Turn{Kind: KindModelText, Text: text}
}

// ToolCallTurn creates a turn recording a function call requested by the model.
func ToolCallTurn(name string, args map[string]any) Turn {
	return Turn{Kind: KindToolCall, FunctionName: name, Arguments: args}
}

// ToolResultTurn creates a turn recording a tool's response payload.
func ToolResultTurn(name string, result any) Turn {
	return Turn{Kind: KindToolResult, FunctionName: name, Result: result}
}

// ToolCall is a structured function invocation requested by the model via the
// endpoint's native tool-calling mechanism. Ephemeral: it is recorded into
// history as a KindToolCall turn and not retained otherwise.
type ToolCall struct {
	Name string
	Args map[string]any
}
