package protocol

// Tool declares a function the model may call. This is the canonical
// declaration type used across the relay; the gateway translates it into the
// endpoint's function_declarations wire shape. Parameters uses JSON Schema
// format to describe the function's input.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}
