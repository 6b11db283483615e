package gemini

import "github.com/tailored-agentic-units/relay/observability"

// Observability event types emitted by the model-endpoint adapter.
const (
	// EventModelCall is emitted before each generateContent round-trip.
	EventModelCall observability.EventType = "gemini.model_call"
	// EventRequestFailed is emitted when a non-200 response survives retries.
	EventRequestFailed observability.EventType = "gemini.request_failed"
	// EventToolCallDetected is emitted when a response carries a function call.
	EventToolCallDetected observability.EventType = "gemini.tool_call_detected"
)
