package relay

import "github.com/tailored-agentic-units/relay/observability"

// Observability event types emitted by the coordinator.
const (
	// EventMessageAccepted marks a message entering processing for a session.
	EventMessageAccepted observability.EventType = "relay.message.accepted"
	// EventSessionBusy marks a message dropped because the session already
	// has one in flight.
	EventSessionBusy observability.EventType = "relay.session.busy"
	// EventMessageFailed marks a message whose handling failed; the player
	// received a generic diagnostic.
	EventMessageFailed observability.EventType = "relay.message.failed"
	// EventCommandDispatched marks one embedded command handled.
	EventCommandDispatched observability.EventType = "relay.command.dispatched"
	// EventCommandRejected marks an embedded command skipped over bad
	// arguments or a handler failure.
	EventCommandRejected observability.EventType = "relay.command.rejected"
	// EventCommandUnknown marks a command token with no registered handler.
	EventCommandUnknown observability.EventType = "relay.command.unknown"
	// EventDamageOutcome records log-only damage results.
	EventDamageOutcome observability.EventType = "relay.damage.outcome"
)
