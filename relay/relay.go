// Package relay implements the session-serialized request pipeline: each
// inbound message acquires exclusive processing rights for its session,
// makes one model round-trip through the gateway, acts on embedded commands
// and native tool calls, and always releases the session on the way out.
package relay

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tailored-agentic-units/relay/core/command"
	"github.com/tailored-agentic-units/relay/core/protocol"
	"github.com/tailored-agentic-units/relay/game"
	"github.com/tailored-agentic-units/relay/gemini"
	"github.com/tailored-agentic-units/relay/observability"
	"github.com/tailored-agentic-units/relay/session"
)

// Replier is the reply-channel collaborator: fire-and-forget delivery back
// to whatever chat surface the message came from.
type Replier interface {
	SendReply(text string)
	ReactWith(marker string)
}

// Gateway abstracts the model-endpoint adapter for testability. The default
// implementation is *gemini.Gateway.
type Gateway interface {
	Send(ctx context.Context, msg gemini.Message) (*gemini.Reply, error)
}

// Player-facing fallback strings.
const (
	defaultFallbackReply = "(no reply)"
	failureReply         = "Something went wrong handling that message. Try again."
)

// defaultBusyMarkers are the two reaction markers a busy session answers
// with instead of queueing.
var defaultBusyMarkers = []string{"⏳", "✋"}

// Option configures a Coordinator after default initialization.
type Option func(*Coordinator)

// WithSystemPrompt sets the game-master system prompt sent on every model call.
func WithSystemPrompt(prompt string) Option {
	return func(c *Coordinator) { c.system = prompt }
}

// WithTools sets the tool declarations advertised to the model.
func WithTools(tools []protocol.Tool) Option {
	return func(c *Coordinator) { c.tools = tools }
}

// WithStore attaches the history store, enabling Reset.
func WithStore(store *session.Store) Option {
	return func(c *Coordinator) { c.store = store }
}

// WithObserver overrides the default noop observer.
func WithObserver(o observability.Observer) Option {
	return func(c *Coordinator) { c.observer = o }
}

// WithFallbackReply overrides the placeholder sent when the model returns
// nothing visible.
func WithFallbackReply(text string) Option {
	return func(c *Coordinator) { c.fallback = text }
}

// WithBusyMarkers overrides the reaction markers sent to a busy session.
func WithBusyMarkers(markers ...string) Option {
	return func(c *Coordinator) { c.busyMarkers = markers }
}

// Coordinator serializes message processing per session and drives the
// gateway/command/game pipeline.
type Coordinator struct {
	gateway     Gateway
	dispatch    Dispatch
	locks       *Locks
	store       *session.Store
	system      string
	tools       []protocol.Tool
	observer    observability.Observer
	fallback    string
	busyMarkers []string
}

// New creates a Coordinator over a gateway and an immutable command table.
func New(gateway Gateway, dispatch Dispatch, opts ...Option) *Coordinator {
	c := &Coordinator{
		gateway:     gateway,
		dispatch:    dispatch,
		locks:       NewLocks(),
		observer:    observability.NoOpObserver{},
		fallback:    defaultFallbackReply,
		busyMarkers: defaultBusyMarkers,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HandleMessage processes one inbound message for a session. It is the
// relay's error boundary: every failure is converted to a player-visible
// diagnostic and the session is released on every exit path. A session with
// a message already in flight answers with the busy markers and drops the
// new message; callers are expected to resubmit.
func (c *Coordinator) HandleMessage(ctx context.Context, sessionID, userText string, replier Replier) {
	requestID := uuid.Must(uuid.NewV7()).String()

	if !c.locks.TryAcquire(sessionID) {
		for _, marker := range c.busyMarkers {
			replier.ReactWith(marker)
		}
		c.emit(ctx, EventSessionBusy, observability.LevelInfo, map[string]any{
			"session_id": sessionID,
			"request_id": requestID,
		})
		return
	}
	defer c.locks.Release(sessionID)

	c.emit(ctx, EventMessageAccepted, observability.LevelInfo, map[string]any{
		"session_id": sessionID,
		"request_id": requestID,
		"length":     len(userText),
	})

	reply, err := c.gateway.Send(ctx, gemini.Message{
		SessionID:    sessionID,
		Prompt:       userText,
		SystemPrompt: c.system,
		Tools:        c.tools,
	})
	if err != nil {
		replier.SendReply(failureReply)
		c.emit(ctx, EventMessageFailed, observability.LevelError, map[string]any{
			"session_id": sessionID,
			"request_id": requestID,
			"error":      err.Error(),
		})
		return
	}

	commands := command.ExtractAll(reply.Text)
	stripped := strings.TrimSpace(command.Strip(reply.Text))
	switch {
	case stripped != "":
		replier.SendReply(stripped)
	case len(commands) == 0 && reply.ToolCall == nil:
		// A genuinely empty reply; commands and tool calls produce their
		// own output below.
		replier.SendReply(c.fallback)
	}

	for _, cmd := range commands {
		c.dispatchCommand(ctx, sessionID, requestID, cmd, replier)
	}

	if reply.ToolCall != nil {
		c.handleToolCall(ctx, sessionID, requestID, reply.ToolCall, replier)
	}
}

// Reset clears a session's history. No-op without an attached store.
func (c *Coordinator) Reset(sessionID string) {
	if c.store != nil {
		c.store.Clear(sessionID)
	}
}

func (c *Coordinator) dispatchCommand(ctx context.Context, sessionID, requestID string, cmd command.Command, replier Replier) {
	handler, ok := c.dispatch[cmd.Name]
	if !ok {
		replier.SendReply(fmt.Sprintf("Found a command token %q but no handler for it.", cmd.Name))
		c.emit(ctx, EventCommandUnknown, observability.LevelWarning, map[string]any{
			"session_id": sessionID,
			"request_id": requestID,
			"command":    cmd.Name,
		})
		return
	}

	err := handler(ctx, Call{
		SessionID: sessionID,
		RawArgs:   cmd.RawArgs,
		Replier:   replier,
		Continue:  c.continuation(sessionID),
	})
	if err != nil {
		replier.SendReply(fmt.Sprintf("Command %s rejected: %v", cmd.Name, err))
		c.emit(ctx, EventCommandRejected, observability.LevelWarning, map[string]any{
			"session_id": sessionID,
			"request_id": requestID,
			"command":    cmd.Name,
			"error":      err.Error(),
		})
		return
	}
	c.emit(ctx, EventCommandDispatched, observability.LevelVerbose, map[string]any{
		"session_id": sessionID,
		"request_id": requestID,
		"command":    cmd.Name,
	})
}

// continuation builds the bounded follow-up round-trip handed to command
// handlers: one more gateway send whose reply is stripped of command tokens
// and never dispatched again.
func (c *Coordinator) continuation(sessionID string) func(ctx context.Context, prompt string) (string, error) {
	return func(ctx context.Context, prompt string) (string, error) {
		reply, err := c.gateway.Send(ctx, gemini.Message{
			SessionID:    sessionID,
			Prompt:       prompt,
			SystemPrompt: c.system,
			Tools:        c.tools,
		})
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(command.Strip(reply.Text)), nil
	}
}

// handleToolCall resolves a native function call from the model: execute the
// d100 check, send the result back as a tool-response round-trip (depth 1),
// and forward the continuation text.
func (c *Coordinator) handleToolCall(ctx context.Context, sessionID, requestID string, call *protocol.ToolCall, replier Replier) {
	if call.Name != game.ToolD100Check {
		err := fmt.Errorf("%w: %s", ErrUnknownFunction, call.Name)
		replier.SendReply(fmt.Sprintf("The model requested an unknown function %q.", call.Name))
		c.emit(ctx, EventCommandUnknown, observability.LevelWarning, map[string]any{
			"session_id": sessionID,
			"request_id": requestID,
			"function":   call.Name,
			"error":      err.Error(),
		})
		return
	}

	rate, err := successRate(call.Args)
	if err != nil {
		replier.SendReply(fmt.Sprintf("Dice check rejected: %v", err))
		c.emit(ctx, EventCommandRejected, observability.LevelWarning, map[string]any{
			"session_id": sessionID,
			"request_id": requestID,
			"function":   call.Name,
			"error":      err.Error(),
		})
		return
	}

	result := game.RollCheck(rate)
	replier.SendReply(result)

	reply, err := c.gateway.Send(ctx, gemini.Message{
		SessionID:    sessionID,
		ToolReturn:   true,
		FunctionName: call.Name,
		Result:       map[string]any{"result": result},
		SystemPrompt: c.system,
		Tools:        c.tools,
	})
	if err != nil {
		replier.SendReply(failureReply)
		c.emit(ctx, EventMessageFailed, observability.LevelError, map[string]any{
			"session_id": sessionID,
			"request_id": requestID,
			"error":      err.Error(),
		})
		return
	}
	if text := strings.TrimSpace(command.Strip(reply.Text)); text != "" {
		replier.SendReply(text)
	}
}

// successRate decodes and validates the success_rate argument of a native
// dice-check call. JSON numbers arrive as float64.
func successRate(args map[string]any) (int, error) {
	raw, ok := args["success_rate"]
	if !ok {
		return 0, fmt.Errorf("%w: missing success_rate", ErrInvalidArgument)
	}
	f, ok := raw.(float64)
	if !ok || f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: success_rate %v is not an integer", ErrInvalidArgument, raw)
	}
	rate := int(f)
	if rate < 1 || rate > 100 {
		return 0, fmt.Errorf("%w: success_rate %d is outside [1,100]", ErrInvalidArgument, rate)
	}
	return rate, nil
}

func (c *Coordinator) emit(ctx context.Context, t observability.EventType, level observability.Level, data map[string]any) {
	c.observer.OnEvent(ctx, observability.Event{
		Type:      t,
		Level:     level,
		Timestamp: time.Now(),
		Source:    "relay.HandleMessage",
		Data:      data,
	})
}
