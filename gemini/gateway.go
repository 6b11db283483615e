package gemini

import (
	"context"
	"strings"
	"time"

	"github.com/tailored-agentic-units/relay/core/protocol"
	"github.com/tailored-agentic-units/relay/observability"
	"github.com/tailored-agentic-units/relay/session"
)

// Wire roles for history turns.
const (
	roleUser  = "user"
	roleModel = "model"
	roleTool  = "tool"
)

// Message is one gateway send: either a user prompt or, when ToolReturn is
// set, a tool result payload keyed by FunctionName.
type Message struct {
	SessionID    string
	Prompt       string
	Result       any
	SystemPrompt string
	Tools        []protocol.Tool
	ToolReturn   bool
	FunctionName string
}

// Reply is the parsed outcome of one gateway send. ToolCall is nil when the
// model requested no function call.
type Reply struct {
	Text     string
	ToolCall *protocol.ToolCall
}

// Gateway builds model requests from a prompt plus recent session history,
// sends them through the retrying client, parses the response, and records
// the resulting turns back into the store.
type Gateway struct {
	client       *Client
	store        *session.Store
	historyTurns int
	maxTokens    int
	temperature  float64
	observer     observability.Observer
}

// NewGateway creates a Gateway over the given client and history store.
func NewGateway(client *Client, store *session.Store, cfg *Config) *Gateway {
	defaults := DefaultConfig()
	if cfg == nil {
		cfg = &defaults
	}
	observer := client.observer
	if observer == nil {
		observer = observability.NoOpObserver{}
	}
	return &Gateway{
		client:       client,
		store:        store,
		historyTurns: cfg.HistoryTurns,
		maxTokens:    cfg.MaxOutputTokens,
		temperature:  cfg.Temperature,
		observer:     observer,
	}
}

// Send records the message into history, issues one generateContent call
// with the recent window, and records what came back.
//
// When msg.ToolReturn is set, msg.Result must be a JSON-encodable payload;
// it is appended as a tool-result turn keyed by msg.FunctionName. Otherwise
// msg.Prompt is appended as a user turn. A send with an empty SessionID
// carries only the current message and records nothing.
func (g *Gateway) Send(ctx context.Context, msg Message) (*Reply, error) {
	current := protocol.UserTurn(msg.Prompt)
	if msg.ToolReturn {
		current = protocol.ToolResultTurn(msg.FunctionName, msg.Result)
	}

	if msg.ToolReturn {
		g.store.AddToolResult(msg.SessionID, msg.FunctionName, msg.Result)
	} else {
		g.store.AddUser(msg.SessionID, msg.Prompt)
	}

	turns := g.store.GetRecent(msg.SessionID, g.historyTurns)
	if msg.SessionID == "" {
		turns = []protocol.Turn{current}
	}

	req := g.buildRequest(turns, msg.SystemPrompt, msg.Tools)

	g.observer.OnEvent(ctx, observability.Event{
		Type:      EventModelCall,
		Level:     observability.LevelVerbose,
		Timestamp: time.Now(),
		Source:    "gemini.Send",
		Data: map[string]any{
			"session_id":  msg.SessionID,
			"model":       g.client.Model(),
			"history":     len(turns),
			"tool_return": msg.ToolReturn,
		},
	})

	resp, err := g.client.GenerateContent(ctx, req)
	if err != nil {
		return nil, err
	}

	reply := parseReply(resp)
	if reply.Text != "" {
		g.store.AddModelText(msg.SessionID, reply.Text)
	}
	if reply.ToolCall != nil {
		g.store.AddToolCall(msg.SessionID, reply.ToolCall.Name, reply.ToolCall.Args)
		g.observer.OnEvent(ctx, observability.Event{
			Type:      EventToolCallDetected,
			Level:     observability.LevelInfo,
			Timestamp: time.Now(),
			Source:    "gemini.Send",
			Data: map[string]any{
				"session_id": msg.SessionID,
				"function":   reply.ToolCall.Name,
			},
		})
	}
	return reply, nil
}

func (g *Gateway) buildRequest(turns []protocol.Turn, systemPrompt string, tools []protocol.Tool) *Request {
	req := &Request{
		Contents: translateTurns(turns),
		GenerationConfig: &GenerationConfig{
			MaxOutputTokens: g.maxTokens,
			Temperature:     g.temperature,
		},
		SafetySettings: noBlocking,
	}
	if systemPrompt != "" {
		req.SystemInstruction = &SystemInstruction{Parts: []Part{{Text: systemPrompt}}}
	}
	if len(tools) > 0 {
		declarations := make([]FunctionDeclaration, 0, len(tools))
		for _, t := range tools {
			declarations = append(declarations, FunctionDeclaration{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			})
		}
		req.Tools = []Tool{{FunctionDeclarations: declarations}}
	}
	return req
}

// translateTurns maps history turns to the wire role/part structure. Turns
// with no representable content are skipped, never emitted as empty parts.
func translateTurns(turns []protocol.Turn) []Content {
	contents := make([]Content, 0, len(turns))
	for _, turn := range turns {
		switch turn.Kind {
		case protocol.KindUser:
			if turn.Text == "" {
				continue
			}
			contents = append(contents, Content{Role: roleUser, Parts: []Part{{Text: turn.Text}}})
		case protocol.KindModelText:
			if turn.Text == "" {
				continue
			}
			contents = append(contents, Content{Role: roleModel, Parts: []Part{{Text: turn.Text}}})
		case protocol.KindToolCall:
			if turn.FunctionName == "" {
				continue
			}
			contents = append(contents, Content{Role: roleModel, Parts: []Part{{
				FunctionCall: &FunctionCall{Name: turn.FunctionName, Args: turn.Arguments},
			}}})
		case protocol.KindToolResult:
			if turn.FunctionName == "" {
				continue
			}
			contents = append(contents, Content{Role: roleTool, Parts: []Part{{
				FunctionResponse: &FunctionResponse{Name: turn.FunctionName, Response: turn.Result},
			}}})
		}
	}
	return contents
}

// parseReply extracts the concatenated text across all text-bearing parts of
// the first candidate, and detects a function call in the first candidate's
// first part. At most one call is supported per turn; later parts are not
// inspected for calls.
func parseReply(resp *Response) *Reply {
	reply := &Reply{}
	if len(resp.Candidates) == 0 {
		return reply
	}

	parts := resp.Candidates[0].Content.Parts

	var texts []string
	for _, p := range parts {
		if p.Text != "" {
			texts = append(texts, p.Text)
		}
	}
	reply.Text = strings.Join(texts, "\n")

	if len(parts) > 0 && parts[0].FunctionCall != nil && parts[0].FunctionCall.Name != "" {
		reply.ToolCall = &protocol.ToolCall{
			Name: parts[0].FunctionCall.Name,
			Args: parts[0].FunctionCall.Args,
		}
	}
	return reply
}
