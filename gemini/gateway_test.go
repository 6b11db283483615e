package gemini_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tailored-agentic-units/relay/core/protocol"
	"github.com/tailored-agentic-units/relay/gemini"
	"github.com/tailored-agentic-units/relay/retry"
	"github.com/tailored-agentic-units/relay/session"
)

// textResponse is a minimal generateContent response with one text part.
func textResponse(texts ...string) string {
	parts := make([]map[string]any, 0, len(texts))
	for _, t := range texts {
		parts = append(parts, map[string]any{"text": t})
	}
	body, _ := json.Marshal(map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"role": "model", "parts": parts}},
		},
	})
	return string(body)
}

func newTestGateway(t *testing.T, handler http.HandlerFunc) (*gemini.Gateway, *session.Store) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := session.NewStore(40)
	cfg := gemini.DefaultConfig()
	policy := retry.DefaultPolicy()
	policy.BackoffBase = time.Millisecond
	gw := gemini.New("test-key", &cfg, store,
		gemini.WithBaseURL(srv.URL),
		gemini.WithHTTPClient(retry.NewClient(5*time.Second, policy)),
	)
	return gw, store
}

func TestSend_BuildsWireRequest(t *testing.T) {
	var got gemini.Request
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "gemini-1.5-flash:generateContent")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))

		fmt.Fprint(w, textResponse("ok"))
	})

	tools := []protocol.Tool{{
		Name:        "perform_d100_check",
		Description: "d100 resolution check",
		Parameters: map[string]any{
			"type": "OBJECT",
			"properties": map[string]any{
				"success_rate": map[string]any{"type": "NUMBER"},
			},
			"required": []any{"success_rate"},
		},
	}}

	_, err := gw.Send(context.Background(), gemini.Message{
		SessionID:    "alpha",
		Prompt:       "I open the door",
		SystemPrompt: "You are the game master.",
		Tools:        tools,
	})
	require.NoError(t, err)

	require.Len(t, got.Contents, 1)
	assert.Equal(t, "user", got.Contents[0].Role)
	assert.Equal(t, "I open the door", got.Contents[0].Parts[0].Text)

	require.NotNil(t, got.SystemInstruction)
	assert.Equal(t, "You are the game master.", got.SystemInstruction.Parts[0].Text)

	require.NotNil(t, got.GenerationConfig)
	assert.Equal(t, gemini.DefaultMaxOutputTokens, got.GenerationConfig.MaxOutputTokens)
	assert.InDelta(t, gemini.DefaultTemperature, got.GenerationConfig.Temperature, 1e-9)

	require.Len(t, got.SafetySettings, 5)
	for _, s := range got.SafetySettings {
		assert.Equal(t, "BLOCK_NONE", s.Threshold)
	}

	require.Len(t, got.Tools, 1)
	require.Len(t, got.Tools[0].FunctionDeclarations, 1)
	assert.Equal(t, "perform_d100_check", got.Tools[0].FunctionDeclarations[0].Name)
}

func TestSend_RecordsTurns(t *testing.T) {
	gw, store := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, textResponse("The door creaks open."))
	})

	reply, err := gw.Send(context.Background(), gemini.Message{
		SessionID: "alpha",
		Prompt:    "I open the door",
	})
	require.NoError(t, err)
	assert.Equal(t, "The door creaks open.", reply.Text)
	assert.Nil(t, reply.ToolCall)

	turns := store.GetRecent("alpha", 10)
	require.Len(t, turns, 2)
	assert.Equal(t, protocol.KindUser, turns[0].Kind)
	assert.Equal(t, protocol.KindModelText, turns[1].Kind)
	assert.Equal(t, "The door creaks open.", turns[1].Text)
}

func TestSend_JoinsTextParts(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, textResponse("first", "second"))
	})

	reply, err := gw.Send(context.Background(), gemini.Message{SessionID: "alpha", Prompt: "go"})
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond", reply.Text)
}

func TestSend_DetectsFunctionCall(t *testing.T) {
	gw, store := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates":[{"content":{"role":"model","parts":[
			{"functionCall":{"name":"perform_d100_check","args":{"success_rate":65}}}
		]}}]}`)
	})

	reply, err := gw.Send(context.Background(), gemini.Message{SessionID: "alpha", Prompt: "I sneak past"})
	require.NoError(t, err)

	require.NotNil(t, reply.ToolCall)
	assert.Equal(t, "perform_d100_check", reply.ToolCall.Name)
	assert.Equal(t, float64(65), reply.ToolCall.Args["success_rate"])
	assert.Empty(t, reply.Text)

	turns := store.GetRecent("alpha", 10)
	require.Len(t, turns, 2)
	assert.Equal(t, protocol.KindToolCall, turns[1].Kind)
	assert.Equal(t, "perform_d100_check", turns[1].FunctionName)
}

func TestSend_CallInLaterPartIgnored(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates":[{"content":{"role":"model","parts":[
			{"text":"narration"},
			{"functionCall":{"name":"perform_d100_check","args":{"success_rate":65}}}
		]}}]}`)
	})

	reply, err := gw.Send(context.Background(), gemini.Message{SessionID: "alpha", Prompt: "go"})
	require.NoError(t, err)
	assert.Equal(t, "narration", reply.Text)
	assert.Nil(t, reply.ToolCall, "only the first part is inspected for calls")
}

func TestSend_ToolReturnRoundTrip(t *testing.T) {
	var got gemini.Request
	gw, store := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		fmt.Fprint(w, textResponse("You slip through unseen."))
	})

	store.AddUser("alpha", "I sneak past")
	store.AddToolCall("alpha", "perform_d100_check", map[string]any{"success_rate": float64(65)})

	reply, err := gw.Send(context.Background(), gemini.Message{
		SessionID:    "alpha",
		ToolReturn:   true,
		FunctionName: "perform_d100_check",
		Result:       map[string]any{"result": "rolled 12: success (rate 65)"},
	})
	require.NoError(t, err)
	assert.Equal(t, "You slip through unseen.", reply.Text)

	// user, model call, tool result as the wire history.
	require.Len(t, got.Contents, 3)
	assert.Equal(t, "user", got.Contents[0].Role)
	assert.Equal(t, "model", got.Contents[1].Role)
	require.NotNil(t, got.Contents[1].Parts[0].FunctionCall)
	assert.Equal(t, "tool", got.Contents[2].Role)
	require.NotNil(t, got.Contents[2].Parts[0].FunctionResponse)
	assert.Equal(t, "perform_d100_check", got.Contents[2].Parts[0].FunctionResponse.Name)

	turns := store.GetRecent("alpha", 10)
	require.Len(t, turns, 4)
	assert.Equal(t, protocol.KindToolResult, turns[2].Kind)
	assert.Equal(t, protocol.KindModelText, turns[3].Kind)
}

func TestSend_HistoryWindowBounded(t *testing.T) {
	var got gemini.Request
	gw, store := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		fmt.Fprint(w, textResponse("ok"))
	})

	for i := 0; i < 15; i++ {
		store.AddUser("alpha", fmt.Sprintf("old message %d", i))
	}

	_, err := gw.Send(context.Background(), gemini.Message{SessionID: "alpha", Prompt: "latest"})
	require.NoError(t, err)

	assert.Len(t, got.Contents, gemini.DefaultHistoryTurns)
	assert.Equal(t, "latest", got.Contents[len(got.Contents)-1].Parts[0].Text)
}

func TestSend_NonOKStatusIsFatal(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":"quota"}`)
	})

	_, err := gw.Send(context.Background(), gemini.Message{SessionID: "alpha", Prompt: "go"})
	require.ErrorIs(t, err, gemini.ErrRequestFailed)
	assert.Contains(t, err.Error(), "403")
}

func TestSend_EmptySessionSendsOnlyPrompt(t *testing.T) {
	var got gemini.Request
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		fmt.Fprint(w, textResponse("ok"))
	})

	_, err := gw.Send(context.Background(), gemini.Message{Prompt: "one-shot"})
	require.NoError(t, err)

	require.Len(t, got.Contents, 1)
	assert.Equal(t, "one-shot", got.Contents[0].Parts[0].Text)
}

func TestGenerateContent_MissingAPIKey(t *testing.T) {
	client := gemini.NewClient("", "gemini-1.5-flash")
	_, err := client.GenerateContent(context.Background(), &gemini.Request{})
	require.ErrorIs(t, err, gemini.ErrMissingAPIKey)
}

func TestSend_EmptyCandidates(t *testing.T) {
	gw, store := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates":[]}`)
	})

	reply, err := gw.Send(context.Background(), gemini.Message{SessionID: "alpha", Prompt: "go"})
	require.NoError(t, err)
	assert.Empty(t, reply.Text)
	assert.Nil(t, reply.ToolCall)

	// Nothing but the user turn recorded.
	turns := store.GetRecent("alpha", 10)
	require.Len(t, turns, 1)
	assert.Equal(t, protocol.KindUser, turns[0].Kind)
}
