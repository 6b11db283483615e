package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/tailored-agentic-units/relay/observability"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		name  string
		level observability.Level
		want  string
	}{
		{name: "trace range", level: 1, want: "TRACE"},
		{name: "verbose maps to DEBUG", level: observability.LevelVerbose, want: "DEBUG"},
		{name: "info maps to INFO", level: observability.LevelInfo, want: "INFO"},
		{name: "warning maps to WARN", level: observability.LevelWarning, want: "WARN"},
		{name: "error maps to ERROR", level: observability.LevelError, want: "ERROR"},
		{name: "fatal range", level: 21, want: "FATAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.level.String(); got != tt.want {
				t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
			}
		})
	}
}

func TestSlogObserver_OnEvent(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	obs := observability.NewSlogObserver(logger)

	obs.OnEvent(context.Background(), observability.Event{
		Type:      "relay.message.accepted",
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "relay.HandleMessage",
		Data:      map[string]any{"session_id": "alpha"},
	})

	out := buf.String()
	if !strings.Contains(out, "relay.message.accepted") {
		t.Errorf("log output missing event type: %s", out)
	}
	if !strings.Contains(out, "session_id=alpha") {
		t.Errorf("log output missing data attribute: %s", out)
	}
	if !strings.Contains(out, "source=relay.HandleMessage") {
		t.Errorf("log output missing source: %s", out)
	}
}

func TestMultiObserver_FansOut(t *testing.T) {
	var first, second []observability.Event
	obs := observability.NewMultiObserver(
		observerFunc(func(e observability.Event) { first = append(first, e) }),
		nil,
		observerFunc(func(e observability.Event) { second = append(second, e) }),
	)

	obs.OnEvent(context.Background(), observability.Event{Type: "relay.session.busy"})

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("got %d/%d events, want 1/1", len(first), len(second))
	}
}

type observerFunc func(observability.Event)

func (f observerFunc) OnEvent(_ context.Context, e observability.Event) { f(e) }
