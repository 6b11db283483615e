package session_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/tailored-agentic-units/relay/core/protocol"
	"github.com/tailored-agentic-units/relay/session"
)

func TestStore_AppendAndGetRecent(t *testing.T) {
	s := session.NewStore(10)

	s.AddUser("alpha", "hello")
	s.AddModelText("alpha", "hi there")
	s.AddToolCall("alpha", "perform_d100_check", map[string]any{"success_rate": float64(50)})
	s.AddToolResult("alpha", "perform_d100_check", "rolled 3: success")

	turns := s.GetRecent("alpha", 10)
	if len(turns) != 4 {
		t.Fatalf("got %d turns, want 4", len(turns))
	}

	wantKinds := []protocol.Kind{
		protocol.KindUser,
		protocol.KindModelText,
		protocol.KindToolCall,
		protocol.KindToolResult,
	}
	for i, turn := range turns {
		if turn.Kind != wantKinds[i] {
			t.Errorf("turn %d: got kind %q, want %q", i, turn.Kind, wantKinds[i])
		}
	}
}

func TestStore_GetRecentWindow(t *testing.T) {
	s := session.NewStore(40)
	for i := 0; i < 6; i++ {
		s.AddUser("alpha", fmt.Sprintf("message %d", i))
	}

	turns := s.GetRecent("alpha", 3)
	if len(turns) != 3 {
		t.Fatalf("got %d turns, want 3", len(turns))
	}
	// Oldest first within the window.
	for i, want := range []string{"message 3", "message 4", "message 5"} {
		if turns[i].Text != want {
			t.Errorf("turn %d: got %q, want %q", i, turns[i].Text, want)
		}
	}
}

func TestStore_EvictsOldestFIFO(t *testing.T) {
	const max = 5
	s := session.NewStore(max)

	for i := 0; i < max+3; i++ {
		s.AddUser("alpha", fmt.Sprintf("message %d", i))
	}

	if got := s.Len("alpha"); got != max {
		t.Fatalf("got %d stored turns, want %d", got, max)
	}

	turns := s.GetRecent("alpha", max)
	if turns[0].Text != "message 3" {
		t.Errorf("oldest surviving turn is %q, want %q", turns[0].Text, "message 3")
	}
	if turns[max-1].Text != "message 7" {
		t.Errorf("newest turn is %q, want %q", turns[max-1].Text, "message 7")
	}
}

func TestStore_EmptySessionIDIsNoOp(t *testing.T) {
	s := session.NewStore(10)

	s.AddUser("", "dropped")
	s.AddModelText("", "dropped")

	if got := s.GetRecent("", 10); got != nil {
		t.Errorf("got %v, want nil", got)
	}
}

func TestStore_GetRecentEdgeCases(t *testing.T) {
	s := session.NewStore(10)
	s.AddUser("alpha", "hello")

	if got := s.GetRecent("unknown", 10); got != nil {
		t.Errorf("unknown session: got %v, want nil", got)
	}
	if got := s.GetRecent("alpha", 0); got != nil {
		t.Errorf("zero maxTurns: got %v, want nil", got)
	}
	if got := s.GetRecent("alpha", -1); got != nil {
		t.Errorf("negative maxTurns: got %v, want nil", got)
	}
}

func TestStore_Clear(t *testing.T) {
	s := session.NewStore(10)
	s.AddUser("alpha", "hello")
	s.AddUser("beta", "hola")

	s.Clear("alpha")

	if got := s.GetRecent("alpha", 10); got != nil {
		t.Errorf("cleared session still has turns: %v", got)
	}
	if got := s.Len("beta"); got != 1 {
		t.Errorf("other session affected by clear: got %d turns, want 1", got)
	}
}

func TestStore_DefensiveCopy(t *testing.T) {
	s := session.NewStore(10)
	s.AddUser("alpha", "hello")

	turns := s.GetRecent("alpha", 10)
	turns[0] = protocol.ModelTextTurn("tampered")

	original := s.GetRecent("alpha", 10)
	if original[0].Text != "hello" {
		t.Errorf("stored turn was mutated through the returned slice: %q", original[0].Text)
	}
}

func TestStore_ConcurrentAppends(t *testing.T) {
	const (
		sessions  = 4
		perWriter = 50
	)
	s := session.NewStore(session.DefaultMaxTurns)

	var wg sync.WaitGroup
	for i := 0; i < sessions; i++ {
		id := fmt.Sprintf("session-%d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				s.AddUser(id, "message")
				s.GetRecent(id, 10)
			}
		}()
	}
	wg.Wait()

	for i := 0; i < sessions; i++ {
		id := fmt.Sprintf("session-%d", i)
		if got := s.Len(id); got != session.DefaultMaxTurns {
			t.Errorf("%s: got %d turns, want %d", id, got, session.DefaultMaxTurns)
		}
	}
}
