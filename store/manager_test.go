// ABOUTME: Tests for the Store's append/load/list/recover contract.
// ABOUTME: Uses t.TempDir so each test gets an isolated on-disk store home.

package store

import (
	"testing"

	"github.com/2389-research/bytecraft/core"
)

func TestAppendAndLoadTurns(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() { _ = s.Close() }()

	sessionID, err := s.CreateSession("")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	turn1 := core.NewTurn(sessionID, core.RoleUser, "fix the login bug")
	turn2 := core.NewTurn(sessionID, core.RoleAssistant, "looking into it")

	if err := s.AppendTurn(sessionID, turn1); err != nil {
		t.Fatalf("append turn1: %v", err)
	}
	if err := s.AppendTurn(sessionID, turn2); err != nil {
		t.Fatalf("append turn2: %v", err)
	}

	turns, err := s.LoadTurns(sessionID)
	if err != nil {
		t.Fatalf("load turns: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Content != turn1.Content || turns[1].Content != turn2.Content {
		t.Fatalf("turns out of order or mismatched: %+v", turns)
	}

	meta, ok, err := s.GetSessionMeta(sessionID)
	if err != nil {
		t.Fatalf("get meta: %v", err)
	}
	if !ok {
		t.Fatalf("expected session metadata to exist")
	}
	if meta.MessageCount != 2 {
		t.Fatalf("expected message count 2, got %d", meta.MessageCount)
	}
	if meta.Title != core.TitleFromMessage(turn1.Content) {
		t.Fatalf("expected derived title %q, got %q", core.TitleFromMessage(turn1.Content), meta.Title)
	}
}

func TestLoadTurnsEmptySessionIsNotAnError(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() { _ = s.Close() }()

	turns, err := s.LoadTurns("nonexistent-session")
	if err != nil {
		t.Fatalf("expected no error for missing session, got %v", err)
	}
	if len(turns) != 0 {
		t.Fatalf("expected no turns, got %d", len(turns))
	}
}

func TestListSessionsOrderedByUpdatedDescending(t *testing.T) {
	home := t.TempDir()
	s, err := Open(home)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() { _ = s.Close() }()

	first, _ := s.CreateSession("")
	second, _ := s.CreateSession("")

	if err := s.AppendTurn(first, core.NewTurn(first, core.RoleUser, "first session")); err != nil {
		t.Fatalf("append to first: %v", err)
	}
	if err := s.AppendTurn(second, core.NewTurn(second, core.RoleUser, "second session")); err != nil {
		t.Fatalf("append to second: %v", err)
	}

	summaries, err := s.ListSessions()
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(summaries))
	}
	if summaries[0].ID != second {
		t.Fatalf("expected most recently updated session first, got %s", summaries[0].ID)
	}
}

func TestLastSessionPointer(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() { _ = s.Close() }()

	if _, ok, err := s.GetLastSession(); err != nil || ok {
		t.Fatalf("expected no last session recorded yet, ok=%v err=%v", ok, err)
	}

	if err := s.SetLastSession("session-abc"); err != nil {
		t.Fatalf("set last session: %v", err)
	}

	id, ok, err := s.GetLastSession()
	if err != nil {
		t.Fatalf("get last session: %v", err)
	}
	if !ok || id != "session-abc" {
		t.Fatalf("expected session-abc, got %q ok=%v", id, ok)
	}
}

func TestDeleteSessionRemovesTurnsAndMetadata(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() { _ = s.Close() }()

	sessionID, err := s.CreateSession("throwaway")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := s.AppendTurn(sessionID, core.NewTurn(sessionID, core.RoleUser, "hello")); err != nil {
		t.Fatalf("append turn: %v", err)
	}

	if err := s.DeleteSession(sessionID); err != nil {
		t.Fatalf("delete session: %v", err)
	}

	if _, ok, err := s.GetSessionMeta(sessionID); err != nil || ok {
		t.Fatalf("expected metadata entry gone, ok=%v err=%v", ok, err)
	}

	turns, err := s.LoadTurns(sessionID)
	if err != nil {
		t.Fatalf("load turns after delete: %v", err)
	}
	if len(turns) != 0 {
		t.Fatalf("expected no turns after delete, got %d", len(turns))
	}
}

func TestDeleteSessionOnUnknownIDIsNoOp(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() { _ = s.Close() }()

	if err := s.DeleteSession("does-not-exist"); err != nil {
		t.Fatalf("expected deleting an unknown session to be a no-op, got %v", err)
	}
}

func TestRecoverAllRebuildsMetadataFromLog(t *testing.T) {
	home := t.TempDir()
	s, err := Open(home)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	sessionID, err := s.CreateSession("")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := s.AppendTurn(sessionID, core.NewTurn(sessionID, core.RoleUser, "hello")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Reopen as a fresh Store, simulating a new process, and recover.
	s2, err := Open(home)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer func() { _ = s2.Close() }()

	if err := s2.RecoverAll(); err != nil {
		t.Fatalf("recover all: %v", err)
	}

	meta, ok, err := s2.GetSessionMeta(sessionID)
	if err != nil || !ok {
		t.Fatalf("expected recovered metadata, ok=%v err=%v", ok, err)
	}
	if meta.MessageCount != 1 {
		t.Fatalf("expected message count 1, got %d", meta.MessageCount)
	}
}
