// ABOUTME: Round-trip and helper tests for the Turn wire schema.
// ABOUTME: Exercises JSON marshal/unmarshal fidelity including unknown-field preservation.

package core

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestTurnRoundTrip(t *testing.T) {
	orig := NewTurn("session-1", RoleAssistant, "hello there")
	orig.ToolCalls = []ToolCallRequest{{ID: "call_1", Name: "read_file", Arguments: json.RawMessage(`{"file_path":"a.go"}`)}}

	data, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded Turn
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if decoded.UUID != orig.UUID || decoded.Content != orig.Content || decoded.Type != orig.Type {
		t.Fatalf("round trip mismatch: got %+v, want %+v", decoded, orig)
	}
	if len(decoded.ToolCalls) != 1 || decoded.ToolCalls[0].Name != "read_file" {
		t.Fatalf("tool calls did not round-trip: %+v", decoded.ToolCalls)
	}
}

func TestTurnUnmarshalPreservesUnknownFields(t *testing.T) {
	line := `{"uuid":"abc","sessionId":"s1","type":"user","message":{"role":"user","content":"hi"},"isSidechain":false,"futureField":"keep-me"}`

	var turn Turn
	if err := json.Unmarshal([]byte(line), &turn); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if turn.Content != "hi" {
		t.Fatalf("content not parsed: %q", turn.Content)
	}

	raw, ok := turn.Extra["futureField"]
	if !ok {
		t.Fatalf("expected futureField to be preserved in Extra, got %+v", turn.Extra)
	}
	if string(raw) != `"keep-me"` {
		t.Fatalf("unexpected extra value: %s", raw)
	}

	out, err := json.Marshal(turn)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(out), "futureField") {
		t.Fatalf("expected re-marshal to retain futureField, got %s", out)
	}
}

func TestTitleFromMessageTruncates(t *testing.T) {
	short := "fix the bug"
	if got := TitleFromMessage(short); got != short {
		t.Fatalf("expected short message unchanged, got %q", got)
	}

	long := strings.Repeat("a", 80)
	got := TitleFromMessage(long)
	if len([]rune(got)) != 50 {
		t.Fatalf("expected 50-rune title, got %d runes", len([]rune(got)))
	}
}

func TestNewTurnSetsTimestamp(t *testing.T) {
	before := time.Now().Add(-time.Second)
	turn := NewTurn("s1", RoleUser, "hi")
	if turn.Timestamp.Before(before) {
		t.Fatalf("expected recent timestamp, got %v", turn.Timestamp)
	}
	if turn.UUID == "" {
		t.Fatalf("expected non-empty turn id")
	}
}
