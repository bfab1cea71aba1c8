// ABOUTME: Tests for append-only JSONL log durability, replay, and repair behavior.

package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/2389-research/bytecraft/core"
)

func TestJsonlAppendAndReplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "turns.jsonl")

	log, err := OpenJsonl(path)
	if err != nil {
		t.Fatalf("open jsonl: %v", err)
	}

	turn := core.NewTurn("s1", core.RoleUser, "hello world")
	if err := log.Append(turn); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := log.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	turns, err := ReplayJsonl(path)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if len(turns) != 1 || turns[0].Content != "hello world" {
		t.Fatalf("unexpected replay result: %+v", turns)
	}
}

func TestReplayMissingFileReturnsEmpty(t *testing.T) {
	turns, err := ReplayJsonl(filepath.Join(t.TempDir(), "missing.jsonl"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if len(turns) != 0 {
		t.Fatalf("expected empty slice, got %d turns", len(turns))
	}
}

func TestReplayTolerantOfCorruptedTrailingLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "turns.jsonl")

	log, err := OpenJsonl(path)
	if err != nil {
		t.Fatalf("open jsonl: %v", err)
	}
	if err := log.Append(core.NewTurn("s1", core.RoleUser, "complete turn")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := log.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Simulate a crash mid-write: append a truncated JSON fragment.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("reopen for corruption: %v", err)
	}
	if _, err := f.WriteString(`{"uuid":"broken`); err != nil {
		t.Fatalf("write corrupted line: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close corrupted file: %v", err)
	}

	turns, err := ReplayJsonl(path)
	if err != nil {
		t.Fatalf("replay should tolerate trailing corruption, got %v", err)
	}
	if len(turns) != 1 {
		t.Fatalf("expected 1 valid turn, got %d", len(turns))
	}
}

func TestRepairJsonlDiscardsCorruptedTrailingLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "turns.jsonl")

	log, err := OpenJsonl(path)
	if err != nil {
		t.Fatalf("open jsonl: %v", err)
	}
	if err := log.Append(core.NewTurn("s1", core.RoleUser, "kept")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := log.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("reopen for corruption: %v", err)
	}
	if _, err := f.WriteString(`{"uuid":"trunc`); err != nil {
		t.Fatalf("write corrupted line: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close corrupted file: %v", err)
	}

	count, err := RepairJsonl(path)
	if err != nil {
		t.Fatalf("repair: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 valid line retained, got %d", count)
	}

	turns, err := ReplayJsonl(path)
	if err != nil {
		t.Fatalf("replay after repair: %v", err)
	}
	if len(turns) != 1 || turns[0].Content != "kept" {
		t.Fatalf("unexpected turns after repair: %+v", turns)
	}
}
