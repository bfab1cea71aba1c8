// ABOUTME: Tests for the dispatcher's JSON-in/JSON-out contract and safety-policy enforcement.

package tools

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, string) {
	t.Helper()
	dir := t.TempDir()
	env := NewLocalExecutionEnvironment(dir)
	if err := env.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	registry := NewToolRegistry()
	RegisterCoreTools(registry)
	return NewDispatcher(registry, env, nil), dir
}

func TestDispatcherUnknownToolReturnsStructuredError(t *testing.T) {
	d, _ := newTestDispatcher(t)
	raw := d.Invoke("does_not_exist", "{}")

	var result Result
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		t.Fatalf("expected valid JSON, got %q: %v", raw, err)
	}
	if result.Success || result.Error != "unknown tool" {
		t.Fatalf("expected unknown tool error, got %+v", result)
	}
}

func TestDispatcherInvalidArgumentsJSONReturnsStructuredError(t *testing.T) {
	d, _ := newTestDispatcher(t)
	raw := d.Invoke("read_file", "not json")

	var result Result
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		t.Fatalf("expected valid JSON, got %q: %v", raw, err)
	}
	if result.Success {
		t.Fatalf("expected failure for invalid argument JSON")
	}
}

func TestDispatcherWriteThenReadFileRoundTrips(t *testing.T) {
	d, dir := newTestDispatcher(t)

	writeArgs, _ := json.Marshal(map[string]any{"file_path": "hello.txt", "content": "hello world"})
	raw := d.Invoke("write_file", string(writeArgs))
	var writeResult Result
	json.Unmarshal([]byte(raw), &writeResult)
	if !writeResult.Success {
		t.Fatalf("expected write_file to succeed, got %+v", writeResult)
	}

	if _, err := os.Stat(filepath.Join(dir, "hello.txt")); err != nil {
		t.Fatalf("expected file to exist on disk: %v", err)
	}

	readArgs, _ := json.Marshal(map[string]any{"file_path": "hello.txt"})
	raw = d.Invoke("read_file", string(readArgs))
	var readResult Result
	json.Unmarshal([]byte(raw), &readResult)
	if !readResult.Success {
		t.Fatalf("expected read_file to succeed, got %+v", readResult)
	}
}

func TestDispatcherRejectsAbsolutePath(t *testing.T) {
	d, _ := newTestDispatcher(t)
	args, _ := json.Marshal(map[string]any{"file_path": "/etc/passwd", "offset": 0, "limit": 10})
	raw := d.Invoke("read_file", string(args))

	var result Result
	json.Unmarshal([]byte(raw), &result)
	if result.Success {
		t.Fatalf("expected absolute path to be rejected")
	}
}

func TestDispatcherRejectsPathTraversal(t *testing.T) {
	d, _ := newTestDispatcher(t)
	args, _ := json.Marshal(map[string]any{"file_path": "../../etc/passwd"})
	raw := d.Invoke("read_file", string(args))

	var result Result
	json.Unmarshal([]byte(raw), &result)
	if result.Success {
		t.Fatalf("expected path traversal to be rejected")
	}
}

func TestDispatcherRejectsDestructiveShellCommand(t *testing.T) {
	d, _ := newTestDispatcher(t)
	args, _ := json.Marshal(map[string]any{"command": "rm -rf /"})
	raw := d.Invoke("shell", string(args))

	var result Result
	json.Unmarshal([]byte(raw), &result)
	if result.Success {
		t.Fatalf("expected destructive command to be rejected")
	}
}

func TestDispatcherAlwaysReturnsValidJSON(t *testing.T) {
	d, _ := newTestDispatcher(t)
	for _, raw := range []string{
		d.Invoke("shell", `{"command": "echo hi"}`),
		d.Invoke("nonexistent", `{}`),
		d.Invoke("read_file", `garbage`),
	} {
		var v map[string]any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			t.Fatalf("expected valid JSON string from dispatcher, got %q", raw)
		}
	}
}
