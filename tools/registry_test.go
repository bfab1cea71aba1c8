// ABOUTME: Tests for ToolRegistry registration/lookup and the output truncation helpers.

package tools

import (
	"strings"
	"testing"

	"github.com/2389-research/bytecraft/llm"
)

func TestNewToolRegistryStartsEmpty(t *testing.T) {
	r := NewToolRegistry()
	if r.Count() != 0 {
		t.Fatalf("expected empty registry, got count %d", r.Count())
	}
}

func TestRegisterAndGet(t *testing.T) {
	r := NewToolRegistry()
	tool := &RegisteredTool{
		Definition: llm.ToolDefinition{Name: "read_file", Description: "reads a file"},
		Execute: func(args map[string]any, env ExecutionEnvironment) (string, error) {
			return "contents", nil
		},
	}
	if err := r.Register(tool); err != nil {
		t.Fatalf("register: %v", err)
	}

	got := r.Get("read_file")
	if got == nil {
		t.Fatalf("expected to find registered tool")
	}
	if !r.Has("read_file") {
		t.Fatalf("expected Has to report true")
	}
	if r.Count() != 1 {
		t.Fatalf("expected count 1, got %d", r.Count())
	}
}

func TestRegisterRejectsEmptyName(t *testing.T) {
	r := NewToolRegistry()
	err := r.Register(&RegisteredTool{Definition: llm.ToolDefinition{Name: ""}})
	if err == nil {
		t.Fatalf("expected error registering a tool with an empty name")
	}
}

func TestUnregisterRemovesTool(t *testing.T) {
	r := NewToolRegistry()
	_ = r.Register(&RegisteredTool{Definition: llm.ToolDefinition{Name: "shell"}})

	if !r.Unregister("shell") {
		t.Fatalf("expected Unregister to report the tool existed")
	}
	if r.Has("shell") {
		t.Fatalf("expected shell to be gone after Unregister")
	}
	if r.Unregister("shell") {
		t.Fatalf("expected a second Unregister to report false")
	}
}

func TestDefinitionsReturnsAllRegistered(t *testing.T) {
	r := NewToolRegistry()
	_ = r.Register(&RegisteredTool{Definition: llm.ToolDefinition{Name: "grep"}})
	_ = r.Register(&RegisteredTool{Definition: llm.ToolDefinition{Name: "glob"}})

	defs := r.Definitions()
	if len(defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(defs))
	}
}

func TestNamesReturnsEveryRegisteredName(t *testing.T) {
	r := NewToolRegistry()
	_ = r.Register(&RegisteredTool{Definition: llm.ToolDefinition{Name: "edit_file"}})
	_ = r.Register(&RegisteredTool{Definition: llm.ToolDefinition{Name: "write_file"}})

	names := r.Names()
	if len(names) != 2 {
		t.Fatalf("expected 2 names, got %d", len(names))
	}
}

func TestTruncateOutputHeadTailKeepsBothEnds(t *testing.T) {
	output := strings.Repeat("a", 5000) + strings.Repeat("b", 5000)
	result := TruncateOutput(output, 2000, "head_tail")

	if !strings.HasPrefix(result, strings.Repeat("a", 1000)) {
		t.Fatalf("expected result to retain the head")
	}
	if !strings.HasSuffix(result, strings.Repeat("b", 1000)) {
		t.Fatalf("expected result to retain the tail")
	}
	if !strings.Contains(result, "truncated") {
		t.Fatalf("expected a truncation warning in the result")
	}
}

func TestTruncateOutputTailKeepsLastNChars(t *testing.T) {
	output := strings.Repeat("x", 100) + "END"
	result := TruncateOutput(output, 3, "tail")

	if !strings.HasSuffix(result, "END") {
		t.Fatalf("expected tail mode to keep the trailing characters, got %q", result)
	}
}

func TestTruncateOutputNoopUnderLimit(t *testing.T) {
	output := "short"
	if got := TruncateOutput(output, 100, "tail"); got != output {
		t.Fatalf("expected output under the limit to be returned unchanged, got %q", got)
	}
}

func TestTruncateLinesKeepsHeadAndTail(t *testing.T) {
	lines := make([]string, 20)
	for i := range lines {
		lines[i] = "line"
	}
	output := strings.Join(lines, "\n")

	result := TruncateLines(output, 10)
	if !strings.Contains(result, "omitted") {
		t.Fatalf("expected an omission marker, got %q", result)
	}
}

func TestTruncateLinesNoopUnderLimit(t *testing.T) {
	output := "a\nb\nc"
	if got := TruncateLines(output, 10); got != output {
		t.Fatalf("expected output under the line limit unchanged, got %q", got)
	}
}

func TestTruncateToolOutputUsesPerToolPolicy(t *testing.T) {
	output := strings.Repeat("z", 2000)
	result := TruncateToolOutput(output, "write_file", nil)
	if len(result) >= len(output) {
		t.Fatalf("expected write_file's tight 1000-char ceiling to truncate a 2000-char output")
	}
}

func TestTruncateToolOutputUnknownToolUsesDefaultPolicy(t *testing.T) {
	output := strings.Repeat("z", 100)
	result := TruncateToolOutput(output, "some_mcp_server_tool", nil)
	if result != output {
		t.Fatalf("expected a short output under the default 30000-char ceiling to pass through unchanged")
	}
}

func TestTruncateToolOutputLimitsOverride(t *testing.T) {
	output := strings.Repeat("z", 1000)
	result := TruncateToolOutput(output, "read_file", map[string]int{"read_file": 10})
	if len(result) >= len(output) {
		t.Fatalf("expected the override limit to force truncation")
	}
}

func TestTruncateToolOutputAppliesLineLimitAfterCharLimit(t *testing.T) {
	lines := make([]string, 500)
	for i := range lines {
		lines[i] = "match line"
	}
	output := strings.Join(lines, "\n")

	result := TruncateToolOutput(output, "grep", nil)
	if !strings.Contains(result, "omitted") {
		t.Fatalf("expected grep's 200-line ceiling to trigger line-based truncation")
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewToolRegistry()
	done := make(chan struct{})

	for i := 0; i < 10; i++ {
		go func(n int) {
			_ = r.Register(&RegisteredTool{Definition: llm.ToolDefinition{Name: "tool"}})
			r.Get("tool")
			r.Names()
			r.Count()
			done <- struct{}{}
		}(i)
	}
	for i := 0; i < 10; i++ {
		<-done
	}
}
