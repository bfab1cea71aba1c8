// ABOUTME: Tests for Markdown/HTML transcript rendering, including script-tag and dangerous-URL sanitization.

package export

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/2389-research/bytecraft/core"
)

func sampleTurns() []core.Turn {
	assistant := core.NewTurn("s1", core.RoleAssistant, "Sure, let me check.")
	assistant.ToolCalls = []core.ToolCallRequest{
		{ID: "call-1", Name: "read_file", Arguments: json.RawMessage(`{"path":"a.go"}`)},
	}
	toolResult := core.NewTurn("s1", core.RoleTool, `{"success":true}`)
	toolResult.ToolResult = &core.ToolResultInfo{CallID: "call-1", Name: "read_file", Content: `{"success":true}`}

	return []core.Turn{
		core.NewTurn("s1", core.RoleUser, "What does a.go do?"),
		assistant,
		toolResult,
		core.NewTurn("s1", core.RoleAssistant, "It defines the main entrypoint."),
	}
}

func TestToMarkdownIncludesTitleAndEachTurn(t *testing.T) {
	md := ToMarkdown("Debugging session", sampleTurns())

	if !strings.HasPrefix(md, "# Debugging session\n\n") {
		t.Fatalf("expected markdown to start with the title heading, got %q", md[:min(40, len(md))])
	}
	if !strings.Contains(md, "What does a.go do?") {
		t.Fatalf("expected user turn content in markdown output")
	}
	if !strings.Contains(md, "*calls `read_file`*") {
		t.Fatalf("expected assistant tool call to be rendered")
	}
	if !strings.Contains(md, "```\n{\"success\":true}\n```") {
		t.Fatalf("expected tool result to be rendered as a fenced code block")
	}
}

func TestToHTMLStripsScriptTags(t *testing.T) {
	turns := []core.Turn{
		core.NewTurn("s1", core.RoleUser, "<script>alert(1)</script>hello"),
	}
	html, err := ToHTML("t", turns)
	if err != nil {
		t.Fatalf("to html: %v", err)
	}
	if strings.Contains(html, "<script") {
		t.Fatalf("expected script tag to be stripped, got %s", html)
	}
}

func TestToHTMLNeutralizesDangerousSchemes(t *testing.T) {
	turns := []core.Turn{
		core.NewTurn("s1", core.RoleUser, `<a href="javascript:alert(1)">click</a>`),
	}
	html, err := ToHTML("t", turns)
	if err != nil {
		t.Fatalf("to html: %v", err)
	}
	if strings.Contains(html, "javascript:") {
		t.Fatalf("expected javascript: scheme to be neutralized, got %s", html)
	}
}

func TestRenderToFileWritesMarkdown(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.md")

	if err := RenderToFile(path, "My Session", sampleTurns(), FormatMarkdown); err != nil {
		t.Fatalf("render to file: %v", err)
	}
}

func TestRenderToFileWritesHTML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.html")

	if err := RenderToFile(path, "My Session", sampleTurns(), FormatHTML); err != nil {
		t.Fatalf("render to file: %v", err)
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
