// ABOUTME: Name-keyed registry of the coding agent's tools, plus the per-tool output truncation policy applied before a result reaches the model.
// ABOUTME: Provides ToolRegistry, RegisteredTool, TruncateOutput, and TruncateToolOutput functions.

package tools

import (
	"fmt"
	"strings"
	"sync"

	"github.com/2389-research/bytecraft/llm"
)

// RegisteredTool pairs a tool definition with its execute function.
type RegisteredTool struct {
	Definition  llm.ToolDefinition
	Execute     func(args map[string]any, env ExecutionEnvironment) (string, error)
	Description string
}

// ToolRegistry manages a thread-safe collection of registered tools.
type ToolRegistry struct {
	tools map[string]*RegisteredTool
	mu    sync.RWMutex
}

// NewToolRegistry creates an empty ToolRegistry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{
		tools: make(map[string]*RegisteredTool),
	}
}

// Register adds or replaces a tool in the registry. Returns an error if
// the tool's definition has an empty name.
func (r *ToolRegistry) Register(tool *RegisteredTool) error {
	if tool.Definition.Name == "" {
		return fmt.Errorf("tool name must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Definition.Name] = tool
	return nil
}

// Unregister removes a tool by name. Returns true if the tool existed.
func (r *ToolRegistry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tools[name]; ok {
		delete(r.tools, name)
		return true
	}
	return false
}

// Get returns the registered tool with the given name, or nil if not found.
func (r *ToolRegistry) Get(name string) *RegisteredTool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}

// Definitions returns all tool definitions from registered tools.
func (r *ToolRegistry) Definitions() []llm.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]llm.ToolDefinition, 0, len(r.tools))
	for _, tool := range r.tools {
		defs = append(defs, tool.Definition)
	}
	return defs
}

// Has returns true if a tool with the given name is registered.
func (r *ToolRegistry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tools[name]
	return ok
}

// Names returns the names of all registered tools.
func (r *ToolRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	return names
}

// Count returns the number of registered tools.
func (r *ToolRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// outputPolicy bounds how much of one tool's raw output survives into the
// turn the model sees: a character ceiling plus the split mode used when
// that ceiling is exceeded, and an optional line ceiling applied afterward.
type outputPolicy struct {
	maxChars int
	mode     string // "head_tail" or "tail"
	maxLines int    // 0 means no line-based truncation
}

// toolOutputPolicies holds one entry per built-in tool named in the core
// set (read_file, write_file, edit_file, shell, grep, glob). read_file and
// shell keep both ends of their output (head_tail) because the part of a
// file or a command's output worth seeing after truncation is usually its
// start and its tail, not an arbitrary middle slice; grep and glob keep
// only the tail since match lists are typically read newest/last-found
// first when they overflow. write_file's result is normally a short
// confirmation, so its ceiling is tight.
var toolOutputPolicies = map[string]outputPolicy{
	"read_file":  {maxChars: 50000, mode: "head_tail"},
	"shell":      {maxChars: 30000, mode: "head_tail", maxLines: 256},
	"grep":       {maxChars: 20000, mode: "tail", maxLines: 200},
	"glob":       {maxChars: 20000, mode: "tail", maxLines: 500},
	"edit_file":  {maxChars: 10000, mode: "tail"},
	"write_file": {maxChars: 1000, mode: "tail"},
}

// defaultOutputPolicy applies to any tool absent from toolOutputPolicies,
// including MCP-sourced tools registered at runtime.
var defaultOutputPolicy = outputPolicy{maxChars: 30000, mode: "tail"}

// TruncateLines truncates output that exceeds maxLines using a head/tail split.
// If maxLines is 0 or the output has no more lines than maxLines, the output is
// returned unchanged. Otherwise the first half and last half of lines are kept
// with an omission marker in between.
func TruncateLines(output string, maxLines int) string {
	if maxLines <= 0 {
		return output
	}

	lines := strings.Split(output, "\n")
	if len(lines) <= maxLines {
		return output
	}

	headCount := maxLines / 2
	tailCount := maxLines - headCount
	omitted := len(lines) - headCount - tailCount

	return strings.Join(lines[:headCount], "\n") +
		fmt.Sprintf("\n[... %d lines omitted ...]\n", omitted) +
		strings.Join(lines[len(lines)-tailCount:], "\n")
}

// TruncateOutput truncates output that exceeds maxChars using the given mode.
// Supported modes: "head_tail" (keep first half + last half) and "tail" (keep last N chars).
// A truncation warning is inserted at the truncation point.
func TruncateOutput(output string, maxChars int, mode string) string {
	if len(output) <= maxChars {
		return output
	}

	removed := len(output) - maxChars

	if mode == "head_tail" {
		half := maxChars / 2
		return output[:half] +
			fmt.Sprintf("\n\n[WARNING: Tool output was truncated. %d characters were removed from the middle. "+
				"If you need to see specific parts, re-run the tool with more targeted parameters.]\n\n", removed) +
			output[len(output)-half:]
	}

	// Default to "tail" mode
	return fmt.Sprintf("[WARNING: Tool output was truncated. First %d characters were removed.]\n\n", removed) +
		output[len(output)-maxChars:]
}

// TruncateToolOutput truncates tool output using toolName's output policy,
// with maxChars optionally overridden by limits. A tool absent from
// toolOutputPolicies (e.g. one sourced from an MCP server) falls back to
// defaultOutputPolicy. Character truncation always runs before the
// policy's line-based truncation, since a character-truncated result may
// still carry more lines than the tool's line ceiling allows.
func TruncateToolOutput(output, toolName string, limits map[string]int) string {
	policy, ok := toolOutputPolicies[toolName]
	if !ok {
		policy = defaultOutputPolicy
	}

	maxChars := policy.maxChars
	if limits != nil {
		if override, ok := limits[toolName]; ok {
			maxChars = override
		}
	}

	result := TruncateOutput(output, maxChars, policy.mode)
	if policy.maxLines > 0 {
		result = TruncateLines(result, policy.maxLines)
	}
	return result
}
