// ABOUTME: Resolves a tool by name, validates arguments, runs it, and marshals a uniform JSON result.
// ABOUTME: The dispatcher never panics or propagates a tool's error to the caller as a Go error.

package tools

import (
	"encoding/json"
	"fmt"
)

// Result is the uniform shape every tool invocation resolves to, whether
// the tool succeeded, failed, or could not be found.
type Result struct {
	Success       bool   `json:"success"`
	Stdout        string `json:"stdout,omitempty"`
	Stderr        string `json:"stderr,omitempty"`
	ExitCode      *int   `json:"exitCode,omitempty"`
	ExecutionTime int64  `json:"executionTime,omitempty"`
	Error         string `json:"error,omitempty"`
}

// Dispatcher routes tool-call requests to registered tools and always
// returns a JSON string, per the model-provider wire contract.
type Dispatcher struct {
	registry *ToolRegistry
	env      ExecutionEnvironment
	limits   map[string]int
}

// NewDispatcher creates a Dispatcher serving the given registry against env.
// limits overrides per-tool output character limits; nil uses the defaults.
func NewDispatcher(registry *ToolRegistry, env ExecutionEnvironment, limits map[string]int) *Dispatcher {
	return &Dispatcher{registry: registry, env: env, limits: limits}
}

// List returns the tool definitions the dispatcher can route, for surfacing
// to the model alongside its completion request.
func (d *Dispatcher) List() []toolSummary {
	var out []toolSummary
	for _, name := range d.registry.Names() {
		tool := d.registry.Get(name)
		if tool == nil {
			continue
		}
		out = append(out, toolSummary{Name: tool.Definition.Name, Description: tool.Definition.Description})
	}
	return out
}

type toolSummary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Invoke resolves name, parses argsJSON, runs the tool, and returns a JSON
// string result. Unknown tools, argument parse failures, and tool errors
// all surface as {"success": false, "error": "..."} rather than a Go error.
func (d *Dispatcher) Invoke(name, argsJSON string) string {
	tool := d.registry.Get(name)
	if tool == nil {
		return mustMarshal(Result{Success: false, Error: "unknown tool"})
	}

	var args map[string]any
	if argsJSON != "" {
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			return mustMarshal(Result{Success: false, Error: fmt.Sprintf("invalid arguments: %v", err)})
		}
	}

	output, err := func() (out string, runErr error) {
		defer func() {
			if r := recover(); r != nil {
				runErr = fmt.Errorf("tool panicked: %v", r)
			}
		}()
		return tool.Execute(args, d.env)
	}()

	if err != nil {
		return mustMarshal(Result{Success: false, Error: err.Error()})
	}

	truncated := TruncateToolOutput(output, name, d.limits)
	return mustMarshal(Result{Success: true, Stdout: truncated})
}

func mustMarshal(r Result) string {
	data, err := json.Marshal(r)
	if err != nil {
		return `{"success":false,"error":"failed to marshal tool result"}`
	}
	return string(data)
}
