// ABOUTME: Tool constructors for the command-exec family's background-process shortcuts.
// ABOUTME: run_background, list_processes, and kill_process share one BackgroundProcessManager instance.

package tools

import (
	"encoding/json"
	"fmt"

	"github.com/2389-research/bytecraft/llm"
)

// NewRunBackgroundTool creates a RegisteredTool that starts a long-lived
// background process tracked by the given manager.
func NewRunBackgroundTool(mgr *BackgroundProcessManager) *RegisteredTool {
	return &RegisteredTool{
		Definition: llm.ToolDefinition{
			Name:        "run_background",
			Description: "Start a long-lived background command. Returns a process id for later inspection.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"command": {
						"type": "string",
						"description": "The shell command to run in the background"
					}
				},
				"required": ["command"]
			}`),
		},
		Description: "Start a long-lived background command.",
		Execute: func(args map[string]any, env ExecutionEnvironment) (string, error) {
			command, err := getStringArg(args, "command", true)
			if err != nil {
				return "", err
			}
			id, err := mgr.Start(command, env.WorkingDirectory())
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("started background process %s", id), nil
		},
	}
}

// NewListProcessesTool creates a RegisteredTool that lists tracked background processes.
func NewListProcessesTool(mgr *BackgroundProcessManager) *RegisteredTool {
	return &RegisteredTool{
		Definition: llm.ToolDefinition{
			Name:        "list_processes",
			Description: "List currently tracked background processes.",
			Parameters:  json.RawMessage(`{"type": "object", "properties": {}}`),
		},
		Description: "List tracked background processes.",
		Execute: func(args map[string]any, env ExecutionEnvironment) (string, error) {
			data, err := json.Marshal(mgr.List())
			if err != nil {
				return "", err
			}
			return string(data), nil
		},
	}
}

// NewKillProcessTool creates a RegisteredTool that kills a tracked background process by id.
func NewKillProcessTool(mgr *BackgroundProcessManager) *RegisteredTool {
	return &RegisteredTool{
		Definition: llm.ToolDefinition{
			Name:        "kill_process",
			Description: "Kill a tracked background process by id.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"id": {
						"type": "string",
						"description": "The process id returned by run_background"
					}
				},
				"required": ["id"]
			}`),
		},
		Description: "Kill a tracked background process.",
		Execute: func(args map[string]any, env ExecutionEnvironment) (string, error) {
			id, err := getStringArg(args, "id", true)
			if err != nil {
				return "", err
			}
			if err := mgr.Kill(id); err != nil {
				return "", err
			}
			return fmt.Sprintf("killed process %s", id), nil
		},
	}
}

// RegisterBackgroundTools registers the background-process tool shortcuts,
// backed by a single shared manager instance.
func RegisterBackgroundTools(registry *ToolRegistry, mgr *BackgroundProcessManager) {
	registry.Register(NewRunBackgroundTool(mgr))
	registry.Register(NewListProcessesTool(mgr))
	registry.Register(NewKillProcessTool(mgr))
}
