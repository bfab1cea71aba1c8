// ABOUTME: Conversion helpers between the store's core.Turn schema and the llm package's Message schema.
// ABOUTME: The agent loop keeps its working history as core.Turn so every step round-trips through the store format.

package agent

import (
	"encoding/json"

	"github.com/2389-research/bytecraft/core"
	"github.com/2389-research/bytecraft/llm"
)

// toLLMMessages renders a session's turn history as the ordered message list
// a model request expects, folding a turn's ToolCalls/ToolResult into the
// appropriate content parts.
func toLLMMessages(turns []core.Turn) []llm.Message {
	messages := make([]llm.Message, 0, len(turns))
	for _, t := range turns {
		messages = append(messages, toLLMMessage(t))
	}
	return messages
}

func toLLMMessage(t core.Turn) llm.Message {
	switch t.Type {
	case core.RoleTool:
		content := t.Content
		isError := false
		callID := ""
		if t.ToolResult != nil {
			content = t.ToolResult.Content
			isError = t.ToolResult.IsError
			callID = t.ToolResult.CallID
		}
		return llm.ToolResultMessage(callID, content, isError)
	case core.RoleAssistant:
		parts := make([]llm.ContentPart, 0, len(t.ToolCalls)+1)
		if t.Content != "" {
			parts = append(parts, llm.TextPart(t.Content))
		}
		for _, call := range t.ToolCalls {
			parts = append(parts, llm.ToolCallPart(call.ID, call.Name, call.Arguments))
		}
		if len(parts) == 0 {
			parts = append(parts, llm.TextPart(""))
		}
		return llm.Message{Role: llm.RoleAssistant, Content: parts}
	case core.RoleSystem:
		return llm.SystemMessage(t.Content)
	default:
		return llm.UserMessage(t.Content)
	}
}

// assistantTurnFromResponse builds the assistant turn to persist for a model
// response: its text content plus any requested tool calls, in the order the
// model returned them.
func assistantTurnFromResponse(sessionID string, resp *llm.Response) core.Turn {
	turn := core.NewTurn(sessionID, core.RoleAssistant, resp.TextContent())
	for _, call := range resp.ToolCalls() {
		turn.ToolCalls = append(turn.ToolCalls, core.ToolCallRequest{
			ID:        call.ID,
			Name:      call.Name,
			Arguments: call.Arguments,
		})
	}
	return turn
}

// toolResultTurn builds the tool-role turn persisted for one dispatched call.
func toolResultTurn(sessionID string, call core.ToolCallRequest, resultJSON string, isError bool) core.Turn {
	turn := core.NewTurn(sessionID, core.RoleTool, resultJSON)
	turn.ToolResult = &core.ToolResultInfo{
		CallID:  call.ID,
		Name:    call.Name,
		Content: resultJSON,
		IsError: isError,
	}
	return turn
}

// argumentsJSON renders a tool call's arguments as the JSON string the
// dispatcher's wire contract expects, defaulting to "{}" when absent.
func argumentsJSON(call core.ToolCallRequest) string {
	if len(call.Arguments) == 0 {
		return "{}"
	}
	return string(call.Arguments)
}

// dispatchResultIsError reports whether a dispatcher JSON result describes a
// failed tool invocation.
func dispatchResultIsError(raw string) bool {
	var v struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return true
	}
	return !v.Success
}
