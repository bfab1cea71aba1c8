// ABOUTME: OpenAI-compatible Chat Completions adapter for third-party gateways (Cerebras, OpenRouter, Cloudflare AI Gateway, ...).
// ABOUTME: Distinct from OpenAIAdapter (the native Responses API client): this targets /v1/chat/completions via the official openai-go SDK.

package llm

import (
	"context"
	"encoding/json"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAICompatAdapter implements ProviderAdapter using the OpenAI Chat
// Completions endpoint, which is the lowest common denominator supported
// by most OpenAI-compatible providers. Unlike OpenAIAdapter (the native
// /v1/responses client), this uses the official openai-go SDK directly,
// since chat-completions-compatible gateways generally accept the SDK's
// request shape unmodified.
type OpenAICompatAdapter struct {
	client openai.Client
	model  string
	name   string
}

// NewOpenAICompatAdapter creates a Chat Completions adapter pointed at
// baseURL. model is used as the default when a Request leaves Model
// empty.
func NewOpenAICompatAdapter(apiKey, model, baseURL string) *OpenAICompatAdapter {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAICompatAdapter{
		client: openai.NewClient(opts...),
		model:  model,
		name:   "openai-compat",
	}
}

func (a *OpenAICompatAdapter) Name() string { return a.name }

func (a *OpenAICompatAdapter) Close() error { return nil }

// Complete sends a single non-streaming chat completion request.
func (a *OpenAICompatAdapter) Complete(ctx context.Context, req Request) (*Response, error) {
	params := a.buildParams(req)

	resp, err := a.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, &ProviderError{SDKError: SDKError{Message: err.Error()}, Provider: a.name}
	}
	return convertCompatResponse(resp), nil
}

// Stream sends the request with streaming enabled, accumulating deltas
// via openai-go's ChatCompletionAccumulator and translating them into
// this package's unified StreamEvent sequence.
func (a *OpenAICompatAdapter) Stream(ctx context.Context, req Request) (<-chan StreamEvent, error) {
	params := a.buildParams(req)
	stream := a.client.Chat.Completions.NewStreaming(ctx, params)
	events := make(chan StreamEvent, 64)

	go func() {
		defer close(events)

		var acc openai.ChatCompletionAccumulator
		events <- StreamEvent{Type: StreamStart}
		textOpen := false

		for stream.Next() {
			chunk := stream.Current()
			acc.AddChunk(chunk)

			if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
				if !textOpen {
					events <- StreamEvent{Type: StreamTextStart}
					textOpen = true
				}
				events <- StreamEvent{Type: StreamTextDelta, Delta: chunk.Choices[0].Delta.Content}
			}

			if toolCall, ok := acc.JustFinishedToolCall(); ok {
				events <- StreamEvent{
					Type: StreamToolEnd,
					ToolCall: &ToolCall{
						ID:           toolCall.Id,
						Name:         toolCall.Name,
						Arguments:    json.RawMessage(toolCall.Arguments),
						RawArguments: toolCall.Arguments,
					},
				}
			}
		}

		if textOpen {
			events <- StreamEvent{Type: StreamTextEnd}
		}

		if err := stream.Err(); err != nil {
			events <- StreamEvent{Type: StreamErrorEvt, Error: err}
			return
		}

		response := convertCompatResponse(&acc.ChatCompletion)
		events <- StreamEvent{Type: StreamFinish, FinishReason: &response.FinishReason, Usage: &response.Usage, Response: response}
	}()

	return events, nil
}

func (a *OpenAICompatAdapter) buildParams(req Request) openai.ChatCompletionNewParams {
	model := req.Model
	if model == "" {
		model = a.model
	}
	params := openai.ChatCompletionNewParams{Model: model}

	maxTokens := 4096
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}
	params.MaxCompletionTokens = openai.Int(int64(maxTokens))

	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}

	systemText, remaining := ExtractSystemMessages(req.Messages)
	var messages []openai.ChatCompletionMessageParamUnion
	if systemText != "" {
		messages = append(messages, openai.SystemMessage(systemText))
	}
	for _, msg := range remaining {
		messages = append(messages, convertCompatMessage(msg))
	}
	params.Messages = messages

	if len(req.Tools) > 0 {
		tools := make([]openai.ChatCompletionToolParam, 0, len(req.Tools))
		for _, tool := range req.Tools {
			tools = append(tools, openai.ChatCompletionToolParam{
				Type: "function",
				Function: openai.FunctionDefinitionParam{
					Name:        tool.Name,
					Description: openai.String(tool.Description),
					Parameters:  openai.FunctionParameters(json.RawMessage(tool.Parameters)),
				},
			})
		}
		params.Tools = tools
	}

	return params
}

// convertCompatMessage converts one unified Message to an OpenAI chat
// completion message param.
func convertCompatMessage(msg Message) openai.ChatCompletionMessageParamUnion {
	switch msg.Role {
	case RoleUser:
		for _, part := range msg.Content {
			if part.Kind == ContentToolResult && part.ToolResult != nil {
				return openai.ToolMessage(part.ToolResult.Content, part.ToolResult.ToolCallID)
			}
		}
		return openai.UserMessage(msg.TextContent())

	case RoleTool:
		return openai.ToolMessage(msg.TextContent(), msg.ToolCallID)

	case RoleAssistant:
		var toolCalls []openai.ChatCompletionMessageToolCallParam
		for _, call := range msg.ToolCalls() {
			toolCalls = append(toolCalls, openai.ChatCompletionMessageToolCallParam{
				ID:   call.ID,
				Type: "function",
				Function: openai.ChatCompletionMessageToolCallFunctionParam{
					Name:      call.Name,
					Arguments: string(call.Arguments),
				},
			})
		}
		text := msg.TextContent()
		if len(toolCalls) == 0 {
			return openai.AssistantMessage(text)
		}
		asst := openai.ChatCompletionAssistantMessageParam{ToolCalls: toolCalls}
		if text != "" {
			asst.Content = openai.ChatCompletionAssistantMessageParamContentUnion{OfString: openai.String(text)}
		}
		return openai.ChatCompletionMessageParamUnion{OfAssistant: &asst}

	default:
		return openai.UserMessage(msg.TextContent())
	}
}

// convertCompatResponse converts an OpenAI ChatCompletion into the
// package's unified Response type.
func convertCompatResponse(resp *openai.ChatCompletion) *Response {
	result := &Response{
		ID:       resp.ID,
		Model:    resp.Model,
		Provider: "openai-compat",
		Usage: Usage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:  int(resp.Usage.TotalTokens),
		},
	}

	if len(resp.Choices) == 0 {
		return result
	}
	choice := resp.Choices[0]

	switch choice.FinishReason {
	case "stop":
		result.FinishReason = FinishReason{Reason: FinishStop, Raw: string(choice.FinishReason)}
	case "tool_calls":
		result.FinishReason = FinishReason{Reason: FinishToolCalls, Raw: string(choice.FinishReason)}
	case "length":
		result.FinishReason = FinishReason{Reason: FinishLength, Raw: string(choice.FinishReason)}
	default:
		result.FinishReason = FinishReason{Reason: FinishOther, Raw: string(choice.FinishReason)}
	}

	var parts []ContentPart
	if choice.Message.Content != "" {
		parts = append(parts, TextPart(choice.Message.Content))
	}
	for _, tc := range choice.Message.ToolCalls {
		parts = append(parts, ToolCallPart(tc.ID, tc.Function.Name, json.RawMessage(tc.Function.Arguments)))
	}
	result.Message = Message{Role: RoleAssistant, Content: parts}
	return result
}
