// ABOUTME: The agent loop's S_AGENT/S_TOOLS/S_END state machine: call the model, dispatch tool calls, repeat.
// ABOUTME: Grounded on the teacher's ProcessInput/executeToolCalls/executeSingleTool, restructured around
// sequential-only tool dispatch and the session-store-backed durability contract in place of in-memory history.

package agent

import (
	gocontext "context"
	"fmt"

	pipeline "github.com/2389-research/bytecraft/context"
	"github.com/2389-research/bytecraft/core"
	"github.com/2389-research/bytecraft/errs"
	"github.com/2389-research/bytecraft/llm"
	"github.com/2389-research/bytecraft/store"
)

// MaxRounds is the recursion cap: at most this many full
// S_AGENT -> S_TOOLS -> S_AGENT cycles run per user message.
const MaxRounds = 25

// ModelCaller is the model-provider collaborator the loop calls in S_AGENT.
// *llm.Client satisfies this directly.
type ModelCaller interface {
	Complete(ctx gocontext.Context, req llm.Request) (*llm.Response, error)
}

// ToolSource supplies the tool schemas advertised to the model alongside
// each completion request. *tools.ToolRegistry satisfies this directly.
type ToolSource interface {
	Definitions() []llm.ToolDefinition
}

// ToolDispatcher routes one tool call to its implementation and returns the
// wire-contract JSON result string. *tools.Dispatcher satisfies this directly.
type ToolDispatcher interface {
	Invoke(name, argsJSON string) string
}

// Deps bundles the loop's collaborators. All fields are required except
// PipelineOptions, which is passed to Optimize as given: its zero value
// applies no filtering, curation or summarization, and its zero
// truncate.Config keeps none of the prior non-system history.
type Deps struct {
	Store           *store.Store
	Model           ModelCaller
	ModelName       string
	Provider        string
	Tools           ToolSource
	Dispatcher      ToolDispatcher
	SystemPrompt    string
	PipelineOptions pipeline.Options
}

// Process runs one user message through the state machine to completion:
// S_AGENT calls the model; if it requests tools, S_TOOLS dispatches each one
// in order and feeds the results back; S_END is reached when a model
// response carries no tool calls. Returns the final assistant text.
func Process(ctx gocontext.Context, deps Deps, sessionID, userMessage string, sink *Sink) (string, error) {
	history, err := deps.Store.LoadTurns(sessionID)
	if err != nil {
		werr := &errs.StoreError{Message: "load session history", Cause: err}
		sink.emitError(werr)
		return "", werr
	}

	// Durability contract: the user turn is persisted before the first model call.
	userTurn := core.NewTurn(sessionID, core.RoleUser, userMessage)
	if err := deps.Store.AppendTurn(sessionID, userTurn); err != nil {
		werr := &errs.StoreError{Message: "append user turn", Cause: err}
		sink.emitError(werr)
		return "", werr
	}

	optimized := pipeline.Optimize(ctx, history, deps.SystemPrompt, userMessage, deps.PipelineOptions)
	working := optimized.Messages

	for round := 0; round < MaxRounds; round++ {
		req := llm.Request{
			Model:      deps.ModelName,
			Provider:   deps.Provider,
			Messages:   toLLMMessages(working),
			Tools:      deps.Tools.Definitions(),
			ToolChoice: &llm.ToolChoice{Mode: llm.ToolChoiceAuto},
		}

		resp, err := deps.Model.Complete(ctx, req)
		if err != nil {
			werr := &errs.ModelError{Message: "model call failed", Cause: err}
			sink.emitError(werr)
			return "", werr
		}
		sink.emitToken(resp.TextContent())

		calls := resp.ToolCalls()
		assistantTurn := assistantTurnFromResponse(sessionID, resp)
		if err := deps.Store.AppendTurn(sessionID, assistantTurn); err != nil {
			werr := &errs.StoreError{Message: "append assistant turn", Cause: err}
			sink.emitError(werr)
			return "", werr
		}
		working = append(working, assistantTurn)

		if len(calls) == 0 {
			final := assistantTurn.Content
			sink.emitComplete(final)
			return final, nil
		}

		// S_TOOLS: dispatch sequentially, in the order the model requested them.
		for _, call := range assistantTurn.ToolCalls {
			argsJSON := argumentsJSON(call)
			sink.emitToolCall(call.Name, argsJSON)

			raw := deps.Dispatcher.Invoke(call.Name, argsJSON)
			isError := dispatchResultIsError(raw)
			sink.emitToolResult(call.Name, raw)

			resultTurn := toolResultTurn(sessionID, call, raw, isError)
			if err := deps.Store.AppendTurn(sessionID, resultTurn); err != nil {
				werr := &errs.StoreError{Message: "append tool result turn", Cause: err}
				sink.emitError(werr)
				return "", werr
			}
			working = append(working, resultTurn)
		}
		// Back to S_AGENT.
	}

	limitErr := &errs.LimitError{Message: fmt.Sprintf("exceeded %d tool-call rounds for one user message", MaxRounds)}
	failureTurn := core.NewTurn(sessionID, core.RoleAssistant,
		fmt.Sprintf("I wasn't able to finish this within %d tool-call rounds and stopped.", MaxRounds))
	_ = deps.Store.AppendTurn(sessionID, failureTurn)
	sink.emitError(limitErr)
	return "", limitErr
}
