// ABOUTME: Adapts the configured llm.Client into a summarize.Summarizer so the context pipeline's compression stage has a real model to call.

package main

import (
	"context"
	"fmt"

	"github.com/2389-research/bytecraft/llm"
)

// modelSummarizer calls the same model and provider the agent loop uses,
// with a one-shot request carrying only the compaction prompt as a single
// user message: summarization never needs tool schemas or prior history of
// its own.
type modelSummarizer struct {
	client    *llm.Client
	modelName string
	provider  string
}

func newModelSummarizer(client *llm.Client, modelName, provider string) *modelSummarizer {
	return &modelSummarizer{client: client, modelName: modelName, provider: provider}
}

func (s *modelSummarizer) Summarize(ctx context.Context, prompt string) (string, error) {
	resp, err := s.client.Complete(ctx, llm.Request{
		Model:    s.modelName,
		Provider: s.provider,
		Messages: []llm.Message{llm.UserMessage(prompt)},
	})
	if err != nil {
		return "", fmt.Errorf("summarize via model: %w", err)
	}
	return resp.TextContent(), nil
}
