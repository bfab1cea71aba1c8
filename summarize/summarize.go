// ABOUTME: Compresses a turn list into one synthetic summary turn when the conversation grows too large.
// ABOUTME: Summarization is delegated to an injected Summarizer capability; this package only builds the prompt.

package summarize

import (
	"context"
	"fmt"
	"strings"

	"github.com/2389-research/bytecraft/core"
)

// MarkerPrefix tags a turn's content as a generated summary, so downstream
// stages can detect and special-case it without inspecting Internal alone.
const MarkerPrefix = "[对话摘要] "

// DefaultCompressionThreshold is the fraction of tokenLimit at which
// compression triggers when not forced.
const DefaultCompressionThreshold = 0.7

// Summarizer is the injected capability that turns a prompt into a summary.
// It must not be called recursively within a single Compress call.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

// SummarizerFunc adapts a plain function to the Summarizer interface.
type SummarizerFunc func(ctx context.Context, prompt string) (string, error)

func (f SummarizerFunc) Summarize(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Result is the outcome of Compress.
type Result struct {
	Compressed bool
	Summary    *core.Turn
	OrigTokens int
	NewTokens  int
}

// EstimateFunc estimates the token count of a turn list; the caller supplies
// this so summarize does not need to depend on a particular estimation mode.
type EstimateFunc func(turns []core.Turn) int

// ShouldCompress reports whether compress should trigger, given the current
// estimated token count against tokenLimit, or an explicit force.
func ShouldCompress(force bool, currentTokens, tokenLimit int, threshold float64) bool {
	if force {
		return true
	}
	if tokenLimit <= 0 {
		return false
	}
	if threshold <= 0 {
		threshold = DefaultCompressionThreshold
	}
	return float64(currentTokens) >= threshold*float64(tokenLimit)
}

// Compress summarizes turns via summarizer when triggered. threshold is the
// same configurable fraction the caller already passed to ShouldCompress;
// passing <= 0 falls back to DefaultCompressionThreshold, matching
// ShouldCompress's own default. On any failure or an empty reply, it returns
// {Compressed: false} so the caller can fall back to truncation instead.
func Compress(ctx context.Context, turns []core.Turn, summarizer Summarizer, tokenLimit, currentTokens int, force bool, threshold float64, estimate EstimateFunc) Result {
	if !ShouldCompress(force, currentTokens, tokenLimit, threshold) {
		return Result{Compressed: false, OrigTokens: currentTokens, NewTokens: currentTokens}
	}
	if summarizer == nil {
		return Result{Compressed: false, OrigTokens: currentTokens, NewTokens: currentTokens}
	}

	prompt := buildPrompt(turns)
	reply, err := summarizer.Summarize(ctx, prompt)
	if err != nil || strings.TrimSpace(reply) == "" {
		return Result{Compressed: false, OrigTokens: currentTokens, NewTokens: currentTokens}
	}

	sessionID := ""
	if len(turns) > 0 {
		sessionID = turns[0].SessionID
	}
	summary := core.NewTurn(sessionID, core.RoleAssistant, MarkerPrefix+strings.TrimSpace(reply))
	summary.Internal = true

	newTokens := currentTokens
	if estimate != nil {
		newTokens = estimate([]core.Turn{summary})
	}

	return Result{
		Compressed: true,
		Summary:    &summary,
		OrigTokens: currentTokens,
		NewTokens:  newTokens,
	}
}

// IsSummaryTurn reports whether a turn's content carries the summary marker.
func IsSummaryTurn(t core.Turn) bool {
	return strings.HasPrefix(t.Content, MarkerPrefix)
}

// buildPrompt renders turns as a time-ordered transcript wrapped in a fixed
// instruction demanding structured bullet-point Chinese output that
// preserves technical details, decisions, and unresolved threads.
func buildPrompt(turns []core.Turn) string {
	var b strings.Builder
	b.WriteString("请将以下对话压缩为结构化的要点摘要（使用中文），保留关键技术细节、已做出的决定，以及尚未解决的问题。以项目符号列表形式输出。\n\n")
	for _, t := range turns {
		fmt.Fprintf(&b, "[%s] %s: %s\n", t.Timestamp.Format("15:04:05"), t.Type, t.Content)
	}
	return b.String()
}
