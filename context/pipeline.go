// ABOUTME: Composes sensitive filtering, curation, summarization, and truncation into one optimize() call.
// ABOUTME: Produces the bounded message list sent to the model plus a stats report for diagnostics.

package context

import (
	gocontext "context"
	"strings"

	"github.com/2389-research/bytecraft/core"
	"github.com/2389-research/bytecraft/curate"
	"github.com/2389-research/bytecraft/estimate"
	"github.com/2389-research/bytecraft/redact"
	"github.com/2389-research/bytecraft/summarize"
	"github.com/2389-research/bytecraft/truncate"
)

// Options configures one Optimize call.
type Options struct {
	EnableSensitiveFiltering bool
	EnableCuration           bool
	Summarizer               summarize.Summarizer
	TokenLimit               int
	CompressionThreshold     float64 // defaults to summarize.DefaultCompressionThreshold when zero
	TruncationStrategy       truncate.Strategy
	TruncateConfig           truncate.Config
	EstimateMode             estimate.Mode
}

// Stats reports what the pipeline did, for logging and tests.
type Stats struct {
	OriginalCount       int
	CuratedCount        int
	FinalCount          int
	CurationFired       bool
	SummarizationFired  bool
	SensitiveFilterFired bool
	TruncationReasons   []string
	PreOptimizeTokens   int
	PreOptimizeBytes    int
	PreOptimizeLines    int
}

// Result is the outcome of Optimize: the ready-to-send message list plus
// the stats report.
type Result struct {
	Messages []core.Turn
	Stats    Stats
}

// Optimize transforms raw session turns into a bounded, ordered message
// list via the ordered pipeline: sensitive filter -> curation -> optional
// summarization -> truncation (budget reserved for the system prompt and
// current user message) -> convert to messages -> system cleanup.
func Optimize(ctx gocontext.Context, turns []core.Turn, systemPrompt, currentUserMessage string, opts Options) Result {
	stats := Stats{
		OriginalCount:     len(turns),
		PreOptimizeTokens: estimate.Estimate(turns, modeOrDefault(opts.EstimateMode)),
		PreOptimizeBytes:  totalBytes(turns),
		PreOptimizeLines:  totalLines(turns),
	}

	working := turns

	// Stage 1: sensitive filter.
	if opts.EnableSensitiveFiltering {
		working = redact.Filter(working)
		stats.SensitiveFilterFired = true
	}

	// Stage 2: curation.
	if opts.EnableCuration {
		result := curate.Curate(working)
		working = result.Turns
		stats.CurationFired = true
	}
	stats.CuratedCount = len(working)

	// Stage 3: conditional summarization.
	if opts.Summarizer != nil && opts.TokenLimit > 0 {
		mode := modeOrDefault(opts.EstimateMode)
		currentTokens := estimate.Estimate(working, mode)
		threshold := opts.CompressionThreshold
		if threshold <= 0 {
			threshold = summarize.DefaultCompressionThreshold
		}
		if summarize.ShouldCompress(false, currentTokens, opts.TokenLimit, threshold) {
			estFn := func(ts []core.Turn) int { return estimate.Estimate(ts, mode) }
			compressResult := summarize.Compress(ctx, working, opts.Summarizer, opts.TokenLimit, currentTokens, false, threshold, estFn)
			if compressResult.Compressed {
				working = []core.Turn{*compressResult.Summary}
				stats.SummarizationFired = true
			}
		}
	}

	// Stage 5: truncation. The system prompt and current user message are
	// not yet in the list being truncated: their budget is reserved up
	// front (both a message slot and a token cost) so the strategies can
	// never legitimately evict them and leave enforceSystemBoundaries
	// re-adding turns truncation had no chance to account for.
	mode := modeOrDefault(opts.EstimateMode)
	estFn := func(content string) int { return estimate.EstimateText(content, mode) }

	truncCfg := opts.TruncateConfig
	if truncCfg.MaxMessages > 0 {
		truncCfg.MaxMessages -= 2 // reserve slots for system prompt + current user message
		if truncCfg.MaxMessages < 0 {
			truncCfg.MaxMessages = 0
		}
	}
	if truncCfg.MaxTokens > 0 {
		truncCfg.MaxTokens -= estFn(systemPrompt) + estFn(currentUserMessage)
		if truncCfg.MaxTokens < 0 {
			truncCfg.MaxTokens = 0
		}
	}
	working = truncate.Apply(opts.TruncationStrategy, working, truncCfg, estFn)

	// Stage 4 (applied after truncation): convert to messages, prepend
	// system, append current user message.
	messages := make([]core.Turn, 0, len(working)+2)
	messages = append(messages, core.NewTurn("", core.RoleSystem, systemPrompt))
	messages = append(messages, working...)
	messages = append(messages, core.NewTurn("", core.RoleUser, currentUserMessage))

	// Stage 6: drop any stray system messages, or a duplicate of the
	// current user message, that truncation left behind in working, so
	// exactly one leading system message and one trailing user message
	// survive. Never adds net-new messages beyond what stage 5 reserved
	// budget for.
	messages = enforceSystemBoundaries(messages, systemPrompt, currentUserMessage)

	stats.FinalCount = len(messages)
	return Result{Messages: messages, Stats: stats}
}

// enforceSystemBoundaries guarantees the returned list begins with exactly
// the intended system message and ends with the current user message,
// dropping any other system messages earlier stages left behind.
func enforceSystemBoundaries(messages []core.Turn, systemPrompt, currentUserMessage string) []core.Turn {
	var out []core.Turn
	out = append(out, core.NewTurn("", core.RoleSystem, systemPrompt))
	for _, m := range messages {
		if m.Type == core.RoleSystem {
			continue
		}
		if m.Type == core.RoleUser && m.Content == currentUserMessage {
			continue
		}
		out = append(out, m)
	}
	out = append(out, core.NewTurn("", core.RoleUser, currentUserMessage))
	return out
}

// Fallback builds the degraded-but-safe message list used when any pipeline
// stage errors: the last minRecentMessages non-system turns plus the new
// user message, with no curation, summarization, or redaction applied.
func Fallback(turns []core.Turn, currentUserMessage string, minRecentMessages int) []core.Turn {
	var nonSystem []core.Turn
	for _, t := range turns {
		if t.Type != core.RoleSystem {
			nonSystem = append(nonSystem, t)
		}
	}
	if minRecentMessages > len(nonSystem) {
		minRecentMessages = len(nonSystem)
	}
	if minRecentMessages < 0 {
		minRecentMessages = 0
	}
	recent := nonSystem[len(nonSystem)-minRecentMessages:]

	out := append([]core.Turn{}, recent...)
	out = append(out, core.NewTurn("", core.RoleUser, currentUserMessage))
	return out
}

func modeOrDefault(m estimate.Mode) estimate.Mode {
	if m == "" {
		return estimate.ModeEnhanced
	}
	return m
}

func totalBytes(turns []core.Turn) int {
	total := 0
	for _, t := range turns {
		total += len(t.Content)
	}
	return total
}

func totalLines(turns []core.Turn) int {
	total := 0
	for _, t := range turns {
		total += strings.Count(t.Content, "\n") + 1
	}
	return total
}
