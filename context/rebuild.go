// ABOUTME: Chooses how to reconstruct a resumed session's working context from its full turn history.
// ABOUTME: The auto strategy picks among full_history, summary_based, hybrid, and sliding_window heuristically.

package context

import (
	"github.com/2389-research/bytecraft/core"
	"github.com/2389-research/bytecraft/estimate"
	"github.com/2389-research/bytecraft/summarize"
	"github.com/2389-research/bytecraft/truncate"
)

// RebuildStrategy names how a resumed session's context is reconstructed.
type RebuildStrategy string

const (
	RebuildAuto         RebuildStrategy = "auto"
	RebuildFullHistory  RebuildStrategy = "full_history"
	RebuildSummaryBased RebuildStrategy = "summary_based"
	RebuildSlidingWindow RebuildStrategy = "sliding_window"
	RebuildHybrid       RebuildStrategy = "hybrid"
)

// autoFullHistoryTokenFraction and autoFullHistorySinceSummary bound when auto
// chooses full_history: the conversation must still be small relative to
// the token budget and not too long since the last compaction point.
const (
	autoFullHistoryTokenFraction = 0.7
	autoFullHistorySinceSummary  = 20
	autoSummaryBasedSinceSummary = 5
)

// Rebuild chooses a RebuildStrategy (resolving "auto" to a concrete one) and
// reports which strategy was used. It does not itself truncate the turns;
// callers apply the chosen strategy's semantics via Optimize/Apply.
func Rebuild(turns []core.Turn, tokenLimit int, summarizer summarize.Summarizer, strategy RebuildStrategy) RebuildStrategy {
	if strategy != RebuildAuto && strategy != "" {
		return strategy
	}

	sinceSummary := messagesSinceLastSummary(turns)
	tokens := estimate.Estimate(turns, estimate.ModeEnhanced)

	if tokenLimit > 0 && float64(tokens) < autoFullHistoryTokenFraction*float64(tokenLimit) && sinceSummary < autoFullHistorySinceSummary {
		return RebuildFullHistory
	}

	if hasSummaryMarker(turns) && sinceSummary > autoSummaryBasedSinceSummary {
		return RebuildSummaryBased
	}

	if summarizer != nil && isContentLong(turns) {
		return RebuildHybrid
	}

	return RebuildSlidingWindow
}

func messagesSinceLastSummary(turns []core.Turn) int {
	lastSummaryIdx := -1
	for i, t := range turns {
		if summarize.IsSummaryTurn(t) {
			lastSummaryIdx = i
		}
	}
	if lastSummaryIdx == -1 {
		return len(turns)
	}
	return len(turns) - lastSummaryIdx - 1
}

func hasSummaryMarker(turns []core.Turn) bool {
	for _, t := range turns {
		if summarize.IsSummaryTurn(t) {
			return true
		}
	}
	return false
}

// isContentLong reports whether the conversation's estimated size is large
// enough that a straight sliding window would discard too much without a
// summarizer's help.
func isContentLong(turns []core.Turn) bool {
	return estimate.Estimate(turns, estimate.ModeEnhanced) > 4000
}

// DefaultTruncateStrategyFor maps a resolved RebuildStrategy onto the
// truncate.Strategy that realizes it; full_history and summary_based bypass
// truncate.Apply entirely (the caller uses the turns/summary as-is).
func DefaultTruncateStrategyFor(strategy RebuildStrategy) truncate.Strategy {
	switch strategy {
	case RebuildHybrid:
		return truncate.StrategyImportanceBased
	default:
		return truncate.StrategySimpleSlidingWindow
	}
}
