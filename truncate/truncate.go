// ABOUTME: Three deterministic message-truncation strategies applied when a context still exceeds budget.
// ABOUTME: Callers select a Strategy and a Config; all three strategies are pure functions of their inputs.

package truncate

import (
	"sort"
	"strings"

	"github.com/2389-research/bytecraft/core"
)

// Strategy names one of the three truncation algorithms.
type Strategy string

const (
	StrategySimpleSlidingWindow Strategy = "simple_sliding_window"
	StrategySmartSlidingWindow  Strategy = "smart_sliding_window"
	StrategyImportanceBased     Strategy = "importance_based"
)

// SystemMessageHandling controls how smart_sliding_window treats system
// messages before filling the remaining budget.
type SystemMessageHandling string

const (
	SystemAlwaysKeep SystemMessageHandling = "always_keep"
	SystemLatestOnly SystemMessageHandling = "latest_only"
	SystemSmartMerge SystemMessageHandling = "smart_merge"
)

// systemMergeSeparator joins multiple system contents under smart_merge.
const systemMergeSeparator = "\n\n---\n\n"

// Config bounds every strategy's output.
type Config struct {
	MaxMessages           int
	MaxTokens             int
	MinRecentMessages     int
	SystemMessageHandling SystemMessageHandling
}

// EstimateFunc estimates a single message's token cost; callers supply this
// so truncate does not depend on a specific estimation mode.
type EstimateFunc func(content string) int

// Apply runs the named strategy over messages, returning the kept subset
// (order preserved). No reasons for dropped messages are reported.
func Apply(strategy Strategy, messages []core.Turn, cfg Config, estimate EstimateFunc) []core.Turn {
	switch strategy {
	case StrategySmartSlidingWindow:
		return smartSlidingWindow(messages, cfg, estimate)
	case StrategyImportanceBased:
		return importanceBased(messages, cfg, estimate)
	default:
		return simpleSlidingWindow(messages, cfg)
	}
}

// simpleSlidingWindow keeps all system messages plus the last K non-system
// messages, where K is the largest value <= maxMessages-|systems| that is
// >= minRecentMessages. Token/byte/line limits are not re-checked.
func simpleSlidingWindow(messages []core.Turn, cfg Config) []core.Turn {
	systems, nonSystems := partitionSystem(messages)

	k := cfg.MaxMessages - len(systems)
	if k < cfg.MinRecentMessages {
		k = cfg.MinRecentMessages
	}
	if k > len(nonSystems) {
		k = len(nonSystems)
	}
	if k < 0 {
		k = 0
	}

	kept := nonSystems[len(nonSystems)-k:]
	return mergeInOriginalOrder(messages, append(append([]core.Turn{}, systems...), kept...))
}

// smartSlidingWindow applies the systemMessageHandling policy to system
// messages, then fills the remaining budget with the most-recent non-system
// messages, dropping the oldest of those one at a time if still over
// maxTokens, never going below minRecentMessages.
func smartSlidingWindow(messages []core.Turn, cfg Config, estimate EstimateFunc) []core.Turn {
	systems, nonSystems := partitionSystem(messages)
	handledSystems := applySystemPolicy(systems, cfg.SystemMessageHandling)

	limit := cfg.MaxMessages - len(handledSystems)
	if limit < 0 {
		limit = 0
	}
	if limit > len(nonSystems) {
		limit = len(nonSystems)
	}
	kept := append([]core.Turn{}, nonSystems[len(nonSystems)-limit:]...)

	if cfg.MaxTokens > 0 && estimate != nil {
		for tokenTotal(handledSystems, kept, estimate) > cfg.MaxTokens && len(kept) > cfg.MinRecentMessages {
			kept = kept[1:]
		}
	}

	combined := append(append([]core.Turn{}, handledSystems...), kept...)
	return reorderByOriginal(messages, combined)
}

func tokenTotal(systems, rest []core.Turn, estimate EstimateFunc) int {
	total := 0
	for _, t := range systems {
		total += estimate(t.Content)
	}
	for _, t := range rest {
		total += estimate(t.Content)
	}
	return total
}

func applySystemPolicy(systems []core.Turn, policy SystemMessageHandling) []core.Turn {
	switch policy {
	case SystemLatestOnly:
		if len(systems) == 0 {
			return nil
		}
		return []core.Turn{systems[len(systems)-1]}
	case SystemSmartMerge:
		if len(systems) == 0 {
			return nil
		}
		var parts []string
		for _, t := range systems {
			parts = append(parts, t.Content)
		}
		merged := systems[len(systems)-1]
		merged.Content = strings.Join(parts, systemMergeSeparator)
		return []core.Turn{merged}
	default: // SystemAlwaysKeep
		return append([]core.Turn{}, systems...)
	}
}

// importanceKeywords bump a message's score when present, case-insensitively.
var importanceKeywords = []string{"error", "bug", "fix", "important", "warning", "config", "setup"}

// importanceBased scores every message in [0,1] and greedily keeps the
// highest-scoring messages (ties favor higher index) until maxMessages or
// maxTokens would be exceeded, then re-emits the kept set in original order.
func importanceBased(messages []core.Turn, cfg Config, estimate EstimateFunc) []core.Turn {
	type scored struct {
		idx   int
		turn  core.Turn
		score float64
	}

	scores := make([]scored, len(messages))
	for i, t := range messages {
		scores[i] = scored{idx: i, turn: t, score: importanceScore(t, i, len(messages))}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].score != scores[j].score {
			return scores[i].score > scores[j].score
		}
		return scores[i].idx > scores[j].idx
	})

	var kept []scored
	tokenTotal := 0
	for _, s := range scores {
		if len(kept) >= cfg.MaxMessages && cfg.MaxMessages > 0 {
			break
		}
		cost := 0
		if estimate != nil {
			cost = estimate(s.turn.Content)
		}
		if cfg.MaxTokens > 0 && tokenTotal+cost > cfg.MaxTokens && len(kept) > 0 {
			break
		}
		kept = append(kept, s)
		tokenTotal += cost
	}

	sort.Slice(kept, func(i, j int) bool { return kept[i].idx < kept[j].idx })

	out := make([]core.Turn, len(kept))
	for i, s := range kept {
		out[i] = s.turn
	}
	return out
}

func importanceScore(t core.Turn, index, total int) float64 {
	score := 0.5
	if t.Type == core.RoleSystem {
		score = 1.0
	}

	lower := strings.ToLower(t.Content)
	matches := 0
	for _, kw := range importanceKeywords {
		if strings.Contains(lower, kw) {
			matches++
		}
	}
	bonus := float64(matches) * 0.1
	if bonus > 0.3 {
		bonus = 0.3
	}
	score += bonus

	if total > 0 {
		score += 0.3 * (float64(index) / float64(total))
	}

	n := len(t.Content)
	switch {
	case n > 1000:
		score -= 0.1
	case n >= 100 && n <= 500:
		score += 0.1
	}

	return score
}

func partitionSystem(messages []core.Turn) (systems, nonSystems []core.Turn) {
	for _, t := range messages {
		if t.Type == core.RoleSystem {
			systems = append(systems, t)
		} else {
			nonSystems = append(nonSystems, t)
		}
	}
	return systems, nonSystems
}

// mergeInOriginalOrder filters original to only the kept turns (by UUID),
// preserving original's ordering.
func mergeInOriginalOrder(original, kept []core.Turn) []core.Turn {
	keepSet := make(map[string]bool, len(kept))
	for _, t := range kept {
		keepSet[t.UUID] = true
	}
	var out []core.Turn
	for _, t := range original {
		if keepSet[t.UUID] {
			out = append(out, t)
		}
	}
	return out
}

// reorderByOriginal re-emits combined (which may include a merged/replaced
// system message not present by UUID in original) following original's
// relative ordering for everything else, with any synthesized system
// messages placed first.
func reorderByOriginal(original, combined []core.Turn) []core.Turn {
	combinedSet := make(map[string]core.Turn, len(combined))
	for _, t := range combined {
		combinedSet[t.UUID] = t
	}

	var synthesized []core.Turn
	var ordered []core.Turn
	seen := make(map[string]bool, len(original))
	for _, t := range original {
		seen[t.UUID] = true
		if kept, ok := combinedSet[t.UUID]; ok {
			ordered = append(ordered, kept)
		}
	}
	for _, t := range combined {
		if !seen[t.UUID] {
			synthesized = append(synthesized, t)
		}
	}

	return append(synthesized, ordered...)
}
