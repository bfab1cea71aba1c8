// ABOUTME: Drops failed rounds (a user turn plus the assistant turns that answered it) from a turn list.
// ABOUTME: A round is dropped only when every assistant turn in it fails the response validator.

package curate

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/2389-research/bytecraft/core"
)

// failureMarkers are substrings whose presence anywhere in an assistant
// turn's content marks it as a failed response. Matched case-insensitively.
var failureMarkers = []string{
	"[error]", "failed", "❌", "错误", "失败", "无法完成",
	"error:", "exception:", "failed to", "unable to", "cannot process",
}

// inProgressMarkers mark a response that never finished generating.
var inProgressMarkers = []string{
	"processing...", "thinking...", "loading...", "正在处理", "请稍等", "正在生成",
}

// Reason names why an assistant turn was classified invalid.
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonTooShort      Reason = "too_short"
	ReasonFailureMarker Reason = "failure_marker"
	ReasonInProgress    Reason = "in_progress_marker"
	ReasonInvalidJSON   Reason = "invalid_json_prefix"
	ReasonRepetition    Reason = "pathological_repetition"
)

// Stats reports what curation did.
type Stats struct {
	OriginalCount int
	CuratedCount  int
	RoundsDropped int
	Reasons       []Reason
}

// Result is the outcome of Curate.
type Result struct {
	Turns []core.Turn
	Stats Stats
}

// Curate drops failed rounds from turns. A round is a user turn followed by
// zero or more assistant turns; it is dropped iff every assistant turn in it
// is invalid. System and tool turns pass through unchanged; each one ends
// the current round, so assistant turns that follow it (before the next user
// turn) also pass through without being judged.
func Curate(turns []core.Turn) Result {
	rounds := splitRounds(turns)

	var out []core.Turn
	stats := Stats{OriginalCount: len(turns)}

	for _, r := range rounds {
		if r.isRound && r.allAssistantInvalid() {
			stats.RoundsDropped++
			for _, t := range r.turns {
				if t.Type == core.RoleAssistant {
					_, reason := Validate(t)
					stats.Reasons = append(stats.Reasons, reason)
				}
			}
			continue
		}
		out = append(out, r.turns...)
	}

	stats.CuratedCount = len(out)
	return Result{Turns: out, Stats: stats}
}

// round groups one user turn with the assistant turns that directly follow
// it, or is a single non-round passthrough turn (any system or tool turn,
// and any assistant turn not directly preceded by a user-led round).
type round struct {
	turns   []core.Turn
	isRound bool
}

func (r round) allAssistantInvalid() bool {
	any := false
	for _, t := range r.turns {
		if t.Type != core.RoleAssistant {
			continue
		}
		any = true
		if ok, _ := Validate(t); ok {
			return false
		}
	}
	return any
}

func splitRounds(turns []core.Turn) []round {
	var rounds []round
	var current *round

	flush := func() {
		if current != nil {
			rounds = append(rounds, *current)
			current = nil
		}
	}

	for _, t := range turns {
		switch t.Type {
		case core.RoleUser:
			flush()
			current = &round{turns: []core.Turn{t}, isRound: true}
		case core.RoleAssistant:
			if current != nil && current.isRound {
				current.turns = append(current.turns, t)
			} else {
				rounds = append(rounds, round{turns: []core.Turn{t}, isRound: false})
			}
		default:
			flush()
			rounds = append(rounds, round{turns: []core.Turn{t}, isRound: false})
		}
	}
	flush()

	return rounds
}

// Validate classifies a single assistant turn. ok is true when the turn
// passes; reason explains why it failed otherwise.
func Validate(t core.Turn) (ok bool, reason Reason) {
	content := strings.TrimSpace(t.Content)

	if utf8.RuneCountInString(content) < 5 {
		return false, ReasonTooShort
	}

	lower := strings.ToLower(content)
	for _, m := range failureMarkers {
		if strings.Contains(lower, m) {
			return false, ReasonFailureMarker
		}
	}
	for _, m := range inProgressMarkers {
		if strings.Contains(lower, m) {
			return false, ReasonInProgress
		}
	}

	if strings.HasPrefix(content, "{") || strings.HasPrefix(content, "[") {
		var v any
		if err := json.Unmarshal([]byte(content), &v); err != nil {
			return false, ReasonInvalidJSON
		}
	}

	if isPathologicalRepetition(content) {
		return false, ReasonRepetition
	}

	return true, ReasonNone
}

// isPathologicalRepetition flags responses stuck repeating one token: at
// least 10 whitespace-separated tokens, with some token longer than 2
// characters occupying more than 30% of the positions.
func isPathologicalRepetition(content string) bool {
	tokens := strings.Fields(content)
	if len(tokens) < 10 {
		return false
	}

	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}

	threshold := float64(len(tokens)) * 0.3
	for tok, count := range counts {
		if utf8.RuneCountInString(tok) > 2 && float64(count) > threshold {
			return true
		}
	}
	return false
}
