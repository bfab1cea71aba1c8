// ABOUTME: Token estimation for message lists using language-aware character heuristics.
// ABOUTME: No real tokenizer is wired in; enhanced mode approximates BPE behavior well enough for budget checks.

package estimate

import (
	"fmt"
	"math"

	"github.com/2389-research/bytecraft/core"
)

// Mode selects which heuristic estimate computes tokens with.
type Mode string

const (
	// ModeSimple divides total character count by 3.
	ModeSimple Mode = "simple"
	// ModeEnhanced weighs CJK, Latin, and other characters differently and
	// adds a small per-message overhead for role/framing tokens. Default.
	ModeEnhanced Mode = "enhanced"
	// ModePrecise is reserved for a real BPE tokenizer integration; no such
	// library is wired in, so it currently behaves exactly like ModeEnhanced.
	ModePrecise Mode = "precise"
)

// Estimate computes the total estimated token count across all turns'
// content, using the named mode. Never fails: turns whose content would
// otherwise be empty are simply counted as zero extra tokens.
func Estimate(turns []core.Turn, mode Mode) int {
	total := 0
	for _, t := range turns {
		total += EstimateText(t.Content, mode)
	}
	return total
}

// EstimateText computes the estimated token count of a single string,
// without the per-message framing overhead ModeEnhanced adds for full
// messages.
func EstimateText(content string, mode Mode) int {
	switch mode {
	case ModeSimple:
		return simpleEstimate(content)
	case ModeEnhanced, ModePrecise:
		return enhancedContentTokens(content)
	default:
		return enhancedContentTokens(content)
	}
}

// EstimateMessage estimates one message's token cost, including the
// framing overhead that ModeEnhanced charges per message.
func EstimateMessage(content string, mode Mode) int {
	switch mode {
	case ModeSimple:
		return simpleEstimate(content)
	default:
		return enhancedFramingTokens + enhancedContentTokens(content)
	}
}

// enhancedFramingTokens is the fixed per-message overhead ModeEnhanced
// charges for role/framing tokens a real chat-completion wire format adds.
const enhancedFramingTokens = 4

func simpleEstimate(content string) int {
	if content == "" {
		return 0
	}
	return int(math.Ceil(float64(len(content)) / 3.0))
}

// enhancedContentTokens splits content into CJK, Latin-letter, and other
// characters, weighting each differently: CJK characters tend to each
// carry more semantic density per byte than Latin letters, so they're
// charged more tokens per character; ASCII punctuation and whitespace are
// cheapest.
func enhancedContentTokens(content string) int {
	if content == "" {
		return 0
	}

	var cjk, latin, other int
	for _, r := range content {
		switch {
		case isCJK(r):
			cjk++
		case isLatinLetter(r):
			latin++
		default:
			other++
		}
	}

	tokens := math.Ceil(float64(cjk)/1.5) + math.Ceil(float64(latin)/0.75) + math.Ceil(float64(other)/2.0)
	return int(tokens)
}

func isCJK(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) || // CJK Unified Ideographs
		(r >= 0x3400 && r <= 0x4DBF) || // CJK Extension A
		(r >= 0x3040 && r <= 0x30FF) || // Hiragana/Katakana
		(r >= 0xAC00 && r <= 0xD7AF) // Hangul syllables
}

func isLatinLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// AsText converts an arbitrary value into the string EstimateText expects,
// for callers that may hold non-string content (e.g. a tool argument
// object) and still need an estimate.
func AsText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
