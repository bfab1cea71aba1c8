// ABOUTME: Sensitive-string filter that redacts credential-shaped key/value pairs while preserving prose.
// ABOUTME: Matching is longest-key-first so short keys (e.g. "key") never shadow longer ones (e.g. "api_key").

package redact

import (
	"regexp"
	"sort"

	"github.com/2389-research/bytecraft/core"
)

// DefaultKeys is the default set of credential-shaped keys to redact,
// applied longest-first so e.g. "api_key" is matched before "key".
var DefaultKeys = []string{
	"authorization", "access_token", "refresh_token", "secret_key",
	"password", "api_key", "bearer", "secret", "token", "auth", "key",
}

// Filter redacts credential-shaped substrings from every turn's content,
// returning a new slice; input turns are not mutated. Only content
// changes; role, id, and all other fields are preserved.
func Filter(turns []core.Turn, keys ...string) []core.Turn {
	if len(keys) == 0 {
		keys = DefaultKeys
	}
	patterns := compile(keys)

	out := make([]core.Turn, len(turns))
	for i, t := range turns {
		redacted := t
		redacted.Content = FilterText(t.Content, patterns)
		out[i] = redacted
	}
	return out
}

// pattern wraps one compiled regexp. Its first capture group is the key as
// written in the input, so the replacement re-emits "key: [FILTERED]" with
// the original casing the input used for the key token.
type pattern struct {
	re *regexp.Regexp
}

// compile builds one regexp per key, longest key first, matching
// `key<sep><value>` where sep is `:` or `=` (optionally surrounded by
// whitespace) and value is a bounded run of identifier/quote characters.
// Requiring the separator is what keeps prose mentions of the bare word
// ("a secure password strategy") untouched.
func compile(keys []string) []pattern {
	sorted := append([]string(nil), keys...)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	var patterns []pattern

	// The HTTP header form ("authorization: Bearer <token>") must be
	// matched before the generic key=value pattern below, or the generic
	// pattern would consume just the word "Bearer" as the value and leave
	// the token dangling after "[FILTERED]".
	patterns = append(patterns, pattern{
		re: regexp.MustCompile(`(?i)(authorization)(\s*:\s*)(Bearer\s+[A-Za-z0-9_\-./+]{3,})`),
	})

	for _, key := range sorted {
		expr := `(?i)(` + regexp.QuoteMeta(key) + `)(\s*[:=]\s*)("?[A-Za-z0-9_\-./+]{3,}"?)`
		patterns = append(patterns, pattern{re: regexp.MustCompile(expr)})
	}

	return patterns
}

// FilterText applies every compiled pattern to one string. Idempotent:
// a value already replaced by "[FILTERED]" does not match the value
// pattern again, because the value character class does not include the
// leading '['.
func FilterText(content string, patterns []pattern) string {
	result := content
	for _, p := range patterns {
		result = p.re.ReplaceAllString(result, "$1: [FILTERED]")
	}
	return result
}

// FilterString is a convenience entry point for redacting a single string
// with the default key set, for callers that don't have a core.Turn.
func FilterString(content string, keys ...string) string {
	if len(keys) == 0 {
		keys = DefaultKeys
	}
	return FilterText(content, compile(keys))
}
