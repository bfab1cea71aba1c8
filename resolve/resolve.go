// ABOUTME: Session resolver: maps a user-typed id/prefix/title fragment to a full session id.
// ABOUTME: Prefers the sqlite accelerant cache for lookups, falling back to a linear metadata scan when the cache is stale or absent.

package resolve

import (
	"strings"

	"github.com/2389-research/bytecraft/store"
)

// fullIDLength is the length at or above which input is treated as a full
// session id rather than a prefix or title fragment.
const fullIDLength = 32

// minTitleSubstringLength is the input length that must be exceeded for a
// title-substring match to be attempted, avoiding spurious matches on very
// short input.
const minTitleSubstringLength = 2

// Resolve maps input to a full session id, or returns ok=false if nothing
// matches. Resolution order: (1) if input is at least fullIDLength
// characters, treat it as a full id and verify it exists; (2) otherwise,
// exact prefix match on session id; (3) case-insensitive substring match
// on title, if input is longer than minTitleSubstringLength. Ties within a
// stage are broken by most-recently-updated first.
func Resolve(s *store.Store, cache *store.SqliteCache, input string) (string, bool, error) {
	if len(input) >= fullIDLength {
		_, ok, err := s.GetSessionMeta(input)
		if err != nil {
			return "", false, err
		}
		if ok {
			return input, true, nil
		}
		return "", false, nil
	}

	if cache != nil {
		id, ok, err := resolveViaCache(cache, input)
		if err == nil && ok {
			return id, true, nil
		}
	}
	return resolveViaScan(s, input)
}

func resolveViaCache(cache *store.SqliteCache, input string) (string, bool, error) {
	ids, err := cache.FindByPrefix(input)
	if err != nil {
		return "", false, err
	}
	if len(ids) > 0 {
		return ids[0], true, nil
	}

	if len(input) > minTitleSubstringLength {
		ids, err := cache.FindByTitleSubstring(input)
		if err != nil {
			return "", false, err
		}
		if len(ids) > 0 {
			return ids[0], true, nil
		}
	}
	return "", false, nil
}

// resolveViaScan performs a linear scan of the JSON metadata index, used
// when the sqlite cache is stale, absent, or errored. Sessions are
// considered in updated-descending order so the first match is the most
// recently active session.
func resolveViaScan(s *store.Store, input string) (string, bool, error) {
	summaries, err := s.ListSessions()
	if err != nil {
		return "", false, err
	}

	for _, summary := range summaries {
		if strings.HasPrefix(summary.ID, input) {
			return summary.ID, true, nil
		}
	}

	if len(input) > minTitleSubstringLength {
		lower := strings.ToLower(input)
		for _, summary := range summaries {
			if strings.Contains(strings.ToLower(summary.Title), lower) {
				return summary.ID, true, nil
			}
		}
	}
	return "", false, nil
}

// Recover implements the startup recovery sequence: (1) the last-active
// session if recorded; (2) else the most recently updated session; (3)
// else a freshly created session with the given title. created reports
// whether a new session was created.
func Recover(s *store.Store, newSessionTitle string) (sessionID string, created bool, err error) {
	if id, ok, err := s.GetLastSession(); err != nil {
		return "", false, err
	} else if ok {
		if _, exists, err := s.GetSessionMeta(id); err != nil {
			return "", false, err
		} else if exists {
			return id, false, nil
		}
	}

	summaries, err := s.ListSessions()
	if err != nil {
		return "", false, err
	}
	if len(summaries) > 0 {
		return summaries[0].ID, false, nil
	}

	id, err := s.CreateSession(newSessionTitle)
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

// RebuildCache repopulates the sqlite accelerant cache from the metadata
// index, the source of truth. Call this at startup, and whenever a cache
// lookup errors in a way suggestive of corruption.
func RebuildCache(s *store.Store, cache *store.SqliteCache) error {
	summaries, err := s.ListSessions()
	if err != nil {
		return err
	}
	return cache.Rebuild(summaries)
}
