// ABOUTME: Tests for the rebuildable sqlite accelerant cache used by the session resolver.

package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/2389-research/bytecraft/core"
)

func TestSqliteCacheRebuildAndQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")

	cache, err := OpenSqliteCache(path)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer func() { _ = cache.Close() }()

	now := time.Now()
	summaries := []SessionSummary{
		{ID: "abc123", SessionMeta: core.SessionMeta{Title: "fix login bug", Created: now, Updated: now, MessageCount: 3}},
		{ID: "def456", SessionMeta: core.SessionMeta{Title: "refactor parser", Created: now, Updated: now.Add(time.Minute), MessageCount: 1}},
	}

	if err := cache.Rebuild(summaries); err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	ids, err := cache.FindByPrefix("abc")
	if err != nil {
		t.Fatalf("find by prefix: %v", err)
	}
	if len(ids) != 1 || ids[0] != "abc123" {
		t.Fatalf("expected [abc123], got %v", ids)
	}

	ids, err = cache.FindByTitleSubstring("parser")
	if err != nil {
		t.Fatalf("find by title substring: %v", err)
	}
	if len(ids) != 1 || ids[0] != "def456" {
		t.Fatalf("expected [def456], got %v", ids)
	}
}

func TestSqliteCacheUpsertUpdatesExistingRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")

	cache, err := OpenSqliteCache(path)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer func() { _ = cache.Close() }()

	now := time.Now()
	summary := SessionSummary{ID: "abc123", SessionMeta: core.SessionMeta{Title: "first title", Created: now, Updated: now, MessageCount: 1}}
	if err := cache.Upsert(summary); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	summary.Title = "renamed"
	summary.MessageCount = 2
	if err := cache.Upsert(summary); err != nil {
		t.Fatalf("upsert update: %v", err)
	}

	ids, err := cache.FindByTitleSubstring("renamed")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("expected 1 match after rename, got %d", len(ids))
	}
}
