// ABOUTME: JSON metadata index mapping session ids to summary records.
// ABOUTME: The index file is the source of truth for session listing and titles; it is rebuildable from the JSONL logs.

package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/2389-research/bytecraft/core"
)

// metadataIndex is the on-disk shape of the metadata index file: a flat
// map from session id to its summary record.
type metadataIndex struct {
	Sessions map[string]core.SessionMeta `json:"sessions"`
}

// loadMetadataIndex reads the metadata index file. A missing file is not
// an error — it is treated as an empty index, since the index can always
// be rebuilt by replaying the JSONL logs.
func loadMetadataIndex(path string) (*metadataIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &metadataIndex{Sessions: make(map[string]core.SessionMeta)}, nil
		}
		return nil, fmt.Errorf("read metadata index: %w", err)
	}

	var idx metadataIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("parse metadata index: %w", err)
	}
	if idx.Sessions == nil {
		idx.Sessions = make(map[string]core.SessionMeta)
	}
	return &idx, nil
}

// saveMetadataIndex writes the index atomically via temp-file + rename so
// a crash mid-write never leaves a half-written index file behind.
func saveMetadataIndex(path string, idx *metadataIndex) error {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata index: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp metadata index: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp metadata index: %w", err)
	}

	if dir, err := os.Open(filepath.Dir(path)); err == nil {
		_ = dir.Sync()
		_ = dir.Close()
	}
	return nil
}

// SessionSummary pairs a session id with its metadata record, used for
// listing sessions in most-recently-updated order.
type SessionSummary struct {
	ID string `json:"id"`
	core.SessionMeta
}

// sortSummaries orders summaries by Updated descending, most recent first.
func sortSummaries(summaries []SessionSummary) {
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Updated.After(summaries[j].Updated)
	})
}
