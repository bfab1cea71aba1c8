// ABOUTME: Startup recovery for the session store: repairs truncated logs and rebuilds the metadata index by replay.
// ABOUTME: Grounded on the rebuildable-cache principle: nothing here is needed unless a prior process crashed mid-write.

package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/2389-research/bytecraft/core"
)

// RecoverAll walks every session directory under the store home, repairs
// any JSONL log with a corrupted trailing line, and rebuilds the
// metadata index entry for each session from the repaired log. It is
// meant to run once at process startup, before any session is resolved.
//
// This never needs to run for correctness — the metadata index is kept
// up to date on every AppendTurn — but a prior process crash between an
// Append's fsync and the metadata update could leave the index slightly
// stale, and a crash mid-Append can leave a log's final line truncated.
// RecoverAll reconciles both.
func (s *Store) RecoverAll() error {
	sessionsDir := filepath.Join(s.home, "sessions")
	entries, err := os.ReadDir(sessionsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("list session dirs: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		sessionID := entry.Name()
		if err := s.recoverSession(sessionID); err != nil {
			return fmt.Errorf("recover session %s: %w", sessionID, err)
		}
	}
	return nil
}

func (s *Store) recoverSession(sessionID string) error {
	path := filepath.Join(s.sessionDir(sessionID), turnsFileName)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if _, err := RepairJsonl(path); err != nil {
		return fmt.Errorf("repair jsonl: %w", err)
	}

	turns, err := ReplayJsonl(path)
	if err != nil {
		return fmt.Errorf("replay after repair: %w", err)
	}

	return s.rebuildMetadataFromTurns(sessionID, turns)
}

// rebuildMetadataFromTurns recomputes a session's metadata record purely
// from its turn log, overwriting whatever was previously in the index.
// Used by RecoverAll.
func (s *Store) rebuildMetadataFromTurns(sessionID string, turns []core.Turn) error {
	return s.updateMetadata(sessionID, func(meta *core.SessionMeta) {
		*meta = core.SessionMeta{}
		meta.MessageCount = len(turns)
		for _, t := range turns {
			if meta.Created.IsZero() {
				meta.Created = t.Timestamp
			}
			meta.Updated = t.Timestamp
			if meta.Title == "" && t.Type == core.RoleUser {
				meta.Title = core.TitleFromMessage(t.Content)
			}
		}
	})
}
