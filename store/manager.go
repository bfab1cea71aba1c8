// ABOUTME: Store ties together the per-session JSONL logs, the JSON metadata index, and the last-session pointer.
// ABOUTME: Directory layout follows the teacher's StorageManager convention: one subdirectory per session under the state home.

package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/2389-research/bytecraft/core"
)

const turnsFileName = "turns.jsonl"

// Store is the durable session store: append-only per-session JSONL logs,
// a JSON metadata index for listing and titles, and a last-session
// pointer file. All three files live under the home directory passed to
// Open; the craft CLI passes $XDG_DATA_HOME/craft, or ~/.local/share/craft
// when that is unset, not a directory under the working directory.
type Store struct {
	home string

	idxMu sync.Mutex // guards the metadata index file

	logMu   sync.Mutex // guards the per-session log handle map
	logs    map[string]*JsonlLog
	session sync.Map // sessionID -> *sync.Mutex, one lock per session
}

// Open prepares a Store rooted at homeDir, creating the directory if it
// does not already exist. It does not eagerly load any session; sessions
// are opened lazily on first append or read.
func Open(homeDir string) (*Store, error) {
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		return nil, fmt.Errorf("create store home: %w", err)
	}
	return &Store{
		home: homeDir,
		logs: make(map[string]*JsonlLog),
	}, nil
}

// Home returns the store's root directory.
func (s *Store) Home() string {
	return s.home
}

func (s *Store) sessionDir(sessionID string) string {
	return filepath.Join(s.home, "sessions", sessionID)
}

func (s *Store) metadataPath() string {
	return filepath.Join(s.home, "sessions.json")
}

// SqliteCachePath returns the path to the rebuildable sqlite accelerant
// cache used by the Session Resolver. The file may not exist yet; callers
// create it with OpenSqliteCache and rebuild it from ListSessions.
func (s *Store) SqliteCachePath() string {
	return filepath.Join(s.home, "index.db")
}

// sessionLock returns the mutex guarding a single session's append path,
// creating it on first use. Holding this lock serializes concurrent
// writers within this process; it is not a cross-process lock.
func (s *Store) sessionLock(sessionID string) *sync.Mutex {
	v, _ := s.session.LoadOrStore(sessionID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

func (s *Store) openLog(sessionID string) (*JsonlLog, error) {
	s.logMu.Lock()
	defer s.logMu.Unlock()

	if log, ok := s.logs[sessionID]; ok {
		return log, nil
	}

	path := filepath.Join(s.sessionDir(sessionID), turnsFileName)
	log, err := OpenJsonl(path)
	if err != nil {
		return nil, err
	}
	s.logs[sessionID] = log
	return log, nil
}

// CreateSession allocates a new session id (a UUID, per the spec's
// session-id requirement) and records an initial metadata entry with the
// given title. It does not write any turns.
func (s *Store) CreateSession(title string) (string, error) {
	sessionID := uuid.NewString()
	now := time.Now()

	if err := s.updateMetadata(sessionID, func(meta *core.SessionMeta) {
		meta.Title = title
		meta.Created = now
		meta.Updated = now
		meta.MessageCount = 0
	}); err != nil {
		return "", err
	}
	return sessionID, nil
}

// AppendTurn durably appends one turn to the named session's JSONL log,
// fsyncing before return, then updates the session's metadata entry
// (Updated timestamp, MessageCount, and — if this is the first user turn
// and no title has been set — a derived title).
func (s *Store) AppendTurn(sessionID string, turn core.Turn) error {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	log, err := s.openLog(sessionID)
	if err != nil {
		return fmt.Errorf("open session log: %w", err)
	}
	if err := log.Append(turn); err != nil {
		return fmt.Errorf("append turn: %w", err)
	}

	err = s.updateMetadata(sessionID, func(meta *core.SessionMeta) {
		if meta.Created.IsZero() {
			meta.Created = turn.Timestamp
		}
		meta.Updated = turn.Timestamp
		meta.MessageCount++
		if meta.Title == "" && turn.Type == core.RoleUser {
			meta.Title = core.TitleFromMessage(turn.Content)
		}
	})
	if err != nil {
		return fmt.Errorf("update metadata after append: %w", err)
	}
	return nil
}

// DeleteSession removes a session's JSONL log directory and its metadata
// index entry. It is a no-op, not an error, when sessionID is unknown: a
// caller retrying a delete after a crash should not have to special-case
// "already gone."
func (s *Store) DeleteSession(sessionID string) error {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	s.logMu.Lock()
	if log, ok := s.logs[sessionID]; ok {
		_ = log.Close()
		delete(s.logs, sessionID)
	}
	s.logMu.Unlock()

	if err := os.RemoveAll(s.sessionDir(sessionID)); err != nil {
		return fmt.Errorf("remove session directory: %w", err)
	}

	s.idxMu.Lock()
	defer s.idxMu.Unlock()

	idx, err := loadMetadataIndex(s.metadataPath())
	if err != nil {
		return err
	}
	if _, ok := idx.Sessions[sessionID]; !ok {
		return nil
	}
	delete(idx.Sessions, sessionID)
	return saveMetadataIndex(s.metadataPath(), idx)
}

// LoadTurns replays a session's full turn history from its JSONL log, in
// append order. A session with no turns yet returns an empty slice, not
// an error.
func (s *Store) LoadTurns(sessionID string) ([]core.Turn, error) {
	path := filepath.Join(s.sessionDir(sessionID), turnsFileName)
	turns, err := ReplayJsonl(path)
	if err != nil {
		return nil, fmt.Errorf("replay session %s: %w", sessionID, err)
	}
	return turns, nil
}

// updateMetadata loads the metadata index, applies fn to the named
// session's record (creating a zero-value record if absent), and saves
// the index back. Holding idxMu for the whole load-modify-save cycle
// keeps concurrent metadata updates from clobbering one another.
func (s *Store) updateMetadata(sessionID string, fn func(*core.SessionMeta)) error {
	s.idxMu.Lock()
	defer s.idxMu.Unlock()

	idx, err := loadMetadataIndex(s.metadataPath())
	if err != nil {
		return err
	}

	meta := idx.Sessions[sessionID]
	fn(&meta)
	idx.Sessions[sessionID] = meta

	return saveMetadataIndex(s.metadataPath(), idx)
}

// UpdateTitle overwrites a session's stored title, e.g. in response to a
// user-issued rename.
func (s *Store) UpdateTitle(sessionID, title string) error {
	return s.updateMetadata(sessionID, func(meta *core.SessionMeta) {
		meta.Title = title
	})
}

// ListSessions returns every known session's summary, most recently
// updated first.
func (s *Store) ListSessions() ([]SessionSummary, error) {
	s.idxMu.Lock()
	idx, err := loadMetadataIndex(s.metadataPath())
	s.idxMu.Unlock()
	if err != nil {
		return nil, err
	}

	summaries := make([]SessionSummary, 0, len(idx.Sessions))
	for id, meta := range idx.Sessions {
		summaries = append(summaries, SessionSummary{ID: id, SessionMeta: meta})
	}
	sortSummaries(summaries)
	return summaries, nil
}

// GetSessionMeta returns a single session's metadata record, and whether
// it was found.
func (s *Store) GetSessionMeta(sessionID string) (core.SessionMeta, bool, error) {
	s.idxMu.Lock()
	idx, err := loadMetadataIndex(s.metadataPath())
	s.idxMu.Unlock()
	if err != nil {
		return core.SessionMeta{}, false, err
	}
	meta, ok := idx.Sessions[sessionID]
	return meta, ok, nil
}

// SetLastSession records sessionID as the most recently active session,
// for startup recovery.
func (s *Store) SetLastSession(sessionID string) error {
	return writeLastSession(s.home, sessionID)
}

// GetLastSession returns the last-active session id, and whether a
// pointer has been recorded yet.
func (s *Store) GetLastSession() (string, bool, error) {
	id, err := readLastSession(s.home)
	if err != nil {
		return "", false, err
	}
	return id, id != "", nil
}

// Close releases all open session log handles.
func (s *Store) Close() error {
	s.logMu.Lock()
	defer s.logMu.Unlock()

	var firstErr error
	for id, log := range s.logs {
		if err := log.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close session %s: %w", id, err)
		}
	}
	s.logs = make(map[string]*JsonlLog)
	return firstErr
}
