// ABOUTME: Append-only JSONL turn log for durable per-session storage.
// ABOUTME: Provides crash-safe append, sequential replay, and repair for a truncated trailing line.

package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/2389-research/bytecraft/core"
)

// JsonlLog is an append-only JSONL log of turns backed by a file.
// Each line is one JSON-serialized core.Turn followed by a newline.
type JsonlLog struct {
	path string
	file *os.File
}

// OpenJsonl opens (or creates) a JSONL log file at the given path,
// creating parent directories as needed. The file is opened in append mode.
func OpenJsonl(path string) (*JsonlLog, error) {
	parent := filepath.Dir(path)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return nil, fmt.Errorf("create parent dirs: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open jsonl file: %w", err)
	}

	return &JsonlLog{path: path, file: file}, nil
}

// Path returns the path to the underlying JSONL file.
func (l *JsonlLog) Path() string {
	return l.path
}

// Append serializes a single turn as one JSON line, writes it with a
// trailing newline, and fsyncs to disk before returning.
func (l *JsonlLog) Append(turn core.Turn) error {
	data, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("marshal turn: %w", err)
	}

	line := append(data, '\n')
	if _, err := l.file.Write(line); err != nil {
		return fmt.Errorf("write turn line: %w", err)
	}

	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("fsync: %w", err)
	}

	return nil
}

// Close closes the underlying file.
func (l *JsonlLog) Close() error {
	return l.file.Close()
}

// ReplayJsonl reads all turns from a JSONL file in order. Empty lines are
// skipped. A corrupted final line (e.g. from a crash mid-write) is skipped
// rather than treated as fatal; any corrupted line before the last one is
// still an error, since that indicates file corruption beyond a partial write.
func ReplayJsonl(path string) ([]core.Turn, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open jsonl for replay: %w", err)
	}
	defer func() { _ = file.Close() }()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan jsonl file: %w", err)
	}

	turns := make([]core.Turn, 0, len(lines))
	for i, line := range lines {
		var turn core.Turn
		if err := json.Unmarshal([]byte(line), &turn); err != nil {
			if i == len(lines)-1 {
				// Tolerate a corrupted trailing line (partial write on crash).
				break
			}
			return nil, fmt.Errorf("parse turn line %d: %w", i, err)
		}
		turns = append(turns, turn)
	}

	return turns, nil
}

// RepairJsonl rewrites a potentially corrupted JSONL file, keeping only
// complete, parseable lines and discarding any partial trailing data.
// Uses atomic temp-file + fsync + rename so a crash mid-repair never loses
// the original file. Returns the count of valid turns retained.
func RepairJsonl(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open jsonl for repair: %w", err)
	}

	var validLines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var turn core.Turn
		if json.Unmarshal([]byte(line), &turn) == nil {
			validLines = append(validLines, scanner.Text())
		}
	}
	if err := scanner.Err(); err != nil {
		_ = file.Close()
		return 0, fmt.Errorf("scan jsonl for repair: %w", err)
	}
	_ = file.Close()

	count := len(validLines)

	tmpPath := path + ".tmp"
	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}

	for _, line := range validLines {
		if _, err := fmt.Fprintln(tmpFile, line); err != nil {
			_ = tmpFile.Close()
			_ = os.Remove(tmpPath)
			return 0, fmt.Errorf("write valid line: %w", err)
		}
	}

	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
		return 0, fmt.Errorf("fsync temp file: %w", err)
	}
	_ = tmpFile.Close()

	if err := os.Rename(tmpPath, path); err != nil {
		return 0, fmt.Errorf("rename temp to original: %w", err)
	}

	parent := filepath.Dir(path)
	if dir, err := os.Open(parent); err == nil {
		_ = dir.Sync()
		_ = dir.Close()
	}

	return count, nil
}
