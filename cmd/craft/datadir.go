// ABOUTME: XDG-based data directory resolution for the craft CLI.
// ABOUTME: Checks XDG_DATA_HOME, falls back to ~/.local/share/craft.

package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// defaultDataDir returns the default data directory for craft's persistent
// session store. It checks XDG_DATA_HOME first, then falls back to
// ~/.local/share/craft.
func defaultDataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "craft"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(home, ".local", "share", "craft"), nil
}
