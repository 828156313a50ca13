package commands

import (
	"os"
	"path/filepath"

	"github.com/cctrack/cctrack/internal/store"
)

// resolveDBPath picks the database path from the --db flag, falling back
// to the default location.
func resolveDBPath(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	return store.DefaultPath()
}

func openStore(dbFlag string) (*store.Store, string, error) {
	path, err := resolveDBPath(dbFlag)
	if err != nil {
		return nil, "", err
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, "", err
	}
	return st, path, nil
}

// defaultProjectsDir returns the Claude Code transcripts directory.
func defaultProjectsDir() string {
	if dir := os.Getenv("CLAUDE_CONFIG_DIR"); dir != "" {
		return filepath.Join(dir, "projects")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".claude", "projects")
}

// legacyLogPath returns the old JSONL log location used before SQLite.
func legacyLogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".claude", "tool-usage.jsonl")
}
