// Package migrate imports legacy JSONL tool-usage logs into the database.
package migrate

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cctrack/cctrack/internal/store"
)

// legacyRecord is one line of the old tool-usage.jsonl log format.
type legacyRecord struct {
	Timestamp string          `json:"ts"`
	Tool      string          `json:"tool"`
	Session   string          `json:"session"`
	Cwd       string          `json:"cwd"`
	Input     json.RawMessage `json:"input"`
}

// FromFile imports records from a legacy JSONL file. Returns user-facing
// summary output.
func FromFile(jsonlPath string, st *store.Store) (string, error) {
	f, err := os.Open(jsonlPath)
	if os.IsNotExist(err) {
		return fmt.Sprintf("No JSONL file found at %s\nNothing to migrate.\n", jsonlPath), nil
	}
	if err != nil {
		return "", fmt.Errorf("open legacy log: %w", err)
	}
	defer f.Close()

	imported, skipped, err := FromReader(f, st)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	fmt.Fprintf(&out, "Migrated %d tool-use records into SQLite.\n", imported)
	if skipped > 0 {
		fmt.Fprintf(&out, "Skipped %d invalid lines.\n", skipped)
	}
	fmt.Fprintf(&out, "Source: %s\n", jsonlPath)
	return out.String(), nil
}

// FromReader imports legacy records line by line. Invalid lines are
// counted and skipped. Returns (imported, skipped).
func FromReader(r io.Reader, st *store.Store) (int64, int64, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var imported, skipped int64
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var record legacyRecord
		if err := json.Unmarshal(line, &record); err != nil {
			skipped++
			continue
		}
		input := string(record.Input)
		if input == "null" {
			input = ""
		}
		err := st.InsertMigratedToolUse(record.Session, record.Tool, record.Timestamp, record.Cwd, input)
		if err != nil {
			return imported, skipped, err
		}
		imported++
	}
	if err := scanner.Err(); err != nil {
		return imported, skipped, fmt.Errorf("read legacy log: %w", err)
	}
	return imported, skipped, nil
}
