// Package store is the persistence layer: a SQLite database holding the
// facts collected from hook events. All writes are idempotent upserts so
// overlapping hook invocations converge instead of corrupting state.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/cctrack/cctrack/internal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
    session_id      TEXT PRIMARY KEY,
    started_at      TEXT,
    ended_at        TEXT,
    start_reason    TEXT,
    end_reason      TEXT,
    cwd             TEXT,
    transcript_path TEXT
);

CREATE TABLE IF NOT EXISTS tool_uses (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    tool_use_id      TEXT,
    session_id       TEXT,
    tool_name        TEXT,
    timestamp        TEXT,
    cwd              TEXT,
    input            TEXT,
    response_summary TEXT
);

CREATE TABLE IF NOT EXISTS prompts (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id  TEXT,
    timestamp   TEXT,
    prompt_text TEXT
);

CREATE TABLE IF NOT EXISTS token_usage (
    id                    INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id            TEXT,
    timestamp             TEXT,
    model                 TEXT,
    input_tokens          INTEGER DEFAULT 0,
    cache_creation_tokens INTEGER DEFAULT 0,
    cache_read_tokens     INTEGER DEFAULT 0,
    output_tokens         INTEGER DEFAULT 0,
    api_call_count        INTEGER DEFAULT 0
);

CREATE TABLE IF NOT EXISTS plans (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id  TEXT,
    tool_use_id TEXT,
    timestamp   TEXT,
    plan_text   TEXT,
    accepted    INTEGER
);
`

// Store wraps the tracking database.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the default database location: ~/.claude/cctrack.db.
// The CCTRACK_DB environment variable overrides it.
func DefaultPath() (string, error) {
	if p := os.Getenv("CCTRACK_DB"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", types.ErrNoHomeDir
	}
	return filepath.Join(home, ".claude", "cctrack.db"), nil
}

// Open opens (or creates) the database at path and initializes the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// OpenMemory opens a throwaway in-memory database, used by tests.
func OpenMemory() (*Store, error) {
	return Open(":memory:")
}

func (s *Store) init() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("initialize schema: %w", err)
	}
	// Migration for databases created before incremental accounting: the
	// error when the column already exists is deliberately ignored.
	s.db.Exec("ALTER TABLE token_usage ADD COLUMN last_transcript_offset INTEGER DEFAULT 0")
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the raw handle for ad-hoc queries and the stats report.
func (s *Store) DB() *sql.DB {
	return s.db
}

// InsertSessionStart records a session start. Repeated starts for the same
// session_id keep the original row untouched.
func (s *Store) InsertSessionStart(sessionID, startedAt, startReason, cwd, transcriptPath string) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO sessions (session_id, started_at, start_reason, cwd, transcript_path)
		 VALUES (?, ?, ?, ?, ?)`,
		sessionID, startedAt, startReason, cwd, transcriptPath,
	)
	if err != nil {
		return types.StoreError{Op: "insert session start", Err: err}
	}
	return nil
}

// UpdateSessionEnd sets the end fields on a session. When no start was ever
// captured a synthetic row with only end fields is inserted.
func (s *Store) UpdateSessionEnd(sessionID, endedAt, endReason string) error {
	res, err := s.db.Exec(
		"UPDATE sessions SET ended_at = ?, end_reason = ? WHERE session_id = ?",
		endedAt, endReason, sessionID,
	)
	if err != nil {
		return types.StoreError{Op: "update session end", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		_, err = s.db.Exec(
			"INSERT INTO sessions (session_id, ended_at, end_reason) VALUES (?, ?, ?)",
			sessionID, endedAt, endReason,
		)
		if err != nil {
			return types.StoreError{Op: "insert session end", Err: err}
		}
	}
	return nil
}

// TranscriptPath returns the recorded transcript path for a session, or ""
// when the session is unknown or has none.
func (s *Store) TranscriptPath(sessionID string) (string, error) {
	var path sql.NullString
	err := s.db.QueryRow(
		"SELECT transcript_path FROM sessions WHERE session_id = ?", sessionID,
	).Scan(&path)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", types.StoreError{Op: "get transcript path", Err: err}
	}
	return path.String, nil
}

// InsertToolUse records a PreToolUse event.
func (s *Store) InsertToolUse(toolUseID, sessionID, toolName, timestamp, cwd, input string) error {
	_, err := s.db.Exec(
		`INSERT INTO tool_uses (tool_use_id, session_id, tool_name, timestamp, cwd, input)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		toolUseID, sessionID, toolName, timestamp, cwd, input,
	)
	if err != nil {
		return types.StoreError{Op: "insert tool use", Err: err}
	}
	return nil
}

// UpdateToolUseResponse attaches a response summary to an existing tool use.
// When the matching PreToolUse was never captured, a complete row is
// inserted instead.
func (s *Store) UpdateToolUseResponse(toolUseID, sessionID, toolName, timestamp, cwd, input, responseSummary string) error {
	res, err := s.db.Exec(
		"UPDATE tool_uses SET response_summary = ? WHERE tool_use_id = ?",
		responseSummary, toolUseID,
	)
	if err != nil {
		return types.StoreError{Op: "update tool use", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		_, err = s.db.Exec(
			`INSERT INTO tool_uses (tool_use_id, session_id, tool_name, timestamp, cwd, input, response_summary)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			toolUseID, sessionID, toolName, timestamp, cwd, input, responseSummary,
		)
		if err != nil {
			return types.StoreError{Op: "insert tool use response", Err: err}
		}
	}
	return nil
}

// InsertMigratedToolUse records a legacy flat-file tool call, which carries
// no tool_use_id.
func (s *Store) InsertMigratedToolUse(sessionID, toolName, timestamp, cwd, input string) error {
	_, err := s.db.Exec(
		`INSERT INTO tool_uses (session_id, tool_name, timestamp, cwd, input)
		 VALUES (?, ?, ?, ?, ?)`,
		sessionID, toolName, timestamp, cwd, input,
	)
	if err != nil {
		return types.StoreError{Op: "insert migrated tool use", Err: err}
	}
	return nil
}

// InsertPrompt records a UserPromptSubmit event.
func (s *Store) InsertPrompt(sessionID, timestamp, promptText string) error {
	_, err := s.db.Exec(
		"INSERT INTO prompts (session_id, timestamp, prompt_text) VALUES (?, ?, ?)",
		sessionID, timestamp, promptText,
	)
	if err != nil {
		return types.StoreError{Op: "insert prompt", Err: err}
	}
	return nil
}

// SessionTokenState loads the cumulative accounting snapshot for a session.
// Returns nil when no row exists yet.
func (s *Store) SessionTokenState(sessionID string) (*types.TokenSnapshot, error) {
	var snap types.TokenSnapshot
	err := s.db.QueryRow(
		`SELECT input_tokens, cache_creation_tokens, cache_read_tokens, output_tokens,
		        api_call_count, last_transcript_offset, model
		 FROM token_usage WHERE session_id = ?`, sessionID,
	).Scan(
		&snap.InputTokens, &snap.CacheCreationTokens, &snap.CacheReadTokens,
		&snap.OutputTokens, &snap.APICalls, &snap.LastTranscriptOffset, &snap.Model,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, types.StoreError{Op: "get token state", Err: err}
	}
	return &snap, nil
}

// UpsertTokenUsage writes the cumulative accounting snapshot for a session.
// At most one token_usage row exists per session: an existing row is
// updated in place, never duplicated.
func (s *Store) UpsertTokenUsage(sessionID, timestamp string, snap types.TokenSnapshot) error {
	res, err := s.db.Exec(
		`UPDATE token_usage SET timestamp = ?, model = ?, input_tokens = ?,
		    cache_creation_tokens = ?, cache_read_tokens = ?,
		    output_tokens = ?, api_call_count = ?, last_transcript_offset = ?
		 WHERE session_id = ?`,
		timestamp, snap.Model, snap.InputTokens,
		snap.CacheCreationTokens, snap.CacheReadTokens,
		snap.OutputTokens, snap.APICalls, snap.LastTranscriptOffset,
		sessionID,
	)
	if err != nil {
		return types.StoreError{Op: "update token usage", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		_, err = s.db.Exec(
			`INSERT INTO token_usage (session_id, timestamp, model, input_tokens,
			    cache_creation_tokens, cache_read_tokens, output_tokens,
			    api_call_count, last_transcript_offset)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sessionID, timestamp, snap.Model, snap.InputTokens,
			snap.CacheCreationTokens, snap.CacheReadTokens,
			snap.OutputTokens, snap.APICalls, snap.LastTranscriptOffset,
		)
		if err != nil {
			return types.StoreError{Op: "insert token usage", Err: err}
		}
	}
	return nil
}

// DedupTokenUsage removes extra token_usage rows left over by the append-only
// schema that predates upserts, keeping the row with the highest
// api_call_count per session. Returns the number of rows deleted.
func (s *Store) DedupTokenUsage() (int64, error) {
	res, err := s.db.Exec(
		`DELETE FROM token_usage WHERE id NOT IN (
		    SELECT id FROM token_usage t1
		    WHERE t1.api_call_count = (
		        SELECT MAX(t2.api_call_count) FROM token_usage t2
		        WHERE t2.session_id = t1.session_id
		    )
		    AND t1.id = (
		        SELECT MAX(t3.id) FROM token_usage t3
		        WHERE t3.session_id = t1.session_id
		        AND t3.api_call_count = t1.api_call_count
		    )
		 )`,
	)
	if err != nil {
		return 0, types.StoreError{Op: "dedup token usage", Err: err}
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// InsertPlan records a proposed plan in the pending (accepted IS NULL) state.
func (s *Store) InsertPlan(sessionID, toolUseID, timestamp, planText string) error {
	_, err := s.db.Exec(
		`INSERT INTO plans (session_id, tool_use_id, timestamp, plan_text)
		 VALUES (?, ?, ?, ?)`,
		sessionID, toolUseID, timestamp, planText,
	)
	if err != nil {
		return types.StoreError{Op: "insert plan", Err: err}
	}
	return nil
}

// UpdatePlanAccepted resolves a plan. No-op when no matching row exists.
func (s *Store) UpdatePlanAccepted(toolUseID string, accepted bool) error {
	val := 0
	if accepted {
		val = 1
	}
	_, err := s.db.Exec(
		"UPDATE plans SET accepted = ? WHERE tool_use_id = ?",
		val, toolUseID,
	)
	if err != nil {
		return types.StoreError{Op: "update plan", Err: err}
	}
	return nil
}

// PendingPlanIDs returns the tool_use_ids of this session's unresolved plans.
func (s *Store) PendingPlanIDs(sessionID string) ([]string, error) {
	rows, err := s.db.Query(
		"SELECT tool_use_id FROM plans WHERE session_id = ? AND accepted IS NULL",
		sessionID,
	)
	if err != nil {
		return nil, types.StoreError{Op: "get pending plans", Err: err}
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, types.StoreError{Op: "scan pending plan", Err: err}
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AllPlanIDs returns every recorded plan tool_use_id, used by backfill to
// skip plans already imported.
func (s *Store) AllPlanIDs() (map[string]bool, error) {
	rows, err := s.db.Query("SELECT tool_use_id FROM plans")
	if err != nil {
		return nil, types.StoreError{Op: "get plan ids", Err: err}
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, types.StoreError{Op: "scan plan id", Err: err}
		}
		ids[id] = true
	}
	return ids, rows.Err()
}
