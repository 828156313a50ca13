package backfill

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cctrack/cctrack/internal/store"
)

func testStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestFromDir(t *testing.T) {
	st := testStore(t)

	projects := t.TempDir()
	sessionDir := filepath.Join(projects, "-home-u-repo")
	require.NoError(t, os.MkdirAll(sessionDir, 0o755))

	transcript := `{"type":"assistant","timestamp":"2026-08-29T10:00:00Z","message":{"content":[{"type":"tool_use","id":"tu1","name":"ExitPlanMode","input":{"plan":"old plan"}}]}}` + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(sessionDir, "abc-123.jsonl"), []byte(transcript), 0o644))

	out, err := FromDir(projects, st)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 1 new")

	var sessionID, planText string
	require.NoError(t, st.DB().QueryRow(
		"SELECT session_id, plan_text FROM plans WHERE tool_use_id = 'tu1'",
	).Scan(&sessionID, &planText))
	assert.Equal(t, "abc-123", sessionID, "session comes from the file name")
	assert.Equal(t, "old plan", planText)

	// A second run skips what was already imported.
	out, err = FromDir(projects, st)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 0 new")
	assert.Contains(t, out, "skipped 1 already recorded")

	var count int
	require.NoError(t, st.DB().QueryRow("SELECT COUNT(*) FROM plans").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestFromDirMissing(t *testing.T) {
	st := testStore(t)

	out, err := FromDir(filepath.Join(t.TempDir(), "absent"), st)
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to backfill.")
}

func TestFromDirIgnoresNonTranscriptFiles(t *testing.T) {
	st := testStore(t)

	projects := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(projects, "notes.txt"), []byte("hi"), 0o644))

	out, err := FromDir(projects, st)
	require.NoError(t, err)
	assert.Contains(t, out, "Scanned 0 transcript files.")
}
