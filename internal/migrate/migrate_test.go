package migrate

import (
	"path/filepath"
	"strings"
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

func TestFromReader(t *testing.T) {
	st := testStore(t)

	input := `{"ts":"2026-08-29T10:00:00Z","tool":"Bash","session":"s1","cwd":"/work","input":{"command":"ls"}}` + "\n" +
		"not json at all\n" +
		"\n" +
		`{"ts":"2026-08-29T10:01:00Z","tool":"Read","session":"s1","cwd":"/work","input":{"file_path":"/a"}}` + "\n"

	imported, skipped, err := FromReader(strings.NewReader(input), st)
	require.NoError(t, err)
	assert.Equal(t, int64(2), imported)
	assert.Equal(t, int64(1), skipped)

	var count int
	require.NoError(t, st.DB().QueryRow("SELECT COUNT(*) FROM tool_uses").Scan(&count))
	assert.Equal(t, 2, count)

	var toolName, input0 string
	require.NoError(t, st.DB().QueryRow(
		"SELECT tool_name, input FROM tool_uses WHERE timestamp = '2026-08-29T10:00:00Z'",
	).Scan(&toolName, &input0))
	assert.Equal(t, "Bash", toolName)
	assert.JSONEq(t, `{"command":"ls"}`, input0)
}

func TestFromFileMissing(t *testing.T) {
	st := testStore(t)

	out, err := FromFile(filepath.Join(t.TempDir(), "absent.jsonl"), st)
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to migrate.")
}
