package query

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cctrack/cctrack/internal/store"
	"github.com/cctrack/cctrack/internal/types"
)

func TestExecute(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, st.InsertPrompt("s1", "2026-08-29T10:00:00Z", "hello"))
	require.NoError(t, st.InsertPrompt("s2", "2026-08-29T11:00:00Z", "world"))

	out, err := Execute(st.DB(), "SELECT session_id, prompt_text FROM prompts ORDER BY session_id")
	require.NoError(t, err)

	assert.Equal(t, "session_id\tprompt_text\ns1\thello\ns2\tworld\n", out)
}

func TestExecuteNulls(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, st.UpdateSessionEnd("s1", "2026-08-29T10:00:00Z", "other"))

	out, err := Execute(st.DB(), "SELECT session_id, started_at FROM sessions")
	require.NoError(t, err)
	assert.Contains(t, out, "s1\tNULL\n")
}

func TestExecuteEmptyQuery(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer st.Close()

	_, err = Execute(st.DB(), "   ")
	assert.ErrorIs(t, err, types.ErrNoQuery)
}

func TestExecuteInvalidSQL(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer st.Close()

	_, err = Execute(st.DB(), "SELECT FROM nowhere")
	assert.Error(t, err)
}
