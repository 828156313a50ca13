package stats

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cctrack/cctrack/internal/store"
	"github.com/cctrack/cctrack/internal/types"
)

func TestRenderEmptyDatabase(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer st.Close()

	report, err := NewReporter(st.DB(), true, nil).Render(context.Background(), "/tmp/test.db", 4096)
	require.NoError(t, err)

	assert.Contains(t, report, "Claude Code Usage Report")
	assert.Contains(t, report, "4.0 KB")
	assert.Contains(t, report, "Total sessions:  0")
	assert.NotContains(t, report, "Token Usage", "empty sections are omitted")
}

func TestRenderPopulatedDatabase(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, st.InsertSessionStart("s1", "2026-08-29T10:00:00Z", "startup", "/home/u/repo", ""))
	require.NoError(t, st.UpdateSessionEnd("s1", "2026-08-29T10:30:00Z", "clear"))
	require.NoError(t, st.InsertPrompt("s1", "2026-08-29T10:01:00Z", "do the thing"))
	require.NoError(t, st.InsertToolUse("tu1", "s1", "Read", "2026-08-29T10:02:00Z", "/home/u/repo", `{"file_path":"/home/u/repo/main.go"}`))
	require.NoError(t, st.InsertToolUse("tu2", "s1", "Bash", "2026-08-29T10:03:00Z", "/home/u/repo", `{"command":"git status"}`))
	require.NoError(t, st.InsertPlan("s1", "tu3", "2026-08-29T10:04:00Z", "a plan"))
	require.NoError(t, st.UpdatePlanAccepted("tu3", true))
	require.NoError(t, st.UpsertTokenUsage("s1", "2026-08-29T10:30:00Z", types.TokenSnapshot{
		TokenTotals: types.TokenTotals{
			Model: "claude-sonnet-4-5-20250929", InputTokens: 1000, OutputTokens: 500,
			CacheReadTokens: 3000, APICalls: 3,
		},
		LastTranscriptOffset: 2048,
	}))

	report, err := NewReporter(st.DB(), true, nil).Render(context.Background(), "/tmp/test.db", -1)
	require.NoError(t, err)

	assert.Contains(t, report, "Tracking since: 2026-08-29T10:00:00Z")
	assert.Contains(t, report, "Total sessions:  1")
	assert.Contains(t, report, "Total time:      30m")
	assert.Contains(t, report, "Sonnet-4.5")
	assert.Contains(t, report, "Cache hit rate:        75.0%")
	assert.Contains(t, report, "Total plans:     1")
	assert.Contains(t, report, "Acceptance rate: 100%")
	assert.Contains(t, report, "git")
	assert.Contains(t, report, "main.go")
	assert.Contains(t, report, "Total estimated cost:")
}
