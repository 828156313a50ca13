package types

// TokenTotals is an aggregated view of token usage, either the delta from a
// single transcript scan or the cumulative totals persisted for a session.
type TokenTotals struct {
	Model               string
	InputTokens         int64
	OutputTokens        int64
	CacheCreationTokens int64
	CacheReadTokens     int64
	APICalls            int64
}

// Add folds other into t. The model follows the first-non-empty rule: an
// already-known model is kept unless other discovered one.
func (t *TokenTotals) Add(other TokenTotals) {
	if other.Model != "" {
		t.Model = other.Model
	}
	t.InputTokens += other.InputTokens
	t.OutputTokens += other.OutputTokens
	t.CacheCreationTokens += other.CacheCreationTokens
	t.CacheReadTokens += other.CacheReadTokens
	t.APICalls += other.APICalls
}

// IsZero reports whether no usage has been recorded at all.
func (t TokenTotals) IsZero() bool {
	return t.Model == "" && t.InputTokens == 0 && t.OutputTokens == 0 &&
		t.CacheCreationTokens == 0 && t.CacheReadTokens == 0 && t.APICalls == 0
}

// TokenSnapshot is the persisted per-session accounting row: cumulative
// totals plus the transcript byte offset already consumed.
type TokenSnapshot struct {
	TokenTotals
	LastTranscriptOffset int64
}
