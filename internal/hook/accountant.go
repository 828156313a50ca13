package hook

import (
	"github.com/cctrack/cctrack/internal/transcript"
	"github.com/cctrack/cctrack/internal/types"
)

// Reconcile combines the persisted accounting snapshot for a session with a
// fresh incremental scan of its transcript and returns the snapshot to
// persist.
//
// A transcript that cannot be statted means no new data, not a rewrite: the
// prior snapshot comes back unchanged. The resume offset is the prior
// snapshot's, unless the file is now shorter than that offset: a transcript
// smaller than what was already consumed means the file was rewritten
// externally (compaction is a normal occurrence, not an anomaly), so the
// scan restarts from zero and its result REPLACES the prior totals instead
// of adding to them. In the normal growth case the delta is added on top of
// the prior totals.
//
// The model name survives scans that observe no assistant turns: the prior
// model is kept unless the new delta discovered one.
func Reconcile(prior *types.TokenSnapshot, path string) types.TokenSnapshot {
	fileLen, ok := transcript.FileSize(path)
	if !ok {
		if prior != nil {
			return *prior
		}
		return types.TokenSnapshot{}
	}

	var effectiveOffset int64
	shrunk := false
	if prior != nil {
		if prior.LastTranscriptOffset <= fileLen {
			effectiveOffset = prior.LastTranscriptOffset
		} else {
			shrunk = prior.LastTranscriptOffset > 0
		}
	}

	delta, newOffset := transcript.Scan(path, effectiveOffset)

	var snap types.TokenSnapshot
	switch {
	case prior == nil:
		snap.TokenTotals = delta
	case shrunk:
		snap.TokenTotals = delta
		if snap.Model == "" {
			snap.Model = prior.Model
		}
	default:
		snap.TokenTotals = prior.TokenTotals
		snap.TokenTotals.Add(delta)
	}
	snap.LastTranscriptOffset = newOffset
	return snap
}
