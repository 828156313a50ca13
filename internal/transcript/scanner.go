// Package transcript reads Claude Code transcript JSONL files. The files
// are written by an external process this tool does not coordinate with, so
// every reader here tolerates growth, truncation, torn writes, and garbage
// lines.
package transcript

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/cctrack/cctrack/internal/types"
)

// Scan reads the transcript at path starting from startOffset and returns
// the aggregated token usage of the newly observed assistant turns together
// with the byte offset to resume from next time.
//
// A missing file, or an offset already at or past end-of-file, is not an
// error: both return a zero delta and the offset unchanged. A complete line
// that fails to parse is consumed (the offset advances past it) but
// contributes nothing. A trailing chunk with no terminating newline is never
// consumed, so a write torn at end-of-file is re-read whole on the next
// invocation.
func Scan(path string, startOffset int64) (types.TokenTotals, int64) {
	var delta types.TokenTotals

	f, err := os.Open(path)
	if err != nil {
		return delta, startOffset
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || startOffset >= info.Size() {
		return delta, startOffset
	}

	if _, err := f.Seek(startOffset, io.SeekStart); err != nil {
		return delta, startOffset
	}
	buf, err := io.ReadAll(f)
	if err != nil {
		return delta, startOffset
	}

	newOffset := startOffset
	for len(buf) > 0 {
		nl := bytes.IndexByte(buf, '\n')
		if nl < 0 {
			// Partial trailing line: leave it for the next scan.
			break
		}
		line := buf[:nl]
		buf = buf[nl+1:]
		newOffset += int64(nl) + 1

		if len(line) == 0 {
			continue
		}
		var tl types.TranscriptLine
		if err := json.Unmarshal(line, &tl); err != nil {
			continue
		}
		foldUsage(&delta, &tl)
	}

	return delta, newOffset
}

// foldUsage adds one assistant turn's usage into the running delta. The
// first non-empty model name in a scan wins; a turn with a usage block
// counts as one API call even if every counter in it is zero.
func foldUsage(delta *types.TokenTotals, tl *types.TranscriptLine) {
	if tl.Type != "assistant" || tl.Message == nil {
		return
	}
	if delta.Model == "" && tl.Message.Model != "" {
		delta.Model = tl.Message.Model
	}
	if usage := tl.Message.Usage; usage != nil {
		delta.InputTokens += usage.InputTokens
		delta.OutputTokens += usage.OutputTokens
		delta.CacheCreationTokens += usage.CacheCreationInputTokens
		delta.CacheReadTokens += usage.CacheReadInputTokens
		delta.APICalls++
	}
}

// FileSize returns the transcript's current length and whether the file
// could be statted at all. Shrink detection compares the length against the
// recorded offset, so a missing file must stay distinguishable from a real
// zero-length one.
func FileSize(path string) (int64, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, false
	}
	return info.Size(), true
}
