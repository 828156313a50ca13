package transcript

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"

	"github.com/cctrack/cctrack/internal/types"
)

// Tool name whose invocation proposes a plan.
const ExitPlanMode = "ExitPlanMode"

// ResolvePlans scans the whole transcript for tool_result blocks matching
// the given pending plan ids and returns the resolution for each id found:
// true for accepted, false when the result carries an error flag. Ids with
// no matching result are absent from the map and stay pending.
//
// The scan deliberately ignores the accounting offset: a plan's result can
// appear anywhere in the file, including in bytes already consumed for
// token accounting.
func ResolvePlans(path string, pending []string) map[string]bool {
	resolved := make(map[string]bool)
	if len(pending) == 0 {
		return resolved
	}
	wanted := make(map[string]bool, len(pending))
	for _, id := range pending {
		wanted[id] = true
	}

	forEachLine(path, func(tl *types.TranscriptLine) {
		if tl.Message == nil {
			return
		}
		for _, block := range tl.Message.ContentBlocks() {
			if block.Type != "tool_result" || !wanted[block.ToolUseID] {
				continue
			}
			resolved[block.ToolUseID] = !block.IsError
		}
	})

	return resolved
}

// DiscoveredPlan is an ExitPlanMode proposal found in a historical
// transcript.
type DiscoveredPlan struct {
	SessionID string
	ToolUseID string
	Timestamp string
	PlanText  string
}

// ExtractPlans collects every ExitPlanMode tool_use block from a transcript,
// attributing them to sessionID. Blocks without an id are skipped.
func ExtractPlans(path, sessionID string) []DiscoveredPlan {
	var plans []DiscoveredPlan

	forEachLine(path, func(tl *types.TranscriptLine) {
		if tl.Type != "assistant" || tl.Message == nil {
			return
		}
		for _, block := range tl.Message.ContentBlocks() {
			if block.Type != "tool_use" || block.Name != ExitPlanMode || block.ID == "" {
				continue
			}
			plans = append(plans, DiscoveredPlan{
				SessionID: sessionID,
				ToolUseID: block.ID,
				Timestamp: tl.Timestamp,
				PlanText:  types.StringField(block.Input, "plan"),
			})
		}
	})

	return plans
}

// forEachLine runs fn on every parseable line of the transcript. Missing
// files, read errors, and malformed lines are all skipped silently.
func forEachLine(path string, fn func(*types.TranscriptLine)) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var tl types.TranscriptLine
		if err := json.Unmarshal([]byte(line), &tl); err != nil {
			continue
		}
		fn(&tl)
	}
}
