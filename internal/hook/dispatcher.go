// Package hook implements the event dispatch path: one stdin payload in,
// persistence writes out. The process-facing contract is strict: only a
// malformed envelope fails an invocation, and even that never changes the
// exit status of the hook command.
package hook

import (
	"bytes"
	"encoding/json"
	"io"
	"time"

	"github.com/cctrack/cctrack/internal/store"
	"github.com/cctrack/cctrack/internal/transcript"
	"github.com/cctrack/cctrack/internal/types"
)

// Response summaries longer than this are cut down and ellipsis-terminated.
const maxResponseSummary = 500

// Dispatcher routes decoded hook events to their handlers.
type Dispatcher struct {
	store *store.Store
	now   func() time.Time
}

// NewDispatcher returns a dispatcher writing to st.
func NewDispatcher(st *store.Store) *Dispatcher {
	return &Dispatcher{store: st, now: time.Now}
}

// Dispatch decodes one hook payload from r and runs the matching handler.
// An envelope that is not valid JSON is the only decode failure surfaced to
// the caller. An unrecognized event kind is a silent no-op.
func (d *Dispatcher) Dispatch(r io.Reader) error {
	input, err := types.DecodeHookInput(r)
	if err != nil {
		return err
	}
	ts := d.now().UTC().Format("2006-01-02T15:04:05Z")

	switch input.Kind() {
	case types.EventSessionStart:
		return d.handleSessionStart(input, ts)
	case types.EventSessionEnd:
		return d.handleSessionEnd(input, ts)
	case types.EventUserPromptSubmit:
		return d.handleUserPrompt(input, ts)
	case types.EventStop:
		return d.handleStop(input, ts)
	case types.EventPreToolUse:
		return d.handlePreToolUse(input, ts)
	case types.EventPostToolUse:
		return d.handlePostToolUse(input, ts)
	}
	return nil
}

func (d *Dispatcher) handleSessionStart(input *types.HookInput, ts string) error {
	return d.store.InsertSessionStart(
		input.SessionID, ts, input.Reason, input.Cwd, input.TranscriptPath,
	)
}

func (d *Dispatcher) handleSessionEnd(input *types.HookInput, ts string) error {
	return d.store.UpdateSessionEnd(input.SessionID, ts, input.Reason)
}

func (d *Dispatcher) handleUserPrompt(input *types.HookInput, ts string) error {
	return d.store.InsertPrompt(input.SessionID, ts, input.Prompt)
}

func (d *Dispatcher) handlePreToolUse(input *types.HookInput, ts string) error {
	inputJSON := compactJSON(input.ToolInput)
	if err := d.store.InsertToolUse(
		input.ToolUseID, input.SessionID, input.ToolName, ts, input.Cwd, inputJSON,
	); err != nil {
		return err
	}
	if input.ToolName == transcript.ExitPlanMode {
		planText := types.StringField(input.ToolInput, "plan")
		return d.store.InsertPlan(input.SessionID, input.ToolUseID, ts, planText)
	}
	return nil
}

func (d *Dispatcher) handlePostToolUse(input *types.HookInput, ts string) error {
	return d.store.UpdateToolUseResponse(
		input.ToolUseID, input.SessionID, input.ToolName, ts, input.Cwd,
		compactJSON(input.ToolInput),
		truncateResponse(input.ToolResponse),
	)
}

// handleStop runs incremental token accounting for the session's transcript
// and then resolves any plans still pending for the session.
func (d *Dispatcher) handleStop(input *types.HookInput, ts string) error {
	sessionID := input.SessionID

	path := input.TranscriptPath
	if path == "" {
		stored, err := d.store.TranscriptPath(sessionID)
		if err != nil {
			return err
		}
		path = stored
	}
	if path == "" {
		return nil
	}

	prior, err := d.store.SessionTokenState(sessionID)
	if err != nil {
		return err
	}
	snap := Reconcile(prior, path)
	if err := d.store.UpsertTokenUsage(sessionID, ts, snap); err != nil {
		return err
	}

	pending, err := d.store.PendingPlanIDs(sessionID)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}
	for id, accepted := range transcript.ResolvePlans(path, pending) {
		if err := d.store.UpdatePlanAccepted(id, accepted); err != nil {
			return err
		}
	}
	return nil
}

// truncateResponse renders a tool response payload as a bounded summary.
func truncateResponse(raw json.RawMessage) string {
	s := types.PayloadText(raw)
	if len(s) > maxResponseSummary {
		return s[:maxResponseSummary-3] + "..."
	}
	return s
}

// compactJSON renders an opaque payload as its compact JSON text, "" when
// absent. Malformed payloads pass through verbatim rather than aborting the
// handler.
func compactJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
