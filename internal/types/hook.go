package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// EventKind identifies which lifecycle hook fired an invocation.
type EventKind int

const (
	EventSessionStart EventKind = iota
	EventSessionEnd
	EventUserPromptSubmit
	EventStop
	EventPreToolUse
	EventPostToolUse
	EventUnknown
)

func (k EventKind) String() string {
	switch k {
	case EventSessionStart:
		return "SessionStart"
	case EventSessionEnd:
		return "SessionEnd"
	case EventUserPromptSubmit:
		return "UserPromptSubmit"
	case EventStop:
		return "Stop"
	case EventPreToolUse:
		return "PreToolUse"
	case EventPostToolUse:
		return "PostToolUse"
	}
	return "Unknown"
}

// ClassifyEvent maps a hook_event_name to an EventKind. An empty name maps
// to PostToolUse: early versions of the host omitted the field on that
// event, and recorded data depends on keeping that default. Names that are
// present but unrecognized map to EventUnknown.
func ClassifyEvent(name string) EventKind {
	switch name {
	case "SessionStart":
		return EventSessionStart
	case "SessionEnd":
		return EventSessionEnd
	case "UserPromptSubmit":
		return EventUserPromptSubmit
	case "Stop":
		return EventStop
	case "PreToolUse":
		return EventPreToolUse
	case "PostToolUse", "":
		return EventPostToolUse
	}
	return EventUnknown
}

// HookInput is the raw payload any Claude Code hook delivers on stdin.
// Every field is optional; unknown keys are ignored.
type HookInput struct {
	HookEventName  string `json:"hook_event_name"`
	SessionID      string `json:"session_id"`
	Cwd            string `json:"cwd"`
	TranscriptPath string `json:"transcript_path"`

	// Tool-related fields (PreToolUse / PostToolUse)
	ToolName     string          `json:"tool_name"`
	ToolUseID    string          `json:"tool_use_id"`
	ToolInput    json.RawMessage `json:"tool_input"`
	ToolResponse json.RawMessage `json:"tool_response"`

	// Session lifecycle
	Reason string `json:"reason"`

	// UserPromptSubmit
	Prompt string `json:"prompt"`
}

// DecodeHookInput parses one hook payload. A malformed envelope is the one
// fatal condition for an invocation; there is no event to dispatch.
func DecodeHookInput(r io.Reader) (*HookInput, error) {
	var input HookInput
	if err := json.NewDecoder(r).Decode(&input); err != nil {
		return nil, fmt.Errorf("decode hook input: %w", err)
	}
	return &input, nil
}

// Kind classifies the envelope's event name.
func (h *HookInput) Kind() EventKind {
	return ClassifyEvent(h.HookEventName)
}

// StringField extracts a top-level string field from an opaque JSON object
// payload. Returns "" on absence, type mismatch, or malformed payload.
func StringField(raw json.RawMessage, key string) string {
	if len(raw) == 0 {
		return ""
	}
	var obj map[string]interface{}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return ""
	}
	s, _ := obj[key].(string)
	return s
}

// PayloadText renders an opaque payload as display text: a JSON string
// yields its contents, anything else its compact JSON encoding.
func PayloadText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err == nil {
		return buf.String()
	}
	return string(raw)
}
