package types

import "encoding/json"

// TranscriptLine is one record of a Claude Code transcript JSONL file.
// Only the fields this tool consumes are declared; everything else on the
// line is ignored.
type TranscriptLine struct {
	Type      string             `json:"type"`
	Timestamp string             `json:"timestamp"`
	Message   *TranscriptMessage `json:"message"`
}

// TranscriptMessage is the message object inside a transcript line.
type TranscriptMessage struct {
	Model   string           `json:"model"`
	Usage   *TranscriptUsage `json:"usage"`
	Content json.RawMessage  `json:"content"`
}

// TranscriptUsage carries per-turn token counts. Absent fields decode to 0.
type TranscriptUsage struct {
	InputTokens              int64 `json:"input_tokens"`
	OutputTokens             int64 `json:"output_tokens"`
	CacheCreationInputTokens int64 `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     int64 `json:"cache_read_input_tokens"`
}

// ContentBlock is one element of a message content array. The Type field
// decides which of the remaining fields are meaningful.
type ContentBlock struct {
	Type      string          `json:"type"`
	ID        string          `json:"id"`          // tool_use
	Name      string          `json:"name"`        // tool_use
	Input     json.RawMessage `json:"input"`       // tool_use
	ToolUseID string          `json:"tool_use_id"` // tool_result
	IsError   bool            `json:"is_error"`    // tool_result
}

// ContentBlocks decodes the message content array. Returns nil when the
// content is absent or not an array (user lines often carry plain strings).
func (m *TranscriptMessage) ContentBlocks() []ContentBlock {
	if m == nil || len(m.Content) == 0 {
		return nil
	}
	var blocks []ContentBlock
	if err := json.Unmarshal(m.Content, &blocks); err != nil {
		return nil
	}
	return blocks
}
