package relay

import (
	"bytes"
	"encoding/json"
	"unicode/utf8"

	"github.com/GriffinCanCode/Reze/backend/internal/shared/types"
)

const (
	// SystemInstruction is the fixed first system message.
	SystemInstruction = "Analyze the given information and answer the user.\n" +
		"Don't Start with \"Based on the provided research context, here is a synthesized answer to your question about\" Or anything similar to that."

	// ContextPreamble introduces the serialized research context.
	ContextPreamble = "Here is the research context (Google + YouTube + transcripts): "

	// ContextLimit caps the serialized context, counted in characters.
	ContextLimit = 20000

	// TruncationMarker is appended when the context hits ContextLimit.
	TruncationMarker = "... [truncated]"
)

// SerializeContext renders the opaque context as compact JSON. Absent,
// null, false, zero and empty-string contexts all become "{}".
func SerializeContext(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	switch string(trimmed) {
	case "", "null", "false", "0", `""`:
		return "{}", nil
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return "", validationError("context must be valid JSON")
	}
	return buf.String(), nil
}

// CapContext keeps the first ContextLimit characters of s and appends
// TruncationMarker when anything was cut.
func CapContext(s string) (string, bool) {
	if utf8.RuneCountInString(s) <= ContextLimit {
		return s, false
	}

	count := 0
	for i := range s {
		if count == ContextLimit {
			return s[:i] + TruncationMarker, true
		}
		count++
	}
	return s, false
}

// BuildMessages assembles the prompt: the fixed instruction, the context
// message, then the user's text unchanged.
func BuildMessages(message, context string) []types.ChatMessage {
	return []types.ChatMessage{
		{Role: types.RoleSystem, Content: SystemInstruction},
		{Role: types.RoleSystem, Content: ContextPreamble + context},
		{Role: types.RoleUser, Content: message},
	}
}
