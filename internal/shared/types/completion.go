package types

// Chat roles understood by the completions API
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one entry of a completions prompt
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is the body sent to {base}/chat/completions
type CompletionRequest struct {
	Model    string        `json:"model"`
	Stream   bool          `json:"stream"`
	Messages []ChatMessage `json:"messages"`
}

// CompletionChunk is the JSON payload of one streamed `data:` event.
type CompletionChunk struct {
	ID      string                  `json:"id,omitempty"`
	Model   string                  `json:"model,omitempty"`
	Choices []CompletionChunkChoice `json:"choices"`
}

// CompletionChunkChoice is one choice inside a streamed chunk
type CompletionChunkChoice struct {
	Index        int          `json:"index"`
	Delta        MessageDelta `json:"delta"`
	FinishReason *string      `json:"finish_reason,omitempty"`
}

// MessageDelta carries zero or one content fragment
type MessageDelta struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}

// Content returns the first choice's delta content, or "" when there is none.
func (c *CompletionChunk) Content() string {
	if len(c.Choices) == 0 {
		return ""
	}
	return c.Choices[0].Delta.Content
}
