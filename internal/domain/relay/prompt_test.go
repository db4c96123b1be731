package relay

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeContext(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"absent", "", "{}"},
		{"null", "null", "{}"},
		{"false", "false", "{}"},
		{"empty string", `""`, "{}"},
		{"object", `{ "query" : "x", "n": [1, 2] }`, `{"query":"x","n":[1,2]}`},
		{"array", `[1, 2]`, `[1,2]`},
		{"string", `"notes"`, `"notes"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SerializeContext(json.RawMessage(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCapContext(t *testing.T) {
	short := strings.Repeat("a", ContextLimit)
	got, cut := CapContext(short)
	assert.False(t, cut)
	assert.Equal(t, short, got)

	long := strings.Repeat("a", ContextLimit) + "b"
	got, cut = CapContext(long)
	assert.True(t, cut)
	assert.Equal(t, strings.Repeat("a", ContextLimit)+TruncationMarker, got)
}

func TestCapContextCountsCharacters(t *testing.T) {
	long := strings.Repeat("é", ContextLimit+10)
	got, cut := CapContext(long)
	require.True(t, cut)
	assert.Equal(t, strings.Repeat("é", ContextLimit)+TruncationMarker, got)
}

func TestBuildMessages(t *testing.T) {
	msgs := BuildMessages("question", "{}")
	require.Len(t, msgs, 3)
	assert.Contains(t, msgs[0].Content, "Don't Start with")
	assert.Equal(t, "Here is the research context (Google + YouTube + transcripts): {}", msgs[1].Content)
	assert.Equal(t, "question", msgs[2].Content)
}
