package logging

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"default", DefaultConfig(), false},
		{"development", DevelopmentConfig(), false},
		{"empty level", Config{}, false},
		{"bad level", Config{Level: "loud"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, logger.Named("relay"))
		})
	}
}

func TestEncoding(t *testing.T) {
	assert.Equal(t, "console", encodingFormat(true))
	assert.Equal(t, "json", encodingFormat(false))
}

func TestParseLevel(t *testing.T) {
	level, err := parseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, zapcore.WarnLevel, level)
}

func TestPreview(t *testing.T) {
	short := Preview("body", "bad key")
	assert.Equal(t, "bad key", short.String)

	long := Preview("body", strings.Repeat("é", 200))
	assert.True(t, strings.HasSuffix(long.String, "..."))
	assert.LessOrEqual(t, len(long.String), previewLimit+3)
	assert.True(t, strings.HasPrefix(long.String, "é"))
}

func TestSecret(t *testing.T) {
	f := Secret("api_key", "sk-live")
	assert.Equal(t, "api_key_set", f.Key)
	assert.Equal(t, zap.Bool("api_key_set", true), f)
	assert.Equal(t, zap.Bool("api_key_set", false), Secret("api_key", ""))
}
