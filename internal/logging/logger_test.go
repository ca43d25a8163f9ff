package logging

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerLevels(t *testing.T) {
	t.Parallel()

	levels := []Level{LevelDebug, LevelInfo, LevelWarn, LevelError}
	for _, minLevel := range levels {
		for _, at := range levels {
			var buf bytes.Buffer
			logger := NewWithWriter(&buf)
			logger.SetLevel(minLevel)

			switch at {
			case LevelDebug:
				logger.Debug("message")
			case LevelInfo:
				logger.Info("message")
			case LevelWarn:
				logger.Warn("message")
			case LevelError:
				logger.Error("message")
			}

			if at >= minLevel {
				assert.Equal(t, at.String()+": message\n", buf.String(), "min=%s at=%s", minLevel, at)
			} else {
				assert.Empty(t, buf.String(), "min=%s at=%s", minLevel, at)
			}
		}
	}
}

func TestLoggerFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewWithWriter(&buf).With("module", "skills/qc.py")
	logger.Warn("write rejected", "errors", 2, "reason", "bad type", "err", errors.New("boom"))

	assert.Equal(t,
		"WARN: write rejected | err=\"boom\" errors=2 module=skills/qc.py reason=\"bad type\"\n",
		buf.String())
}

func TestLoggerDerivedSharesLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	parent := NewWithWriter(&buf)
	child := parent.WithFields(map[string]any{"a": 1})
	parent.SetLevel(LevelDebug)

	child.Debug("visible")
	assert.True(t, strings.HasPrefix(buf.String(), "DEBUG: visible | a=1"))
	assert.True(t, child.Enabled(LevelDebug))
}

func TestLoggerSetOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New()
	logger.SetOutput(log.New(&buf, "stato ", 0))
	logger.Error("failed")
	assert.Equal(t, "stato ERROR: failed\n", buf.String())
}

func TestDiscard(t *testing.T) {
	t.Parallel()

	logger := Discard()
	assert.False(t, logger.Enabled(LevelError))
	logger.Error("dropped")
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Level
		err  bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"Error", LevelError, false},
		{"loud", LevelWarn, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.err {
			require.Error(t, err, tt.in)
		} else {
			require.NoError(t, err, tt.in)
		}
		assert.Equal(t, tt.want, got, tt.in)
	}
}
