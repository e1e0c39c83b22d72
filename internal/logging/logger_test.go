package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warning", LevelWarn},
		{" error ", LevelError},
		{"fatal", LevelFatal},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestVeditLogger(t *testing.T) {
	t.Run("json output carries component, error and fields", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&LoggerConfig{Level: LevelDebug, Format: "json", Output: &buf})

		logger.WithComponent("patch").With("element_id", "ve-1").
			Warn(context.Background(), errors.New("boom"), "operation failed", "line", 12)

		var record map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "operation failed", record["msg"])
		assert.Equal(t, "WARN", record["level"])
		assert.Equal(t, "patch", record["component"])
		assert.Equal(t, "boom", record["error"])
		assert.Equal(t, "ve-1", record["element_id"])
		assert.Equal(t, float64(12), record["line"])
	})

	t.Run("level filters lower messages", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&LoggerConfig{Level: LevelWarn, Format: "text", Output: &buf})

		logger.Debug(context.Background(), "hidden")
		logger.Info(context.Background(), "hidden")
		assert.Empty(t, buf.String())

		logger.Error(context.Background(), nil, "shown")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("debug level emits debug", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&LoggerConfig{Level: LevelDebug, Output: &buf})

		logger.Debug(context.Background(), "visible")
		assert.Contains(t, buf.String(), "visible")
	})

	t.Run("odd field count drops the dangling key", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&LoggerConfig{Level: LevelInfo, Format: "json", Output: &buf})

		logger.Info(context.Background(), "msg", "a", 1, "dangling")
		assert.NotContains(t, buf.String(), "dangling")
	})
}

func TestMultiLogger(t *testing.T) {
	var first, second bytes.Buffer
	multi := NewMultiLogger(
		NewLogger(&LoggerConfig{Level: LevelInfo, Output: &first}),
		NewLogger(&LoggerConfig{Level: LevelInfo, Output: &second}),
	)

	multi.WithComponent("server").Info(context.Background(), "started")
	assert.Contains(t, first.String(), "started")
	assert.Contains(t, second.String(), "component=server")
}

func TestNop(t *testing.T) {
	logger := Nop()
	assert.NotPanics(t, func() {
		logger.With("a", 1).WithComponent("x").Error(context.Background(), errors.New("e"), "m")
	})
}

func TestSanitizeForLog(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "password field",
			input:    "user password: secret123",
			expected: "[REDACTED]",
		},
		{
			name:     "bearer header",
			input:    "Authorization: Bearer sk-abc",
			expected: "[REDACTED]",
		},
		{
			name:     "normal text",
			input:    "normal log message",
			expected: "normal log message",
		},
		{
			name:     "long text truncation",
			input:    strings.Repeat("a", 1500),
			expected: strings.Repeat("a", 1000) + "...[TRUNCATED]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeForLog(tt.input))
		})
	}
}

func TestNewFileLogger(t *testing.T) {
	tmpDir := t.TempDir()

	fileLogger, err := NewFileLogger(DefaultConfig(), tmpDir)
	require.NoError(t, err)

	fileLogger.Info(context.Background(), "written to file")
	require.NoError(t, fileLogger.Close())

	data, err := os.ReadFile(fileLogger.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}

func TestPerfLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelDebug, Format: "json", Output: &buf})

	perf := StartOperation(logger, "locate")
	perf.End(context.Background())

	assert.Contains(t, buf.String(), `"operation":"locate"`)
	assert.Contains(t, buf.String(), "duration_ms")
}

func TestOpen(t *testing.T) {
	t.Run("console only", func(t *testing.T) {
		logger, closeLog, err := Open(&LoggerConfig{Level: LevelInfo, Output: &bytes.Buffer{}}, "")
		require.NoError(t, err)
		assert.IsType(t, &VeditLogger{}, logger)
		assert.NoError(t, closeLog())
	})

	t.Run("console and file", func(t *testing.T) {
		var console bytes.Buffer
		dir := t.TempDir()
		logger, closeLog, err := Open(&LoggerConfig{Level: LevelInfo, Output: &console}, dir)
		require.NoError(t, err)

		logger.WithComponent("server").Info(context.Background(), "listening")
		require.NoError(t, closeLog())

		assert.Contains(t, console.String(), "listening")
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
		require.NoError(t, err)
		assert.Contains(t, string(data), "component=server")
	})
}
