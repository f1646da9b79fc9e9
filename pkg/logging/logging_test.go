package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"DEBUG", LevelDebug},
		{"WARNING", LevelWarn},
		{"Error", LevelError},
		{"dEbUg", LevelDebug},
		{" warn ", LevelWarn},
		{"", LevelInfo},
		{"trace", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, FormatJSON, ParseFormat("json"))
	assert.Equal(t, FormatJSON, ParseFormat("Json"))
	assert.Equal(t, FormatText, ParseFormat("text"))
	assert.Equal(t, FormatText, ParseFormat(""))
	assert.Equal(t, FormatText, ParseFormat("yaml"))
}

func TestNew_Level(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(Config{Level: LevelWarn, Format: FormatJSON, Output: &buf})
	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &record))
	assert.Equal(t, "shown", record["msg"])
	assert.Equal(t, "value", record["key"])
}

func TestOpen_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "stubdesk.log")
	var console bytes.Buffer

	logger, closer := Open(Config{Level: LevelInfo, Output: &console, File: path})
	logger.With("component", "test").Info("written twice")
	require.NoError(t, closer.Close())

	assert.Contains(t, console.String(), "written twice")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var record map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &record))
	assert.Equal(t, "written twice", record["msg"])
	assert.Equal(t, "test", record["component"])
}

func TestOpen_NoFile(t *testing.T) {
	t.Parallel()

	_, closer := Open(Config{Output: &bytes.Buffer{}})
	assert.NoError(t, closer.Close())
}

func TestMultiHandler_Enabled(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer
	h := NewMultiHandler(
		slog.NewTextHandler(&a, &slog.HandlerOptions{Level: LevelError}),
		slog.NewTextHandler(&b, &slog.HandlerOptions{Level: LevelDebug}),
	)
	logger := slog.New(h).WithGroup("g")
	logger.Debug("debug only")

	assert.Empty(t, a.String())
	assert.Contains(t, b.String(), "debug only")
	assert.False(t, NewMultiHandler().Enabled(t.Context(), LevelError))
}

func TestNop(t *testing.T) {
	t.Parallel()
	Nop().Error("discarded")
}
