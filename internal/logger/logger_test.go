package logger

import (
	"bytes"
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
		expected Level
		wantErr  bool
	}{
		{"debug", LevelDebug, false},
		{"DEBUG", LevelDebug, false},
		{"info", LevelInfo, false},
		{"", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{" ERROR ", LevelError, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", Level(42).String())
}

func TestLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New()
	l.SetOutput(&buf)
	l.SetLevel(LevelWarn)

	l.Debug("debug message")
	l.Info("info message")
	l.Warn("warn message")
	l.Error("error message")

	out := buf.String()
	assert.NotContains(t, out, "debug message")
	assert.NotContains(t, out, "info message")
	assert.Contains(t, out, "[WARN] warn message")
	assert.Contains(t, out, "[ERROR] error message")
}

func TestLogger_EnvVars(t *testing.T) {
	path := filepath.Join(t.TempDir(), "onboard.log")
	t.Setenv(EnvLevel, "debug")
	t.Setenv(EnvFile, path)

	l := New()
	defer func() { _ = l.Close() }()
	require.Equal(t, LevelDebug, l.level)

	l.Debug("slot %s set", "document")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "[DEBUG] slot document set")
}

func TestLogger_CloseDiscardsOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "onboard.log")
	l := New()
	require.NoError(t, l.OpenFile(path))
	l.Info("before close")
	require.NoError(t, l.Close())
	l.Info("after close")
	require.NoError(t, l.Close(), "second close is a no-op")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(content), "before close"))
	assert.False(t, strings.Contains(string(content), "after close"))
}

func TestConfigure(t *testing.T) {
	var buf bytes.Buffer
	Default.SetOutput(&buf)
	t.Cleanup(func() { Default.SetLevel(LevelInfo) })

	require.NoError(t, Configure("error", ""))
	Warn("dropped")
	Error("kept %d", 1)
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept 1")

	require.Error(t, Configure("loud", ""))
}
