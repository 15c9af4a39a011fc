package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points XDG_CONFIG_HOME and the working directory at a fresh temp
// dir and clears the env vars Load reads.
func isolate(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()

	origWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tmpDir))
	t.Cleanup(func() { _ = os.Chdir(origWd) })

	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "config"))
	for _, env := range []string{
		"ONBOARD_FLOW", "ONBOARD_FLOW_FILE", "ONBOARD_VERIFY_DURATION", "ONBOARD_TICK_INTERVAL",
		"ONBOARD_LOG_LEVEL", "ONBOARD_CHAT_MODEL", "ONBOARD_CHAT_API_KEY", "OPENAI_API_KEY",
	} {
		t.Setenv(env, "")
	}
	return tmpDir
}

func TestGlobalPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	assert.Equal(t, "/custom/config/onboard/onboard.yml", GlobalPath())

	t.Setenv("XDG_CONFIG_HOME", "")
	got := GlobalPath()
	assert.True(t, filepath.IsAbs(got), "GlobalPath() should be absolute, got %s", got)
	assert.Equal(t, "onboard.yml", filepath.Base(got))
}

func TestProjectPath(t *testing.T) {
	assert.Equal(t, "onboard.yml", ProjectPath())
}

func TestExists(t *testing.T) {
	isolate(t)
	assert.False(t, Exists())

	require.NoError(t, WriteProject(Default()))
	assert.True(t, Exists())
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "standard", cfg.Flow)
	assert.Equal(t, 20*time.Second, cfg.VerifyDuration)
	assert.Equal(t, time.Second, cfg.TickInterval)
	assert.Equal(t, int64(DefaultMaxArtifactBytes), cfg.MaxArtifactBytes)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, DefaultChatModel, cfg.Chat.Model)
	assert.Equal(t, DefaultVoice, cfg.Chat.Voice)
	assert.Empty(t, cfg.Chat.APIKey)
	require.NoError(t, cfg.Validate())
}

func TestLoad_GlobalThenProject(t *testing.T) {
	isolate(t)

	global := Default()
	global.Flow = "two-sided"
	global.VerifyDuration = 45 * time.Second
	global.LogLevel = "warn"
	require.NoError(t, WriteGlobal(global))

	require.NoError(t, os.WriteFile(ProjectPath(), []byte("flow: id-type\ntick_interval: 250ms\n"), 0644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "id-type", cfg.Flow, "project overrides global")
	assert.Equal(t, 250*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, 45*time.Second, cfg.VerifyDuration, "global value kept when project omits it")
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_EnvOverridesFiles(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile(ProjectPath(), []byte("flow: id-type\n"), 0644))

	t.Setenv("ONBOARD_FLOW", "document-only")
	t.Setenv("ONBOARD_VERIFY_DURATION", "3s")
	t.Setenv("ONBOARD_CHAT_MODEL", "gpt-4o")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "document-only", cfg.Flow)
	assert.Equal(t, 3*time.Second, cfg.VerifyDuration)
	assert.Equal(t, "gpt-4o", cfg.Chat.Model)
}

func TestLoad_OpenAIKeyFallback(t *testing.T) {
	isolate(t)
	t.Setenv("OPENAI_API_KEY", "sk-env")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sk-env", cfg.Chat.APIKey)

	t.Setenv("ONBOARD_CHAT_API_KEY", "sk-onboard")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "sk-onboard", cfg.Chat.APIKey, "ONBOARD_ variable wins")
}

func TestWriteGlobal(t *testing.T) {
	isolate(t)

	cfg := Default()
	cfg.Flow = "single-page"
	cfg.LogFile = "/tmp/onboard.log"
	require.NoError(t, WriteGlobal(cfg))

	info, err := os.Stat(GlobalPath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	data, err := os.ReadFile(GlobalPath())
	require.NoError(t, err)
	content := string(data)
	for _, field := range []string{
		"flow: single-page",
		"verify_duration: 20s",
		"tick_interval: 1s",
		"log_file: /tmp/onboard.log",
		"model: gpt-4.1-mini",
	} {
		assert.Contains(t, content, field)
	}
	assert.NotContains(t, content, "api_key", "empty key is omitted")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"zero duration completes immediately", func(c *Config) { c.VerifyDuration = 0 }, ""},
		{"negative duration", func(c *Config) { c.VerifyDuration = -time.Second }, "verify_duration"},
		{"zero tick", func(c *Config) { c.TickInterval = 0 }, "tick_interval"},
		{"zero size limit", func(c *Config) { c.MaxArtifactBytes = 0 }, "max_artifact_bytes"},
		{"bad level", func(c *Config) { c.LogLevel = "chatty" }, "log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
