// Package config provides centralized configuration management using Viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/JustZavala/onboard/internal/logger"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Defaults applied before any file or environment value.
const (
	DefaultVerifyDuration   = 20 * time.Second
	DefaultTickInterval     = time.Second
	DefaultMaxArtifactBytes = 10 << 20
	DefaultListenAddr       = "127.0.0.1:8765"

	DefaultChatModel       = "gpt-4.1-mini"
	DefaultTranscribeModel = "gpt-4o-transcribe"
	DefaultSpeechModel     = "gpt-4o-mini-tts"
	DefaultVoice           = "alloy"
	DefaultSystemPrompt    = "Eres un asistente útil que responde SIEMPRE en español, de forma clara y relativamente breve."
)

// Config holds all configuration values for onboard.
type Config struct {
	Flow             string        `mapstructure:"flow"`
	FlowFile         string        `mapstructure:"flow_file"`
	VerifyDuration   time.Duration `mapstructure:"verify_duration"`
	TickInterval     time.Duration `mapstructure:"tick_interval"`
	MaxArtifactBytes int64         `mapstructure:"max_artifact_bytes"`
	ListenAddr       string        `mapstructure:"listen_addr"`
	LogLevel         string        `mapstructure:"log_level"`
	LogFile          string        `mapstructure:"log_file"`
	Chat             ChatConfig    `mapstructure:"chat"`
}

// ChatConfig configures the voice/text chatbot.
type ChatConfig struct {
	Model           string `mapstructure:"model" yaml:"model"`
	TranscribeModel string `mapstructure:"transcribe_model" yaml:"transcribe_model"`
	SpeechModel     string `mapstructure:"speech_model" yaml:"speech_model"`
	Voice           string `mapstructure:"voice" yaml:"voice"`
	SystemPrompt    string `mapstructure:"system_prompt" yaml:"system_prompt"`
	APIKey          string `mapstructure:"api_key" yaml:"api_key,omitempty"`
}

// fileConfig is the on-disk shape of Config. Durations are written as
// strings like "20s" instead of nanosecond integers.
type fileConfig struct {
	Flow             string     `yaml:"flow"`
	FlowFile         string     `yaml:"flow_file"`
	VerifyDuration   string     `yaml:"verify_duration"`
	TickInterval     string     `yaml:"tick_interval"`
	MaxArtifactBytes int64      `yaml:"max_artifact_bytes"`
	ListenAddr       string     `yaml:"listen_addr"`
	LogLevel         string     `yaml:"log_level"`
	LogFile          string     `yaml:"log_file"`
	Chat             ChatConfig `yaml:"chat"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Flow:             "standard",
		VerifyDuration:   DefaultVerifyDuration,
		TickInterval:     DefaultTickInterval,
		MaxArtifactBytes: DefaultMaxArtifactBytes,
		ListenAddr:       DefaultListenAddr,
		LogLevel:         "info",
		Chat: ChatConfig{
			Model:           DefaultChatModel,
			TranscribeModel: DefaultTranscribeModel,
			SpeechModel:     DefaultSpeechModel,
			Voice:           DefaultVoice,
			SystemPrompt:    DefaultSystemPrompt,
		},
	}
}

// Load loads configuration with full precedence:
// CLI flags (applied by commands) > ENV vars > project config > XDG global config > defaults
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("onboard")

	d := Default()
	v.SetDefault("flow", d.Flow)
	v.SetDefault("flow_file", "")
	v.SetDefault("verify_duration", d.VerifyDuration)
	v.SetDefault("tick_interval", d.TickInterval)
	v.SetDefault("max_artifact_bytes", d.MaxArtifactBytes)
	v.SetDefault("listen_addr", d.ListenAddr)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_file", "")
	v.SetDefault("chat.model", d.Chat.Model)
	v.SetDefault("chat.transcribe_model", d.Chat.TranscribeModel)
	v.SetDefault("chat.speech_model", d.Chat.SpeechModel)
	v.SetDefault("chat.voice", d.Chat.Voice)
	v.SetDefault("chat.system_prompt", d.Chat.SystemPrompt)
	v.SetDefault("chat.api_key", "")

	// Setup ENV binding with ONBOARD_ prefix; chat.model -> ONBOARD_CHAT_MODEL
	v.SetEnvPrefix("ONBOARD")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	bindings := map[string][]string{
		"flow":                  {"ONBOARD_FLOW"},
		"flow_file":             {"ONBOARD_FLOW_FILE"},
		"verify_duration":       {"ONBOARD_VERIFY_DURATION"},
		"tick_interval":         {"ONBOARD_TICK_INTERVAL"},
		"max_artifact_bytes":    {"ONBOARD_MAX_ARTIFACT_BYTES"},
		"listen_addr":           {"ONBOARD_LISTEN_ADDR"},
		"log_level":             {"ONBOARD_LOG_LEVEL"},
		"log_file":              {"ONBOARD_LOG_FILE"},
		"chat.model":            {"ONBOARD_CHAT_MODEL"},
		"chat.transcribe_model": {"ONBOARD_CHAT_TRANSCRIBE_MODEL"},
		"chat.speech_model":     {"ONBOARD_CHAT_SPEECH_MODEL"},
		"chat.voice":            {"ONBOARD_CHAT_VOICE"},
		"chat.system_prompt":    {"ONBOARD_CHAT_SYSTEM_PROMPT"},
		"chat.api_key":          {"ONBOARD_CHAT_API_KEY", "OPENAI_API_KEY"},
	}
	for key, envs := range bindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	// Load global config first (if exists)
	globalPath := GlobalPath()
	if fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
		logger.Debug("Loaded global config from %s", globalPath)
	}

	// Merge project config on top (if exists)
	projectPath := ProjectPath()
	if fileExists(projectPath) {
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
		logger.Debug("Merged project config from %s", projectPath)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Validate rejects values no command can run with.
func (c *Config) Validate() error {
	if c.VerifyDuration < 0 {
		return fmt.Errorf("verify_duration must be >= 0, got %s", c.VerifyDuration)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be > 0, got %s", c.TickInterval)
	}
	if c.MaxArtifactBytes <= 0 {
		return fmt.Errorf("max_artifact_bytes must be > 0, got %d", c.MaxArtifactBytes)
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// Exists returns true if any config file exists (global or project).
func Exists() bool {
	return fileExists(GlobalPath()) || fileExists(ProjectPath())
}

// GlobalPath returns the XDG global config path.
// Returns ~/.config/onboard/onboard.yml or $XDG_CONFIG_HOME/onboard/onboard.yml.
func GlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "onboard", "onboard.yml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "onboard", "onboard.yml")
}

// ProjectPath returns the project-local config path.
func ProjectPath() string {
	return "onboard.yml"
}

// WriteGlobal writes the config to the XDG global location.
func WriteGlobal(cfg *Config) error {
	path := GlobalPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return write(path, cfg)
}

// WriteProject writes the config to the project-local location.
func WriteProject(cfg *Config) error {
	return write(ProjectPath(), cfg)
}

func write(path string, cfg *Config) error {
	data, err := yaml.Marshal(fileConfig{
		Flow:             cfg.Flow,
		FlowFile:         cfg.FlowFile,
		VerifyDuration:   cfg.VerifyDuration.String(),
		TickInterval:     cfg.TickInterval.String(),
		MaxArtifactBytes: cfg.MaxArtifactBytes,
		ListenAddr:       cfg.ListenAddr,
		LogLevel:         cfg.LogLevel,
		LogFile:          cfg.LogFile,
		Chat:             cfg.Chat,
	})
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	// 0600: the chat block may carry an API key
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// fileExists checks if a file exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
