// Package hooks runs user-configured shell commands on flow events.
package hooks

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/JustZavala/onboard/internal/logger"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the hooks configuration file.
const ConfigFileName = ".onboard.hooks.yml"

// LoadConfig loads the hooks configuration from the working directory.
// Returns nil if the config file doesn't exist (hooks are optional).
// Returns an error only if the file exists but cannot be parsed.
func LoadConfig(workDir string) (*Config, error) {
	configPath := filepath.Join(workDir, ConfigFileName)

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("No hooks config found at %s", configPath)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read hooks config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse hooks config: %w", err)
	}

	logger.Debug("Loaded hooks config from %s (version: %d)", configPath, cfg.Version)
	return &cfg, nil
}

// Variables holds template variables that can be expanded in hook commands.
type Variables struct {
	Session string
	Flow    string
	Slots   []string // filled slots, sorted
}

// Result is the outcome of one hook run.
type Result struct {
	Command  string
	Stdout   string
	Stderr   string
	Err      error // non-nil when the command failed or timed out
	TimedOut bool
}

// String renders the result for people: stdout, then stderr and the failure if any.
func (r Result) String() string {
	var b strings.Builder
	switch {
	case r.TimedOut:
		fmt.Fprintf(&b, "[hook timed out: %s]\n", r.Command)
	case r.Err != nil:
		fmt.Fprintf(&b, "[hook failed: %v]\n", r.Err)
	}
	b.WriteString(r.Stdout)
	if r.Stderr != "" {
		b.WriteString("\n[stderr]\n" + r.Stderr)
	}
	return b.String()
}

// Execute runs a hook with sh -c in workDir.
// Command placeholders ({{session}}, {{flow}}, {{slots}}) are expanded and the
// same values are exported as ONBOARD_SESSION, ONBOARD_FLOW and ONBOARD_SLOTS.
// Failures and timeouts are reported in Result; the returned error is only
// ever the cancellation of ctx.
func Execute(ctx context.Context, hook *HookConfig, workDir string, vars Variables) (Result, error) {
	if hook == nil || hook.Command == "" {
		return Result{}, nil
	}

	res := Result{Command: expandVariables(hook.Command, vars)}
	timeout := time.Duration(hook.Timeout) * time.Second
	if timeout <= 0 {
		timeout = DefaultTimeout * time.Second
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, "sh", "-c", res.Command)
	cmd.Dir = workDir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second
	cmd.Env = append(os.Environ(),
		"ONBOARD_SESSION="+vars.Session,
		"ONBOARD_FLOW="+vars.Flow,
		"ONBOARD_SLOTS="+strings.Join(vars.Slots, ","),
	)

	logger.Debug("hooks: running %q", res.Command)
	err := cmd.Run()
	if ctx.Err() != nil {
		return Result{}, ctx.Err()
	}

	res.Stdout, res.Stderr = stdout.String(), stderr.String()
	switch {
	case runCtx.Err() == context.DeadlineExceeded:
		res.TimedOut = true
		res.Err = fmt.Errorf("timed out after %s", timeout)
		logger.Warn("hooks: %q timed out after %s", res.Command, timeout)
	case err != nil:
		res.Err = err
		logger.Warn("hooks: %q failed: %v", res.Command, err)
	default:
		logger.Debug("hooks: %q wrote %d bytes", res.Command, len(res.Stdout))
	}
	return res, nil
}

// expandVariables replaces {{variable}} placeholders in the command string.
func expandVariables(command string, vars Variables) string {
	return strings.NewReplacer(
		"{{session}}", vars.Session,
		"{{flow}}", vars.Flow,
		"{{slots}}", strings.Join(vars.Slots, ","),
	).Replace(command)
}
