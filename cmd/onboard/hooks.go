package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/JustZavala/onboard/internal/flow"
	"github.com/JustZavala/onboard/internal/hooks"
	"github.com/JustZavala/onboard/internal/logger"
)

// loadHooks reads .onboard.hooks.yml from the working directory. A missing
// file yields an empty config.
func loadHooks() (*hooks.Config, error) {
	cfg, err := hooks.LoadConfig(".")
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = &hooks.Config{}
	}
	return cfg, nil
}

// runHook executes hook for the session and copies its output to w.
func runHook(ctx context.Context, w io.Writer, hook *hooks.HookConfig, session string, snap flow.Snapshot) {
	if hook == nil {
		return
	}
	slots := make([]string, len(snap.Filled))
	for i, s := range snap.Filled {
		slots[i] = string(s)
	}

	res, err := hooks.Execute(ctx, hook, ".", hooks.Variables{
		Session: session,
		Flow:    snap.Flow,
		Slots:   slots,
	})
	if err != nil {
		logger.Warn("Hook for %s cancelled: %v", snap.Flow, err)
		return
	}
	if output := strings.TrimSpace(res.String()); output != "" {
		fmt.Fprintln(w, output)
	}
}

// lockedWriter serializes writes from hooks running concurrently.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
