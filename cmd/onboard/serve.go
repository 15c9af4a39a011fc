package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/JustZavala/onboard/internal/config"
	"github.com/JustZavala/onboard/internal/flow"
	"github.com/JustZavala/onboard/internal/hooks"
	"github.com/JustZavala/onboard/internal/mcpserver"
	"github.com/spf13/cobra"
)

var serveFlags struct {
	flowFlags
	addr string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Host an onboarding session over MCP",
	Long: `Host an onboarding session over MCP (streamable HTTP at /mcp).

Clients drive the flow with the wizard-* tools: upload artifacts as base64,
advance, go back, and tick the verification clock themselves. The session
runs until the process receives SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	serveFlags.register(serveCmd)
	serveCmd.Flags().StringVarP(&serveFlags.addr, "addr", "a", config.DefaultListenAddr, "Listen address (host:port, port 0 picks one)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(func(cfg *config.Config) {
		serveFlags.apply(cmd, cfg)
		if cmd.Flags().Changed("addr") {
			cfg.ListenAddr = serveFlags.addr
		}
	})
	if err != nil {
		return err
	}

	ctrl, err := newController(cfg)
	if err != nil {
		return err
	}
	hooksCfg, err := loadHooks()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Observers run with the session locked; hooks run in the background
	// and share one locked writer.
	hookOut := &lockedWriter{w: cmd.OutOrStdout()}
	var srv *mcpserver.Server
	observe := func(hook *hooks.HookConfig) func(flow.Snapshot) {
		if hook == nil {
			return nil
		}
		return func(snap flow.Snapshot) {
			go runHook(ctx, hookOut, hook, srv.ID(), snap)
		}
	}
	srv = mcpserver.New(ctrl, mcpserver.Options{
		VerifyDuration:   cfg.VerifyDuration,
		MaxArtifactBytes: cfg.MaxArtifactBytes,
		OnComplete:       observe(hooksCfg.Hooks.OnComplete),
		OnReset:          observe(hooksCfg.Hooks.OnReset),
	})
	if _, err := srv.Start(ctx, cfg.ListenAddr); err != nil {
		return err
	}
	defer func() {
		if err := srv.Stop(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error during shutdown: %v\n", err)
		}
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "Session %s listening on %s\n", srv.ID(), srv.URL())
	<-ctx.Done()
	fmt.Fprintln(cmd.OutOrStdout(), "\nShutting down gracefully...")
	return nil
}
