package main

import (
	"fmt"

	"github.com/JustZavala/onboard/internal/config"
	"github.com/JustZavala/onboard/internal/flow"
	"github.com/JustZavala/onboard/internal/logger"
	"github.com/spf13/cobra"
)

// flowFlags are shared by the commands that host a flow.
type flowFlags struct {
	flow     string
	flowFile string
}

func (f *flowFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.flow, "flow", "", "Built-in flow name (default: config flow, then standard)")
	cmd.Flags().StringVar(&f.flowFile, "flow-file", "", "YAML flow definition, overrides --flow")
}

// apply copies changed flags over cfg.
func (f *flowFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("flow") {
		cfg.Flow = f.flow
		cfg.FlowFile = ""
	}
	if cmd.Flags().Changed("flow-file") {
		cfg.FlowFile = f.flowFile
	}
}

// loadConfig loads configuration, lets override adjust it and configures the logger.
func loadConfig(override func(*config.Config)) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := logger.Configure(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, fmt.Errorf("failed to configure logging: %w", err)
	}
	return cfg, nil
}

// newController resolves the configured flow and starts a session on it.
func newController(cfg *config.Config) (*flow.Controller, error) {
	def, err := flow.DefaultRegistry().Resolve(cfg.Flow, cfg.FlowFile)
	if err != nil {
		return nil, err
	}
	ctrl, err := flow.New(def)
	if err != nil {
		return nil, err
	}
	logger.Info("Starting flow %s (%d steps)", def.Name, len(def.Steps))
	return ctrl, nil
}
