package main

import (
	"fmt"
	"time"

	"github.com/JustZavala/onboard/internal/capture"
	"github.com/JustZavala/onboard/internal/config"
	"github.com/JustZavala/onboard/internal/tui/wizard"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var runFlags struct {
	flowFlags
	duration time.Duration
	tick     time.Duration
	dir      string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the onboarding wizard in the terminal",
	Long: `Run the onboarding wizard in the terminal.

Upload steps open a file picker for images and PDFs. The verification step
runs for --duration and moves on by itself once it completes.`,
	RunE: runRun,
}

func init() {
	runFlags.register(runCmd)
	runCmd.Flags().DurationVarP(&runFlags.duration, "duration", "d", config.DefaultVerifyDuration, "Simulated verification time")
	runCmd.Flags().DurationVar(&runFlags.tick, "tick", config.DefaultTickInterval, "Verification clock interval")
	runCmd.Flags().StringVar(&runFlags.dir, "dir", "", "Directory the file picker starts in (default: current directory)")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(func(cfg *config.Config) {
		runFlags.apply(cmd, cfg)
		if cmd.Flags().Changed("duration") {
			cfg.VerifyDuration = runFlags.duration
		}
		if cmd.Flags().Changed("tick") {
			cfg.TickInterval = runFlags.tick
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

	result, err := wizard.Run(ctrl, wizard.Options{
		Source:         capture.FileSource{MaxBytes: cfg.MaxArtifactBytes},
		VerifyDuration: cfg.VerifyDuration,
		TickInterval:   cfg.TickInterval,
		StartDir:       runFlags.dir,
	})
	if err != nil {
		return err
	}

	if !result.Completed {
		fmt.Printf("Flow %s was not completed.\n", result.Flow)
		return nil
	}
	fmt.Printf("Flow %s completed.\n", result.Flow)
	for _, s := range result.Slots {
		fmt.Printf("  %-16s %s (%s)\n", s.Slot, s.Name, humanize.Bytes(uint64(s.Size)))
	}
	runHook(cmd.Context(), cmd.OutOrStdout(), hooksCfg.Hooks.OnComplete, "local", ctrl.Snapshot())
	return nil
}
