package main

import (
	"context"
	"os"
	"strings"

	"github.com/JustZavala/onboard/internal/logger"
	"github.com/JustZavala/onboard/internal/tui/theme"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

const (
	logoText1 = "█▀█ █▄ █ █▄▄ █▀█ ▄▀█ █▀█ █▀▄"
	logoText2 = "█▄█ █ ▀█ █▄█ █▄█ █▀█ █▀▄ █▄▀"
)

// Version set via ldflags during build
var version = "dev"

func main() {
	// Ensure logger is closed on exit
	defer func() { _ = logger.Close() }()

	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		logger.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Identity verification onboarding wizard with a terminal UI, an MCP host and a voice chatbot",
}

// renderLogo creates the logo with gradient colors
func renderLogo() string {
	t := theme.NewCatppuccinMocha()
	line1 := theme.ApplyGradient(logoText1, t.Primary, t.Secondary)
	line2 := theme.ApplyGradient(logoText2, t.Primary, t.Secondary)
	return strings.Join([]string{line1, line2}, "\n")
}

func init() {
	rootCmd.Long = renderLogo() + `

onboard walks a user through a KYC onboarding flow: welcome, document
upload, selfie, a timed verification and a completion screen. The same
flow can be driven from the terminal (run) or by remote clients over MCP
(serve). A Spanish-speaking voice and text assistant is available via chat.`

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(flowsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(setupCmd)
}
