// Package testfixtures holds helpers shared by the TUI tests.
package testfixtures

import (
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/colorprofile"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/charmbracelet/x/ansi"
)

// Initialize test environment
func init() {
	// Ascii profile keeps rendered output free of color codes across terminals
	lipgloss.Writer.Profile = colorprofile.Ascii
}

// Canonical terminal size for all tests
const (
	TestTermWidth  = 120
	TestTermHeight = 40
)

// Plain strips ANSI escape sequences so assertions can match rendered text.
func Plain(s string) string {
	return ansi.Strip(s)
}

// RenderPlain draws content onto a canonical-size screen buffer and returns
// the plain text the terminal would show.
func RenderPlain(content string) string {
	canvas := uv.NewScreenBuffer(TestTermWidth, TestTermHeight)
	uv.NewStyledString(content).Draw(canvas, uv.Rect(0, 0, TestTermWidth, TestTermHeight))
	return Plain(canvas.Render())
}
