package theme

import "charm.land/lipgloss/v2"

// Styles contains all pre-built lipgloss styles for the TUI.
type Styles struct {
	Title         lipgloss.Style
	Subtle        lipgloss.Style
	Muted         lipgloss.Style
	Text          lipgloss.Style
	Selected      lipgloss.Style
	Success       lipgloss.Style
	Warning       lipgloss.Style
	Error         lipgloss.Style
	ProgressEmpty lipgloss.Style
	Modal         lipgloss.Style
}
