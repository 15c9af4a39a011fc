package wizard

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/JustZavala/onboard/internal/tui/theme"
)

// Modal styles
var (
	styleModalContainer = theme.Current().S().Modal

	styleModalTitle = theme.Current().S().Title.
			Align(lipgloss.Center)

	styleStepCounter = theme.Current().S().Subtle
)

// Hint bar styles
var (
	styleHintKey = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bac2de")).
			Bold(true)

	styleHintDesc = theme.Current().S().Subtle

	styleHintSeparator = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#585b70"))
)

// renderHintBar renders a hint bar with the given key-description pairs.
// Example: renderHintBar("↑↓", "navigate", "enter", "select", "esc", "back")
// Returns: "↑↓ navigate • enter select • esc back"
func renderHintBar(pairs ...string) string {
	if len(pairs) == 0 || len(pairs)%2 != 0 {
		return ""
	}

	parts := make([]string, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		parts = append(parts, styleHintKey.Render(pairs[i])+" "+styleHintDesc.Render(pairs[i+1]))
	}
	return strings.Join(parts, " "+styleHintSeparator.Render("•")+" ")
}
