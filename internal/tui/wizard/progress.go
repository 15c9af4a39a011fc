package wizard

import (
	"fmt"
	"strings"
	"time"

	"github.com/JustZavala/onboard/internal/flow"
	"github.com/JustZavala/onboard/internal/tui/theme"
)

// renderProgressBar draws a gradient bar of width cells filled to fraction.
func renderProgressBar(fraction float64, width int) string {
	if width < 10 {
		width = 10
	}
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}

	t := theme.Current()
	filled := int(fraction * float64(width))
	fill := theme.ApplyGradient(strings.Repeat("█", filled), t.Primary, t.Secondary)
	empty := t.S().ProgressEmpty.Render(strings.Repeat("░", width-filled))
	return fill + empty + fmt.Sprintf(" %3d%%", int(fraction*100))
}

// phaseStatus describes the verification phase for the status line.
func phaseStatus(p flow.Phase) string {
	switch p.Kind {
	case flow.PhaseRunning:
		return fmt.Sprintf("Checking your documents... %s left", p.Remaining().Round(time.Second))
	case flow.PhaseCompleted:
		return "Checks complete"
	default:
		return "Preparing verification"
	}
}
