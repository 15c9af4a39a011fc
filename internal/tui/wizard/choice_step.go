package wizard

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/JustZavala/onboard/internal/tui/theme"
)

// ChoiceStep lets the user pick one of a fixed set of labels.
type ChoiceStep struct {
	choices     []string
	selectedIdx int
}

// NewChoiceStep creates a choice list, preselecting current if it is one of choices.
func NewChoiceStep(choices []string, current string) *ChoiceStep {
	c := &ChoiceStep{choices: choices}
	for i, choice := range choices {
		if choice == current {
			c.selectedIdx = i
		}
	}
	return c
}

// Selected returns the highlighted label.
func (c *ChoiceStep) Selected() string {
	if len(c.choices) == 0 {
		return ""
	}
	return c.choices[c.selectedIdx]
}

// Update handles navigation; enter emits ChoiceSelectedMsg.
func (c *ChoiceStep) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return nil
	}

	switch keyMsg.String() {
	case "up", "k":
		if c.selectedIdx > 0 {
			c.selectedIdx--
		}
	case "down", "j":
		if c.selectedIdx < len(c.choices)-1 {
			c.selectedIdx++
		}
	case "enter":
		if len(c.choices) == 0 {
			return nil
		}
		choice := c.Selected()
		return func() tea.Msg {
			return ChoiceSelectedMsg{Choice: choice}
		}
	}
	return nil
}

// View renders the list.
func (c *ChoiceStep) View() string {
	s := theme.Current().S()
	var b strings.Builder
	for i, choice := range c.choices {
		if i == c.selectedIdx {
			b.WriteString(s.Selected.Render("▸ " + choice))
		} else {
			b.WriteString("  " + s.Text.Render(choice))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// ChoiceSelectedMsg is sent when a choice is confirmed.
type ChoiceSelectedMsg struct {
	Choice string
}
