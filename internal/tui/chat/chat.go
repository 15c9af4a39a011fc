// Package chat is the terminal front end for the assistant conversation.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/glamour/v2"
	"charm.land/lipgloss/v2"
	"github.com/JustZavala/onboard/internal/chat"
	"github.com/JustZavala/onboard/internal/tui/theme"
	uv "github.com/charmbracelet/ultraviolet"
)

// replyTimeout bounds one completion request.
const replyTimeout = 60 * time.Second

// ReplyMsg carries the outcome of a completion request.
type ReplyMsg struct {
	Reply string
	Err   error
}

// Model is the BubbleTea model for the chat screen.
type Model struct {
	conv      *chat.Conversation
	completer chat.Completer

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	waiting bool
	err     string
	width   int
	height  int
}

// New creates a chat model backed by conv and completer.
func New(conv *chat.Conversation, completer chat.Completer) *Model {
	t := theme.Current()

	input := textinput.New()
	input.Placeholder = "Escribe tu mensaje aquí..."
	input.Prompt = "› "
	input.SetStyles(textinput.Styles{
		Focused: textinput.StyleState{
			Text:        lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgBase)),
			Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)),
			Prompt:      lipgloss.NewStyle().Foreground(lipgloss.Color(t.Primary)),
		},
		Blurred: textinput.StyleState{
			Text:        lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)),
			Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)),
			Prompt:      lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgSubtle)),
		},
		Cursor: textinput.CursorStyle{
			Color: lipgloss.Color(t.Primary),
			Shape: tea.CursorBar,
			Blink: true,
		},
	})

	vp := viewport.New(
		viewport.WithWidth(76),
		viewport.WithHeight(18),
	)
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3

	m := &Model{
		conv:      conv,
		completer: completer,
		input:     input,
		viewport:  vp,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.MiniDot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(t.Primary))),
		),
		width:  80,
		height: 24,
	}
	m.resize()
	return m
}

// Run starts a standalone BubbleTea program and blocks until it exits.
func Run(conv *chat.Conversation, completer chat.Completer) error {
	if _, err := tea.NewProgram(New(conv, completer)).Run(); err != nil {
		return fmt.Errorf("chat failed: %w", err)
	}
	return nil
}

// Init focuses the input.
func (m *Model) Init() tea.Cmd {
	return m.input.Focus()
}

// Update handles messages for the chat screen.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "ctrl+l":
			if !m.waiting {
				m.conv.Reset()
				m.err = ""
				m.refresh()
			}
			return m, nil
		case "enter":
			return m, m.submit()
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case ReplyMsg:
		m.waiting = false
		if msg.Err != nil {
			m.err = msg.Err.Error()
		}
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.MouseWheelMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	return m, nil
}

// submit sends the typed text unless a reply is still pending.
func (m *Model) submit() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	if m.waiting || text == "" {
		return nil
	}
	m.input.Reset()
	m.waiting = true
	m.err = ""

	conv, completer := m.conv, m.completer
	send := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), replyTimeout)
		defer cancel()
		reply, err := conv.Send(ctx, completer, text)
		return ReplyMsg{Reply: reply, Err: err}
	}
	return tea.Batch(m.spinner.Tick, send)
}

func (m *Model) resize() {
	m.input.SetWidth(m.width - 6)
	vpHeight := m.height - 6
	if vpHeight < 3 {
		vpHeight = 3
	}
	m.viewport.SetWidth(m.width)
	m.viewport.SetHeight(vpHeight)
	m.refresh()
}

// refresh re-renders the transcript and scrolls to the newest turn.
func (m *Model) refresh() {
	m.viewport.SetContent(renderTranscript(m.conv.History(), m.width-2))
	m.viewport.GotoBottom()
}

// renderTranscript renders every visible turn as markdown under a speaker label.
func renderTranscript(history []chat.Message, width int) string {
	s := theme.Current().S()
	if len(history) == 0 {
		return s.Muted.Render("Habla o escribe, y el asistente te responde aquí.")
	}

	parts := make([]string, 0, len(history))
	for _, msg := range history {
		label := s.Title.Render("Tú")
		if msg.Role == chat.RoleAssistant {
			label = s.Success.Render("Asistente")
		}
		parts = append(parts, label+"\n"+renderMarkdown(msg.Content, width))
	}
	return strings.Join(parts, "\n\n")
}

// renderMarkdown renders content with glamour, falling back to the raw text.
func renderMarkdown(content string, width int) string {
	if width > 120 {
		width = 120
	}
	if width < 20 {
		width = 20
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}
	rendered, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(rendered, "\n")
}

// View renders the chat screen.
func (m *Model) View() tea.View {
	var view tea.View
	view.AltScreen = true

	s := theme.Current().S()
	status := renderHints()
	switch {
	case m.waiting:
		status = m.spinner.View() + " " + s.Subtle.Render("Pensando...")
	case m.err != "":
		status = s.Error.Render("Error: " + m.err)
	}

	content := strings.Join([]string{
		theme.ApplyGradient("🎙 Chatbot", theme.Current().Primary, theme.Current().Secondary),
		m.viewport.View(),
		status,
		m.input.View(),
	}, "\n")

	canvas := uv.NewScreenBuffer(m.width, m.height)
	uv.NewStyledString(content).Draw(canvas, uv.Rect(0, 0, m.width, m.height))
	view.Content = lipgloss.NewLayer(canvas.Render())
	return view
}

func renderHints() string {
	s := theme.Current().S()
	pairs := [][2]string{{"enter", "enviar"}, {"ctrl+l", "nueva conversación"}, {"esc", "salir"}}
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = s.Text.Render(p[0]) + " " + s.Subtle.Render(p[1])
	}
	return strings.Join(parts, s.Muted.Render(" • "))
}
