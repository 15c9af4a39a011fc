// Package wizard is the terminal host for an onboarding flow. It forwards
// key presses and file selections to a flow.Controller, drives the
// verification phase with tea.Tick, and renders whatever the controller reports.
package wizard

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/JustZavala/onboard/internal/capture"
	"github.com/JustZavala/onboard/internal/flow"
	"github.com/JustZavala/onboard/internal/logger"
	"github.com/JustZavala/onboard/internal/tui/theme"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/dustin/go-humanize"
)

// Options configures the terminal host.
type Options struct {
	Source         capture.Source
	VerifyDuration time.Duration // total of the simulated verification
	TickInterval   time.Duration // how often the verification clock advances
	StartDir       string        // first directory shown by the file picker
}

// SlotSummary describes one collected artifact.
type SlotSummary struct {
	Slot flow.Slot
	Name string
	Size int
}

// Result is reported after the program exits.
type Result struct {
	Flow      string
	Completed bool // the final step was reached
	Slots     []SlotSummary
}

// TickMsg advances the verification clock. Gen ties it to one tick loop so
// loops started before a reset are dropped.
type TickMsg struct {
	Gen int
}

// WizardModel is the BubbleTea model for an onboarding flow.
type WizardModel struct {
	ctrl     *flow.Controller
	source   capture.Source
	total    time.Duration
	interval time.Duration
	lastDir  string

	// Step components; at most one is non-nil
	picker *FilePickerStep
	choice *ChoiceStep

	spinner   spinner.Model
	buttonBar *ButtonBar

	target     int    // index into the current step's required slots, for the picker
	message    string // validation or load error shown under the step
	notice     string // confirmation of the last stored artifact
	generation int
	ticking    bool

	cancelled bool // User quit before the final step
	width     int  // Terminal width
	height    int  // Terminal height
}

// New creates a wizard model around ctrl.
func New(ctrl *flow.Controller, opts Options) *WizardModel {
	if opts.Source == nil {
		opts.Source = capture.FileSource{}
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}

	t := theme.Current()
	return &WizardModel{
		ctrl:     ctrl,
		source:   opts.Source,
		total:    opts.VerifyDuration,
		interval: opts.TickInterval,
		lastDir:  opts.StartDir,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.MiniDot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(t.Primary))),
		),
		buttonBar: NewButtonBar(nil),
		width:     80,
		height:    24,
	}
}

// Run starts a standalone BubbleTea program for ctrl and blocks until it exits.
func Run(ctrl *flow.Controller, opts Options) (*Result, error) {
	m := New(ctrl, opts)

	finalModel, err := tea.NewProgram(m).Run()
	if err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	wizModel, ok := finalModel.(*WizardModel)
	if !ok {
		return nil, fmt.Errorf("unexpected model type")
	}
	if wizModel.cancelled {
		return nil, fmt.Errorf("wizard cancelled by user")
	}
	return wizModel.Result(), nil
}

// Result summarizes the session.
func (m *WizardModel) Result() *Result {
	snap := m.ctrl.Snapshot()
	res := &Result{Flow: snap.Flow, Completed: snap.Final}
	for _, slot := range snap.Filled {
		a, _ := m.ctrl.Artifact(slot)
		res.Slots = append(res.Slots, SlotSummary{Slot: slot, Name: a.Name, Size: len(a.Data)})
	}
	return res
}

// Init initializes the wizard model.
func (m *WizardModel) Init() tea.Cmd {
	return m.enterStep()
}

// Update handles messages for the wizard.
func (m *WizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateSizes()
		return m, nil

	case FileSelectedMsg:
		m.storeFile(msg.Path)
		return m, nil

	case ChoiceSelectedMsg:
		snap := m.ctrl.Snapshot()
		if len(snap.Required) == 0 {
			return m, nil
		}
		if err := m.ctrl.SetArtifact(snap.Required[0], flow.Artifact{Name: msg.Choice, Data: []byte(msg.Choice)}); err != nil {
			m.message = describeError(err)
			return m, nil
		}
		return m, m.advance()

	case TickMsg:
		return m, m.handleTick(msg)

	case spinner.TickMsg:
		if !m.ticking {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *WizardModel) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	snap := m.ctrl.Snapshot()

	switch msg.String() {
	case "ctrl+c":
		m.cancelled = !snap.Final
		return m, tea.Quit
	case "esc":
		if snap.Index == 0 {
			m.cancelled = true
			return m, tea.Quit
		}
		if _, err := m.ctrl.GoBack(); err != nil {
			m.message = describeError(err)
			return m, nil
		}
		m.message, m.notice = "", ""
		return m, m.enterStep()
	}

	if snap.Final {
		switch msg.String() {
		case "r":
			return m, m.reset()
		case "q", "enter":
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.String() {
	case "right", "ctrl+n":
		return m, m.advance()
	case "tab":
		if m.picker != nil && len(snap.Required) > 1 {
			m.target = (m.target + 1) % len(snap.Required)
		}
		return m, nil
	}

	switch {
	case m.picker != nil:
		return m, m.picker.Update(msg)
	case m.choice != nil:
		return m, m.choice.Update(msg)
	case snap.Verify:
		if msg.String() == "enter" && snap.CanAdvance {
			return m, m.advance()
		}
	default:
		if msg.String() == "enter" {
			return m, m.advance()
		}
	}
	return m, nil
}

// advance asks the controller for the next step.
func (m *WizardModel) advance() tea.Cmd {
	if _, err := m.ctrl.Advance(); err != nil {
		m.message = describeError(err)
		return nil
	}
	m.message, m.notice = "", ""
	return m.enterStep()
}

// reset restarts the session and invalidates any running tick loop.
func (m *WizardModel) reset() tea.Cmd {
	m.ctrl.Reset()
	m.generation++
	m.ticking = false
	m.message, m.notice = "", ""
	logger.Info("wizard %s: restarted", m.ctrl.Definition().Name)
	return m.enterStep()
}

// enterStep prepares the component for the step the controller is on.
func (m *WizardModel) enterStep() tea.Cmd {
	m.picker, m.choice = nil, nil
	m.target = 0
	snap := m.ctrl.Snapshot()
	logger.Debug("wizard %s: showing %s", snap.Flow, snap.Step)

	var cmd tea.Cmd
	switch {
	case snap.Verify:
		// Safe on every entry: a completed phase is never restarted.
		if err := m.ctrl.StartVerification(m.total); err != nil {
			m.message = describeError(err)
			break
		}
		if m.ctrl.Phase().Kind == flow.PhaseRunning {
			cmd = m.startTicking()
		}
	case len(snap.Choices) > 0:
		current := ""
		if a, ok := m.ctrl.Artifact(snap.Required[0]); ok {
			current = string(a.Data)
		}
		m.choice = NewChoiceStep(snap.Choices, current)
	case len(snap.Required) > 0:
		m.picker = NewFilePickerStep(m.lastDir)
		m.target = firstMissing(snap)
	}

	m.updateSizes()
	return cmd
}

func (m *WizardModel) startTicking() tea.Cmd {
	if m.ticking {
		return nil
	}
	m.ticking = true
	return tea.Batch(m.spinner.Tick, tickCmd(m.interval, m.generation))
}

func tickCmd(interval time.Duration, gen int) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return TickMsg{Gen: gen}
	})
}

func (m *WizardModel) handleTick(msg TickMsg) tea.Cmd {
	if msg.Gen != m.generation {
		return nil
	}

	m.ctrl.Tick(m.interval)
	if m.ctrl.Phase().Kind == flow.PhaseRunning {
		return tickCmd(m.interval, m.generation)
	}

	m.ticking = false
	if m.ctrl.Snapshot().Verify {
		return m.advance()
	}
	return nil
}

// storeFile loads path through the artifact source into the targeted slot.
func (m *WizardModel) storeFile(path string) {
	snap := m.ctrl.Snapshot()
	if len(snap.Required) == 0 {
		return
	}
	if m.target >= len(snap.Required) {
		m.target = 0
	}
	slot := snap.Required[m.target]

	a, err := m.source.Load(path)
	if err != nil {
		m.message = describeError(err)
		return
	}
	if err := m.ctrl.SetArtifact(slot, a); err != nil {
		m.message = describeError(err)
		return
	}

	m.message = ""
	m.notice = fmt.Sprintf("%s set to %s", slotLabel(slot), a.Name)
	m.lastDir = filepath.Dir(path)
	m.target = firstMissing(m.ctrl.Snapshot())
}

func firstMissing(snap flow.Snapshot) int {
	if len(snap.Missing) == 0 {
		return 0
	}
	for i, slot := range snap.Required {
		if slot == snap.Missing[0] {
			return i
		}
	}
	return 0
}

// describeError turns controller and source errors into user-facing text.
func describeError(err error) string {
	var incomplete *flow.IncompleteStepError
	switch {
	case errors.As(err, &incomplete):
		if len(incomplete.Missing) > 0 {
			labels := make([]string, len(incomplete.Missing))
			for i, s := range incomplete.Missing {
				labels[i] = slotLabel(s)
			}
			return "Please provide: " + strings.Join(labels, ", ")
		}
		return "Please wait for the verification to finish"
	case errors.Is(err, flow.ErrVerificationRunning):
		return "Verification is in progress"
	case errors.Is(err, flow.ErrAtFinalStep):
		return "This is the last step"
	case errors.Is(err, capture.ErrEmpty):
		return "That file is empty"
	case errors.Is(err, capture.ErrTooLarge):
		return "That file is too large"
	default:
		return err.Error()
	}
}

// slotLabel renders a slot name for people: "document_front" -> "document front".
func slotLabel(slot flow.Slot) string {
	return strings.ReplaceAll(string(slot), "_", " ")
}

// updateSizes updates the size of the current step component.
func (m *WizardModel) updateSizes() {
	contentWidth := m.modalWidth() - 6
	contentHeight := m.height - 16
	if contentHeight < 6 {
		contentHeight = 6
	}
	if m.picker != nil {
		m.picker.SetSize(contentWidth, contentHeight)
	}
	m.buttonBar.SetWidth(contentWidth)
}

func (m *WizardModel) modalWidth() int {
	w := m.width - 10
	if w < 60 {
		w = 60
	}
	if w > 100 {
		w = 100 // Max width for readability
	}
	return w
}

// View renders the wizard UI.
func (m *WizardModel) View() tea.View {
	var view tea.View
	view.AltScreen = true

	content := m.renderModal(m.renderStep())

	canvas := uv.NewScreenBuffer(m.width, m.height)
	uv.NewStyledString(content).Draw(canvas, uv.Rectangle{
		Min: uv.Position{X: 0, Y: 0},
		Max: uv.Position{X: m.width, Y: m.height},
	})

	view.Content = lipgloss.NewLayer(canvas.Render())
	return view
}

// renderStep renders the body of the current step.
func (m *WizardModel) renderStep() string {
	s := theme.Current().S()
	snap := m.ctrl.Snapshot()
	var b strings.Builder

	switch {
	case snap.Final:
		b.WriteString(s.Success.Render("✓ Your identity has been verified"))
		b.WriteString("\n\n")
		for _, slot := range snap.Filled {
			a, _ := m.ctrl.Artifact(slot)
			fmt.Fprintf(&b, "  %s  %s %s\n", s.Text.Render(slotLabel(slot)), s.Subtle.Render(a.Name), s.Muted.Render("("+humanize.Bytes(uint64(len(a.Data)))+")"))
		}

	case snap.Verify:
		spin := m.spinner.View()
		if snap.Phase.Kind == flow.PhaseCompleted {
			spin = s.Success.Render("✓")
		}
		b.WriteString(spin + " " + s.Text.Render(phaseStatus(snap.Phase)))
		b.WriteString("\n\n")
		b.WriteString(renderProgressBar(snap.Progress, m.modalWidth()-14))
		b.WriteString("\n")

	case m.choice != nil:
		b.WriteString(m.choice.View())

	case m.picker != nil:
		for i, slot := range snap.Required {
			marker := "○"
			label := s.Subtle.Render(slotLabel(slot))
			if a, ok := m.ctrl.Artifact(slot); ok && !a.Empty() {
				marker = s.Success.Render("✓")
				label = s.Text.Render(slotLabel(slot)) + " " + s.Muted.Render(a.Name)
			}
			pointer := "  "
			if i == m.target {
				pointer = s.Title.Render("▸ ")
			}
			b.WriteString(pointer + marker + " " + label + "\n")
		}
		b.WriteString("\n")
		b.WriteString(m.picker.View())

	default:
		if desc := m.ctrl.Definition().Description; desc != "" && snap.Index == 0 {
			b.WriteString(s.Text.Render(desc))
			b.WriteString("\n\n")
		}
		b.WriteString(s.Subtle.Render("Press enter to continue."))
		b.WriteString("\n")
	}

	if m.notice != "" {
		b.WriteString("\n" + s.Success.Render(m.notice) + "\n")
	}
	if m.message != "" {
		b.WriteString("\n" + s.Error.Render(m.message) + "\n")
	}
	return b.String()
}

// hints returns the key-description pairs for the hint bar.
func (m *WizardModel) hints(snap flow.Snapshot) []string {
	switch {
	case snap.Final:
		return []string{"r", "restart", "q", "quit"}
	case snap.Verify:
		return []string{"esc", "back", "ctrl+c", "quit"}
	case m.choice != nil:
		return []string{"↑↓", "navigate", "enter", "choose", "esc", "back"}
	case m.picker != nil:
		pairs := []string{"↑↓", "navigate", "enter", "select", "→", "continue", "esc", "back"}
		if len(snap.Required) > 1 {
			pairs = append(pairs, "tab", "next slot")
		}
		return pairs
	default:
		return []string{"enter", "continue", "esc", "quit"}
	}
}

// renderModal wraps the step content in a modal container with title.
func (m *WizardModel) renderModal(stepContent string) string {
	snap := m.ctrl.Snapshot()
	sections := []string{
		styleModalTitle.Render(snap.Title),
		styleStepCounter.Render(fmt.Sprintf("Step %d of %d", snap.Index+1, snap.Count)),
		"",
		stepContent,
	}

	if !snap.Final {
		next := "Continue →"
		if snap.Index == snap.Count-2 {
			next = "Finish"
		}
		m.buttonBar = NewButtonBar(CreateBackNextButtons(snap.Index > 0, snap.CanAdvance, next))
		m.buttonBar.SetWidth(m.modalWidth() - 6)
		sections = append(sections, "", m.buttonBar.Render())
	}
	sections = append(sections, "", renderHintBar(m.hints(snap)...))

	modalContent := styleModalContainer.Width(m.modalWidth()).Render(strings.Join(sections, "\n"))

	// Center the modal on screen
	return lipgloss.Place(m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		modalContent,
	)
}
