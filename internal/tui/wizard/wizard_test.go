package wizard

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/JustZavala/onboard/internal/capture"
	"github.com/JustZavala/onboard/internal/flow"
	"github.com/JustZavala/onboard/internal/tui/testfixtures"
	"github.com/stretchr/testify/require"
)

// fakeSource returns a small artifact named after the path without touching disk.
type fakeSource struct {
	loads []string
	err   error
}

func (f *fakeSource) Load(ref string) (flow.Artifact, error) {
	f.loads = append(f.loads, ref)
	if f.err != nil {
		return flow.Artifact{}, f.err
	}
	return flow.Artifact{Name: filepath.Base(ref), Data: []byte("img:" + ref)}, nil
}

func key(s string) tea.KeyPressMsg {
	return tea.KeyPressMsg{Text: s}
}

func newTestWizard(t *testing.T, name string) (*WizardModel, *fakeSource) {
	t.Helper()

	def, err := flow.DefaultRegistry().Lookup(name)
	require.NoError(t, err)
	ctrl, err := flow.New(def)
	require.NoError(t, err)

	src := &fakeSource{}
	m := New(ctrl, Options{
		Source:         src,
		VerifyDuration: 3 * time.Second,
		TickInterval:   time.Second,
		StartDir:       t.TempDir(),
	})
	_ = m.Init()
	return m, src
}

// walkToVerify stores a document and a selfie on the standard flow and
// advances onto the verification step.
func walkToVerify(t *testing.T, m *WizardModel) tea.Cmd {
	t.Helper()

	m.Update(key("enter"))
	m.Update(FileSelectedMsg{Path: "/scans/passport.png"})
	m.Update(key("right"))
	m.Update(FileSelectedMsg{Path: "/scans/me.jpg"})
	_, cmd := m.Update(key("right"))
	require.Equal(t, flow.StepVerifying, m.ctrl.Current())
	return cmd
}

func TestWizard_WelcomeEnterAdvances(t *testing.T) {
	m, _ := newTestWizard(t, "standard")
	require.Equal(t, flow.StepWelcome, m.ctrl.Current())

	m.Update(key("enter"))

	require.Equal(t, flow.StepDocument, m.ctrl.Current())
	require.NotNil(t, m.picker, "upload steps show the file picker")
	require.Nil(t, m.choice)
}

func TestWizard_AdvanceBlockedShowsMissing(t *testing.T) {
	m, _ := newTestWizard(t, "standard")
	m.Update(key("enter"))

	m.Update(key("right"))

	require.Equal(t, flow.StepDocument, m.ctrl.Current())
	require.Equal(t, "Please provide: document", m.message)
}

func TestWizard_FileSelectedStoresArtifact(t *testing.T) {
	m, src := newTestWizard(t, "standard")
	m.Update(key("enter"))

	m.Update(FileSelectedMsg{Path: "/scans/passport.png"})

	require.Equal(t, []string{"/scans/passport.png"}, src.loads)
	a, ok := m.ctrl.Artifact(flow.SlotDocument)
	require.True(t, ok)
	require.Equal(t, "passport.png", a.Name)
	require.Equal(t, "document set to passport.png", m.notice)
	require.Empty(t, m.message)
	require.Equal(t, "/scans", m.lastDir, "picker reopens where the last file came from")

	m.Update(key("right"))
	require.Equal(t, flow.StepSelfie, m.ctrl.Current())
	require.Empty(t, m.notice, "notice is cleared on transition")
}

func TestWizard_SourceErrorKeepsSlotEmpty(t *testing.T) {
	m, src := newTestWizard(t, "standard")
	m.Update(key("enter"))
	src.err = fmt.Errorf("huge.png: %w", capture.ErrTooLarge)

	m.Update(FileSelectedMsg{Path: "/scans/huge.png"})

	require.Equal(t, "That file is too large", m.message)
	_, ok := m.ctrl.Artifact(flow.SlotDocument)
	require.False(t, ok)
	require.False(t, m.ctrl.CanAdvance(flow.StepDocument))
}

func TestWizard_TabCyclesTargetSlot(t *testing.T) {
	m, _ := newTestWizard(t, "single-page")
	m.Update(key("enter"))
	require.Equal(t, flow.StepCapture, m.ctrl.Current())
	require.Equal(t, 0, m.target)

	m.Update(key("tab"))
	require.Equal(t, 1, m.target)
	m.Update(key("tab"))
	require.Equal(t, 0, m.target)

	// Storing the first slot moves the target to the one still missing
	m.Update(FileSelectedMsg{Path: "/scans/id.png"})
	require.Equal(t, 1, m.target)
	m.Update(FileSelectedMsg{Path: "/scans/face.png"})

	_, ok := m.ctrl.Artifact(flow.SlotSelfie)
	require.True(t, ok)
	require.True(t, m.ctrl.CanAdvance(flow.StepCapture))
}

func TestWizard_VerificationTicksToDone(t *testing.T) {
	m, _ := newTestWizard(t, "standard")
	cmd := walkToVerify(t, m)

	require.NotNil(t, cmd, "entering verification starts the tick loop")
	require.True(t, m.ticking)
	require.Equal(t, flow.PhaseRunning, m.ctrl.Phase().Kind)

	_, cmd = m.Update(TickMsg{Gen: 0})
	require.NotNil(t, cmd, "loop reschedules while running")
	_, _ = m.Update(TickMsg{Gen: 0})
	require.Equal(t, 2*time.Second, m.ctrl.Phase().Elapsed)
	require.Equal(t, flow.StepVerifying, m.ctrl.Current())

	_, _ = m.Update(TickMsg{Gen: 0})
	require.Equal(t, flow.StepDone, m.ctrl.Current(), "completion advances automatically")
	require.False(t, m.ticking)

	res := m.Result()
	require.True(t, res.Completed)
	require.Equal(t, "standard", res.Flow)
	require.Len(t, res.Slots, 2)
}

func TestWizard_EscWhileVerifyingIsRejected(t *testing.T) {
	m, _ := newTestWizard(t, "standard")
	walkToVerify(t, m)

	m.Update(key("esc"))

	require.Equal(t, flow.StepVerifying, m.ctrl.Current())
	require.Equal(t, "Verification is in progress", m.message)
	require.False(t, m.cancelled)
}

func TestWizard_ResetDropsStaleTicks(t *testing.T) {
	m, _ := newTestWizard(t, "standard")
	walkToVerify(t, m)
	for range 3 {
		m.Update(TickMsg{Gen: 0})
	}
	require.Equal(t, flow.StepDone, m.ctrl.Current())

	m.Update(key("r"))
	require.Equal(t, flow.StepWelcome, m.ctrl.Current())
	require.Equal(t, 1, m.generation)
	_, ok := m.ctrl.Artifact(flow.SlotDocument)
	require.False(t, ok, "reset clears artifacts")

	walkToVerify(t, m)
	_, cmd := m.Update(TickMsg{Gen: 0})
	require.Nil(t, cmd, "tick from before the reset is ignored")
	require.Equal(t, time.Duration(0), m.ctrl.Phase().Elapsed)

	m.Update(TickMsg{Gen: 1})
	require.Equal(t, time.Second, m.ctrl.Phase().Elapsed)
}

func TestWizard_ChoiceStep(t *testing.T) {
	m, _ := newTestWizard(t, "id-type")
	m.Update(key("enter"))
	require.Equal(t, flow.StepIDType, m.ctrl.Current())
	require.NotNil(t, m.choice)
	require.Nil(t, m.picker)

	m.Update(key("j"))
	require.Equal(t, "National ID card", m.choice.Selected())

	_, cmd := m.Update(key("enter"))
	require.NotNil(t, cmd)
	msg := cmd()
	require.Equal(t, ChoiceSelectedMsg{Choice: "National ID card"}, msg)

	m.Update(msg)
	a, ok := m.ctrl.Artifact(flow.SlotIDType)
	require.True(t, ok)
	require.Equal(t, "National ID card", string(a.Data))
	require.Equal(t, flow.StepDocument, m.ctrl.Current())

	// Going back keeps the earlier answer highlighted
	m.Update(key("esc"))
	require.Equal(t, flow.StepIDType, m.ctrl.Current())
	require.Equal(t, "National ID card", m.choice.Selected())
}

func TestWizard_EscOnFirstStepCancels(t *testing.T) {
	m, _ := newTestWizard(t, "standard")

	_, cmd := m.Update(key("esc"))

	require.NotNil(t, cmd)
	require.True(t, m.cancelled)
}

func TestWizard_CtrlCOnFinalStepIsNotCancel(t *testing.T) {
	m, _ := newTestWizard(t, "standard")
	walkToVerify(t, m)
	for range 3 {
		m.Update(TickMsg{Gen: 0})
	}

	_, cmd := m.Update(key("ctrl+c"))

	require.NotNil(t, cmd)
	require.False(t, m.cancelled)
}

func TestWizard_WindowSize(t *testing.T) {
	m, _ := newTestWizard(t, "standard")
	m.Update(key("enter"))

	m.Update(tea.WindowSizeMsg{Width: testfixtures.TestTermWidth, Height: testfixtures.TestTermHeight})

	require.Equal(t, testfixtures.TestTermWidth, m.width)
	require.Equal(t, 100, m.modalWidth(), "modal width is capped")
	require.Equal(t, 94, m.picker.width)
}

func TestWizard_RenderWelcome(t *testing.T) {
	m, _ := newTestWizard(t, "standard")

	out := testfixtures.Plain(m.renderModal(m.renderStep()))

	require.Contains(t, out, "Welcome")
	require.Contains(t, out, "Step 1 of 5")
	require.Contains(t, out, "Document and selfie on separate steps")
	require.Contains(t, out, "Continue →")
	require.Contains(t, out, "enter continue")
}

func TestWizard_RenderUploadStep(t *testing.T) {
	m, _ := newTestWizard(t, "standard")
	m.Update(key("enter"))
	m.Update(key("right"))

	out := testfixtures.Plain(m.renderStep())

	require.Contains(t, out, "○ document")
	require.Contains(t, out, "No images in this directory")
	require.Contains(t, out, "Please provide: document")
}

func TestWizard_RenderSummary(t *testing.T) {
	m, _ := newTestWizard(t, "standard")
	walkToVerify(t, m)
	for range 3 {
		m.Update(TickMsg{Gen: 0})
	}

	out := testfixtures.Plain(m.renderModal(m.renderStep()))

	require.Contains(t, out, "Your identity has been verified")
	require.Contains(t, out, "passport.png")
	require.Contains(t, out, "me.jpg")
	require.Contains(t, out, "r restart")
	require.NotContains(t, out, "Continue →", "no buttons on the final step")
}

func TestWizard_ViewFitsTerminal(t *testing.T) {
	m, _ := newTestWizard(t, "standard")
	m.Update(tea.WindowSizeMsg{Width: testfixtures.TestTermWidth, Height: testfixtures.TestTermHeight})

	view := m.View()
	require.True(t, view.AltScreen)

	out := testfixtures.RenderPlain(m.renderModal(m.renderStep()))
	require.Contains(t, out, "Welcome")
	require.Contains(t, out, "Step 1 of 5")
}
