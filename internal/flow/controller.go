package flow

import (
	"sort"
	"time"

	"github.com/JustZavala/onboard/internal/logger"
)

// Controller runs one wizard session over a Definition.
// It is not safe for concurrent use; a host that may call it from several
// goroutines must serialize access itself.
type Controller struct {
	def       Definition
	index     map[Step]int
	slots     map[Slot]bool
	current   int
	artifacts map[Slot]Artifact
	phase     Phase
}

// New validates def and returns a controller positioned on its first step.
func New(def Definition) (*Controller, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	c := &Controller{
		def:       def,
		index:     make(map[Step]int, len(def.Steps)),
		slots:     make(map[Slot]bool),
		artifacts: make(map[Slot]Artifact),
	}
	for i, s := range def.Steps {
		c.index[s.ID] = i
	}
	for _, slot := range def.Slots() {
		c.slots[slot] = true
	}
	return c, nil
}

// Definition returns the definition the controller was built from.
func (c *Controller) Definition() Definition {
	return c.def
}

// Current returns the active step.
func (c *Controller) Current() Step {
	return c.def.Steps[c.current].ID
}

// Step returns the declaration of the given step.
func (c *Controller) Step(id Step) (StepDef, bool) {
	i, ok := c.index[id]
	if !ok {
		return StepDef{}, false
	}
	return c.def.Steps[i], true
}

// SetArtifact stores a in slot, replacing whatever was there.
func (c *Controller) SetArtifact(slot Slot, a Artifact) error {
	if !c.slots[slot] {
		return ErrUnknownSlot
	}
	c.artifacts[slot] = a.clone()
	logger.Debug("flow %s: slot %s set (%d bytes)", c.def.Name, slot, len(a.Data))
	return nil
}

// Artifact returns the artifact held by slot.
func (c *Controller) Artifact(slot Slot) (Artifact, bool) {
	a, ok := c.artifacts[slot]
	if !ok {
		return Artifact{}, false
	}
	return a.clone(), true
}

// CanAdvance reports whether step's exit condition holds: every required slot
// has a non-empty artifact and, on the verification step, the phase has
// completed. It has no side effects.
func (c *Controller) CanAdvance(step Step) bool {
	i, ok := c.index[step]
	if !ok {
		return false
	}
	missing, pending := c.blockers(c.def.Steps[i])
	return len(missing) == 0 && !pending
}

// blockers lists the required slots of s that are still empty and whether
// s is a verification step whose phase has not completed.
func (c *Controller) blockers(s StepDef) (missing []Slot, pending bool) {
	for _, slot := range s.Requires {
		if a, ok := c.artifacts[slot]; !ok || a.Empty() {
			missing = append(missing, slot)
		}
	}
	if s.Verify && c.phase.Kind != PhaseCompleted {
		pending = true
	}
	return missing, pending
}

// Advance moves to the next step and returns it.
func (c *Controller) Advance() (Step, error) {
	if c.current == len(c.def.Steps)-1 {
		return c.Current(), ErrAtFinalStep
	}

	cur := c.def.Steps[c.current]
	missing, pending := c.blockers(cur)
	if len(missing) > 0 || pending {
		return cur.ID, &IncompleteStepError{Step: cur.ID, Missing: missing, Pending: pending}
	}

	c.current++
	logger.Debug("flow %s: %s -> %s", c.def.Name, cur.ID, c.Current())
	return c.Current(), nil
}

// GoBack moves to the previous step and returns it. Artifacts are kept.
func (c *Controller) GoBack() (Step, error) {
	if c.current == 0 {
		return c.Current(), ErrAtInitialStep
	}
	if c.def.Steps[c.current].Verify && c.phase.Kind == PhaseRunning {
		return c.Current(), ErrVerificationRunning
	}

	from := c.Current()
	c.current--
	logger.Debug("flow %s: %s <- %s", c.def.Name, c.Current(), from)
	return c.Current(), nil
}

// StartVerification begins the timed phase on the verification step.
// Repeated calls while running or after completion do nothing, so a host
// may call it on every render of the step.
func (c *Controller) StartVerification(total time.Duration) error {
	if !c.def.Steps[c.current].Verify {
		return ErrNotVerifyStep
	}
	if c.phase.Kind != PhaseNotStarted {
		return nil
	}

	if total <= 0 {
		c.phase = Phase{Kind: PhaseCompleted}
		logger.Debug("flow %s: verification completed immediately", c.def.Name)
		return nil
	}
	c.phase = Phase{Kind: PhaseRunning, Total: total}
	logger.Debug("flow %s: verification started (%s)", c.def.Name, total)
	return nil
}

// Tick advances a running verification by delta, completing it once the
// total has elapsed.
func (c *Controller) Tick(delta time.Duration) {
	if c.phase.Kind != PhaseRunning || delta <= 0 {
		return
	}

	// Compared against the remainder so a huge delta cannot overflow Elapsed
	if delta < c.phase.Total-c.phase.Elapsed {
		c.phase.Elapsed += delta
		return
	}
	c.phase = Phase{Kind: PhaseCompleted, Elapsed: c.phase.Total, Total: c.phase.Total}
	logger.Debug("flow %s: verification completed", c.def.Name)
}

// Phase returns the verification sub-state.
func (c *Controller) Phase() Phase {
	return c.phase
}

// Progress returns the verification progress in [0, 1].
func (c *Controller) Progress() float64 {
	return c.phase.Fraction()
}

// Reset returns the session to its initial state, abandoning any running phase.
func (c *Controller) Reset() {
	c.current = 0
	c.artifacts = make(map[Slot]Artifact)
	c.phase = Phase{}
	logger.Debug("flow %s: reset", c.def.Name)
}

// Snapshot is a read-only view of the session for renderers.
type Snapshot struct {
	Flow       string
	Step       Step
	Title      string
	Index      int // zero-based position of Step
	Count      int
	Final      bool
	Verify     bool
	Choices    []string
	Required   []Slot
	Missing    []Slot
	Filled     []Slot // slots holding a non-empty artifact, sorted
	Phase      Phase
	Progress   float64
	CanAdvance bool
}

// Snapshot captures the current state.
func (c *Controller) Snapshot() Snapshot {
	cur := c.def.Steps[c.current]
	missing, pending := c.blockers(cur)

	var filled []Slot
	for slot, a := range c.artifacts {
		if !a.Empty() {
			filled = append(filled, slot)
		}
	}
	sort.Slice(filled, func(i, j int) bool { return filled[i] < filled[j] })

	title := cur.Title
	if title == "" {
		title = string(cur.ID)
	}

	return Snapshot{
		Flow:       c.def.Name,
		Step:       cur.ID,
		Title:      title,
		Index:      c.current,
		Count:      len(c.def.Steps),
		Final:      c.current == len(c.def.Steps)-1,
		Verify:     cur.Verify,
		Choices:    append([]string(nil), cur.Choices...),
		Required:   append([]Slot(nil), cur.Requires...),
		Missing:    missing,
		Filled:     filled,
		Phase:      c.phase,
		Progress:   c.phase.Fraction(),
		CanAdvance: len(missing) == 0 && !pending,
	}
}
