// Package flow implements the onboarding wizard state machine.
//
// A Definition declares the ordered steps of one wizard variant and the slots
// each step requires before it can be left. A Controller runs one session of
// a Definition: it gates forward navigation on those slots, keeps artifacts
// across back navigation, and drives the tick-based verification phase.
package flow

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Step identifies one stage of a wizard.
type Step string

// Slot names a holder for one user-supplied artifact.
type Slot string

// Artifact is an opaque payload supplied by the user for a slot.
type Artifact struct {
	Name string // Display name, e.g. the source file name
	Data []byte
}

// Empty reports whether the artifact carries no bytes.
func (a Artifact) Empty() bool {
	return len(a.Data) == 0
}

func (a Artifact) clone() Artifact {
	return Artifact{Name: a.Name, Data: bytes.Clone(a.Data)}
}

// StepDef declares a single step.
type StepDef struct {
	ID       Step     `yaml:"id"`
	Title    string   `yaml:"title,omitempty"`
	Requires []Slot   `yaml:"requires,omitempty"` // slots that must be filled to leave the step forward
	Choices  []string `yaml:"choices,omitempty"`  // fixed options; the chosen label becomes the artifact
	Verify   bool     `yaml:"verify,omitempty"`   // step hosts the verification phase
}

// Definition is the static configuration of one wizard variant.
type Definition struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description,omitempty"`
	Steps       []StepDef `yaml:"steps"`
}

// Slots returns every slot declared by the definition, in declaration order.
func (d Definition) Slots() []Slot {
	seen := make(map[Slot]bool)
	var out []Slot
	for _, s := range d.Steps {
		for _, slot := range s.Requires {
			if !seen[slot] {
				seen[slot] = true
				out = append(out, slot)
			}
		}
	}
	return out
}

// VerifyStep returns the ID of the verification step, if any.
func (d Definition) VerifyStep() (Step, bool) {
	for _, s := range d.Steps {
		if s.Verify {
			return s.ID, true
		}
	}
	return "", false
}

// Validate checks the structural rules every definition must satisfy.
func (d Definition) Validate() error {
	if d.Name == "" {
		return invalidf("name is required")
	}
	if len(d.Steps) < 2 {
		return invalidf("%s: at least two steps are required, got %d", d.Name, len(d.Steps))
	}

	ids := make(map[Step]bool, len(d.Steps))
	verifyAt := -1
	for i, s := range d.Steps {
		if s.ID == "" {
			return invalidf("%s: step %d has no id", d.Name, i)
		}
		if ids[s.ID] {
			return invalidf("%s: duplicate step id %q", d.Name, s.ID)
		}
		ids[s.ID] = true

		local := make(map[Slot]bool, len(s.Requires))
		for _, slot := range s.Requires {
			if slot == "" {
				return invalidf("%s: step %q requires an unnamed slot", d.Name, s.ID)
			}
			if local[slot] {
				return invalidf("%s: step %q requires slot %q twice", d.Name, s.ID, slot)
			}
			local[slot] = true
		}

		if len(s.Choices) > 0 && len(s.Requires) != 1 {
			return invalidf("%s: choice step %q must require exactly one slot", d.Name, s.ID)
		}

		if s.Verify {
			if verifyAt >= 0 {
				return invalidf("%s: more than one verification step", d.Name)
			}
			verifyAt = i
		}
	}

	if verifyAt == 0 {
		return invalidf("%s: verification step cannot be the first step", d.Name)
	}
	if verifyAt == len(d.Steps)-1 {
		return invalidf("%s: verification step cannot be the final step", d.Name)
	}
	return nil
}

// ParseDefinition decodes and validates a YAML flow definition.
// Unknown fields are rejected so typos do not silently drop a requirement.
func ParseDefinition(data []byte) (Definition, error) {
	var def Definition
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return Definition{}, fmt.Errorf("decoding flow definition: %w", err)
	}
	if err := def.Validate(); err != nil {
		return Definition{}, err
	}
	return def, nil
}

// LoadDefinition reads a YAML flow definition from disk.
func LoadDefinition(path string) (Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("reading flow file: %w", err)
	}
	def, err := ParseDefinition(data)
	if err != nil {
		return Definition{}, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// MarshalDefinition encodes a definition as YAML.
func MarshalDefinition(def Definition) ([]byte, error) {
	data, err := yaml.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("marshaling flow definition: %w", err)
	}
	return data, nil
}
