package flow

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresets_Valid(t *testing.T) {
	for _, def := range Presets() {
		t.Run(def.Name, func(t *testing.T) {
			require.NoError(t, def.Validate())
			verify, ok := def.VerifyStep()
			require.True(t, ok)
			assert.Equal(t, StepVerifying, verify)
			assert.Equal(t, StepWelcome, def.Steps[0].ID)
			assert.Equal(t, StepDone, def.Steps[len(def.Steps)-1].ID)
		})
	}
}

func TestDefinition_Validate(t *testing.T) {
	tests := []struct {
		name    string
		def     Definition
		wantErr string
	}{
		{
			name:    "missing name",
			def:     Definition{Steps: []StepDef{{ID: "a"}, {ID: "b"}}},
			wantErr: "name is required",
		},
		{
			name:    "single step",
			def:     Definition{Name: "x", Steps: []StepDef{{ID: "a"}}},
			wantErr: "at least two steps",
		},
		{
			name:    "duplicate step",
			def:     Definition{Name: "x", Steps: []StepDef{{ID: "a"}, {ID: "a"}}},
			wantErr: `duplicate step id "a"`,
		},
		{
			name:    "empty step id",
			def:     Definition{Name: "x", Steps: []StepDef{{ID: "a"}, {}}},
			wantErr: "step 1 has no id",
		},
		{
			name:    "slot required twice",
			def:     Definition{Name: "x", Steps: []StepDef{{ID: "a", Requires: []Slot{"s", "s"}}, {ID: "b"}}},
			wantErr: `requires slot "s" twice`,
		},
		{
			name:    "unnamed slot",
			def:     Definition{Name: "x", Steps: []StepDef{{ID: "a", Requires: []Slot{""}}, {ID: "b"}}},
			wantErr: "unnamed slot",
		},
		{
			name:    "choices without slot",
			def:     Definition{Name: "x", Steps: []StepDef{{ID: "a", Choices: []string{"one"}}, {ID: "b"}}},
			wantErr: "must require exactly one slot",
		},
		{
			name:    "verify first",
			def:     Definition{Name: "x", Steps: []StepDef{{ID: "v", Verify: true}, {ID: "b"}}},
			wantErr: "cannot be the first step",
		},
		{
			name:    "verify last",
			def:     Definition{Name: "x", Steps: []StepDef{{ID: "a"}, {ID: "v", Verify: true}}},
			wantErr: "cannot be the final step",
		},
		{
			name:    "two verify steps",
			def:     Definition{Name: "x", Steps: []StepDef{{ID: "a"}, {ID: "v1", Verify: true}, {ID: "v2", Verify: true}, {ID: "b"}}},
			wantErr: "more than one verification step",
		},
		{
			name: "no verify step is fine",
			def:  Definition{Name: "x", Steps: []StepDef{{ID: "a", Requires: []Slot{"s"}}, {ID: "b"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.def.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidDefinition)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDefinition_Slots(t *testing.T) {
	def := Definition{
		Name: "x",
		Steps: []StepDef{
			{ID: "a", Requires: []Slot{"front", "back"}},
			{ID: "b", Requires: []Slot{"back", "selfie"}},
			{ID: "c"},
		},
	}
	assert.Equal(t, []Slot{"front", "back", "selfie"}, def.Slots())
}

func TestNew_RejectsInvalid(t *testing.T) {
	_, err := New(Definition{Name: "x"})
	require.ErrorIs(t, err, ErrInvalidDefinition)
}

const customYAML = `
name: Bank Account
description: Open an account
steps:
  - id: intro
    title: Hello
  - id: proof
    title: Proof of address
    requires: [utility_bill]
  - id: check
    verify: true
  - id: finished
`

func TestParseDefinition(t *testing.T) {
	def, err := ParseDefinition([]byte(customYAML))
	require.NoError(t, err)

	assert.Equal(t, "Bank Account", def.Name)
	require.Len(t, def.Steps, 4)
	assert.Equal(t, []Slot{"utility_bill"}, def.Steps[1].Requires)
	assert.True(t, def.Steps[2].Verify)

	c, err := New(def)
	require.NoError(t, err)
	_, _ = c.Advance()
	_, err = c.Advance()
	require.ErrorIs(t, err, ErrIncompleteStep)
}

func TestParseDefinition_UnknownField(t *testing.T) {
	_, err := ParseDefinition([]byte("name: x\nsteps:\n  - id: a\n    require: [s]\n  - id: b\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding flow definition")
}

func TestParseDefinition_Invalid(t *testing.T) {
	_, err := ParseDefinition([]byte("name: x\nsteps:\n  - id: a\n"))
	require.ErrorIs(t, err, ErrInvalidDefinition)
}

func TestLoadDefinition(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.yml")
	require.NoError(t, os.WriteFile(path, []byte(customYAML), 0644))

	def, err := LoadDefinition(path)
	require.NoError(t, err)
	assert.Equal(t, "Bank Account", def.Name)

	_, err = LoadDefinition(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading flow file")
}

func TestMarshalDefinition(t *testing.T) {
	def, err := DefaultRegistry().Lookup("id-type")
	require.NoError(t, err)

	data, err := MarshalDefinition(def)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "name: id-type")
	assert.Contains(t, out, "verify: true")
	assert.Contains(t, out, "- Passport")
	assert.NotContains(t, out, "choices: []", "empty fields are omitted")
}
