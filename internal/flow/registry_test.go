package flow

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry_Names(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{"standard", "id-type", "document-only", "two-sided", "single-page"}, r.Names())
}

func TestRegistry_LookupBySlug(t *testing.T) {
	r := DefaultRegistry()

	def, err := r.Lookup("Two Sided")
	require.NoError(t, err)
	assert.Equal(t, "two-sided", def.Name)

	_, err = r.Lookup("biometric")
	require.ErrorIs(t, err, ErrUnknownFlow)
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	r := DefaultRegistry()
	def := Presets()[0]
	def.Name = "Standard"

	err := r.Register(def)
	require.ErrorIs(t, err, ErrInvalidDefinition)
	assert.Contains(t, err.Error(), "registered twice")
}

func TestRegistry_RegisterInvalid(t *testing.T) {
	_, err := NewRegistry(Definition{Name: "broken"})
	require.ErrorIs(t, err, ErrInvalidDefinition)
}

func TestRegistry_Resolve(t *testing.T) {
	r := DefaultRegistry()

	def, err := r.Resolve("", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultFlow, def.Name)

	def, err = r.Resolve("document-only", "")
	require.NoError(t, err)
	assert.Equal(t, "document-only", def.Name)

	path := filepath.Join(t.TempDir(), "custom.yml")
	require.NoError(t, os.WriteFile(path, []byte(customYAML), 0644))
	def, err = r.Resolve("document-only", path)
	require.NoError(t, err)
	assert.Equal(t, "Bank Account", def.Name, "flow file wins over name")
}
