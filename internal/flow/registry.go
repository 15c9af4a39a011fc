package flow

import (
	"fmt"

	"github.com/gosimple/slug"
)

// Registry indexes definitions by the slug of their name.
type Registry struct {
	defs  map[string]Definition
	order []string
}

// NewRegistry validates and registers defs.
func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{defs: make(map[string]Definition)}
	for _, def := range defs {
		if err := r.Register(def); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// DefaultRegistry returns a registry holding the built-in variants.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(Presets()...)
	if err != nil {
		panic(fmt.Sprintf("built-in flows are invalid: %v", err))
	}
	return r
}

// Register adds def under slug(def.Name).
func (r *Registry) Register(def Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	key := slug.Make(def.Name)
	if _, exists := r.defs[key]; exists {
		return fmt.Errorf("%w: flow %q registered twice", ErrInvalidDefinition, key)
	}
	r.defs[key] = def
	r.order = append(r.order, key)
	return nil
}

// Lookup finds a definition by name. Names are compared by slug, so
// "Two Sided" and "two-sided" resolve to the same flow.
func (r *Registry) Lookup(name string) (Definition, error) {
	def, ok := r.defs[slug.Make(name)]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %s", ErrUnknownFlow, name)
	}
	return def, nil
}

// Names returns the registered keys in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Resolve picks the definition for a session: a flow file wins over a name,
// and an empty name selects DefaultFlow.
func (r *Registry) Resolve(name, file string) (Definition, error) {
	if file != "" {
		return LoadDefinition(file)
	}
	if name == "" {
		name = DefaultFlow
	}
	return r.Lookup(name)
}
