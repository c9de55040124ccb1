package definition

import (
	"fmt"

	"github.com/nerrad567/instrument-sim/internal/simulation"
)

// Set holds the compiled bindings of a load: resource identifiers
// mapped to the device definitions they simulate. A Set is immutable
// once returned by a Loader; devices spawned from it carry their own
// mutable state.
type Set struct {
	bindings map[string]*simulation.Definition
	order    []string
}

func newSet() *Set {
	return &Set{bindings: make(map[string]*simulation.Definition)}
}

func (s *Set) add(id string, def *simulation.Definition) error {
	if _, exists := s.bindings[id]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateResource, id)
	}
	s.bindings[id] = def
	s.order = append(s.order, id)
	return nil
}

// Resources returns the bound resource identifiers in load order.
func (s *Set) Resources() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Definition returns the compiled definition bound to a resource
// identifier.
func (s *Set) Definition(id string) (*simulation.Definition, error) {
	def, ok := s.bindings[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownResource, id)
	}
	return def, nil
}

// NewDevice spawns a fresh device instance for a bound resource. Each
// call returns an independent device with its state reset to the
// definition defaults.
func (s *Set) NewDevice(id string) (*simulation.Device, error) {
	def, err := s.Definition(id)
	if err != nil {
		return nil, err
	}
	return def.NewDevice(), nil
}
