// Package registry holds every type definition known to one
// parse/validate pass, keyed by qualified name.
//
// A Registry is an overlay of pass-owned custom types over a shared,
// immutable Base of built-in normative types. Passes never share a
// Registry, so no locking is needed; the Base is safe to share because
// it is never mutated after construction.
package registry

import (
	"fmt"
	"sync"

	"tosca-resolver/internal/common"
	"tosca-resolver/tosca"
)

// Base is an immutable catalog of type definitions shared across
// passes. Construct it once and pass it to New.
type Base struct {
	types map[string]*tosca.TypeDefinition
}

// NewBase builds a Base from a definition list. Duplicate names are an
// error: a base catalog is authored, not merged.
func NewBase(defs []*tosca.TypeDefinition) (*Base, error) {
	types := make(map[string]*tosca.TypeDefinition, len(defs))

	for _, def := range defs {
		if _, exists := types[def.Name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateType, def.Name)
		}

		types[def.Name] = def
	}

	return &Base{types: types}, nil
}

// builtin constructs the normative base exactly once for the process.
var builtin = sync.OnceValue(func() *Base {
	base, err := NewBase(tosca.NormativeTypes())
	if err != nil {
		// The normative catalog is code, not input; a duplicate there
		// is a programming error.
		panic(err)
	}

	return base
})

// Builtin returns the shared base of TOSCA normative types.
func Builtin() *Base {
	return builtin()
}

// Registry is one pass's type catalog: custom definitions layered over
// a Base. It owns every custom definition for the pass's lifetime.
type Registry struct {
	base  *Base
	types map[string]*tosca.TypeDefinition
}

// New creates an empty Registry over the given base. A nil base means
// no built-in types at all (useful in tests).
func New(base *Base) *Registry {
	return &Registry{
		base:  base,
		types: make(map[string]*tosca.TypeDefinition),
	}
}

// Register adds a custom type definition. Registering a name that
// already exists, in this pass or in the base, fails with
// ErrDuplicateType.
func (r *Registry) Register(def *tosca.TypeDefinition) error {
	if r.Has(def.Name) {
		return fmt.Errorf("%w: %q", ErrDuplicateType, def.Name)
	}

	r.types[def.Name] = def

	return nil
}

// Lookup returns the definition for a qualified name, or
// ErrUnknownType.
func (r *Registry) Lookup(name string) (*tosca.TypeDefinition, error) {
	if def, ok := r.types[name]; ok {
		return def, nil
	}

	if r.base != nil {
		if def, ok := r.base.types[name]; ok {
			return def, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownType, name)
}

// Has reports whether a qualified name is known.
func (r *Registry) Has(name string) bool {
	_, err := r.Lookup(name)
	return err == nil
}

// IsSubtypeOf reports whether candidate is ancestor or derives from it,
// directly or transitively. The relation is reflexive. An unknown
// candidate is an error; an unknown parent encountered mid-chain ends
// the walk (the hierarchy resolver reports that case properly), and a
// revisited name ends it too, so the walk always terminates.
func (r *Registry) IsSubtypeOf(candidate, ancestor string) (bool, error) {
	if _, err := r.Lookup(candidate); err != nil {
		return false, err
	}

	visited := map[string]struct{}{}

	for name := candidate; name != ""; {
		if name == ancestor {
			return true, nil
		}

		if _, seen := visited[name]; seen {
			return false, nil
		}

		visited[name] = struct{}{}

		def, err := r.Lookup(name)
		if err != nil {
			return false, nil
		}

		name = def.DerivedFrom
	}

	return false, nil
}

// DescendantsOf returns the names of every known type that is a subtype
// of name (including name itself, when known), in ascending order.
func (r *Registry) DescendantsOf(name string) []string {
	var descendants []string

	for _, candidate := range r.Names() {
		ok, err := r.IsSubtypeOf(candidate, name)
		if err == nil && ok {
			descendants = append(descendants, candidate)
		}
	}

	return descendants
}

// Names returns every known qualified name, base included, in
// ascending order.
func (r *Registry) Names() []string {
	var all map[string]*tosca.TypeDefinition

	if r.base == nil {
		all = r.types
	} else {
		all = make(map[string]*tosca.TypeDefinition, len(r.types)+len(r.base.types))
		for name, def := range r.base.types {
			all[name] = def
		}

		for name, def := range r.types {
			all[name] = def
		}
	}

	return common.SortedKeys(all)
}
