// Package hierarchy linearizes derived_from chains and produces merged
// type views.
//
// Merging rules:
//   - properties/attributes: keyed override, descendant entry replaces
//     the ancestor's entirely (no field-level merge within one schema)
//   - capabilities: keyed union, descendant overrides same-named entries
//   - requirements: concatenated ancestor-first; a descendant
//     requirement with an identical name replaces the ancestor's at its
//     original position
package hierarchy

import (
	"fmt"
	"strings"

	"tosca-resolver/registry"
	"tosca-resolver/tosca"
)

// ResolvedType is the merged view of a type and all its ancestors.
// Instances are built once per pass and must not be mutated.
type ResolvedType struct {
	// Name is the qualified type name.
	Name string
	// Definition is the type's own (unmerged) registry entry.
	Definition *tosca.TypeDefinition
	// Ancestors is the linearized chain, the type itself first.
	Ancestors []string
	// Properties and Attributes are the merged schema maps.
	Properties map[string]tosca.PropertySchema
	Attributes map[string]tosca.PropertySchema
	// Capabilities is the merged capability map (node types).
	Capabilities map[string]tosca.CapabilityDefinition
	// Requirements is the merged, ordered requirement list (node types).
	Requirements []tosca.RequirementDefinition
}

// Resolver computes merged type views over one pass's registry,
// memoizing results so repeated resolution of a type is free and
// structurally identical.
type Resolver struct {
	registry *registry.Registry
	resolved map[string]*ResolvedType
}

// NewResolver creates a Resolver over the given registry.
func NewResolver(reg *registry.Registry) *Resolver {
	return &Resolver{
		registry: reg,
		resolved: make(map[string]*ResolvedType),
	}
}

// AncestorChain walks derived_from references from name up to its root,
// returning the definitions in descendant-to-ancestor order. It fails
// with ErrInheritanceCycle when a name reappears and with the
// registry's ErrUnknownType when a referenced parent is absent.
func (r *Resolver) AncestorChain(name string) ([]*tosca.TypeDefinition, error) {
	var chain []*tosca.TypeDefinition

	visited := map[string]struct{}{}

	for current := name; current != ""; {
		if _, seen := visited[current]; seen {
			return nil, fmt.Errorf("%w: %s", ErrInheritanceCycle, chainText(chain, current))
		}

		visited[current] = struct{}{}

		def, err := r.registry.Lookup(current)
		if err != nil {
			if len(chain) > 0 {
				return nil, fmt.Errorf("type %q derives from unknown type %q: %w",
					chain[len(chain)-1].Name, current, err)
			}

			return nil, err
		}

		chain = append(chain, def)
		current = def.DerivedFrom
	}

	return chain, nil
}

func chainText(chain []*tosca.TypeDefinition, repeated string) string {
	names := make([]string, 0, len(chain)+1)
	for _, def := range chain {
		names = append(names, def.Name)
	}

	return strings.Join(append(names, repeated), " -> ")
}

// Resolve produces the merged view of a type. Results are memoized per
// pass, so resolving the same name twice returns the same view.
func (r *Resolver) Resolve(name string) (*ResolvedType, error) {
	if rt, ok := r.resolved[name]; ok {
		return rt, nil
	}

	chain, err := r.AncestorChain(name)
	if err != nil {
		return nil, err
	}

	rt := &ResolvedType{
		Name:         name,
		Definition:   chain[0],
		Properties:   map[string]tosca.PropertySchema{},
		Attributes:   map[string]tosca.PropertySchema{},
		Capabilities: map[string]tosca.CapabilityDefinition{},
	}

	for _, def := range chain {
		rt.Ancestors = append(rt.Ancestors, def.Name)
	}

	// Apply ancestor schemas first so descendants override them.
	for i := len(chain) - 1; i >= 0; i-- {
		def := chain[i]

		for propName, ps := range def.Properties {
			rt.Properties[propName] = ps
		}

		for attrName, ps := range def.Attributes {
			rt.Attributes[attrName] = ps
		}

		for capName, capDef := range def.Capabilities {
			rt.Capabilities[capName] = capDef
		}

		rt.Requirements = mergeRequirements(rt.Requirements, def.Requirements)
	}

	r.resolved[name] = rt

	return rt, nil
}

// mergeRequirements appends lower-level requirements to the inherited
// list, except that an identical name replaces the inherited entry in
// place instead of appending a second one.
func mergeRequirements(inherited, own []tosca.RequirementDefinition) []tosca.RequirementDefinition {
	merged := inherited

	for _, req := range own {
		replaced := false

		for i := range merged {
			if merged[i].Name == req.Name {
				merged[i] = req
				replaced = true

				break
			}
		}

		if !replaced {
			merged = append(merged, req)
		}
	}

	return merged
}

// CapabilitySchema returns the property schema map of one capability
// definition: the capability type's merged properties overlaid with the
// properties declared on the definition itself.
func (r *Resolver) CapabilitySchema(capDef tosca.CapabilityDefinition) (map[string]tosca.PropertySchema, error) {
	capType, err := r.Resolve(capDef.Type)
	if err != nil {
		return nil, err
	}

	schemas := make(map[string]tosca.PropertySchema, len(capType.Properties)+len(capDef.Properties))
	for name, ps := range capType.Properties {
		schemas[name] = ps
	}

	for name, ps := range capDef.Properties {
		schemas[name] = ps
	}

	return schemas, nil
}
