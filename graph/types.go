package graph

import (
	"tosca-resolver/document"
	"tosca-resolver/hierarchy"
)

// Node is one resolved node template of the topology. Nodes reference
// their requirement targets by name through Edges, never by pointer,
// so mutually dependent templates cannot form ownership cycles.
type Node struct {
	// Name of the node template.
	Name string
	// Type is the merged view of the template's declared type.
	Type *hierarchy.ResolvedType
	// Properties is the validated value map with defaults applied.
	Properties map[string]document.Value
	// Attributes is the raw attribute map (runtime-populated values,
	// shape-checked only).
	Attributes map[string]document.Value
}

// Edge is one bound requirement: a requirement of Source satisfied by
// a capability of Target over a relationship type.
type Edge struct {
	// Source and Target are node template names.
	Source string
	Target string
	// Requirement is the requirement name on the source's type.
	Requirement string
	// CapabilityName and CapabilityType identify the satisfying
	// capability on the target.
	CapabilityName string
	CapabilityType string
	// Relationship is the relationship type of the edge.
	Relationship string
}

// Topology is the validated instance graph of one pass. It is built
// once and immutable afterwards; structural changes require a full
// rebuild.
type Topology struct {
	// Nodes maps node template name to its resolved instance.
	Nodes map[string]*Node
	// Edges holds every bound requirement in deterministic order:
	// sources ascending, requirements in merged declaration order.
	Edges []Edge
}

// Node returns the named node, if present.
func (t *Topology) Node(name string) (*Node, bool) {
	n, ok := t.Nodes[name]
	return n, ok
}

// EdgesFrom returns the bound requirement edges of one source node, in
// order.
func (t *Topology) EdgesFrom(source string) []Edge {
	var out []Edge

	for _, e := range t.Edges {
		if e.Source == source {
			out = append(out, e)
		}
	}

	return out
}
