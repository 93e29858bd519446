package tosca

import (
	"tosca-resolver/document"
	"tosca-resolver/internal/common"
)

// TypeKind distinguishes the type definition namespaces of a template.
type TypeKind int

const (
	KindNodeType TypeKind = iota
	KindCapabilityType
	KindRelationshipType
	KindDataType
	KindArtifactType
)

// String returns a human-readable kind name.
func (k TypeKind) String() string {
	switch k {
	case KindNodeType:
		return "node type"
	case KindCapabilityType:
		return "capability type"
	case KindRelationshipType:
		return "relationship type"
	case KindDataType:
		return "data type"
	case KindArtifactType:
		return "artifact type"
	default:
		return common.UnknownStr
	}
}

// TypeDefinition is one entry of a type section: a node, capability,
// relationship, data, or artifact type, optionally derived from a
// parent. Definitions are immutable once a pass has built them.
type TypeDefinition struct {
	// Name is the qualified type name, e.g. "example.QueuingSubsystem".
	Name string
	// Kind tells which section the definition came from.
	Kind TypeKind
	// DerivedFrom names the parent type; empty for a hierarchy root.
	DerivedFrom string
	// Version is the optional declared type version (semver-validated).
	Version string
	// Description is free-form documentation text.
	Description string
	// Properties maps property name to its schema.
	Properties map[string]PropertySchema
	// Attributes maps attribute name to its schema.
	Attributes map[string]PropertySchema
	// Capabilities maps capability name to its definition (node types only).
	Capabilities map[string]CapabilityDefinition
	// Requirements is the ordered requirement list (node types only).
	// Order matters: inherited requirements are concatenated
	// ancestor-first during resolution.
	Requirements []RequirementDefinition
}

// PropertySchema declares the shape of one property or attribute.
type PropertySchema struct {
	// Type is a primitive name (string, integer, float, boolean), a
	// data type reference, or "list"/"map" with EntrySchema set.
	Type string
	// Description is free-form documentation text.
	Description string
	// Required marks the property as mandatory; nil means the TOSCA
	// default of true.
	Required *bool
	// Default is the declared default value, if any.
	Default *document.Value
	// Constraints are evaluated against assigned values in order.
	Constraints []Constraint
	// EntrySchema is the element type for list and map properties.
	EntrySchema string
}

// IsRequired reports whether the property is mandatory.
func (p PropertySchema) IsRequired() bool {
	return p.Required == nil || *p.Required
}

// Constraint is a single predicate descriptor from a property schema.
type Constraint struct {
	// Operator is the constraint name (equal, valid_values, in_range,
	// greater_than, greater_or_equal, less_than, less_or_equal,
	// length, min_length, max_length, pattern).
	Operator string
	// Argument is the operator operand: a scalar for comparison
	// operators, a list for valid_values and in_range.
	Argument document.Value
}

// Occurrences bounds how many times a requirement must and may be
// fulfilled. The TOSCA default is exactly once.
type Occurrences struct {
	Min       int64
	Max       int64
	Unbounded bool
}

// DefaultOccurrences is the implicit [1, 1] bound.
func DefaultOccurrences() Occurrences {
	return Occurrences{Min: 1, Max: 1}
}

// RequirementDefinition is one entry of a node type's requirement list.
type RequirementDefinition struct {
	// Name of the requirement, e.g. "host" or "database".
	Name string
	// Node is the target node type reference; empty means any node
	// derived from tosca.nodes.Root.
	Node string
	// Capability is the target capability type reference; empty means
	// any capability derived from tosca.capabilities.Root.
	Capability string
	// Relationship names the relationship type for the resulting edge.
	Relationship string
	// Occurrences bounds fulfillment; defaults to [1, 1].
	Occurrences Occurrences
}

// CapabilityDefinition is one named capability a node type exposes.
type CapabilityDefinition struct {
	Name string
	// Type is the capability type reference.
	Type string
	// Properties are schemas declared on the definition itself, merged
	// over the capability type's own properties at resolution time.
	Properties map[string]PropertySchema
}

// RequirementAssignment is one entry of a node template's requirement
// list: either an explicit target node template name or a search
// specification refining the inherited definition.
type RequirementAssignment struct {
	// Name matches a requirement declared by the node's type.
	Name string
	// Node is an explicit target node template name, or (when it names
	// a known type) a node type filter.
	Node string
	// Capability optionally narrows the target capability type.
	Capability string
	// Relationship optionally overrides the relationship type.
	Relationship string
}

// NodeTemplateSpec is the raw, unresolved form of one node template.
type NodeTemplateSpec struct {
	Name        string
	Type        string
	Description string
	// Properties and Attributes are raw value assignments, validated
	// against the merged schema during the graph build.
	Properties map[string]document.Value
	Attributes map[string]document.Value
	// Capabilities maps capability name to its property assignments.
	Capabilities map[string]map[string]document.Value
	// Requirements are the template's requirement assignments in
	// declaration order.
	Requirements []RequirementAssignment
}

// TopologyTemplate is the topology_template section.
type TopologyTemplate struct {
	Description string
	// Inputs are the declared template parameters.
	Inputs map[string]PropertySchema
	// NodeTemplates are sorted by name for deterministic processing.
	NodeTemplates []NodeTemplateSpec
}

// ServiceTemplate is a parsed service template document: its metadata,
// every custom type definition, and the topology.
type ServiceTemplate struct {
	DefinitionsVersion string
	Description        string
	TemplateName       string
	TemplateAuthor     string
	TemplateVersion    string
	// Types holds all custom definitions from every type section, in
	// deterministic (section, then name) order.
	Types []*TypeDefinition
	// Topology is nil when the document has no topology_template.
	Topology *TopologyTemplate
}
