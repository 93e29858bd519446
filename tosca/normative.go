package tosca

import "tosca-resolver/document"

// Names of the implicit hierarchy roots. A type with no derived_from in
// a given namespace is treated as deriving from the matching root; open
// requirement targets default to them as well.
const (
	RootNodeType         = "tosca.nodes.Root"
	RootCapabilityType   = "tosca.capabilities.Root"
	RootRelationshipType = "tosca.relationships.Root"
	RootDataType         = "tosca.datatypes.Root"
)

func optional(t string) PropertySchema {
	req := false
	return PropertySchema{Type: t, Required: &req}
}

func optionalDefault(t string, def document.Value) PropertySchema {
	req := false
	return PropertySchema{Type: t, Required: &req, Default: &def}
}

// NormativeTypes returns the built-in normative type catalog of the
// simple profile. The slice and its definitions must be treated as
// immutable; they back the shared base registry of every pass.
func NormativeTypes() []*TypeDefinition {
	return []*TypeDefinition{
		// Node types.
		{
			Name: RootNodeType,
			Kind: KindNodeType,
			Attributes: map[string]PropertySchema{
				"tosca_id":   optional("string"),
				"tosca_name": optional("string"),
			},
			Capabilities: map[string]CapabilityDefinition{
				"feature": {Name: "feature", Type: "tosca.capabilities.Node"},
			},
			Requirements: []RequirementDefinition{
				{
					Name:         "dependency",
					Node:         RootNodeType,
					Capability:   "tosca.capabilities.Node",
					Relationship: "tosca.relationships.DependsOn",
					Occurrences:  Occurrences{Min: 0, Unbounded: true},
				},
			},
		},
		{
			Name:        "tosca.nodes.Compute",
			Kind:        KindNodeType,
			DerivedFrom: RootNodeType,
			Attributes: map[string]PropertySchema{
				"ip_address": optional("string"),
			},
			Capabilities: map[string]CapabilityDefinition{
				"host":     {Name: "host", Type: "tosca.capabilities.Container"},
				"os":       {Name: "os", Type: "tosca.capabilities.OperatingSystem"},
				"scalable": {Name: "scalable", Type: "tosca.capabilities.Scalable"},
			},
		},
		{
			Name:        "tosca.nodes.SoftwareComponent",
			Kind:        KindNodeType,
			DerivedFrom: RootNodeType,
			Properties: map[string]PropertySchema{
				"component_version": optional("string"),
			},
			Requirements: []RequirementDefinition{
				{
					Name:         "host",
					Node:         "tosca.nodes.Compute",
					Capability:   "tosca.capabilities.Container",
					Relationship: "tosca.relationships.HostedOn",
					Occurrences:  DefaultOccurrences(),
				},
			},
		},
		{
			Name:        "tosca.nodes.DBMS",
			Kind:        KindNodeType,
			DerivedFrom: "tosca.nodes.SoftwareComponent",
			Properties: map[string]PropertySchema{
				"root_password": optional("string"),
				"port":          optional("integer"),
			},
			Capabilities: map[string]CapabilityDefinition{
				"host": {Name: "host", Type: "tosca.capabilities.Container"},
			},
		},
		{
			Name:        "tosca.nodes.Database",
			Kind:        KindNodeType,
			DerivedFrom: RootNodeType,
			Properties: map[string]PropertySchema{
				"name":     optional("string"),
				"port":     optional("integer"),
				"user":     optional("string"),
				"password": optional("string"),
			},
			Capabilities: map[string]CapabilityDefinition{
				"database_endpoint": {Name: "database_endpoint", Type: "tosca.capabilities.Endpoint.Database"},
			},
			Requirements: []RequirementDefinition{
				{
					Name:         "host",
					Node:         "tosca.nodes.DBMS",
					Capability:   "tosca.capabilities.Container",
					Relationship: "tosca.relationships.HostedOn",
					Occurrences:  DefaultOccurrences(),
				},
			},
		},
		{
			Name:        "tosca.nodes.WebServer",
			Kind:        KindNodeType,
			DerivedFrom: "tosca.nodes.SoftwareComponent",
			Capabilities: map[string]CapabilityDefinition{
				"data_endpoint":  {Name: "data_endpoint", Type: "tosca.capabilities.Endpoint"},
				"admin_endpoint": {Name: "admin_endpoint", Type: "tosca.capabilities.Endpoint.Admin"},
				"host":           {Name: "host", Type: "tosca.capabilities.Container"},
			},
		},
		{
			Name:        "tosca.nodes.WebApplication",
			Kind:        KindNodeType,
			DerivedFrom: RootNodeType,
			Properties: map[string]PropertySchema{
				"context_root": optional("string"),
			},
			Capabilities: map[string]CapabilityDefinition{
				"app_endpoint": {Name: "app_endpoint", Type: "tosca.capabilities.Endpoint"},
			},
			Requirements: []RequirementDefinition{
				{
					Name:         "host",
					Node:         "tosca.nodes.WebServer",
					Capability:   "tosca.capabilities.Container",
					Relationship: "tosca.relationships.HostedOn",
					Occurrences:  DefaultOccurrences(),
				},
			},
		},

		// Capability types.
		{Name: RootCapabilityType, Kind: KindCapabilityType},
		{Name: "tosca.capabilities.Node", Kind: KindCapabilityType, DerivedFrom: RootCapabilityType},
		{
			Name:        "tosca.capabilities.Container",
			Kind:        KindCapabilityType,
			DerivedFrom: RootCapabilityType,
			Properties: map[string]PropertySchema{
				"num_cpus": {
					Type:     "integer",
					Required: boolPtr(false),
					Constraints: []Constraint{
						{Operator: "greater_or_equal", Argument: document.IntValue(1)},
					},
				},
				"disk_size": optional("integer"),
				"mem_size":  optional("integer"),
			},
		},
		{
			Name:        "tosca.capabilities.Endpoint",
			Kind:        KindCapabilityType,
			DerivedFrom: RootCapabilityType,
			Properties: map[string]PropertySchema{
				"protocol": optionalDefault("string", document.StringValue("tcp")),
				"port": {
					Type:     "integer",
					Required: boolPtr(false),
					Constraints: []Constraint{
						{Operator: "in_range", Argument: document.ListValue(
							document.IntValue(1), document.IntValue(65535),
						)},
					},
				},
				"secure": optionalDefault("boolean", document.BoolValue(false)),
			},
		},
		{
			Name:        "tosca.capabilities.Endpoint.Admin",
			Kind:        KindCapabilityType,
			DerivedFrom: "tosca.capabilities.Endpoint",
			Properties: map[string]PropertySchema{
				"secure": optionalDefault("boolean", document.BoolValue(true)),
			},
		},
		{
			Name:        "tosca.capabilities.Endpoint.Database",
			Kind:        KindCapabilityType,
			DerivedFrom: "tosca.capabilities.Endpoint",
		},
		{
			Name:        "tosca.capabilities.Scalable",
			Kind:        KindCapabilityType,
			DerivedFrom: RootCapabilityType,
			Properties: map[string]PropertySchema{
				"min_instances":     optionalDefault("integer", document.IntValue(1)),
				"max_instances":     optionalDefault("integer", document.IntValue(1)),
				"default_instances": optional("integer"),
			},
		},
		{
			Name:        "tosca.capabilities.OperatingSystem",
			Kind:        KindCapabilityType,
			DerivedFrom: RootCapabilityType,
			Properties: map[string]PropertySchema{
				"architecture": optional("string"),
				"type":         optional("string"),
				"distribution": optional("string"),
				"version":      optional("string"),
			},
		},

		// Relationship types.
		{Name: RootRelationshipType, Kind: KindRelationshipType},
		{Name: "tosca.relationships.DependsOn", Kind: KindRelationshipType, DerivedFrom: RootRelationshipType},
		{Name: "tosca.relationships.HostedOn", Kind: KindRelationshipType, DerivedFrom: RootRelationshipType},
		{
			Name:        "tosca.relationships.ConnectsTo",
			Kind:        KindRelationshipType,
			DerivedFrom: RootRelationshipType,
			Properties: map[string]PropertySchema{
				"credential": optional("tosca.datatypes.Credential"),
			},
		},
		{
			Name:        "tosca.relationships.AttachesTo",
			Kind:        KindRelationshipType,
			DerivedFrom: RootRelationshipType,
			Properties: map[string]PropertySchema{
				"location": {Type: "string"},
				"device":   optional("string"),
			},
		},

		// Data types.
		{Name: RootDataType, Kind: KindDataType},
		{
			Name:        "tosca.datatypes.Credential",
			Kind:        KindDataType,
			DerivedFrom: RootDataType,
			Properties: map[string]PropertySchema{
				"protocol":   optional("string"),
				"token_type": optionalDefault("string", document.StringValue("password")),
				"token":      {Type: "string"},
				"keys":       optionalEntry("map", "string"),
				"user":       optional("string"),
			},
		},
	}
}

func boolPtr(b bool) *bool { return &b }

func optionalEntry(t, entry string) PropertySchema {
	ps := optional(t)
	ps.EntrySchema = entry

	return ps
}
