package tosca

// Top-level service template section names of the TOSCA simple-profile
// grammar.
const (
	SectionDefinitionsVersion    = "tosca_definitions_version"
	SectionDefaultNamespace      = "tosca_default_namespace"
	SectionTemplateName          = "template_name"
	SectionTemplateAuthor        = "template_author"
	SectionTemplateVersion       = "template_version"
	SectionDescription           = "description"
	SectionImports               = "imports"
	SectionDSLDefinitions        = "dsl_definitions"
	SectionNodeTypes             = "node_types"
	SectionCapabilityTypes       = "capability_types"
	SectionRelationshipTypes     = "relationship_types"
	SectionRelationshipTemplates = "relationship_templates"
	SectionArtifactTypes         = "artifact_types"
	SectionDataTypes             = "data_types"
	SectionTopologyTemplate      = "topology_template"

	// SectionDatatypeDefinitions is the simple-profile 1.0 spelling of
	// the data type section; later profile versions use "data_types".
	// Both are accepted.
	SectionDatatypeDefinitions = "datatype_definitions"
)

// topLevelSections lists every section a template may carry; anything
// else is an unknown field.
var topLevelSections = map[string]struct{}{
	SectionDefinitionsVersion:    {},
	SectionDefaultNamespace:      {},
	SectionTemplateName:          {},
	SectionTemplateAuthor:        {},
	SectionTemplateVersion:       {},
	SectionDescription:           {},
	SectionImports:               {},
	SectionDSLDefinitions:        {},
	SectionNodeTypes:             {},
	SectionCapabilityTypes:       {},
	SectionRelationshipTypes:     {},
	SectionRelationshipTemplates: {},
	SectionArtifactTypes:         {},
	SectionDataTypes:             {},
	SectionDatatypeDefinitions:   {},
	SectionTopologyTemplate:      {},
}

// validTemplateVersions whitelists the supported values of
// tosca_definitions_version.
var validTemplateVersions = []string{"tosca_simple_yaml_1_0"}

// Topology template section names.
const (
	SectionInputs        = "inputs"
	SectionNodeTemplates = "node_templates"
	SectionOutputs       = "outputs"
)
