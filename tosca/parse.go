package tosca

import (
	"fmt"
	"slices"

	"github.com/Masterminds/semver/v3"

	"tosca-resolver/diagnostic"
	"tosca-resolver/document"
	"tosca-resolver/internal/common"
)

// typeSections maps each type section name to the kind of definition it
// holds, in parse order.
var typeSections = []struct {
	section string
	kind    TypeKind
}{
	{SectionNodeTypes, KindNodeType},
	{SectionCapabilityTypes, KindCapabilityType},
	{SectionRelationshipTypes, KindRelationshipType},
	{SectionDataTypes, KindDataType},
	{SectionDatatypeDefinitions, KindDataType},
	{SectionArtifactTypes, KindArtifactType},
}

// knownConstraintOperators is the closed set of constraint clause names.
var knownConstraintOperators = map[string]struct{}{
	"equal":            {},
	"greater_than":     {},
	"greater_or_equal": {},
	"less_than":        {},
	"less_or_equal":    {},
	"in_range":         {},
	"valid_values":     {},
	"length":           {},
	"min_length":       {},
	"max_length":       {},
	"pattern":          {},
}

// ParseServiceTemplate builds the raw definition model from a loaded
// document. It never aborts: every problem it finds is collected, and
// the returned template carries whatever could be understood. The
// template is nil only when the document root is not a mapping.
func ParseServiceTemplate(doc document.Value) (*ServiceTemplate, *diagnostic.Diagnostics) {
	diags := &diagnostic.Diagnostics{}

	root, ok := doc.AsMap()
	if !ok {
		diags.AddError(diagnostic.CodeInvalidDefinition,
			"service template document must be a mapping", "", "")
		return nil, diags
	}

	st := &ServiceTemplate{}

	for _, key := range common.SortedKeys(root) {
		if _, known := topLevelSections[key]; !known {
			diags.AddError(diagnostic.CodeUnknownField,
				fmt.Sprintf("unknown top-level field %q", key), "", key)
		}
	}

	version, ok := root[SectionDefinitionsVersion]
	if !ok {
		diags.AddError(diagnostic.CodeMissingRequiredField,
			fmt.Sprintf("template is missing required field %q", SectionDefinitionsVersion),
			"", SectionDefinitionsVersion)
	} else if s, isStr := version.AsString(); !isStr || !slices.Contains(validTemplateVersions, s) {
		diags.AddError(diagnostic.CodeInvalidTemplateVersion,
			fmt.Sprintf("%q is not a supported template version", versionText(version)),
			"", SectionDefinitionsVersion)
	} else {
		st.DefinitionsVersion = s
	}

	st.Description = stringSection(root, SectionDescription)
	st.TemplateName = stringSection(root, SectionTemplateName)
	st.TemplateAuthor = stringSection(root, SectionTemplateAuthor)
	st.TemplateVersion = stringSection(root, SectionTemplateVersion)

	for _, ts := range typeSections {
		st.Types = append(st.Types, parseTypeSection(root, ts.section, ts.kind, diags)...)
	}

	if tt, ok := root[SectionTopologyTemplate]; ok {
		st.Topology = parseTopologyTemplate(tt, diags)
	}

	return st, diags
}

func versionText(v document.Value) string {
	if s, ok := v.AsString(); ok {
		return s
	}

	return v.Kind.ToscaName()
}

func stringSection(root map[string]document.Value, key string) string {
	if v, ok := root[key]; ok {
		if s, ok := v.AsString(); ok {
			return s
		}
	}

	return ""
}

func parseTypeSection(root map[string]document.Value, section string, kind TypeKind, diags *diagnostic.Diagnostics) []*TypeDefinition {
	raw, ok := root[section]
	if !ok {
		return nil
	}

	entries, ok := raw.AsMap()
	if !ok {
		diags.AddError(diagnostic.CodeInvalidDefinition,
			fmt.Sprintf("section %q must be a mapping", section), "", section)
		return nil
	}

	defs := make([]*TypeDefinition, 0, len(entries))
	for _, name := range common.SortedKeys(entries) {
		if def := parseTypeDefinition(name, kind, entries[name], diags); def != nil {
			defs = append(defs, def)
		}
	}

	return defs
}

func parseTypeDefinition(name string, kind TypeKind, raw document.Value, diags *diagnostic.Diagnostics) *TypeDefinition {
	body, ok := raw.AsMap()
	if !ok {
		diags.AddError(diagnostic.CodeInvalidDefinition,
			fmt.Sprintf("%s %q must be a mapping", kind, name), name, "")
		return nil
	}

	def := &TypeDefinition{Name: name, Kind: kind}

	for _, key := range common.SortedKeys(body) {
		v := body[key]

		switch key {
		case "derived_from":
			def.DerivedFrom, _ = v.AsString()
		case "description":
			def.Description, _ = v.AsString()
		case "version":
			def.Version = parseTypeVersion(name, v, diags)
		case "properties":
			def.Properties = parseSchemaMap(name, "properties", v, diags)
		case "attributes":
			def.Attributes = parseSchemaMap(name, "attributes", v, diags)
		case "capabilities":
			if kind == KindNodeType {
				def.Capabilities = parseCapabilityDefinitions(name, v, diags)
			} else {
				diags.AddError(diagnostic.CodeInvalidDefinition,
					fmt.Sprintf("%s %q cannot declare capabilities", kind, name), name, key)
			}
		case "requirements":
			if kind == KindNodeType {
				def.Requirements = parseRequirementDefinitions(name, v, diags)
			} else {
				diags.AddError(diagnostic.CodeInvalidDefinition,
					fmt.Sprintf("%s %q cannot declare requirements", kind, name), name, key)
			}
		case "valid_target_types", "interfaces", "artifacts", "mime_type", "file_ext":
			// Accepted but not modeled: these sections do not affect
			// resolution or requirement binding.
		default:
			diags.AddError(diagnostic.CodeUnknownField,
				fmt.Sprintf("unknown field %q in %s %q", key, kind, name), name, key)
		}
	}

	return def
}

func parseTypeVersion(typeName string, raw document.Value, diags *diagnostic.Diagnostics) string {
	s, ok := raw.AsString()
	if !ok {
		diags.AddError(diagnostic.CodeInvalidTypeVersion,
			"type version must be a string", typeName, "version")
		return ""
	}

	if _, err := semver.NewVersion(s); err != nil {
		diags.AddError(diagnostic.CodeInvalidTypeVersion,
			fmt.Sprintf("invalid type version %q: %v", s, err), typeName, "version")
		return ""
	}

	return s
}

func parseSchemaMap(subject, field string, raw document.Value, diags *diagnostic.Diagnostics) map[string]PropertySchema {
	entries, ok := raw.AsMap()
	if !ok {
		diags.AddError(diagnostic.CodeInvalidDefinition,
			fmt.Sprintf("%s must be a mapping", field), subject, field)
		return nil
	}

	schemas := make(map[string]PropertySchema, len(entries))
	for _, name := range common.SortedKeys(entries) {
		if ps, ok := parsePropertySchema(subject, name, entries[name], diags); ok {
			schemas[name] = ps
		}
	}

	return schemas
}

func parsePropertySchema(subject, propName string, raw document.Value, diags *diagnostic.Diagnostics) (PropertySchema, bool) {
	body, ok := raw.AsMap()
	if !ok {
		diags.AddError(diagnostic.CodeInvalidDefinition,
			fmt.Sprintf("property %q definition must be a mapping", propName), subject, propName)
		return PropertySchema{}, false
	}

	var ps PropertySchema

	for _, key := range common.SortedKeys(body) {
		v := body[key]

		switch key {
		case "type":
			ps.Type, _ = v.AsString()
		case "description":
			ps.Description, _ = v.AsString()
		case "required":
			if b, ok := v.AsBool(); ok {
				ps.Required = &b
			} else {
				diags.AddError(diagnostic.CodeInvalidDefinition,
					fmt.Sprintf("property %q: required must be a boolean", propName), subject, propName)
			}
		case "default":
			dv := v
			ps.Default = &dv
		case "constraints":
			ps.Constraints = parseConstraints(subject, propName, v, diags)
		case "entry_schema":
			ps.EntrySchema = parseEntrySchema(subject, propName, v, diags)
		case "status":
			// Accepted but not modeled.
		default:
			diags.AddError(diagnostic.CodeUnknownField,
				fmt.Sprintf("unknown field %q in property %q", key, propName), subject, propName)
		}
	}

	if ps.Type == "" {
		diags.AddError(diagnostic.CodeMissingRequiredField,
			fmt.Sprintf("property %q is missing required field \"type\"", propName), subject, propName)
		return PropertySchema{}, false
	}

	return ps, true
}

func parseEntrySchema(subject, propName string, raw document.Value, diags *diagnostic.Diagnostics) string {
	// Both the short form (entry_schema: string) and the full form
	// (entry_schema: {type: string}) appear in the wild.
	if s, ok := raw.AsString(); ok {
		return s
	}

	if t, ok := raw.Get("type"); ok {
		if s, ok := t.AsString(); ok {
			return s
		}
	}

	diags.AddError(diagnostic.CodeInvalidDefinition,
		fmt.Sprintf("property %q: entry_schema must be a type name", propName), subject, propName)

	return ""
}

func parseConstraints(subject, propName string, raw document.Value, diags *diagnostic.Diagnostics) []Constraint {
	items, ok := raw.AsList()
	if !ok {
		diags.AddError(diagnostic.CodeInvalidConstraint,
			fmt.Sprintf("property %q: constraints must be a list", propName), subject, propName)
		return nil
	}

	constraints := make([]Constraint, 0, len(items))

	for _, item := range items {
		clause, ok := item.AsMap()
		if !ok || len(clause) != 1 {
			diags.AddError(diagnostic.CodeInvalidConstraint,
				fmt.Sprintf("property %q: each constraint must be a single-entry mapping", propName),
				subject, propName)

			continue
		}

		for op, arg := range clause {
			if _, known := knownConstraintOperators[op]; !known {
				diags.AddError(diagnostic.CodeInvalidConstraint,
					fmt.Sprintf("property %q: unknown constraint operator %q", propName, op),
					subject, propName)

				continue
			}

			constraints = append(constraints, Constraint{Operator: op, Argument: arg})
		}
	}

	return constraints
}

func parseCapabilityDefinitions(typeName string, raw document.Value, diags *diagnostic.Diagnostics) map[string]CapabilityDefinition {
	entries, ok := raw.AsMap()
	if !ok {
		diags.AddError(diagnostic.CodeInvalidDefinition,
			"capabilities must be a mapping", typeName, "capabilities")
		return nil
	}

	caps := make(map[string]CapabilityDefinition, len(entries))

	for _, name := range common.SortedKeys(entries) {
		v := entries[name]

		// Short form: capability name mapped straight to a type name.
		if typeRef, ok := v.AsString(); ok {
			caps[name] = CapabilityDefinition{Name: name, Type: typeRef}
			continue
		}

		body, ok := v.AsMap()
		if !ok {
			diags.AddError(diagnostic.CodeInvalidDefinition,
				fmt.Sprintf("capability %q must be a type name or a mapping", name),
				typeName, name)

			continue
		}

		def := CapabilityDefinition{Name: name}

		if t, ok := body["type"]; ok {
			def.Type, _ = t.AsString()
		}

		if def.Type == "" {
			diags.AddError(diagnostic.CodeMissingRequiredField,
				fmt.Sprintf("capability %q is missing required field \"type\"", name),
				typeName, name)

			continue
		}

		if props, ok := body["properties"]; ok {
			def.Properties = parseSchemaMap(typeName, "capabilities."+name, props, diags)
		}

		caps[name] = def
	}

	return caps
}

func parseRequirementDefinitions(typeName string, raw document.Value, diags *diagnostic.Diagnostics) []RequirementDefinition {
	items, ok := raw.AsList()
	if !ok {
		diags.AddError(diagnostic.CodeInvalidDefinition,
			"requirements must be a list", typeName, "requirements")
		return nil
	}

	reqs := make([]RequirementDefinition, 0, len(items))

	for _, item := range items {
		entry, ok := item.AsMap()
		if !ok || len(entry) != 1 {
			diags.AddError(diagnostic.CodeInvalidDefinition,
				"each requirement must be a single-entry mapping", typeName, "requirements")

			continue
		}

		for name, body := range entry {
			req := RequirementDefinition{Name: name, Occurrences: DefaultOccurrences()}

			// Short form: requirement name mapped to a target node type.
			if nodeRef, ok := body.AsString(); ok {
				req.Node = nodeRef
				reqs = append(reqs, req)

				continue
			}

			fields, ok := body.AsMap()
			if !ok {
				diags.AddError(diagnostic.CodeInvalidDefinition,
					fmt.Sprintf("requirement %q must be a node type name or a mapping", name),
					typeName, name)

				continue
			}

			for _, key := range common.SortedKeys(fields) {
				v := fields[key]

				switch key {
				case "node":
					req.Node, _ = v.AsString()
				case "capability":
					req.Capability, _ = v.AsString()
				case "relationship":
					req.Relationship = parseRelationshipRef(v)
				case "occurrences":
					req.Occurrences = parseOccurrences(typeName, name, v, diags)
				default:
					diags.AddError(diagnostic.CodeUnknownField,
						fmt.Sprintf("unknown field %q in requirement %q", key, name),
						typeName, name)
				}
			}

			reqs = append(reqs, req)
		}
	}

	return reqs
}

func parseRelationshipRef(raw document.Value) string {
	if s, ok := raw.AsString(); ok {
		return s
	}

	// Full form: relationship: {type: X, ...}.
	if t, ok := raw.Get("type"); ok {
		s, _ := t.AsString()
		return s
	}

	return ""
}

func parseOccurrences(subject, reqName string, raw document.Value, diags *diagnostic.Diagnostics) Occurrences {
	items, ok := raw.AsList()
	if !ok || len(items) != 2 {
		diags.AddError(diagnostic.CodeInvalidDefinition,
			fmt.Sprintf("requirement %q: occurrences must be a [min, max] pair", reqName),
			subject, reqName)

		return DefaultOccurrences()
	}

	occ := DefaultOccurrences()

	if min, ok := items[0].AsInt(); ok && min >= 0 {
		occ.Min = min
	} else {
		diags.AddError(diagnostic.CodeInvalidDefinition,
			fmt.Sprintf("requirement %q: occurrences minimum must be a non-negative integer", reqName),
			subject, reqName)
	}

	if s, ok := items[1].AsString(); ok && s == "UNBOUNDED" {
		occ.Max = 0
		occ.Unbounded = true
	} else if max, ok := items[1].AsInt(); ok && max >= occ.Min {
		occ.Max = max
	} else {
		diags.AddError(diagnostic.CodeInvalidDefinition,
			fmt.Sprintf("requirement %q: occurrences maximum must be an integer >= minimum or UNBOUNDED", reqName),
			subject, reqName)
	}

	return occ
}

func parseTopologyTemplate(raw document.Value, diags *diagnostic.Diagnostics) *TopologyTemplate {
	body, ok := raw.AsMap()
	if !ok {
		diags.AddError(diagnostic.CodeInvalidDefinition,
			"topology_template must be a mapping", "", SectionTopologyTemplate)
		return nil
	}

	tt := &TopologyTemplate{}

	for _, key := range common.SortedKeys(body) {
		v := body[key]

		switch key {
		case SectionDescription:
			tt.Description, _ = v.AsString()
		case SectionInputs:
			tt.Inputs = parseSchemaMap(SectionTopologyTemplate, SectionInputs, v, diags)
		case SectionNodeTemplates:
			tt.NodeTemplates = parseNodeTemplates(v, diags)
		case SectionOutputs:
			// Accepted but not modeled: outputs reference runtime
			// attribute values the execution layer produces.
		default:
			diags.AddError(diagnostic.CodeUnknownField,
				fmt.Sprintf("unknown field %q in topology_template", key),
				SectionTopologyTemplate, key)
		}
	}

	return tt
}

func parseNodeTemplates(raw document.Value, diags *diagnostic.Diagnostics) []NodeTemplateSpec {
	entries, ok := raw.AsMap()
	if !ok {
		diags.AddError(diagnostic.CodeInvalidDefinition,
			"node_templates must be a mapping", SectionTopologyTemplate, SectionNodeTemplates)
		return nil
	}

	specs := make([]NodeTemplateSpec, 0, len(entries))
	for _, name := range common.SortedKeys(entries) {
		if spec, ok := parseNodeTemplateSpec(name, entries[name], diags); ok {
			specs = append(specs, spec)
		}
	}

	return specs
}

func parseNodeTemplateSpec(name string, raw document.Value, diags *diagnostic.Diagnostics) (NodeTemplateSpec, bool) {
	body, ok := raw.AsMap()
	if !ok {
		diags.AddError(diagnostic.CodeInvalidDefinition,
			fmt.Sprintf("node template %q must be a mapping", name), name, "")
		return NodeTemplateSpec{}, false
	}

	spec := NodeTemplateSpec{Name: name}

	for _, key := range common.SortedKeys(body) {
		v := body[key]

		switch key {
		case "type":
			spec.Type, _ = v.AsString()
		case "description":
			spec.Description, _ = v.AsString()
		case "properties":
			spec.Properties = parseValueMap(name, "properties", v, diags)
		case "attributes":
			spec.Attributes = parseValueMap(name, "attributes", v, diags)
		case "capabilities":
			spec.Capabilities = parseCapabilityAssignments(name, v, diags)
		case "requirements":
			spec.Requirements = parseRequirementAssignments(name, v, diags)
		case "interfaces", "artifacts", "directives":
			// Accepted but not modeled.
		default:
			diags.AddError(diagnostic.CodeUnknownField,
				fmt.Sprintf("unknown field %q in node template %q", key, name), name, key)
		}
	}

	if spec.Type == "" {
		diags.AddError(diagnostic.CodeMissingRequiredField,
			fmt.Sprintf("node template %q is missing required field \"type\"", name), name, "type")
		return NodeTemplateSpec{}, false
	}

	return spec, true
}

func parseValueMap(subject, field string, raw document.Value, diags *diagnostic.Diagnostics) map[string]document.Value {
	entries, ok := raw.AsMap()
	if !ok {
		diags.AddError(diagnostic.CodeInvalidDefinition,
			fmt.Sprintf("%s must be a mapping", field), subject, field)
		return nil
	}

	return entries
}

func parseCapabilityAssignments(nodeName string, raw document.Value, diags *diagnostic.Diagnostics) map[string]map[string]document.Value {
	entries, ok := raw.AsMap()
	if !ok {
		diags.AddError(diagnostic.CodeInvalidDefinition,
			"capabilities must be a mapping", nodeName, "capabilities")
		return nil
	}

	assignments := make(map[string]map[string]document.Value, len(entries))

	for _, capName := range common.SortedKeys(entries) {
		body, ok := entries[capName].AsMap()
		if !ok {
			diags.AddError(diagnostic.CodeInvalidDefinition,
				fmt.Sprintf("capability assignment %q must be a mapping", capName),
				nodeName, capName)

			continue
		}

		if props, ok := body["properties"]; ok {
			assignments[capName] = parseValueMap(nodeName, "capabilities."+capName, props, diags)
		} else {
			assignments[capName] = map[string]document.Value{}
		}
	}

	return assignments
}

func parseRequirementAssignments(nodeName string, raw document.Value, diags *diagnostic.Diagnostics) []RequirementAssignment {
	items, ok := raw.AsList()
	if !ok {
		diags.AddError(diagnostic.CodeInvalidDefinition,
			"requirements must be a list", nodeName, "requirements")
		return nil
	}

	assignments := make([]RequirementAssignment, 0, len(items))

	for _, item := range items {
		entry, ok := item.AsMap()
		if !ok || len(entry) != 1 {
			diags.AddError(diagnostic.CodeInvalidDefinition,
				"each requirement must be a single-entry mapping", nodeName, "requirements")

			continue
		}

		for name, body := range entry {
			assignment := RequirementAssignment{Name: name}

			// Short form: requirement name mapped to a target node
			// template (or node type) name.
			if target, ok := body.AsString(); ok {
				assignment.Node = target
				assignments = append(assignments, assignment)

				continue
			}

			fields, ok := body.AsMap()
			if !ok {
				diags.AddError(diagnostic.CodeInvalidDefinition,
					fmt.Sprintf("requirement %q must be a target name or a mapping", name),
					nodeName, name)

				continue
			}

			for _, key := range common.SortedKeys(fields) {
				v := fields[key]

				switch key {
				case "node":
					assignment.Node, _ = v.AsString()
				case "capability":
					assignment.Capability, _ = v.AsString()
				case "relationship":
					assignment.Relationship = parseRelationshipRef(v)
				default:
					diags.AddError(diagnostic.CodeUnknownField,
						fmt.Sprintf("unknown field %q in requirement %q", key, name),
						nodeName, name)
				}
			}

			assignments = append(assignments, assignment)
		}
	}

	return assignments
}
