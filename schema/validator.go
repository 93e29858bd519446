// Package schema validates property and attribute value maps against
// merged property schemas.
//
// Validation is collect-all: one call reports every missing required
// property, type mismatch, constraint violation, and unknown key it
// finds, never just the first.
package schema

import (
	"fmt"

	"tosca-resolver/diagnostic"
	"tosca-resolver/document"
	"tosca-resolver/hierarchy"
	"tosca-resolver/internal/common"
	"tosca-resolver/tosca"
)

// primitiveKinds maps TOSCA primitive type names to the document kinds
// that satisfy them. An integer satisfies float (the declared type
// decides the numeric domain, and YAML renders whole floats as
// integers); nothing else widens.
var primitiveKinds = map[string][]document.Kind{
	"string":  {document.KindString},
	"integer": {document.KindInteger},
	"float":   {document.KindFloat, document.KindInteger},
	"boolean": {document.KindBoolean},
	"list":    {document.KindList},
	"map":     {document.KindMap},
}

// Validator checks value maps against property schemas. Data-type
// references inside schemas are resolved through the pass's hierarchy
// resolver.
type Validator struct {
	resolver *hierarchy.Resolver
}

// NewValidator creates a Validator over the given hierarchy resolver.
func NewValidator(resolver *hierarchy.Resolver) *Validator {
	return &Validator{resolver: resolver}
}

// Validate checks a property value map against a schema map: required
// properties, value shapes, declared constraints, and unknown keys.
func (v *Validator) Validate(subject string, values map[string]document.Value, schemas map[string]tosca.PropertySchema) *diagnostic.Diagnostics {
	diags := &diagnostic.Diagnostics{}

	for _, name := range common.SortedKeys(schemas) {
		ps := schemas[name]

		if _, present := values[name]; present {
			continue
		}

		if ps.IsRequired() && ps.Default == nil {
			diags.AddError(diagnostic.CodeMissingRequiredProperty,
				fmt.Sprintf("required property %q is not provided and has no default", name),
				subject, name)
		}
	}

	v.checkPresent(subject, values, schemas, true, diags)

	return diags
}

// ValidateShapes checks only the value shapes of an attribute map:
// attributes are runtime-populated, so absence and constraints are not
// judged, but a present value must still match its declared type and
// unknown keys are still reported.
func (v *Validator) ValidateShapes(subject string, values map[string]document.Value, schemas map[string]tosca.PropertySchema) *diagnostic.Diagnostics {
	diags := &diagnostic.Diagnostics{}

	v.checkPresent(subject, values, schemas, false, diags)

	return diags
}

func (v *Validator) checkPresent(subject string, values map[string]document.Value, schemas map[string]tosca.PropertySchema, withConstraints bool, diags *diagnostic.Diagnostics) {
	for _, name := range common.SortedKeys(values) {
		ps, known := schemas[name]
		if !known {
			diags.AddError(diagnostic.CodeUnknownProperty,
				fmt.Sprintf("property %q is not defined by the type", name),
				subject, name)

			continue
		}

		value := values[name]

		if !v.checkShape(subject, name, value, ps, diags) {
			continue
		}

		if withConstraints {
			for _, c := range ps.Constraints {
				v.checkConstraint(subject, name, value, ps, c, diags)
			}
		}
	}
}

// checkShape verifies that value matches the schema's declared type.
// Returns false when a mismatch was reported, so constraint checks can
// be skipped for values of the wrong shape.
func (v *Validator) checkShape(subject, name string, value document.Value, ps tosca.PropertySchema, diags *diagnostic.Diagnostics) bool {
	if value.IsNull() {
		if ps.IsRequired() {
			diags.AddError(diagnostic.CodeTypeMismatch,
				fmt.Sprintf("property %q expects %s, got null", name, ps.Type),
				subject, name)

			return false
		}

		return true
	}

	if kinds, primitive := primitiveKinds[ps.Type]; primitive {
		for _, k := range kinds {
			if value.Kind == k {
				return v.checkEntries(subject, name, value, ps, diags)
			}
		}

		diags.AddError(diagnostic.CodeTypeMismatch,
			fmt.Sprintf("property %q expects %s, got %s (%s)",
				name, ps.Type, value.Kind.ToscaName(), renderValue(value)),
			subject, name)

		return false
	}

	return v.checkDataType(subject, name, value, ps.Type, diags)
}

// checkEntries validates list and map elements against the entry
// schema, when one is declared.
func (v *Validator) checkEntries(subject, name string, value document.Value, ps tosca.PropertySchema, diags *diagnostic.Diagnostics) bool {
	if ps.EntrySchema == "" {
		return true
	}

	entry := tosca.PropertySchema{Type: ps.EntrySchema}
	ok := true

	switch value.Kind {
	case document.KindList:
		for i, item := range value.List {
			ok = v.checkShape(subject, fmt.Sprintf("%s[%d]", name, i), item, entry, diags) && ok
		}
	case document.KindMap:
		for _, key := range common.SortedKeys(value.Map) {
			ok = v.checkShape(subject, name+"."+key, value.Map[key], entry, diags) && ok
		}
	}

	return ok
}

// checkDataType validates a value against a (non-primitive) data type
// reference: the value must be a mapping and its entries are validated
// recursively against the data type's merged properties.
func (v *Validator) checkDataType(subject, name string, value document.Value, typeName string, diags *diagnostic.Diagnostics) bool {
	dt, err := v.resolver.Resolve(typeName)
	if err != nil {
		diags.AddError(diagnostic.CodeUnknownType,
			fmt.Sprintf("property %q declares unknown type %q", name, typeName),
			subject, name)

		return false
	}

	entries, ok := value.AsMap()
	if !ok {
		diags.AddError(diagnostic.CodeTypeMismatch,
			fmt.Sprintf("property %q expects %s, got %s (%s)",
				name, typeName, value.Kind.ToscaName(), renderValue(value)),
			subject, name)

		return false
	}

	nested := v.Validate(subject+"."+name, entries, dt.Properties)
	diags.Merge(*nested)

	return nested.IsValid()
}

// ApplyDefaults returns a value map with every absent defaulted
// property filled in. The input map is not modified; defaults are
// applied deterministically and never replace provided values.
func ApplyDefaults(values map[string]document.Value, schemas map[string]tosca.PropertySchema) map[string]document.Value {
	out := make(map[string]document.Value, len(values))
	for name, value := range values {
		out[name] = value
	}

	for _, name := range common.SortedKeys(schemas) {
		ps := schemas[name]

		if _, present := out[name]; present || ps.Default == nil {
			continue
		}

		out[name] = *ps.Default
	}

	return out
}

// renderValue formats a value for diagnostics: scalars verbatim,
// collections by kind.
func renderValue(v document.Value) string {
	switch v.Kind {
	case document.KindString:
		return fmt.Sprintf("%q", v.Str)
	case document.KindInteger:
		return fmt.Sprintf("%d", v.Int)
	case document.KindFloat:
		return fmt.Sprintf("%g", v.Float)
	case document.KindBoolean:
		return fmt.Sprintf("%t", v.Bool)
	case document.KindNull:
		return "null"
	default:
		return v.Kind.ToscaName()
	}
}
