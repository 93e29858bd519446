package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tosca-resolver/diagnostic"
	"tosca-resolver/document"
	"tosca-resolver/hierarchy"
	"tosca-resolver/registry"
	"tosca-resolver/tosca"
)

func newTestValidator(t *testing.T) *Validator {
	t.Helper()

	return NewValidator(hierarchy.NewResolver(registry.New(registry.Builtin())))
}

func appSchemas() map[string]tosca.PropertySchema {
	req := false

	return map[string]tosca.PropertySchema{
		"admin_user": {Type: "string"},
		"pool_size": {
			Type:     "integer",
			Required: &req,
			Constraints: []tosca.Constraint{
				{Operator: "greater_or_equal", Argument: document.IntValue(1)},
			},
		},
	}
}

func TestValidateMissingRequired(t *testing.T) {
	v := newTestValidator(t)

	diags := v.Validate("my_app", map[string]document.Value{}, appSchemas())

	require.True(t, diags.HasErrors())
	assert.True(t, diags.HasCode(diagnostic.CodeMissingRequiredProperty))
	assert.Equal(t, "admin_user", diags.Errors[0].Property)
}

func TestValidateDefaultSatisfiesRequired(t *testing.T) {
	v := newTestValidator(t)

	def := document.StringValue("admin")
	schemas := map[string]tosca.PropertySchema{
		"admin_user": {Type: "string", Default: &def},
	}

	diags := v.Validate("my_app", map[string]document.Value{}, schemas)
	assert.False(t, diags.HasErrors())
}

func TestValidateTypeMismatch(t *testing.T) {
	v := newTestValidator(t)

	values := map[string]document.Value{
		"admin_user": document.StringValue("root"),
		"pool_size":  document.StringValue("five"),
	}

	diags := v.Validate("my_app", values, appSchemas())

	require.Len(t, diags.Errors, 1)
	assert.Equal(t, diagnostic.CodeTypeMismatch, diags.Errors[0].Code)
	assert.Equal(t, "pool_size", diags.Errors[0].Property)
	assert.Contains(t, diags.Errors[0].Message, "integer")
	assert.Contains(t, diags.Errors[0].Message, `"five"`)
}

func TestValidateUnknownProperty(t *testing.T) {
	v := newTestValidator(t)

	values := map[string]document.Value{
		"admin_user": document.StringValue("root"),
		"admin_pass": document.StringValue("secret"),
	}

	diags := v.Validate("my_app", values, appSchemas())

	require.Len(t, diags.Errors, 1)
	assert.Equal(t, diagnostic.CodeUnknownProperty, diags.Errors[0].Code)
	assert.Equal(t, "admin_pass", diags.Errors[0].Property)
}

func TestValidateCollectsAllViolations(t *testing.T) {
	v := newTestValidator(t)

	// Missing required, mismatched type, and unknown key in one call.
	values := map[string]document.Value{
		"pool_size": document.StringValue("five"),
		"extra":     document.IntValue(1),
	}

	diags := v.Validate("my_app", values, appSchemas())

	assert.True(t, diags.HasCode(diagnostic.CodeMissingRequiredProperty))
	assert.True(t, diags.HasCode(diagnostic.CodeTypeMismatch))
	assert.True(t, diags.HasCode(diagnostic.CodeUnknownProperty))
	assert.Len(t, diags.Errors, 3)
}

func TestValidateConstraints(t *testing.T) {
	v := newTestValidator(t)

	schemas := map[string]tosca.PropertySchema{
		"port": {
			Type: "integer",
			Constraints: []tosca.Constraint{
				{Operator: "in_range", Argument: document.ListValue(
					document.IntValue(1), document.IntValue(65535),
				)},
			},
		},
		"protocol": {
			Type: "string",
			Constraints: []tosca.Constraint{
				{Operator: "valid_values", Argument: document.ListValue(
					document.StringValue("tcp"), document.StringValue("udp"),
				)},
			},
		},
		"name": {
			Type: "string",
			Constraints: []tosca.Constraint{
				{Operator: "pattern", Argument: document.StringValue(`^[a-z][a-z0-9_]*$`)},
				{Operator: "max_length", Argument: document.IntValue(8)},
			},
		},
	}

	ok := map[string]document.Value{
		"port":     document.IntValue(8080),
		"protocol": document.StringValue("tcp"),
		"name":     document.StringValue("web_1"),
	}
	assert.False(t, v.Validate("n", ok, schemas).HasErrors())

	bad := map[string]document.Value{
		"port":     document.IntValue(0),
		"protocol": document.StringValue("sctp"),
		"name":     document.StringValue("Not_A_Valid_Name"),
	}

	diags := v.Validate("n", bad, schemas)
	// port out of range, protocol not allowed, name fails both pattern
	// and max_length.
	assert.Len(t, diags.Errors, 4)

	for _, e := range diags.Errors {
		assert.Equal(t, diagnostic.CodeConstraintViolation, e.Code)
	}
}

func TestValidateFloatAcceptsIntegerLiteral(t *testing.T) {
	v := newTestValidator(t)

	schemas := map[string]tosca.PropertySchema{
		"ratio": {
			Type: "float",
			Constraints: []tosca.Constraint{
				{Operator: "less_or_equal", Argument: document.FloatValue(1.0)},
			},
		},
	}

	// YAML renders 1.0 as 1; a declared float accepts it.
	diags := v.Validate("n", map[string]document.Value{"ratio": document.IntValue(1)}, schemas)
	assert.False(t, diags.HasErrors())

	// The reverse does not hold: a declared integer rejects floats.
	intSchemas := map[string]tosca.PropertySchema{"count": {Type: "integer"}}
	diags = v.Validate("n", map[string]document.Value{"count": document.FloatValue(1.5)}, intSchemas)
	assert.True(t, diags.HasCode(diagnostic.CodeTypeMismatch))
}

func TestValidateListEntrySchema(t *testing.T) {
	v := newTestValidator(t)

	schemas := map[string]tosca.PropertySchema{
		"ports": {Type: "list", EntrySchema: "integer"},
	}

	ok := map[string]document.Value{
		"ports": document.ListValue(document.IntValue(80), document.IntValue(443)),
	}
	assert.False(t, v.Validate("n", ok, schemas).HasErrors())

	bad := map[string]document.Value{
		"ports": document.ListValue(document.IntValue(80), document.StringValue("https")),
	}

	diags := v.Validate("n", bad, schemas)
	require.Len(t, diags.Errors, 1)
	assert.Equal(t, "ports[1]", diags.Errors[0].Property)
}

func TestValidateDataTypeReference(t *testing.T) {
	v := newTestValidator(t)

	req := false
	schemas := map[string]tosca.PropertySchema{
		"credential": {Type: "tosca.datatypes.Credential", Required: &req},
	}

	ok := map[string]document.Value{
		"credential": document.MapValue(map[string]document.Value{
			"token": document.StringValue("s3cret"),
			"user":  document.StringValue("admin"),
		}),
	}
	assert.False(t, v.Validate("n", ok, schemas).HasErrors())

	// Missing the required nested token, plus an unknown nested key.
	bad := map[string]document.Value{
		"credential": document.MapValue(map[string]document.Value{
			"username": document.StringValue("admin"),
		}),
	}

	diags := v.Validate("n", bad, schemas)
	assert.True(t, diags.HasCode(diagnostic.CodeMissingRequiredProperty))
	assert.True(t, diags.HasCode(diagnostic.CodeUnknownProperty))
}

func TestValidateUnknownDataType(t *testing.T) {
	v := newTestValidator(t)

	schemas := map[string]tosca.PropertySchema{
		"blob": {Type: "example.datatypes.Missing"},
	}

	diags := v.Validate("n", map[string]document.Value{
		"blob": document.MapValue(map[string]document.Value{}),
	}, schemas)

	assert.True(t, diags.HasCode(diagnostic.CodeUnknownType))
}

func TestValidateShapes(t *testing.T) {
	v := newTestValidator(t)

	schemas := map[string]tosca.PropertySchema{
		"tosca_id": {Type: "string"},
		"uptime":   {Type: "integer"},
	}

	// Absence is fine for attributes, wrong shapes are not.
	diags := v.ValidateShapes("n", map[string]document.Value{
		"uptime": document.StringValue("long"),
	}, schemas)

	require.Len(t, diags.Errors, 1)
	assert.Equal(t, diagnostic.CodeTypeMismatch, diags.Errors[0].Code)

	assert.False(t, v.ValidateShapes("n", map[string]document.Value{}, schemas).HasErrors())
}

func TestApplyDefaults(t *testing.T) {
	protocol := document.StringValue("tcp")
	schemas := map[string]tosca.PropertySchema{
		"protocol": {Type: "string", Default: &protocol},
		"port":     {Type: "integer"},
	}

	in := map[string]document.Value{"port": document.IntValue(22)}
	out := ApplyDefaults(in, schemas)

	assert.Equal(t, document.StringValue("tcp"), out["protocol"])
	assert.Equal(t, document.IntValue(22), out["port"])

	// Provided values win and the input map stays untouched.
	in2 := map[string]document.Value{"protocol": document.StringValue("udp")}
	out2 := ApplyDefaults(in2, schemas)
	assert.Equal(t, document.StringValue("udp"), out2["protocol"])
	assert.NotContains(t, in, "protocol")
}

func TestCheckSchemas(t *testing.T) {
	schemas := map[string]tosca.PropertySchema{
		"flag": {
			Type: "boolean",
			Constraints: []tosca.Constraint{
				{Operator: "greater_than", Argument: document.IntValue(0)},
			},
		},
		"name": {
			Type: "string",
			Constraints: []tosca.Constraint{
				{Operator: "pattern", Argument: document.StringValue("([unclosed")},
			},
		},
		"port": {
			Type: "integer",
			Constraints: []tosca.Constraint{
				{Operator: "in_range", Argument: document.ListValue(document.IntValue(1))},
			},
		},
	}

	diags := CheckSchemas("example.Type", schemas)

	assert.Len(t, diags.Errors, 3)
	for _, e := range diags.Errors {
		assert.Equal(t, diagnostic.CodeInvalidConstraint, e.Code)
	}
}
