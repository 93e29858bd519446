package schema

import (
	"fmt"
	"reflect"
	"regexp"

	"tosca-resolver/diagnostic"
	"tosca-resolver/document"
	"tosca-resolver/internal/common"
	"tosca-resolver/tosca"
)

// checkConstraint evaluates one declared constraint against a value
// that already passed the shape check.
func (v *Validator) checkConstraint(subject, name string, value document.Value, ps tosca.PropertySchema, c tosca.Constraint, diags *diagnostic.Diagnostics) {
	violation := func(format string, args ...any) {
		diags.AddError(diagnostic.CodeConstraintViolation,
			fmt.Sprintf("property %q violates %s: ", name, c.Operator)+fmt.Sprintf(format, args...),
			subject, name)
	}

	invalid := func(format string, args ...any) {
		diags.AddError(diagnostic.CodeInvalidConstraint,
			fmt.Sprintf("property %q has unusable %s constraint: ", name, c.Operator)+fmt.Sprintf(format, args...),
			subject, name)
	}

	switch c.Operator {
	case "equal":
		if !valuesEqual(ps.Type, value, c.Argument) {
			violation("%s is not equal to %s", renderValue(value), renderValue(c.Argument))
		}

	case "valid_values":
		allowed, ok := c.Argument.AsList()
		if !ok {
			invalid("argument must be a list")
			return
		}

		for _, candidate := range allowed {
			if valuesEqual(ps.Type, value, candidate) {
				return
			}
		}

		violation("%s is not an allowed value", renderValue(value))

	case "greater_than", "greater_or_equal", "less_than", "less_or_equal":
		cmp, ok := compareValues(ps.Type, value, c.Argument)
		if !ok {
			invalid("argument %s is not comparable to a %s", renderValue(c.Argument), ps.Type)
			return
		}

		satisfied := map[string]bool{
			"greater_than":     cmp > 0,
			"greater_or_equal": cmp >= 0,
			"less_than":        cmp < 0,
			"less_or_equal":    cmp <= 0,
		}[c.Operator]

		if !satisfied {
			violation("%s fails bound %s", renderValue(value), renderValue(c.Argument))
		}

	case "in_range":
		bounds, ok := c.Argument.AsList()
		if !ok || len(bounds) != 2 {
			invalid("argument must be a [min, max] pair")
			return
		}

		low, okLow := compareValues(ps.Type, value, bounds[0])
		high, okHigh := compareValues(ps.Type, value, bounds[1])

		if !okLow || !okHigh {
			invalid("bounds are not comparable to a %s", ps.Type)
			return
		}

		if low < 0 || high > 0 {
			violation("%s is outside [%s, %s]",
				renderValue(value), renderValue(bounds[0]), renderValue(bounds[1]))
		}

	case "length", "min_length", "max_length":
		length, ok := valueLength(value)
		if !ok {
			invalid("value of type %s has no length", ps.Type)
			return
		}

		bound, ok := c.Argument.AsInt()
		if !ok || bound < 0 {
			invalid("argument must be a non-negative integer")
			return
		}

		switch c.Operator {
		case "length":
			if length != bound {
				violation("length %d is not %d", length, bound)
			}
		case "min_length":
			if length < bound {
				violation("length %d is below %d", length, bound)
			}
		case "max_length":
			if length > bound {
				violation("length %d exceeds %d", length, bound)
			}
		}

	case "pattern":
		pattern, ok := c.Argument.AsString()
		if !ok {
			invalid("argument must be a string")
			return
		}

		re, err := regexp.Compile(pattern)
		if err != nil {
			invalid("invalid regular expression: %v", err)
			return
		}

		s, ok := value.AsString()
		if !ok {
			invalid("pattern applies to strings only")
			return
		}

		if !re.MatchString(s) {
			violation("%q does not match %q", s, pattern)
		}

	default:
		invalid("unknown operator")
	}
}

// valuesEqual compares two values under the declared type: floats (and
// the integers that widen to them) numerically, everything else
// structurally.
func valuesEqual(declared string, a, b document.Value) bool {
	if declared == "float" {
		fa, okA := a.AsFloat()
		fb, okB := b.AsFloat()

		return okA && okB && fa == fb
	}

	return reflect.DeepEqual(a, b)
}

// compareValues orders value against arg under the declared type.
// Returns the sign of (value - arg) and whether the pair is comparable:
// integers as int64, floats as float64, strings lexically. No other
// widening happens across a validation call.
func compareValues(declared string, value, arg document.Value) (int, bool) {
	switch declared {
	case "integer":
		a, okA := value.AsInt()
		b, okB := arg.AsInt()

		if !okA || !okB {
			return 0, false
		}

		return sign(a - b), true
	case "float":
		a, okA := value.AsFloat()
		b, okB := arg.AsFloat()

		if !okA || !okB {
			return 0, false
		}

		switch {
		case a < b:
			return -1, true
		case a > b:
			return 1, true
		default:
			return 0, true
		}
	case "string":
		a, okA := value.AsString()
		b, okB := arg.AsString()

		if !okA || !okB {
			return 0, false
		}

		switch {
		case a < b:
			return -1, true
		case a > b:
			return 1, true
		default:
			return 0, true
		}
	default:
		return 0, false
	}
}

func sign(n int64) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

// valueLength returns the length of a string, list, or map value.
func valueLength(v document.Value) (int64, bool) {
	switch v.Kind {
	case document.KindString:
		return int64(len(v.Str)), true
	case document.KindList:
		return int64(len(v.List)), true
	case document.KindMap:
		return int64(len(v.Map)), true
	default:
		return 0, false
	}
}

// comparableTypes are the declared types the ordering operators accept.
var comparableTypes = map[string]struct{}{
	"integer": {},
	"float":   {},
	"string":  {},
}

// measurableTypes are the declared types the length operators accept.
var measurableTypes = map[string]struct{}{
	"string": {},
	"list":   {},
	"map":    {},
}

// CheckSchemas verifies that every constraint declared in a schema map
// is semantically compatible with its property's type: ordering
// operators need a comparable type, length operators a measurable one,
// pattern a string, and range/value lists the right shape.
func CheckSchemas(subject string, schemas map[string]tosca.PropertySchema) *diagnostic.Diagnostics {
	diags := &diagnostic.Diagnostics{}

	for _, name := range common.SortedKeys(schemas) {
		ps := schemas[name]

		for _, c := range ps.Constraints {
			if reason := constraintTypeMismatch(ps, c); reason != "" {
				diags.AddError(diagnostic.CodeInvalidConstraint,
					fmt.Sprintf("property %q: %s constraint %s", name, c.Operator, reason),
					subject, name)
			}
		}
	}

	return diags
}

func constraintTypeMismatch(ps tosca.PropertySchema, c tosca.Constraint) string {
	switch c.Operator {
	case "greater_than", "greater_or_equal", "less_than", "less_or_equal":
		if _, ok := comparableTypes[ps.Type]; !ok {
			return fmt.Sprintf("is incompatible with type %q", ps.Type)
		}
	case "in_range":
		if _, ok := comparableTypes[ps.Type]; !ok {
			return fmt.Sprintf("is incompatible with type %q", ps.Type)
		}

		if bounds, ok := c.Argument.AsList(); !ok || len(bounds) != 2 {
			return "needs a [min, max] argument"
		}
	case "length", "min_length", "max_length":
		if _, ok := measurableTypes[ps.Type]; !ok {
			return fmt.Sprintf("is incompatible with type %q", ps.Type)
		}
	case "pattern":
		if ps.Type != "string" {
			return fmt.Sprintf("is incompatible with type %q", ps.Type)
		}

		if s, ok := c.Argument.AsString(); ok {
			if _, err := regexp.Compile(s); err != nil {
				return fmt.Sprintf("has an invalid regular expression: %v", err)
			}
		} else {
			return "needs a string argument"
		}
	case "valid_values":
		if _, ok := c.Argument.AsList(); !ok {
			return "needs a list argument"
		}
	}

	return ""
}
