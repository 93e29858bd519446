package document

import (
	"fmt"
	"math"
)

//go:generate go tool stringer -type=Kind -trimprefix=Kind -output=kind_string.go

// Kind is the tag of a Value variant.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindInteger
	KindFloat
	KindBoolean
	KindList
	KindMap
)

// ToscaName returns the TOSCA primitive type name for the kind, as used
// in schema declarations and diagnostics.
func (k Kind) ToscaName() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindBoolean:
		return "boolean"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is a single node of a generic nested document. Exactly the
// field selected by Kind is meaningful; the rest stay zero.
type Value struct {
	Kind  Kind
	Str   string
	Int   int64
	Float float64
	Bool  bool
	List  []Value
	Map   map[string]Value
}

// Null returns the null value.
func Null() Value { return Value{Kind: KindNull} }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

// IntValue wraps an integer.
func IntValue(i int64) Value { return Value{Kind: KindInteger, Int: i} }

// FloatValue wraps a float.
func FloatValue(f float64) Value { return Value{Kind: KindFloat, Float: f} }

// BoolValue wraps a boolean.
func BoolValue(b bool) Value { return Value{Kind: KindBoolean, Bool: b} }

// ListValue wraps a list.
func ListValue(items ...Value) Value { return Value{Kind: KindList, List: items} }

// MapValue wraps a mapping.
func MapValue(m map[string]Value) Value { return Value{Kind: KindMap, Map: m} }

// IsNull returns true for the null value.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// AsMap returns the mapping entries and true if the value is a map.
func (v Value) AsMap() (map[string]Value, bool) {
	if v.Kind != KindMap {
		return nil, false
	}

	return v.Map, true
}

// AsList returns the list items and true if the value is a list.
func (v Value) AsList() ([]Value, bool) {
	if v.Kind != KindList {
		return nil, false
	}

	return v.List, true
}

// AsString returns the string content and true if the value is a string.
func (v Value) AsString() (string, bool) {
	if v.Kind != KindString {
		return "", false
	}

	return v.Str, true
}

// AsInt returns the integer content and true if the value is an integer.
func (v Value) AsInt() (int64, bool) {
	if v.Kind != KindInteger {
		return 0, false
	}

	return v.Int, true
}

// AsBool returns the boolean content and true if the value is a boolean.
func (v Value) AsBool() (bool, bool) {
	if v.Kind != KindBoolean {
		return false, false
	}

	return v.Bool, true
}

// AsFloat returns the numeric content as a float64 and true if the
// value is a float or an integer. Integers widen here because YAML
// writes "1.0" as 1; schema validation decides whether that widening
// is acceptable for the declared type.
func (v Value) AsFloat() (float64, bool) {
	switch v.Kind {
	case KindFloat:
		return v.Float, true
	case KindInteger:
		return float64(v.Int), true
	default:
		return 0, false
	}
}

// Get returns the entry under key and true if the value is a map
// containing that key.
func (v Value) Get(key string) (Value, bool) {
	if v.Kind != KindMap {
		return Value{}, false
	}

	entry, ok := v.Map[key]

	return entry, ok
}

// FromAny converts a value decoded by a generic YAML/JSON loader into
// the closed Value variant. Unsupported Go types are an error rather
// than a silent null.
func FromAny(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Null(), nil
	case string:
		return StringValue(x), nil
	case bool:
		return BoolValue(x), nil
	case int:
		return IntValue(int64(x)), nil
	case int64:
		return IntValue(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return Value{}, fmt.Errorf("document: integer %d overflows int64", x)
		}

		return IntValue(int64(x)), nil
	case float32:
		return FloatValue(float64(x)), nil
	case float64:
		return FloatValue(x), nil
	case []any:
		items := make([]Value, 0, len(x))
		for i, item := range x {
			v, err := FromAny(item)
			if err != nil {
				return Value{}, fmt.Errorf("document: list index %d: %w", i, err)
			}

			items = append(items, v)
		}

		return Value{Kind: KindList, List: items}, nil
	case map[string]any:
		entries := make(map[string]Value, len(x))
		for key, item := range x {
			v, err := FromAny(item)
			if err != nil {
				return Value{}, fmt.Errorf("document: key %q: %w", key, err)
			}

			entries[key] = v
		}

		return MapValue(entries), nil
	case map[any]any:
		entries := make(map[string]Value, len(x))
		for key, item := range x {
			ks, ok := key.(string)
			if !ok {
				return Value{}, fmt.Errorf("document: non-string map key %v", key)
			}

			v, err := FromAny(item)
			if err != nil {
				return Value{}, fmt.Errorf("document: key %q: %w", ks, err)
			}

			entries[ks] = v
		}

		return MapValue(entries), nil
	default:
		return Value{}, fmt.Errorf("document: unsupported value of type %T", raw)
	}
}
