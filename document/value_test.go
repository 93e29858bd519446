package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromAnyScalars(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want Value
	}{
		{"nil", nil, Null()},
		{"string", "hello", StringValue("hello")},
		{"int", 42, IntValue(42)},
		{"int64", int64(-7), IntValue(-7)},
		{"float", 2.5, FloatValue(2.5)},
		{"bool", true, BoolValue(true)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FromAny(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFromAnyNested(t *testing.T) {
	raw := map[string]any{
		"name": "server",
		"ports": []any{8080, 8443},
		"meta": map[string]any{
			"public": false,
		},
	}

	got, err := FromAny(raw)
	require.NoError(t, err)
	require.Equal(t, KindMap, got.Kind)

	ports, ok := got.Get("ports")
	require.True(t, ok)

	items, ok := ports.AsList()
	require.True(t, ok)
	require.Len(t, items, 2)
	assert.Equal(t, IntValue(8080), items[0])

	meta, ok := got.Get("meta")
	require.True(t, ok)

	public, ok := meta.Get("public")
	require.True(t, ok)
	assert.Equal(t, BoolValue(false), public)
}

func TestFromAnyNonStringKeys(t *testing.T) {
	_, err := FromAny(map[any]any{1: "x"})
	require.Error(t, err)
}

func TestFromAnyUnsupported(t *testing.T) {
	_, err := FromAny(struct{}{})
	require.Error(t, err)
}

func TestAsFloatWidensIntegers(t *testing.T) {
	f, ok := IntValue(3).AsFloat()
	require.True(t, ok)
	assert.Equal(t, 3.0, f)

	_, ok = StringValue("3").AsFloat()
	assert.False(t, ok)
}

func TestKindNames(t *testing.T) {
	assert.Equal(t, "Integer", KindInteger.String())
	assert.Equal(t, "integer", KindInteger.ToscaName())
	assert.Equal(t, "Map", KindMap.String())
	assert.Equal(t, "boolean", KindBoolean.ToscaName())
}
