package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseYAML(t *testing.T) {
	data := []byte(`
tosca_definitions_version: tosca_simple_yaml_1_0
topology_template:
  node_templates:
    server:
      type: tosca.nodes.Compute
      properties:
        mem_size: 4096
        trusted: true
        ratio: 0.5
`)

	doc, err := Parse(data)
	require.NoError(t, err)
	require.Equal(t, KindMap, doc.Kind)

	version, ok := doc.Get("tosca_definitions_version")
	require.True(t, ok)
	assert.Equal(t, StringValue("tosca_simple_yaml_1_0"), version)

	tt, ok := doc.Get("topology_template")
	require.True(t, ok)

	nts, ok := tt.Get("node_templates")
	require.True(t, ok)

	server, ok := nts.Get("server")
	require.True(t, ok)

	props, ok := server.Get("properties")
	require.True(t, ok)

	mem, _ := props.Get("mem_size")
	assert.Equal(t, IntValue(4096), mem)

	trusted, _ := props.Get("trusted")
	assert.Equal(t, BoolValue(true), trusted)

	ratio, _ := props.Get("ratio")
	assert.Equal(t, FloatValue(0.5), ratio)
}

func TestParseJSONViaYAML(t *testing.T) {
	doc, err := Parse([]byte(`{"a": [1, 2], "b": null}`))
	require.NoError(t, err)

	a, ok := doc.Get("a")
	require.True(t, ok)

	items, ok := a.AsList()
	require.True(t, ok)
	assert.Len(t, items, 2)

	b, ok := doc.Get("b")
	require.True(t, ok)
	assert.True(t, b.IsNull())
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse([]byte("a: [unclosed"))
	require.Error(t, err)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile("testdata/does-not-exist.yaml")
	require.Error(t, err)
}
