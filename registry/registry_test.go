package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tosca-resolver/tosca"
)

func nodeType(name, parent string) *tosca.TypeDefinition {
	return &tosca.TypeDefinition{Name: name, Kind: tosca.KindNodeType, DerivedFrom: parent}
}

func TestRegisterAndLookup(t *testing.T) {
	r := New(Builtin())

	def := nodeType("example.App", "tosca.nodes.SoftwareComponent")
	require.NoError(t, r.Register(def))

	got, err := r.Lookup("example.App")
	require.NoError(t, err)
	assert.Same(t, def, got)

	// Base types resolve through the overlay.
	root, err := r.Lookup(tosca.RootNodeType)
	require.NoError(t, err)
	assert.Equal(t, tosca.RootNodeType, root.Name)
}

func TestRegisterDuplicate(t *testing.T) {
	r := New(Builtin())

	require.NoError(t, r.Register(nodeType("example.App", "")))

	err := r.Register(nodeType("example.App", ""))
	require.ErrorIs(t, err, ErrDuplicateType)

	// Shadowing a built-in is a duplicate too.
	err = r.Register(nodeType("tosca.nodes.Compute", ""))
	require.ErrorIs(t, err, ErrDuplicateType)
}

func TestLookupUnknown(t *testing.T) {
	r := New(Builtin())

	_, err := r.Lookup("example.Missing")
	require.ErrorIs(t, err, ErrUnknownType)
}

func TestIsSubtypeOf(t *testing.T) {
	r := New(Builtin())

	require.NoError(t, r.Register(nodeType("example.DatabaseSubsystem", "tosca.nodes.Database")))

	cases := []struct {
		candidate, ancestor string
		want                bool
	}{
		{"tosca.nodes.Compute", "tosca.nodes.Compute", true}, // reflexive
		{"tosca.nodes.Compute", tosca.RootNodeType, true},
		{"tosca.nodes.DBMS", tosca.RootNodeType, true}, // two levels up
		{"example.DatabaseSubsystem", "tosca.nodes.Database", true},
		{"example.DatabaseSubsystem", tosca.RootNodeType, true},
		{"tosca.nodes.Database", "example.DatabaseSubsystem", false}, // wrong direction
		{"tosca.nodes.Compute", "tosca.nodes.Database", false},
	}

	for _, tc := range cases {
		got, err := r.IsSubtypeOf(tc.candidate, tc.ancestor)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "%s <: %s", tc.candidate, tc.ancestor)
	}
}

func TestIsSubtypeOfUnknownCandidate(t *testing.T) {
	r := New(Builtin())

	_, err := r.IsSubtypeOf("example.Missing", tosca.RootNodeType)
	require.ErrorIs(t, err, ErrUnknownType)
}

func TestIsSubtypeOfTerminatesOnCycle(t *testing.T) {
	r := New(nil)

	require.NoError(t, r.Register(nodeType("a", "b")))
	require.NoError(t, r.Register(nodeType("b", "a")))

	ok, err := r.IsSubtypeOf("a", "c")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDescendantsOf(t *testing.T) {
	r := New(Builtin())

	require.NoError(t, r.Register(nodeType("example.DatabaseSubsystem", "tosca.nodes.Database")))

	got := r.DescendantsOf("tosca.nodes.Database")
	assert.Equal(t, []string{"example.DatabaseSubsystem", "tosca.nodes.Database"}, got)

	// Every type is its own descendant.
	for _, name := range r.Names() {
		assert.Contains(t, r.DescendantsOf(name), name)
	}
}

func TestNewBaseRejectsDuplicates(t *testing.T) {
	_, err := NewBase([]*tosca.TypeDefinition{
		nodeType("x", ""),
		nodeType("x", ""),
	})
	require.ErrorIs(t, err, ErrDuplicateType)
}
