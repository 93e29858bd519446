package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tosca-resolver/hierarchy"
	"tosca-resolver/registry"
	"tosca-resolver/tosca"
)

type fixture struct {
	matcher  *Matcher
	resolver *hierarchy.Resolver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	reg := registry.New(registry.Builtin())

	defs := []*tosca.TypeDefinition{
		{
			Name:        "example.capabilities.Receiver",
			Kind:        tosca.KindCapabilityType,
			DerivedFrom: "tosca.capabilities.Endpoint",
		},
		{
			Name:        "example.TransactionSubsystem",
			Kind:        tosca.KindNodeType,
			DerivedFrom: "tosca.nodes.SoftwareComponent",
			Capabilities: map[string]tosca.CapabilityDefinition{
				"message_receiver": {Name: "message_receiver", Type: "example.capabilities.Receiver"},
			},
		},
		{
			Name:        "example.DatabaseSubsystem",
			Kind:        tosca.KindNodeType,
			DerivedFrom: "tosca.nodes.Database",
		},
	}

	for _, def := range defs {
		require.NoError(t, reg.Register(def))
	}

	return &fixture{
		matcher:  NewMatcher(reg),
		resolver: hierarchy.NewResolver(reg),
	}
}

func (f *fixture) candidate(t *testing.T, name, typeName string) Candidate {
	t.Helper()

	rt, err := f.resolver.Resolve(typeName)
	require.NoError(t, err)

	return Candidate{Name: name, Type: rt}
}

func TestMatchesSubtypeCapability(t *testing.T) {
	f := newFixture(t)

	// A requirement for the ancestor capability type is satisfied by a
	// node exposing the derived capability.
	req := Requirement{
		Name:           "receiver1",
		NodeType:       "example.TransactionSubsystem",
		CapabilityType: "tosca.capabilities.Endpoint",
	}

	capDef, ok, err := f.matcher.SatisfyingCapability(req, f.candidate(t, "trans1", "example.TransactionSubsystem"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "message_receiver", capDef.Name)
	assert.Equal(t, "example.capabilities.Receiver", capDef.Type)
}

func TestMatchesSubtypeNode(t *testing.T) {
	f := newFixture(t)

	// DatabaseSubsystem derives from Database and inherits its
	// database_endpoint capability.
	req := Requirement{
		Name:           "database",
		NodeType:       "tosca.nodes.Database",
		CapabilityType: "tosca.capabilities.Endpoint.Database",
	}

	ok, err := f.matcher.Matches(req, f.candidate(t, "db", "example.DatabaseSubsystem"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMatchesRejectsWrongNodeType(t *testing.T) {
	f := newFixture(t)

	req := Requirement{
		Name:           "database",
		NodeType:       "tosca.nodes.Database",
		CapabilityType: "tosca.capabilities.Endpoint.Database",
	}

	ok, err := f.matcher.Matches(req, f.candidate(t, "trans1", "example.TransactionSubsystem"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatchesRejectsMissingCapability(t *testing.T) {
	f := newFixture(t)

	// Right node type lineage, but nothing derived from
	// Endpoint.Database is exposed.
	req := Requirement{
		Name:           "database",
		NodeType:       tosca.RootNodeType,
		CapabilityType: "tosca.capabilities.Endpoint.Database",
	}

	ok, err := f.matcher.Matches(req, f.candidate(t, "trans1", "example.TransactionSubsystem"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatchesOpenRequirement(t *testing.T) {
	f := newFixture(t)

	// No declared targets at all: any node exposing any capability
	// satisfies it.
	ok, err := f.matcher.Matches(Requirement{Name: "dependency"}, f.candidate(t, "db", "example.DatabaseSubsystem"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCandidates(t *testing.T) {
	f := newFixture(t)

	req := Requirement{
		Name:           "receiver1",
		NodeType:       "example.TransactionSubsystem",
		CapabilityType: "example.capabilities.Receiver",
	}

	all := []Candidate{
		f.candidate(t, "db", "example.DatabaseSubsystem"),
		f.candidate(t, "trans1", "example.TransactionSubsystem"),
		f.candidate(t, "trans2", "example.TransactionSubsystem"),
	}

	matches, err := f.matcher.Candidates(req, all)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "trans1", matches[0].Candidate.Name)
	assert.Equal(t, "trans2", matches[1].Candidate.Name)
}
