// Package match decides whether a node template can satisfy a
// requirement, honoring node-type and capability-type inheritance.
package match

import (
	"tosca-resolver/hierarchy"
	"tosca-resolver/internal/common"
	"tosca-resolver/registry"
	"tosca-resolver/tosca"
)

// Requirement is the matcher's view of one requirement to satisfy:
// the target type references after merging the type-level definition
// with any template-level refinement. Empty references are open and
// match anything.
type Requirement struct {
	Name           string
	NodeType       string
	CapabilityType string
}

// Candidate pairs a node template name with its resolved type.
type Candidate struct {
	Name string
	Type *hierarchy.ResolvedType
}

// Match records a satisfying candidate and the capability that
// satisfied the requirement.
type Match struct {
	Candidate  Candidate
	Capability tosca.CapabilityDefinition
}

// Matcher answers requirement-satisfaction questions over one pass's
// registry.
type Matcher struct {
	registry *registry.Registry
}

// NewMatcher creates a Matcher over the given registry.
func NewMatcher(reg *registry.Registry) *Matcher {
	return &Matcher{registry: reg}
}

// Matches reports whether the candidate satisfies the requirement: its
// type must equal or derive from the requirement's node type, and it
// must expose at least one capability whose type equals or derives
// from the requirement's capability type.
func (m *Matcher) Matches(req Requirement, candidate Candidate) (bool, error) {
	_, ok, err := m.SatisfyingCapability(req, candidate)
	return ok, err
}

// SatisfyingCapability returns the first capability (by capability
// name) through which the candidate satisfies the requirement, if any.
func (m *Matcher) SatisfyingCapability(req Requirement, candidate Candidate) (tosca.CapabilityDefinition, bool, error) {
	if req.NodeType != "" {
		ok, err := m.registry.IsSubtypeOf(candidate.Type.Name, req.NodeType)
		if err != nil || !ok {
			return tosca.CapabilityDefinition{}, false, err
		}
	}

	if req.CapabilityType == "" {
		// Open capability target: any exposed capability will do, the
		// implicit "feature" from tosca.nodes.Root included.
		if capName, ok := common.First(common.SortedKeys(candidate.Type.Capabilities)); ok {
			return candidate.Type.Capabilities[capName], true, nil
		}

		return tosca.CapabilityDefinition{}, false, nil
	}

	for _, capName := range common.SortedKeys(candidate.Type.Capabilities) {
		capDef := candidate.Type.Capabilities[capName]

		ok, err := m.registry.IsSubtypeOf(capDef.Type, req.CapabilityType)
		if err != nil {
			// The capability references a type the registry does not
			// know; resolution reports that elsewhere, here it simply
			// cannot satisfy anything.
			continue
		}

		if ok {
			return capDef, true, nil
		}
	}

	return tosca.CapabilityDefinition{}, false, nil
}

// Candidates returns every match for the requirement among the given
// candidates, preserving their order. The caller decides what more
// than one match means (ambiguity) and what zero means (unsatisfied).
func (m *Matcher) Candidates(req Requirement, candidates []Candidate) ([]Match, error) {
	var matches []Match

	for _, candidate := range candidates {
		capDef, ok, err := m.SatisfyingCapability(req, candidate)
		if err != nil {
			return nil, err
		}

		if ok {
			matches = append(matches, Match{Candidate: candidate, Capability: capDef})
		}
	}

	return matches, nil
}
