// Package graph builds the validated topology: it resolves every node
// template's type, validates assigned values, binds each requirement to
// a target node template, and verifies the result globally.
//
// A build is one synchronous pass. Structural failures that make the
// rest of the graph meaningless (inheritance cycles, unknown types
// needed for resolution) abort with an error; everything else is
// collected into diagnostics so one run reports every problem.
package graph

import (
	"fmt"
	"strings"

	"tosca-resolver/diagnostic"
	"tosca-resolver/hierarchy"
	"tosca-resolver/internal/common"
	"tosca-resolver/match"
	"tosca-resolver/registry"
	"tosca-resolver/schema"
	"tosca-resolver/tosca"
)

// Builder constructs topologies over one pass's registry.
type Builder struct {
	registry  *registry.Registry
	resolver  *hierarchy.Resolver
	validator *schema.Validator
	matcher   *match.Matcher
}

// NewBuilder creates a Builder and the resolver/validator/matcher
// stack it needs, all sharing the given registry.
func NewBuilder(reg *registry.Registry) *Builder {
	resolver := hierarchy.NewResolver(reg)

	return &Builder{
		registry:  reg,
		resolver:  resolver,
		validator: schema.NewValidator(resolver),
		matcher:   match.NewMatcher(reg),
	}
}

// Resolver exposes the builder's hierarchy resolver, sharing its
// per-pass memoization with callers that need merged views directly.
func (b *Builder) Resolver() *hierarchy.Resolver {
	return b.resolver
}

// BuildTemplate runs a complete pass over a parsed service template:
// custom type registration, type resolution, and the topology build.
// The registry must be fresh; a pass never reuses state.
func BuildTemplate(st *tosca.ServiceTemplate, reg *registry.Registry) (*Topology, *diagnostic.Diagnostics, error) {
	diags := &diagnostic.Diagnostics{}

	for _, def := range st.Types {
		if err := reg.Register(def); err != nil {
			diags.AddError(diagnostic.CodeDuplicateType,
				fmt.Sprintf("type %q is defined more than once", def.Name), def.Name, "")
		}
	}

	b := NewBuilder(reg)

	// Resolve every custom type before touching templates: an
	// inheritance cycle or unknown parent aborts here, before any
	// requirement binding is attempted.
	for _, def := range st.Types {
		rt, err := b.resolver.Resolve(def.Name)
		if err != nil {
			return nil, diags, err
		}

		diags.Merge(*schema.CheckSchemas(def.Name, rt.Properties))
		diags.Merge(*schema.CheckSchemas(def.Name, rt.Attributes))
		b.checkRequirementTargets(rt, diags)
	}

	var specs []tosca.NodeTemplateSpec
	if st.Topology != nil {
		specs = st.Topology.NodeTemplates
	}

	topo, buildDiags, err := b.Build(specs)
	if err != nil {
		return nil, diags, err
	}

	diags.Merge(*buildDiags)

	return topo, diags, nil
}

// checkRequirementTargets verifies that a resolved type's requirement
// definitions reference known types. A bad reference does not abort:
// the requirement simply cannot bind, and every other node still gets
// validated.
func (b *Builder) checkRequirementTargets(rt *hierarchy.ResolvedType, diags *diagnostic.Diagnostics) {
	if rt.Definition.Kind != tosca.KindNodeType {
		return
	}

	for _, req := range rt.Requirements {
		if req.Node != "" && !b.registry.Has(req.Node) {
			diags.AddError(diagnostic.CodeUnknownType,
				fmt.Sprintf("requirement %q targets unknown node type %q", req.Name, req.Node),
				rt.Name, req.Name)
		}

		if req.Capability != "" && !b.registry.Has(req.Capability) {
			diags.AddError(diagnostic.CodeUnknownType,
				fmt.Sprintf("requirement %q targets unknown capability type %q", req.Name, req.Capability),
				rt.Name, req.Name)
		}
	}
}

// Build constructs the topology from node template specs. The first
// pass resolves and validates every node, the second binds
// requirements, and a final verification pass checks the bindings.
func (b *Builder) Build(specs []tosca.NodeTemplateSpec) (*Topology, *diagnostic.Diagnostics, error) {
	diags := &diagnostic.Diagnostics{}
	topo := &Topology{Nodes: make(map[string]*Node, len(specs))}

	var (
		ordered  []*Node
		specsFor = make(map[string]*tosca.NodeTemplateSpec, len(specs))
	)

	for i := range specs {
		spec := &specs[i]

		if _, exists := topo.Nodes[spec.Name]; exists {
			diags.AddError(diagnostic.CodeDuplicateNodeTemplate,
				fmt.Sprintf("node template %q is defined more than once", spec.Name),
				spec.Name, "")

			continue
		}

		node, err := b.buildNode(spec, diags)
		if err != nil {
			return nil, diags, err
		}

		topo.Nodes[spec.Name] = node
		specsFor[spec.Name] = spec
		ordered = append(ordered, node)
	}

	candidates := make([]match.Candidate, 0, len(ordered))
	for _, node := range ordered {
		candidates = append(candidates, match.Candidate{Name: node.Name, Type: node.Type})
	}

	for _, node := range ordered {
		b.bindRequirements(specsFor[node.Name], node, candidates, topo, diags)
	}

	b.verifyBindings(topo, diags)

	return topo, diags, nil
}

// buildNode resolves one template's type and validates its assigned
// values. Resolution failures are fatal; validation problems are
// collected.
func (b *Builder) buildNode(spec *tosca.NodeTemplateSpec, diags *diagnostic.Diagnostics) (*Node, error) {
	rt, err := b.resolver.Resolve(spec.Type)
	if err != nil {
		return nil, fmt.Errorf("node template %q: %w", spec.Name, err)
	}

	diags.Merge(*b.validator.Validate(spec.Name, spec.Properties, rt.Properties))
	diags.Merge(*b.validator.ValidateShapes(spec.Name, spec.Attributes, rt.Attributes))

	b.validateCapabilityAssignments(spec, rt, diags)

	return &Node{
		Name:       spec.Name,
		Type:       rt,
		Properties: schema.ApplyDefaults(spec.Properties, rt.Properties),
		Attributes: spec.Attributes,
	}, nil
}

// validateCapabilityAssignments checks template-level capability
// property assignments against the capability's merged schema.
func (b *Builder) validateCapabilityAssignments(spec *tosca.NodeTemplateSpec, rt *hierarchy.ResolvedType, diags *diagnostic.Diagnostics) {
	for _, capName := range common.SortedKeys(spec.Capabilities) {
		capDef, declared := rt.Capabilities[capName]
		if !declared {
			diags.AddError(diagnostic.CodeUnknownProperty,
				fmt.Sprintf("capability %q is not declared by type %q", capName, rt.Name),
				spec.Name, capName)

			continue
		}

		schemas, err := b.resolver.CapabilitySchema(capDef)
		if err != nil {
			diags.AddError(diagnostic.CodeUnknownType,
				fmt.Sprintf("capability %q references unknown capability type %q", capName, capDef.Type),
				spec.Name, capName)

			continue
		}

		diags.Merge(*b.validator.Validate(
			spec.Name+".capabilities."+capName, spec.Capabilities[capName], schemas))
	}
}

// bindRequirements binds every resolved requirement of one node, using
// template assignments where given and candidate search otherwise.
func (b *Builder) bindRequirements(spec *tosca.NodeTemplateSpec, node *Node, candidates []match.Candidate, topo *Topology, diags *diagnostic.Diagnostics) {
	assignmentsByName := make(map[string][]tosca.RequirementAssignment)
	for _, a := range spec.Requirements {
		assignmentsByName[a.Name] = append(assignmentsByName[a.Name], a)
	}

	declared := make(map[string]struct{}, len(node.Type.Requirements))

	for _, req := range node.Type.Requirements {
		declared[req.Name] = struct{}{}

		assignments := assignmentsByName[req.Name]

		if len(assignments) == 0 {
			if req.Occurrences.Min == 0 {
				// Optional and unassigned, e.g. the root dependency
				// requirement: nothing to bind.
				continue
			}

			b.bindBySearch(node, req, tosca.RequirementAssignment{Name: req.Name}, candidates, topo, diags)

			continue
		}

		for _, assignment := range assignments {
			b.bindAssignment(node, req, assignment, candidates, topo, diags)
		}
	}

	for _, a := range spec.Requirements {
		if _, ok := declared[a.Name]; !ok {
			diags.AddError(diagnostic.CodeUnknownField,
				fmt.Sprintf("requirement %q is not declared by type %q", a.Name, node.Type.Name),
				spec.Name, a.Name)
		}
	}
}

// effectiveRequirement narrows the type-level requirement definition
// with a template-level assignment.
func effectiveRequirement(req tosca.RequirementDefinition, assignment tosca.RequirementAssignment) match.Requirement {
	effective := match.Requirement{
		Name:           req.Name,
		NodeType:       req.Node,
		CapabilityType: req.Capability,
	}

	if assignment.Capability != "" {
		effective.CapabilityType = assignment.Capability
	}

	return effective
}

func effectiveRelationship(req tosca.RequirementDefinition, assignment tosca.RequirementAssignment) string {
	if assignment.Relationship != "" {
		return assignment.Relationship
	}

	return req.Relationship
}

// bindAssignment binds one template-level requirement assignment:
// explicitly when the assignment names a node template, by narrowed
// search when it names a node type, and by plain search otherwise.
func (b *Builder) bindAssignment(node *Node, req tosca.RequirementDefinition, assignment tosca.RequirementAssignment, candidates []match.Candidate, topo *Topology, diags *diagnostic.Diagnostics) {
	if assignment.Node == "" {
		b.bindBySearch(node, req, assignment, candidates, topo, diags)
		return
	}

	if target, ok := topo.Nodes[assignment.Node]; ok {
		b.bindExplicit(node, req, assignment, target, topo, diags)
		return
	}

	if b.registry.Has(assignment.Node) {
		narrowed := req
		narrowed.Node = assignment.Node
		b.bindBySearch(node, narrowed, assignment, candidates, topo, diags)

		return
	}

	diags.AddError(diagnostic.CodeUnsatisfiedRequirement,
		fmt.Sprintf("requirement %q names target %q, which is neither a node template nor a known type",
			req.Name, assignment.Node),
		node.Name, req.Name)
}

// bindExplicit verifies that an explicitly named target satisfies the
// requirement and records the edge.
func (b *Builder) bindExplicit(node *Node, req tosca.RequirementDefinition, assignment tosca.RequirementAssignment, target *Node, topo *Topology, diags *diagnostic.Diagnostics) {
	effective := effectiveRequirement(req, assignment)

	capDef, ok, err := b.matcher.SatisfyingCapability(effective, match.Candidate{Name: target.Name, Type: target.Type})
	if err != nil || !ok {
		diags.AddError(diagnostic.CodeUnsatisfiedRequirement,
			fmt.Sprintf("node template %q does not satisfy requirement %q (need node %s with capability %s)",
				target.Name, req.Name, orAny(effective.NodeType), orAny(effective.CapabilityType)),
			node.Name, req.Name)

		return
	}

	topo.Edges = append(topo.Edges, Edge{
		Source:         node.Name,
		Target:         target.Name,
		Requirement:    req.Name,
		CapabilityName: capDef.Name,
		CapabilityType: capDef.Type,
		Relationship:   effectiveRelationship(req, assignment),
	})
}

// bindBySearch searches the whole topology for satisfying candidates.
// No candidate with a positive occurrence minimum is an unsatisfied
// requirement; several candidates for a single-occurrence requirement
// are ambiguous and never resolved by arbitrary choice.
func (b *Builder) bindBySearch(node *Node, req tosca.RequirementDefinition, assignment tosca.RequirementAssignment, candidates []match.Candidate, topo *Topology, diags *diagnostic.Diagnostics) {
	effective := effectiveRequirement(req, assignment)

	others := make([]match.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Name != node.Name {
			others = append(others, c)
		}
	}

	matches, err := b.matcher.Candidates(effective, others)
	if err != nil {
		diags.AddError(diagnostic.CodeUnknownType, err.Error(), node.Name, req.Name)
		return
	}

	if common.IsEmpty(matches) {
		if req.Occurrences.Min > 0 {
			diags.AddError(diagnostic.CodeUnsatisfiedRequirement,
				fmt.Sprintf("no node template satisfies requirement %q (need node %s with capability %s)",
					req.Name, orAny(effective.NodeType), orAny(effective.CapabilityType)),
				node.Name, req.Name)
		}

		return
	}

	single := !req.Occurrences.Unbounded && req.Occurrences.Max <= 1

	if single && common.IsMultiple(matches) {
		names := make([]string, 0, len(matches))
		for _, m := range matches {
			names = append(names, m.Candidate.Name)
		}

		diags.AddError(diagnostic.CodeAmbiguousRequirement,
			fmt.Sprintf("requirement %q is satisfiable by several node templates (%s); name one explicitly",
				req.Name, strings.Join(names, ", ")),
			node.Name, req.Name)

		return
	}

	if single {
		matches = matches[:1]
	}

	for _, m := range matches {
		topo.Edges = append(topo.Edges, Edge{
			Source:         node.Name,
			Target:         m.Candidate.Name,
			Requirement:    req.Name,
			CapabilityName: m.Capability.Name,
			CapabilityType: m.Capability.Type,
			Relationship:   effectiveRelationship(req, assignment),
		})
	}
}

// verifyBindings is the second pass over completed bindings: every
// edge's relationship type must be known and every target must still
// be part of the topology.
func (b *Builder) verifyBindings(topo *Topology, diags *diagnostic.Diagnostics) {
	for _, e := range topo.Edges {
		if e.Relationship != "" && !b.registry.Has(e.Relationship) {
			diags.AddError(diagnostic.CodeUnknownRelationshipType,
				fmt.Sprintf("requirement %q is bound over unknown relationship type %q",
					e.Requirement, e.Relationship),
				e.Source, e.Requirement)
		}

		if _, ok := topo.Nodes[e.Target]; !ok {
			diags.AddError(diagnostic.CodeUnsatisfiedRequirement,
				fmt.Sprintf("requirement %q is bound to %q, which is not part of the topology",
					e.Requirement, e.Target),
				e.Source, e.Requirement)
		}
	}
}

func orAny(typeName string) string {
	if typeName == "" {
		return "<any>"
	}

	return typeName
}
