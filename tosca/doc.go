// Package tosca holds the raw TOSCA simple-profile definition model and
// builds it from generic loaded documents.
//
// Key capabilities:
//   - Section-level validation of a service template document
//   - Node/capability/relationship/data type definitions with
//     derived_from references, property schemas, and requirements
//   - Node template specs from the topology_template section
//   - The built-in normative type catalog
//
// Nothing here resolves inheritance or binds requirements; that is the
// business of the registry, hierarchy, and graph packages.
package tosca
