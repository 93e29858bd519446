// Package document models the generic nested documents produced by a
// YAML or JSON loader as a closed tagged-value variant.
//
// The engine never inspects raw interface{} trees: everything coming
// from a loader is converted once into Value, so downstream
// type-matching logic can be exhaustive over Kind.
package document
