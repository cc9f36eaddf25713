// Package numtower classifies numeric-like objects by capability.
//
// A concrete type (scalar, vector, sequence) declares the small
// set of primitive operations it implements and claims the capabilities
// relevant to its domain. The tower expands each capability into its
// transitive primitive requirements, fills gaps with derivation rules
// (not-equal from equal, greater-than from a swapped less-than, and so on),
// and hands back an immutable operation table. Everything the table exposes
// is guaranteed bound; all conformance failures surface at the single claim
// call.
//
// The capability graph is a DAG with a diamond at its heart: Real, Value and
// Sequence each depend on Comparable and Complex independently. Composition
// deduplicates primitives reached through multiple ancestor paths and
// resolves every binding deterministically: declared primitives beat
// derived ones, deeper rules beat ancestors' generic rules, declaration
// order breaks the rest.
//
// The package performs no numeric computation and does not verify the
// algebraic laws of declared primitives; it checks structural completeness
// only.
package numtower
