package numtower

import (
	"fmt"
	"sort"

	"github.com/mfield/numtower/internal/canonical"
)

// TypeDescriptor is the resolved operation table for one concrete type and
// one claimed capability set. It is immutable after composition: every
// operation it exposes is present and bound, so no missing-operation failure
// can occur during later use.
type TypeDescriptor struct {
	handleID     string
	capabilities []string // sorted
	ops          map[Op]Binding
	fingerprint  string
}

// HandleID returns the identity of the handle the descriptor was composed for.
func (d *TypeDescriptor) HandleID() string {
	return d.handleID
}

// Capabilities returns the claimed capability names, sorted.
func (d *TypeDescriptor) Capabilities() []string {
	out := make([]string, len(d.capabilities))
	copy(out, d.capabilities)
	return out
}

// Operations returns every bound operation name in catalog order.
func (d *TypeDescriptor) Operations() []Op {
	ops := make([]Op, 0, len(d.ops))
	for op := range d.ops {
		ops = append(ops, op)
	}
	sortOps(ops)
	return ops
}

// Operation returns the implementation bound to an operation name, whether
// primitive or derived. Collaborators use this instead of re-deriving.
func (d *TypeDescriptor) Operation(name string) (Implementation, error) {
	binding, ok := d.ops[Op(name)]
	if !ok {
		return nil, &UnknownOperationError{Name: name}
	}
	return binding.Impl, nil
}

// Binding returns the full binding record for an operation name.
func (d *TypeDescriptor) Binding(name string) (Binding, bool) {
	binding, ok := d.ops[Op(name)]
	return binding, ok
}

// IsDerived reports whether an operation was synthesized rather than
// declared. False for unknown names.
func (d *TypeDescriptor) IsDerived(name string) bool {
	return d.ops[Op(name)].Derived
}

// Fingerprint returns the content-addressed identity of the descriptor.
// Two compositions of the same declared set and capability set always carry
// the same fingerprint.
func (d *TypeDescriptor) Fingerprint() string {
	return d.fingerprint
}

// Resolver merges requested capabilities into a single requirement set and
// composes type descriptors. Composition is a pure function of its inputs:
// it allocates an independent result and never mutates shared state, so
// concurrent compositions need no coordination.
type Resolver struct {
	reg     *Registry
	lib     *Library
	checker *Checker
}

// NewResolver builds a resolver over a registry and derivation library.
func NewResolver(reg *Registry, lib *Library) *Resolver {
	return &Resolver{reg: reg, lib: lib, checker: NewChecker(reg, lib)}
}

// Compose expands the requested capabilities against the registry, merges
// their primitive closures without duplicates, and runs one conformance
// check against the merged set.
//
// Binding precedence is deterministic and total:
//  1. a declared primitive always wins over any derived binding
//  2. among rules, the deeper origin capability wins
//  3. remaining ties break by rule declaration order
//
// Rules 2 and 3 are baked into the library's rule ordering, so composition
// itself only ever sees one winning rule per operation.
func (r *Resolver) Compose(handleID string, declared map[Op]Implementation, capabilities []string) (*TypeDescriptor, error) {
	if len(capabilities) == 0 {
		return nil, fmt.Errorf("no capabilities requested")
	}

	requested := make([]string, 0, len(capabilities))
	seen := make(map[string]bool, len(capabilities))
	merged := make(map[Op]bool)
	for _, name := range capabilities {
		if seen[name] {
			continue
		}
		seen[name] = true
		requested = append(requested, name)

		ops, err := r.reg.RequiredPrimitives(name)
		if err != nil {
			return nil, err
		}
		for _, op := range ops {
			merged[op] = true
		}
	}
	sort.Strings(requested)
	required := opSetToSorted(merged)

	result := r.checker.checkRequired(declared, required)
	if !result.Satisfied {
		return nil, &MissingCapabilityError{Capabilities: requested, Missing: result.Missing}
	}

	fingerprint, err := descriptorFingerprint(declared, requested, result.Resolved)
	if err != nil {
		return nil, fmt.Errorf("compose: %w", err)
	}

	return &TypeDescriptor{
		handleID:     handleID,
		capabilities: requested,
		ops:          result.Resolved,
		fingerprint:  fingerprint,
	}, nil
}

// descriptorFingerprint hashes the structure of a resolved descriptor:
// the declared primitive names, the claimed capabilities, and for each bound
// operation whether it is derived and by which rule. Implementations are
// opaque funcs and deliberately excluded; identity is structural.
func descriptorFingerprint(declared map[Op]Implementation, capabilities []string, resolved map[Op]Binding) (string, error) {
	declaredNames := make([]Op, 0, len(declared))
	for op := range declared {
		declaredNames = append(declaredNames, op)
	}
	sortOps(declaredNames)
	declaredList := make([]any, len(declaredNames))
	for i, op := range declaredNames {
		declaredList[i] = string(op)
	}

	capList := make([]any, len(capabilities))
	for i, name := range capabilities {
		capList[i] = name
	}

	resolvedNames := make([]Op, 0, len(resolved))
	for op := range resolved {
		resolvedNames = append(resolvedNames, op)
	}
	sortOps(resolvedNames)
	opsList := make([]any, len(resolvedNames))
	for i, op := range resolvedNames {
		binding := resolved[op]
		opsList[i] = map[string]any{
			"name":    string(op),
			"derived": binding.Derived,
			"rule":    binding.Rule,
			"origin":  binding.Origin,
		}
	}

	data, err := canonical.Marshal(map[string]any{
		"declared":     declaredList,
		"capabilities": capList,
		"ops":          opsList,
	})
	if err != nil {
		return "", err
	}
	return canonical.HashWithDomain(canonical.DomainDescriptor, data), nil
}
