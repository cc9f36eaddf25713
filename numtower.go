package numtower

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/mfield/numtower/internal/canonical"
)

// TypeHandle is an immutable record of a concrete type's declared primitive
// implementations. Handles are created by Declare and thereafter read-only;
// claiming capabilities against one handle from any number of goroutines
// needs no synchronization.
type TypeHandle struct {
	id          string
	declared    map[Op]Implementation
	fingerprint string
}

// Declare registers a concrete type's primitive implementations and returns
// a handle for claiming capabilities. Every name must be in the catalog and
// carry a non-nil implementation. The map is copied; later mutation of the
// caller's map has no effect on the handle.
func Declare(impls map[string]Implementation) (*TypeHandle, error) {
	declared := make(map[Op]Implementation, len(impls))
	for name, impl := range impls {
		op := Op(name)
		if !KnownOp(op) {
			return nil, &UnknownPrimitiveError{Name: name}
		}
		if impl == nil {
			return nil, fmt.Errorf("declare: primitive %q has nil implementation", name)
		}
		declared[op] = impl
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("declare: generate handle id: %w", err)
	}

	fingerprint, err := declarationFingerprint(declared)
	if err != nil {
		return nil, fmt.Errorf("declare: %w", err)
	}

	return &TypeHandle{
		id:          id.String(),
		declared:    declared,
		fingerprint: fingerprint,
	}, nil
}

// ID returns the handle's unique identity (uuid v7).
func (h *TypeHandle) ID() string {
	return h.id
}

// Declared returns the declared primitive names in catalog order.
func (h *TypeHandle) Declared() []Op {
	ops := make([]Op, 0, len(h.declared))
	for op := range h.declared {
		ops = append(ops, op)
	}
	sortOps(ops)
	return ops
}

// Fingerprint returns the content-addressed identity of the declared
// primitive set. Two handles declaring the same names share a fingerprint
// even though their IDs differ.
func (h *TypeHandle) Fingerprint() string {
	return h.fingerprint
}

// Claim resolves the requested capabilities against the builtin tower.
// On success every operation the capabilities entail is bound, primitive or
// derived; on failure the error is a *MissingCapabilityError naming the
// exact unresolvable primitive set. Claiming twice with the same inputs
// yields structurally identical descriptors.
func Claim(h *TypeHandle, capabilities ...string) (*TypeDescriptor, error) {
	return ClaimWith(defaultRegistry, defaultLibrary, h, capabilities...)
}

// ClaimWith is Claim against a custom registry and derivation library,
// such as one loaded from CUE specs.
func ClaimWith(reg *Registry, lib *Library, h *TypeHandle, capabilities ...string) (*TypeDescriptor, error) {
	resolver := NewResolver(reg, lib)
	return resolver.Compose(h.id, h.declared, capabilities)
}

// declarationFingerprint hashes the sorted declared primitive names.
func declarationFingerprint(declared map[Op]Implementation) (string, error) {
	names := make([]Op, 0, len(declared))
	for op := range declared {
		names = append(names, op)
	}
	sortOps(names)
	list := make([]any, len(names))
	for i, op := range names {
		list[i] = string(op)
	}
	data, err := canonical.Marshal(map[string]any{"primitives": list})
	if err != nil {
		return "", err
	}
	return canonical.HashWithDomain(canonical.DomainDeclaration, data), nil
}
