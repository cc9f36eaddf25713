package numtower

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode categorizes structural failures.
type ErrorCode string

const (
	// CodeMissingCapability indicates a claim could not be satisfied.
	CodeMissingCapability ErrorCode = "MISSING_CAPABILITY"

	// CodeCyclicCapability indicates the capability graph contains a cycle.
	// This is an authoring defect, surfaced only at registry construction.
	CodeCyclicCapability ErrorCode = "CYCLIC_CAPABILITY"

	// CodeAmbiguousDerivation indicates two derivation rules are
	// indistinguishable. Also an authoring defect, surfaced only when a
	// mixin library is built.
	CodeAmbiguousDerivation ErrorCode = "AMBIGUOUS_DERIVATION"

	// CodeUnknownCapability indicates a capability name outside the registry.
	CodeUnknownCapability ErrorCode = "UNKNOWN_CAPABILITY"

	// CodeUnknownPrimitive indicates a primitive name outside the catalog.
	CodeUnknownPrimitive ErrorCode = "UNKNOWN_PRIMITIVE"

	// CodeUnknownOperation indicates an operation lookup on a descriptor
	// for a name the descriptor does not bind.
	CodeUnknownOperation ErrorCode = "UNKNOWN_OPERATION"
)

// MissingCapabilityError reports a failed claim. It always names the exact
// primitives that were neither declared nor derivable.
type MissingCapabilityError struct {
	// Capabilities is the requested capability set, sorted.
	Capabilities []string

	// Missing is the unresolved primitive set, in catalog order.
	Missing []Op
}

func (e *MissingCapabilityError) Error() string {
	missing := make([]string, len(e.Missing))
	for i, op := range e.Missing {
		missing[i] = string(op)
	}
	return fmt.Sprintf("%s: claim %s: missing primitives [%s]",
		CodeMissingCapability,
		strings.Join(e.Capabilities, ", "),
		strings.Join(missing, ", "))
}

// CyclicCapabilityError reports a cycle in a capability graph.
// The cycle path repeats the entry node, e.g. [A, B, A].
type CyclicCapabilityError struct {
	Cycle []string
}

func (e *CyclicCapabilityError) Error() string {
	return fmt.Sprintf("%s: %s", CodeCyclicCapability, strings.Join(e.Cycle, " -> "))
}

// AmbiguousDerivationError reports two derivation rules for the same target
// that no precedence tiebreak can distinguish.
type AmbiguousDerivationError struct {
	Target Op
	Rules  []string
}

func (e *AmbiguousDerivationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", CodeAmbiguousDerivation, e.Target, strings.Join(e.Rules, " vs "))
}

// UnknownCapabilityError reports a capability name the registry does not define.
type UnknownCapabilityError struct {
	Name string
}

func (e *UnknownCapabilityError) Error() string {
	return fmt.Sprintf("%s: %q", CodeUnknownCapability, e.Name)
}

// UnknownPrimitiveError reports a primitive name outside the catalog.
type UnknownPrimitiveError struct {
	Name string
}

func (e *UnknownPrimitiveError) Error() string {
	return fmt.Sprintf("%s: %q", CodeUnknownPrimitive, e.Name)
}

// UnknownOperationError reports an operation lookup the descriptor cannot serve.
type UnknownOperationError struct {
	Name string
}

func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("%s: %q", CodeUnknownOperation, e.Name)
}

// IsMissingCapability returns true if the error is a failed claim.
// Uses errors.As to handle wrapped errors.
func IsMissingCapability(err error) bool {
	var me *MissingCapabilityError
	return errors.As(err, &me)
}

// IsCyclicCapability returns true if the error is a capability graph cycle.
// Uses errors.As to handle wrapped errors.
func IsCyclicCapability(err error) bool {
	var ce *CyclicCapabilityError
	return errors.As(err, &ce)
}

// IsUnknownCapability returns true if the error names an undefined capability.
func IsUnknownCapability(err error) bool {
	var ue *UnknownCapabilityError
	return errors.As(err, &ue)
}

// IsUnknownPrimitive returns true if the error names an undefined primitive.
func IsUnknownPrimitive(err error) bool {
	var ue *UnknownPrimitiveError
	return errors.As(err, &ue)
}
