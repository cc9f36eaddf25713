// Package cueload loads capability towers authored as CUE specs.
//
// A tower spec is a directory of .cue files (one CUE package) declaring
// capabilities:
//
//	package tower
//
//	capability: {
//		Orderable: {
//			parents: []
//			own: ["lt", "le", "gt", "ge"]
//		}
//		Comparable: {
//			parents: ["Orderable"]
//			own: ["eq", "ne"]
//		}
//	}
//
// Loading only parses the declarations; structural validation (unknown
// primitives, unknown parents, cycles, re-declared inherited primitives)
// happens when the definitions are handed to numtower.NewRegistry.
package cueload

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/mfield/numtower"
)

// CompileCapability parses a CUE value into a capability definition.
//
// The CUE value should be the capability struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`capability: Orderable: { own: ["lt"] }`)
//	def, err := CompileCapability(v.LookupPath(cue.ParsePath("capability.Orderable")))
func CompileCapability(v cue.Value) (*numtower.CapabilityDef, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	def := &numtower.CapabilityDef{}

	// Capability name comes from the struct label (the path selector).
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		def.Name = labels[len(labels)-1].String()
	}

	// Parents are optional; roots omit them.
	parentsVal := v.LookupPath(cue.ParsePath("parents"))
	if parentsVal.Exists() {
		iter, err := parentsVal.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			parent, err := iter.Value().String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			def.Parents = append(def.Parents, parent)
		}
	}

	// Own primitives are required: a capability that adds nothing beyond
	// its parents has no reason to exist as a separate level.
	ownVal := v.LookupPath(cue.ParsePath("own"))
	if !ownVal.Exists() {
		return nil, &CompileError{
			Field:   "own",
			Message: fmt.Sprintf("capability %q: own primitives are required", def.Name),
			Pos:     v.Pos(),
		}
	}
	ownIter, err := ownVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for ownIter.Next() {
		name, err := ownIter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		if !numtower.KnownOp(numtower.Op(name)) {
			return nil, &CompileError{
				Field:   "own",
				Message: fmt.Sprintf("capability %q: unknown primitive %q", def.Name, name),
				Pos:     ownIter.Value().Pos(),
			}
		}
		def.Own = append(def.Own, numtower.Op(name))
	}
	if len(def.Own) == 0 {
		return nil, &CompileError{
			Field:   "own",
			Message: fmt.Sprintf("capability %q: at least one own primitive is required", def.Name),
			Pos:     v.Pos(),
		}
	}

	return def, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
