package numtower

// Binding ties one operation name to a concrete implementation, recording
// whether it was declared as a primitive or synthesized by a rule.
type Binding struct {
	Op      Op
	Impl    Implementation
	Derived bool
	Rule    string // rule formula for derived bindings
	Origin  string // capability the rule came from, empty for declared
}

// ConformanceResult is the outcome of checking a declared primitive set
// against a required operation set. Exactly one of the two shapes holds:
// Satisfied with every required operation bound, or a non-empty Missing set
// naming each primitive that is neither declared nor derivable.
type ConformanceResult struct {
	Satisfied bool
	Resolved  map[Op]Binding
	Missing   []Op // catalog order
}

// Checker validates declared primitive sets against capability requirements.
// It is a pure query over an immutable registry and library; concurrent
// checks share nothing.
type Checker struct {
	reg *Registry
	lib *Library
}

// NewChecker builds a checker over a registry and derivation library.
func NewChecker(reg *Registry, lib *Library) *Checker {
	return &Checker{reg: reg, lib: lib}
}

// Check resolves a single capability against declared primitives.
func (c *Checker) Check(declared map[Op]Implementation, capability string) (*ConformanceResult, error) {
	required, err := c.reg.RequiredPrimitives(capability)
	if err != nil {
		return nil, err
	}
	return c.checkRequired(declared, required), nil
}

// checkRequired resolves an already-merged requirement set.
//
// The available set starts as the full declared set: a declared primitive
// outside the requirements can still feed a derivation (neg feeding rsub,
// for example). Derivation then iterates to a fixed point: each pass walks
// the catalog in order and binds every operation whose best usable rule has
// all dependencies available. A derived operation becomes available to later
// rules, so chains like lt→gt→ge resolve across passes. Termination is
// bounded by the catalog size; each pass either binds something or stops.
func (c *Checker) checkRequired(declared map[Op]Implementation, required []Op) *ConformanceResult {
	available := make(map[Op]Implementation, len(declared))
	for op, impl := range declared {
		available[op] = impl
	}

	requiredSet := make(map[Op]bool, len(required))
	for _, op := range required {
		requiredSet[op] = true
	}

	resolved := make(map[Op]Binding, len(required))
	for _, op := range required {
		if impl, ok := declared[op]; ok {
			resolved[op] = Binding{Op: op, Impl: impl}
		}
	}

	derivedMeta := make(map[Op]Rule)
	for progress := true; progress; {
		progress = false
		for _, prim := range Catalog {
			op := prim.Name
			if _, ok := available[op]; ok {
				continue
			}
			for _, rule := range c.lib.DerivationsFor(op) {
				deps, ok := gatherDeps(rule, available)
				if !ok {
					continue
				}
				available[op] = rule.Build(deps)
				derivedMeta[op] = rule
				progress = true
				break
			}
		}
	}

	var missing []Op
	for _, op := range required {
		if _, ok := resolved[op]; ok {
			continue
		}
		if impl, ok := available[op]; ok {
			rule := derivedMeta[op]
			resolved[op] = Binding{
				Op:      op,
				Impl:    impl,
				Derived: true,
				Rule:    rule.Desc,
				Origin:  rule.Origin,
			}
			continue
		}
		missing = append(missing, op)
	}
	sortOps(missing)

	if len(missing) > 0 {
		return &ConformanceResult{Missing: missing}
	}
	return &ConformanceResult{Satisfied: true, Resolved: resolved}
}

// gatherDeps collects a rule's dependencies from the available set.
func gatherDeps(rule Rule, available map[Op]Implementation) (map[Op]Implementation, bool) {
	deps := make(map[Op]Implementation, len(rule.Needs))
	for _, need := range rule.Needs {
		impl, ok := available[need]
		if !ok {
			return nil, false
		}
		deps[need] = impl
	}
	return deps, true
}
