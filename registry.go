package numtower

import (
	"fmt"
)

// Registry is an immutable capability graph. It is built once, validates
// itself during construction, and is safe for unsynchronized concurrent
// reads afterwards.
type Registry struct {
	defs    map[string]CapabilityDef
	order   []string        // declaration order
	closure map[string][]Op // transitive primitive closure, catalog order
	depth   map[string]int  // distance from the farthest root
}

// NewRegistry builds a registry from capability definitions.
//
// Construction rejects:
//   - duplicate capability names
//   - primitives outside the catalog (*UnknownPrimitiveError)
//   - parents that are not defined (*UnknownCapabilityError)
//   - cycles in the parent graph (*CyclicCapabilityError)
//   - an own primitive that any ancestor already requires
//
// All of these are authoring defects. For the builtin tower they are caught
// by the package self-check at init; a custom registry surfaces them to the
// caller before anything can claim against it.
func NewRegistry(defs []CapabilityDef) (*Registry, error) {
	r := &Registry{
		defs:    make(map[string]CapabilityDef, len(defs)),
		order:   make([]string, 0, len(defs)),
		closure: make(map[string][]Op, len(defs)),
		depth:   make(map[string]int, len(defs)),
	}

	for _, def := range defs {
		if _, dup := r.defs[def.Name]; dup {
			return nil, fmt.Errorf("capability %q defined twice", def.Name)
		}
		seen := make(map[Op]bool, len(def.Own))
		for _, op := range def.Own {
			if !KnownOp(op) {
				return nil, &UnknownPrimitiveError{Name: string(op)}
			}
			if seen[op] {
				return nil, fmt.Errorf("capability %q lists primitive %q twice", def.Name, op)
			}
			seen[op] = true
		}
		r.defs[def.Name] = def
		r.order = append(r.order, def.Name)
	}

	for _, def := range defs {
		for _, parent := range def.Parents {
			if _, ok := r.defs[parent]; !ok {
				return nil, &UnknownCapabilityError{Name: parent}
			}
		}
	}

	if cycle := r.findCycle(); cycle != nil {
		return nil, &CyclicCapabilityError{Cycle: cycle}
	}

	// Acyclic from here on: closures and depths are well defined.
	for _, name := range r.order {
		set := make(map[Op]bool)
		r.collectRequired(name, set)
		r.closure[name] = opSetToSorted(set)
		r.depth[name] = r.computeDepth(name)
	}

	// An own primitive must be new at its level, not a repeat of something
	// an ancestor already requires.
	for _, name := range r.order {
		inherited := make(map[Op]bool)
		for _, parent := range r.defs[name].Parents {
			for _, op := range r.closure[parent] {
				inherited[op] = true
			}
		}
		for _, op := range r.defs[name].Own {
			if inherited[op] {
				return nil, fmt.Errorf("capability %q re-declares inherited primitive %q", name, op)
			}
		}
	}

	return r, nil
}

// MustRegistry is like NewRegistry but panics on authoring defects.
// Use only for graphs fixed at compile time.
func MustRegistry(defs []CapabilityDef) *Registry {
	r, err := NewRegistry(defs)
	if err != nil {
		panic(fmt.Sprintf("numtower: invalid capability registry: %v", err))
	}
	return r
}

// visit states for the cycle walk.
const (
	unvisited = iota
	visiting
	done
)

// findCycle runs a depth-first walk over the parent graph with a "visiting"
// marker. It returns the first cycle path found (entry node repeated at the
// end), or nil for an acyclic graph.
func (r *Registry) findCycle() []string {
	state := make(map[string]int, len(r.defs))
	var stack []string
	var cycle []string

	var walk func(name string) bool
	walk = func(name string) bool {
		state[name] = visiting
		stack = append(stack, name)

		for _, parent := range r.defs[name].Parents {
			switch state[parent] {
			case visiting:
				// Found the back edge; slice the current stack from the
				// first occurrence of parent and close the loop.
				for i, n := range stack {
					if n == parent {
						cycle = append(append([]string{}, stack[i:]...), parent)
						return true
					}
				}
			case unvisited:
				if walk(parent) {
					return true
				}
			}
		}

		stack = stack[:len(stack)-1]
		state[name] = done
		return false
	}

	for _, name := range r.order {
		if state[name] == unvisited {
			if walk(name) {
				return cycle
			}
		}
	}
	return nil
}

// collectRequired accumulates the primitive closure of a capability into set.
// Shared ancestors reached through several paths contribute once; the set
// union makes double-counting impossible.
func (r *Registry) collectRequired(name string, set map[Op]bool) {
	def := r.defs[name]
	for _, op := range def.Own {
		set[op] = true
	}
	for _, parent := range def.Parents {
		r.collectRequired(parent, set)
	}
}

// computeDepth returns the longest parent chain above a capability.
// Roots have depth 0. Depth orders derivation-rule precedence: a rule
// introduced closer to the leaf wins over an ancestor's generic rule.
func (r *Registry) computeDepth(name string) int {
	if d, ok := r.depth[name]; ok {
		return d
	}
	max := 0
	for _, parent := range r.defs[name].Parents {
		if d := r.computeDepth(parent) + 1; d > max {
			max = d
		}
	}
	return max
}

// Has returns true if the registry defines the capability.
func (r *Registry) Has(name string) bool {
	_, ok := r.defs[name]
	return ok
}

// Capabilities returns all capability names in declaration order.
func (r *Registry) Capabilities() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// RequiredPrimitives returns the transitive primitive closure of a
// capability in catalog order. The closure is computed once at construction;
// callers receive a copy.
func (r *Registry) RequiredPrimitives(name string) ([]Op, error) {
	ops, ok := r.closure[name]
	if !ok {
		return nil, &UnknownCapabilityError{Name: name}
	}
	out := make([]Op, len(ops))
	copy(out, ops)
	return out, nil
}

// OwnPrimitives returns the primitives newly introduced by a capability.
func (r *Registry) OwnPrimitives(name string) ([]Op, error) {
	def, ok := r.defs[name]
	if !ok {
		return nil, &UnknownCapabilityError{Name: name}
	}
	out := make([]Op, len(def.Own))
	copy(out, def.Own)
	return out, nil
}

// Parents returns the direct parents of a capability.
func (r *Registry) Parents(name string) ([]string, error) {
	def, ok := r.defs[name]
	if !ok {
		return nil, &UnknownCapabilityError{Name: name}
	}
	out := make([]string, len(def.Parents))
	copy(out, def.Parents)
	return out, nil
}

// IsAncestor reports whether a is reachable from b through parent edges.
// A capability is not its own ancestor.
func (r *Registry) IsAncestor(a, b string) (bool, error) {
	if !r.Has(a) {
		return false, &UnknownCapabilityError{Name: a}
	}
	def, ok := r.defs[b]
	if !ok {
		return false, &UnknownCapabilityError{Name: b}
	}
	for _, parent := range def.Parents {
		if parent == a {
			return true, nil
		}
		if anc, err := r.IsAncestor(a, parent); err != nil {
			return false, err
		} else if anc {
			return true, nil
		}
	}
	return false, nil
}

// Depth returns the longest parent chain above a capability, 0 for roots
// and for unknown names.
func (r *Registry) Depth(name string) int {
	return r.depth[name]
}

// defaultRegistry is the builtin numeric tower, validated at init.
var defaultRegistry = MustRegistry(BuiltinTower())

// DefaultRegistry returns the builtin numeric-tower registry.
func DefaultRegistry() *Registry {
	return defaultRegistry
}
