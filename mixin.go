package numtower

import (
	"fmt"
	"sort"
	"strings"
)

// Rule derives one non-primitive operation from operations already available
// on a type. Build receives a binding for every operation listed in Needs
// and returns the synthesized implementation.
type Rule struct {
	// Target is the operation this rule can synthesize.
	Target Op

	// Needs lists the operations the rule references. A rule is usable only
	// when every need is declared or already derived.
	Needs []Op

	// Origin is the capability that introduces Target. Rules from deeper
	// capabilities take precedence over ancestors' generic rules.
	Origin string

	// Desc is the rule formula, shown in conformance reports,
	// e.g. "le(a,b) := lt(a,b) or eq(a,b)".
	Desc string

	// Build synthesizes the implementation from resolved dependencies.
	Build func(deps map[Op]Implementation) Implementation
}

// Library is an immutable, ordered collection of derivation rules plus the
// explicit record of operations that must never be defaulted. Like the
// registry it is built once and is read-only afterwards; queries have no
// side effects.
type Library struct {
	rules        []Rule
	byTarget     map[Op][]int // rule indices per target, precedence order
	nonDerivable map[Op]string
}

// NewLibrary builds a derivation library against a registry.
//
// Rules for the same target are ordered by precedence at construction:
// deeper origin capability first, declaration order as the tiebreak. The
// ordering is total, so no ambiguity can survive to claim time; two rules
// that are literally indistinguishable (same target, same dependency set,
// same origin) are rejected here as an authoring defect.
func NewLibrary(reg *Registry, rules []Rule, nonDerivable map[Op]string) (*Library, error) {
	l := &Library{
		rules:        make([]Rule, len(rules)),
		byTarget:     make(map[Op][]int),
		nonDerivable: make(map[Op]string, len(nonDerivable)),
	}
	copy(l.rules, rules)

	for op, reason := range nonDerivable {
		if !KnownOp(op) {
			return nil, &UnknownPrimitiveError{Name: string(op)}
		}
		l.nonDerivable[op] = reason
	}

	signatures := make(map[string]string)
	for i, rule := range l.rules {
		if !KnownOp(rule.Target) {
			return nil, &UnknownPrimitiveError{Name: string(rule.Target)}
		}
		if reason, blocked := l.nonDerivable[rule.Target]; blocked {
			return nil, fmt.Errorf("rule for %q conflicts with non-derivable marker (%s)", rule.Target, reason)
		}
		if !reg.Has(rule.Origin) {
			return nil, &UnknownCapabilityError{Name: rule.Origin}
		}
		if rule.Build == nil {
			return nil, fmt.Errorf("rule for %q has no builder", rule.Target)
		}
		for _, need := range rule.Needs {
			if !KnownOp(need) {
				return nil, &UnknownPrimitiveError{Name: string(need)}
			}
			if need == rule.Target {
				return nil, fmt.Errorf("rule for %q depends on itself", rule.Target)
			}
		}

		sig := ruleSignature(rule)
		if prev, dup := signatures[sig]; dup {
			return nil, &AmbiguousDerivationError{
				Target: rule.Target,
				Rules:  []string{prev, rule.Desc},
			}
		}
		signatures[sig] = rule.Desc

		l.byTarget[rule.Target] = append(l.byTarget[rule.Target], i)
	}

	// Precedence sort per target: deeper origin first, then declaration
	// order. Indices are unique, so the order is total.
	for target, indices := range l.byTarget {
		sort.SliceStable(indices, func(a, b int) bool {
			da := reg.Depth(l.rules[indices[a]].Origin)
			db := reg.Depth(l.rules[indices[b]].Origin)
			if da != db {
				return da > db
			}
			return indices[a] < indices[b]
		})
		l.byTarget[target] = indices
	}

	return l, nil
}

// MustLibrary is like NewLibrary but panics on authoring defects.
func MustLibrary(reg *Registry, rules []Rule, nonDerivable map[Op]string) *Library {
	l, err := NewLibrary(reg, rules, nonDerivable)
	if err != nil {
		panic(fmt.Sprintf("numtower: invalid mixin library: %v", err))
	}
	return l
}

func ruleSignature(rule Rule) string {
	needs := make([]string, len(rule.Needs))
	for i, n := range rule.Needs {
		needs[i] = string(n)
	}
	sort.Strings(needs)
	return string(rule.Target) + "|" + rule.Origin + "|" + strings.Join(needs, ",")
}

// DerivationsFor returns the rules that can synthesize an operation, in
// precedence order. The returned slice is a copy.
func (l *Library) DerivationsFor(target Op) []Rule {
	indices := l.byTarget[target]
	rules := make([]Rule, len(indices))
	for i, idx := range indices {
		rules[i] = l.rules[idx]
	}
	return rules
}

// NonDerivable returns the recorded reason an operation must be supplied
// directly, if one exists.
func (l *Library) NonDerivable(target Op) (string, bool) {
	reason, ok := l.nonDerivable[target]
	return reason, ok
}

// IsDerivable reports whether target can be synthesized from the available
// operation set, following rule dependencies transitively. A rule is usable
// if every operation it references is available or itself derivable.
func (l *Library) IsDerivable(target Op, available map[Op]bool) bool {
	return l.derivable(target, available, make(map[Op]bool))
}

func (l *Library) derivable(target Op, available, visiting map[Op]bool) bool {
	if available[target] {
		return true
	}
	if visiting[target] {
		return false
	}
	visiting[target] = true
	defer delete(visiting, target)

	for _, idx := range l.byTarget[target] {
		usable := true
		for _, need := range l.rules[idx].Needs {
			if !l.derivable(need, available, visiting) {
				usable = false
				break
			}
		}
		if usable {
			return true
		}
	}
	return false
}

// BuiltinRules returns the derivation rules for the builtin tower.
//
// Reflected addition and multiplication default to an operand swap of the
// forward operation. That default assumes commutativity; a non-commutative
// type opts out by declaring the reflected primitive directly, which always
// wins over any rule.
func BuiltinRules() []Rule {
	return []Rule{
		{
			Target: OpLe, Needs: []Op{OpLt, OpEq}, Origin: CapOrderable,
			Desc: "le(a,b) := lt(a,b) or eq(a,b)",
			Build: func(deps map[Op]Implementation) Implementation {
				return logicalOr(OpLe, deps[OpLt], deps[OpEq])
			},
		},
		{
			Target: OpGt, Needs: []Op{OpLt}, Origin: CapOrderable,
			Desc: "gt(a,b) := lt(b,a)",
			Build: func(deps map[Op]Implementation) Implementation {
				return swapOperands(OpGt, deps[OpLt])
			},
		},
		{
			Target: OpGe, Needs: []Op{OpGt, OpEq}, Origin: CapOrderable,
			Desc: "ge(a,b) := gt(a,b) or eq(a,b)",
			Build: func(deps map[Op]Implementation) Implementation {
				return logicalOr(OpGe, deps[OpGt], deps[OpEq])
			},
		},
		{
			Target: OpGe, Needs: []Op{OpLt}, Origin: CapOrderable,
			Desc: "ge(a,b) := not lt(a,b)",
			Build: func(deps map[Op]Implementation) Implementation {
				return logicalNot(OpGe, deps[OpLt])
			},
		},
		{
			Target: OpNe, Needs: []Op{OpEq}, Origin: CapComparable,
			Desc: "ne(a,b) := not eq(a,b)",
			Build: func(deps map[Op]Implementation) Implementation {
				return logicalNot(OpNe, deps[OpEq])
			},
		},
		{
			Target: OpRAdd, Needs: []Op{OpAdd}, Origin: CapAdditive,
			Desc: "radd(a,b) := add(b,a)",
			Build: func(deps map[Op]Implementation) Implementation {
				return swapOperands(OpRAdd, deps[OpAdd])
			},
		},
		{
			Target: OpRSub, Needs: []Op{OpNeg, OpAdd}, Origin: CapAdditive,
			Desc: "rsub(a,b) := add(neg(a),b)",
			Build: func(deps map[Op]Implementation) Implementation {
				return negateThenAdd(OpRSub, deps[OpNeg], deps[OpAdd])
			},
		},
		{
			Target: OpRMul, Needs: []Op{OpMul}, Origin: CapMultiplicative,
			Desc: "rmul(a,b) := mul(b,a)",
			Build: func(deps map[Op]Implementation) Implementation {
				return swapOperands(OpRMul, deps[OpMul])
			},
		},
	}
}

// BuiltinNonDerivable returns the operations that have no safe generic
// derivation: operand roles in division, modulo and exponentiation are not
// interchangeable under a generic inverse, so the reflected forms must be
// supplied directly.
func BuiltinNonDerivable() map[Op]string {
	const reason = "operand roles are not interchangeable under a generic inverse"
	return map[Op]string{
		OpRTrueDiv:  reason,
		OpRPow:      reason,
		OpRMod:      reason,
		OpRFloorDiv: reason,
	}
}

// defaultLibrary pairs with defaultRegistry; both are validated at init.
var defaultLibrary = MustLibrary(defaultRegistry, BuiltinRules(), BuiltinNonDerivable())

// DefaultLibrary returns the builtin derivation library.
func DefaultLibrary() *Library {
	return defaultLibrary
}
