package numtower

// Capability names exposed to external collaborators. These are stable
// identifiers; collaborators request them by name and receive a resolved
// operation table in return.
const (
	CapOrderable      = "Orderable"
	CapComparable     = "Comparable"
	CapAdditive       = "Additive"
	CapMultiplicative = "Multiplicative"
	CapAlgebraic      = "Algebraic"
	CapComplex        = "Complex"
	CapReal           = "Real"
	CapValue          = "Value"
	CapSequence       = "Sequence"
)

// CapabilityDef declares one capability: its direct parents and the
// primitives it newly requires beyond everything its parents require.
type CapabilityDef struct {
	Name    string
	Parents []string
	Own     []Op
}

// BuiltinTower returns the capability graph for numeric-like objects.
//
// The graph is a DAG, not a tree: Real, Value and Sequence each inherit from
// both Comparable and Complex, which share no common ancestor but do share
// the Algebraic diamond through Complex. Composition deduplicates primitives
// reached through more than one path.
func BuiltinTower() []CapabilityDef {
	return []CapabilityDef{
		{
			Name: CapOrderable,
			Own:  []Op{OpLt, OpLe, OpGt, OpGe},
		},
		{
			Name:    CapComparable,
			Parents: []string{CapOrderable},
			Own:     []Op{OpEq, OpNe},
		},
		{
			Name: CapAdditive,
			Own:  []Op{OpAdd, OpRAdd, OpSub, OpRSub},
		},
		{
			Name: CapMultiplicative,
			Own:  []Op{OpMul, OpRMul, OpTrueDiv, OpRTrueDiv},
		},
		{
			Name:    CapAlgebraic,
			Parents: []string{CapAdditive, CapMultiplicative},
			Own:     []Op{OpPow},
		},
		{
			Name:    CapComplex,
			Parents: []string{CapAlgebraic},
			Own:     []Op{OpAbs, OpPos, OpNeg},
		},
		{
			Name:    CapReal,
			Parents: []string{CapComparable, CapComplex},
			Own:     []Op{OpRPow, OpFloorDiv, OpRFloorDiv, OpMod, OpRMod},
		},
		{
			Name:    CapValue,
			Parents: []string{CapComparable, CapComplex},
			Own:     []Op{OpToComplex, OpToFloat, OpToInt, OpRound},
		},
		{
			Name:    CapSequence,
			Parents: []string{CapComparable, CapComplex},
			Own:     []Op{OpContains, OpIter, OpLen, OpGetItem, OpToArray},
		},
	}
}
