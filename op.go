package numtower

// Op names a primitive operation contract. The catalog never inspects an
// operation's semantics, only its presence on a concrete type.
type Op string

// Arity is the operand count of a primitive operation.
type Arity int

const (
	// Unary operations take a single operand.
	Unary Arity = 1
	// Binary operations take two operands, in (a, b) order.
	Binary Arity = 2
)

// Primitive is one entry of the operation catalog: a name, a fixed arity,
// and whether the operation is the reflected (operand-swapped) form of a
// forward operation.
type Primitive struct {
	Name      Op
	Arity     Arity
	Reflected bool
	Forward   Op // forward counterpart, set only when Reflected
}

// Ordering and equality.
const (
	OpLt Op = "lt"
	OpLe Op = "le"
	OpGt Op = "gt"
	OpGe Op = "ge"
	OpEq Op = "eq"
	OpNe Op = "ne"
)

// Additive and multiplicative arithmetic.
const (
	OpAdd      Op = "add"
	OpRAdd     Op = "radd"
	OpSub      Op = "sub"
	OpRSub     Op = "rsub"
	OpMul      Op = "mul"
	OpRMul     Op = "rmul"
	OpTrueDiv  Op = "truediv"
	OpRTrueDiv Op = "rtruediv"
)

// Algebraic, complex-valued and real-valued operations.
const (
	OpPow       Op = "pow"
	OpAbs       Op = "abs"
	OpPos       Op = "pos"
	OpNeg       Op = "neg"
	OpRPow      Op = "rpow"
	OpFloorDiv  Op = "floordiv"
	OpRFloorDiv Op = "rfloordiv"
	OpMod       Op = "mod"
	OpRMod      Op = "rmod"
)

// Singular-value conversions and sequence access.
const (
	OpToComplex Op = "tocomplex"
	OpToFloat   Op = "tofloat"
	OpToInt     Op = "toint"
	OpRound     Op = "round"
	OpContains  Op = "contains"
	OpIter      Op = "iter"
	OpLen       Op = "len"
	OpGetItem   Op = "getitem"
	OpToArray   Op = "toarray"
)

// Catalog is the fixed vocabulary of primitive operations. Its order is the
// canonical operation order used for every deterministic iteration in this
// package.
var Catalog = []Primitive{
	{Name: OpLt, Arity: Binary},
	{Name: OpLe, Arity: Binary},
	{Name: OpGt, Arity: Binary},
	{Name: OpGe, Arity: Binary},
	{Name: OpEq, Arity: Binary},
	{Name: OpNe, Arity: Binary},
	{Name: OpAdd, Arity: Binary},
	{Name: OpRAdd, Arity: Binary, Reflected: true, Forward: OpAdd},
	{Name: OpSub, Arity: Binary},
	{Name: OpRSub, Arity: Binary, Reflected: true, Forward: OpSub},
	{Name: OpMul, Arity: Binary},
	{Name: OpRMul, Arity: Binary, Reflected: true, Forward: OpMul},
	{Name: OpTrueDiv, Arity: Binary},
	{Name: OpRTrueDiv, Arity: Binary, Reflected: true, Forward: OpTrueDiv},
	{Name: OpPow, Arity: Binary},
	{Name: OpAbs, Arity: Unary},
	{Name: OpPos, Arity: Unary},
	{Name: OpNeg, Arity: Unary},
	{Name: OpRPow, Arity: Binary, Reflected: true, Forward: OpPow},
	{Name: OpFloorDiv, Arity: Binary},
	{Name: OpRFloorDiv, Arity: Binary, Reflected: true, Forward: OpFloorDiv},
	{Name: OpMod, Arity: Binary},
	{Name: OpRMod, Arity: Binary, Reflected: true, Forward: OpMod},
	{Name: OpToComplex, Arity: Unary},
	{Name: OpToFloat, Arity: Unary},
	{Name: OpToInt, Arity: Unary},
	{Name: OpRound, Arity: Unary},
	{Name: OpContains, Arity: Binary},
	{Name: OpIter, Arity: Unary},
	{Name: OpLen, Arity: Unary},
	{Name: OpGetItem, Arity: Binary},
	{Name: OpToArray, Arity: Unary},
}

// catalogIndex maps each primitive name to its catalog position.
var catalogIndex = func() map[Op]int {
	idx := make(map[Op]int, len(Catalog))
	for i, p := range Catalog {
		idx[p.Name] = i
	}
	return idx
}()

// LookupPrimitive returns the catalog entry for an operation name.
func LookupPrimitive(name Op) (Primitive, bool) {
	i, ok := catalogIndex[name]
	if !ok {
		return Primitive{}, false
	}
	return Catalog[i], true
}

// KnownOp returns true if name is in the catalog.
func KnownOp(name Op) bool {
	_, ok := catalogIndex[name]
	return ok
}

// sortOps orders a slice of operation names by catalog position, in place.
// Unknown names cannot appear here; every entry point validates against the
// catalog before this is reached.
func sortOps(ops []Op) {
	for i := 1; i < len(ops); i++ {
		for j := i; j > 0 && catalogIndex[ops[j]] < catalogIndex[ops[j-1]]; j-- {
			ops[j], ops[j-1] = ops[j-1], ops[j]
		}
	}
}

// opSetToSorted converts an operation set to a catalog-ordered slice.
func opSetToSorted(set map[Op]bool) []Op {
	ops := make([]Op, 0, len(set))
	for op := range set {
		ops = append(ops, op)
	}
	sortOps(ops)
	return ops
}
