package numtower

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_Integrity(t *testing.T) {
	assert.Len(t, Catalog, 32)

	seen := make(map[Op]bool)
	for _, prim := range Catalog {
		assert.False(t, seen[prim.Name], "duplicate catalog entry %q", prim.Name)
		seen[prim.Name] = true

		if prim.Reflected {
			forward, ok := LookupPrimitive(prim.Forward)
			require.True(t, ok, "%q: forward %q not in catalog", prim.Name, prim.Forward)
			assert.Equal(t, Binary, forward.Arity)
			assert.False(t, forward.Reflected, "%q: forward %q is itself reflected", prim.Name, prim.Forward)
		} else {
			assert.Empty(t, prim.Forward, "%q: forward set on non-reflected primitive", prim.Name)
		}
	}
}

func TestCatalog_ReflectedPairs(t *testing.T) {
	pairs := map[Op]Op{
		OpRAdd:      OpAdd,
		OpRSub:      OpSub,
		OpRMul:      OpMul,
		OpRTrueDiv:  OpTrueDiv,
		OpRPow:      OpPow,
		OpRFloorDiv: OpFloorDiv,
		OpRMod:      OpMod,
	}
	for reflected, forward := range pairs {
		prim, ok := LookupPrimitive(reflected)
		require.True(t, ok)
		assert.True(t, prim.Reflected)
		assert.Equal(t, forward, prim.Forward)
	}
}

func TestLookupPrimitive(t *testing.T) {
	prim, ok := LookupPrimitive(OpAbs)
	require.True(t, ok)
	assert.Equal(t, Unary, prim.Arity)

	_, ok = LookupPrimitive("frobnicate")
	assert.False(t, ok)
}

func TestKnownOp(t *testing.T) {
	assert.True(t, KnownOp(OpLt))
	assert.True(t, KnownOp(OpToArray))
	assert.False(t, KnownOp(""))
	assert.False(t, KnownOp("divmod"))
}

func TestSortOps_CatalogOrder(t *testing.T) {
	ops := []Op{OpToArray, OpNe, OpLt, OpMod, OpAdd}
	sortOps(ops)
	assert.Equal(t, []Op{OpLt, OpNe, OpAdd, OpMod, OpToArray}, ops)
}

func TestOpSetToSorted(t *testing.T) {
	set := map[Op]bool{OpNeg: true, OpLt: true, OpPow: true}
	assert.Equal(t, []Op{OpLt, OpPow, OpNeg}, opSetToSorted(set))
}
