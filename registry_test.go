package numtower

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinTower_Valid(t *testing.T) {
	reg, err := NewRegistry(BuiltinTower())
	require.NoError(t, err)
	assert.Len(t, reg.Capabilities(), 9)
}

func TestRegistry_ClosureDiamond(t *testing.T) {
	reg := DefaultRegistry()

	// Real has two parents; every primitive must appear once in the closure
	// no matter how many paths reach it.
	ops, err := reg.RequiredPrimitives(CapReal)
	require.NoError(t, err)
	assert.Len(t, ops, 23)

	seen := make(map[Op]bool)
	for _, op := range ops {
		assert.False(t, seen[op], "closure contains %q twice", op)
		seen[op] = true
	}

	// Catalog order, with comparisons first and Real's own primitives last.
	assert.Equal(t, OpLt, ops[0])
	assert.Equal(t, OpRMod, ops[len(ops)-1])
}

func TestRegistry_ClosureCounts(t *testing.T) {
	reg := DefaultRegistry()

	counts := map[string]int{
		CapOrderable:      4,
		CapComparable:     6,
		CapAdditive:       4,
		CapMultiplicative: 4,
		CapAlgebraic:      9,
		CapComplex:        12,
		CapReal:           23,
		CapValue:          22,
		CapSequence:       23,
	}
	for name, want := range counts {
		ops, err := reg.RequiredPrimitives(name)
		require.NoError(t, err)
		assert.Len(t, ops, want, "closure size of %s", name)
	}
}

func TestRegistry_Depth(t *testing.T) {
	reg := DefaultRegistry()

	assert.Equal(t, 0, reg.Depth(CapOrderable))
	assert.Equal(t, 1, reg.Depth(CapComparable))
	assert.Equal(t, 0, reg.Depth(CapAdditive))
	assert.Equal(t, 1, reg.Depth(CapAlgebraic))
	assert.Equal(t, 2, reg.Depth(CapComplex))
	assert.Equal(t, 3, reg.Depth(CapReal))
	assert.Equal(t, 3, reg.Depth(CapValue))
	assert.Equal(t, 3, reg.Depth(CapSequence))
}

func TestRegistry_IsAncestor(t *testing.T) {
	reg := DefaultRegistry()

	cases := []struct {
		a, b string
		want bool
	}{
		{CapOrderable, CapComparable, true},
		{CapOrderable, CapReal, true},
		{CapAdditive, CapReal, true},
		{CapComparable, CapOrderable, false},
		{CapReal, CapValue, false},
		{CapReal, CapReal, false}, // not its own ancestor
	}
	for _, tc := range cases {
		got, err := reg.IsAncestor(tc.a, tc.b)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "IsAncestor(%s, %s)", tc.a, tc.b)
	}

	_, err := reg.IsAncestor("Quaternion", CapReal)
	assert.True(t, IsUnknownCapability(err))
}

func TestNewRegistry_CycleDetected(t *testing.T) {
	_, err := NewRegistry([]CapabilityDef{
		{Name: "A", Parents: []string{"C"}, Own: []Op{OpLt}},
		{Name: "B", Parents: []string{"A"}, Own: []Op{OpEq}},
		{Name: "C", Parents: []string{"B"}, Own: []Op{OpAdd}},
	})
	require.Error(t, err)
	assert.True(t, IsCyclicCapability(err))

	var cycleErr *CyclicCapabilityError
	require.ErrorAs(t, err, &cycleErr)
	// Path closes on its entry node.
	require.GreaterOrEqual(t, len(cycleErr.Cycle), 4)
	assert.Equal(t, cycleErr.Cycle[0], cycleErr.Cycle[len(cycleErr.Cycle)-1])
}

func TestNewRegistry_SelfCycle(t *testing.T) {
	_, err := NewRegistry([]CapabilityDef{
		{Name: "A", Parents: []string{"A"}, Own: []Op{OpLt}},
	})
	assert.True(t, IsCyclicCapability(err))
}

func TestNewRegistry_UnknownParent(t *testing.T) {
	_, err := NewRegistry([]CapabilityDef{
		{Name: "A", Parents: []string{"Missing"}, Own: []Op{OpLt}},
	})
	assert.True(t, IsUnknownCapability(err))
}

func TestNewRegistry_UnknownPrimitive(t *testing.T) {
	_, err := NewRegistry([]CapabilityDef{
		{Name: "A", Own: []Op{"divmod"}},
	})
	assert.True(t, IsUnknownPrimitive(err))
}

func TestNewRegistry_DuplicateName(t *testing.T) {
	_, err := NewRegistry([]CapabilityDef{
		{Name: "A", Own: []Op{OpLt}},
		{Name: "A", Own: []Op{OpEq}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "defined twice")
}

func TestNewRegistry_RedeclaredInherited(t *testing.T) {
	_, err := NewRegistry([]CapabilityDef{
		{Name: "A", Own: []Op{OpLt, OpEq}},
		{Name: "B", Parents: []string{"A"}, Own: []Op{OpEq}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "re-declares inherited primitive")
}

func TestRegistry_UnknownCapabilityQueries(t *testing.T) {
	reg := DefaultRegistry()

	_, err := reg.RequiredPrimitives("Quaternion")
	assert.True(t, IsUnknownCapability(err))

	_, err = reg.OwnPrimitives("Quaternion")
	assert.True(t, IsUnknownCapability(err))

	_, err = reg.Parents("Quaternion")
	assert.True(t, IsUnknownCapability(err))

	assert.False(t, reg.Has("Quaternion"))
}

func TestRegistry_ClosureCopyIsolation(t *testing.T) {
	reg := DefaultRegistry()

	ops, err := reg.RequiredPrimitives(CapOrderable)
	require.NoError(t, err)
	ops[0] = OpToArray

	again, err := reg.RequiredPrimitives(CapOrderable)
	require.NoError(t, err)
	assert.Equal(t, OpLt, again[0], "caller mutation must not leak into the registry")
}
