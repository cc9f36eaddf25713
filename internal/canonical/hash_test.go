package canonical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashWithDomain_Deterministic(t *testing.T) {
	data := []byte(`{"primitives":["lt","eq"]}`)

	first := HashWithDomain(DomainDeclaration, data)
	second := HashWithDomain(DomainDeclaration, data)
	assert.Equal(t, first, second)
	assert.Len(t, first, 64, "hex-encoded SHA-256")
}

func TestHashWithDomain_DomainSeparation(t *testing.T) {
	data := []byte(`{"primitives":["lt","eq"]}`)

	declaration := HashWithDomain(DomainDeclaration, data)
	descriptor := HashWithDomain(DomainDescriptor, data)
	claim := HashWithDomain(DomainClaim, data)

	assert.NotEqual(t, declaration, descriptor)
	assert.NotEqual(t, declaration, claim)
	assert.NotEqual(t, descriptor, claim)
}

func TestHashWithDomain_BoundaryUnambiguous(t *testing.T) {
	// The null separator keeps domain/data splits distinct even when the
	// concatenated bytes would otherwise collide.
	a := HashWithDomain("ab", []byte("c"))
	b := HashWithDomain("a", []byte("bc"))
	assert.NotEqual(t, a, b)
}

func TestHashWithDomain_KnownVector(t *testing.T) {
	data, err := Marshal(map[string]any{"primitives": []any{"lt", "eq"}})
	require.NoError(t, err)

	// Pinned so identity changes cannot slip in silently.
	assert.Equal(t,
		"8417f95e120b4371b5cb15ad9e5e4507a1e541d01365b24636a61f9af45ec278",
		HashWithDomain(DomainDeclaration, data))
}
