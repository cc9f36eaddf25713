package cueload

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfield/numtower"
)

func TestLoadTower_Builtin(t *testing.T) {
	result, errs := LoadTower("testdata/builtin", LoadModeFailFast)
	require.Empty(t, errs)
	require.NotNil(t, result)

	assert.Equal(t, 1, result.FileCount)
	assert.Len(t, result.Defs, 6)

	byName := make(map[string]numtower.CapabilityDef)
	for _, def := range result.Defs {
		byName[def.Name] = def
	}
	assert.Equal(t, []string{"Additive", "Multiplicative"}, byName["Algebraic"].Parents)
	assert.Equal(t, []numtower.Op{numtower.OpAbs, numtower.OpPos, numtower.OpNeg}, byName["Complex"].Own)
}

func TestLoadTower_MissingDir(t *testing.T) {
	_, errs := LoadTower("testdata/does-not-exist", LoadModeFailFast)
	require.Len(t, errs, 1)

	var loadErr *LoadError
	require.ErrorAs(t, errs[0], &loadErr)
	assert.Equal(t, ErrCodeNotFound, loadErr.Code)
}

func TestLoadTower_NotADirectory(t *testing.T) {
	_, errs := LoadTower("testdata/builtin/tower.cue", LoadModeFailFast)
	require.Len(t, errs, 1)

	var loadErr *LoadError
	require.ErrorAs(t, errs[0], &loadErr)
	assert.Equal(t, ErrCodeNotFound, loadErr.Code)
}

func TestLoadTower_NoCUEFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	_, errs := LoadTower(dir, LoadModeFailFast)
	require.Len(t, errs, 1)

	var loadErr *LoadError
	require.ErrorAs(t, errs[0], &loadErr)
	assert.Equal(t, ErrCodeNoFiles, loadErr.Code)
}

func TestLoadTower_BadPrimitive(t *testing.T) {
	result, errs := LoadTower("testdata/badprim", LoadModeFailFast)
	require.NotNil(t, result)
	require.NotEmpty(t, errs)

	var loadErr *LoadError
	require.ErrorAs(t, errs[0], &loadErr)
	assert.Equal(t, ErrCodeCompile, loadErr.Code)
	assert.Contains(t, loadErr.Message, "capability.Broken")
}

func TestBuildRegistry_Builtin(t *testing.T) {
	result, errs := LoadTower("testdata/builtin", LoadModeFailFast)
	require.Empty(t, errs)

	reg, lib, err := BuildRegistry(result.Defs)
	require.NoError(t, err)

	assert.True(t, reg.Has("Complex"))
	ops, err := reg.RequiredPrimitives("Complex")
	require.NoError(t, err)
	assert.Len(t, ops, 12)

	// Rules whose origin exists in the tower survive the filter.
	assert.NotEmpty(t, lib.DerivationsFor(numtower.OpLe))
	assert.NotEmpty(t, lib.DerivationsFor(numtower.OpRAdd))
}

func TestBuildRegistry_DropsOrphanRules(t *testing.T) {
	defs := []numtower.CapabilityDef{
		{Name: "Orderable", Own: []numtower.Op{numtower.OpLt, numtower.OpLe, numtower.OpGt, numtower.OpGe}},
	}

	_, lib, err := BuildRegistry(defs)
	require.NoError(t, err)

	// Comparison rules hang on Orderable and survive; the arithmetic rules'
	// origins are absent and must be dropped.
	assert.NotEmpty(t, lib.DerivationsFor(numtower.OpGt))
	assert.Empty(t, lib.DerivationsFor(numtower.OpRAdd))
	assert.Empty(t, lib.DerivationsFor(numtower.OpNe))
}

func TestBuildRegistry_CyclicTower(t *testing.T) {
	result, errs := LoadTower("testdata/cyclic", LoadModeFailFast)
	require.Empty(t, errs, "cycles surface at registry construction, not load")

	_, _, err := BuildRegistry(result.Defs)
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeRegistry, loadErr.Code)
	assert.Contains(t, loadErr.Message, "CYCLIC_CAPABILITY")
}

func TestFindCUEFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.cue"), []byte("x: 1"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "b.cue"), []byte("y: 2"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.md"), []byte("z"), 0o644))

	files, err := FindCUEFiles(dir)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}
