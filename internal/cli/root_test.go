package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCommand executes the root command with args and captured output.
func runCommand(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	root := NewRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)

	err = root.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	root := NewRootCommand()

	names := make(map[string]bool)
	for _, cmd := range root.Commands() {
		names[cmd.Name()] = true
	}

	assert.True(t, names["tower"])
	assert.True(t, names["explain"])
	assert.True(t, names["check"])
}

func TestResolveTower_Default(t *testing.T) {
	reg, lib, err := resolveTower("")
	require.NoError(t, err)
	assert.True(t, reg.Has("Real"))
	assert.NotNil(t, lib)
}

func TestResolveTower_CustomSpecs(t *testing.T) {
	reg, lib, err := resolveTower("testdata/specs/ordering")
	require.NoError(t, err)
	assert.True(t, reg.Has("Ordered"))
	assert.True(t, reg.Has("Equatable"))
	assert.False(t, reg.Has("Real"))
	assert.NotNil(t, lib)
}

func TestResolveTower_MissingDir(t *testing.T) {
	_, _, err := resolveTower("testdata/specs/does-not-exist")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
