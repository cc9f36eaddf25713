package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfield/numtower/internal/store"
)

func TestCheckCommand_Satisfied(t *testing.T) {
	stdout, _, err := runCommand(t, "check", "testdata/manifests/ratio.yaml")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "check_ratio", []byte(stdout))
}

func TestCheckCommand_Missing(t *testing.T) {
	stdout, _, err := runCommand(t, "check", "testdata/manifests/intlike.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "check_intlike", []byte(stdout))
}

func TestCheckCommand_JSON(t *testing.T) {
	stdout, _, err := runCommand(t, "check", "testdata/manifests/ratio.yaml", "--format", "json")
	require.NoError(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)

	payload, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "ratio", payload["name"])
	assert.Equal(t, true, payload["satisfied"])
	assert.NotEmpty(t, payload["descriptor"])

	resolved, ok := payload["resolved"].([]interface{})
	require.True(t, ok)
	assert.Len(t, resolved, 6)
}

func TestCheckCommand_JSONMissing(t *testing.T) {
	stdout, _, err := runCommand(t, "check", "testdata/manifests/intlike.yaml", "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)

	payload, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, false, payload["satisfied"])

	missing, ok := payload["missing"].([]interface{})
	require.True(t, ok)
	require.Len(t, missing, 5)
	first, ok := missing[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "rpow", first["op"])
}

func TestCheckCommand_EmptyManifest(t *testing.T) {
	_, _, err := runCommand(t, "check", "testdata/manifests/empty.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "no primitives")
}

func TestCheckCommand_MissingFile(t *testing.T) {
	_, _, err := runCommand(t, "check", "testdata/manifests/nope.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCheckCommand_LedgerIdempotent(t *testing.T) {
	ledger := filepath.Join(t.TempDir(), "ledger.db")

	_, _, err := runCommand(t, "check", "testdata/manifests/ratio.yaml", "--ledger", ledger)
	require.NoError(t, err)

	// Same manifest again: same claim id, second write is a no-op.
	_, _, err = runCommand(t, "check", "testdata/manifests/ratio.yaml", "--ledger", ledger)
	require.NoError(t, err)

	db, err := store.Open(ledger)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()

	claimID, err := store.ClaimID(
		"8417f95e120b4371b5cb15ad9e5e4507a1e541d01365b24636a61f9af45ec278",
		[]string{"Comparable"},
	)
	require.NoError(t, err)

	exists, err := db.HasClaim(ctx, claimID)
	require.NoError(t, err)
	assert.True(t, exists)

	var count int
	require.NoError(t, db.DB().QueryRow("SELECT COUNT(*) FROM claims").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestCheckCommand_LedgerRecordsMissing(t *testing.T) {
	ledger := filepath.Join(t.TempDir(), "ledger.db")

	_, _, err := runCommand(t, "check", "testdata/manifests/intlike.yaml", "--ledger", ledger)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	db, err := store.Open(ledger)
	require.NoError(t, err)
	defer db.Close()

	var outcome, missing string
	require.NoError(t, db.DB().QueryRow("SELECT outcome, missing FROM claims").Scan(&outcome, &missing))
	assert.Equal(t, store.OutcomeMissing, outcome)
	assert.Contains(t, missing, "floordiv")
	assert.Contains(t, missing, "rpow")
}

func TestStructuralStub_NotExecutable(t *testing.T) {
	stub := structuralStub("add")
	_, err := stub(1, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "structural")
}
