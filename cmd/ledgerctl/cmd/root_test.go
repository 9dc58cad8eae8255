package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/SscSPs/money_ledger/internal/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rateFile = `
rates:
  - {from: USD, to: UZS, mid: "12500", source: central_bank, date: 2024-01-01}
  - {from: EUR, to: USD, mid: "1.08", source: market, date: 2024-01-01}
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("LEDGER_DB_PATH", filepath.Join(dir, "ledger.db"))
	t.Setenv("LEDGER_BASE_CURRENCY", "USD")
	t.Setenv("LEDGER_RATES_SEED_FILE", "")
	return dir
}

func TestMigrateCommand(t *testing.T) {
	setupEnv(t)
	latest := migrations.New(nil).LatestVersion()

	out, err := run(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, fmt.Sprintf("from version 1 to %d", latest))

	out, err = run(t, "migrate")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("schema is up to date at version %d\n", latest), out)
}

func TestMigrateCommandFlagOverridesPath(t *testing.T) {
	setupEnv(t)
	other := filepath.Join(t.TempDir(), "other.db")

	_, err := run(t, "--db", other, "migrate", "--to", "2")
	require.NoError(t, err)
	assert.FileExists(t, other)
}

func TestRatesImportCommand(t *testing.T) {
	dir := setupEnv(t)
	path := filepath.Join(dir, "rates.yaml")
	require.NoError(t, os.WriteFile(path, []byte(rateFile), 0o600))

	out, err := run(t, "rates", "import", path)
	require.NoError(t, err)
	assert.Equal(t, "imported 2 of 2 rates\n", out)

	out, err = run(t, "rates", "import", path)
	require.NoError(t, err)
	assert.Equal(t, "imported 0 of 2 rates\n", out)

	_, err = run(t, "rates", "import")
	assert.Error(t, err)
	_, err = run(t, "rates", "import", filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestReconcileAndNetWorthCommands(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "reconcile")
	require.NoError(t, err)
	assert.Contains(t, out, "ACCOUNT")

	out, err = run(t, "networth", "--as-of", "2024-06-01")
	require.NoError(t, err)
	assert.Contains(t, out, "TOTAL")
	assert.Contains(t, out, "0.00 USD")

	_, err = run(t, "networth", "--as-of", "June")
	assert.Error(t, err)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 1, exitCode(assert.AnError))
}
