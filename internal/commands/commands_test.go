package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/fincore/internal/model"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	require.NoError(t, root.Execute(), "output: %s", out.String())
	return out.String()
}

func initProject(t *testing.T) (dir, configPath string) {
	t.Helper()
	dir = t.TempDir()
	out := run(t, "init", "--name", "Acme Consulting", dir)
	assert.Contains(t, out, "Initialized Acme Consulting")
	return dir, filepath.Join(dir, "fincore.yaml")
}

func TestInit_CreatesConfigAndDatabase(t *testing.T) {
	dir, configPath := initProject(t)

	_, err := os.Stat(configPath)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "fincore.db"))
	require.NoError(t, err)
}

func TestImportAndReport(t *testing.T) {
	dir, configPath := initProject(t)

	csvPath := filepath.Join(dir, "bank.csv")
	csvData := "date,description,amount,reference\n" +
		"2025-01-10,ACME INVOICE,1500.00,inv-1\n" +
		"2025-01-12,OFFICE RENT,-900.00,rent-jan\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(csvData), 0o644))

	out := run(t, "import", "--config", configPath, csvPath)
	assert.Contains(t, out, "Imported 2 transactions (0 duplicates skipped)")

	// A second run posts nothing.
	out = run(t, "import", "--config", configPath, csvPath)
	assert.Contains(t, out, "Imported 0 transactions (2 duplicates skipped)")

	out = run(t, "report", "--config", configPath, "--type", "profit-loss", "--month", "2025-01")
	assert.Contains(t, out, "Revenue")
	assert.Contains(t, out, "1500.00")
	assert.Contains(t, out, "Net Income")
	assert.Contains(t, out, "600.00")
}

func TestExportJournal(t *testing.T) {
	dir, configPath := initProject(t)

	csvPath := filepath.Join(dir, "bank.csv")
	require.NoError(t, os.WriteFile(csvPath,
		[]byte("date,description,amount,reference\n2025-02-01,DEPOSIT,250.00,dep-1\n"), 0o644))
	run(t, "import", "--config", configPath, csvPath)

	out := run(t, "export", "--config", configPath)
	assert.Contains(t, out, "tx_id,date")
	assert.Contains(t, out, "2025-02-001")
	assert.Contains(t, out, "DEPOSIT")
}

func TestFlagPeriod(t *testing.T) {
	p, err := flagPeriod("2025-03", "", "")
	require.NoError(t, err)
	assert.Equal(t, model.MonthPeriod(2025, time.March), p)

	p, err = flagPeriod("", "2025-01-01", "2025-03-31")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC), p.End)

	_, err = flagPeriod("", "2025-01-01", "")
	require.Error(t, err)
}
