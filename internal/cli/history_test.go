package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/svconform/internal/store"
)

// recordRun runs the test command against root with --db and returns the
// recorded run ID.
func recordRun(t *testing.T, root, db string, extra ...string) string {
	t.Helper()
	cmd := NewTestCommand(&RootOptions{Format: "json"})
	out, _, _ := execute(cmd, append([]string{root, "--db", db}, extra...)...)

	var report RunReport
	decodeData(t, out, &report)
	require.NotEmpty(t, report.RunID)
	return report.RunID
}

func TestHistoryCommandRequiresDatabase(t *testing.T) {
	cmd := NewHistoryCommand(&RootOptions{Format: "text"})
	_, _, err := execute(cmd)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "no history database")
}

func TestHistoryCommandEmpty(t *testing.T) {
	db := filepath.Join(t.TempDir(), "history.db")

	cmd := NewHistoryCommand(&RootOptions{Format: "text"})
	out, _, err := execute(cmd, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded.")
}

func TestHistoryCommandListsRunsNewestFirst(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "good.sv", validFixture)
	db := filepath.Join(t.TempDir(), "history.db")

	first := recordRun(t, root, db)
	second := recordRun(t, root, db, "--tag", "lexical")

	cmd := NewHistoryCommand(&RootOptions{Format: "json"})
	out, _, err := execute(cmd, "--db", db)
	require.NoError(t, err)

	var runs []store.Run
	decodeData(t, out, &runs)
	require.Len(t, runs, 2)
	assert.Equal(t, second, runs[0].ID)
	assert.Equal(t, "tag:lexical", runs[0].Scope)
	assert.Equal(t, first, runs[1].ID)
	assert.Equal(t, "all", runs[1].Scope)
	assert.Equal(t, "reference", runs[1].Backend)
}

func TestHistoryCommandLimit(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "good.sv", validFixture)
	db := filepath.Join(t.TempDir(), "history.db")
	recordRun(t, root, db)
	recordRun(t, root, db)

	cmd := NewHistoryCommand(&RootOptions{Format: "json"})
	out, _, err := execute(cmd, "--db", db, "--limit", "1")
	require.NoError(t, err)

	var runs []store.Run
	decodeData(t, out, &runs)
	assert.Len(t, runs, 1)
}

func TestHistoryCommandRunDetail(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "good.sv", validFixture)
	writeFixture(t, root, "zz/broken.sv", brokenFixture)
	db := filepath.Join(t.TempDir(), "history.db")
	id := recordRun(t, root, db)

	cmd := NewHistoryCommand(&RootOptions{Format: "text"})
	out, _, err := execute(cmd, "--db", db, "--run", id)
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "1/2 passed, 1 failed")
	assert.Contains(t, out, "pass")
	assert.Contains(t, out, "compilation failed")

	cmd = NewHistoryCommand(&RootOptions{Format: "json"})
	out, _, err = execute(cmd, "--db", db, "--run", id)
	require.NoError(t, err)

	var detail RunDetail
	decodeData(t, out, &detail)
	require.Len(t, detail.Cases, 2)
	assert.Equal(t, "good", detail.Cases[0].Name)
	assert.Equal(t, []string{"lexical"}, detail.Cases[0].Tags)
	assert.Equal(t, "fail", detail.Cases[1].Outcome)
	assert.Equal(t, "zz", detail.Cases[1].Chapter)
}

func TestHistoryCommandRunNotFound(t *testing.T) {
	db := filepath.Join(t.TempDir(), "history.db")

	cmd := NewHistoryCommand(&RootOptions{Format: "text"})
	_, _, err := execute(cmd, "--db", db, "--run", "missing")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "run not found: missing")
}

func TestHistoryCommandBenchmarks(t *testing.T) {
	db := filepath.Join(t.TempDir(), "history.db")
	bench := NewBenchCommand(&RootOptions{Format: "json"})
	_, _, err := execute(bench, "-n", "2", "--db", db)
	require.NoError(t, err)

	cmd := NewHistoryCommand(&RootOptions{Format: "json"})
	out, _, err := execute(cmd, "--db", db, "--benchmarks")
	require.NoError(t, err)

	var benches []store.Benchmark
	decodeData(t, out, &benches)
	require.Len(t, benches, 1)
	assert.Equal(t, 2, benches[0].Iterations)
	assert.Equal(t, "reference", benches[0].Backend)
}
