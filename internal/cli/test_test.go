package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/svconform/internal/fixture"
	"github.com/roach88/svconform/internal/harness"
)

func TestTestCommandTooManyArgs(t *testing.T) {
	cmd := NewTestCommand(&RootOptions{Format: "text"})
	_, _, err := execute(cmd, "a", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts at most 1 arg")
}

func TestTestCommandNonExistentRoot(t *testing.T) {
	cmd := NewTestCommand(&RootOptions{Format: "text"})
	_, _, err := execute(cmd, "/nonexistent/tests")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "fixture root not found")
}

func TestTestCommandRootIsFile(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "good.sv", validFixture)

	cmd := NewTestCommand(&RootOptions{Format: "text"})
	_, _, err := execute(cmd, path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "not a directory")
}

func TestTestCommandAllPass(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "good.sv", validFixture)
	writeFixture(t, root, "bad.sv", rejectedFixture)

	cmd := NewTestCommand(&RootOptions{Format: "text"})
	out, _, err := execute(cmd, root)
	require.NoError(t, err)

	assert.Contains(t, out, "reference")
	assert.Contains(t, out, ": all")
	assert.Contains(t, out, "Test Summary: 2 passed, 0 failed, 0 skipped, 0 errors, 2 total")
	assert.Contains(t, out, "All tests passed")
}

func TestTestCommandFailureExitCode(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "good.sv", validFixture)
	writeFixture(t, root, "chapter-5/broken.sv", brokenFixture)

	cmd := NewTestCommand(&RootOptions{Format: "text"})
	out, _, err := execute(cmd, root)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "1 of 2 tests failed", err.Error())

	assert.Contains(t, out, "chapter-5/broken [fail]")
	assert.Contains(t, out, "syntax: unexpected 'endmodule'")
	assert.NotContains(t, out, "✓ good", "passing cases are listed only with --verbose")
}

func TestTestCommandVerboseListsPasses(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "good.sv", validFixture)

	cmd := NewTestCommand(&RootOptions{Format: "text", Verbose: true})
	out, _, err := execute(cmd, root)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ good")
}

func TestTestCommandJSON(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "good.sv", validFixture)
	writeFixture(t, root, "chapter-5/broken.sv", brokenFixture)

	cmd := NewTestCommand(&RootOptions{Format: "json"})
	out, _, err := execute(cmd, root, "--breakdown")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var report RunReport
	decodeData(t, out, &report)
	assert.Equal(t, "reference", report.Backend.Name)
	assert.Equal(t, "all", report.Scope)
	require.NotNil(t, report.Summary)
	assert.Equal(t, 2, report.Summary.Total)
	assert.Equal(t, 1, report.Summary.Passed)
	assert.Equal(t, 1, report.Summary.Failed)
	assert.Empty(t, report.RunID)

	outcomes := map[string]harness.Outcome{}
	for _, cr := range report.Summary.Cases {
		outcomes[cr.Name] = cr.Outcome
	}
	assert.Equal(t, harness.OutcomePass, outcomes["good"])
	assert.Equal(t, harness.OutcomeFail, outcomes["broken"])

	assert.ElementsMatch(t, []fixture.ChapterCount{
		{Chapter: ".", Count: 1},
		{Chapter: "chapter-5", Count: 1},
	}, report.Breakdown)
}

func TestTestCommandTag(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "good.sv", validFixture)
	writeFixture(t, root, "broken.sv", brokenFixture)

	cmd := NewTestCommand(&RootOptions{Format: "json"})
	out, _, err := execute(cmd, root, "--tag", "lexical")
	require.NoError(t, err)

	var report RunReport
	decodeData(t, out, &report)
	assert.Equal(t, "tag:lexical", report.Scope)
	require.NotNil(t, report.Tag)
	assert.Equal(t, 1, report.Tag.Matched)
	assert.Equal(t, 1, report.Tag.Passed)
	assert.Equal(t, 1, report.Summary.Total)
}

func TestTestCommandTagNoMatch(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "good.sv", validFixture)

	cmd := NewTestCommand(&RootOptions{Format: "text"})
	out, _, err := execute(cmd, root, "--tag", "nonexistent")
	require.NoError(t, err)
	assert.Contains(t, out, `Tag "nonexistent": 0 matched, 0 passed`)
}

func TestTestCommandChapter(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "chapter-5/good.sv", validFixture)
	writeFixture(t, root, "chapter-6/broken.sv", brokenFixture)

	cmd := NewTestCommand(&RootOptions{Format: "json"})
	out, _, err := execute(cmd, root, "--chapter", "chapter-5")
	require.NoError(t, err)

	var report RunReport
	decodeData(t, out, &report)
	assert.Equal(t, "chapter:chapter-5", report.Scope)
	assert.Equal(t, 1, report.Summary.Total)
	assert.Equal(t, "chapter-5", report.Summary.Cases[0].Chapter)
}

func TestTestCommandMissingChapter(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "chapter-5/good.sv", validFixture)

	cmd := NewTestCommand(&RootOptions{Format: "text"})
	out, _, err := execute(cmd, root, "--chapter", "chapter-99")
	require.NoError(t, err)
	assert.Contains(t, out, "No tests found.")
}

func TestTestCommandSkipTag(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "good.sv", validFixture)
	writeFixture(t, root, "broken.sv", brokenFixture)

	cmd := NewTestCommand(&RootOptions{Format: "json"})
	out, _, err := execute(cmd, root, "--skip-tag", "parser")
	require.NoError(t, err)

	var report RunReport
	decodeData(t, out, &report)
	assert.Equal(t, 1, report.Summary.Passed)
	assert.Equal(t, 1, report.Summary.Skipped)
}

func TestTestCommandLintBackend(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "good.sv", validFixture)
	writeFixture(t, root, "bad.sv", rejectedFixture)

	cmd := NewTestCommand(&RootOptions{Format: "json"})
	out, _, err := execute(cmd, root, "--backend", "lint")
	require.NoError(t, err)

	var report RunReport
	decodeData(t, out, &report)
	assert.Equal(t, 2, report.Summary.Passed)
}

func TestTestCommandUnknownBackend(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "good.sv", validFixture)

	cmd := NewTestCommand(&RootOptions{Format: "text"})
	_, _, err := execute(cmd, root, "--backend", "verilator")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "unknown backend")
}

func TestTestCommandExecBackendNeedsCommand(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "good.sv", validFixture)

	cmd := NewTestCommand(&RootOptions{Format: "json"})
	out, _, err := execute(cmd, root, "--backend", "exec")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, `"code":"E002"`)
	assert.Contains(t, out, "exec.command")
}

func TestTestCommandConfigFile(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "good.sv", validFixture)
	writeFixture(t, root, "broken.sv", brokenFixture)

	cfgPath := filepath.Join(t.TempDir(), "svconform.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("root: "+root+"\nbackend: lint\nskip_tags: [parser]\n"), 0644))

	cmd := NewTestCommand(&RootOptions{Format: "json", Config: cfgPath})
	out, _, err := execute(cmd)
	require.NoError(t, err)

	var report RunReport
	decodeData(t, out, &report)
	assert.Equal(t, "unknown", report.Backend.Name, "lint does not describe itself")
	assert.Equal(t, 1, report.Summary.Passed)
	assert.Equal(t, 1, report.Summary.Skipped)
}

func TestTestCommandBadConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "svconform.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("backends: lint\n"), 0644))

	cmd := NewTestCommand(&RootOptions{Format: "text", Config: cfgPath})
	_, _, err := execute(cmd, t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "load config")
}

func TestTestCommandRecordsRun(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "good.sv", validFixture)
	db := filepath.Join(t.TempDir(), "history.db")

	cmd := NewTestCommand(&RootOptions{Format: "json"})
	out, _, err := execute(cmd, root, "--db", db)
	require.NoError(t, err)

	var report RunReport
	decodeData(t, out, &report)
	assert.NotEmpty(t, report.RunID)

	_, err = os.Stat(db)
	require.NoError(t, err)
}

func TestTestCommandOversizedFixture(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "good.sv", validFixture)
	writeFixture(t, root, "huge.sv", "module huge;\n"+string(make([]byte, 64))+"endmodule\n")

	cfgPath := filepath.Join(t.TempDir(), "svconform.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("max_fixture_bytes: 64\n"), 0644))

	cmd := NewTestCommand(&RootOptions{Format: "json", Config: cfgPath})
	out, _, err := execute(cmd, root)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var report RunReport
	decodeData(t, out, &report)
	assert.Equal(t, 1, report.Summary.CompileErrors)
}
