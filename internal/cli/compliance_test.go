package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComplianceCommandMissingBackend(t *testing.T) {
	cmd := NewComplianceCommand(&RootOptions{Format: "text"})
	_, _, err := execute(cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts between 1 and 2 arg")
}

func TestComplianceCommandLoadsCatalogOnly(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "chapter-5/good.sv", validFixture)
	writeFixture(t, root, "generic/bad.sv", rejectedFixture)
	writeFixture(t, root, "scratch/broken.sv", brokenFixture)

	cmd := NewComplianceCommand(&RootOptions{Format: "json"})
	out, _, err := execute(cmd, "reference", root, "--breakdown")
	require.NoError(t, err)

	var report RunReport
	decodeData(t, out, &report)
	assert.Equal(t, "compliance", report.Scope)
	assert.Equal(t, 2, report.Summary.Total)
	assert.Equal(t, 2, report.Summary.Passed)
	require.Len(t, report.Breakdown, 2)
	assert.Equal(t, "chapter-5", report.Breakdown[0].Chapter)
	assert.Equal(t, "generic", report.Breakdown[1].Chapter)
}

func TestComplianceCommandFailure(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "chapter-6/broken.sv", brokenFixture)

	cmd := NewComplianceCommand(&RootOptions{Format: "text"})
	out, _, err := execute(cmd, "lint", root)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "chapter-6/broken [fail]")
}

func TestComplianceCommandUnknownBackend(t *testing.T) {
	cmd := NewComplianceCommand(&RootOptions{Format: "text"})
	_, _, err := execute(cmd, "verilator", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "unknown backend")
}

func TestComplianceCommandEmptyCatalog(t *testing.T) {
	cmd := NewComplianceCommand(&RootOptions{Format: "text"})
	out, _, err := execute(cmd, "reference", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No tests found.")
}
