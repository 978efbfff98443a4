package harness

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/svconform/internal/compiler"
	"github.com/roach88/svconform/internal/fixture"
)

func sampleSummary() *Summary {
	sum := newSummary()
	sum.add(CaseResult{Name: "good", Chapter: "chapter-5", Outcome: OutcomePass, Elapsed: 2 * time.Millisecond})
	sum.add(CaseResult{
		Name:        "bad",
		Chapter:     "chapter-5",
		Outcome:     OutcomeFail,
		Message:     "compilation failed: 1:1: syntax: unexpected 'end'",
		Diagnostics: []string{"1:1: syntax: unexpected 'end'"},
		Elapsed:     4 * time.Millisecond,
	})
	sum.add(CaseResult{Name: "slow", Outcome: OutcomeSkip, Message: "skipped by tag"})
	sum.TotalTime = 10 * time.Millisecond
	return sum
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	WriteReport(&buf, sampleSummary(), ReportOptions{Title: "reference"})
	out := buf.String()

	assert.Contains(t, out, "reference\n")
	assert.NotContains(t, out, "chapter-5/good")
	assert.Contains(t, out, "✗ chapter-5/bad [fail]\n  compilation failed: 1:1: syntax: unexpected 'end'\n")
	assert.Contains(t, out, "- slow [skip]\n  skipped by tag\n")
	assert.Contains(t, out, "Test Summary: 1 passed, 1 failed, 1 skipped, 0 errors, 3 total\n")
	assert.NotContains(t, out, "errors: ")
	assert.Contains(t, out, "Performance:\n")
	assert.Contains(t, out, "  total time:   10ms\n")
	assert.Contains(t, out, "  average time: 3ms\n")
	assert.Contains(t, out, "  throughput:   300.0 cases/s\n")
	assert.Contains(t, out, "✗ 1 of 3 tests failed\n")
}

func TestWriteReport_VerboseWithDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	WriteReport(&buf, sampleSummary(), ReportOptions{Verbose: true, Diagnostics: true})
	out := buf.String()

	assert.Contains(t, out, "✓ chapter-5/good\n")
	assert.Contains(t, out, "    1:1: syntax: unexpected 'end'\n")
}

func TestWriteReport_ErrorsAndBreakdown(t *testing.T) {
	sum := newSummary()
	sum.add(CaseResult{Name: "a", Outcome: OutcomeErrorCompile})
	sum.add(CaseResult{Name: "b", Outcome: OutcomeErrorRuntime})

	var buf bytes.Buffer
	WriteReport(&buf, sum, ReportOptions{Breakdown: []fixture.ChapterCount{
		{Chapter: "chapter-5", Count: 3},
		{Chapter: "generic", Count: 1},
	}})
	out := buf.String()

	assert.Contains(t, out, "! a [error_compile]\n")
	assert.Contains(t, out, "0 skipped, 2 errors, 2 total\n")
	assert.Contains(t, out, "  errors: 1 error_compile, 1 error_runtime\n")
	assert.Contains(t, out, "Tests per chapter:\n  chapter-5    3\n  generic      1\n  total        4\n")
	assert.Contains(t, out, "✗ 2 of 2 tests failed\n")
}

func TestWriteReport_Outcomes(t *testing.T) {
	var buf bytes.Buffer
	WriteReport(&buf, newSummary(), ReportOptions{})
	assert.Contains(t, buf.String(), "No tests found.\n")

	sum := newSummary()
	sum.add(CaseResult{Name: "a", Outcome: OutcomePass})
	buf.Reset()
	WriteReport(&buf, sum, ReportOptions{})
	assert.Contains(t, buf.String(), "✓ All tests passed\n")
}

func TestWriteTagReport(t *testing.T) {
	var buf bytes.Buffer
	WriteTagReport(&buf, &TagSummary{Tag: "regression", Summary: newSummary()}, ReportOptions{})
	assert.Equal(t, "Tag \"regression\": 0 matched, 0 passed\n", buf.String())
}

func TestWriteBenchmark(t *testing.T) {
	var buf bytes.Buffer
	WriteBenchmark(&buf, compiler.CompilerInfo{Name: "reference", Version: "0.1.0"}, BenchmarkResult{
		Iterations:     10,
		Succeeded:      9,
		Failed:         1,
		TotalTime:      9 * time.Millisecond,
		AverageTime:    time.Millisecond,
		LinesPerSecond: 2000,
	})
	assert.Equal(t, "Benchmark: reference 0.1.0\n"+
		"  iterations:   10 (9 ok, 1 failed)\n"+
		"  total time:   9ms\n"+
		"  average time: 1ms\n"+
		"  throughput:   2000.0 lines/s\n", buf.String())
}

func TestWriteCaseLine(t *testing.T) {
	var buf bytes.Buffer
	WriteCaseLine(&buf, CaseResult{Name: "x", Outcome: OutcomePass, Message: "ignored"})
	assert.Equal(t, "✓ x\n", buf.String())
}
