package harness

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/roach88/svconform/internal/compiler"
	"github.com/roach88/svconform/internal/fixture"
)

// ReportOptions selects the optional report sections.
type ReportOptions struct {
	// Title heads the report, typically the backend and scope.
	Title string

	// Verbose lists every case; otherwise only non-passing cases are listed.
	Verbose bool

	// Diagnostics prints copied compile diagnostics under failing cases.
	Diagnostics bool

	// Breakdown adds a per-chapter case count section.
	Breakdown []fixture.ChapterCount
}

type reportStyles struct {
	pass, fail, skip, errs, header lipgloss.Style
}

// newReportStyles binds styles to w. Writers that are not terminals get
// plain text.
func newReportStyles(w io.Writer) reportStyles {
	r := lipgloss.NewRenderer(w)
	return reportStyles{
		pass:   r.NewStyle().Foreground(lipgloss.Color("2")),
		fail:   r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		skip:   r.NewStyle().Foreground(lipgloss.Color("8")),
		errs:   r.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
		header: r.NewStyle().Bold(true),
	}
}

func (s reportStyles) marker(o Outcome) string {
	switch o {
	case OutcomePass:
		return s.pass.Render("✓")
	case OutcomeFail:
		return s.fail.Render("✗")
	case OutcomeSkip:
		return s.skip.Render("-")
	default:
		return s.errs.Render("!")
	}
}

// WriteCaseLine writes the one-line report entry for a case.
func WriteCaseLine(w io.Writer, cr CaseResult) {
	writeCaseLine(w, newReportStyles(w), cr, false)
}

func writeCaseLine(w io.Writer, st reportStyles, cr CaseResult, diagnostics bool) {
	label := cr.Name
	if cr.Chapter != "" {
		label = cr.Chapter + "/" + cr.Name
	}
	if cr.Outcome == OutcomePass {
		fmt.Fprintf(w, "%s %s\n", st.marker(cr.Outcome), label)
	} else {
		fmt.Fprintf(w, "%s %s [%s]\n", st.marker(cr.Outcome), label, cr.Outcome)
	}
	if cr.Message != "" && cr.Outcome != OutcomePass {
		fmt.Fprintf(w, "  %s\n", cr.Message)
	}
	if diagnostics && cr.Outcome.IsFailure() {
		for _, d := range cr.Diagnostics {
			fmt.Fprintf(w, "    %s\n", d)
		}
	}
}

// WriteReport writes the human-readable run report.
func WriteReport(w io.Writer, sum *Summary, opts ReportOptions) {
	st := newReportStyles(w)

	if opts.Title != "" {
		fmt.Fprintln(w, st.header.Render(opts.Title))
		fmt.Fprintln(w)
	}

	for _, cr := range sum.Cases {
		if !opts.Verbose && cr.Outcome == OutcomePass {
			continue
		}
		writeCaseLine(w, st, cr, opts.Diagnostics)
	}
	if len(sum.Cases) > 0 {
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d skipped, %d errors, %d total\n",
		sum.Passed, sum.Failed, sum.Skipped, sum.Errors(), sum.Total)
	if sum.Errors() > 0 {
		fmt.Fprintf(w, "  errors: %d error_compile, %d error_runtime\n", sum.CompileErrors, sum.RuntimeErrors)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, st.header.Render("Performance:"))
	fmt.Fprintf(w, "  total time:   %s\n", sum.TotalTime)
	fmt.Fprintf(w, "  average time: %s\n", sum.AverageTime())
	fmt.Fprintf(w, "  throughput:   %.1f cases/s\n", sum.Throughput())

	if len(opts.Breakdown) > 0 {
		WriteBreakdown(w, opts.Breakdown)
	}

	fmt.Fprintln(w)
	switch {
	case sum.Total == 0:
		fmt.Fprintln(w, "No tests found.")
	case sum.HasFailures():
		fmt.Fprintln(w, st.fail.Render(fmt.Sprintf("✗ %d of %d tests failed", sum.Failed+sum.Errors(), sum.Total)))
	default:
		fmt.Fprintln(w, st.pass.Render("✓ All tests passed"))
	}
}

// WriteBreakdown writes the per-chapter case counts.
func WriteBreakdown(w io.Writer, rows []fixture.ChapterCount) {
	st := newReportStyles(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, st.header.Render("Tests per chapter:"))
	total := 0
	for _, row := range rows {
		fmt.Fprintf(w, "  %-12s %d\n", row.Chapter, row.Count)
		total += row.Count
	}
	fmt.Fprintf(w, "  %-12s %d\n", "total", total)
}

// WriteTagReport writes the result of a tag-filtered run.
func WriteTagReport(w io.Writer, ts *TagSummary, opts ReportOptions) {
	fmt.Fprintf(w, "Tag %q: %d matched, %d passed\n", ts.Tag, ts.Matched, ts.Passed)
	if ts.Matched == 0 {
		return
	}
	fmt.Fprintln(w)
	WriteReport(w, ts.Summary, opts)
}

// WriteBenchmark writes benchmark statistics.
func WriteBenchmark(w io.Writer, info compiler.CompilerInfo, r BenchmarkResult) {
	st := newReportStyles(w)
	fmt.Fprintln(w, st.header.Render(fmt.Sprintf("Benchmark: %s %s", info.Name, info.Version)))
	fmt.Fprintf(w, "  iterations:   %d (%d ok, %d failed)\n", r.Iterations, r.Succeeded, r.Failed)
	fmt.Fprintf(w, "  total time:   %s\n", r.TotalTime)
	fmt.Fprintf(w, "  average time: %s\n", r.AverageTime)
	fmt.Fprintf(w, "  throughput:   %.1f lines/s\n", r.LinesPerSecond)
}
