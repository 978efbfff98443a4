package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/svconform/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database   string
	Limit      int
	Run        string // show the cases of one run
	Benchmarks bool   // list benchmarks instead of runs
}

// RunDetail is the JSON payload of history --run.
type RunDetail struct {
	Run   store.Run          `json:"run"`
	Cases []store.CaseResult `json:"cases"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded runs and benchmarks",
		Long: `List runs and benchmarks recorded with --db, newest first.

Exit codes:
  0 - Success
  2 - Command error (no database, run not found, etc.)

Examples:
  svconform history --db history.db
  svconform history --db history.db --limit 5
  svconform history --db history.db --run 0192f1c4-...
  svconform history --db history.db --benchmarks --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite history database (default from settings)")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "maximum entries to list (0 for all)")
	cmd.Flags().StringVar(&opts.Run, "run", "", "show the case results of one run")
	cmd.Flags().BoolVar(&opts.Benchmarks, "benchmarks", false, "list benchmarks instead of runs")
	cmd.MarkFlagsMutuallyExclusive("run", "benchmarks")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	s, err := newSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	if opts.Database != "" {
		s.cfg.Database = opts.Database
	}
	if s.cfg.Database == "" {
		return s.out.Fail(ExitCommandError, ErrCodeStore, "no history database: pass --db or set database", nil)
	}

	st, err := s.openStore()
	if err != nil {
		return err
	}
	defer s.closeStore(st)

	ctx := cmd.Context()
	switch {
	case opts.Run != "":
		run, err := st.GetRun(ctx, opts.Run)
		if errors.Is(err, store.ErrNotFound) {
			return s.out.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("run not found: %s", opts.Run), nil)
		}
		if err != nil {
			return s.out.Fail(ExitCommandError, ErrCodeStore, "read run", err)
		}
		cases, err := st.ReadCaseResults(ctx, run.ID)
		if err != nil {
			return s.out.Fail(ExitCommandError, ErrCodeStore, "read case results", err)
		}
		detail := RunDetail{Run: run, Cases: cases}
		return s.out.Render(detail, func(w io.Writer) { writeRunDetail(w, detail) })

	case opts.Benchmarks:
		benches, err := st.ListBenchmarks(ctx, opts.Limit)
		if err != nil {
			return s.out.Fail(ExitCommandError, ErrCodeStore, "list benchmarks", err)
		}
		return s.out.Render(benches, func(w io.Writer) { writeBenchmarks(w, benches) })

	default:
		runs, err := st.ListRuns(ctx, opts.Limit)
		if err != nil {
			return s.out.Fail(ExitCommandError, ErrCodeStore, "list runs", err)
		}
		return s.out.Render(runs, func(w io.Writer) { writeRuns(w, runs) })
	}
}

const historyTime = "2006-01-02 15:04:05"

func writeRuns(w io.Writer, runs []store.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}
	for _, r := range runs {
		fmt.Fprintf(w, "%s  %s  %s %s  %-12s %d/%d passed, %d failed, %d skipped, %d errors\n",
			r.ID, r.StartedAt.Local().Format(historyTime), r.Backend, r.BackendVersion, r.Scope,
			r.Passed, r.Total, r.Failed, r.Skipped, r.CompileErrors+r.RuntimeErrors)
	}
}

func writeRunDetail(w io.Writer, d RunDetail) {
	writeRuns(w, []store.Run{d.Run})
	fmt.Fprintln(w)
	for _, c := range d.Cases {
		fmt.Fprintf(w, "  %-13s %s", c.Outcome, c.Path)
		if c.Message != "" {
			fmt.Fprintf(w, ": %s", c.Message)
		}
		fmt.Fprintln(w)
	}
}

func writeBenchmarks(w io.Writer, benches []store.Benchmark) {
	if len(benches) == 0 {
		fmt.Fprintln(w, "No benchmarks recorded.")
		return
	}
	for _, b := range benches {
		fmt.Fprintf(w, "%s  %s  %s %s  %d iterations, avg %s, %.1f lines/s\n",
			b.ID, b.RunAt.Local().Format(historyTime), b.Backend, b.BackendVersion,
			b.Iterations, b.AverageTime, b.LinesPerSecond)
	}
}
