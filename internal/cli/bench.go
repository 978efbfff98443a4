package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/svconform/internal/compiler"
	"github.com/roach88/svconform/internal/fixture"
	"github.com/roach88/svconform/internal/harness"
)

// sampleSource is benchmarked when neither files nor a source are given.
const sampleSource = `module counter #(parameter WIDTH = 8) (
  input  logic             clk,
  input  logic             rst_n,
  output logic [WIDTH-1:0] count
);
  always_ff @(posedge clk or negedge rst_n) begin
    if (!rst_n) count <= '0;
    else        count <= count + 1'b1;
  end
endmodule
`

// BenchOptions holds flags for the bench command.
type BenchOptions struct {
	*RootOptions
	Backend    string
	Iterations int
	Source     string // file benchmarked repeatedly
	Database   string
}

// BenchReport is the JSON payload of the bench command.
type BenchReport struct {
	Backend compiler.CompilerInfo   `json:"backend"`
	ID      string                  `json:"id,omitempty"`
	Result  harness.BenchmarkResult `json:"result"`
}

// NewBenchCommand creates the bench command.
func NewBenchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BenchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "bench [files...]",
		Short: "Measure raw compile latency",
		Long: `Measure compile latency through the adapter, independent of whether the
backend accepts the input.

With files, each file is compiled once. Otherwise --source (or bench.source
from the settings file, or a built-in sample) is compiled --iterations times.

Examples:
  svconform bench
  svconform bench --source big.sv --iterations 500
  svconform bench tests/chapter-5/*.sv --backend lint
  svconform bench --db history.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Backend, "backend", "b", "", "compiler backend (reference|lint|exec)")
	cmd.Flags().IntVarP(&opts.Iterations, "iterations", "n", 0, "repeat count for a single source (default from settings)")
	cmd.Flags().StringVar(&opts.Source, "source", "", "source file to compile repeatedly")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the result in a SQLite history database")

	return cmd
}

func runBench(opts *BenchOptions, files []string, cmd *cobra.Command) error {
	s, err := newSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	if opts.Database != "" {
		s.cfg.Database = opts.Database
	}
	if opts.Iterations < 0 {
		return s.out.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("iterations must be positive, got %d", opts.Iterations), nil)
	}
	iterations := s.cfg.Bench.Iterations
	if opts.Iterations > 0 {
		iterations = opts.Iterations
	}

	src := sampleSource
	if len(files) == 0 {
		path := opts.Source
		if path == "" {
			path = s.cfg.Bench.Source
		}
		if path != "" {
			src, err = fixture.ReadSource(path, s.cfg.MaxFixtureBytes)
			if err != nil {
				return s.out.Fail(ExitCommandError, ErrCodeNotFound, "read benchmark source", err)
			}
		}
	}

	factory, err := s.factory(opts.Backend)
	if err != nil {
		return err
	}
	a, err := s.adapter(factory)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Shutdown(); err != nil {
			s.logger.Warn("backend shutdown failed", "error", err)
		}
	}()

	b := harness.NewBencher(a,
		harness.WithBenchLogger(s.logger),
		harness.WithBenchMaxBytes(s.cfg.MaxFixtureBytes),
	)
	report := BenchReport{Backend: a.Describe()}
	if len(files) > 0 {
		s.logger.Info("benchmarking files", "backend", report.Backend.Name, "files", len(files))
		report.Result = b.Files(files)
	} else {
		s.logger.Info("benchmarking source", "backend", report.Backend.Name, "iterations", iterations)
		report.Result = b.Repeat(src, iterations)
	}

	st, err := s.openStore()
	if err != nil {
		return err
	}
	if st != nil {
		defer s.closeStore(st)
		rec, err := st.WriteBenchmark(cmd.Context(), report.Backend, report.Result)
		if err != nil {
			return s.out.Fail(ExitCommandError, ErrCodeStore, "record benchmark", err)
		}
		report.ID = rec.ID
	}

	return s.out.Render(report, func(w io.Writer) {
		harness.WriteBenchmark(w, report.Backend, report.Result)
		if report.ID != "" {
			fmt.Fprintf(w, "Recorded benchmark %s\n", report.ID)
		}
	})
}
