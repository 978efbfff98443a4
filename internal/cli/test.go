package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/svconform/internal/compiler"
	"github.com/roach88/svconform/internal/fixture"
	"github.com/roach88/svconform/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Tag       string   // run only cases carrying this tag
	Chapter   string   // run only root/<chapter>
	Backend   string   // backend name, overrides the settings file
	Breakdown bool     // add per-chapter counts to the report
	Database  string   // record the run in this history database
	SkipTags  []string // report cases carrying these tags as skipped
}

// RunReport is the JSON payload of test and compliance.
type RunReport struct {
	Backend   compiler.CompilerInfo  `json:"backend"`
	Scope     string                 `json:"scope"`
	RunID     string                 `json:"run_id,omitempty"`
	Tag       *harness.TagSummary    `json:"tag,omitempty"`
	Summary   *harness.Summary       `json:"summary"`
	Breakdown []fixture.ChapterCount `json:"breakdown,omitempty"`
	Excluded  []string               `json:"excluded,omitempty"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test [root]",
		Short: "Run conformance fixtures",
		Long: `Run every fixture under root against a compiler backend.

Root defaults to the configured root ("tests"). Fixtures are discovered
recursively; the first directory level is reported as the chapter.

Exit codes:
  0 - All selected cases passed
  1 - One or more cases failed or errored
  2 - Command error (missing root, unknown backend, etc.)

Examples:
  svconform test ./tests
  svconform test ./tests --tag parser
  svconform test ./tests --chapter chapter-5 --breakdown
  svconform test ./tests --backend exec -c svconform.yaml
  svconform test ./tests --db history.db --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			root := ""
			if len(args) == 1 {
				root = args[0]
			}
			return runTests(opts, root, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Tag, "tag", "", "run only cases with this tag")
	cmd.Flags().StringVar(&opts.Chapter, "chapter", "", "run only the named chapter directory")
	cmd.Flags().StringVarP(&opts.Backend, "backend", "b", "", "compiler backend (reference|lint|exec)")
	cmd.Flags().BoolVar(&opts.Breakdown, "breakdown", false, "show per-chapter case counts")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in a SQLite history database")
	cmd.Flags().StringSliceVar(&opts.SkipTags, "skip-tag", nil, "skip cases with this tag (repeatable)")
	cmd.MarkFlagsMutuallyExclusive("tag", "chapter")

	return cmd
}

func runTests(opts *TestOptions, root string, cmd *cobra.Command) error {
	s, err := newSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	s.applyRunFlags(opts.Database, opts.SkipTags)
	if root == "" {
		root = s.cfg.Root
	}
	if err := requireDir(s, root); err != nil {
		return err
	}

	factory, err := s.factory(opts.Backend)
	if err != nil {
		return err
	}

	reg := s.registry()
	if opts.Chapter == "" {
		if err := reg.Load(root); err != nil {
			return s.out.Fail(ExitCommandError, ErrCodeLoadFailed, "discover fixtures", err)
		}
	}

	return s.runSuite(cmd.Context(), suite{
		registry:  reg,
		factory:   factory,
		root:      root,
		tag:       opts.Tag,
		chapter:   opts.Chapter,
		breakdown: opts.Breakdown,
	})
}

// suite selects what runSuite runs.
type suite struct {
	registry  *fixture.Registry
	factory   compiler.Factory
	root      string
	scope     string // overrides the scope derived from tag and chapter
	tag       string
	chapter   string
	breakdown bool
}

func (st suite) scopeName() string {
	switch {
	case st.scope != "":
		return st.scope
	case st.tag != "":
		return "tag:" + st.tag
	case st.chapter != "":
		return "chapter:" + st.chapter
	default:
		return "all"
	}
}

// applyRunFlags lets command flags override the settings file.
func (s *session) applyRunFlags(database string, skipTags []string) {
	if database != "" {
		s.cfg.Database = database
	}
	s.cfg.SkipTags = append(s.cfg.SkipTags, skipTags...)
}

func requireDir(s *session, dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return s.out.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("fixture root not found: %s", dir), nil)
	}
	if !info.IsDir() {
		return s.out.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("fixture root is not a directory: %s", dir), nil)
	}
	return nil
}

// runSuite runs the selected cases, records and reports them, and maps the
// outcome to an exit code.
func (s *session) runSuite(parent context.Context, st suite) error {
	runner, err := harness.NewRunner(st.registry, st.factory,
		harness.WithRunnerLogger(s.logger),
		harness.WithSkipTags(s.cfg.SkipTags...),
		harness.OnCase(func(cr harness.CaseResult) {
			s.logger.Debug("case finished", "name", cr.Name, "outcome", cr.Outcome.String(), "elapsed", cr.Elapsed)
		}),
	)
	if err != nil {
		return s.out.Fail(ExitCommandError, ErrCodeBackend, "start runner", err)
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	report := RunReport{Backend: runner.Info(), Scope: st.scopeName()}
	s.logger.Info("running fixtures", "backend", report.Backend.Name, "scope", report.Scope)

	var runErr error
	switch {
	case st.tag != "":
		report.Tag, runErr = runner.RunByTag(ctx, st.tag)
		report.Summary = report.Tag.Summary
	case st.chapter != "":
		report.Summary, runErr = runner.RunChapter(ctx, st.root, st.chapter)
	default:
		report.Summary, runErr = runner.RunAll(ctx)
	}
	if report.Summary == nil {
		return s.out.Fail(ExitCommandError, ErrCodeLoadFailed, "discover fixtures", runErr)
	}
	interrupted := errors.Is(runErr, context.Canceled)
	if interrupted {
		s.logger.Warn("run interrupted", "completed", report.Summary.Total)
	}

	for _, le := range st.registry.Skipped() {
		report.Excluded = append(report.Excluded, le.Error())
	}
	if st.breakdown {
		report.Breakdown = st.registry.Breakdown()
	}

	if !interrupted {
		id, err := s.record(ctx, report)
		if err != nil {
			return err
		}
		report.RunID = id
	}

	if err := s.out.Render(report, func(w io.Writer) { s.writeRunText(w, report) }); err != nil {
		return err
	}

	sum := report.Summary
	switch {
	case interrupted:
		return WrapExitError(ExitCommandError, "run interrupted", runErr)
	case sum.HasFailures():
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d tests failed", sum.Failed+sum.Errors(), sum.Total))
	}
	return nil
}

// record writes the run to the history database, if one is configured.
func (s *session) record(ctx context.Context, report RunReport) (string, error) {
	st, err := s.openStore()
	if err != nil || st == nil {
		return "", err
	}
	defer s.closeStore(st)

	run, err := st.WriteRun(ctx, report.Backend, report.Scope, report.Summary)
	if err != nil {
		return "", s.out.Fail(ExitCommandError, ErrCodeStore, "record run", err)
	}
	s.logger.Info("run recorded", "id", run.ID, "db", s.cfg.Database)
	return run.ID, nil
}

func (s *session) writeRunText(w io.Writer, report RunReport) {
	ropts := harness.ReportOptions{
		Title:       fmt.Sprintf("%s %s: %s", report.Backend.Name, report.Backend.Version, report.Scope),
		Verbose:     s.opts.Verbose,
		Diagnostics: true,
		Breakdown:   report.Breakdown,
	}
	if report.Tag != nil {
		harness.WriteTagReport(w, report.Tag, ropts)
	} else {
		harness.WriteReport(w, report.Summary, ropts)
	}
	if report.RunID != "" {
		fmt.Fprintf(w, "Recorded run %s\n", report.RunID)
	}
}
