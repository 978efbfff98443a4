package cli

import (
	"github.com/spf13/cobra"
)

// ComplianceOptions holds flags for the compliance command.
type ComplianceOptions struct {
	*RootOptions
	Breakdown bool
	Database  string
	SkipTags  []string
}

// NewComplianceCommand creates the compliance command.
func NewComplianceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ComplianceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compliance <backend> [root]",
		Short: "Run the chapter catalog against one backend",
		Long: `Run the configured chapter catalog, then the generic directory, against
the named backend.

Only root/<chapter> directories from the catalog are loaded; chapters that
do not exist are skipped.

Exit codes:
  0 - All cases passed
  1 - One or more cases failed or errored
  2 - Command error (missing root, unknown backend, etc.)

Examples:
  svconform compliance reference ./tests
  svconform compliance lint ./tests --breakdown
  svconform compliance exec ./tests -c svconform.cue`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			root := ""
			if len(args) == 2 {
				root = args[1]
			}
			return runCompliance(opts, args[0], root, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Breakdown, "breakdown", false, "show per-chapter case counts")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in a SQLite history database")
	cmd.Flags().StringSliceVar(&opts.SkipTags, "skip-tag", nil, "skip cases with this tag (repeatable)")

	return cmd
}

func runCompliance(opts *ComplianceOptions, backendName, root string, cmd *cobra.Command) error {
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

	factory, err := s.factory(backendName)
	if err != nil {
		return err
	}

	reg := s.registry()
	if err := reg.LoadCatalog(root, s.cfg.Chapters, s.cfg.Generic); err != nil {
		return s.out.Fail(ExitCommandError, ErrCodeLoadFailed, "discover fixtures", err)
	}

	return s.runSuite(cmd.Context(), suite{
		registry:  reg,
		factory:   factory,
		root:      root,
		scope:     "compliance",
		breakdown: opts.Breakdown,
	})
}
