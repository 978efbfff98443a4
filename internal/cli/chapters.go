package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/svconform/internal/fixture"
	"github.com/roach88/svconform/internal/harness"
)

// ChaptersOptions holds flags for the chapters command.
type ChaptersOptions struct {
	*RootOptions
	Catalog bool // load only the configured catalog
}

// ChaptersReport is the JSON payload of the chapters command.
type ChaptersReport struct {
	Root      string                 `json:"root"`
	Total     int                    `json:"total"`
	Breakdown []fixture.ChapterCount `json:"breakdown"`
	Excluded  []string               `json:"excluded,omitempty"`
}

// NewChaptersCommand creates the chapters command.
func NewChaptersCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ChaptersOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "chapters [root]",
		Short: "Count fixtures per chapter",
		Long: `Discover fixtures under root without compiling them and print the number
of cases per chapter.

Examples:
  svconform chapters ./tests
  svconform chapters ./tests --catalog --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			root := ""
			if len(args) == 1 {
				root = args[0]
			}
			return runChapters(opts, root, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Catalog, "catalog", false, "load only the configured chapter catalog")

	return cmd
}

func runChapters(opts *ChaptersOptions, root string, cmd *cobra.Command) error {
	s, err := newSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	if root == "" {
		root = s.cfg.Root
	}
	if err := requireDir(s, root); err != nil {
		return err
	}

	reg := s.registry()
	if opts.Catalog {
		err = reg.LoadCatalog(root, s.cfg.Chapters, s.cfg.Generic)
	} else {
		err = reg.Load(root)
	}
	if err != nil {
		return s.out.Fail(ExitCommandError, ErrCodeLoadFailed, "discover fixtures", err)
	}

	report := ChaptersReport{
		Root:      root,
		Total:     reg.Len(),
		Breakdown: reg.Breakdown(),
	}
	if report.Breakdown == nil {
		report.Breakdown = []fixture.ChapterCount{}
	}
	for _, le := range reg.Skipped() {
		report.Excluded = append(report.Excluded, le.Error())
	}

	return s.out.Render(report, func(w io.Writer) {
		fmt.Fprintf(w, "%d fixtures under %s\n", report.Total, report.Root)
		harness.WriteBreakdown(w, report.Breakdown)
	})
}
