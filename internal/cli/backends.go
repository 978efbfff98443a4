package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/svconform/internal/backend"
	"github.com/roach88/svconform/internal/compiler"
)

// BackendEntry describes one registered backend.
type BackendEntry struct {
	Name         string                 `json:"name"`
	Info         *compiler.CompilerInfo `json:"info,omitempty"`
	Capabilities *compiler.Capabilities `json:"capabilities,omitempty"`
	Error        string                 `json:"error,omitempty"`
}

// NewBackendsCommand creates the backends command.
func NewBackendsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List available compiler backends",
		Long: `List the registered compiler backends with their reported version,
standards and the optional operations they implement.

Examples:
  svconform backends
  svconform backends -c svconform.yaml --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackends(rootOpts, cmd)
		},
	}
}

func runBackends(opts *RootOptions, cmd *cobra.Command) error {
	s, err := newSession(opts, cmd)
	if err != nil {
		return err
	}

	var entries []BackendEntry
	for _, name := range backend.Names() {
		entries = append(entries, describeBackend(name, s.cfg.BackendOptions()))
	}

	return s.out.Render(entries, func(w io.Writer) {
		for _, e := range entries {
			if e.Error != "" {
				fmt.Fprintf(w, "%-10s unavailable: %s\n", e.Name, e.Error)
				continue
			}
			fmt.Fprintf(w, "%-10s %s %s  standards: %s  operations: %s\n",
				e.Name, e.Info.Name, e.Info.Version,
				strings.Join(e.Info.Standards, ","), operations(*e.Capabilities))
		}
	})
}

// describeBackend probes one backend without initializing it.
func describeBackend(name string, opts backend.Options) BackendEntry {
	entry := BackendEntry{Name: name}
	factory, err := backend.Factory(name, opts)
	if err != nil {
		entry.Error = err.Error()
		return entry
	}
	impl, err := factory()
	if err != nil {
		entry.Error = err.Error()
		return entry
	}
	a, err := compiler.NewAdapter(impl)
	if err != nil {
		entry.Error = err.Error()
		return entry
	}
	info := a.Describe()
	caps := a.Capabilities()
	entry.Info = &info
	entry.Capabilities = &caps
	return entry
}

func operations(c compiler.Capabilities) string {
	var ops []string
	if c.Rich {
		ops = append(ops, "compile-source")
	} else {
		ops = append(ops, "compile")
	}
	if c.Initialize {
		ops = append(ops, "initialize")
	}
	if c.Shutdown {
		ops = append(ops, "shutdown")
	}
	if c.Describe {
		ops = append(ops, "describe")
	}
	return strings.Join(ops, ",")
}
