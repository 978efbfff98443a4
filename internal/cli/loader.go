package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/svconform/internal/backend"
	"github.com/roach88/svconform/internal/compiler"
	"github.com/roach88/svconform/internal/config"
	"github.com/roach88/svconform/internal/fixture"
	"github.com/roach88/svconform/internal/store"
)

// session holds the settings, logger and output shared by one command
// invocation.
type session struct {
	opts   *RootOptions
	cfg    *config.Config
	logger *slog.Logger
	out    *OutputFormatter
}

// newSession loads the settings file named by --config, or the defaults
// when none is given. Logs go to the command's stderr.
func newSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	s := &session{
		opts:   opts,
		logger: newLogger(cmd.ErrOrStderr(), opts.Verbose),
		out:    newFormatter(opts, cmd),
	}

	cfg, err := loadConfig(opts.Config)
	if err != nil {
		return nil, s.out.Fail(ExitCommandError, ErrCodeConfig, "load config", err)
	}
	s.cfg = cfg
	if opts.Config != "" {
		s.logger.Debug("config loaded", "path", opts.Config)
	}
	return s, nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// newLogger returns a text logger on w at Info, or Debug when verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// registry creates an empty registry with the configured discovery rules.
func (s *session) registry() *fixture.Registry {
	return fixture.NewRegistry(
		fixture.WithExtensions(s.cfg.Extensions...),
		fixture.WithMaxFixtureBytes(s.cfg.MaxFixtureBytes),
		fixture.WithLogger(s.logger),
	)
}

// factory resolves the backend by name, falling back to the configured one.
func (s *session) factory(name string) (compiler.Factory, error) {
	if name != "" {
		s.cfg.Backend = name
	}
	if err := s.cfg.Validate(); err != nil {
		return nil, s.out.Fail(ExitCommandError, ErrCodeConfig, "invalid settings", err)
	}
	f, err := backend.Factory(s.cfg.Backend, s.cfg.BackendOptions())
	if err != nil {
		return nil, s.out.Fail(ExitCommandError, ErrCodeBackend, "select backend", err)
	}
	s.logger.Debug("backend selected", "backend", s.cfg.Backend)
	return f, nil
}

// adapter creates and initializes one backend instance for direct use.
// The caller must call Shutdown.
func (s *session) adapter(factory compiler.Factory) (*compiler.Adapter, error) {
	impl, err := factory()
	if err != nil {
		return nil, s.out.Fail(ExitCommandError, ErrCodeBackend, "create backend", err)
	}
	a, err := compiler.NewAdapter(impl)
	if err != nil {
		return nil, s.out.Fail(ExitCommandError, ErrCodeBackend, "adapt backend", err)
	}
	if err := a.Initialize(); err != nil {
		return nil, s.out.Fail(ExitCommandError, ErrCodeBackend, "initialize backend", err)
	}
	return a, nil
}

// openStore opens the history database when one is configured. It returns
// nil without error when no database is set.
func (s *session) openStore() (*store.Store, error) {
	if s.cfg.Database == "" {
		return nil, nil
	}
	st, err := store.Open(s.cfg.Database)
	if err != nil {
		return nil, s.out.Fail(ExitCommandError, ErrCodeStore, "open database", err)
	}
	s.logger.Debug("database ready", "path", s.cfg.Database)
	return st, nil
}

func (s *session) closeStore(st *store.Store) {
	if st == nil {
		return
	}
	if err := st.Close(); err != nil {
		s.logger.Error("error closing database", "error", err)
	}
}
