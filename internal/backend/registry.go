package backend

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/svconform/internal/compiler"
)

// Backend names.
const (
	ReferenceName = "reference"
	LintName      = "lint"
	ExecName      = "exec"
)

// ErrUnknownBackend is returned by Factory for an unregistered name.
var ErrUnknownBackend = errors.New("unknown backend")

// Options configures backends that need external settings.
type Options struct {
	// Command and Args configure the exec backend.
	Command string
	Args    []string
}

// Names lists the registered backends.
func Names() []string {
	return []string{ReferenceName, LintName, ExecName}
}

// Factory returns a factory producing fresh instances of the named backend.
func Factory(name string, opts Options) (compiler.Factory, error) {
	switch strings.ToLower(name) {
	case ReferenceName, "":
		return func() (any, error) { return NewReference(), nil }, nil
	case LintName:
		return func() (any, error) { return Lint{}, nil }, nil
	case ExecName:
		if opts.Command == "" {
			return nil, fmt.Errorf("%s backend: command is required", ExecName)
		}
		args := append([]string(nil), opts.Args...)
		return func() (any, error) { return NewExec(opts.Command, args...), nil }, nil
	default:
		return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownBackend, name, strings.Join(Names(), ", "))
	}
}
