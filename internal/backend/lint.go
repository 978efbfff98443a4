package backend

import (
	"github.com/roach88/svconform/internal/compiler"
)

// Lint runs the same checks as Reference but only through the simple
// compile shape: it reports the first problem and nothing else. It has no
// Initialize, Shutdown or Describe.
type Lint struct{}

var _ compiler.SimpleCompiler = Lint{}

// Compile implements compiler.SimpleCompiler.
func (Lint) Compile(src string) error {
	tokens, errs := lex(src)
	if len(errs) > 0 {
		return &errs[0]
	}
	if a := check(tokens); len(a.errs) > 0 {
		return &a.errs[0]
	}
	return nil
}
