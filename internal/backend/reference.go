package backend

import (
	"errors"
	"time"

	"github.com/roach88/svconform/internal/compiler"
	"github.com/roach88/svconform/internal/version"
)

// Reference is the built-in placeholder compiler. It tokenizes the source,
// balances block keywords and brackets, and rejects duplicate design unit
// names. It is not a SystemVerilog front end; it exists so the harness has a
// rich-shape backend to drive.
type Reference struct {
	now         func() time.Time
	initialized bool
}

// NewReference creates a reference compiler.
func NewReference() *Reference {
	return &Reference{now: time.Now}
}

// Initialize implements compiler.Initializer.
func (r *Reference) Initialize() error {
	r.initialized = true
	return nil
}

// Shutdown implements compiler.Shutdowner.
func (r *Reference) Shutdown() error {
	r.initialized = false
	return nil
}

// Describe implements compiler.Describer.
func (r *Reference) Describe() compiler.CompilerInfo {
	return compiler.CompilerInfo{
		Name:      ReferenceName,
		Version:   version.Version,
		Standards: []string{"1800-2017", "1800-2012"},
		Features:  []string{"lexical", "block-balance", "bracket-balance", "duplicate-units"},
	}
}

// CompileSource implements compiler.ResultCompiler.
func (r *Reference) CompileSource(src string) (*compiler.CompileResult, error) {
	if !r.initialized {
		return nil, errors.New("reference compiler used before Initialize")
	}

	res := compiler.NewResult()
	start := r.now()

	tokens, lexErrs := lex(src)
	lexed := r.now()
	for _, e := range lexErrs {
		res.AddError(e)
	}

	a := check(tokens)
	parsed := r.now()
	for _, e := range a.errs {
		if e.Category == compiler.CategorySyntax {
			res.AddError(e)
		}
	}

	for _, e := range a.errs {
		if e.Category != compiler.CategorySyntax {
			res.AddError(e)
		}
	}
	for _, w := range a.warnings {
		res.AddWarning(w)
	}
	done := r.now()

	res.Metrics = compiler.CompileMetrics{
		TotalTime:    done.Sub(start),
		LexTime:      lexed.Sub(start),
		ParseTime:    parsed.Sub(lexed),
		SemanticTime: done.Sub(parsed),
		Tokens:       len(tokens),
		Lines:        compiler.CountLines(src),
		ASTNodes:     a.nodes,
	}
	return res, nil
}
