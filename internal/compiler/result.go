package compiler

import (
	"fmt"
	"time"
)

// Category classifies a diagnostic by the compile stage that produced it.
type Category string

// Diagnostic categories.
const (
	CategoryLexical     Category = "lexical"
	CategorySyntax      Category = "syntax"
	CategorySemantic    Category = "semantic"
	CategoryTypeCheck   Category = "type_check"
	CategoryElaboration Category = "elaboration"
	CategoryOther       Category = "other"
)

// CompileError is a single error diagnostic.
// Line and Column are 1-based; zero means unknown.
type CompileError struct {
	Message  string   `json:"message"`
	Line     int      `json:"line,omitempty"`
	Column   int      `json:"column,omitempty"`
	File     string   `json:"file,omitempty"`
	Category Category `json:"category"`
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	return formatDiagnostic(e.File, e.Line, e.Column, e.Category, e.Message)
}

// CompileWarning is a single warning diagnostic. Warnings never affect Success.
type CompileWarning struct {
	Message  string   `json:"message"`
	Line     int      `json:"line,omitempty"`
	Column   int      `json:"column,omitempty"`
	File     string   `json:"file,omitempty"`
	Category Category `json:"category"`
}

// String renders the warning in the same position-prefixed form as errors.
func (w CompileWarning) String() string {
	return formatDiagnostic(w.File, w.Line, w.Column, w.Category, w.Message)
}

func formatDiagnostic(file string, line, col int, cat Category, msg string) string {
	if cat == "" {
		cat = CategoryOther
	}
	switch {
	case line > 0 && file != "":
		return fmt.Sprintf("%s:%d:%d: %s: %s", file, line, col, cat, msg)
	case line > 0:
		return fmt.Sprintf("%d:%d: %s: %s", line, col, cat, msg)
	default:
		return fmt.Sprintf("%s: %s", cat, msg)
	}
}

// CompileMetrics holds timing and size counters for one compile call.
// Backends fill the fields they know; the adapter fills TotalTime and Lines
// when a backend leaves them zero.
type CompileMetrics struct {
	TotalTime    time.Duration `json:"total_time"`
	LexTime      time.Duration `json:"lex_time,omitempty"`
	ParseTime    time.Duration `json:"parse_time,omitempty"`
	SemanticTime time.Duration `json:"semantic_time,omitempty"`
	Tokens       int           `json:"tokens,omitempty"`
	Lines        int           `json:"lines"`
	ASTNodes     int           `json:"ast_nodes,omitempty"`
	MemoryBytes  int64         `json:"memory_bytes,omitempty"`
}

// CompileResult is the outcome of one compile invocation.
//
// The result owns its diagnostics. Release drops them once the caller has
// classified the result; a released result reports no diagnostics.
type CompileResult struct {
	Success  bool             `json:"success"`
	Errors   []CompileError   `json:"errors,omitempty"`
	Warnings []CompileWarning `json:"warnings,omitempty"`
	Metrics  CompileMetrics   `json:"metrics"`

	released bool
}

// NewResult creates a successful result with no diagnostics.
func NewResult() *CompileResult {
	return &CompileResult{Success: true}
}

// AddError appends an error diagnostic and marks the result as failed.
func (r *CompileResult) AddError(e CompileError) {
	if e.Category == "" {
		e.Category = CategoryOther
	}
	r.Errors = append(r.Errors, e)
	r.Success = false
}

// AddWarning appends a warning diagnostic.
func (r *CompileResult) AddWarning(w CompileWarning) {
	if w.Category == "" {
		w.Category = CategoryOther
	}
	r.Warnings = append(r.Warnings, w)
}

// Messages returns the rendered error messages in order.
func (r *CompileResult) Messages() []string {
	msgs := make([]string, 0, len(r.Errors))
	for i := range r.Errors {
		msgs = append(msgs, r.Errors[i].Error())
	}
	return msgs
}

// Release drops the diagnostic storage owned by the result.
// It returns true only for the call that actually released; later calls
// are no-ops and return false.
func (r *CompileResult) Release() bool {
	if r == nil || r.released {
		return false
	}
	r.Errors = nil
	r.Warnings = nil
	r.released = true
	return true
}

// Released reports whether Release has been called.
func (r *CompileResult) Released() bool {
	return r.released
}

// CompilerInfo is the static capability description of a backend.
type CompilerInfo struct {
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	Standards []string `json:"standards,omitempty"`
	Features  []string `json:"features,omitempty"`
}

// DefaultInfo is returned for backends that cannot describe themselves.
func DefaultInfo() CompilerInfo {
	return CompilerInfo{
		Name:    "unknown",
		Version: "0.0.0",
	}
}

// Supports reports whether the backend lists the given standard version.
func (i CompilerInfo) Supports(standard string) bool {
	for _, s := range i.Standards {
		if s == standard {
			return true
		}
	}
	return false
}

// CountLines returns the number of lines in src. A trailing line without a
// newline counts; an empty source has zero lines.
func CountLines(src string) int {
	if src == "" {
		return 0
	}
	n := 0
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			n++
		}
	}
	if src[len(src)-1] != '\n' {
		n++
	}
	return n
}
