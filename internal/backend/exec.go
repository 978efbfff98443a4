package backend

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/roach88/svconform/internal/compiler"
)

// FilePlaceholder in Exec args is replaced by the path of the source file.
// When no argument contains it, the path is appended.
const FilePlaceholder = "{file}"

// diagLine matches "path:line[:col]: [severity:] message".
var diagLine = regexp.MustCompile(`^(.*?):(\d+)(?::(\d+))?:\s*(?:(error|warning|fatal error|note)\s*:\s*)?(.*)$`)

// Exec drives an external compiler process. The source is written to a file
// in a private temporary directory and the command is run on it; exit
// status zero accepts, any other exit status rejects with the diagnostics
// parsed from the combined output. Failure to start the process is a host
// failure.
type Exec struct {
	Command string
	Args    []string

	dir string
}

// NewExec creates an external compiler backend.
func NewExec(command string, args ...string) *Exec {
	return &Exec{Command: command, Args: args}
}

// Initialize creates the working directory.
func (e *Exec) Initialize() error {
	if e.Command == "" {
		return errors.New("exec backend: no command configured")
	}
	dir, err := os.MkdirTemp("", "svconform-exec-*")
	if err != nil {
		return fmt.Errorf("exec backend: create work dir: %w", err)
	}
	e.dir = dir
	return nil
}

// Shutdown removes the working directory.
func (e *Exec) Shutdown() error {
	if e.dir == "" {
		return nil
	}
	dir := e.dir
	e.dir = ""
	return os.RemoveAll(dir)
}

// Describe implements compiler.Describer.
func (e *Exec) Describe() compiler.CompilerInfo {
	return compiler.CompilerInfo{
		Name:     ExecName + ":" + filepath.Base(e.Command),
		Version:  "external",
		Features: []string{"process"},
	}
}

// CompileSource implements compiler.ResultCompiler.
func (e *Exec) CompileSource(src string) (*compiler.CompileResult, error) {
	if e.dir == "" {
		return nil, errors.New("exec backend used before Initialize")
	}

	file := filepath.Join(e.dir, "fixture.sv")
	if err := os.WriteFile(file, []byte(src), 0o600); err != nil {
		return nil, fmt.Errorf("write source: %w", err)
	}

	cmd := exec.Command(e.Command, e.args(file)...)
	cmd.Dir = e.dir
	out, err := cmd.CombinedOutput()

	res := compiler.NewResult()
	res.Metrics.Lines = compiler.CountLines(src)

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		for _, d := range parseDiagnostics(string(out), file) {
			if d.warning {
				res.AddWarning(d.asWarning())
			}
		}
		return res, nil
	case errors.As(err, &exitErr):
		for _, d := range parseDiagnostics(string(out), file) {
			if d.warning {
				res.AddWarning(d.asWarning())
			} else {
				res.AddError(d.CompileError)
			}
		}
		if res.Success {
			msg := strings.TrimSpace(string(out))
			if msg == "" {
				msg = exitErr.String()
			}
			res.AddError(compiler.CompileError{Message: msg, Category: compiler.CategoryOther})
		}
		return res, nil
	default:
		return nil, fmt.Errorf("run %s: %w", e.Command, err)
	}
}

func (e *Exec) args(file string) []string {
	args := make([]string, 0, len(e.Args)+1)
	substituted := false
	for _, a := range e.Args {
		if strings.Contains(a, FilePlaceholder) {
			a = strings.ReplaceAll(a, FilePlaceholder, file)
			substituted = true
		}
		args = append(args, a)
	}
	if !substituted {
		args = append(args, file)
	}
	return args
}

type diagnostic struct {
	compiler.CompileError
	warning bool
}

func (d diagnostic) asWarning() compiler.CompileWarning {
	return compiler.CompileWarning{
		Message:  d.Message,
		Line:     d.Line,
		Column:   d.Column,
		Category: d.Category,
	}
}

// parseDiagnostics extracts positioned diagnostics from compiler output.
// Lines that carry no position are ignored; references to the temporary
// source file are dropped from the File field. Lines of any length are
// scanned.
func parseDiagnostics(out, file string) []diagnostic {
	var ds []diagnostic
	sc := bufio.NewScanner(strings.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), max(len(out)+1, 64*1024))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		m := diagLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if m[4] == "note" {
			continue
		}
		d := diagnostic{warning: m[4] == "warning"}
		d.Line, _ = strconv.Atoi(m[2])
		if m[3] != "" {
			d.Column, _ = strconv.Atoi(m[3])
		}
		if m[1] != file && filepath.Base(m[1]) != filepath.Base(file) {
			d.File = m[1]
		}
		d.Message = m[5]
		d.Category = compiler.CategoryOther
		ds = append(ds, d)
	}
	return ds
}
