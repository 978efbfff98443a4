// Package config loads harness settings from YAML or CUE files.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/svconform/internal/backend"
	"github.com/roach88/svconform/internal/fixture"
)

//go:embed schema.cue
var schemaCUE string

// DefaultBenchIterations is the benchmark repeat count when none is set.
const DefaultBenchIterations = 100

// Config is the harness configuration. Zero-valued fields take defaults.
type Config struct {
	Root            string      `yaml:"root" json:"root,omitempty"`
	Backend         string      `yaml:"backend" json:"backend,omitempty"`
	Chapters        []string    `yaml:"chapters" json:"chapters,omitempty"`
	Generic         string      `yaml:"generic" json:"generic,omitempty"`
	Extensions      []string    `yaml:"extensions" json:"extensions,omitempty"`
	MaxFixtureBytes int64       `yaml:"max_fixture_bytes" json:"max_fixture_bytes,omitempty"`
	SkipTags        []string    `yaml:"skip_tags" json:"skip_tags,omitempty"`
	Database        string      `yaml:"database" json:"database,omitempty"`
	Bench           BenchConfig `yaml:"bench" json:"bench"`
	Exec            ExecConfig  `yaml:"exec" json:"exec"`
}

// BenchConfig configures the bench command.
type BenchConfig struct {
	Iterations int    `yaml:"iterations" json:"iterations,omitempty"`
	Source     string `yaml:"source" json:"source,omitempty"`
}

// ExecConfig configures the exec backend.
type ExecConfig struct {
	Command string   `yaml:"command" json:"command,omitempty"`
	Args    []string `yaml:"args" json:"args,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills every unset field.
func (c *Config) ApplyDefaults() {
	if c.Root == "" {
		c.Root = "tests"
	}
	if c.Backend == "" {
		c.Backend = backend.ReferenceName
	}
	if c.Chapters == nil {
		c.Chapters = append([]string(nil), fixture.DefaultChapters...)
	}
	if c.Generic == "" {
		c.Generic = fixture.DefaultGeneric
	}
	if c.Extensions == nil {
		c.Extensions = append([]string(nil), fixture.DefaultExtensions...)
	}
	if c.MaxFixtureBytes == 0 {
		c.MaxFixtureBytes = fixture.DefaultMaxFixtureBytes
	}
	if c.Bench.Iterations == 0 {
		c.Bench.Iterations = DefaultBenchIterations
	}
}

// Validate checks settings the decoders cannot.
func (c *Config) Validate() error {
	if c.MaxFixtureBytes < 0 {
		return fmt.Errorf("max_fixture_bytes must be positive, got %d", c.MaxFixtureBytes)
	}
	if c.Bench.Iterations < 0 {
		return fmt.Errorf("bench.iterations must be positive, got %d", c.Bench.Iterations)
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extension %q must start with '.'", ext)
		}
	}
	if c.Backend == backend.ExecName && c.Exec.Command == "" {
		return errors.New("backend exec requires exec.command")
	}
	return nil
}

// BackendOptions returns the options for backend.Factory.
func (c *Config) BackendOptions() backend.Options {
	return backend.Options{Command: c.Exec.Command, Args: c.Exec.Args}
}

// Error is a configuration error with the file position when known.
type Error struct {
	Path    string
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Load reads a configuration file, chosen by extension: .yaml and .yml are
// YAML, .cue is CUE validated against the embedded schema. Defaults are
// applied after decoding.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg *Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		cfg, err = decodeYAML(path, data)
	case ".cue":
		cfg, err = decodeCUE(path, data)
	default:
		return nil, fmt.Errorf("config %s: unsupported extension %q", path, ext)
	}
	if err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, &Error{Path: path, Message: err.Error()}
	}
	return cfg, nil
}

func decodeYAML(path string, data []byte) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, &Error{Path: path, Message: err.Error()}
	}
	return cfg, nil
}

func decodeCUE(path string, data []byte) (*Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("config schema: %w", err)
	}

	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(path, err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(path, err)
	}

	cfg := &Config{}
	if err := unified.Decode(cfg); err != nil {
		return nil, formatCUEError(path, err)
	}
	return cfg, nil
}

// formatCUEError returns the first CUE error with its source position.
func formatCUEError(path string, err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &Error{Path: path, Message: err.Error()}
	}

	first := errs[0]
	msg := first.Error()
	for _, pos := range cueerrors.Positions(first) {
		if pos.Filename() == path {
			return &Error{Path: path, Message: msg, Pos: pos}
		}
	}
	return &Error{Path: path, Message: msg}
}
