package harness

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/svconform/internal/compiler"
	"github.com/roach88/svconform/internal/fixture"
)

func writeFixture(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func loadRegistry(t *testing.T, root string, opts ...fixture.RegistryOption) *fixture.Registry {
	t.Helper()
	reg := fixture.NewRegistry(opts...)
	require.NoError(t, reg.Load(root))
	return reg
}

// richFunc adapts a function to the rich compile shape.
type richFunc func(src string) (*compiler.CompileResult, error)

func (f richFunc) CompileSource(src string) (*compiler.CompileResult, error) { return f(src) }

// simpleFunc adapts a function to the simple compile shape.
type simpleFunc func(src string) error

func (f simpleFunc) Compile(src string) error { return f(src) }

// tracker records lifecycle calls across the instances a factory creates.
type tracker struct {
	mu        sync.Mutex
	instances int
	inits     int
	shutdowns int
	compiles  int
	results   []*compiler.CompileResult

	compile func(src string) (*compiler.CompileResult, error)
	initErr error
}

type trackedBackend struct {
	t *tracker
}

func (b *trackedBackend) Initialize() error {
	b.t.mu.Lock()
	defer b.t.mu.Unlock()
	b.t.inits++
	return b.t.initErr
}

func (b *trackedBackend) Shutdown() error {
	b.t.mu.Lock()
	defer b.t.mu.Unlock()
	b.t.shutdowns++
	return nil
}

func (b *trackedBackend) CompileSource(src string) (*compiler.CompileResult, error) {
	b.t.mu.Lock()
	b.t.compiles++
	b.t.mu.Unlock()

	res, err := b.t.compile(src)
	if res != nil {
		b.t.mu.Lock()
		b.t.results = append(b.t.results, res)
		b.t.mu.Unlock()
	}
	return res, err
}

func (tr *tracker) factory() compiler.Factory {
	return func() (any, error) {
		tr.mu.Lock()
		defer tr.mu.Unlock()
		tr.instances++
		return &trackedBackend{t: tr}, nil
	}
}

// accepting compiles everything successfully.
func accepting(string) (*compiler.CompileResult, error) {
	return compiler.NewResult(), nil
}

// rejecting fails every source with one syntax error.
func rejecting(string) (*compiler.CompileResult, error) {
	res := compiler.NewResult()
	res.AddError(compiler.CompileError{Message: "bad", Line: 1, Column: 1, Category: compiler.CategorySyntax})
	return res, nil
}

func outcomes(sum *Summary) map[string]Outcome {
	m := make(map[string]Outcome, len(sum.Cases))
	for _, cr := range sum.Cases {
		m[cr.Name] = cr.Outcome
	}
	return m
}
