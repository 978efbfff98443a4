package compiler

import (
	"errors"
	"fmt"
	"time"
)

// ResultCompiler is the rich compile shape: the backend builds the full
// CompileResult itself. A non-nil error is a host-level failure, not a
// rejection of the source.
type ResultCompiler interface {
	CompileSource(src string) (*CompileResult, error)
}

// SimpleCompiler is the simple compile shape: nil on acceptance, an error
// describing the rejection otherwise.
type SimpleCompiler interface {
	Compile(src string) error
}

// Initializer is implemented by backends that need setup before compiling.
type Initializer interface {
	Initialize() error
}

// Shutdowner is implemented by backends that hold resources.
type Shutdowner interface {
	Shutdown() error
}

// Describer is implemented by backends that can report their capabilities.
type Describer interface {
	Describe() CompilerInfo
}

// Factory creates a fresh backend instance. The runner calls it once per
// test case so no state carries over between fixtures.
type Factory func() (any, error)

// ErrNoCompatibleOperation is returned by NewAdapter when the backend exposes
// neither compile shape.
var ErrNoCompatibleOperation = errors.New("no compatible compile operation")

// HostError is a failure of the compile call itself (resource exhaustion,
// a crashed backend) as opposed to a structured rejection of the source.
type HostError struct {
	Backend string
	Panic   bool
	Err     error
}

func (e *HostError) Error() string {
	if e.Panic {
		return fmt.Sprintf("%s: compiler panicked: %v", e.Backend, e.Err)
	}
	return fmt.Sprintf("%s: host failure: %v", e.Backend, e.Err)
}

func (e *HostError) Unwrap() error {
	return e.Err
}

// Capabilities records which operations were bound at construction.
type Capabilities struct {
	Rich       bool `json:"rich"`
	Simple     bool `json:"simple"`
	Initialize bool `json:"initialize"`
	Shutdown   bool `json:"shutdown"`
	Describe   bool `json:"describe"`
}

// Adapter presents one fixed surface over any backend. Capability
// negotiation happens once in NewAdapter; calls never re-inspect the backend.
type Adapter struct {
	backend string
	caps    Capabilities
	now     func() time.Time

	compile    func(src string) (*CompileResult, error)
	initialize func() error
	shutdown   func() error
	describe   func() CompilerInfo
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithClock overrides the clock used to time compile calls.
func WithClock(now func() time.Time) AdapterOption {
	return func(a *Adapter) {
		if now != nil {
			a.now = now
		}
	}
}

// NewAdapter binds the operations impl exposes. The rich shape is preferred
// when a backend offers both.
func NewAdapter(impl any, opts ...AdapterOption) (*Adapter, error) {
	if impl == nil {
		return nil, fmt.Errorf("nil backend: %w", ErrNoCompatibleOperation)
	}

	a := &Adapter{
		backend:    fmt.Sprintf("%T", impl),
		now:        time.Now,
		initialize: func() error { return nil },
		shutdown:   func() error { return nil },
		describe:   DefaultInfo,
	}
	for _, opt := range opts {
		opt(a)
	}

	switch c := impl.(type) {
	case ResultCompiler:
		a.caps.Rich = true
		a.compile = a.bindRich(c)
	case SimpleCompiler:
		a.caps.Simple = true
		a.compile = a.bindSimple(c)
	default:
		return nil, fmt.Errorf("%s: %w", a.backend, ErrNoCompatibleOperation)
	}
	if _, ok := impl.(SimpleCompiler); ok {
		a.caps.Simple = true
	}

	if i, ok := impl.(Initializer); ok {
		a.caps.Initialize = true
		a.initialize = i.Initialize
	}
	if s, ok := impl.(Shutdowner); ok {
		a.caps.Shutdown = true
		a.shutdown = s.Shutdown
	}
	if d, ok := impl.(Describer); ok {
		a.caps.Describe = true
		a.describe = d.Describe
	}

	return a, nil
}

func (a *Adapter) bindRich(c ResultCompiler) func(string) (*CompileResult, error) {
	return func(src string) (*CompileResult, error) {
		start := a.now()
		res, err := c.CompileSource(src)
		elapsed := a.now().Sub(start)
		if err != nil {
			return nil, &HostError{Backend: a.backend, Err: err}
		}
		if res == nil {
			return nil, &HostError{Backend: a.backend, Err: errors.New("compiler returned no result")}
		}
		if res.Metrics.TotalTime == 0 {
			res.Metrics.TotalTime = elapsed
		}
		if res.Metrics.Lines == 0 {
			res.Metrics.Lines = CountLines(src)
		}
		return res, nil
	}
}

func (a *Adapter) bindSimple(c SimpleCompiler) func(string) (*CompileResult, error) {
	return func(src string) (*CompileResult, error) {
		start := a.now()
		err := c.Compile(src)
		elapsed := a.now().Sub(start)

		res := NewResult()
		res.Metrics.TotalTime = elapsed
		res.Metrics.Lines = CountLines(src)
		if err != nil {
			var ce *CompileError
			if errors.As(err, &ce) {
				res.AddError(*ce)
			} else {
				res.AddError(CompileError{
					Message:  fmt.Sprintf("compilation failed: %v", err),
					Category: CategoryOther,
				})
			}
		}
		return res, nil
	}
}

// Compile runs the bound compile operation. A returned error is always a
// *HostError; rejections of the source come back as Success=false.
func (a *Adapter) Compile(src string) (res *CompileResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = &HostError{Backend: a.backend, Panic: true, Err: fmt.Errorf("%v", r)}
		}
	}()
	return a.compile(src)
}

// Initialize runs the backend's setup, or nothing.
func (a *Adapter) Initialize() error {
	return a.initialize()
}

// Shutdown releases the backend, or does nothing.
func (a *Adapter) Shutdown() error {
	return a.shutdown()
}

// Describe returns the backend's info, or DefaultInfo.
func (a *Adapter) Describe() CompilerInfo {
	return a.describe()
}

// Capabilities returns what was bound at construction.
func (a *Adapter) Capabilities() Capabilities {
	return a.caps
}

// Backend returns the concrete backend type name.
func (a *Adapter) Backend() string {
	return a.backend
}
