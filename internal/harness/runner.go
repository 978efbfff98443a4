package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/svconform/internal/compiler"
	"github.com/roach88/svconform/internal/fixture"
)

// Runner executes registry cases against fresh backend instances.
//
// Cases run strictly one at a time; each case's result is released and its
// backend shut down before the next begins. A compile call that never
// returns blocks the run.
type Runner struct {
	registry *fixture.Registry
	factory  compiler.Factory
	logger   *slog.Logger
	now      func() time.Time
	skipTags []string
	onCase   func(CaseResult)
	info     compiler.CompilerInfo
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRunnerLogger sets the logger for per-case diagnostics.
func WithRunnerLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRunnerClock overrides the clock used for case and run timing.
func WithRunnerClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// WithSkipTags marks cases carrying any of tags as skipped.
func WithSkipTags(tags ...string) RunnerOption {
	return func(r *Runner) {
		r.skipTags = append(r.skipTags, tags...)
	}
}

// OnCase registers a callback invoked after each case completes.
func OnCase(fn func(CaseResult)) RunnerOption {
	return func(r *Runner) {
		r.onCase = fn
	}
}

// NewRunner creates a runner. The factory is probed once so a backend with
// no compatible compile operation aborts setup before any case runs. The
// probe is described and shut down without being initialized.
func NewRunner(reg *fixture.Registry, factory compiler.Factory, opts ...RunnerOption) (*Runner, error) {
	if reg == nil {
		return nil, fmt.Errorf("runner: nil registry")
	}
	if factory == nil {
		return nil, fmt.Errorf("runner: nil backend factory")
	}

	r := &Runner{
		registry: reg,
		factory:  factory,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	probe, err := factory()
	if err != nil {
		return nil, fmt.Errorf("runner: create backend: %w", err)
	}
	a, err := compiler.NewAdapter(probe)
	if err != nil {
		return nil, fmt.Errorf("runner: %w", err)
	}
	r.info = a.Describe()
	if err := a.Shutdown(); err != nil {
		r.logger.Warn("backend probe shutdown failed", "error", err)
	}

	return r, nil
}

// Info describes the backend under test.
func (r *Runner) Info() compiler.CompilerInfo {
	return r.info
}

// Registry returns the registry the runner draws cases from.
func (r *Runner) Registry() *fixture.Registry {
	return r.registry
}

// RunAll runs every case in registry order. Cancellation is observed between
// cases; the partial summary is returned with ctx.Err().
func (r *Runner) RunAll(ctx context.Context) (*Summary, error) {
	return r.run(ctx, r.registry.Cases())
}

// RunByTag runs only the cases carrying tag. A case runs at most once no
// matter how many times it carries the tag. No match is not an error.
func (r *Runner) RunByTag(ctx context.Context, tag string) (*TagSummary, error) {
	matched := r.registry.ByTag(tag)
	sum, err := r.run(ctx, matched)
	ts := &TagSummary{
		Tag:     tag,
		Matched: len(matched),
		Passed:  sum.Passed,
		Summary: sum,
	}
	if len(matched) == 0 {
		r.logger.Info("no cases match tag", "tag", tag)
	}
	return ts, err
}

// RunChapter discards the registry, reloads it from root/chapter alone and
// runs it. It mutates the shared registry and must not overlap another run.
func (r *Runner) RunChapter(ctx context.Context, root, chapter string) (*Summary, error) {
	if err := r.registry.LoadChapter(root, chapter); err != nil {
		return nil, fmt.Errorf("load chapter %s: %w", chapter, err)
	}
	return r.RunAll(ctx)
}

func (r *Runner) run(ctx context.Context, cases []*fixture.TestCase) (*Summary, error) {
	sum := newSummary()
	start := r.now()
	defer func() {
		sum.TotalTime = r.now().Sub(start)
	}()

	for _, tc := range cases {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		cr := r.runCase(tc)
		sum.add(cr)
		if r.onCase != nil {
			r.onCase(cr)
		}
	}
	return sum, nil
}

func (r *Runner) runCase(tc *fixture.TestCase) CaseResult {
	cr := CaseResult{
		Case:    tc,
		Name:    tc.Name,
		Path:    tc.Path,
		Chapter: tc.Chapter,
	}
	start := r.now()
	defer func() {
		r.logger.Debug("case finished",
			"case", tc.Name,
			"outcome", cr.Outcome.String(),
			"elapsed", cr.Elapsed,
		)
	}()
	finish := func(o Outcome, msg string) CaseResult {
		cr.Outcome = o
		cr.Message = msg
		cr.Elapsed = r.now().Sub(start)
		return cr
	}

	if len(r.skipTags) > 0 && tc.HasAnyTag(r.skipTags) {
		return finish(OutcomeSkip, "skipped by tag")
	}

	src, err := fixture.ReadSource(tc.Path, r.registry.MaxFixtureBytes())
	if err != nil {
		r.logger.Warn("fixture unreadable", "case", tc.Name, "path", tc.Path, "error", err)
		return finish(OutcomeErrorCompile, err.Error())
	}

	// Fresh instance per case: nothing a backend caches can leak into the
	// next fixture.
	inst, err := r.factory()
	if err != nil {
		return finish(OutcomeErrorRuntime, fmt.Sprintf("create backend: %v", err))
	}
	a, err := compiler.NewAdapter(inst, compiler.WithClock(r.now))
	if err != nil {
		return finish(OutcomeErrorRuntime, err.Error())
	}
	if err := a.Initialize(); err != nil {
		return finish(OutcomeErrorRuntime, fmt.Sprintf("initialize backend: %v", err))
	}
	defer func() {
		if err := a.Shutdown(); err != nil {
			r.logger.Warn("backend shutdown failed", "case", tc.Name, "error", err)
		}
	}()

	res, compileErr := a.Compile(src)
	if compileErr != nil {
		r.logger.Warn("compiler host failure",
			"case", tc.Name,
			"should_fail", tc.ShouldFail,
			"error", compileErr,
		)
	}

	outcome, msg := Classify(tc.ShouldFail, tc.ShouldFailReason, res, compileErr)
	if res != nil {
		cr.Diagnostics = res.Messages()
		cr.Warnings = len(res.Warnings)
		cr.Metrics = res.Metrics
		res.Release()
	}
	return finish(outcome, msg)
}
