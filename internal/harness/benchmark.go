package harness

import (
	"io"
	"log/slog"
	"time"

	"github.com/roach88/svconform/internal/compiler"
	"github.com/roach88/svconform/internal/fixture"
)

// BenchmarkResult holds latency statistics for repeated compile calls.
// Only calls that returned a structured result are timed; host failures
// are counted in Failed and excluded.
type BenchmarkResult struct {
	Iterations     int           `json:"iterations"`
	Succeeded      int           `json:"succeeded"`
	Failed         int           `json:"failed"`
	TotalTime      time.Duration `json:"total_time"`
	AverageTime    time.Duration `json:"average_time"`
	Lines          int           `json:"lines"`
	LinesPerSecond float64       `json:"lines_per_second"`
}

// Bencher measures raw compile latency through an adapter, independent of
// whether the backend accepts the input.
type Bencher struct {
	adapter  *compiler.Adapter
	now      func() time.Time
	maxBytes int64
	logger   *slog.Logger
}

// BenchOption configures a Bencher.
type BenchOption func(*Bencher)

// WithBenchClock overrides the clock used for timing.
func WithBenchClock(now func() time.Time) BenchOption {
	return func(b *Bencher) {
		if now != nil {
			b.now = now
		}
	}
}

// WithBenchLogger sets the logger.
func WithBenchLogger(l *slog.Logger) BenchOption {
	return func(b *Bencher) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithBenchMaxBytes bounds the size of benchmark input files.
func WithBenchMaxBytes(n int64) BenchOption {
	return func(b *Bencher) {
		if n > 0 {
			b.maxBytes = n
		}
	}
}

// NewBencher creates a Bencher over a.
func NewBencher(a *compiler.Adapter, opts ...BenchOption) *Bencher {
	b := &Bencher{
		adapter:  a,
		now:      time.Now,
		maxBytes: fixture.DefaultMaxFixtureBytes,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Repeat compiles src iterations times.
func (b *Bencher) Repeat(src string, iterations int) BenchmarkResult {
	var acc benchAccumulator
	lines := compiler.CountLines(src)
	for i := 0; i < iterations; i++ {
		acc.record(b.once(src), lines)
	}
	return acc.result()
}

// Files compiles each file once. An unreadable file counts as a failed
// invocation.
func (b *Bencher) Files(paths []string) BenchmarkResult {
	var acc benchAccumulator
	for _, p := range paths {
		src, err := fixture.ReadSource(p, b.maxBytes)
		if err != nil {
			b.logger.Warn("benchmark input unreadable", "path", p, "error", err)
			acc.record(-1, 0)
			continue
		}
		acc.record(b.once(src), compiler.CountLines(src))
	}
	return acc.result()
}

// once times a single call. It returns -1 for a host failure.
func (b *Bencher) once(src string) time.Duration {
	start := b.now()
	res, err := b.adapter.Compile(src)
	elapsed := b.now().Sub(start)
	if err != nil {
		b.logger.Debug("benchmark invocation failed", "error", err)
		return -1
	}
	res.Release()
	return elapsed
}

type benchAccumulator struct {
	r BenchmarkResult
}

func (a *benchAccumulator) record(elapsed time.Duration, lines int) {
	a.r.Iterations++
	if elapsed < 0 {
		a.r.Failed++
		return
	}
	a.r.Succeeded++
	a.r.TotalTime += elapsed
	a.r.Lines += lines
}

func (a *benchAccumulator) result() BenchmarkResult {
	r := a.r
	if r.Succeeded > 0 {
		r.AverageTime = r.TotalTime / time.Duration(r.Succeeded)
		if r.AverageTime > 0 {
			avgLines := float64(r.Lines) / float64(r.Succeeded)
			r.LinesPerSecond = avgLines / r.AverageTime.Seconds()
		}
	}
	return r
}
