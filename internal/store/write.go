package store

import (
	"context"
	"fmt"

	"github.com/roach88/svconform/internal/compiler"
	"github.com/roach88/svconform/internal/harness"
)

// WriteRun stores a run summary and all of its case results in one
// transaction. scope names what was run (all, a tag, a chapter).
func (s *Store) WriteRun(ctx context.Context, info compiler.CompilerInfo, scope string, sum *harness.Summary) (Run, error) {
	run := Run{
		ID:             s.ids.Generate(),
		StartedAt:      s.now().UTC(),
		Backend:        info.Name,
		BackendVersion: info.Version,
		Scope:          scope,
		Total:          sum.Total,
		Passed:         sum.Passed,
		Failed:         sum.Failed,
		Skipped:        sum.Skipped,
		CompileErrors:  sum.CompileErrors,
		RuntimeErrors:  sum.RuntimeErrors,
		TotalTime:      sum.TotalTime,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, started_at, backend, backend_version, scope, total, passed, failed, skipped, error_compile, error_runtime, total_time_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		formatTime(run.StartedAt),
		run.Backend,
		run.BackendVersion,
		run.Scope,
		run.Total,
		run.Passed,
		run.Failed,
		run.Skipped,
		run.CompileErrors,
		run.RuntimeErrors,
		int64(run.TotalTime),
	)
	if err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO case_results
		(run_id, seq, name, path, chapter, outcome, message, tags, elapsed_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}
	defer stmt.Close()

	for i, cr := range sum.Cases {
		var tags []string
		if cr.Case != nil {
			tags = cr.Case.Tags
		}
		tagsJSON, err := marshalTags(tags)
		if err != nil {
			return Run{}, fmt.Errorf("write case %s: %w", cr.Name, err)
		}
		if _, err := stmt.ExecContext(ctx,
			run.ID,
			i,
			cr.Name,
			cr.Path,
			cr.Chapter,
			cr.Outcome.String(),
			cr.Message,
			tagsJSON,
			int64(cr.Elapsed),
		); err != nil {
			return Run{}, fmt.Errorf("write case %s: %w", cr.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}
	return run, nil
}

// WriteBenchmark stores one benchmark result.
func (s *Store) WriteBenchmark(ctx context.Context, info compiler.CompilerInfo, r harness.BenchmarkResult) (Benchmark, error) {
	b := Benchmark{
		ID:             s.ids.Generate(),
		RunAt:          s.now().UTC(),
		Backend:        info.Name,
		BackendVersion: info.Version,
		Iterations:     r.Iterations,
		Succeeded:      r.Succeeded,
		Failed:         r.Failed,
		TotalTime:      r.TotalTime,
		AverageTime:    r.AverageTime,
		Lines:          r.Lines,
		LinesPerSecond: r.LinesPerSecond,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO benchmarks
		(id, run_at, backend, backend_version, iterations, succeeded, failed, total_time_ns, average_time_ns, lines, lines_per_second)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		b.ID,
		formatTime(b.RunAt),
		b.Backend,
		b.BackendVersion,
		b.Iterations,
		b.Succeeded,
		b.Failed,
		int64(b.TotalTime),
		int64(b.AverageTime),
		b.Lines,
		b.LinesPerSecond,
	)
	if err != nil {
		return Benchmark{}, fmt.Errorf("write benchmark: %w", err)
	}
	return b, nil
}
