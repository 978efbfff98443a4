package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

const runColumns = `id, started_at, backend, backend_version, scope, total, passed, failed, skipped, error_compile, error_runtime, total_time_ns`

// ListRuns returns stored runs, newest first. limit <= 0 returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun returns a single run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return run, err
}

// ReadCaseResults returns the case results of a run in execution order.
// Returns an empty slice (not nil) when the run has no cases.
func (s *Store) ReadCaseResults(ctx context.Context, runID string) ([]CaseResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, name, path, chapter, outcome, message, tags, elapsed_ns
		FROM case_results
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query case results: %w", err)
	}
	defer rows.Close()

	results := []CaseResult{}
	for rows.Next() {
		var (
			cr      CaseResult
			tags    string
			elapsed int64
		)
		if err := rows.Scan(&cr.Seq, &cr.Name, &cr.Path, &cr.Chapter, &cr.Outcome, &cr.Message, &tags, &elapsed); err != nil {
			return nil, fmt.Errorf("scan case result: %w", err)
		}
		cr.Elapsed = time.Duration(elapsed)
		if cr.Tags, err = unmarshalTags(tags); err != nil {
			return nil, err
		}
		results = append(results, cr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate case results: %w", err)
	}
	return results, nil
}

// ListBenchmarks returns stored benchmarks, newest first. limit <= 0 returns
// all of them.
func (s *Store) ListBenchmarks(ctx context.Context, limit int) ([]Benchmark, error) {
	query := `
		SELECT id, run_at, backend, backend_version, iterations, succeeded, failed,
		       total_time_ns, average_time_ns, lines, lines_per_second
		FROM benchmarks
		ORDER BY run_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query benchmarks: %w", err)
	}
	defer rows.Close()

	out := []Benchmark{}
	for rows.Next() {
		var (
			b              Benchmark
			runAt          string
			total, average int64
		)
		if err := rows.Scan(&b.ID, &runAt, &b.Backend, &b.BackendVersion, &b.Iterations, &b.Succeeded, &b.Failed,
			&total, &average, &b.Lines, &b.LinesPerSecond); err != nil {
			return nil, fmt.Errorf("scan benchmark: %w", err)
		}
		if b.RunAt, err = parseTime(runAt); err != nil {
			return nil, err
		}
		b.TotalTime = time.Duration(total)
		b.AverageTime = time.Duration(average)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate benchmarks: %w", err)
	}
	return out, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		run       Run
		startedAt string
		total     int64
	)
	err := sc.Scan(&run.ID, &startedAt, &run.Backend, &run.BackendVersion, &run.Scope,
		&run.Total, &run.Passed, &run.Failed, &run.Skipped, &run.CompileErrors, &run.RuntimeErrors, &total)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, err
	}
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	if run.StartedAt, err = parseTime(startedAt); err != nil {
		return Run{}, err
	}
	run.TotalTime = time.Duration(total)
	return run, nil
}
