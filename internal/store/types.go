package store

import "time"

// Run is a stored conformance run.
type Run struct {
	ID             string        `json:"id"`
	StartedAt      time.Time     `json:"started_at"`
	Backend        string        `json:"backend"`
	BackendVersion string        `json:"backend_version"`
	Scope          string        `json:"scope"`
	Total          int           `json:"total"`
	Passed         int           `json:"passed"`
	Failed         int           `json:"failed"`
	Skipped        int           `json:"skipped"`
	CompileErrors  int           `json:"error_compile"`
	RuntimeErrors  int           `json:"error_runtime"`
	TotalTime      time.Duration `json:"total_time"`
}

// CaseResult is one stored case outcome. Seq is the case's position in the
// run, starting at 0.
type CaseResult struct {
	Seq     int           `json:"seq"`
	Name    string        `json:"name"`
	Path    string        `json:"path"`
	Chapter string        `json:"chapter,omitempty"`
	Outcome string        `json:"outcome"`
	Message string        `json:"message,omitempty"`
	Tags    []string      `json:"tags"`
	Elapsed time.Duration `json:"elapsed"`
}

// Benchmark is a stored benchmark result.
type Benchmark struct {
	ID             string        `json:"id"`
	RunAt          time.Time     `json:"run_at"`
	Backend        string        `json:"backend"`
	BackendVersion string        `json:"backend_version"`
	Iterations     int           `json:"iterations"`
	Succeeded      int           `json:"succeeded"`
	Failed         int           `json:"failed"`
	TotalTime      time.Duration `json:"total_time"`
	AverageTime    time.Duration `json:"average_time"`
	Lines          int           `json:"lines"`
	LinesPerSecond float64       `json:"lines_per_second"`
}
