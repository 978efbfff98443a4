package harness

import (
	"time"

	"github.com/roach88/svconform/internal/compiler"
	"github.com/roach88/svconform/internal/fixture"
)

// CaseResult is the outcome of running one test case.
type CaseResult struct {
	Case *fixture.TestCase `json:"-"`

	Name    string        `json:"name"`
	Path    string        `json:"path"`
	Chapter string        `json:"chapter,omitempty"`
	Outcome Outcome       `json:"outcome"`
	Message string        `json:"message,omitempty"`
	Elapsed time.Duration `json:"elapsed"`

	// Diagnostics are the rendered error messages, copied out of the
	// CompileResult before it is released.
	Diagnostics []string                `json:"diagnostics,omitempty"`
	Warnings    int                     `json:"warnings,omitempty"`
	Metrics     compiler.CompileMetrics `json:"metrics"`
}

// Summary aggregates the results of a run.
type Summary struct {
	Cases []CaseResult `json:"cases"`

	Total         int `json:"total"`
	Passed        int `json:"passed"`
	Failed        int `json:"failed"`
	Skipped       int `json:"skipped"`
	CompileErrors int `json:"error_compile"`
	RuntimeErrors int `json:"error_runtime"`

	// TotalTime is the wall time of the whole run; CaseTime sums the
	// elapsed times of the cases that were compiled. Skipped cases are
	// not included.
	TotalTime time.Duration `json:"total_time"`
	CaseTime  time.Duration `json:"case_time"`
}

func newSummary() *Summary {
	return &Summary{Cases: []CaseResult{}}
}

func (s *Summary) add(cr CaseResult) {
	s.Cases = append(s.Cases, cr)
	s.Total++
	if cr.Outcome != OutcomeSkip {
		s.CaseTime += cr.Elapsed
	}
	switch cr.Outcome {
	case OutcomePass:
		s.Passed++
	case OutcomeFail:
		s.Failed++
	case OutcomeSkip:
		s.Skipped++
	case OutcomeErrorCompile:
		s.CompileErrors++
	case OutcomeErrorRuntime:
		s.RuntimeErrors++
	}
}

// Errors is the number of error_compile and error_runtime outcomes.
func (s *Summary) Errors() int {
	return s.CompileErrors + s.RuntimeErrors
}

// HasFailures reports whether any case failed or errored.
func (s *Summary) HasFailures() bool {
	return s.Failed+s.Errors() > 0
}

// ExitCode is 1 when the run has failures, 0 otherwise.
func (s *Summary) ExitCode() int {
	if s.HasFailures() {
		return 1
	}
	return 0
}

// AverageTime is the mean elapsed time of the cases that were compiled.
func (s *Summary) AverageTime() time.Duration {
	ran := s.Total - s.Skipped
	if ran <= 0 {
		return 0
	}
	return s.CaseTime / time.Duration(ran)
}

// Throughput is cases per second over the run's wall time.
func (s *Summary) Throughput() float64 {
	if s.TotalTime <= 0 {
		return 0
	}
	return float64(s.Total) / s.TotalTime.Seconds()
}

// Failures returns the results whose outcome fails the run.
func (s *Summary) Failures() []CaseResult {
	var out []CaseResult
	for _, cr := range s.Cases {
		if cr.Outcome.IsFailure() {
			out = append(out, cr)
		}
	}
	return out
}

// TagSummary is the result of a tag-filtered run.
type TagSummary struct {
	Tag     string   `json:"tag"`
	Matched int      `json:"matched"`
	Passed  int      `json:"passed"`
	Summary *Summary `json:"summary"`
}
