package harness

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/svconform/internal/compiler"
)

// Outcome classifies one test case run.
type Outcome int

// Outcome values.
const (
	OutcomePass Outcome = iota
	OutcomeFail
	OutcomeSkip
	OutcomeErrorCompile
	OutcomeErrorRuntime
)

var outcomeNames = [...]string{
	OutcomePass:         "pass",
	OutcomeFail:         "fail",
	OutcomeSkip:         "skip",
	OutcomeErrorCompile: "error_compile",
	OutcomeErrorRuntime: "error_runtime",
}

func (o Outcome) String() string {
	if int(o) < 0 || int(o) >= len(outcomeNames) {
		return fmt.Sprintf("outcome(%d)", int(o))
	}
	return outcomeNames[o]
}

// ParseOutcome is the inverse of Outcome.String.
func ParseOutcome(s string) (Outcome, error) {
	for i, name := range outcomeNames {
		if name == s {
			return Outcome(i), nil
		}
	}
	return 0, fmt.Errorf("unknown outcome %q", s)
}

// MarshalText renders the outcome by name in JSON and YAML.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText parses an outcome name.
func (o *Outcome) UnmarshalText(b []byte) error {
	v, err := ParseOutcome(string(b))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// IsFailure reports whether the outcome makes a run fail.
func (o Outcome) IsFailure() bool {
	return o == OutcomeFail || o == OutcomeErrorCompile || o == OutcomeErrorRuntime
}

// Classify maps a compile call to an outcome, applying should-fail
// inversion. err is the host-level failure returned by Adapter.Compile, if
// any; res is ignored when err is set.
func Classify(shouldFail bool, reason string, res *compiler.CompileResult, err error) (Outcome, string) {
	if err != nil {
		if shouldFail {
			return OutcomePass, fmt.Sprintf("failed as expected: %v", err)
		}
		var hostErr *compiler.HostError
		if errors.As(err, &hostErr) && hostErr.Panic {
			return OutcomeErrorRuntime, err.Error()
		}
		return OutcomeFail, fmt.Sprintf("compiler failure: %v", err)
	}

	if !res.Success {
		if shouldFail {
			return OutcomePass, ""
		}
		return OutcomeFail, rejectionMessage(res)
	}

	if shouldFail {
		if reason != "" {
			return OutcomeFail, fmt.Sprintf("should have failed (%s) but passed", reason)
		}
		return OutcomeFail, "should have failed but passed"
	}
	return OutcomePass, ""
}

func rejectionMessage(res *compiler.CompileResult) string {
	switch len(res.Errors) {
	case 0:
		return "compilation failed"
	case 1:
		return "compilation failed: " + res.Errors[0].Error()
	default:
		var b strings.Builder
		fmt.Fprintf(&b, "compilation failed: %s (+%d more)", res.Errors[0].Error(), len(res.Errors)-1)
		return b.String()
	}
}
