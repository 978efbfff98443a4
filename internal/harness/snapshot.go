package harness

import (
	"github.com/roach88/svconform/internal/canonical"
)

// Snapshot renders a summary as canonical JSON. Timings and metrics are left
// out so identical runs produce byte-identical snapshots.
func Snapshot(scope string, sum *Summary) ([]byte, error) {
	cases := make([]any, 0, len(sum.Cases))
	for _, cr := range sum.Cases {
		tags := []string{}
		if cr.Case != nil && cr.Case.Tags != nil {
			tags = cr.Case.Tags
		}
		c := map[string]any{
			"name":    cr.Name,
			"outcome": cr.Outcome.String(),
			"tags":    tags,
		}
		if cr.Chapter != "" {
			c["chapter"] = cr.Chapter
		}
		if cr.Message != "" {
			c["message"] = cr.Message
		}
		cases = append(cases, c)
	}

	return canonical.Marshal(map[string]any{
		"scope": scope,
		"cases": cases,
		"counts": map[string]any{
			"total":         sum.Total,
			"pass":          sum.Passed,
			"fail":          sum.Failed,
			"skip":          sum.Skipped,
			"error_compile": sum.CompileErrors,
			"error_runtime": sum.RuntimeErrors,
		},
	})
}
