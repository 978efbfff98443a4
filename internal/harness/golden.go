package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// AssertGolden compares the canonical snapshot of sum against
// testdata/golden/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func AssertGolden(t *testing.T, name string, sum *Summary) {
	t.Helper()

	data, err := Snapshot(name, sum)
	if err != nil {
		t.Fatalf("snapshot %s: %v", name, err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
}
