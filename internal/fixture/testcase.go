package fixture

import (
	"fmt"
	"io"
	"os"
)

// DefaultMaxFixtureBytes bounds how much of a fixture is ever read.
const DefaultMaxFixtureBytes = 1 << 20

// maxLineBytes bounds a single scanned line.
const maxLineBytes = DefaultMaxFixtureBytes

// TestCase is one fixture plus its parsed metadata.
type TestCase struct {
	// Name is the filename without its extension.
	Name string `json:"name"`

	// Path is the fixture path as produced by the directory walk.
	Path string `json:"path"`

	// RelPath is Path relative to the root the fixture was loaded from.
	RelPath string `json:"rel_path"`

	// Chapter is the catalog subdirectory the fixture belongs to, or empty
	// for fixtures directly under the load root.
	Chapter string `json:"chapter,omitempty"`

	Description      string   `json:"description"`
	Tags             []string `json:"tags"`
	ShouldFail       bool     `json:"should_fail"`
	ShouldFailReason string   `json:"should_fail_reason,omitempty"`
}

// HasTag reports tag membership. Duplicate tags are tolerated.
func (tc *TestCase) HasTag(tag string) bool {
	for _, t := range tc.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// HasAnyTag reports whether any of tags is present.
func (tc *TestCase) HasAnyTag(tags []string) bool {
	for _, t := range tags {
		if tc.HasTag(t) {
			return true
		}
	}
	return false
}

func (tc *TestCase) apply(md Metadata) {
	tc.Description = md.Description
	tc.Tags = md.Tags
	tc.ShouldFail = md.ShouldFail
	tc.ShouldFailReason = md.ShouldFailReason
}

// ErrTooLarge is returned by ReadSource for fixtures over the size limit.
type ErrTooLarge struct {
	Path  string
	Size  int64
	Limit int64
}

func (e *ErrTooLarge) Error() string {
	return fmt.Sprintf("fixture %s is %d bytes, limit is %d", e.Path, e.Size, e.Limit)
}

// ReadSource reads a fixture, refusing anything larger than limit bytes.
// A limit of zero or less uses DefaultMaxFixtureBytes.
func ReadSource(path string, limit int64) (string, error) {
	if limit <= 0 {
		limit = DefaultMaxFixtureBytes
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat fixture: %w", err)
	}
	if info.Size() > limit {
		return "", &ErrTooLarge{Path: path, Size: info.Size(), Limit: limit}
	}

	// Read one byte past the limit in case the file grew after Stat.
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return "", fmt.Errorf("read fixture: %w", err)
	}
	if int64(len(data)) > limit {
		return "", &ErrTooLarge{Path: path, Size: int64(len(data)), Limit: limit}
	}
	return string(data), nil
}
