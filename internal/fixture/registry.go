package fixture

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// DefaultExtensions are the recognized fixture source extensions.
var DefaultExtensions = []string{".sv", ".svh", ".v"}

// DefaultGeneric is the catalog's catch-all subdirectory.
const DefaultGeneric = "generic"

// DefaultChapters is the fixed catalog of chapter subdirectories, one per
// chapter of IEEE 1800 that carries conformance fixtures.
var DefaultChapters = func() []string {
	chapters := make([]string, 0, 22)
	for i := 5; i <= 26; i++ {
		chapters = append(chapters, fmt.Sprintf("chapter-%d", i))
	}
	return chapters
}()

// LoadError records a fixture excluded during discovery.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Registry is an ordered collection of test cases in discovery order.
//
// A Registry is not safe for concurrent use; scoped reloads replace its
// contents.
type Registry struct {
	cases      []*TestCase
	skipped    []*LoadError
	extensions map[string]bool
	maxBytes   int64
	logger     *slog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithExtensions replaces the recognized source extensions.
func WithExtensions(exts ...string) RegistryOption {
	return func(r *Registry) {
		if len(exts) == 0 {
			return
		}
		r.extensions = make(map[string]bool, len(exts))
		for _, e := range exts {
			if !strings.HasPrefix(e, ".") {
				e = "." + e
			}
			r.extensions[strings.ToLower(e)] = true
		}
	}
}

// WithMaxFixtureBytes sets the fixture size limit.
func WithMaxFixtureBytes(n int64) RegistryOption {
	return func(r *Registry) {
		if n > 0 {
			r.maxBytes = n
		}
	}
}

// WithLogger sets the logger for discovery diagnostics.
func WithLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		maxBytes: DefaultMaxFixtureBytes,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	WithExtensions(DefaultExtensions...)(r)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Cases returns the cases in discovery order.
func (r *Registry) Cases() []*TestCase {
	return r.cases
}

// Len returns the number of cases.
func (r *Registry) Len() int {
	return len(r.cases)
}

// Skipped returns the fixtures excluded because they could not be read.
func (r *Registry) Skipped() []*LoadError {
	return r.skipped
}

// MaxFixtureBytes returns the fixture size limit.
func (r *Registry) MaxFixtureBytes() int64 {
	return r.maxBytes
}

// Clear drops every case and load error the registry owns.
func (r *Registry) Clear() {
	for i := range r.cases {
		r.cases[i] = nil
	}
	r.cases = nil
	r.skipped = nil
}

// Load appends every fixture under root. A missing root is an error.
// The first directory level under root is recorded as the case's chapter.
func (r *Registry) Load(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("fixture root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("fixture root %s: not a directory", root)
	}
	return r.walk(root, root, "")
}

// LoadCatalog loads root/<chapter> for each catalog entry, then root/generic
// when generic is non-empty. Subdirectories that do not exist are skipped.
func (r *Registry) LoadCatalog(root string, chapters []string, generic string) error {
	dirs := chapters
	if generic != "" {
		dirs = append(append([]string{}, chapters...), generic)
	}
	for _, ch := range dirs {
		if err := r.loadSubdir(root, ch); err != nil {
			return err
		}
	}
	return nil
}

// LoadChapter clears the registry and reloads only root/<chapter>.
// A chapter that does not exist leaves the registry empty.
func (r *Registry) LoadChapter(root, chapter string) error {
	r.Clear()
	return r.loadSubdir(root, chapter)
}

func (r *Registry) loadSubdir(root, chapter string) error {
	dir := filepath.Join(root, chapter)
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		r.logger.Debug("chapter not present", "chapter", chapter, "dir", dir)
		return nil
	}
	if err != nil {
		return fmt.Errorf("chapter %s: %w", chapter, err)
	}
	if !info.IsDir() {
		r.logger.Debug("chapter is not a directory", "chapter", chapter, "dir", dir)
		return nil
	}
	return r.walk(dir, root, chapter)
}

// walk discovers fixtures under dir. Paths are made relative to base; when
// chapter is empty it is derived from the first element of the relative path.
func (r *Registry) walk(dir, base, chapter string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			r.exclude(path, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if !r.extensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		tc, err := r.loadCase(path, base, chapter)
		if err != nil {
			r.exclude(path, err)
			return nil
		}
		r.cases = append(r.cases, tc)
		return nil
	})
}

func (r *Registry) loadCase(path, base, chapter string) (*TestCase, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	md, err := ParseMetadata(io.LimitReader(f, r.maxBytes))
	if err != nil {
		return nil, err
	}

	rel, err := filepath.Rel(base, path)
	if err != nil {
		rel = path
	}
	if chapter == "" {
		if i := strings.IndexRune(rel, filepath.Separator); i > 0 {
			chapter = rel[:i]
		}
	}

	name := filepath.Base(path)
	tc := &TestCase{
		Name:    strings.TrimSuffix(name, filepath.Ext(name)),
		Path:    path,
		RelPath: filepath.ToSlash(rel),
		Chapter: chapter,
	}
	tc.apply(md)
	return tc, nil
}

func (r *Registry) exclude(path string, err error) {
	le := &LoadError{Path: path, Err: err}
	r.skipped = append(r.skipped, le)
	r.logger.Warn("fixture excluded", "path", path, "error", err)
}

// ByTag returns the cases carrying tag, in registry order.
func (r *Registry) ByTag(tag string) []*TestCase {
	var out []*TestCase
	for _, tc := range r.cases {
		if tc.HasTag(tag) {
			out = append(out, tc)
		}
	}
	return out
}

// ChapterCount is one row of a per-chapter breakdown.
type ChapterCount struct {
	Chapter string `json:"chapter"`
	Count   int    `json:"count"`
}

// Breakdown counts cases per chapter, ordered by first appearance.
// Cases directly under the load root are reported under ".".
func (r *Registry) Breakdown() []ChapterCount {
	idx := make(map[string]int)
	var rows []ChapterCount
	for _, tc := range r.cases {
		ch := tc.Chapter
		if ch == "" {
			ch = "."
		}
		i, ok := idx[ch]
		if !ok {
			i = len(rows)
			idx[ch] = i
			rows = append(rows, ChapterCount{Chapter: ch})
		}
		rows[i].Count++
	}
	return rows
}
