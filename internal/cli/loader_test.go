package cli

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefault(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "tests", cfg.Root)
	assert.Equal(t, "reference", cfg.Backend)
}

func TestLoadConfigCUE(t *testing.T) {
	path := filepath.Join(t.TempDir(), "svconform.cue")
	require.NoError(t, os.WriteFile(path, []byte(`backend: "lint"
skip_tags: ["slow"]
`), 0644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "lint", cfg.Backend)
	assert.Equal(t, []string{"slow"}, cfg.SkipTags)
}

func TestNewLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	quiet := newLogger(buf, false)
	assert.False(t, quiet.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, quiet.Enabled(context.Background(), slog.LevelInfo))

	loud := newLogger(buf, true)
	loud.Debug("case finished", "name", "good")
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "name=good")
}

func TestApplyRunFlags(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	cfg.SkipTags = []string{"slow"}

	s := &session{cfg: cfg}
	s.applyRunFlags("runs.db", []string{"flaky"})
	assert.Equal(t, "runs.db", s.cfg.Database)
	assert.Equal(t, []string{"slow", "flaky"}, s.cfg.SkipTags)

	s.applyRunFlags("", nil)
	assert.Equal(t, "runs.db", s.cfg.Database)
}

func TestSuiteScopeName(t *testing.T) {
	assert.Equal(t, "all", suite{}.scopeName())
	assert.Equal(t, "tag:parser", suite{tag: "parser"}.scopeName())
	assert.Equal(t, "chapter:chapter-5", suite{chapter: "chapter-5"}.scopeName())
	assert.Equal(t, "compliance", suite{scope: "compliance", tag: "x"}.scopeName())
}
