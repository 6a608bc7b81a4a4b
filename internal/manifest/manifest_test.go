package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	doc := []byte(`
name: caribbean
sources:
  - path: /data/barbados.db
  - path: /data/jamaica.db
    alias: jm
defaults:
  limit: 50
  sort_by: name
  order: asc
`)
	m, err := Parse(doc)
	require.NoError(t, err)

	assert.Equal(t, "caribbean", m.Name)
	require.Len(t, m.Sources, 2)
	assert.Equal(t, "/data/barbados.db", m.Sources[0].Path)
	assert.Empty(t, m.Sources[0].Alias)
	assert.Equal(t, "jm", m.Sources[1].Alias)
	assert.Equal(t, 50, m.Defaults.Limit)
	assert.Equal(t, "name", m.Defaults.SortBy)
	assert.Equal(t, "asc", m.Defaults.Order)
}

func TestParse_Minimal(t *testing.T) {
	m, err := Parse([]byte("sources:\n  - path: places.db\n"))
	require.NoError(t, err)
	assert.Empty(t, m.Name)
	require.Len(t, m.Sources, 1)
	assert.Equal(t, 0, m.Defaults.Limit)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"no sources", "name: empty\n"},
		{"empty sources", "sources: []\n"},
		{"empty path", "sources:\n  - path: \"\"\n"},
		{"bad alias", "sources:\n  - path: a.db\n    alias: \"1-bad-alias\"\n"},
		{"negative limit", "sources:\n  - path: a.db\ndefaults:\n  limit: -1\n"},
		{"bad sort field", "sources:\n  - path: a.db\ndefaults:\n  sort_by: elevation\n"},
		{"bad order", "sources:\n  - path: a.db\ndefaults:\n  order: sideways\n"},
		{"not yaml", ": : :\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad_ResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.yml")
	doc := "sources:\n  - path: barbados.db\n  - path: /abs/california.db\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	m, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "barbados.db"),
		"/abs/california.db",
	}, m.Paths())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestPaths_ParsedOnly(t *testing.T) {
	m, err := Parse([]byte("sources:\n  - path: relative.db\n"))
	require.NoError(t, err)
	// No manifest directory: relative paths pass through untouched.
	assert.Equal(t, []string{"relative.db"}, m.Paths())
}
