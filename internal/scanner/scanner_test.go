package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/augurhq/augur/pkg/config"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestIsSourceFile(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"main.go", true},
		{"lib.rs", true},
		{"app.py", true},
		{"component.tsx", true},
		{"Widget.JAVA", true},
		{"notes.txt", false},
		{"image.png", false},
		{"Makefile", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, IsSourceFile(tt.path), tt.path)
	}
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.go", "package main")
	writeFile(t, dir, "sub/util.py", "x = 1")
	writeFile(t, dir, "README.md", "# readme")
	writeFile(t, dir, "node_modules/dep/index.js", "module.exports = {}")

	s := NewScanner(config.DefaultConfig())
	files, err := s.ScanDir(dir)
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		rel, _ := filepath.Rel(dir, f)
		names = append(names, filepath.ToSlash(rel))
	}

	assert.ElementsMatch(t, []string{"main.go", "sub/util.py"}, names)
}

func TestScanDirExcludePatterns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "app.js", "var a")
	writeFile(t, dir, "app.min.js", "var a")

	s := NewScanner(config.DefaultConfig())
	files, err := s.ScanDir(dir)
	require.NoError(t, err)

	require.Len(t, files, 1)
	assert.Equal(t, "app.js", filepath.Base(files[0]))
}

func TestScanDirNilConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.go", "package main")

	s := NewScanner(nil)
	files, err := s.ScanDir(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestScanFile(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "main.go", "package main")
	doc := writeFile(t, dir, "README.md", "# readme")

	s := NewScanner(config.DefaultConfig())

	ok, err := s.ScanFile(src)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.ScanFile(doc)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.ScanFile(dir)
	require.NoError(t, err)
	assert.False(t, ok, "directories are not scannable files")

	_, err = s.ScanFile(filepath.Join(dir, "absent.go"))
	assert.Error(t, err)
}

func TestFilterBySize(t *testing.T) {
	dir := t.TempDir()
	small := writeFile(t, dir, "small.go", "package main")
	large := writeFile(t, dir, "large.go", string(make([]byte, 4096)))

	filtered, skipped := FilterBySize([]string{small, large}, 1024)
	assert.Equal(t, []string{small}, filtered)
	assert.Equal(t, 1, skipped)
}

func TestFilterBySizeDisabled(t *testing.T) {
	files := []string{"a.go", "b.go"}
	filtered, skipped := FilterBySize(files, 0)
	assert.Equal(t, files, filtered)
	assert.Zero(t, skipped)
}

func TestFilterBySizeMissingFile(t *testing.T) {
	filtered, skipped := FilterBySize([]string{filepath.Join(t.TempDir(), "ghost.go")}, 1024)
	assert.Empty(t, filtered)
	assert.Equal(t, 1, skipped)
}
