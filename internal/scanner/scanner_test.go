package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, os.Chdir(oldWd)) })
	require.NoError(t, os.Chdir(dir))
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestScannerFindsOnlyHostSourceFiles(t *testing.T) {
	chdirTemp(t)
	writeFile(t, "Main.java", "package app;")
	writeFile(t, "Utils.java", "package app;")
	writeFile(t, "README.md", "not host source")

	s := New(Config{})
	files, err := s.ScanTargets(context.Background(), []string{"."})
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestScannerIncludeGlob(t *testing.T) {
	chdirTemp(t)
	writeFile(t, "Main.java", "package app;")
	writeFile(t, "MainTest.java", "package app;")
	writeFile(t, "Utils.java", "package app;")

	s := New(Config{IncludeGlobs: []string{"*Test.java"}})
	files, err := s.ScanTargets(context.Background(), []string{"."})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "MainTest.java", filepath.Base(files[0]))
}

func TestScannerExcludeGlob(t *testing.T) {
	chdirTemp(t)
	writeFile(t, "Main.java", "package app;")
	writeFile(t, "MainTest.java", "package app;")

	s := New(Config{ExcludeGlobs: []string{"*Test.java"}})
	files, err := s.ScanTargets(context.Background(), []string{"."})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "Main.java", filepath.Base(files[0]))
}

func TestScannerMaxBytes(t *testing.T) {
	chdirTemp(t)
	writeFile(t, "Small.java", "package app;")
	large := make([]byte, 1000)
	for i := range large {
		large[i] = 'a'
	}
	writeFile(t, "Large.java", string(large))

	s := New(Config{MaxBytes: 100})
	files, err := s.ScanTargets(context.Background(), []string{"."})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "Small.java", filepath.Base(files[0]))
}

func TestScannerDirectorySkipping(t *testing.T) {
	chdirTemp(t)
	for _, dir := range []string{".git", "vendor", "node_modules"} {
		writeFile(t, filepath.Join(dir, "Skipped.java"), "package app;")
	}
	writeFile(t, "Main.java", "package app;")

	s := New(Config{})
	files, err := s.ScanTargets(context.Background(), []string{"."})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "Main.java", filepath.Base(files[0]))
}

func TestScannerExpandsDoublestarGlobTarget(t *testing.T) {
	chdirTemp(t)
	writeFile(t, "src/app/Main.java", "package app;")
	writeFile(t, "src/app/util/Helper.java", "package app.util;")
	writeFile(t, "src/app/Notes.md", "ignore me")

	s := New(Config{})
	files, err := s.ScanTargets(context.Background(), []string{"src/**/*.java"})
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestScannerDeduplicatesOverlappingTargets(t *testing.T) {
	chdirTemp(t)
	writeFile(t, "Main.java", "package app;")

	s := New(Config{})
	files, err := s.ScanTargets(context.Background(), []string{".", "Main.java"})
	require.NoError(t, err)
	assert.Len(t, files, 1)
}
