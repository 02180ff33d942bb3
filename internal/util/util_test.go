package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSHA1HexIsDeterministic(t *testing.T) {
	a := SHA1Hex([]byte("hello"))
	b := SHA1Hex([]byte("hello"))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, SHA1Hex([]byte("world")))
}

func TestSHA1FileHexMatchesContentHash(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))

	assert.Equal(t, SHA1Hex([]byte("content")), SHA1FileHex(path))
}

func TestSHA1FileHexReturnsEmptyForMissingFile(t *testing.T) {
	assert.Equal(t, "", SHA1FileHex("/does/not/exist"))
}

func TestUnifiedDiffReportsLineChanges(t *testing.T) {
	orig := "line1\nline2\nline3\n"
	mod := "line1\nmodified\nline3\n"

	diff := UnifiedDiff(orig, mod, "test.txt", 3, false)
	assert.Contains(t, diff, "-line2")
	assert.Contains(t, diff, "+modified")
}

func TestUnifiedDiffColorsAddedAndRemovedLines(t *testing.T) {
	orig := "a\n"
	mod := "b\n"

	diff := UnifiedDiff(orig, mod, "test.txt", 1, true)
	assert.Contains(t, diff, colorGreen)
	assert.Contains(t, diff, colorRed)
}
