// Package genio writes generated and rewritten artifacts to disk the way
// the orchestrator's single-threaded core requires: either a file lands
// whole or it doesn't land at all, with no partially-written file visible
// to a concurrent reader.
//
// Adapted from a cross-process file-locking atomic writer down to its
// single load-bearing mechanism, temp-file-then-rename: the core compiles
// one file at a time with no concurrent writers of its own, so the
// lock-file/staleness/backup machinery that mechanism's origin needed for
// concurrent external editors has no caller here and was dropped rather
// than carried as dead weight.
package genio

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/oxhq/kernelforge/internal/kerrors"
)

// WriteFile atomically writes content to path, creating parent directories
// as needed. It writes to a sibling temp file first and renames it into
// place, so a crash or failed write never leaves a truncated path behind.
func WriteFile(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return kerrors.New(kerrors.KindGenerationIO, path, 0, kerrors.ErrGenerationIO, fmt.Sprintf("create directory: %v", err))
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return kerrors.New(kerrors.KindGenerationIO, path, 0, kerrors.ErrGenerationIO, fmt.Sprintf("create temp file: %v", err))
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return kerrors.New(kerrors.KindGenerationIO, path, 0, kerrors.ErrGenerationIO, fmt.Sprintf("write temp file: %v", err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return kerrors.New(kerrors.KindGenerationIO, path, 0, kerrors.ErrGenerationIO, fmt.Sprintf("close temp file: %v", err))
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return kerrors.New(kerrors.KindGenerationIO, path, 0, kerrors.ErrGenerationIO, fmt.Sprintf("rename into place: %v", err))
	}
	return nil
}
