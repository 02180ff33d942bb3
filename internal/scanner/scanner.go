// Package scanner resolves a run's CLI targets (bare file paths,
// directories, and doublestar glob patterns) into a deduplicated list of
// host-source files to compile.
package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// hostExtension is the file extension compileable targets are expected to
// carry; the host grammar this module speaks is a single Java-like
// language, so this scanner has no per-language provider to consult.
const hostExtension = ".java"

// Scanner resolves CLI targets into the files one compilation run should see.
type Scanner struct {
	maxBytes       int64
	followSymlinks bool
	includeGlobs   []string
	excludeGlobs   []string
}

// Config holds scanner configuration options.
type Config struct {
	MaxBytes       int64
	FollowSymlinks bool
	IncludeGlobs   []string
	ExcludeGlobs   []string
}

// New creates a new scanner with the given configuration.
func New(cfg Config) *Scanner {
	return &Scanner{
		maxBytes:       cfg.MaxBytes,
		followSymlinks: cfg.FollowSymlinks,
		includeGlobs:   cfg.IncludeGlobs,
		excludeGlobs:   cfg.ExcludeGlobs,
	}
}

// ScanTargets resolves a list of file paths, directory paths, and doublestar
// glob patterns (e.g. "src/**/*.java") into a deduplicated list of files to
// compile, in target order and, within a directory or glob target, in walk
// order. An empty target list defaults to the current directory.
func (s *Scanner) ScanTargets(ctx context.Context, targets []string) ([]string, error) {
	if len(targets) == 0 {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
		targets = []string{cwd}
	}

	var allFiles []string
	for _, target := range targets {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		files, err := s.scanTarget(ctx, target)
		if err != nil {
			return nil, fmt.Errorf("scanning target %s: %w", target, err)
		}
		allFiles = append(allFiles, files...)
	}

	return deduplicateFiles(allFiles), nil
}

// scanTarget resolves one target: a glob pattern expands against its
// non-magic base directory, a symlink resolves (or is skipped) per
// followSymlinks, a regular file is checked against the filters, and a
// directory is walked recursively.
func (s *Scanner) scanTarget(ctx context.Context, target string) ([]string, error) {
	if isGlobPattern(target) {
		return s.expandGlob(ctx, target)
	}

	info, err := os.Lstat(target)
	if err != nil {
		return nil, fmt.Errorf("accessing target %s: %w", target, err)
	}

	if info.Mode()&os.ModeSymlink != 0 {
		if !s.followSymlinks {
			return nil, nil
		}
		resolved, err := filepath.EvalSymlinks(target)
		if err != nil {
			return nil, fmt.Errorf("resolving symlink %s: %w", target, err)
		}
		return s.scanTarget(ctx, resolved)
	}

	if info.Mode().IsRegular() {
		if s.shouldProcessFile(target, info) {
			return []string{target}, nil
		}
		return nil, nil
	}

	if info.IsDir() {
		return s.scanDirectory(ctx, target)
	}

	return nil, nil
}

// isGlobPattern reports whether target carries any doublestar meta
// characters, i.e. is a pattern like "src/**/*.java" rather than a plain
// path.
func isGlobPattern(target string) bool {
	return strings.ContainsAny(target, "*?[")
}

// globBaseDir returns the longest leading path segment of pattern that
// contains no glob meta characters, the directory expandGlob walks from.
func globBaseDir(pattern string) string {
	segments := strings.Split(filepath.ToSlash(pattern), "/")
	var base []string
	for _, seg := range segments {
		if isGlobPattern(seg) {
			break
		}
		base = append(base, seg)
	}
	if len(base) == 0 {
		return "."
	}
	dir := filepath.Join(base...)
	if dir == "" {
		return "."
	}
	return dir
}

// walkFiles walks the tree rooted at base, applying accept to every
// regular file found (as its full path, joined back onto base) and
// collecting the ones it approves. scanDirectory and expandGlob share
// this one traversal: a bare directory target accepts anything
// shouldProcessFile allows, a glob target additionally requires a
// doublestar pattern match, so only the acceptance predicate differs
// between the two kinds of target.
func (s *Scanner) walkFiles(ctx context.Context, base string, accept func(fullPath string, info os.FileInfo) bool) ([]string, error) {
	var files []string

	err := fs.WalkDir(os.DirFS(base), ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fullPath := filepath.Join(base, path)

		if d.IsDir() {
			if path != "." && shouldSkipDirectory(path) {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("getting file info for %s: %w", fullPath, err)
		}
		if accept(fullPath, info) {
			files = append(files, fullPath)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", base, err)
	}

	return files, nil
}

// expandGlob resolves a single doublestar pattern by walking its non-magic
// base directory and matching every regular file's path against the
// pattern, the same way the pack's own file walker matches include/exclude
// patterns.
func (s *Scanner) expandGlob(ctx context.Context, pattern string) ([]string, error) {
	base := globBaseDir(pattern)
	return s.walkFiles(ctx, base, func(fullPath string, info os.FileInfo) bool {
		matched, err := doublestar.PathMatch(pattern, filepath.ToSlash(fullPath))
		if err != nil || !matched {
			return false
		}
		return s.shouldProcessFile(fullPath, info)
	})
}

// scanDirectory recursively scans a directory for files.
func (s *Scanner) scanDirectory(ctx context.Context, dir string) ([]string, error) {
	return s.walkFiles(ctx, dir, s.shouldProcessFile)
}

// shouldProcessFile determines if a file should be processed based on size,
// extension, and the include/exclude glob patterns.
func (s *Scanner) shouldProcessFile(path string, info os.FileInfo) bool {
	if s.maxBytes > 0 && info.Size() > s.maxBytes {
		return false
	}

	if !strings.EqualFold(filepath.Ext(path), hostExtension) {
		return false
	}

	basename := filepath.Base(path)

	if len(s.includeGlobs) > 0 {
		matched := false
		for _, pattern := range s.includeGlobs {
			if match, _ := doublestar.Match(pattern, basename); match {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	for _, pattern := range s.excludeGlobs {
		if match, _ := doublestar.Match(pattern, basename); match {
			return false
		}
	}

	return true
}

// shouldSkipDirectory determines if a directory should be skipped during traversal.
func shouldSkipDirectory(path string) bool {
	dirname := filepath.Base(path)

	skipDirs := []string{".git", "vendor", "node_modules", "dist", "build"}
	if slices.Contains(skipDirs, dirname) {
		return true
	}

	if strings.HasPrefix(dirname, ".") && dirname != "." {
		return true
	}

	return false
}

// deduplicateFiles removes duplicate file paths from the list.
func deduplicateFiles(files []string) []string {
	seen := make(map[string]bool)
	var result []string

	for _, file := range files {
		if !seen[file] {
			seen[file] = true
			result = append(result, file)
		}
	}

	return result
}
