package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// encodedTraversal covers percent-encoded traversal spellings, compared
// against the lowercased path.
var encodedTraversal = []string{
	"%2e%2e",
	"..%2f",
	"%2f..",
	"..%5c",
	"%5c..",
}

// PathAnalyzer detects traversal attacks in file paths.
type PathAnalyzer struct{}

// NewPathAnalyzer creates a path analyzer.
func NewPathAnalyzer() *PathAnalyzer {
	return &PathAnalyzer{}
}

// Analyze checks a path for traversal patterns: null bytes, literal `..`
// segments (with a distinct reason for relative starts), and
// percent-encoded traversal sequences. It does not touch the filesystem;
// use ResolveReal for symlink resolution.
func (a *PathAnalyzer) Analyze(path string) Analysis {
	if strings.TrimSpace(path) == "" {
		return invalid("empty path")
	}

	if strings.Contains(path, "\x00") {
		return finding("null byte in path", "\\x00")
	}

	lowered := strings.ToLower(path)
	for _, enc := range encodedTraversal {
		if strings.Contains(lowered, enc) {
			return finding("encoded path traversal", enc)
		}
	}

	if hasDotDotSegment(path) {
		if !filepath.IsAbs(path) {
			return finding("relative path traversal via '..'", "..")
		}
		return finding("path traversal via '..'", "..")
	}

	return safe()
}

func hasDotDotSegment(path string) bool {
	normalized := strings.ReplaceAll(path, "\\", "/")
	for _, segment := range strings.Split(normalized, "/") {
		if segment == ".." {
			return true
		}
	}
	return false
}

// ResolveReal resolves a path to its real absolute location, following
// symlinks, so blacklist protections cannot be bypassed by a symlink
// pointing into a protected tree. For a path that does not exist yet the
// deepest existing ancestor is resolved and the remainder re-joined.
func (a *PathAnalyzer) ResolveReal(path string) (string, error) {
	cleaned := filepath.Clean(path)

	abs, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err == nil {
		return resolved, nil
	}
	if !os.IsNotExist(err) {
		return "", fmt.Errorf("resolve symlinks: %w", err)
	}

	// The target does not exist. Resolve the closest existing ancestor
	// and stack the missing components back on top.
	var missing []string
	current := abs
	for {
		parent := filepath.Dir(current)
		if parent == current {
			return abs, nil
		}
		missing = append([]string{filepath.Base(current)}, missing...)

		resolvedParent, parentErr := filepath.EvalSymlinks(parent)
		if parentErr == nil {
			return filepath.Join(append([]string{resolvedParent}, missing...)...), nil
		}
		if !os.IsNotExist(parentErr) {
			return "", fmt.Errorf("resolve parent path: %w", parentErr)
		}
		current = parent
	}
}
