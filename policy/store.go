package policy

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// PolicyFileName is the expected file name at every cascade candidate.
const PolicyFileName = "policy.yaml"

// ErrNoUsablePolicy is returned in strict mode when every cascade
// candidate was rejected. Outside strict mode the built-in fallback
// policy is used instead and no error is surfaced.
var ErrNoUsablePolicy = errors.New("no usable policy on the cascade")

// Location identifies where a policy document comes from.
type Location struct {
	// Path is the absolute resolved path of the winning candidate.
	// Empty when Builtin is true.
	Path string

	// Builtin marks the in-memory fallback, which is never read from disk.
	Builtin bool
}

// Store resolves, parses and caches the authorization policy.
//
// Candidates are probed in fixed cascading order: a project-local
// override first, then a packaged default. A candidate that is a
// symlink, a directory, unreadable, or not valid YAML is silently
// skipped. The store never writes to any candidate location.
//
// The first successful load caches the winning document; while the
// cache is warm a cached load returns it without touching the
// filesystem, so a candidate removed or rewritten mid-session cannot
// change the active policy until an explicit invalidation.
type Store struct {
	candidates []string
	strict     bool

	mu     sync.RWMutex
	cached *Document
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStrict makes total cascade exhaustion a hard error instead of
// falling back to the built-in policy.
func WithStrict() StoreOption {
	return func(s *Store) { s.strict = true }
}

// NewStore creates a policy store probing projectDir/.toolguard first
// and packagedDir second. Either directory may be empty, in which case
// that candidate is skipped.
func NewStore(projectDir, packagedDir string, opts ...StoreOption) *Store {
	var candidates []string
	if projectDir != "" {
		candidates = append(candidates, filepath.Join(projectDir, ".toolguard", PolicyFileName))
	}
	if packagedDir != "" {
		candidates = append(candidates, filepath.Join(packagedDir, PolicyFileName))
	}

	s := &Store{
		candidates: candidates,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Candidates returns the probe order. Used by the watcher and by
// inspection tooling.
func (s *Store) Candidates() []string {
	out := make([]string, len(s.candidates))
	copy(out, s.candidates)
	return out
}

// Resolve probes the cascade and returns the first usable location.
// A missing file is a cascade signal, not an error; an unusable file is
// logged and skipped. When nothing on the cascade is usable the built-in
// location is returned.
func (s *Store) Resolve() Location {
	for _, candidate := range s.candidates {
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}

		info, err := os.Lstat(abs)
		if err != nil {
			// Not present at this candidate: cascade to the next.
			continue
		}
		if info.Mode()&os.ModeSymlink != 0 {
			slog.Warn("skipping symlinked policy candidate", "path", abs)
			continue
		}
		if info.IsDir() {
			slog.Warn("skipping directory masquerading as policy file", "path", abs)
			continue
		}

		data, err := os.ReadFile(abs)
		if err != nil {
			slog.Warn("skipping unreadable policy candidate", "path", abs, "error", err)
			continue
		}
		if _, err := Parse(data); err != nil {
			slog.Warn("skipping unparseable policy candidate", "path", abs, "error", err)
			continue
		}

		return Location{Path: abs}
	}

	return Location{Builtin: true}
}

// Load returns the active policy document. With useCache true a
// previously loaded document is returned without probing or reading the
// filesystem at all; only a cold cache resolves the cascade. useCache
// false always re-resolves and re-parses, replacing the cached document.
func (s *Store) Load(useCache bool) (*Document, error) {
	if useCache {
		s.mu.RLock()
		doc := s.cached
		s.mu.RUnlock()
		if doc != nil {
			return doc, nil
		}
	}

	doc, err := s.read(s.Resolve())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cached = doc
	s.mu.Unlock()

	return doc, nil
}

func (s *Store) read(loc Location) (*Document, error) {
	if loc.Builtin {
		if s.strict {
			return nil, ErrNoUsablePolicy
		}
		return Builtin(), nil
	}

	data, err := os.ReadFile(loc.Path)
	if err != nil {
		// The winning candidate disappeared between probe and read.
		// Re-resolve once; if the cascade is now empty this falls
		// through to the builtin (or strict error) path.
		reloc := s.Resolve()
		if reloc == loc {
			return nil, fmt.Errorf("read policy %s: %w", loc.Path, err)
		}
		return s.read(reloc)
	}

	return Parse(data)
}

// ResetCache drops the cached document. The next Load re-resolves the
// cascade and re-parses the winning candidate.
func (s *Store) ResetCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached = nil
}
