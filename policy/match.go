package policy

import (
	"regexp"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
)

// Result is the outcome of matching one candidate against a pattern set.
type Result struct {
	// Allowed is true only when a whitelist pattern matched and no
	// blacklist pattern did.
	Allowed bool

	// Reason explains the outcome in human-readable form.
	Reason string

	// SecurityRisk marks blacklist hits; a plain "not in whitelist"
	// denial is not a security finding.
	SecurityRisk bool

	// Pattern is the first pattern in declaration order that matched.
	Pattern string
}

// matchFunc reports whether candidate matches a single pattern.
type matchFunc func(pattern, candidate string) bool

// Matcher evaluates candidates against ordered pattern lists. It owns the
// cache of compiled command globs, so matcher state lives with whoever
// constructed it rather than in the package.
type Matcher struct {
	mu    sync.RWMutex
	globs map[string]*regexp.Regexp
}

// NewMatcher creates a pattern matcher with an empty glob cache.
func NewMatcher() *Matcher {
	return &Matcher{globs: make(map[string]*regexp.Regexp)}
}

// MatchCommand evaluates a command string against blacklist and whitelist
// patterns. Patterns are anchored shell globs: `*` matches any run of
// characters and the entire candidate must match, so `pytest*` cannot be
// satisfied by a command that merely contains "pytest" somewhere.
//
// The blacklist is evaluated first and always wins: a blacklist hit denies
// with SecurityRisk set even if a whitelist pattern would also match.
func (m *Matcher) MatchCommand(candidate string, blacklist, whitelist []string) Result {
	return match(candidate, blacklist, whitelist, m.globMatch)
}

// MatchPath evaluates a file path against blacklist and whitelist patterns
// using doublestar glob semantics (`**` crosses directory separators,
// `*` stays within one). Blacklist precedence is identical to MatchCommand.
func (m *Matcher) MatchPath(candidate string, blacklist, whitelist []string) Result {
	return match(candidate, blacklist, whitelist, pathMatch)
}

func match(candidate string, blacklist, whitelist []string, fn matchFunc) Result {
	for _, pattern := range blacklist {
		if fn(pattern, candidate) {
			return Result{
				Allowed:      false,
				Reason:       "blacklisted pattern matched",
				SecurityRisk: true,
				Pattern:      pattern,
			}
		}
	}

	for _, pattern := range whitelist {
		if fn(pattern, candidate) {
			return Result{
				Allowed: true,
				Reason:  "whitelisted pattern matched",
				Pattern: pattern,
			}
		}
	}

	return Result{
		Allowed: false,
		Reason:  "not in whitelist",
	}
}

func pathMatch(pattern, candidate string) bool {
	ok, err := doublestar.Match(pattern, candidate)
	if err != nil {
		// A malformed pattern never matches; the safest reading of a
		// broken blacklist entry is still handled by the whitelist
		// requirement (no whitelist match means deny).
		return false
	}
	return ok
}

// globMatch compiles command globs on first use. Policy documents are
// small and stable, so the cache is unbounded.
func (m *Matcher) globMatch(pattern, candidate string) bool {
	m.mu.RLock()
	re, ok := m.globs[pattern]
	m.mu.RUnlock()
	if ok {
		return re.MatchString(candidate)
	}

	re, err := compileGlob(pattern)
	if err != nil {
		return false
	}
	m.mu.Lock()
	m.globs[pattern] = re
	m.mu.Unlock()
	return re.MatchString(candidate)
}

// compileGlob translates an anchored shell glob into a regular expression.
// `*` becomes `.*`, `?` becomes `.`, everything else is quoted literally.
func compileGlob(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString(`^`)
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(`.*`)
		case '?':
			b.WriteString(`.`)
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString(`$`)
	return regexp.Compile(b.String())
}
