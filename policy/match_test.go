package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchCommand_WhitelistApproves(t *testing.T) {
	res := NewMatcher().MatchCommand("pytest tests/", nil, []string{"pytest*"})

	require.True(t, res.Allowed)
	assert.Equal(t, "pytest*", res.Pattern)
	assert.False(t, res.SecurityRisk)
}

func TestMatchCommand_BlacklistDeniesWithSecurityRisk(t *testing.T) {
	res := NewMatcher().MatchCommand("rm -rf /tmp/data", []string{"rm -rf*"}, nil)

	require.False(t, res.Allowed)
	assert.True(t, res.SecurityRisk)
	assert.Equal(t, "rm -rf*", res.Pattern)
}

func TestMatchCommand_BlacklistWinsOverWhitelist(t *testing.T) {
	res := NewMatcher().MatchCommand("rm -rf /tmp/data",
		[]string{"rm -rf*"},
		[]string{"rm -rf /tmp/*"})

	require.False(t, res.Allowed)
	assert.True(t, res.SecurityRisk)
	assert.Equal(t, "rm -rf*", res.Pattern)
}

func TestMatchCommand_MatchingIsAnchored(t *testing.T) {
	res := NewMatcher().MatchCommand("not-pytest-but-rm -rf /", nil, []string{"pytest*"})

	require.False(t, res.Allowed)
	assert.Equal(t, "not in whitelist", res.Reason)
	assert.False(t, res.SecurityRisk)
	assert.Empty(t, res.Pattern)
}

func TestMatchCommand_PrefixOfCandidateDoesNotMatch(t *testing.T) {
	// "pytest" must not be approved by a pattern demanding a suffix.
	res := NewMatcher().MatchCommand("pytest tests/ && evil", nil, []string{"pytest"})

	require.False(t, res.Allowed)
}

func TestMatchCommand_FirstMatchInDeclarationOrderWins(t *testing.T) {
	res := NewMatcher().MatchCommand("pytest", nil, []string{"py*", "pytest*"})

	require.True(t, res.Allowed)
	assert.Equal(t, "py*", res.Pattern)
}

func TestMatchCommand_NoMatchDeniesWithoutRisk(t *testing.T) {
	res := NewMatcher().MatchCommand("make build", []string{"rm -rf*"}, []string{"pytest*"})

	require.False(t, res.Allowed)
	assert.Equal(t, "not in whitelist", res.Reason)
	assert.False(t, res.SecurityRisk)
}

func TestMatchCommand_QuestionMarkMatchesSingleCharacter(t *testing.T) {
	matcher := NewMatcher()
	require.True(t, matcher.MatchCommand("ls -a", nil, []string{"ls -?"}).Allowed)
	require.False(t, matcher.MatchCommand("ls -al", nil, []string{"ls -?"}).Allowed)
}

func TestMatchCommand_EmptyPatternDoesNotMatchNonEmptyCandidate(t *testing.T) {
	res := NewMatcher().MatchCommand("anything", []string{""}, nil)
	require.False(t, res.Allowed)
	assert.Equal(t, "not in whitelist", res.Reason)
}

func TestMatchCommand_CachedGlobStaysConsistent(t *testing.T) {
	matcher := NewMatcher()

	// First evaluation compiles the glob, the second hits the cache.
	first := matcher.MatchCommand("rm -rf /tmp/a", []string{"rm -rf*"}, nil)
	second := matcher.MatchCommand("rm -rf /tmp/b", []string{"rm -rf*"}, nil)

	require.False(t, first.Allowed)
	require.False(t, second.Allowed)
	assert.Equal(t, first.Pattern, second.Pattern)
}

func TestMatchPath_DoublestarCrossesSeparators(t *testing.T) {
	res := NewMatcher().MatchPath("/workspace/src/main.go", nil, []string{"/workspace/**"})

	require.True(t, res.Allowed)
	assert.Equal(t, "/workspace/**", res.Pattern)
}

func TestMatchPath_BlacklistWins(t *testing.T) {
	res := NewMatcher().MatchPath("/workspace/.ssh/id_rsa",
		[]string{"**/.ssh/**"},
		[]string{"/workspace/**"})

	require.False(t, res.Allowed)
	assert.True(t, res.SecurityRisk)
	assert.Equal(t, "**/.ssh/**", res.Pattern)
}

func TestMatchPath_SingleStarStaysWithinSegment(t *testing.T) {
	matcher := NewMatcher()
	require.True(t, matcher.MatchPath("/etc/passwd", nil, []string{"/etc/*"}).Allowed)
	require.False(t, matcher.MatchPath("/etc/nginx/nginx.conf", nil, []string{"/etc/*"}).Allowed)
}
