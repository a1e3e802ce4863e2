package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathAnalyzer_EmptyPath(t *testing.T) {
	analyzer := NewPathAnalyzer()

	analysis := analyzer.Analyze("  ")
	require.False(t, analysis.Safe)
	assert.Equal(t, "empty path", analysis.Reason)
	assert.False(t, analysis.Risk, "empty input is invalid, not an attack")
}

func TestPathAnalyzer_NullByte(t *testing.T) {
	analyzer := NewPathAnalyzer()

	analysis := analyzer.Analyze("/tmp/file\x00.txt")
	require.False(t, analysis.Safe)
	assert.Equal(t, "null byte in path", analysis.Reason)
}

func TestPathAnalyzer_LiteralTraversal(t *testing.T) {
	analyzer := NewPathAnalyzer()

	analysis := analyzer.Analyze("/workspace/../etc/passwd")
	require.False(t, analysis.Safe)
	assert.Equal(t, "path traversal via '..'", analysis.Reason)
	assert.True(t, analysis.Risk)
}

func TestPathAnalyzer_RelativeTraversal(t *testing.T) {
	analyzer := NewPathAnalyzer()

	analysis := analyzer.Analyze("../secrets/key.pem")
	require.False(t, analysis.Safe)
	assert.Equal(t, "relative path traversal via '..'", analysis.Reason)
}

func TestPathAnalyzer_EncodedTraversal(t *testing.T) {
	analyzer := NewPathAnalyzer()

	for _, path := range []string{
		"/workspace/%2e%2e/etc/passwd",
		"/workspace/%2E%2E/etc/passwd",
		"/workspace/..%2fetc/passwd",
		"/workspace/..%5cwindows",
	} {
		analysis := analyzer.Analyze(path)
		require.False(t, analysis.Safe, "path %q", path)
		assert.Equal(t, "encoded path traversal", analysis.Reason)
	}
}

func TestPathAnalyzer_DotDotInFilenameIsNotTraversal(t *testing.T) {
	analyzer := NewPathAnalyzer()

	assert.True(t, analyzer.Analyze("/workspace/notes..txt").Safe)
	assert.True(t, analyzer.Analyze("/workspace/archive.tar.gz").Safe)
}

func TestPathAnalyzer_CleanPathsPass(t *testing.T) {
	analyzer := NewPathAnalyzer()

	assert.True(t, analyzer.Analyze("/workspace/src/main.go").Safe)
	assert.True(t, analyzer.Analyze("src/main.go").Safe)
}

func TestResolveReal_FollowsSymlinks(t *testing.T) {
	analyzer := NewPathAnalyzer()

	targetDir := t.TempDir()
	target := filepath.Join(targetDir, "secret.txt")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))

	linkDir := t.TempDir()
	link := filepath.Join(linkDir, "innocent.txt")
	require.NoError(t, os.Symlink(target, link))

	resolved, err := analyzer.ResolveReal(link)
	require.NoError(t, err)

	wantTarget, err := filepath.EvalSymlinks(target)
	require.NoError(t, err)
	assert.Equal(t, wantTarget, resolved)
}

func TestResolveReal_MissingFileResolvesExistingAncestor(t *testing.T) {
	analyzer := NewPathAnalyzer()

	realDir := t.TempDir()
	linkDir := filepath.Join(t.TempDir(), "alias")
	require.NoError(t, os.Symlink(realDir, linkDir))

	resolved, err := analyzer.ResolveReal(filepath.Join(linkDir, "new", "file.txt"))
	require.NoError(t, err)

	wantDir, err := filepath.EvalSymlinks(realDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wantDir, "new", "file.txt"), resolved)
}
