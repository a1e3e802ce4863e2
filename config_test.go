package toolguard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("TOOLGUARD_MODE", "subagent_only")
	t.Setenv("TOOLGUARD_PROJECT_DIR", "/workspace/project")
	t.Setenv("TOOLGUARD_PACKAGED_DIR", "/usr/share/toolguard")
	t.Setenv("TOOLGUARD_DENIAL_THRESHOLD", "5")
	t.Setenv("TOOLGUARD_STRICT", "true")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, ModeSubagentOnly, cfg.Mode)
	assert.Equal(t, "/workspace/project", cfg.ProjectDir)
	assert.Equal(t, "/usr/share/toolguard", cfg.PackagedDir)
	assert.Equal(t, 5, cfg.DenialThreshold)
	assert.True(t, cfg.Strict)
}

func TestConfigFromEnv_InvalidModeDegradesToDisabled(t *testing.T) {
	t.Setenv("TOOLGUARD_MODE", "allow-everything-please")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, ModeDisabled, cfg.Mode)
}

func TestConfig_Threshold(t *testing.T) {
	assert.Equal(t, DefaultDenialThreshold, Config{}.threshold())
	assert.Equal(t, DefaultDenialThreshold, Config{DenialThreshold: -3}.threshold())
	assert.Equal(t, 7, Config{DenialThreshold: 7}.threshold())
}
