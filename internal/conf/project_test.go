package conf

import (
	"path/filepath"
	"testing"

	"github.com/agentic-research/agentstack/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyProject(t *testing.T) {
	setupProject(t)
	assert.NoError(t, VerifyProject(nil))
}

func TestVerifyProject_Invalid(t *testing.T) {
	ws := NewWorkspace(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, VerifyProject(ws))
}

func TestFramework(t *testing.T) {
	setupProject(t)
	framework, err := Framework(nil)
	require.NoError(t, err)
	assert.Equal(t, "crewai", framework)
}

func TestFramework_Missing(t *testing.T) {
	_, err := Framework(NewWorkspace(filepath.Join(t.TempDir(), "missing")))
	assert.Error(t, err)
}

func TestTelemetryOptOut(t *testing.T) {
	setupProject(t)
	t.Setenv(TelemetryOptOutEnv, "")

	assert.False(t, TelemetryOptOut(nil))

	config, err := OpenConfig(nil)
	require.NoError(t, err)
	require.NoError(t, config.Update(func(c *ConfigFile) error {
		c.TelemetryOptOut = api.Bool(true)
		return nil
	}))
	assert.True(t, TelemetryOptOut(nil))

	t.Setenv(TelemetryOptOutEnv, "false")
	assert.False(t, TelemetryOptOut(nil))
}

func TestTelemetryOptOut_NoProject(t *testing.T) {
	t.Setenv(TelemetryOptOutEnv, "")
	assert.False(t, TelemetryOptOut(NewWorkspace(filepath.Join(t.TempDir(), "missing"))))

	t.Setenv(TelemetryOptOutEnv, "1")
	assert.True(t, TelemetryOptOut(NewWorkspace(filepath.Join(t.TempDir(), "missing"))))
}
