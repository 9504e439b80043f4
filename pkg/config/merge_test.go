package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeOverDefaults_PartialOverride(t *testing.T) {
	user := &Config{
		Logging: LoggingConfig{Level: "debug"},
	}

	merged, err := mergeOverDefaults(user)
	require.NoError(t, err)

	assert.Equal(t, "debug", merged.Logging.Level)
	// Untouched fields retain their built-in default values.
	assert.Equal(t, AutonomyLow, merged.Autonomy.Level)
	assert.Equal(t, "/run/anna/annad.sock", merged.Daemon.SocketPath)
}

func TestMergeOverDefaults_EmptyUserKeepsAllDefaults(t *testing.T) {
	merged, err := mergeOverDefaults(&Config{})
	require.NoError(t, err)

	assert.Equal(t, Defaults().Reliability, merged.Reliability)
	assert.Equal(t, Defaults().Probes, merged.Probes)
}
