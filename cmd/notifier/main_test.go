package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetenv clears key for the duration of the test.
func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoadConfigDefaults(t *testing.T) {
	unsetenv(t, "METRICS_PORT")
	unsetenv(t, "TRACING_SERVICE_NAME")
	unsetenv(t, "EVENTS_CHANNEL")

	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9091, cfg.Metrics.Port)
	assert.Equal(t, "taskflow-notifier", cfg.Tracing.ServiceName)
	assert.Equal(t, "tasks", cfg.Channel)
}

func TestLoadConfigMetricsPortOverride(t *testing.T) {
	t.Setenv("METRICS_PORT", "9200")

	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9200, cfg.Metrics.Port)
}
