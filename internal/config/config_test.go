package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearTestEnvVars(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DINDINHO_LOG_LEVEL",
		"DINDINHO_LOG_FORMAT",
		"DINDINHO_DATA_DIRECTORY",
		"DINDINHO_IMPORT_TOLERANCE_DAYS",
		"DINDINHO_AI_ENABLED",
		"DINDINHO_AI_MODEL",
		"DINDINHO_AI_BATCH_SIZE",
		"DINDINHO_AI_CONCURRENCY",
		"DINDINHO_AI_MAX_ATTEMPTS",
		"GEMINI_API_KEY",
	} {
		t.Setenv(key, "")
	}
}

func TestInitializeConfigDefaults(t *testing.T) {
	clearTestEnvVars(t)

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "info", config.Log.Level)
	assert.Equal(t, "text", config.Log.Format)
	assert.NotEmpty(t, config.Data.Directory)
	assert.Equal(t, 5, config.Import.ToleranceDays)
	assert.False(t, config.AI.Enabled)
	assert.Equal(t, "gemini-1.5-flash", config.AI.Model)
	assert.Equal(t, 20, config.AI.BatchSize)
	assert.Equal(t, 3, config.AI.Concurrency)
	assert.Equal(t, 3, config.AI.MaxAttempts)
}

func TestInitializeConfigEnvironmentOverrides(t *testing.T) {
	clearTestEnvVars(t)

	t.Setenv("DINDINHO_LOG_LEVEL", "debug")
	t.Setenv("DINDINHO_LOG_FORMAT", "json")
	t.Setenv("DINDINHO_IMPORT_TOLERANCE_DAYS", "7")
	t.Setenv("DINDINHO_AI_ENABLED", "true")
	t.Setenv("DINDINHO_AI_MODEL", "gemini-1.5-pro")
	t.Setenv("GEMINI_API_KEY", "test-api-key")

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "debug", config.Log.Level)
	assert.Equal(t, "json", config.Log.Format)
	assert.Equal(t, 7, config.Import.ToleranceDays)
	assert.True(t, config.AI.Enabled)
	assert.Equal(t, "gemini-1.5-pro", config.AI.Model)
	assert.Equal(t, "test-api-key", config.AI.APIKey)
}

func TestInitializeConfigAIRequiresKey(t *testing.T) {
	clearTestEnvVars(t)
	t.Setenv("DINDINHO_AI_ENABLED", "true")

	_, err := InitializeConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestInitializeConfigRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"bad log level", "DINDINHO_LOG_LEVEL", "verbose"},
		{"bad log format", "DINDINHO_LOG_FORMAT", "xml"},
		{"negative tolerance", "DINDINHO_IMPORT_TOLERANCE_DAYS", "-1"},
		{"huge tolerance", "DINDINHO_IMPORT_TOLERANCE_DAYS", "90"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearTestEnvVars(t)
			t.Setenv(tc.key, tc.val)

			_, err := InitializeConfig()
			require.Error(t, err)
		})
	}
}
