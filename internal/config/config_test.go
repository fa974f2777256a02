package config

import (
	"os"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Config_LoadsFile(t *testing.T) {
	cfg, err := Load("testdata/config.yaml")
	require.NoError(t, err)

	assert.Equal(t, LevelDebug, cfg.Logger.LogLevel)
	assert.Equal(t, log.DebugLevel, cfg.Logger.LogLevel.LogrusLevel())
	assert.Equal(t, "parser-test", cfg.Logger.AppName)
	assert.Equal(t, "test.db", cfg.DB.ConnectionString)
	assert.Equal(t, 10*time.Second, cfg.HH.Timeout)
	assert.Equal(t, 250*time.Millisecond, cfg.HH.PageDelay)
	assert.Equal(t, float32(5), cfg.HH.MaxRequestsPerSecond)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, time.Minute, cfg.Server.StatsCacheTTL)
	assert.Equal(t, "@every 1h", cfg.Server.RunSchedule)
	assert.Equal(t, 30, cfg.Cleaner.VacancyExpirationDays)
	assert.Equal(t, "0 4 * * *", cfg.Cleaner.Schedule)
}

func Test_Config_EnvironmentOverrideWorksCorrect(t *testing.T) {
	t.Setenv("DB_CONNECTION_STRING", "override.db")
	t.Setenv("LOG_LEVEL", "ERROR")
	t.Setenv("HH_USER_AGENT", "OverrideAgent/2.0")
	t.Setenv("HH_MAX_REQUESTS_PER_SECOND", "1.5")
	t.Setenv("PORT", "7070")
	t.Setenv("LOKI_URL", "http://loki:3100/loki/api/v1/push")

	cfg, err := Load("testdata/config.yaml")
	require.NoError(t, err)

	assert.Equal(t, "override.db", cfg.DB.ConnectionString)
	assert.Equal(t, LevelError, cfg.Logger.LogLevel)
	assert.Equal(t, "OverrideAgent/2.0", cfg.HH.UserAgent)
	assert.Equal(t, float32(1.5), cfg.HH.MaxRequestsPerSecond)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "http://loki:3100/loki/api/v1/push", cfg.Logger.LokiURL)
}

func Test_Config_GetUsesConfigPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "testdata/config.yaml")

	cfg := Get()
	assert.Equal(t, "parser-test", cfg.Logger.AppName)
}

func Test_Config_InvalidFile_ReturnsAllErrors(t *testing.T) {
	_, err := Load("testdata/invalid.yaml")
	require.Error(t, err)

	assert.Contains(t, err.Error(), "db connection string")
	assert.Contains(t, err.Error(), "unknown log_level")
	assert.Contains(t, err.Error(), "output_file")
}

func Test_Config_MissingFile(t *testing.T) {
	_, err := Load("testdata/absent.yaml")
	assert.Error(t, err)
}

func TestMain(m *testing.M) {
	for _, key := range []string{"DB_CONNECTION_STRING", "LOG_LEVEL", "HH_USER_AGENT", "HH_BASE_URL",
		"HH_MAX_REQUESTS_PER_SECOND", "PORT", "RUN_SCHEDULE", "LOKI_URL", "CONFIG_PATH"} {
		_ = os.Unsetenv(key)
	}
	os.Exit(m.Run())
}
