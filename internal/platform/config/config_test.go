package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	t.Setenv("PGSQL_URL", "postgres://localhost/ledger")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/ledger", cfg.DatabaseURL)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "3.2.01", cfg.RetainedEarningsCode)
	assert.Equal(t, "3.2.02", cfg.CurrentEarningsCode)
	assert.Equal(t, 16, cfg.MaxAccountDepth)
	assert.Equal(t, 5*time.Second, cfg.DBConnTimeout)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
}

func TestLoadConfig_InvalidValuesFallBack(t *testing.T) {
	viper.Reset()
	t.Setenv("DB_CONNECT_TIMEOUT", "soon")
	t.Setenv("OTEL_SAMPLING_RATIO", "4")
	t.Setenv("MAX_ACCOUNT_DEPTH", "-1")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.DBConnTimeout)
	assert.Equal(t, 1.0, cfg.OtelSamplingRatio)
	assert.Equal(t, 16, cfg.MaxAccountDepth)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}
