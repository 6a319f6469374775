package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthledger/hearth/internal/config"
	"github.com/hearthledger/hearth/internal/normalize"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, normalize.YearPolicyCurrent, cfg.YearPolicy())
	assert.Equal(t, 500*time.Millisecond, cfg.Import.ItemDelay)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "postgres://postgres:@localhost:5432/hearth?sslmode=disable", cfg.ConnectionString())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("IMPORT_YEAR_POLICY", "keep")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("RECOGNITION_TIMEOUT", "2m")
	t.Setenv("DB_NAME", "ledger")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, normalize.YearPolicyKeep, cfg.YearPolicy())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 2*time.Minute, cfg.Recognition.Timeout)
	assert.Contains(t, cfg.ConnectionString(), "/ledger?")
}

func TestLoad_InvalidYearPolicy(t *testing.T) {
	t.Setenv("IMPORT_YEAR_POLICY", "future")

	_, err := config.Load()
	assert.ErrorContains(t, err, "IMPORT_YEAR_POLICY")
}
