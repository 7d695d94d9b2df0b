package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mahendra-dev/backend-bangunan/internal/config"
)

func TestLoadRequiresCoreKeys(t *testing.T) {
	_, err := config.LoadForTests(map[string]string{
		"DATABASE_URL": "",
		"REDIS_URL":    "redis://localhost:6379",
		"JWT_SECRET":   "secret",
	})
	require.ErrorContains(t, err, "DATABASE_URL")
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{
		"DATABASE_URL":      "postgres://localhost:5432/bangunan",
		"REDIS_URL":         "redis://localhost:6379",
		"JWT_SECRET":        "secret",
		"PORT":              "",
		"CART_TTL":          "",
		"CATALOG_CACHE_TTL": "bogus",
	})
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, "IDR", cfg.CurrencyCode)
	require.Equal(t, 7*24*time.Hour, cfg.CartTTL)
	require.Equal(t, 5*time.Minute, cfg.CatalogCacheTTL)
	require.Equal(t, 20, cfg.CatalogDefaultLimit)
	require.True(t, cfg.MigrateOnStart)
}

func TestLoadParsesOverrides(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{
		"DATABASE_URL":         "postgres://localhost:5432/bangunan",
		"REDIS_URL":            "redis://localhost:6379",
		"JWT_SECRET":           "secret",
		"PORT":                 "9090",
		"CORS_ALLOWED_ORIGINS": "https://toko.example.com, https://admin.example.com",
		"DB_MIGRATE_ON_START":  "false",
		"PUBLIC_RATE_LIMIT":    "60-M",
	})
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddr())
	require.Equal(t, []string{"https://toko.example.com", "https://admin.example.com"}, cfg.CORSAllowedOrigins)
	require.False(t, cfg.MigrateOnStart)
	require.Equal(t, "60-M", cfg.PublicRateLimit)
}
