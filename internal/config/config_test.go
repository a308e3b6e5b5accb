package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "GIN_MODE", "JWT_SECRET", "JWT_TOKEN_TTL", "BCRYPT_COST", "ALLOW_SIGNUP",
		"ADMIN_USERNAME", "ADMIN_PASSWORD", "DATABASE_URL", "PGUSER", "PGDATABASE",
		"PGPASSWORD", "PGHOST", "PGPORT", "PGSSLMODE", "STORE", "CORS_ALLOWED_ORIGINS",
		"CORS_ALLOW_CREDENTIALS", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "10h", cfg.Auth.JWTTokenTTL)
	assert.Equal(t, "12", cfg.Auth.BcryptCost)
	assert.Equal(t, "true", cfg.Auth.AllowSignup)
	assert.Equal(t, StoreMemory, cfg.Store.Kind)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.CORS.AllowCredentials)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_PostgresSelectedWhenDSNPresent(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/app?sslmode=disable")

	cfg := Load()
	assert.Equal(t, StorePostgres, cfg.Store.Kind)
}

func TestLoad_ExplicitStoreWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("PGUSER", "app")
	t.Setenv("PGDATABASE", "app")
	t.Setenv("STORE", "MEMORY")

	cfg := Load()
	require.True(t, cfg.Postgres.HasDSN())
	assert.Equal(t, StoreMemory, cfg.Store.Kind)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", ":9090")
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("CORS_ALLOWED_ORIGINS", " http://a.test , ,http://b.test")
	t.Setenv("CORS_ALLOW_CREDENTIALS", "TRUE")

	cfg := Load()
	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, "s3cr3t", cfg.Auth.JWTSecret)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.CORS.AllowCredentials)
}
