package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"APP_ENV", "HTTP_PORT", "PORT", "API_BASE_PATH", "STORE", "MONGO_URI", "MONGO_DATABASE",
		"DB_DSN", "AUTH_MODE", "JWT_SECRET", "AUTH_BASE_URL", "AUTH_API_KEY", "CORS_ORIGINS",
		"SHUTDOWN_TIMEOUT", "READ_TIMEOUT", "WRITE_TIMEOUT",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "/api", cfg.BasePath)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, "vetclinic", cfg.MongoDatabase)
	assert.Equal(t, AuthDev, cfg.AuthMode)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 5*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.WriteTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("API_BASE_PATH", "v1/")
	t.Setenv("STORE", "Mongo")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("AUTH_MODE", "jwt")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("CORS_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("READ_TIMEOUT", "3")
	t.Setenv("WRITE_TIMEOUT", "1500ms")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, "/v1", cfg.BasePath)
	assert.Equal(t, StoreMongo, cfg.Store)
	assert.Equal(t, AuthJWT, cfg.AuthMode)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, 3*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 1500*time.Millisecond, cfg.WriteTimeout)
}

func TestLoad_HTTPPortWinsOverPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_PORT", "7000")
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.HTTPPort)
}

func TestLoad_MissingRequired(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"mongo sin uri", map[string]string{"STORE": "mongo"}, "MONGO_URI"},
		{"postgres sin dsn", map[string]string{"STORE": "postgres"}, "DB_DSN"},
		{"jwt sin secret", map[string]string{"AUTH_MODE": "jwt"}, "JWT_SECRET"},
		{"remote sin key", map[string]string{"AUTH_MODE": "remote", "AUTH_BASE_URL": "http://auth"}, "AUTH_API_KEY"},
		{"store inválido", map[string]string{"STORE": "redis"}, "STORE"},
		{"auth inválido", map[string]string{"AUTH_MODE": "basic"}, "AUTH_MODE"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestNormalizeBasePath(t *testing.T) {
	assert.Equal(t, "", normalizeBasePath("/"))
	assert.Equal(t, "", normalizeBasePath(""))
	assert.Equal(t, "/api", normalizeBasePath("api"))
	assert.Equal(t, "/api/v2", normalizeBasePath("/api/v2/"))
}
