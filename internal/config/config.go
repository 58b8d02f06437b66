package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMemory   = "memory"
	StoreMongo    = "mongo"
	StorePostgres = "postgres"

	AuthDev    = "dev"
	AuthJWT    = "jwt"
	AuthRemote = "remote"
)

type Config struct {
	Env      string // dev, prod
	HTTPPort string // default 8080
	BasePath string // prefijo de rutas, default /api

	Store         string // memory, mongo, postgres
	MongoURI      string
	MongoDatabase string
	PostgresDSN   string

	AuthMode    string // dev, jwt, remote
	JWTSecret   string
	AuthBaseURL string
	AuthAPIKey  string

	CORSOrigins []string

	ShutdownTimeout time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Env:      getEnv("APP_ENV", "dev"),
		HTTPPort: getEnv("HTTP_PORT", getEnv("PORT", "8080")),
		BasePath: normalizeBasePath(getEnv("API_BASE_PATH", "/api")),

		Store:         strings.ToLower(getEnv("STORE", StoreMemory)),
		MongoURI:      os.Getenv("MONGO_URI"),
		MongoDatabase: getEnv("MONGO_DATABASE", "vetclinic"),
		PostgresDSN:   os.Getenv("DB_DSN"),

		AuthMode:    strings.ToLower(getEnv("AUTH_MODE", AuthDev)),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		AuthBaseURL: os.Getenv("AUTH_BASE_URL"),
		AuthAPIKey:  os.Getenv("AUTH_API_KEY"),

		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),

		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		ReadTimeout:     getDuration("READ_TIMEOUT", 5*time.Second),
		WriteTimeout:    getDuration("WRITE_TIMEOUT", 10*time.Second),
	}

	switch cfg.Store {
	case StoreMemory:
	case StoreMongo:
		if cfg.MongoURI == "" {
			return Config{}, errors.New("MONGO_URI is required when STORE=mongo")
		}
	case StorePostgres:
		if cfg.PostgresDSN == "" {
			return Config{}, errors.New("DB_DSN is required when STORE=postgres")
		}
	default:
		return Config{}, fmt.Errorf("invalid STORE %q", cfg.Store)
	}

	switch cfg.AuthMode {
	case AuthDev:
	case AuthJWT:
		if cfg.JWTSecret == "" {
			return Config{}, errors.New("JWT_SECRET is required when AUTH_MODE=jwt")
		}
	case AuthRemote:
		if cfg.AuthBaseURL == "" || cfg.AuthAPIKey == "" {
			return Config{}, errors.New("AUTH_BASE_URL and AUTH_API_KEY are required when AUTH_MODE=remote")
		}
	default:
		return Config{}, fmt.Errorf("invalid AUTH_MODE %q", cfg.AuthMode)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return time.Duration(n) * time.Second
		}
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		fmt.Fprintf(os.Stderr, "invalid duration for %s=%q, using default %s\n", key, v, def)
	}
	return def
}

func splitList(raw string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// normalizeBasePath: "/" o "" => sin prefijo; siempre con "/" inicial y sin "/" final.
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
