package config

import (
	"os"
	"strings"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Postgres PostgresConfig
	Store    StoreConfig
	CORS     CORSConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port    string
	GinMode string
}

// AuthConfig keeps raw env values; AuthService parses and validates them.
type AuthConfig struct {
	JWTSecret     string
	JWTTokenTTL   string
	BcryptCost    string
	AllowSignup   string
	AdminUsername string
	AdminPassword string
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
}

type StoreConfig struct {
	Kind string
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowCredentials bool
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() Config {
	cfg := Config{
		Server: ServerConfig{
			Port:    getenv("PORT", "8080"),
			GinMode: getenv("GIN_MODE", "release"),
		},
		Auth: AuthConfig{
			JWTSecret:     os.Getenv("JWT_SECRET"),
			JWTTokenTTL:   getenv("JWT_TOKEN_TTL", "10h"),
			BcryptCost:    getenv("BCRYPT_COST", "12"),
			AllowSignup:   getenv("ALLOW_SIGNUP", "true"),
			AdminUsername: os.Getenv("ADMIN_USERNAME"),
			AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		},
		Postgres: PostgresConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Host:        getenv("PGHOST", "localhost"),
			Port:        getenv("PGPORT", "5432"),
			User:        os.Getenv("PGUSER"),
			Password:    os.Getenv("PGPASSWORD"),
			Database:    os.Getenv("PGDATABASE"),
			SSLMode:     getenv("PGSSLMODE", "disable"),
		},
		CORS: CORSConfig{
			AllowedOrigins:   splitList(getenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
			AllowCredentials: strings.EqualFold(os.Getenv("CORS_ALLOW_CREDENTIALS"), "true"),
		},
		Log: LogConfig{
			Level:  getenv("LOG_LEVEL", "info"),
			Format: getenv("LOG_FORMAT", "text"),
		},
	}

	cfg.Store = StoreConfig{Kind: strings.ToLower(os.Getenv("STORE"))}
	if cfg.Store.Kind == "" {
		cfg.Store.Kind = StoreMemory
		if cfg.Postgres.HasDSN() {
			cfg.Store.Kind = StorePostgres
		}
	}

	return cfg
}

// HasDSN reports whether enough connection settings exist to reach Postgres.
func (p PostgresConfig) HasDSN() bool {
	if p.DatabaseURL != "" {
		return true
	}
	return p.User != "" && p.Database != ""
}

func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Server.Port, ":")
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
