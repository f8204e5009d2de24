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

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines token and credential parameters.
type AuthConfig struct {
	JWTSecret              string
	JWTAlgorithm           string
	AccessTokenTTLMinutes  int
	RefreshTokenTTLMinutes int
	RefreshRevalidatesRole bool
	RevocationEnabled      bool
	BcryptCost             int
}

var supportedAlgorithms = map[string]struct{}{
	"HS256": {},
	"HS384": {},
	"HS512": {},
}

// Load reads configuration from environment variables, applying defaults where possible.
// ENVIRONMENT=development prefers .env.development over .env.
func Load() (*Config, error) {
	if os.Getenv("ENVIRONMENT") == "development" {
		_ = godotenv.Load(".env.development")
	}
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "marketplace-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "10001"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:              os.Getenv("AUTH_JWT_SECRET"),
			JWTAlgorithm:           strings.ToUpper(getEnv("AUTH_JWT_ALGORITHM", "HS256")),
			AccessTokenTTLMinutes:  getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 15),
			RefreshTokenTTLMinutes: getEnvAsInt("AUTH_REFRESH_TOKEN_TTL_MINUTES", 30),
			RefreshRevalidatesRole: getEnvAsBool("AUTH_REFRESH_REVALIDATES_ROLE", false),
			RevocationEnabled:      getEnvAsBool("AUTH_REVOCATION_ENABLED", false),
			BcryptCost:             getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the token authority cannot start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("AUTH_JWT_SECRET must be set")
	}
	if _, ok := supportedAlgorithms[c.Auth.JWTAlgorithm]; !ok {
		return fmt.Errorf("unsupported AUTH_JWT_ALGORITHM %q", c.Auth.JWTAlgorithm)
	}
	if c.Auth.AccessTokenTTLMinutes <= 0 {
		return errors.New("AUTH_ACCESS_TOKEN_TTL_MINUTES must be positive")
	}
	if c.Auth.RefreshTokenTTLMinutes <= 0 {
		return errors.New("AUTH_REFRESH_TOKEN_TTL_MINUTES must be positive")
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// AccessTTL is the default lifetime of session tokens.
func (a AuthConfig) AccessTTL() time.Duration {
	return time.Duration(a.AccessTokenTTLMinutes) * time.Minute
}

// RefreshTTL is the lifetime of tokens minted by a refresh.
func (a AuthConfig) RefreshTTL() time.Duration {
	return time.Duration(a.RefreshTokenTTLMinutes) * time.Minute
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
