package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const defaultDSN = "host=localhost user=postgres password=postgres dbname=delivery port=5432 sslmode=disable"

type Config struct {
	HTTPPort       string
	DatabaseDriver string // postgres | sqlite
	DatabaseDSN    string
	JWTSecret      string
	JWTTTL         time.Duration
	CORSOrigins    string
	RedisAddr      string // empty: logout revocations are kept in memory
	AdminUsername  string
	AdminPassword  string
	LogLevel       string
	CookieSecure   bool
	MetricsPublic  bool // serve /api/metrics without a session
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first when present; real environment
// variables always win over it.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		logrus.Info("loaded .env file")
	}

	cfg, err := FromEnv()
	if err != nil {
		logrus.Fatalf("[FATAL] %v", err)
	}

	if cfg.DatabaseDriver == "postgres" && cfg.DatabaseDSN == defaultDSN {
		logrus.Warn("DATABASE_DSN default value in use, set your own Postgres DSN for production")
	}
	if cfg.CORSOrigins == "http://localhost:5173" {
		logrus.Warn("CORS_ALLOWED_ORIGINS default value in use, set your own domain for production")
	}
	if cfg.AdminPassword == "" {
		logrus.Warn("ADMIN_PASSWORD is empty, no admin user will be seeded")
	}

	return cfg
}

// FromEnv builds the configuration without side effects so it can be
// checked in tests.
func FromEnv() (*Config, error) {
	ttlHours, err := strconv.Atoi(getEnv("JWT_TTL_HOURS", "24"))
	if err != nil || ttlHours <= 0 {
		return nil, configError("JWT_TTL_HOURS must be a positive integer")
	}

	cfg := &Config{
		HTTPPort:       getEnv("HTTP_PORT", "3000"),
		DatabaseDriver: strings.ToLower(getEnv("DATABASE_DRIVER", "postgres")),
		DatabaseDSN:    getEnv("DATABASE_DSN", ""),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		JWTTTL:         time.Duration(ttlHours) * time.Hour,
		CORSOrigins:    getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		AdminUsername:  getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:  getEnv("ADMIN_PASSWORD", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		CookieSecure:   getEnv("COOKIE_SECURE", "false") == "true",
		MetricsPublic:  getEnv("METRICS_PUBLIC", "false") == "true",
	}

	switch cfg.DatabaseDriver {
	case "postgres":
		if cfg.DatabaseDSN == "" {
			cfg.DatabaseDSN = defaultDSN
		}
	case "sqlite":
		if cfg.DatabaseDSN == "" {
			cfg.DatabaseDSN = "delivery.db"
		}
	default:
		return nil, configError("DATABASE_DRIVER must be postgres or sqlite")
	}

	if cfg.JWTSecret == "" {
		return nil, configError("JWT_SECRET is not set")
	}
	if len(cfg.JWTSecret) < 32 {
		return nil, configError("JWT_SECRET must be at least 32 characters")
	}

	return cfg, nil
}

type configError string

func (e configError) Error() string { return string(e) }

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
