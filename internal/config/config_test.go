package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("DATABASE_DRIVER", "")
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("JWT_TTL_HOURS", "")
	t.Setenv("METRICS_PUBLIC", "")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.HTTPPort)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, defaultDSN, cfg.DatabaseDSN)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "admin", cfg.AdminUsername)
	assert.False(t, cfg.MetricsPublic)
}

func TestFromEnvSQLite(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("DATABASE_DRIVER", "SQLite")
	t.Setenv("DATABASE_DSN", "")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "delivery.db", cfg.DatabaseDSN)
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	cases := map[string]map[string]string{
		"missing secret": {"JWT_SECRET": ""},
		"short secret":   {"JWT_SECRET": "short"},
		"bad driver":     {"JWT_SECRET": testSecret, "DATABASE_DRIVER": "mysql"},
		"bad ttl":        {"JWT_SECRET": testSecret, "JWT_TTL_HOURS": "-1"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("DATABASE_DRIVER", "")
			t.Setenv("JWT_TTL_HOURS", "")
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
