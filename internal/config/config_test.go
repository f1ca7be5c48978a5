package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "jwt-secret")
	t.Setenv("ENCRYPTION_KEY", "enc-secret")
	t.Setenv("DB_CONN", "host=localhost dbname=credit sslmode=disable")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, 24*time.Hour, cfg.BureauCacheTTL)
	assert.Equal(t, "0 8 * * *", cfg.ReminderSchedule)
	assert.Equal(t, 1, cfg.ReminderLeadDays)
	assert.Equal(t, "jwt-secret", cfg.JWTSecret)
	assert.Equal(t, "enc-secret", cfg.EncryptionKey)
}

func TestLoad_EnvOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9090")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("BUREAU_CACHE_TTL", "90m")
	t.Setenv("REMINDER_LEAD_DAYS", "2")
	t.Setenv("SMTP_PORT", "2525")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 90*time.Minute, cfg.BureauCacheTTL)
	assert.Equal(t, 2, cfg.ReminderLeadDays)
	assert.Equal(t, "2525", cfg.SMTPPort)
}

func TestLoad_Required(t *testing.T) {
	tests := []struct {
		name    string
		unset   string
		wantErr string
	}{
		{"jwt secret", "JWT_SECRET", "JWT_SECRET is required"},
		{"encryption key", "ENCRYPTION_KEY", "ENCRYPTION_KEY is required"},
		{"database", "DB_CONN", "DB_CONN is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.unset, "")

			_, err := Load(viper.New())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_NegativeLeadDays(t *testing.T) {
	setRequired(t)
	t.Setenv("REMINDER_LEAD_DAYS", "-1")

	_, err := Load(viper.New())
	assert.Error(t, err)
}
