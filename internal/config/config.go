package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Port             string
	DBConn           string
	LogLevel         string
	JWTSecret        string
	EncryptionKey    string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	BureauCacheTTL   time.Duration
	SMTPHost         string
	SMTPPort         string
	SMTPUsername     string
	SMTPPassword     string
	SenderEmail      string
	ReminderSchedule string
	ReminderLeadDays int
}

var defaults = map[string]interface{}{
	"PORT":               "8080",
	"DB_CONN":            "",
	"LOG_LEVEL":          "info",
	"REDIS_ADDR":         "localhost:6379",
	"REDIS_PASSWORD":     "",
	"REDIS_DB":           0,
	"BUREAU_CACHE_TTL":   "24h",
	"SMTP_HOST":          "localhost",
	"SMTP_PORT":          "587",
	"SMTP_USERNAME":      "",
	"SMTP_PASSWORD":      "",
	"SENDER_EMAIL":       "reminders@localhost",
	"REMINDER_SCHEDULE":  "0 8 * * *",
	"REMINDER_LEAD_DAYS": 1,
	"JWT_SECRET":         "",
	"ENCRYPTION_KEY":     "",
}

// NewConfig loads configuration from the environment, after an optional .env file
func NewConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return Load(viper.New())
}

// Load reads configuration through v, which should have no prior state
func Load(v *viper.Viper) (*Config, error) {
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Port:             v.GetString("PORT"),
		DBConn:           v.GetString("DB_CONN"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		EncryptionKey:    v.GetString("ENCRYPTION_KEY"),
		RedisAddr:        v.GetString("REDIS_ADDR"),
		RedisPassword:    v.GetString("REDIS_PASSWORD"),
		RedisDB:          v.GetInt("REDIS_DB"),
		BureauCacheTTL:   v.GetDuration("BUREAU_CACHE_TTL"),
		SMTPHost:         v.GetString("SMTP_HOST"),
		SMTPPort:         v.GetString("SMTP_PORT"),
		SMTPUsername:     v.GetString("SMTP_USERNAME"),
		SMTPPassword:     v.GetString("SMTP_PASSWORD"),
		SenderEmail:      v.GetString("SENDER_EMAIL"),
		ReminderSchedule: v.GetString("REMINDER_SCHEDULE"),
		ReminderLeadDays: v.GetInt("REMINDER_LEAD_DAYS"),
	}

	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.EncryptionKey == "" {
		return nil, fmt.Errorf("ENCRYPTION_KEY is required")
	}
	if cfg.ReminderLeadDays < 0 {
		return nil, fmt.Errorf("REMINDER_LEAD_DAYS must not be negative")
	}

	return cfg, nil
}
