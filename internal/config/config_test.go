// internal/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("NOTIFICATION_CHANNEL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "log", cfg.Notification.Channel)
	assert.Equal(t, 5*time.Second, cfg.Notification.Timeout)
	assert.Equal(t, 10, cfg.RateLimit.IntakePerMinute)
	assert.Equal(t, 5, cfg.RateLimit.AuthPerMinute)
	assert.True(t, cfg.Database.AutoMigrate)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("NOTIFICATION_CHANNEL", "webhook")
	t.Setenv("NOTIFICATION_WEBHOOK_URL", "https://hooks.example.com/directory")
	t.Setenv("NOTIFICATION_TIMEOUT", "2s")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("DB_AUTO_MIGRATE", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, 2*time.Second, cfg.Notification.Timeout)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.CORSOrigins)
	assert.False(t, cfg.Database.AutoMigrate)
}

func validConfig() *Config {
	return &Config{
		Environment:  "development",
		Store:        StoreConfig{Driver: "memory"},
		JWT:          JWTConfig{SecretKey: defaultJWTSecret},
		Notification: NotificationConfig{Channel: "log"},
		RateLimit:    RateLimitConfig{IntakePerMinute: 5, AuthPerMinute: 5},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"default secret in production", func(c *Config) { c.Environment = "production" }, "JWT secret key must be changed in production"},
		{"empty db password in production", func(c *Config) {
			c.Environment = "production"
			c.JWT.SecretKey = "s3cret"
			c.Store.Driver = "postgres"
		}, "database password is required in production"},
		{"unknown driver", func(c *Config) { c.Store.Driver = "mongo" }, `unknown store driver "mongo"`},
		{"unknown channel", func(c *Config) { c.Notification.Channel = "pigeon" }, `unknown notification channel "pigeon"`},
		{"webhook without url", func(c *Config) { c.Notification.Channel = "webhook" }, "NOTIFICATION_WEBHOOK_URL is required for the webhook channel"},
		{"zero auth rate", func(c *Config) { c.RateLimit.AuthPerMinute = 0 }, "RATE_LIMIT_AUTH_PER_MINUTE must be positive"},
		{"sns without topic", func(c *Config) { c.Notification.Channel = "sns" }, "NOTIFICATION_SNS_TOPIC_ARN is required for the sns channel"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "5432", User: "app", Password: "pw", Database: "directory", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=app password=pw dbname=directory sslmode=disable", d.DSN())
}
