// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

type Config struct {
	Environment  string
	Server       ServerConfig
	Database     DatabaseConfig
	Store        StoreConfig
	JWT          JWTConfig
	Notification NotificationConfig
	AWS          AWSConfig
	Log          LogConfig
	I18n         I18nConfig
	Frontend     FrontendConfig
	Staff        StaffConfig
	RateLimit    RateLimitConfig
}

type FrontendConfig struct {
	BaseURL string
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
	CORSOrigins  []string
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
	AutoMigrate  bool
}

// DSN renders the libpq connection string for the gorm postgres driver.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}

// StoreConfig selects the listing store: postgres or memory.
type StoreConfig struct {
	Driver string
}

type JWTConfig struct {
	SecretKey      string
	AccessTokenTTL int // in hours
}

// NotificationConfig selects how owners and staff hear about lifecycle changes.
type NotificationConfig struct {
	Channel     string // webhook, sns or log
	WebhookURL  string
	Timeout     time.Duration
	SNSTopicARN string
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
}

type LogConfig struct {
	Level  string
	Format string // text or json
}

type I18nConfig struct {
	DefaultLocale string
	LocalesPath   string
}

// StaffConfig seeds the first staff account.
type StaffConfig struct {
	Email    string
	Password string
}

type RateLimitConfig struct {
	IntakePerMinute int
	AuthPerMinute   int
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
			CORSOrigins:  getEnvAsList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "directory"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "silent"),
			AutoMigrate:  getEnvAsBool("DB_AUTO_MIGRATE", true),
		},
		Store: StoreConfig{
			Driver: getEnv("STORE_DRIVER", "postgres"),
		},
		JWT: JWTConfig{
			SecretKey:      getEnv("JWT_SECRET", defaultJWTSecret),
			AccessTokenTTL: getEnvAsInt("JWT_ACCESS_TTL", 24), // 24 hours
		},
		Notification: NotificationConfig{
			Channel:     getEnv("NOTIFICATION_CHANNEL", "log"),
			WebhookURL:  getEnv("NOTIFICATION_WEBHOOK_URL", ""),
			Timeout:     getEnvAsDuration("NOTIFICATION_TIMEOUT", 5*time.Second),
			SNSTopicARN: getEnv("NOTIFICATION_SNS_TOPIC_ARN", ""),
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("AWS_ENDPOINT", ""),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		I18n: I18nConfig{
			DefaultLocale: getEnv("DEFAULT_LOCALE", "en"),
			LocalesPath:   getEnv("LOCALES_PATH", "./internal/i18n/locales"),
		},
		Frontend: FrontendConfig{
			BaseURL: getEnv("FRONTEND_BASE_URL", "http://localhost:3000"),
		},
		Staff: StaffConfig{
			Email:    getEnv("STAFF_EMAIL", ""),
			Password: getEnv("STAFF_PASSWORD", ""),
		},
		RateLimit: RateLimitConfig{
			IntakePerMinute: getEnvAsInt("RATE_LIMIT_INTAKE_PER_MINUTE", 10),
			AuthPerMinute:   getEnvAsInt("RATE_LIMIT_AUTH_PER_MINUTE", 5),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.JWT.SecretKey == defaultJWTSecret && c.Environment == "production" {
		return fmt.Errorf("JWT secret key must be changed in production")
	}

	if c.Database.Password == "" && c.Environment == "production" && c.Store.Driver == "postgres" {
		return fmt.Errorf("database password is required in production")
	}

	switch c.Store.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	switch c.Notification.Channel {
	case "log":
	case "webhook":
		if c.Notification.WebhookURL == "" {
			return fmt.Errorf("NOTIFICATION_WEBHOOK_URL is required for the webhook channel")
		}
	case "sns":
		if c.Notification.SNSTopicARN == "" {
			return fmt.Errorf("NOTIFICATION_SNS_TOPIC_ARN is required for the sns channel")
		}
	default:
		return fmt.Errorf("unknown notification channel %q", c.Notification.Channel)
	}

	if c.RateLimit.IntakePerMinute < 1 {
		return fmt.Errorf("RATE_LIMIT_INTAKE_PER_MINUTE must be positive")
	}

	if c.RateLimit.AuthPerMinute < 1 {
		return fmt.Errorf("RATE_LIMIT_AUTH_PER_MINUTE must be positive")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
