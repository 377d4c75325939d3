package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the process configuration, read from the environment (and an optional .env file).
type Config struct {
	AppEnv    string
	AppPort   string
	LogLevel  string
	LogFormat string

	DatabaseDSN string
	UseSQLite   bool
	SQLitePath  string

	JWTSecret           string
	AllowAdminSignup    bool
	FrontendURL         string
	AuthRateLimitWindow time.Duration
	AuthRateLimitMax    int64

	RazorpayKeyID     string
	RazorpayKeySecret string
	RazorpayBaseURL   string

	RabbitMQURL string
	RedisURL    string

	SeedProducts bool
}

// Load reads .env when present and then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper applies defaults to v and builds a validated Config.
func FromViper(v *viper.Viper) (*Config, error) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", ":5000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("USE_SQLITE", true)
	v.SetDefault("SQLITE_PATH", "foodstore.db")
	v.SetDefault("AUTH_ALLOW_ADMIN_SIGNUP", false)
	v.SetDefault("FRONTEND_URL", "http://localhost:5173")
	v.SetDefault("AUTH_RATE_LIMIT_WINDOW", "1m")
	v.SetDefault("AUTH_RATE_LIMIT_MAX", 20)
	v.SetDefault("RAZORPAY_BASE_URL", "https://api.razorpay.com")
	v.SetDefault("SEED_PRODUCTS", true)

	cfg := &Config{
		AppEnv:              strings.ToLower(v.GetString("APP_ENV")),
		AppPort:             normalizePort(v.GetString("APP_PORT")),
		LogLevel:            v.GetString("LOG_LEVEL"),
		LogFormat:           v.GetString("LOG_FORMAT"),
		DatabaseDSN:         v.GetString("DATABASE_DSN"),
		UseSQLite:           v.GetBool("USE_SQLITE"),
		SQLitePath:          v.GetString("SQLITE_PATH"),
		JWTSecret:           v.GetString("JWT_SECRET"),
		AllowAdminSignup:    v.GetBool("AUTH_ALLOW_ADMIN_SIGNUP"),
		FrontendURL:         v.GetString("FRONTEND_URL"),
		AuthRateLimitWindow: v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
		AuthRateLimitMax:    v.GetInt64("AUTH_RATE_LIMIT_MAX"),
		RazorpayKeyID:       v.GetString("RAZORPAY_KEY_ID"),
		RazorpayKeySecret:   v.GetString("RAZORPAY_KEY_SECRET"),
		RazorpayBaseURL:     v.GetString("RAZORPAY_BASE_URL"),
		RabbitMQURL:         v.GetString("RABBITMQ_URL"),
		RedisURL:            v.GetString("REDIS_URL"),
		SeedProducts:        v.GetBool("SEED_PRODUCTS"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("JWT_SECRET is required")
	}
	if !c.UseSQLite && strings.TrimSpace(c.DatabaseDSN) == "" {
		return errors.New("DATABASE_DSN is required when USE_SQLITE is false")
	}
	if c.AuthRateLimitWindow <= 0 {
		return errors.New("AUTH_RATE_LIMIT_WINDOW must be positive")
	}
	if c.AuthRateLimitMax <= 0 {
		return errors.New("AUTH_RATE_LIMIT_MAX must be positive")
	}
	return nil
}

// IsDevelopment reports whether detailed errors may be logged.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// PaymentsEnabled reports whether gateway credentials were supplied.
func (c *Config) PaymentsEnabled() bool {
	return c.RazorpayKeyID != "" && c.RazorpayKeySecret != ""
}

func normalizePort(port string) string {
	port = strings.TrimSpace(port)
	if port == "" {
		return ":5000"
	}
	if !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}
