// Package config loads application configuration from environment
// variables, with an optional .env file for local development.
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/viper"
)

// Config groups all application settings.
type Config struct {
	App         AppConfig
	HTTP        HTTPConfig
	DB          DBConfig
	JWT         JWTConfig
	Auth        AuthConfig
	Idempotency IdempotencyConfig
	Log         LogConfig
}

// AppConfig identifies the running application.
type AppConfig struct {
	Env     string // development, staging, production
	Name    string
	Version string
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Addr returns the listen address (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DBConfig configures the PostgreSQL connection. If DatabaseURL is set
// it is used verbatim; otherwise the DSN is built from the parts.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	MaxConns    int
	MinConns    int
}

// ConnectionString returns the DSN to use: DatabaseURL when set, the
// assembled DSN otherwise.
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN assembles a postgres connection URL. The password goes through
// url.UserPassword so special characters survive.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig configures token signing.
type JWTConfig struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// AuthConfig configures login throttling and password policy.
type AuthConfig struct {
	MaxLoginAttempts  int
	LockDuration      time.Duration
	PasswordMinLength int
}

// IdempotencyConfig configures request replay protection.
type IdempotencyConfig struct {
	Enabled bool
	TTL     time.Duration
}

// LogConfig configures logging.
type LogConfig struct {
	Level string
}

// devJWTSecret is the fallback secret for local development. Validate
// rejects it outside development.
const devJWTSecret = "dev-secret-change-me"

// Load reads configuration from environment variables. A .env file in
// the working directory is read first when present; real environment
// variables take priority.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // optional file, missing is fine

	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Env:     getString(v, "APP_ENV", "development"),
			Name:    getString(v, "APP_NAME", "stockbook"),
			Version: getString(v, "APP_VERSION", "dev"),
		},
		HTTP: HTTPConfig{
			Host:            getString(v, "HTTP_HOST", "0.0.0.0"),
			Port:            getInt(v, "HTTP_PORT", 8080),
			ReadTimeout:     getDuration(v, "HTTP_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDuration(v, "HTTP_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getDuration(v, "HTTP_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDuration(v, "HTTP_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "stockbook"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
			MaxConns:    getInt(v, "DB_MAX_CONNS", 25),
			MinConns:    getInt(v, "DB_MIN_CONNS", 5),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", devJWTSecret),
			Issuer:     getString(v, "JWT_ISSUER", "stockbook"),
			AccessTTL:  getDuration(v, "JWT_ACCESS_TTL", 15*time.Minute),
			RefreshTTL: getDuration(v, "JWT_REFRESH_TTL", 7*24*time.Hour),
		},
		Auth: AuthConfig{
			MaxLoginAttempts:  getInt(v, "AUTH_MAX_LOGIN_ATTEMPTS", 5),
			LockDuration:      getDuration(v, "AUTH_LOCK_DURATION", 15*time.Minute),
			PasswordMinLength: getInt(v, "AUTH_PASSWORD_MIN_LENGTH", 8),
		},
		Idempotency: IdempotencyConfig{
			Enabled: getBool(v, "IDEMPOTENCY_ENABLED", true),
			TTL:     getDuration(v, "IDEMPOTENCY_TTL", 24*time.Hour),
		},
		Log: LogConfig{
			Level: getString(v, "LOG_LEVEL", "info"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations that cannot run safely.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid HTTP_PORT %d", c.HTTP.Port)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if c.App.Env != "development" && c.JWT.Secret == devJWTSecret {
		return fmt.Errorf("JWT_SECRET must be set explicitly outside development")
	}
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		return fmt.Errorf("JWT token TTLs must be positive")
	}
	if c.DB.MaxConns < c.DB.MinConns {
		return fmt.Errorf("DB_MAX_CONNS %d is below DB_MIN_CONNS %d", c.DB.MaxConns, c.DB.MinConns)
	}
	return nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		return v.GetInt(key)
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		return v.GetBool(key)
	}
	return def
}

func getDuration(v *viper.Viper, key string, def time.Duration) time.Duration {
	if v.IsSet(key) {
		return v.GetDuration(key)
	}
	return def
}
