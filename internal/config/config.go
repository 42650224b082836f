// Package config loads eventplanner settings from a .env file, an optional
// config.yaml and EVP_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultSecret signs session cookies when no secret is configured. Fine for
// local use only; Validate rejects it in release mode.
const DefaultSecret = "defaultsecret"

// Session backends.
const (
	BackendCookie   = "cookie"
	BackendDatabase = "database"
	BackendRedis    = "redis"
)

// Config holds all configuration for the application.
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Server   ServerConfig   `mapstructure:"server"`
	Session  SessionConfig  `mapstructure:"session"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Search   SearchConfig   `mapstructure:"search"`
	Log      LogConfig      `mapstructure:"log"`
}

// APIConfig points at the events API.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"` // 0 = transport default
}

// ServerConfig holds the web front-end settings.
type ServerConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"` // gin mode: debug, release, test
	// CORSOrigins are the only origins allowed to read responses cross-site.
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Address, c.Port)
}

// SessionConfig selects where the session token lives.
type SessionConfig struct {
	Backend    string        `mapstructure:"backend"`
	Secret     string        `mapstructure:"secret"`
	CookieName string        `mapstructure:"cookie_name"`
	MaxAge     time.Duration `mapstructure:"max_age"`
	Secure     bool          `mapstructure:"secure"`
	File       string        `mapstructure:"file"` // CLI session file
}

// DatabaseConfig is used by the database session backend.
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"` // postgres or sqlite
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"ssl_mode"`
	Path     string `mapstructure:"path"` // sqlite file
}

// DSN returns the PostgreSQL connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=UTC",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode,
	)
}

// RedisConfig is used by the redis session backend. URL, when set, wins over
// the individual fields.
type RedisConfig struct {
	URL      string `mapstructure:"url"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SearchConfig tunes the search boxes.
type SearchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// LogConfig selects the log level and format.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

// LoadEnv loads a .env file into the process environment. A missing file is
// not an error.
func LoadEnv(paths ...string) {
	if err := godotenv.Load(paths...); err != nil {
		slog.Debug(".env file not found, using system environment variables")
	}
}

// Load reads configuration. path names an explicit config file; when empty
// config.yaml is looked up in the working directory and ./config.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("EVP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindAliases(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Session.Secret == "" {
		cfg.Session.Secret = DefaultSecret
	}
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("api.timeout", 0)

	v.SetDefault("server.address", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors_origins", []string{})

	v.SetDefault("session.backend", BackendCookie)
	v.SetDefault("session.secret", "")
	v.SetDefault("session.cookie_name", "evp_session")
	v.SetDefault("session.max_age", "720h")
	v.SetDefault("session.secure", false)
	v.SetDefault("session.file", "")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "eventplanner")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.path", "eventplanner.db")

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("search.debounce", "300ms")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// bindAliases keeps the plain variable names of existing .env files working
// next to the EVP_ ones.
func bindAliases(v *viper.Viper) {
	_ = v.BindEnv("api.base_url", "EVP_API_BASE_URL", "API_BASE_URL")
	_ = v.BindEnv("session.secret", "EVP_SESSION_SECRET", "SESSION_SECRET", "JWT_SECRET")
	_ = v.BindEnv("database.host", "EVP_DATABASE_HOST", "DB_HOST")
	_ = v.BindEnv("database.user", "EVP_DATABASE_USER", "DB_USER")
	_ = v.BindEnv("database.password", "EVP_DATABASE_PASSWORD", "DB_PASS")
	_ = v.BindEnv("database.name", "EVP_DATABASE_NAME", "DB_NAME")
	_ = v.BindEnv("database.port", "EVP_DATABASE_PORT", "DB_PORT")
	_ = v.BindEnv("redis.url", "EVP_REDIS_URL", "REDIS_URL")
}

// Validate checks the settings needed to serve the web front-end.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url %q is not an absolute URL", c.API.BaseURL)
	}

	switch c.Session.Backend {
	case BackendCookie, BackendRedis:
	case BackendDatabase:
		switch c.Database.Driver {
		case "postgres":
			if c.Database.Host == "" || c.Database.User == "" || c.Database.Name == "" || c.Database.Port == 0 {
				return errors.New("database host, user, name and port are required for the postgres driver")
			}
		case "sqlite":
			if c.Database.Path == "" {
				return errors.New("database.path is required for the sqlite driver")
			}
		default:
			return fmt.Errorf("unknown database.driver %q", c.Database.Driver)
		}
	default:
		return fmt.Errorf("unknown session.backend %q", c.Session.Backend)
	}

	if c.Server.Mode == "release" && c.Session.Secret == DefaultSecret {
		return errors.New("session.secret must be set in release mode")
	}
	return nil
}
