// Package config handles service configuration: defaults, an optional YAML
// file, a .env file and TEXTLAB_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// EnvPrefix prefixes every environment override, e.g. TEXTLAB_SERVER_ADDR.
	EnvPrefix = "TEXTLAB"
	// ConfigDir is the directory name under XDG_CONFIG_HOME.
	ConfigDir = "textlab"
	// ConfigFile is the config file name.
	ConfigFile = "config.yml"
	// DBFile is the default SQLite file name under the data directory.
	DBFile = "textlab.db"

	// DevJWTSecret is the signing secret used when none is configured.
	DevJWTSecret = "change-me-in-production"
)

// Config is the complete service configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Database  DatabaseConfig  `mapstructure:"database" yaml:"database"`
	Auth      AuthConfig      `mapstructure:"auth" yaml:"auth"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr        string   `mapstructure:"addr" yaml:"addr"`
	LogMode     string   `mapstructure:"log_mode" yaml:"log_mode"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
	// TrustProxy keys rate limits on X-Forwarded-For / X-Real-IP.
	TrustProxy bool `mapstructure:"trust_proxy" yaml:"trust_proxy"`
}

// DatabaseConfig configures the SQLite store.
type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// AuthConfig configures token issuance.
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	AccessTTL time.Duration `mapstructure:"access_ttl" yaml:"access_ttl"`
}

// RateLimitConfig configures per-client request limits.
type RateLimitConfig struct {
	Enabled          bool `mapstructure:"enabled" yaml:"enabled"`
	GeneralPerMinute int  `mapstructure:"general_per_minute" yaml:"general_per_minute"`
	LoginPerMinute   int  `mapstructure:"login_per_minute" yaml:"login_per_minute"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Addr:        ":8080",
			LogMode:     "development",
			CORSOrigins: []string{"http://localhost:3000"},
		},
		Database: DatabaseConfig{
			Path: DefaultDBPath(),
		},
		Auth: AuthConfig{
			JWTSecret: DevJWTSecret,
			AccessTTL: 30 * time.Minute,
		},
		RateLimit: RateLimitConfig{
			Enabled:          true,
			GeneralPerMinute: 60,
			LoginPerMinute:   5,
		},
	}
}

// Path returns the default config file location.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/textlab/config.yml.
func Path() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, ConfigDir, ConfigFile)
}

// DefaultDBPath returns the default database location.
// Respects XDG_DATA_HOME, defaults to ~/.local/share/textlab/textlab.db.
func DefaultDBPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return DBFile
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, ConfigDir, DBFile)
}

// Load builds the configuration. Precedence: env vars > config file >
// defaults. A .env file in the working directory is loaded into the
// environment first. With an empty path the default location is used when it
// exists; an explicit path that does not exist is an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.log_mode", d.Server.LogMode)
	v.SetDefault("server.cors_origins", d.Server.CORSOrigins)
	v.SetDefault("server.trust_proxy", d.Server.TrustProxy)
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("auth.jwt_secret", d.Auth.JWTSecret)
	v.SetDefault("auth.access_ttl", d.Auth.AccessTTL)
	v.SetDefault("rate_limit.enabled", d.RateLimit.Enabled)
	v.SetDefault("rate_limit.general_per_minute", d.RateLimit.GeneralPerMinute)
	v.SetDefault("rate_limit.login_per_minute", d.RateLimit.LoginPerMinute)

	switch {
	case path != "":
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		v.SetConfigFile(path)
	default:
		if p := Path(); p != "" {
			if _, err := os.Stat(p); err == nil {
				v.SetConfigFile(p)
			}
		}
	}

	if v.ConfigFileUsed() != "" {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Database.Path = ExpandTilde(cfg.Database.Path)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Server.Addr == "":
		return errors.New("server.addr must not be empty")
	case c.Database.Path == "":
		return errors.New("database.path must not be empty")
	case c.Auth.JWTSecret == "":
		return errors.New("auth.jwt_secret must not be empty")
	case c.Auth.AccessTTL <= 0:
		return fmt.Errorf("auth.access_ttl must be positive, got %s", c.Auth.AccessTTL)
	case c.RateLimit.GeneralPerMinute <= 0:
		return fmt.Errorf("rate_limit.general_per_minute must be positive, got %d", c.RateLimit.GeneralPerMinute)
	case c.RateLimit.LoginPerMinute <= 0:
		return fmt.Errorf("rate_limit.login_per_minute must be positive, got %d", c.RateLimit.LoginPerMinute)
	}
	return nil
}

// Save writes the configuration as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// ExpandTilde expands a leading ~ to the user's home directory.
func ExpandTilde(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}
