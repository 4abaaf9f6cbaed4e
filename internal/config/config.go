// Package config loads server settings from defaults, an optional YAML
// file, a .env file, the environment and command-line flags, in that
// order of precedence (last wins).
package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Store kinds.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// MinSecretLength is the shortest accepted JWT secret.
const MinSecretLength = 32

// DotEnvFile is read from the working directory when present.
const DotEnvFile = ".env"

type Config struct {
	Port           int           `koanf:"port"`
	DatabaseURL    string        `koanf:"database_url"`
	JWTSecret      string        `koanf:"jwt_secret"`
	Store          string        `koanf:"store"`
	Cookie         CookieConfig  `koanf:"cookie"`
	Log            LogConfig     `koanf:"log"`
	MetricsAddr    string        `koanf:"metrics_addr"` // empty disables the metrics server
	RequestTimeout time.Duration `koanf:"request_timeout"`
	AutoMigrate    bool          `koanf:"auto_migrate"`
	CORSOrigins    []string      `koanf:"cors_origins"`
}

type CookieConfig struct {
	Name   string `koanf:"name"`
	Secure bool   `koanf:"secure"`
}

type LogConfig struct {
	Format string `koanf:"format"`
}

func defaults() map[string]any {
	return map[string]any{
		"port":            3000,
		"database_url":    "",
		"jwt_secret":      "",
		"store":           StorePostgres,
		"cookie.name":     "apothecary_token",
		"cookie.secure":   false,
		"log.format":      "json",
		"metrics_addr":    "127.0.0.1:9100",
		"request_timeout": "10s",
		"auto_migrate":    true,
		"cors_origins":    []string{"*"},
	}
}

// envKeys maps environment variables to config keys. Variables not listed
// are ignored.
var envKeys = map[string]string{
	"PORT":            "port",
	"DATABASE_URL":    "database_url",
	"JWT_SECRET":      "jwt_secret",
	"STORE":           "store",
	"COOKIE_NAME":     "cookie.name",
	"COOKIE_SECURE":   "cookie.secure",
	"LOG_FORMAT":      "log.format",
	"METRICS_ADDR":    "metrics_addr",
	"REQUEST_TIMEOUT": "request_timeout",
	"AUTO_MIGRATE":    "auto_migrate",
	"CORS_ORIGINS":    "cors_origins",
}

// Load builds a Config. path names an optional YAML file; flags may be nil.
// Flag names use dashes where keys use underscores (--metrics-addr sets
// metrics_addr). The result is not validated.
func Load(flags *pflag.FlagSet, path string) (*Config, error) {
	ko := koanf.New(".")

	if err := ko.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, oops.Code("CONFIG_DEFAULTS_FAILED").Wrap(err)
	}

	if path != "" {
		if err := ko.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_FILE_FAILED").With("path", path).Wrap(err)
		}
	}

	// existing environment variables win over .env entries
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, oops.Code("CONFIG_DOTENV_FAILED").With("path", DotEnvFile).Wrap(err)
	}

	if err := ko.Load(env.ProviderWithValue("", ".", envValue), nil); err != nil {
		return nil, oops.Code("CONFIG_ENV_FAILED").Wrap(err)
	}

	if flags != nil {
		p := posflag.ProviderWithFlag(flags, ".", ko, func(f *pflag.Flag) (string, any) {
			if f.Name == "config" {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		})
		if err := ko.Load(p, nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	var cfg Config
	if err := ko.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_DECODE_FAILED").Wrap(err)
	}
	return &cfg, nil
}

func envValue(name, value string) (string, any) {
	key, ok := envKeys[name]
	if !ok {
		return "", nil
	}
	if key == "cors_origins" {
		return key, splitList(value)
	}
	return key, value
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate reports the first setting that would keep the server from
// starting.
func (c *Config) Validate() error {
	invalid := oops.Code("CONFIG_INVALID")

	switch c.Store {
	case StorePostgres:
		if c.DatabaseURL == "" {
			return invalid.Errorf("database_url is required for the %s store", StorePostgres)
		}
	case StoreMemory:
	default:
		return invalid.With("store", c.Store).Errorf("unknown store %q", c.Store)
	}

	if c.JWTSecret == "" {
		return invalid.Errorf("jwt_secret is required")
	}
	if len(c.JWTSecret) < MinSecretLength {
		return invalid.Errorf("jwt_secret must be at least %d characters", MinSecretLength)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return invalid.With("port", c.Port).Errorf("port out of range")
	}
	if c.RequestTimeout <= 0 {
		return invalid.With("request_timeout", c.RequestTimeout).Errorf("request_timeout must be positive")
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return invalid.With("format", c.Log.Format).Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}
