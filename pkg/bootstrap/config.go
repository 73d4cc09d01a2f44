package bootstrap

import (
	"fmt"
	"net/url"

	"github.com/caarlos0/env/v11"

	"github.com/marshallshelly/pebble-retail/pkg/runtime"
	"github.com/marshallshelly/pebble-retail/pkg/schema"
)

// Config selects the storage target.
type Config struct {
	// Driver is sqlite (default) or postgres.
	Driver string `env:"RETAIL_DB_DRIVER" envDefault:"sqlite"`
	// Path is the SQLite database file, created if absent.
	Path string `env:"RETAIL_DB_PATH" envDefault:"retail.sqlite"`
	// URL is the PostgreSQL connection string.
	URL string `env:"RETAIL_DB_URL"`
}

// DefaultConfig returns the embedded SQLite target in the working directory.
func DefaultConfig() Config {
	return Config{Driver: string(schema.SQLite), Path: runtime.DefaultPath}
}

// LoadConfig reads the configuration from RETAIL_DB_* environment variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Dialect returns the dialect selected by Driver.
func (c Config) Dialect() (schema.Dialect, error) {
	return schema.ParseDialect(c.Driver)
}

// Runtime converts the configuration into runtime connection settings.
func (c Config) Runtime() (*runtime.Config, error) {
	dialect, err := c.Dialect()
	if err != nil {
		return nil, err
	}
	return &runtime.Config{Dialect: dialect, Path: c.Path, URL: c.URL}, nil
}

// Target describes the storage target for display, with any password
// redacted.
func (c Config) Target() string {
	dialect, err := c.Dialect()
	if err != nil {
		return c.Driver
	}
	if dialect == schema.SQLite {
		if c.Path == "" {
			return runtime.DefaultPath
		}
		return c.Path
	}
	u, err := url.Parse(c.URL)
	if err != nil || u.Host == "" {
		return string(dialect)
	}
	return u.Redacted()
}
