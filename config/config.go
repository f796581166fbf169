// Package config loads the blog's TOML configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DevEnv = "dev"
	ProEnv = "pro"
)

// Config represents the whole configuration for the API server and the UI.
type Config struct {
	Env      string         `toml:"env"` // "dev" or "pro"
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Web      WebConfig      `toml:"web"`
	Log      LogConfig      `toml:"log"`
}

// ServerConfig configures the API server.
type ServerConfig struct {
	// Listen is the address to serve plain HTTP on. When empty, dev mode uses
	// :3000 and pro mode obtains certificates through ACME and serves TLS on :443.
	Listen       string   `toml:"listen"`
	AutocertHost string   `toml:"autocert_host,omitempty"`
	CertCache    string   `toml:"cert_cache,omitempty"`
	AllowOrigins []string `toml:"allow_origins,omitempty"`
}

// DatabaseConfig selects the post store.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type string `toml:"type"`          // "sqlite", "postgres" or "memory"
	URL  string `toml:"url,omitempty"` // sqlite DSN or postgres connection string
	Seed bool   `toml:"seed"`          // insert the welcome posts when the store is empty
}

// WebConfig configures the UI server.
type WebConfig struct {
	Listen string `toml:"listen"`
	APIURL string `toml:"api_url"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `toml:"level"`  // "debug", "info", "warn" or "error"
	Format string `toml:"format"` // "text" or "json"
}

// DefaultSQLiteURL is used when a sqlite database has no explicit url.
const DefaultSQLiteURL = "./blog.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// Default returns a configuration ready for local development.
func Default() *Config {
	return &Config{
		Env: DevEnv,
		Server: ServerConfig{
			CertCache: "/var/www/.cache",
		},
		Database: DatabaseConfig{
			Type: "sqlite",
			URL:  DefaultSQLiteURL,
		},
		Web: WebConfig{
			Listen: ":3030",
			APIURL: "http://localhost:3000",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from r on top of the defaults.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	cfg := Default()
	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Write encodes a Config to w.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// Load reads path if it exists, falls back to Default otherwise, then applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg, err := ReadFromFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg = Default()
	}

	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Init writes cfg to path. It refuses to overwrite an existing file.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from the environment. getenv is os.Getenv
// outside of tests.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("ENV"); v != "" {
		c.Env = v
	}
	if v := getenv("ADDRESS_LISTEN"); v != "" {
		c.Server.Listen = v
	}
	if v := getenv("WHITELIST_HOST"); v != "" {
		c.Server.AutocertHost = v
	}
	if v := getenv("DB_DRIVER"); v != "" {
		c.Database.Type = v
		if v != "sqlite" && c.Database.URL == DefaultSQLiteURL {
			c.Database.URL = ""
		}
	}
	if v := getenv("DB_URL"); v != "" {
		c.Database.URL = v
	}
	if v := getenv("API_URL"); v != "" {
		c.Web.APIURL = v
	}
	if v := getenv("ALLOW_ORIGINS"); v != "" {
		c.Server.AllowOrigins = strings.Split(v, ",")
	}
}

// Validate checks the tagged unions and enumerations.
func (c *Config) Validate() error {
	switch c.Env {
	case DevEnv, ProEnv:
	default:
		return fmt.Errorf("unknown env: %q", c.Env)
	}

	switch c.Database.Type {
	case "memory":
	case "sqlite":
		if c.Database.URL == "" {
			c.Database.URL = DefaultSQLiteURL
		}
	case "postgres":
		if c.Database.URL == "" {
			return errors.New("url required for postgres database")
		}
	default:
		return fmt.Errorf("unknown database type: %q", c.Database.Type)
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format: %q", c.Log.Format)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// CORSOrigins returns the origins allowed to call the API.
func (c *Config) CORSOrigins() []string {
	if len(c.Server.AllowOrigins) > 0 {
		return c.Server.AllowOrigins
	}
	if c.Env == DevEnv {
		return []string{"http://localhost:3030"}
	}
	return nil
}
