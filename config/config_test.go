package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gotest.tools/v3/assert"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := Default()
	original.Env = ProEnv
	original.Server.AllowOrigins = []string{"https://blog.example.com"}
	original.Server.AutocertHost = "blog.example.com"
	original.Database = DatabaseConfig{Type: "postgres", URL: "postgres://blog@localhost/blog", Seed: true}
	original.Log = LogConfig{Level: "debug", Format: "json"}

	var buf bytes.Buffer
	m := &Manager{}
	assert.NilError(t, m.Write(&buf, original))

	got, err := m.Read(&buf)
	assert.NilError(t, err)
	assert.DeepEqual(t, got, original)
}

func TestManager_Read_FillsDefaults(t *testing.T) {
	m := &Manager{}
	cfg, err := m.Read(strings.NewReader("[database]\ntype = \"memory\"\n"))
	assert.NilError(t, err)

	assert.Equal(t, cfg.Database.Type, "memory")
	assert.Equal(t, cfg.Server.Listen, "")
	assert.Equal(t, cfg.Web.APIURL, "http://localhost:3000")
	assert.Equal(t, cfg.Env, DevEnv)
}

func TestManager_Read_InvalidTOML(t *testing.T) {
	m := &Manager{}
	_, err := m.Read(strings.NewReader("env = "))
	assert.ErrorContains(t, err, "failed to decode config")
}

func TestInit(t *testing.T) {
	t.Run("writes a readable file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "blog.toml")
		assert.NilError(t, Init(path, Default()))

		cfg, err := ReadFromFile(path)
		assert.NilError(t, err)
		assert.DeepEqual(t, cfg, Default())
	})

	t.Run("refuses to overwrite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "blog.toml")
		assert.NilError(t, os.WriteFile(path, []byte("env = \"dev\"\n"), 0644))

		assert.ErrorContains(t, Init(path, Default()), "already exists")
	})
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	for _, k := range []string{"ENV", "ADDRESS_LISTEN", "WHITELIST_HOST", "DB_DRIVER", "DB_URL", "API_URL", "ALLOW_ORIGINS"} {
		t.Setenv(k, "")
	}

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.NilError(t, err)
	assert.Equal(t, cfg.Database.Type, "sqlite")
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"ENV":            ProEnv,
		"ADDRESS_LISTEN": ":8080",
		"WHITELIST_HOST": "blog.example.com",
		"DB_DRIVER":      "postgres",
		"DB_URL":         "postgres://localhost/blog",
		"API_URL":        "http://api:3000",
		"ALLOW_ORIGINS":  "https://a.example.com,https://b.example.com",
	}
	cfg := Default()
	cfg.ApplyEnv(func(k string) string { return env[k] })

	assert.Equal(t, cfg.Env, ProEnv)
	assert.Equal(t, cfg.Server.Listen, ":8080")
	assert.Equal(t, cfg.Server.AutocertHost, "blog.example.com")
	assert.Equal(t, cfg.Database.Type, "postgres")
	assert.Equal(t, cfg.Database.URL, "postgres://localhost/blog")
	assert.Equal(t, cfg.Web.APIURL, "http://api:3000")
	assert.DeepEqual(t, cfg.Server.AllowOrigins, []string{"https://a.example.com", "https://b.example.com"})
	assert.NilError(t, cfg.Validate())
}

func TestApplyEnv_DriverSwitchDropsSQLiteURL(t *testing.T) {
	cfg := Default()
	cfg.ApplyEnv(func(k string) string {
		if k == "DB_DRIVER" {
			return "memory"
		}
		return ""
	})
	assert.Equal(t, cfg.Database.URL, "")
	assert.NilError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"unknown env", func(c *Config) { c.Env = "staging" }, "unknown env"},
		{"unknown database", func(c *Config) { c.Database.Type = "oracle" }, "unknown database type"},
		{"postgres without url", func(c *Config) { c.Database = DatabaseConfig{Type: "postgres"} }, "url required"},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }, "unknown log format"},
		{"unknown log level", func(c *Config) { c.Log.Level = "loud" }, "unknown log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}

	t.Run("sqlite without url gets the default", func(t *testing.T) {
		cfg := Default()
		cfg.Database.URL = ""
		assert.NilError(t, cfg.Validate())
		assert.Equal(t, cfg.Database.URL, DefaultSQLiteURL)
	})
}

func TestCORSOrigins(t *testing.T) {
	cfg := Default()
	assert.DeepEqual(t, cfg.CORSOrigins(), []string{"http://localhost:3030"})

	cfg.Env = ProEnv
	assert.Assert(t, cfg.CORSOrigins() == nil)

	cfg.Server.AllowOrigins = []string{"https://blog.example.com"}
	assert.DeepEqual(t, cfg.CORSOrigins(), []string{"https://blog.example.com"})
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, LogConfig{Level: "warn", Format: "json"})
	assert.NilError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "post_id", "abc")

	out := buf.String()
	assert.Assert(t, !strings.Contains(out, "hidden"))
	assert.Assert(t, strings.Contains(out, `"post_id":"abc"`))
}
