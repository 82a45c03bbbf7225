package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/orchestree/orchestree/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"ORCHESTREE_ENGINE", "ORCHESTREE_REDIS_ADDR", "ORCHESTREE_MONGO_URI"} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaultsWhenMissing(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadExplicitMissing(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load() error = %v, want %v", err, errors.ErrCodeFileNotFound)
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[icons]
descriptor = "icons/rules.yaml"
fallback = "/opt/icons/blank.svg"

[engine]
kind = "embedded"
timeout = "5s"

[cache]
backend = "none"

[server]
addr = ":9000"
store = "file"
store_dir = "data"
diagram_ttl = "1h"
`)
	dir := filepath.Dir(path)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"descriptor", cfg.Icons.Descriptor, filepath.Join(dir, "icons", "rules.yaml")},
		{"fallback", cfg.Icons.Fallback, "/opt/icons/blank.svg"},
		{"engine kind", cfg.Engine.Kind, "embedded"},
		{"engine timeout", cfg.Engine.Timeout, 5 * time.Second},
		{"engine path kept", cfg.Engine.Path, "dot"},
		{"cache backend", cfg.Cache.Backend, CacheNone},
		{"addr", cfg.Server.Addr, ":9000"},
		{"store dir", cfg.Server.StoreDir, filepath.Join(dir, "data")},
		{"diagram ttl", cfg.Server.DiagramTTL, time.Hour},
		{"path", cfg.Path, path},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, tt.got); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", tt.name, diff)
		}
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("ORCHESTREE_ENGINE", "EMBEDDED")
	t.Setenv("ORCHESTREE_REDIS_ADDR", "redis:6379")
	t.Setenv("ORCHESTREE_MONGO_URI", "mongodb://db:27017")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Engine.Kind != "embedded" {
		t.Errorf("Engine.Kind = %q, want embedded", cfg.Engine.Kind)
	}
	if cfg.Cache.Backend != CacheRedis || cfg.Cache.RedisAddr != "redis:6379" {
		t.Errorf("Cache = %+v, want redis at redis:6379", cfg.Cache)
	}
	if cfg.Server.Store != StoreMongo || cfg.Server.MongoURI != "mongodb://db:27017" {
		t.Errorf("Server = %+v, want mongo at mongodb://db:27017", cfg.Server)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"engine kind", func(c *Config) { c.Engine.Kind = "neato" }},
		{"cache backend", func(c *Config) { c.Cache.Backend = "memcached" }},
		{"store", func(c *Config) { c.Server.Store = "s3" }},
		{"negative ttl", func(c *Config) { c.Cache.TTL = -time.Second }},
		{"redis without addr", func(c *Config) { c.Cache.Backend = CacheRedis; c.Cache.RedisAddr = "" }},
		{"mongo without uri", func(c *Config) { c.Server.Store = StoreMongo; c.Server.MongoURI = "" }},
	}

	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("Validate() error = %v, want %v", err, errors.ErrCodeInvalidInput)
			}
		})
	}
}

func TestLoadMalformed(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "[engine\nkind = ")
	if _, err := Load(path); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Load() error = %v, want %v", err, errors.ErrCodeInvalidInput)
	}
}
