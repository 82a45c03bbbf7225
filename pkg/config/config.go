// Package config loads orchestree's TOML configuration.
//
// The file is optional; every field has a default. Lookup order for the
// file is an explicit path, then $XDG_CONFIG_HOME/orchestree/config.toml,
// then ~/.config/orchestree/config.toml. A few settings can be overridden
// from the environment, which wins over the file:
//
//	ORCHESTREE_ENGINE      engine.kind
//	ORCHESTREE_REDIS_ADDR  cache.redis_addr (and selects the redis backend)
//	ORCHESTREE_MONGO_URI   server.mongo_uri (and selects the mongo store)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/orchestree/orchestree/pkg/errors"
)

const appName = "orchestree"

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Diagram store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreMongo  = "mongo"
)

// Config is the full configuration.
type Config struct {
	Icons  Icons  `toml:"icons"`
	Engine Engine `toml:"engine"`
	Cache  Cache  `toml:"cache"`
	Server Server `toml:"server"`

	// Path is the file the configuration was read from, if any.
	Path string `toml:"-"`
}

// Icons locates the icon descriptor and assets. Relative paths are
// relative to the configuration file's directory.
type Icons struct {
	Descriptor string `toml:"descriptor"`
	Fallback   string `toml:"fallback"`
	BaseDir    string `toml:"base_dir"`
}

// Engine selects the layout engine.
type Engine struct {
	Kind    string        `toml:"kind"` // exec | embedded
	Path    string        `toml:"path"`
	Args    []string      `toml:"args"`
	Timeout time.Duration `toml:"timeout"`
}

// Cache configures the artifact cache.
type Cache struct {
	Backend   string        `toml:"backend"` // file | redis | none
	Dir       string        `toml:"dir"`
	RedisAddr string        `toml:"redis_addr"`
	TTL       time.Duration `toml:"ttl"`
}

// Server configures `orchestree serve`.
type Server struct {
	Addr          string        `toml:"addr"`
	Store         string        `toml:"store"` // memory | file | mongo
	StoreDir      string        `toml:"store_dir"`
	MongoURI      string        `toml:"mongo_uri"`
	MongoDatabase string        `toml:"mongo_database"`
	DiagramTTL    time.Duration `toml:"diagram_ttl"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Icons: Icons{
			Descriptor: filepath.Join("icons", "icon_descriptor.json"),
			Fallback:   filepath.Join("icons", "blank-cloud.svg"),
		},
		Engine: Engine{
			Kind:    "exec",
			Path:    "dot",
			Args:    []string{"-Tsvg"},
			Timeout: 60 * time.Second,
		},
		Cache: Cache{
			Backend:   CacheFile,
			RedisAddr: "localhost:6379",
			TTL:       24 * time.Hour,
		},
		Server: Server{
			Addr:          ":8080",
			Store:         StoreMemory,
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: appName,
			DiagramTTL:    24 * time.Hour,
		},
	}
}

// Load reads the configuration. An empty path searches the default
// locations; a missing default file yields the defaults, but a missing
// explicit path is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
			}
			cfg.Path = path
			cfg.resolvePaths(filepath.Dir(path))
		case os.IsNotExist(err) && !explicit:
		case os.IsNotExist(err):
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s not found", path)
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultPath returns the default configuration file location.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// resolvePaths anchors relative file settings at dir.
func (c *Config) resolvePaths(dir string) {
	for _, p := range []*string{&c.Icons.Descriptor, &c.Icons.Fallback, &c.Icons.BaseDir, &c.Cache.Dir, &c.Server.StoreDir} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("ORCHESTREE_ENGINE"); v != "" {
		c.Engine.Kind = v
	}
	if v := os.Getenv("ORCHESTREE_REDIS_ADDR"); v != "" {
		c.Cache.RedisAddr = v
		c.Cache.Backend = CacheRedis
	}
	if v := os.Getenv("ORCHESTREE_MONGO_URI"); v != "" {
		c.Server.MongoURI = v
		c.Server.Store = StoreMongo
	}
}

// Validate checks enumerated settings and durations.
func (c *Config) Validate() error {
	c.Engine.Kind = strings.ToLower(c.Engine.Kind)
	switch c.Engine.Kind {
	case "exec", "embedded":
	default:
		return errors.New(errors.ErrCodeInvalidInput, "engine.kind must be exec or embedded, got %q", c.Engine.Kind)
	}
	switch c.Cache.Backend {
	case CacheFile, CacheRedis, CacheNone:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "cache.backend must be file, redis or none, got %q", c.Cache.Backend)
	}
	switch c.Server.Store {
	case StoreMemory, StoreFile, StoreMongo:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "server.store must be memory, file or mongo, got %q", c.Server.Store)
	}
	if c.Engine.Timeout < 0 || c.Cache.TTL < 0 || c.Server.DiagramTTL < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "durations must not be negative")
	}
	if c.Cache.Backend == CacheRedis && c.Cache.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidInput, "cache.redis_addr is required for the redis backend")
	}
	if c.Server.Store == StoreMongo && c.Server.MongoURI == "" {
		return errors.New(errors.ErrCodeInvalidInput, "server.mongo_uri is required for the mongo store")
	}
	return nil
}
