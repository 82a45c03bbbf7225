// Package cli implements the orchestree command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/orchestree/orchestree/pkg/buildinfo"
	"github.com/orchestree/orchestree/pkg/cache"
	"github.com/orchestree/orchestree/pkg/config"
	"github.com/orchestree/orchestree/pkg/icons"
	"github.com/orchestree/orchestree/pkg/observability"
	"github.com/orchestree/orchestree/pkg/pipeline"
	"github.com/orchestree/orchestree/pkg/render/nodelink"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "orchestree"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath is set by the --config flag. Empty searches the default
	// locations.
	ConfigPath string

	cfg *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. At debug level the pipeline,
// cache and HTTP hooks log through the CLI logger as well.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		hooks := observability.LogHooks{Logger: c.Logger}
		observability.SetPipelineHooks(hooks)
		observability.SetCacheHooks(hooks)
		observability.SetHTTPHooks(hooks)
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Orchestree draws cloud architecture diagrams from YAML",
		Long: `Orchestree turns a YAML or JSON description of cloud resources, groups,
clusters and relations into an architecture diagram with embedded vector icons.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default $XDG_CONFIG_HOME/orchestree/config.toml)")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.dotCommand())
	root.AddCommand(c.inlineCommand())
	root.AddCommand(c.iconsCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// config loads the configuration once per process.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		return nil, err
	}
	if cfg.Path != "" {
		c.Logger.Debug("loaded config", "path", cfg.Path)
	}
	c.cfg = cfg
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// runnerOpts are per-command overrides of the configuration.
type runnerOpts struct {
	noCache bool
	engine  string // overrides engine.kind when set
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, opts runnerOpts) (*pipeline.Runner, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}

	resolver, err := newResolver(cfg)
	if err != nil {
		return nil, err
	}

	engine, err := newEngine(cfg, opts.engine)
	if err != nil {
		return nil, err
	}

	backend := cfg.Cache.Backend
	if opts.noCache {
		backend = config.CacheNone
	}
	cc, err := newCache(ctx, cfg, backend)
	if err != nil {
		return nil, err
	}

	return pipeline.NewRunner(cc, nil, resolver, engine, c.Logger), nil
}

func newResolver(cfg *config.Config) (*icons.Resolver, error) {
	return icons.NewResolver(icons.Config{
		Descriptor: cfg.Icons.Descriptor,
		Fallback:   cfg.Icons.Fallback,
		BaseDir:    cfg.Icons.BaseDir,
	})
}

func newEngine(cfg *config.Config, kind string) (nodelink.Engine, error) {
	if kind == "" {
		kind = cfg.Engine.Kind
	}
	return nodelink.NewEngine(kind, nodelink.EngineOptions{
		Path:    cfg.Engine.Path,
		Args:    cfg.Engine.Args,
		Timeout: cfg.Engine.Timeout,
	})
}

func newCache(ctx context.Context, cfg *config.Config, backend string) (cache.Cache, error) {
	switch backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cache.RedisConfig{Addr: cfg.Cache.RedisAddr})
	default:
		dir, err := cacheDirFor(cfg)
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDirFor returns the configured cache directory, falling back to the
// XDG default.
func cacheDirFor(cfg *config.Config) (string, error) {
	if cfg != nil && cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	return cacheDir()
}

// cacheDir returns the cache directory using XDG standard (~/.cache/orchestree/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// readInput reads a description file, or stdin for "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
