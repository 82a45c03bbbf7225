package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/orchestree/orchestree/pkg/cache"
	"github.com/orchestree/orchestree/pkg/diagram"
	"github.com/orchestree/orchestree/pkg/icons"
	"github.com/orchestree/orchestree/pkg/observability"
	"github.com/orchestree/orchestree/pkg/render/nodelink"
)

// Cache key types reported to observability hooks.
const (
	keyTypeLayout   = "layout"
	keyTypeArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner holds no per-run state, so multiple goroutines can safely use
// the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Icons  *icons.Resolver // Nil leaves every leaf without an icon
	Engine nodelink.Engine
	Logger *log.Logger
}

// NewRunner creates a runner.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// If engine is nil, the Graphviz dot binary is used.
func NewRunner(c cache.Cache, keyer cache.Keyer, resolver *icons.Resolver, engine nodelink.Engine, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if engine == nil {
		engine = &nodelink.ExecEngine{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Icons:  resolver,
		Engine: engine,
		Logger: logger,
	}
}

// Execute runs the complete build → layout → inline → render pipeline.
//
// The description is always built, so invalid input fails even when its
// artifacts are cached. Artifacts are served from the cache only when every
// requested format is present.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{Artifacts: make(map[string][]byte, len(opts.Formats))}
	begin := time.Now()

	// Stage 1: Build
	start := begin
	d, fallbacks, err := r.Build(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Diagram = d
	result.Stats.BuildTime = time.Since(start)
	result.Stats.Fallbacks = fallbacks
	countTree(d, &result.Stats)

	keys := r.artifactKeys(opts)
	if !opts.Refresh {
		if artifacts, ok := r.cachedArtifacts(ctx, opts, keys); ok {
			result.Artifacts = artifacts
			result.CacheHit = true
			opts.Logger.Info("served from cache", "diagram", d.Name, "formats", opts.Formats)
			return result, nil
		}
	}

	// Stage 2: Layout
	start = time.Now()
	g, laidOut, err := r.Layout(ctx, d, opts)
	if err != nil {
		return nil, err
	}
	result.Graph = g
	result.Stats.LayoutTime = time.Since(start)
	result.Stats.Edges = g.Edges
	result.Stats.Dropped = g.Dropped

	// Stage 3: Inline
	start = time.Now()
	svg, report, err := r.Inline(ctx, laidOut, opts)
	if err != nil {
		return nil, err
	}
	result.Report = report
	result.Stats.InlineTime = time.Since(start)
	result.Stats.Inlined = report.Inlined
	result.Stats.Skipped = len(report.Skipped)

	// Stage 4: Render
	start = time.Now()
	artifacts, err := r.Render(ctx, svg, g, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(start)

	for format, data := range artifacts {
		r.store(ctx, keyTypeArtifact, keys[format], data, cache.TTLArtifact)
	}

	opts.Logger.Info("rendered diagram",
		"diagram", d.Name,
		"resources", result.Stats.Resources,
		"edges", result.Stats.Edges,
		"inlined", result.Stats.Inlined,
		"formats", opts.Formats,
		"duration", time.Since(begin))
	if result.Stats.Dropped > 0 {
		opts.Logger.Warn("relations dropped", "count", result.Stats.Dropped)
	}
	return result, nil
}

// Build parses the description and resolves icons. It returns how many
// leaves fell back to the default icon.
func (r *Runner) Build(ctx context.Context, opts Options) (*diagram.Diagram, int, error) {
	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, len(opts.Description))
	start := time.Now()

	d, err := diagram.Load(opts.Description)
	if err != nil {
		hooks.OnBuildComplete(ctx, 0, time.Since(start), err)
		return nil, 0, err
	}
	if opts.Name != "" {
		d.Name = opts.Name
	}

	fallbacks := 0
	if r.Icons != nil {
		fallbacks = r.Icons.Apply(d)
	}

	resources := 0
	d.Walk(func(*diagram.Node, int) bool { resources++; return true })
	hooks.OnBuildComplete(ctx, resources, time.Since(start), nil)
	return d, fallbacks, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) iconsDigest() string {
	if r.Icons == nil {
		return ""
	}
	return r.Icons.Digest()
}

func (r *Runner) artifactKeys(opts Options) map[string]string {
	sourceHash := cache.Hash(opts.Description)
	keys := make(map[string]string, len(opts.Formats))
	for _, format := range opts.Formats {
		keys[format] = r.Keyer.ArtifactKey(sourceHash,
			opts.ArtifactKeyOpts(format, r.Engine.Name(), r.iconsDigest()))
	}
	return keys
}

func (r *Runner) cachedArtifacts(ctx context.Context, opts Options, keys map[string]string) (map[string][]byte, bool) {
	artifacts := make(map[string][]byte, len(keys))
	for _, format := range opts.Formats {
		data, ok := r.lookup(ctx, keyTypeArtifact, keys[format])
		if !ok {
			return nil, false
		}
		artifacts[format] = data
	}
	return artifacts, true
}

// lookup reads a cache entry. Backend errors count as misses.
func (r *Runner) lookup(ctx context.Context, keyType, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Debug("cache read failed", "type", keyType, "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

func (r *Runner) store(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Debug("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func countTree(d *diagram.Diagram, s *Stats) {
	d.Walk(func(n *diagram.Node, _ int) bool {
		s.Resources++
		if n.IsLeaf() {
			s.Leaves++
		}
		return true
	})
	s.Relations = len(d.Relations)
}
