package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks reports pipeline and HTTP events to a logger at debug level.
// It is what the CLI registers under -v.
type LogHooks struct {
	NoopCacheHooks
	Logger *log.Logger
}

func (h LogHooks) OnBuildStart(_ context.Context, size int) {
	h.Logger.Debug("build started", "bytes", size)
}

func (h LogHooks) OnBuildComplete(_ context.Context, resources int, d time.Duration, err error) {
	h.Logger.Debug("build finished", "resources", resources, "duration", d, "err", err)
}

func (h LogHooks) OnLayoutStart(_ context.Context, engine string, edges int) {
	h.Logger.Debug("layout started", "engine", engine, "edges", edges)
}

func (h LogHooks) OnLayoutComplete(_ context.Context, engine string, d time.Duration, err error) {
	h.Logger.Debug("layout finished", "engine", engine, "duration", d, "err", err)
}

func (h LogHooks) OnInlineStart(_ context.Context, size int) {
	h.Logger.Debug("inline started", "bytes", size)
}

func (h LogHooks) OnInlineComplete(_ context.Context, inlined, skipped int, d time.Duration, err error) {
	h.Logger.Debug("inline finished", "inlined", inlined, "skipped", skipped, "duration", d, "err", err)
}

func (h LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.Logger.Debug("render started", "formats", formats)
}

func (h LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.Logger.Debug("render finished", "formats", formats, "duration", d, "err", err)
}

func (h LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h LogHooks) OnRequest(_ context.Context, method, path string) {}

func (h LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.Logger.Debug("request", "method", method, "path", path, "status", status, "duration", d)
}

func (h LogHooks) OnError(_ context.Context, method, path string, err error) {
	h.Logger.Debug("request failed", "method", method, "path", path, "err", err)
}

var (
	_ PipelineHooks = LogHooks{}
	_ CacheHooks    = LogHooks{}
	_ HTTPHooks     = LogHooks{}
)
