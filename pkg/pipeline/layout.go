package pipeline

import (
	"context"
	"time"

	"github.com/orchestree/orchestree/pkg/cache"
	"github.com/orchestree/orchestree/pkg/diagram"
	"github.com/orchestree/orchestree/pkg/observability"
	"github.com/orchestree/orchestree/pkg/render/nodelink"
)

// Layout assembles the diagram into DOT text and runs the layout engine.
// Engine output is cached by DOT hash and engine name, so unchanged
// diagrams skip the engine even when other inputs (such as the requested
// formats) differ.
func (r *Runner) Layout(ctx context.Context, d *diagram.Diagram, opts Options) (*nodelink.Graph, []byte, error) {
	r.applyLogger(&opts)

	g, err := nodelink.Assemble(d, nodelink.Options{Logger: opts.Logger})
	if err != nil {
		return nil, nil, err
	}

	svg, err := r.LayoutDOT(ctx, g.DOT, g.Edges, opts)
	if err != nil {
		return nil, nil, err
	}
	return g, svg, nil
}

// LayoutDOT runs already assembled DOT text through the engine, with
// caching.
func (r *Runner) LayoutDOT(ctx context.Context, dot string, edges int, opts Options) ([]byte, error) {
	engine := r.Engine.Name()
	key := r.Keyer.LayoutKey(cache.Hash([]byte(dot)), cache.LayoutKeyOpts{Engine: engine})

	if !opts.Refresh {
		if data, ok := r.lookup(ctx, keyTypeLayout, key); ok {
			return data, nil
		}
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, engine, edges)
	start := time.Now()

	svg, err := r.Engine.Render(ctx, dot)
	hooks.OnLayoutComplete(ctx, engine, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	r.store(ctx, keyTypeLayout, key, svg, cache.TTLLayout)
	return svg, nil
}
