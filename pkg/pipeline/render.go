package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/orchestree/orchestree/pkg/observability"
	"github.com/orchestree/orchestree/pkg/render"
	"github.com/orchestree/orchestree/pkg/render/inline"
	"github.com/orchestree/orchestree/pkg/render/nodelink"
)

// Inline replaces icon placeholders in laid-out SVG with the icons' vector
// markup. Relative references resolve against the icon base directory.
func (r *Runner) Inline(ctx context.Context, svg []byte, opts Options) ([]byte, *inline.Report, error) {
	r.applyLogger(&opts)

	hooks := observability.Pipeline()
	hooks.OnInlineStart(ctx, len(svg))
	start := time.Now()

	inlineOpts := []inline.Option{inline.WithLogger(opts.Logger)}
	if r.Icons != nil {
		inlineOpts = append(inlineOpts, inline.WithBaseDir(r.Icons.BaseDir()))
	}

	out, report, err := inline.Inline(svg, inlineOpts...)
	if err != nil {
		hooks.OnInlineComplete(ctx, 0, 0, time.Since(start), err)
		return nil, nil, err
	}
	hooks.OnInlineComplete(ctx, report.Inlined, len(report.Skipped), time.Since(start), nil)
	return out, report, nil
}

// Render produces every requested format from the inlined SVG. The DOT
// format is the assembled graph text, before layout.
func (r *Runner) Render(ctx context.Context, svg []byte, g *nodelink.Graph, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	artifacts, err := renderFormats(ctx, svg, g, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, err
}

func renderFormats(ctx context.Context, svg []byte, g *nodelink.Graph, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case render.FormatSVG:
			data = svg
		case render.FormatDOT:
			data = []byte(g.DOT)
		case render.FormatPNG:
			data, err = render.ToPNG(ctx, svg, opts.Scale)
		case render.FormatPDF:
			data, err = render.ToPDF(ctx, svg)
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}
