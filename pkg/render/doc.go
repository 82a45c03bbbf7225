// Package render holds the output stages of the diagram pipeline.
//
// # Overview
//
//   - Graph assembly and layout (in [nodelink] subpackage)
//   - Icon inlining (in [inline] subpackage)
//   - Format conversion (SVG to PDF/PNG), in this package
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert an inlined SVG to other formats
// using the external rsvg-convert tool (from librsvg):
//
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// [nodelink]: github.com/orchestree/orchestree/pkg/render/nodelink
// [inline]: github.com/orchestree/orchestree/pkg/render/inline
package render
