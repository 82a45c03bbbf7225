// Package pipeline provides the core diagram pipeline for Orchestree.
//
// This package implements the complete build → layout → inline → render
// pipeline used by both the CLI and the HTTP API. By centralizing this
// logic, both entry points share caching, defaults and error codes.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Build: parse the description into a resource tree and resolve icons
//  2. Layout: assemble DOT text and run it through the layout engine
//  3. Inline: replace icon placeholders in the engine's SVG with vector markup
//  4. Render: produce the requested formats (SVG, PNG, PDF, DOT)
//
// Each stage can be run on its own or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(c, nil, resolver, engine, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Description: data,
//	    Formats:     []string{"svg", "png"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	d, fallbacks, err := runner.Build(ctx, opts)
//	g, laidOut, err := runner.Layout(ctx, d, opts)
//	svg, report, err := runner.Inline(ctx, laidOut, opts)
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/orchestree/orchestree/pkg/cache"
	"github.com/orchestree/orchestree/pkg/diagram"
	"github.com/orchestree/orchestree/pkg/errors"
	"github.com/orchestree/orchestree/pkg/render"
	"github.com/orchestree/orchestree/pkg/render/inline"
	"github.com/orchestree/orchestree/pkg/render/nodelink"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultScale is the PNG scale factor.
	DefaultScale = 2.0

	// MaxDescriptionSize bounds the description size accepted by the pipeline.
	MaxDescriptionSize = 1 << 20
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	render.FormatSVG: true,
	render.FormatPNG: true,
	render.FormatPDF: true,
	render.FormatDOT: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
type Options struct {
	// Description is the YAML or JSON diagram description.
	Description []byte `json:"-"`

	// Name overrides the diagram name from the description.
	Name string `json:"name,omitempty"`

	Formats []string `json:"formats,omitempty"`
	Scale   float64  `json:"scale,omitempty"` // PNG only
	Refresh bool     `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Diagram is the built resource tree with icons resolved.
	Diagram *diagram.Diagram

	// Graph is the assembled DOT graph. Nil when all artifacts came from
	// the cache.
	Graph *nodelink.Graph

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Report describes inlined and skipped icons. Nil on a cache hit.
	Report *inline.Report

	// Stats contains counts and timings.
	Stats Stats

	// CacheHit is true when every artifact came from the cache.
	CacheHit bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Resources  int // Every node in the tree
	Leaves     int
	Relations  int
	Edges      int // After group fan-out
	Dropped    int // Relations with an unknown endpoint
	Fallbacks  int // Leaves using the fallback icon
	Inlined    int
	Skipped    int
	BuildTime  time.Duration
	LayoutTime time.Duration
	InlineTime time.Duration
	RenderTime time.Duration
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: svg, png, pdf, dot)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated format list such as "svg,png".
// Duplicates are dropped and order is kept.
func ParseFormats(s string) ([]string, error) {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || slices.Contains(out, f) {
			continue
		}
		if err := ValidateFormat(f); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// Calling it more than once has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Description) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "description is required")
	}
	if len(o.Description) > MaxDescriptionSize {
		return errors.New(errors.ErrCodeInvalidInput,
			"description too large (max %d bytes)", MaxDescriptionSize)
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForRender validates the output formats and sets render defaults.
// It does not require a description.
func (o *Options) ValidateForRender() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{render.FormatSVG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// ArtifactKeyOpts returns cache key options for one output format.
func (o *Options) ArtifactKeyOpts(format, engine, iconsDigest string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{
		Format:      format,
		Name:        o.Name,
		Engine:      engine,
		IconsDigest: iconsDigest,
	}
	if format == render.FormatPNG {
		opts.Scale = o.Scale
	}
	if format == render.FormatDOT {
		// DOT text does not depend on the engine.
		opts.Engine = ""
	}
	return opts
}
