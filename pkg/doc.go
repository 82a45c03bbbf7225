// Package pkg provides the core libraries for Orchestree architecture diagrams.
//
// # Overview
//
// Orchestree turns a declarative description of cloud resources into a
// node-link diagram whose icons are embedded as vector markup. The pkg
// directory is organized into these areas:
//
//  1. [diagram] - Description parsing and the resource tree
//  2. [icons] - Icon identifier to asset resolution
//  3. [render] - DOT assembly, layout, icon inlining and format conversion
//  4. [pipeline] - Orchestration (build → layout → inline → render)
//  5. [cache], [store] - Layout/artifact caching and stored diagrams
//
// # Architecture
//
// The data flow through Orchestree:
//
//	YAML/JSON description
//	         ↓
//	    [diagram] package (resource tree + relations)
//	         ↓
//	    [icons] package (asset paths on every leaf)
//	         ↓
//	    [render/nodelink] package (DOT text, layout engine → SVG)
//	         ↓
//	    [render/inline] package (<image> placeholders → vector groups)
//	         ↓
//	    SVG/PNG/PDF/DOT output
//
// # Quick Start
//
//	runner := pipeline.NewRunner(nil, nil, resolver, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Description: data,
//	    Formats:     []string{"svg", "png"},
//	})
//	svg := result.Artifacts["svg"]
//
// # Supporting Packages
//
// [config] loads the TOML configuration, [errors] defines the coded errors
// shared by the CLI and HTTP API, [observability] exposes stage hooks, and
// [buildinfo] carries version information set at link time.
//
// [diagram]: github.com/orchestree/orchestree/pkg/diagram
// [icons]: github.com/orchestree/orchestree/pkg/icons
// [render]: github.com/orchestree/orchestree/pkg/render
// [render/nodelink]: github.com/orchestree/orchestree/pkg/render/nodelink
// [render/inline]: github.com/orchestree/orchestree/pkg/render/inline
// [pipeline]: github.com/orchestree/orchestree/pkg/pipeline
// [cache]: github.com/orchestree/orchestree/pkg/cache
// [store]: github.com/orchestree/orchestree/pkg/store
// [config]: github.com/orchestree/orchestree/pkg/config
// [errors]: github.com/orchestree/orchestree/pkg/errors
// [observability]: github.com/orchestree/orchestree/pkg/observability
// [buildinfo]: github.com/orchestree/orchestree/pkg/buildinfo
package pkg
