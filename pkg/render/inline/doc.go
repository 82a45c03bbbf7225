// Package inline turns a laid-out SVG whose icons are referenced by file
// path into a self-contained document.
//
// Layout engines place each icon as an <image> element pointing at an asset
// file. [Inline] replaces every such placeholder with a <g> element that
// holds the asset's own markup, translated to the placeholder's position
// and scaled from the asset's intrinsic size to the placeholder's size:
//
//	<image xlink:href="/icons/s3.svg" x="10" y="20" width="100" height="100"/>
//
// with a 25×50 asset becomes
//
//	<g transform="translate(10,20) scale(4,2)">…asset children…</g>
//
// Placeholders whose asset is missing, unreadable or has no determinable
// size are left untouched and listed in the [Report].
//
// Engine output is not always well-formed XML, so [Sanitize] runs first:
// it escapes stray '&' and '<', drops characters XML cannot carry, parses
// leniently and re-serializes. Asset references are never rewritten beyond
// '&' normalization, so sanitation cannot break the path lookup.
package inline
