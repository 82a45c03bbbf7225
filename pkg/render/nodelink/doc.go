// Package nodelink assembles architecture diagrams into Graphviz DOT and
// hands them to a layout engine.
//
// # Overview
//
// [Assemble] walks a resolved [diagram.Diagram] and produces DOT text:
//
//   - Leaves become nodes whose image attribute points at their icon asset.
//   - Clusters become "cluster_" subgraphs. Nested clusters alternate
//     background colours by depth.
//   - Groups draw nothing. Relations naming a group fan out to every leaf
//     beneath it, including leaves inside nested clusters, so a relation
//     between a two-leaf group and a three-leaf group yields six edges.
//
// Relations whose endpoints name no registered resource are dropped without
// error; [Graph.Dropped] counts them. Cluster ids are never registered, so
// relations cannot target a cluster boundary.
//
// All assembly state lives in a per-call value. DOT node names are derived
// deterministically from resource ids, so the same diagram always yields
// the same DOT text.
//
// # Layout Engines
//
// An [Engine] turns DOT into a laid-out SVG document. [ExecEngine] runs the
// Graphviz "dot" binary as a subprocess with a timeout and surfaces its
// stderr on failure; [EmbeddedEngine] runs Graphviz in-process through
// [github.com/goccy/go-graphviz] for hosts without Graphviz installed.
// Both report failures as LAYOUT_ENGINE_FAILURE.
//
// The engine reads icon assets from disk while sizing image nodes, so the
// paths written into the DOT text are absolute.
package nodelink
