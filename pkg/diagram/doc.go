// Package diagram turns a declarative architecture description into a
// composition tree of resources plus a flat list of relations.
//
// # Overview
//
// A description is a YAML (or JSON) document with a single "diagram" root.
// Resources nest through their "of" list; any entry carrying a "relates" key
// is not a resource but a relation declared inline, next to the resources it
// talks about:
//
//	diagram:
//	  name: Events
//	  direction: left-to-right
//	  resources:
//	    - id: vpc
//	      name: VPC
//	      type: cluster
//	      of:
//	        - {id: api, name: API, type: custom, icon: aws-api-gateway}
//	        - relates: {from: api, to: db, description: writes}
//
// [Build] walks the resources depth-first. Inline relations are removed from
// their parent's child list and appended to [Diagram.Relations] in the order
// they are met; relations listed under "diagram.relates" (or the document's
// root "relates" when the former is absent) follow afterwards. The resulting
// tree never contains relation entries at any depth.
//
// # Resource Kinds
//
// Every resource is exactly one [Kind]:
//
//   - [KindLeaf]: a drawable node with an icon ("custom" in descriptions)
//   - [KindGroup]: a logical set of resources drawn without a boundary
//   - [KindCluster]: a visually bounded container
//
// Any other "type" aborts the build with UNSUPPORTED_RESOURCE_KIND naming
// the offending resource.
//
// # Lifecycle
//
// Diagrams are built per request and owned by the caller. Nothing in this
// package keeps state between calls, so concurrent builds are independent.
package diagram
