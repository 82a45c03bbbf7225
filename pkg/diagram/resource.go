package diagram

import "strings"

// Kind classifies a resource node.
type Kind int

const (
	// KindLeaf is a drawable node with an icon.
	KindLeaf Kind = iota
	// KindGroup collects resources without drawing a boundary. Relations
	// that name a group fan out to every leaf beneath it.
	KindGroup
	// KindCluster is a visually bounded container.
	KindCluster
)

// String returns the description keyword for the kind.
func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "custom"
	case KindGroup:
		return "group"
	case KindCluster:
		return "cluster"
	default:
		return "unknown"
	}
}

// ParseKind maps a description "type" onto a Kind. Matching is
// case-insensitive; "leaf" and "node" are accepted for "custom".
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "custom", "leaf", "node":
		return KindLeaf, true
	case "group":
		return KindGroup, true
	case "cluster":
		return KindCluster, true
	default:
		return 0, false
	}
}

// Node is one resource in the composition tree.
type Node struct {
	ID       string  // Unique within a diagram
	Kind     Kind    // Leaf, group or cluster
	Label    string  // Display text
	Icon     string  // Raw icon identifier (leaves only)
	IconPath string  // Absolute asset path, set by an icon resolver
	Children []*Node // Ordered; always empty for leaves
}

// IsLeaf reports whether the node is drawable.
func (n *Node) IsLeaf() bool { return n.Kind == KindLeaf }

// Walk visits n and its descendants in depth-first pre-order. Returning
// false from fn skips the node's children.
func (n *Node) Walk(fn func(n *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int) bool, depth int) {
	if !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}

// Leaves returns the leaf descendants of n in pre-order, including n itself
// when it is a leaf.
func (n *Node) Leaves() []*Node {
	var out []*Node
	n.Walk(func(c *Node, _ int) bool {
		if c.IsLeaf() {
			out = append(out, c)
		}
		return true
	})
	return out
}
