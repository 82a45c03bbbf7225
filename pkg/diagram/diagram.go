package diagram

import "strings"

// Diagram is a built description: the resource tree without any relation
// entries plus every relation in extraction order.
type Diagram struct {
	Name      string
	Direction string // Raw keyword, see Rankdir
	Style     StyleSpec
	Resources []*Node
	Relations []Relation
}

// Rankdir returns the layout-engine rank direction for the diagram.
// Unknown or empty directions lay out left to right.
func (d *Diagram) Rankdir() string {
	switch strings.ToLower(strings.TrimSpace(d.Direction)) {
	case "right-to-left":
		return "RL"
	case "top-to-bottom":
		return "TB"
	case "bottom-to-top":
		return "BT"
	default:
		return "LR"
	}
}

// Walk visits every resource depth-first in source order.
func (d *Diagram) Walk(fn func(n *Node, depth int) bool) {
	for _, r := range d.Resources {
		r.Walk(fn)
	}
}

// Leaves returns every leaf in source order.
func (d *Diagram) Leaves() []*Node {
	var out []*Node
	for _, r := range d.Resources {
		out = append(out, r.Leaves()...)
	}
	return out
}

// Count returns the number of resources of each kind.
func (d *Diagram) Count() map[Kind]int {
	counts := make(map[Kind]int, 3)
	d.Walk(func(n *Node, _ int) bool {
		counts[n.Kind]++
		return true
	})
	return counts
}

// Find returns the first resource with the given id.
func (d *Diagram) Find(id string) *Node {
	var found *Node
	d.Walk(func(n *Node, _ int) bool {
		if found != nil {
			return false
		}
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}
