package diagram

import "strings"

// Direction is the arrow orientation of a relation.
type Direction int

const (
	// Outgoing draws an arrow from From to To. It is the default.
	Outgoing Direction = iota
	// Incoming draws an arrow pointing back at From.
	Incoming
	// Bidirectional draws arrowheads at both ends.
	Bidirectional
	// Undirected draws a plain line.
	Undirected
)

// ParseDirection maps a description keyword onto a Direction. An empty
// string is Outgoing; unknown keywords are Undirected.
func ParseDirection(s string) Direction {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "outgoing":
		return Outgoing
	case "incoming":
		return Incoming
	case "bidirectional":
		return Bidirectional
	default:
		return Undirected
	}
}

func (d Direction) String() string {
	switch d {
	case Outgoing:
		return "outgoing"
	case Incoming:
		return "incoming"
	case Bidirectional:
		return "bidirectional"
	default:
		return "undirected"
	}
}

// Relation is a normalized edge between two resource ids. Top-level and
// inline relations share this shape.
type Relation struct {
	From      string
	To        string
	Direction Direction
	Label     string
	Color     string
	Style     string
}
