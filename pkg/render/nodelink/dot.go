package nodelink

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/orchestree/orchestree/pkg/diagram"
)

// Options configures diagram assembly.
type Options struct {
	// Logger receives duplicate-id warnings and dropped-relation details.
	// Nil discards them.
	Logger *log.Logger
}

// Graph is the result of [Assemble].
type Graph struct {
	DOT        string
	Nodes      int // Leaf nodes emitted
	Clusters   int // Cluster subgraphs emitted
	Edges      int // Edges emitted after group fan-out
	Dropped    int // Relations with an unregistered endpoint
	Duplicates int // Resource ids defined more than once
}

// namespace seeds the name-based UUIDs used as DOT identifiers.
var namespace = uuid.MustParse("8c1f6a0e-5b0d-4f0c-9d7e-2a3b4c5d6e7f")

// Assemble converts a diagram into DOT text. Icon paths are taken from
// [diagram.Node.IconPath], so icons should be resolved first.
func Assemble(d *diagram.Diagram, opts Options) (*Graph, error) {
	if d == nil {
		return nil, fmt.Errorf("assemble: nil diagram")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	a := &assembly{
		diagram: d,
		logger:  logger,
		table:   make(map[string][]string),
		graph:   &Graph{},
	}
	a.header()
	for _, n := range d.Resources {
		a.resource(n)
	}
	a.relations()
	a.buf.WriteString("}\n")

	a.graph.DOT = a.buf.String()
	return a.graph, nil
}

// assembly holds the state of one Assemble call.
type assembly struct {
	diagram *diagram.Diagram
	logger  *log.Logger
	buf     bytes.Buffer
	graph   *Graph

	// table maps resource ids to the DOT nodes they stand for: one entry
	// for a leaf, every member leaf for a group.
	table map[string][]string

	// emitted lists DOT node ids in emission order. A group's members are
	// the slice emitted while its children were visited.
	emitted []string

	// scopes is the stack of open cluster subgraphs.
	scopes []string

	seq int
}

func (a *assembly) header() {
	d := a.diagram
	fmt.Fprintf(&a.buf, "digraph %s {\n", quote(graphName(d)))

	g := graphDefaults.set("rankdir", d.Rankdir())
	if d.Name != "" {
		g = g.set("label", d.Name)
	}
	g = g.merge(d.Style.Graph)
	fmt.Fprintf(&a.buf, "  graph [%s];\n", g)
	fmt.Fprintf(&a.buf, "  node [%s];\n", nodeDefaults.merge(d.Style.Node))
	fmt.Fprintf(&a.buf, "  edge [%s];\n", edgeDefaults.merge(d.Style.Edge))
	a.buf.WriteString("\n")
}

func graphName(d *diagram.Diagram) string {
	if d.Name == "" {
		return "G"
	}
	return d.Name
}

func (a *assembly) indent() string {
	return strings.Repeat("  ", len(a.scopes)+1)
}

// nodeID derives a stable DOT identifier for the seq-th emitted resource.
func (a *assembly) nodeID(prefix, id string) string {
	a.seq++
	u := uuid.NewSHA1(namespace, []byte(strconv.Itoa(a.seq)+"\x00"+id))
	return prefix + strings.ReplaceAll(u.String(), "-", "")
}

func (a *assembly) register(id string, members []string) {
	if _, dup := a.table[id]; dup {
		a.graph.Duplicates++
		a.logger.Warn("duplicate resource id, later definition wins", "id", id)
	}
	a.table[id] = members
}

func (a *assembly) resource(n *diagram.Node) {
	switch n.Kind {
	case diagram.KindLeaf:
		a.leaf(n)
	case diagram.KindGroup:
		a.group(n)
	case diagram.KindCluster:
		a.cluster(n)
	default:
		panic(fmt.Sprintf("nodelink: unhandled resource kind %d", n.Kind))
	}
}

func (a *assembly) leaf(n *diagram.Node) {
	id := a.nodeID("n", n.ID)
	attrs := leafDefaults.set("label", n.Label)
	if n.IconPath != "" {
		attrs = attrs.set("image", filepath.ToSlash(n.IconPath))
	}
	fmt.Fprintf(&a.buf, "%s%s [%s];\n", a.indent(), quote(id), attrs)

	a.emitted = append(a.emitted, id)
	a.register(n.ID, []string{id})
	a.graph.Nodes++
}

func (a *assembly) group(n *diagram.Node) {
	start := len(a.emitted)
	for _, c := range n.Children {
		a.resource(c)
	}
	members := make([]string, len(a.emitted)-start)
	copy(members, a.emitted[start:])
	a.register(n.ID, members)
}

func (a *assembly) cluster(n *diagram.Node) {
	a.open(n)
	for _, c := range n.Children {
		a.resource(c)
	}
	a.close()
}

func (a *assembly) open(n *diagram.Node) {
	depth := len(a.scopes)
	id := a.nodeID("cluster_", n.ID)

	label := n.Label
	if label == "" {
		label = n.ID
	}
	attrs := clusterDefaults.
		set("label", label).
		set("bgcolor", clusterColors[depth%len(clusterColors)])

	ind := a.indent()
	fmt.Fprintf(&a.buf, "%ssubgraph %s {\n", ind, quote(id))
	fmt.Fprintf(&a.buf, "%s  graph [%s];\n", ind, attrs)
	a.scopes = append(a.scopes, id)
	a.graph.Clusters++
}

func (a *assembly) close() {
	a.scopes = a.scopes[:len(a.scopes)-1]
	fmt.Fprintf(&a.buf, "%s}\n", a.indent())
}

func (a *assembly) relations() {
	if len(a.diagram.Relations) > 0 {
		a.buf.WriteString("\n")
	}
	for _, r := range a.diagram.Relations {
		from, okFrom := a.table[r.From]
		to, okTo := a.table[r.To]
		if !okFrom || !okTo {
			a.graph.Dropped++
			a.logger.Debug("dropping relation with unknown endpoint", "from", r.From, "to", r.To)
			continue
		}

		attrs := edgeAttrs(r)
		for _, f := range from {
			for _, t := range to {
				fmt.Fprintf(&a.buf, "  %s -> %s [%s];\n", quote(f), quote(t), attrs)
				a.graph.Edges++
			}
		}
	}
}

func edgeAttrs(r diagram.Relation) attrList {
	var attrs attrList
	switch r.Direction {
	case diagram.Outgoing:
		attrs = attrs.set("dir", "forward")
	case diagram.Incoming:
		attrs = attrs.set("dir", "back")
	case diagram.Bidirectional:
		attrs = attrs.set("dir", "both")
	case diagram.Undirected:
		attrs = attrs.set("dir", "none")
	}
	if r.Label != "" {
		attrs = attrs.set("label", r.Label)
	}
	if r.Color != "" {
		attrs = attrs.set("color", r.Color)
	}
	if r.Style != "" {
		attrs = attrs.set("style", r.Style)
	}
	return attrs
}
