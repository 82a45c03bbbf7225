package nodelink

import (
	"regexp"
	"strings"
	"testing"

	"github.com/orchestree/orchestree/pkg/diagram"
)

func leaf(id, icon string) *diagram.Node {
	return &diagram.Node{ID: id, Kind: diagram.KindLeaf, Label: strings.ToUpper(id), IconPath: icon}
}

func group(id string, children ...*diagram.Node) *diagram.Node {
	return &diagram.Node{ID: id, Kind: diagram.KindGroup, Children: children}
}

func cluster(id string, children ...*diagram.Node) *diagram.Node {
	return &diagram.Node{ID: id, Kind: diagram.KindCluster, Label: id, Children: children}
}

var edgeRe = regexp.MustCompile(`(?m)^  "(n[0-9a-f]+)" -> "(n[0-9a-f]+)" \[(.*)\];$`)

func edges(dot string) [][]string {
	return edgeRe.FindAllStringSubmatch(dot, -1)
}

func TestAssemble_GroupFanOut(t *testing.T) {
	d := &diagram.Diagram{
		Resources: []*diagram.Node{
			group("g1", leaf("a", "/i/a.svg"), leaf("b", "/i/b.svg")),
			group("g2", leaf("c", ""), leaf("d", ""), leaf("e", "")),
		},
		Relations: []diagram.Relation{{From: "g1", To: "g2"}},
	}

	g, err := Assemble(d, Options{})
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if g.Edges != 6 {
		t.Errorf("Edges = %d, want 6", g.Edges)
	}
	if got := len(edges(g.DOT)); got != 6 {
		t.Errorf("DOT has %d edges, want 6:\n%s", got, g.DOT)
	}
	if strings.Contains(g.DOT, "subgraph") {
		t.Error("groups must not produce subgraphs")
	}
}

func TestAssemble_LeafToGroup(t *testing.T) {
	d := &diagram.Diagram{
		Resources: []*diagram.Node{
			leaf("x", ""),
			group("g", leaf("a", ""), leaf("b", ""), leaf("c", "")),
		},
		Relations: []diagram.Relation{{From: "x", To: "g"}},
	}

	g, _ := Assemble(d, Options{})
	if g.Edges != 3 {
		t.Errorf("Edges = %d, want 3", g.Edges)
	}
	sources := map[string]bool{}
	for _, e := range edges(g.DOT) {
		sources[e[1]] = true
	}
	if len(sources) != 1 {
		t.Errorf("edges start at %d nodes, want 1", len(sources))
	}
}

func TestAssemble_GroupSelfRelation(t *testing.T) {
	d := &diagram.Diagram{
		Resources: []*diagram.Node{group("g", leaf("a", ""), leaf("b", ""))},
		Relations: []diagram.Relation{{From: "g", To: "g"}},
	}

	g, _ := Assemble(d, Options{})
	if g.Edges != 4 {
		t.Errorf("Edges = %d, want 4 (including self-edges)", g.Edges)
	}
	self := 0
	for _, e := range edges(g.DOT) {
		if e[1] == e[2] {
			self++
		}
	}
	if self != 2 {
		t.Errorf("self edges = %d, want 2", self)
	}
}

func TestAssemble_GroupThroughCluster(t *testing.T) {
	d := &diagram.Diagram{
		Resources: []*diagram.Node{
			group("g", leaf("a", ""), cluster("c", leaf("b", ""))),
			leaf("z", ""),
		},
		Relations: []diagram.Relation{{From: "g", To: "z"}},
	}

	g, _ := Assemble(d, Options{})
	if g.Edges != 2 {
		t.Errorf("Edges = %d, want 2", g.Edges)
	}
}

func TestAssemble_DanglingRelation(t *testing.T) {
	d := &diagram.Diagram{
		Resources: []*diagram.Node{leaf("a", ""), cluster("c", leaf("b", ""))},
		Relations: []diagram.Relation{
			{From: "a", To: "missing"},
			{From: "ghost", To: "a"},
			{From: "a", To: "c"},
		},
	}

	g, err := Assemble(d, Options{})
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if g.Edges != 0 {
		t.Errorf("Edges = %d, want 0", g.Edges)
	}
	if g.Dropped != 3 {
		t.Errorf("Dropped = %d, want 3", g.Dropped)
	}
}

func TestAssemble_Directions(t *testing.T) {
	tests := []struct {
		rel  diagram.Relation
		want string
	}{
		{diagram.Relation{From: "a", To: "b", Direction: diagram.Outgoing}, `dir="forward"`},
		{diagram.Relation{From: "a", To: "b", Direction: diagram.Incoming}, `dir="back"`},
		{diagram.Relation{From: "a", To: "b", Direction: diagram.Bidirectional}, `dir="both"`},
		{diagram.Relation{From: "a", To: "b", Direction: diagram.Undirected}, `dir="none"`},
		{
			diagram.Relation{From: "a", To: "b", Direction: diagram.Incoming, Label: "reads", Color: "red", Style: "dashed"},
			`dir="back", label="reads", color="red", style="dashed"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			d := &diagram.Diagram{
				Resources: []*diagram.Node{leaf("a", ""), leaf("b", "")},
				Relations: []diagram.Relation{tt.rel},
			}
			g, _ := Assemble(d, Options{})
			es := edges(g.DOT)
			if len(es) != 1 {
				t.Fatalf("got %d edges, want 1", len(es))
			}
			if es[0][3] != tt.want {
				t.Errorf("edge attrs = %s, want %s", es[0][3], tt.want)
			}
		})
	}
}

func TestAssemble_ClustersNest(t *testing.T) {
	d := &diagram.Diagram{
		Name:      "Nested",
		Direction: "bottom-to-top",
		Resources: []*diagram.Node{
			cluster("outer", cluster("inner", leaf("a", "/icons/a.svg"))),
		},
	}

	g, _ := Assemble(d, Options{})
	if g.Clusters != 2 || g.Nodes != 1 {
		t.Errorf("Clusters, Nodes = %d, %d, want 2, 1", g.Clusters, g.Nodes)
	}

	for _, want := range []string{
		`digraph "Nested" {`,
		`rankdir="BT"`,
		`label="Nested"`,
		`bgcolor="#E5F5FD"`,
		`bgcolor="#EBF3E7"`,
		`image="/icons/a.svg"`,
		`shape="none"`,
	} {
		if !strings.Contains(g.DOT, want) {
			t.Errorf("DOT missing %s:\n%s", want, g.DOT)
		}
	}

	if strings.Count(g.DOT, "{") != strings.Count(g.DOT, "}") {
		t.Errorf("unbalanced braces:\n%s", g.DOT)
	}
	if !strings.Contains(g.DOT, "\n    subgraph \"cluster_") {
		t.Errorf("inner cluster not indented inside outer:\n%s", g.DOT)
	}
}

func TestAssemble_StyleOverrides(t *testing.T) {
	d := &diagram.Diagram{
		Style: diagram.StyleSpec{
			Graph: map[string]string{"splines": "spline", "pad": ""},
			Edge:  map[string]string{"penwidth": "2"},
		},
	}

	g, _ := Assemble(d, Options{})
	if !strings.Contains(g.DOT, `splines="spline"`) {
		t.Error("graph style override not applied")
	}
	if strings.Contains(g.DOT, `pad=`) {
		t.Error("empty override should remove the default")
	}
	if !strings.Contains(g.DOT, `edge [color="#7B8894", penwidth="2"]`) {
		t.Errorf("edge defaults not merged:\n%s", g.DOT)
	}
}

func TestAssemble_Deterministic(t *testing.T) {
	build := func() *diagram.Diagram {
		return &diagram.Diagram{
			Resources: []*diagram.Node{cluster("c", leaf("a", "")), leaf("b", "")},
			Relations: []diagram.Relation{{From: "a", To: "b"}},
		}
	}
	g1, _ := Assemble(build(), Options{})
	g2, _ := Assemble(build(), Options{})
	if g1.DOT != g2.DOT {
		t.Error("Assemble() output differs between identical diagrams")
	}
}

func TestAssemble_DuplicateIDLaterWins(t *testing.T) {
	d := &diagram.Diagram{
		Resources: []*diagram.Node{leaf("a", ""), leaf("a", ""), leaf("b", "")},
		Relations: []diagram.Relation{{From: "a", To: "b"}},
	}
	g, _ := Assemble(d, Options{})
	if g.Duplicates != 1 || g.Nodes != 3 || g.Edges != 1 {
		t.Errorf("Duplicates, Nodes, Edges = %d, %d, %d, want 1, 3, 1", g.Duplicates, g.Nodes, g.Edges)
	}
}

func TestQuote(t *testing.T) {
	tests := map[string]string{
		"plain":       `"plain"`,
		`say "hi"`:    `"say \"hi\""`,
		"two\nlines":  `"two\nlines"`,
		`C:\icons\a`:  `"C:\icons\a"`,
		"crlf\r\nend": `"crlf\nend"`,
		`C:\`:         `"C:\\"`,
		`C:\\`:        `"C:\\\\"`,
		`a\"b`:        `"a\\\"b"`,
		`left\l`:      `"left\l"`,
	}
	for in, want := range tests {
		if got := quote(in); got != want {
			t.Errorf("quote(%q) = %s, want %s", in, got, want)
		}
	}
}
