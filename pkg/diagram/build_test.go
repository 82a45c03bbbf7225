package diagram

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/orchestree/orchestree/pkg/errors"
)

const nested = `
diagram:
  name: Events
  direction: top-to-bottom
  resources:
    - id: vpc
      name: VPC
      type: cluster
      of:
        - id: api
          name: API
          type: custom
          icon: aws-api-gateway
        - relates: {from: api, to: workers, description: dispatch}
        - id: workers
          name: Workers
          type: group
          of:
            - {id: w1, name: Worker 1, type: custom, icon: lambda}
            - {id: w2, name: Worker 2, type: custom, icon: lambda}
            - relates:
                - {from: w1, to: db, direction: incoming}
                - {from: w2, to: db, direction: sideways}
    - {id: db, name: DB, type: custom, icon: dynamodb}
  relates:
    - {from: api, to: db, direction: bidirectional, color: red, style: dashed}
relates:
  - {from: ignored, to: ignored}
`

func TestBuildExtractsNestedRelations(t *testing.T) {
	d, err := Load([]byte(nested))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []Relation{
		{From: "api", To: "workers", Direction: Outgoing, Label: "dispatch"},
		{From: "w1", To: "db", Direction: Incoming},
		{From: "w2", To: "db", Direction: Undirected},
		{From: "api", To: "db", Direction: Bidirectional, Color: "red", Style: "dashed"},
	}
	if diff := cmp.Diff(want, d.Relations); diff != "" {
		t.Errorf("Relations mismatch (-want +got):\n%s", diff)
	}

	wantTree := []*Node{
		{ID: "vpc", Kind: KindCluster, Label: "VPC", Children: []*Node{
			{ID: "api", Kind: KindLeaf, Label: "API", Icon: "aws-api-gateway"},
			{ID: "workers", Kind: KindGroup, Label: "Workers", Children: []*Node{
				{ID: "w1", Kind: KindLeaf, Label: "Worker 1", Icon: "lambda"},
				{ID: "w2", Kind: KindLeaf, Label: "Worker 2", Icon: "lambda"},
			}},
		}},
		{ID: "db", Kind: KindLeaf, Label: "DB", Icon: "dynamodb"},
	}
	if diff := cmp.Diff(wantTree, d.Resources); diff != "" {
		t.Errorf("Resources mismatch (-want +got):\n%s", diff)
	}

	if d.Name != "Events" {
		t.Errorf("Name = %q, want %q", d.Name, "Events")
	}
	if got := d.Rankdir(); got != "TB" {
		t.Errorf("Rankdir() = %q, want TB", got)
	}
}

func TestBuildRootRelatesFallback(t *testing.T) {
	doc := `
diagram:
  name: x
  resources:
    - {id: a, type: custom}
    - {id: b, type: custom}
relates:
  - {from: a, to: b}
`
	d, err := Load([]byte(doc))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := []Relation{{From: "a", To: "b", Direction: Outgoing}}
	if diff := cmp.Diff(want, d.Relations); diff != "" {
		t.Errorf("Relations mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildEmptyDiagramRelatesWins(t *testing.T) {
	doc := `
diagram:
  resources:
    - {id: a, type: custom}
  relates: []
relates:
  - {from: a, to: a}
`
	d, err := Load([]byte(doc))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(d.Relations) != 0 {
		t.Errorf("Relations = %v, want none", d.Relations)
	}
}

func TestBuildNoRelationEntriesRemain(t *testing.T) {
	d, err := Load([]byte(nested))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	d.Walk(func(n *Node, _ int) bool {
		if n.ID == "" {
			t.Errorf("tree contains an entry without id: %+v", n)
		}
		return true
	})
	counts := d.Count()
	if counts[KindLeaf] != 4 || counts[KindGroup] != 1 || counts[KindCluster] != 1 {
		t.Errorf("Count() = %v", counts)
	}
}

func TestBuildUnsupportedKind(t *testing.T) {
	doc := `
diagram:
  resources:
    - {id: a, type: custom}
    - {id: q, name: Queue, type: database}
    - {id: z, type: alsobad}
`
	_, err := Load([]byte(doc))
	if !errors.Is(err, errors.ErrCodeUnsupportedKind) {
		t.Fatalf("Load() error = %v, want %s", err, errors.ErrCodeUnsupportedKind)
	}
	want := `resource "q" (Queue): unsupported type "database"`
	if got := errors.UserMessage(err); got != want {
		t.Errorf("UserMessage() = %q, want %q", got, want)
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code errors.Code
	}{
		{"empty", "", errors.ErrCodeInvalidDiagram},
		{"no root", "resources: []", errors.ErrCodeInvalidDiagram},
		{"not yaml", "diagram: [unclosed", errors.ErrCodeInvalidDiagram},
		{"missing id", "diagram:\n  resources:\n    - {name: A, type: custom}", errors.ErrCodeInvalidDiagram},
		{"missing type", "diagram:\n  resources:\n    - {id: a}", errors.ErrCodeUnsupportedKind},
		{"bad relates", "diagram:\n  resources:\n    - relates: 3", errors.ErrCodeInvalidDiagram},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.doc))
			if !errors.Is(err, tt.code) {
				t.Errorf("Load() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestBuildCustomIgnoresChildren(t *testing.T) {
	doc := `diagram:
  resources:
    - id: a
      type: custom
      icon: x
      of:
        - {id: b, type: custom}
        - {id: bad id, type: nonsense}
        - relates: {from: a, to: b}
    - {id: c, type: custom}`
	d, err := Load([]byte(doc))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := []*Node{
		{ID: "a", Kind: KindLeaf, Icon: "x"},
		{ID: "c", Kind: KindLeaf},
	}
	if diff := cmp.Diff(want, d.Resources); diff != "" {
		t.Errorf("Resources mismatch (-want +got):\n%s", diff)
	}
	if len(d.Relations) != 0 {
		t.Errorf("Relations = %v, want none", d.Relations)
	}
}

func TestBuildJSONInput(t *testing.T) {
	doc := `{"diagram": {"name": "j", "resources": [
		{"id": "a", "type": "Custom", "icon": "x"},
		{"id": "g", "type": "group", "of": [{"relates": {"from": "a", "to": "g", "label": "l"}}]}
	]}}`
	d, err := Load([]byte(doc))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := []Relation{{From: "a", To: "g", Direction: Outgoing, Label: "l"}}
	if diff := cmp.Diff(want, d.Relations); diff != "" {
		t.Errorf("Relations mismatch (-want +got):\n%s", diff)
	}
	if g := d.Find("g"); g == nil || len(g.Children) != 0 {
		t.Errorf("Find(g) = %+v, want empty group", g)
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in   string
		want Direction
	}{
		{"", Outgoing},
		{"outgoing", Outgoing},
		{"Incoming", Incoming},
		{"bidirectional", Bidirectional},
		{"none", Undirected},
		{"both", Undirected},
	}
	for _, tt := range tests {
		if got := ParseDirection(tt.in); got != tt.want {
			t.Errorf("ParseDirection(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRankdir(t *testing.T) {
	tests := map[string]string{
		"":              "LR",
		"left-to-right": "LR",
		"right-to-left": "RL",
		"top-to-bottom": "TB",
		"bottom-to-top": "BT",
		"diagonal":      "LR",
	}
	for in, want := range tests {
		d := &Diagram{Direction: in}
		if got := d.Rankdir(); got != want {
			t.Errorf("Rankdir(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLeavesThroughClusters(t *testing.T) {
	g := &Node{ID: "g", Kind: KindGroup, Children: []*Node{
		{ID: "a", Kind: KindLeaf},
		{ID: "c", Kind: KindCluster, Children: []*Node{{ID: "b", Kind: KindLeaf}}},
	}}
	var ids []string
	for _, l := range g.Leaves() {
		ids = append(ids, l.ID)
	}
	if diff := cmp.Diff([]string{"a", "b"}, ids); diff != "" {
		t.Errorf("Leaves() mismatch (-want +got):\n%s", diff)
	}
}
