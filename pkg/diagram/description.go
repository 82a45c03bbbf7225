package diagram

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/orchestree/orchestree/pkg/errors"
)

// Description is the decoded form of a diagram document.
type Description struct {
	Diagram *Spec          `yaml:"diagram" json:"diagram"`
	Relates []RelationSpec `yaml:"relates,omitempty" json:"relates,omitempty"`
}

// Spec is the body of the "diagram" root.
type Spec struct {
	Name      string    `yaml:"name" json:"name"`
	Direction string    `yaml:"direction,omitempty" json:"direction,omitempty"`
	Style     StyleSpec `yaml:"style,omitempty" json:"style,omitempty"`
	Resources []Entry   `yaml:"resources" json:"resources"`

	// Relates is nil when the key is absent, which makes the document's
	// root "relates" list apply instead.
	Relates *[]RelationSpec `yaml:"relates,omitempty" json:"relates,omitempty"`
}

// StyleSpec carries raw layout-engine attributes for the graph, its nodes
// and its edges. They override the built-in defaults.
type StyleSpec struct {
	Graph map[string]string `yaml:"graph,omitempty" json:"graph,omitempty"`
	Node  map[string]string `yaml:"node,omitempty" json:"node,omitempty"`
	Edge  map[string]string `yaml:"edge,omitempty" json:"edge,omitempty"`
}

// Entry is one element of a "resources" or "of" list. It is either a
// resource or, when Relates is set, an inline relation declaration.
type Entry struct {
	ID    string  `yaml:"id" json:"id"`
	Name  string  `yaml:"name,omitempty" json:"name,omitempty"`
	Label string  `yaml:"label,omitempty" json:"label,omitempty"`
	Type  string  `yaml:"type" json:"type"`
	Icon  string  `yaml:"icon,omitempty" json:"icon,omitempty"`
	Of    []Entry `yaml:"of,omitempty" json:"of,omitempty"`

	Relates *RelationList `yaml:"relates,omitempty" json:"relates,omitempty"`
}

// IsRelation reports whether the entry declares relations instead of a resource.
func (e Entry) IsRelation() bool { return e.Relates != nil }

func (e Entry) label() string {
	if e.Name != "" {
		return e.Name
	}
	return e.Label
}

// RelationSpec is a relation as written in a description.
type RelationSpec struct {
	From        string `yaml:"from" json:"from"`
	To          string `yaml:"to" json:"to"`
	Direction   string `yaml:"direction,omitempty" json:"direction,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Label       string `yaml:"label,omitempty" json:"label,omitempty"`
	Color       string `yaml:"color,omitempty" json:"color,omitempty"`
	Style       string `yaml:"style,omitempty" json:"style,omitempty"`
}

// Relation normalizes the declared relation.
func (r RelationSpec) Relation() Relation {
	label := r.Description
	if label == "" {
		label = r.Label
	}
	return Relation{
		From:      r.From,
		To:        r.To,
		Direction: ParseDirection(r.Direction),
		Label:     label,
		Color:     r.Color,
		Style:     r.Style,
	}
}

// RelationList is the value of an inline "relates" key: either a single
// mapping or a sequence of mappings.
type RelationList []RelationSpec

// UnmarshalYAML accepts both the mapping and the sequence form.
func (l *RelationList) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.MappingNode:
		var r RelationSpec
		if err := n.Decode(&r); err != nil {
			return err
		}
		*l = RelationList{r}
		return nil
	case yaml.SequenceNode:
		var rs []RelationSpec
		if err := n.Decode(&rs); err != nil {
			return err
		}
		*l = rs
		return nil
	default:
		return fmt.Errorf("line %d: relates must be a mapping or a list of mappings", n.Line)
	}
}

// Parse decodes a description document. JSON input is accepted since it is
// valid YAML.
func Parse(data []byte) (*Description, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidDiagram, "empty diagram description")
	}

	var desc Description
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDiagram, err, "parse diagram description")
	}
	if desc.Diagram == nil {
		return nil, errors.New(errors.ErrCodeInvalidDiagram, "missing \"diagram\" root")
	}
	return &desc, nil
}

// Load parses and builds a description in one step.
func Load(data []byte) (*Diagram, error) {
	desc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return Build(desc)
}
