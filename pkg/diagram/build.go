package diagram

import (
	"strconv"

	"github.com/orchestree/orchestree/pkg/errors"
)

// Build converts a parsed description into a Diagram.
//
// Resources are visited depth-first in source order. Inline relation
// entries are dropped from the tree and collected as they are met; the
// top-level list ("diagram.relates", falling back to the root "relates")
// is appended afterwards. The first resource with an unrecognized type
// aborts the build with UNSUPPORTED_RESOURCE_KIND.
func Build(desc *Description) (*Diagram, error) {
	if desc == nil || desc.Diagram == nil {
		return nil, errors.New(errors.ErrCodeInvalidDiagram, "missing \"diagram\" root")
	}
	spec := desc.Diagram

	var b builder
	resources, err := b.entries(spec.Resources)
	if err != nil {
		return nil, err
	}

	top := desc.Relates
	if spec.Relates != nil {
		top = *spec.Relates
	}
	for _, r := range top {
		b.relations = append(b.relations, r.Relation())
	}

	return &Diagram{
		Name:      spec.Name,
		Direction: spec.Direction,
		Style:     spec.Style,
		Resources: resources,
		Relations: b.relations,
	}, nil
}

type builder struct {
	relations []Relation
}

func (b *builder) entries(entries []Entry) ([]*Node, error) {
	nodes := make([]*Node, 0, len(entries))
	for _, e := range entries {
		if e.IsRelation() {
			for _, r := range *e.Relates {
				b.relations = append(b.relations, r.Relation())
			}
			continue
		}
		n, err := b.resource(e)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func (b *builder) resource(e Entry) (*Node, error) {
	if err := errors.ValidateResourceID(e.ID); err != nil {
		if e.label() != "" {
			return nil, errors.Wrap(errors.ErrCodeInvalidDiagram, err, "resource %q", e.label())
		}
		return nil, err
	}

	kind, ok := ParseKind(e.Type)
	if !ok {
		return nil, errors.New(errors.ErrCodeUnsupportedKind,
			"resource %s: unsupported type %q", describe(e), e.Type)
	}

	n := &Node{ID: e.ID, Kind: kind, Label: e.label()}
	if kind == KindLeaf {
		// Custom resources are never containers; an "of" list is ignored
		// along with any relations inside it.
		n.Icon = e.Icon
		return n, nil
	}

	children, err := b.entries(e.Of)
	if err != nil {
		return nil, err
	}
	n.Children = children
	return n, nil
}

// describe names an entry for error messages: `"api" (API Gateway)`.
func describe(e Entry) string {
	if l := e.label(); l != "" && l != e.ID {
		return strconv.Quote(e.ID) + " (" + l + ")"
	}
	return strconv.Quote(e.ID)
}
