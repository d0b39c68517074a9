// Package inputspec describes what an entity accepts as configuration. An
// entity publishes a Spec for its XML node; parsing a node against the spec
// enforces required attributes and children, applies defaults, and yields a
// typed Input the entity consumes in HandleInput.
package inputspec

import (
	"strings"

	"github.com/outflux/outflux/pkg/xmltree"
	"github.com/pkg/errors"
)

// ContentKind describes the text content a node may carry.
type ContentKind int

const (
	ContentNone ContentKind = iota
	ContentString
	ContentStringList
	ContentInt
	ContentFloat
	ContentBool
)

// Param describes a single attribute.
type Param struct {
	Name        string
	Description string
	Required    bool
	Default     string
}

// Spec describes a configuration node: its attributes, its text content, and
// the child nodes it accepts. Strict specs reject attributes and children
// they don't know about.
type Spec struct {
	Name        string
	Description string
	Params      []Param
	Content     ContentKind
	Children    []*Spec
	Required    bool
	Strict      bool
}

// New builds an empty spec for the named node.
func New(name, description string) *Spec {
	return &Spec{Name: name, Description: description}
}

// WithContent declares the node's text content kind.
func (s *Spec) WithContent(kind ContentKind) *Spec {
	s.Content = kind
	return s
}

// Require marks the node as mandatory within its parent.
func (s *Spec) Require() *Spec {
	s.Required = true
	return s
}

// AddParam declares an attribute.
func (s *Spec) AddParam(p Param) *Spec {
	s.Params = append(s.Params, p)
	return s
}

// AddChild declares an accepted child node.
func (s *Spec) AddChild(child *Spec) *Spec {
	s.Children = append(s.Children, child)
	return s
}

func (s *Spec) param(name string) *Param {
	for idx := range s.Params {
		if s.Params[idx].Name == name {
			return &s.Params[idx]
		}
	}

	return nil
}

func (s *Spec) child(name string) *Spec {
	for _, child := range s.Children {
		if child.Name == name {
			return child
		}
	}

	return nil
}

// Parse validates the node against the spec. Unknown attributes and children
// are errors only for strict specs; missing required ones are always errors.
func (s *Spec) Parse(node *xmltree.Node) (*Input, error) {
	in := &Input{spec: s, Tag: node.Tag, params: map[string]string{}}

	for _, p := range s.Params {
		value, ok := node.AttrValue(p.Name)
		switch {
		case ok:
			in.params[p.Name] = value
		case p.Required:
			return nil, errors.Errorf("%s: missing required attribute %q", s.Name, p.Name)
		case p.Default != "":
			in.params[p.Name] = p.Default
		}
	}

	if s.Strict {
		for _, attr := range node.Attr {
			if s.param(attr.Key) == nil {
				return nil, errors.Errorf("%s: unknown attribute %q", s.Name, attr.Key)
			}
		}
	}

	in.value = strings.TrimSpace(node.Text)
	if err := s.checkContent(in.value); err != nil {
		return nil, err
	}

	for _, child := range node.Elements() {
		spec := s.child(child.Tag)
		if spec == nil {
			if s.Strict {
				return nil, errors.Errorf("%s: unknown node %q", s.Name, child.Tag)
			}
			continue
		}

		parsed, err := spec.Parse(child)
		if err != nil {
			return nil, err
		}

		in.children = append(in.children, parsed)
	}

	for _, spec := range s.Children {
		if spec.Required && in.Child(spec.Name) == nil {
			return nil, errors.Errorf("%s: missing required node %q", s.Name, spec.Name)
		}
	}

	return in, nil
}

func (s *Spec) checkContent(value string) error {
	if value == "" {
		return nil
	}

	dummy := &Input{value: value}
	var err error
	switch s.Content {
	case ContentInt:
		_, err = dummy.Int()
	case ContentFloat:
		_, err = dummy.Float()
	case ContentBool:
		_, err = dummy.Bool()
	}

	return errors.Wrapf(err, "%s: invalid content", s.Name)
}
