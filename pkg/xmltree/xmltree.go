// Package xmltree implements the ordered XML document model used for outflux
// configuration and output files. Nodes preserve attribute and child order,
// retain comments, and carry the text/tail whitespace that the canonical
// formatter manipulates.
//
// Construction goes through NewNode/NewTree, which sanitize names rather than
// reject them: illegal tag characters are corrected and a diagnostic is
// logged, matching the file format this package is the source of truth for.
package xmltree

import (
	"os"
	"strings"

	kitlog "github.com/go-kit/kit/log"
)

var logger kitlog.Logger = kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stderr))

// SetLogger replaces the logger used to report sanitization corrections.
func SetLogger(l kitlog.Logger) {
	logger = l
}

// Attr is a single name/value attribute pair. Attributes are stored as a
// slice, not a map, as document order is significant for the formatter.
type Attr struct {
	Key   string
	Value string
}

// Node is an element in the document tree. Text is the content before the
// first child, Tail the content between this node's close tag and the next
// sibling. Comment nodes carry their body in Text and have no tag.
type Node struct {
	Tag      string
	Text     string
	Tail     string
	Comment  bool
	Attr     []Attr
	Children []*Node
}

// Tree wraps the root node of a document.
type Tree struct {
	Root *Node
}

// NewNode builds an element with sanitized names. The tag and attribute keys
// pass through FixTag, attribute values and text through FixText, so the
// result is always serializable. Corrections are logged, never returned.
func NewNode(tag, text string, attrs ...Attr) *Node {
	node := &Node{Tag: FixTag(tag), Text: FixText(text)}
	for _, attr := range attrs {
		node.Attr = append(node.Attr, Attr{Key: FixTag(attr.Key), Value: FixText(attr.Value)})
	}

	return node
}

// NewTree builds a tree whose root carries the given name and attributes. The
// name is sanitized but the attributes are attached verbatim.
func NewTree(name string, attrs ...Attr) *Tree {
	root := NewNode(name, "")
	root.Attr = append([]Attr{}, attrs...)

	return &Tree{Root: root}
}

// Append adds children to the node, preserving order.
func (n *Node) Append(children ...*Node) {
	n.Children = append(n.Children, children...)
}

// Find returns the first direct child with the given tag, or nil. Comments
// never match.
func (n *Node) Find(tag string) *Node {
	for _, child := range n.Children {
		if !child.Comment && child.Tag == tag {
			return child
		}
	}

	return nil
}

// FindAll returns every direct child with the given tag, in document order.
func (n *Node) FindAll(tag string) []*Node {
	matches := []*Node{}
	for _, child := range n.Children {
		if !child.Comment && child.Tag == tag {
			matches = append(matches, child)
		}
	}

	return matches
}

// Elements returns the non-comment children in document order.
func (n *Node) Elements() []*Node {
	elements := []*Node{}
	for _, child := range n.Children {
		if !child.Comment {
			elements = append(elements, child)
		}
	}

	return elements
}

// AttrValue returns the value of the named attribute, with a presence flag.
func (n *Node) AttrValue(key string) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Value, true
		}
	}

	return "", false
}

// SetAttr sets an attribute, replacing an existing key in place to keep
// document order stable.
func (n *Node) SetAttr(key, value string) {
	for idx, attr := range n.Attr {
		if attr.Key == key {
			n.Attr[idx].Value = value
			return
		}
	}

	n.Attr = append(n.Attr, Attr{Key: key, Value: value})
}

// FindPath resolves a pipe-delimited path ("Simulation|RunInfo|JobName") by
// matching each segment as a direct child of the previous match, first match
// per level. It returns nil as soon as any segment is missing; absence is not
// an error.
func FindPath(root *Node, path string) *Node {
	node := root
	for _, segment := range strings.Split(path, "|") {
		if node = node.Find(segment); node == nil {
			return nil
		}
	}

	return node
}
