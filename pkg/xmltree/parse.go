package xmltree

import (
	"encoding/xml"
	"io"
	"os"

	"github.com/pkg/errors"
)

// Load parses the file at filename into a tree, returning both the tree and
// its root for convenience.
func Load(filename string) (*Tree, *Node, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to open xml file")
	}
	defer file.Close()

	tree, err := Parse(file)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to parse %s", filename)
	}

	return tree, tree.Root, nil
}

// Parse builds a tree from an XML byte stream. Comments inside the root are
// kept as comment nodes, as the canonical formatter treats them differently
// from elements. Comments and whitespace outside the root are dropped.
// Namespaces are not resolved; configuration documents are plain XML.
func Parse(r io.Reader) (*Tree, error) {
	decoder := xml.NewDecoder(r)

	var root *Node
	stack := []*Node{}

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "malformed xml")
		}

		switch tok := token.(type) {
		case xml.StartElement:
			node := &Node{Tag: tok.Name.Local}
			for _, attr := range tok.Attr {
				node.Attr = append(node.Attr, Attr{Key: attrKey(attr.Name), Value: attr.Value})
			}

			if len(stack) == 0 {
				if root != nil {
					return nil, errors.New("document has multiple root elements")
				}
				root = node
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, node)
			}

			stack = append(stack, node)

		case xml.EndElement:
			stack = stack[:len(stack)-1]

		case xml.CharData:
			appendText(stack, string(tok))

		case xml.Comment:
			if len(stack) == 0 {
				continue
			}
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, &Node{Comment: true, Text: string(tok)})
		}
	}

	if root == nil {
		return nil, errors.New("document has no root element")
	}

	return &Tree{Root: root}, nil
}

// appendText attaches character data where the document model expects it: on
// the open element if it has no children yet, otherwise as the tail of the
// last child.
func appendText(stack []*Node, text string) {
	if len(stack) == 0 {
		return
	}

	node := stack[len(stack)-1]
	if len(node.Children) == 0 {
		node.Text += text
		return
	}

	last := node.Children[len(node.Children)-1]
	last.Tail += text
}

func attrKey(name xml.Name) string {
	if name.Space == "xmlns" {
		return "xmlns:" + name.Local
	}

	return name.Local
}
