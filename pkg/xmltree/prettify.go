package xmltree

import (
	"strings"
)

// Prettify rewrites the tree's whitespace into the canonical on-disk format
// and returns the serialized document: two-space indentation per level, a
// blank line between depth-one sibling blocks (but not before comments, and
// not after the last child), trailing whitespace trimmed. The tree is
// modified in place, the same way a formatter rewrites a file.
func Prettify(tree *Tree) []byte {
	prettifyNode(tree.Root, 0)

	return Serialize(tree.Root)
}

func prettifyNode(node *Node, tabs int) {
	var child *Node
	space := strings.Repeat("  ", tabs)

	if len(node.Children) > 0 {
		node.Text = strings.TrimSpace(node.Text) + "\n" + space + "  "
		for _, child = range node.Children {
			prettifyNode(child, tabs+1)
		}

		// Each child closes with the indentation for a following sibling. The
		// last child has no sibling, so drop one indent unit from its tail.
		child = node.Children[len(node.Children)-1]
		child.Tail = child.Tail[:len(child.Tail)-2]
	}

	node.Tail = strings.TrimSpace(node.Tail)

	lines := "\n"
	if tabs == 1 && !node.Comment {
		lines = "\n\n"
	}
	node.Tail = node.Tail + lines + space

	// The final depth-one block would otherwise leave a doubled blank line
	// before the root's close tag.
	if tabs == 0 && child != nil {
		child.Tail = strings.ReplaceAll(child.Tail, "\n\n", "\n")
	}
}
