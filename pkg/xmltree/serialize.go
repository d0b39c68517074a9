package xmltree

import (
	"bytes"
	"fmt"
	"strings"
)

// Only markup-significant characters are escaped. Whitespace must pass
// through untouched or the formatter's indentation would be entity-encoded.
var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
)

// Serialize renders the node and everything below it, including the node's
// tail text.
func Serialize(node *Node) []byte {
	var buf bytes.Buffer
	writeNode(&buf, node)

	return buf.Bytes()
}

func writeNode(buf *bytes.Buffer, node *Node) {
	if node.Comment {
		buf.WriteString("<!--")
		buf.WriteString(node.Text)
		buf.WriteString("-->")
		buf.WriteString(node.Tail)
		return
	}

	buf.WriteByte('<')
	buf.WriteString(node.Tag)
	for _, attr := range node.Attr {
		fmt.Fprintf(buf, ` %s="%s"`, attr.Key, attrEscaper.Replace(attr.Value))
	}

	if node.Text == "" && len(node.Children) == 0 {
		buf.WriteString(" />")
	} else {
		buf.WriteByte('>')
		buf.WriteString(textEscaper.Replace(node.Text))
		for _, child := range node.Children {
			writeNode(buf, child)
		}
		buf.WriteString("</")
		buf.WriteString(node.Tag)
		buf.WriteByte('>')
	}

	buf.WriteString(node.Tail)
}
