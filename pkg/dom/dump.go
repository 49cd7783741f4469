package dom

import (
	"fmt"
	"strings"

	"github.com/xlab/treeprint"
)

// Dump renders the document as an indented tree, one node per line.
func Dump(doc *Document) string {
	tree := treeprint.NewWithRoot("document")
	if doc != nil {
		for _, r := range doc.Roots {
			addNode(tree, r)
		}
	}
	return tree.String()
}

func addNode(t treeprint.Tree, n *Node) {
	label := nodeLabel(n)
	if len(n.Children) == 0 {
		t.AddNode(label)
		return
	}
	branch := t.AddBranch(label)
	for _, c := range n.Children {
		addNode(branch, c)
	}
}

func nodeLabel(n *Node) string {
	var b strings.Builder
	b.WriteString("<")
	b.WriteString(n.Tag)
	for _, a := range n.Attrs {
		switch v := a.Value.(type) {
		case nil:
		case bool:
			if v {
				b.WriteString(" " + a.Key)
			}
		default:
			fmt.Fprintf(&b, " %s=%q", a.Key, fmt.Sprint(v))
		}
	}
	for _, e := range n.Events {
		fmt.Fprintf(&b, " %s=%s()", e.Event, e.Callback.Name())
	}
	b.WriteString(">")
	if n.Text != "" {
		fmt.Fprintf(&b, " %q", n.Text)
	}
	return b.String()
}
