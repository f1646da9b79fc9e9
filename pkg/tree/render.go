package tree

import (
	"fmt"
	"io"
	"strings"
)

// Render writes an indented text view of the tree. Open mappings are marked
// with an asterisk.
func Render(w io.Writer, root *Node) error {
	var err error
	Walk(root, func(n *Node, depth int) {
		if err != nil {
			return
		}
		marker := ""
		if n.IsCurrent {
			marker = " *"
		}
		_, err = fmt.Fprintf(w, "%s%s%s%s\n", strings.Repeat("  ", depth), icon(n.Type), n.Label, marker)
	})
	return err
}

// RenderAll renders a list of sibling nodes, such as the output of BuildMappings.
func RenderAll(w io.Writer, nodes []*Node) error {
	for _, n := range nodes {
		if err := Render(w, n); err != nil {
			return err
		}
	}
	return nil
}

func icon(t NodeType) string {
	switch t {
	case TypeFolder, TypeMappings:
		return "▸ "
	case TypeServerCreate, TypeMappingCreate:
		return "+ "
	case TypeMapping:
		return "- "
	default:
		return ""
	}
}
