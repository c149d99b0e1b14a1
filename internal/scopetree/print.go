package scopetree

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes an indented outline of the tree to w.
func Fprint(w io.Writer, t *Tree) error {
	var err error
	depth := make([]int, t.Len())
	t.Walk(func(h Handle) bool {
		if err != nil {
			return false
		}
		n := t.nodes[h]
		if n.Parent.Valid() {
			depth[h] = depth[n.Parent] + 1
		}
		_, err = fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth[h]), describe(t, h))
		return true
	})
	return err
}

func describe(t *Tree, h Handle) string {
	n := t.nodes[h]
	var b strings.Builder
	fmt.Fprintf(&b, "%d:%d %s", n.Pos.Line, n.Pos.Column, n.Kind)
	if n.Parent.Valid() && n.Role != RoleStmt {
		fmt.Fprintf(&b, " (%s)", n.Role)
	}
	switch n.Kind {
	case KindUnit:
		fmt.Fprintf(&b, " %s", t.unit)
	case KindBranch:
		fmt.Fprintf(&b, " %s", n.Branch)
	case KindLoop:
		fmt.Fprintf(&b, " %s", n.Loop)
	case KindBlock:
		s := t.scopes[h]
		switch {
		case s.IsLoopBody:
			b.WriteString(" loop-body")
		case s.IsSwitchCase:
			b.WriteString(" case-scope")
		case t.IsRedundantBlock(h):
			b.WriteString(" redundant")
		}
		if t.IsEmptyBlock(h) {
			b.WriteString(" empty")
		}
	case KindExpression:
		fmt.Fprintf(&b, " %s", n.Op)
		if n.Name != "" {
			fmt.Fprintf(&b, " %s", n.Name)
		}
		if n.Text != "" {
			fmt.Fprintf(&b, " %q", n.Text)
		}
	}
	return b.String()
}
