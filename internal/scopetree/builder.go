package scopetree

import (
	"errors"
	"fmt"
)

// ErrMalformedTree reports a tree that violates the structural contract:
// missing or inconsistent parent links, cycles, or unreachable nodes.
var ErrMalformedTree = errors.New("malformed scope tree")

// Builder accumulates nodes top-down. The first node added without a parent
// becomes the root.
type Builder struct {
	unit  string
	nodes []Node
}

// NewBuilder returns a Builder for the named unit.
func NewBuilder(unit string) *Builder {
	return &Builder{unit: unit}
}

// Add appends n as the last child of parent and returns its handle.
// Pass NoHandle as parent for the root.
func (b *Builder) Add(parent Handle, n Node) Handle {
	h := Handle(len(b.nodes))
	n.Parent = parent
	n.Children = nil
	b.nodes = append(b.nodes, n)
	if parent.Valid() && int(parent) < len(b.nodes) {
		b.nodes[parent].Children = append(b.nodes[parent].Children, h)
	}
	return h
}

// Node returns a pointer to a node under construction.
func (b *Builder) Node(h Handle) *Node { return &b.nodes[h] }

// Build validates the accumulated nodes and returns the finished tree.
func (b *Builder) Build() (*Tree, error) {
	return FromTable(b.unit, b.nodes)
}

// FromTable validates a node table whose Parent and Children fields are
// already populated and returns it as a Tree. The table is retained.
func FromTable(unit string, nodes []Node) (*Tree, error) {
	root, err := validate(nodes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", unit, err)
	}
	t := &Tree{
		unit:  unit,
		nodes: nodes,
		root:  root,
	}
	t.scopes = computeScopes(t)
	return t, nil
}

func validate(nodes []Node) (Handle, error) {
	if len(nodes) == 0 {
		return NoHandle, fmt.Errorf("%w: no nodes", ErrMalformedTree)
	}

	root := NoHandle
	for i, n := range nodes {
		h := Handle(i)
		if !n.Parent.Valid() {
			if root.Valid() {
				return NoHandle, fmt.Errorf("%w: nodes %d and %d both lack a parent", ErrMalformedTree, root, h)
			}
			root = h
			continue
		}
		if int(n.Parent) >= len(nodes) {
			return NoHandle, fmt.Errorf("%w: node %d has parent %d out of range", ErrMalformedTree, h, n.Parent)
		}
	}
	if !root.Valid() {
		return NoHandle, fmt.Errorf("%w: no root", ErrMalformedTree)
	}
	if nodes[root].Kind != KindUnit {
		return NoHandle, fmt.Errorf("%w: root is %s, want %s", ErrMalformedTree, nodes[root].Kind, KindUnit)
	}

	listed := make([]bool, len(nodes))
	for i, n := range nodes {
		for _, c := range n.Children {
			if !c.Valid() || int(c) >= len(nodes) {
				return NoHandle, fmt.Errorf("%w: node %d has child %d out of range", ErrMalformedTree, i, c)
			}
			if listed[c] {
				return NoHandle, fmt.Errorf("%w: node %d is listed as a child more than once", ErrMalformedTree, c)
			}
			listed[c] = true
			if nodes[c].Parent != Handle(i) {
				return NoHandle, fmt.Errorf("%w: node %d is a child of %d but names %d as parent",
					ErrMalformedTree, c, i, nodes[c].Parent)
			}
		}
	}

	// With consistent links, anything unreachable from the root is on a cycle
	// or hangs off one.
	seen := make([]bool, len(nodes))
	stack := []Handle{root}
	count := 0
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		seen[h] = true
		count++
		stack = append(stack, nodes[h].Children...)
	}
	if count != len(nodes) {
		for i := range nodes {
			if !seen[i] {
				return NoHandle, fmt.Errorf("%w: node %d is not reachable from the root", ErrMalformedTree, i)
			}
		}
	}
	return root, nil
}

func computeScopes(t *Tree) []Scope {
	scopes := make([]Scope, len(t.nodes))
	for i := range scopes {
		scopes[i].EnclosingLoop = NoHandle
	}

	t.Walk(func(h Handle) bool {
		n := t.nodes[h]
		if !n.Parent.Valid() {
			return true
		}
		parent := t.nodes[n.Parent]
		switch parent.Kind {
		case KindLoop:
			scopes[h].EnclosingLoop = n.Parent
		case KindFunction, KindLambda:
			scopes[h].EnclosingLoop = NoHandle
		default:
			scopes[h].EnclosingLoop = scopes[n.Parent].EnclosingLoop
		}

		if n.Kind == KindCase {
			scopes[h].IsSwitchCase = true
			return true
		}
		if n.Kind != KindBlock {
			return true
		}
		switch {
		case parent.Kind == KindLoop && n.Role == RoleBody:
			scopes[h].IsLoopBody = true
		case parent.Kind == KindCase && n.Role == RoleStmt:
			stmts := t.Statements(n.Parent)
			scopes[h].IsSwitchCase = len(stmts) > 0 && stmts[0] == h && len(t.Statements(h)) > 0
		}
		return true
	})
	return scopes
}
