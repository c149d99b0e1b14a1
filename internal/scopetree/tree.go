// Package scopetree is the in-memory scope tree consumed by the rules.
//
// Nodes live in an arena owned by a Tree and refer to each other through
// Handles. A Tree is immutable once built and may be shared between
// goroutines.
package scopetree

// Handle identifies a node within its Tree.
type Handle int32

// NoHandle is the absent handle: the parent of the root, or no enclosing loop.
const NoHandle Handle = -1

// Valid reports whether h refers to a node.
func (h Handle) Valid() bool { return h >= 0 }

// Position is a 1-based source position.
type Position struct {
	Line   int
	Column int
}

// Before reports whether p sorts before q.
func (p Position) Before(q Position) bool {
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Column < q.Column
}

// Node is one element of the tree.
type Node struct {
	Kind     Kind
	Role     Role
	Pos      Position
	Parent   Handle
	Children []Handle

	// Branch is set on KindBranch nodes.
	Branch BranchKind
	// Loop is set on KindLoop nodes.
	Loop LoopKind

	// Op, Name and Text describe KindExpression nodes. Name is the called
	// function or method, or the comparison operator. Text is the normalized
	// source spelling of paths and literals.
	Op   ExprOp
	Name string
	Text string
}

// Scope holds the derived scope information of a Block or Case node.
type Scope struct {
	IsSwitchCase  bool
	IsLoopBody    bool
	EnclosingLoop Handle
}

// Tree is a validated, immutable scope tree.
type Tree struct {
	unit   string
	nodes  []Node
	root   Handle
	scopes []Scope
}

// Unit returns the name of the analyzed unit.
func (t *Tree) Unit() string { return t.unit }

func (t *Tree) Root() Handle { return t.root }

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// Node returns a copy of the node. The Children slice is shared and must not be modified.
func (t *Tree) Node(h Handle) Node { return t.nodes[h] }

func (t *Tree) Kind(h Handle) Kind { return t.nodes[h].Kind }

func (t *Tree) Role(h Handle) Role { return t.nodes[h].Role }

func (t *Tree) Parent(h Handle) Handle { return t.nodes[h].Parent }

func (t *Tree) Position(h Handle) Position { return t.nodes[h].Pos }

func (t *Tree) Children(h Handle) []Handle { return t.nodes[h].Children }

// Child returns the first child of h in the given role.
func (t *Tree) Child(h Handle, role Role) Handle {
	for _, c := range t.nodes[h].Children {
		if t.nodes[c].Role == role {
			return c
		}
	}
	return NoHandle
}

// Statements returns the statement-list children of h in source order.
func (t *Tree) Statements(h Handle) []Handle {
	var stmts []Handle
	for _, c := range t.nodes[h].Children {
		if t.nodes[c].Role == RoleStmt && t.nodes[c].Kind != KindExpression {
			stmts = append(stmts, c)
		}
	}
	return stmts
}

// Scope returns the scope information of h. Nodes that are neither blocks nor
// cases still report their enclosing loop.
func (t *Tree) Scope(h Handle) Scope { return t.scopes[h] }

// EnclosingLoop returns the nearest loop around h within the same function,
// or NoHandle.
func (t *Tree) EnclosingLoop(h Handle) Handle { return t.scopes[h].EnclosingLoop }

// IsEmptyBlock reports whether h is a block without statements.
func (t *Tree) IsEmptyBlock(h Handle) bool {
	return t.nodes[h].Kind == KindBlock && len(t.Statements(h)) == 0
}

// IsRedundantBlock reports whether h is a block that exists only for its braces:
// it sits in a statement list of a block or case, and it is not the scope
// block of its case.
func (t *Tree) IsRedundantBlock(h Handle) bool {
	n := t.nodes[h]
	if n.Kind != KindBlock || n.Role != RoleStmt || !n.Parent.Valid() {
		return false
	}
	switch t.nodes[n.Parent].Kind {
	case KindBlock, KindCase:
	default:
		return false
	}
	return !t.scopes[h].IsSwitchCase
}

// Flatten returns the statements of h with redundant blocks and case scope
// blocks replaced by their own statements, recursively. A node that is not a
// block or case is returned as a one-element list.
func (t *Tree) Flatten(h Handle) []Handle {
	switch t.nodes[h].Kind {
	case KindBlock, KindCase:
	default:
		return []Handle{h}
	}
	var out []Handle
	for _, s := range t.Statements(h) {
		if t.nodes[s].Kind == KindBlock && (t.IsRedundantBlock(s) || t.scopes[s].IsSwitchCase) {
			out = append(out, t.Flatten(s)...)
			continue
		}
		out = append(out, s)
	}
	return out
}

// IsLastStatementIn reports whether h is in tail position of block.
func (t *Tree) IsLastStatementIn(h, block Handle) bool {
	stmts := t.Flatten(block)
	return len(stmts) > 0 && stmts[len(stmts)-1] == h
}

// Walk visits every node depth-first in pre-order. When fn returns false the
// children of that node are skipped.
func (t *Tree) Walk(fn func(h Handle) bool) {
	stack := []Handle{t.root}
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(h) {
			continue
		}
		children := t.nodes[h].Children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
}
