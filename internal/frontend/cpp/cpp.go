// Package cpp builds scope trees from C and C++ sources using the
// tree-sitter C++ grammar.
package cpp

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	tscpp "github.com/smacker/go-tree-sitter/cpp"

	"github.com/gnolang/scopelint/internal/scopetree"
)

// Parse parses src and converts the syntax tree. Regions tree-sitter could
// not parse become Unknown nodes, which the engine does not descend into.
func Parse(ctx context.Context, filename string, src []byte) (*scopetree.Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(tscpp.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", filename, err)
	}
	defer tree.Close()

	c := &converter{src: src, b: scopetree.NewBuilder(filename)}
	root := c.b.Add(scopetree.NoHandle, scopetree.Node{Kind: scopetree.KindUnit, Pos: scopetree.Position{Line: 1, Column: 1}})
	c.decls(root, tree.RootNode())
	return c.b.Build()
}

type converter struct {
	src []byte
	b   *scopetree.Builder
}

// containers hold declarations that may in turn hold function definitions.
var containers = map[string]bool{
	"namespace_definition":   true,
	"declaration_list":       true,
	"template_declaration":   true,
	"linkage_specification":  true,
	"class_specifier":        true,
	"struct_specifier":       true,
	"union_specifier":        true,
	"field_declaration_list": true,
	"preproc_if":             true,
	"preproc_ifdef":          true,
	"preproc_else":           true,
	"preproc_elif":           true,
}

func pos(n *sitter.Node) scopetree.Position {
	p := n.StartPoint()
	return scopetree.Position{Line: int(p.Row) + 1, Column: int(p.Column) + 1}
}

func (c *converter) add(parent scopetree.Handle, kind scopetree.Kind, role scopetree.Role, n *sitter.Node) scopetree.Handle {
	return c.b.Add(parent, scopetree.Node{Kind: kind, Role: role, Pos: pos(n)})
}

// text returns the spelling of n with whitespace removed.
func (c *converter) text(n *sitter.Node) string {
	return strings.Join(strings.Fields(n.Content(c.src)), "")
}

func (c *converter) decls(parent scopetree.Handle, n *sitter.Node) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch {
		case child.Type() == "function_definition":
			body := child.ChildByFieldName("body")
			if body == nil || body.Type() != "compound_statement" {
				continue
			}
			fn := c.add(parent, scopetree.KindFunction, scopetree.RoleStmt, child)
			c.block(fn, body, scopetree.RoleBody)
		case braceBody(child) != nil:
			fn := c.add(parent, scopetree.KindFunction, scopetree.RoleStmt, child)
			c.initList(fn, braceBody(child), scopetree.RoleBody)
		case containers[child.Type()]:
			c.decls(parent, child)
		case child.Type() == "ERROR", child.HasError():
			c.add(parent, scopetree.KindUnknown, scopetree.RoleStmt, child)
		case hasLambda(child):
			h := c.add(parent, scopetree.KindStatement, scopetree.RoleStmt, child)
			c.lambdas(h, child)
		}
	}
}

// braceBody returns the body of a function whose body holds nothing but
// braces, as in "void f() { {} }". The grammar reads it as a declaration
// initialized with a brace list.
func braceBody(n *sitter.Node) *sitter.Node {
	var decl, value *sitter.Node
	switch n.Type() {
	case "declaration":
		init := n.ChildByFieldName("declarator")
		if init == nil || init.Type() != "init_declarator" {
			return nil
		}
		decl, value = init.ChildByFieldName("declarator"), init.ChildByFieldName("value")
	case "field_declaration":
		decl, value = n.ChildByFieldName("declarator"), n.ChildByFieldName("default_value")
	default:
		return nil
	}
	for decl != nil && (decl.Type() == "pointer_declarator" || decl.Type() == "reference_declarator") {
		if inner := decl.ChildByFieldName("declarator"); inner != nil {
			decl = inner
		} else {
			decl = firstNamed(decl)
		}
	}
	if decl == nil || value == nil || decl.Type() != "function_declarator" || value.Type() != "initializer_list" {
		return nil
	}
	return value
}

// initList converts a brace list standing in for a function body. Nested
// lists are blocks and anything else is a plain statement.
func (c *converter) initList(parent scopetree.Handle, n *sitter.Node, role scopetree.Role) scopetree.Handle {
	h := c.add(parent, scopetree.KindBlock, role, n)
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "initializer_list":
			c.initList(h, child, scopetree.RoleStmt)
		case "comment":
		default:
			s := c.add(h, scopetree.KindStatement, scopetree.RoleStmt, child)
			c.lambdas(s, child)
		}
	}
	return h
}

func (c *converter) block(parent scopetree.Handle, n *sitter.Node, role scopetree.Role) scopetree.Handle {
	h := c.add(parent, scopetree.KindBlock, role, n)
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c.stmt(h, n.NamedChild(i), scopetree.RoleStmt)
	}
	return h
}

func (c *converter) stmt(parent scopetree.Handle, n *sitter.Node, role scopetree.Role) scopetree.Handle {
	switch n.Type() {
	case "compound_statement":
		return c.block(parent, n, role)

	case "if_statement":
		h := c.add(parent, scopetree.KindIf, role, n)
		c.condition(h, n.ChildByFieldName("condition"))
		if then := n.ChildByFieldName("consequence"); then != nil {
			c.stmt(h, then, scopetree.RoleThen)
		}
		if alt := n.ChildByFieldName("alternative"); alt != nil {
			if alt.Type() == "else_clause" {
				alt = firstNamed(alt)
			}
			// "else ;" has no statement to run
			if alt != nil && !isEmptyStatement(alt) {
				c.stmt(h, alt, scopetree.RoleElse)
			}
		}
		return h

	case "for_statement":
		return c.loop(parent, n, role, scopetree.ForLoop)
	case "while_statement":
		return c.loop(parent, n, role, scopetree.WhileLoop)
	case "do_statement":
		return c.loop(parent, n, role, scopetree.DoWhileLoop)

	case "for_range_loop":
		h := c.add(parent, scopetree.KindLoop, role, n)
		c.b.Node(h).Loop = scopetree.RangeLoop
		if right := n.ChildByFieldName("right"); right != nil {
			c.expr(h, right, scopetree.RoleRange)
		}
		if body := n.ChildByFieldName("body"); body != nil {
			c.stmt(h, body, scopetree.RoleBody)
		}
		return h

	case "switch_statement":
		h := c.add(parent, scopetree.KindSwitch, role, n)
		c.condition(h, n.ChildByFieldName("condition"))
		if body := n.ChildByFieldName("body"); body != nil {
			c.stmt(h, body, scopetree.RoleBody)
		}
		return h

	case "case_statement":
		h := c.add(parent, scopetree.KindCase, role, n)
		value := n.ChildByFieldName("value")
		if value != nil {
			c.expr(h, value, scopetree.RoleValue)
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			if value != nil && sameNode(child, value) {
				continue
			}
			c.stmt(h, child, scopetree.RoleStmt)
		}
		return h

	case "break_statement", "continue_statement", "return_statement", "goto_statement":
		h := c.add(parent, scopetree.KindBranch, role, n)
		c.b.Node(h).Branch = scopetree.ParseBranchKind(strings.TrimSuffix(n.Type(), "_statement"))
		c.lambdas(h, n)
		return h

	case "labeled_statement":
		h := c.add(parent, scopetree.KindLabel, role, n)
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			if child.Type() == "statement_identifier" {
				continue
			}
			c.stmt(h, child, scopetree.RoleStmt)
		}
		return h

	case "comment":
		return scopetree.NoHandle

	case "ERROR":
		return c.add(parent, scopetree.KindUnknown, role, n)

	default:
		h := c.add(parent, scopetree.KindStatement, role, n)
		c.lambdas(h, n)
		return h
	}
}

func (c *converter) loop(parent scopetree.Handle, n *sitter.Node, role scopetree.Role, kind scopetree.LoopKind) scopetree.Handle {
	h := c.add(parent, scopetree.KindLoop, role, n)
	c.b.Node(h).Loop = kind
	if body := n.ChildByFieldName("body"); body != nil {
		c.stmt(h, body, scopetree.RoleBody)
	}
	if cond := n.ChildByFieldName("condition"); cond != nil {
		c.lambdas(h, cond)
	}
	return h
}

// condition unwraps the parentheses around an if or switch condition. A
// C++17 init statement becomes the init slot.
func (c *converter) condition(parent scopetree.Handle, n *sitter.Node) {
	if n == nil {
		return
	}
	if n.Type() == "condition_clause" {
		if init := n.ChildByFieldName("initializer"); init != nil {
			c.stmt(parent, init, scopetree.RoleInit)
		}
		if value := n.ChildByFieldName("value"); value != nil {
			n = value
		} else if inner := firstNamed(n); inner != nil {
			n = inner
		}
	}
	c.expr(parent, n, scopetree.RoleCond)
}

var comparisons = map[string]bool{
	"==": true,
	"!=": true,
	"<":  true,
	">":  true,
	"<=": true,
	">=": true,
}

func (c *converter) expr(parent scopetree.Handle, n *sitter.Node, role scopetree.Role) scopetree.Handle {
	n = unparen(n)
	h := c.b.Add(parent, scopetree.Node{Kind: scopetree.KindExpression, Role: role, Pos: pos(n)})
	node := c.b.Node(h)

	switch n.Type() {
	case "identifier", "qualified_identifier", "this", "field_expression":
		if c.isPath(n) {
			node.Op = scopetree.ExprPath
			node.Text = c.text(n)
			return h
		}

	case "number_literal", "true", "false", "nullptr", "string_literal", "char_literal":
		node.Op = scopetree.ExprLiteral
		node.Text = c.text(n)
		return h

	case "unary_expression":
		op := n.ChildByFieldName("operator")
		arg := n.ChildByFieldName("argument")
		if op != nil && arg != nil && (op.Type() == "!" || op.Type() == "not") {
			node.Op = scopetree.ExprNot
			c.expr(h, arg, scopetree.RoleValue)
			return h
		}

	case "binary_expression":
		op := n.ChildByFieldName("operator")
		left, right := n.ChildByFieldName("left"), n.ChildByFieldName("right")
		if op != nil && left != nil && right != nil && comparisons[op.Type()] {
			node.Op = scopetree.ExprCompare
			node.Name = op.Type()
			c.expr(h, left, scopetree.RoleValue)
			c.expr(h, right, scopetree.RoleValue)
			return h
		}

	case "call_expression":
		fun := n.ChildByFieldName("function")
		args := n.ChildByFieldName("arguments")
		if fun == nil {
			break
		}
		switch fun.Type() {
		case "identifier", "qualified_identifier":
			node.Op = scopetree.ExprCall
			node.Name = c.text(fun)
			c.args(h, args)
			return h
		case "field_expression":
			recv, field := fun.ChildByFieldName("argument"), fun.ChildByFieldName("field")
			if recv == nil || field == nil {
				break
			}
			node.Op = scopetree.ExprMethodCall
			node.Name = c.text(field)
			c.expr(h, recv, scopetree.RoleValue)
			c.args(h, args)
			return h
		}
	}

	node.Text = c.text(n)
	c.lambdas(h, n)
	return h
}

func (c *converter) args(parent scopetree.Handle, list *sitter.Node) {
	if list == nil {
		return
	}
	for i := 0; i < int(list.NamedChildCount()); i++ {
		arg := list.NamedChild(i)
		if arg.Type() == "comment" {
			continue
		}
		c.expr(parent, arg, scopetree.RoleValue)
	}
}

// isPath reports whether n is an identifier or a member access chain on one.
func (c *converter) isPath(n *sitter.Node) bool {
	switch n.Type() {
	case "identifier", "qualified_identifier", "this":
		return true
	case "field_expression":
		arg := n.ChildByFieldName("argument")
		return arg != nil && c.isPath(unparen(arg))
	default:
		return false
	}
}

// lambdas attaches the lambda expressions found under n, outermost first.
func (c *converter) lambdas(parent scopetree.Handle, n *sitter.Node) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() != "lambda_expression" {
			c.lambdas(parent, child)
			continue
		}
		h := c.add(parent, scopetree.KindLambda, scopetree.RoleValue, child)
		if body := child.ChildByFieldName("body"); body != nil {
			c.block(h, body, scopetree.RoleBody)
		}
	}
}

func hasLambda(n *sitter.Node) bool {
	if n.Type() == "lambda_expression" {
		return true
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if hasLambda(n.NamedChild(i)) {
			return true
		}
	}
	return false
}

func unparen(n *sitter.Node) *sitter.Node {
	for n.Type() == "parenthesized_expression" {
		inner := firstNamed(n)
		if inner == nil {
			return n
		}
		n = inner
	}
	return n
}

// firstNamed returns the first named child that is not a comment.
func firstNamed(n *sitter.Node) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if child := n.NamedChild(i); child.Type() != "comment" {
			return child
		}
	}
	return nil
}

// isEmptyStatement reports whether n is a lone ";".
func isEmptyStatement(n *sitter.Node) bool {
	return n.Type() == "expression_statement" && n.NamedChildCount() == 0
}

func sameNode(a, b *sitter.Node) bool {
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}
