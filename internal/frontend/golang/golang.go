// Package golang builds scope trees from Go (and Gno) source files.
package golang

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"

	"github.com/gnolang/scopelint/internal/scopetree"
)

// Parse parses a Go source file and converts it.
func Parse(filename string, src []byte) (*scopetree.Tree, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, filename, src, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", filename, err)
	}
	return FromFile(fset, f)
}

// FromFile converts an already parsed file.
func FromFile(fset *token.FileSet, f *ast.File) (*scopetree.Tree, error) {
	filename := fset.Position(f.Package).Filename
	c := &converter{
		fset: fset,
		b:    scopetree.NewBuilder(filename),
	}

	root := c.b.Add(scopetree.NoHandle, scopetree.Node{Kind: scopetree.KindUnit, Pos: scopetree.Position{Line: 1, Column: 1}})
	for _, decl := range f.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if d.Body == nil {
				continue
			}
			fn := c.add(root, scopetree.KindFunction, scopetree.RoleStmt, d.Pos())
			c.block(fn, d.Body, scopetree.RoleBody)
		case *ast.GenDecl:
			if hasFuncLit(d) {
				h := c.add(root, scopetree.KindStatement, scopetree.RoleStmt, d.Pos())
				c.lambdas(h, d)
			}
		}
	}
	return c.b.Build()
}

type converter struct {
	fset *token.FileSet
	b    *scopetree.Builder
}

func (c *converter) pos(p token.Pos) scopetree.Position {
	position := c.fset.Position(p)
	return scopetree.Position{Line: position.Line, Column: position.Column}
}

func (c *converter) add(parent scopetree.Handle, kind scopetree.Kind, role scopetree.Role, p token.Pos) scopetree.Handle {
	return c.b.Add(parent, scopetree.Node{Kind: kind, Role: role, Pos: c.pos(p)})
}

func (c *converter) block(parent scopetree.Handle, b *ast.BlockStmt, role scopetree.Role) scopetree.Handle {
	h := c.add(parent, scopetree.KindBlock, role, b.Lbrace)
	c.stmts(h, b.List)
	return h
}

func (c *converter) stmts(parent scopetree.Handle, list []ast.Stmt) {
	for _, s := range list {
		c.stmt(parent, s, scopetree.RoleStmt)
	}
}

func (c *converter) stmt(parent scopetree.Handle, s ast.Stmt, role scopetree.Role) scopetree.Handle {
	switch s := s.(type) {
	case *ast.BlockStmt:
		return c.block(parent, s, role)

	case *ast.IfStmt:
		h := c.add(parent, scopetree.KindIf, role, s.If)
		if s.Init != nil {
			c.stmt(h, s.Init, scopetree.RoleInit)
		}
		c.expr(h, s.Cond, scopetree.RoleCond)
		c.block(h, s.Body, scopetree.RoleThen)
		if s.Else != nil {
			c.stmt(h, s.Else, scopetree.RoleElse)
		}
		return h

	case *ast.ForStmt:
		h := c.add(parent, scopetree.KindLoop, role, s.For)
		c.b.Node(h).Loop = scopetree.ForLoop
		if s.Init != nil {
			c.stmt(h, s.Init, scopetree.RoleInit)
		}
		if s.Cond != nil {
			c.expr(h, s.Cond, scopetree.RoleValue)
		}
		if s.Post != nil {
			c.stmt(h, s.Post, scopetree.RoleInit)
		}
		c.block(h, s.Body, scopetree.RoleBody)
		return h

	case *ast.RangeStmt:
		h := c.add(parent, scopetree.KindLoop, role, s.For)
		c.b.Node(h).Loop = scopetree.RangeLoop
		c.expr(h, s.X, scopetree.RoleRange)
		c.block(h, s.Body, scopetree.RoleBody)
		return h

	case *ast.SwitchStmt:
		h := c.add(parent, scopetree.KindSwitch, role, s.Switch)
		if s.Init != nil {
			c.stmt(h, s.Init, scopetree.RoleInit)
		}
		if s.Tag != nil {
			c.expr(h, s.Tag, scopetree.RoleValue)
		}
		c.block(h, s.Body, scopetree.RoleBody)
		return h

	case *ast.TypeSwitchStmt:
		h := c.add(parent, scopetree.KindSwitch, role, s.Switch)
		if s.Init != nil {
			c.stmt(h, s.Init, scopetree.RoleInit)
		}
		c.stmt(h, s.Assign, scopetree.RoleInit)
		c.block(h, s.Body, scopetree.RoleBody)
		return h

	case *ast.SelectStmt:
		h := c.add(parent, scopetree.KindSwitch, role, s.Select)
		c.block(h, s.Body, scopetree.RoleBody)
		return h

	case *ast.CaseClause:
		h := c.add(parent, scopetree.KindCase, role, s.Case)
		for _, e := range s.List {
			c.expr(h, e, scopetree.RoleValue)
		}
		c.stmts(h, s.Body)
		return h

	case *ast.CommClause:
		h := c.add(parent, scopetree.KindCase, role, s.Case)
		if s.Comm != nil {
			c.stmt(h, s.Comm, scopetree.RoleInit)
		}
		c.stmts(h, s.Body)
		return h

	case *ast.BranchStmt:
		kind := scopetree.ParseBranchKind(s.Tok.String())
		if kind == scopetree.NoBranch {
			// fallthrough
			return c.add(parent, scopetree.KindStatement, role, s.Pos())
		}
		h := c.add(parent, scopetree.KindBranch, role, s.Pos())
		c.b.Node(h).Branch = kind
		return h

	case *ast.ReturnStmt:
		h := c.add(parent, scopetree.KindBranch, role, s.Return)
		c.b.Node(h).Branch = scopetree.Return
		c.lambdas(h, s)
		return h

	case *ast.LabeledStmt:
		h := c.add(parent, scopetree.KindLabel, role, s.Pos())
		c.stmt(h, s.Stmt, scopetree.RoleStmt)
		return h

	case *ast.EmptyStmt:
		return scopetree.NoHandle

	default:
		h := c.add(parent, scopetree.KindStatement, role, s.Pos())
		c.lambdas(h, s)
		return h
	}
}

var comparisons = map[token.Token]bool{
	token.EQL: true,
	token.NEQ: true,
	token.LSS: true,
	token.GTR: true,
	token.LEQ: true,
	token.GEQ: true,
}

func (c *converter) expr(parent scopetree.Handle, e ast.Expr, role scopetree.Role) scopetree.Handle {
	e = ast.Unparen(e)
	h := c.b.Add(parent, scopetree.Node{Kind: scopetree.KindExpression, Role: role, Pos: c.pos(e.Pos())})
	n := c.b.Node(h)

	switch e := e.(type) {
	case *ast.Ident, *ast.SelectorExpr:
		if text, ok := pathOf(e); ok {
			n.Op = scopetree.ExprPath
			n.Text = text
			return h
		}

	case *ast.BasicLit:
		n.Op = scopetree.ExprLiteral
		n.Text = e.Value
		return h

	case *ast.UnaryExpr:
		if e.Op == token.NOT {
			n.Op = scopetree.ExprNot
			c.expr(h, e.X, scopetree.RoleValue)
			return h
		}

	case *ast.BinaryExpr:
		if comparisons[e.Op] {
			n.Op = scopetree.ExprCompare
			n.Name = e.Op.String()
			c.expr(h, e.X, scopetree.RoleValue)
			c.expr(h, e.Y, scopetree.RoleValue)
			return h
		}

	case *ast.CallExpr:
		switch fun := ast.Unparen(e.Fun).(type) {
		case *ast.Ident:
			n.Op = scopetree.ExprCall
			n.Name = fun.Name
			c.args(h, e.Args)
			return h
		case *ast.SelectorExpr:
			n.Op = scopetree.ExprMethodCall
			n.Name = fun.Sel.Name
			c.expr(h, fun.X, scopetree.RoleValue)
			c.args(h, e.Args)
			return h
		}
	}

	c.lambdas(h, e)
	return h
}

func (c *converter) args(parent scopetree.Handle, args []ast.Expr) {
	for _, a := range args {
		c.expr(parent, a, scopetree.RoleValue)
	}
}

// lambdas attaches every function literal found in n, without descending
// into the literals themselves.
func (c *converter) lambdas(parent scopetree.Handle, n ast.Node) {
	ast.Inspect(n, func(x ast.Node) bool {
		lit, ok := x.(*ast.FuncLit)
		if !ok {
			return true
		}
		h := c.add(parent, scopetree.KindLambda, scopetree.RoleValue, lit.Pos())
		c.block(h, lit.Body, scopetree.RoleBody)
		return false
	})
}

func hasFuncLit(n ast.Node) bool {
	found := false
	ast.Inspect(n, func(x ast.Node) bool {
		if _, ok := x.(*ast.FuncLit); ok {
			found = true
		}
		return !found
	})
	return found
}

// pathOf spells an identifier or a selector chain on one.
func pathOf(e ast.Expr) (string, bool) {
	switch e := e.(type) {
	case *ast.Ident:
		return e.Name, true
	case *ast.SelectorExpr:
		base, ok := pathOf(ast.Unparen(e.X))
		if !ok {
			return "", false
		}
		return base + "." + e.Sel.Name, true
	default:
		return "", false
	}
}
