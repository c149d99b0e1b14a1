package rules

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gnolang/scopelint/internal/scopetree"
	tt "github.com/gnolang/scopelint/internal/types"
)

// n describes a node for the test tree builder. tag, when set, names the
// resulting handle.
type n struct {
	tag  string
	node scopetree.Node
	kids []n
}

func at(line, col int) scopetree.Position { return scopetree.Position{Line: line, Column: col} }

func unit(kids ...n) n {
	return n{node: scopetree.Node{Kind: scopetree.KindUnit, Pos: at(1, 1)}, kids: kids}
}

func fn(line int, body n) n {
	body.node.Role = scopetree.RoleBody
	return n{node: scopetree.Node{Kind: scopetree.KindFunction, Pos: at(line, 1)}, kids: []n{body}}
}

func blk(tag string, line, col int, kids ...n) n {
	return n{tag: tag, node: scopetree.Node{Kind: scopetree.KindBlock, Pos: at(line, col)}, kids: kids}
}

func stmt(line, col int) n {
	return n{node: scopetree.Node{Kind: scopetree.KindStatement, Pos: at(line, col)}}
}

func br(tag string, kind scopetree.BranchKind, line, col int) n {
	return n{tag: tag, node: scopetree.Node{Kind: scopetree.KindBranch, Branch: kind, Pos: at(line, col)}}
}

func loop(tag string, kind scopetree.LoopKind, line, col int, rng *n, body n) n {
	body.node.Role = scopetree.RoleBody
	var kids []n
	if rng != nil {
		r := *rng
		r.node.Role = scopetree.RoleRange
		kids = append(kids, r)
	}
	kids = append(kids, body)
	return n{tag: tag, node: scopetree.Node{Kind: scopetree.KindLoop, Loop: kind, Pos: at(line, col)}, kids: kids}
}

func iff(tag string, line, col int, cond n, then n, els *n) n {
	cond.node.Role = scopetree.RoleCond
	then.node.Role = scopetree.RoleThen
	kids := []n{cond, then}
	if els != nil {
		e := *els
		e.node.Role = scopetree.RoleElse
		kids = append(kids, e)
	}
	return n{tag: tag, node: scopetree.Node{Kind: scopetree.KindIf, Pos: at(line, col)}, kids: kids}
}

func sw(line, col int, cases ...n) n {
	body := blk("", line, col+10, cases...)
	body.node.Role = scopetree.RoleBody
	return n{node: scopetree.Node{Kind: scopetree.KindSwitch, Pos: at(line, col)}, kids: []n{body}}
}

func cas(line, col int, kids ...n) n {
	return n{node: scopetree.Node{Kind: scopetree.KindCase, Pos: at(line, col)}, kids: kids}
}

func expr(op scopetree.ExprOp, name, text string, operands ...n) n {
	for i := range operands {
		operands[i].node.Role = scopetree.RoleValue
	}
	return n{node: scopetree.Node{Kind: scopetree.KindExpression, Op: op, Name: name, Text: text}, kids: operands}
}

func path(text string) n { return expr(scopetree.ExprPath, "", text) }

func lit(text string) n { return expr(scopetree.ExprLiteral, "", text) }

func other() n { return expr(scopetree.ExprOther, "", "foo(i)") }

func method(name string, recv n, args ...n) n {
	return expr(scopetree.ExprMethodCall, name, "", append([]n{recv}, args...)...)
}

func call(name string, args ...n) n { return expr(scopetree.ExprCall, name, "", args...) }

func not(x n) n { return expr(scopetree.ExprNot, "", "", x) }

func cmp(op string, l, r n) n { return expr(scopetree.ExprCompare, op, "", l, r) }

func build(t *testing.T, root n) (*scopetree.Tree, map[string]scopetree.Handle) {
	t.Helper()
	b := scopetree.NewBuilder("test.cpp")
	tags := map[string]scopetree.Handle{}
	var add func(parent scopetree.Handle, x n)
	add = func(parent scopetree.Handle, x n) {
		h := b.Add(parent, x.node)
		if x.tag != "" {
			tags[x.tag] = h
		}
		for _, k := range x.kids {
			add(h, k)
		}
	}
	add(scopetree.NoHandle, root)
	tree, err := b.Build()
	require.NoError(t, err)
	return tree, tags
}

// runRule applies rule to every node of a matching kind, the way the engine does.
func runRule(tree *scopetree.Tree, rule Rule) []tt.Finding {
	kinds := map[scopetree.Kind]bool{}
	for _, k := range rule.Kinds {
		kinds[k] = true
	}
	var out []tt.Finding
	tree.Walk(func(h scopetree.Handle) bool {
		if kinds[tree.Kind(h)] {
			out = append(out, rule.Check(tree, h)...)
		}
		return true
	})
	return out
}

func ptr(x n) *n { return &x }
