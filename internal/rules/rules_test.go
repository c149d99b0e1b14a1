package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/scopelint/internal/scopetree"
	tt "github.com/gnolang/scopelint/internal/types"
)

func TestBranchAsLastInLoop(t *testing.T) {
	t.Parallel()

	continueIf := func(line int) n {
		return iff("", line, 9, other(), blk("", line, 20, br("", scopetree.Continue, line+1, 13)), nil)
	}

	tests := []struct {
		name string
		body n
		want []int // lines
	}{
		{
			name: "if continue then break",
			body: blk("", 2, 35, continueIf(3), br("", scopetree.Break, 7, 9)),
			want: []int{7},
		},
		{
			name: "if continue then continue",
			body: blk("", 2, 35, continueIf(3), br("", scopetree.Continue, 7, 9)),
			want: []int{7},
		},
		{
			name: "if continue then return",
			body: blk("", 2, 35, continueIf(3), br("", scopetree.Return, 7, 9)),
			want: []int{7},
		},
		{
			name: "trailing branch inside redundant braces",
			body: blk("", 2, 35, continueIf(3), blk("", 7, 9, br("", scopetree.Break, 7, 11))),
			want: []int{7},
		},
		{
			name: "if body is an unbraced branch",
			body: blk("", 2, 35,
				iff("", 3, 9, other(), br("", scopetree.Continue, 3, 20), nil),
				br("", scopetree.Break, 4, 9)),
			want: []int{4},
		},
		{
			name: "if body with redundant braces",
			body: blk("", 2, 35,
				iff("", 3, 9, other(), blk("", 3, 20, blk("", 3, 22, br("", scopetree.Continue, 3, 24))), nil),
				br("", scopetree.Break, 4, 9)),
			want: []int{4},
		},
		{
			name: "last statement is not a branch",
			body: blk("", 2, 35, continueIf(3), stmt(7, 9)),
		},
		{
			name: "no preceding if",
			body: blk("", 2, 35, stmt(3, 9), br("", scopetree.Break, 4, 9)),
		},
		{
			name: "single statement body",
			body: blk("", 2, 35, br("", scopetree.Break, 3, 9)),
		},
		{
			name: "if does more than branch",
			body: blk("", 2, 35,
				iff("", 3, 9, other(), blk("", 3, 20, stmt(4, 13), br("", scopetree.Continue, 5, 13)), nil),
				br("", scopetree.Break, 7, 9)),
		},
		{
			name: "if with else",
			body: blk("", 2, 35,
				iff("", 3, 9, other(), blk("", 3, 20, br("", scopetree.Continue, 4, 13)), ptr(blk("", 5, 16, stmt(6, 13)))),
				br("", scopetree.Break, 7, 9)),
		},
		{
			name: "if with empty else",
			body: blk("", 2, 35,
				iff("", 3, 9, other(), blk("", 3, 20, br("", scopetree.Continue, 4, 13)), ptr(blk("", 5, 16))),
				br("", scopetree.Break, 7, 9)),
			want: []int{7},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			tree, _ := build(t, unit(fn(1, blk("", 1, 10,
				loop("", scopetree.ForLoop, 2, 5, nil, tc.body)))))

			got := runRule(tree, BranchAsLastInLoop)
			var lines []int
			for _, f := range got {
				assert.Equal(t, branchAsLastInLoopID, f.Rule)
				lines = append(lines, f.Line)
			}
			assert.Equal(t, tc.want, lines)
		})
	}
}

func TestBranchAsLastInLoopIgnoresSwitch(t *testing.T) {
	t.Parallel()
	// for (...) { switch (x) { case 1: if (c) { break; } break; } }
	tree, _ := build(t, unit(fn(1, blk("", 1, 10,
		loop("", scopetree.WhileLoop, 2, 5, nil, blk("", 2, 20,
			sw(3, 9, cas(4, 9,
				iff("", 5, 13, other(), blk("", 5, 20, br("", scopetree.Break, 5, 22)), nil),
				br("", scopetree.Break, 6, 13)))))))))

	assert.Empty(t, runRule(tree, BranchAsLastInLoop))
}

func TestNestedBlocks(t *testing.T) {
	t.Parallel()

	// switch (x) {
	//     case 1: break;
	//     case 2: {} break;
	//     case 3:
	//     {
	//         {
	//         }
	//         break;
	//     }
	// }
	tree, tags := build(t, unit(fn(1, blk("", 2, 1,
		sw(3, 5,
			cas(5, 9, br("", scopetree.Break, 5, 17)),
			cas(6, 9, blk("case2", 6, 17), br("", scopetree.Break, 6, 20)),
			cas(7, 9, blk("case3", 8, 9,
				blk("inner", 10, 13),
				br("", scopetree.Break, 12, 13)))),
		iff("", 15, 5, other(), blk("then", 15, 12, blk("sole", 17, 9, br("", scopetree.Return, 17, 11))), nil),
	))))

	got := runRule(tree, NestedBlocks)
	require.Len(t, got, 3)

	assert.Equal(t, tt.Finding{Rule: nestedBlocksID, Unit: "test.cpp", Line: 6, Column: 17, Message: "Empty nested block has no effect."}, got[0])
	assert.Equal(t, 10, got[1].Line)
	assert.Equal(t, 13, got[1].Column)
	assert.Equal(t, 17, got[2].Line)
	assert.Equal(t, "Block is nested without need; its braces add no scope.", got[2].Message)

	for _, f := range got {
		assert.NotEqual(t, tree.Position(tags["case3"]).Line, f.Line)
		assert.NotEqual(t, tree.Position(tags["then"]).Line, f.Line)
	}
}

func TestNestedBlocksMandatoryBodies(t *testing.T) {
	t.Parallel()
	tree, _ := build(t, unit(fn(1, blk("", 1, 10,
		loop("", scopetree.ForLoop, 2, 5, nil, blk("", 2, 20, stmt(3, 9))),
		iff("", 4, 5, other(), blk("", 4, 12, stmt(5, 9)), ptr(blk("", 6, 12, stmt(7, 9)))),
		sw(8, 5, cas(9, 9, stmt(9, 17))),
	))))

	assert.Empty(t, runRule(tree, NestedBlocks))
}

func TestNestedBlocksIgnoresLabeledBlock(t *testing.T) {
	t.Parallel()
	label := n{node: scopetree.Node{Kind: scopetree.KindLabel, Pos: at(2, 1)}, kids: []n{blk("", 2, 8, stmt(3, 9))}}
	tree, _ := build(t, unit(fn(1, blk("", 1, 10, label))))

	assert.Empty(t, runRule(tree, NestedBlocks))
}

func TestUnnecessaryEmptyCondition(t *testing.T) {
	t.Parallel()

	rangeLoop := func(container string) n {
		r := path(container)
		return loop("", scopetree.RangeLoop, 5, 9, &r, blk("", 6, 9, stmt(7, 13)))
	}

	tests := []struct {
		name    string
		cond    n
		then    n
		els     *n
		want    bool
		isEmpty bool
	}{
		{name: "v.empty()", cond: method("empty", path("v")), then: blk("", 4, 5, rangeLoop("v")), want: true, isEmpty: true},
		{name: "!v.empty()", cond: not(method("empty", path("v"))), then: blk("", 4, 5, rangeLoop("v")), want: true},
		{name: "v.isEmpty()", cond: method("isEmpty", path("v")), then: blk("", 4, 5, rangeLoop("v")), want: true, isEmpty: true},
		{name: "std::empty(v)", cond: call("std::empty", path("v")), then: blk("", 4, 5, rangeLoop("v")), want: true, isEmpty: true},
		{name: "len(v) > 0", cond: cmp(">", call("len", path("v")), lit("0")), then: blk("", 4, 5, rangeLoop("v")), want: true},
		{name: "len(v) != 0", cond: cmp("!=", call("len", path("v")), lit("0")), then: blk("", 4, 5, rangeLoop("v")), want: true},
		{name: "0 < v.size()", cond: cmp("<", lit("0"), method("size", path("v"))), then: blk("", 4, 5, rangeLoop("v")), want: true},
		{name: "len(v) == 0", cond: cmp("==", call("len", path("v")), lit("0")), then: blk("", 4, 5, rangeLoop("v")), want: true, isEmpty: true},
		{name: "s.items path", cond: not(method("empty", path("s.items"))), then: blk("", 4, 5, rangeLoop("s.items")), want: true},
		{name: "redundant braces around loop", cond: not(method("empty", path("v"))), then: blk("", 4, 5, blk("", 4, 7, rangeLoop("v"))), want: true},
		{name: "unbraced loop", cond: not(method("empty", path("v"))), then: rangeLoop("v"), want: true},
		{name: "empty else", cond: not(method("empty", path("v"))), then: blk("", 4, 5, rangeLoop("v")), els: ptr(blk("", 9, 12)), want: true},

		{name: "different container", cond: not(method("empty", path("v"))), then: blk("", 4, 5, rangeLoop("w"))},
		{name: "chained receiver", cond: not(method("empty", method("get", path("v")))), then: blk("", 4, 5, rangeLoop("v"))},
		{name: "not an emptiness method", cond: not(method("valid", path("v"))), then: blk("", 4, 5, rangeLoop("v"))},
		{name: "len(v) > 1", cond: cmp(">", call("len", path("v")), lit("1")), then: blk("", 4, 5, rangeLoop("v"))},
		{name: "len(v) < 0", cond: cmp("<", call("len", path("v")), lit("0")), then: blk("", 4, 5, rangeLoop("v"))},
		{name: "opaque condition", cond: other(), then: blk("", 4, 5, rangeLoop("v"))},
		{name: "loop plus statement", cond: not(method("empty", path("v"))), then: blk("", 4, 5, rangeLoop("v"), stmt(8, 9))},
		{name: "counting loop", cond: not(method("empty", path("v"))), then: blk("", 4, 5, loop("", scopetree.ForLoop, 5, 9, nil, blk("", 5, 30)))},
		{name: "non-trivial else", cond: not(method("empty", path("v"))), then: blk("", 4, 5, rangeLoop("v")), els: ptr(blk("", 9, 12, stmt(10, 9)))},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			tree, _ := build(t, unit(fn(1, blk("", 2, 1, iff("guard", 3, 5, tc.cond, tc.then, tc.els)))))

			got := runRule(tree, UnnecessaryEmptyCondition)
			if !tc.want {
				assert.Empty(t, got)
				return
			}
			require.Len(t, got, 1)
			assert.Equal(t, unnecessaryEmptyConditionID, got[0].Rule)
			assert.Equal(t, 3, got[0].Line)
			assert.Equal(t, 5, got[0].Column)
			if tc.isEmpty {
				assert.Contains(t, got[0].Message, "never runs")
			} else {
				assert.Contains(t, got[0].Message, "Unnecessary check for emptiness")
			}
		})
	}
}

func TestCollapsibleIf(t *testing.T) {
	t.Parallel()

	inner := func(els *n) n {
		return iff("", 3, 9, other(), blk("", 3, 16, stmt(4, 13)), els)
	}

	tests := []struct {
		name  string
		outer n
		want  bool
	}{
		{name: "collapsible", outer: iff("", 2, 5, other(), blk("", 2, 12, inner(nil)), nil), want: true},
		{name: "outer else", outer: iff("", 2, 5, other(), blk("", 2, 12, inner(nil)), ptr(blk("", 6, 12)))},
		{name: "inner else", outer: iff("", 2, 5, other(), blk("", 2, 12, inner(ptr(blk("", 5, 16)))), nil)},
		{name: "extra statement", outer: iff("", 2, 5, other(), blk("", 2, 12, inner(nil), stmt(6, 9)), nil)},
		{name: "unbraced inner body", outer: iff("", 2, 5, other(), blk("", 2, 12, iff("", 3, 9, other(), stmt(3, 16), nil)), nil)},
		{name: "unbraced outer body", outer: iff("", 2, 5, other(), inner(nil), nil)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			tree, _ := build(t, unit(fn(1, blk("", 1, 10, tc.outer))))
			got := runRule(tree, CollapsibleIf)
			if !tc.want {
				assert.Empty(t, got)
				return
			}
			require.Len(t, got, 1)
			assert.Equal(t, tt.Finding{
				Rule: collapsibleIfID, Unit: "test.cpp", Line: 2, Column: 5,
				Message: "These two if statements can be collapsed into one.",
			}, got[0])
		})
	}
}

func TestRegistry(t *testing.T) {
	t.Parallel()
	r := Default()

	assert.Equal(t, []string{
		"AvoidBranchingStatementAsLastInLoop",
		"CollapsibleIfStatements",
		"NestedBlocks",
		"UnnecessaryEmptyCondition",
	}, r.IDs())

	ifRules := r.ForKind(scopetree.KindIf)
	require.Len(t, ifRules, 2)
	assert.Equal(t, "CollapsibleIfStatements", ifRules[0].ID)
	assert.Empty(t, r.ForKind(scopetree.KindExpression))

	_, ok := r.Lookup("NestedBlocks")
	assert.True(t, ok)

	assert.Error(t, r.Register(NestedBlocks), "duplicate id")
	assert.Error(t, r.Register(Rule{ID: "NoCheck", Kinds: []scopetree.Kind{scopetree.KindIf}}))

	custom := Rule{
		ID:    "NoGoto",
		Kinds: []scopetree.Kind{scopetree.KindBranch},
		Check: func(tree *scopetree.Tree, h scopetree.Handle) []tt.Finding {
			if tree.Node(h).Branch == scopetree.Goto {
				return []tt.Finding{finding(tree, h, "NoGoto", "goto")}
			}
			return nil
		},
	}
	require.NoError(t, r.Register(custom))
	assert.Len(t, r.ForKind(scopetree.KindBranch), 1)
}
