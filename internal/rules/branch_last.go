package rules

import (
	"github.com/gnolang/scopelint/internal/scopetree"
	tt "github.com/gnolang/scopelint/internal/types"
)

const branchAsLastInLoopID = "AvoidBranchingStatementAsLastInLoop"

// BranchAsLastInLoop reports a break, continue, return or goto in tail position
// of a loop body when an earlier if in the same body does nothing but branch.
var BranchAsLastInLoop = Rule{
	ID:    branchAsLastInLoopID,
	Doc:   "Branching statement as the last statement inside a loop",
	Kinds: []scopetree.Kind{scopetree.KindLoop},
	Check: checkBranchAsLastInLoop,
}

func checkBranchAsLastInLoop(tree *scopetree.Tree, loop scopetree.Handle) []tt.Finding {
	stmts := body(tree, loop, scopetree.RoleBody)
	if len(stmts) < 2 {
		return nil
	}

	last := stmts[len(stmts)-1]
	if tree.Kind(last) != scopetree.KindBranch {
		return nil
	}

	for _, s := range stmts[:len(stmts)-1] {
		if isBranchOnlyIf(tree, s) {
			return []tt.Finding{finding(tree, last, branchAsLastInLoopID,
				"Branching statement as the last statement inside a loop is very confusing.")}
		}
	}
	return nil
}

// isBranchOnlyIf reports whether h is an if without else whose body is a
// single branching statement, ignoring redundant braces.
func isBranchOnlyIf(tree *scopetree.Tree, h scopetree.Handle) bool {
	if tree.Kind(h) != scopetree.KindIf || hasNontrivialElse(tree, h) {
		return false
	}
	then := body(tree, h, scopetree.RoleThen)
	return len(then) == 1 && tree.Kind(then[0]) == scopetree.KindBranch
}
