package rules

import (
	"github.com/gnolang/scopelint/internal/scopetree"
	tt "github.com/gnolang/scopelint/internal/types"
)

const collapsibleIfID = "CollapsibleIfStatements"

// CollapsibleIf reports an if whose braced body is nothing but another
// braced if, neither of them having an else.
var CollapsibleIf = Rule{
	ID:       collapsibleIfID,
	Doc:      "Nested if statements that can be merged",
	Kinds:    []scopetree.Kind{scopetree.KindIf},
	Check:    checkCollapsibleIf,
	Severity: tt.SeverityWarning,
}

func checkCollapsibleIf(tree *scopetree.Tree, outer scopetree.Handle) []tt.Finding {
	if !isPlainIf(tree, outer) {
		return nil
	}
	then := body(tree, outer, scopetree.RoleThen)
	if len(then) != 1 {
		return nil
	}
	inner := then[0]
	if tree.Kind(inner) != scopetree.KindIf || !isPlainIf(tree, inner) {
		return nil
	}
	return []tt.Finding{finding(tree, outer, collapsibleIfID, "These two if statements can be collapsed into one.")}
}

// isPlainIf reports whether h has a braced then-branch and neither an else nor
// an init statement.
func isPlainIf(tree *scopetree.Tree, h scopetree.Handle) bool {
	return !tree.Child(h, scopetree.RoleElse).Valid() &&
		!tree.Child(h, scopetree.RoleInit).Valid() &&
		hasBlockSlot(tree, h, scopetree.RoleThen)
}

func hasBlockSlot(tree *scopetree.Tree, h scopetree.Handle, role scopetree.Role) bool {
	slot := tree.Child(h, role)
	return slot.Valid() && tree.Kind(slot) == scopetree.KindBlock
}
