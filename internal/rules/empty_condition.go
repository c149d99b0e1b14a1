package rules

import (
	"fmt"

	"github.com/gnolang/scopelint/internal/scopetree"
	tt "github.com/gnolang/scopelint/internal/types"
)

const unnecessaryEmptyConditionID = "UnnecessaryEmptyCondition"

// UnnecessaryEmptyCondition reports an emptiness check whose only job is to
// guard a loop over the same container.
var UnnecessaryEmptyCondition = Rule{
	ID:    unnecessaryEmptyConditionID,
	Doc:   "Emptiness check guarding a loop over the same container",
	Kinds: []scopetree.Kind{scopetree.KindIf},
	Check: checkUnnecessaryEmptyCondition,
}

var (
	emptinessMethods = map[string]bool{"empty": true, "isEmpty": true, "IsEmpty": true, "Empty": true}
	emptinessFuncs   = map[string]bool{"empty": true, "std::empty": true}
	sizeMethods      = map[string]bool{"size": true, "length": true, "Len": true}
	sizeFuncs        = map[string]bool{"len": true, "size": true, "std::size": true}
)

func checkUnnecessaryEmptyCondition(tree *scopetree.Tree, ifStmt scopetree.Handle) []tt.Finding {
	if tree.Child(ifStmt, scopetree.RoleInit).Valid() || hasNontrivialElse(tree, ifStmt) {
		return nil
	}
	cond := tree.Child(ifStmt, scopetree.RoleCond)
	if !cond.Valid() {
		return nil
	}
	receiver, isEmpty, ok := emptinessPredicate(tree, cond)
	if !ok {
		return nil
	}

	then := body(tree, ifStmt, scopetree.RoleThen)
	if len(then) != 1 || !iterates(tree, then[0], receiver) {
		return nil
	}

	msg := fmt.Sprintf("Unnecessary check for emptiness of '%s'; the loop does nothing on an empty container.", receiver)
	if isEmpty {
		msg = fmt.Sprintf("Loop over '%s' is guarded by a check that '%s' is empty, so it never runs.", receiver, receiver)
	}
	return []tt.Finding{finding(tree, ifStmt, unnecessaryEmptyConditionID, msg)}
}

// emptinessPredicate recognizes an expression testing whether a container is
// empty. It returns the receiver path and true when the expression holds for
// an empty container, false when it holds for a non-empty one.
func emptinessPredicate(tree *scopetree.Tree, h scopetree.Handle) (string, bool, bool) {
	n := tree.Node(h)
	if n.Kind != scopetree.KindExpression {
		return "", false, false
	}
	operands := exprOperands(tree, h)

	switch n.Op {
	case scopetree.ExprNot:
		if len(operands) != 1 {
			return "", false, false
		}
		recv, isEmpty, ok := emptinessPredicate(tree, operands[0])
		return recv, !isEmpty, ok

	case scopetree.ExprMethodCall:
		if !emptinessMethods[n.Name] || len(operands) != 1 {
			return "", false, false
		}
		recv, ok := pathText(tree, operands[0])
		return recv, true, ok

	case scopetree.ExprCall:
		if !emptinessFuncs[n.Name] || len(operands) != 1 {
			return "", false, false
		}
		recv, ok := pathText(tree, operands[0])
		return recv, true, ok

	case scopetree.ExprCompare:
		if len(operands) != 2 {
			return "", false, false
		}
		if recv, ok := sizeOf(tree, operands[0]); ok && isZero(tree, operands[1]) {
			return compareWithZero(recv, n.Name, false)
		}
		if recv, ok := sizeOf(tree, operands[1]); ok && isZero(tree, operands[0]) {
			return compareWithZero(recv, n.Name, true)
		}
	}
	return "", false, false
}

// compareWithZero interprets "size op 0", or "0 op size" when swapped.
func compareWithZero(recv, op string, swapped bool) (string, bool, bool) {
	if swapped {
		switch op {
		case "<":
			op = ">"
		case ">":
			op = "<"
		}
	}
	switch op {
	case "==":
		return recv, true, true
	case "!=", ">":
		return recv, false, true
	default:
		return "", false, false
	}
}

// sizeOf recognizes len(R), size(R), R.size() and friends.
func sizeOf(tree *scopetree.Tree, h scopetree.Handle) (string, bool) {
	n := tree.Node(h)
	if n.Kind != scopetree.KindExpression {
		return "", false
	}
	operands := exprOperands(tree, h)
	switch {
	case n.Op == scopetree.ExprCall && sizeFuncs[n.Name] && len(operands) == 1:
		return pathText(tree, operands[0])
	case n.Op == scopetree.ExprMethodCall && sizeMethods[n.Name] && len(operands) == 1:
		return pathText(tree, operands[0])
	}
	return "", false
}

func isZero(tree *scopetree.Tree, h scopetree.Handle) bool {
	n := tree.Node(h)
	return n.Kind == scopetree.KindExpression && n.Op == scopetree.ExprLiteral && n.Text == "0"
}

// pathText returns the spelling of a plain path expression. Anything more
// complex is declined rather than guessed at.
func pathText(tree *scopetree.Tree, h scopetree.Handle) (string, bool) {
	n := tree.Node(h)
	if n.Kind != scopetree.KindExpression || n.Op != scopetree.ExprPath || n.Text == "" {
		return "", false
	}
	return n.Text, true
}

// iterates reports whether h is a range loop over the container spelled recv.
func iterates(tree *scopetree.Tree, h scopetree.Handle, recv string) bool {
	n := tree.Node(h)
	if n.Kind != scopetree.KindLoop || n.Loop != scopetree.RangeLoop {
		return false
	}
	rng := tree.Child(h, scopetree.RoleRange)
	if !rng.Valid() {
		return false
	}
	text, ok := pathText(tree, rng)
	return ok && text == recv
}

func exprOperands(tree *scopetree.Tree, h scopetree.Handle) []scopetree.Handle {
	var out []scopetree.Handle
	for _, c := range tree.Children(h) {
		if tree.Kind(c) == scopetree.KindExpression && tree.Role(c) == scopetree.RoleValue {
			out = append(out, c)
		}
	}
	return out
}
