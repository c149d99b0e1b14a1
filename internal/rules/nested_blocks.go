package rules

import (
	"github.com/gnolang/scopelint/internal/scopetree"
	tt "github.com/gnolang/scopelint/internal/types"
)

const nestedBlocksID = "NestedBlocks"

// NestedBlocks reports braces that open a block in statement position of
// another block or case, where no construct requires them.
var NestedBlocks = Rule{
	ID:    nestedBlocksID,
	Doc:   "Redundant nested block",
	Kinds: []scopetree.Kind{scopetree.KindBlock},
	Check: checkNestedBlocks,
}

func checkNestedBlocks(tree *scopetree.Tree, block scopetree.Handle) []tt.Finding {
	if !tree.IsRedundantBlock(block) {
		return nil
	}
	msg := "Block is nested without need; its braces add no scope."
	if tree.IsEmptyBlock(block) {
		msg = "Empty nested block has no effect."
	}
	return []tt.Finding{finding(tree, block, nestedBlocksID, msg)}
}
