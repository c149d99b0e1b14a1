package a

func tail(xs []int) {
	for _, x := range xs {
		if x == 0 {
			break
		}
		continue // want "AvoidBranchingStatementAsLastInLoop: Branching statement as the last statement inside a loop is very confusing"
	}
}

func guarded(items []int) {
	if len(items) > 0 { // want "UnnecessaryEmptyCondition"
		for _, it := range items {
			println(it)
		}
	}
}

func nested() {
	x := 1
	{ // want "NestedBlocks"
		x++
	}
	println(x)
}

func collapsible(a, b bool) {
	if a { // want "CollapsibleIfStatements: These two if statements can be collapsed into one"
		if b {
			println()
		}
	}
}

func suppressed() {
	x := 1
	// suppress NestedBlocks
	{
		x++
	}
	println(x)
}

func clean(items []int) {
	if len(items) > 0 {
		println(len(items))
	}
	for _, it := range items {
		if it > 1 {
			break
		}
		println(it)
	}
}
