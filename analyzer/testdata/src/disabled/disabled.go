package disabled

func f() {
	x := 1
	{
		x++
	}
	println(x)
}

func g(a, b bool) {
	if a { // want "CollapsibleIfStatements"
		if b {
			println()
		}
	}
}
