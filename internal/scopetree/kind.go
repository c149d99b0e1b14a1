package scopetree

// Kind is the syntactic category of a node.
type Kind uint8

const (
	KindUnknown Kind = iota

	// KindUnit is the root of every tree (one translation unit or file).
	KindUnit

	// KindFunction is a named function or method. Its body has RoleBody.
	KindFunction

	// KindLambda is a function literal nested inside a statement.
	KindLambda

	// KindBlock is a braced compound statement.
	KindBlock

	// KindStatement is any statement the rules do not look into.
	KindStatement

	KindIf
	KindSwitch

	// KindCase is a case or default label together with its statement list.
	KindCase

	KindLoop

	// KindBranch is break, continue, return or goto.
	KindBranch

	// KindLabel is a labeled statement. The statement is its only child.
	KindLabel

	KindExpression
)

var kindNames = [...]string{
	KindUnknown:    "Unknown",
	KindUnit:       "Unit",
	KindFunction:   "Function",
	KindLambda:     "Lambda",
	KindBlock:      "Block",
	KindStatement:  "Statement",
	KindIf:         "If",
	KindSwitch:     "Switch",
	KindCase:       "Case",
	KindLoop:       "Loop",
	KindBranch:     "Branch",
	KindLabel:      "Label",
	KindExpression: "Expression",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// ParseKind returns the kind with the given name, or KindUnknown.
func ParseKind(name string) Kind {
	for k, n := range kindNames {
		if n == name {
			return Kind(k)
		}
	}
	return KindUnknown
}

// IsStatement reports whether nodes of this kind can appear in a statement list.
func (k Kind) IsStatement() bool {
	switch k {
	case KindBlock, KindStatement, KindIf, KindSwitch, KindLoop, KindBranch, KindLabel:
		return true
	default:
		return false
	}
}

// Role is the grammar slot a node occupies within its parent.
type Role uint8

const (
	// RoleStmt is an entry of a statement list (block, case or unit).
	RoleStmt Role = iota

	// RoleBody is the mandatory body of a function, lambda, loop or switch.
	RoleBody

	// RoleCond is the condition of an if.
	RoleCond

	RoleThen
	RoleElse

	// RoleRange is the container a range loop iterates over.
	RoleRange

	// RoleValue is an operand of an expression, or a case value.
	RoleValue

	// RoleInit is the init statement of an if, switch or loop header.
	RoleInit
)

var roleNames = [...]string{
	RoleStmt:  "Stmt",
	RoleBody:  "Body",
	RoleCond:  "Cond",
	RoleThen:  "Then",
	RoleElse:  "Else",
	RoleRange: "Range",
	RoleValue: "Value",
	RoleInit:  "Init",
}

func (r Role) String() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}
	return "Stmt"
}

// ParseRole returns the role with the given name. Unknown names map to RoleStmt.
func ParseRole(name string) Role {
	for r, n := range roleNames {
		if n == name {
			return Role(r)
		}
	}
	return RoleStmt
}

// IsMandatory reports whether a block in this role is required by the grammar.
func (r Role) IsMandatory() bool {
	switch r {
	case RoleBody, RoleThen, RoleElse:
		return true
	default:
		return false
	}
}

// BranchKind distinguishes the branching statements.
type BranchKind uint8

const (
	NoBranch BranchKind = iota

	// Break leaves the innermost loop or switch.
	Break

	// Continue starts the next iteration of the innermost loop.
	Continue

	// Return leaves the current function.
	Return

	// Goto jumps to a label.
	Goto
)

func (k BranchKind) String() string {
	switch k {
	case Break:
		return "break"
	case Continue:
		return "continue"
	case Return:
		return "return"
	case Goto:
		return "goto"
	default:
		return ""
	}
}

// ParseBranchKind returns the branch kind for a keyword.
func ParseBranchKind(keyword string) BranchKind {
	switch keyword {
	case "break":
		return Break
	case "continue":
		return Continue
	case "return":
		return Return
	case "goto":
		return Goto
	default:
		return NoBranch
	}
}

// LoopKind distinguishes the loop statements.
type LoopKind uint8

const (
	NoLoop LoopKind = iota
	ForLoop
	WhileLoop
	DoWhileLoop

	// RangeLoop iterates over a container. Its RoleRange child is the container.
	RangeLoop
)

func (k LoopKind) String() string {
	switch k {
	case ForLoop:
		return "for"
	case WhileLoop:
		return "while"
	case DoWhileLoop:
		return "do"
	case RangeLoop:
		return "range"
	default:
		return ""
	}
}

// ParseLoopKind returns the loop kind for a keyword as produced by String.
func ParseLoopKind(keyword string) LoopKind {
	switch keyword {
	case "for":
		return ForLoop
	case "while":
		return WhileLoop
	case "do":
		return DoWhileLoop
	case "range":
		return RangeLoop
	default:
		return NoLoop
	}
}

// ExprOp is the shape of an expression node.
type ExprOp uint8

const (
	// ExprOther is any expression whose structure is not modelled.
	ExprOther ExprOp = iota

	// ExprPath is an identifier or a chain of field selections on one (a, a.b, this->v).
	ExprPath

	// ExprCall is a free function call. Its children are the arguments.
	ExprCall

	// ExprMethodCall is a method call. Its first child is the receiver,
	// the rest are the arguments.
	ExprMethodCall

	// ExprNot is a logical negation of its only child.
	ExprNot

	// ExprCompare is a binary comparison. Name holds the operator.
	ExprCompare

	// ExprLiteral is a constant. Text holds its spelling.
	ExprLiteral
)

var exprOpNames = [...]string{
	ExprOther:      "Other",
	ExprPath:       "Path",
	ExprCall:       "Call",
	ExprMethodCall: "MethodCall",
	ExprNot:        "Not",
	ExprCompare:    "Compare",
	ExprLiteral:    "Literal",
}

func (op ExprOp) String() string {
	if int(op) < len(exprOpNames) {
		return exprOpNames[op]
	}
	return "Other"
}

// ParseExprOp returns the operation with the given name, or ExprOther.
func ParseExprOp(name string) ExprOp {
	for op, n := range exprOpNames {
		if n == name {
			return ExprOp(op)
		}
	}
	return ExprOther
}
