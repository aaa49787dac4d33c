package lang

// Node is an element of the syntax tree.
type Node interface {
	Position() Position
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Program is a parsed script: an ordered sequence of statements.
type Program struct {
	Stmts []Stmt
}

// Position returns the position of the first statement.
func (p *Program) Position() Position {
	if len(p.Stmts) == 0 {
		return Position{}
	}

	return p.Stmts[0].Position()
}

type (
	// Block is a sequence of statements between INICIO and FIM.
	Block struct {
		Stmts []Stmt
		Pos   Position
	}

	// VarDecl declares and initializes a variable:
	// GUARDAR <Init> COMO <Name> COM <Type>.
	VarDecl struct {
		Name string
		Type Type
		Init Expr
		Pos  Position
	}

	// Assign replaces the value of a declared variable:
	// <Name> RECEBE <Value>.
	Assign struct {
		Name  string
		Value Expr
		Pos   Position
	}

	// If runs Then when Cond holds, and Else otherwise when present.
	If struct {
		Cond Expr
		Then *Block
		Else *Block
		Pos  Position
	}

	// While runs Body as long as Cond holds.
	While struct {
		Cond Expr
		Body *Block
		Pos  Position
	}

	// Show writes the rendering of Value to output.
	Show struct {
		Value Expr
		Pos   Position
	}

	// Speak writes the rendering of Value to output.
	Speak struct {
		Value Expr
		Pos   Position
	}

	// Ask reads one line of input into the variable Name.
	Ask struct {
		Name string
		Pos  Position
	}
)

type (
	// Binary applies an infix operator.
	Binary struct {
		Op    Kind
		Left  Expr
		Right Expr
		Pos   Position
	}

	// Unary applies a prefix operator: MENOS or NAO.
	Unary struct {
		Op      Kind
		Operand Expr
		Pos     Position
	}

	// Literal is a constant value.
	Literal struct {
		Value Value
		Pos   Position
	}

	// Ident is a reference to a declared variable.
	Ident struct {
		Name string
		Pos  Position
	}
)

func (n *Block) Position() Position   { return n.Pos }
func (n *VarDecl) Position() Position { return n.Pos }
func (n *Assign) Position() Position  { return n.Pos }
func (n *If) Position() Position      { return n.Pos }
func (n *While) Position() Position   { return n.Pos }
func (n *Show) Position() Position    { return n.Pos }
func (n *Speak) Position() Position   { return n.Pos }
func (n *Ask) Position() Position     { return n.Pos }
func (n *Binary) Position() Position  { return n.Pos }
func (n *Unary) Position() Position   { return n.Pos }
func (n *Literal) Position() Position { return n.Pos }
func (n *Ident) Position() Position   { return n.Pos }

func (*Block) stmtNode()   {}
func (*VarDecl) stmtNode() {}
func (*Assign) stmtNode()  {}
func (*If) stmtNode()      {}
func (*While) stmtNode()   {}
func (*Show) stmtNode()    {}
func (*Speak) stmtNode()   {}
func (*Ask) stmtNode()     {}

func (*Binary) exprNode()  {}
func (*Unary) exprNode()   {}
func (*Literal) exprNode() {}
func (*Ident) exprNode()   {}

// precedence of operators, loosest to tightest.
const (
	precOr = iota + 1
	precAnd
	precNot
	precRelation
	precAdditive
	precTerm
	precNegate
	precPrimary
)

// binaryPrecedence returns the binding strength of an infix operator, or zero
// if op is not one.
func binaryPrecedence(op Kind) int {
	switch op {
	case KindOr:
		return precOr
	case KindAnd:
		return precAnd
	case KindEquals, KindGreater, KindLess:
		return precRelation
	case KindAdd, KindSubtract, KindConcat:
		return precAdditive
	case KindMultiply, KindDivide:
		return precTerm
	default:
		return 0
	}
}

// nodeType returns the name of the node variant of n.
func nodeType(n Node) string {
	switch n.(type) {
	case *Program:
		return "Program"
	case *Block:
		return "Block"
	case *VarDecl:
		return "VarDecl"
	case *Assign:
		return "Assign"
	case *If:
		return "If"
	case *While:
		return "While"
	case *Show:
		return "Show"
	case *Speak:
		return "Speak"
	case *Ask:
		return "Ask"
	case *Binary:
		return "Binary"
	case *Unary:
		return "Unary"
	case *Literal:
		return "Literal"
	case *Ident:
		return "Ident"
	default:
		return "Node"
	}
}
