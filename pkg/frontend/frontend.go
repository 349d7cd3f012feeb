// Package frontend implements minic lexing, parsing and AST construction.
//
// Design: Minimal, focused on correctness. The AST is a closed sum type;
// consumers switch on the concrete node types.
package frontend

type Node interface {
	node()
}

// Program is the root of every parse.
type Program struct {
	Body []Stmt
}

func (*Program) node() {}

type Stmt interface {
	Node
	stmt()
}

// Expr nodes double as expression statements.
type Expr interface {
	Stmt
	expr()
}

// Statements

// VarDecl is a let or const declaration. Const only records the keyword
// used; both forms behave the same downstream.
type VarDecl struct {
	Name  string
	Const bool
	Init  Expr
}

func (*VarDecl) node() {}
func (*VarDecl) stmt() {}

// Expressions

type BinaryExpr struct {
	Left  Expr
	Op    Operator
	Right Expr
}

func (*BinaryExpr) node() {}
func (*BinaryExpr) stmt() {}
func (*BinaryExpr) expr() {}

type CallExpr struct {
	Callee string
	Args   []Expr
}

func (*CallExpr) node() {}
func (*CallExpr) stmt() {}
func (*CallExpr) expr() {}

type Literal struct {
	Value int64
}

func (*Literal) node() {}
func (*Literal) stmt() {}
func (*Literal) expr() {}

type Identifier struct {
	Name string
}

func (*Identifier) node() {}
func (*Identifier) stmt() {}
func (*Identifier) expr() {}

type Operator int

const (
	Add Operator = iota
	Sub
	Mul
	Div
)

var operatorSymbols = [...]string{
	Add: "+",
	Sub: "-",
	Mul: "*",
	Div: "/",
}

func (o Operator) String() string {
	if o >= 0 && int(o) < len(operatorSymbols) {
		return operatorSymbols[o]
	}
	return "?"
}

func operatorFromLexeme(s string) (Operator, bool) {
	switch s {
	case "+":
		return Add, true
	case "-":
		return Sub, true
	case "*":
		return Mul, true
	case "/":
		return Div, true
	}
	return 0, false
}
