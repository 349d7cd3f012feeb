package frontend

import (
	"fmt"
	"strings"
)

// Format renders the program back to source, one statement per line.
// Binary expressions are fully parenthesized so the printed text shows
// exactly how the parser grouped them.
func Format(prog *Program) string {
	var sb strings.Builder
	for _, stmt := range prog.Body {
		writeStmt(&sb, stmt)
		sb.WriteString(";\n")
	}
	return sb.String()
}

func writeStmt(sb *strings.Builder, stmt Stmt) {
	switch s := stmt.(type) {
	case *VarDecl:
		kw := "let"
		if s.Const {
			kw = "const"
		}
		fmt.Fprintf(sb, "%s %s = ", kw, s.Name)
		writeExpr(sb, s.Init)
	case Expr:
		writeExpr(sb, s)
	}
}

func writeExpr(sb *strings.Builder, expr Expr) {
	switch e := expr.(type) {
	case *Literal:
		fmt.Fprintf(sb, "%d", e.Value)
	case *Identifier:
		sb.WriteString(e.Name)
	case *BinaryExpr:
		sb.WriteByte('(')
		writeExpr(sb, e.Left)
		fmt.Fprintf(sb, " %s ", e.Op)
		writeExpr(sb, e.Right)
		sb.WriteByte(')')
	case *CallExpr:
		sb.WriteString(e.Callee)
		sb.WriteByte('(')
		for i, arg := range e.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeExpr(sb, arg)
		}
		sb.WriteByte(')')
	}
}
