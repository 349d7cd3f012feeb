// Package ir - AST to IR conversion
// Design: Single pass, monotonically numbered temporaries, no name resolution
package ir

import (
	"fmt"

	"github.com/GriffinCanCode/minic/pkg/frontend"
	"github.com/GriffinCanCode/minic/pkg/logger"
)

// Builder owns all generator state for one lowering. Use a fresh Builder
// (or Generate) per program.
type Builder struct {
	insts   []Instruction
	symbols SymbolTable
	tempID  int
	temps   map[string]bool // names produced by newTemp
}

func NewBuilder() *Builder {
	return &Builder{
		temps: make(map[string]bool),
	}
}

// Generate lowers prog with a fresh Builder.
func Generate(prog *frontend.Program) ([]Instruction, SymbolTable) {
	return NewBuilder().Build(prog)
}

func (b *Builder) Build(prog *frontend.Program) ([]Instruction, SymbolTable) {
	logger.Debug("Building IR from AST", "statements", len(prog.Body))
	for _, stmt := range prog.Body {
		b.buildStatement(stmt)
	}
	return b.insts, b.symbols
}

func (b *Builder) buildStatement(stmt frontend.Stmt) {
	switch s := stmt.(type) {
	case *frontend.VarDecl:
		b.buildVarDecl(s)
	case frontend.Expr:
		b.buildExpression(s)
	default:
		panic(fmt.Sprintf("ir: unexpected statement type %T", stmt))
	}
}

func (b *Builder) buildVarDecl(decl *frontend.VarDecl) {
	result, ok := b.buildExpression(decl.Init)
	if !ok {
		// Initializer produced no value (print or an unknown call).
		logger.Debug("Declaration without value", "name", decl.Name)
		return
	}

	// Copy elision: only when the immediately preceding instruction wrote
	// the temporary we are about to copy.
	if last := len(b.insts) - 1; last >= 0 && b.insts[last].Dest == result && b.temps[result] {
		b.insts[last].Dest = decl.Name
		b.dropSymbol(result)
	} else {
		b.emit(Instruction{
			Op:   OpID,
			Dest: decl.Name,
			Args: []string{result},
			Type: IntType,
		})
	}

	b.symbols = append(b.symbols, SymbolInfo{Name: decl.Name, Type: IntType, Kind: KindVar})
}

// buildExpression lowers expr and returns the name holding its value. ok is
// false when the expression produces nothing.
func (b *Builder) buildExpression(expr frontend.Expr) (name string, ok bool) {
	switch e := expr.(type) {
	case *frontend.Literal:
		dest := b.newTemp()
		b.emit(Instruction{
			Op:    OpConst,
			Dest:  dest,
			Value: e.Value,
			Type:  IntType,
		})
		return dest, true

	case *frontend.Identifier:
		return e.Name, true

	case *frontend.BinaryExpr:
		left, _ := b.buildExpression(e.Left)
		right, _ := b.buildExpression(e.Right)

		dest := b.newTemp()
		b.emit(Instruction{
			Op:   opFromFrontend(e.Op),
			Dest: dest,
			Args: []string{left, right},
			Type: IntType,
		})
		return dest, true

	case *frontend.CallExpr:
		if e.Callee != "print" {
			logger.Debug("Ignoring call to unknown function", "callee", e.Callee)
			return "", false
		}

		args := make([]string, 0, len(e.Args))
		for _, argExpr := range e.Args {
			arg, _ := b.buildExpression(argExpr)
			args = append(args, arg)
		}
		b.emit(Instruction{Op: OpPrint, Args: args})
		return "", false

	default:
		panic(fmt.Sprintf("ir: unexpected expression type %T", expr))
	}
}

func (b *Builder) emit(in Instruction) {
	b.insts = append(b.insts, in)
}

func (b *Builder) newTemp() string {
	name := fmt.Sprintf("temp%d", b.tempID)
	b.tempID++
	b.temps[name] = true
	b.symbols = append(b.symbols, SymbolInfo{Name: name, Type: IntType, Kind: KindTemp})
	return name
}

func (b *Builder) dropSymbol(name string) {
	for i, s := range b.symbols {
		if s.Name == name {
			b.symbols = append(b.symbols[:i], b.symbols[i+1:]...)
			return
		}
	}
}

func opFromFrontend(op frontend.Operator) Opcode {
	switch op {
	case frontend.Add:
		return OpAdd
	case frontend.Sub:
		return OpSub
	case frontend.Mul:
		return OpMul
	case frontend.Div:
		return OpDiv
	default:
		panic(fmt.Sprintf("ir: unknown operator %v", op))
	}
}
