// Package ir implements the intermediate representation.
//
// Design: Flat three-address code over named values, Bril-style.
// No blocks, no control flow; a program is an ordered instruction list.
package ir

import (
	"fmt"
	"strings"
)

// IntType is the only type tag the generator emits.
const IntType = "int"

// Opcode is the operation tag of an instruction.
type Opcode int

const (
	OpConst Opcode = iota
	OpID
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpPrint
)

var opNames = [...]string{
	OpConst: "const",
	OpID:    "id",
	OpAdd:   "add",
	OpSub:   "sub",
	OpMul:   "mul",
	OpDiv:   "div",
	OpPrint: "print",
}

func (op Opcode) String() string {
	if op >= 0 && int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("Opcode(%d)", int(op))
}

// ParseOpcode maps an opcode name back to its Opcode.
func ParseOpcode(s string) (Opcode, error) {
	for i, name := range opNames {
		if name == s {
			return Opcode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown opcode %q", s)
}

func (op Opcode) MarshalText() ([]byte, error) {
	if op < 0 || int(op) >= len(opNames) {
		return nil, fmt.Errorf("invalid opcode %d", int(op))
	}
	return []byte(op.String()), nil
}

func (op *Opcode) UnmarshalText(text []byte) error {
	parsed, err := ParseOpcode(string(text))
	if err != nil {
		return err
	}
	*op = parsed
	return nil
}

// IsArith reports whether op is one of the binary arithmetic opcodes.
func (op Opcode) IsArith() bool {
	return op == OpAdd || op == OpSub || op == OpMul || op == OpDiv
}

// Instruction is a single three-address code instruction.
// Value is meaningful only for OpConst; Dest is empty only for OpPrint.
type Instruction struct {
	Op    Opcode
	Dest  string
	Args  []string
	Value int64
	Type  string
}

func (in Instruction) String() string {
	var sb strings.Builder
	if in.Dest != "" {
		sb.WriteString(in.Dest)
		if in.Type != "" {
			sb.WriteString(": ")
			sb.WriteString(in.Type)
		}
		sb.WriteString(" = ")
	}
	sb.WriteString(in.Op.String())
	if in.Op == OpConst {
		fmt.Fprintf(&sb, " %d", in.Value)
	}
	for _, arg := range in.Args {
		sb.WriteByte(' ')
		sb.WriteString(arg)
	}
	return sb.String()
}

// Clone returns a deep copy of insts, so passes can rewrite the result
// without touching their input.
func Clone(insts []Instruction) []Instruction {
	if insts == nil {
		return nil
	}
	out := make([]Instruction, len(insts))
	for i, in := range insts {
		out[i] = in
		if in.Args != nil {
			out[i].Args = append([]string(nil), in.Args...)
		}
	}
	return out
}

// Format renders a listing with one instruction per line.
func Format(insts []Instruction) string {
	var sb strings.Builder
	for _, in := range insts {
		sb.WriteString(in.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Validate checks the operand shape of every instruction. Generated code
// always passes; it exists for IR loaded from outside.
func Validate(insts []Instruction) error {
	for i, in := range insts {
		var err error
		switch {
		case in.Op == OpConst:
			err = wantShape(in, 0)
		case in.Op == OpID:
			err = wantShape(in, 1)
		case in.Op.IsArith():
			err = wantShape(in, 2)
		case in.Op == OpPrint:
			if in.Dest != "" {
				err = fmt.Errorf("print has destination %q", in.Dest)
			}
		default:
			err = fmt.Errorf("unknown opcode %d", int(in.Op))
		}
		if err == nil && in.Op != OpConst && in.Value != 0 {
			err = fmt.Errorf("value %d on a non-const instruction", in.Value)
		}
		if err != nil {
			return fmt.Errorf("instruction %d (%s): %w", i, in.Op, err)
		}
	}
	return nil
}

func wantShape(in Instruction, nargs int) error {
	if in.Dest == "" {
		return fmt.Errorf("missing destination")
	}
	if len(in.Args) != nargs {
		return fmt.Errorf("expected %d args, got %d", nargs, len(in.Args))
	}
	return nil
}
