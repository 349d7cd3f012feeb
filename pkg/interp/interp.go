// Package interp executes IR directly.
//
// Design: One flat environment per run, no scoping. Reads of unbound names
// degrade instead of failing; division by zero is the only fatal error.
package interp

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/GriffinCanCode/minic/pkg/ir"
	"github.com/GriffinCanCode/minic/pkg/logger"
)

// NoOutputMessage is the single line reported for a program that never prints.
const NoOutputMessage = "Program executed successfully (no output)."

// Undefined renders an unbound print argument.
const Undefined = "undefined"

var ErrDivisionByZero = errors.New("division by zero")

// RuntimeError is a fatal execution failure at instruction Index.
type RuntimeError struct {
	Index int
	Inst  ir.Instruction
	Err   error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("instruction %d (%s): %v", e.Index, e.Inst, e.Err)
}

func (e *RuntimeError) Unwrap() error { return e.Err }

// Execute runs insts against a fresh environment and returns the printed
// lines in execution order. On a runtime error no lines are returned.
func Execute(insts []ir.Instruction) ([]string, error) {
	m := NewMachine()
	if err := m.Run(insts); err != nil {
		return nil, err
	}
	return m.Output(), nil
}

// Machine holds the value environment and printed lines of one run.
type Machine struct {
	env   map[string]int64
	lines []string
}

func NewMachine() *Machine {
	return &Machine{env: make(map[string]int64)}
}

func (m *Machine) Run(insts []ir.Instruction) error {
	for i, inst := range insts {
		if err := m.step(inst); err != nil {
			logger.Debug("Execution aborted", "index", i, "error", err)
			return &RuntimeError{Index: i, Inst: inst, Err: err}
		}
	}
	return nil
}

// Output returns the printed lines, or the single no-output line when
// nothing was printed.
func (m *Machine) Output() []string {
	if len(m.lines) == 0 {
		return []string{NoOutputMessage}
	}
	return append([]string(nil), m.lines...)
}

// Lookup returns the current value bound to name.
func (m *Machine) Lookup(name string) (int64, bool) {
	v, ok := m.env[name]
	return v, ok
}

func (m *Machine) step(inst ir.Instruction) error {
	switch {
	case inst.Op == ir.OpConst:
		m.env[inst.Dest] = inst.Value

	case inst.Op == ir.OpID:
		if len(inst.Args) == 0 {
			return nil
		}
		// Copying an unbound name leaves dest unbound as well.
		if v, ok := m.env[inst.Args[0]]; ok {
			m.env[inst.Dest] = v
		}

	case inst.Op.IsArith():
		l, r := m.operand(inst, 0), m.operand(inst, 1)
		v, err := arith(inst.Op, l, r)
		if err != nil {
			return err
		}
		m.env[inst.Dest] = v

	case inst.Op == ir.OpPrint:
		vals := make([]string, len(inst.Args))
		for i, arg := range inst.Args {
			if v, ok := m.env[arg]; ok {
				vals[i] = strconv.FormatInt(v, 10)
			} else {
				vals[i] = Undefined
			}
		}
		m.lines = append(m.lines, strings.Join(vals, " "))

	default:
		return fmt.Errorf("unknown opcode %s", inst.Op)
	}
	return nil
}

// operand reads argument i, treating unbound or missing operands as 0.
func (m *Machine) operand(inst ir.Instruction, i int) int64 {
	if i >= len(inst.Args) {
		return 0
	}
	return m.env[inst.Args[i]]
}

func arith(op ir.Opcode, l, r int64) (int64, error) {
	switch op {
	case ir.OpAdd:
		return l + r, nil
	case ir.OpSub:
		return l - r, nil
	case ir.OpMul:
		return l * r, nil
	case ir.OpDiv:
		return floorDiv(l, r)
	}
	return 0, fmt.Errorf("not an arithmetic opcode: %s", op)
}

// floorDiv rounds toward negative infinity.
func floorDiv(l, r int64) (int64, error) {
	if r == 0 {
		return 0, ErrDivisionByZero
	}
	q := l / r
	if (l%r != 0) && ((l < 0) != (r < 0)) {
		q--
	}
	return q, nil
}
