// Package optimizer - Peephole optimization pass
// Recognizes arithmetic made trivial by a known constant operand
package optimizer

import (
	"github.com/GriffinCanCode/minic/pkg/ir"
	"github.com/GriffinCanCode/minic/pkg/logger"
)

// Peephole applies pattern-based rewrites and returns the new instructions
// with the number of rewrites made. The input is not modified.
//
// A rewrite that turns arithmetic into a copy only fires when the copied name
// is certainly bound, because arithmetic reads an unbound name as 0 while a
// copy of it binds nothing. A rewrite never drops the last read of a name
// that some div defines: dead-code elimination would then remove that div,
// and with it a division by zero the program must fail on.
func Peephole(insts []ir.Instruction) ([]ir.Instruction, int) {
	logger.Debug("Running peephole optimizer", "instructions", len(insts))

	src := ir.Clone(insts)
	reads := readCounts(src)
	defs := defCounts(src)
	st := newPeepholeState(src)
	out := make([]ir.Instruction, 0, len(src))
	rewritten := 0

	for i := 0; i < len(src); i++ {
		inst := src[i]

		// Pattern: x = a op b; y = x  =>  y = a op b (if x is read nowhere else)
		if i+1 < len(src) && foldsIntoCopy(inst, src[i+1], reads, defs) {
			logger.Debug("Peephole: eliminated intermediate copy", "temp", inst.Dest, "dest", src[i+1].Dest)
			inst.Dest = src[i+1].Dest
			i++
			rewritten++
		}

		if r, ok := st.simplify(inst); ok {
			inst = r
			rewritten++
		}

		st.track(inst)
		out = append(out, inst)
	}

	logger.Info("Peephole optimization complete", "rewritten", rewritten)
	return out, rewritten
}

// peepholeState follows which names hold a known constant, and which are
// bound at all, at the current point of a straight-line program. divs holds
// every name a div defines anywhere in the program.
type peepholeState struct {
	consts map[string]int64
	bound  map[string]bool
	divs   map[string]bool
}

func newPeepholeState(insts []ir.Instruction) *peepholeState {
	st := &peepholeState{
		consts: make(map[string]int64),
		bound:  make(map[string]bool),
		divs:   make(map[string]bool),
	}
	for _, inst := range insts {
		if inst.Op == ir.OpDiv && inst.Dest != "" {
			st.divs[inst.Dest] = true
		}
	}
	return st
}

// constant reports whether name currently holds v and a rewrite may stop
// reading it.
func (st *peepholeState) constant(name string, v int64) bool {
	c, ok := st.consts[name]
	return ok && c == v && !st.divs[name]
}

// simplify tries the single-instruction patterns on inst.
func (st *peepholeState) simplify(inst ir.Instruction) (ir.Instruction, bool) {
	if !inst.Op.IsArith() || len(inst.Args) != 2 {
		return inst, false
	}
	l, r := inst.Args[0], inst.Args[1]

	switch inst.Op {
	case ir.OpAdd:
		// x = a + 0  =>  x = a
		if st.constant(r, 0) && st.bound[l] {
			logger.Debug("Peephole: eliminated add-by-zero", "dest", inst.Dest)
			return copyOf(inst, l), true
		}
		if st.constant(l, 0) && st.bound[r] {
			logger.Debug("Peephole: eliminated add-by-zero", "dest", inst.Dest)
			return copyOf(inst, r), true
		}

	case ir.OpSub:
		// x = a - 0  =>  x = a
		if st.constant(r, 0) && st.bound[l] {
			logger.Debug("Peephole: eliminated subtract-by-zero", "dest", inst.Dest)
			return copyOf(inst, l), true
		}

	case ir.OpMul:
		// x = a * 0  =>  x = 0
		if (st.constant(r, 0) && !st.divs[l]) || (st.constant(l, 0) && !st.divs[r]) {
			logger.Debug("Peephole: eliminated multiply-by-zero", "dest", inst.Dest)
			return ir.Instruction{Op: ir.OpConst, Dest: inst.Dest, Value: 0, Type: inst.Type}, true
		}
		// x = a * 1  =>  x = a
		if st.constant(r, 1) && st.bound[l] {
			logger.Debug("Peephole: eliminated multiply-by-one", "dest", inst.Dest)
			return copyOf(inst, l), true
		}
		if st.constant(l, 1) && st.bound[r] {
			logger.Debug("Peephole: eliminated multiply-by-one", "dest", inst.Dest)
			return copyOf(inst, r), true
		}
		// x = a * 2  =>  x = a + a
		if st.constant(r, 2) {
			logger.Debug("Peephole: converted multiply-by-2 to add", "dest", inst.Dest)
			return ir.Instruction{Op: ir.OpAdd, Dest: inst.Dest, Args: []string{l, l}, Type: inst.Type}, true
		}
		if st.constant(l, 2) {
			logger.Debug("Peephole: converted multiply-by-2 to add", "dest", inst.Dest)
			return ir.Instruction{Op: ir.OpAdd, Dest: inst.Dest, Args: []string{r, r}, Type: inst.Type}, true
		}

	case ir.OpDiv:
		// x = a / 1  =>  x = a
		if st.constant(r, 1) && st.bound[l] {
			logger.Debug("Peephole: eliminated divide-by-one", "dest", inst.Dest)
			return copyOf(inst, l), true
		}
	}

	return inst, false
}

// track records the effect of inst on the known state.
func (st *peepholeState) track(inst ir.Instruction) {
	d := inst.Dest
	if d == "" {
		return
	}

	switch {
	case inst.Op == ir.OpConst:
		st.consts[d] = inst.Value
		st.bound[d] = true

	case inst.Op == ir.OpID:
		src := ""
		if len(inst.Args) > 0 {
			src = inst.Args[0]
		}
		if !st.bound[src] {
			// dest either keeps its old value or stays unbound
			delete(st.consts, d)
			return
		}
		st.bound[d] = true
		if v, ok := st.consts[src]; ok {
			st.consts[d] = v
		} else {
			delete(st.consts, d)
		}

	default:
		st.bound[d] = true
		delete(st.consts, d)
	}
}

func copyOf(inst ir.Instruction, src string) ir.Instruction {
	return ir.Instruction{Op: ir.OpID, Dest: inst.Dest, Args: []string{src}, Type: inst.Type}
}

// foldsIntoCopy reports whether first only exists to be copied by next.
// first must be the sole definition of its destination, so no other
// definition is left dead by the rename.
func foldsIntoCopy(first, next ir.Instruction, reads, defs map[string]int) bool {
	if !first.Op.IsArith() || first.Dest == "" || defs[first.Dest] != 1 {
		return false
	}
	if next.Op != ir.OpID || next.Dest == "" || len(next.Args) != 1 || next.Args[0] != first.Dest {
		return false
	}
	return reads[first.Dest] == 1
}

// readCounts counts how often each name is read as an argument.
func readCounts(insts []ir.Instruction) map[string]int {
	reads := make(map[string]int)
	for _, inst := range insts {
		for _, arg := range inst.Args {
			reads[arg]++
		}
	}
	return reads
}

// defCounts counts how often each name is assigned.
func defCounts(insts []ir.Instruction) map[string]int {
	defs := make(map[string]int)
	for _, inst := range insts {
		if inst.Dest != "" {
			defs[inst.Dest]++
		}
	}
	return defs
}
