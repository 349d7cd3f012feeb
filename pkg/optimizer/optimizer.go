// Package optimizer - IR-level optimizations
// Design: Simple, effective passes; every pass returns new instructions and
// leaves its input untouched
package optimizer

import (
	"github.com/GriffinCanCode/minic/pkg/ir"
	"github.com/GriffinCanCode/minic/pkg/logger"
)

// Optimization levels. Level 1 runs dead-code elimination; level 2 runs the
// peephole pass first.
const (
	DefaultLevel = 1
	MaxLevel     = 2
)

// Result is the outcome of Optimize.
type Result struct {
	Instructions []ir.Instruction
	Removed      int // instructions dropped, by any pass
	Rewritten    int // peephole rewrites
	Iterations   int // DCE passes run, including the final one that removed nothing
}

// Optimize applies all optimization passes enabled at level.
// Level 0 returns a copy of the input.
func Optimize(insts []ir.Instruction, level int) Result {
	logger.Debug("Running optimization passes", "level", level, "instructions", len(insts))

	if level <= 0 {
		return Result{Instructions: ir.Clone(insts)}
	}

	current, rewritten := insts, 0
	if level >= 2 {
		current, rewritten = Peephole(insts)
		logger.LogOptimization("peephole", len(insts)-len(current), 1)
	}

	out, removed, iterations := deadCodeElimination(current)
	logger.LogOptimization("dce", removed, iterations)

	return Result{
		Instructions: out,
		Removed:      len(insts) - len(out),
		Rewritten:    rewritten,
		Iterations:   iterations,
	}
}

// DeadCodeElimination removes instructions whose destination is never read,
// repeating until a pass removes nothing. print is the only side effect and
// is always kept. Surviving instructions keep their relative order.
func DeadCodeElimination(insts []ir.Instruction) ([]ir.Instruction, int) {
	out, removed, _ := deadCodeElimination(insts)
	return out, removed
}

func deadCodeElimination(insts []ir.Instruction) ([]ir.Instruction, int, int) {
	current := ir.Clone(insts)
	removed := 0
	iterations := 0

	for {
		iterations++
		used := ir.UsedNames(current)

		next := make([]ir.Instruction, 0, len(current))
		for _, inst := range current {
			if isLive(inst, used) {
				next = append(next, inst)
			}
		}

		dropped := len(current) - len(next)
		logger.Debug("DCE pass", "iteration", iterations, "removed", dropped)
		current = next
		if dropped == 0 {
			return current, removed, iterations
		}
		removed += dropped
	}
}

func isLive(inst ir.Instruction, used map[string]bool) bool {
	if inst.Op == ir.OpPrint {
		return true
	}
	// Anything else without a destination can only come from hand-written
	// IR; keep it rather than guess.
	if inst.Dest == "" {
		return true
	}
	return used[inst.Dest]
}
