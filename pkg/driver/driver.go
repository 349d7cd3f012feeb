// Package driver runs the minic pipeline end to end.
//
// Design: Each phase is called once, timed, and logged. Artifacts of every
// phase are kept on the result so callers can display any of them.
package driver

import (
	"errors"
	"fmt"
	"time"

	"github.com/GriffinCanCode/minic/pkg/frontend"
	"github.com/GriffinCanCode/minic/pkg/interp"
	"github.com/GriffinCanCode/minic/pkg/ir"
	"github.com/GriffinCanCode/minic/pkg/logger"
	"github.com/GriffinCanCode/minic/pkg/optimizer"
)

type Phase string

const (
	PhaseLex      Phase = "lex"
	PhaseParse    Phase = "parse"
	PhaseIRGen    Phase = "irgen"
	PhaseOptimize Phase = "optimize"
	PhaseExecute  Phase = "execute"
)

// PhaseError attributes a failure to the phase and file that produced it.
type PhaseError struct {
	Phase Phase
	File  string
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s: %s error: %v", e.File, e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error { return e.Err }

// Timings records wall time per phase.
type Timings struct {
	Lex      time.Duration
	Parse    time.Duration
	IRGen    time.Duration
	Optimize time.Duration
	Execute  time.Duration
}

func (t Timings) Total() time.Duration {
	return t.Lex + t.Parse + t.IRGen + t.Optimize + t.Execute
}

// Unit is a compiled program: every artifact up to unoptimized IR.
type Unit struct {
	Name    string
	Tokens  []frontend.Token
	AST     *frontend.Program
	IR      []ir.Instruction
	Symbols ir.SymbolTable // Used reflects IR
	Timings Timings
}

// Optimized is the outcome of optimizing a Unit's IR.
type Optimized struct {
	Level      int
	IR         []ir.Instruction
	Removed    int
	Rewritten  int
	Iterations int
	Symbols    ir.SymbolTable // Used reflects the optimized IR
	Elapsed    time.Duration
}

// Result is a full pipeline run.
type Result struct {
	Unit      *Unit
	Optimized *Optimized
	Output    []string
	Timings   Timings
}

// Compile tokenizes, parses and lowers source.
func Compile(name, source string) (*Unit, error) {
	u := &Unit{Name: name}

	var err error
	u.Timings.Lex = timed(PhaseLex, func() {
		u.Tokens, err = frontend.Tokenize(source)
	})
	if err != nil {
		return nil, phaseError(PhaseLex, name, err)
	}
	logger.LogLexing(name, len(u.Tokens))

	u.Timings.Parse = timed(PhaseParse, func() {
		u.AST, err = frontend.Parse(u.Tokens)
	})
	if err != nil {
		return nil, phaseError(PhaseParse, name, err)
	}
	logger.LogParsing(name, len(u.AST.Body))

	var symbols ir.SymbolTable
	u.Timings.IRGen = timed(PhaseIRGen, func() {
		u.IR, symbols = ir.Generate(u.AST)
	})
	u.Symbols = ir.MarkUsed(symbols, u.IR)
	logger.LogIRGeneration(name, len(u.IR), len(u.Symbols))

	return u, nil
}

// Optimize runs the optimizer at level over the unit's IR. The unit itself
// is not modified. Level 0 copies the IR unchanged.
func (u *Unit) Optimize(level int) *Optimized {
	var res optimizer.Result
	elapsed := timed(PhaseOptimize, func() {
		res = optimizer.Optimize(u.IR, level)
	})
	return &Optimized{
		Level:      level,
		IR:         res.Instructions,
		Removed:    res.Removed,
		Rewritten:  res.Rewritten,
		Iterations: res.Iterations,
		Symbols:    ir.MarkUsed(u.Symbols, res.Instructions),
		Elapsed:    elapsed,
	}
}

// Execute interprets insts on behalf of the named program.
func Execute(name string, insts []ir.Instruction) ([]string, time.Duration, error) {
	var (
		lines []string
		err   error
	)
	elapsed := timed(PhaseExecute, func() {
		lines, err = interp.Execute(insts)
	})
	if err != nil {
		return nil, elapsed, phaseError(PhaseExecute, name, err)
	}
	logger.LogExecution(name, len(lines))
	return lines, elapsed, nil
}

// Run compiles, optimizes and executes source. A compile failure returns a
// nil Result; a runtime failure returns the compiled artifacts alongside
// the error.
func Run(name, source string, level int) (*Result, error) {
	u, err := Compile(name, source)
	if err != nil {
		return nil, err
	}

	opt := u.Optimize(level)
	res := &Result{
		Unit:      u,
		Optimized: opt,
		Timings:   u.Timings,
	}
	res.Timings.Optimize = opt.Elapsed

	res.Output, res.Timings.Execute, err = Execute(name, opt.IR)
	return res, err
}

func timed(phase Phase, fn func()) time.Duration {
	logger.LogPhase(string(phase))
	start := time.Now()
	fn()
	elapsed := time.Since(start)
	logger.LogPhaseComplete(string(phase), elapsed)
	return elapsed
}

func phaseError(phase Phase, file string, err error) error {
	line := 0
	var lexErr *frontend.LexError
	var parseErr *frontend.ParseError
	switch {
	case errors.As(err, &lexErr):
		line = lexErr.Line
	case errors.As(err, &parseErr):
		line = parseErr.Line
	}
	logger.LogError(string(phase), file, line, err.Error())
	return &PhaseError{Phase: phase, File: file, Err: err}
}
