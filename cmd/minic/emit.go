package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/GriffinCanCode/minic/pkg/config"
	"github.com/GriffinCanCode/minic/pkg/driver"
	"github.com/GriffinCanCode/minic/pkg/frontend"
	"github.com/GriffinCanCode/minic/pkg/ir"
)

// writeArtifact prints the artifact selected by emit.
func writeArtifact(w io.Writer, emit config.Emit, res *driver.Result) error {
	switch emit {
	case config.EmitTokens:
		for _, tok := range res.Unit.Tokens {
			fmt.Fprintln(w, tok)
		}
	case config.EmitAST:
		fmt.Fprint(w, frontend.Format(res.Unit.AST))
	case config.EmitIR:
		fmt.Fprint(w, ir.Format(res.Unit.IR))
	case config.EmitOpt:
		opt := res.Optimized
		fmt.Fprint(w, ir.Format(opt.IR))
		fmt.Fprintf(w, "; O%d removed %d instruction(s), rewrote %d, %d DCE pass(es)\n",
			opt.Level, opt.Removed, opt.Rewritten, opt.Iterations)
	case config.EmitSymbols:
		return writeSymbols(w, res.Optimized.Symbols)
	case config.EmitJSON:
		return writeJSON(w, res)
	default:
		writeLines(w, res.Output)
	}
	return nil
}

func writeLines(w io.Writer, lines []string) {
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
}

func writeSymbols(w io.Writer, symbols ir.SymbolTable) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tTYPE\tUSED")
	for _, sym := range symbols {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", sym.Name, sym.Kind, sym.Type, sym.Used)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d variable(s), %d temporary(ies)\n", symbols.Vars(), symbols.Temps())
	return err
}

type runJSON struct {
	File      string            `json:"file"`
	Tokens    []frontend.Token  `json:"tokens"`
	AST       *frontend.Program `json:"ast"`
	IR        []ir.Instruction  `json:"ir"`
	Optimized []ir.Instruction  `json:"optimized"`
	Removed   int               `json:"removed"`
	Symbols   ir.SymbolTable    `json:"symbols"`
	Output    []string          `json:"output,omitempty"`
}

func writeJSON(w io.Writer, res *driver.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(runJSON{
		File:      res.Unit.Name,
		Tokens:    res.Unit.Tokens,
		AST:       res.Unit.AST,
		IR:        res.Unit.IR,
		Optimized: res.Optimized.IR,
		Removed:   res.Optimized.Removed,
		Symbols:   res.Optimized.Symbols,
		Output:    res.Output,
	})
}

func writeTimings(w io.Writer, t driver.Timings) {
	fmt.Fprintf(w, "lex %v, parse %v, irgen %v, optimize %v, execute %v, total %v\n",
		t.Lex, t.Parse, t.IRGen, t.Optimize, t.Execute, t.Total())
}
