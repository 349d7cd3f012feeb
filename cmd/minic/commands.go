package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Masterminds/semver/v3"

	"github.com/GriffinCanCode/minic/pkg/config"
	"github.com/GriffinCanCode/minic/pkg/driver"
	"github.com/GriffinCanCode/minic/pkg/ir"
	"github.com/GriffinCanCode/minic/pkg/optimizer"
	"github.com/GriffinCanCode/minic/pkg/watch"
)

// -----------------------------------------------------------------------------
// run
// -----------------------------------------------------------------------------

func (c *cli) cmdRun(args []string) int {
	cfg, fs, done, err := c.setup("run", args)
	if err != nil {
		return c.failSetup(err)
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(c.stderr, "usage: minic run [flags] <file.mc>...")
		done(false)
		return exitUsage
	}

	results, err := driver.RunFiles(context.Background(), fs.Args(), cfg.OptLevel, cfg.Jobs)
	multi := len(results) > 1
	for i, r := range results {
		if multi {
			if i > 0 {
				fmt.Fprintln(c.stdout)
			}
			fmt.Fprintf(c.stdout, "==> %s <==\n", r.Path)
		}
		c.report(cfg, r.Result, r.Err)
	}

	done(err == nil)
	if err != nil {
		return exitError
	}
	return exitOK
}

// report prints one program's artifact and error. Artifacts other than
// output are still shown when only execution failed.
func (c *cli) report(cfg config.Config, res *driver.Result, err error) {
	if res != nil && (err == nil || cfg.Emit != config.EmitOutput) {
		if werr := writeArtifact(c.stdout, cfg.Emit, res); werr != nil {
			fmt.Fprintf(c.stderr, "minic: %v\n", werr)
		}
		if cfg.Verbose {
			writeTimings(c.stderr, res.Timings)
		}
	}
	if err != nil {
		fmt.Fprintf(c.stderr, "minic: %v\n", err)
	}
}

// -----------------------------------------------------------------------------
// exec
// -----------------------------------------------------------------------------

func (c *cli) cmdExec(args []string) int {
	cfg, fs, done, err := c.setup("exec", args)
	if err != nil {
		return c.failSetup(err)
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(c.stderr, "usage: minic exec [flags] <prog.json|->")
		done(false)
		return exitUsage
	}

	code := c.execIR(cfg, fs.Arg(0))
	done(code == exitOK)
	return code
}

func (c *cli) execIR(cfg config.Config, path string) int {
	var r io.Reader = c.stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			fmt.Fprintf(c.stderr, "minic: %v\n", err)
			return exitError
		}
		defer f.Close()
		r = f
	}

	insts, err := ir.Decode(r)
	if err != nil {
		fmt.Fprintf(c.stderr, "minic: %s: %v\n", path, err)
		return exitError
	}
	opt := optimizer.Optimize(insts, cfg.OptLevel)

	switch cfg.Emit {
	case config.EmitOutput:
	case config.EmitIR:
		fmt.Fprint(c.stdout, ir.Format(insts))
		return exitOK
	case config.EmitOpt:
		fmt.Fprint(c.stdout, ir.Format(opt.Instructions))
		return exitOK
	case config.EmitJSON:
		if err := ir.Encode(c.stdout, opt.Instructions); err != nil {
			fmt.Fprintf(c.stderr, "minic: %v\n", err)
			return exitError
		}
		return exitOK
	default:
		fmt.Fprintf(c.stderr, "minic: exec cannot emit %s\n", cfg.Emit)
		return exitUsage
	}

	lines, elapsed, err := driver.Execute(path, opt.Instructions)
	if err != nil {
		fmt.Fprintf(c.stderr, "minic: %v\n", err)
		return exitError
	}
	writeLines(c.stdout, lines)
	if cfg.Verbose {
		fmt.Fprintf(c.stderr, "execute %v\n", elapsed)
	}
	return exitOK
}

// -----------------------------------------------------------------------------
// watch
// -----------------------------------------------------------------------------

func (c *cli) cmdWatch(args []string) int {
	cfg, fs, done, err := c.setup("watch", args)
	if err != nil {
		return c.failSetup(err)
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(c.stderr, "usage: minic watch [flags] <file.mc>")
		done(false)
		return exitUsage
	}
	path := fs.Arg(0)

	w, err := watch.New(path, 0)
	if err != nil {
		fmt.Fprintf(c.stderr, "minic: %v\n", err)
		done(false)
		return exitError
	}
	defer w.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c.runSource(cfg, path)
	fmt.Fprintf(c.stderr, "watching %s (ctrl-c to stop)\n", path)

	err = w.Run(ctx, func(string) {
		fmt.Fprintf(c.stdout, "\n--- %s changed ---\n", path)
		c.runSource(cfg, path)
	})
	done(err == nil)
	if err != nil {
		fmt.Fprintf(c.stderr, "minic: %v\n", err)
		return exitError
	}
	return exitOK
}

// runSource reads and runs one file, reporting instead of returning errors.
func (c *cli) runSource(cfg config.Config, path string) bool {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(c.stderr, "minic: %v\n", err)
		return false
	}
	res, err := driver.Run(path, string(src), cfg.OptLevel)
	c.report(cfg, res, err)
	return err == nil
}

// -----------------------------------------------------------------------------
// version
// -----------------------------------------------------------------------------

func (c *cli) cmdVersion(args []string) int {
	fs := flag.NewFlagSet("minic version", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	require := fs.String("require", "", "exit 1 unless the version satisfies this range")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	fmt.Fprintf(c.stdout, "minic version %s\n", version)
	if *require == "" {
		return exitOK
	}

	ok, err := satisfies(version, *require)
	if err != nil {
		fmt.Fprintf(c.stderr, "minic: %v\n", err)
		return exitUsage
	}
	if !ok {
		fmt.Fprintf(c.stderr, "minic: version %s does not satisfy %q\n", version, *require)
		return exitError
	}
	return exitOK
}

func satisfies(v, constraint string) (bool, error) {
	sv, err := semver.NewVersion(v)
	if err != nil {
		return false, fmt.Errorf("invalid version %q: %w", v, err)
	}
	con, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, fmt.Errorf("invalid constraint %q: %w", constraint, err)
	}
	return con.Check(sv), nil
}
