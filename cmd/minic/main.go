// Package main implements the minic command.
//
// Philosophy: One binary, one pipeline. Every subcommand goes through
// pkg/driver and differs only in where source comes from and what it prints.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/GriffinCanCode/minic/pkg/config"
	"github.com/GriffinCanCode/minic/pkg/logger"
)

const version = "0.1.0"

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	c := &cli{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	os.Exit(c.run(os.Args[1:]))
}

type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func (c *cli) run(args []string) int {
	if len(args) < 1 {
		c.usage(c.stderr)
		return exitUsage
	}

	cmd := args[0]
	switch cmd {
	case "run":
		return c.cmdRun(args[1:])
	case "exec":
		return c.cmdExec(args[1:])
	case "repl":
		return c.cmdRepl(args[1:])
	case "watch":
		return c.cmdWatch(args[1:])
	case "version":
		return c.cmdVersion(args[1:])
	case "-h", "--help", "help":
		c.usage(c.stdout)
		return exitOK
	default:
		fmt.Fprintf(c.stderr, "minic: unknown command %q\n", cmd)
		c.usage(c.stderr)
		return exitUsage
	}
}

func (c *cli) usage(w io.Writer) {
	fmt.Fprint(w, `minic - compile and run mini-language programs

Usage:
    minic run [flags] <file.mc>...      Compile, optimize and run programs
    minic exec [flags] <prog.json|->    Run an IR program in JSON form
    minic repl [flags]                  Start an interactive session
    minic watch [flags] <file.mc>       Re-run a program whenever it is saved
    minic version [-require <range>]    Show version, or check it against a range
    minic help                          Show this help message

Flags:
    -O <level>          Optimization level (0-2, default 1)
    -emit <artifact>    output, tokens, ast, ir, opt, symbols or json
    -j <n>              Programs run in parallel (run only)
    -v                  Phase timings and debug logging
    -log-level <lvl>    debug, info, warn, error
    -log-format <fmt>   text or json
    -log-file <path>    Append logs to a file

Environment:
    MINIC_OPT_LEVEL, MINIC_LOG_LEVEL, MINIC_LOG_FORMAT, MINIC_LOG_FILE,
    MINIC_HISTORY, MINIC_JOBS
`)
}

// setup parses the shared flags for a subcommand and starts logging. -v
// alone switches to development logging on stderr. The returned cleanup must
// be called when the command finishes.
func (c *cli) setup(name string, args []string) (config.Config, *flag.FlagSet, func(bool), error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, nil, nil, err
	}

	fs := flag.NewFlagSet("minic "+name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	cfg.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return cfg, nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, nil, nil, err
	}

	if cfg.Verbose && cfg.LogFile == "" && cfg.LogFormat != "json" {
		err = logger.InitDev(c.stderr)
	} else {
		lc := cfg.LoggerConfig()
		lc.Output = c.stderr
		err = logger.Init(lc)
	}
	if err != nil {
		return cfg, nil, nil, err
	}

	start := time.Now()
	logger.LogCompilerStart(append([]string{name}, args...))
	done := func(success bool) {
		logger.LogCompilerComplete(success, time.Since(start))
		logger.Reset()
	}
	return cfg, fs, done, nil
}

// failSetup reports a setup error. -h is not one.
func (c *cli) failSetup(err error) int {
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	fmt.Fprintf(c.stderr, "minic: %v\n", err)
	return exitUsage
}
