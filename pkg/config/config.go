// Package config resolves minic settings from defaults, the environment
// and command-line flags, in that order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/GriffinCanCode/minic/pkg/logger"
	"github.com/GriffinCanCode/minic/pkg/optimizer"
)

// Environment variables consulted by FromEnv.
const (
	EnvOptLevel  = "MINIC_OPT_LEVEL"
	EnvLogLevel  = "MINIC_LOG_LEVEL"
	EnvLogFormat = "MINIC_LOG_FORMAT"
	EnvLogFile   = "MINIC_LOG_FILE"
	EnvHistory   = "MINIC_HISTORY"
	EnvJobs      = "MINIC_JOBS"
)

// Emit selects which pipeline artifact a command prints.
type Emit string

const (
	EmitOutput  Emit = "output"
	EmitTokens  Emit = "tokens"
	EmitAST     Emit = "ast"
	EmitIR      Emit = "ir"
	EmitOpt     Emit = "opt"
	EmitSymbols Emit = "symbols"
	EmitJSON    Emit = "json"
)

var validEmits = map[Emit]bool{
	EmitOutput:  true,
	EmitTokens:  true,
	EmitAST:     true,
	EmitIR:      true,
	EmitOpt:     true,
	EmitSymbols: true,
	EmitJSON:    true,
}

type Config struct {
	OptLevel    int
	LogLevel    string
	LogFormat   string
	LogFile     string
	Verbose     bool
	Emit        Emit
	HistoryFile string
	Jobs        int
}

func Default() Config {
	history := ".minic_history"
	if home, err := os.UserHomeDir(); err == nil {
		history = filepath.Join(home, history)
	}
	return Config{
		OptLevel:    optimizer.DefaultLevel,
		LogLevel:    "warn",
		LogFormat:   "text",
		Emit:        EmitOutput,
		HistoryFile: history,
		Jobs:        runtime.NumCPU(),
	}
}

// Load returns defaults overridden by the process environment.
func Load() (Config, error) {
	cfg := Default()
	err := cfg.FromEnv(os.LookupEnv)
	return cfg, err
}

// FromEnv overrides fields from the variables lookup can see.
func (c *Config) FromEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvOptLevel); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvOptLevel, err)
		}
		c.OptLevel = n
	}
	if v, ok := lookup(EnvJobs); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvJobs, err)
		}
		c.Jobs = n
	}
	if v, ok := lookup(EnvLogLevel); ok {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvLogFormat); ok {
		c.LogFormat = v
	}
	if v, ok := lookup(EnvLogFile); ok {
		c.LogFile = v
	}
	if v, ok := lookup(EnvHistory); ok {
		c.HistoryFile = v
	}
	return nil
}

// RegisterFlags binds the shared flags to fs, using the current values as
// defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.OptLevel, "O", c.OptLevel, "optimization level: 0 none, 1 dead-code elimination, 2 adds peephole rewrites")
	fs.BoolVar(&c.Verbose, "v", c.Verbose, "verbose output (phase timings, debug logging)")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "log format: text or json")
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "append logs to this file instead of stderr")
	fs.IntVar(&c.Jobs, "j", c.Jobs, "maximum programs run in parallel")
	fs.Func("emit", "artifact to print: output, tokens, ast, ir, opt, symbols, json", func(s string) error {
		e := Emit(s)
		if !validEmits[e] {
			return fmt.Errorf("unknown artifact %q", s)
		}
		c.Emit = e
		return nil
	})
}

func (c Config) Validate() error {
	var errs []error
	if c.OptLevel < 0 || c.OptLevel > optimizer.MaxLevel {
		errs = append(errs, fmt.Errorf("optimization level must be between 0 and %d, got %d", optimizer.MaxLevel, c.OptLevel))
	}
	if c.Jobs < 1 {
		errs = append(errs, fmt.Errorf("jobs must be at least 1, got %d", c.Jobs))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("log format must be text or json, got %q", c.LogFormat))
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if !validEmits[c.Emit] {
		errs = append(errs, fmt.Errorf("unknown artifact %q", c.Emit))
	}
	return errors.Join(errs...)
}

// LoggerConfig converts the logging fields. Verbose forces debug level.
func (c Config) LoggerConfig() logger.Config {
	lc := logger.DefaultConfig()
	if lvl, err := logger.ParseLevel(c.LogLevel); err == nil {
		lc.Level = lvl
	}
	if c.Verbose {
		lc.Level = logger.LevelDebug
	}
	lc.Format = c.LogFormat
	lc.LogFile = c.LogFile
	return lc
}
