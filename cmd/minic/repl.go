package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"

	"github.com/GriffinCanCode/minic/pkg/config"
	"github.com/GriffinCanCode/minic/pkg/driver"
	"github.com/GriffinCanCode/minic/pkg/interp"
)

const (
	promptMain = "minic> "
	replName   = "<repl>"
	stdinName  = "<stdin>"
)

var replCommands = []string{":tokens", ":ast", ":ir", ":opt", ":symbols", ":reset", ":help", ":quit"}

const replHelp = `Enter statements to add them to the session. Each entry re-runs the
whole session and shows only output that was not shown before.

  :tokens    tokens of the session
  :ast       parsed program
  :ir        generated IR
  :opt       optimized IR
  :symbols   symbol table
  :reset     start over
  :help      this message
  :quit      leave
`

func (c *cli) cmdRepl(args []string) int {
	cfg, _, done, err := c.setup("repl", args)
	if err != nil {
		return c.failSetup(err)
	}

	var ok bool
	if isTerminal(c.stdin) {
		ok = c.interactive(cfg)
	} else {
		ok = c.runStdin(cfg)
	}

	done(ok)
	if !ok {
		return exitError
	}
	return exitOK
}

// runStdin treats piped input as a single program.
func (c *cli) runStdin(cfg config.Config) bool {
	src, err := io.ReadAll(c.stdin)
	if err != nil {
		fmt.Fprintf(c.stderr, "minic: %v\n", err)
		return false
	}
	res, err := driver.Run(stdinName, string(src), cfg.OptLevel)
	c.report(cfg, res, err)
	return err == nil
}

func (c *cli) interactive(cfg config.Config) bool {
	fmt.Fprintf(c.stdout, "minic %s. Type :help for commands, :quit to exit.\n", version)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(completeCommand)

	if cfg.HistoryFile != "" {
		if f, err := os.Open(cfg.HistoryFile); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(cfg.HistoryFile); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	s := newSession(cfg.OptLevel)
	for {
		line, err := ln.Prompt(promptMain)
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(c.stdout)
			return true
		}
		if err != nil {
			fmt.Fprintf(c.stderr, "minic: %v\n", err)
			return false
		}

		if strings.TrimSpace(line) != "" {
			ln.AppendHistory(line)
		}
		if s.handle(line, c.stdout, c.stderr) {
			return true
		}
	}
}

func completeCommand(line string) []string {
	if !strings.HasPrefix(line, ":") {
		return nil
	}
	var out []string
	for _, cmd := range replCommands {
		if strings.HasPrefix(cmd, line) {
			out = append(out, cmd)
		}
	}
	return out
}

// session is the accumulated source of one REPL run.
type session struct {
	level   int
	source  string
	printed int
	last    *driver.Result
}

func newSession(level int) *session {
	return &session{level: level}
}

// submit re-runs the session extended by src and returns the output lines
// not shown before. A submission that fails to compile or run leaves the
// session unchanged.
func (s *session) submit(src string) ([]string, error) {
	candidate := s.source + src + "\n"
	res, err := driver.Run(replName, candidate, s.level)
	if err != nil {
		return nil, err
	}

	out := res.Output
	if len(out) == 1 && out[0] == interp.NoOutputMessage {
		out = nil
	}
	var fresh []string
	if len(out) > s.printed {
		fresh = out[s.printed:]
	}

	s.source, s.printed, s.last = candidate, len(out), res
	return fresh, nil
}

func (s *session) reset() {
	*s = session{level: s.level}
}

// handle processes one input line and reports whether the session is over.
func (s *session) handle(line string, stdout, stderr io.Writer) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if strings.HasPrefix(line, ":") {
		return s.command(line, stdout, stderr)
	}

	fresh, err := s.submit(line)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return false
	}
	writeLines(stdout, fresh)
	return false
}

func (s *session) command(cmd string, stdout, stderr io.Writer) bool {
	cmd = strings.ToLower(cmd)
	switch cmd {
	case ":quit", ":q", ":exit":
		return true
	case ":help":
		fmt.Fprint(stdout, replHelp)
	case ":reset":
		s.reset()
		fmt.Fprintln(stdout, "session cleared")
	case ":tokens", ":ast", ":ir", ":opt", ":symbols":
		if s.last == nil {
			fmt.Fprintln(stdout, "nothing compiled yet")
			return false
		}
		if err := writeArtifact(stdout, config.Emit(cmd[1:]), s.last); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
		}
	default:
		fmt.Fprintf(stderr, "unknown command %s. Type :help for a list.\n", cmd)
	}
	return false
}
