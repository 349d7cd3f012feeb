package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/GriffinCanCode/minic/pkg/ir"
)

const workedExample = "let x=10; let y=20; let z=30; let res=x+y; print(res);"

func runCLI(t *testing.T, stdin string, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	c := &cli{stdin: strings.NewReader(stdin), stdout: &stdout, stderr: &stderr}
	code := c.run(args)
	return stdout.String(), stderr.String(), code
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestUsageAndUnknownCommands(t *testing.T) {
	tests := []struct {
		args []string
		code int
	}{
		{nil, exitUsage},
		{[]string{"help"}, exitOK},
		{[]string{"frobnicate"}, exitUsage},
		{[]string{"run"}, exitUsage},
		{[]string{"run", "-emit", "bogus", "x.mc"}, exitUsage},
		{[]string{"run", "-O", "7", "x.mc"}, exitUsage},
		{[]string{"exec"}, exitUsage},
		{[]string{"watch"}, exitUsage},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			_, _, code := runCLI(t, "", tt.args...)
			if code != tt.code {
				t.Errorf("expected exit %d, got %d", tt.code, code)
			}
		})
	}
}

func TestRunPrintsOutput(t *testing.T) {
	path := writeFile(t, "main.mc", workedExample)

	stdout, stderr, code := runCLI(t, "", "run", path)
	if code != exitOK {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if stdout != "30\n" {
		t.Errorf("expected %q, got %q", "30\n", stdout)
	}
}

func TestRunNoOutput(t *testing.T) {
	path := writeFile(t, "quiet.mc", "let a = 1;")

	stdout, _, code := runCLI(t, "", "run", path)
	if code != exitOK {
		t.Fatalf("exit %d", code)
	}
	if stdout != "Program executed successfully (no output).\n" {
		t.Errorf("unexpected output %q", stdout)
	}
}

func TestRunEmit(t *testing.T) {
	path := writeFile(t, "main.mc", workedExample)

	tests := []struct {
		emit    string
		level   string
		want    []string
		notWant []string
	}{
		{"ir", "1", []string{"z: int = const 30", "res: int = add x y", "print res"}, nil},
		{"opt", "1", []string{"res: int = add x y", "removed 1 instruction(s)"}, []string{"z: int"}},
		{"opt", "0", []string{"z: int = const 30"}, nil},
		{"ast", "1", []string{"let z = 30;", "let res = (x + y);", "print(res);"}, nil},
		{"tokens", "1", []string{`KEYWORD "let" (line 1)`, `NUMBER "30" (line 1)`}, nil},
		{"symbols", "1", []string{"NAME", "4 variable(s), 0 temporary(ies)"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.emit+"/O"+tt.level, func(t *testing.T) {
			stdout, stderr, code := runCLI(t, "", "run", "-O", tt.level, "-emit", tt.emit, path)
			if code != exitOK {
				t.Fatalf("exit %d: %s", code, stderr)
			}
			for _, w := range tt.want {
				if !strings.Contains(stdout, w) {
					t.Errorf("expected %q in:\n%s", w, stdout)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(stdout, w) {
					t.Errorf("did not expect %q in:\n%s", w, stdout)
				}
			}
		})
	}
}

func TestRunEmitSymbolsUsage(t *testing.T) {
	path := writeFile(t, "main.mc", workedExample)

	stdout, _, code := runCLI(t, "", "run", "-emit", "symbols", path)
	if code != exitOK {
		t.Fatalf("exit %d", code)
	}

	used := map[string]string{}
	for _, line := range strings.Split(stdout, "\n") {
		f := strings.Fields(line)
		if len(f) == 4 {
			used[f[0]] = f[3]
		}
	}
	want := map[string]string{"x": "true", "y": "true", "z": "false", "res": "true"}
	for name, u := range want {
		if used[name] != u {
			t.Errorf("%s: expected used=%s, got %q", name, u, used[name])
		}
	}
}

func TestRunEmitJSON(t *testing.T) {
	path := writeFile(t, "main.mc", workedExample)

	stdout, stderr, code := runCLI(t, "", "run", "-emit", "json", path)
	if code != exitOK {
		t.Fatalf("exit %d: %s", code, stderr)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(stdout), &doc); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, stdout)
	}
	for _, key := range []string{"file", "tokens", "ast", "ir", "optimized", "removed", "symbols", "output"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}

	var output []string
	if err := json.Unmarshal(doc["output"], &output); err != nil {
		t.Fatal(err)
	}
	if len(output) != 1 || output[0] != "30" {
		t.Errorf("expected [30], got %q", output)
	}

	optimized, err := ir.Decode(bytes.NewReader(doc["optimized"]))
	if err != nil {
		t.Fatalf("optimized IR does not decode: %v", err)
	}
	if len(optimized) != 4 {
		t.Errorf("expected 4 optimized instructions, got %d", len(optimized))
	}
}

func TestRunMultipleFiles(t *testing.T) {
	good := writeFile(t, "good.mc", "print(6 * 7)")
	bad := writeFile(t, "bad.mc", "print(1 / 0)")
	broken := writeFile(t, "broken.mc", "let = 1")

	stdout, stderr, code := runCLI(t, "", "run", "-j", "2", good, bad, broken)
	if code != exitError {
		t.Errorf("expected exit %d, got %d", exitError, code)
	}
	if !strings.Contains(stdout, "==> "+good+" <==\n42\n") {
		t.Errorf("missing output for good file:\n%s", stdout)
	}
	if strings.Index(stdout, good) > strings.Index(stdout, bad) {
		t.Errorf("results out of input order:\n%s", stdout)
	}
	if !strings.Contains(stderr, "division by zero") {
		t.Errorf("expected runtime error on stderr:\n%s", stderr)
	}
	if !strings.Contains(stderr, "parse error") {
		t.Errorf("expected parse error on stderr:\n%s", stderr)
	}
}

func TestRunVerboseLogging(t *testing.T) {
	one := writeFile(t, "one.mc", "print(1)")
	two := writeFile(t, "two.mc", "print(2)")

	stdout, stderr, code := runCLI(t, "", "run", "-v", one, two)
	if code != exitOK {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if !strings.Contains(stdout, "1\n") || !strings.Contains(stdout, "2\n") {
		t.Errorf("unexpected output:\n%s", stdout)
	}
	for _, want := range []string{"level=DEBUG", "source=", "batch.file=", "batch.index=1"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("expected %q in log output:\n%s", want, stderr)
		}
	}
}

func TestRunMissingFile(t *testing.T) {
	_, stderr, code := runCLI(t, "", "run", filepath.Join(t.TempDir(), "nope.mc"))
	if code != exitError {
		t.Errorf("expected exit %d, got %d", exitError, code)
	}
	if !strings.Contains(stderr, "nope.mc") {
		t.Errorf("expected file name in error:\n%s", stderr)
	}
}

func externalProgram(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	err := ir.Encode(&buf, []ir.Instruction{
		{Op: ir.OpConst, Dest: "a", Value: -9, Type: ir.IntType},
		{Op: ir.OpConst, Dest: "b", Value: 4, Type: ir.IntType},
		{Op: ir.OpConst, Dest: "unused", Value: 1, Type: ir.IntType},
		{Op: ir.OpDiv, Dest: "c", Args: []string{"a", "b"}, Type: ir.IntType},
		{Op: ir.OpPrint, Args: []string{"c"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return buf.String()
}

func TestExec(t *testing.T) {
	prog := externalProgram(t)
	path := writeFile(t, "prog.json", prog)

	stdout, stderr, code := runCLI(t, "", "exec", path)
	if code != exitOK {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if stdout != "-3\n" {
		t.Errorf("expected -3, got %q", stdout)
	}

	stdout, _, code = runCLI(t, prog, "exec", "-")
	if code != exitOK || stdout != "-3\n" {
		t.Errorf("stdin: expected -3 and exit 0, got %q (exit %d)", stdout, code)
	}

	stdout, _, _ = runCLI(t, "", "exec", "-emit", "opt", path)
	if strings.Contains(stdout, "unused") {
		t.Errorf("expected unused const removed:\n%s", stdout)
	}

	stdout, _, _ = runCLI(t, "", "exec", "-O", "0", "-emit", "opt", path)
	if !strings.Contains(stdout, "unused: int = const 1") {
		t.Errorf("expected unused const kept at -O 0:\n%s", stdout)
	}
}

func TestExecRejectsMalformedIR(t *testing.T) {
	tests := map[string]string{
		"unknown opcode":  `[{"op": "jump", "args": ["a"]}]`,
		"const no value":  `[{"op": "const", "dest": "a", "type": "int"}]`,
		"not an array":    `{"op": "print"}`,
		"wrong arg count": `[{"op": "add", "dest": "a", "args": ["b"], "type": "int"}]`,
	}

	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, code := runCLI(t, src, "exec", "-")
			if code != exitError {
				t.Errorf("expected exit %d, got %d", exitError, code)
			}
		})
	}
}

func TestReplReadsPipedProgram(t *testing.T) {
	stdout, stderr, code := runCLI(t, "let a = 7\nprint(a / 2)\n", "repl")
	if code != exitOK {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if stdout != "3\n" {
		t.Errorf("expected 3, got %q", stdout)
	}

	_, _, code = runCLI(t, "let a = ", "repl")
	if code != exitError {
		t.Errorf("expected exit %d for a bad program, got %d", exitError, code)
	}
}

func TestVersion(t *testing.T) {
	tests := []struct {
		args []string
		code int
	}{
		{nil, exitOK},
		{[]string{"-require", ">= 0.1.0"}, exitOK},
		{[]string{"-require", "^0.1"}, exitOK},
		{[]string{"-require", ">= 1.0.0"}, exitError},
		{[]string{"-require", "foo"}, exitUsage},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			stdout, _, code := runCLI(t, "", append([]string{"version"}, tt.args...)...)
			if code != tt.code {
				t.Errorf("expected exit %d, got %d", tt.code, code)
			}
			if stdout != "minic version "+version+"\n" {
				t.Errorf("unexpected version line %q", stdout)
			}
		})
	}
}
