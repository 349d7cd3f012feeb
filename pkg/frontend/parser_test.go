package frontend

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func parseSource(t *testing.T, src string) (*Program, error) {
	t.Helper()
	toks, err := Tokenize(src)
	if err != nil {
		t.Fatalf("tokenize %q: %v", src, err)
	}
	return Parse(toks)
}

func TestParseNoInput(t *testing.T) {
	prog, err := parseSource(t, "")
	if err != nil {
		t.Fatalf("expected no error for empty input, got %s", err)
	}
	if len(prog.Body) != 0 {
		t.Errorf("expected empty program, got %d statements", len(prog.Body))
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "precedence",
			src:  "let x = 1 + 2 * 3;",
			want: "let x = (1 + (2 * 3));",
		},
		{
			name: "left associative additive",
			src:  "let x = 10 - 4 - 3",
			want: "let x = ((10 - 4) - 3);",
		},
		{
			name: "left associative multiplicative",
			src:  "a / b * c",
			want: "((a / b) * c);",
		},
		{
			name: "grouping overrides precedence",
			src:  "const y = (1 + 2) * 3;",
			want: "const y = ((1 + 2) * 3);",
		},
		{
			name: "call with arguments",
			src:  "print(x, y + 1)",
			want: "print(x, (y + 1));",
		},
		{
			name: "call without arguments",
			src:  "print();",
			want: "print();",
		},
		{
			name: "optional semicolons",
			src:  "let a = 1 let b = 2; print(a)",
			want: "let a = 1;\nlet b = 2;\nprint(a);",
		},
		{
			name: "nested call",
			src:  "print(foo(1), (2))",
			want: "print(foo(1), 2);",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, err := parseSource(t, tt.src)
			if err != nil {
				t.Fatal(err)
			}
			got := strings.TrimSpace(Format(prog))
			if got != tt.want {
				t.Errorf("expected:\n%s\ngot:\n%s", tt.want, got)
			}
		})
	}
}

func TestParseNodeShapes(t *testing.T) {
	prog, err := parseSource(t, "let res = x + 2; print(res)")
	if err != nil {
		t.Fatal(err)
	}
	if len(prog.Body) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.Body))
	}

	decl, ok := prog.Body[0].(*VarDecl)
	if !ok {
		t.Fatalf("expected *VarDecl, got %T", prog.Body[0])
	}
	if decl.Name != "res" || decl.Const {
		t.Errorf("unexpected decl %+v", decl)
	}
	bin, ok := decl.Init.(*BinaryExpr)
	if !ok || bin.Op != Add {
		t.Fatalf("expected addition, got %#v", decl.Init)
	}
	if id, ok := bin.Left.(*Identifier); !ok || id.Name != "x" {
		t.Errorf("expected identifier x, got %#v", bin.Left)
	}
	if lit, ok := bin.Right.(*Literal); !ok || lit.Value != 2 {
		t.Errorf("expected literal 2, got %#v", bin.Right)
	}

	call, ok := prog.Body[1].(*CallExpr)
	if !ok || call.Callee != "print" || len(call.Args) != 1 {
		t.Fatalf("expected print call with one arg, got %#v", prog.Body[1])
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		line     int
		found    string
		expected string
	}{
		{"missing name", "let = 1", 1, "=", "variable name after 'let'"},
		{"missing equals", "let x 1", 1, "1", "'=' after variable name"},
		{"wrong operator", "const x + 1", 1, "+", "'=' after variable name"},
		{"unclosed call", "print(1, 2", 1, "EOF", "')' after arguments"},
		{"call closed by semicolon", "print(1;", 1, ";", "')' after arguments"},
		{"unclosed group", "let x = (1 + 2;\n", 1, ";", "')' after expression"},
		{"dangling operator", "let x = 1 +\n\n", 3, "EOF", "expression"},
		{"stray close paren", "\n)", 2, ")", "expression"},
		{"leading semicolon", ";", 1, ";", "expression"},
		{"assignment is not a statement", "x = 3", 1, "=", "expression"},
		{"literal overflow", "print(99999999999999999999)", 1, "99999999999999999999", "integer literal within 64-bit range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, err := parseSource(t, tt.src)
			if err == nil {
				t.Fatalf("expected error, got program %q", Format(prog))
			}
			if prog != nil {
				t.Errorf("expected no partial AST on error")
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ParseError, got %T: %v", err, err)
			}
			if pe.Line != tt.line || pe.Found != tt.found || pe.Expected != tt.expected {
				t.Errorf("expected {%d %q %q}, got {%d %q %q}",
					tt.line, tt.found, tt.expected, pe.Line, pe.Found, pe.Expected)
			}
		})
	}
}

func TestParseWithoutTrailingEOF(t *testing.T) {
	prog, err := Parse([]Token{{IDENTIFIER, "x", 1}})
	if err != nil {
		t.Fatal(err)
	}
	if len(prog.Body) != 1 {
		t.Errorf("expected 1 statement, got %d", len(prog.Body))
	}
}

func TestProgramJSON(t *testing.T) {
	prog, err := parseSource(t, "let x = 1 * y; print(x)")
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(prog)
	if err != nil {
		t.Fatal(err)
	}

	want := `{"type":"Program","body":[` +
		`{"type":"VarDecl","name":"x","value":{"type":"BinaryExpr","left":{"type":"Literal","value":1},"right":{"type":"Identifier","name":"y"},"operator":"*"}},` +
		`{"type":"CallExpr","callee":"print","args":[{"type":"Identifier","name":"x"}]}]}`
	if string(data) != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, data)
	}
}

func TestOperatorString(t *testing.T) {
	tests := []struct {
		op   Operator
		want string
	}{
		{Add, "+"},
		{Sub, "-"},
		{Mul, "*"},
		{Div, "/"},
		{Operator(-1), "?"},
		{Operator(42), "?"},
	}

	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("Operator(%d).String() = %q, want %q", int(tt.op), got, tt.want)
		}
	}
}
