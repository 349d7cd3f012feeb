// Package frontend - Recursive descent parser for minic
// Design: Predictive parsing, zero backtracking, the first error aborts
package frontend

import (
	"fmt"
	"strconv"
)

// ParseError reports the first token the grammar could not accept.
type ParseError struct {
	Line     int
	Found    string
	Expected string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: expected %s, found '%s'", e.Line, e.Expected, e.Found)
}

type Parser struct {
	tokens []Token
	pos    int
}

// NewParser expects tokens as produced by Tokenize. A missing trailing EOF
// is tolerated.
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse is shorthand for NewParser(tokens).Parse().
func Parse(tokens []Token) (*Program, error) {
	return NewParser(tokens).Parse()
}

func (p *Parser) Parse() (*Program, error) {
	prog := &Program{}

	for !p.isAtEnd() {
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		prog.Body = append(prog.Body, stmt)
	}

	return prog, nil
}

func (p *Parser) statement() (Stmt, error) {
	if p.check(KEYWORD) {
		return p.varDecl()
	}

	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	p.match(PUNCTUATION, ";")
	return expr, nil
}

func (p *Parser) varDecl() (Stmt, error) {
	kw := p.advance()

	name, err := p.expect(IDENTIFIER, "", fmt.Sprintf("variable name after '%s'", kw.Lexeme))
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(OPERATOR, "=", "'=' after variable name"); err != nil {
		return nil, err
	}

	init, err := p.expression()
	if err != nil {
		return nil, err
	}
	p.match(PUNCTUATION, ";")

	return &VarDecl{
		Name:  name.Lexeme,
		Const: kw.Lexeme == "const",
		Init:  init,
	}, nil
}

func (p *Parser) expression() (Expr, error) {
	return p.additive()
}

func (p *Parser) additive() (Expr, error) {
	expr, err := p.multiplicative()
	if err != nil {
		return nil, err
	}

	for p.checkOperator(Add, Sub) {
		op, _ := operatorFromLexeme(p.advance().Lexeme)
		right, err := p.multiplicative()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{
			Left:  expr,
			Op:    op,
			Right: right,
		}
	}

	return expr, nil
}

func (p *Parser) multiplicative() (Expr, error) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}

	for p.checkOperator(Mul, Div) {
		op, _ := operatorFromLexeme(p.advance().Lexeme)
		right, err := p.primary()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{
			Left:  expr,
			Op:    op,
			Right: right,
		}
	}

	return expr, nil
}

func (p *Parser) primary() (Expr, error) {
	tok := p.peek()

	if p.check(NUMBER) {
		p.advance()
		val, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			return nil, &ParseError{Line: tok.Line, Found: tok.Lexeme, Expected: "integer literal within 64-bit range"}
		}
		return &Literal{Value: val}, nil
	}

	if p.check(IDENTIFIER) {
		p.advance()

		// Check for function call
		if p.match(PUNCTUATION, "(") {
			args := []Expr{}
			if !p.match(PUNCTUATION, ")") {
				for {
					arg, err := p.expression()
					if err != nil {
						return nil, err
					}
					args = append(args, arg)
					if !p.match(PUNCTUATION, ",") {
						break
					}
				}
				if _, err := p.expect(PUNCTUATION, ")", "')' after arguments"); err != nil {
					return nil, err
				}
			}
			return &CallExpr{Callee: tok.Lexeme, Args: args}, nil
		}

		return &Identifier{Name: tok.Lexeme}, nil
	}

	if p.match(PUNCTUATION, "(") {
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(PUNCTUATION, ")", "')' after expression"); err != nil {
			return nil, err
		}
		return expr, nil
	}

	return nil, &ParseError{Line: tok.Line, Found: tok.Lexeme, Expected: "expression"}
}

func (p *Parser) peek() Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	line := 1
	if n := len(p.tokens); n > 0 {
		line = p.tokens[n-1].Line
	}
	return Token{Kind: EOF, Lexeme: "EOF", Line: line}
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Kind == EOF
}

func (p *Parser) advance() Token {
	tok := p.peek()
	if !p.isAtEnd() {
		p.pos++
	}
	return tok
}

func (p *Parser) check(kind TokenKind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) checkOperator(ops ...Operator) bool {
	tok := p.peek()
	if tok.Kind != OPERATOR {
		return false
	}
	op, ok := operatorFromLexeme(tok.Lexeme)
	if !ok {
		return false
	}
	for _, o := range ops {
		if o == op {
			return true
		}
	}
	return false
}

// match consumes the current token if it has the given kind and lexeme.
func (p *Parser) match(kind TokenKind, lexeme string) bool {
	if !p.peek().is(kind, lexeme) {
		return false
	}
	p.advance()
	return true
}

// expect consumes a token of the given kind (and lexeme, when non-empty)
// or fails with a ParseError describing what was wanted.
func (p *Parser) expect(kind TokenKind, lexeme, what string) (Token, error) {
	tok := p.peek()
	if tok.Kind == kind && (lexeme == "" || tok.Lexeme == lexeme) {
		return p.advance(), nil
	}
	return Token{}, &ParseError{Line: tok.Line, Found: tok.Lexeme, Expected: what}
}
