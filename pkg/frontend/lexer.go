// Package frontend - Lexer for the minic language
// Design: Hand-written scanner, one pass, first unknown character aborts
package frontend

import (
	"fmt"
	"unicode"
)

type TokenKind int

const (
	EOF TokenKind = iota
	KEYWORD
	IDENTIFIER
	NUMBER
	OPERATOR
	PUNCTUATION
)

var kindNames = map[TokenKind]string{
	EOF:         "EOF",
	KEYWORD:     "KEYWORD",
	IDENTIFIER:  "IDENTIFIER",
	NUMBER:      "NUMBER",
	OPERATOR:    "OPERATOR",
	PUNCTUATION: "PUNCTUATION",
}

func (k TokenKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

func (k TokenKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

var keywords = map[string]bool{
	"let":   true,
	"const": true,
}

type Token struct {
	Kind   TokenKind `json:"type"`
	Lexeme string    `json:"value"`
	Line   int       `json:"line"`
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q (line %d)", t.Kind, t.Lexeme, t.Line)
}

// is reports whether t has the given kind and lexeme.
func (t Token) is(kind TokenKind, lexeme string) bool {
	return t.Kind == kind && t.Lexeme == lexeme
}

// LexError reports a character that starts no token.
type LexError struct {
	Char rune
	Line int
}

func (e *LexError) Error() string {
	return fmt.Sprintf("line %d: unexpected character '%c'", e.Line, e.Char)
}

type Lexer struct {
	source []rune
	pos    int
	line   int
}

func NewLexer(source string) *Lexer {
	return &Lexer{
		source: []rune(source),
		line:   1,
	}
}

// Tokenize scans the whole source. The result always ends with exactly one
// EOF token.
func Tokenize(source string) ([]Token, error) {
	l := NewLexer(source)
	var tokens []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == EOF {
			return tokens, nil
		}
	}
}

// Next returns the next token. Once EOF has been returned, further calls
// keep returning EOF.
func (l *Lexer) Next() (Token, error) {
	for !l.isAtEnd() {
		c := l.peek()

		if unicode.IsSpace(c) {
			if c == '\n' {
				l.line++
			}
			l.advance()
			continue
		}

		if c == '/' && l.peekNext() == '/' {
			for !l.isAtEnd() && l.peek() != '\n' {
				l.advance()
			}
			continue
		}

		start := l.pos

		switch {
		case isDigit(c):
			for !l.isAtEnd() && isDigit(l.peek()) {
				l.advance()
			}
			return l.makeToken(NUMBER, start), nil

		case isIdentStart(c):
			for !l.isAtEnd() && isIdentPart(l.peek()) {
				l.advance()
			}
			tok := l.makeToken(IDENTIFIER, start)
			if keywords[tok.Lexeme] {
				tok.Kind = KEYWORD
			}
			return tok, nil
		}

		l.advance()
		switch c {
		case '+', '-', '*', '/', '=':
			return l.makeToken(OPERATOR, start), nil
		case '(', ')', ';', ',':
			return l.makeToken(PUNCTUATION, start), nil
		}

		return Token{}, &LexError{Char: c, Line: l.line}
	}

	return Token{Kind: EOF, Lexeme: "EOF", Line: l.line}, nil
}

func (l *Lexer) peek() rune {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.pos]
}

func (l *Lexer) peekNext() rune {
	if l.pos+1 >= len(l.source) {
		return 0
	}
	return l.source[l.pos+1]
}

func (l *Lexer) advance() rune {
	c := l.source[l.pos]
	l.pos++
	return c
}

func (l *Lexer) isAtEnd() bool {
	return l.pos >= len(l.source)
}

func (l *Lexer) makeToken(kind TokenKind, start int) Token {
	return Token{
		Kind:   kind,
		Lexeme: string(l.source[start:l.pos]),
		Line:   l.line,
	}
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c rune) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c rune) bool {
	return isIdentStart(c) || isDigit(c)
}
