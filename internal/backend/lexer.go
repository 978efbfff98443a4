package backend

import (
	"fmt"

	"github.com/roach88/svconform/internal/compiler"
)

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokNumber
	tokString
	tokSystem    // $display
	tokDirective // `define
	tokPunct
)

type token struct {
	kind tokenKind
	text string
	line int
	col  int
}

// lexer is a deliberately shallow SystemVerilog tokenizer: enough to find
// keywords and brackets, not a conforming lexer.
type lexer struct {
	src  string
	pos  int
	line int
	col  int

	tokens []token
	errs   []compiler.CompileError
}

func lex(src string) ([]token, []compiler.CompileError) {
	l := &lexer{src: src, line: 1, col: 1}
	l.run()
	return l.tokens, l.errs
}

func (l *lexer) peek(off int) byte {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

func (l *lexer) advance() byte {
	c := l.src[l.pos]
	l.pos++
	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return c
}

func (l *lexer) errorf(line, col int, format string, args ...any) {
	l.errs = append(l.errs, compiler.CompileError{
		Message:  fmt.Sprintf(format, args...),
		Line:     line,
		Column:   col,
		Category: compiler.CategoryLexical,
	})
}

func (l *lexer) emit(kind tokenKind, start, line, col int) {
	l.tokens = append(l.tokens, token{kind: kind, text: l.src[start:l.pos], line: line, col: col})
}

func (l *lexer) run() {
	for l.pos < len(l.src) {
		c := l.peek(0)
		start, line, col := l.pos, l.line, l.col

		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f':
			l.advance()
		case c == '/' && l.peek(1) == '/':
			for l.pos < len(l.src) && l.peek(0) != '\n' {
				l.advance()
			}
		case c == '/' && l.peek(1) == '*':
			l.advance()
			l.advance()
			closed := false
			for l.pos < len(l.src) {
				if l.peek(0) == '*' && l.peek(1) == '/' {
					l.advance()
					l.advance()
					closed = true
					break
				}
				l.advance()
			}
			if !closed {
				l.errorf(line, col, "unterminated block comment")
			}
		case c == '"':
			l.advance()
			closed := false
			for l.pos < len(l.src) {
				ch := l.advance()
				if ch == '\\' && l.pos < len(l.src) {
					l.advance()
					continue
				}
				if ch == '"' {
					closed = true
					break
				}
				if ch == '\n' {
					break
				}
			}
			if !closed {
				l.errorf(line, col, "unterminated string literal")
				continue
			}
			l.emit(tokString, start, line, col)
		case isIdentStart(c):
			for l.pos < len(l.src) && isIdentPart(l.peek(0)) {
				l.advance()
			}
			l.emit(tokIdent, start, line, col)
		case c == '\\':
			// Escaped identifier, terminated by whitespace.
			for l.pos < len(l.src) && !isSpace(l.peek(0)) {
				l.advance()
			}
			l.emit(tokIdent, start, line, col)
		case c == '$' || c == '`':
			l.advance()
			for l.pos < len(l.src) && isIdentPart(l.peek(0)) {
				l.advance()
			}
			kind := tokSystem
			if c == '`' {
				kind = tokDirective
			}
			l.emit(kind, start, line, col)
		case isDigit(c) || c == '\'':
			l.advance()
			for l.pos < len(l.src) && isNumberPart(l.peek(0)) {
				l.advance()
			}
			l.emit(tokNumber, start, line, col)
		case c < 0x20 || c >= 0x7f:
			l.advance()
			l.errorf(line, col, "invalid character 0x%02x", c)
		default:
			l.advance()
			l.emit(tokPunct, start, line, col)
		}
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c) || c == '$'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isNumberPart(c byte) bool {
	return isIdentPart(c) || c == '\'' || c == '.' || c == '?'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f'
}
