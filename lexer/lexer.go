// Package lexer implements the engine's single-pass scanner, turning
// UTF-8 source text into a stream of token.Token values.
package lexer

import (
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/exprflow/exprflow/exprerr"
	"github.com/exprflow/exprflow/token"
	"github.com/exprflow/exprflow/value"
)

// ASCII fast-path classification tables, built once in init() rather
// than branching on rune ranges for every byte scanned.
var (
	isWhitespace [128]bool
	isDigit      [128]bool
	isIdentStart [128]bool
	isIdentPart  [128]bool
)

func init() {
	for i := 0; i < 128; i++ {
		ch := byte(i)
		isWhitespace[i] = ch == ' ' || ch == '\t' || ch == '\r'
		isDigit[i] = '0' <= ch && ch <= '9'
		isIdentStart[i] = ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch == '_'
		isIdentPart[i] = isIdentStart[i] || isDigit[i]
	}
}

// cjkIdentTable covers the CJK ranges that may start or continue an
// identifier: URO (U+4E00..U+9FFF) and Extension A (U+3400..U+4DBF),
// built the way the standard library defines its own Scripts tables
// (e.g. unicode.Han) rather than as a hand-rolled pair of comparisons.
var cjkIdentTable = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x3400, Hi: 0x4DBF, Stride: 1},
		{Lo: 0x4E00, Hi: 0x9FFF, Stride: 1},
	},
}

func isAlpha(r rune) bool {
	if r < 128 {
		return isIdentStart[r]
	}
	return unicode.Is(cjkIdentTable, r)
}

func isAlphaNumeric(r rune) bool {
	if r < 128 {
		return isIdentPart[r]
	}
	return unicode.Is(cjkIdentTable, r)
}

// Lexer is a single-pass, character-indexed scanner over one source
// string. NextToken streams one token at a time so the parser never
// needs a fully materialized token vector.
type Lexer struct {
	source  string
	start   int // byte offset of the current token's first rune
	current int // byte offset of the next unread rune
	line    int
}

// New returns a Lexer positioned at the start of source.
func New(source string) *Lexer {
	return &Lexer{source: source, line: 1}
}

// NextToken scans and returns the next token, or a *exprerr.ParseError
// for an unterminated string, malformed number, or unexpected
// character.
func (l *Lexer) NextToken() (token.Token, error) {
	if err := l.skipWhitespace(); err != nil {
		return token.Token{}, err
	}
	l.start = l.current
	if l.isAtEnd() {
		return token.New(token.Eof, "", nil, l.line), nil
	}

	r := l.advance()
	return l.scanToken(r)
}

func (l *Lexer) isAtEnd() bool {
	return l.current >= len(l.source)
}

func (l *Lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.source[l.current:])
	l.current += size
	return r
}

func (l *Lexer) peek() rune {
	if l.isAtEnd() {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.source[l.current:])
	return r
}

func (l *Lexer) peekNext() rune {
	if l.isAtEnd() {
		return 0
	}
	_, size := utf8.DecodeRuneInString(l.source[l.current:])
	next := l.current + size
	if next >= len(l.source) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.source[next:])
	return r
}

func (l *Lexer) match(want rune) bool {
	if l.peek() != want {
		return false
	}
	l.advance()
	return true
}

func (l *Lexer) skipWhitespace() error {
	for {
		switch c := l.peek(); {
		case c == ' ' || c == '\r' || c == '\t':
			l.advance()
		case c == '\n':
			l.line++
			l.advance()
		case c == '/' && l.peekNext() == '/':
			for l.peek() != '\n' && !l.isAtEnd() {
				l.advance()
			}
		default:
			return nil
		}
	}
}

func (l *Lexer) scanToken(c rune) (token.Token, error) {
	switch c {
	case '(':
		return l.token(token.LeftParen), nil
	case ')':
		return l.token(token.RightParen), nil
	case '{':
		return l.token(token.LeftBrace), nil
	case '}':
		return l.token(token.RightBrace), nil
	case ',':
		return l.token(token.Comma), nil
	case '.':
		return l.token(token.Dot), nil
	case '-':
		return l.token(token.Minus), nil
	case '+':
		return l.token(token.Plus), nil
	case ';':
		return l.token(token.Semicolon), nil
	case '%':
		return l.token(token.Percent), nil
	case '*':
		if l.match('*') {
			return l.token(token.StarStar), nil
		}
		return l.token(token.Star), nil
	case '/':
		return l.token(token.Slash), nil
	case '!':
		if l.match('=') {
			return l.token(token.BangEqual), nil
		}
		return l.token(token.Bang), nil
	case '=':
		if l.match('=') {
			return l.token(token.EqualEqual), nil
		}
		return l.token(token.Equal), nil
	case '>':
		if l.match('=') {
			return l.token(token.GreaterEqual), nil
		}
		return l.token(token.Greater), nil
	case '<':
		if l.match('=') {
			return l.token(token.LessEqual), nil
		}
		return l.token(token.Less), nil
	case '|':
		if l.match('|') {
			return l.token(token.PipePipe), nil
		}
		return token.Token{}, l.errorf("unexpected character: %c", c)
	case '&':
		if l.match('&') {
			return l.token(token.AmpAmp), nil
		}
		return token.Token{}, l.errorf("unexpected character: %c", c)
	case '"':
		return l.string()
	default:
		switch {
		case c >= '0' && c <= '9':
			return l.number()
		case isAlpha(c):
			return l.identifier(), nil
		default:
			return token.Token{}, l.errorf("unexpected character: %c", c)
		}
	}
}

func (l *Lexer) string() (token.Token, error) {
	for l.peek() != '"' && !l.isAtEnd() {
		if l.peek() == '\n' {
			l.line++
		}
		l.advance()
	}
	if l.isAtEnd() {
		return token.Token{}, l.errorf("unterminated string")
	}
	l.advance() // closing quote

	lit := l.source[l.start+1 : l.current-1]
	return l.tokenWithLiteral(token.String, value.NewString(lit)), nil
}

func (l *Lexer) number() (token.Token, error) {
	for isASCIIDigit(l.peek()) {
		l.advance()
	}

	isDouble := false
	if l.peek() == '.' {
		l.advance()
		if !isASCIIDigit(l.peek()) {
			return token.Token{}, l.errorf("invalid number format")
		}
		isDouble = true
		for isASCIIDigit(l.peek()) {
			l.advance()
		}
	}

	text := l.source[l.start:l.current]
	if isDouble {
		d, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return token.Token{}, l.errorf("invalid number")
		}
		return l.tokenWithLiteral(token.Number, value.NewDouble(d)), nil
	}
	i, err := strconv.ParseInt(text, 10, 32)
	if err != nil {
		return token.Token{}, l.errorf("invalid number")
	}
	return l.tokenWithLiteral(token.Number, value.NewInt(int32(i))), nil
}

func isASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func (l *Lexer) identifier() token.Token {
	for isAlphaNumeric(l.peek()) {
		l.advance()
	}
	text := l.source[l.start:l.current]
	typ, ok := token.Keywords[text]
	if !ok {
		typ = token.Identifier
	}
	return l.token(typ)
}

func (l *Lexer) token(typ token.Type) token.Token {
	text := l.source[l.start:l.current]
	return token.New(typ, text, nil, l.line)
}

func (l *Lexer) tokenWithLiteral(typ token.Type, literal value.Value) token.Token {
	text := l.source[l.start:l.current]
	return token.New(typ, text, literal, l.line)
}

func (l *Lexer) errorf(format string, args ...any) error {
	return exprerr.NewParseError(l.line, fmt.Sprintf(format, args...))
}
