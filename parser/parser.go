// Package parser implements a Pratt (precedence-climbing) parser that
// turns a token stream into an ast.Expr tree.
package parser

import (
	"fmt"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/exprflow/exprflow/ast"
	"github.com/exprflow/exprflow/exprerr"
	"github.com/exprflow/exprflow/lexer"
	"github.com/exprflow/exprflow/token"
	"github.com/exprflow/exprflow/value"
)

// maxSuggestions caps how many fuzzy "did you mean" candidates are
// attached to an unknown-builtin ParseError.
const maxSuggestions = 3

// Precedence levels, low to high, matching the ladder named in the
// grammar: NONE, ASSIGNMENT, OR, AND, EQUALITY, COMPARISON, TERM,
// FACTOR, POWER, UNARY, CALL, PRIMARY.
const (
	precNone = iota
	precAssignment
	precOr
	precAnd
	precEquality
	precComparison
	precTerm
	precFactor
	precPower
	precUnary
	precCall
	precPrimary
)

const maxCallArguments = 255

// Opt configures a Parser at construction time.
type Opt func(*Parser)

// WithKnownBuiltins supplies the set of built-in function names the
// parser knows about. When a Call's callee name isn't in this set,
// the parser attaches ranked "did you mean" Suggestions to the
// resulting ParseError instead of leaving the unknown name to be
// reported later, without suggestions, at compile or evaluation time.
func WithKnownBuiltins(names []string) Opt {
	return func(p *Parser) { p.knownBuiltins = names }
}

// Parser is a streaming Pratt parser: it pulls tokens from a Lexer one
// at a time rather than materializing a token vector up front.
type Parser struct {
	lex      *lexer.Lexer
	prev     token.Token
	current  token.Token
	primeErr error

	knownBuiltins []string
}

// New returns a Parser over source, primed with its first token so
// the first advance() inside parseExpr has a real token to shift into
// p.prev — without this, p.current's zero value (Type 0) is
// indistinguishable from a genuine token.Eof, since Eof is the first
// iota constant, and Parse would treat every non-empty source as
// already exhausted. A lex error on that first token is held until
// Parse so New keeps its no-error signature.
func New(source string, opts ...Opt) *Parser {
	p := &Parser{lex: lexer.New(source)}
	for _, opt := range opts {
		opt(p)
	}
	tok, err := p.lex.NextToken()
	if err != nil {
		p.primeErr = err
	} else {
		p.current = tok
	}
	return p
}

// Parse consumes the entire source and returns one expression, or a
// *exprerr.ParseError. Trailing tokens after a complete expression are
// an "unknown token" error; the spec requires parsing to reach Eof.
func (p *Parser) Parse() (ast.Expr, error) {
	if p.primeErr != nil {
		return nil, p.primeErr
	}
	expr, err := p.parseExpr(precNone)
	if err != nil {
		return nil, err
	}
	if p.current.Type != token.Eof {
		return nil, p.errorAt(p.current, fmt.Sprintf("unknown token: %q", p.current.Lexeme))
	}
	return expr, nil
}

func (p *Parser) parseExpr(minPrec int) (ast.Expr, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	lhs, err := p.parsePrefix(p.prev)
	if err != nil {
		return nil, err
	}

	for p.current.Type != token.Eof {
		prec := p.precedenceOf(p.current.Type)
		if prec <= minPrec {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		lhs, err = p.parseInfix(lhs, p.prev)
		if err != nil {
			return nil, err
		}
	}
	return lhs, nil
}

func (p *Parser) precedenceOf(typ token.Type) int {
	switch typ {
	case token.Plus, token.Minus:
		return precTerm
	case token.Star, token.Slash, token.Percent:
		return precFactor
	case token.StarStar:
		return precPower
	case token.Equal:
		return precAssignment
	case token.PipePipe:
		return precOr
	case token.AmpAmp:
		return precAnd
	case token.EqualEqual, token.BangEqual:
		return precEquality
	case token.Less, token.LessEqual, token.Greater, token.GreaterEqual:
		return precComparison
	case token.LeftParen, token.Dot:
		return precCall
	default:
		return precNone
	}
}

func (p *Parser) parsePrefix(tok token.Token) (ast.Expr, error) {
	switch tok.Type {
	case token.Number, token.String, token.True, token.False, token.Null:
		return p.literal(tok), nil
	case token.Identifier:
		return &ast.IdExpr{Name: tok}, nil
	case token.LeftParen:
		return p.group()
	case token.Minus, token.Bang:
		return p.unary(tok)
	case token.If:
		return p.ifExpr()
	default:
		return nil, p.errorAt(tok, fmt.Sprintf("unknown token: %q", tok.Lexeme))
	}
}

func (p *Parser) parseInfix(lhs ast.Expr, tok token.Token) (ast.Expr, error) {
	switch tok.Type {
	case token.Plus, token.Minus:
		return p.binary(lhs, tok, precTerm, false)
	case token.Star, token.Slash, token.Percent:
		return p.binary(lhs, tok, precFactor, false)
	case token.StarStar:
		return p.binary(lhs, tok, precPower, true)
	case token.Equal:
		return p.assign(lhs, tok)
	case token.PipePipe:
		return p.logic(lhs, tok, precOr)
	case token.AmpAmp:
		return p.logic(lhs, tok, precAnd)
	case token.EqualEqual, token.BangEqual:
		return p.binary(lhs, tok, precEquality, false)
	case token.Less, token.LessEqual, token.Greater, token.GreaterEqual:
		return p.binary(lhs, tok, precComparison, false)
	case token.LeftParen:
		return p.call(lhs)
	case token.Dot:
		return p.get(lhs)
	default:
		return nil, p.errorAt(tok, fmt.Sprintf("unknown infix operator: %q", tok.Lexeme))
	}
}

func (p *Parser) literal(tok token.Token) ast.Expr {
	var v value.Value
	switch tok.Type {
	case token.Number, token.String:
		if lit, ok := tok.Literal.(value.Value); ok {
			v = lit
		} else {
			v = value.NullValue
		}
	case token.True:
		v = value.NewBool(true)
	case token.False:
		v = value.NewBool(false)
	default:
		v = value.NullValue
	}
	return &ast.LiteralExpr{Value: v}
}

func (p *Parser) group() (ast.Expr, error) {
	expr, err := p.parseExpr(precNone)
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RightParen, "expected ')' after expression"); err != nil {
		return nil, err
	}
	return expr, nil
}

func (p *Parser) unary(tok token.Token) (ast.Expr, error) {
	right, err := p.parseExpr(precUnary)
	if err != nil {
		return nil, err
	}
	return &ast.UnaryExpr{Operator: tok, Right: right}, nil
}

func (p *Parser) ifExpr() (ast.Expr, error) {
	if _, err := p.consume(token.LeftParen, "expected '(' after 'if'"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr(precNone)
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.Comma, "expected ',' after condition"); err != nil {
		return nil, err
	}
	thenBranch, err := p.parseExpr(precNone)
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.Comma, "expected ',' after then branch"); err != nil {
		return nil, err
	}
	elseBranch, err := p.parseExpr(precNone)
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RightParen, "expected ')' after else branch"); err != nil {
		return nil, err
	}
	return &ast.IfExpr{Condition: cond, ThenBranch: thenBranch, ElseBranch: elseBranch}, nil
}

func (p *Parser) binary(lhs ast.Expr, tok token.Token, prec int, rightAssoc bool) (ast.Expr, error) {
	parsePrec := prec
	if rightAssoc {
		parsePrec = prec - 1
	}
	rhs, err := p.parseExpr(parsePrec)
	if err != nil {
		return nil, err
	}
	return &ast.BinaryExpr{Left: lhs, Operator: tok, Right: rhs}, nil
}

func (p *Parser) logic(lhs ast.Expr, tok token.Token, prec int) (ast.Expr, error) {
	rhs, err := p.parseExpr(prec)
	if err != nil {
		return nil, err
	}
	return &ast.LogicExpr{Left: lhs, Operator: tok, Right: rhs}, nil
}

// assign handles right-assoc "=". A Get{object,name} left-hand side
// rewrites to a Set expression; anything else becomes an Assign whose
// left-hand side validity (must be an Id) is checked at eval time.
func (p *Parser) assign(lhs ast.Expr, tok token.Token) (ast.Expr, error) {
	rhs, err := p.parseExpr(precAssignment - 1)
	if err != nil {
		return nil, err
	}
	if get, ok := lhs.(*ast.GetExpr); ok {
		return &ast.SetExpr{Object: get.Object, Name: get.Name, Value: rhs}, nil
	}
	return &ast.AssignExpr{Left: lhs, Operator: tok, Right: rhs}, nil
}

func (p *Parser) call(callee ast.Expr) (ast.Expr, error) {
	var args []ast.Expr
	if p.current.Type != token.RightParen {
		for {
			if len(args) >= maxCallArguments {
				return nil, p.errorAt(p.current, "can't have more than 255 arguments")
			}
			arg, err := p.parseExpr(precNone)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.matchToken(token.Comma) {
				break
			}
		}
	}
	rparen, err := p.consume(token.RightParen, "expected ')' after arguments")
	if err != nil {
		return nil, err
	}

	if id, ok := callee.(*ast.IdExpr); ok && len(p.knownBuiltins) > 0 {
		if !p.isKnownBuiltin(id.Name.Lexeme) {
			return nil, p.unknownBuiltinError(id.Name)
		}
	}
	return &ast.CallExpr{Callee: callee, Arguments: args, RParen: rparen}, nil
}

func (p *Parser) get(object ast.Expr) (ast.Expr, error) {
	name, err := p.consume(token.Identifier, "expect property name after '.'")
	if err != nil {
		return nil, err
	}
	return &ast.GetExpr{Object: object, Name: name}, nil
}

// unknownBuiltinError reports an unrecognized callee name, attaching
// ranked fuzzy-match suggestions from the known builtin set.
func (p *Parser) unknownBuiltinError(name token.Token) error {
	err := exprerr.NewParseError(name.Line, fmt.Sprintf("unknown function: %q", name.Lexeme))
	ranked := fuzzy.RankFindFold(name.Lexeme, p.knownBuiltins)
	ranked.Sort()
	suggestions := make([]string, 0, maxSuggestions)
	for _, r := range ranked {
		if len(suggestions) >= maxSuggestions {
			break
		}
		suggestions = append(suggestions, r.Target)
	}
	if len(suggestions) > 0 {
		err.WithSuggestions(suggestions)
	}
	return err
}

func (p *Parser) isKnownBuiltin(name string) bool {
	for _, n := range p.knownBuiltins {
		if n == name {
			return true
		}
	}
	return false
}

func (p *Parser) matchToken(typ token.Type) bool {
	if p.current.Type != typ {
		return false
	}
	_ = p.advance()
	return true
}

func (p *Parser) consume(typ token.Type, message string) (token.Token, error) {
	if p.current.Type != typ {
		return token.Token{}, p.errorAt(p.current, message)
	}
	if err := p.advance(); err != nil {
		return token.Token{}, err
	}
	return p.prev, nil
}

func (p *Parser) advance() error {
	p.prev = p.current
	if p.current.Type == token.Eof {
		return nil
	}
	tok, err := p.lex.NextToken()
	if err != nil {
		return err
	}
	p.current = tok
	return nil
}

func (p *Parser) errorAt(tok token.Token, message string) error {
	return exprerr.NewParseError(tok.Line, message)
}
