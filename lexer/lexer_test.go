package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exprflow/exprflow/lexer"
	"github.com/exprflow/exprflow/token"
	"github.com/exprflow/exprflow/value"
)

func scanAll(t *testing.T, src string) []token.Token {
	t.Helper()
	l := lexer.New(src)
	var toks []token.Token
	for {
		tok, err := l.NextToken()
		require.NoError(t, err)
		toks = append(toks, tok)
		if tok.Type == token.Eof {
			return toks
		}
	}
}

func TestPunctuationAndOperators(t *testing.T) {
	toks := scanAll(t, "(){},.-+;%/ ! != = == > >= < <= * ** && ||")
	types := make([]token.Type, 0, len(toks))
	for _, tok := range toks {
		types = append(types, tok.Type)
	}
	assert.Equal(t, []token.Type{
		token.LeftParen, token.RightParen, token.LeftBrace, token.RightBrace,
		token.Comma, token.Dot, token.Minus, token.Plus, token.Semicolon,
		token.Percent, token.Slash, token.Bang, token.BangEqual, token.Equal,
		token.EqualEqual, token.Greater, token.GreaterEqual, token.Less,
		token.LessEqual, token.Star, token.StarStar, token.AmpAmp, token.PipePipe,
		token.Eof,
	}, types)
}

func TestSingleAmpAndPipeAreErrors(t *testing.T) {
	l := lexer.New("&")
	_, err := l.NextToken()
	require.Error(t, err)

	l = lexer.New("|")
	_, err = l.NextToken()
	require.Error(t, err)
}

func TestCommentSkipped(t *testing.T) {
	toks := scanAll(t, "1 // trailing comment\n+ 2")
	assert.Equal(t, token.Number, toks[0].Type)
	assert.Equal(t, token.Plus, toks[1].Type)
	assert.Equal(t, token.Number, toks[2].Type)
}

func TestStringLiteral(t *testing.T) {
	toks := scanAll(t, `"hello world"`)
	require.Equal(t, token.String, toks[0].Type)
	lit := toks[0].Literal.(value.Value)
	assert.Equal(t, "hello world", lit.AsString())
}

func TestUnterminatedStringIsError(t *testing.T) {
	l := lexer.New(`"unterminated`)
	_, err := l.NextToken()
	require.Error(t, err)
}

func TestIntegerAndDoubleNumbers(t *testing.T) {
	toks := scanAll(t, "42 9.5")
	lit0 := toks[0].Literal.(value.Value)
	assert.True(t, lit0.IsInteger())
	assert.Equal(t, int32(42), lit0.AsInteger())

	lit1 := toks[1].Literal.(value.Value)
	assert.True(t, lit1.IsDouble())
	assert.Equal(t, 9.5, lit1.AsDouble())
}

func TestTrailingDotWithNoDigitIsError(t *testing.T) {
	l := lexer.New("9.")
	_, err := l.NextToken()
	require.Error(t, err)
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	toks := scanAll(t, "if true false null elapsed")
	assert.Equal(t, token.If, toks[0].Type)
	assert.Equal(t, token.True, toks[1].Type)
	assert.Equal(t, token.False, toks[2].Type)
	assert.Equal(t, token.Null, toks[3].Type)
	assert.Equal(t, token.Identifier, toks[4].Type)
}

func TestCJKIdentifier(t *testing.T) {
	toks := scanAll(t, "变量 = 1")
	require.Equal(t, token.Identifier, toks[0].Type)
	assert.Equal(t, "变量", toks[0].Lexeme)
}

func TestLineTrackingAcrossNewlines(t *testing.T) {
	toks := scanAll(t, "1\n+\n2")
	assert.Equal(t, 1, toks[0].Line)
	assert.Equal(t, 2, toks[1].Line)
	assert.Equal(t, 3, toks[2].Line)
}

func TestUnexpectedCharacterIsError(t *testing.T) {
	l := lexer.New("^")
	_, err := l.NextToken()
	require.Error(t, err)
}
