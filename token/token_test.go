package token_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/exprflow/exprflow/token"
)

func TestKeywordLookup(t *testing.T) {
	typ, ok := token.Keywords["if"]
	assert.True(t, ok)
	assert.Equal(t, token.If, typ)

	_, ok = token.Keywords["nope"]
	assert.False(t, ok)
}

func TestStringer(t *testing.T) {
	assert.Equal(t, "StarStar", token.StarStar.String())
	assert.Equal(t, "Eof", token.Eof.String())
	assert.Equal(t, "AmpAmp", token.AmpAmp.String())
}

func TestNew(t *testing.T) {
	tok := token.New(token.Number, "9.0", 9.0, 3)
	assert.Equal(t, token.Number, tok.Type)
	assert.Equal(t, 3, tok.Line)
	assert.Equal(t, 9.0, tok.Literal)
}
