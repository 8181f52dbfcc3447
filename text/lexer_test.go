package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(tokens []Token) []TokenKind {
	out := make([]TokenKind, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Kind
	}
	return out
}

func TestLexer_InputLine(t *testing.T) {
	tokens, err := NewLexer("input %0 : f32[3,4]\n").Tokenize()
	require.NoError(t, err)
	assert.Equal(t, []TokenKind{
		TokenIdent, TokenValue, TokenColon, TokenIdent,
		TokenLeftBracket, TokenInt, TokenComma, TokenInt, TokenRightBracket,
		TokenNewline, TokenEOF,
	}, kinds(tokens))
	assert.Equal(t, "%0", tokens[1].Lexeme)
	assert.Equal(t, "f32", tokens[3].Lexeme)
}

func TestLexer_OpLine(t *testing.T) {
	tokens, err := NewLexer("%2 = add(%0, %1) {broadcast_dims = [1]} : (f32[4], f32[3,4]) -> f32[3,4]").Tokenize()
	require.NoError(t, err)
	assert.Equal(t, TokenValue, tokens[0].Kind)
	assert.Equal(t, TokenEqual, tokens[1].Kind)
	assert.Equal(t, "add", tokens[2].Lexeme)

	// A missing final newline is supplied before EOF.
	assert.Equal(t, TokenNewline, tokens[len(tokens)-2].Kind)
	assert.Equal(t, TokenEOF, tokens[len(tokens)-1].Kind)
}

func TestLexer_DynamicDim(t *testing.T) {
	tokens, err := NewLexer("f32[?,4]").Tokenize()
	require.NoError(t, err)
	assert.Equal(t, []TokenKind{
		TokenIdent, TokenLeftBracket, TokenQuestion, TokenComma, TokenInt, TokenRightBracket,
		TokenNewline, TokenEOF,
	}, kinds(tokens))
}

func TestLexer_CommentsAndBlankLines(t *testing.T) {
	tokens, err := NewLexer("// header\n\n\noutput %0 // trailing\n").Tokenize()
	require.NoError(t, err)
	// Leading comments and blank lines produce no tokens at all.
	assert.Equal(t, []TokenKind{
		TokenIdent, TokenValue, TokenNewline, TokenEOF,
	}, kinds(tokens))
}

func TestLexer_Positions(t *testing.T) {
	tokens, err := NewLexer("output %12\n").Tokenize()
	require.NoError(t, err)
	assert.Equal(t, Position{Line: 1, Column: 1}, tokens[0].Span.Start)
	assert.Equal(t, Position{Line: 1, Column: 8}, tokens[1].Span.Start)
	assert.Equal(t, "%12", tokens[1].Lexeme)
}

func TestLexer_Errors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"bare percent", "output %\n"},
		{"percent ident", "output %x\n"},
		{"stray minus", "a - b\n"},
		{"single slash", "a / b\n"},
		{"unknown rune", "a @ b\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLexer(tt.source).Tokenize()
			assert.Error(t, err)
		})
	}
}
