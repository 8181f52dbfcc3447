// Package text provides the textual form of tensorir programs: a
// lexer and parser producing the IR, and a printer reproducing the
// canonical text. Printing a parsed program and re-parsing the output
// yields byte-identical text.
package text

import "fmt"

// TokenKind represents the type of token.
type TokenKind uint8

const (
	TokenEOF TokenKind = iota
	TokenNewline

	TokenIdent // mnemonics, dtype names, keywords
	TokenInt   // integer literal
	TokenValue // %N value reference

	TokenQuestion     // ?
	TokenEqual        // =
	TokenColon        // :
	TokenComma        // ,
	TokenArrow        // ->
	TokenLeftParen    // (
	TokenRightParen   // )
	TokenLeftBrace    // {
	TokenRightBrace   // }
	TokenLeftBracket  // [
	TokenRightBracket // ]
)

// String returns a human-readable name for the token kind.
func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "end of file"
	case TokenNewline:
		return "end of line"
	case TokenIdent:
		return "identifier"
	case TokenInt:
		return "integer"
	case TokenValue:
		return "value reference"
	case TokenQuestion:
		return "'?'"
	case TokenEqual:
		return "'='"
	case TokenColon:
		return "':'"
	case TokenComma:
		return "','"
	case TokenArrow:
		return "'->'"
	case TokenLeftParen:
		return "'('"
	case TokenRightParen:
		return "')'"
	case TokenLeftBrace:
		return "'{'"
	case TokenRightBrace:
		return "'}'"
	case TokenLeftBracket:
		return "'['"
	case TokenRightBracket:
		return "']'"
	default:
		return fmt.Sprintf("token(%d)", k)
	}
}

// Position is a line/column location in the source, 1-based.
type Position struct {
	Line   int
	Column int
}

// Span is a source range.
type Span struct {
	Start Position
	End   Position
}

// Token is one lexical token.
type Token struct {
	Kind   TokenKind
	Lexeme string
	Span   Span
}
