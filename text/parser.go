package text

import (
	"strconv"

	"github.com/gogpu/tensorir/ir"
)

// Parser parses tokens into a File.
type Parser struct {
	source  string
	tokens  []Token
	current int
	errors  SourceErrors

	file      File
	numValues int
	sawOp     bool
	sawOutput bool
}

// NewParser creates a parser for the given source.
func NewParser(source string) *Parser {
	return &Parser{source: source}
}

// Parse tokenizes and parses the source. Each malformed line is
// reported and skipped, so one bad operation does not hide
// diagnostics for the rest of the program.
func (p *Parser) Parse() (*File, SourceErrors) {
	tokens, err := NewLexer(p.source).Tokenize()
	if err != nil {
		return nil, SourceErrors{err.(*SourceError)}
	}
	p.tokens = tokens

	for !p.isAtEnd() {
		if p.check(TokenNewline) {
			p.advance()
			continue
		}
		definesValue := p.check(TokenValue) || p.checkIdent("input")
		if err := p.line(); err != nil {
			p.errors = append(p.errors, err)
			p.synchronize()
			if definesValue {
				// Keep the numbering in step so one bad line does
				// not cascade into numbering errors on every
				// following line.
				p.numValues++
			}
		}
	}

	if len(p.errors) > 0 {
		return nil, p.errors
	}
	return &p.file, nil
}

// line parses one item: an input, an operation, or an output.
func (p *Parser) line() *SourceError {
	switch {
	case p.checkIdent("input"):
		return p.inputDecl()
	case p.checkIdent("output"):
		return p.outputDecl()
	case p.check(TokenValue):
		return p.opDecl()
	default:
		return p.errorf(p.peek().Span, "expected 'input', 'output', or a value definition, got %s", p.peek().Kind)
	}
}

// inputDecl parses `input %N : type`.
func (p *Parser) inputDecl() *SourceError {
	start := p.advance().Span // input keyword
	if p.sawOp || p.sawOutput {
		return p.errorf(start, "inputs must be declared before operations and outputs")
	}
	id, err := p.valueID()
	if err != nil {
		return err
	}
	if id != p.numValues {
		return p.errorf(start, "input is numbered %%%d, expected %%%d", id, p.numValues)
	}
	if _, err := p.expect(TokenColon); err != nil {
		return err
	}
	shape, err := p.shape()
	if err != nil {
		return err
	}
	if _, err := p.expect(TokenNewline); err != nil {
		return err
	}
	p.file.Inputs = append(p.file.Inputs, InputDecl{ID: id, Shape: shape, Span: start})
	p.numValues++
	return nil
}

// outputDecl parses `output %N`.
func (p *Parser) outputDecl() *SourceError {
	start := p.advance().Span
	p.sawOutput = true
	id, err := p.valueID()
	if err != nil {
		return err
	}
	if _, err := p.expect(TokenNewline); err != nil {
		return err
	}
	p.file.Outputs = append(p.file.Outputs, OutputDecl{ID: id, Span: start})
	return nil
}

// opDecl parses
// `%N = mnemonic(%a, %b) {broadcast_dims = [..]} : (types) -> type`.
func (p *Parser) opDecl() *SourceError {
	if p.sawOutput {
		return p.errorf(p.peek().Span, "operations must precede outputs")
	}
	p.sawOp = true

	start := p.peek().Span
	id, err := p.valueID()
	if err != nil {
		return err
	}
	if id != p.numValues {
		return p.errorf(start, "operation result is numbered %%%d, expected %%%d", id, p.numValues)
	}
	if _, err := p.expect(TokenEqual); err != nil {
		return err
	}
	mnemonic, err := p.expect(TokenIdent)
	if err != nil {
		return err
	}

	decl := OpDecl{ID: id, Mnemonic: mnemonic.Lexeme, Span: start}

	if _, err := p.expect(TokenLeftParen); err != nil {
		return err
	}
	for !p.check(TokenRightParen) {
		if len(decl.Args) > 0 {
			if _, err := p.expect(TokenComma); err != nil {
				return err
			}
		}
		arg, err := p.valueID()
		if err != nil {
			return err
		}
		decl.Args = append(decl.Args, arg)
	}
	p.advance() // )

	if p.check(TokenLeftBrace) {
		dims, err := p.dimsAttr()
		if err != nil {
			return err
		}
		decl.Dims = dims
		decl.HasDims = true
	}

	if _, err := p.expect(TokenColon); err != nil {
		return err
	}
	if _, err := p.expect(TokenLeftParen); err != nil {
		return err
	}
	for !p.check(TokenRightParen) {
		if len(decl.ArgTypes) > 0 {
			if _, err := p.expect(TokenComma); err != nil {
				return err
			}
		}
		shape, err := p.shape()
		if err != nil {
			return err
		}
		decl.ArgTypes = append(decl.ArgTypes, shape)
	}
	p.advance() // )
	if _, err := p.expect(TokenArrow); err != nil {
		return err
	}
	result, err := p.shape()
	if err != nil {
		return err
	}
	decl.ResultType = result
	if _, err := p.expect(TokenNewline); err != nil {
		return err
	}

	if len(decl.Args) != len(decl.ArgTypes) {
		return p.errorf(start, "%s has %d operand(s) but %d operand type(s)",
			decl.Mnemonic, len(decl.Args), len(decl.ArgTypes))
	}

	p.file.Ops = append(p.file.Ops, decl)
	p.numValues++
	return nil
}

// dimsAttr parses `{broadcast_dims = [0,1]}`.
func (p *Parser) dimsAttr() ([]int, *SourceError) {
	p.advance() // {
	name, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	if name.Lexeme != "broadcast_dims" {
		return nil, p.errorf(name.Span, "unknown attribute %q, expected broadcast_dims", name.Lexeme)
	}
	if _, err := p.expect(TokenEqual); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenLeftBracket); err != nil {
		return nil, err
	}
	dims := []int{}
	for !p.check(TokenRightBracket) {
		if len(dims) > 0 {
			if _, err := p.expect(TokenComma); err != nil {
				return nil, err
			}
		}
		tok, err := p.expect(TokenInt)
		if err != nil {
			return nil, err
		}
		n, convErr := strconv.Atoi(tok.Lexeme)
		if convErr != nil {
			return nil, p.errorf(tok.Span, "invalid dimension index %q", tok.Lexeme)
		}
		dims = append(dims, n)
	}
	p.advance() // ]
	if _, err := p.expect(TokenRightBrace); err != nil {
		return nil, err
	}
	return dims, nil
}

// shape parses a type: a dtype mnemonic optionally followed by a
// bracketed dimension list, e.g. `f32`, `f32[3,4]`, `i64[?,2]`.
func (p *Parser) shape() (ir.Shape, *SourceError) {
	tok, err := p.expect(TokenIdent)
	if err != nil {
		return ir.Shape{}, err
	}
	dtype, ok := ir.DTypeFromString(tok.Lexeme)
	if !ok {
		return ir.Shape{}, p.errorf(tok.Span, "unknown element type %q", tok.Lexeme)
	}
	if !p.check(TokenLeftBracket) {
		return ir.Scalar(dtype), nil
	}
	p.advance() // [
	var dims []ir.Dim
	for !p.check(TokenRightBracket) {
		if len(dims) > 0 {
			if _, err := p.expect(TokenComma); err != nil {
				return ir.Shape{}, err
			}
		}
		switch {
		case p.check(TokenQuestion):
			p.advance()
			dims = append(dims, ir.DynamicDim)
		case p.check(TokenInt):
			tok := p.advance()
			n, convErr := strconv.ParseInt(tok.Lexeme, 10, 64)
			if convErr != nil {
				return ir.Shape{}, p.errorf(tok.Span, "invalid dimension %q", tok.Lexeme)
			}
			dims = append(dims, ir.Dim(n))
		default:
			return ir.Shape{}, p.errorf(p.peek().Span, "expected a dimension or '?', got %s", p.peek().Kind)
		}
	}
	p.advance() // ]
	if len(dims) == 0 {
		return ir.Shape{}, p.errorf(tok.Span, "empty dimension list; write the bare element type for a scalar")
	}
	return ir.MakeShape(dtype, dims...), nil
}

// valueID parses a %N reference.
func (p *Parser) valueID() (int, *SourceError) {
	tok, err := p.expect(TokenValue)
	if err != nil {
		return 0, err
	}
	n, convErr := strconv.Atoi(tok.Lexeme[1:])
	if convErr != nil {
		return 0, p.errorf(tok.Span, "invalid value reference %q", tok.Lexeme)
	}
	return n, nil
}

func (p *Parser) expect(kind TokenKind) (Token, *SourceError) {
	if !p.check(kind) {
		return Token{}, p.errorf(p.peek().Span, "expected %s, got %s", kind, p.peek().Kind)
	}
	return p.advance(), nil
}

func (p *Parser) check(kind TokenKind) bool { return p.peek().Kind == kind }

func (p *Parser) checkIdent(lexeme string) bool {
	return p.peek().Kind == TokenIdent && p.peek().Lexeme == lexeme
}

func (p *Parser) peek() Token { return p.tokens[p.current] }

func (p *Parser) advance() Token {
	tok := p.tokens[p.current]
	if !p.isAtEnd() {
		p.current++
	}
	return tok
}

func (p *Parser) isAtEnd() bool { return p.peek().Kind == TokenEOF }

// synchronize skips to the start of the next line after an error.
func (p *Parser) synchronize() {
	for !p.isAtEnd() {
		if p.advance().Kind == TokenNewline {
			return
		}
	}
}

func (p *Parser) errorf(span Span, format string, args ...any) *SourceError {
	return NewSourceErrorf(span, p.source, format, args...)
}
