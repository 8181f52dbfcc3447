package text

// Lexer tokenizes tensorir program text.
type Lexer struct {
	source string
	pos    int
	line   int
	column int
	start  Position
	tokens []Token
}

// NewLexer creates a new lexer for the given source.
func NewLexer(source string) *Lexer {
	estTokens := len(source) / 4
	if estTokens < 16 {
		estTokens = 16
	}
	return &Lexer{
		source: source,
		line:   1,
		column: 1,
		tokens: make([]Token, 0, estTokens),
	}
}

// Tokenize returns all tokens from the source. Spaces and tabs are
// skipped; newlines are significant because the grammar is one item
// per line, so runs of blank lines collapse into one newline token.
func (l *Lexer) Tokenize() ([]Token, error) {
	for !l.isAtEnd() {
		l.start = Position{Line: l.line, Column: l.column}
		if err := l.scanToken(); err != nil {
			return nil, err
		}
	}

	if n := len(l.tokens); n > 0 && l.tokens[n-1].Kind != TokenNewline {
		l.addToken(TokenNewline, "")
	}
	l.start = Position{Line: l.line, Column: l.column}
	l.addToken(TokenEOF, "")

	return l.tokens, nil
}

func (l *Lexer) scanToken() error {
	c := l.advance()

	switch c {
	case ' ', '\t', '\r':
		return nil
	case '\n':
		if n := len(l.tokens); n > 0 && l.tokens[n-1].Kind != TokenNewline {
			l.addToken(TokenNewline, "")
		}
		return nil
	case '/':
		if l.match('/') {
			for !l.isAtEnd() && l.peek() != '\n' {
				l.advance()
			}
			return nil
		}
		return l.errorf("unexpected character '/'")
	case '?':
		l.addToken(TokenQuestion, "?")
	case '=':
		l.addToken(TokenEqual, "=")
	case ':':
		l.addToken(TokenColon, ":")
	case ',':
		l.addToken(TokenComma, ",")
	case '(':
		l.addToken(TokenLeftParen, "(")
	case ')':
		l.addToken(TokenRightParen, ")")
	case '{':
		l.addToken(TokenLeftBrace, "{")
	case '}':
		l.addToken(TokenRightBrace, "}")
	case '[':
		l.addToken(TokenLeftBracket, "[")
	case ']':
		l.addToken(TokenRightBracket, "]")
	case '-':
		if l.match('>') {
			l.addToken(TokenArrow, "->")
			return nil
		}
		return l.errorf("unexpected character '-'")
	case '%':
		return l.valueRef()
	default:
		switch {
		case isDigit(c):
			return l.number(c)
		case isIdentStart(c):
			return l.identifier(c)
		default:
			return l.errorf("unexpected character %q", c)
		}
	}
	return nil
}

func (l *Lexer) valueRef() error {
	lexeme := []byte{'%'}
	if l.isAtEnd() || !isDigit(l.peek()) {
		return l.errorf("'%%' must be followed by a value number")
	}
	for !l.isAtEnd() && isDigit(l.peek()) {
		lexeme = append(lexeme, l.advance())
	}
	l.addToken(TokenValue, string(lexeme))
	return nil
}

func (l *Lexer) number(first byte) error {
	lexeme := []byte{first}
	for !l.isAtEnd() && isDigit(l.peek()) {
		lexeme = append(lexeme, l.advance())
	}
	l.addToken(TokenInt, string(lexeme))
	return nil
}

func (l *Lexer) identifier(first byte) error {
	lexeme := []byte{first}
	for !l.isAtEnd() && isIdentPart(l.peek()) {
		lexeme = append(lexeme, l.advance())
	}
	l.addToken(TokenIdent, string(lexeme))
	return nil
}

func (l *Lexer) advance() byte {
	c := l.source[l.pos]
	l.pos++
	if c == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return c
}

func (l *Lexer) match(expected byte) bool {
	if l.isAtEnd() || l.source[l.pos] != expected {
		return false
	}
	l.advance()
	return true
}

func (l *Lexer) peek() byte { return l.source[l.pos] }

func (l *Lexer) isAtEnd() bool { return l.pos >= len(l.source) }

func (l *Lexer) addToken(kind TokenKind, lexeme string) {
	l.tokens = append(l.tokens, Token{
		Kind:   kind,
		Lexeme: lexeme,
		Span: Span{
			Start: l.start,
			End:   Position{Line: l.line, Column: l.column},
		},
	})
}

func (l *Lexer) errorf(format string, args ...any) error {
	return NewSourceErrorf(Span{Start: l.start}, l.source, format, args...)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }
