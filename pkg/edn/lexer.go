package edn

import (
	"math/big"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// tokenType is the kind of lexical token.
type tokenType int

const (
	tEOF tokenType = iota
	tString
	tNumber
	tKeyword
	tSymbol
	tChar
	tLParen
	tRParen
	tLBracket
	tRBracket
	tLBrace
	tRBrace
	tSetOpen // "#{"
	tTag     // "#name"
	tDiscard // "#_"
)

// token is a lexical token with its source position (1-based).
type token struct {
	typ     tokenType
	lexeme  string
	literal any // parsed value for strings, numbers, chars, keywords
	line    int
	col     int
}

// lexer scans notation text into tokens. It is not safe for concurrent
// use; each parse gets its own lexer.
type lexer struct {
	src  string
	pos  int
	line int
	col  int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1, col: 1}
}

func (l *lexer) errorf(line, col int, format string, args ...any) error {
	return parseErrorf(line, col, format, args...)
}

// peek returns the next rune without consuming it, or -1 at end of input.
func (l *lexer) peek() rune {
	if l.pos >= len(l.src) {
		return -1
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.pos:])
	return r
}

// next consumes and returns the next rune, tracking line and column.
func (l *lexer) next() rune {
	if l.pos >= len(l.src) {
		return -1
	}
	r, sz := utf8.DecodeRuneInString(l.src[l.pos:])
	l.pos += sz
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

// skipSpace consumes whitespace (commas included) and line comments.
func (l *lexer) skipSpace() {
	for {
		r := l.peek()
		switch {
		case r == ';':
			for r != '\n' && r != -1 {
				l.next()
				r = l.peek()
			}
		case r == ',' || unicode.IsSpace(r):
			l.next()
		default:
			return
		}
	}
}

func isSymbolRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	return strings.ContainsRune(".*+!-_?$%&=<>/'", r)
}

// scan returns the next token.
func (l *lexer) scan() (token, error) {
	l.skipSpace()
	line, col := l.line, l.col
	r := l.peek()
	switch {
	case r == -1:
		return token{typ: tEOF, line: line, col: col}, nil
	case r == '(':
		l.next()
		return token{typ: tLParen, lexeme: "(", line: line, col: col}, nil
	case r == ')':
		l.next()
		return token{typ: tRParen, lexeme: ")", line: line, col: col}, nil
	case r == '[':
		l.next()
		return token{typ: tLBracket, lexeme: "[", line: line, col: col}, nil
	case r == ']':
		l.next()
		return token{typ: tRBracket, lexeme: "]", line: line, col: col}, nil
	case r == '{':
		l.next()
		return token{typ: tLBrace, lexeme: "{", line: line, col: col}, nil
	case r == '}':
		l.next()
		return token{typ: tRBrace, lexeme: "}", line: line, col: col}, nil
	case r == '"':
		return l.scanString(line, col)
	case r == '\\':
		return l.scanChar(line, col)
	case r == ':':
		return l.scanKeyword(line, col)
	case r == '#':
		return l.scanDispatch(line, col)
	case r == '+' || r == '-':
		// Sign starts a number only when a digit follows; otherwise it
		// is an ordinary symbol character ("+", "-", "->").
		if l.pos+1 < len(l.src) && isDigitByte(l.src[l.pos+1]) {
			return l.scanNumber(line, col)
		}
		return l.scanSymbol(line, col)
	case unicode.IsDigit(r):
		return l.scanNumber(line, col)
	case isSymbolRune(r):
		return l.scanSymbol(line, col)
	default:
		l.next()
		return token{}, l.errorf(line, col, "unexpected character %q", r)
	}
}

func isDigitByte(b byte) bool {
	return b >= '0' && b <= '9'
}

func (l *lexer) scanString(line, col int) (token, error) {
	l.next() // opening quote
	var b strings.Builder
	for {
		r := l.next()
		switch r {
		case -1:
			return token{}, l.errorf(line, col, "unterminated string")
		case '"':
			return token{typ: tString, lexeme: b.String(), literal: b.String(), line: line, col: col}, nil
		case '\\':
			esc := l.next()
			switch esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case 'b':
				b.WriteByte('\b')
			case 'f':
				b.WriteByte('\f')
			case '\\':
				b.WriteByte('\\')
			case '"':
				b.WriteByte('"')
			case 'u':
				cp, err := l.scanHex4(line, col)
				if err != nil {
					return token{}, err
				}
				b.WriteRune(cp)
			default:
				return token{}, l.errorf(line, col, "invalid string escape \\%c", esc)
			}
		default:
			b.WriteRune(r)
		}
	}
}

func (l *lexer) scanHex4(line, col int) (rune, error) {
	var n rune
	for i := 0; i < 4; i++ {
		r := l.next()
		var d rune
		switch {
		case r >= '0' && r <= '9':
			d = r - '0'
		case r >= 'a' && r <= 'f':
			d = r - 'a' + 10
		case r >= 'A' && r <= 'F':
			d = r - 'A' + 10
		default:
			return 0, l.errorf(line, col, "invalid \\u escape")
		}
		n = n*16 + d
	}
	return n, nil
}

// Named character literals.
var charNames = map[string]rune{
	"newline": '\n',
	"return":  '\r',
	"space":   ' ',
	"tab":     '\t',
}

func (l *lexer) scanChar(line, col int) (token, error) {
	l.next() // backslash
	r := l.next()
	if r == -1 {
		return token{}, l.errorf(line, col, "unterminated character literal")
	}
	name := string(r)
	for unicode.IsLetter(l.peek()) || unicode.IsDigit(l.peek()) {
		name += string(l.next())
	}
	if len(name) == 1 {
		return token{typ: tChar, lexeme: name, literal: r, line: line, col: col}, nil
	}
	if named, ok := charNames[name]; ok {
		return token{typ: tChar, lexeme: name, literal: named, line: line, col: col}, nil
	}
	if name[0] == 'u' && len(name) == 5 {
		cp, err := strconv.ParseUint(name[1:], 16, 32)
		if err == nil {
			return token{typ: tChar, lexeme: name, literal: rune(cp), line: line, col: col}, nil
		}
	}
	return token{}, l.errorf(line, col, "invalid character literal \\%s", name)
}

func (l *lexer) scanKeyword(line, col int) (token, error) {
	l.next() // colon
	start := l.pos
	for isSymbolRune(l.peek()) {
		l.next()
	}
	name := l.src[start:l.pos]
	if name == "" {
		return token{}, l.errorf(line, col, "empty keyword")
	}
	return token{typ: tKeyword, lexeme: ":" + name, literal: KW(name), line: line, col: col}, nil
}

func (l *lexer) scanSymbol(line, col int) (token, error) {
	start := l.pos
	for isSymbolRune(l.peek()) {
		l.next()
	}
	return token{typ: tSymbol, lexeme: l.src[start:l.pos], line: line, col: col}, nil
}

// scanDispatch handles the '#' forms: "#{", "#_" and "#tag".
func (l *lexer) scanDispatch(line, col int) (token, error) {
	l.next() // '#'
	switch l.peek() {
	case '{':
		l.next()
		return token{typ: tSetOpen, lexeme: "#{", line: line, col: col}, nil
	case '_':
		l.next()
		return token{typ: tDiscard, lexeme: "#_", line: line, col: col}, nil
	}
	start := l.pos
	for isSymbolRune(l.peek()) {
		l.next()
	}
	tag := l.src[start:l.pos]
	if tag == "" {
		return token{}, l.errorf(line, col, "empty tag")
	}
	return token{typ: tTag, lexeme: tag, line: line, col: col}, nil
}

// scanNumber scans integers, floats and the big-number suffixes N and M.
func (l *lexer) scanNumber(line, col int) (token, error) {
	start := l.pos
	if r := l.peek(); r == '+' || r == '-' {
		l.next()
	}
	float := false
	for {
		r := l.peek()
		switch {
		case unicode.IsDigit(r):
			l.next()
		case r == '.':
			float = true
			l.next()
		case r == 'e' || r == 'E':
			float = true
			l.next()
			if nr := l.peek(); nr == '+' || nr == '-' {
				l.next()
			}
		default:
			goto done
		}
	}
done:
	text := l.src[start:l.pos]
	switch l.peek() {
	case 'N':
		l.next()
		if float {
			return token{}, l.errorf(line, col, "invalid integer literal %sN", text)
		}
		n, ok := new(big.Int).SetString(text, 10)
		if !ok {
			return token{}, l.errorf(line, col, "invalid integer literal %sN", text)
		}
		return token{typ: tNumber, lexeme: text + "N", literal: n, line: line, col: col}, nil
	case 'M':
		l.next()
		f, _, err := big.ParseFloat(text, 10, bigFloatPrec, big.ToNearestEven)
		if err != nil {
			return token{}, l.errorf(line, col, "invalid decimal literal %sM", text)
		}
		return token{typ: tNumber, lexeme: text + "M", literal: f, line: line, col: col}, nil
	}
	if r := l.peek(); isSymbolRune(r) {
		return token{}, l.errorf(line, col, "invalid number literal %q", text+string(r))
	}
	if float {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return token{}, l.errorf(line, col, "invalid float literal %q", text)
		}
		return token{typ: tNumber, lexeme: text, literal: f, line: line, col: col}, nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return token{}, l.errorf(line, col, "integer literal %q out of 64-bit range", text)
	}
	return token{typ: tNumber, lexeme: text, literal: n, line: line, col: col}, nil
}

// bigFloatPrec is the mantissa precision used for arbitrary-precision
// decimal literals.
const bigFloatPrec = 128
