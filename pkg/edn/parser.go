package edn

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/mesh-intelligence/facet/pkg/emap"
)

// TagFunc resolves a non-built-in tagged literal during parsing. It
// receives the tag name (without '#') and the already-parsed value, and
// returns the value the literal stands for. Returning an error aborts
// the parse.
type TagFunc func(tag string, value any) (any, error)

// MaxDepth bounds container nesting during parsing.
const MaxDepth = 64

// Parser parses notation text into the generic tree. The zero value is
// ready to use; a nil TagFunc leaves unknown tagged literals as Tagged
// values.
type Parser struct {
	TagFunc TagFunc
}

// Parse parses exactly one value from src. Trailing non-whitespace input
// is a ParseError.
func Parse(src string) (any, error) {
	return (&Parser{}).Parse(src)
}

// ParseAll parses all top-level values from src.
func ParseAll(src string) ([]any, error) {
	return (&Parser{}).ParseAll(src)
}

// Parse parses exactly one value from src.
func (p *Parser) Parse(src string) (any, error) {
	lex := newLexer(src)
	v, err := p.parseValue(lex, 0)
	if err != nil {
		return nil, err
	}
	tok, err := lex.scan()
	if err != nil {
		return nil, err
	}
	if tok.typ != tEOF {
		return nil, parseErrorf(tok.line, tok.col, "unexpected input after value: %q", tok.lexeme)
	}
	return v, nil
}

// ParseAll parses every top-level value in src.
func (p *Parser) ParseAll(src string) ([]any, error) {
	lex := newLexer(src)
	var out []any
	for {
		lex.skipSpace()
		if lex.peek() == -1 {
			return out, nil
		}
		v, err := p.parseValue(lex, 0)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
}

// Scanner reads successive top-level values from src. Next returns
// io.EOF when the input is exhausted.
type Scanner struct {
	p   *Parser
	lex *lexer
}

// Scanner returns a scanner over src using p's tag resolution.
func (p *Parser) Scanner(src string) *Scanner {
	return &Scanner{p: p, lex: newLexer(src)}
}

// Next parses and returns the next top-level value, or io.EOF.
func (s *Scanner) Next() (any, error) {
	s.lex.skipSpace()
	if s.lex.peek() == -1 {
		return nil, io.EOF
	}
	return s.p.parseValue(s.lex, 0)
}

func (p *Parser) parseValue(lex *lexer, depth int) (any, error) {
	tok, err := lex.scan()
	if err != nil {
		return nil, err
	}
	return p.parseFrom(lex, tok, depth)
}

func (p *Parser) parseFrom(lex *lexer, tok token, depth int) (any, error) {
	if depth >= MaxDepth {
		return nil, parseErrorf(tok.line, tok.col, "nesting exceeds %d levels", MaxDepth)
	}
	switch tok.typ {
	case tEOF:
		return nil, parseErrorf(tok.line, tok.col, "unexpected end of input")
	case tString, tNumber, tChar, tKeyword:
		if tok.typ == tChar {
			return Char(tok.literal.(rune)), nil
		}
		return tok.literal, nil
	case tSymbol:
		switch tok.lexeme {
		case "nil":
			return nil, nil
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return Symbol(tok.lexeme), nil
	case tLBracket:
		return p.parseSeq(lex, tRBracket, depth)
	case tLParen:
		return p.parseSeq(lex, tRParen, depth)
	case tLBrace:
		return p.parseMap(lex, tok, depth)
	case tSetOpen:
		elems, err := p.parseElems(lex, tRBrace, depth)
		if err != nil {
			return nil, err
		}
		return NewSet(elems...), nil
	case tDiscard:
		if _, err := p.parseValue(lex, depth+1); err != nil {
			return nil, err
		}
		return p.parseValue(lex, depth)
	case tTag:
		return p.parseTagged(lex, tok, depth)
	default:
		return nil, parseErrorf(tok.line, tok.col, "unexpected %q", tok.lexeme)
	}
}

func (p *Parser) parseSeq(lex *lexer, closer tokenType, depth int) ([]any, error) {
	elems, err := p.parseElems(lex, closer, depth)
	if err != nil {
		return nil, err
	}
	if elems == nil {
		elems = []any{}
	}
	return elems, nil
}

func (p *Parser) parseElems(lex *lexer, closer tokenType, depth int) ([]any, error) {
	var elems []any
	for {
		tok, err := lex.scan()
		if err != nil {
			return nil, err
		}
		switch tok.typ {
		case closer:
			return elems, nil
		case tEOF:
			return nil, parseErrorf(tok.line, tok.col, "unterminated collection")
		case tDiscard:
			// The discarded value may be the last thing before the closer.
			if _, err := p.parseValue(lex, depth+1); err != nil {
				return nil, err
			}
			continue
		}
		v, err := p.parseFrom(lex, tok, depth+1)
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)
	}
}

func (p *Parser) parseMap(lex *lexer, open token, depth int) (*emap.Map, error) {
	m := emap.New()
	for {
		tok, err := lex.scan()
		if err != nil {
			return nil, err
		}
		switch tok.typ {
		case tRBrace:
			return m, nil
		case tEOF:
			return nil, parseErrorf(tok.line, tok.col, "unterminated map")
		case tDiscard:
			if _, err := p.parseValue(lex, depth+1); err != nil {
				return nil, err
			}
			continue
		}
		key, err := p.parseFrom(lex, tok, depth+1)
		if err != nil {
			return nil, err
		}
		switch key.(type) {
		case Keyword, string:
		default:
			return nil, parseErrorf(tok.line, tok.col, "map key must be a keyword or string, got %T", key)
		}
		if m.Has(key) {
			return nil, parseErrorf(tok.line, tok.col, "duplicate map key %v", key)
		}
		vtok, err := lex.scan()
		if err != nil {
			return nil, err
		}
		if vtok.typ == tRBrace || vtok.typ == tEOF {
			return nil, parseErrorf(vtok.line, vtok.col, "map key %v has no value", key)
		}
		val, err := p.parseFrom(lex, vtok, depth+1)
		if err != nil {
			return nil, err
		}
		m = m.Assoc(key, val)
	}
}

func (p *Parser) parseTagged(lex *lexer, tok token, depth int) (any, error) {
	v, err := p.parseValue(lex, depth+1)
	if err != nil {
		return nil, err
	}
	switch tok.lexeme {
	case "inst":
		s, ok := v.(string)
		if !ok {
			return nil, parseErrorf(tok.line, tok.col, "#inst requires a string, got %T", v)
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, parseErrorf(tok.line, tok.col, "#inst %q: %v", s, err)
		}
		return t, nil
	case "uuid":
		s, ok := v.(string)
		if !ok {
			return nil, parseErrorf(tok.line, tok.col, "#uuid requires a string, got %T", v)
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, parseErrorf(tok.line, tok.col, "#uuid %q: %v", s, err)
		}
		return id, nil
	}
	if p.TagFunc != nil {
		return p.TagFunc(tok.lexeme, v)
	}
	return Tagged{Tag: tok.lexeme, Value: v}, nil
}
