package edn

import (
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mesh-intelligence/facet/pkg/emap"
)

// Printer prints a generic tree back to notation text. Output is
// deterministic: equal trees built in the same order print identically,
// and collections print in insertion order.
//
// The three hooks let a caller extend printing without this package
// knowing about its types. All hooks may be nil.
type Printer struct {
	// Rewrite is applied to every value before printing; it may replace
	// a foreign value with a printable one (e.g. unwrap a façade to its
	// underlying map).
	Rewrite func(v any) (any, bool)

	// MapTag returns the tag to prefix a map literal with, if any.
	MapTag func(m *emap.Map) (string, bool)

	// Ext prints a value of a type the notation does not know. It
	// returns the tag and the printable form; ok=false means the value
	// is unsupported and printing fails.
	Ext func(v any) (tag string, val any, ok bool, err error)
}

// Print returns the textual form of v.
func Print(v any) (string, error) {
	return (&Printer{}).Print(v)
}

// Print returns the textual form of v.
func (p *Printer) Print(v any) (string, error) {
	var b strings.Builder
	if err := p.Fprint(&b, v); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Fprint writes the textual form of v to w.
func (p *Printer) Fprint(w io.Writer, v any) error {
	var b strings.Builder
	if err := p.write(&b, v); err != nil {
		return err
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (p *Printer) write(b *strings.Builder, v any) error {
	if p.Rewrite != nil {
		if rv, ok := p.Rewrite(v); ok {
			v = rv
		}
	}
	switch tv := v.(type) {
	case nil:
		b.WriteString("nil")
	case bool:
		b.WriteString(strconv.FormatBool(tv))
	case string:
		b.WriteString(quoteString(tv))
	case int64:
		b.WriteString(strconv.FormatInt(tv, 10))
	case float64:
		b.WriteString(formatFloat(tv))
	case *big.Int:
		b.WriteString(tv.String())
		b.WriteByte('N')
	case *big.Float:
		b.WriteString(tv.Text('g', -1))
		b.WriteByte('M')
	case Keyword:
		b.WriteString(tv.String())
	case Symbol:
		b.WriteString(string(tv))
	case Char:
		b.WriteString(formatChar(rune(tv)))
	case time.Time:
		b.WriteString(`#inst "`)
		b.WriteString(tv.Format(time.RFC3339Nano))
		b.WriteByte('"')
	case uuid.UUID:
		b.WriteString(`#uuid "`)
		b.WriteString(tv.String())
		b.WriteByte('"')
	case Tagged:
		b.WriteByte('#')
		b.WriteString(tv.Tag)
		b.WriteByte(' ')
		return p.write(b, tv.Value)
	case []any:
		b.WriteByte('[')
		for i, e := range tv {
			if i > 0 {
				b.WriteByte(' ')
			}
			if err := p.write(b, e); err != nil {
				return err
			}
		}
		b.WriteByte(']')
	case *Set:
		b.WriteString("#{")
		first := true
		for e := range tv.All() {
			if !first {
				b.WriteByte(' ')
			}
			first = false
			if err := p.write(b, e); err != nil {
				return err
			}
		}
		b.WriteByte('}')
	case *emap.Map:
		if tv == nil {
			b.WriteString("nil")
			return nil
		}
		return p.writeMap(b, tv)
	default:
		if p.Ext != nil {
			tag, val, ok, err := p.Ext(v)
			if err != nil {
				return err
			}
			if ok {
				b.WriteByte('#')
				b.WriteString(tag)
				b.WriteByte(' ')
				return p.write(b, val)
			}
		}
		return fmt.Errorf("cannot print value of type %T", v)
	}
	return nil
}

func (p *Printer) writeMap(b *strings.Builder, m *emap.Map) error {
	if p.MapTag != nil {
		if tag, ok := p.MapTag(m); ok {
			b.WriteByte('#')
			b.WriteString(tag)
			b.WriteByte(' ')
		}
	}
	b.WriteByte('{')
	first := true
	for k, v := range m.All() {
		if !first {
			b.WriteString(", ")
		}
		first = false
		if err := p.write(b, k); err != nil {
			return err
		}
		b.WriteByte(' ')
		if err := p.write(b, v); err != nil {
			return err
		}
	}
	b.WriteByte('}')
	return nil
}

// formatFloat prints a float so that it re-reads as a float: the text
// always carries a '.' or an exponent.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func formatChar(r rune) string {
	switch r {
	case '\n':
		return `\newline`
	case '\r':
		return `\return`
	case ' ':
		return `\space`
	case '\t':
		return `\tab`
	}
	return `\` + string(r)
}

func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
