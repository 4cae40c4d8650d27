// Package markupext parses markup extension expressions such as
// {Binding Path=Name, Mode=OneWay} embedded in attribute values.
package markupext

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jacoelho/xaml/internal/whitespace"
)

var (
	// ErrMalformed reports a well-bracketed expression with an invalid argument list.
	ErrMalformed = errors.New("malformed markup extension")
	// ErrUnmatchedBrace reports a missing closing brace or text after it.
	ErrUnmatchedBrace = errors.New("unmatched brace in markup extension")
)

// SyntaxError locates a parse failure within the attribute text.
type SyntaxError struct {
	Err    error
	Detail string
	Offset int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v at offset %d: %s", e.Err, e.Offset, e.Detail)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// Form classifies an attribute value.
type Form uint8

const (
	// Plain text, used as is.
	Plain Form = iota
	// Escaped text: the value started with {} or {{ and the returned text is literal.
	Escaped
	// Extension text: the value must be parsed with Parse.
	Extension
)

// Classify reports how an attribute value is to be read. For Plain and
// Escaped values the returned string is the literal text.
func Classify(text string) (Form, string) {
	switch {
	case strings.HasPrefix(text, "{}"):
		return Escaped, text[2:]
	case strings.HasPrefix(text, "{{"):
		return Escaped, text[1:]
	case strings.HasPrefix(text, "{"):
		return Extension, text
	default:
		return Plain, text
	}
}

// Node is one parsed extension.
type Node struct {
	Prefix     string
	Name       string
	Positional []string
	Named      []NamedArg
}

// NamedArg is a Key=Value argument.
type NamedArg struct {
	Name  string
	Value Value
}

// Value is either literal text or a nested extension.
type Value struct {
	Extension *Node
	Text      string
}

// TypeNames returns the type names to try, in order: NameExtension, then Name.
func (n *Node) TypeNames() []string {
	return []string{n.Name + "Extension", n.Name}
}

// Parse parses a complete extension expression. Leading and trailing
// whitespace around the outer braces is ignored.
func Parse(text string) (*Node, error) {
	p := parser{src: text}
	p.skipSpace()
	n, err := p.extension()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.eof() {
		return nil, p.errorf(ErrUnmatchedBrace, "unexpected text %q after closing brace", p.src[p.pos:])
	}
	return n, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) extension() (*Node, error) {
	if p.eof() || p.src[p.pos] != '{' {
		return nil, p.errorf(ErrMalformed, "expected '{'")
	}
	p.pos++
	p.skipSpace()
	name := p.typeName()
	if name == "" {
		return nil, p.errorf(ErrMalformed, "missing extension type name")
	}
	n := &Node{}
	if prefix, local, ok := strings.Cut(name, ":"); ok {
		if prefix == "" || local == "" {
			return nil, p.errorf(ErrMalformed, "invalid type name %q", name)
		}
		n.Prefix, n.Name = prefix, local
	} else {
		n.Name = name
	}

	for {
		p.skipSeparators()
		if p.eof() {
			return nil, p.errorf(ErrUnmatchedBrace, "missing closing brace for {%s", name)
		}
		switch p.src[p.pos] {
		case '}':
			p.pos++
			return n, nil
		case '{':
			return nil, p.errorf(ErrMalformed, "nested extension must be the value of a named argument")
		case '=':
			return nil, p.errorf(ErrMalformed, "missing argument name")
		}

		start := p.pos
		quoted := p.src[p.pos] == '\''
		tok, err := p.token(true)
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if quoted || p.eof() || p.src[p.pos] != '=' {
			if len(n.Named) > 0 {
				return nil, &SyntaxError{Err: ErrMalformed, Offset: start, Detail: fmt.Sprintf("positional argument %q after named arguments", tok)}
			}
			n.Positional = append(n.Positional, tok)
			continue
		}

		p.pos++
		p.skipSpace()
		if p.eof() {
			return nil, p.errorf(ErrUnmatchedBrace, "missing closing brace for {%s", name)
		}
		arg := NamedArg{Name: tok}
		switch p.src[p.pos] {
		case '}', ',':
			return nil, p.errorf(ErrMalformed, "missing value for %s", tok)
		case '{':
			nested, err := p.extension()
			if err != nil {
				return nil, err
			}
			arg.Value.Extension = nested
		default:
			text, err := p.token(false)
			if err != nil {
				return nil, err
			}
			arg.Value.Text = text
		}
		n.Named = append(n.Named, arg)
	}
}

// typeName reads up to the first separator or brace.
func (p *parser) typeName() string {
	start := p.pos
	for !p.eof() {
		c := p.src[p.pos]
		if whitespace.IsSpace(c) || c == ',' || c == '}' || c == '{' || c == '=' || c == '\'' {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

// token reads a quoted or bare argument. Bare tokens end at whitespace,
// a comma or a brace, and at '=' when stopAtEquals is set.
// A backslash takes the next byte literally in both forms.
func (p *parser) token(stopAtEquals bool) (string, error) {
	if p.src[p.pos] == '\'' {
		return p.quoted()
	}
	var b strings.Builder
	for !p.eof() {
		c := p.src[p.pos]
		if c == '\\' {
			if p.pos+1 >= len(p.src) {
				return "", p.errorf(ErrMalformed, "dangling escape")
			}
			b.WriteByte(p.src[p.pos+1])
			p.pos += 2
			continue
		}
		if whitespace.IsSpace(c) || c == ',' || c == '}' || c == '{' || (stopAtEquals && c == '=') {
			break
		}
		b.WriteByte(c)
		p.pos++
	}
	return b.String(), nil
}

func (p *parser) quoted() (string, error) {
	start := p.pos
	p.pos++
	var b strings.Builder
	for !p.eof() {
		c := p.src[p.pos]
		switch c {
		case '\\':
			if p.pos+1 >= len(p.src) {
				return "", p.errorf(ErrMalformed, "dangling escape")
			}
			b.WriteByte(p.src[p.pos+1])
			p.pos += 2
		case '\'':
			p.pos++
			return b.String(), nil
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return "", &SyntaxError{Err: ErrUnmatchedBrace, Offset: start, Detail: "unterminated quoted value"}
}

func (p *parser) skipSpace() {
	for !p.eof() && whitespace.IsSpace(p.src[p.pos]) {
		p.pos++
	}
}

func (p *parser) skipSeparators() {
	for !p.eof() && (whitespace.IsSpace(p.src[p.pos]) || p.src[p.pos] == ',') {
		p.pos++
	}
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) errorf(err error, format string, args ...any) error {
	return &SyntaxError{Err: err, Offset: p.pos, Detail: fmt.Sprintf(format, args...)}
}
