// Package protoparser turns a markup stream into the flat proto instruction
// sequence: namespace declarations, object and property element boundaries,
// attributes, directives and text.
package protoparser

import (
	"errors"
	"io"
	"iter"
	"strings"

	xamlerrors "github.com/jacoelho/xaml/errors"
	"github.com/jacoelho/xaml/internal/nsscope"
	"github.com/jacoelho/xaml/internal/whitespace"
	"github.com/jacoelho/xaml/pkg/catalog"
	"github.com/jacoelho/xaml/pkg/instruction"
	"github.com/jacoelho/xaml/pkg/markuptext"
)

// TypeResolver resolves type names. catalog.Catalog satisfies it.
type TypeResolver interface {
	ResolveType(namespace, name string) (catalog.Type, bool)
}

// Config configures a Parser.
type Config struct {
	// Types, when set, is consulted to confirm attached property owners.
	// Without it any dotted attribute name is treated as attached.
	Types TypeResolver
	// Decoder holds tokenizer limits.
	Decoder []markuptext.Options
}

// Parser produces proto instructions. It holds no per-document state and
// may be shared.
type Parser struct {
	types   TypeResolver
	decoder []markuptext.Options
}

// New returns a Parser for the configuration.
func New(cfg Config) *Parser {
	return &Parser{types: cfg.Types, decoder: cfg.Decoder}
}

// Parse returns the lazy proto instruction sequence for r.
// A structural error is yielded once and ends the sequence.
func (p *Parser) Parse(r io.Reader) iter.Seq2[instruction.Proto, error] {
	return func(yield func(instruction.Proto, error) bool) {
		s := &state{
			dec:   markuptext.NewDecoder(r, p.decoder...),
			types: p.types,
			yield: yield,
		}
		s.run()
	}
}

type frameKind uint8

const (
	frameObject frameKind = iota
	frameProperty
)

type frame struct {
	typeName  string
	member    string
	namespace string
	kind      frameKind
	preserve  bool
}

type state struct {
	dec    *markuptext.Decoder
	types  TypeResolver
	yield  func(instruction.Proto, error) bool
	ns     nsscope.Stack
	frames []frame
}

func (s *state) run() {
	for {
		tok, err := s.dec.Next()
		if errors.Is(err, io.EOF) {
			if !s.dec.RootSeen() {
				s.fail(xamlerrors.NewStructural(xamlerrors.ErrEmptyDocument, 1, 1, "document has no root element"))
			}
			return
		}
		if err != nil {
			s.fail(s.syntaxFailure(err))
			return
		}
		var ok bool
		switch tok.Kind {
		case markuptext.KindStartElement:
			ok = s.startElement(tok)
		case markuptext.KindEndElement:
			ok = s.endElement()
		case markuptext.KindCharData:
			ok = s.text(tok.Text, false)
		case markuptext.KindCDATA:
			ok = s.text(tok.Text, true)
		default:
			ok = true
		}
		if !ok {
			return
		}
	}
}

func (s *state) emit(p instruction.Proto) bool {
	return s.yield(p, nil)
}

func (s *state) fail(err error) {
	s.yield(instruction.Proto{}, err)
}

func (s *state) top() (frame, bool) {
	if len(s.frames) == 0 {
		return frame{}, false
	}
	return s.frames[len(s.frames)-1], true
}

func (s *state) startElement(tok markuptext.Token) bool {
	decls, attrs, bad, err := splitNamespaceDecls(tok.Attrs)
	if err != nil {
		s.fail(xamlerrors.NewStructural(xamlerrors.ErrReservedNamespace, bad.Line, bad.Column, "%s: %v", bad.Name, err))
		return false
	}
	s.ns.Push(decls)
	if tok.SelfClosing {
		defer s.ns.Pop()
	}

	prefix, local := markuptext.SplitName(tok.Name)
	namespace, ok := s.ns.Lookup(prefix)
	if !ok {
		s.fail(xamlerrors.NewStructural(xamlerrors.ErrUnboundPrefix, tok.Line, tok.Column, "prefix %q of element <%s> is not declared", prefix, tok.Name))
		return false
	}
	parent, hasParent := s.top()

	if owner, member, dotted := strings.Cut(local, "."); dotted {
		return s.propertyElement(tok, decls, attrs, parent, hasParent, owner, member, namespace)
	}

	for _, d := range decls {
		if !s.emit(instruction.NamespaceDeclaration(d.Prefix, d.Namespace)) {
			return false
		}
	}
	if !s.emit(instruction.ElementStart(local, namespace, tok.SelfClosing)) {
		return false
	}
	preserve := hasParent && parent.preserve
	for _, attr := range attrs {
		p, err := s.classifyAttribute(attr, local, namespace)
		if err != nil {
			s.fail(err)
			return false
		}
		if p.Kind == instruction.ProtoDirective && p.Namespace == nsscope.XMLNamespace && p.Member == "space" {
			preserve = p.Text == "preserve"
		}
		if !s.emit(p) {
			return false
		}
	}
	if !tok.SelfClosing {
		s.frames = append(s.frames, frame{kind: frameObject, typeName: local, namespace: namespace, preserve: preserve})
	}
	return true
}

func (s *state) propertyElement(tok markuptext.Token, decls []nsscope.Decl, attrs []markuptext.Attr, parent frame, hasParent bool, owner, member, namespace string) bool {
	if owner == "" || member == "" || strings.Contains(member, ".") {
		s.fail(xamlerrors.NewStructural(xamlerrors.ErrMarkupSyntax, tok.Line, tok.Column, "invalid property element name <%s>", tok.Name))
		return false
	}
	if !hasParent || parent.kind != frameObject {
		pe := xamlerrors.NewStructural(xamlerrors.ErrPropertyElementPlacement, tok.Line, tok.Column, "property element <%s> must be a child of an object element", tok.Name)
		pe.Type, pe.Member = owner, member
		s.fail(pe)
		return false
	}
	if len(attrs) > 0 {
		pe := xamlerrors.NewStructural(xamlerrors.ErrAttributeNotAllowed, attrs[0].Line, attrs[0].Column, "attribute %q is not allowed on property element <%s>", attrs[0].Name, tok.Name)
		pe.Type, pe.Member = owner, member
		s.fail(pe)
		return false
	}
	for _, d := range decls {
		if !s.emit(instruction.NamespaceDeclaration(d.Prefix, d.Namespace)) {
			return false
		}
	}
	if !s.emit(instruction.PropertyElementStart(owner, member, namespace, tok.SelfClosing)) {
		return false
	}
	if !tok.SelfClosing {
		s.frames = append(s.frames, frame{
			kind:      frameProperty,
			typeName:  owner,
			member:    member,
			namespace: namespace,
			preserve:  parent.preserve,
		})
	}
	return true
}

// classifyAttribute maps one attribute of an object element to a directive,
// an attached attribute or a plain member attribute, in that priority.
func (s *state) classifyAttribute(attr markuptext.Attr, elementType, elementNS string) (instruction.Proto, error) {
	prefix, name := markuptext.SplitName(attr.Name)
	attrNS := ""
	if prefix != "" {
		ns, ok := s.ns.Lookup(prefix)
		if !ok {
			return instruction.Proto{}, xamlerrors.NewStructural(xamlerrors.ErrUnboundPrefix, attr.Line, attr.Column, "prefix %q of attribute %s is not declared", prefix, attr.Name)
		}
		attrNS = ns
		if ns == instruction.LanguageNamespace || ns == nsscope.XMLNamespace {
			return instruction.Directive(name, attr.Value, ns), nil
		}
	}

	owner, member, dotted := strings.Cut(name, ".")
	if !dotted {
		if attrNS == "" {
			attrNS = elementNS
		}
		return instruction.Attribute(name, attr.Value, attrNS), nil
	}
	if owner == "" || member == "" {
		return instruction.Proto{}, xamlerrors.NewStructural(xamlerrors.ErrMarkupSyntax, attr.Line, attr.Column, "invalid attribute name %s", attr.Name)
	}
	if prefix == "" {
		attrNS, _ = s.ns.Lookup("")
	}
	if owner == elementType && attrNS == elementNS {
		return instruction.Attribute(member, attr.Value, elementNS), nil
	}
	if s.types != nil {
		if _, ok := s.types.ResolveType(attrNS, owner); !ok {
			return instruction.Attribute(name, attr.Value, elementNS), nil
		}
	}
	return instruction.AttachedAttribute(owner, member, attr.Value, attrNS), nil
}

func (s *state) endElement() bool {
	f, ok := s.top()
	if !ok {
		return true
	}
	s.frames = s.frames[:len(s.frames)-1]
	s.ns.Pop()
	if f.kind == frameProperty {
		return s.emit(instruction.PropertyElementEnd())
	}
	return s.emit(instruction.ElementEnd())
}

func (s *state) text(raw string, cdata bool) bool {
	f, ok := s.top()
	if !ok {
		return true
	}
	if !cdata && !f.preserve && whitespace.IsBlank(raw) {
		return true
	}
	if cdata && raw == "" {
		return true
	}
	text := raw
	if !cdata {
		mode := whitespace.Collapse
		if f.preserve {
			mode = whitespace.Preserve
		}
		text = whitespace.Normalize(mode, raw)
	}
	return s.emit(instruction.Text(text))
}

func (s *state) syntaxFailure(err error) error {
	line, column := s.dec.InputPos()
	var syntaxErr *markuptext.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, column = syntaxErr.Line, syntaxErr.Column
	}
	f, open := s.top()
	code := xamlerrors.ErrMarkupSyntax
	switch {
	case open && f.kind == frameProperty && (errors.Is(err, markuptext.ErrMismatchedEndTag) || errors.Is(err, markuptext.ErrUnexpectedEOF)):
		code = xamlerrors.ErrUnterminatedProperty
	case errors.Is(err, markuptext.ErrMismatchedEndTag):
		code = xamlerrors.ErrUnbalancedTag
	case open && errors.Is(err, markuptext.ErrUnexpectedEOF):
		code = xamlerrors.ErrUnterminatedElement
	}
	pe := xamlerrors.NewStructural(code, line, column, "malformed markup")
	if open {
		pe.Type = f.typeName
		pe.Member = f.member
	}
	pe.Err = err
	return pe
}

// splitNamespaceDecls separates xmlns attributes from the rest. The first
// declaration touching a reserved prefix or namespace is returned with its error.
func splitNamespaceDecls(attrs []markuptext.Attr) ([]nsscope.Decl, []markuptext.Attr, markuptext.Attr, error) {
	var decls []nsscope.Decl
	rest := attrs[:0:0]
	for _, attr := range attrs {
		var d nsscope.Decl
		switch {
		case attr.Name == nsscope.XMLNSPrefix:
			d = nsscope.Decl{Prefix: "", Namespace: attr.Value}
		case strings.HasPrefix(attr.Name, nsscope.XMLNSPrefix+":"):
			d = nsscope.Decl{Prefix: attr.Name[len(nsscope.XMLNSPrefix)+1:], Namespace: attr.Value}
		default:
			rest = append(rest, attr)
			continue
		}
		if err := nsscope.ValidateDecl(d); err != nil {
			return nil, nil, attr, err
		}
		decls = append(decls, d)
	}
	return decls, rest, markuptext.Attr{}, nil
}
