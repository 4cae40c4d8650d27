// Package xamlparser rewrites proto instructions into object and member
// instructions, resolving type names through a catalog and expanding
// markup extensions.
package xamlparser

import (
	"errors"
	"fmt"
	"iter"

	xamlerrors "github.com/jacoelho/xaml/errors"
	"github.com/jacoelho/xaml/internal/markupext"
	"github.com/jacoelho/xaml/internal/nsscope"
	"github.com/jacoelho/xaml/pkg/catalog"
	"github.com/jacoelho/xaml/pkg/instruction"
)

// Config configures a Parser.
type Config struct {
	Catalog catalog.Catalog
}

// Parser is stateless between calls and may be shared.
type Parser struct {
	catalog catalog.Catalog
}

// New returns a Parser resolving names through cfg.Catalog.
func New(cfg Config) *Parser {
	return &Parser{catalog: cfg.Catalog}
}

// Parse transforms a proto instruction sequence.
//
// An upstream error is yielded unchanged and ends the sequence. Semantic
// errors do not stop the transformation: the offending attribute or element
// subtree produces no instructions and, once the input is exhausted, the
// collected errors are yielded as a single errors.ParseErrorList.
func (p *Parser) Parse(in iter.Seq2[instruction.Proto, error]) iter.Seq2[instruction.Instruction, error] {
	return func(yield func(instruction.Instruction, error) bool) {
		s := &state{catalog: p.catalog, yield: yield}
		for proto, err := range in {
			if err != nil {
				yield(instruction.Instruction{}, err)
				return
			}
			if !s.step(proto) {
				return
			}
		}
		if !s.finish() {
			return
		}
		if len(s.errs) > 0 {
			yield(instruction.Instruction{}, s.errs)
		}
	}
}

type frameKind uint8

const (
	frameObject frameKind = iota
	frameProperty
)

type frame struct {
	typ         catalog.Type
	kind        frameKind
	collapsed   bool
	contentOpen bool
}

type state struct {
	catalog catalog.Catalog
	yield   func(instruction.Instruction, error) bool
	ns      nsscope.Stack
	pending []nsscope.Decl
	frames  []frame
	errs    xamlerrors.ParseErrorList

	// skip counts open elements of a discarded subtree.
	skip int
	// skipAttrs discards the attributes of a discarded collapsed element.
	skipAttrs bool
}

func (s *state) emit(ins ...instruction.Instruction) bool {
	for _, in := range ins {
		if !s.yield(in, nil) {
			return false
		}
	}
	return true
}

func (s *state) semantic(code xamlerrors.ErrorCode, typeName, member string, cause error, format string, args ...any) {
	pe := xamlerrors.NewSemantic(code, typeName, member, format, args...)
	pe.Err = cause
	s.errs = append(s.errs, *pe)
}

func (s *state) top() *frame {
	if len(s.frames) == 0 {
		return nil
	}
	return &s.frames[len(s.frames)-1]
}

func (s *state) step(p instruction.Proto) bool {
	if s.skip > 0 {
		s.skipStep(p)
		return true
	}
	attributeLike := p.Kind == instruction.ProtoAttribute || p.Kind == instruction.ProtoDirective
	if s.skipAttrs {
		if attributeLike {
			return true
		}
		s.skipAttrs = false
	}
	if !attributeLike && !s.closeCollapsed() {
		return false
	}

	switch p.Kind {
	case instruction.ProtoNamespaceDeclaration:
		s.pending = append(s.pending, nsscope.Decl{Prefix: p.Prefix, Namespace: p.Namespace})
		return true
	case instruction.ProtoElementStart:
		return s.startElement(p)
	case instruction.ProtoElementEnd:
		return s.endElement()
	case instruction.ProtoPropertyElementStart:
		return s.startProperty(p)
	case instruction.ProtoPropertyElementEnd:
		return s.endProperty()
	case instruction.ProtoAttribute:
		return s.attribute(p)
	case instruction.ProtoDirective:
		return s.directive(p)
	case instruction.ProtoText:
		return s.text(p.Text)
	default:
		return true
	}
}

func (s *state) skipStep(p instruction.Proto) {
	switch p.Kind {
	case instruction.ProtoElementStart, instruction.ProtoPropertyElementStart:
		if !p.IsEmpty {
			s.skip++
		}
	case instruction.ProtoElementEnd, instruction.ProtoPropertyElementEnd:
		s.skip--
		if s.skip == 0 {
			s.ns.Pop()
		}
	}
}

// discard drops the element just pushed onto the namespace scope.
func (s *state) discard(p instruction.Proto) {
	if p.IsEmpty {
		s.ns.Pop()
		s.skipAttrs = true
		return
	}
	s.skip = 1
}

func (s *state) openScope() []nsscope.Decl {
	decls := s.pending
	s.pending = nil
	s.ns.Push(decls)
	return decls
}

func (s *state) declare(decls []nsscope.Decl) bool {
	for _, d := range decls {
		if !s.emit(instruction.DeclareNamespace(d.Prefix, d.Namespace)) {
			return false
		}
	}
	return true
}

func (s *state) startElement(p instruction.Proto) bool {
	decls := s.openScope()
	parent := s.top()

	typ, ok := s.catalog.ResolveType(p.Namespace, p.Type)
	if !ok {
		s.semantic(xamlerrors.ErrUnknownType, p.Type, "", nil, "unknown type %s in namespace %q", p.Type, p.Namespace)
		s.discard(p)
		return true
	}

	if parent != nil && parent.kind == frameObject {
		content := parent.typ.ContentProperty()
		if content == "" {
			s.semantic(xamlerrors.ErrNoContentProperty, parent.typ.Name(), "", nil, "%s has no content property to hold child %s", parent.typ.Name(), p.Type)
			s.discard(p)
			return true
		}
		if !parent.contentOpen {
			parent.contentOpen = true
			if !s.emit(instruction.StartMember(parent.typ, content)) {
				return false
			}
		}
	}

	if !s.declare(decls) || !s.emit(instruction.StartObject(typ)) {
		return false
	}
	s.frames = append(s.frames, frame{typ: typ, kind: frameObject, collapsed: p.IsEmpty})
	return true
}

func (s *state) closeCollapsed() bool {
	f := s.top()
	if f == nil || !f.collapsed {
		return true
	}
	s.frames = s.frames[:len(s.frames)-1]
	s.ns.Pop()
	return s.emit(instruction.EndObject())
}

func (s *state) endElement() bool {
	f := s.top()
	if f == nil || f.kind != frameObject {
		return s.orderError("element end without an open object")
	}
	closeContent := f.contentOpen
	s.frames = s.frames[:len(s.frames)-1]
	s.ns.Pop()
	if closeContent && !s.emit(instruction.EndMember()) {
		return false
	}
	return s.emit(instruction.EndObject())
}

func (s *state) startProperty(p instruction.Proto) bool {
	decls := s.openScope()
	parent := s.top()
	if parent == nil || parent.kind != frameObject {
		s.ns.Pop()
		return s.orderError("property element %s.%s outside an object", p.Type, p.Member)
	}

	start, ok := s.propertyMember(parent.typ, p)
	if !ok {
		s.discard(p)
		return true
	}

	if parent.contentOpen {
		parent.contentOpen = false
		if !s.emit(instruction.EndMember()) {
			return false
		}
	}
	if !s.declare(decls) || !s.emit(start) {
		return false
	}
	if p.IsEmpty {
		s.ns.Pop()
		return s.emit(instruction.EndMember())
	}
	s.frames = append(s.frames, frame{typ: parent.typ, kind: frameProperty})
	return true
}

// propertyMember resolves the member opened by an Owner.Member property
// element on an object of type target.
func (s *state) propertyMember(target catalog.Type, p instruction.Proto) (instruction.Instruction, bool) {
	if p.Type == target.Name() && p.Namespace == target.Namespace() {
		return instruction.StartMember(target, p.Member), true
	}
	owner, ok := s.catalog.ResolveType(p.Namespace, p.Type)
	if !ok {
		s.semantic(xamlerrors.ErrAttachedOwner, p.Type, p.Member, nil, "unknown owner type %s of property element in namespace %q", p.Type, p.Namespace)
		return instruction.Instruction{}, false
	}
	if sameType(owner, target) {
		return instruction.StartMember(target, p.Member), true
	}
	if _, attachable := s.catalog.ResolveAttachableMember(owner, p.Member); attachable {
		return instruction.StartAttachedMember(owner, p.Member), true
	}
	return instruction.StartMember(owner, p.Member), true
}

func (s *state) endProperty() bool {
	f := s.top()
	if f == nil || f.kind != frameProperty {
		return s.orderError("property element end without an open property element")
	}
	s.frames = s.frames[:len(s.frames)-1]
	s.ns.Pop()
	return s.emit(instruction.EndMember())
}

func (s *state) attribute(p instruction.Proto) bool {
	f := s.top()
	if f == nil || f.kind != frameObject {
		return s.orderError("attribute %s outside an object element", p.Member)
	}

	start := instruction.StartMember(f.typ, p.Member)
	if p.Attached() {
		owner, ok := s.catalog.ResolveType(p.Namespace, p.Type)
		if !ok {
			s.semantic(xamlerrors.ErrAttachedOwner, p.Type, p.Member, nil, "unknown owner type %s of attached property in namespace %q", p.Type, p.Namespace)
			return true
		}
		start = instruction.StartAttachedMember(owner, p.Member)
	}

	value, ok := s.attributeValue(f.typ, p.Member, p.Text)
	if !ok {
		return true
	}
	if !s.emit(start) || !s.emit(value...) {
		return false
	}
	return s.emit(instruction.EndMember())
}

func (s *state) directive(p instruction.Proto) bool {
	if p.Namespace != instruction.LanguageNamespace {
		// xml:space and xml:lang are applied while tokenizing.
		return true
	}
	f := s.top()
	if f == nil || f.kind != frameObject {
		return s.orderError("directive %s outside an object element", p.Member)
	}
	value, ok := s.attributeValue(f.typ, "x:"+p.Member, p.Text)
	if !ok {
		return true
	}
	if !s.emit(instruction.StartDirective(p.Member)) || !s.emit(value...) {
		return false
	}
	return s.emit(instruction.EndMember())
}

// attributeValue returns the instructions for an attribute's text: one
// Value, or the expansion of a markup extension. It reports false after
// recording a semantic error.
func (s *state) attributeValue(owner catalog.Type, member, text string) ([]instruction.Instruction, bool) {
	form, literal := markupext.Classify(text)
	if form != markupext.Extension {
		return []instruction.Instruction{instruction.Value(literal)}, true
	}
	node, err := markupext.Parse(text)
	if err != nil {
		code := xamlerrors.ErrMalformedExtension
		if errors.Is(err, markupext.ErrUnmatchedBrace) {
			code = xamlerrors.ErrUnmatchedBrace
		}
		s.semantic(code, owner.Name(), member, err, "invalid markup extension %q", text)
		return nil, false
	}
	out, err := s.expand(node, nil)
	if err != nil {
		s.semantic(xamlerrors.ErrUnknownExtension, owner.Name(), member, err, "cannot expand %q", text)
		return nil, false
	}
	return out, true
}

var errUnknownExtension = errors.New("unknown markup extension")

func (s *state) expand(n *markupext.Node, out []instruction.Instruction) ([]instruction.Instruction, error) {
	typ, err := s.resolveExtension(n)
	if err != nil {
		return nil, err
	}
	out = append(out, instruction.StartObject(typ))
	if len(n.Positional) > 0 {
		out = append(out, instruction.MarkupExtensionArguments())
		for _, arg := range n.Positional {
			out = append(out, instruction.Value(arg))
		}
	}
	for _, arg := range n.Named {
		out = append(out, instruction.StartMember(typ, arg.Name))
		if arg.Value.Extension != nil {
			if out, err = s.expand(arg.Value.Extension, out); err != nil {
				return nil, err
			}
		} else {
			out = append(out, instruction.Value(arg.Value.Text))
		}
		out = append(out, instruction.EndMember())
	}
	return append(out, instruction.EndObject()), nil
}

func (s *state) resolveExtension(n *markupext.Node) (catalog.Type, error) {
	namespace, ok := s.ns.Lookup(n.Prefix)
	if !ok {
		return nil, fmt.Errorf("%w %s:%s: prefix is not declared", errUnknownExtension, n.Prefix, n.Name)
	}
	for _, name := range n.TypeNames() {
		if typ, ok := s.catalog.ResolveType(namespace, name); ok {
			return typ, nil
		}
	}
	return nil, fmt.Errorf("%w %s in namespace %q", errUnknownExtension, n.Name, namespace)
}

func (s *state) text(text string) bool {
	f := s.top()
	if f == nil {
		return true
	}
	if f.kind == frameProperty {
		return s.emit(instruction.Value(text))
	}
	content := f.typ.ContentProperty()
	if content == "" {
		return s.emit(
			instruction.StartDirective(instruction.DirectiveInitialization),
			instruction.Value(text),
			instruction.EndMember(),
		)
	}
	if !f.contentOpen {
		f.contentOpen = true
		if !s.emit(instruction.StartMember(f.typ, content)) {
			return false
		}
	}
	return s.emit(instruction.Value(text))
}

func (s *state) finish() bool {
	if !s.closeCollapsed() {
		return false
	}
	if len(s.frames) > 0 || s.skip > 0 {
		return s.orderError("input ended with open elements")
	}
	return true
}

func (s *state) orderError(format string, args ...any) bool {
	s.yield(instruction.Instruction{}, xamlerrors.NewStructural(xamlerrors.ErrInstructionOrder, 0, 0, format, args...))
	return false
}

func sameType(a, b catalog.Type) bool {
	return a.Name() == b.Name() && a.Namespace() == b.Namespace()
}
