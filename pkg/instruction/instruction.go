package instruction

import (
	"fmt"
	"strconv"

	"github.com/jacoelho/xaml/pkg/catalog"
)

// Kind identifies an instruction variant.
type Kind uint8

const (
	KindNone Kind = iota
	KindNamespaceDeclaration
	KindStartObject
	KindEndObject
	KindStartMember
	KindEndMember
	KindMarkupExtensionArguments
	KindValue
)

// MemberRef names the member opened by StartMember.
// Directive members have no owner; attached members name their owner type.
type MemberRef struct {
	Owner     catalog.Type
	Name      string
	Attached  bool
	Directive bool
}

// String returns Owner.Name, x:Name for directives.
func (m MemberRef) String() string {
	switch {
	case m.Directive:
		return "x:" + m.Name
	case m.Owner != nil:
		return m.Owner.Name() + "." + m.Name
	default:
		return m.Name
	}
}

// Instruction is an object/member-oriented instruction ready for assembly.
type Instruction struct {
	Type      catalog.Type
	Member    MemberRef
	Prefix    string
	Namespace string
	Value     string
	Kind      Kind
}

// DeclareNamespace returns a namespace declaration instruction.
func DeclareNamespace(prefix, namespace string) Instruction {
	return Instruction{Kind: KindNamespaceDeclaration, Prefix: prefix, Namespace: namespace}
}

// StartObject returns the start of an object of type t.
func StartObject(t catalog.Type) Instruction {
	return Instruction{Kind: KindStartObject, Type: t}
}

// EndObject returns the end of the innermost object.
func EndObject() Instruction {
	return Instruction{Kind: KindEndObject}
}

// StartMember returns the start of a member declared by owner.
func StartMember(owner catalog.Type, name string) Instruction {
	return Instruction{Kind: KindStartMember, Member: MemberRef{Owner: owner, Name: name}}
}

// StartAttachedMember returns the start of an attached member declared by owner.
func StartAttachedMember(owner catalog.Type, name string) Instruction {
	return Instruction{Kind: KindStartMember, Member: MemberRef{Owner: owner, Name: name, Attached: true}}
}

// StartDirective returns the start of a directive member such as x:Key.
func StartDirective(name string) Instruction {
	return Instruction{Kind: KindStartMember, Member: MemberRef{Name: name, Directive: true}}
}

// EndMember returns the end of the innermost member.
func EndMember() Instruction {
	return Instruction{Kind: KindEndMember}
}

// MarkupExtensionArguments marks the start of positional markup extension arguments.
func MarkupExtensionArguments() Instruction {
	return Instruction{Kind: KindMarkupExtensionArguments}
}

// Value returns raw text to be converted by the assembler.
func Value(text string) Instruction {
	return Instruction{Kind: KindValue, Value: text}
}

// String returns a stable textual form used by golden files and diagnostics.
func (in Instruction) String() string {
	switch in.Kind {
	case KindNamespaceDeclaration:
		return fmt.Sprintf("NamespaceDeclaration(%q, %q)", in.Prefix, in.Namespace)
	case KindStartObject:
		return "StartObject(" + typeName(in.Type) + ")"
	case KindEndObject:
		return "EndObject"
	case KindStartMember:
		if in.Member.Attached {
			return "StartMember(" + in.Member.String() + ", attached)"
		}
		return "StartMember(" + in.Member.String() + ")"
	case KindEndMember:
		return "EndMember"
	case KindMarkupExtensionArguments:
		return "MarkupExtensionArguments"
	case KindValue:
		return "Value(" + strconv.Quote(in.Value) + ")"
	default:
		return in.Kind.String()
	}
}

func typeName(t catalog.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.Name()
}

// Strings renders instructions with String, one entry per instruction.
func Strings[T fmt.Stringer](items []T) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.String())
	}
	return out
}
