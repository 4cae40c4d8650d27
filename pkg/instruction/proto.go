package instruction

import (
	"fmt"
	"strconv"
)

// ProtoKind identifies a proto instruction variant.
type ProtoKind uint8

const (
	ProtoNone ProtoKind = iota
	ProtoNamespaceDeclaration
	ProtoElementStart
	ProtoElementEnd
	ProtoPropertyElementStart
	ProtoPropertyElementEnd
	ProtoAttribute
	ProtoText
	ProtoDirective
)

// Proto is a flat, catalog-unaware instruction.
//
// Field use per kind:
//   - NamespaceDeclaration: Prefix, Namespace
//   - ElementStart: Type, Namespace, IsEmpty
//   - PropertyElementStart: Type (owner), Member, Namespace, IsEmpty
//   - Attribute: Member, Text, Namespace; Type is the owner of an attached property
//   - Text: Text
//   - Directive: Member (the key), Text, Namespace
type Proto struct {
	Prefix    string
	Namespace string
	Type      string
	Member    string
	Text      string
	Kind      ProtoKind
	IsEmpty   bool
}

// NamespaceDeclaration returns a namespace prefix declaration.
func NamespaceDeclaration(prefix, namespace string) Proto {
	return Proto{Kind: ProtoNamespaceDeclaration, Prefix: prefix, Namespace: namespace}
}

// ElementStart returns the start of an object element.
func ElementStart(typeName, namespace string, isEmpty bool) Proto {
	return Proto{Kind: ProtoElementStart, Type: typeName, Namespace: namespace, IsEmpty: isEmpty}
}

// ElementEnd returns the end of an expanded object element.
func ElementEnd() Proto {
	return Proto{Kind: ProtoElementEnd}
}

// PropertyElementStart returns the start of an Owner.Member property element.
func PropertyElementStart(owner, member, namespace string, isEmpty bool) Proto {
	return Proto{Kind: ProtoPropertyElementStart, Type: owner, Member: member, Namespace: namespace, IsEmpty: isEmpty}
}

// PropertyElementEnd returns the end of an expanded property element.
func PropertyElementEnd() Proto {
	return Proto{Kind: ProtoPropertyElementEnd}
}

// Attribute returns a member attribute of the enclosing element.
func Attribute(member, text, namespace string) Proto {
	return Proto{Kind: ProtoAttribute, Member: member, Text: text, Namespace: namespace}
}

// AttachedAttribute returns an Owner.Member attribute set on an unrelated element.
func AttachedAttribute(owner, member, text, namespace string) Proto {
	return Proto{Kind: ProtoAttribute, Type: owner, Member: member, Text: text, Namespace: namespace}
}

// Text returns character content.
func Text(text string) Proto {
	return Proto{Kind: ProtoText, Text: text}
}

// Directive returns a reserved attribute such as x:Key.
func Directive(key, value, namespace string) Proto {
	return Proto{Kind: ProtoDirective, Member: key, Text: value, Namespace: namespace}
}

// Attached reports whether an attribute targets an attached property.
func (p Proto) Attached() bool {
	return p.Kind == ProtoAttribute && p.Type != ""
}

// Key returns the key of a directive.
func (p Proto) Key() string {
	return p.Member
}

// String returns a stable textual form used by golden files and diagnostics.
func (p Proto) String() string {
	switch p.Kind {
	case ProtoNamespaceDeclaration:
		return fmt.Sprintf("NamespaceDeclaration(%q, %q)", p.Prefix, p.Namespace)
	case ProtoElementStart:
		return fmt.Sprintf("ElementStart(%q, %q%s)", p.Type, p.Namespace, emptySuffix(p.IsEmpty))
	case ProtoElementEnd:
		return "ElementEnd"
	case ProtoPropertyElementStart:
		return fmt.Sprintf("PropertyElementStart(%q, %q%s)", p.Type+"."+p.Member, p.Namespace, emptySuffix(p.IsEmpty))
	case ProtoPropertyElementEnd:
		return "PropertyElementEnd"
	case ProtoAttribute:
		if p.Attached() {
			return fmt.Sprintf("AttachedAttribute(%q, %q, %q, %q)", p.Type, p.Member, p.Text, p.Namespace)
		}
		return fmt.Sprintf("Attribute(%q, %q, %q)", p.Member, p.Text, p.Namespace)
	case ProtoText:
		return "Text(" + strconv.Quote(p.Text) + ")"
	case ProtoDirective:
		return fmt.Sprintf("Directive(%q, %q, %q)", p.Member, p.Text, p.Namespace)
	default:
		return p.Kind.String()
	}
}

func emptySuffix(isEmpty bool) string {
	if isEmpty {
		return ", empty"
	}
	return ""
}
