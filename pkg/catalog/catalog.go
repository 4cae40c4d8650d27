// Package catalog declares the type and member catalog consumed by the
// markup pipeline. The pipeline never inspects Go types itself; every type
// name, member name and collection capability is resolved through these
// interfaces.
package catalog

// Type describes a type that markup can instantiate.
type Type interface {
	// Name returns the local type name used in markup.
	Name() string
	// Namespace returns the markup namespace the type is registered under.
	Namespace() string
	// New returns a new, zero-initialized instance.
	New() (any, error)
	// ContentProperty names the member that receives child content, or "".
	ContentProperty() string
}

// ArgumentConstructor is implemented by types that can be built from
// positional markup extension arguments.
type ArgumentConstructor interface {
	NewWithArguments(args []string) (any, error)
}

// TextConstructor is implemented by types that can be built from the text
// content of their element.
type TextConstructor interface {
	FromText(text string) (any, error)
}

// Member describes a gettable, settable or addable slot on a type.
// Implementations must be comparable.
type Member interface {
	Name() string
	Owner() Type
	Collection() CollectionKind
	CanGet() bool
	CanSet() bool
	Attachable() bool
	GetValue(instance any) (any, error)
	SetValue(instance, value any) error
}

// Catalog resolves type and member names.
type Catalog interface {
	ResolveType(namespace, name string) (Type, bool)
	ResolveMember(t Type, name string) (Member, bool)
	ResolveAttachableMember(owner Type, name string) (Member, bool)
}

// IsCollection reports whether the member appends values instead of replacing them.
func IsCollection(m Member) bool {
	return m != nil && m.Collection() != NotCollection
}
