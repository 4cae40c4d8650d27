package assembler

import (
	xamlerrors "github.com/jacoelho/xaml/errors"
	"github.com/jacoelho/xaml/pkg/catalog"
)

// MarkupExtension is implemented by objects that stand in for another value.
// ProvideValue is called once the extension object is complete and before
// its value is assigned.
type MarkupExtension interface {
	ProvideValue(ctx ExtensionContext) (any, error)
}

// ExtensionContext describes where an extension value is going.
type ExtensionContext struct {
	// Target is the object owning Member; nil for directives, the root, and
	// owners not constructed yet. Owners are constructed at their end or when
	// their initialization text arrives.
	Target any
	// Member receives the value; nil for directives and the root.
	Member catalog.Member
	names  *NameScope
}

// Lookup resolves an x:Name registered earlier in the document.
func (c ExtensionContext) Lookup(name string) (any, bool) {
	if c.names == nil {
		return nil, false
	}
	return c.names.Lookup(name)
}

// NameScope maps x:Name values to the objects that declared them.
type NameScope struct {
	names map[string]any
}

// NewNameScope returns an empty scope.
func NewNameScope() *NameScope {
	return &NameScope{names: make(map[string]any)}
}

// Register binds name to value. Names are unique within a document.
func (s *NameScope) Register(name string, value any) error {
	if _, ok := s.names[name]; ok {
		return xamlerrors.NewAssignment(xamlerrors.ErrDuplicateName, "", "", nil, "name %q is already registered", name)
	}
	s.names[name] = value
	return nil
}

// Lookup returns the value registered under name.
func (s *NameScope) Lookup(name string) (any, bool) {
	v, ok := s.names[name]
	return v, ok
}

// Len reports the number of registered names.
func (s *NameScope) Len() int {
	return len(s.names)
}

// Reference is a markup extension resolving to a named object declared
// earlier in the document, as in {Reference Name=button}.
type Reference struct {
	Name string
}

// ProvideValue implements MarkupExtension.
func (r *Reference) ProvideValue(ctx ExtensionContext) (any, error) {
	v, ok := ctx.Lookup(r.Name)
	if !ok {
		return nil, xamlerrors.NewAssignment(xamlerrors.ErrUnknownName, "Reference", "Name", nil, "no object named %q", r.Name)
	}
	return v, nil
}
