package reflectcatalog

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/jacoelho/xaml/pkg/catalog"
)

var (
	errNoPositional = errors.New("type takes no positional arguments")
	errNoText       = errors.New("type cannot be created from text")
)

// TypeOption customizes a registered type.
type TypeOption func(*Type)

// WithName sets the markup name; the Go type name is the default.
func WithName(name string) TypeOption {
	return func(t *Type) { t.name = name }
}

// WithContent names the content property, overriding any struct tag.
func WithContent(member string) TypeOption {
	return func(t *Type) { t.content = member }
}

// WithPositional maps positional markup extension arguments, in order, to
// the named members.
func WithPositional(members ...string) TypeOption {
	return func(t *Type) { t.positional = members }
}

// WithTextConstructor sets the function building instances from element text.
func WithTextConstructor(fn func(text string) (any, error)) TypeOption {
	return func(t *Type) { t.fromText = fn }
}

// Type is a registered Go type. It implements catalog.Type,
// catalog.ArgumentConstructor and catalog.TextConstructor.
type Type struct {
	goType     reflect.Type
	members    map[string]*Member
	fromText   func(string) (any, error)
	name       string
	namespace  string
	content    string
	positional []string
}

func newType(goType reflect.Type, namespace string, opts []TypeOption) (*Type, error) {
	t := &Type{
		goType:    goType,
		name:      goType.Name(),
		namespace: namespace,
		members:   make(map[string]*Member),
	}
	if goType.Kind() == reflect.Struct {
		if err := t.collectMembers(); err != nil {
			return nil, err
		}
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.name == "" {
		return nil, fmt.Errorf("register %s: unnamed type needs WithName", goType)
	}
	if t.content != "" {
		if _, ok := t.members[t.content]; !ok {
			return nil, fmt.Errorf("register %s: content property %s is not a member", t.name, t.content)
		}
	}
	for _, name := range t.positional {
		m, ok := t.members[name]
		if !ok {
			return nil, fmt.Errorf("register %s: positional member %s is not a member", t.name, name)
		}
		if catalog.IsCollection(m) {
			return nil, fmt.Errorf("register %s: positional member %s is a collection", t.name, name)
		}
	}
	return t, nil
}

func (t *Type) collectMembers() error {
	for _, f := range reflect.VisibleFields(t.goType) {
		if !f.IsExported() || f.Anonymous {
			continue
		}
		name, content, skip := parseTag(f)
		if skip {
			continue
		}
		if _, dup := t.members[name]; dup {
			return fmt.Errorf("register %s: duplicate member %s", t.goType.Name(), name)
		}
		t.members[name] = newFieldMember(t, name, f)
		if content {
			if t.content != "" {
				return fmt.Errorf("register %s: both %s and %s are marked as content", t.goType.Name(), t.content, name)
			}
			t.content = name
		}
	}
	return nil
}

func parseTag(f reflect.StructField) (name string, content, skip bool) {
	tag, ok := f.Tag.Lookup("xaml")
	if !ok {
		return f.Name, false, false
	}
	if tag == "-" {
		return "", false, true
	}
	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = f.Name
	}
	for _, opt := range strings.Split(opts, ",") {
		if opt == "content" {
			content = true
		}
	}
	return name, content, false
}

// Name implements catalog.Type.
func (t *Type) Name() string { return t.name }

// Namespace implements catalog.Type.
func (t *Type) Namespace() string { return t.namespace }

// ContentProperty implements catalog.Type.
func (t *Type) ContentProperty() string { return t.content }

// GoType returns the registered Go type.
func (t *Type) GoType() reflect.Type { return t.goType }

// Members returns the member names in no particular order.
func (t *Type) Members() []string {
	out := make([]string, 0, len(t.members))
	for name := range t.members {
		out = append(out, name)
	}
	return out
}

// New returns a pointer to a new struct with its map members allocated,
// or the zero value for other kinds.
func (t *Type) New() (any, error) {
	if t.goType.Kind() != reflect.Struct {
		return reflect.Zero(t.goType).Interface(), nil
	}
	p := reflect.New(t.goType)
	for _, m := range t.members {
		field := p.Elem().FieldByIndex(m.index)
		if field.Kind() == reflect.Map && field.IsNil() {
			field.Set(reflect.MakeMap(field.Type()))
		}
	}
	return p.Interface(), nil
}

// NewWithArguments implements catalog.ArgumentConstructor.
func (t *Type) NewWithArguments(args []string) (any, error) {
	if len(t.positional) == 0 {
		return nil, fmt.Errorf("%s: %w", t.name, errNoPositional)
	}
	if len(args) > len(t.positional) {
		return nil, fmt.Errorf("%s: %d positional arguments, at most %d accepted", t.name, len(args), len(t.positional))
	}
	instance, err := t.New()
	if err != nil {
		return nil, err
	}
	for i, arg := range args {
		if err := t.members[t.positional[i]].SetValue(instance, arg); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

// FromText implements catalog.TextConstructor. Without a registered text
// constructor, scalar and text-unmarshaling types parse the text directly.
func (t *Type) FromText(text string) (any, error) {
	if t.fromText != nil {
		return t.fromText(text)
	}
	if t.goType.Kind() == reflect.Struct && !implementsTextUnmarshaler(t.goType) {
		return nil, fmt.Errorf("%s: %w", t.name, errNoText)
	}
	v, err := parseText(text, t.goType)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", t.name, err)
	}
	return v.Interface(), nil
}
