package dyncatalog

import (
	"fmt"
	"reflect"
	"strings"

	xamlerrors "github.com/jacoelho/xaml/errors"
	"github.com/jacoelho/xaml/pkg/assembler"
	"github.com/jacoelho/xaml/pkg/catalog"
)

// Object is an instance of a declared type.
type Object struct {
	// Type is the declared type name.
	Type string
	// Namespace is the declared type namespace.
	Namespace string
	// Members holds single values and collection instances by member name.
	Members map[string]any
	// Attached holds attached property values keyed "Owner.Name".
	Attached map[string]any
	// Text is set when the object was created from element text.
	Text string
	// Args holds positional markup extension arguments.
	Args []string

	typ *Type
}

func newObject(t *Type) *Object {
	o := &Object{
		Type:      t.name,
		Namespace: t.namespace,
		Members:   make(map[string]any, len(t.members)),
		typ:       t,
	}
	for _, name := range t.collections {
		switch t.members[name].kind {
		case catalog.List:
			o.Members[name] = &List{}
		case catalog.Set:
			o.Members[name] = &Set{}
		case catalog.Keyed:
			o.Members[name] = &Dict{}
		}
	}
	return o
}

// Get returns the value of a member.
func (o *Object) Get(name string) (any, bool) {
	v, ok := o.Members[name]
	return v, ok
}

// Plain converts the object tree into maps, slices and scalars. The type
// name is stored under "$type"; attached values under their "Owner.Name" key.
func (o *Object) Plain() map[string]any {
	out := map[string]any{"$type": o.Type}
	if o.Text != "" {
		out["$text"] = o.Text
	}
	for name, v := range o.Members {
		out[name] = plain(v)
	}
	for name, v := range o.Attached {
		out[name] = plain(v)
	}
	return out
}

// MarshalYAML renders the object as Plain does.
func (o *Object) MarshalYAML() (any, error) {
	return o.Plain(), nil
}

// Plain converts v the way Object.Plain converts member values.
func Plain(v any) any {
	return plain(v)
}

func plain(v any) any {
	switch x := v.(type) {
	case *Object:
		if x == nil {
			return nil
		}
		return x.Plain()
	case *List:
		items := make([]any, len(x.Items))
		for i, item := range x.Items {
			items[i] = plain(item)
		}
		return items
	case *Set:
		items := make([]any, len(x.Items))
		for i, item := range x.Items {
			items[i] = plain(item)
		}
		return items
	case *Dict:
		m := make(map[string]any, len(x.Keys))
		for _, k := range x.Keys {
			m[fmt.Sprint(k)] = plain(x.Values[k])
		}
		return m
	default:
		return v
	}
}

// List is an ordered collection.
type List struct {
	Items []any
}

// Append adds value at the end.
func (l *List) Append(value any) error {
	l.Items = append(l.Items, value)
	return nil
}

// Set keeps the first occurrence of each distinct value in insertion order.
type Set struct {
	Items []any
}

// Add inserts value unless an equal value is present.
func (s *Set) Add(value any) error {
	for _, item := range s.Items {
		if equalValues(item, value) {
			return nil
		}
	}
	s.Items = append(s.Items, value)
	return nil
}

// Dict is a keyed collection preserving insertion order.
type Dict struct {
	Keys   []any
	Values map[any]any
}

// Insert stores value under key. Duplicate keys are rejected.
func (d *Dict) Insert(key, value any) error {
	if key == nil || !reflect.ValueOf(key).Comparable() {
		return fmt.Errorf("key %v is not comparable", key)
	}
	if d.Values == nil {
		d.Values = make(map[any]any)
	}
	if _, ok := d.Values[key]; ok {
		return fmt.Errorf("duplicate key %v", key)
	}
	d.Keys = append(d.Keys, key)
	d.Values[key] = value
	return nil
}

// Get returns the value stored under key.
func (d *Dict) Get(key any) (any, bool) {
	v, ok := d.Values[key]
	return v, ok
}

// Len reports the number of entries.
func (d *Dict) Len() int {
	return len(d.Keys)
}

func equalValues(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	if !reflect.ValueOf(a).Comparable() || !reflect.ValueOf(b).Comparable() {
		return false
	}
	return a == b
}

// ProvideValue implements assembler.MarkupExtension. Objects of types
// without an extension mode provide themselves.
func (o *Object) ProvideValue(ctx assembler.ExtensionContext) (any, error) {
	mode := ""
	if o.typ != nil {
		mode = o.typ.extension
	}
	switch {
	case mode == "" || mode == "self":
		return o, nil
	case mode == "text":
		return o.Text, nil
	case strings.HasPrefix(mode, "member:"):
		return o.Members[strings.TrimPrefix(mode, "member:")], nil
	default:
		member := strings.TrimPrefix(mode, "reference:")
		name, _ := o.Members[member].(string)
		v, ok := ctx.Lookup(name)
		if !ok {
			return nil, xamlerrors.NewAssignment(xamlerrors.ErrUnknownName, o.Type, member, nil, "no object named %q", name)
		}
		return v, nil
	}
}
