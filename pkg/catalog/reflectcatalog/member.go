package reflectcatalog

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/jacoelho/xaml/pkg/catalog"
)

var errTarget = errors.New("target is not an instance of the member owner")

var (
	listAppenderType  = reflect.TypeFor[catalog.ListAppender]()
	setAdderType      = reflect.TypeFor[catalog.SetAdder]()
	keyedInserterType = reflect.TypeFor[catalog.KeyedInserter]()
)

// Member is a struct field or an attached property.
type Member struct {
	owner      *Type
	typ        reflect.Type
	store      *attachedStore
	name       string
	index      []int
	kind       catalog.CollectionKind
	byAddr     bool
	attachable bool
}

func newFieldMember(owner *Type, name string, f reflect.StructField) *Member {
	m := &Member{owner: owner, name: name, typ: f.Type, index: f.Index}
	m.kind, m.byAddr = collectionKind(f.Type)
	return m
}

// collectionKind classifies a field type. byAddr reports that the
// capability is implemented on the field's address.
func collectionKind(t reflect.Type) (kind catalog.CollectionKind, byAddr bool) {
	for _, c := range []struct {
		iface reflect.Type
		kind  catalog.CollectionKind
	}{
		{keyedInserterType, catalog.Keyed},
		{setAdderType, catalog.Set},
		{listAppenderType, catalog.List},
	} {
		if t.Implements(c.iface) {
			return c.kind, false
		}
		if t.Kind() != reflect.Pointer && t.Kind() != reflect.Interface && reflect.PointerTo(t).Implements(c.iface) {
			return c.kind, true
		}
	}
	switch t.Kind() {
	case reflect.Slice:
		return catalog.List, false
	case reflect.Map:
		if e := t.Elem(); e.Kind() == reflect.Struct && e.NumField() == 0 {
			return catalog.Set, false
		}
		return catalog.Keyed, false
	default:
		return catalog.NotCollection, false
	}
}

// Name implements catalog.Member.
func (m *Member) Name() string { return m.name }

// Owner implements catalog.Member.
func (m *Member) Owner() catalog.Type { return m.owner }

// Collection implements catalog.Member.
func (m *Member) Collection() catalog.CollectionKind { return m.kind }

// CanGet implements catalog.Member.
func (m *Member) CanGet() bool { return true }

// CanSet implements catalog.Member. Collection fields are filled through
// their live collection and are never replaced.
func (m *Member) CanSet() bool { return m.kind == catalog.NotCollection }

// Attachable implements catalog.Member.
func (m *Member) Attachable() bool { return m.attachable }

// Type returns the declared value type.
func (m *Member) Type() reflect.Type { return m.typ }

// GetValue implements catalog.Member. Slices and maps are returned wrapped
// in adapters implementing the capability of their collection kind.
func (m *Member) GetValue(instance any) (any, error) {
	if m.attachable {
		v, _ := m.store.get(instance, m.owner, m.name)
		return v, nil
	}
	field, err := m.field(instance)
	if err != nil {
		return nil, err
	}
	switch {
	case m.byAddr:
		return field.Addr().Interface(), nil
	case m.kind != catalog.NotCollection && field.Type().Implements(capability(m.kind)):
		if isNilable(field) && field.IsNil() {
			return nil, nil
		}
		return field.Interface(), nil
	case field.Kind() == reflect.Slice:
		return &sliceList{field: field}, nil
	case field.Kind() == reflect.Map:
		if field.IsNil() {
			return nil, nil
		}
		if m.kind == catalog.Set {
			return &mapSet{field: field}, nil
		}
		return &mapDict{field: field}, nil
	default:
		return field.Interface(), nil
	}
}

// SetValue implements catalog.Member, converting text to the declared type.
func (m *Member) SetValue(instance, value any) error {
	v, err := convert(value, m.typ)
	if err != nil {
		return fmt.Errorf("set %s.%s: %w", m.owner.name, m.name, err)
	}
	if m.attachable {
		return m.store.set(instance, m.owner, m.name, v.Interface())
	}
	field, err := m.field(instance)
	if err != nil {
		return err
	}
	field.Set(v)
	return nil
}

func (m *Member) field(instance any) (reflect.Value, error) {
	v := reflect.ValueOf(instance)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Type() != m.owner.goType {
		return reflect.Value{}, fmt.Errorf("%s.%s: %w: got %T", m.owner.name, m.name, errTarget, instance)
	}
	return v.Elem().FieldByIndex(m.index), nil
}

func capability(kind catalog.CollectionKind) reflect.Type {
	switch kind {
	case catalog.List:
		return listAppenderType
	case catalog.Set:
		return setAdderType
	default:
		return keyedInserterType
	}
}

func isNilable(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	default:
		return false
	}
}

// sliceList appends to a slice field in place.
type sliceList struct {
	field reflect.Value
}

func (l *sliceList) Append(value any) error {
	v, err := convert(value, l.field.Type().Elem())
	if err != nil {
		return err
	}
	l.field.Set(reflect.Append(l.field, v))
	return nil
}

type mapDict struct {
	field reflect.Value
}

func (d *mapDict) Insert(key, value any) error {
	k, err := convert(key, d.field.Type().Key())
	if err != nil {
		return fmt.Errorf("key: %w", err)
	}
	v, err := convert(value, d.field.Type().Elem())
	if err != nil {
		return err
	}
	d.field.SetMapIndex(k, v)
	return nil
}

type mapSet struct {
	field reflect.Value
}

func (s *mapSet) Add(value any) error {
	k, err := convert(value, s.field.Type().Key())
	if err != nil {
		return err
	}
	s.field.SetMapIndex(k, reflect.Zero(s.field.Type().Elem()))
	return nil
}
