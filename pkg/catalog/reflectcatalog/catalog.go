// Package reflectcatalog implements catalog.Catalog over registered Go types.
//
// Struct types expose their exported fields as members. Slices are list
// collections, maps are keyed collections and maps with struct{} values are
// sets; fields whose type implements one of the catalog capability
// interfaces use it directly. Field names can be changed with a xaml struct
// tag, and `xaml:",content"` marks the content property:
//
//	type Panel struct {
//		Title    string
//		Children []any `xaml:",content"`
//		Ignored  int   `xaml:"-"`
//	}
package reflectcatalog

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/jacoelho/xaml/pkg/catalog"
)

type typeKey struct {
	namespace string
	name      string
}

// Catalog is safe for concurrent use. Registration is expected to finish
// before documents are loaded.
type Catalog struct {
	types    map[typeKey]*Type
	byGo     map[reflect.Type]*Type
	attached map[*Type]map[string]*Member
	store    *attachedStore
	mu       sync.RWMutex
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{
		types:    make(map[typeKey]*Type),
		byGo:     make(map[reflect.Type]*Type),
		attached: make(map[*Type]map[string]*Member),
		store:    newAttachedStore(),
	}
}

// Register adds T under namespace.
func Register[T any](c *Catalog, namespace string, opts ...TypeOption) (*Type, error) {
	return c.RegisterType(reflect.TypeFor[T](), namespace, opts...)
}

// MustRegister is Register that panics on error, for static registration.
func MustRegister[T any](c *Catalog, namespace string, opts ...TypeOption) *Type {
	t, err := Register[T](c, namespace, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// RegisterType adds goType under namespace. Pointer types register their
// element type.
func (c *Catalog) RegisterType(goType reflect.Type, namespace string, opts ...TypeOption) (*Type, error) {
	if goType == nil {
		return nil, fmt.Errorf("register: nil type")
	}
	for goType.Kind() == reflect.Pointer {
		goType = goType.Elem()
	}
	t, err := newType(goType, namespace, opts)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	key := typeKey{namespace: namespace, name: t.name}
	if _, ok := c.types[key]; ok {
		return nil, fmt.Errorf("register %s: type already registered in namespace %q", t.name, namespace)
	}
	c.types[key] = t
	if _, ok := c.byGo[goType]; !ok {
		c.byGo[goType] = t
	}
	return t, nil
}

// RegisterAttached declares an attached property name on owner holding
// values of valueType. Values are kept by the catalog per target object and
// read back with AttachedValue.
func (c *Catalog) RegisterAttached(owner *Type, name string, valueType reflect.Type) (*Member, error) {
	if owner == nil || name == "" || valueType == nil {
		return nil, fmt.Errorf("register attached: owner, name and value type are required")
	}
	m := &Member{
		owner:      owner,
		name:       name,
		typ:        valueType,
		attachable: true,
		store:      c.store,
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	members := c.attached[owner]
	if members == nil {
		members = make(map[string]*Member)
		c.attached[owner] = members
	}
	if _, ok := members[name]; ok {
		return nil, fmt.Errorf("register attached %s.%s: already registered", owner.name, name)
	}
	members[name] = m
	return m, nil
}

// ResolveType implements catalog.Catalog.
func (c *Catalog) ResolveType(namespace, name string) (catalog.Type, bool) {
	c.mu.RLock()
	t, ok := c.types[typeKey{namespace: namespace, name: name}]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return t, true
}

// ResolveMember implements catalog.Catalog.
func (c *Catalog) ResolveMember(t catalog.Type, name string) (catalog.Member, bool) {
	rt, ok := t.(*Type)
	if !ok {
		return nil, false
	}
	m, ok := rt.members[name]
	if !ok {
		return nil, false
	}
	return m, true
}

// ResolveAttachableMember implements catalog.Catalog.
func (c *Catalog) ResolveAttachableMember(owner catalog.Type, name string) (catalog.Member, bool) {
	rt, ok := owner.(*Type)
	if !ok {
		return nil, false
	}
	c.mu.RLock()
	m, ok := c.attached[rt][name]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return m, true
}

// TypeOf returns the registered type of a value or pointer to a value.
func (c *Catalog) TypeOf(v any) (*Type, bool) {
	rt := reflect.TypeOf(v)
	for rt != nil && rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.byGo[rt]
	return t, ok
}

// AttachedValue returns the attached property owner.name set on target.
func (c *Catalog) AttachedValue(target any, owner catalog.Type, name string) (any, bool) {
	rt, ok := owner.(*Type)
	if !ok {
		return nil, false
	}
	return c.store.get(target, rt, name)
}
