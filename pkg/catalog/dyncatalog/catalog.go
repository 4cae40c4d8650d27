package dyncatalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/jacoelho/xaml/pkg/catalog"
)

var (
	errNoArguments = errors.New("type takes no positional arguments")
	errNoText      = errors.New("type cannot be created from text")
	errTarget      = errors.New("target is not an instance of the member owner")
)

type typeKey struct {
	namespace string
	name      string
}

// Catalog resolves types declared in YAML.
type Catalog struct {
	types    map[typeKey]*Type
	attached map[*Type]map[string]*Member
	order    []*Type
}

var _ catalog.Catalog = (*Catalog)(nil)

// Build validates f and returns its catalog.
func Build(f File) (*Catalog, error) {
	c := &Catalog{
		types:    make(map[typeKey]*Type),
		attached: make(map[*Type]map[string]*Member),
	}
	for _, ns := range f.Namespaces {
		if ns.URI == "" {
			return nil, fmt.Errorf("namespace without uri")
		}
		for _, ts := range ns.Types {
			t, err := newType(ns.URI, ts)
			if err != nil {
				return nil, fmt.Errorf("namespace %s: %w", ns.URI, err)
			}
			key := typeKey{namespace: ns.URI, name: t.name}
			if _, ok := c.types[key]; ok {
				return nil, fmt.Errorf("namespace %s: duplicate type %q", ns.URI, t.name)
			}
			c.types[key] = t
			c.order = append(c.order, t)
		}
	}
	for _, ns := range f.Namespaces {
		for _, as := range ns.Attached {
			owner, ok := c.types[typeKey{namespace: ns.URI, name: as.Owner}]
			if !ok {
				return nil, fmt.Errorf("namespace %s: attached property %s.%s: unknown owner", ns.URI, as.Owner, as.Name)
			}
			if as.Name == "" || strings.Contains(as.Name, ".") {
				return nil, fmt.Errorf("namespace %s: invalid attached property name %q", ns.URI, as.Name)
			}
			byName := c.attached[owner]
			if byName == nil {
				byName = make(map[string]*Member)
				c.attached[owner] = byName
			}
			if _, ok := byName[as.Name]; ok {
				return nil, fmt.Errorf("namespace %s: duplicate attached property %s.%s", ns.URI, as.Owner, as.Name)
			}
			byName[as.Name] = &Member{owner: owner, name: as.Name, attachable: true}
		}
	}
	return c, nil
}

// ResolveType implements catalog.Catalog.
func (c *Catalog) ResolveType(namespace, name string) (catalog.Type, bool) {
	t, ok := c.types[typeKey{namespace: namespace, name: name}]
	if !ok {
		return nil, false
	}
	return t, true
}

// ResolveMember implements catalog.Catalog.
func (c *Catalog) ResolveMember(t catalog.Type, name string) (catalog.Member, bool) {
	dt, ok := t.(*Type)
	if !ok {
		return nil, false
	}
	m := dt.member(name)
	if m == nil {
		return nil, false
	}
	return m, true
}

// ResolveAttachableMember implements catalog.Catalog.
func (c *Catalog) ResolveAttachableMember(owner catalog.Type, name string) (catalog.Member, bool) {
	dt, ok := owner.(*Type)
	if !ok {
		return nil, false
	}
	m, ok := c.attached[dt][name]
	if !ok {
		return nil, false
	}
	return m, true
}

// Types returns the declared types in declaration order.
func (c *Catalog) Types() []*Type {
	return append([]*Type(nil), c.order...)
}

// Type is a declared type.
type Type struct {
	name        string
	namespace   string
	content     string
	scalar      string
	extension   string
	args        []string
	members     map[string]*Member
	collections []string
	text        bool
	open        bool

	mu    sync.Mutex
	extra map[string]*Member
}

var (
	_ catalog.Type                = (*Type)(nil)
	_ catalog.ArgumentConstructor = (*Type)(nil)
	_ catalog.TextConstructor     = (*Type)(nil)
)

func newType(namespace string, ts TypeSpec) (*Type, error) {
	if ts.Name == "" || strings.Contains(ts.Name, ".") {
		return nil, fmt.Errorf("invalid type name %q", ts.Name)
	}
	t := &Type{
		name:      ts.Name,
		namespace: namespace,
		content:   ts.Content,
		scalar:    ts.Scalar,
		extension: ts.Extension,
		args:      ts.Args,
		members:   make(map[string]*Member, len(ts.Members)),
		text:      ts.Text,
		open:      ts.Open,
	}
	switch ts.Scalar {
	case "", "string", "int", "float", "bool":
	default:
		return nil, fmt.Errorf("type %s: unknown scalar %q", ts.Name, ts.Scalar)
	}
	if ts.Scalar != "" && (len(ts.Members) > 0 || ts.Content != "" || len(ts.Args) > 0 || ts.Open) {
		return nil, fmt.Errorf("type %s: scalar types cannot declare members", ts.Name)
	}
	if err := validExtension(ts.Extension); err != nil {
		return nil, fmt.Errorf("type %s: %w", ts.Name, err)
	}
	for _, ms := range ts.Members {
		if ms.Name == "" || strings.Contains(ms.Name, ".") {
			return nil, fmt.Errorf("type %s: invalid member name %q", ts.Name, ms.Name)
		}
		if _, ok := t.members[ms.Name]; ok {
			return nil, fmt.Errorf("type %s: duplicate member %q", ts.Name, ms.Name)
		}
		kind, ok := catalog.ParseCollectionKind(ms.Collection)
		if !ok {
			return nil, fmt.Errorf("type %s: member %s: unknown collection %q", ts.Name, ms.Name, ms.Collection)
		}
		t.members[ms.Name] = &Member{owner: t, name: ms.Name, kind: kind, readOnly: ms.ReadOnly}
		if kind != catalog.NotCollection {
			t.collections = append(t.collections, ms.Name)
		}
	}
	if t.content != "" && t.member(t.content) == nil {
		return nil, fmt.Errorf("type %s: content property %q is not a member", ts.Name, t.content)
	}
	for _, a := range t.args {
		m := t.member(a)
		if m == nil {
			return nil, fmt.Errorf("type %s: positional argument %q is not a member", ts.Name, a)
		}
		if catalog.IsCollection(m) {
			return nil, fmt.Errorf("type %s: positional argument %q is a collection", ts.Name, a)
		}
	}
	return t, nil
}

func validExtension(mode string) error {
	switch {
	case mode == "", mode == "self", mode == "text":
		return nil
	case strings.HasPrefix(mode, "member:") && len(mode) > len("member:"):
		return nil
	case strings.HasPrefix(mode, "reference:") && len(mode) > len("reference:"):
		return nil
	default:
		return fmt.Errorf("unknown extension mode %q", mode)
	}
}

// member returns the declared member, or an ad hoc single-valued member
// for open types.
func (t *Type) member(name string) *Member {
	if m, ok := t.members[name]; ok {
		return m
	}
	if !t.open || name == "" || strings.Contains(name, ".") {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if m, ok := t.extra[name]; ok {
		return m
	}
	if t.extra == nil {
		t.extra = make(map[string]*Member)
	}
	m := &Member{owner: t, name: name}
	t.extra[name] = m
	return m
}

// Name implements catalog.Type.
func (t *Type) Name() string { return t.name }

// Namespace implements catalog.Type.
func (t *Type) Namespace() string { return t.namespace }

// ContentProperty implements catalog.Type.
func (t *Type) ContentProperty() string { return t.content }

// Scalar reports the scalar kind, or "" for object types.
func (t *Type) Scalar() string { return t.scalar }

// New implements catalog.Type.
func (t *Type) New() (any, error) {
	switch t.scalar {
	case "string":
		return "", nil
	case "int":
		return int64(0), nil
	case "float":
		return float64(0), nil
	case "bool":
		return false, nil
	}
	return newObject(t), nil
}

// NewWithArguments implements catalog.ArgumentConstructor. Arguments fill
// the declared positional members in order.
func (t *Type) NewWithArguments(args []string) (any, error) {
	if len(t.args) == 0 {
		return nil, fmt.Errorf("%s: %w", t.name, errNoArguments)
	}
	if len(args) > len(t.args) {
		return nil, fmt.Errorf("%s: got %d arguments, want at most %d", t.name, len(args), len(t.args))
	}
	o := newObject(t)
	o.Args = append([]string(nil), args...)
	for i, a := range args {
		o.Members[t.args[i]] = a
	}
	return o, nil
}

// FromText implements catalog.TextConstructor.
func (t *Type) FromText(text string) (any, error) {
	switch t.scalar {
	case "string":
		return text, nil
	case "int":
		n, err := strconv.ParseInt(strings.TrimSpace(text), 0, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.name, err)
		}
		return n, nil
	case "float":
		f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.name, err)
		}
		return f, nil
	case "bool":
		b, err := strconv.ParseBool(strings.TrimSpace(text))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.name, err)
		}
		return b, nil
	}
	if !t.text {
		return nil, fmt.Errorf("%s: %w", t.name, errNoText)
	}
	o := newObject(t)
	o.Text = text
	return o, nil
}

// Member is a declared member or attached property.
type Member struct {
	owner      *Type
	name       string
	kind       catalog.CollectionKind
	readOnly   bool
	attachable bool
}

var _ catalog.Member = (*Member)(nil)

// Name implements catalog.Member.
func (m *Member) Name() string { return m.name }

// Owner implements catalog.Member.
func (m *Member) Owner() catalog.Type { return m.owner }

// Collection implements catalog.Member.
func (m *Member) Collection() catalog.CollectionKind { return m.kind }

// CanGet implements catalog.Member.
func (m *Member) CanGet() bool { return true }

// CanSet implements catalog.Member.
func (m *Member) CanSet() bool { return !m.readOnly && m.kind == catalog.NotCollection }

// Attachable implements catalog.Member.
func (m *Member) Attachable() bool { return m.attachable }

func (m *Member) attachedKey() string {
	return m.owner.name + "." + m.name
}

// GetValue implements catalog.Member.
func (m *Member) GetValue(instance any) (any, error) {
	o, ok := instance.(*Object)
	if !ok || o == nil {
		return nil, fmt.Errorf("%s: %w", m.name, errTarget)
	}
	if m.attachable {
		return o.Attached[m.attachedKey()], nil
	}
	if o.typ != m.owner {
		return nil, fmt.Errorf("%s.%s on %s: %w", m.owner.name, m.name, o.Type, errTarget)
	}
	return o.Members[m.name], nil
}

// SetValue implements catalog.Member.
func (m *Member) SetValue(instance, value any) error {
	o, ok := instance.(*Object)
	if !ok || o == nil {
		return fmt.Errorf("%s: %w", m.name, errTarget)
	}
	if m.attachable {
		if o.Attached == nil {
			o.Attached = make(map[string]any)
		}
		o.Attached[m.attachedKey()] = value
		return nil
	}
	if o.typ != m.owner {
		return fmt.Errorf("%s.%s on %s: %w", m.owner.name, m.name, o.Type, errTarget)
	}
	if !m.CanSet() {
		return fmt.Errorf("member %s.%s is not settable", m.owner.name, m.name)
	}
	o.Members[m.name] = value
	return nil
}
