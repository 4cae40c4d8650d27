package assembler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/jacoelho/xaml/pkg/catalog"
)

const testNS = "urn:test"

type list struct{ items []any }

func (l *list) Append(v any) error {
	l.items = append(l.items, v)
	return nil
}

type set struct {
	order []any
	seen  map[any]bool
}

func (s *set) Add(v any) error {
	if s.seen == nil {
		s.seen = map[any]bool{}
	}
	if !s.seen[v] {
		s.seen[v] = true
		s.order = append(s.order, v)
	}
	return nil
}

type dict struct {
	keys   []any
	values map[any]any
}

func (d *dict) Insert(k, v any) error {
	if d.values == nil {
		d.values = map[any]any{}
	}
	d.keys = append(d.keys, k)
	d.values[k] = v
	return nil
}

type root struct {
	Title     string
	Child     any
	Items     *list
	Tags      *set
	Resources *dict
	Row       int
}

type item struct {
	Title string
}

type note struct {
	Text  string
	Child any
}

type point struct{ X, Y int }

type pointExtension struct {
	args  []string
	Scale string
}

func (p *pointExtension) ProvideValue(ctx ExtensionContext) (any, error) {
	x, err := strconv.Atoi(p.args[0])
	if err != nil {
		return nil, err
	}
	y, err := strconv.Atoi(p.args[1])
	if err != nil {
		return nil, err
	}
	if p.Scale == "2" {
		x, y = x*2, y*2
	}
	return point{X: x, Y: y}, nil
}

type word string

type testType struct {
	name     string
	content  string
	newFn    func() any
	argsFn   func([]string) (any, error)
	textFn   func(string) (any, error)
	ctorFail error
}

func (t *testType) Name() string            { return t.name }
func (t *testType) Namespace() string       { return testNS }
func (t *testType) ContentProperty() string { return t.content }
func (t *testType) New() (any, error) {
	if t.ctorFail != nil {
		return nil, t.ctorFail
	}
	return t.newFn(), nil
}

type argType struct{ *testType }

func (t argType) NewWithArguments(args []string) (any, error) { return t.argsFn(args) }

type textType struct{ *testType }

func (t textType) FromText(text string) (any, error) { return t.textFn(text) }

type testMember struct {
	owner      catalog.Type
	get        func(any) (any, error)
	set        func(any, any) error
	name       string
	kind       catalog.CollectionKind
	attachable bool
}

func (m *testMember) Name() string                       { return m.name }
func (m *testMember) Owner() catalog.Type                { return m.owner }
func (m *testMember) Collection() catalog.CollectionKind { return m.kind }
func (m *testMember) CanGet() bool                       { return m.get != nil }
func (m *testMember) CanSet() bool                       { return m.set != nil }
func (m *testMember) Attachable() bool                   { return m.attachable }
func (m *testMember) GetValue(instance any) (any, error) { return m.get(instance) }
func (m *testMember) SetValue(instance, value any) error { return m.set(instance, value) }

type testCatalog struct {
	types    map[string]catalog.Type
	members  map[string]*testMember
	attached map[string]*testMember
}

func (c *testCatalog) ResolveType(namespace, name string) (catalog.Type, bool) {
	if namespace != testNS {
		return nil, false
	}
	t, ok := c.types[name]
	return t, ok
}

func (c *testCatalog) ResolveMember(t catalog.Type, name string) (catalog.Member, bool) {
	m, ok := c.members[t.Name()+"."+name]
	if !ok {
		return nil, false
	}
	return m, true
}

func (c *testCatalog) ResolveAttachableMember(owner catalog.Type, name string) (catalog.Member, bool) {
	m, ok := c.attached[owner.Name()+"."+name]
	if !ok {
		return nil, false
	}
	return m, true
}

var errRejected = errors.New("rejected")

// rowStore records attached Grid.Row values by target.
var rowStore = map[any]string{}

func newTestCatalog() *testCatalog {
	rootType := &testType{name: "Root", content: "Items", newFn: func() any {
		return &root{Items: &list{}, Tags: &set{}, Resources: &dict{}}
	}}
	itemType := &testType{name: "Item", newFn: func() any { return &item{} }}
	gridType := &testType{name: "Grid", newFn: func() any { return struct{}{} }}
	brokenType := &testType{name: "Broken", ctorFail: errRejected}
	pointType := argType{&testType{name: "PointExtension", newFn: func() any { return &pointExtension{} }, argsFn: func(args []string) (any, error) {
		if len(args) != 2 {
			return nil, errors.New("want 2 arguments")
		}
		return &pointExtension{args: args}, nil
	}}}
	noteType := &testType{name: "Note", content: "Text", newFn: func() any { return &note{} }}
	refType := &testType{name: "Reference", newFn: func() any { return &Reference{} }}
	wordType := textType{&testType{name: "Word", newFn: func() any { return word("") }, textFn: func(s string) (any, error) {
		return word(strings.ToUpper(s)), nil
	}}}

	c := &testCatalog{
		types:    map[string]catalog.Type{},
		members:  map[string]*testMember{},
		attached: map[string]*testMember{},
	}
	for _, t := range []catalog.Type{rootType, itemType, gridType, brokenType, pointType, refType, wordType, noteType} {
		c.types[t.Name()] = t
	}
	add := func(m *testMember) { c.members[m.owner.Name()+"."+m.name] = m }

	add(&testMember{owner: rootType, name: "Title",
		get: func(o any) (any, error) { return o.(*root).Title, nil },
		set: func(o, v any) error {
			s, ok := v.(string)
			if !ok {
				return errRejected
			}
			o.(*root).Title = s
			return nil
		}})
	add(&testMember{owner: rootType, name: "Child",
		set: func(o, v any) error { o.(*root).Child = v; return nil }})
	add(&testMember{owner: rootType, name: "Items", kind: catalog.List,
		get: func(o any) (any, error) { return o.(*root).Items, nil }})
	add(&testMember{owner: rootType, name: "Tags", kind: catalog.Set,
		get: func(o any) (any, error) { return o.(*root).Tags, nil }})
	add(&testMember{owner: rootType, name: "Resources", kind: catalog.Keyed,
		get: func(o any) (any, error) { return o.(*root).Resources, nil }})
	add(&testMember{owner: rootType, name: "Missing", kind: catalog.List,
		get: func(any) (any, error) { return nil, nil }})
	add(&testMember{owner: itemType, name: "Title",
		set: func(o, v any) error { o.(*item).Title = v.(string); return nil }})
	add(&testMember{owner: noteType, name: "Text",
		set: func(o, v any) error { o.(*note).Text = v.(string); return nil }})
	add(&testMember{owner: noteType, name: "Child",
		set: func(o, v any) error { o.(*note).Child = v; return nil }})
	add(&testMember{owner: pointType, name: "Scale",
		set: func(o, v any) error { o.(*pointExtension).Scale = v.(string); return nil }})
	add(&testMember{owner: refType, name: "Name",
		set: func(o, v any) error { o.(*Reference).Name = v.(string); return nil }})
	c.attached["Grid.Row"] = &testMember{owner: gridType, name: "Row", attachable: true,
		set: func(o, v any) error { rowStore[o] = v.(string); return nil }}
	return c
}
