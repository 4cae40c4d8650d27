package assembler

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xamlerrors "github.com/jacoelho/xaml/errors"
	"github.com/jacoelho/xaml/internal/xiter"
	"github.com/jacoelho/xaml/pkg/catalog"
	"github.com/jacoelho/xaml/pkg/instruction"
	"github.com/jacoelho/xaml/pkg/protoparser"
	"github.com/jacoelho/xaml/pkg/xamlparser"
)

const xNS = `xmlns:x="http://schemas.microsoft.com/winfx/2006/xaml"`

func load(t *testing.T, doc string) (any, error) {
	t.Helper()
	c := newTestCatalog()
	protos := protoparser.New(protoparser.Config{Types: c}).Parse(strings.NewReader(doc))
	ins := xamlparser.New(xamlparser.Config{Catalog: c}).Parse(protos)
	return New(Config{Catalog: c}).Assemble(ins)
}

func mustLoadRoot(t *testing.T, doc string) *root {
	t.Helper()
	got, err := load(t, doc)
	require.NoError(t, err)
	r, ok := got.(*root)
	require.True(t, ok, "root is %T", got)
	return r
}

func TestAssembleItemsInDocumentOrder(t *testing.T) {
	r := mustLoadRoot(t, `<Root xmlns="urn:test"><Root.Items><Item Title="Main1"/><Item Title="Main2"/></Root.Items></Root>`)
	require.Len(t, r.Items.items, 2)
	assert.Equal(t, &item{Title: "Main1"}, r.Items.items[0])
	assert.Equal(t, &item{Title: "Main2"}, r.Items.items[1])
}

func TestAssembleContentProperty(t *testing.T) {
	r := mustLoadRoot(t, `<Root xmlns="urn:test" Title="t"><Item Title="a"/>text</Root>`)
	assert.Equal(t, "t", r.Title)
	assert.Equal(t, []any{&item{Title: "a"}, "text"}, r.Items.items)
}

func TestAssembleKeyedResources(t *testing.T) {
	r := mustLoadRoot(t, `<Root xmlns="urn:test" `+xNS+`><Root.Resources><Item x:Key="a" Title="A"/><Item x:Key="b" Title="B"/></Root.Resources></Root>`)
	assert.Equal(t, []any{"a", "b"}, r.Resources.keys)
	assert.Equal(t, &item{Title: "B"}, r.Resources.values["b"])
}

func TestAssembleMarkupExtension(t *testing.T) {
	r := mustLoadRoot(t, `<Root xmlns="urn:test" Child="{Point 1, 2, Scale=2}"/>`)
	assert.Equal(t, point{X: 2, Y: 4}, r.Child)
}

func TestAssembleReference(t *testing.T) {
	r := mustLoadRoot(t, `<Root xmlns="urn:test" `+xNS+`>
  <Root.Items><Item x:Name="first" Title="A"/></Root.Items>
  <Root.Child><Reference Name="first"/></Root.Child>
</Root>`)
	require.Len(t, r.Items.items, 1)
	assert.Same(t, r.Items.items[0], r.Child)
}

func TestAssembleTextInitialization(t *testing.T) {
	r := mustLoadRoot(t, `<Root xmlns="urn:test"><Root.Child><Word>hello</Word></Root.Child></Root>`)
	assert.Equal(t, word("HELLO"), r.Child)
}

func TestAssembleTextInitializationAfterMembers(t *testing.T) {
	r := mustLoadRoot(t, `<Root xmlns="urn:test"><Root.Child><Word Grid.Row="2">hi</Word></Root.Child></Root>`)
	assert.Equal(t, word("HI"), r.Child)
	assert.Equal(t, "2", rowStore[word("HI")])
}

func TestAssembleTextInitializationAfterCreation(t *testing.T) {
	wordType := newTestCatalog().types["Word"]
	ins := []instruction.Instruction{
		instruction.StartObject(wordType),
		instruction.StartDirective(instruction.DirectiveInitialization), instruction.Value("a"), instruction.EndMember(),
		instruction.StartDirective(instruction.DirectiveInitialization), instruction.Value("b"), instruction.EndMember(),
		instruction.EndObject(),
	}
	_, err := New(Config{Catalog: newTestCatalog()}).Assemble(xiter.Lift(xiter.Slice(ins)))
	assert.True(t, xamlerrors.HasCode(err, xamlerrors.ErrConstruct), "got %v", err)
}

func TestAssembleAttachedProperty(t *testing.T) {
	r := mustLoadRoot(t, `<Root xmlns="urn:test" Grid.Row="3"/>`)
	assert.Equal(t, "3", rowStore[r])
}

func TestAssembleErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code xamlerrors.ErrorCode
	}{
		{name: "two values for single member", doc: `<Root xmlns="urn:test"><Root.Title>a<Item/></Root.Title></Root>`, code: xamlerrors.ErrMultipleValues},
		{name: "unknown member", doc: `<Root xmlns="urn:test" Nope="1"/>`, code: xamlerrors.ErrUnknownMember},
		{name: "unknown type", doc: `<Root xmlns="urn:test"><Missing/></Root>`, code: xamlerrors.ErrUnknownType},
		{name: "structural", doc: `<Root xmlns="urn:test"><Root.Items></Root>`, code: xamlerrors.ErrUnterminatedProperty},
		{name: "constructor failure", doc: `<Root xmlns="urn:test"><Root.Child><Broken/></Root.Child></Root>`, code: xamlerrors.ErrConstruct},
		{name: "provide value failure", doc: `<Root xmlns="urn:test" Child="{Point a, 2}"/>`, code: xamlerrors.ErrProvideValue},
		{name: "positional arguments unsupported", doc: `<Root xmlns="urn:test" Child="{Reference first}"/>`, code: xamlerrors.ErrConstruct},
		{name: "unknown reference", doc: `<Root xmlns="urn:test" Child="{Reference Name=nobody}"/>`, code: xamlerrors.ErrProvideValue},
		{name: "missing key", doc: `<Root xmlns="urn:test"><Root.Resources><Item/></Root.Resources></Root>`, code: xamlerrors.ErrMissingKey},
		{
			name: "duplicate name",
			doc:  `<Root xmlns="urn:test" ` + xNS + `><Item x:Name="a"/><Item x:Name="a"/></Root>`,
			code: xamlerrors.ErrDuplicateName,
		},
		{
			name: "attribute and content for single member",
			doc:  `<Root xmlns="urn:test"><Root.Child><Note Text="A">B</Note></Root.Child></Root>`,
			code: xamlerrors.ErrMultipleValues,
		},
		{
			name: "content around property element for single member",
			doc:  `<Root xmlns="urn:test"><Root.Child><Note>A<Note.Child><Item/></Note.Child>B</Note></Root.Child></Root>`,
			code: xamlerrors.ErrMultipleValues,
		},
		{name: "text without constructor", doc: `<Root xmlns="urn:test"><Root.Child><Item>text</Item></Root.Child></Root>`, code: xamlerrors.ErrConstruct},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := load(t, tt.doc)
			require.Error(t, err)
			assert.Nil(t, got)
			assert.True(t, xamlerrors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestAssembleConstructorCause(t *testing.T) {
	_, err := load(t, `<Root xmlns="urn:test"><Root.Child><Broken/></Root.Child></Root>`)
	assert.ErrorIs(t, err, errRejected)
}

func TestAssembleUnknownReferenceCause(t *testing.T) {
	_, err := load(t, `<Root xmlns="urn:test" Child="{Reference Name=nobody}"/>`)
	var inner *xamlerrors.AssignmentError
	require.ErrorAs(t, err, &inner)
	require.True(t, errors.As(inner.Err, &inner))
	assert.Equal(t, string(xamlerrors.ErrUnknownName), inner.Code)
}

func TestAssembleInstructionOrder(t *testing.T) {
	c := newTestCatalog()
	rootType := c.types["Root"]
	tests := []struct {
		name string
		ins  []instruction.Instruction
	}{
		{name: "empty"},
		{name: "unterminated", ins: []instruction.Instruction{instruction.StartObject(rootType)}},
		{name: "value outside member", ins: []instruction.Instruction{instruction.StartObject(rootType), instruction.Value("x")}},
		{name: "end member without member", ins: []instruction.Instruction{instruction.StartObject(rootType), instruction.EndMember()}},
		{name: "end object without object", ins: []instruction.Instruction{instruction.EndObject()}},
		{
			name: "object outside member",
			ins:  []instruction.Instruction{instruction.StartObject(rootType), instruction.StartObject(rootType)},
		},
		{
			name: "second root",
			ins: []instruction.Instruction{
				instruction.StartObject(rootType), instruction.EndObject(),
				instruction.StartObject(rootType), instruction.EndObject(),
			},
		},
		{
			name: "end object inside member",
			ins: []instruction.Instruction{
				instruction.StartObject(rootType), instruction.StartMember(rootType, "Title"), instruction.EndObject(),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(Config{Catalog: c}).Assemble(xiter.Lift(xiter.Slice(tt.ins)))
			assert.True(t, xamlerrors.HasCode(err, xamlerrors.ErrInstructionOrder), "got %v", err)
		})
	}
}

func TestAssemblePipelineSeesSingleValues(t *testing.T) {
	c := newTestCatalog()
	var seen []string
	p := PipelineFunc(func(_ any, m catalog.Member, v any) (PipelineResult, error) {
		seen = append(seen, m.Name())
		if s, ok := v.(string); ok {
			return Replaced(strings.ToUpper(s)), nil
		}
		return Unhandled(), nil
	})
	protos := protoparser.New(protoparser.Config{Types: c}).Parse(strings.NewReader(`<Root xmlns="urn:test" Title="t"><Item Title="i"/></Root>`))
	got, err := New(Config{Catalog: c, Pipeline: p}).Assemble(xamlparser.New(xamlparser.Config{Catalog: c}).Parse(protos))
	require.NoError(t, err)
	r := got.(*root)
	assert.Equal(t, "T", r.Title)
	assert.Equal(t, []any{&item{Title: "I"}}, r.Items.items)
	assert.Equal(t, []string{"Title", "Title"}, seen)
}

func TestAssembleUpstreamErrorAborts(t *testing.T) {
	boom := errors.New("boom")
	c := newTestCatalog()
	seq := func(yield func(instruction.Instruction, error) bool) {
		if !yield(instruction.StartObject(c.types["Root"]), nil) {
			return
		}
		yield(instruction.Instruction{}, boom)
	}
	got, err := New(Config{Catalog: c}).Assemble(seq)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, boom)
}

func TestAssembleSingleMemberAssignedOnce(t *testing.T) {
	c := newTestCatalog()
	var seen []any
	p := PipelineFunc(func(_ any, m catalog.Member, v any) (PipelineResult, error) {
		if m.Name() == "Text" {
			seen = append(seen, v)
		}
		return Unhandled(), nil
	})
	protos := protoparser.New(protoparser.Config{Types: c}).Parse(strings.NewReader(`<Root xmlns="urn:test"><Root.Child><Note Text="A">B</Note></Root.Child></Root>`))
	_, err := New(Config{Catalog: c, Pipeline: p}).Assemble(xamlparser.New(xamlparser.Config{Catalog: c}).Parse(protos))
	assert.True(t, xamlerrors.HasCode(err, xamlerrors.ErrMultipleValues), "got %v", err)
	assert.Empty(t, seen)
}

func TestAssembleReportsSemanticCause(t *testing.T) {
	_, err := load(t, `<Root xmlns="urn:test"><Root.Child><Missing/></Root.Child></Root>`)
	require.Error(t, err)
	assert.True(t, xamlerrors.HasCode(err, xamlerrors.ErrUnknownType), "got %v", err)
	_, ok := xamlerrors.AsParseErrors(err)
	assert.True(t, ok)
	ae, ok := xamlerrors.AsAssignment(err)
	require.True(t, ok)
	assert.Equal(t, string(xamlerrors.ErrMissingValue), ae.Code)
}

func TestAssembleDrainsAfterFailure(t *testing.T) {
	boom := errors.New("boom")
	c := newTestCatalog()
	pulled := 0
	seq := func(yield func(instruction.Instruction, error) bool) {
		for _, in := range []instruction.Instruction{instruction.EndObject(), instruction.EndObject()} {
			pulled++
			if !yield(in, nil) {
				return
			}
		}
		yield(instruction.Instruction{}, boom)
	}
	_, err := New(Config{Catalog: c}).Assemble(seq)
	assert.Equal(t, 2, pulled)
	assert.ErrorIs(t, err, boom)
	assert.True(t, xamlerrors.HasCode(err, xamlerrors.ErrInstructionOrder), "got %v", err)
}
