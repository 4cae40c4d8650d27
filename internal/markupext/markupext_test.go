package markupext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		in   string
		form Form
		text string
	}{
		{in: "plain", form: Plain, text: "plain"},
		{in: "", form: Plain, text: ""},
		{in: "{}{literal}", form: Escaped, text: "{literal}"},
		{in: "{{literal}", form: Escaped, text: "{literal}"},
		{in: "{Dummy}", form: Extension, text: "{Dummy}"},
		{in: " {Dummy}", form: Plain, text: " {Dummy}"},
	}
	for _, tt := range tests {
		form, text := Classify(tt.in)
		assert.Equal(t, tt.form, form, tt.in)
		assert.Equal(t, tt.text, text, tt.in)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want *Node
	}{
		{name: "bare", in: "{Dummy}", want: &Node{Name: "Dummy"}},
		{name: "padded", in: "  { Dummy }  ", want: &Node{Name: "Dummy"}},
		{name: "prefixed", in: "{x:Type}", want: &Node{Prefix: "x", Name: "Type"}},
		{name: "one positional", in: "{Dummy Option}", want: &Node{Name: "Dummy", Positional: []string{"Option"}}},
		{
			name: "positional separators",
			in:   "{Dummy a, b  c,d}",
			want: &Node{Name: "Dummy", Positional: []string{"a", "b", "c", "d"}},
		},
		{
			name: "named",
			in:   "{Binding Path=Name, Mode = OneWay}",
			want: &Node{Name: "Binding", Named: []NamedArg{
				{Name: "Path", Value: Value{Text: "Name"}},
				{Name: "Mode", Value: Value{Text: "OneWay"}},
			}},
		},
		{
			name: "positional then named",
			in:   "{Binding Name, Mode=OneWay}",
			want: &Node{Name: "Binding", Positional: []string{"Name"}, Named: []NamedArg{
				{Name: "Mode", Value: Value{Text: "OneWay"}},
			}},
		},
		{
			name: "nested",
			in:   "{Outer Inner={Type x, y}, Tail=t}",
			want: &Node{Name: "Outer", Named: []NamedArg{
				{Name: "Inner", Value: Value{Extension: &Node{Name: "Type", Positional: []string{"x", "y"}}}},
				{Name: "Tail", Value: Value{Text: "t"}},
			}},
		},
		{
			name: "quoted",
			in:   `{Format 'a, {b}=c', Sep='x y'}`,
			want: &Node{Name: "Format", Positional: []string{"a, {b}=c"}, Named: []NamedArg{
				{Name: "Sep", Value: Value{Text: "x y"}},
			}},
		},
		{
			name: "quoted positional after named",
			in:   `{Format a\,b, Text=\{c\} 'it\'s'}`,
			want: nil,
		},
		{
			name: "named value keeps equals",
			in:   "{Query Filter=a=b}",
			want: &Node{Name: "Query", Named: []NamedArg{{Name: "Filter", Value: Value{Text: "a=b"}}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.want == nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrMalformed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseEscapedSeparators(t *testing.T) {
	got, err := Parse(`{Format a\,b, Text=\{c\}}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"a,b"}, got.Positional)
	require.Len(t, got.Named, 1)
	assert.Equal(t, "{c}", got.Named[0].Value.Text)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{name: "missing close", in: "{Dummy", want: ErrUnmatchedBrace},
		{name: "missing close after args", in: "{Dummy a, b", want: ErrUnmatchedBrace},
		{name: "trailing text", in: "{Dummy} tail", want: ErrUnmatchedBrace},
		{name: "extra close", in: "{Dummy}}", want: ErrUnmatchedBrace},
		{name: "unterminated quote", in: "{Dummy 'abc}", want: ErrUnmatchedBrace},
		{name: "nested missing close", in: "{A B={C}", want: ErrUnmatchedBrace},
		{name: "empty name", in: "{ }", want: ErrMalformed},
		{name: "missing argument name", in: "{A =b}", want: ErrMalformed},
		{name: "missing value", in: "{A B=}", want: ErrMalformed},
		{name: "missing value before comma", in: "{A B=, C=d}", want: ErrMalformed},
		{name: "positional after named", in: "{A B=c, d}", want: ErrMalformed},
		{name: "positional extension", in: "{A {B}}", want: ErrMalformed},
		{name: "bad prefix", in: "{:A}", want: ErrMalformed},
		{name: "not an extension", in: "Dummy", want: ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			var se *SyntaxError
			require.ErrorAs(t, err, &se)
			assert.GreaterOrEqual(t, se.Offset, 0)
		})
	}
}

func TestTypeNames(t *testing.T) {
	n := &Node{Name: "Dummy"}
	assert.Equal(t, []string{"DummyExtension", "Dummy"}, n.TypeNames())
}
