package markuptext

// Attr is one attribute of a start element, with its value unescaped and
// normalized.
type Attr struct {
	Name   string
	Value  string
	Line   int
	Column int
}

// Token is one markup token.
//
// Start elements written as self-closing tags report SelfClosing and are not
// followed by an EndElement token.
type Token struct {
	Name        string
	Text        string
	Attrs       []Attr
	Line        int
	Column      int
	Kind        Kind
	SelfClosing bool
}
