package markuptext

// Kind classifies a token produced by the Decoder.
// Comments, processing instructions and directives are reported so callers
// can skip them; the proto stage never turns them into instructions.
type Kind byte

const (
	KindNone Kind = iota
	// KindStartElement is an open tag; Token.SelfClosing marks <a/>.
	KindStartElement
	KindEndElement
	// KindCharData is text with entity and character references resolved.
	KindCharData
	// KindCDATA is a <![CDATA[...]]> section, delivered verbatim.
	KindCDATA
	KindComment
	KindPI
	// KindDirective is a <!...> declaration other than CDATA.
	KindDirective
)

var kindNames = [...]string{
	KindNone:         "None",
	KindStartElement: "StartElement",
	KindEndElement:   "EndElement",
	KindCharData:     "CharData",
	KindCDATA:        "CDATA",
	KindComment:      "Comment",
	KindPI:           "PI",
	KindDirective:    "Directive",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}
