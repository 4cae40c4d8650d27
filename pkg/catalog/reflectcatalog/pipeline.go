package reflectcatalog

import (
	"reflect"

	"github.com/jacoelho/xaml/pkg/assembler"
	"github.com/jacoelho/xaml/pkg/catalog"
)

var stringType = reflect.TypeFor[string]()

// TextConverter is a value pipeline stage converting text values to the
// declared type of reflectcatalog members, so later stages in an
// assembler.Chain see typed values.
type TextConverter struct{}

// Handle implements assembler.Pipeline.
func (TextConverter) Handle(_ any, member catalog.Member, value any) (assembler.PipelineResult, error) {
	m, ok := member.(*Member)
	if !ok {
		return assembler.Unhandled(), nil
	}
	text, ok := value.(string)
	if !ok || m.typ == stringType {
		return assembler.Unhandled(), nil
	}
	v, err := parseText(text, m.typ)
	if err != nil {
		return assembler.Unhandled(), err
	}
	return assembler.Replaced(v.Interface()), nil
}
