// Package errors defines the error taxonomy reported by the markup pipeline.
//
// Structural parse errors come from the tokenizer and abort the parse.
// Semantic parse errors come from the instruction transformer; they are
// collected per attribute or element and reported together once the
// document has been consumed. Assignment errors come from the object
// assembler and abort construction of the element being assembled.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Class classifies a parse error by the stage that produced it.
type Class uint8

const (
	// ClassStructural marks tokenizer failures: unbalanced tags, misplaced
	// property elements, unterminated input.
	ClassStructural Class = iota + 1
	// ClassSemantic marks transformer failures scoped to one attribute or element.
	ClassSemantic
)

// String returns a stable name for the class.
func (c Class) String() string {
	switch c {
	case ClassStructural:
		return "structural"
	case ClassSemantic:
		return "semantic"
	default:
		return "unknown"
	}
}

// ErrorCode identifies a failure condition.
type ErrorCode string

const (
	// ErrMarkupSyntax indicates the markup is not well formed.
	ErrMarkupSyntax ErrorCode = "xaml-markup-syntax"
	// ErrUnbalancedTag indicates an end tag that does not match the open element.
	ErrUnbalancedTag ErrorCode = "xaml-unbalanced-tag"
	// ErrUnterminatedElement indicates input ended with open elements.
	ErrUnterminatedElement ErrorCode = "xaml-unterminated-element"
	// ErrUnterminatedProperty indicates input ended inside a property element.
	ErrUnterminatedProperty ErrorCode = "xaml-unterminated-property"
	// ErrAttributeNotAllowed indicates an attribute where only an object tag may carry one.
	ErrAttributeNotAllowed ErrorCode = "xaml-attribute-not-allowed"
	// ErrPropertyElementPlacement indicates a property element outside an object element.
	ErrPropertyElementPlacement ErrorCode = "xaml-property-element-placement"
	// ErrUnboundPrefix indicates use of an undeclared namespace prefix.
	ErrUnboundPrefix ErrorCode = "xaml-unbound-prefix"
	// ErrReservedNamespace indicates a declaration rebinding the xml or xmlns prefix.
	ErrReservedNamespace ErrorCode = "xaml-reserved-namespace"
	// ErrEmptyDocument indicates the input has no root element.
	ErrEmptyDocument ErrorCode = "xaml-empty-document"

	// ErrUnknownType indicates an element type the catalog cannot resolve.
	ErrUnknownType ErrorCode = "xaml-unknown-type"
	// ErrUnknownExtension indicates a markup extension type the catalog cannot resolve.
	ErrUnknownExtension ErrorCode = "xaml-unknown-extension"
	// ErrMalformedExtension indicates a markup extension argument list that cannot be parsed.
	ErrMalformedExtension ErrorCode = "xaml-malformed-extension"
	// ErrUnmatchedBrace indicates unbalanced braces in markup extension text.
	ErrUnmatchedBrace ErrorCode = "xaml-unmatched-brace"
	// ErrAttachedOwner indicates an attached property whose owner type cannot be resolved.
	ErrAttachedOwner ErrorCode = "xaml-attached-owner"
	// ErrNoContentProperty indicates content for a type without a content property.
	ErrNoContentProperty ErrorCode = "xaml-no-content-property"

	// ErrMultipleValues indicates more than one value for a single-valued member.
	ErrMultipleValues ErrorCode = "xaml-multiple-values"
	// ErrMissingValue indicates no value for a single-valued member.
	ErrMissingValue ErrorCode = "xaml-missing-value"
	// ErrUnknownMember indicates a member the target type does not define.
	ErrUnknownMember ErrorCode = "xaml-unknown-member"
	// ErrNilCollection indicates a collection getter returned no live collection.
	ErrNilCollection ErrorCode = "xaml-nil-collection"
	// ErrCollectionCapability indicates a collection lacking the operation its kind requires.
	ErrCollectionCapability ErrorCode = "xaml-collection-capability"
	// ErrMissingKey indicates a keyed collection value without an x:Key directive.
	ErrMissingKey ErrorCode = "xaml-missing-key"
	// ErrGetValue indicates a member getter failed.
	ErrGetValue ErrorCode = "xaml-get-value"
	// ErrSetValue indicates a member setter rejected a value.
	ErrSetValue ErrorCode = "xaml-set-value"
	// ErrValuePipeline indicates the value pipeline failed.
	ErrValuePipeline ErrorCode = "xaml-value-pipeline"
	// ErrConstruct indicates a type could not be instantiated.
	ErrConstruct ErrorCode = "xaml-construct"
	// ErrDuplicateName indicates an x:Name already registered in the document.
	ErrDuplicateName ErrorCode = "xaml-duplicate-name"
	// ErrUnknownName indicates a reference to a name that is not registered.
	ErrUnknownName ErrorCode = "xaml-unknown-name"
	// ErrProvideValue indicates a markup extension failed to provide its value.
	ErrProvideValue ErrorCode = "xaml-provide-value"
	// ErrInstructionOrder indicates an instruction stream that breaks object/member nesting.
	ErrInstructionOrder ErrorCode = "xaml-instruction-order"
)

// ParseError describes a tokenizer or transformer failure.
type ParseError struct {
	Err     error
	Code    string
	Message string
	Type    string
	Member  string
	Line    int
	Column  int
	Class   Class
}

// Error formats the parse error with its code, class and context.
func (e *ParseError) Error() string {
	if e == nil {
		return "parse error <nil>"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s error: %s", e.Code, e.Class, e.Message)
	writeContext(&b, e.Type, e.Member)
	if e.Line > 0 && e.Column > 0 {
		fmt.Fprintf(&b, " at line %d, column %d", e.Line, e.Column)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap exposes the underlying cause.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Structural reports whether the error aborts the parse.
func (e *ParseError) Structural() bool {
	return e != nil && e.Class == ClassStructural
}

// NewStructural builds a structural parse error at a source position.
func NewStructural(code ErrorCode, line, column int, format string, args ...any) *ParseError {
	return &ParseError{
		Class:   ClassStructural,
		Code:    string(code),
		Message: fmt.Sprintf(format, args...),
		Line:    line,
		Column:  column,
	}
}

// NewSemantic builds a semantic parse error for a type and member.
func NewSemantic(code ErrorCode, typeName, member string, format string, args ...any) *ParseError {
	return &ParseError{
		Class:   ClassSemantic,
		Code:    string(code),
		Message: fmt.Sprintf(format, args...),
		Type:    typeName,
		Member:  member,
	}
}

// ParseErrorList is an error that wraps one or more parse errors.
type ParseErrorList []ParseError //nolint:errname // mirrors ParseError.

// Error returns a compact summary of the parse errors.
func (l ParseErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no parse errors"
	case 1:
		return l[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more)", l[0].Error(), len(l)-1)
	}
}

// Unwrap exposes every collected error to errors.Is and errors.As.
func (l ParseErrorList) Unwrap() []error {
	out := make([]error, 0, len(l))
	for i := range l {
		out = append(out, &l[i])
	}
	return out
}

// AssignmentError describes a failure to assign a value to a member.
type AssignmentError struct {
	Err     error
	Code    string
	Message string
	Type    string
	Member  string
}

// Error formats the assignment error with its code and context.
func (e *AssignmentError) Error() string {
	if e == nil {
		return "assignment error <nil>"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	writeContext(&b, e.Type, e.Member)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap exposes the underlying cause.
func (e *AssignmentError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewAssignment builds an assignment error for a type and member.
func NewAssignment(code ErrorCode, typeName, member string, cause error, format string, args ...any) *AssignmentError {
	return &AssignmentError{
		Code:    string(code),
		Message: fmt.Sprintf(format, args...),
		Type:    typeName,
		Member:  member,
		Err:     cause,
	}
}

// AsParseErrors extracts parse errors from an error returned by the parsers.
// A single ParseError is returned as a one-element slice.
func AsParseErrors(err error) ([]ParseError, bool) {
	if err == nil {
		return nil, false
	}
	var list ParseErrorList
	if errors.As(err, &list) {
		return []ParseError(list), true
	}
	var one *ParseError
	if errors.As(err, &one) && one != nil {
		return []ParseError{*one}, true
	}
	return nil, false
}

// AsAssignment extracts an assignment error.
func AsAssignment(err error) (*AssignmentError, bool) {
	var target *AssignmentError
	if errors.As(err, &target) && target != nil {
		return target, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code as a parse or assignment error.
func HasCode(err error, code ErrorCode) bool {
	if parseErrs, ok := AsParseErrors(err); ok {
		for _, pe := range parseErrs {
			if pe.Code == string(code) {
				return true
			}
		}
	}
	if ae, ok := AsAssignment(err); ok {
		return ae.Code == string(code)
	}
	return false
}

func writeContext(b *strings.Builder, typeName, member string) {
	switch {
	case typeName != "" && member != "":
		fmt.Fprintf(b, " (%s.%s)", typeName, member)
	case typeName != "":
		fmt.Fprintf(b, " (%s)", typeName)
	case member != "":
		fmt.Fprintf(b, " (member %s)", member)
	}
}
