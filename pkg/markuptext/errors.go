package markuptext

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedEOF reports input that ended inside markup or with open elements.
	ErrUnexpectedEOF = errors.New("unexpected EOF")
	// ErrMismatchedEndTag reports an end tag that does not close the open element.
	ErrMismatchedEndTag = errors.New("mismatched end element")
	// ErrDepthLimit reports nesting deeper than MaxDepth.
	ErrDepthLimit = errors.New("element depth exceeds MaxDepth")

	errNilReader          = errors.New("nil markup reader")
	errInvalidName        = errors.New("invalid markup name")
	errInvalidEntity      = errors.New("invalid entity reference")
	errInvalidCharRef     = errors.New("invalid character reference")
	errInvalidToken       = errors.New("invalid markup token")
	errInvalidComment     = errors.New("invalid comment")
	errTokenTooLarge      = errors.New("token exceeds MaxTokenSize")
	errAttrLimit          = errors.New("attribute count exceeds MaxAttrs")
	errDuplicateAttr      = errors.New("duplicate attribute name")
	errUnquotedAttr       = errors.New("attribute value must be quoted")
	errLtInAttrValue      = errors.New("'<' in attribute value")
	errMultipleRoots      = errors.New("multiple root elements")
	errContentOutsideRoot = errors.New("content outside root element")
	errCDATAOutsideRoot   = errors.New("CDATA section outside root element")
)

// SyntaxError reports a well-formedness error with location context.
type SyntaxError struct {
	Err    error
	Offset int64
	Line   int
	Column int
}

// Error formats the syntax error with location and cause.
func (e *SyntaxError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("markup syntax error at line %d, column %d: %v", e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("markup syntax error at offset %d: %v", e.Offset, e.Err)
}

// Unwrap exposes the underlying error.
func (e *SyntaxError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
