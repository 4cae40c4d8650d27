package markuptext

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

const defaultBufferSize = 32 * 1024

var bomBytes = []byte{0xEF, 0xBB, 0xBF}

// Decoder streams markup tokens from a reader in a single forward pass.
// It checks tag balance and reports every failure as a *SyntaxError.
type Decoder struct {
	r          *bufio.Reader
	err        error
	entities   entityResolver
	stack      []string
	buf        []byte
	opts       Options
	offset     int64
	line       int
	column     int
	rootSeen   bool
	rootClosed bool
	started    bool
}

// NewDecoder creates a new markup decoder for the reader.
func NewDecoder(r io.Reader, opts ...Options) *Decoder {
	dec := &Decoder{}
	dec.Reset(r, opts...)
	return dec
}

// Reset prepares the decoder for reading from r with new options.
func (d *Decoder) Reset(r io.Reader, opts ...Options) {
	if d == nil {
		return
	}
	d.opts = JoinOptions(opts...)
	d.entities = entityResolver{custom: d.opts.entityMap}
	d.stack = d.stack[:0]
	d.buf = d.buf[:0]
	d.offset = 0
	d.line = 1
	d.column = 1
	d.rootSeen = false
	d.rootClosed = false
	d.started = false
	d.err = nil
	if r == nil {
		d.r = nil
		d.err = errNilReader
		return
	}
	if br, ok := r.(*bufio.Reader); ok {
		d.r = br
		return
	}
	if d.r == nil {
		d.r = bufio.NewReaderSize(r, defaultBufferSize)
		return
	}
	d.r.Reset(r)
}

// Next returns the next token. It returns io.EOF once the root element has
// been closed and the remaining input is exhausted.
// After an error every further call returns the same error.
func (d *Decoder) Next() (Token, error) {
	if d == nil {
		return Token{}, errNilReader
	}
	if d.err != nil {
		return Token{}, d.err
	}
	tok, err := d.next()
	if err != nil {
		d.err = err
	}
	return tok, err
}

// Depth reports the number of open elements.
func (d *Decoder) Depth() int {
	if d == nil {
		return 0
	}
	return len(d.stack)
}

// RootSeen reports whether a root start element has been read.
func (d *Decoder) RootSeen() bool {
	return d != nil && d.rootSeen
}

// InputPos returns the 1-based line and column of the next unread byte.
func (d *Decoder) InputPos() (line, column int) {
	if d == nil {
		return 0, 0
	}
	return d.line, d.column
}

// InputOffset returns the number of bytes consumed.
func (d *Decoder) InputOffset() int64 {
	if d == nil {
		return 0
	}
	return d.offset
}

func (d *Decoder) next() (Token, error) {
	if !d.started {
		d.started = true
		if prefix, err := d.r.Peek(len(bomBytes)); err == nil && bytes.Equal(prefix, bomBytes) {
			if _, err := d.r.Discard(len(bomBytes)); err != nil {
				return Token{}, err
			}
			d.offset += int64(len(bomBytes))
		}
	}
	for {
		line, column := d.line, d.column
		b, err := d.peekByte()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return Token{}, err
			}
			if len(d.stack) > 0 {
				return Token{}, d.syntaxError(line, column,
					fmt.Errorf("%w: element <%s> not closed", ErrUnexpectedEOF, d.stack[len(d.stack)-1]))
			}
			return Token{}, io.EOF
		}
		if b != '<' {
			tok, err := d.readCharData(line, column)
			if err != nil {
				return Token{}, err
			}
			if len(d.stack) == 0 {
				if !isBlank(tok.Text) {
					return Token{}, d.syntaxError(line, column, errContentOutsideRoot)
				}
				continue
			}
			return tok, nil
		}
		if _, err := d.readByte(); err != nil {
			return Token{}, err
		}
		next, err := d.mustPeekByte(line, column)
		if err != nil {
			return Token{}, err
		}
		switch next {
		case '/':
			return d.readEndElement(line, column)
		case '?':
			tok, err := d.readPI(line, column)
			if err != nil {
				return Token{}, err
			}
			if strings.EqualFold(tok.Name, "xml") {
				continue
			}
			return tok, nil
		case '!':
			return d.readBang(line, column)
		default:
			return d.readStartElement(line, column)
		}
	}
}

func (d *Decoder) readStartElement(line, column int) (Token, error) {
	if d.rootClosed {
		return Token{}, d.syntaxError(line, column, errMultipleRoots)
	}
	name, err := d.readName(line, column)
	if err != nil {
		return Token{}, err
	}
	tok := Token{Kind: KindStartElement, Name: name, Line: line, Column: column}
	for {
		spaced, err := d.skipSpace()
		if err != nil {
			return Token{}, err
		}
		b, err := d.mustPeekByte(line, column)
		if err != nil {
			return Token{}, err
		}
		if b == '>' {
			if _, err := d.readByte(); err != nil {
				return Token{}, err
			}
			break
		}
		if b == '/' {
			if _, err := d.readByte(); err != nil {
				return Token{}, err
			}
			closing, err := d.mustReadByte(line, column)
			if err != nil {
				return Token{}, err
			}
			if closing != '>' {
				return Token{}, d.syntaxError(d.line, d.column, errInvalidToken)
			}
			tok.SelfClosing = true
			break
		}
		if !spaced {
			return Token{}, d.syntaxError(d.line, d.column, errInvalidToken)
		}
		attr, err := d.readAttr()
		if err != nil {
			return Token{}, err
		}
		for _, existing := range tok.Attrs {
			if existing.Name == attr.Name {
				return Token{}, d.syntaxError(attr.Line, attr.Column, fmt.Errorf("%w: %s", errDuplicateAttr, attr.Name))
			}
		}
		if d.opts.maxAttrs > 0 && len(tok.Attrs) >= d.opts.maxAttrs {
			return Token{}, d.syntaxError(attr.Line, attr.Column, errAttrLimit)
		}
		tok.Attrs = append(tok.Attrs, attr)
	}

	d.rootSeen = true
	if tok.SelfClosing {
		if len(d.stack) == 0 {
			d.rootClosed = true
		}
		return tok, nil
	}
	if d.opts.maxDepth > 0 && len(d.stack) >= d.opts.maxDepth {
		return Token{}, d.syntaxError(line, column, ErrDepthLimit)
	}
	d.stack = append(d.stack, name)
	return tok, nil
}

func (d *Decoder) readAttr() (Attr, error) {
	line, column := d.line, d.column
	name, err := d.readName(line, column)
	if err != nil {
		return Attr{}, err
	}
	if _, err := d.skipSpace(); err != nil {
		return Attr{}, err
	}
	eq, err := d.mustReadByte(line, column)
	if err != nil {
		return Attr{}, err
	}
	if eq != '=' {
		return Attr{}, d.syntaxError(d.line, d.column, fmt.Errorf("%w: attribute %s has no value", errInvalidToken, name))
	}
	if _, err := d.skipSpace(); err != nil {
		return Attr{}, err
	}
	quote, err := d.mustReadByte(line, column)
	if err != nil {
		return Attr{}, err
	}
	if quote != '"' && quote != '\'' {
		return Attr{}, d.syntaxError(d.line, d.column, errUnquotedAttr)
	}
	d.buf = d.buf[:0]
	for {
		b, err := d.mustReadByte(line, column)
		if err != nil {
			return Attr{}, err
		}
		if b == quote {
			break
		}
		switch b {
		case '<':
			return Attr{}, d.syntaxError(d.line, d.column, errLtInAttrValue)
		case '\t', '\n', '\r':
			b = ' '
		}
		d.buf = append(d.buf, b)
		if err := d.checkTokenSize(line, column, len(d.buf)); err != nil {
			return Attr{}, err
		}
	}
	value, err := unescape(string(d.buf), &d.entities)
	if err != nil {
		return Attr{}, d.syntaxError(line, column, err)
	}
	return Attr{Name: name, Value: value, Line: line, Column: column}, nil
}

func (d *Decoder) readEndElement(line, column int) (Token, error) {
	if _, err := d.readByte(); err != nil {
		return Token{}, err
	}
	name, err := d.readName(line, column)
	if err != nil {
		return Token{}, err
	}
	if _, err := d.skipSpace(); err != nil {
		return Token{}, err
	}
	closing, err := d.mustReadByte(line, column)
	if err != nil {
		return Token{}, err
	}
	if closing != '>' {
		return Token{}, d.syntaxError(d.line, d.column, errInvalidToken)
	}
	if len(d.stack) == 0 {
		return Token{}, d.syntaxError(line, column, fmt.Errorf("%w: </%s> has no open element", ErrMismatchedEndTag, name))
	}
	top := d.stack[len(d.stack)-1]
	if top != name {
		return Token{}, d.syntaxError(line, column, fmt.Errorf("%w: </%s> closes <%s>", ErrMismatchedEndTag, name, top))
	}
	d.stack = d.stack[:len(d.stack)-1]
	if len(d.stack) == 0 {
		d.rootClosed = true
	}
	return Token{Kind: KindEndElement, Name: name, Line: line, Column: column}, nil
}

func (d *Decoder) readPI(line, column int) (Token, error) {
	if _, err := d.readByte(); err != nil {
		return Token{}, err
	}
	target, err := d.readName(line, column)
	if err != nil {
		return Token{}, err
	}
	body, err := d.readUntil(line, column, "?>")
	if err != nil {
		return Token{}, err
	}
	return Token{Kind: KindPI, Name: target, Text: strings.TrimLeft(body, " \t\r\n"), Line: line, Column: column}, nil
}

func (d *Decoder) readBang(line, column int) (Token, error) {
	if _, err := d.readByte(); err != nil {
		return Token{}, err
	}
	if d.hasPrefix("--") {
		if err := d.discard(2); err != nil {
			return Token{}, err
		}
		body, err := d.readUntil(line, column, "-->")
		if err != nil {
			return Token{}, err
		}
		if strings.Contains(body, "--") || strings.HasSuffix(body, "-") {
			return Token{}, d.syntaxError(line, column, errInvalidComment)
		}
		return Token{Kind: KindComment, Text: body, Line: line, Column: column}, nil
	}
	if d.hasPrefix("[CDATA[") {
		if len(d.stack) == 0 {
			return Token{}, d.syntaxError(line, column, errCDATAOutsideRoot)
		}
		if err := d.discard(len("[CDATA[")); err != nil {
			return Token{}, err
		}
		body, err := d.readUntil(line, column, "]]>")
		if err != nil {
			return Token{}, err
		}
		return Token{Kind: KindCDATA, Text: body, Line: line, Column: column}, nil
	}
	body, err := d.readDirective(line, column)
	if err != nil {
		return Token{}, err
	}
	return Token{Kind: KindDirective, Text: body, Line: line, Column: column}, nil
}

// readDirective reads a <!...> declaration, honoring quoted sections and
// bracketed internal subsets.
func (d *Decoder) readDirective(line, column int) (string, error) {
	d.buf = d.buf[:0]
	depth := 0
	var quote byte
	for {
		b, err := d.mustReadByte(line, column)
		if err != nil {
			return "", err
		}
		switch {
		case quote != 0:
			if b == quote {
				quote = 0
			}
		case b == '"' || b == '\'':
			quote = b
		case b == '[':
			depth++
		case b == ']':
			depth--
		case b == '>' && depth <= 0:
			return string(d.buf), nil
		}
		d.buf = append(d.buf, b)
		if err := d.checkTokenSize(line, column, len(d.buf)); err != nil {
			return "", err
		}
	}
}

func (d *Decoder) readCharData(line, column int) (Token, error) {
	d.buf = d.buf[:0]
	for {
		b, err := d.peekByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return Token{}, err
		}
		if b == '<' {
			break
		}
		if _, err := d.readByte(); err != nil {
			return Token{}, err
		}
		d.buf = append(d.buf, b)
		if err := d.checkTokenSize(line, column, len(d.buf)); err != nil {
			return Token{}, err
		}
	}
	text, err := unescape(string(d.buf), &d.entities)
	if err != nil {
		return Token{}, d.syntaxError(line, column, err)
	}
	return Token{Kind: KindCharData, Text: text, Line: line, Column: column}, nil
}

func (d *Decoder) readName(line, column int) (string, error) {
	b, err := d.mustPeekByte(line, column)
	if err != nil {
		return "", err
	}
	if !isNameStartByte(b) {
		return "", d.syntaxError(d.line, d.column, errInvalidName)
	}
	d.buf = d.buf[:0]
	for {
		b, err := d.mustPeekByte(line, column)
		if err != nil {
			return "", err
		}
		if !isNameByte(b) {
			break
		}
		if _, err := d.readByte(); err != nil {
			return "", err
		}
		d.buf = append(d.buf, b)
		if err := d.checkTokenSize(line, column, len(d.buf)); err != nil {
			return "", err
		}
	}
	return string(d.buf), nil
}

// readUntil consumes input up to and including delim and returns the text before it.
func (d *Decoder) readUntil(line, column int, delim string) (string, error) {
	d.buf = d.buf[:0]
	for {
		b, err := d.mustReadByte(line, column)
		if err != nil {
			return "", err
		}
		d.buf = append(d.buf, b)
		if bytes.HasSuffix(d.buf, []byte(delim)) {
			return string(d.buf[:len(d.buf)-len(delim)]), nil
		}
		if err := d.checkTokenSize(line, column, len(d.buf)); err != nil {
			return "", err
		}
	}
}

func (d *Decoder) skipSpace() (bool, error) {
	skipped := false
	for {
		b, err := d.peekByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return skipped, nil
			}
			return skipped, err
		}
		if !isSpace(b) {
			return skipped, nil
		}
		if _, err := d.readByte(); err != nil {
			return skipped, err
		}
		skipped = true
	}
}

func (d *Decoder) hasPrefix(prefix string) bool {
	peek, err := d.r.Peek(len(prefix))
	return err == nil && string(peek) == prefix
}

func (d *Decoder) discard(n int) error {
	for range n {
		if _, err := d.readByte(); err != nil {
			return err
		}
	}
	return nil
}

func (d *Decoder) peekByte() (byte, error) {
	peek, err := d.r.Peek(1)
	if err != nil {
		return 0, err
	}
	return peek[0], nil
}

func (d *Decoder) readByte() (byte, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		return 0, err
	}
	d.offset++
	if b == '\n' {
		d.line++
		d.column = 1
	} else {
		d.column++
	}
	return b, nil
}

// mustPeekByte is peekByte inside markup, where EOF is a syntax error.
func (d *Decoder) mustPeekByte(line, column int) (byte, error) {
	b, err := d.peekByte()
	if err != nil {
		return 0, d.eofError(line, column, err)
	}
	return b, nil
}

// mustReadByte is readByte inside markup, where EOF is a syntax error.
func (d *Decoder) mustReadByte(line, column int) (byte, error) {
	b, err := d.readByte()
	if err != nil {
		return 0, d.eofError(line, column, err)
	}
	return b, nil
}

func (d *Decoder) eofError(line, column int, err error) error {
	if errors.Is(err, io.EOF) {
		return d.syntaxError(line, column, ErrUnexpectedEOF)
	}
	return err
}

func (d *Decoder) checkTokenSize(line, column, size int) error {
	if d.opts.maxTokenSize > 0 && size > d.opts.maxTokenSize {
		return d.syntaxError(line, column, errTokenTooLarge)
	}
	return nil
}

func (d *Decoder) syntaxError(line, column int, err error) error {
	return &SyntaxError{Offset: d.offset, Line: line, Column: column, Err: err}
}

func isBlank(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isSpace(s[i]) {
			return false
		}
	}
	return true
}
