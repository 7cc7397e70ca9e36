// Package httpwire parses HTTP/1.x request and response heads from raw,
// possibly partial byte buffers.
//
// The parser makes a security decision, not just a syntactic one: the
// framing rules in this package resolve Content-Length / Transfer-Encoding
// ambiguity so that two inspection points can never disagree about where a
// message body ends.
package httpwire

import (
	"errors"
	"fmt"
)

// maxHeaders bounds the header block; anything past it is hostile.
const maxHeaders = 64

var (
	// ErrIncomplete means the buffer does not yet contain a full header
	// block. More bytes may turn the same prefix into a valid message.
	ErrIncomplete = errors.New("httpwire: incomplete message")

	// ErrInvalid means the bytes can never become a valid message:
	// a grammar violation or a framing conflict.
	ErrInvalid = errors.New("httpwire: invalid message")
)

// Header is one name/value pair. Both fields are views into the caller's
// input buffer.
type Header struct {
	Name  []byte
	Value []byte
}

// lexer is a cursor over one immutable input buffer.
type lexer struct {
	data []byte
	pos  int
}

// isTokenChar reports whether c is an RFC 7230 tchar.
func isTokenChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	switch c {
	case '!', '#', '$', '%', '&', '\'', '*', '+', '-', '.', '^', '_', '`', '|', '~':
		return true
	}
	return false
}

// isFieldChar reports whether c may appear in a field value or reason
// phrase: HTAB, printable ASCII, or obs-text.
func isFieldChar(c byte) bool {
	return c == '\t' || (c >= 0x20 && c != 0x7F)
}

// token reads one or more tchars terminated by a single space and leaves
// the cursor past the space.
func (lx *lexer) token() ([]byte, error) {
	start := lx.pos
	for {
		if lx.pos >= len(lx.data) {
			return nil, fmt.Errorf("%w: unterminated token", ErrIncomplete)
		}
		c := lx.data[lx.pos]
		if c == ' ' {
			if lx.pos == start {
				return nil, fmt.Errorf("%w: empty token", ErrInvalid)
			}
			tok := lx.data[start:lx.pos]
			lx.pos++
			return tok, nil
		}
		if !isTokenChar(c) {
			return nil, fmt.Errorf("%w: byte %#x in token", ErrInvalid, c)
		}
		lx.pos++
	}
}

// target reads the request target up to a single space. The target is
// opaque: no normalization, any visible byte allowed.
func (lx *lexer) target() ([]byte, error) {
	start := lx.pos
	for {
		if lx.pos >= len(lx.data) {
			return nil, fmt.Errorf("%w: unterminated request target", ErrIncomplete)
		}
		c := lx.data[lx.pos]
		if c == ' ' {
			if lx.pos == start {
				return nil, fmt.Errorf("%w: empty request target", ErrInvalid)
			}
			tgt := lx.data[start:lx.pos]
			lx.pos++
			return tgt, nil
		}
		if c <= 0x20 || c == 0x7F {
			return nil, fmt.Errorf("%w: byte %#x in request target", ErrInvalid, c)
		}
		lx.pos++
	}
}

// version matches "HTTP/1." followed by the minor digit 0 or 1.
func (lx *lexer) version() (int, error) {
	const prefix = "HTTP/1."
	for i := 0; i < len(prefix); i++ {
		if lx.pos+i >= len(lx.data) {
			return 0, fmt.Errorf("%w: truncated protocol version", ErrIncomplete)
		}
		if lx.data[lx.pos+i] != prefix[i] {
			return 0, fmt.Errorf("%w: malformed protocol version", ErrInvalid)
		}
	}
	lx.pos += len(prefix)
	if lx.pos >= len(lx.data) {
		return 0, fmt.Errorf("%w: truncated protocol version", ErrIncomplete)
	}
	switch lx.data[lx.pos] {
	case '0':
		lx.pos++
		return 0, nil
	case '1':
		lx.pos++
		return 1, nil
	}
	return 0, fmt.Errorf("%w: unsupported protocol minor version", ErrInvalid)
}

func (lx *lexer) crlf() error {
	if lx.pos >= len(lx.data) {
		return fmt.Errorf("%w: missing line terminator", ErrIncomplete)
	}
	if lx.data[lx.pos] != '\r' {
		return fmt.Errorf("%w: expected CR, got %#x", ErrInvalid, lx.data[lx.pos])
	}
	if lx.pos+1 >= len(lx.data) {
		return fmt.Errorf("%w: missing line terminator", ErrIncomplete)
	}
	if lx.data[lx.pos+1] != '\n' {
		return fmt.Errorf("%w: expected LF, got %#x", ErrInvalid, lx.data[lx.pos+1])
	}
	lx.pos += 2
	return nil
}

// requestLine reads "METHOD SP target SP HTTP/1.x CRLF".
func (lx *lexer) requestLine() (method, path []byte, minor int, err error) {
	if method, err = lx.token(); err != nil {
		return nil, nil, 0, err
	}
	if path, err = lx.target(); err != nil {
		return nil, nil, 0, err
	}
	if minor, err = lx.version(); err != nil {
		return nil, nil, 0, err
	}
	return method, path, minor, lx.crlf()
}

// statusLine reads "HTTP/1.x SP 3DIGIT [SP reason] CRLF". The reason
// phrase is optional and kept verbatim.
func (lx *lexer) statusLine() (code int, reason []byte, minor int, err error) {
	if minor, err = lx.version(); err != nil {
		return 0, nil, 0, err
	}
	if lx.pos >= len(lx.data) {
		return 0, nil, 0, fmt.Errorf("%w: truncated status line", ErrIncomplete)
	}
	if lx.data[lx.pos] != ' ' {
		return 0, nil, 0, fmt.Errorf("%w: missing space before status code", ErrInvalid)
	}
	lx.pos++
	for i := 0; i < 3; i++ {
		if lx.pos >= len(lx.data) {
			return 0, nil, 0, fmt.Errorf("%w: truncated status code", ErrIncomplete)
		}
		c := lx.data[lx.pos]
		if c < '0' || c > '9' {
			return 0, nil, 0, fmt.Errorf("%w: malformed status code", ErrInvalid)
		}
		code = code*10 + int(c-'0')
		lx.pos++
	}
	if lx.pos >= len(lx.data) {
		return 0, nil, 0, fmt.Errorf("%w: truncated status line", ErrIncomplete)
	}
	switch lx.data[lx.pos] {
	case '\r':
		// status line without a reason phrase
	case ' ':
		lx.pos++
		start := lx.pos
		for {
			if lx.pos >= len(lx.data) {
				return 0, nil, 0, fmt.Errorf("%w: unterminated reason phrase", ErrIncomplete)
			}
			c := lx.data[lx.pos]
			if c == '\r' {
				break
			}
			if !isFieldChar(c) {
				return 0, nil, 0, fmt.Errorf("%w: byte %#x in reason phrase", ErrInvalid, c)
			}
			lx.pos++
		}
		reason = lx.data[start:lx.pos]
	default:
		return 0, nil, 0, fmt.Errorf("%w: malformed status line", ErrInvalid)
	}
	return code, reason, minor, lx.crlf()
}

// headerBlock reads headers until the blank-line terminator and returns
// them together with the offset of the first body byte.
func (lx *lexer) headerBlock() ([]Header, int, error) {
	var headers []Header
	for {
		if lx.pos >= len(lx.data) {
			return nil, 0, fmt.Errorf("%w: missing blank-line terminator", ErrIncomplete)
		}
		if lx.data[lx.pos] == '\r' {
			if err := lx.crlf(); err != nil {
				return nil, 0, err
			}
			return headers, lx.pos, nil
		}
		if len(headers) == maxHeaders {
			return nil, 0, fmt.Errorf("%w: more than %d headers", ErrInvalid, maxHeaders)
		}
		h, err := lx.headerField()
		if err != nil {
			return nil, 0, err
		}
		headers = append(headers, h)
	}
}

// headerField reads "name ':' OWS value OWS CRLF". The value view has its
// surrounding optional whitespace trimmed.
func (lx *lexer) headerField() (Header, error) {
	start := lx.pos
	for {
		if lx.pos >= len(lx.data) {
			return Header{}, fmt.Errorf("%w: unterminated header name", ErrIncomplete)
		}
		c := lx.data[lx.pos]
		if c == ':' {
			break
		}
		if !isTokenChar(c) {
			return Header{}, fmt.Errorf("%w: byte %#x in header name", ErrInvalid, c)
		}
		lx.pos++
	}
	if lx.pos == start {
		return Header{}, fmt.Errorf("%w: empty header name", ErrInvalid)
	}
	name := lx.data[start:lx.pos]
	lx.pos++ // ':'

	for lx.pos < len(lx.data) && (lx.data[lx.pos] == ' ' || lx.data[lx.pos] == '\t') {
		lx.pos++
	}

	vstart := lx.pos
	for {
		if lx.pos >= len(lx.data) {
			return Header{}, fmt.Errorf("%w: unterminated header value", ErrIncomplete)
		}
		c := lx.data[lx.pos]
		if c == '\r' {
			break
		}
		if !isFieldChar(c) {
			return Header{}, fmt.Errorf("%w: byte %#x in header value", ErrInvalid, c)
		}
		lx.pos++
	}
	value := lx.data[vstart:lx.pos]
	for len(value) > 0 && (value[len(value)-1] == ' ' || value[len(value)-1] == '\t') {
		value = value[:len(value)-1]
	}
	if err := lx.crlf(); err != nil {
		return Header{}, err
	}
	return Header{Name: name, Value: value}, nil
}
