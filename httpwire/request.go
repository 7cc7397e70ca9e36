package httpwire

import (
	"errors"
	"fmt"

	"github.com/irislabs/irisparse/internal/metrics"
)

// Request is a parsed HTTP/1.x request head. Method, Path, and the header
// fields are views into the caller's input buffer and stay valid exactly
// as long as the caller keeps that buffer alive and unmodified.
type Request struct {
	Method       []byte
	Path         []byte
	VersionMinor int

	// HeaderEnd is the offset of the first body byte. The caller slices
	// the body out of its own buffer.
	HeaderEnd int

	// ContentLength is the resolved body length, -1 when no usable
	// Content-Length header is present or chunked framing overrides it.
	ContentLength int64
	Chunked       bool

	Headers []Header
}

// HasFraming reports whether the head declares how its body is delimited.
func (r *Request) HasFraming() bool {
	return r.Chunked || r.ContentLength >= 0
}

// ShouldClose reports whether the connection must close after this
// exchange.
func (r *Request) ShouldClose() bool {
	return shouldClose(r.Headers, r.VersionMinor)
}

// HeaderValue returns the value of the first header matching name
// case-insensitively, or nil when absent.
func (r *Request) HeaderValue(name string) []byte {
	return headerValue(r.Headers, name)
}

// ParseRequest parses a request head from raw bytes. ErrIncomplete means
// the buffer does not yet hold the whole header block; ErrInvalid means it
// never will, because of a grammar violation or a framing conflict.
func ParseRequest(data []byte) (*Request, error) {
	req, err := parseRequest(data)
	metrics.HTTPParses.WithLabelValues("request", outcomeLabel(err)).Inc()
	if err != nil {
		return nil, err
	}
	return req, nil
}

func parseRequest(data []byte) (*Request, error) {
	lx := &lexer{data: data}
	method, path, minor, err := lx.requestLine()
	if err != nil {
		return nil, fmt.Errorf("request line: %w", err)
	}
	headers, end, err := lx.headerBlock()
	if err != nil {
		return nil, fmt.Errorf("header block: %w", err)
	}
	length, err := contentLength(headers)
	if err != nil {
		return nil, err
	}
	chunked := isChunked(headers)
	if chunked {
		// Chunked wins, but only after the conflict check: two distinct
		// Content-Length values reject the message even when it is also
		// chunked.
		length = -1
	}
	return &Request{
		Method:        method,
		Path:          path,
		VersionMinor:  minor,
		HeaderEnd:     end,
		ContentLength: length,
		Chunked:       chunked,
		Headers:       headers,
	}, nil
}

func headerValue(headers []Header, name string) []byte {
	for _, h := range headers {
		if equalFoldASCII(h.Name, name) {
			return h.Value
		}
	}
	return nil
}

func equalFoldASCII(b []byte, s string) bool {
	if len(b) != len(s) {
		return false
	}
	for i := 0; i < len(b); i++ {
		x, y := b[i], s[i]
		if 'A' <= x && x <= 'Z' {
			x += 'a' - 'A'
		}
		if 'A' <= y && y <= 'Z' {
			y += 'a' - 'A'
		}
		if x != y {
			return false
		}
	}
	return true
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, ErrIncomplete):
		return metrics.OutcomeIncomplete
	default:
		return metrics.OutcomeInvalid
	}
}
