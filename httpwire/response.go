package httpwire

import (
	"fmt"

	"github.com/irislabs/irisparse/internal/metrics"
)

// Response is a parsed HTTP/1.x response head. Reason and the header
// fields are views into the caller's input buffer.
type Response struct {
	StatusCode   int
	Reason       []byte
	VersionMinor int

	// HeaderEnd is the offset of the first body byte.
	HeaderEnd int

	// ContentLength is the resolved body length, -1 when no usable
	// Content-Length header is present or chunked framing overrides it.
	ContentLength int64
	Chunked       bool

	Headers []Header
}

// HasBody reports whether this status code permits a body at all.
// Informational responses, 204, and 304 never carry one regardless of any
// framing headers.
func (r *Response) HasBody() bool {
	return r.StatusCode >= 200 && r.StatusCode != 204 && r.StatusCode != 304
}

// HasFraming reports whether the head declares how its body is delimited.
// A bodyless response with no framing reads until connection close.
func (r *Response) HasFraming() bool {
	return r.Chunked || r.ContentLength >= 0
}

// ShouldClose reports whether the connection must close after this
// exchange.
func (r *Response) ShouldClose() bool {
	return shouldClose(r.Headers, r.VersionMinor)
}

// HeaderValue returns the value of the first header matching name
// case-insensitively, or nil when absent.
func (r *Response) HeaderValue(name string) []byte {
	return headerValue(r.Headers, name)
}

// ParseResponse parses a response head from raw bytes. Error semantics
// match ParseRequest: ErrIncomplete for a short buffer, ErrInvalid for a
// grammar violation or framing conflict.
func ParseResponse(data []byte) (*Response, error) {
	resp, err := parseResponse(data)
	metrics.HTTPParses.WithLabelValues("response", outcomeLabel(err)).Inc()
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func parseResponse(data []byte) (*Response, error) {
	lx := &lexer{data: data}
	code, reason, minor, err := lx.statusLine()
	if err != nil {
		return nil, fmt.Errorf("status line: %w", err)
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
		length = -1
	}
	return &Response{
		StatusCode:    code,
		Reason:        reason,
		VersionMinor:  minor,
		HeaderEnd:     end,
		ContentLength: length,
		Chunked:       chunked,
		Headers:       headers,
	}, nil
}
