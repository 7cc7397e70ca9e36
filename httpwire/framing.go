package httpwire

import (
	"bytes"
	"fmt"
	"strconv"
)

// maxContentLength caps any accepted Content-Length at 100 MiB. Larger
// declared bodies are treated as an attack on the inspection point.
const maxContentLength = 100 << 20

var (
	contentLengthName    = []byte("Content-Length")
	transferEncodingName = []byte("Transfer-Encoding")
	connectionName       = []byte("Connection")
	chunkedToken         = []byte("chunked")
	closeToken           = []byte("close")
	keepAliveToken       = []byte("keep-alive")
)

// contentLength resolves the declared Content-Length across the whole
// header block, before any chunked override. Values that do not parse as a
// non-negative integer are ignored. Two headers carrying distinct values
// reject the message outright: disagreeing lengths are the classic request
// smuggling primitive.
func contentLength(headers []Header) (int64, error) {
	length := int64(-1)
	for _, h := range headers {
		if !bytes.EqualFold(h.Name, contentLengthName) {
			continue
		}
		v, err := strconv.ParseInt(string(h.Value), 10, 64)
		if err != nil || v < 0 {
			continue
		}
		if v > maxContentLength {
			return 0, fmt.Errorf("%w: content-length %d exceeds %d", ErrInvalid, v, maxContentLength)
		}
		if length >= 0 && v != length {
			return 0, fmt.Errorf("%w: conflicting content-length values", ErrInvalid)
		}
		length = v
	}
	return length, nil
}

// isChunked reports whether any Transfer-Encoding header mentions the
// chunked coding. A folded substring match is deliberate: the full
// transfer-coding list grammar buys nothing for framing decisions.
func isChunked(headers []Header) bool {
	for _, h := range headers {
		if bytes.EqualFold(h.Name, transferEncodingName) && containsFold(h.Value, chunkedToken) {
			return true
		}
	}
	return false
}

func containsFold(haystack, needle []byte) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if bytes.EqualFold(haystack[i:i+len(needle)], needle) {
			return true
		}
	}
	return false
}

// shouldClose decides connection persistence from the first Connection
// header: an explicit close or keep-alive wins, anything else falls back
// to the version default, where HTTP/1.0 closes and HTTP/1.1 persists.
func shouldClose(headers []Header, versionMinor int) bool {
	for _, h := range headers {
		if !bytes.EqualFold(h.Name, connectionName) {
			continue
		}
		if bytes.EqualFold(h.Value, closeToken) {
			return true
		}
		if bytes.EqualFold(h.Value, keepAliveToken) {
			return false
		}
		break
	}
	return versionMinor == 0
}
