// Package dnswire decodes and encodes DNS messages in RFC 1035 wire format.
//
// The decoder is written for adversarial input: every read is bounds-checked
// against the message buffer, compression pointers are followed iteratively
// with a hard jump limit, and hostile section counts are rejected before any
// allocation is sized from them.
package dnswire

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed is wrapped by every decoding error in this package.
var ErrMalformed = errors.New("dnswire: malformed message")

const (
	// maxLabelLen is the RFC 1035 limit for a single label.
	maxLabelLen = 63

	// maxJumps bounds compression-pointer redirections per name. Pointer
	// cycles and pointer-amplification chains hit this limit instead of
	// looping.
	maxJumps = 10
)

// DecodeName reads a domain name from msg starting at off, following
// compression pointers within the same buffer.
//
// The returned offset is the position immediately after the first
// label-or-pointer run as originally encountered: bytes visited after a
// jump never advance the caller's section cursor. A name with no labels
// decodes as ".".
func DecodeName(msg []byte, off int) (string, int, error) {
	var labels []string
	pos := off
	end := 0
	jumped := false
	jumps := 0

	for {
		if pos >= len(msg) {
			return "", 0, fmt.Errorf("%w: name runs past end of buffer", ErrMalformed)
		}
		length := int(msg[pos])

		// End of labels
		if length == 0 {
			if !jumped {
				end = pos + 1
			}
			break
		}

		// Compression pointer (11xxxxxx)
		if length&0xC0 == 0xC0 {
			if pos+1 >= len(msg) {
				return "", 0, fmt.Errorf("%w: truncated compression pointer", ErrMalformed)
			}
			if !jumped {
				end = pos + 2
			}
			pos = (length&0x3F)<<8 | int(msg[pos+1])
			jumped = true
			jumps++
			if jumps > maxJumps {
				return "", 0, fmt.Errorf("%w: limit of pointer jumps exceeded", ErrMalformed)
			}
			continue
		}

		if length > maxLabelLen {
			return "", 0, fmt.Errorf("%w: label length %d exceeds %d", ErrMalformed, length, maxLabelLen)
		}
		pos++
		if pos+length > len(msg) {
			return "", 0, fmt.Errorf("%w: label runs past end of buffer", ErrMalformed)
		}
		labels = append(labels, string(msg[pos:pos+length]))
		pos += length
	}

	if len(labels) == 0 {
		return ".", end, nil
	}
	return strings.Join(labels, "."), end, nil
}

// EncodeName serializes a dotted name as length-prefixed labels with a zero
// terminator. Empty labels are dropped, oversized labels are truncated to 63
// bytes, and compression is never produced.
func EncodeName(name string) []byte {
	out := make([]byte, 0, len(name)+2)
	for _, label := range strings.Split(name, ".") {
		if label == "" {
			continue
		}
		if len(label) > maxLabelLen {
			label = label[:maxLabelLen]
		}
		out = append(out, byte(len(label)))
		out = append(out, label...)
	}
	return append(out, 0)
}
