// Package derenc builds ASN.1 DER primitives as raw byte slices.
//
// It is an encoder only: certificate and key tooling that inspects traffic
// needs to synthesize DER structures, never to parse them. Every builder
// returns a complete TLV ready to be nested inside another one.
package derenc

import (
	"encoding/binary"
	"time"
)

// Universal class tags used by the builders.
const (
	tagBoolean         = 0x01
	tagInteger         = 0x02
	tagBitString       = 0x03
	tagOctetString     = 0x04
	tagOID             = 0x06
	tagUTF8String      = 0x0C
	tagPrintableString = 0x13
	tagUTCTime         = 0x17
	tagGeneralizedTime = 0x18
	tagSequence        = 0x30
	tagSet             = 0x31
)

// encodeLength emits the definite-length octets: short form below 128,
// then the one- and two-byte long forms. Two bytes cover every structure
// this package is asked to build.
func encodeLength(n int) []byte {
	switch {
	case n < 128:
		return []byte{byte(n)}
	case n < 256:
		return []byte{0x81, byte(n)}
	default:
		return []byte{0x82, byte(n >> 8), byte(n)}
	}
}

// TLV wraps content in a tag-length-value triple.
func TLV(tag byte, content []byte) []byte {
	out := make([]byte, 0, 1+3+len(content))
	out = append(out, tag)
	out = append(out, encodeLength(len(content))...)
	return append(out, content...)
}

// Integer encodes a signed 64-bit value as INTEGER in minimal two's
// complement form.
func Integer(value int64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(value))
	start := 0
	if value >= 0 {
		for start < 7 && buf[start] == 0x00 && buf[start+1]&0x80 == 0 {
			start++
		}
	} else {
		for start < 7 && buf[start] == 0xFF && buf[start+1]&0x80 != 0 {
			start++
		}
	}
	return TLV(tagInteger, buf[start:])
}

// IntegerBytes encodes a big-endian magnitude as INTEGER, prefixing a zero
// octet when the high bit is set so the value stays positive. Returns nil
// for empty input.
func IntegerBytes(data []byte) []byte {
	if len(data) == 0 {
		return nil
	}
	content := data
	if data[0]&0x80 != 0 {
		content = append([]byte{0x00}, data...)
	}
	return TLV(tagInteger, content)
}

// Sequence wraps already-encoded elements in a SEQUENCE.
func Sequence(content []byte) []byte {
	return TLV(tagSequence, content)
}

// Set wraps already-encoded elements in a SET.
func Set(content []byte) []byte {
	return TLV(tagSet, content)
}

// BitString encodes data as a BIT STRING with zero unused bits.
func BitString(data []byte) []byte {
	content := make([]byte, 0, 1+len(data))
	content = append(content, 0x00)
	return TLV(tagBitString, append(content, data...))
}

// OctetString encodes data as an OCTET STRING.
func OctetString(data []byte) []byte {
	return TLV(tagOctetString, data)
}

// Boolean encodes the DER canonical BOOLEAN, 0xFF for true.
func Boolean(value bool) []byte {
	b := byte(0x00)
	if value {
		b = 0xFF
	}
	return []byte{tagBoolean, 0x01, b}
}

// OID encodes an OBJECT IDENTIFIER. The first two components fold into a
// single octet; the rest use base-128 with continuation bits. Returns nil
// when fewer than two components are given.
func OID(components ...uint32) []byte {
	if len(components) < 2 {
		return nil
	}
	content := []byte{byte(components[0]*40 + components[1])}
	for _, v := range components[2:] {
		content = appendBase128(content, v)
	}
	return TLV(tagOID, content)
}

func appendBase128(out []byte, v uint32) []byte {
	if v < 128 {
		return append(out, byte(v))
	}
	var tmp [5]byte
	n := 0
	for v > 0 {
		tmp[n] = byte(v & 0x7F)
		v >>= 7
		n++
	}
	for i := n - 1; i > 0; i-- {
		out = append(out, tmp[i]|0x80)
	}
	return append(out, tmp[0])
}

// UTF8String encodes s as a UTF8String.
func UTF8String(s string) []byte {
	return TLV(tagUTF8String, []byte(s))
}

// PrintableString encodes s as a PrintableString. The caller is trusted to
// stay within the printable repertoire.
func PrintableString(s string) []byte {
	return TLV(tagPrintableString, []byte(s))
}

// ExplicitTag wraps content in a context-specific constructed tag [n].
func ExplicitTag(n byte, content []byte) []byte {
	return TLV(0xA0|n, content)
}

// ImplicitTag wraps content in a context-specific primitive tag [n].
func ImplicitTag(n byte, content []byte) []byte {
	return TLV(0x80|n, content)
}

// UTCTime encodes t as a UTCTime with a two-digit year.
func UTCTime(t time.Time) []byte {
	return TLV(tagUTCTime, []byte(t.UTC().Format("060102150405Z")))
}

// GeneralizedTime encodes t as a GeneralizedTime with a four-digit year.
func GeneralizedTime(t time.Time) []byte {
	return TLV(tagGeneralizedTime, []byte(t.UTC().Format("20060102150405Z")))
}
