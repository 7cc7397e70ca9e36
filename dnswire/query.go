package dnswire

import (
	"encoding/binary"

	"golang.org/x/net/idna"
)

// ClassIN is the only class emitted by the query builder.
const ClassIN uint16 = 1

const flagRecursionDesired uint16 = 0x0100

// BuildQuery serializes a minimal single-question query: a 12-byte header
// with the given id, the encoded question name, and a class fixed to IN.
// No additional sections and no EDNS.
func BuildQuery(domain string, qtype, id uint16, recursionDesired bool) []byte {
	buf := make([]byte, 0, headerLen+len(domain)+6)
	buf = binary.BigEndian.AppendUint16(buf, id)
	var flags uint16
	if recursionDesired {
		flags = flagRecursionDesired
	}
	buf = binary.BigEndian.AppendUint16(buf, flags)
	buf = binary.BigEndian.AppendUint16(buf, 1) // QDCOUNT
	buf = append(buf, 0, 0, 0, 0, 0, 0)         // AN/NS/AR = 0
	buf = append(buf, EncodeName(domain)...)
	buf = binary.BigEndian.AppendUint16(buf, qtype)
	buf = binary.BigEndian.AppendUint16(buf, ClassIN)
	return buf
}

// BuildQueryIDNA is BuildQuery with the domain IDNA-encoded first, so
// internationalized names are queried in their punycode form.
func BuildQueryIDNA(domain string, qtype, id uint16, recursionDesired bool) ([]byte, error) {
	punyName, err := idna.Lookup.ToASCII(domain)
	if err != nil {
		return nil, err
	}
	return BuildQuery(punyName, qtype, id, recursionDesired), nil
}
