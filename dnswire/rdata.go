package dnswire

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Record types with a dedicated display rendering.
const (
	TypeA     uint16 = 1
	TypeNS    uint16 = 2
	TypeCNAME uint16 = 5
	TypePTR   uint16 = 12
	TypeMX    uint16 = 15
	TypeTXT   uint16 = 16
	TypeAAAA  uint16 = 28
	TypeSRV   uint16 = 33
	TypeSVCB  uint16 = 64
	TypeHTTPS uint16 = 65
)

// FormatRData renders record payload bytes as display text. It never fails:
// unknown types, and known types with the wrong byte length, fall back to a
// lowercase hex dump of the raw rdata.
//
// msg is the whole message buffer and start the rdata offset within it;
// name-bearing types need both because rdata-internal names may use
// compression pointers into the outer message.
func FormatRData(rtype uint16, rdata, msg []byte, start int) string {
	switch {
	case rtype == TypeA && len(rdata) == 4:
		return fmt.Sprintf("%d.%d.%d.%d", rdata[0], rdata[1], rdata[2], rdata[3])

	case rtype == TypeAAAA && len(rdata) == 16:
		groups := make([]string, 8)
		for i := range groups {
			groups[i] = strconv.FormatUint(uint64(binary.BigEndian.Uint16(rdata[i*2:])), 16)
		}
		return strings.Join(groups, ":")

	case rtype == TypeNS || rtype == TypeCNAME || rtype == TypePTR:
		if name, _, err := DecodeName(msg, start); err == nil {
			return name
		}

	case rtype == TypeMX && len(rdata) >= 3:
		priority := binary.BigEndian.Uint16(rdata)
		name, _, _ := DecodeName(msg, start+2)
		return fmt.Sprintf("%d %s", priority, name)

	case rtype == TypeTXT:
		return formatTXT(rdata)

	case rtype == TypeSRV && len(rdata) >= 7:
		priority := binary.BigEndian.Uint16(rdata)
		weight := binary.BigEndian.Uint16(rdata[2:])
		port := binary.BigEndian.Uint16(rdata[4:])
		target, _, _ := DecodeName(msg, start+6)
		return fmt.Sprintf("%d %d %d %s", priority, weight, port, target)

	case (rtype == TypeSVCB || rtype == TypeHTTPS) && len(rdata) >= 3:
		priority := binary.BigEndian.Uint16(rdata)
		target, _, _ := DecodeName(msg, start+2)
		// Priority 0 is SVCB alias mode.
		if priority == 0 {
			return "AliasMode " + target
		}
		return fmt.Sprintf("%d %s", priority, target)
	}
	return hex.EncodeToString(rdata)
}

// formatTXT concatenates the length-prefixed character strings of a TXT
// payload, skipping segments that are not valid UTF-8.
func formatTXT(rdata []byte) string {
	var out strings.Builder
	pos := 0
	for pos < len(rdata) {
		length := int(rdata[pos])
		pos++
		if pos+length > len(rdata) {
			break
		}
		if segment := rdata[pos : pos+length]; utf8.Valid(segment) {
			out.Write(segment)
		}
		pos += length
	}
	return out.String()
}
