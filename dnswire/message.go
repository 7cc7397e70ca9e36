package dnswire

import (
	"encoding/binary"
	"fmt"

	"github.com/irislabs/irisparse/internal/metrics"
)

const (
	headerLen = 12

	// maxSectionCount caps the per-section entry count. A 16-bit count can
	// claim up to 65535 entries over a tiny buffer; capping it keeps the
	// allocation and work proportional to honest traffic.
	maxSectionCount = 256
)

// Message is a decoded DNS message. All fields are freshly allocated by
// Parse and never alias the input buffer.
type Message struct {
	ID                 uint16
	Response           bool
	Opcode             uint8
	Authoritative      bool
	Truncated          bool
	RecursionDesired   bool
	RecursionAvailable bool
	RCode              uint8

	Questions  []Question
	Answers    []Record
	Authority  []Record
	Additional []Record
}

// Question is a single entry of the question section.
type Question struct {
	Name  string
	Type  uint16
	Class uint16
}

// Record is a decoded resource record. RData holds an owned copy of the
// payload bytes; Display is a human-readable rendering computed at parse
// time via FormatRData.
type Record struct {
	Name    string
	Type    uint16
	Class   uint16
	TTL     uint32
	RData   []byte
	Display string
}

// Parse decodes a DNS message from wire format.
//
// The header and the question section are load-bearing: any failure there
// fails the whole parse. The authority and additional sections are
// supplementary and truncate silently on the first internal failure.
func Parse(data []byte) (*Message, error) {
	m, err := parse(data)
	if err != nil {
		metrics.DNSParses.WithLabelValues(metrics.OutcomeMalformed).Inc()
		return nil, err
	}
	metrics.DNSParses.WithLabelValues(metrics.OutcomeOK).Inc()
	return m, nil
}

func parse(data []byte) (*Message, error) {
	if len(data) < headerLen {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the 12-byte header", ErrMalformed, len(data))
	}

	flags := binary.BigEndian.Uint16(data[2:])
	m := &Message{
		ID:                 binary.BigEndian.Uint16(data),
		Response:           flags&0x8000 != 0,
		Opcode:             uint8(flags >> 11 & 0xF),
		Authoritative:      flags&0x0400 != 0,
		Truncated:          flags&0x0200 != 0,
		RecursionDesired:   flags&0x0100 != 0,
		RecursionAvailable: flags&0x0080 != 0,
		RCode:              uint8(flags & 0xF),
	}

	qdcount := int(binary.BigEndian.Uint16(data[4:]))
	ancount := int(binary.BigEndian.Uint16(data[6:]))
	nscount := int(binary.BigEndian.Uint16(data[8:]))
	arcount := int(binary.BigEndian.Uint16(data[10:]))
	for _, count := range []int{qdcount, ancount, nscount, arcount} {
		if count > maxSectionCount {
			return nil, fmt.Errorf("%w: section count %d exceeds %d", ErrMalformed, count, maxSectionCount)
		}
	}

	off := headerLen
	m.Questions = make([]Question, 0, qdcount)
	for i := 0; i < qdcount; i++ {
		name, end, err := DecodeName(data, off)
		if err != nil {
			return nil, err
		}
		off = end
		if off+4 > len(data) {
			return nil, fmt.Errorf("%w: truncated question", ErrMalformed)
		}
		m.Questions = append(m.Questions, Question{
			Name:  name,
			Type:  binary.BigEndian.Uint16(data[off:]),
			Class: binary.BigEndian.Uint16(data[off+2:]),
		})
		off += 4
	}

	m.Answers = make([]Record, 0, ancount)
	for i := 0; i < ancount; i++ {
		rec, end, err := readRecord(data, off)
		if err != nil {
			return nil, err
		}
		off = end
		m.Answers = append(m.Answers, rec)
	}

	m.Authority, off = readSection(data, off, nscount)
	m.Additional, _ = readSection(data, off, arcount)
	return m, nil
}

// readRecord decodes one resource record starting at off and returns the
// record together with the offset of the byte after its rdata.
func readRecord(msg []byte, off int) (Record, int, error) {
	name, pos, err := DecodeName(msg, off)
	if err != nil {
		return Record{}, 0, err
	}
	if pos+10 > len(msg) {
		return Record{}, 0, fmt.Errorf("%w: truncated record header", ErrMalformed)
	}
	rec := Record{
		Name:  name,
		Type:  binary.BigEndian.Uint16(msg[pos:]),
		Class: binary.BigEndian.Uint16(msg[pos+2:]),
		TTL:   binary.BigEndian.Uint32(msg[pos+4:]),
	}
	rdlen := int(binary.BigEndian.Uint16(msg[pos+8:]))
	pos += 10
	if pos+rdlen > len(msg) {
		return Record{}, 0, fmt.Errorf("%w: rdata runs past end of buffer", ErrMalformed)
	}
	rec.RData = append([]byte(nil), msg[pos:pos+rdlen]...)
	rec.Display = FormatRData(rec.Type, rec.RData, msg, pos)
	return rec, pos + rdlen, nil
}

// readSection decodes up to count records, stopping quietly at the first
// failure. Used for the supplementary authority and additional sections.
func readSection(msg []byte, off, count int) ([]Record, int) {
	recs := make([]Record, 0, count)
	for i := 0; i < count; i++ {
		rec, end, err := readRecord(msg, off)
		if err != nil {
			break
		}
		off = end
		recs = append(recs, rec)
	}
	return recs, off
}
