// Package wire implements structural encode/decode of IntelliVue Data Export
// protocol data units: nested fixed-field records, length-prefixed variable
// fields, counted+length lists, and tagged dispatch where a payload's
// structural type is selected by a preceding identifier.
//
// Every record type exposes decode(buffer) -> (record, remaining bytes, err)
// and an Encode() []byte method. Trailing bytes after a fully parsed record
// are returned to the caller rather than consumed; callers build
// the PDU tree by chaining successive decodes.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Decode error taxonomy. Wrapped with fmt.Errorf("wire: <op>: %w", Err...)
// at each call site so callers can both errors.Is against the sentinel and
// read a human-readable location in the log line.
var (
	ErrTruncatedPdu    = errors.New("truncated pdu")
	ErrBadLength       = errors.New("bad length")
	ErrUnknownTag      = errors.New("unknown tag")
	ErrDecodeOutOfRange = errors.New("decode out of range")
)

// cursor is an internal read helper over a byte buffer. It never panics on
// underrun; every read method returns ErrTruncatedPdu instead, so a decoder
// built on top of it can return a clean error instead of recovering from a
// slice-bounds panic.
type cursor struct {
	buf []byte
	pos int
}

func newCursor(buf []byte) *cursor {
	return &cursor{buf: buf}
}

func (c *cursor) remaining() []byte {
	return c.buf[c.pos:]
}

func (c *cursor) need(n int) error {
	if len(c.buf)-c.pos < n {
		return fmt.Errorf("wire: need %d bytes, have %d: %w", n, len(c.buf)-c.pos, ErrTruncatedPdu)
	}
	return nil
}

func (c *cursor) u8() (byte, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}
	v := c.buf[c.pos]
	c.pos++
	return v, nil
}

func (c *cursor) u16() (uint16, error) {
	if err := c.need(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(c.buf[c.pos:])
	c.pos += 2
	return v, nil
}

func (c *cursor) u32() (uint32, error) {
	if err := c.need(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(c.buf[c.pos:])
	c.pos += 4
	return v, nil
}

func (c *cursor) bytes(n int) ([]byte, error) {
	if err := c.need(n); err != nil {
		return nil, err
	}
	v := c.buf[c.pos : c.pos+n]
	c.pos += n
	return v, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Fixed-width primitive helpers shared by record encoders
// ─────────────────────────────────────────────────────────────────────────────

func putU16(dst []byte, v uint16) []byte {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	return append(dst, b[:]...)
}

func putU32(dst []byte, v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return append(dst, b[:]...)
}

// MAC is a 6-byte hardware address, the canonical identity of a monitor.
type MAC [6]byte

func (m MAC) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", m[0], m[1], m[2], m[3], m[4], m[5])
}

func decodeMAC(c *cursor) (MAC, error) {
	b, err := c.bytes(6)
	if err != nil {
		return MAC{}, fmt.Errorf("wire: decode MAC: %w", err)
	}
	var m MAC
	copy(m[:], b)
	return m, nil
}

// IPv4 is a dotted-quad address stored as a 4-byte wire value.
type IPv4 [4]byte

func (ip IPv4) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", ip[0], ip[1], ip[2], ip[3])
}

func decodeIPv4(c *cursor) (IPv4, error) {
	b, err := c.bytes(4)
	if err != nil {
		return IPv4{}, fmt.Errorf("wire: decode IPv4: %w", err)
	}
	var ip IPv4
	copy(ip[:], b)
	return ip, nil
}

// AbsoluteTime is the protocol's 8-byte absolute timestamp: century, year,
// month, day, hour, minute, second, and 1/100-second fractions.
type AbsoluteTime struct {
	Century     uint8
	Year        uint8
	Month       uint8
	Day         uint8
	Hour        uint8
	Minute      uint8
	Second      uint8
	Centiseconds uint8
}

func decodeAbsoluteTime(c *cursor) (AbsoluteTime, error) {
	b, err := c.bytes(8)
	if err != nil {
		return AbsoluteTime{}, fmt.Errorf("wire: decode AbsoluteTime: %w", err)
	}
	return AbsoluteTime{
		Century: b[0], Year: b[1], Month: b[2], Day: b[3],
		Hour: b[4], Minute: b[5], Second: b[6], Centiseconds: b[7],
	}, nil
}

func (t AbsoluteTime) Encode() []byte {
	return []byte{t.Century, t.Year, t.Month, t.Day, t.Hour, t.Minute, t.Second, t.Centiseconds}
}

// ─────────────────────────────────────────────────────────────────────────────
// LI length encoding (association control)
// ─────────────────────────────────────────────────────────────────────────────

// EncodeLI encodes a length per the association-control LI rule: one byte for
// n <= 254 (inclusive), else {0xFF, hi, lo} carrying a 16-bit length.
func EncodeLI(n uint16) []byte {
	if n <= 254 {
		return []byte{byte(n)}
	}
	return []byte{0xFF, byte(n >> 8), byte(n)}
}

// DecodeLI reads an LI-encoded length from the front of buf and returns the
// decoded value along with the remaining bytes.
func DecodeLI(buf []byte) (length uint16, rest []byte, err error) {
	c := newCursor(buf)
	first, err := c.u8()
	if err != nil {
		return 0, nil, fmt.Errorf("wire: decode LI: %w", err)
	}
	if first != 0xFF {
		return uint16(first), c.remaining(), nil
	}
	v, err := c.u16()
	if err != nil {
		return 0, nil, fmt.Errorf("wire: decode LI long form: %w", err)
	}
	return v, c.remaining(), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// ASN-style length encoding (MDSE user-info in association)
// ─────────────────────────────────────────────────────────────────────────────

// EncodeASNLength encodes a length using the short/long BER-style form: one
// byte for n <= 127, else a first byte with the high bit set whose low 7 bits
// give the count of following length bytes (MSB first).
func EncodeASNLength(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("wire: encode ASN length: negative length %d: %w", n, ErrBadLength)
	}
	if n <= 127 {
		return []byte{byte(n)}, nil
	}
	var body []byte
	for v := n; v > 0; v >>= 8 {
		body = append([]byte{byte(v)}, body...)
	}
	if len(body) > 0x7f {
		return nil, fmt.Errorf("wire: encode ASN length: %d too large: %w", n, ErrBadLength)
	}
	return append([]byte{0x80 | byte(len(body))}, body...), nil
}

// DecodeASNLength reads a BER-style length from the front of buf.
func DecodeASNLength(buf []byte) (length int, rest []byte, err error) {
	c := newCursor(buf)
	first, err := c.u8()
	if err != nil {
		return 0, nil, fmt.Errorf("wire: decode ASN length: %w", err)
	}
	if first&0x80 == 0 {
		return int(first), c.remaining(), nil
	}
	n := int(first & 0x7f)
	body, err := c.bytes(n)
	if err != nil {
		return 0, nil, fmt.Errorf("wire: decode ASN length long form: %w", err)
	}
	v := 0
	for _, b := range body {
		v = (v << 8) | int(b)
	}
	return v, c.remaining(), nil
}
