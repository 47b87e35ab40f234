package wire

import "fmt"

// ─────────────────────────────────────────────────────────────────────────────
// AVAType / AttributeList — tagged attribute payloads
// ─────────────────────────────────────────────────────────────────────────────

// AttributePayload is implemented by every typed attribute value the
// dispatch table knows how to decode. Unknown attribute identifiers are
// preserved as OpaquePayload instead,: "not an error".
type AttributePayload interface {
	Encode() []byte
}

// OpaquePayload is the fallback for attribute identifiers with no dispatch
// table entry: the raw bytes, preserved exactly, of length Length.
type OpaquePayload struct {
	Bytes []byte
}

func (p OpaquePayload) Encode() []byte { return append([]byte(nil), p.Bytes...) }

// NuObsValue is a single numeric observation: a physiological identifier, a
// measurement-state flags field, a unit-of-measure identifier, and the
// custom-encoded decimal float value (left undecoded here — the float codec
// is applied by the caller, since this package has no opinion about NaN
// representation choices downstream consumers might want).
type NuObsValue struct {
	PhysioID  uint16
	State     uint16
	UnitCode  uint16
	ValueRaw  uint32 // raw 32-bit word; decode with intellivue/float
}

// MeasurementIsValid reports whether the observation's state flags mark it
// valid: the top four bits of State (INVALID, QUESTIONABLE, UNAVAILABLE,
// CALIBRATION_ONGOING) must be all zero, i.e. State < 0x1000.
func (v NuObsValue) MeasurementIsValid() bool {
	return v.State < 0x1000
}

func decodeNuObsValue(buf []byte) (NuObsValue, error) {
	c := newCursor(buf)
	physio, err := c.u16()
	if err != nil {
		return NuObsValue{}, fmt.Errorf("wire: decode NuObsValue.PhysioID: %w", err)
	}
	state, err := c.u16()
	if err != nil {
		return NuObsValue{}, fmt.Errorf("wire: decode NuObsValue.State: %w", err)
	}
	unit, err := c.u16()
	if err != nil {
		return NuObsValue{}, fmt.Errorf("wire: decode NuObsValue.UnitCode: %w", err)
	}
	val, err := c.u32()
	if err != nil {
		return NuObsValue{}, fmt.Errorf("wire: decode NuObsValue.ValueRaw: %w", err)
	}
	return NuObsValue{PhysioID: physio, State: state, UnitCode: unit, ValueRaw: val}, nil
}

func (v NuObsValue) Encode() []byte {
	b := putU16(nil, v.PhysioID)
	b = putU16(b, v.State)
	b = putU16(b, v.UnitCode)
	return putU32(b, v.ValueRaw)
}

// IpAddressInfo carries a monitor's network identity as announced in its
// discovery beacon: MAC address, IPv4 address, subnet mask, and peer level.
// The MAC field is the canonical identity the session engine keys on.
type IpAddressInfo struct {
	MAC        MAC
	IPAddress  IPv4
	SubnetMask IPv4
	PeerLevel  uint16
}

func decodeIpAddressInfo(buf []byte) (IpAddressInfo, error) {
	c := newCursor(buf)
	mac, err := decodeMAC(c)
	if err != nil {
		return IpAddressInfo{}, err
	}
	ip, err := decodeIPv4(c)
	if err != nil {
		return IpAddressInfo{}, err
	}
	mask, err := decodeIPv4(c)
	if err != nil {
		return IpAddressInfo{}, err
	}
	// PeerLevel is optional on some beacon variants; absence is not an error.
	var peerLevel uint16
	if len(c.remaining()) >= 2 {
		peerLevel, _ = c.u16()
	}
	return IpAddressInfo{MAC: mac, IPAddress: ip, SubnetMask: mask, PeerLevel: peerLevel}, nil
}

func (i IpAddressInfo) Encode() []byte {
	b := append([]byte(nil), i.MAC[:]...)
	b = append(b, i.IPAddress[:]...)
	b = append(b, i.SubnetMask[:]...)
	return putU16(b, i.PeerLevel)
}

// wireAbsoluteTime adapts AbsoluteTime to AttributePayload.
type wireAbsoluteTime AbsoluteTime

func (t wireAbsoluteTime) Encode() []byte { return AbsoluteTime(t).Encode() }

// attributeDispatch maps an attribute identifier to a decoder function: built
// once, consulted during AVAType decode, never mutated at runtime by the
// gateway itself.
var attributeDispatch = map[uint16]func([]byte) (AttributePayload, error){
	nuValObsID: func(b []byte) (AttributePayload, error) {
		v, err := decodeNuObsValue(b)
		return v, err
	},
	timeStampAbsID: func(b []byte) (AttributePayload, error) {
		c := newCursor(b)
		t, err := decodeAbsoluteTime(c)
		return wireAbsoluteTime(t), err
	},
	netAddrInfoID: func(b []byte) (AttributePayload, error) {
		v, err := decodeIpAddressInfo(b)
		return v, err
	},
}

// Attribute identifiers that select a typed payload, reproduced bit-exactly
// These intentionally shadow the nomenclature package's constants of
// the same numeric value rather than importing it, since this package must
// not depend on nomenclature (nomenclature is a pure lookup table with no
// wire-format knowledge, and importing it here would invert that layering).
const (
	nuValObsID     uint16 = 2384
	timeStampAbsID uint16 = 2448
	netAddrInfoID  uint16 = 61696
)

// AVAType is one attribute-identifier/length/payload entry of an
// AttributeList.
type AVAType struct {
	AttributeID uint16
	Length      uint16
	Payload     AttributePayload
}

func decodeAVAType(c *cursor) (AVAType, error) {
	id, err := c.u16()
	if err != nil {
		return AVAType{}, fmt.Errorf("wire: decode AVAType.AttributeID: %w", err)
	}
	length, err := c.u16()
	if err != nil {
		return AVAType{}, fmt.Errorf("wire: decode AVAType.Length: %w", err)
	}
	body, err := c.bytes(int(length))
	if err != nil {
		return AVAType{}, fmt.Errorf("wire: decode AVAType payload (id %d, len %d): %w", id, length, err)
	}

	if decode, ok := attributeDispatch[id]; ok {
		payload, err := decode(body)
		if err != nil {
			// A dispatch-table entry whose decoder rejects the body is still a
			// decode error, not silently downgraded to opaque: the length was
			// self-consistent, but the body did not match the expected shape.
			return AVAType{}, fmt.Errorf("wire: decode AVAType payload (id %d): %w", id, err)
		}
		return AVAType{AttributeID: id, Length: length, Payload: payload}, nil
	}
	return AVAType{AttributeID: id, Length: length, Payload: OpaquePayload{Bytes: body}}, nil
}

func (a AVAType) Encode() []byte {
	body := a.Payload.Encode()
	b := putU16(nil, a.AttributeID)
	b = putU16(b, uint16(len(body)))
	return append(b, body...)
}

// AttributeList is a count-and-length-prefixed sequence of AVAType entries.
// Length is authoritative for framing; Count is verified against the
// number of elements actually parsed within that framing.
type AttributeList struct {
	Count  uint16
	Length uint16
	Values []AVAType
}

func decodeAttributeList(c *cursor) (AttributeList, error) {
	count, err := c.u16()
	if err != nil {
		return AttributeList{}, fmt.Errorf("wire: decode AttributeList.Count: %w", err)
	}
	length, err := c.u16()
	if err != nil {
		return AttributeList{}, fmt.Errorf("wire: decode AttributeList.Length: %w", err)
	}
	body, err := c.bytes(int(length))
	if err != nil {
		return AttributeList{}, fmt.Errorf("wire: decode AttributeList body (len %d): %w", length, err)
	}

	inner := newCursor(body)
	values := make([]AVAType, 0, count)
	for len(inner.remaining()) > 0 {
		v, err := decodeAVAType(inner)
		if err != nil {
			return AttributeList{}, err
		}
		values = append(values, v)
	}
	if uint16(len(values)) != count {
		return AttributeList{}, fmt.Errorf("wire: AttributeList count mismatch: header says %d, parsed %d: %w", count, len(values), ErrBadLength)
	}
	return AttributeList{Count: count, Length: length, Values: values}, nil
}

func (l AttributeList) Encode() []byte {
	var body []byte
	for _, v := range l.Values {
		body = append(body, v.Encode()...)
	}
	b := putU16(nil, uint16(len(l.Values)))
	b = putU16(b, uint16(len(body)))
	return append(b, body...)
}

// NewAttributeList builds an AttributeList with Count and Length computed
// from values, per the encode-side rule in round-trip law.
func NewAttributeList(values []AVAType) AttributeList {
	var bodyLen int
	for _, v := range values {
		bodyLen += len(v.Encode())
	}
	return AttributeList{Count: uint16(len(values)), Length: uint16(bodyLen), Values: values}
}
