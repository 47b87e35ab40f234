package wire

import "fmt"

// Nomenclature is the small fixed header (magic + version) that opens a
// discovery beacon, distinguishing it from the SPpdu/SessionHeader envelopes
// used by every other datagram.
type Nomenclature struct {
	Magic        uint16
	MajorVersion uint8
	MinorVersion uint8
}

func decodeNomenclature(c *cursor) (Nomenclature, error) {
	magic, err := c.u16()
	if err != nil {
		return Nomenclature{}, fmt.Errorf("wire: decode Nomenclature.Magic: %w", err)
	}
	major, err := c.u8()
	if err != nil {
		return Nomenclature{}, fmt.Errorf("wire: decode Nomenclature.MajorVersion: %w", err)
	}
	minor, err := c.u8()
	if err != nil {
		return Nomenclature{}, fmt.Errorf("wire: decode Nomenclature.MinorVersion: %w", err)
	}
	return Nomenclature{Magic: magic, MajorVersion: major, MinorVersion: minor}, nil
}

// ConnectIndication is the discovery beacon a monitor broadcasts to announce
// itself: Nomenclature header, remote-op envelope, an (unconfirmed)
// event-report invocation, and an attribute list describing the sender —
// critically including an IpAddressInfo attribute carrying its MAC.
type ConnectIndication struct {
	Nomenclature  Nomenclature
	ROapdus       ROapdus
	ROIVapdu      ROIVapdu
	EventArgument EventReportArgument
	Info          AttributeList
}

// DecodeConnectIndication parses a discovery beacon from buf. The
// caller is responsible for distinguishing a beacon from an association/data
// datagram by arrival port (discovery port 24005); this function does not
// re-derive that.
func DecodeConnectIndication(buf []byte) (ConnectIndication, []byte, error) {
	c := newCursor(buf)

	nom, err := decodeNomenclature(c)
	if err != nil {
		return ConnectIndication{}, nil, err
	}
	ro, err := decodeROapdus(c)
	if err != nil {
		return ConnectIndication{}, nil, err
	}
	iv, err := decodeROIVapdu(c)
	if err != nil {
		return ConnectIndication{}, nil, err
	}
	arg, err := decodeEventReportArgument(c)
	if err != nil {
		return ConnectIndication{}, nil, err
	}
	info, err := decodeAttributeList(c)
	if err != nil {
		return ConnectIndication{}, nil, err
	}

	return ConnectIndication{
		Nomenclature:  nom,
		ROapdus:       ro,
		ROIVapdu:      iv,
		EventArgument: arg,
		Info:          info,
	}, c.remaining(), nil
}

// MAC extracts the sender's MAC address from the beacon's attribute list, by
// locating the IpAddressInfo attribute. ok is false if no such attribute is
// present — the caller must drop the datagram with a warning in
// that case rather than registering a monitor with no identity.
func (ci ConnectIndication) MAC() (MAC, bool) {
	for _, ava := range ci.Info.Values {
		if info, ok := ava.Payload.(IpAddressInfo); ok {
			return info.MAC, true
		}
	}
	return MAC{}, false
}

// IP extracts the sender's announced IPv4 address, if present.
func (ci ConnectIndication) IP() (IPv4, bool) {
	for _, ava := range ci.Info.Values {
		if info, ok := ava.Payload.(IpAddressInfo); ok {
			return info.IPAddress, true
		}
	}
	return IPv4{}, false
}
