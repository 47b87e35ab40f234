package wire

import "fmt"

// Poll-profile extension flags the association request must advertise.
// The exact bit assignment is vendor-documented, not derivable from first
// principles, so the values are taken as given rather than computed.
const (
	PollExtPeriodNu1Sec uint16 = 0x0001
	PollExtPeriodRTSA   uint16 = 0x0002
	PollExtEnum         uint16 = 0x0004
)

// assocReqSessionData is the session-data block of an Association Request.
// Transcribed verbatim from the vendor-documented example (PIPG p.298); its
// internal field structure is not specified anywhere in the source material,
// so it is carried as an opaque byte sequence rather than reverse-engineered.
var assocReqSessionData = []byte{
	0x05, 0x08, 0x13, 0x01, 0x00, 0x16, 0x01, 0x02, 0x80, 0x00, 0x14, 0x02, 0x00, 0x02,
}

// ReleaseRequest is the fixed 26-byte constant documented in PIPG-301 for a
// release (disassociation) request. It carries no decodable internal fields
// at this layer; callers send it verbatim.
var ReleaseRequest = []byte{
	0x05, 0x80, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
}

// AssociationRequest builds the full Association Request datagram: a
// SessionHeader(CN) wrapping the opaque session-data block plus the
// poll-profile extension flags. pollExtFlags is typically
// PollExtPeriodNu1Sec|PollExtPeriodRTSA|PollExtEnum.
func AssociationRequest(pollExtFlags uint16) []byte {
	body := append([]byte(nil), assocReqSessionData...)
	body = putU16(body, pollExtFlags)

	header := SessionHeader{Type: SessionHeaderCN, Length: uint16(len(body))}
	return append(header.Encode(), body...)
}

// DecodeSessionHeader parses just the outermost SessionHeader from an
// association-control datagram, returning the remaining bytes. Used by the
// session engine to classify AC/RF/FN/DN/AB replies without needing to
// understand the vendor-opaque body that follows CN/AC.
func DecodeSessionHeader(buf []byte) (SessionHeader, []byte, error) {
	c := newCursor(buf)
	h, err := decodeSessionHeader(c)
	if err != nil {
		return SessionHeader{}, nil, fmt.Errorf("wire: decode association-control datagram: %w", err)
	}
	return h, c.remaining(), nil
}
