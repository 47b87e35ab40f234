package wire

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncodeLI(t *testing.T) {
	cases := []struct {
		n    uint16
		want []byte
	}{
		{0, []byte{0x00}},
		{4, []byte{0x04}},
		{254, []byte{0xFE}},
		{255, []byte{0xFF, 0x00, 0xFF}},
		{300, []byte{0xFF, 0x01, 0x2C}},
	}
	for _, c := range cases {
		got := EncodeLI(c.n)
		if !bytes.Equal(got, c.want) {
			t.Errorf("EncodeLI(%d) = % x, want % x", c.n, got, c.want)
		}
		length, rest, err := DecodeLI(append(got, 0xAA))
		if err != nil {
			t.Fatalf("DecodeLI(%d): %v", c.n, err)
		}
		if length != c.n {
			t.Errorf("DecodeLI round trip: got %d, want %d", length, c.n)
		}
		if !bytes.Equal(rest, []byte{0xAA}) {
			t.Errorf("DecodeLI tail: got % x, want [aa]", rest)
		}
	}
}

func TestDecodeLITruncated(t *testing.T) {
	if _, _, err := DecodeLI(nil); !errors.Is(err, ErrTruncatedPdu) {
		t.Fatalf("DecodeLI(nil) err = %v, want ErrTruncatedPdu", err)
	}
	if _, _, err := DecodeLI([]byte{0xFF, 0x01}); !errors.Is(err, ErrTruncatedPdu) {
		t.Fatalf("DecodeLI long form truncated err = %v, want ErrTruncatedPdu", err)
	}
}

func TestEncodeASNLength(t *testing.T) {
	cases := []struct {
		n    int
		want []byte
	}{
		{0, []byte{0x00}},
		{127, []byte{0x7F}},
		{128, []byte{0x81, 0x80}},
		{300, []byte{0x82, 0x01, 0x2C}},
	}
	for _, c := range cases {
		got, err := EncodeASNLength(c.n)
		if err != nil {
			t.Fatalf("EncodeASNLength(%d): %v", c.n, err)
		}
		if !bytes.Equal(got, c.want) {
			t.Errorf("EncodeASNLength(%d) = % x, want % x", c.n, got, c.want)
		}
		length, rest, err := DecodeASNLength(append(got, 0xAA))
		if err != nil {
			t.Fatalf("DecodeASNLength(%d): %v", c.n, err)
		}
		if length != c.n {
			t.Errorf("DecodeASNLength round trip: got %d, want %d", length, c.n)
		}
		if !bytes.Equal(rest, []byte{0xAA}) {
			t.Errorf("DecodeASNLength tail: got % x, want [aa]", rest)
		}
	}
}

func TestEncodeASNLengthNegative(t *testing.T) {
	if _, err := EncodeASNLength(-1); !errors.Is(err, ErrBadLength) {
		t.Fatalf("EncodeASNLength(-1) err = %v, want ErrBadLength", err)
	}
}

func TestMACAndIPv4String(t *testing.T) {
	mac := MAC{0x06, 0x08, 0x06, 0x08, 0x00, 0x01}
	if got, want := mac.String(), "06:08:06:08:00:01"; got != want {
		t.Errorf("MAC.String() = %q, want %q", got, want)
	}
	ip := IPv4{192, 168, 1, 2}
	if got, want := ip.String(), "192.168.1.2"; got != want {
		t.Errorf("IPv4.String() = %q, want %q", got, want)
	}
}

func TestSPpduRoundTrip(t *testing.T) {
	sp := NewSPpdu()
	c := newCursor(sp.Encode())
	got, err := decodeSPpdu(c)
	if err != nil {
		t.Fatalf("decodeSPpdu: %v", err)
	}
	if got != sp {
		t.Errorf("SPpdu round trip: got %+v, want %+v", got, sp)
	}
}

func TestSessionHeaderRoundTrip(t *testing.T) {
	h := SessionHeader{Type: SessionHeaderCN, Length: 20}
	c := newCursor(h.Encode())
	got, err := decodeSessionHeader(c)
	if err != nil {
		t.Fatalf("decodeSessionHeader: %v", err)
	}
	if got != h {
		t.Errorf("SessionHeader round trip: got %+v, want %+v", got, h)
	}
	if got.Type.String() != "CN" {
		t.Errorf("SessionHeaderType.String() = %q, want CN", got.Type.String())
	}
}

func TestAttributeListRoundTrip(t *testing.T) {
	values := []AVAType{
		{AttributeID: nuValObsID, Payload: NuObsValue{PhysioID: 20730, State: 0, UnitCode: 1, ValueRaw: 0xFD007D00}},
		{AttributeID: 9999, Payload: OpaquePayload{Bytes: []byte{0x01, 0x02, 0x03}}},
	}
	list := NewAttributeList(values)

	c := newCursor(list.Encode())
	got, err := decodeAttributeList(c)
	if err != nil {
		t.Fatalf("decodeAttributeList: %v", err)
	}
	if got.Count != 2 {
		t.Fatalf("Count = %d, want 2", got.Count)
	}
	nu, ok := got.Values[0].Payload.(NuObsValue)
	if !ok {
		t.Fatalf("Values[0].Payload is %T, want NuObsValue", got.Values[0].Payload)
	}
	if nu.PhysioID != 20730 || !nu.MeasurementIsValid() {
		t.Errorf("decoded NuObsValue = %+v, want PhysioID=20730 valid=true", nu)
	}
	opaque, ok := got.Values[1].Payload.(OpaquePayload)
	if !ok {
		t.Fatalf("Values[1].Payload is %T, want OpaquePayload", got.Values[1].Payload)
	}
	if !bytes.Equal(opaque.Bytes, []byte{0x01, 0x02, 0x03}) {
		t.Errorf("opaque bytes = % x, want 01 02 03", opaque.Bytes)
	}
}

func TestAttributeListCountMismatch(t *testing.T) {
	c := newCursor([]byte{0x00, 0x05, 0x00, 0x00}) // header: count 5, length 0
	if _, err := decodeAttributeList(c); !errors.Is(err, ErrBadLength) {
		t.Fatalf("decodeAttributeList count mismatch err = %v, want ErrBadLength", err)
	}
}

func TestNuObsValueMeasurementValidity(t *testing.T) {
	cases := []struct {
		state uint16
		want  bool
	}{
		{0x0000, true},
		{0x0FFF, true},
		{0x1000, false},
		{0xFFFF, false},
	}
	for _, c := range cases {
		v := NuObsValue{State: c.state}
		if got := v.MeasurementIsValid(); got != c.want {
			t.Errorf("MeasurementIsValid(state=%#04x) = %v, want %v", c.state, got, c.want)
		}
	}
}

func TestIpAddressInfoRoundTrip(t *testing.T) {
	info := IpAddressInfo{
		MAC:        MAC{0x06, 0x08, 0x06, 0x08, 0x00, 0x01},
		IPAddress:  IPv4{10, 0, 0, 5},
		SubnetMask: IPv4{255, 255, 255, 0},
		PeerLevel:  1,
	}
	got, err := decodeIpAddressInfo(info.Encode())
	if err != nil {
		t.Fatalf("decodeIpAddressInfo: %v", err)
	}
	if got != info {
		t.Errorf("IpAddressInfo round trip: got %+v, want %+v", got, info)
	}
}

func TestPollInfoListWalkObservations(t *testing.T) {
	list := PollInfoList{
		Context: []SingleContextPoll{
			{
				ContextID: 1,
				Observations: []ObservationPoll{
					{
						ObjHandle: GlbHandle{ContextID: 1, Handle: 100},
						Attributes: NewAttributeList([]AVAType{
							{AttributeID: nuValObsID, Payload: NuObsValue{PhysioID: 20730, State: 0, ValueRaw: 0xFD007D00}},
							{AttributeID: timeStampAbsID, Payload: wireAbsoluteTime{}},
						}),
					},
				},
			},
		},
	}

	var seen []NuObsValue
	list.WalkObservations(func(v NuObsValue) { seen = append(seen, v) })
	if len(seen) != 1 {
		t.Fatalf("WalkObservations visited %d values, want 1", len(seen))
	}
	if seen[0].PhysioID != 20730 {
		t.Errorf("visited PhysioID = %d, want 20730", seen[0].PhysioID)
	}
}

func TestPollInfoListRoundTrip(t *testing.T) {
	list := PollInfoList{
		Context: []SingleContextPoll{
			{
				ContextID: 1,
				Observations: []ObservationPoll{
					{
						ObjHandle:  GlbHandle{ContextID: 1, Handle: 100},
						Attributes: NewAttributeList(nil),
					},
				},
			},
		},
	}
	list.Context[0].Count = uint16(len(list.Context[0].Observations))
	list.Count = uint16(len(list.Context))

	got, tail, err := DecodePollInfoList(list.Encode())
	if err != nil {
		t.Fatalf("DecodePollInfoList: %v", err)
	}
	if len(tail) != 0 {
		t.Errorf("tail = % x, want empty", tail)
	}
	if len(got.Context) != 1 || got.Context[0].ContextID != 1 {
		t.Errorf("decoded PollInfoList = %+v", got)
	}
}

func TestBuildMdsCreateReplyDecodesAsResult(t *testing.T) {
	mo := ManagedObjectId{ObjClass: 33, ObjInst: GlbHandle{ContextID: 1, Handle: 0}}
	buf := BuildMdsCreateReply(42, mo, 3)

	msg, tail, err := DecodeMessage(buf)
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if len(tail) != 0 {
		t.Errorf("tail = % x, want empty", tail)
	}
	if msg.Result == nil {
		t.Fatalf("msg.Result is nil")
	}
	if msg.Result.RORSapdu.InvokeID != 42 {
		t.Errorf("InvokeID = %d, want 42", msg.Result.RORSapdu.InvokeID)
	}
	if msg.Result.Event == nil || msg.Result.Event.Result == nil {
		t.Fatalf("msg.Result.Event.Result is nil")
	}
	if msg.Result.Event.Result.ManagedObject != mo {
		t.Errorf("ManagedObject = %+v, want %+v", msg.Result.Event.Result.ManagedObject, mo)
	}
	if msg.Result.Event.Result.EventType != 3 {
		t.Errorf("EventType = %d, want 3", msg.Result.Event.Result.EventType)
	}
}

func TestBuildPollRequestDecodesAsInvoke(t *testing.T) {
	mds := ManagedObjectId{ObjClass: 33, ObjInst: GlbHandle{ContextID: 1, Handle: 0}}
	req := PollMdibDataReqExt{PolledObjType: PolledObjType{Partition: 4, Code: 6}, PolledAttrGrp: 0}
	buf := BuildPollRequest(7, mds, actPollMdibDataExtID, req)

	msg, _, err := DecodeMessage(buf)
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if msg.Invoke == nil {
		t.Fatalf("msg.Invoke is nil")
	}
	if msg.Invoke.ROIVapdu.InvokeID != 7 {
		t.Errorf("InvokeID = %d, want 7", msg.Invoke.ROIVapdu.InvokeID)
	}
	if msg.Invoke.Action == nil || msg.Invoke.Action.Argument == nil {
		t.Fatalf("msg.Invoke.Action.Argument is nil")
	}
	if msg.Invoke.Action.Argument.ActionType != actPollMdibDataExtID {
		t.Errorf("ActionType = %d, want %d", msg.Invoke.Action.Argument.ActionType, actPollMdibDataExtID)
	}
	if msg.Invoke.Action.Argument.Scope != 0 {
		t.Errorf("Scope = %d, want 0", msg.Invoke.Action.Argument.Scope)
	}
}

func TestActionArgumentRoundTrip(t *testing.T) {
	mo := ManagedObjectId{ObjClass: 33, ObjInst: GlbHandle{ContextID: 1, Handle: 2}}
	arg := ActionArgument{ManagedObject: mo, Scope: 0x11223344, ActionType: actPollMdibDataExtID, Length: 9}

	c := &cursor{buf: arg.Encode()}
	got, err := decodeActionArgument(c)
	if err != nil {
		t.Fatalf("decodeActionArgument: %v", err)
	}
	if got != arg {
		t.Errorf("decodeActionArgument round-trip = %+v, want %+v", got, arg)
	}

	// Scope sits between the managed object and the action type on the wire,
	// 4 bytes wide.
	encoded := arg.Encode()
	moLen := len(mo.Encode())
	wantLen := moLen + 4 + 2 + 2
	if len(encoded) != wantLen {
		t.Fatalf("ActionArgument.Encode length = %d, want %d", len(encoded), wantLen)
	}
	gotScope := putU32(nil, 0)
	gotScope[0], gotScope[1], gotScope[2], gotScope[3] = encoded[moLen], encoded[moLen+1], encoded[moLen+2], encoded[moLen+3]
	if want := putU32(nil, arg.Scope); !bytes.Equal(gotScope, want) {
		t.Errorf("Scope bytes at offset %d = % x, want % x", moLen, gotScope, want)
	}
}

func TestActionResultRoundTrip(t *testing.T) {
	mo := ManagedObjectId{ObjClass: 33, ObjInst: GlbHandle{ContextID: 1, Handle: 2}}
	res := ActionResult{ManagedObject: mo, ActionType: actPollMdibDataExtID, Length: 9}

	encoded := res.Encode()
	if len(encoded) != len(mo.Encode())+4 {
		t.Fatalf("ActionResult.Encode length = %d, want %d (no scope field)", len(encoded), len(mo.Encode())+4)
	}

	c := &cursor{buf: encoded}
	got, err := decodeActionResult(c)
	if err != nil {
		t.Fatalf("decodeActionResult: %v", err)
	}
	if got != res {
		t.Errorf("decodeActionResult round-trip = %+v, want %+v", got, res)
	}
}

func TestDecodeMessageRejectsWrongMagic(t *testing.T) {
	buf := []byte{0x00, 0x00, 0x00, 0x02}
	if _, _, err := DecodeMessage(buf); !errors.Is(err, ErrBadLength) {
		t.Fatalf("DecodeMessage wrong magic err = %v, want ErrBadLength", err)
	}
}

func TestErrorValueString(t *testing.T) {
	if got, want := ErrAccessDenied.String(), "ACCESS_DENIED"; got != want {
		t.Errorf("ErrAccessDenied.String() = %q, want %q", got, want)
	}
	if got := ErrorValue(999).String(); got != "UNKNOWN_ERROR(999)" {
		t.Errorf("unknown ErrorValue.String() = %q", got)
	}
}

func TestAssociationRequestContainsPollExtFlags(t *testing.T) {
	flags := PollExtPeriodNu1Sec | PollExtPeriodRTSA | PollExtEnum
	buf := AssociationRequest(flags)

	h, rest, err := DecodeSessionHeader(buf)
	if err != nil {
		t.Fatalf("DecodeSessionHeader: %v", err)
	}
	if h.Type != SessionHeaderCN {
		t.Errorf("SessionHeader.Type = %v, want CN", h.Type)
	}
	if int(h.Length) != len(rest) {
		t.Errorf("SessionHeader.Length = %d, but %d bytes remain", h.Length, len(rest))
	}
	gotFlags := uint16(rest[len(rest)-2])<<8 | uint16(rest[len(rest)-1])
	if gotFlags != flags {
		t.Errorf("poll-ext flags = %#04x, want %#04x", gotFlags, flags)
	}
}
