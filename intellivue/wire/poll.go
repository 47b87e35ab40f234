package wire

import "fmt"

// ─────────────────────────────────────────────────────────────────────────────
// Poll request (outbound, Connected state's periodic tick)
// ─────────────────────────────────────────────────────────────────────────────

// PolledObjType identifies, by partition and code, which class of managed
// object a poll request asks the monitor to snapshot.
type PolledObjType struct {
	Partition uint16
	Code      uint16
}

// PollMdibDataReqExt is the body of a CMD_CONFIRMED_ACTION poll invocation.
type PollMdibDataReqExt struct {
	PolledObjType  PolledObjType
	PolledAttrGrp  uint16
}

func (p PollMdibDataReqExt) Encode() []byte {
	b := putU16(nil, p.PolledObjType.Partition)
	b = putU16(b, p.PolledObjType.Code)
	return putU16(b, p.PolledAttrGrp)
}

func decodePollMdibDataReqExt(c *cursor) (PollMdibDataReqExt, error) {
	part, err := c.u16()
	if err != nil {
		return PollMdibDataReqExt{}, fmt.Errorf("wire: decode PollMdibDataReqExt.PolledObjType.Partition: %w", err)
	}
	code, err := c.u16()
	if err != nil {
		return PollMdibDataReqExt{}, fmt.Errorf("wire: decode PollMdibDataReqExt.PolledObjType.Code: %w", err)
	}
	grp, err := c.u16()
	if err != nil {
		return PollMdibDataReqExt{}, fmt.Errorf("wire: decode PollMdibDataReqExt.PolledAttrGrp: %w", err)
	}
	return PollMdibDataReqExt{PolledObjType: PolledObjType{Partition: part, Code: code}, PolledAttrGrp: grp}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Poll reply (inbound, forwarded to the observation dispatcher)
// ─────────────────────────────────────────────────────────────────────────────

// ObservationPoll is one object handle plus its reported attribute values.
type ObservationPoll struct {
	ObjHandle GlbHandle
	Attributes AttributeList
}

func decodeObservationPoll(c *cursor) (ObservationPoll, error) {
	h, err := decodeGlbHandle(c)
	if err != nil {
		return ObservationPoll{}, err
	}
	attrs, err := decodeAttributeList(c)
	if err != nil {
		return ObservationPoll{}, err
	}
	return ObservationPoll{ObjHandle: h, Attributes: attrs}, nil
}

func (o ObservationPoll) Encode() []byte {
	b := o.ObjHandle.Encode()
	return append(b, o.Attributes.Encode()...)
}

// SingleContextPoll groups all ObservationPoll entries reported under one
// MDS context, count-and-length-prefixed like AttributeList.
type SingleContextPoll struct {
	ContextID    uint16
	Count        uint16
	Length       uint16
	Observations []ObservationPoll
}

func decodeSingleContextPoll(c *cursor) (SingleContextPoll, error) {
	ctx, err := c.u16()
	if err != nil {
		return SingleContextPoll{}, fmt.Errorf("wire: decode SingleContextPoll.ContextID: %w", err)
	}
	count, err := c.u16()
	if err != nil {
		return SingleContextPoll{}, fmt.Errorf("wire: decode SingleContextPoll.Count: %w", err)
	}
	length, err := c.u16()
	if err != nil {
		return SingleContextPoll{}, fmt.Errorf("wire: decode SingleContextPoll.Length: %w", err)
	}
	body, err := c.bytes(int(length))
	if err != nil {
		return SingleContextPoll{}, fmt.Errorf("wire: decode SingleContextPoll body (len %d): %w", length, err)
	}
	inner := newCursor(body)
	obs := make([]ObservationPoll, 0, count)
	for len(inner.remaining()) > 0 {
		o, err := decodeObservationPoll(inner)
		if err != nil {
			return SingleContextPoll{}, err
		}
		obs = append(obs, o)
	}
	if uint16(len(obs)) != count {
		return SingleContextPoll{}, fmt.Errorf("wire: SingleContextPoll count mismatch: header says %d, parsed %d: %w", count, len(obs), ErrBadLength)
	}
	return SingleContextPoll{ContextID: ctx, Count: count, Length: length, Observations: obs}, nil
}

func (s SingleContextPoll) Encode() []byte {
	var body []byte
	for _, o := range s.Observations {
		body = append(body, o.Encode()...)
	}
	b := putU16(nil, s.ContextID)
	b = putU16(b, uint16(len(s.Observations)))
	b = putU16(b, uint16(len(body)))
	return append(b, body...)
}

// PollInfoList is the top-level body of a poll reply: a count-and-length
// prefixed list of SingleContextPoll entries.
type PollInfoList struct {
	Count   uint16
	Length  uint16
	Context []SingleContextPoll
}

// DecodePollInfoList parses a PollInfoList from the front of buf, returning
// the remaining bytes per the package-wide decode(buffer) -> (record, tail,
// err) convention.
func DecodePollInfoList(buf []byte) (PollInfoList, []byte, error) {
	c := newCursor(buf)
	count, err := c.u16()
	if err != nil {
		return PollInfoList{}, nil, fmt.Errorf("wire: decode PollInfoList.Count: %w", err)
	}
	length, err := c.u16()
	if err != nil {
		return PollInfoList{}, nil, fmt.Errorf("wire: decode PollInfoList.Length: %w", err)
	}
	body, err := c.bytes(int(length))
	if err != nil {
		return PollInfoList{}, nil, fmt.Errorf("wire: decode PollInfoList body (len %d): %w", length, err)
	}
	inner := newCursor(body)
	ctxs := make([]SingleContextPoll, 0, count)
	for len(inner.remaining()) > 0 {
		ctx, err := decodeSingleContextPoll(inner)
		if err != nil {
			return PollInfoList{}, nil, err
		}
		ctxs = append(ctxs, ctx)
	}
	if uint16(len(ctxs)) != count {
		return PollInfoList{}, nil, fmt.Errorf("wire: PollInfoList count mismatch: header says %d, parsed %d: %w", count, len(ctxs), ErrBadLength)
	}
	return PollInfoList{Count: count, Length: length, Context: ctxs}, c.remaining(), nil
}

func (p PollInfoList) Encode() []byte {
	var body []byte
	for _, ctx := range p.Context {
		body = append(body, ctx.Encode()...)
	}
	b := putU16(nil, uint16(len(p.Context)))
	b = putU16(b, uint16(len(body)))
	return append(b, body...)
}

// WalkObservations visits every AVAType entry across the whole PollInfoList
// tree whose AttributeID is nuValObsID, calling fn with the decoded
// NuObsValue. The traversal follows
// PollInfoList -> SingleContextPoll -> ObservationPoll -> AttributeList,
// filtered to numeric-observation entries.
func (p PollInfoList) WalkObservations(fn func(v NuObsValue)) {
	for _, ctx := range p.Context {
		for _, obs := range ctx.Observations {
			for _, ava := range obs.Attributes.Values {
				if ava.AttributeID != nuValObsID {
					continue
				}
				if v, ok := ava.Payload.(NuObsValue); ok {
					fn(v)
				}
			}
		}
	}
}
