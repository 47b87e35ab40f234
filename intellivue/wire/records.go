package wire

import "fmt"

// ─────────────────────────────────────────────────────────────────────────────
// ro_type / command_type / error-value tags (bit-exact)
// ─────────────────────────────────────────────────────────────────────────────

type ROType uint16

const (
	ROTypeInvoke       ROType = 1
	ROTypeResult       ROType = 2
	ROTypeError        ROType = 3
	ROTypeLinkedResult ROType = 5
)

type CommandType uint16

const (
	CmdEventReport         CommandType = 0
	CmdConfirmedEventReport CommandType = 1
	CmdGet                 CommandType = 3
	CmdSet                 CommandType = 4
	CmdConfirmedSet        CommandType = 5
	CmdConfirmedAction     CommandType = 7
)

type ErrorValue uint16

const (
	ErrNoSuchObjectClass    ErrorValue = 0
	ErrNoSuchObjectInstance ErrorValue = 1
	ErrAccessDenied         ErrorValue = 2
	ErrGetListError         ErrorValue = 7
	ErrSetListError         ErrorValue = 8
	ErrNoSuchAction         ErrorValue = 9
	ErrProcessingFailure    ErrorValue = 10
	ErrInvalidArgumentValue ErrorValue = 15
	ErrInvalidScope         ErrorValue = 16
	ErrInvalidObjectInstance ErrorValue = 17
)

func (e ErrorValue) String() string {
	switch e {
	case ErrNoSuchObjectClass:
		return "NO_SUCH_OBJECT_CLASS"
	case ErrNoSuchObjectInstance:
		return "NO_SUCH_OBJECT_INSTANCE"
	case ErrAccessDenied:
		return "ACCESS_DENIED"
	case ErrGetListError:
		return "GET_LIST_ERROR"
	case ErrSetListError:
		return "SET_LIST_ERROR"
	case ErrNoSuchAction:
		return "NO_SUCH_ACTION"
	case ErrProcessingFailure:
		return "PROCESSING_FAILURE"
	case ErrInvalidArgumentValue:
		return "INVALID_ARGUMENT_VALUE"
	case ErrInvalidScope:
		return "INVALID_SCOPE"
	case ErrInvalidObjectInstance:
		return "INVALID_OBJECT_INSTANCE"
	default:
		return fmt.Sprintf("UNKNOWN_ERROR(%d)", uint16(e))
	}
}

// SessionHeaderType is the one-byte type tag of an association-control
// SessionHeader (bit-exact).
type SessionHeaderType byte

const (
	SessionHeaderCN SessionHeaderType = 0x0D // Connect
	SessionHeaderAC SessionHeaderType = 0x0E // Accept
	SessionHeaderRF SessionHeaderType = 0x0C // Refuse
	SessionHeaderFN SessionHeaderType = 0x09 // Finish
	SessionHeaderDN SessionHeaderType = 0x0A // Disconnect
	SessionHeaderAB SessionHeaderType = 0x19 // Abort
)

func (t SessionHeaderType) String() string {
	switch t {
	case SessionHeaderCN:
		return "CN"
	case SessionHeaderAC:
		return "AC"
	case SessionHeaderRF:
		return "RF"
	case SessionHeaderFN:
		return "FN"
	case SessionHeaderDN:
		return "DN"
	case SessionHeaderAB:
		return "AB"
	default:
		return fmt.Sprintf("UNKNOWN(0x%02X)", byte(t))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// SPpdu / SessionHeader — the two possible outermost envelopes
// ─────────────────────────────────────────────────────────────────────────────

// SPduMagic is the fixed value that identifies an SPpdu (data-export traffic)
// when it appears as the first two bytes of a datagram.
const SPduMagic uint16 = 0xE100

// DataExportContextID is the context_id SPpdu carries for outbound
// data-export traffic.
const DataExportContextID uint16 = 2

// SPpdu is the outermost envelope for data-export traffic.
type SPpdu struct {
	SessionID uint16 // always SPduMagic on the wire
	ContextID uint16
}

func decodeSPpdu(c *cursor) (SPpdu, error) {
	sid, err := c.u16()
	if err != nil {
		return SPpdu{}, fmt.Errorf("wire: decode SPpdu.SessionID: %w", err)
	}
	ctx, err := c.u16()
	if err != nil {
		return SPpdu{}, fmt.Errorf("wire: decode SPpdu.ContextID: %w", err)
	}
	return SPpdu{SessionID: sid, ContextID: ctx}, nil
}

func (p SPpdu) Encode() []byte {
	b := putU16(nil, p.SessionID)
	return putU16(b, p.ContextID)
}

// NewSPpdu builds the standard outbound data-export envelope.
func NewSPpdu() SPpdu {
	return SPpdu{SessionID: SPduMagic, ContextID: DataExportContextID}
}

// SessionHeader is the outermost envelope for association-control traffic.
type SessionHeader struct {
	Type   SessionHeaderType
	Length uint16 // LI-encoded on the wire
}

func decodeSessionHeader(c *cursor) (SessionHeader, error) {
	t, err := c.u8()
	if err != nil {
		return SessionHeader{}, fmt.Errorf("wire: decode SessionHeader.Type: %w", err)
	}
	length, rest, err := DecodeLI(c.remaining())
	if err != nil {
		return SessionHeader{}, fmt.Errorf("wire: decode SessionHeader.Length: %w", err)
	}
	c.pos = len(c.buf) - len(rest)
	return SessionHeader{Type: SessionHeaderType(t), Length: length}, nil
}

func (h SessionHeader) Encode() []byte {
	b := []byte{byte(h.Type)}
	return append(b, EncodeLI(h.Length)...)
}

// ─────────────────────────────────────────────────────────────────────────────
// Remote-operation envelope and invocation/result/error bodies
// ─────────────────────────────────────────────────────────────────────────────

// ROapdus carries the ro_type tag selecting which of ROIVapdu / RORSapdu /
// ROERapdu / ROLRSapdu follows.
type ROapdus struct {
	ROType ROType
	Length uint16
}

func decodeROapdus(c *cursor) (ROapdus, error) {
	t, err := c.u16()
	if err != nil {
		return ROapdus{}, fmt.Errorf("wire: decode ROapdus.ROType: %w", err)
	}
	l, err := c.u16()
	if err != nil {
		return ROapdus{}, fmt.Errorf("wire: decode ROapdus.Length: %w", err)
	}
	return ROapdus{ROType: ROType(t), Length: l}, nil
}

func (r ROapdus) Encode() []byte {
	b := putU16(nil, uint16(r.ROType))
	return putU16(b, r.Length)
}

// ROIVapdu is an invocation: a confirmed or unconfirmed command, correlated
// by InvokeID.
type ROIVapdu struct {
	InvokeID    uint16
	CommandType CommandType
	Length      uint16
}

func decodeROIVapdu(c *cursor) (ROIVapdu, error) {
	id, err := c.u16()
	if err != nil {
		return ROIVapdu{}, fmt.Errorf("wire: decode ROIVapdu.InvokeID: %w", err)
	}
	ct, err := c.u16()
	if err != nil {
		return ROIVapdu{}, fmt.Errorf("wire: decode ROIVapdu.CommandType: %w", err)
	}
	l, err := c.u16()
	if err != nil {
		return ROIVapdu{}, fmt.Errorf("wire: decode ROIVapdu.Length: %w", err)
	}
	return ROIVapdu{InvokeID: id, CommandType: CommandType(ct), Length: l}, nil
}

func (r ROIVapdu) Encode() []byte {
	b := putU16(nil, r.InvokeID)
	b = putU16(b, uint16(r.CommandType))
	return putU16(b, r.Length)
}

// RORSapdu is a result, correlated by InvokeID back to the triggering
// ROIVapdu.
type RORSapdu struct {
	InvokeID    uint16
	CommandType CommandType
	Length      uint16
}

func decodeRORSapdu(c *cursor) (RORSapdu, error) {
	iv, err := decodeROIVapdu(c)
	return RORSapdu(iv), err
}

func (r RORSapdu) Encode() []byte {
	return ROIVapdu(r).Encode()
}

// ROERapdu is a protocol-level error report, correlated by InvokeID.
type ROERapdu struct {
	InvokeID   uint16
	ErrorValue ErrorValue
	Length     uint16
}

func decodeROERapdu(c *cursor) (ROERapdu, error) {
	id, err := c.u16()
	if err != nil {
		return ROERapdu{}, fmt.Errorf("wire: decode ROERapdu.InvokeID: %w", err)
	}
	ev, err := c.u16()
	if err != nil {
		return ROERapdu{}, fmt.Errorf("wire: decode ROERapdu.ErrorValue: %w", err)
	}
	l, err := c.u16()
	if err != nil {
		return ROERapdu{}, fmt.Errorf("wire: decode ROERapdu.Length: %w", err)
	}
	return ROERapdu{InvokeID: id, ErrorValue: ErrorValue(ev), Length: l}, nil
}

func (r ROERapdu) Encode() []byte {
	b := putU16(nil, r.InvokeID)
	b = putU16(b, uint16(r.ErrorValue))
	return putU16(b, r.Length)
}

// RorlsId prefixes a linked result, signalling continuation state and index
// within a ROLRSapdu batch.
type RorlsId struct {
	State uint16 // continuation (0) vs terminal (non-zero); the session engine does not inspect it
	Index uint16
}

// ROLRSapdu is a linked result, used for poll replies that span multiple
// fragments.
type ROLRSapdu struct {
	InvokeID    uint16
	CommandType CommandType
	Length      uint16
	RorlsId     RorlsId
}

func decodeROLRSapdu(c *cursor) (ROLRSapdu, error) {
	iv, err := decodeROIVapdu(c)
	if err != nil {
		return ROLRSapdu{}, err
	}
	state, err := c.u16()
	if err != nil {
		return ROLRSapdu{}, fmt.Errorf("wire: decode ROLRSapdu.RorlsId.State: %w", err)
	}
	idx, err := c.u16()
	if err != nil {
		return ROLRSapdu{}, fmt.Errorf("wire: decode ROLRSapdu.RorlsId.Index: %w", err)
	}
	return ROLRSapdu{
		InvokeID: iv.InvokeID, CommandType: iv.CommandType, Length: iv.Length,
		RorlsId: RorlsId{State: state, Index: idx},
	}, nil
}

func (r ROLRSapdu) Encode() []byte {
	b := ROIVapdu{InvokeID: r.InvokeID, CommandType: r.CommandType, Length: r.Length}.Encode()
	b = putU16(b, r.RorlsId.State)
	return putU16(b, r.RorlsId.Index)
}

// ─────────────────────────────────────────────────────────────────────────────
// Managed object identity
// ─────────────────────────────────────────────────────────────────────────────

// GlbHandle pairs an MDS context id with a handle within that context.
type GlbHandle struct {
	ContextID uint16
	Handle    uint16
}

func decodeGlbHandle(c *cursor) (GlbHandle, error) {
	ctx, err := c.u16()
	if err != nil {
		return GlbHandle{}, fmt.Errorf("wire: decode GlbHandle.ContextID: %w", err)
	}
	h, err := c.u16()
	if err != nil {
		return GlbHandle{}, fmt.Errorf("wire: decode GlbHandle.Handle: %w", err)
	}
	return GlbHandle{ContextID: ctx, Handle: h}, nil
}

func (g GlbHandle) Encode() []byte {
	b := putU16(nil, g.ContextID)
	return putU16(b, g.Handle)
}

// ManagedObjectId identifies a managed object class plus a specific instance.
type ManagedObjectId struct {
	ObjClass uint16
	ObjInst  GlbHandle
}

func decodeManagedObjectId(c *cursor) (ManagedObjectId, error) {
	class, err := c.u16()
	if err != nil {
		return ManagedObjectId{}, fmt.Errorf("wire: decode ManagedObjectId.ObjClass: %w", err)
	}
	inst, err := decodeGlbHandle(c)
	if err != nil {
		return ManagedObjectId{}, err
	}
	return ManagedObjectId{ObjClass: class, ObjInst: inst}, nil
}

func (m ManagedObjectId) Encode() []byte {
	b := putU16(nil, m.ObjClass)
	return append(b, m.ObjInst.Encode()...)
}

// ─────────────────────────────────────────────────────────────────────────────
// Event report / action argument-result bodies
// ─────────────────────────────────────────────────────────────────────────────

// EventReportArgument carries the managed object, relative event time, event
// type tag, and the length of the attribute payload that follows it.
type EventReportArgument struct {
	ManagedObject ManagedObjectId
	EventTime     uint32 // relative time
	EventType     uint16
	Length        uint16
}

func decodeEventReportArgument(c *cursor) (EventReportArgument, error) {
	mo, err := decodeManagedObjectId(c)
	if err != nil {
		return EventReportArgument{}, err
	}
	t, err := c.u32()
	if err != nil {
		return EventReportArgument{}, fmt.Errorf("wire: decode EventReportArgument.EventTime: %w", err)
	}
	et, err := c.u16()
	if err != nil {
		return EventReportArgument{}, fmt.Errorf("wire: decode EventReportArgument.EventType: %w", err)
	}
	l, err := c.u16()
	if err != nil {
		return EventReportArgument{}, fmt.Errorf("wire: decode EventReportArgument.Length: %w", err)
	}
	return EventReportArgument{ManagedObject: mo, EventTime: t, EventType: et, Length: l}, nil
}

func (e EventReportArgument) Encode() []byte {
	b := e.ManagedObject.Encode()
	b = putU32(b, e.EventTime)
	b = putU16(b, e.EventType)
	return putU16(b, e.Length)
}

// EventReportResult has the same shape as EventReportArgument; it is a
// distinct Go type because the session engine's reply must echo the argument's
// managed object while setting its own event type, and keeping the two
// structurally separate (rather than reusing one type for both directions)
// avoids a reply accidentally built from a copy of the wrong fields.
type EventReportResult EventReportArgument

func (e EventReportResult) Encode() []byte {
	return EventReportArgument(e).Encode()
}

// ActionArgument carries the managed object, an action scope, the action
// type tag, and the length of the payload that follows (e.g. a
// PollMdibDataReqExt).
type ActionArgument struct {
	ManagedObject ManagedObjectId
	Scope         uint32
	ActionType    uint16
	Length        uint16
}

func decodeActionArgument(c *cursor) (ActionArgument, error) {
	mo, err := decodeManagedObjectId(c)
	if err != nil {
		return ActionArgument{}, err
	}
	scope, err := c.u32()
	if err != nil {
		return ActionArgument{}, fmt.Errorf("wire: decode ActionArgument.Scope: %w", err)
	}
	at, err := c.u16()
	if err != nil {
		return ActionArgument{}, fmt.Errorf("wire: decode ActionArgument.ActionType: %w", err)
	}
	l, err := c.u16()
	if err != nil {
		return ActionArgument{}, fmt.Errorf("wire: decode ActionArgument.Length: %w", err)
	}
	return ActionArgument{ManagedObject: mo, Scope: scope, ActionType: at, Length: l}, nil
}

func (a ActionArgument) Encode() []byte {
	b := a.ManagedObject.Encode()
	b = putU32(b, a.Scope)
	b = putU16(b, a.ActionType)
	return putU16(b, a.Length)
}

// ActionResult carries the managed object, the action type tag, and the
// payload length for the reply direction. Unlike ActionArgument it has no
// scope field — the reply doesn't re-state the scope the request set.
type ActionResult struct {
	ManagedObject ManagedObjectId
	ActionType    uint16
	Length        uint16
}

func decodeActionResult(c *cursor) (ActionResult, error) {
	mo, err := decodeManagedObjectId(c)
	if err != nil {
		return ActionResult{}, err
	}
	at, err := c.u16()
	if err != nil {
		return ActionResult{}, fmt.Errorf("wire: decode ActionResult.ActionType: %w", err)
	}
	l, err := c.u16()
	if err != nil {
		return ActionResult{}, fmt.Errorf("wire: decode ActionResult.Length: %w", err)
	}
	return ActionResult{ManagedObject: mo, ActionType: at, Length: l}, nil
}

func (a ActionResult) Encode() []byte {
	b := a.ManagedObject.Encode()
	b = putU16(b, a.ActionType)
	return putU16(b, a.Length)
}
