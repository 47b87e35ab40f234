package wire

import "fmt"

// EventBody is the decoded body of an event-report command: either an
// argument (invocation direction) or a result (reply direction). Exactly one
// of Argument/Result is set depending on which envelope carried it.
type EventBody struct {
	Argument *EventReportArgument
	Result   *EventReportResult
}

// ActionBody is the decoded body of a confirmed-action command. PollReply is
// populated instead of a generic opaque tail when ActionType identifies a
// poll (NOM_ACT_POLL_MDIB_DATA_EXT), since that is the only action this
// gateway issues or expects a reply to.
type ActionBody struct {
	Argument  *ActionArgument
	Result    *ActionResult
	PollReply *PollInfoList
	Opaque    []byte
}

// Message is the decoded form of one SPpdu-framed datagram: the envelope
// (SPpdu + ROapdus) plus whichever of the four ro_type bodies it carried.
// Exactly one of Invoke/Result/Err/Linked is non-nil.
type Message struct {
	SPpdu   SPpdu
	ROapdus ROapdus

	Invoke *InvokeBody
	Result *ResultBody
	Err    *ROERapdu
	Linked *LinkedBody
}

// InvokeBody is the body of a ROIVapdu (invocation).
type InvokeBody struct {
	ROIVapdu ROIVapdu
	Event    *EventBody
	Action   *ActionBody
}

// ResultBody is the body of a RORSapdu (result).
type ResultBody struct {
	RORSapdu RORSapdu
	Event    *EventBody
	Action   *ActionBody
}

// LinkedBody is the body of a ROLRSapdu (linked result), used for
// multi-fragment poll replies.
type LinkedBody struct {
	ROLRSapdu ROLRSapdu
	Action    *ActionBody
}

// DecodeMessage parses one SPpdu-framed datagram: the caller has already
// determined, by inspecting the first two bytes, that this is data-export
// traffic rather than association control. It returns the decoded Message
// and any trailing bytes left in buf.
func DecodeMessage(buf []byte) (Message, []byte, error) {
	c := newCursor(buf)

	sp, err := decodeSPpdu(c)
	if err != nil {
		return Message{}, nil, err
	}
	if sp.SessionID != SPduMagic {
		return Message{}, nil, fmt.Errorf("wire: SPpdu.SessionID = %#04x, want %#04x: %w", sp.SessionID, SPduMagic, ErrBadLength)
	}

	ro, err := decodeROapdus(c)
	if err != nil {
		return Message{}, nil, err
	}

	bodyBuf, err := c.bytes(int(ro.Length))
	if err != nil {
		return Message{}, nil, fmt.Errorf("wire: decode ROapdus body (len %d): %w", ro.Length, err)
	}
	bc := newCursor(bodyBuf)

	msg := Message{SPpdu: sp, ROapdus: ro}
	switch ro.ROType {
	case ROTypeInvoke:
		body, err := decodeInvokeBody(bc)
		if err != nil {
			return Message{}, nil, err
		}
		msg.Invoke = &body
	case ROTypeResult:
		body, err := decodeResultBody(bc)
		if err != nil {
			return Message{}, nil, err
		}
		msg.Result = &body
	case ROTypeError:
		er, err := decodeROERapdu(bc)
		if err != nil {
			return Message{}, nil, err
		}
		msg.Err = &er
	case ROTypeLinkedResult:
		body, err := decodeLinkedBody(bc)
		if err != nil {
			return Message{}, nil, err
		}
		msg.Linked = &body
	default:
		return Message{}, nil, fmt.Errorf("wire: unknown ro_type %d: %w", ro.ROType, ErrUnknownTag)
	}

	return msg, c.remaining(), nil
}

func decodeInvokeBody(c *cursor) (InvokeBody, error) {
	iv, err := decodeROIVapdu(c)
	if err != nil {
		return InvokeBody{}, err
	}
	body := InvokeBody{ROIVapdu: iv}
	switch iv.CommandType {
	case CmdEventReport, CmdConfirmedEventReport:
		arg, err := decodeEventReportArgument(c)
		if err != nil {
			return InvokeBody{}, err
		}
		body.Event = &EventBody{Argument: &arg}
	case CmdConfirmedAction:
		action, err := decodeActionBody(c, true)
		if err != nil {
			return InvokeBody{}, err
		}
		body.Action = &action
	}
	return body, nil
}

func decodeResultBody(c *cursor) (ResultBody, error) {
	rs, err := decodeRORSapdu(c)
	if err != nil {
		return ResultBody{}, err
	}
	body := ResultBody{RORSapdu: rs}
	switch rs.CommandType {
	case CmdEventReport, CmdConfirmedEventReport:
		arg, err := decodeEventReportArgument(c)
		if err != nil {
			return ResultBody{}, err
		}
		result := EventReportResult(arg)
		body.Event = &EventBody{Result: &result}
	case CmdConfirmedAction:
		action, err := decodeActionBody(c, false)
		if err != nil {
			return ResultBody{}, err
		}
		body.Action = &action
	}
	return body, nil
}

func decodeLinkedBody(c *cursor) (LinkedBody, error) {
	lrs, err := decodeROLRSapdu(c)
	if err != nil {
		return LinkedBody{}, err
	}
	action, err := decodeActionBody(c, false)
	if err != nil {
		return LinkedBody{}, err
	}
	return LinkedBody{ROLRSapdu: lrs, Action: &action}, nil
}

// decodeActionBody decodes an ActionArgument/ActionResult header and then,
// when the action type is the poll action this gateway knows about, the
// PollInfoList body that follows. isArgument selects which of the two header
// shapes to decode — ActionArgument carries a scope field the ActionResult
// reply does not.
func decodeActionBody(c *cursor, isArgument bool) (ActionBody, error) {
	if isArgument {
		arg, err := decodeActionArgument(c)
		if err != nil {
			return ActionBody{}, err
		}
		body := ActionBody{Argument: &arg}
		if arg.ActionType == actPollMdibDataExtID {
			req, err := decodePollMdibDataReqExt(c)
			_ = req // the request body is consumed from the wire but not exposed further; the session engine only ever builds outbound poll requests, never decodes inbound ones.
			if err != nil {
				return ActionBody{}, err
			}
		} else {
			body.Opaque = append([]byte(nil), c.remaining()...)
		}
		return body, nil
	}

	res, err := decodeActionResult(c)
	if err != nil {
		return ActionBody{}, err
	}
	body := ActionBody{Result: &res}
	if res.ActionType == actPollMdibDataExtID {
		poll, tail, err := DecodePollInfoList(c.remaining())
		if err != nil {
			return ActionBody{}, err
		}
		body.PollReply = &poll
		c.pos = len(c.buf) - len(tail)
	} else {
		body.Opaque = append([]byte(nil), c.remaining()...)
	}
	return body, nil
}

// actPollMdibDataExtID mirrors nomenclature.ActPollMdibDataExt; duplicated
// here for the same layering reason as the attribute IDs in attributes.go.
const actPollMdibDataExtID uint16 = 1030

// ─────────────────────────────────────────────────────────────────────────────
// Outbound message builders
// ─────────────────────────────────────────────────────────────────────────────

// BuildMdsCreateReply builds the RORSapdu reply to a confirmed MDS-Create
// event report: same invoke_id, managed_object echoed from the argument,
// event_type = NOM_NOTI_MDS_CREAT.
func BuildMdsCreateReply(invokeID uint16, managedObject ManagedObjectId, eventType uint16) []byte {
	result := EventReportResult{
		ManagedObject: managedObject,
		EventTime:     0,
		EventType:     eventType,
		Length:        0,
	}
	body := result.Encode()

	rs := RORSapdu{InvokeID: invokeID, CommandType: CmdConfirmedEventReport, Length: uint16(len(body))}
	roBody := append(rs.Encode(), body...)

	ro := ROapdus{ROType: ROTypeResult, Length: uint16(len(roBody))}
	sp := NewSPpdu()

	out := sp.Encode()
	out = append(out, ro.Encode()...)
	out = append(out, roBody...)
	return out
}

// BuildPollRequest builds the CMD_CONFIRMED_ACTION poll invocation the
// session engine emits every poll interval while Connected:
// ActionArgument{managed_object, action_type=poll} wrapping a
// PollMdibDataReqExt scoped to numeric metric observations.
func BuildPollRequest(invokeID uint16, mdsManagedObject ManagedObjectId, actionType uint16, req PollMdibDataReqExt) []byte {
	reqBytes := req.Encode()

	arg := ActionArgument{ManagedObject: mdsManagedObject, ActionType: actionType, Length: uint16(len(reqBytes))}
	argBytes := append(arg.Encode(), reqBytes...)

	iv := ROIVapdu{InvokeID: invokeID, CommandType: CmdConfirmedAction, Length: uint16(len(argBytes))}
	roBody := append(iv.Encode(), argBytes...)

	ro := ROapdus{ROType: ROTypeInvoke, Length: uint16(len(roBody))}
	sp := NewSPpdu()

	out := sp.Encode()
	out = append(out, ro.Encode()...)
	out = append(out, roBody...)
	return out
}
