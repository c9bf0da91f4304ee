package h2core

var _ Frame = (*Unknown)(nil)

// Unknown is the passthrough variant for frame types outside the
// implemented set (§4.1): any type byte other than DATA, HEADERS, SETTINGS,
// PING, GOAWAY, RST_STREAM, WINDOW_UPDATE, or CONTINUATION, including
// PRIORITY (0x2) and PUSH_PROMISE (0x5), neither of which is an implemented
// variant of this engine. The connection silently ignores frames of this
// type on receipt.
type Unknown struct {
	kind    FrameType
	payload []byte
}

func (u *Unknown) Type() FrameType { return u.kind }

func (u *Unknown) Reset() {
	u.payload = u.payload[:0]
}

// Payload returns the frame's raw, unparsed payload.
func (u *Unknown) Payload() []byte { return u.payload }

func (u *Unknown) Deserialize(frh *FrameHeader) error {
	u.kind = frh.Type()
	u.payload = append(u.payload[:0], frh.Payload()...)
	return nil
}

func (u *Unknown) Serialize(frh *FrameHeader) {
	frh.setPayload(u.payload)
}
