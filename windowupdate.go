package h2core

import "github.com/hueristiq/h2core/internal/wire"

var _ Frame = (*WindowUpdate)(nil)

// WindowUpdate is the WINDOW_UPDATE frame
// (https://tools.ietf.org/html/rfc7540#section-6.9). Payload is always
// exactly 4 bytes: a 31-bit increment with the reserved high bit masked off.
//
// Per §9's Open Questions note, flow control is an explicit non-goal: the
// connection engine parses this frame but ignores it on receipt and never
// adjusts a send window in response to it.
type WindowUpdate struct {
	increment uint32
}

func (w *WindowUpdate) Type() FrameType { return FrameTypeWindowUpdate }

func (w *WindowUpdate) Reset() {
	w.increment = 0
}

func (w *WindowUpdate) Increment() uint32     { return w.increment }
func (w *WindowUpdate) SetIncrement(v uint32) { w.increment = v }

func (w *WindowUpdate) Deserialize(frh *FrameHeader) error {
	payload := frh.Payload()
	if len(payload) != 4 {
		return NewMalformedFrame("WINDOW_UPDATE payload must be exactly 4 bytes")
	}

	w.increment = wire.Uint32(payload) & 0x7fffffff

	return nil
}

func (w *WindowUpdate) Serialize(frh *FrameHeader) {
	payload := make([]byte, 4)
	wire.PutUint32(payload, w.increment&0x7fffffff)
	frh.setPayload(payload)
}
