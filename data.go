package h2core

import "github.com/hueristiq/h2core/internal/wire"

var _ Frame = (*Data)(nil)

// Data is the DATA frame (https://tools.ietf.org/html/rfc7540#section-6.1).
//
// Flags: END_STREAM (0x1), PADDED (0x8).
type Data struct {
	endStream bool
	payload   []byte
}

func (d *Data) Type() FrameType { return FrameTypeData }

func (d *Data) Reset() {
	d.endStream = false
	d.payload = d.payload[:0]
}

// EndStream reports whether this frame carries END_STREAM.
func (d *Data) EndStream() bool { return d.endStream }

// SetEndStream sets END_STREAM.
func (d *Data) SetEndStream(v bool) { d.endStream = v }

// Payload returns the data bytes (padding already stripped).
func (d *Data) Payload() []byte { return d.payload }

// SetPayload replaces the data bytes.
func (d *Data) SetPayload(b []byte) { d.payload = append(d.payload[:0], b...) }

func (d *Data) Deserialize(h *FrameHeader) error {
	if h.StreamID() == 0 {
		return NewMalformedFrame("DATA frame on stream 0")
	}

	payload := h.Payload()

	if h.Flags().Has(FlagPadded) {
		var err error
		payload, err = wire.CutPadding(payload)
		if err != nil {
			return NewMalformedFrame("DATA: " + err.Error())
		}
	}

	d.endStream = h.Flags().Has(FlagEndStream)
	d.payload = append(d.payload[:0], payload...)

	return nil
}

func (d *Data) Serialize(h *FrameHeader) {
	if d.endStream {
		h.SetFlags(h.Flags().Add(FlagEndStream))
	}

	h.setPayload(d.payload)
}
