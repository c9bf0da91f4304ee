package h2core

import (
	"github.com/hueristiq/h2core/internal/wire"
)

// HeaderSize is the fixed size, in bytes, of the frame header that prefixes
// every HTTP/2 frame on the wire (https://httpwg.org/specs/rfc7540.html#FrameHeader).
const HeaderSize = 9

// DefaultMaxFrameSize is SETTINGS_MAX_FRAME_SIZE's default value.
const DefaultMaxFrameSize = 1 << 14

// FrameHeader is the parsed 9-byte frame header plus its raw payload and the
// typed Frame that payload deserializes into. It is the unit RawFrame
// promises in the data model: "FrameHeader + payload bytes".
//
// A FrameHeader read from the wire (via ParseFrameHeader) has Body()
// populated once Complete has run. A FrameHeader built for sending is
// constructed empty and given a body with SetBody before Serialize is
// called.
type FrameHeader struct {
	length int
	kind   FrameType
	flags  FrameFlags
	stream uint32

	maxLen int

	payload []byte
	body    Frame
}

// NewFrameHeader returns an empty FrameHeader ready to have SetBody called on it.
func NewFrameHeader() *FrameHeader {
	return &FrameHeader{}
}

// Type returns the frame type.
func (h *FrameHeader) Type() FrameType { return h.kind }

// Flags returns the frame's flags.
func (h *FrameHeader) Flags() FrameFlags { return h.flags }

// SetFlags overwrites the frame's flags.
func (h *FrameHeader) SetFlags(f FrameFlags) { h.flags = f }

// StreamID returns the frame's stream id (already masked to 31 bits).
func (h *FrameHeader) StreamID() uint32 { return h.stream }

// SetStreamID sets the frame's stream id.
func (h *FrameHeader) SetStreamID(id uint32) { h.stream = id & (1<<31 - 1) }

// Len returns the payload length as read from the wire (or as computed for
// an outbound frame after Serialize has run).
func (h *FrameHeader) Len() int { return h.length }

// Body returns the typed frame payload.
func (h *FrameHeader) Body() Frame { return h.body }

// SetBody attaches fr as this header's payload and sets kind accordingly.
func (h *FrameHeader) SetBody(fr Frame) {
	h.body = fr
	h.kind = fr.Type()
}

// setPayload is used by frame Serialize implementations that produce the
// raw payload directly (as opposed to composing it byte by byte).
func (h *FrameHeader) setPayload(b []byte) {
	h.payload = append(h.payload[:0], b...)
	h.length = len(h.payload)
}

// Payload returns the raw (still HPACK-undecoded, still-padded) payload
// bytes read from the wire, for frame Deserialize implementations.
func (h *FrameHeader) Payload() []byte { return h.payload }

func (h *FrameHeader) checkLen() error {
	if h.maxLen > 0 && h.length > h.maxLen {
		return NewMalformedFrame("frame payload exceeds negotiated max frame size")
	}
	return nil
}

// ParseFrameHeader decodes a 9-byte wire header into a *FrameHeader. It does
// not touch the payload; callers pair this with reading h.Len() more bytes
// and calling Complete.
func ParseFrameHeader(raw [HeaderSize]byte, maxLen int) (*FrameHeader, error) {
	h := &FrameHeader{maxLen: maxLen}

	h.length = int(wire.Uint24(raw[:3]))
	h.kind = FrameType(raw[3])
	h.flags = FrameFlags(raw[4])
	h.stream = wire.StreamID(raw[5:9])

	if err := h.checkLen(); err != nil {
		return nil, err
	}

	return h, nil
}

// Complete attaches the just-read payload bytes to h, acquires the typed
// Frame for h.kind (or *Unknown), and deserializes it. Malformed payloads
// surface as an error; they never panic (§8's "never panics" property).
func (h *FrameHeader) Complete(payload []byte) error {
	if len(payload) != h.length {
		return NewMalformedFrame("short read: payload length does not match frame header")
	}

	h.payload = payload
	h.body = AcquireFrame(h.kind)

	return h.body.Deserialize(h)
}

// WireHeader renders the 9-byte header for this frame as it stands after
// Serialize populates h.length/h.flags/h.payload. Serialize must be called
// before WireHeader.
func (h *FrameHeader) WireHeader() [HeaderSize]byte {
	var raw [HeaderSize]byte

	wire.PutUint24(raw[:3], uint32(h.length))
	raw[3] = byte(h.kind)
	raw[4] = byte(h.flags)
	wire.PutUint32(raw[5:9], h.stream)

	return raw
}

// Serialize asks the attached body to render itself onto this header
// (populating flags/payload), then returns the full wire bytes (header +
// payload) ready to write out.
func (h *FrameHeader) Serialize() []byte {
	h.flags = 0
	h.body.Serialize(h)

	raw := h.WireHeader()

	out := make([]byte, 0, HeaderSize+len(h.payload))
	out = append(out, raw[:]...)
	out = append(out, h.payload...)

	return out
}
