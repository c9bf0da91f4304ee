package h2core

import "github.com/hueristiq/h2core/internal/wire"

var (
	_ Frame            = (*Headers)(nil)
	_ FrameWithHeaders = (*Headers)(nil)
)

// FrameWithHeaders is implemented by frames that carry an HPACK-encoded
// header block fragment: HEADERS and CONTINUATION.
type FrameWithHeaders interface {
	HeaderBlock() []byte
}

// Headers is the HEADERS frame (https://tools.ietf.org/html/rfc7540#section-6.2).
//
// Flags: END_STREAM (0x1), END_HEADERS (0x4), PADDED (0x8), PRIORITY (0x20).
//
// Per §9's Open Questions note, this implementation never splits an
// outbound header block across HEADERS+CONTINUATION; see SendHeaders.
// Inbound PRIORITY fields are parsed and kept for round-trip fidelity but
// never consulted (stream priority is an explicit non-goal).
type Headers struct {
	endStream   bool
	endHeaders  bool
	hasPriority bool
	streamDep   uint32
	weight      uint8
	rawHeaders  []byte
}

func (h *Headers) Type() FrameType { return FrameTypeHeaders }

func (h *Headers) Reset() {
	h.endStream = false
	h.endHeaders = false
	h.hasPriority = false
	h.streamDep = 0
	h.weight = 0
	h.rawHeaders = h.rawHeaders[:0]
}

func (h *Headers) EndStream() bool     { return h.endStream }
func (h *Headers) SetEndStream(v bool) { h.endStream = v }

func (h *Headers) EndHeaders() bool     { return h.endHeaders }
func (h *Headers) SetEndHeaders(v bool) { h.endHeaders = v }

// HeaderBlock returns the raw, still HPACK-encoded header block fragment.
func (h *Headers) HeaderBlock() []byte { return h.rawHeaders }

// SetHeaderBlock replaces the raw HPACK-encoded header block fragment.
func (h *Headers) SetHeaderBlock(b []byte) { h.rawHeaders = append(h.rawHeaders[:0], b...) }

func (h *Headers) Deserialize(frh *FrameHeader) error {
	if frh.StreamID() == 0 {
		return NewMalformedFrame("HEADERS frame on stream 0")
	}

	flags := frh.Flags()
	payload := frh.Payload()

	if flags.Has(FlagPadded) {
		var err error
		payload, err = wire.CutPadding(payload)
		if err != nil {
			return NewMalformedFrame("HEADERS: " + err.Error())
		}
	}

	if flags.Has(FlagPriority) {
		if len(payload) < 5 {
			return NewMalformedFrame("HEADERS: PRIORITY flag set but payload too short")
		}
		h.hasPriority = true
		h.streamDep = wire.StreamID(payload[:4])
		h.weight = payload[4]
		payload = payload[5:]
	}

	h.endStream = flags.Has(FlagEndStream)
	h.endHeaders = flags.Has(FlagEndHeaders)
	h.rawHeaders = append(h.rawHeaders[:0], payload...)

	return nil
}

func (h *Headers) Serialize(frh *FrameHeader) {
	if h.endStream {
		frh.SetFlags(frh.Flags().Add(FlagEndStream))
	}
	if h.endHeaders {
		frh.SetFlags(frh.Flags().Add(FlagEndHeaders))
	}

	payload := h.rawHeaders

	if h.hasPriority {
		frh.SetFlags(frh.Flags().Add(FlagPriority))

		prio := make([]byte, 5)
		wire.PutUint32(prio[:4], h.streamDep)
		prio[4] = h.weight

		payload = append(prio, payload...)
	}

	frh.setPayload(payload)
}
