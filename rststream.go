package h2core

import "github.com/hueristiq/h2core/internal/wire"

var _ Frame = (*RstStream)(nil)

// RstStream is the RST_STREAM frame (https://tools.ietf.org/html/rfc7540#section-6.4).
// Payload is always exactly 4 bytes: a WireErrorCode.
type RstStream struct {
	code WireErrorCode
}

func (r *RstStream) Type() FrameType { return FrameTypeRstStream }

func (r *RstStream) Reset() {
	r.code = ErrCodeNoError
}

func (r *RstStream) ErrorCode() WireErrorCode     { return r.code }
func (r *RstStream) SetErrorCode(c WireErrorCode) { r.code = c }

func (r *RstStream) Deserialize(frh *FrameHeader) error {
	if frh.StreamID() == 0 {
		return NewMalformedFrame("RST_STREAM frame on stream 0")
	}

	payload := frh.Payload()
	if len(payload) != 4 {
		return NewMalformedFrame("RST_STREAM payload must be exactly 4 bytes")
	}

	r.code = WireErrorCode(wire.Uint32(payload))

	return nil
}

func (r *RstStream) Serialize(frh *FrameHeader) {
	payload := make([]byte, 4)
	wire.PutUint32(payload, uint32(r.code))
	frh.setPayload(payload)
}
