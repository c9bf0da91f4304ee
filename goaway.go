package h2core

import "github.com/hueristiq/h2core/internal/wire"

var _ Frame = (*GoAway)(nil)

// GoAway is the GOAWAY frame (https://tools.ietf.org/html/rfc7540#section-6.8).
// Payload is an 4-byte last-stream-id, a 4-byte WireErrorCode, and optional
// opaque debug data.
type GoAway struct {
	lastStreamID uint32
	code         WireErrorCode
	debugData    []byte
}

func (g *GoAway) Type() FrameType { return FrameTypeGoAway }

func (g *GoAway) Reset() {
	g.lastStreamID = 0
	g.code = ErrCodeNoError
	g.debugData = g.debugData[:0]
}

func (g *GoAway) LastStreamID() uint32     { return g.lastStreamID }
func (g *GoAway) SetLastStreamID(id uint32) { g.lastStreamID = id }

func (g *GoAway) ErrorCode() WireErrorCode     { return g.code }
func (g *GoAway) SetErrorCode(c WireErrorCode) { g.code = c }

func (g *GoAway) DebugData() []byte { return g.debugData }
func (g *GoAway) SetDebugData(b []byte) {
	g.debugData = append(g.debugData[:0], b...)
}

func (g *GoAway) Deserialize(frh *FrameHeader) error {
	if frh.StreamID() != 0 {
		return NewMalformedFrame("GOAWAY frame on nonzero stream")
	}

	payload := frh.Payload()
	if len(payload) < 8 {
		return NewMalformedFrame("GOAWAY payload must be at least 8 bytes")
	}

	g.lastStreamID = wire.StreamID(payload[:4])
	g.code = WireErrorCode(wire.Uint32(payload[4:8]))
	g.debugData = append(g.debugData[:0], payload[8:]...)

	return nil
}

func (g *GoAway) Serialize(frh *FrameHeader) {
	payload := make([]byte, 8+len(g.debugData))
	wire.PutUint32(payload[:4], g.lastStreamID)
	wire.PutUint32(payload[4:8], uint32(g.code))
	copy(payload[8:], g.debugData)

	frh.setPayload(payload)
}
