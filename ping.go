package h2core

var _ Frame = (*Ping)(nil)

// Ping is the PING frame (https://tools.ietf.org/html/rfc7540#section-6.7).
// Flag: ACK (0x1). Payload is always exactly 8 opaque bytes.
type Ping struct {
	ack  bool
	data [8]byte
}

func (p *Ping) Type() FrameType { return FrameTypePing }

func (p *Ping) Reset() {
	p.ack = false
	p.data = [8]byte{}
}

func (p *Ping) Ack() bool     { return p.ack }
func (p *Ping) SetAck(v bool) { p.ack = v }
func (p *Ping) Data() [8]byte { return p.data }

// SetData sets the 8-byte opaque payload.
func (p *Ping) SetData(b [8]byte) { p.data = b }

func (p *Ping) Deserialize(frh *FrameHeader) error {
	if frh.StreamID() != 0 {
		return NewMalformedFrame("PING frame on nonzero stream")
	}
	if len(frh.Payload()) != 8 {
		return NewMalformedFrame("PING payload must be exactly 8 bytes")
	}

	p.ack = frh.Flags().Has(FlagAck)
	copy(p.data[:], frh.Payload())

	return nil
}

func (p *Ping) Serialize(frh *FrameHeader) {
	if p.ack {
		frh.SetFlags(frh.Flags().Add(FlagAck))
	}

	frh.setPayload(p.data[:])
}
