package h2core

var (
	_ Frame            = (*Continuation)(nil)
	_ FrameWithHeaders = (*Continuation)(nil)
)

// Continuation is the CONTINUATION frame
// (https://tools.ietf.org/html/rfc7540#section-6.10).
//
// Per §4.1/§9: this implementation parses and serializes a single
// CONTINUATION frame (needed for the frame-codec round-trip property in
// §8), but the connection engine never assembles a multi-frame header
// block out of HEADERS+CONTINUATION — neither on send (SendHeaders returns
// ErrHeaderBlockTooLarge instead) nor on receive (a HEADERS frame with
// END_HEADERS unset is rejected rather than buffered pending CONTINUATION).
// The source this spec was distilled from leaves multi-frame assembly
// underspecified, and guessing at the semantics would be worse than not
// supporting it.
type Continuation struct {
	endHeaders bool
	rawHeaders []byte
}

func (c *Continuation) Type() FrameType { return FrameTypeContinuation }

func (c *Continuation) Reset() {
	c.endHeaders = false
	c.rawHeaders = c.rawHeaders[:0]
}

func (c *Continuation) EndHeaders() bool     { return c.endHeaders }
func (c *Continuation) SetEndHeaders(v bool) { c.endHeaders = v }

func (c *Continuation) HeaderBlock() []byte { return c.rawHeaders }
func (c *Continuation) SetHeaderBlock(b []byte) {
	c.rawHeaders = append(c.rawHeaders[:0], b...)
}

func (c *Continuation) Deserialize(frh *FrameHeader) error {
	if frh.StreamID() == 0 {
		return NewMalformedFrame("CONTINUATION frame on stream 0")
	}

	c.endHeaders = frh.Flags().Has(FlagEndHeaders)
	c.rawHeaders = append(c.rawHeaders[:0], frh.Payload()...)

	return nil
}

func (c *Continuation) Serialize(frh *FrameHeader) {
	if c.endHeaders {
		frh.SetFlags(frh.Flags().Add(FlagEndHeaders))
	}

	frh.setPayload(c.rawHeaders)
}
