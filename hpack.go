package h2core

import (
	"bytes"

	"golang.org/x/net/http2/hpack"
)

// HpackContext is the pluggable HPACK collaborator (§6): HEADERS and
// CONTINUATION frames carry an opaque, still-compressed header block; the
// connection engine hands that block to an HpackContext rather than
// understanding RFC 7541 itself.
type HpackContext interface {
	// Encode renders hs as an HPACK-encoded block.
	Encode(hs Headers) ([]byte, error)
	// Decode parses an HPACK-encoded block back into Headers. Decoding is
	// stateful: the dynamic table built up across calls on the same
	// HpackContext must match the peer's, so one HpackContext must be used
	// per connection direction and never shared across connections.
	Decode(block []byte) (Headers, error)
}

// defaultHpackContext wraps golang.org/x/net/http2/hpack's Encoder/Decoder.
type defaultHpackContext struct {
	encBuf *bytes.Buffer
	enc    *hpack.Encoder
	dec    *hpack.Decoder
}

// NewHpackContext returns an HpackContext backed by golang.org/x/net/http2/hpack,
// with the dynamic table size both sides default to.
func NewHpackContext() HpackContext {
	buf := &bytes.Buffer{}

	ctx := &defaultHpackContext{
		encBuf: buf,
		enc:    hpack.NewEncoder(buf),
	}
	ctx.dec = hpack.NewDecoder(DefaultHeaderTableSize, nil)

	return ctx
}

func (c *defaultHpackContext) Encode(hs Headers) ([]byte, error) {
	c.encBuf.Reset()

	for _, h := range hs {
		if err := c.enc.WriteField(hpack.HeaderField{Name: h.Name, Value: h.Value}); err != nil {
			return nil, NewCompressionError(err)
		}
	}

	out := make([]byte, c.encBuf.Len())
	copy(out, c.encBuf.Bytes())

	return out, nil
}

func (c *defaultHpackContext) Decode(block []byte) (Headers, error) {
	fields, err := c.dec.DecodeFull(block)
	if err != nil {
		return nil, NewCompressionError(err)
	}

	hs := make(Headers, len(fields))
	for i, f := range fields {
		hs[i] = Header{Name: f.Name, Value: f.Value}
	}

	return hs, nil
}
