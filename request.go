package h2core

import "strings"

// Header is a single (name, value) pair from a decoded HEADERS block (§3).
// A name beginning with ":" is a pseudo-header (":method", ":path",
// ":status", ...); those must precede regular headers per RFC 7540 §8.1.2.1,
// a rule this package does not itself enforce on encode (callers order their
// own Header slice) but does expect on decode.
type Header struct {
	Name  string
	Value string
}

// IsPseudo reports whether h is a pseudo-header.
func (h Header) IsPseudo() bool { return strings.HasPrefix(h.Name, ":") }

// Headers is an ordered list of Header pairs.
type Headers []Header

// Get returns the value of the first header named name, and whether it was
// present.
func (hs Headers) Get(name string) (string, bool) {
	for _, h := range hs {
		if h.Name == name {
			return h.Value, true
		}
	}
	return "", false
}

// Request is a single outbound or inbound HTTP/2 request as the client and
// server adapters exchange it (§3). An empty Body means the HEADERS frame
// alone carries END_STREAM; a non-empty Body is sent as one DATA frame
// following HEADERS, per the §8 send_request scenarios.
type Request struct {
	StreamID uint32
	Headers  Headers
	Body     []byte
}

// Response is the server-side counterpart to Request, with the same
// END_STREAM semantics.
type Response struct {
	StreamID uint32
	Headers  Headers
	Body     []byte
}
