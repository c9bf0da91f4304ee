package h2core

import "io"

// ClientPreface is the connection preface every client must send before
// any frame (https://tools.ietf.org/html/rfc7540#section-3.5).
const ClientPreface = "PRI * HTTP/2.0\r\n\r\nSM\r\n\r\n"

// WritePreface writes the client connection preface to w.
func WritePreface(w io.Writer) error {
	_, err := io.WriteString(w, ClientPreface)
	if err != nil {
		return NewIoError(err)
	}
	return nil
}

// ReadPreface reads len(ClientPreface) bytes from r and reports whether they
// match the expected preface. A short read is reported as an IoError; a
// full read that does not match the preface is reported as a
// PreambleMismatch.
func ReadPreface(r io.Reader) error {
	buf := make([]byte, len(ClientPreface))

	if _, err := io.ReadFull(r, buf); err != nil {
		return NewIoError(err)
	}

	if string(buf) != ClientPreface {
		return NewPreambleMismatch("unexpected connection preface")
	}

	return nil
}
