// Package wire holds the low-level big-endian byte helpers shared by the
// frame codec. Kept separate from the frame types themselves, the way the
// teacher keeps its own byte-twiddling helpers in a dedicated http2utils
// package instead of scattering them across frame files.
package wire

import (
	"crypto/rand"
)

// PutUint24 encodes n into the first 3 bytes of b, big-endian.
func PutUint24(b []byte, n uint32) {
	_ = b[2]
	b[0] = byte(n >> 16)
	b[1] = byte(n >> 8)
	b[2] = byte(n)
}

// Uint24 decodes the first 3 bytes of b as a big-endian uint24.
func Uint24(b []byte) uint32 {
	_ = b[2]
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

// PutUint32 encodes n into the first 4 bytes of b, big-endian.
func PutUint32(b []byte, n uint32) {
	_ = b[3]
	b[0] = byte(n >> 24)
	b[1] = byte(n >> 16)
	b[2] = byte(n >> 8)
	b[3] = byte(n)
}

// Uint32 decodes the first 4 bytes of b as a big-endian uint32.
func Uint32(b []byte) uint32 {
	_ = b[3]
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// AppendUint32 appends n to dst, big-endian.
func AppendUint32(dst []byte, n uint32) []byte {
	return append(dst, byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
}

// StreamID decodes a 31-bit stream id, masking off the reserved top bit.
func StreamID(b []byte) uint32 {
	return Uint32(b) & (1<<31 - 1)
}

// CutPadding strips PADDED-flag framing: the first byte of payload is the
// pad length L, and the final L bytes of payload (after the pad-length
// byte) are padding. Returns the data bytes with pad-length byte and
// padding removed.
func CutPadding(payload []byte) ([]byte, error) {
	if len(payload) == 0 {
		return nil, errShortPadded
	}

	padLen := int(payload[0])
	rest := payload[1:]

	if padLen > len(rest) {
		return nil, errPadTooLong
	}

	return rest[:len(rest)-padLen], nil
}

// AddPadding prepends padLen as the pad-length byte and appends that many
// random bytes to b, mirroring the teacher's http2utils.AddPadding but using
// crypto/rand since the pad bytes are discarded by the peer on receipt and
// there is no hot-path allocation budget to protect here.
func AddPadding(b []byte, padLen byte) []byte {
	out := make([]byte, 0, len(b)+int(padLen)+1)
	out = append(out, padLen)
	out = append(out, b...)

	pad := make([]byte, padLen)
	_, _ = rand.Read(pad)

	return append(out, pad...)
}
