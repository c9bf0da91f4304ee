package wire

import "errors"

var (
	errShortPadded = errors.New("wire: PADDED frame has no pad-length byte")
	errPadTooLong  = errors.New("wire: pad length exceeds payload")
)
