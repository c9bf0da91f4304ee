package h2core

import (
	"errors"
	"fmt"
)

// Kind classifies an engine-level failure, per the error kinds §7 enumerates.
type Kind uint8

const (
	// IoError wraps a transport failure. Fatal to the connection.
	IoError Kind = iota
	// MalformedFrame is a parse-level invariant violation. Fatal.
	MalformedFrame
	// PreambleMismatch means the wrong first frame, or wrong preface bytes, arrived at
	// initialization. Fatal.
	PreambleMismatch
	// CompressionError means an HPACK block failed to decompress. Fatal.
	CompressionError
	// UnknownStreamID means a frame referenced a stream id not tracked by the session.
	// Not fatal: the frame is dropped. The core does not log it.
	UnknownStreamID
	// ProtocolError is the catch-all for other connection-level violations.
	ProtocolError
	// Other wraps a constructor-time error from a collaborator (e.g. dialing).
	Other
)

func (k Kind) String() string {
	switch k {
	case IoError:
		return "io error"
	case MalformedFrame:
		return "malformed frame"
	case PreambleMismatch:
		return "preamble mismatch"
	case CompressionError:
		return "compression error"
	case UnknownStreamID:
		return "unknown stream id"
	case ProtocolError:
		return "protocol error"
	case Other:
		return "other error"
	}
	return "unknown error kind"
}

// Error is the concrete error type returned by every engine-level operation
// that can fail. It carries a Kind so callers can branch on failure class
// with errors.Is/errors.As instead of string matching.
type Error struct {
	Kind  Kind
	Msg   string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("h2core: %s: %s: %s", e.Kind, e.Msg, e.cause)
	}
	return fmt.Sprintf("h2core: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.cause }

// Is reports whether target is an *Error with the same Kind, so callers can
// write errors.Is(err, &Error{Kind: h2core.MalformedFrame}) to branch on
// failure class without string matching.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return other.Kind == e.Kind
	}
	return false
}

func newErr(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func wrapErr(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, cause: cause}
}

// NewIoError wraps a transport failure as a fatal *Error.
func NewIoError(cause error) *Error { return wrapErr(IoError, "transport failure", cause) }

// NewMalformedFrame reports a frame that violates its variant's wire invariants.
func NewMalformedFrame(msg string) *Error { return newErr(MalformedFrame, msg) }

// NewPreambleMismatch reports a preface/handshake ordering violation.
func NewPreambleMismatch(msg string) *Error { return newErr(PreambleMismatch, msg) }

// NewCompressionError wraps an HPACK decode failure.
func NewCompressionError(cause error) *Error {
	return wrapErr(CompressionError, "HPACK decode failed", cause)
}

// NewProtocolError reports a generic connection-level violation.
func NewProtocolError(msg string) *Error { return newErr(ProtocolError, msg) }

// NewOtherError wraps a collaborator constructor error.
func NewOtherError(cause error) *Error { return wrapErr(Other, "collaborator error", cause) }

// Sentinel errors for conditions that are not wire-protocol violations in
// the §7 Kind taxonomy but still need stable comparison targets.
var (
	// ErrHeaderBlockTooLarge is returned by SendHeaders when the HPACK-encoded
	// header block does not fit a single frame. See the Open Questions entry
	// in DESIGN.md for why this implementation declines to guess at
	// CONTINUATION fragmentation semantics.
	ErrHeaderBlockTooLarge = errors.New("h2core: encoded header block exceeds max frame size")

	// ErrStreamExists is returned by SessionState.Insert when the id is
	// already present.
	ErrStreamExists = errors.New("h2core: stream id already present in session")

	// ErrGoAway is returned by send operations once a GOAWAY has been
	// observed on the connection.
	ErrGoAway = errors.New("h2core: connection received GOAWAY")

	// ErrConnClosed is returned by send operations on a closed connection.
	ErrConnClosed = errors.New("h2core: connection is closed")
)

// WireErrorCode is the u32 error code carried on RST_STREAM and GOAWAY
// frames (https://httpwg.org/specs/rfc7540.html#ErrorCodes). Distinct from
// Kind, which classifies local engine failures, not wire-level codes
// exchanged with the peer.
type WireErrorCode uint32

const (
	ErrCodeNoError            WireErrorCode = 0x0
	ErrCodeProtocolError      WireErrorCode = 0x1
	ErrCodeInternalError      WireErrorCode = 0x2
	ErrCodeFlowControlError   WireErrorCode = 0x3
	ErrCodeSettingsTimeout    WireErrorCode = 0x4
	ErrCodeStreamClosed       WireErrorCode = 0x5
	ErrCodeFrameSizeError     WireErrorCode = 0x6
	ErrCodeRefusedStream      WireErrorCode = 0x7
	ErrCodeCancel             WireErrorCode = 0x8
	ErrCodeCompressionError   WireErrorCode = 0x9
	ErrCodeConnectError       WireErrorCode = 0xa
	ErrCodeEnhanceYourCalm    WireErrorCode = 0xb
	ErrCodeInadequateSecurity WireErrorCode = 0xc
	ErrCodeHTTP11Required     WireErrorCode = 0xd
)

var wireErrorNames = map[WireErrorCode]string{
	ErrCodeNoError:            "NO_ERROR",
	ErrCodeProtocolError:      "PROTOCOL_ERROR",
	ErrCodeInternalError:      "INTERNAL_ERROR",
	ErrCodeFlowControlError:   "FLOW_CONTROL_ERROR",
	ErrCodeSettingsTimeout:    "SETTINGS_TIMEOUT",
	ErrCodeStreamClosed:       "STREAM_CLOSED",
	ErrCodeFrameSizeError:     "FRAME_SIZE_ERROR",
	ErrCodeRefusedStream:      "REFUSED_STREAM",
	ErrCodeCancel:             "CANCEL",
	ErrCodeCompressionError:   "COMPRESSION_ERROR",
	ErrCodeConnectError:       "CONNECT_ERROR",
	ErrCodeEnhanceYourCalm:    "ENHANCE_YOUR_CALM",
	ErrCodeInadequateSecurity: "INADEQUATE_SECURITY",
	ErrCodeHTTP11Required:     "HTTP_1_1_REQUIRED",
}

func (c WireErrorCode) String() string {
	if name, ok := wireErrorNames[c]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN_ERROR(0x%x)", uint32(c))
}
