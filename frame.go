package h2core

import "sync"

// FrameType is the one-byte frame type field (https://httpwg.org/specs/rfc7540.html#FrameTypes).
type FrameType uint8

const (
	FrameTypeData         FrameType = 0x0
	FrameTypeHeaders      FrameType = 0x1
	FrameTypePriority     FrameType = 0x2
	FrameTypeRstStream    FrameType = 0x3
	FrameTypeSettings     FrameType = 0x4
	FrameTypePushPromise  FrameType = 0x5
	FrameTypePing         FrameType = 0x6
	FrameTypeGoAway       FrameType = 0x7
	FrameTypeWindowUpdate FrameType = 0x8
	FrameTypeContinuation FrameType = 0x9
)

func (t FrameType) String() string {
	switch t {
	case FrameTypeData:
		return "DATA"
	case FrameTypeHeaders:
		return "HEADERS"
	case FrameTypePriority:
		return "PRIORITY"
	case FrameTypeRstStream:
		return "RST_STREAM"
	case FrameTypeSettings:
		return "SETTINGS"
	case FrameTypePushPromise:
		return "PUSH_PROMISE"
	case FrameTypePing:
		return "PING"
	case FrameTypeGoAway:
		return "GOAWAY"
	case FrameTypeWindowUpdate:
		return "WINDOW_UPDATE"
	case FrameTypeContinuation:
		return "CONTINUATION"
	}
	return "UNKNOWN"
}

// FrameFlags is the one-byte flags field. Meaning is per-type; see the
// Flag* constants declared alongside each frame's file.
type FrameFlags uint8

const (
	FlagAck        FrameFlags = 0x1
	FlagEndStream  FrameFlags = 0x1
	FlagEndHeaders FrameFlags = 0x4
	FlagPadded     FrameFlags = 0x8
	FlagPriority   FrameFlags = 0x20
)

// Has reports whether f contains every bit set in bit.
func (f FrameFlags) Has(bit FrameFlags) bool { return f&bit == bit }

// Add returns f with bit set.
func (f FrameFlags) Add(bit FrameFlags) FrameFlags { return f | bit }

// Frame is the typed payload carried by a FrameHeader. Every concrete frame
// variant (Data, Headers, Settings, Ping, GoAway, RstStream, WindowUpdate,
// Continuation, Unknown) implements this.
//
// Deserialize/Serialize round-trip through a *FrameHeader: Deserialize reads
// frh.Flags()/frh.StreamID()/the raw payload and populates the receiver;
// Serialize writes flags and payload back onto frh. Deserialize must never
// panic on malformed input — it reports failure via error.
type Frame interface {
	Type() FrameType
	Reset()
	Deserialize(frh *FrameHeader) error
	Serialize(frh *FrameHeader)
}

var framePools = map[FrameType]*sync.Pool{
	FrameTypeData:         {New: func() interface{} { return &Data{} }},
	FrameTypeHeaders:      {New: func() interface{} { return &Headers{} }},
	FrameTypeRstStream:    {New: func() interface{} { return &RstStream{} }},
	FrameTypeSettings:     {New: func() interface{} { return &Settings{} }},
	FrameTypePing:         {New: func() interface{} { return &Ping{} }},
	FrameTypeGoAway:       {New: func() interface{} { return &GoAway{} }},
	FrameTypeWindowUpdate: {New: func() interface{} { return &WindowUpdate{} }},
	FrameTypeContinuation: {New: func() interface{} { return &Continuation{} }},
}

// AcquireFrame returns a pooled, reset Frame of the given type. Types outside
// the implemented variant set (§4.1's "Unknown types parse into a passthrough
// variant") get an *Unknown.
func AcquireFrame(t FrameType) Frame {
	pool, ok := framePools[t]
	if !ok {
		u := &Unknown{}
		u.kind = t
		return u
	}

	fr := pool.Get().(Frame)
	fr.Reset()
	return fr
}

// ReleaseFrame returns fr to its type's pool. Safe to call with an *Unknown,
// which is simply dropped (unknown types are not pooled).
func ReleaseFrame(fr Frame) {
	if fr == nil {
		return
	}

	pool, ok := framePools[fr.Type()]
	if !ok {
		return
	}

	fr.Reset()
	pool.Put(fr)
}
