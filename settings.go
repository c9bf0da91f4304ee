package h2core

import "github.com/hueristiq/h2core/internal/wire"

var _ Frame = (*Settings)(nil)

// Settings parameter identifiers (https://tools.ietf.org/html/rfc7540#section-6.5.2).
const (
	SettingHeaderTableSize      uint16 = 0x1
	SettingEnablePush           uint16 = 0x2
	SettingMaxConcurrentStreams uint16 = 0x3
	SettingInitialWindowSize    uint16 = 0x4
	SettingMaxFrameSize         uint16 = 0x5
	SettingMaxHeaderListSize    uint16 = 0x6
)

// Default and bound values for Settings parameters.
const (
	DefaultHeaderTableSize      uint32 = 4096
	DefaultMaxConcurrentStreams uint32 = 1
	DefaultInitialWindowSize    uint32 = 1<<16 - 1
	MaxWindowSize               uint32 = 1<<31 - 1
	MaxSettingsFrameSize        uint32 = 1<<24 - 1
)

// SettingParam is a single (identifier, value) tuple as it appears on the
// wire inside a SETTINGS frame payload.
type SettingParam struct {
	ID    uint16
	Value uint32
}

// ConnectionSettings holds the humanized view of a peer's SETTINGS,
// per the Data Model (§3): the three parameters this engine actually
// tracks and applies. EnablePush, HeaderTableSize and MaxHeaderListSize are
// parsed (see Settings.Params) but are not surfaced here since nothing in
// this engine consults them.
type ConnectionSettings struct {
	MaxConcurrentStreams uint32
	InitialWindowSize    uint32
	MaxFrameSize         uint32
}

// DefaultConnectionSettings returns the values this engine assumes for a
// peer until its SETTINGS frame is received.
func DefaultConnectionSettings() ConnectionSettings {
	return ConnectionSettings{
		MaxConcurrentStreams: DefaultMaxConcurrentStreams,
		InitialWindowSize:    DefaultInitialWindowSize,
		MaxFrameSize:         DefaultMaxFrameSize,
	}
}

// Apply folds a single wire parameter into the settings it recognizes.
// Unrecognized identifiers are ignored, per RFC 7540 §6.5.2.
func (cs *ConnectionSettings) Apply(p SettingParam) {
	switch p.ID {
	case SettingMaxConcurrentStreams:
		cs.MaxConcurrentStreams = p.Value
	case SettingInitialWindowSize:
		cs.InitialWindowSize = p.Value
	case SettingMaxFrameSize:
		cs.MaxFrameSize = p.Value
	}
}

// Settings is the SETTINGS frame (https://tools.ietf.org/html/rfc7540#section-6.5).
// Flag: ACK (0x1). A non-ACK frame's payload is a sequence of 6-byte tuples;
// an ACK frame's payload must be empty.
type Settings struct {
	ack    bool
	params []SettingParam
}

func (s *Settings) Type() FrameType { return FrameTypeSettings }

func (s *Settings) Reset() {
	s.ack = false
	s.params = s.params[:0]
}

func (s *Settings) Ack() bool     { return s.ack }
func (s *Settings) SetAck(v bool) { s.ack = v }

// Params returns the parameter tuples carried by this frame, in wire order.
func (s *Settings) Params() []SettingParam { return s.params }

// SetParams replaces the parameter tuples this frame carries.
func (s *Settings) SetParams(p []SettingParam) { s.params = append(s.params[:0], p...) }

func (s *Settings) Deserialize(frh *FrameHeader) error {
	if frh.StreamID() != 0 {
		return NewMalformedFrame("SETTINGS frame on nonzero stream")
	}

	payload := frh.Payload()
	s.ack = frh.Flags().Has(FlagAck)

	if s.ack {
		if len(payload) != 0 {
			return NewMalformedFrame("SETTINGS ACK must have an empty payload")
		}
		s.params = s.params[:0]
		return nil
	}

	if len(payload)%6 != 0 {
		return NewMalformedFrame("SETTINGS payload must be a multiple of 6 bytes")
	}

	s.params = s.params[:0]

	for i := 0; i+6 <= len(payload); i += 6 {
		id := uint16(payload[i])<<8 | uint16(payload[i+1])
		value := wire.Uint32(payload[i+2 : i+6])
		s.params = append(s.params, SettingParam{ID: id, Value: value})
	}

	return nil
}

func (s *Settings) Serialize(frh *FrameHeader) {
	if s.ack {
		frh.SetFlags(frh.Flags().Add(FlagAck))
		frh.setPayload(nil)
		return
	}

	payload := make([]byte, 0, len(s.params)*6)

	for _, p := range s.params {
		payload = append(payload, byte(p.ID>>8), byte(p.ID))
		tuple := make([]byte, 4)
		wire.PutUint32(tuple, p.Value)
		payload = append(payload, tuple...)
	}

	frh.setPayload(payload)
}
