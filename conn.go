package h2core

import "sync"

// ConnState is the connection-level state machine (§4.2): Preface-Pending
// until both sides have exchanged SETTINGS, then Open, until a transport
// failure, a GOAWAY, or an explicit Close moves it to Closed.
type ConnState uint8

const (
	StatePrefacePending ConnState = iota
	StateOpen
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StatePrefacePending:
		return "preface-pending"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// SendStatus reports the outcome of SendNextData.
type SendStatus uint8

const (
	SendNothing SendStatus = iota
	SendSent
)

// SessionDispatcher receives the stream-level events HandleNextFrame
// extracts out of an incoming frame (§4.2). ClientConnection and
// ServerConnection implement this over their own SessionState plus
// whatever stream-creation policy fits their role.
type SessionDispatcher interface {
	NewDataChunk(streamID uint32, b []byte)
	NewHeaders(streamID uint32, hs Headers)
	EndOfStream(streamID uint32)
}

// FrameSender enqueues a fully-built frame header for transmission; the
// implementation handles serialization (§6).
type FrameSender interface {
	SendFrame(frh *FrameHeader) error
}

// FrameReceiver yields the next frame off the wire, header and payload
// already parsed into a typed Frame (§6).
type FrameReceiver interface {
	ReceiveFrame(maxLen int) (*FrameHeader, error)
}

type defaultFrameSender struct{ transport Transport }

func (s *defaultFrameSender) SendFrame(frh *FrameHeader) error {
	return s.transport.SendBytes(frh.Serialize())
}

type defaultFrameReceiver struct{ transport Transport }

func (r *defaultFrameReceiver) ReceiveFrame(maxLen int) (*FrameHeader, error) {
	var raw [HeaderSize]byte

	if err := r.transport.RecvExact(raw[:]); err != nil {
		return nil, err
	}

	frh, err := ParseFrameHeader(raw, maxLen)
	if err != nil {
		return nil, err
	}

	payload := make([]byte, frh.Len())
	if len(payload) > 0 {
		if err := r.transport.RecvExact(payload); err != nil {
			return nil, err
		}
	}

	if err := frh.Complete(payload); err != nil {
		return nil, err
	}

	return frh, nil
}

// GoAwayInfo is the terminal condition recorded when a GOAWAY is observed
// (§4.2: "record and surface as a terminal condition on the next send").
type GoAwayInfo struct {
	LastStreamID uint32
	Code         WireErrorCode
	Debug        []byte
}

// Connection is the connection engine (§4.2): it owns a Transport, the two
// long-lived HPACK contexts (§6), and the Preface-Pending/Open/Closed state
// machine. It is single-threaded and cooperative (§5): every method is a
// blocking, synchronous call, and nothing here spawns a goroutine.
//
// mu guards only the small bookkeeping fields below (state, settings,
// goAway), not the actual transport I/O; the blocking send/receive calls
// run outside the critical section. This lets a caller split reading and
// writing across two goroutines (as asyncclient does) the same way
// golang.org/x/net/http2's ClientConn splits its writer from its readLoop,
// without serializing a slow read behind a concurrent write or vice versa.
type Connection struct {
	transport Transport
	sender    FrameSender
	receiver  FrameReceiver

	hpackEnc HpackContext
	hpackDec HpackContext

	mu    sync.Mutex
	state ConnState

	localSettings ConnectionSettings
	peerSettings  ConnectionSettings

	sentOwnSettings bool
	sawPeerSettings bool

	goAway *GoAwayInfo
}

// NewConnection wraps transport with the default frame sender/receiver and
// a fresh pair of HPACK contexts, starting in StatePrefacePending.
func NewConnection(transport Transport) *Connection {
	return &Connection{
		transport:     transport,
		sender:        &defaultFrameSender{transport: transport},
		receiver:      &defaultFrameReceiver{transport: transport},
		hpackEnc:      NewHpackContext(),
		hpackDec:      NewHpackContext(),
		state:         StatePrefacePending,
		localSettings: DefaultConnectionSettings(),
		peerSettings:  DefaultConnectionSettings(),
	}
}

// State returns the connection's current state.
func (c *Connection) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// GoAway returns the GOAWAY the peer sent, if any.
func (c *Connection) GoAway() (*GoAwayInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.goAway, c.goAway != nil
}

// PeerSettings returns the last SETTINGS this connection observed from the
// peer (or DefaultConnectionSettings, before any arrive).
func (c *Connection) PeerSettings() ConnectionSettings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.peerSettings
}

func (c *Connection) sendTyped(streamID uint32, body Frame) error {
	c.mu.Lock()
	goAway, state := c.goAway, c.state
	c.mu.Unlock()

	if goAway != nil {
		return ErrGoAway
	}
	if state == StateClosed {
		return ErrConnClosed
	}

	frh := NewFrameHeader()
	frh.SetStreamID(streamID)
	frh.SetBody(body)

	if err := c.sender.SendFrame(frh); err != nil {
		c.mu.Lock()
		c.state = StateClosed
		c.mu.Unlock()
		return err
	}

	return nil
}

// SendHeaders HPACK-encodes hs and emits one HEADERS frame with END_HEADERS
// always set and END_STREAM set iff endStream (§4.2). If the encoded block
// does not fit a single frame under the peer's advertised max frame size,
// SendHeaders returns ErrHeaderBlockTooLarge rather than fragmenting it
// across HEADERS+CONTINUATION; see DESIGN.md's Open Questions entry.
func (c *Connection) SendHeaders(hs Headers, streamID uint32, endStream bool) error {
	block, err := c.hpackEnc.Encode(hs)
	if err != nil {
		return err
	}

	c.mu.Lock()
	maxFrameSize := c.peerSettings.MaxFrameSize
	c.mu.Unlock()

	if uint32(len(block)) > maxFrameSize {
		return ErrHeaderBlockTooLarge
	}

	fr, _ := AcquireFrame(FrameTypeHeaders).(*Headers)
	defer ReleaseFrame(fr)

	fr.SetHeaderBlock(block)
	fr.SetEndHeaders(true)
	fr.SetEndStream(endStream)

	return c.sendTyped(streamID, fr)
}

// SendData emits one DATA frame carrying buf with END_STREAM as requested.
// Callers are expected to chunk; SendData never splits buf across frames
// (§4.2).
func (c *Connection) SendData(buf []byte, streamID uint32, endStream bool) error {
	fr, _ := AcquireFrame(FrameTypeData).(*Data)
	defer ReleaseFrame(fr)

	fr.SetPayload(buf)
	fr.SetEndStream(endStream)

	return c.sendTyped(streamID, fr)
}

// SendNextData asks prioritizer for the next ready chunk across ss's
// streams, writing up to chunkSize bytes per DATA frame, and emits it.
// Returns SendNothing without writing anything if the prioritizer has
// nothing ready (§4.2, used by server-side pumping).
func (c *Connection) SendNextData(prioritizer Prioritizer, ss *SessionState, chunkSize int) (SendStatus, error) {
	buf := make([]byte, chunkSize)

	streamID, n, endStream, ok := prioritizer.NextChunk(ss, buf)
	if !ok {
		return SendNothing, nil
	}

	if err := c.SendData(buf[:n], streamID, endStream); err != nil {
		return SendNothing, err
	}

	return SendSent, nil
}

// SendOwnSettings emits a non-ACK SETTINGS frame carrying params. Once both
// SendOwnSettings and AwaitPeerSettings have completed, the connection
// transitions to StateOpen.
func (c *Connection) SendOwnSettings(params []SettingParam) error {
	fr, _ := AcquireFrame(FrameTypeSettings).(*Settings)
	defer ReleaseFrame(fr)

	fr.SetParams(params)

	if err := c.sendTyped(0, fr); err != nil {
		return err
	}

	c.mu.Lock()
	c.sentOwnSettings = true
	c.maybeOpenLocked()
	c.mu.Unlock()

	return nil
}

// ExpectSettings pulls exactly one frame and fails with a PreambleMismatch
// unless it is a non-ACK SETTINGS frame; otherwise it applies the peer's
// settings and enqueues the SETTINGS-ACK, same as HandleNextFrame would.
func (c *Connection) ExpectSettings() error {
	frh, err := c.receiver.ReceiveFrame(c.maxRecvFrameLen())
	if err != nil {
		c.mu.Lock()
		c.state = StateClosed
		c.mu.Unlock()
		return err
	}

	settings, ok := frh.Body().(*Settings)
	if !ok || settings.Ack() {
		c.mu.Lock()
		c.state = StateClosed
		c.mu.Unlock()
		return NewPreambleMismatch("expected a non-ACK SETTINGS frame")
	}

	return c.applyPeerSettings(settings)
}

// AwaitPeerSettings calls ExpectSettings and, on success, marks the peer's
// initial SETTINGS as observed, possibly moving the connection to StateOpen.
func (c *Connection) AwaitPeerSettings() error {
	if err := c.ExpectSettings(); err != nil {
		return err
	}

	c.mu.Lock()
	c.sawPeerSettings = true
	c.maybeOpenLocked()
	c.mu.Unlock()

	return nil
}

// maybeOpenLocked requires c.mu to be held.
func (c *Connection) maybeOpenLocked() {
	if c.sentOwnSettings && c.sawPeerSettings && c.state == StatePrefacePending {
		c.state = StateOpen
	}
}

func (c *Connection) maxRecvFrameLen() int {
	c.mu.Lock()
	maxLen := c.localSettings.MaxFrameSize
	c.mu.Unlock()

	if maxLen == 0 {
		return DefaultMaxFrameSize
	}
	return int(maxLen)
}

func (c *Connection) applyPeerSettings(settings *Settings) error {
	c.mu.Lock()
	for _, p := range settings.Params() {
		c.peerSettings.Apply(p)
	}
	c.mu.Unlock()

	ack, _ := AcquireFrame(FrameTypeSettings).(*Settings)
	defer ReleaseFrame(ack)

	ack.SetAck(true)

	return c.sendTyped(0, ack)
}

func (c *Connection) handlePing(p *Ping) error {
	if p.Ack() {
		return nil
	}

	reply, _ := AcquireFrame(FrameTypePing).(*Ping)
	defer ReleaseFrame(reply)

	reply.SetAck(true)
	reply.SetData(p.Data())

	return c.sendTyped(0, reply)
}

// HandleNextFrame pulls one frame via the receive interface, parses it, and
// dispatches it to session per §4.2's per-type rules. DATA and HEADERS
// notify the session; SETTINGS and PING are answered in place; GOAWAY is
// recorded as a terminal condition; WINDOW_UPDATE, RST_STREAM and unknown
// types are ignored.
func (c *Connection) HandleNextFrame(session SessionDispatcher) error {
	frh, err := c.receiver.ReceiveFrame(c.maxRecvFrameLen())
	if err != nil {
		c.mu.Lock()
		c.state = StateClosed
		c.mu.Unlock()
		return err
	}
	defer ReleaseFrame(frh.Body())

	switch body := frh.Body().(type) {
	case *Data:
		session.NewDataChunk(frh.StreamID(), body.Payload())
		if body.EndStream() {
			session.EndOfStream(frh.StreamID())
		}

	case *Headers:
		if !body.EndHeaders() {
			c.mu.Lock()
			c.state = StateClosed
			c.mu.Unlock()
			return NewProtocolError("HEADERS without END_HEADERS: CONTINUATION assembly is not supported")
		}

		hs, err := c.hpackDec.Decode(body.HeaderBlock())
		if err != nil {
			c.mu.Lock()
			c.state = StateClosed
			c.mu.Unlock()
			return err
		}

		session.NewHeaders(frh.StreamID(), hs)

		if body.EndStream() {
			session.EndOfStream(frh.StreamID())
		}

	case *Settings:
		if body.Ack() {
			return nil
		}
		return c.applyPeerSettings(body)

	case *Ping:
		return c.handlePing(body)

	case *GoAway:
		c.mu.Lock()
		c.goAway = &GoAwayInfo{
			LastStreamID: body.LastStreamID(),
			Code:         body.ErrorCode(),
			Debug:        append([]byte(nil), body.DebugData()...),
		}
		c.mu.Unlock()

	case *WindowUpdate, *RstStream, *Unknown:
		// reserved for extension; the minimal core ignores these (§4.2).
	}

	return nil
}

// SendPreface writes the client connection preface over the transport.
func (c *Connection) SendPreface() error {
	return c.transport.SendBytes([]byte(ClientPreface))
}

// ExpectPreface reads exactly len(ClientPreface) bytes off the transport and
// fails with a PreambleMismatch unless they match (§4.5: "read 24-byte
// client preface literal").
func (c *Connection) ExpectPreface() error {
	buf := make([]byte, len(ClientPreface))

	if err := c.transport.RecvExact(buf); err != nil {
		c.mu.Lock()
		c.state = StateClosed
		c.mu.Unlock()
		return err
	}

	if string(buf) != ClientPreface {
		c.mu.Lock()
		c.state = StateClosed
		c.mu.Unlock()
		return NewPreambleMismatch("unexpected connection preface")
	}

	return nil
}

// Close transitions the connection to StateClosed, sending a GOAWAY with
// code first when the connection is not already closed or GOAWAY'd.
func (c *Connection) Close(code WireErrorCode, lastStreamID uint32) error {
	c.mu.Lock()
	alreadyClosed := c.state == StateClosed
	c.mu.Unlock()

	if alreadyClosed {
		return nil
	}

	fr, _ := AcquireFrame(FrameTypeGoAway).(*GoAway)
	defer ReleaseFrame(fr)

	fr.SetLastStreamID(lastStreamID)
	fr.SetErrorCode(code)

	err := c.sendTyped(0, fr)

	c.mu.Lock()
	c.state = StateClosed
	c.mu.Unlock()

	return err
}
