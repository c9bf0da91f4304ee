package h2core

import "sync"

var _ SessionDispatcher = (*ClientConnection)(nil)

// HarvestedResponse pairs a completed stream's UserTag with the Response
// built from the bytes its Stream accumulated (§4.4: "on harvest, deliver
// (user_tag, response) to the caller").
type HarvestedResponse struct {
	UserTag  interface{}
	Response Response
}

// ClientConnection is the client session adapter (§4.4): it owns a
// Connection plus a SessionState of client-initiated streams, and enforces
// that stream ids it allocates are monotone and odd.
//
// mu guards session: in the synchronous core, one goroutine drives
// everything and the lock is uncontended, but asyncclient.Client drives
// SendRequest from its service loop and Pump's dispatch from a concurrent
// reader goroutine, so session needs the same protection Connection's
// state does.
type ClientConnection struct {
	conn         *Connection
	mu           sync.Mutex
	session      *SessionState
	nextStreamID uint32
	newStream    func(userTag interface{}) Stream
}

// NewClientConnection wraps conn. newStream, if nil, defaults to
// NewDefaultStream; pass a custom factory to use a Stream implementation
// other than DefaultStream for every request this adapter sends.
func NewClientConnection(conn *Connection, newStream func(userTag interface{}) Stream) *ClientConnection {
	if newStream == nil {
		newStream = func(userTag interface{}) Stream { return NewDefaultStream(userTag) }
	}

	return &ClientConnection{
		conn:         conn,
		session:      NewSessionState(),
		nextStreamID: 1,
		newStream:    newStream,
	}
}

// Connection returns the underlying connection engine.
func (cc *ClientConnection) Connection() *Connection { return cc.conn }

// Handshake performs the client side of the connection preface: send the
// client preface bytes, then our SETTINGS, then await the peer's.
func (cc *ClientConnection) Handshake(params []SettingParam) error {
	if err := cc.conn.SendPreface(); err != nil {
		return err
	}
	if err := cc.conn.SendOwnSettings(params); err != nil {
		return err
	}
	return cc.conn.AwaitPeerSettings()
}

// SendRequest allocates the next odd stream id, registers a new stream
// tagged with userTag, and sends headers (with END_STREAM iff body is
// empty), followed by one DATA frame with END_STREAM set when body is not
// empty (§4.4).
func (cc *ClientConnection) SendRequest(hs Headers, body []byte, userTag interface{}) (uint32, error) {
	cc.mu.Lock()
	streamID := cc.nextStreamID
	cc.nextStreamID += 2
	stream := cc.newStream(userTag)
	err := cc.session.Insert(streamID, stream)
	cc.mu.Unlock()

	if err != nil {
		return 0, err
	}

	endStream := len(body) == 0

	if err := cc.conn.SendHeaders(hs, streamID, endStream); err != nil {
		return 0, err
	}

	if !endStream {
		if err := cc.conn.SendData(body, streamID, true); err != nil {
			return 0, err
		}
	}

	if ds, ok := stream.(*DefaultStream); ok {
		ds.SetLocalClosed()
	}

	return streamID, nil
}

// Pump delegates one HandleNextFrame call to the connection and returns
// every response that became fully closed as a result.
func (cc *ClientConnection) Pump() ([]HarvestedResponse, error) {
	if err := cc.conn.HandleNextFrame(cc); err != nil {
		return nil, err
	}
	return cc.harvest(), nil
}

func (cc *ClientConnection) harvest() []HarvestedResponse {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	var closedIDs []uint32

	cc.session.Iter(func(id uint32, s Stream) bool {
		if s.IsClosed() {
			closedIDs = append(closedIDs, id)
		}
		return true
	})

	if len(closedIDs) == 0 {
		return nil
	}

	out := make([]HarvestedResponse, 0, len(closedIDs))

	for _, id := range closedIDs {
		s, ok := cc.session.Get(id)
		if !ok {
			continue
		}

		hs, _ := s.Headers()
		out = append(out, HarvestedResponse{
			UserTag: s.UserTag(),
			Response: Response{
				StreamID: id,
				Headers:  hs,
				Body:     s.Body(),
			},
		})
	}

	for _, id := range closedIDs {
		cc.session.Delete(id)
	}

	return out
}

func (cc *ClientConnection) NewDataChunk(streamID uint32, b []byte) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if s, ok := cc.session.Get(streamID); ok {
		s.OnDataChunk(b)
	}
}

func (cc *ClientConnection) NewHeaders(streamID uint32, hs Headers) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if s, ok := cc.session.Get(streamID); ok {
		s.OnHeaders(hs)
	}
}

func (cc *ClientConnection) EndOfStream(streamID uint32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if s, ok := cc.session.Get(streamID); ok {
		s.OnEndRemote()
	}
}
