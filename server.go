package h2core

var _ SessionDispatcher = (*ServerConnection)(nil)

// ServerDataChunkSize is how many bytes of staged response body
// SendNextData draws into a single DATA frame (§4.5).
const ServerDataChunkSize = 8 << 10

// StreamFactory mints a new Stream given a peer-initiated stream id
// (§4.5): the server adapter calls it whenever HEADERS arrives for a
// stream id it has not seen before.
type StreamFactory interface {
	NewStream(streamID uint32) Stream
}

// StreamFactoryFunc adapts a function to a StreamFactory.
type StreamFactoryFunc func(streamID uint32) Stream

func (f StreamFactoryFunc) NewStream(streamID uint32) Stream { return f(streamID) }

// DefaultStreamFactory mints a *DefaultStream per new stream id, tagged
// with the stream id itself.
var DefaultStreamFactory StreamFactory = StreamFactoryFunc(func(streamID uint32) Stream {
	return NewDefaultStream(streamID)
})

// ServerConnection is the server session adapter (§4.5): it owns a
// Connection, a SessionState, and a StreamFactory. On HEADERS for an
// unknown id it mints a stream via the factory and stores the headers; on
// HEADERS for an id already present, the headers are set as trailers.
type ServerConnection struct {
	conn        *Connection
	session     *SessionState
	factory     StreamFactory
	prioritizer Prioritizer
}

// NewServerConnection wraps conn with factory (DefaultStreamFactory if nil)
// and a RoundRobinPrioritizer.
func NewServerConnection(conn *Connection, factory StreamFactory) *ServerConnection {
	if factory == nil {
		factory = DefaultStreamFactory
	}

	return &ServerConnection{
		conn:        conn,
		session:     NewSessionState(),
		factory:     factory,
		prioritizer: NewRoundRobinPrioritizer(),
	}
}

// Connection returns the underlying connection engine.
func (sc *ServerConnection) Connection() *Connection { return sc.conn }

// Session returns the server's session state, for inspecting or staging
// outbound data on streams directly.
func (sc *ServerConnection) Session() *SessionState { return sc.session }

// Initialize performs the server side of the connection preface: read the
// 24-byte client preface, send our own SETTINGS, then await the client's
// (§4.5). Any deviation yields a PreambleMismatch.
func (sc *ServerConnection) Initialize(params []SettingParam) error {
	if err := sc.conn.ExpectPreface(); err != nil {
		return err
	}
	if err := sc.conn.SendOwnSettings(params); err != nil {
		return err
	}
	return sc.conn.AwaitPeerSettings()
}

// StartResponse forwards to the connection's SendHeaders.
func (sc *ServerConnection) StartResponse(hs Headers, streamID uint32, endStream bool) error {
	if err := sc.conn.SendHeaders(hs, streamID, endStream); err != nil {
		return err
	}

	if endStream {
		if s, ok := sc.session.Get(streamID); ok {
			if ds, ok := s.(*DefaultStream); ok {
				ds.SetLocalClosed()
			}
		}
	}

	return nil
}

// SendNextData forwards to the connection with the server's round-robin
// prioritizer, drawing up to ServerDataChunkSize bytes per DATA frame
// (§4.5).
func (sc *ServerConnection) SendNextData() (SendStatus, error) {
	return sc.conn.SendNextData(sc.prioritizer, sc.session, ServerDataChunkSize)
}

// Pump delegates one HandleNextFrame call to the connection, then harvests
// every stream that became fully closed.
func (sc *ServerConnection) Pump() ([]uint32, error) {
	if err := sc.conn.HandleNextFrame(sc); err != nil {
		return nil, err
	}
	return sc.session.HarvestClosed(), nil
}

func (sc *ServerConnection) NewDataChunk(streamID uint32, b []byte) {
	if s, ok := sc.session.Get(streamID); ok {
		s.OnDataChunk(b)
	}
}

func (sc *ServerConnection) NewHeaders(streamID uint32, hs Headers) {
	if s, ok := sc.session.Get(streamID); ok {
		// Already present: this HEADERS block is trailers.
		s.OnHeaders(hs)
		return
	}

	stream := sc.factory.NewStream(streamID)
	stream.OnHeaders(hs)

	_ = sc.session.Insert(streamID, stream)
}

func (sc *ServerConnection) EndOfStream(streamID uint32) {
	if s, ok := sc.session.Get(streamID); ok {
		s.OnEndRemote()
	}
}
