package h2core

// Stream is the per-stream extension point (§4.3): users may substitute an
// implementation that streams body bytes directly to a file, a channel, or a
// parser instead of buffering them.
type Stream interface {
	// OnHeaders stores a received header block. Called once for the
	// response/request headers and, if called again, for trailers.
	OnHeaders(hs Headers)
	// OnDataChunk appends a received DATA payload.
	OnDataChunk(b []byte)
	// OnEndRemote marks the remote side of the stream closed.
	OnEndRemote()
	// IsClosed reports whether both the local and remote sides are closed.
	IsClosed() bool

	// Headers returns the most recently stored header block, if any.
	Headers() (Headers, bool)
	// Body returns the bytes appended so far via OnDataChunk.
	Body() []byte
	// UserTag returns the caller-supplied tag this stream was created with.
	UserTag() interface{}
}

// DefaultStream is the built-in Stream implementation: it buffers headers
// and body in memory and tracks half-close state locally.
type DefaultStream struct {
	headers   Headers
	hasHeader bool
	body      []byte

	localClosed  bool
	remoteClosed bool

	userTag interface{}

	// PendingData is outbound data the server adapter has staged for this
	// stream but not yet flushed as DATA frames.
	PendingData []byte
}

// NewDefaultStream returns a DefaultStream tagged with userTag, which
// send_request/StartResponse callers use to correlate responses back to
// their own bookkeeping.
func NewDefaultStream(userTag interface{}) *DefaultStream {
	return &DefaultStream{userTag: userTag}
}

func (s *DefaultStream) OnHeaders(hs Headers) {
	s.headers = hs
	s.hasHeader = true
}

func (s *DefaultStream) OnDataChunk(b []byte) {
	s.body = append(s.body, b...)
}

func (s *DefaultStream) OnEndRemote() { s.remoteClosed = true }

// SetLocalClosed marks the local side of the stream closed, for use by
// whichever adapter sent the END_STREAM-bearing frame.
func (s *DefaultStream) SetLocalClosed() { s.localClosed = true }

func (s *DefaultStream) IsClosed() bool { return s.localClosed && s.remoteClosed }

func (s *DefaultStream) Headers() (Headers, bool) { return s.headers, s.hasHeader }

func (s *DefaultStream) Body() []byte { return s.body }

func (s *DefaultStream) UserTag() interface{} { return s.userTag }
