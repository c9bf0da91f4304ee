package h2core

// Prioritizer decides which stream's pending outbound data to drain next
// (§4.6). Real flow control and weighted prioritization are explicit
// non-goals; this interface exists so they can be added later without
// touching the connection engine.
type Prioritizer interface {
	// NextChunk scans the session for a stream with outbound data, writes up
	// to len(buf) bytes of it into buf, and reports how the write went. ok is
	// false if no stream currently has outbound data.
	NextChunk(ss *SessionState, buf []byte) (streamID uint32, n int, endStream bool, ok bool)
}

var _ Prioritizer = (*RoundRobinPrioritizer)(nil)

// RoundRobinPrioritizer is the provided Prioritizer: it scans streams in
// insertion order and pops the first one with outbound data staged on it.
type RoundRobinPrioritizer struct{}

// NewRoundRobinPrioritizer returns a RoundRobinPrioritizer.
func NewRoundRobinPrioritizer() *RoundRobinPrioritizer { return &RoundRobinPrioritizer{} }

func (p *RoundRobinPrioritizer) NextChunk(ss *SessionState, buf []byte) (streamID uint32, n int, endStream bool, ok bool) {
	ss.Iter(func(id uint32, s Stream) bool {
		ds, isDefault := s.(*DefaultStream)
		if !isDefault || len(ds.PendingData) == 0 {
			return true
		}

		n = copy(buf, ds.PendingData)
		ds.PendingData = ds.PendingData[n:]

		streamID = id
		ok = true
		endStream = len(ds.PendingData) == 0 && ds.localClosed

		return false
	})

	return streamID, n, endStream, ok
}
