package h2core

// SessionState holds an ordered StreamID → Stream mapping (§4.3): insertion
// order is preserved for Iter and HarvestClosed, matching the order streams
// were opened in.
type SessionState struct {
	order []uint32
	byID  map[uint32]Stream
}

// NewSessionState returns an empty SessionState.
func NewSessionState() *SessionState {
	return &SessionState{byID: make(map[uint32]Stream)}
}

// Insert adds s under id. It fails with ErrStreamExists if id is already
// present.
func (ss *SessionState) Insert(id uint32, s Stream) error {
	if _, ok := ss.byID[id]; ok {
		return ErrStreamExists
	}

	ss.byID[id] = s
	ss.order = append(ss.order, id)

	return nil
}

// Get returns the stream registered under id, if any.
func (ss *SessionState) Get(id uint32) (Stream, bool) {
	s, ok := ss.byID[id]
	return s, ok
}

// Delete removes id from the session without regard to its closed state.
func (ss *SessionState) Delete(id uint32) {
	if _, ok := ss.byID[id]; !ok {
		return
	}

	delete(ss.byID, id)

	for i, existing := range ss.order {
		if existing == id {
			ss.order = append(ss.order[:i], ss.order[i+1:]...)
			break
		}
	}
}

// Iter calls fn for every stream in insertion order. fn returning false stops
// iteration early.
func (ss *SessionState) Iter(fn func(id uint32, s Stream) bool) {
	for _, id := range ss.order {
		s, ok := ss.byID[id]
		if !ok {
			continue
		}
		if !fn(id, s) {
			return
		}
	}
}

// HarvestClosed removes and returns, in insertion order, every stream whose
// IsClosed reports true.
func (ss *SessionState) HarvestClosed() []uint32 {
	var closed []uint32

	for _, id := range ss.order {
		s, ok := ss.byID[id]
		if ok && s.IsClosed() {
			closed = append(closed, id)
		}
	}

	for _, id := range closed {
		ss.Delete(id)
	}

	return closed
}

// Len returns the number of streams currently tracked.
func (ss *SessionState) Len() int { return len(ss.order) }
