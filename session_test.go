package h2core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStateInsertRejectsDuplicateID(t *testing.T) {
	ss := NewSessionState()

	require.NoError(t, ss.Insert(1, NewDefaultStream(nil)))
	err := ss.Insert(1, NewDefaultStream(nil))

	assert.ErrorIs(t, err, ErrStreamExists)
}

func TestSessionStateIterIsInsertionOrder(t *testing.T) {
	ss := NewSessionState()

	require.NoError(t, ss.Insert(5, NewDefaultStream("five")))
	require.NoError(t, ss.Insert(1, NewDefaultStream("one")))
	require.NoError(t, ss.Insert(3, NewDefaultStream("three")))

	var order []uint32
	ss.Iter(func(id uint32, s Stream) bool {
		order = append(order, id)
		return true
	})

	assert.Equal(t, []uint32{5, 1, 3}, order)
}

func TestSessionStateHarvestClosedRemovesOnlyClosedStreams(t *testing.T) {
	ss := NewSessionState()

	open := NewDefaultStream(nil)
	closed1 := NewDefaultStream(nil)
	closed1.OnEndRemote()
	closed1.SetLocalClosed()
	closed2 := NewDefaultStream(nil)
	closed2.OnEndRemote()
	closed2.SetLocalClosed()

	require.NoError(t, ss.Insert(1, closed1))
	require.NoError(t, ss.Insert(2, open))
	require.NoError(t, ss.Insert(3, closed2))

	harvested := ss.HarvestClosed()

	assert.Equal(t, []uint32{1, 3}, harvested)
	assert.Equal(t, 1, ss.Len())

	_, ok := ss.Get(2)
	assert.True(t, ok)
	_, ok = ss.Get(1)
	assert.False(t, ok)
}

func TestDefaultStreamTrailersReplaceHeaders(t *testing.T) {
	s := NewDefaultStream(nil)

	s.OnHeaders(Headers{{Name: ":status", Value: "200"}})
	s.OnHeaders(Headers{{Name: "x-trailer", Value: "done"}})

	hs, ok := s.Headers()
	require.True(t, ok)
	assert.Equal(t, Headers{{Name: "x-trailer", Value: "done"}}, hs)
}

func TestDefaultStreamIsClosedRequiresBothSides(t *testing.T) {
	s := NewDefaultStream(nil)
	assert.False(t, s.IsClosed())

	s.OnEndRemote()
	assert.False(t, s.IsClosed())

	s.SetLocalClosed()
	assert.True(t, s.IsClosed())
}

func TestRoundRobinPrioritizerPicksFirstReadyStream(t *testing.T) {
	ss := NewSessionState()

	s1 := NewDefaultStream(nil)
	s2 := NewDefaultStream(nil)
	s2.PendingData = []byte("abc")
	s2.SetLocalClosed()

	require.NoError(t, ss.Insert(1, s1))
	require.NoError(t, ss.Insert(2, s2))

	p := NewRoundRobinPrioritizer()
	buf := make([]byte, 16)

	streamID, n, endStream, ok := p.NextChunk(ss, buf)

	require.True(t, ok)
	assert.Equal(t, uint32(2), streamID)
	assert.Equal(t, []byte("abc"), buf[:n])
	assert.True(t, endStream)
	assert.Empty(t, s2.PendingData)
}

func TestRoundRobinPrioritizerReportsNothingWhenNoneReady(t *testing.T) {
	ss := NewSessionState()
	require.NoError(t, ss.Insert(1, NewDefaultStream(nil)))

	p := NewRoundRobinPrioritizer()
	_, _, _, ok := p.NextChunk(ss, make([]byte, 8))

	assert.False(t, ok)
}
