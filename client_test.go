package h2core

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClientServerPipe() (*Connection, net.Conn) {
	a, b := net.Pipe()
	return NewConnection(NewConnTransport(a)), b
}

// drainPreface reads and discards exactly len(ClientPreface) bytes from raw,
// standing in for a peer that doesn't itself validate the preface.
func drainPreface(t *testing.T, raw net.Conn) {
	t.Helper()
	buf := make([]byte, len(ClientPreface))
	_, err := raw.Read(buf)
	require.NoError(t, err)
}

func readFrameHeaderRaw(t *testing.T, raw net.Conn) (kind FrameType, payload []byte) {
	kind, _, payload = readFrameHeaderRawWithFlags(t, raw)
	return kind, payload
}

func readFrameHeaderRawWithFlags(t *testing.T, raw net.Conn) (kind FrameType, flags FrameFlags, payload []byte) {
	t.Helper()

	var hdr [HeaderSize]byte
	_, err := readFullRaw(raw, hdr[:])
	require.NoError(t, err)

	frh, err := ParseFrameHeader(hdr, 0)
	require.NoError(t, err)

	payload = make([]byte, frh.Len())
	if len(payload) > 0 {
		_, err = readFullRaw(raw, payload)
		require.NoError(t, err)
	}

	return frh.Type(), frh.Flags(), payload
}

func readFullRaw(conn net.Conn, buf []byte) (int, error) {
	read := 0
	for read < len(buf) {
		n, err := conn.Read(buf[read:])
		read += n
		if read >= len(buf) {
			return read, nil
		}
		if err != nil {
			return read, err
		}
	}
	return read, nil
}

// Scenario 1: Client-init success.
func TestClientInitSuccess(t *testing.T) {
	conn, raw := newClientServerPipe()
	defer raw.Close()

	result := make(chan error, 1)
	go func() {
		cc := NewClientConnection(conn, nil)
		result <- cc.Handshake(nil)
	}()

	drainPreface(t, raw)

	// Consume the client's own outbound SETTINGS.
	kind, _ := readFrameHeaderRaw(t, raw)
	require.Equal(t, FrameTypeSettings, kind)

	// Server sends an empty SETTINGS frame.
	fr := AcquireFrame(FrameTypeSettings).(*Settings)
	frh := NewFrameHeader()
	frh.SetBody(fr)
	_, err := raw.Write(frh.Serialize())
	require.NoError(t, err)

	// The client answers with exactly one SETTINGS-ACK. net.Pipe is
	// unbuffered, so it must be read before Handshake can return.
	kind, flags, _ := readFrameHeaderRawWithFlags(t, raw)
	assert.Equal(t, FrameTypeSettings, kind)
	assert.True(t, flags.Has(FlagAck))

	select {
	case err := <-result:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out")
	}
}

// Scenario 2: Client-init failure.
func TestClientInitFailureOnNonSettingsFirstFrame(t *testing.T) {
	conn, raw := newClientServerPipe()
	defer raw.Close()

	result := make(chan error, 1)
	go func() {
		cc := NewClientConnection(conn, nil)
		result <- cc.Handshake(nil)
	}()

	drainPreface(t, raw)
	readFrameHeaderRaw(t, raw) // consume the client's own SETTINGS

	d := AcquireFrame(FrameTypeData).(*Data)
	d.SetPayload(nil)
	frh := NewFrameHeader()
	frh.SetStreamID(1)
	frh.SetBody(d)
	_, err := raw.Write(frh.Serialize())
	require.NoError(t, err)

	select {
	case err := <-result:
		require.Error(t, err)
		var herr *Error
		require.ErrorAs(t, err, &herr)
		assert.Equal(t, PreambleMismatch, herr.Kind)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out")
	}
}

// Scenario 3: Send GET, no body.
func TestSendRequestGetNoBody(t *testing.T) {
	conn, raw := newClientServerPipe()
	defer raw.Close()

	cc := NewClientConnection(conn, nil)

	sendDone := make(chan error, 1)
	go func() {
		_, err := cc.SendRequest(Headers{
			{Name: ":method", Value: "GET"},
			{Name: ":path", Value: "/"},
		}, nil, "tag1")
		sendDone <- err
	}()

	kind, _ := readFrameHeaderRaw(t, raw)
	require.NoError(t, <-sendDone)

	assert.Equal(t, FrameTypeHeaders, kind)
}

// Scenario 4: Send POST with small body.
func TestSendRequestPostWithBody(t *testing.T) {
	conn, raw := newClientServerPipe()
	defer raw.Close()

	cc := NewClientConnection(conn, nil)

	sendDone := make(chan error, 1)
	go func() {
		_, err := cc.SendRequest(Headers{{Name: ":method", Value: "POST"}}, []byte{1, 2, 3}, "tag2")
		sendDone <- err
	}()

	headersKind, _ := readFrameHeaderRaw(t, raw)
	dataKind, dataPayload := readFrameHeaderRaw(t, raw)

	require.NoError(t, <-sendDone)

	assert.Equal(t, FrameTypeHeaders, headersKind)
	assert.Equal(t, FrameTypeData, dataKind)
	assert.Equal(t, []byte{1, 2, 3}, dataPayload)
}

// Scenario 5: Client session demultiplex.
func TestClientSessionDemultiplex(t *testing.T) {
	conn, _ := newClientServerPipe()
	cc := NewClientConnection(conn, nil)

	require.NoError(t, cc.session.Insert(1, NewDefaultStream("s1")))
	require.NoError(t, cc.session.Insert(3, NewDefaultStream("s3")))

	cc.NewDataChunk(1, []byte{1, 2, 3})
	cc.NewDataChunk(1, []byte{4})
	cc.NewHeaders(1, Headers{{Name: ":method", Value: "GET"}})
	cc.NewDataChunk(3, []byte{100})
	cc.EndOfStream(1)

	s1, _ := cc.session.Get(1)
	s3, _ := cc.session.Get(3)

	assert.Equal(t, []byte{1, 2, 3, 4}, s1.Body())
	hs, ok := s1.Headers()
	require.True(t, ok)
	assert.Equal(t, ":method", hs[0].Name)
	assert.Equal(t, []byte{100}, s3.Body())

	ds1 := s1.(*DefaultStream)
	assert.True(t, ds1.remoteClosed)
	ds3 := s3.(*DefaultStream)
	assert.False(t, ds3.remoteClosed)

	// Stream 1 is not also locally closed, so it isn't harvested yet.
	harvested := cc.session.HarvestClosed()
	assert.Empty(t, harvested)

	ds1.SetLocalClosed()
	harvested = cc.session.HarvestClosed()
	require.Equal(t, []uint32{1}, harvested)

	var remaining []uint32
	cc.session.Iter(func(id uint32, s Stream) bool {
		remaining = append(remaining, id)
		return true
	})
	assert.Equal(t, []uint32{3}, remaining)
}

// Scenario 7: PING ACK round-trip.
func TestPingAckRoundTripOverWire(t *testing.T) {
	conn, raw := newClientServerPipe()
	defer raw.Close()

	result := make(chan error, 1)
	go func() {
		result <- conn.HandleNextFrame(newRecordingSession())
	}()

	p := AcquireFrame(FrameTypePing).(*Ping)
	p.SetData([8]byte{1, 2, 3, 4, 5, 6, 7, 8})
	frh := NewFrameHeader()
	frh.SetBody(p)
	_, err := raw.Write(frh.Serialize())
	require.NoError(t, err)

	// The ACK is written before HandleNextFrame returns, and net.Pipe is
	// unbuffered, so read it first.
	kind, flags, payload := readFrameHeaderRawWithFlags(t, raw)
	require.Equal(t, FrameTypePing, kind)
	assert.True(t, flags.Has(FlagAck))
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, payload)

	select {
	case err := <-result:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out")
	}
}
