package h2core

import (
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newConnPair returns two Connections wired together over a loopback TCP
// connection. Unlike net.Pipe, TCP buffers writes, so both ends can send
// their SETTINGS (and SETTINGS-ACK) before the other end reads them.
func newConnPair() (client, server *Connection) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		panic(err)
	}
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		b, err := ln.Accept()
		if err != nil {
			panic(err)
		}
		accepted <- b
	}()

	a, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		panic(err)
	}

	return NewConnection(NewConnTransport(a)), NewConnection(NewConnTransport(<-accepted))
}

func handshakeBoth(t *testing.T, client, server *Connection) {
	t.Helper()

	errs := make(chan error, 2)

	go func() {
		if err := client.SendPreface(); err != nil {
			errs <- err
			return
		}
		if err := client.SendOwnSettings(nil); err != nil {
			errs <- err
			return
		}
		if err := client.AwaitPeerSettings(); err != nil {
			errs <- err
			return
		}
		// Consume the server's SETTINGS-ACK so the next read sees the next frame.
		errs <- client.HandleNextFrame(newRecordingSession())
	}()

	go func() {
		if err := server.ExpectPreface(); err != nil {
			errs <- err
			return
		}
		if err := server.SendOwnSettings(nil); err != nil {
			errs <- err
			return
		}
		if err := server.AwaitPeerSettings(); err != nil {
			errs <- err
			return
		}
		// Consume the client's SETTINGS-ACK so the next read sees the next frame.
		errs <- server.HandleNextFrame(newRecordingSession())
	}()

	for i := 0; i < 2; i++ {
		select {
		case err := <-errs:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("handshake timed out")
		}
	}
}

func TestConnectionHandshakeReachesOpen(t *testing.T) {
	client, server := newConnPair()
	handshakeBoth(t, client, server)

	assert.Equal(t, StateOpen, client.State())
	assert.Equal(t, StateOpen, server.State())
}

type recordingSession struct {
	dataChunks map[uint32][]byte
	headers    map[uint32]Headers
	ended      map[uint32]bool
}

func newRecordingSession() *recordingSession {
	return &recordingSession{
		dataChunks: map[uint32][]byte{},
		headers:    map[uint32]Headers{},
		ended:      map[uint32]bool{},
	}
}

func (s *recordingSession) NewDataChunk(streamID uint32, b []byte) {
	s.dataChunks[streamID] = append(s.dataChunks[streamID], b...)
}

func (s *recordingSession) NewHeaders(streamID uint32, hs Headers) {
	s.headers[streamID] = hs
}

func (s *recordingSession) EndOfStream(streamID uint32) {
	s.ended[streamID] = true
}

func TestSendHeadersThenDataDispatchesToSession(t *testing.T) {
	client, server := newConnPair()
	handshakeBoth(t, client, server)

	session := newRecordingSession()
	done := make(chan error, 1)

	go func() {
		if err := server.HandleNextFrame(session); err != nil {
			done <- err
			return
		}
		done <- server.HandleNextFrame(session)
	}()

	require.NoError(t, client.SendHeaders(Headers{{Name: ":method", Value: "GET"}}, 1, false))
	require.NoError(t, client.SendData([]byte("payload"), 1, true))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for dispatch")
	}

	require.Contains(t, session.headers, uint32(1))
	assert.Equal(t, ":method", session.headers[1][0].Name)
	assert.Equal(t, []byte("payload"), session.dataChunks[1])
	assert.True(t, session.ended[1])
}

func TestSendHeadersTooLargeIsRejected(t *testing.T) {
	client, server := newConnPair()
	handshakeBoth(t, client, server)

	var hs Headers
	for i := 0; i < 5000; i++ {
		hs = append(hs, Header{Name: "x-padding-header", Value: "some-unique-value-to-defeat-hpack-compression-" + strconv.Itoa(i)})
	}

	err := client.SendHeaders(hs, 1, true)
	require.ErrorIs(t, err, ErrHeaderBlockTooLarge)

	_ = server
}

func TestPingIsAnsweredWithAck(t *testing.T) {
	client, server := newConnPair()
	handshakeBoth(t, client, server)

	clientDone := make(chan error, 1)
	go func() {
		clientDone <- client.HandleNextFrame(newRecordingSession())
	}()

	fr := AcquireFrame(FrameTypePing).(*Ping)
	fr.SetData([8]byte{9, 9, 9, 9, 9, 9, 9, 9})
	frh := NewFrameHeader()
	frh.SetBody(fr)

	serverSendDone := make(chan error, 1)
	go func() {
		serverSendDone <- server.sender.SendFrame(frh)
	}()

	ackCh := make(chan *FrameHeader, 1)
	ackErr := make(chan error, 1)
	go func() {
		ack, err := server.receiver.ReceiveFrame(DefaultMaxFrameSize)
		if err != nil {
			ackErr <- err
			return
		}
		ackCh <- ack
	}()

	select {
	case err := <-clientDone:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for ping dispatch")
	}

	select {
	case err := <-serverSendDone:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out sending ping")
	}

	select {
	case ack := <-ackCh:
		got, ok := ack.Body().(*Ping)
		require.True(t, ok)
		assert.True(t, got.Ack())
		assert.Equal(t, [8]byte{9, 9, 9, 9, 9, 9, 9, 9}, got.Data())
	case err := <-ackErr:
		t.Fatalf("error receiving ack: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for ack")
	}
}

func TestGoAwayRecordedAsTerminalCondition(t *testing.T) {
	client, server := newConnPair()
	handshakeBoth(t, client, server)

	done := make(chan error, 1)
	go func() {
		done <- client.HandleNextFrame(newRecordingSession())
	}()

	go func() {
		_ = server.Close(ErrCodeNoError, 0)
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for GOAWAY dispatch")
	}

	info, ok := client.GoAway()
	require.True(t, ok)
	assert.Equal(t, ErrCodeNoError, info.Code)
}
