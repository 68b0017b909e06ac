package client

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hangman/internal/config"
	"hangman/pkg/logger"
)

type recordingHandler struct {
	mu        sync.Mutex
	connected []string
	messages  []string
	lost      []error
	lostCh    chan struct{}
	msgCh     chan string
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{
		lostCh: make(chan struct{}, 4),
		msgCh:  make(chan string, 64),
	}
}

func (h *recordingHandler) OnConnected(addr string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connected = append(h.connected, addr)
}

func (h *recordingHandler) OnMessage(raw string) {
	h.mu.Lock()
	h.messages = append(h.messages, raw)
	h.mu.Unlock()
	h.msgCh <- raw
}

func (h *recordingHandler) OnConnectionLost(err error) {
	h.mu.Lock()
	h.lost = append(h.lost, err)
	h.mu.Unlock()
	h.lostCh <- struct{}{}
}

func (h *recordingHandler) lostCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.lost)
}

func (h *recordingHandler) getMessages() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.messages...)
}

func (h *recordingHandler) expectMessage(t *testing.T, want string) {
	t.Helper()
	select {
	case got := <-h.msgCh:
		assert.Equal(t, want, got)
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %q", want)
	}
}

func (h *recordingHandler) expectLost(t *testing.T) {
	t.Helper()
	select {
	case <-h.lostCh:
	case <-time.After(2 * time.Second):
		t.Fatal("connection loss was not reported")
	}
}

// fakeServer accepts a single connection on a loopback port
type fakeServer struct {
	listener net.Listener
	accepted chan net.Conn
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	s := &fakeServer{listener: ln, accepted: make(chan net.Conn, 1)}
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			s.accepted <- conn
		}
	}()
	t.Cleanup(func() { ln.Close() })
	return s
}

func (s *fakeServer) port() int {
	return s.listener.Addr().(*net.TCPAddr).Port
}

func (s *fakeServer) accept(t *testing.T) (net.Conn, *bufio.Reader) {
	t.Helper()
	select {
	case conn := <-s.accepted:
		t.Cleanup(func() { conn.Close() })
		return conn, bufio.NewReader(conn)
	case <-time.After(2 * time.Second):
		t.Fatal("client never connected")
		return nil, nil
	}
}

func readLine(t *testing.T, conn net.Conn, r *bufio.Reader) string {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	return strings.TrimRight(line, "\r\n")
}

func newTestConnection() *Connection {
	cfg := config.Default()
	cfg.ConnectTimeout = time.Second
	cfg.IdleTimeout = 5 * time.Second
	cfg.WriteTimeout = time.Second
	return NewConnection(cfg, logger.NewWithWriter("TEST", io.Discard))
}

func TestConnection_SendAndReceive(t *testing.T) {
	srv := newFakeServer(t)
	handler := newRecordingHandler()
	c := newTestConnection()

	require.NoError(t, c.Connect("127.0.0.1", srv.port(), handler))
	conn, r := srv.accept(t)
	assert.True(t, c.Connected())
	assert.Len(t, handler.connected, 1)

	require.NoError(t, c.SendUsername("alice"))
	assert.Equal(t, "USER##alice", readLine(t, conn, r))

	fmt.Fprint(conn, "BROADCAST##USER##alice\n")
	handler.expectMessage(t, "BROADCAST##USER##alice")

	require.NoError(t, c.SendGuess("e"))
	assert.Equal(t, "GUESS##e", readLine(t, conn, r))
}

func TestConnection_SendsPreserveOrder(t *testing.T) {
	srv := newFakeServer(t)
	c := newTestConnection()
	require.NoError(t, c.Connect("127.0.0.1", srv.port(), newRecordingHandler()))
	conn, r := srv.accept(t)

	for i := 0; i < 50; i++ {
		require.NoError(t, c.SendGuess(fmt.Sprintf("w%d", i)))
	}
	for i := 0; i < 50; i++ {
		assert.Equal(t, fmt.Sprintf("GUESS##w%d", i), readLine(t, conn, r))
	}
}

func TestConnection_DisconnectFlushesAndStaysQuiet(t *testing.T) {
	srv := newFakeServer(t)
	handler := newRecordingHandler()
	c := newTestConnection()
	require.NoError(t, c.Connect("127.0.0.1", srv.port(), handler))
	conn, r := srv.accept(t)

	require.NoError(t, c.SendGuess("x"))
	require.NoError(t, c.Disconnect())

	assert.Equal(t, "GUESS##x", readLine(t, conn, r))
	assert.Equal(t, "DISCONNECT", readLine(t, conn, r))
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, err := r.ReadString('\n')
	assert.ErrorIs(t, err, io.EOF)

	assert.False(t, c.Connected())
	assert.ErrorIs(t, c.SendGuess("y"), ErrNotConnected)
	assert.ErrorIs(t, c.Disconnect(), ErrNotConnected)

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, handler.lostCount())
}

func TestConnection_ServerCloseReportsLostOnce(t *testing.T) {
	srv := newFakeServer(t)
	handler := newRecordingHandler()
	c := newTestConnection()
	require.NoError(t, c.Connect("127.0.0.1", srv.port(), handler))
	conn, _ := srv.accept(t)

	conn.Close()
	handler.expectLost(t)
	assert.False(t, c.Connected())
	assert.ErrorIs(t, c.SendGuess("e"), ErrNotConnected)

	require.NoError(t, c.Disconnect())
	assert.Equal(t, 1, handler.lostCount())
}

func TestConnection_UnknownTagEndsListener(t *testing.T) {
	srv := newFakeServer(t)
	handler := newRecordingHandler()
	c := newTestConnection()
	require.NoError(t, c.Connect("127.0.0.1", srv.port(), handler))
	conn, _ := srv.accept(t)

	fmt.Fprint(conn, "HELLO##there\nBROADCAST##USER##bob\n")
	handler.expectLost(t)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, handler.lostCount())
	assert.Empty(t, handler.getMessages())
}

func TestConnection_NonBroadcastFrameIsForwarded(t *testing.T) {
	srv := newFakeServer(t)
	handler := newRecordingHandler()
	c := newTestConnection()
	require.NoError(t, c.Connect("127.0.0.1", srv.port(), handler))
	conn, _ := srv.accept(t)

	fmt.Fprint(conn, "user##bob\n")
	handler.expectMessage(t, "user##bob")
	assert.True(t, c.Connected())
}

func TestConnection_ConnectErrors(t *testing.T) {
	srv := newFakeServer(t)
	c := newTestConnection()
	require.NoError(t, c.Connect("127.0.0.1", srv.port(), newRecordingHandler()))
	srv.accept(t)
	assert.ErrorIs(t, c.Connect("127.0.0.1", srv.port(), newRecordingHandler()), ErrAlreadyConnected)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	other := newTestConnection()
	assert.Error(t, other.Connect("127.0.0.1", port, newRecordingHandler()))
	assert.False(t, other.Connected())
}
