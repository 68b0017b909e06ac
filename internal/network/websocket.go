package network

import (
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Maximum inbound line or frame size; a protocol line is far smaller.
const maxFrameSize = 4096

// WSConn is a Conn over a WebSocket where each text frame is one line
type WSConn struct {
	ws           *websocket.Conn
	writeMu      sync.Mutex
	idleTimeout  time.Duration
	writeTimeout time.Duration
}

func NewWSConn(ws *websocket.Conn, idleTimeout, writeTimeout time.Duration) *WSConn {
	ws.SetReadLimit(maxFrameSize)
	return &WSConn{
		ws:           ws,
		idleTimeout:  idleTimeout,
		writeTimeout: writeTimeout,
	}
}

func (c *WSConn) ReadLine() (string, error) {
	if c.idleTimeout > 0 {
		if err := c.ws.SetReadDeadline(time.Now().Add(c.idleTimeout)); err != nil {
			return "", err
		}
	}
	_, data, err := c.ws.ReadMessage()
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func (c *WSConn) WriteLine(line string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.writeTimeout > 0 {
		if err := c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return err
		}
	}
	return c.ws.WriteMessage(websocket.TextMessage, []byte(line))
}

func (c *WSConn) RemoteAddr() string {
	return c.ws.RemoteAddr().String()
}

func (c *WSConn) Close() error {
	return c.ws.Close()
}
