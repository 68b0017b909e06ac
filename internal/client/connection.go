package client

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"

	"hangman/internal/config"
	"hangman/internal/network"
	"hangman/pkg/logger"
)

var (
	// ErrNotConnected is returned when sending without a live connection
	ErrNotConnected = errors.New("not connected to server")
	// ErrAlreadyConnected is returned by Connect on a live connection
	ErrAlreadyConnected = errors.New("already connected to server")
)

// OutputHandler receives what the listener reads from the server
type OutputHandler interface {
	OnConnected(addr string)
	// OnMessage receives the still-encoded line
	OnMessage(raw string)
	// OnConnectionLost is called at most once per connection and never after
	// a local Disconnect
	OnConnectionLost(err error)
}

// link is the state of one established connection
type link struct {
	conn       *network.TCPConn
	outbox     *network.Outbox
	handler    OutputHandler
	alive      atomic.Bool
	writerDone chan struct{}
}

// Connection is the client side of the protocol. Sends are queued in order
// and written by a dedicated goroutine; a listener goroutine hands every
// inbound line to the OutputHandler.
type Connection struct {
	cfg     config.Config
	logger  *logger.Logger
	mu      sync.Mutex
	current *link
}

// NewConnection creates an unconnected client using the dial, idle and
// write timeouts of cfg
func NewConnection(cfg config.Config, log *logger.Logger) *Connection {
	return &Connection{cfg: cfg, logger: log}
}

// Connect dials host:port and starts the listener
func (c *Connection) Connect(host string, port int, handler OutputHandler) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil && c.current.alive.Load() {
		return ErrAlreadyConnected
	}

	address := net.JoinHostPort(host, strconv.Itoa(port))
	raw, err := net.DialTimeout("tcp", address, c.cfg.ConnectTimeout)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", address, err)
	}

	l := &link{
		conn:       network.NewTCPConn(raw, c.cfg.IdleTimeout, c.cfg.WriteTimeout),
		outbox:     network.NewOutbox(0),
		handler:    handler,
		writerDone: make(chan struct{}),
	}
	l.alive.Store(true)
	c.current = l

	c.logger.Info("Connected to server at %s", address)
	handler.OnConnected(l.conn.RemoteAddr())

	go c.writeLoop(l)
	go c.listen(l)
	return nil
}

// Connected reports whether the connection is live
func (c *Connection) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil && c.current.alive.Load()
}

// Send queues one message. It does not wait for the write.
func (c *Connection) Send(msgType network.MessageType, body ...string) error {
	c.mu.Lock()
	l := c.current
	c.mu.Unlock()

	if l == nil || !l.alive.Load() {
		return ErrNotConnected
	}
	if err := l.outbox.Push(network.NewMessage(msgType, body...).Encode()); err != nil {
		return ErrNotConnected
	}
	return nil
}

// SendUsername announces the player's name
func (c *Connection) SendUsername(name string) error {
	return c.Send(network.MsgUser, name)
}

// SendGuess submits a letter or a whole word
func (c *Connection) SendGuess(guess string) error {
	return c.Send(network.MsgGuess, guess)
}

// Disconnect sends DISCONNECT, waits for every queued line to be written
// and closes the socket. The listener stops without reporting a lost
// connection.
func (c *Connection) Disconnect() error {
	c.mu.Lock()
	l := c.current
	c.current = nil
	c.mu.Unlock()

	if l == nil {
		return ErrNotConnected
	}

	l.alive.Store(false)
	l.outbox.Push(network.NewMessage(network.MsgDisconnect).Encode())
	l.outbox.Close()
	<-l.writerDone

	if err := l.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	c.logger.Info("Disconnected from server")
	return nil
}

func (c *Connection) writeLoop(l *link) {
	defer close(l.writerDone)

	for {
		lines, ok := l.outbox.Next()
		if !ok {
			return
		}
		for _, line := range lines {
			if err := l.conn.WriteLine(line); err != nil {
				c.fail(l, err)
				return
			}
		}
	}
}

// listen forwards inbound lines until the connection ends. A line with an
// unknown tag ends the connection; a known tag that is not BROADCAST is
// logged and still forwarded.
func (c *Connection) listen(l *link) {
	for {
		line, err := l.conn.ReadLine()
		if err != nil {
			c.fail(l, err)
			return
		}

		msg, err := network.Decode(line)
		if err != nil {
			c.logger.Error("Failed to decode server message %q: %v", line, err)
			c.fail(l, err)
			return
		}
		if msg.Type() != network.MsgBroadcast {
			c.logger.Warn("Received %s frame outside a broadcast", msg.Type())
		}
		l.handler.OnMessage(line)
	}
}

// fail reports a lost connection once, unless Disconnect got there first
func (c *Connection) fail(l *link, err error) {
	if !l.alive.CompareAndSwap(true, false) {
		return
	}
	c.logger.Error("Lost connection to server: %v", err)
	l.outbox.Close()
	l.outbox.Discard()
	l.conn.Close()
	l.handler.OnConnectionLost(err)
}
