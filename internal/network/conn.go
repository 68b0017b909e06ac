package network

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"sync"
	"time"
)

// Conn carries protocol lines in both directions. ReadLine is called by one
// goroutine; WriteLine is safe for concurrent use.
type Conn interface {
	ReadLine() (string, error)
	WriteLine(line string) error
	RemoteAddr() string
	Close() error
}

// TCPConn is a line-oriented Conn over a stream socket
type TCPConn struct {
	conn         net.Conn
	scanner      *bufio.Scanner
	writeMu      sync.Mutex
	writer       *bufio.Writer
	idleTimeout  time.Duration
	writeTimeout time.Duration
}

// NewTCPConn wraps conn. A positive idleTimeout bounds each ReadLine, a
// positive writeTimeout bounds each WriteLine.
func NewTCPConn(conn net.Conn, idleTimeout, writeTimeout time.Duration) *TCPConn {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 512), maxFrameSize)
	return &TCPConn{
		conn:         conn,
		scanner:      scanner,
		writer:       bufio.NewWriter(conn),
		idleTimeout:  idleTimeout,
		writeTimeout: writeTimeout,
	}
}

// ReadLine blocks until a full line, EOF, or the idle deadline. An
// unterminated final line is still delivered; a line longer than
// maxFrameSize fails with bufio.ErrTooLong.
func (c *TCPConn) ReadLine() (string, error) {
	if c.idleTimeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.idleTimeout)); err != nil {
			return "", err
		}
	}
	if c.scanner.Scan() {
		return c.scanner.Text(), nil
	}
	if err := c.scanner.Err(); err != nil {
		return "", fmt.Errorf("read line: %w", err)
	}
	return "", io.EOF
}

// WriteLine writes line followed by a newline and flushes
func (c *TCPConn) WriteLine(line string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.writeTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return err
		}
	}
	if _, err := c.writer.WriteString(line + "\n"); err != nil {
		return err
	}
	return c.writer.Flush()
}

func (c *TCPConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

func (c *TCPConn) Close() error {
	return c.conn.Close()
}
