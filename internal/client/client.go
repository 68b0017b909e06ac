// Package client implements the interactive hangman client
package client

import (
	"errors"
	"fmt"
	"io"

	"hangman/internal/config"
	"hangman/pkg/logger"
)

// Client ties the connection, the display and the input loop together
type Client struct {
	conn     *Connection
	display  *Display
	input    *InputHandler
	logger   *logger.Logger
	host     string
	port     int
	username string
}

// NewClient creates a client for host:port reading commands from in and
// rendering to out. A non-empty username is announced after connecting.
func NewClient(cfg config.Config, host string, port int, username string, in io.Reader, out io.Writer, log *logger.Logger) *Client {
	display := NewDisplay(out)
	return &Client{
		conn:     NewConnection(cfg, log),
		display:  display,
		input:    NewInputHandler(in, out, display),
		logger:   log,
		host:     host,
		port:     port,
		username: username,
	}
}

// Start connects and runs the input loop until the player quits or input
// ends. A lost connection is shown by the display as soon as the listener
// sees it; the loop itself returns ErrNotConnected on the next command that
// sends.
func (c *Client) Start() error {
	c.display.PrintBanner()
	c.logger.Info("Client starting...")

	c.display.PrintInfo(fmt.Sprintf("Connecting to %s:%d...", c.host, c.port))
	if err := c.conn.Connect(c.host, c.port, c.display); err != nil {
		c.display.PrintError(fmt.Sprintf("Failed to connect to server: %v", err))
		return err
	}
	defer c.Close()

	if c.username != "" {
		if err := c.conn.SendUsername(c.username); err != nil {
			return err
		}
	}
	c.display.PrintHelp()

	return c.runMainLoop()
}

func (c *Client) runMainLoop() error {
	for {
		cmd, err := c.input.ReadCommand()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		switch cmd.Kind {
		case CmdHelp:
			c.display.PrintHelp()
			continue
		case CmdQuit:
			c.display.PrintInfo("Thanks for playing!")
			return nil
		case CmdUser:
			err = c.conn.SendUsername(cmd.Arg)
		case CmdGuess:
			err = c.conn.SendGuess(cmd.Arg)
		}

		if errors.Is(err, ErrNotConnected) {
			c.display.PrintError("Not connected to server")
			return err
		}
	}
}

// Close disconnects from the server if still connected
func (c *Client) Close() error {
	err := c.conn.Disconnect()
	if errors.Is(err, ErrNotConnected) {
		return nil
	}
	return err
}
