package server

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"hangman/internal/network"
	"hangman/pkg/logger"
)

// DefaultUsername is used until a USER message arrives
const DefaultUsername = "anonymous"

// Status is the connection state of a session
type Status int32

const (
	StatusActive Status = iota
	StatusDisconnected
)

func (s Status) String() string {
	if s == StatusActive {
		return "ACTIVE"
	}
	return "DISCONNECTED"
}

// Session is the server side of one client connection. Its read loop is the
// only writer of username; a dedicated writer goroutine drains the outbox.
type Session struct {
	id       string
	conn     network.Conn
	hub      *Hub
	outbox   *network.Outbox
	limiter  *rate.Limiter
	logger   *logger.Logger
	status   atomic.Int32
	mu       sync.RWMutex
	username string

	closeOnce  sync.Once
	writerDone chan struct{}
}

// NewSession creates a session for conn. A nil limiter disables inbound
// rate limiting.
func NewSession(conn network.Conn, hub *Hub, outboxLimit int, limiter *rate.Limiter, log *logger.Logger) *Session {
	return &Session{
		id:         uuid.New().String(),
		conn:       conn,
		hub:        hub,
		outbox:     network.NewOutbox(outboxLimit),
		limiter:    limiter,
		logger:     log,
		username:   DefaultUsername,
		writerDone: make(chan struct{}),
	}
}

func (s *Session) ID() string { return s.id }

// Username returns the name announced by the client
func (s *Session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username
}

// Status reports whether the session is still active
func (s *Session) Status() Status {
	return Status(s.status.Load())
}

// Deliver queues lines for the writer goroutine
func (s *Session) Deliver(lines ...string) error {
	return s.outbox.Push(lines...)
}

// Close tears the session down without flushing pending output
func (s *Session) Close() error {
	s.shutdown(false)
	return nil
}

// Serve registers the session, runs the read loop until the connection ends
// and returns once the session is deregistered and its writer has stopped.
func (s *Session) Serve(ctx context.Context) {
	// server shutdown closes the connection, which ends the read loop
	stop := context.AfterFunc(ctx, func() { s.shutdown(false) })
	defer stop()

	s.logger.Info("Session %s started for %s", s.id, s.conn.RemoteAddr())
	go s.writeLoop()

	if err := s.hub.Register(s); err != nil {
		s.logger.Error("Session %s could not join: %v", s.id, err)
		s.shutdown(false)
	} else if s.Status() != StatusActive {
		// closed before registration completed
		s.hub.Deregister(s)
	} else {
		s.readLoop(ctx)
	}

	<-s.writerDone
	s.logger.Info("Session %s (%s) ended", s.id, s.Username())
}

// readNext blocks until the next line is decoded. Malformed lines come back
// wrapped in network.ErrMalformedMessage; any other error is a connection
// failure.
func (s *Session) readNext() (network.Message, error) {
	line, err := s.conn.ReadLine()
	if err != nil {
		return network.Message{}, err
	}
	return network.Decode(line)
}

func (s *Session) readLoop(ctx context.Context) {
	for s.Status() == StatusActive {
		msg, err := s.readNext()
		if errors.Is(err, network.ErrMalformedMessage) {
			s.logger.Warn("Session %s: %v", s.id, err)
			continue
		}
		if err != nil {
			if s.Status() == StatusActive {
				s.logger.Info("Session %s connection lost: %v", s.id, err)
			}
			s.shutdown(false)
			return
		}

		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				s.shutdown(false)
				return
			}
		}

		if !s.dispatch(msg) {
			return
		}
	}
}

// dispatch handles one client message and reports whether to keep reading
func (s *Session) dispatch(msg network.Message) bool {
	switch msg.Type() {
	case network.MsgUser:
		name, ok := msg.Field(0)
		if !ok || name == "" {
			s.logger.Warn("Session %s sent USER without a name", s.id)
			return true
		}
		s.mu.Lock()
		s.username = name
		s.mu.Unlock()
		s.hub.Broadcast(network.NewMessage(network.MsgUser, name))

	case network.MsgGuess:
		guess, ok := msg.Field(0)
		if !ok || guess == "" {
			s.logger.Warn("Session %s sent GUESS without a guess", s.id)
			return true
		}
		s.hub.Guess(s.Username(), guess)

	case network.MsgDisconnect:
		s.hub.Leave(s, s.Username())
		s.shutdown(true)
		return false

	default:
		s.logger.Warn("Session %s: command %q is not known", s.id, msg.Encode())
	}
	return true
}

// shutdown runs once: it marks the session disconnected, deregisters it and
// stops the writer. A graceful shutdown lets the writer flush pending lines
// before the connection closes.
func (s *Session) shutdown(graceful bool) {
	s.closeOnce.Do(func() {
		s.status.Store(int32(StatusDisconnected))
		s.hub.Deregister(s)
		s.outbox.Close()
		if !graceful {
			s.outbox.Discard()
			s.conn.Close()
		}
	})
}

func (s *Session) writeLoop() {
	defer close(s.writerDone)
	defer s.conn.Close()

	for {
		lines, ok := s.outbox.Next()
		if !ok {
			return
		}
		for _, line := range lines {
			if err := s.conn.WriteLine(line); err != nil {
				s.logger.Debug("Session %s write failed: %v", s.id, err)
				s.shutdown(false)
				return
			}
		}
	}
}
