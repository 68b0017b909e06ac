// Package server implements the TCP server for the multiplayer hangman game
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"

	"golang.org/x/time/rate"

	"hangman/internal/config"
	"hangman/internal/network"
	"hangman/pkg/logger"
)

// Server accepts player connections and wires them to the shared hub
type Server struct {
	cfg         config.Config
	address     string
	listener    net.Listener
	gateway     *http.Server
	gatewayAddr net.Addr
	hub         *Hub
	logger      *logger.Logger
	isRunning   atomic.Bool
	ctx         context.Context
	cancel      context.CancelFunc
	sessions    sync.WaitGroup
	mu          sync.Mutex
}

// NewServer creates a server for cfg driving round
func NewServer(cfg config.Config, round RoundController, log *logger.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:     cfg,
		address: cfg.Address(),
		hub:     NewHub(round, log),
		logger:  log,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Hub exposes the session registry
func (s *Server) Hub() *Hub {
	return s.hub
}

// Addr returns the bound TCP address, or nil before Listen
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Start listens and serves until Stop is called
func (s *Server) Start() error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve()
}

// Listen binds the TCP listener (and the WebSocket gateway when configured)
// and starts the first round, so early connections find a NEWGAME to replay.
func (s *Server) Listen() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	if s.cfg.WSAddr != "" {
		if err := s.startGateway(); err != nil {
			listener.Close()
			return err
		}
	}

	s.isRunning.Store(true)
	s.StartRound()
	s.logger.Info("Server started and listening on %s", listener.Addr())
	return nil
}

// Serve accepts connections until the listener is closed
func (s *Server) Serve() error {
	for s.isRunning.Load() {
		conn, err := s.listener.Accept()
		if err != nil {
			if !s.isRunning.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.logger.Error("Failed to accept connection: %v", err)
			continue
		}
		s.handleClient(conn)
	}
	return nil
}

// StartRound begins a new round and broadcasts NEWGAME
func (s *Server) StartRound() {
	s.hub.StartRound()
}

// Stop closes the listener, the gateway and every session
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.isRunning.Swap(false) {
		s.mu.Unlock()
		return nil
	}
	listener, gateway := s.listener, s.gateway
	s.mu.Unlock()
	s.cancel()

	if listener != nil {
		listener.Close()
	}
	if gateway != nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.WriteTimeout)
		gateway.Shutdown(ctx)
		cancel()
	}

	s.hub.CloseAll()
	s.sessions.Wait()
	s.logger.Info("Server stopped")
	return nil
}

// handleClient applies socket options and starts a session goroutine
func (s *Server) handleClient(conn net.Conn) {
	if tcp, ok := conn.(*net.TCPConn); ok {
		if err := tcp.SetLinger(int(s.cfg.Linger.Seconds())); err != nil {
			s.logger.Warn("Failed to set linger on %s: %v", conn.RemoteAddr(), err)
		}
	}
	s.logger.Info("New client connected from %s", conn.RemoteAddr())

	if !s.trackSession() {
		s.logger.Warn("Server stopping, rejecting %s", conn.RemoteAddr())
		conn.Close()
		return
	}
	lineConn := network.NewTCPConn(conn, s.cfg.IdleTimeout, s.cfg.WriteTimeout)
	go func() {
		defer s.sessions.Done()
		s.serveConn(lineConn)
	}()
}

// trackSession counts a new session unless Stop has begun. Stop flips
// isRunning under the same lock before it waits, so no session is added
// once the wait starts.
func (s *Server) trackSession() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning.Load() {
		return false
	}
	s.sessions.Add(1)
	return true
}

// serveConn runs one session to completion on the calling goroutine
func (s *Server) serveConn(conn network.Conn) {
	session := NewSession(conn, s.hub, s.cfg.OutboxLimit, s.newLimiter(), s.logger)
	session.Serve(s.ctx)
}

func (s *Server) newLimiter() *rate.Limiter {
	if s.cfg.Rate <= 0 {
		return nil
	}
	burst := s.cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(s.cfg.Rate), burst)
}
