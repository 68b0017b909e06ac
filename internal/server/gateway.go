package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gorilla/websocket"

	"hangman/internal/network"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// GatewayAddr returns the bound WebSocket gateway address, or nil
func (s *Server) GatewayAddr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gateway == nil {
		return nil
	}
	return s.gatewayAddr
}

// startGateway serves /ws, /health and /stats on cfg.WSAddr
func (s *Server) startGateway() error {
	listener, err := net.Listen("tcp", s.cfg.WSAddr)
	if err != nil {
		return fmt.Errorf("failed to start gateway: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.wsHandler)
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/stats", s.statsHandler)

	gateway := &http.Server{Handler: mux}

	s.mu.Lock()
	s.gateway = gateway
	s.gatewayAddr = listener.Addr()
	s.mu.Unlock()

	go func() {
		if err := gateway.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Gateway error: %v", err)
		}
	}()
	s.logger.Info("WebSocket gateway listening on %s", listener.Addr())
	return nil
}

// wsHandler upgrades the request and runs a session over it. Each text frame
// carries exactly one protocol line.
func (s *Server) wsHandler(w http.ResponseWriter, r *http.Request) {
	if !s.trackSession() {
		http.Error(w, "server stopping", http.StatusServiceUnavailable)
		return
	}
	defer s.sessions.Done()

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed: %v", err)
		return
	}
	s.logger.Info("New WebSocket client connected from %s", ws.RemoteAddr())

	s.serveConn(network.NewWSConn(ws, s.cfg.IdleTimeout, s.cfg.WriteTimeout))
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	sessions, history := s.hub.Stats()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"sessions": sessions, "history": history})
}
