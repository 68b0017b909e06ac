package server

import (
	"fmt"
	"strconv"
	"sync"

	"hangman/internal/network"
	"hangman/pkg/logger"
)

// RoundController owns the secret word, mask, remaining guesses and score.
// The hub is its only caller and serializes every call.
type RoundController interface {
	SelectWord()
	MaskedState() string
	RemainingGuesses() int
	ApplyGuess(input string) bool
	Score() int
	RevealedWord() string
}

// Peer is a registered receiver of broadcasts
type Peer interface {
	ID() string
	// Deliver queues lines for sending without blocking
	Deliver(lines ...string) error
	Close() error
}

// Hub is the session registry and broadcaster. Register, Deregister,
// Broadcast and every round transition run under one lock, so each session
// sees the round history followed by live events with no gap or overlap.
type Hub struct {
	mu      sync.Mutex
	peers   map[string]Peer
	order   []Peer
	history []network.Message
	round   RoundController
	logger  *logger.Logger
}

// NewHub creates a hub driving round
func NewHub(round RoundController, log *logger.Logger) *Hub {
	return &Hub{
		peers:  make(map[string]Peer),
		round:  round,
		logger: log,
	}
}

// Register adds p and queues the current round history to it before any
// later broadcast. Registering the same peer twice panics.
func (h *Hub) Register(p Peer) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.peers[p.ID()]; exists {
		panic(fmt.Sprintf("hub: peer %s registered twice", p.ID()))
	}
	if len(h.history) > 0 {
		if err := p.Deliver(encodeAll(h.history)...); err != nil {
			return fmt.Errorf("failed to replay history: %w", err)
		}
	}
	h.peers[p.ID()] = p
	h.order = append(h.order, p)

	h.logger.Info("Session %s registered (%d active, %d events replayed)", p.ID(), len(h.order), len(h.history))
	return nil
}

// Deregister removes p and reports whether it was registered
func (h *Hub) Deregister(p Peer) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.removeLocked(p)
}

// Broadcast records event in the round history and queues it to every
// registered peer in registration order
func (h *Hub) Broadcast(event network.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.broadcastLocked(event)
}

// Leave deregisters p and, if it was registered, broadcasts its departure
func (h *Hub) Leave(p Peer, username string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.removeLocked(p) {
		return false
	}
	h.broadcastLocked(network.NewMessage(network.MsgDisconnect, username))
	return true
}

// StartRound discards the history, selects a new word and broadcasts NEWGAME
func (h *Hub) StartRound() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.startRoundLocked()
}

// GuessResult is the round state observed right after a guess
type GuessResult struct {
	Mask      string
	Remaining int
	Correct   bool
	Ended     bool
}

// Guess applies guess from username and broadcasts the result. When the guess
// solves the word or exhausts the guesses, ENDGAME is broadcast and the next
// round starts before the lock is released.
func (h *Hub) Guess(username, guess string) GuessResult {
	h.mu.Lock()
	defer h.mu.Unlock()

	correct := h.round.ApplyGuess(guess)
	res := GuessResult{
		Mask:      h.round.MaskedState(),
		Remaining: h.round.RemainingGuesses(),
		Correct:   correct,
	}
	remaining := strconv.Itoa(res.Remaining)
	h.broadcastLocked(network.NewMessage(network.MsgGuess, username, guess, res.Mask, remaining))

	outcome := ""
	switch {
	case correct:
		outcome = network.OutcomeWin
	case res.Remaining == 0:
		outcome = network.OutcomeLose
	default:
		return res
	}

	res.Ended = true
	h.broadcastLocked(network.NewMessage(network.MsgEndGame,
		username, guess, res.Mask, remaining,
		strconv.Itoa(h.round.Score()), outcome, h.round.RevealedWord()))
	h.logger.Info("Round over: %s (word %q, score %d)", outcome, h.round.RevealedWord(), h.round.Score())
	h.startRoundLocked()
	return res
}

// History returns a copy of the current round history
func (h *Hub) History() []network.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]network.Message(nil), h.history...)
}

// Stats returns the number of registered peers and history events
func (h *Hub) Stats() (sessions, history int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.order), len(h.history)
}

// CloseAll deregisters and closes every peer
func (h *Hub) CloseAll() {
	h.mu.Lock()
	peers := h.order
	h.order = nil
	h.peers = make(map[string]Peer)
	h.mu.Unlock()

	for _, p := range peers {
		p.Close()
	}
}

func (h *Hub) startRoundLocked() {
	h.round.SelectWord()
	h.history = nil
	h.broadcastLocked(network.NewMessage(network.MsgNewGame,
		h.round.MaskedState(), strconv.Itoa(h.round.RemainingGuesses())))
}

func (h *Hub) broadcastLocked(event network.Message) {
	h.history = append(h.history, event)
	line := network.Wrap(event).Encode()

	var stalled []Peer
	for _, p := range h.order {
		if err := p.Deliver(line); err != nil {
			h.logger.Warn("Dropping session %s: %v", p.ID(), err)
			stalled = append(stalled, p)
		}
	}
	for _, p := range stalled {
		h.removeLocked(p)
		go p.Close()
	}
	h.logger.Debug("Broadcast %s to %d sessions", line, len(h.order))
}

func (h *Hub) removeLocked(p Peer) bool {
	if _, ok := h.peers[p.ID()]; !ok {
		return false
	}
	delete(h.peers, p.ID())
	for i, q := range h.order {
		if q.ID() == p.ID() {
			h.order = append(h.order[:i:i], h.order[i+1:]...)
			break
		}
	}
	h.logger.Info("Session %s deregistered (%d active)", p.ID(), len(h.order))
	return true
}

func encodeAll(events []network.Message) []string {
	lines := make([]string, len(events))
	for i, ev := range events {
		lines[i] = network.Wrap(ev).Encode()
	}
	return lines
}
