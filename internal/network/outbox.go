package network

import (
	"errors"
	"sync"
)

var (
	// ErrOutboxClosed is returned by Push after Close
	ErrOutboxClosed = errors.New("outbox closed")
	// ErrOutboxFull is returned by Push when the pending queue reached its limit
	ErrOutboxFull = errors.New("outbox full")
)

// Outbox is an ordered queue of outbound lines drained by a single writer.
// Push never blocks, so callers holding shared locks never wait on socket I/O.
type Outbox struct {
	mu     sync.Mutex
	queue  []string
	limit  int
	closed bool
	ready  chan struct{}
}

// NewOutbox creates an outbox. A positive limit caps the pending lines; the
// cap is checked before a batch is appended, so one batch into an idle outbox
// always fits.
func NewOutbox(limit int) *Outbox {
	return &Outbox{
		limit: limit,
		ready: make(chan struct{}, 1),
	}
}

// Push appends lines in order
func (o *Outbox) Push(lines ...string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return ErrOutboxClosed
	}
	if o.limit > 0 && len(o.queue) >= o.limit {
		return ErrOutboxFull
	}
	o.queue = append(o.queue, lines...)
	o.signal()
	return nil
}

// Next blocks until lines are pending and returns all of them. After Close it
// keeps returning pending lines until the queue is drained, then ok is false.
func (o *Outbox) Next() (lines []string, ok bool) {
	for {
		o.mu.Lock()
		if len(o.queue) > 0 {
			lines = o.queue
			o.queue = nil
			o.mu.Unlock()
			return lines, true
		}
		if o.closed {
			o.mu.Unlock()
			return nil, false
		}
		o.mu.Unlock()
		<-o.ready
	}
}

// Close stops further pushes and wakes the writer
func (o *Outbox) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.closed = true
	o.signal()
}

// Discard drops pending lines
func (o *Outbox) Discard() {
	o.mu.Lock()
	o.queue = nil
	o.mu.Unlock()
}

// Len returns the number of pending lines
func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.queue)
}

func (o *Outbox) signal() {
	select {
	case o.ready <- struct{}{}:
	default:
	}
}
