package pipeline

import (
	"sync"
	"sync/atomic"
)

// Sequencer numbers invocations and admits a result only when no newer
// invocation has been delivered. Deliveries are serialized so sinks observe
// strictly increasing sequence numbers.
type Sequencer struct {
	next      atomic.Uint64
	mu        sync.Mutex
	delivered uint64
}

// NewSequencer returns a Sequencer whose first invocation is numbered 1.
func NewSequencer() *Sequencer {
	return &Sequencer{}
}

// Next returns the next invocation number.
func (s *Sequencer) Next() uint64 {
	return s.next.Add(1)
}

// Deliver runs fn if seq is newer than every previously delivered sequence
// and reports whether it did. fn runs under the delivery lock, so it must be
// bounded; Pipeline gives every sink call its own timeout.
func (s *Sequencer) Deliver(seq uint64, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq <= s.delivered {
		return false
	}
	s.delivered = seq
	fn()
	return true
}

// Delivered returns the newest delivered sequence, or 0 if none.
func (s *Sequencer) Delivered() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delivered
}
