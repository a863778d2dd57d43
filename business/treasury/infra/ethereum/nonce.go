package ethereum

import (
	"context"
	"sync"

	"github.com/fd1az/treasury-bot/internal/apperror"
)

// unsynced marks a counter that has not yet been reconciled with the chain.
const unsynced = -1

// NonceFetcher returns the network's pending transaction count for the
// treasury account.
type NonceFetcher func(ctx context.Context) (uint64, error)

// Sequencer hands out contiguous, gap-free transaction nonces for the
// treasury account. It is the only writer of the counter; reservations and
// rollbacks are serialized by one mutex, and no lock is held across network
// waits.
type Sequencer struct {
	mu   sync.Mutex
	next int64
}

// NewSequencer creates a sequencer in the unsynced state.
func NewSequencer() *Sequencer {
	return &Sequencer{next: unsynced}
}

// Reserve returns the next unused nonce and advances the counter by one.
// On cold start the counter is synchronized from the network first; the
// fetch runs outside the critical section and is re-checked afterwards so
// a racing reservation cannot double-initialize.
func (s *Sequencer) Reserve(ctx context.Context, fetch NonceFetcher) (uint64, error) {
	s.mu.Lock()
	if s.next == unsynced {
		s.mu.Unlock()

		onChain, err := fetch(ctx)
		if err != nil {
			return 0, apperror.New(apperror.CodeNonceDesync,
				apperror.WithCause(err),
				apperror.WithContext("failed to fetch pending transaction count"))
		}

		s.mu.Lock()
		if s.next == unsynced {
			s.next = int64(onChain)
		}
	}

	n := uint64(s.next)
	s.next++
	s.mu.Unlock()

	return n, nil
}

// Release rolls the counter back by one, but only when n is the most
// recently reserved, still-unconsumed nonce. Stale or out-of-order releases
// are no-ops: a later reservation has already claimed the slot and a
// decrement would hand out a duplicate. Returns whether the rollback
// happened.
func (s *Sequencer) Release(n uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.next == unsynced || int64(n) != s.next-1 {
		return false
	}
	s.next--
	return true
}

// Resync overwrites the counter with the network-reported count. Called by
// the connection manager on (re)connect; never trusts a stale local value.
func (s *Sequencer) Resync(onChain uint64) {
	s.mu.Lock()
	s.next = int64(onChain)
	s.mu.Unlock()
}

// Current returns the next unused nonce, or -1 when unsynced.
func (s *Sequencer) Current() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}
