package application

import (
	"sync"

	"github.com/bnema/teamsync-cli/internal/domain"
)

// TeamState is the observable state a presentation layer binds to: a loading
// flag, the last error, and the currently selected team.
type TeamState struct {
	Loading bool
	Err     error
	Current *domain.Team
}

// Signal holds a last value and notifies subscribers on every change.
// Subscriber channels carry a single-slot buffer; notifications are coalesced
// rather than blocking the writer.
type Signal[T any] struct {
	mu    sync.RWMutex
	value T
	subs  map[chan T]struct{}
}

func NewSignal[T any](initial T) *Signal[T] {
	return &Signal[T]{
		value: initial,
		subs:  make(map[chan T]struct{}),
	}
}

func (s *Signal[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

func (s *Signal[T]) Set(value T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.value = value
	for ch := range s.subs {
		// Drop the stale buffered value so the subscriber always sees the
		// latest one.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- value:
		default:
		}
	}
}

// Subscribe registers a listener. The returned cancel func must be called to
// release the subscription.
func (s *Signal[T]) Subscribe() (<-chan T, func()) {
	ch := make(chan T, 1)

	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		delete(s.subs, ch)
		s.mu.Unlock()
	}

	return ch, cancel
}
