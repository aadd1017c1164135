// Package state owns the shared SystemState and its bounded-wait lock.
package state

import (
	"time"

	"habitat-go/types"
)

// DefaultLockTimeout is the longest any task waits for the state lock.
const DefaultLockTimeout = 10 * time.Millisecond

// Store guards the single SystemState aggregate. The lock is a one-slot
// semaphore so that acquisition can give up after a deadline; a caller that
// cannot acquire in time skips its cycle.
type Store struct {
	sem chan struct{}
	st  types.SystemState
}

func New() *Store {
	return &Store{sem: make(chan struct{}, 1)}
}

func (s *Store) acquire(timeout time.Duration) bool {
	select {
	case s.sem <- struct{}{}:
		return true
	default:
	}
	if timeout <= 0 {
		return false
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case s.sem <- struct{}{}:
		return true
	case <-t.C:
		return false
	}
}

func (s *Store) release() { <-s.sem }

// With runs f with exclusive access to the state. It returns false, without
// calling f, if the lock could not be acquired within timeout. f must not
// block or perform I/O.
func (s *Store) With(timeout time.Duration, f func(st *types.SystemState)) bool {
	if !s.acquire(timeout) {
		return false
	}
	defer s.release()
	f(&s.st)
	return true
}

// Snapshot returns a copy of the state for read-only consumers.
func (s *Store) Snapshot(timeout time.Duration) (types.SystemState, bool) {
	var out types.SystemState
	ok := s.With(timeout, func(st *types.SystemState) { out = *st })
	return out, ok
}
