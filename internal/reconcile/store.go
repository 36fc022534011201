package reconcile

import (
	"sync"
	"sync/atomic"
	"time"
)

// Store provides thread-safe access to the latest reconciliation result.
type Store struct {
	result atomic.Pointer[Result]
	mu     sync.Mutex // serializes refreshes
}

// NewStore creates a new empty Store.
func NewStore() *Store {
	return &Store{}
}

// Get returns the current result, or nil if none has been produced.
func (s *Store) Get() *Result {
	return s.result.Load()
}

// Set atomically replaces the current result.
func (s *Store) Set(r *Result) {
	s.result.Store(r)
}

// AgeSeconds returns the age of the current result in seconds.
// Returns -1 if no result is loaded.
func (s *Store) AgeSeconds() float64 {
	r := s.result.Load()
	if r == nil {
		return -1
	}
	return time.Since(r.GeneratedAt).Seconds()
}

// Refresh runs fn while holding the refresh lock and stores its result.
// Concurrent callers wait for the running refresh instead of starting their
// own.
func (s *Store) Refresh(fn func() (*Result, error)) (*Result, error) {
	before := s.result.Load()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another caller finished a refresh while we waited.
	if cur := s.result.Load(); cur != before && cur != nil {
		return cur, nil
	}

	r, err := fn()
	if err != nil {
		return nil, err
	}
	s.result.Store(r)
	return r, nil
}
