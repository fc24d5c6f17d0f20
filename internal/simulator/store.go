package simulator

import (
	"sync"

	"github.com/muurk/wave/internal/painter"
)

// Store holds the params the simulated painter is running
type Store struct {
	mu       sync.RWMutex
	params   painter.Params
	rendered painter.Params
	applies  uint64
}

// NewStore creates a store running initial
func NewStore(initial painter.Params) *Store {
	s := &Store{}
	s.set(initial)
	return s
}

func (s *Store) set(p painter.Params) {
	s.params = p.Clone()
	s.rendered = p.Dimmed()
}

// Get returns the params as last sent by a client
func (s *Store) Get() painter.Params {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params.Clone()
}

// Rendered returns the params with brightness applied to the colours
func (s *Store) Rendered() painter.Params {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rendered.Clone()
}

// Apply replaces the running params and returns the rendered form
func (s *Store) Apply(p painter.Params) painter.Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set(p)
	s.applies++
	return s.rendered.Clone()
}

// Applies returns how many POSTs have been accepted
func (s *Store) Applies() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.applies
}
