package views

import (
	"context"
	"sync"
)

// Sequencer orders typeahead lookups so a slow early response can never
// overwrite the results of a later keystroke. Each Next call cancels the
// previous lookup's context and hands out a monotonically increasing
// sequence number; renderers check Latest before applying a result.
type Sequencer struct {
	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

// Next registers a new lookup. The returned context is cancelled when a
// newer lookup starts; the sequence number identifies this lookup in
// Latest checks.
func (s *Sequencer) Next(parent context.Context) (context.Context, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	s.seq++
	return ctx, s.seq
}

// Latest reports whether seq still identifies the most recent lookup.
func (s *Sequencer) Latest(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return seq == s.seq
}
